package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/storefront/internal/model"
)

// ErrProductNotFound is returned when no product matches the id.
var ErrProductNotFound = errors.New("product not found")

const productColumns = "id,name,description,price,image,category,is_featured,created_at,updated_at"

// ProductRepo runs catalog queries against the products table.
type ProductRepo struct {
	db *sql.DB
}

func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// ListAll returns every product, newest first.
func (r *ProductRepo) ListAll(ctx context.Context) ([]model.Product, error) {
	return r.query(ctx, "SELECT "+productColumns+" FROM products ORDER BY id DESC")
}

// ListFeatured returns the products whose featured flag is set, ordered by id
// so that two reads of the same table state produce the same slice.
func (r *ProductRepo) ListFeatured(ctx context.Context) ([]model.Product, error) {
	return r.query(ctx, "SELECT "+productColumns+" FROM products WHERE is_featured = 1 ORDER BY id")
}

// ListByCategory returns the products of one category.
func (r *ProductRepo) ListByCategory(ctx context.Context, category string) ([]model.Product, error) {
	return r.query(ctx, "SELECT "+productColumns+" FROM products WHERE category = ? ORDER BY id", category)
}

// Sample returns up to n products in random order.
func (r *ProductRepo) Sample(ctx context.Context, n int) ([]model.Product, error) {
	return r.query(ctx, "SELECT "+productColumns+" FROM products ORDER BY RAND() LIMIT ?", n)
}

// GetByID fetches a single product.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (model.Product, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = ?", id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, ErrProductNotFound
	}
	return p, err
}

// Create inserts p and fills in its id and timestamps.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	const q = "INSERT INTO products (name, description, price, image, category, is_featured) VALUES (?,?,?,?,?,?)"
	res, err := r.db.ExecContext(ctx, q, p.Name, p.Description, p.Price, p.Image, p.Category, p.IsFeatured)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*p = stored
	return nil
}

// ToggleFeatured flips the featured flag in a single UPDATE and returns the
// row as stored afterwards.
func (r *ProductRepo) ToggleFeatured(ctx context.Context, id uint64) (model.Product, error) {
	res, err := r.db.ExecContext(ctx, "UPDATE products SET is_featured = NOT is_featured WHERE id = ?", id)
	if err != nil {
		return model.Product{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.Product{}, ErrProductNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes a product. Deleting a missing id yields ErrProductNotFound.
func (r *ProductRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *ProductRepo) query(ctx context.Context, q string, args ...any) ([]model.Product, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(s rowScanner) (model.Product, error) {
	var p model.Product
	err := s.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &p.Category, &p.IsFeatured, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
