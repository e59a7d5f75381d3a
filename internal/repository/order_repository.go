package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/storefront/internal/model"
)

// OrderRepo persists paid orders and their line items.
type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

// Create writes the order header and all items in one transaction and sets
// o.ID. Nothing is written when any statement fails.
func (r *OrderRepo) Create(ctx context.Context, o *model.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO orders (user_id, total_amount_cents, stripe_session_id) VALUES (?,?,?)",
		o.UserID, o.TotalAmountCents, o.StripeSessionID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	if len(o.Items) > 0 {
		var sb strings.Builder
		sb.WriteString("INSERT INTO order_items (order_id, product_id, quantity, price) VALUES ")
		args := make([]any, 0, len(o.Items)*4)
		for i, it := range o.Items {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString("(?,?,?,?)")
			args = append(args, id, it.ProductID, it.Quantity, it.Price)
		}
		if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	o.ID = uint64(id)
	return nil
}

// CountBySession returns how many orders were reconciled from sessionID.
func (r *OrderRepo) CountBySession(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders WHERE stripe_session_id = ?", sessionID).Scan(&n)
	return n, err
}
