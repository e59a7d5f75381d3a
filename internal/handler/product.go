package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/storefront/internal/model"
	"github.com/iliyamo/storefront/internal/service"
)

// Catalog is implemented by service.CatalogService.
type Catalog interface {
	GetFeatured(ctx context.Context) (json.RawMessage, error)
	ToggleFeatured(ctx context.Context, id uint64) (model.Product, error)
	ListAll(ctx context.Context) ([]model.Product, error)
	ListByCategory(ctx context.Context, category string) ([]model.Product, error)
	Recommendations(ctx context.Context) ([]model.Product, error)
	Create(ctx context.Context, in service.NewProduct) (model.Product, error)
	Delete(ctx context.Context, id uint64) error
}

// ProductHandler serves /api/products.
type ProductHandler struct {
	catalog Catalog
}

func NewProductHandler(catalog Catalog) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

type createProductReq struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
}

func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.catalog.ListAll(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"products": products})
}

// Featured writes the cached snapshot as is.
func (h *ProductHandler) Featured(c echo.Context) error {
	raw, err := h.catalog.GetFeatured(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSONBlob(http.StatusOK, raw)
}

func (h *ProductHandler) ByCategory(c echo.Context) error {
	products, err := h.catalog.ListByCategory(c.Request().Context(), c.Param("category"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"products": products})
}

func (h *ProductHandler) Recommendations(c echo.Context) error {
	products, err := h.catalog.Recommendations(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) Create(c echo.Context) error {
	var req createProductReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	p, err := h.catalog.Create(c.Request().Context(), service.NewProduct{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		Category:    req.Category,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// ToggleFeatured flips the featured flag of :id.
func (h *ProductHandler) ToggleFeatured(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "invalid product id")
	}
	p, err := h.catalog.ToggleFeatured(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) Delete(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "invalid product id")
	}
	if err := h.catalog.Delete(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted successfully"})
}
