package repository

import (
	"context"

	"github.com/maticamisay/eldisco-ecommerce/internal/domain"
	"github.com/maticamisay/eldisco-ecommerce/pkg/pagination"
)

// ProductFilter defines the public listing criteria. Only products visible in
// the storefront are ever matched.
type ProductFilter struct {
	// Search is matched literally and case-insensitively as a substring of
	// the name, the internal code or any barcode.
	Search     *string
	CategoryID *string
	BrandID    *string
	MaxPrice   *float64
	Page       int
	Limit      int
}

// Params returns the normalized pagination parameters of the filter.
func (f ProductFilter) Params() pagination.Params {
	return pagination.Params{Page: f.Page, Limit: f.Limit}.Normalize()
}

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	// Create inserts a new product. A taken internal code maps to
	// ALREADY_EXISTS and a taken barcode to DUPLICATE_BARCODE.
	Create(ctx context.Context, product *domain.Product) error

	// Update replaces a product, matched by ID. The internal code is never
	// changed.
	Update(ctx context.Context, product *domain.Product) error

	// GetByInternalCode retrieves a product by exact internal code.
	GetByInternalCode(ctx context.Context, code string) (*domain.Product, error)

	// InternalCodeExists reports whether code is already assigned.
	InternalCodeExists(ctx context.Context, code string) (bool, error)

	// FindBarcodeOwner returns the id of the product holding barcode.
	FindBarcodeOwner(ctx context.Context, barcode string) (productID string, found bool, err error)

	// ListVisible returns one page of visible products matching the filter,
	// newest first, along with the total number of matches.
	ListVisible(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)
}

// CategoryRepository defines the interface for category persistence operations.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
	GetByName(ctx context.Context, name string) (*domain.Category, error)

	// ListAll returns every category ordered by name.
	ListAll(ctx context.Context) ([]domain.Category, error)
}

// BrandRepository defines the interface for brand persistence operations.
type BrandRepository interface {
	Create(ctx context.Context, brand *domain.Brand) error
	Update(ctx context.Context, brand *domain.Brand) error
	GetByID(ctx context.Context, id string) (*domain.Brand, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Brand, error)
	GetByName(ctx context.Context, name string) (*domain.Brand, error)

	// ListAll returns every brand ordered by name.
	ListAll(ctx context.Context) ([]domain.Brand, error)
}
