// Package seed loads a catalog fixture file through the catalog services, so
// seeded data passes the same write rules as any other write.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/maticamisay/eldisco-ecommerce/internal/domain"
	"github.com/maticamisay/eldisco-ecommerce/internal/service"
	apperrors "github.com/maticamisay/eldisco-ecommerce/pkg/errors"
)

// File is the fixture layout. Products reference their brand, category and
// subcategories by name.
type File struct {
	Categories []service.CategoryInput `json:"categorias"`
	Brands     []service.BrandInput    `json:"marcas"`
	Products   []ProductEntry          `json:"productos"`
}

// ProductEntry is a product input whose relations are given by name.
type ProductEntry struct {
	service.ProductInput
	Brand         string   `json:"marca"`
	Category      string   `json:"categoria"`
	Subcategories []string `json:"subcategorias"`
}

// Categories is the subset of the category service used for seeding.
type Categories interface {
	GetCategoryByName(ctx context.Context, name string) (*domain.Category, error)
	CreateCategory(ctx context.Context, input *service.CategoryInput) (*domain.Category, error)
}

// Brands is the subset of the brand service used for seeding.
type Brands interface {
	GetBrandByName(ctx context.Context, name string) (*domain.Brand, error)
	CreateBrand(ctx context.Context, input *service.BrandInput) (*domain.Brand, error)
}

// Products is the subset of the product service used for seeding.
type Products interface {
	CreateProduct(ctx context.Context, input *service.ProductInput) (*domain.Product, error)
}

// Result counts what a run created and skipped.
type Result struct {
	Categories int
	Brands     int
	Products   int
	Skipped    int
}

// Seeder writes fixture entries through the services.
type Seeder struct {
	categories Categories
	brands     Brands
	products   Products
	logger     *slog.Logger
}

// New creates a seeder.
func New(categories Categories, brands Brands, products Products, logger *slog.Logger) *Seeder {
	return &Seeder{categories: categories, brands: brands, products: products, logger: logger}
}

// Decode reads a fixture file.
func Decode(r io.Reader) (*File, error) {
	var f File
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return &f, nil
}

// Run creates the fixture's categories and brands unless one with the same
// name already exists, then creates its products. A product whose barcode is
// already assigned is skipped, so reruns are safe.
func (s *Seeder) Run(ctx context.Context, f *File) (*Result, error) {
	res := &Result{}

	for i := range f.Categories {
		in := &f.Categories[i]
		_, err := s.categories.GetCategoryByName(ctx, in.Name)
		if err == nil {
			res.Skipped++
			continue
		}
		if !apperrors.IsNotFound(err) {
			return res, fmt.Errorf("look up category %q: %w", in.Name, err)
		}
		if _, err := s.categories.CreateCategory(ctx, in); err != nil {
			return res, fmt.Errorf("create category %q: %w", in.Name, err)
		}
		res.Categories++
	}

	for i := range f.Brands {
		in := &f.Brands[i]
		_, err := s.brands.GetBrandByName(ctx, in.Name)
		if err == nil {
			res.Skipped++
			continue
		}
		if !apperrors.IsNotFound(err) {
			return res, fmt.Errorf("look up brand %q: %w", in.Name, err)
		}
		if _, err := s.brands.CreateBrand(ctx, in); err != nil {
			return res, fmt.Errorf("create brand %q: %w", in.Name, err)
		}
		res.Brands++
	}

	for i := range f.Products {
		entry := &f.Products[i]
		if err := s.resolve(ctx, entry); err != nil {
			return res, fmt.Errorf("product %q: %w", entry.Name, err)
		}
		p, err := s.products.CreateProduct(ctx, &entry.ProductInput)
		if errors.Is(err, apperrors.ErrDuplicateBarcode) {
			s.logger.InfoContext(ctx, "product already seeded, skipping", slog.String("name", entry.Name))
			res.Skipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("create product %q: %w", entry.Name, err)
		}
		s.logger.DebugContext(ctx, "product seeded",
			slog.String("internal_code", p.InternalCode),
			slog.String("name", p.Name),
		)
		res.Products++
	}

	return res, nil
}

func (s *Seeder) resolve(ctx context.Context, entry *ProductEntry) error {
	if entry.Brand != "" {
		b, err := s.brands.GetBrandByName(ctx, entry.Brand)
		if err != nil {
			return fmt.Errorf("brand %q: %w", entry.Brand, err)
		}
		entry.BrandID = b.ID
	}
	if entry.Category == "" {
		return nil
	}
	c, err := s.categories.GetCategoryByName(ctx, entry.Category)
	if err != nil {
		return fmt.Errorf("category %q: %w", entry.Category, err)
	}
	entry.CategoryID = c.ID

	for _, name := range entry.Subcategories {
		id, ok := subcategoryID(c, name)
		if !ok {
			return apperrors.NotFound("subcategory", name)
		}
		entry.SubcategoryIDs = append(entry.SubcategoryIDs, id)
	}
	return nil
}

func subcategoryID(c *domain.Category, name string) (string, bool) {
	for _, sub := range c.Subcategories {
		if strings.EqualFold(sub.Name, name) {
			return sub.ID, true
		}
	}
	return "", false
}
