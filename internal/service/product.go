package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/maticamisay/eldisco-ecommerce/internal/domain"
	"github.com/maticamisay/eldisco-ecommerce/internal/event"
	"github.com/maticamisay/eldisco-ecommerce/internal/repository"
	apperrors "github.com/maticamisay/eldisco-ecommerce/pkg/errors"
	"github.com/maticamisay/eldisco-ecommerce/pkg/pagination"
	"github.com/maticamisay/eldisco-ecommerce/pkg/validator"
)

// ProductService implements the storefront product use cases.
type ProductService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	brands     repository.BrandRepository
	producer   event.Publisher
	logger     *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	brands repository.BrandRepository,
	producer event.Publisher,
	logger *slog.Logger,
) *ProductService {
	return &ProductService{
		products:   products,
		categories: categories,
		brands:     brands,
		producer:   producer,
		logger:     logger,
	}
}

// ProductInput holds the writable fields of a product. Nil pointers take the
// default on create and keep the stored value on update.
type ProductInput struct {
	Name              string                 `json:"nombre" validate:"notblank,max=200"`
	AutoGenerateName  bool                   `json:"autogenerarNombre"`
	LegacyBarcode     string                 `json:"codigoBarras" validate:"max=64"`
	Barcodes          []string               `json:"codigosBarras" validate:"dive,max=64"`
	PrincipalBarcode  string                 `json:"codigoBarraPrincipal" validate:"max=64"`
	BrandID           string                 `json:"marcaId" validate:"required,mongodb"`
	SupplierID        string                 `json:"proveedorId" validate:"required,mongodb"`
	CategoryID        string                 `json:"categoriaId" validate:"required,mongodb"`
	SubcategoryIDs    []string               `json:"subcategoriaIds" validate:"dive,mongodb"`
	Price             float64                `json:"precio" validate:"gte=0"`
	TaxRate           *float64               `json:"iva" validate:"omitempty,gte=0,lte=100"`
	Stock             *int                   `json:"stock" validate:"omitempty,gte=0"`
	LowStockThreshold *int                   `json:"umbralStockBajo" validate:"omitempty,gte=0"`
	EcommerceActive   bool                   `json:"activoEcommerce"`
	Specifications    []domain.Specification `json:"especificaciones" validate:"dive"`
	Images            []domain.Image         `json:"imagenes"`
	PrimaryImage      string                 `json:"imagenPrincipal"`
}

// ProductPage is one window of the public product listing.
type ProductPage struct {
	Products []domain.Product
	Page     pagination.Page
}

// ListProducts returns the visible products matching filter, newest first.
func (s *ProductService) ListProducts(ctx context.Context, filter repository.ProductFilter) (*ProductPage, error) {
	p := filter.Params()
	if p.Limit > pagination.MaxLimit {
		p.Limit = pagination.MaxLimit
	}
	filter.Page, filter.Limit = p.Page, p.Limit
	if filter.Search != nil && strings.TrimSpace(*filter.Search) == "" {
		filter.Search = nil
	}

	products, total, err := s.products.ListVisible(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	return &ProductPage{
		Products: products,
		Page:     pagination.NewPage(total, p),
	}, nil
}

// GetProductDetail returns the product with the given internal code together
// with its category and brand, which are looked up concurrently. A related
// entity that no longer exists is left out.
func (s *ProductService) GetProductDetail(ctx context.Context, code string) (*domain.ProductDetail, error) {
	product, err := s.products.GetByInternalCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("get product by internal code: %w", err)
	}

	detail := &domain.ProductDetail{Product: *product}

	g, gctx := errgroup.WithContext(ctx)
	if product.CategoryID != "" {
		g.Go(func() error {
			c, err := s.categories.GetByID(gctx, product.CategoryID)
			switch {
			case err == nil:
				detail.Category = c
			case apperrors.IsNotFound(err):
				s.logger.WarnContext(ctx, "product references missing category",
					slog.String("code", code),
					slog.String("category_id", product.CategoryID),
				)
			default:
				return fmt.Errorf("get category: %w", err)
			}
			return nil
		})
	}
	if product.BrandID != "" {
		g.Go(func() error {
			b, err := s.brands.GetByID(gctx, product.BrandID)
			switch {
			case err == nil:
				detail.Brand = b
			case apperrors.IsNotFound(err):
				s.logger.WarnContext(ctx, "product references missing brand",
					slog.String("code", code),
					slog.String("brand_id", product.BrandID),
				)
			default:
				return fmt.Errorf("get brand: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return detail, nil
}

func cleanProductInput(input *ProductInput) error {
	input.Name = strings.TrimSpace(input.Name)
	input.LegacyBarcode = strings.TrimSpace(input.LegacyBarcode)
	input.PrincipalBarcode = strings.TrimSpace(input.PrincipalBarcode)
	input.Barcodes = domain.NormalizeBarcodes(input.Barcodes)

	if err := validator.Validate(input); err != nil {
		return err
	}
	for i, spec := range input.Specifications {
		if strings.TrimSpace(spec.SpecificationID) == "" {
			return apperrors.InvalidInput(fmt.Sprintf("specification %d has no especificacionId", i))
		}
		if !spec.Value.IsScalar() {
			return apperrors.InvalidInput(fmt.Sprintf("specification %q must be a string, number or boolean", spec.SpecificationID))
		}
	}
	return domain.ValidatePrincipalBarcode(input.PrincipalBarcode, input.Barcodes)
}

func applyProductInput(p *domain.Product, input *ProductInput) {
	p.Name = input.Name
	p.AutoGenerateName = input.AutoGenerateName
	p.LegacyBarcode = input.LegacyBarcode
	p.Barcodes = input.Barcodes
	p.PrincipalBarcode = input.PrincipalBarcode
	p.BrandID = input.BrandID
	p.SupplierID = input.SupplierID
	p.CategoryID = input.CategoryID
	p.SubcategoryIDs = input.SubcategoryIDs
	if p.SubcategoryIDs == nil {
		p.SubcategoryIDs = []string{}
	}
	p.Price = input.Price
	if input.TaxRate != nil {
		p.TaxRate = *input.TaxRate
	}
	if input.Stock != nil {
		p.Stock = *input.Stock
	}
	if input.LowStockThreshold != nil {
		p.LowStockThreshold = *input.LowStockThreshold
	}
	p.EcommerceActive = input.EcommerceActive
	p.Specifications = input.Specifications
	p.Images = make([]domain.Image, len(input.Images))
	for i, img := range input.Images {
		if img.ID == "" {
			img.ID = uuid.New().String()
		}
		p.Images[i] = img
	}
	if len(p.Images) == 0 {
		p.Images = nil
	}
	p.PrimaryImage = input.PrimaryImage
}

// CreateProduct validates input, draws a fresh internal code and stores the
// product.
func (s *ProductService) CreateProduct(ctx context.Context, input *ProductInput) (*domain.Product, error) {
	if err := cleanProductInput(input); err != nil {
		return nil, err
	}
	if err := domain.AssertBarcodesUnique(ctx, "", input.Barcodes, s.products.FindBarcodeOwner); err != nil {
		return nil, err
	}

	code, err := domain.GenerateInternalCode(ctx, s.products.InternalCodeExists)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &domain.Product{
		InternalCode:      code,
		TaxRate:           domain.DefaultTaxRate,
		LowStockThreshold: domain.DefaultLowStockThreshold,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	applyProductInput(product, input)

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	if err := s.producer.PublishProductCreated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.created event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("code", product.InternalCode),
	)

	return product, nil
}

// UpdateProduct replaces the writable fields of the product with the given
// internal code. The code itself never changes.
func (s *ProductService) UpdateProduct(ctx context.Context, code string, input *ProductInput) (*domain.Product, error) {
	product, err := s.products.GetByInternalCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}
	if err := cleanProductInput(input); err != nil {
		return nil, err
	}
	if err := domain.AssertBarcodesUnique(ctx, product.ID, input.Barcodes, s.products.FindBarcodeOwner); err != nil {
		return nil, err
	}

	applyProductInput(product, input)
	product.UpdatedAt = time.Now().UTC()

	if err := s.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	if err := s.producer.PublishProductUpdated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.updated event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", product.ID),
		slog.String("code", product.InternalCode),
	)

	return product, nil
}
