package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/maticamisay/eldisco-ecommerce/internal/domain"
	"github.com/maticamisay/eldisco-ecommerce/internal/event"
	"github.com/maticamisay/eldisco-ecommerce/internal/repository"
	apperrors "github.com/maticamisay/eldisco-ecommerce/pkg/errors"
	"github.com/maticamisay/eldisco-ecommerce/pkg/validator"
)

// BrandService implements the brand use cases.
type BrandService struct {
	repo     repository.BrandRepository
	producer event.Publisher
	logger   *slog.Logger
}

// NewBrandService creates a new brand service.
func NewBrandService(repo repository.BrandRepository, producer event.Publisher, logger *slog.Logger) *BrandService {
	return &BrandService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// BrandInput holds the writable fields of a brand.
type BrandInput struct {
	Name        string  `json:"nombre" validate:"notblank,max=100"`
	Description *string `json:"descripcion" validate:"omitempty,max=1000"`
	Logo        *string `json:"logo" validate:"omitempty,max=500"`
}

// ListBrands returns every brand ordered by name.
func (s *BrandService) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	brands, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	return brands, nil
}

// GetBrandByName returns the brand with the given name.
func (s *BrandService) GetBrandByName(ctx context.Context, name string) (*domain.Brand, error) {
	brand, err := s.repo.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("get brand by name: %w", err)
	}
	return brand, nil
}

func (s *BrandService) checkName(ctx context.Context, id, name string) error {
	existing, err := s.repo.GetByName(ctx, name)
	switch {
	case apperrors.IsNotFound(err):
		return nil
	case err != nil:
		return fmt.Errorf("check brand name: %w", err)
	case existing.ID != id:
		return apperrors.AlreadyExists("brand", "name", name)
	}
	return nil
}

// CreateBrand stores a new brand with a slug derived from its name.
func (s *BrandService) CreateBrand(ctx context.Context, input *BrandInput) (*domain.Brand, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validator.Validate(input); err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, "", input.Name); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	brand := &domain.Brand{
		Name:        input.Name,
		Slug:        domain.NextSlug("", "", input.Name),
		Description: input.Description,
		Logo:        input.Logo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, brand); err != nil {
		return nil, fmt.Errorf("create brand: %w", err)
	}

	if err := s.producer.PublishBrandCreated(ctx, brand); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish brand.created event",
			slog.String("brand_id", brand.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "brand created",
		slog.String("brand_id", brand.ID),
		slog.String("slug", brand.Slug),
	)
	return brand, nil
}

// UpdateBrand replaces the brand's fields, deriving the slug again on rename.
func (s *BrandService) UpdateBrand(ctx context.Context, id string, input *BrandInput) (*domain.Brand, error) {
	brand, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get brand for update: %w", err)
	}
	input.Name = strings.TrimSpace(input.Name)
	if err := validator.Validate(input); err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, brand.ID, input.Name); err != nil {
		return nil, err
	}

	brand.Slug = domain.NextSlug(brand.Slug, brand.Name, input.Name)
	brand.Name = input.Name
	brand.Description = input.Description
	brand.Logo = input.Logo
	brand.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, brand); err != nil {
		return nil, fmt.Errorf("update brand: %w", err)
	}

	if err := s.producer.PublishBrandUpdated(ctx, brand); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish brand.updated event",
			slog.String("brand_id", brand.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "brand updated",
		slog.String("brand_id", brand.ID),
		slog.String("slug", brand.Slug),
	)
	return brand, nil
}
