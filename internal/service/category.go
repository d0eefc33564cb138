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

// CategoryService implements the category use cases.
type CategoryService struct {
	repo     repository.CategoryRepository
	producer event.Publisher
	logger   *slog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(repo repository.CategoryRepository, producer event.Publisher, logger *slog.Logger) *CategoryService {
	return &CategoryService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// CategoryInput holds the writable fields of a category.
type CategoryInput struct {
	Name              string             `json:"nombre" validate:"notblank,max=100"`
	LowStockThreshold *int               `json:"umbralStockBajo" validate:"omitempty,gte=0"`
	Subcategories     []SubcategoryInput `json:"subcategorias" validate:"dive"`
}

// SubcategoryInput holds one subcategory. An empty ID creates a new one.
type SubcategoryInput struct {
	ID                string `json:"_id"`
	Name              string `json:"nombre" validate:"notblank,max=100"`
	LowStockThreshold *int   `json:"umbralStockBajo" validate:"omitempty,gte=0"`
}

// ListCategories returns every category ordered by name.
func (s *CategoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// GetCategoryBySlug returns the category with the given slug.
func (s *CategoryService) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	category, err := s.repo.GetBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		return nil, fmt.Errorf("get category by slug: %w", err)
	}
	return category, nil
}

// GetCategoryByName returns the category with the given name.
func (s *CategoryService) GetCategoryByName(ctx context.Context, name string) (*domain.Category, error) {
	category, err := s.repo.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("get category by name: %w", err)
	}
	return category, nil
}

func (s *CategoryService) checkName(ctx context.Context, id, name string) error {
	existing, err := s.repo.GetByName(ctx, name)
	switch {
	case apperrors.IsNotFound(err):
		return nil
	case err != nil:
		return fmt.Errorf("check category name: %w", err)
	case existing.ID != id:
		return apperrors.AlreadyExists("category", "name", name)
	}
	return nil
}

func cleanCategoryInput(input *CategoryInput) error {
	input.Name = strings.TrimSpace(input.Name)
	for i := range input.Subcategories {
		input.Subcategories[i].Name = strings.TrimSpace(input.Subcategories[i].Name)
	}
	return validator.Validate(input)
}

func subcategories(in []SubcategoryInput) []domain.Subcategory {
	out := make([]domain.Subcategory, len(in))
	for i, sub := range in {
		out[i] = domain.Subcategory{ID: sub.ID, Name: sub.Name, LowStockThreshold: sub.LowStockThreshold}
	}
	return out
}

// CreateCategory stores a new category with a slug derived from its name.
func (s *CategoryService) CreateCategory(ctx context.Context, input *CategoryInput) (*domain.Category, error) {
	if err := cleanCategoryInput(input); err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, "", input.Name); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	category := &domain.Category{
		Name:              input.Name,
		Slug:              domain.NextSlug("", "", input.Name),
		LowStockThreshold: input.LowStockThreshold,
		Subcategories:     subcategories(input.Subcategories),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	if err := s.producer.PublishCategoryCreated(ctx, category); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category.created event",
			slog.String("category_id", category.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "category created",
		slog.String("category_id", category.ID),
		slog.String("slug", category.Slug),
	)
	return category, nil
}

// UpdateCategory replaces the category's fields. The slug is derived again
// when the name changes.
func (s *CategoryService) UpdateCategory(ctx context.Context, id string, input *CategoryInput) (*domain.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category for update: %w", err)
	}
	if err := cleanCategoryInput(input); err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, category.ID, input.Name); err != nil {
		return nil, err
	}

	category.Slug = domain.NextSlug(category.Slug, category.Name, input.Name)
	category.Name = input.Name
	category.LowStockThreshold = input.LowStockThreshold
	category.Subcategories = subcategories(input.Subcategories)
	category.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}

	if err := s.producer.PublishCategoryUpdated(ctx, category); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category.updated event",
			slog.String("category_id", category.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "category updated",
		slog.String("category_id", category.ID),
		slog.String("slug", category.Slug),
	)
	return category, nil
}
