package memory

import (
	"context"
	"sort"

	"github.com/maticamisay/eldisco-ecommerce/internal/domain"
	"github.com/maticamisay/eldisco-ecommerce/internal/repository"
	apperrors "github.com/maticamisay/eldisco-ecommerce/pkg/errors"
)

// CategoryRepository implements repository.CategoryRepository.
type CategoryRepository struct {
	s *Store
}

var _ repository.CategoryRepository = (*CategoryRepository)(nil)

func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if category.ID == "" {
		category.ID = newID()
	}
	for i := range category.Subcategories {
		if category.Subcategories[i].ID == "" {
			category.Subcategories[i].ID = newID()
		}
	}
	if err := s.checkCategoryLocked(category); err != nil {
		return err
	}
	c := cloneCategory(*category)
	s.categories[c.ID] = &c
	return nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.categories[category.ID]
	if !ok {
		return apperrors.NotFound("category", category.ID)
	}
	for i := range category.Subcategories {
		if category.Subcategories[i].ID == "" {
			category.Subcategories[i].ID = newID()
		}
	}
	if err := s.checkCategoryLocked(category); err != nil {
		return err
	}
	c := cloneCategory(*category)
	c.CreatedAt = existing.CreatedAt
	s.categories[c.ID] = &c
	return nil
}

func (s *Store) checkCategoryLocked(category *domain.Category) error {
	for id, c := range s.categories {
		if id == category.ID {
			continue
		}
		if c.Name == category.Name {
			return apperrors.AlreadyExists("category", "name", category.Name)
		}
		if category.Slug != "" && c.Slug == category.Slug {
			return apperrors.AlreadyExists("category", "slug", category.Slug)
		}
	}
	return nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	return r.find("id", id, func(c *domain.Category) bool { return c.ID == id })
}

func (r *CategoryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return r.find("slug", slug, func(c *domain.Category) bool { return slug != "" && c.Slug == slug })
}

func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	return r.find("name", name, func(c *domain.Category) bool { return c.Name == name })
}

func (r *CategoryRepository) find(field, value string, match func(*domain.Category) bool) (*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.categories {
		if match(c) {
			out := cloneCategory(*c)
			return &out, nil
		}
	}
	return nil, apperrors.NotFound("category", field+" "+value)
}

func (r *CategoryRepository) ListAll(ctx context.Context) ([]domain.Category, error) {
	r.s.mu.RLock()
	out := make([]domain.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, cloneCategory(*c))
	}
	r.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
