package memory

import (
	"context"
	"sort"

	"github.com/maticamisay/eldisco-ecommerce/internal/domain"
	"github.com/maticamisay/eldisco-ecommerce/internal/repository"
	apperrors "github.com/maticamisay/eldisco-ecommerce/pkg/errors"
)

// BrandRepository implements repository.BrandRepository.
type BrandRepository struct {
	s *Store
}

var _ repository.BrandRepository = (*BrandRepository)(nil)

func (r *BrandRepository) Create(ctx context.Context, brand *domain.Brand) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if brand.ID == "" {
		brand.ID = newID()
	}
	if err := s.checkBrandLocked(brand); err != nil {
		return err
	}
	b := *brand
	s.brands[b.ID] = &b
	return nil
}

func (r *BrandRepository) Update(ctx context.Context, brand *domain.Brand) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.brands[brand.ID]
	if !ok {
		return apperrors.NotFound("brand", brand.ID)
	}
	if err := s.checkBrandLocked(brand); err != nil {
		return err
	}
	b := *brand
	b.CreatedAt = existing.CreatedAt
	s.brands[b.ID] = &b
	return nil
}

func (s *Store) checkBrandLocked(brand *domain.Brand) error {
	for id, b := range s.brands {
		if id == brand.ID {
			continue
		}
		if b.Name == brand.Name {
			return apperrors.AlreadyExists("brand", "name", brand.Name)
		}
		if brand.Slug != "" && b.Slug == brand.Slug {
			return apperrors.AlreadyExists("brand", "slug", brand.Slug)
		}
	}
	return nil
}

func (r *BrandRepository) GetByID(ctx context.Context, id string) (*domain.Brand, error) {
	return r.find("id", id, func(b *domain.Brand) bool { return b.ID == id })
}

func (r *BrandRepository) GetBySlug(ctx context.Context, slug string) (*domain.Brand, error) {
	return r.find("slug", slug, func(b *domain.Brand) bool { return slug != "" && b.Slug == slug })
}

func (r *BrandRepository) GetByName(ctx context.Context, name string) (*domain.Brand, error) {
	return r.find("name", name, func(b *domain.Brand) bool { return b.Name == name })
}

func (r *BrandRepository) find(field, value string, match func(*domain.Brand) bool) (*domain.Brand, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, b := range r.s.brands {
		if match(b) {
			out := *b
			return &out, nil
		}
	}
	return nil, apperrors.NotFound("brand", field+" "+value)
}

func (r *BrandRepository) ListAll(ctx context.Context) ([]domain.Brand, error) {
	r.s.mu.RLock()
	out := make([]domain.Brand, 0, len(r.s.brands))
	for _, b := range r.s.brands {
		out = append(out, *b)
	}
	r.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
