package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maticamisay/eldisco-ecommerce/internal/domain"
	apperrors "github.com/maticamisay/eldisco-ecommerce/pkg/errors"
)

func TestCategoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Categories()

	vinilos := domain.Category{Name: "Vinilos", Slug: "vinilos", Subcategories: []domain.Subcategory{{Name: "Textiles"}}}
	require.NoError(t, repo.Create(ctx, &vinilos))
	require.NoError(t, repo.Create(ctx, &domain.Category{Name: "Accesorios", Slug: "accesorios"}))
	require.NoError(t, repo.Create(ctx, &domain.Category{Name: "Sin slug"}))
	require.NoError(t, repo.Create(ctx, &domain.Category{Name: "Otro sin slug"}))
	assert.Len(t, vinilos.Subcategories[0].ID, 24)

	assert.ErrorIs(t, repo.Create(ctx, &domain.Category{Name: "Vinilos"}), apperrors.ErrAlreadyExists)
	assert.ErrorIs(t, repo.Create(ctx, &domain.Category{Name: "Vinilos 2", Slug: "vinilos"}), apperrors.ErrAlreadyExists)

	got, err := repo.GetBySlug(ctx, "vinilos")
	require.NoError(t, err)
	assert.Equal(t, vinilos.ID, got.ID)

	_, err = repo.GetBySlug(ctx, "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	byName, err := repo.GetByName(ctx, "Accesorios")
	require.NoError(t, err)
	assert.Equal(t, "accesorios", byName.Slug)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "Accesorios", all[0].Name)
	assert.Equal(t, "Vinilos", all[3].Name)

	vinilos.Name = "Vinilos Textiles"
	vinilos.Slug = "vinilos-textiles"
	require.NoError(t, repo.Update(ctx, &vinilos))
	_, err = repo.GetBySlug(ctx, "vinilos")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = repo.GetByID(ctx, "65f1c0ffee00000000000000")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestBrandRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Brands()

	acme := domain.Brand{Name: "Acme", Slug: "acme"}
	require.NoError(t, repo.Create(ctx, &acme))
	require.NoError(t, repo.Create(ctx, &domain.Brand{Name: "Zeta", Slug: "zeta"}))
	assert.ErrorIs(t, repo.Create(ctx, &domain.Brand{Name: "Acme"}), apperrors.ErrAlreadyExists)

	got, err := repo.GetByID(ctx, acme.ID)
	require.NoError(t, err)
	assert.Equal(t, "acme", got.Slug)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Acme", all[0].Name)

	assert.ErrorIs(t, repo.Update(ctx, &domain.Brand{ID: "nope", Name: "x"}), apperrors.ErrNotFound)
}
