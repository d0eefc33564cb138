package memory

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maticamisay/eldisco-ecommerce/internal/domain"
	"github.com/maticamisay/eldisco-ecommerce/internal/repository"
	apperrors "github.com/maticamisay/eldisco-ecommerce/pkg/errors"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func seedProduct(t *testing.T, repo *ProductRepository, p domain.Product) domain.Product {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &p))
	return p
}

func TestProductRepository_CreateAndGet(t *testing.T) {
	repo := NewStore().Products()
	p := seedProduct(t, repo, domain.Product{InternalCode: "AB12CD34", Name: "Vinilo", Barcodes: []string{"A123"}})

	assert.Len(t, p.ID, 24)

	got, err := repo.GetByInternalCode(context.Background(), "AB12CD34")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = repo.GetByInternalCode(context.Background(), "ab12cd34")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	exists, err := repo.InternalCodeExists(context.Background(), "AB12CD34")
	require.NoError(t, err)
	assert.True(t, exists)

	owner, found, err := repo.FindBarcodeOwner(context.Background(), "A123")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, p.ID, owner)
}

func TestProductRepository_ReturnsCopies(t *testing.T) {
	repo := NewStore().Products()
	seedProduct(t, repo, domain.Product{InternalCode: "C1", Barcodes: []string{"A123"}})

	got, err := repo.GetByInternalCode(context.Background(), "C1")
	require.NoError(t, err)
	got.Barcodes[0] = "MUTATED"

	again, err := repo.GetByInternalCode(context.Background(), "C1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A123"}, again.Barcodes)
}

func TestProductRepository_UniqueConstraints(t *testing.T) {
	repo := NewStore().Products()
	seedProduct(t, repo, domain.Product{InternalCode: "C1", Barcodes: []string{"A123"}})

	err := repo.Create(context.Background(), &domain.Product{InternalCode: "C1"})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	err = repo.Create(context.Background(), &domain.Product{InternalCode: "C2", Barcodes: []string{"B1", "A123"}})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateBarcode)

	_, found, _ := repo.FindBarcodeOwner(context.Background(), "B1")
	assert.False(t, found, "a rejected product must not claim any barcode")
}

func TestProductRepository_ConcurrentDuplicateBarcode(t *testing.T) {
	repo := NewStore().Products()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Create(context.Background(), &domain.Product{
				InternalCode: fmt.Sprintf("CODE%d", i),
				Barcodes:     []string{"A123"},
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, apperrors.ErrDuplicateBarcode)
	}
	assert.Equal(t, 1, succeeded)
}

func TestProductRepository_Update(t *testing.T) {
	repo := NewStore().Products()
	p := seedProduct(t, repo, domain.Product{InternalCode: "C1", Barcodes: []string{"A123"}, CreatedAt: base})
	other := seedProduct(t, repo, domain.Product{InternalCode: "C2", Barcodes: []string{"B456"}})

	p.InternalCode = "CHANGED"
	p.Barcodes = []string{"A999"}
	p.CreatedAt = base.Add(time.Hour)
	require.NoError(t, repo.Update(context.Background(), &p))
	assert.Equal(t, "C1", p.InternalCode)

	got, err := repo.GetByInternalCode(context.Background(), "C1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A999"}, got.Barcodes)
	assert.True(t, got.CreatedAt.Equal(base))

	_, found, _ := repo.FindBarcodeOwner(context.Background(), "A123")
	assert.False(t, found, "released barcodes can be reused")

	other.Barcodes = []string{"A999"}
	assert.ErrorIs(t, repo.Update(context.Background(), &other), apperrors.ErrDuplicateBarcode)

	assert.ErrorIs(t, repo.Update(context.Background(), &domain.Product{ID: "missing"}), apperrors.ErrNotFound)
}

func TestProductRepository_ListVisible_Filters(t *testing.T) {
	repo := NewStore().Products()
	seedProduct(t, repo, domain.Product{InternalCode: "VIN001", Name: "Vinilo Textil Blanco", CategoryID: "cat1", BrandID: "b1", Price: 80, EcommerceActive: true, Barcodes: []string{"779100"}, CreatedAt: base})
	seedProduct(t, repo, domain.Product{InternalCode: "TEL002", Name: "Tela Algodón", CategoryID: "cat2", BrandID: "b1", Price: 150, EcommerceActive: true, Barcodes: []string{"779200"}, CreatedAt: base.Add(time.Minute)})
	seedProduct(t, repo, domain.Product{InternalCode: "HID003", Name: "Vinilo oculto", CategoryID: "cat1", BrandID: "b2", Price: 10, EcommerceActive: false, CreatedAt: base.Add(2 * time.Minute)})
	seedProduct(t, repo, domain.Product{InternalCode: "VIN004", Name: "Plancha", CategoryID: "cat1", BrandID: "b2", Price: 99.5, EcommerceActive: true, Barcodes: []string{"VIN-779300"}, CreatedAt: base.Add(3 * time.Minute)})

	codes := func(f repository.ProductFilter) []string {
		products, _, err := repo.ListVisible(context.Background(), f)
		require.NoError(t, err)
		out := make([]string, len(products))
		for i, p := range products {
			out[i] = p.InternalCode
		}
		return out
	}

	assert.Equal(t, []string{"VIN004", "TEL002", "VIN001"}, codes(repository.ProductFilter{}))
	assert.Equal(t, []string{"VIN004", "VIN001"}, codes(repository.ProductFilter{Search: ptr("vin")}))
	assert.Equal(t, []string{"VIN001"}, codes(repository.ProductFilter{Search: ptr("TEXTIL")}))
	assert.Equal(t, []string{"TEL002"}, codes(repository.ProductFilter{Search: ptr("7792")}))
	assert.Empty(t, codes(repository.ProductFilter{Search: ptr("oculto")}))
	assert.Empty(t, codes(repository.ProductFilter{Search: ptr(".*")}))
	assert.Equal(t, []string{"VIN004", "VIN001"}, codes(repository.ProductFilter{CategoryID: ptr("cat1")}))
	assert.Equal(t, []string{"TEL002", "VIN001"}, codes(repository.ProductFilter{BrandID: ptr("b1")}))
	assert.Equal(t, []string{"VIN004", "VIN001"}, codes(repository.ProductFilter{MaxPrice: ptr(100.0)}))
	assert.Equal(t, []string{"VIN004"}, codes(repository.ProductFilter{CategoryID: ptr("cat1"), BrandID: ptr("b2")}))
}

func TestProductRepository_ListVisible_Pagination(t *testing.T) {
	repo := NewStore().Products()
	for i := 0; i < 25; i++ {
		seedProduct(t, repo, domain.Product{
			InternalCode:    fmt.Sprintf("P%02d", i),
			Price:           50,
			EcommerceActive: true,
			CreatedAt:       base.Add(time.Duration(i) * time.Minute),
		})
	}

	products, total, err := repo.ListVisible(context.Background(), repository.ProductFilter{MaxPrice: ptr(100.0), Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	require.Len(t, products, 10)
	// newest first: page 2 holds the 11th to 20th newest
	assert.Equal(t, "P14", products[0].InternalCode)
	assert.Equal(t, "P05", products[9].InternalCode)

	products, _, err = repo.ListVisible(context.Background(), repository.ProductFilter{Page: 9, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestProductRepository_ListVisible_FarPage(t *testing.T) {
	repo := NewStore().Products()
	seedProduct(t, repo, domain.Product{InternalCode: "P01", EcommerceActive: true, CreatedAt: base})

	products, total, err := repo.ListVisible(context.Background(), repository.ProductFilter{Page: math.MaxInt, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Empty(t, products)
}

func TestProductRepository_ListVisible_ConcurrentUpdates(t *testing.T) {
	repo := NewStore().Products()
	seeded := make([]domain.Product, 20)
	for i := range seeded {
		seeded[i] = seedProduct(t, repo, domain.Product{
			InternalCode:    fmt.Sprintf("P%02d", i),
			EcommerceActive: true,
			CreatedAt:       base.Add(time.Duration(i) * time.Minute),
		})
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for round := 0; round < 50; round++ {
			for i := range seeded {
				p := seeded[i]
				p.Name = fmt.Sprintf("round %d", round)
				p.Price = float64(round)
				assert.NoError(t, repo.Update(context.Background(), &p))
			}
		}
	}()
	go func() {
		defer wg.Done()
		for round := 0; round < 50; round++ {
			products, total, err := repo.ListVisible(context.Background(), repository.ProductFilter{Page: 1, Limit: 20})
			assert.NoError(t, err)
			assert.Equal(t, 20, total)
			assert.Len(t, products, 20)
		}
	}()
	wg.Wait()
}
