package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maticamisay/eldisco-ecommerce/internal/domain"
	"github.com/maticamisay/eldisco-ecommerce/internal/event"
	"github.com/maticamisay/eldisco-ecommerce/internal/plain"
	"github.com/maticamisay/eldisco-ecommerce/internal/repository"
	"github.com/maticamisay/eldisco-ecommerce/internal/repository/memory"
	apperrors "github.com/maticamisay/eldisco-ecommerce/pkg/errors"
)

// --- Mock Publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishProductCreated(ctx context.Context, p *domain.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPublisher) PublishProductUpdated(ctx context.Context, p *domain.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPublisher) PublishCategoryCreated(ctx context.Context, c *domain.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockPublisher) PublishCategoryUpdated(ctx context.Context, c *domain.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockPublisher) PublishBrandCreated(ctx context.Context, b *domain.Brand) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockPublisher) PublishBrandUpdated(ctx context.Context, b *domain.Brand) error {
	return m.Called(ctx, b).Error(0)
}

// failingCategories fails every GetByID with err.
type failingCategories struct {
	repository.CategoryRepository
	err error
}

func (f failingCategories) GetByID(context.Context, string) (*domain.Category, error) {
	return nil, f.err
}

// --- Helpers ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	store      *memory.Store
	products   *ProductService
	categories *CategoryService
	brands     *BrandService
	category   *domain.Category
	brand      *domain.Brand
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	log := testLogger()
	f := &fixture{
		store:      store,
		products:   NewProductService(store.Products(), store.Categories(), store.Brands(), event.Noop{}, log),
		categories: NewCategoryService(store.Categories(), event.Noop{}, log),
		brands:     NewBrandService(store.Brands(), event.Noop{}, log),
	}

	var err error
	f.category, err = f.categories.CreateCategory(context.Background(), &CategoryInput{Name: "Herramientas Eléctricas"})
	require.NoError(t, err)
	f.brand, err = f.brands.CreateBrand(context.Background(), &BrandInput{Name: "Bosch"})
	require.NoError(t, err)
	return f
}

func (f *fixture) input(name string, price float64, visible bool, barcodes ...string) *ProductInput {
	return &ProductInput{
		Name:            name,
		Barcodes:        barcodes,
		BrandID:         f.brand.ID,
		SupplierID:      f.brand.ID,
		CategoryID:      f.category.ID,
		Price:           price,
		EcommerceActive: visible,
	}
}

func strPtr(s string) *string     { return &s }
func floatPtr(v float64) *float64 { return &v }
func intPtr(n int) *int           { return &n }

// --- ProductService ---

func TestCreateProduct_Defaults(t *testing.T) {
	f := newFixture(t)

	in := f.input("  Taladro Percutor  ", 1000, true, " 779 ", "779", "", "780")
	in.PrincipalBarcode = "780"
	p, err := f.products.CreateProduct(context.Background(), in)
	require.NoError(t, err)

	assert.Len(t, p.ID, 24)
	assert.Len(t, p.InternalCode, domain.InternalCodeLength)
	assert.Equal(t, "Taladro Percutor", p.Name)
	assert.Equal(t, []string{"779", "780"}, p.Barcodes)
	assert.Equal(t, domain.DefaultTaxRate, p.TaxRate)
	assert.Equal(t, domain.DefaultLowStockThreshold, p.LowStockThreshold)
	assert.Zero(t, p.Stock)
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
	assert.NotNil(t, p.SubcategoryIDs)
}

func TestCreateProduct_ValidationErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*ProductInput)
	}{
		{"blank name", func(in *ProductInput) { in.Name = "   " }},
		{"negative price", func(in *ProductInput) { in.Price = -1 }},
		{"tax rate above 100", func(in *ProductInput) { in.TaxRate = floatPtr(101) }},
		{"negative stock", func(in *ProductInput) { in.Stock = intPtr(-1) }},
		{"brand is not an object id", func(in *ProductInput) { in.BrandID = "bosch" }},
		{"missing category", func(in *ProductInput) { in.CategoryID = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := f.input("Taladro", 10, true)
			tt.mutate(in)
			_, err := f.products.CreateProduct(ctx, in)
			require.Error(t, err)
			assert.Equal(t, 400, apperrors.HTTPStatus(err))
		})
	}
}

func TestCreateProduct_InvalidPrincipalBarcode(t *testing.T) {
	f := newFixture(t)

	in := f.input("Taladro", 10, true, "779")
	in.PrincipalBarcode = "999"
	_, err := f.products.CreateProduct(context.Background(), in)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_PRINCIPAL_BARCODE", appErr.Code)
}

func TestCreateProduct_SpecificationMustBeScalar(t *testing.T) {
	f := newFixture(t)

	in := f.input("Taladro", 10, true)
	in.Specifications = []domain.Specification{{SpecificationID: "potencia", Value: plain.Array(plain.Int(1))}}
	_, err := f.products.CreateProduct(context.Background(), in)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCreateProduct_DuplicateBarcode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.products.CreateProduct(ctx, f.input("Uno", 10, true, "A123"))
	require.NoError(t, err)

	_, err = f.products.CreateProduct(ctx, f.input("Dos", 10, true, "A123"))
	assert.ErrorIs(t, err, apperrors.ErrDuplicateBarcode)
}

func TestCreateProduct_ConcurrentDuplicateBarcode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.products.CreateProduct(ctx, f.input(fmt.Sprintf("P%d", i), 10, true, "A123"))
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperrors.ErrDuplicateBarcode):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, dup)
}

func TestCreateProduct_PublishFailureDoesNotFail(t *testing.T) {
	store := memory.NewStore()
	pub := &mockPublisher{}
	pub.On("PublishProductCreated", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	svc := NewProductService(store.Products(), store.Categories(), store.Brands(), pub, testLogger())

	id := "665f1c2e9b1e8a00000000b1"
	p, err := svc.CreateProduct(context.Background(), &ProductInput{
		Name: "Taladro", BrandID: id, SupplierID: id, CategoryID: id, Price: 10,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, p.InternalCode)
	pub.AssertExpectations(t)
}

func TestUpdateProduct_KeepsInternalCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.products.CreateProduct(ctx, f.input("Taladro", 10, false, "779"))
	require.NoError(t, err)

	in := f.input("Taladro 750W", 12, true, "779", "781")
	in.Stock = intPtr(4)
	updated, err := f.products.UpdateProduct(ctx, created.InternalCode, in)
	require.NoError(t, err)
	assert.Equal(t, created.InternalCode, updated.InternalCode)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, 4, updated.Stock)

	got, err := f.products.GetProductDetail(ctx, created.InternalCode)
	require.NoError(t, err)
	assert.Equal(t, "Taladro 750W", got.Product.Name)
	assert.Equal(t, []string{"779", "781"}, got.Product.Barcodes)
}

func TestUpdateProduct_BarcodeOwnedByAnother(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.products.CreateProduct(ctx, f.input("Uno", 10, true, "779"))
	require.NoError(t, err)
	second, err := f.products.CreateProduct(ctx, f.input("Dos", 10, true, "780"))
	require.NoError(t, err)

	_, err = f.products.UpdateProduct(ctx, second.InternalCode, f.input("Dos", 10, true, "780", "779"))
	assert.ErrorIs(t, err, apperrors.ErrDuplicateBarcode)
}

func TestUpdateProduct_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.products.UpdateProduct(context.Background(), "NOPE", f.input("X", 1, true))
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGetProductDetail_ResolvesRelated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.products.CreateProduct(ctx, f.input("Taladro", 1000, true))
	require.NoError(t, err)

	detail, err := f.products.GetProductDetail(ctx, created.InternalCode)
	require.NoError(t, err)
	require.NotNil(t, detail.Category)
	require.NotNil(t, detail.Brand)
	assert.Equal(t, "Herramientas Eléctricas", detail.Category.Name)
	assert.Equal(t, "Bosch", detail.Brand.Name)
	assert.InDelta(t, 1210, detail.Product.PriceWithTax(), 0.0001)
}

func TestGetProductDetail_MissingRelatedIsOmitted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.input("Taladro", 10, true)
	in.BrandID = "665f1c2e9b1e8a00000000ff"
	created, err := f.products.CreateProduct(ctx, in)
	require.NoError(t, err)

	detail, err := f.products.GetProductDetail(ctx, created.InternalCode)
	require.NoError(t, err)
	assert.NotNil(t, detail.Category)
	assert.Nil(t, detail.Brand)
}

func TestGetProductDetail_RelatedFaultFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.products.CreateProduct(ctx, f.input("Taladro", 10, true))
	require.NoError(t, err)

	svc := NewProductService(f.store.Products(), failingCategories{err: errors.New("connection reset")}, f.store.Brands(), event.Noop{}, testLogger())
	_, err = svc.GetProductDetail(ctx, created.InternalCode)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.False(t, apperrors.IsNotFound(err))
}

func TestGetProductDetail_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.products.GetProductDetail(context.Background(), "ZZZZZZZZ")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestListProducts_PaginationScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 1; i <= 25; i++ {
		_, err := f.products.CreateProduct(ctx, f.input(fmt.Sprintf("P%02d", i), 50, true))
		require.NoError(t, err)
	}
	_, err := f.products.CreateProduct(ctx, f.input("Oculto", 50, false))
	require.NoError(t, err)
	_, err = f.products.CreateProduct(ctx, f.input("Caro", 500, true))
	require.NoError(t, err)

	page, err := f.products.ListProducts(ctx, repository.ProductFilter{MaxPrice: floatPtr(100), Page: 2, Limit: 10})
	require.NoError(t, err)

	require.Len(t, page.Products, 10)
	assert.Equal(t, "P15", page.Products[0].Name)
	assert.Equal(t, "P06", page.Products[9].Name)
	assert.Equal(t, 2, page.Page.CurrentPage)
	assert.Equal(t, 3, page.Page.TotalPages)
	assert.Equal(t, 25, page.Page.TotalItems)
	assert.True(t, page.Page.HasNextPage)
	assert.True(t, page.Page.HasPrevPage)
}

func TestListProducts_DefaultsAndSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.products.CreateProduct(ctx, f.input("Taladro Percutor", 10, true, "7791234"))
	require.NoError(t, err)
	_, err = f.products.CreateProduct(ctx, f.input("Amoladora", 10, true))
	require.NoError(t, err)

	page, err := f.products.ListProducts(ctx, repository.ProductFilter{Search: strPtr("TALADRO")})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, 1, page.Page.CurrentPage)
	assert.Equal(t, 1, page.Page.TotalPages)
	assert.False(t, page.Page.HasNextPage)
	assert.False(t, page.Page.HasPrevPage)

	page, err = f.products.ListProducts(ctx, repository.ProductFilter{Search: strPtr("1234")})
	require.NoError(t, err)
	assert.Len(t, page.Products, 1)

	page, err = f.products.ListProducts(ctx, repository.ProductFilter{Search: strPtr("  ")})
	require.NoError(t, err)
	assert.Len(t, page.Products, 2)
}

func TestListProducts_Empty(t *testing.T) {
	f := newFixture(t)

	page, err := f.products.ListProducts(context.Background(), repository.ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, page.Products)
	assert.Zero(t, page.Page.TotalPages)
	assert.False(t, page.Page.HasNextPage)
}

// --- CategoryService / BrandService ---

func TestCreateCategory_SlugAndUniqueName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, "herramientas-electricas", f.category.Slug)

	_, err := f.categories.CreateCategory(ctx, &CategoryInput{Name: " Herramientas Eléctricas "})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	got, err := f.categories.GetCategoryBySlug(ctx, "herramientas-electricas")
	require.NoError(t, err)
	assert.Equal(t, f.category.ID, got.ID)
}

func TestUpdateCategory_RenameRegeneratesSlug(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	updated, err := f.categories.UpdateCategory(ctx, f.category.ID, &CategoryInput{
		Name:          "Máquinas y Herramientas",
		Subcategories: []SubcategoryInput{{Name: "Taladros"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "maquinas-y-herramientas", updated.Slug)
	require.Len(t, updated.Subcategories, 1)
	assert.NotEmpty(t, updated.Subcategories[0].ID)

	_, err = f.categories.GetCategoryBySlug(ctx, "herramientas-electricas")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUpdateCategory_SameNameKeepsSlug(t *testing.T) {
	f := newFixture(t)

	updated, err := f.categories.UpdateCategory(context.Background(), f.category.ID, &CategoryInput{
		Name:              "Herramientas Eléctricas",
		LowStockThreshold: intPtr(2),
	})
	require.NoError(t, err)
	assert.Equal(t, "herramientas-electricas", updated.Slug)
	assert.Equal(t, 2, *updated.LowStockThreshold)
}

func TestListCategories_OrderedByName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.categories.CreateCategory(ctx, &CategoryInput{Name: "Pinturas"})
	require.NoError(t, err)
	_, err = f.categories.CreateCategory(ctx, &CategoryInput{Name: "Electricidad"})
	require.NoError(t, err)

	list, err := f.categories.ListCategories(ctx)
	require.NoError(t, err)
	names := make([]string, len(list))
	for i, c := range list {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"Electricidad", "Herramientas Eléctricas", "Pinturas"}, names)
}

func TestCategoryService_PublishesEvents(t *testing.T) {
	store := memory.NewStore()
	pub := &mockPublisher{}
	pub.On("PublishCategoryCreated", mock.Anything, mock.Anything).Return(nil).Once()
	pub.On("PublishCategoryUpdated", mock.Anything, mock.Anything).Return(nil).Once()
	svc := NewCategoryService(store.Categories(), pub, testLogger())

	c, err := svc.CreateCategory(context.Background(), &CategoryInput{Name: "Pinturas"})
	require.NoError(t, err)
	_, err = svc.UpdateCategory(context.Background(), c.ID, &CategoryInput{Name: "Pinturería"})
	require.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestBrandService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, "bosch", f.brand.Slug)

	_, err := f.brands.CreateBrand(ctx, &BrandInput{Name: "Bosch"})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	_, err = f.brands.CreateBrand(ctx, &BrandInput{Name: ""})
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.HTTPStatus(err))

	updated, err := f.brands.UpdateBrand(ctx, f.brand.ID, &BrandInput{Name: "Bosch Professional", Description: strPtr("Línea azul")})
	require.NoError(t, err)
	assert.Equal(t, "bosch-professional", updated.Slug)
	assert.Equal(t, "Línea azul", *updated.Description)

	got, err := f.brands.GetBrandByName(ctx, "Bosch Professional")
	require.NoError(t, err)
	assert.Equal(t, f.brand.ID, got.ID)

	list, err := f.brands.ListBrands(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.brands.UpdateBrand(ctx, "665f1c2e9b1e8a00000000ff", &BrandInput{Name: "X"})
	assert.True(t, apperrors.IsNotFound(err))
}
