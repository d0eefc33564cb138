package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maticamisay/eldisco-ecommerce/internal/config"
	"github.com/maticamisay/eldisco-ecommerce/internal/service"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("CATALOG_STORE", config.StoreMemory)
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpenCatalog_Memory(t *testing.T) {
	cfg := memoryConfig(t)

	catalog, err := OpenCatalog(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	defer catalog.Close()

	assert.Nil(t, catalog.producer)
	_, err = catalog.Brands.CreateBrand(context.Background(), &service.BrandInput{Name: "Stanley"})
	require.NoError(t, err)
	brands, err := catalog.Brands.ListBrands(context.Background())
	require.NoError(t, err)
	assert.Len(t, brands, 1)
}

func TestNewApp_ServesCatalog(t *testing.T) {
	cfg := memoryConfig(t)

	a, err := NewApp(cfg, testLogger())
	require.NoError(t, err)
	defer func() { _ = a.Shutdown() }()

	assert.Nil(t, a.redis)

	rec := httptest.NewRecorder()
	a.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"categories":[]}`, rec.Body.String())
}
