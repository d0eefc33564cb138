package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maticamisay/eldisco-ecommerce/internal/plain"
	"github.com/maticamisay/eldisco-ecommerce/internal/service"
	"github.com/maticamisay/eldisco-ecommerce/pkg/httputil"
)

// CatalogHandler serves the category and brand listings.
type CatalogHandler struct {
	categories *service.CategoryService
	brands     *service.BrandService
	logger     *slog.Logger
}

// NewCatalogHandler creates a new category and brand HTTP handler.
func NewCatalogHandler(categories *service.CategoryService, brands *service.BrandService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		categories: categories,
		brands:     brands,
		logger:     logger,
	}
}

type categoryListResponse struct {
	Categories plain.Value `json:"categories"`
}

type categoryResponse struct {
	Category plain.Value `json:"category"`
}

type brandListResponse struct {
	Brands plain.Value `json:"brands"`
}

// ListCategories handles GET /api/categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.ListCategories(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	items := make([]plain.Value, len(categories))
	for i := range categories {
		items[i] = categories[i].Plain()
	}
	httputil.WriteJSON(w, http.StatusOK, categoryListResponse{Categories: plain.ConvertAll(items)})
}

// GetCategory handles GET /api/categories/{slug}
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.categories.GetCategoryBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, categoryResponse{Category: plain.Convert(category.Plain())})
}

// ListBrands handles GET /api/brands
func (h *CatalogHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.brands.ListBrands(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	items := make([]plain.Value, len(brands))
	for i := range brands {
		items[i] = brands[i].Plain()
	}
	httputil.WriteJSON(w, http.StatusOK, brandListResponse{Brands: plain.ConvertAll(items)})
}
