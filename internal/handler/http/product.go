package http

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/maticamisay/eldisco-ecommerce/internal/domain"
	"github.com/maticamisay/eldisco-ecommerce/internal/plain"
	"github.com/maticamisay/eldisco-ecommerce/internal/repository"
	"github.com/maticamisay/eldisco-ecommerce/internal/service"
	"github.com/maticamisay/eldisco-ecommerce/pkg/httputil"
	"github.com/maticamisay/eldisco-ecommerce/pkg/pagination"
)

// ProductHandler handles HTTP requests for product endpoints.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Response bodies ---

type paginationBody struct {
	CurrentPage   int  `json:"currentPage"`
	TotalPages    int  `json:"totalPages"`
	TotalProducts int  `json:"totalProducts"`
	HasNextPage   bool `json:"hasNextPage"`
	HasPrevPage   bool `json:"hasPrevPage"`
}

type productListResponse struct {
	Products   plain.Value    `json:"products"`
	Pagination paginationBody `json:"pagination"`
}

type productDetailResponse struct {
	Product plain.Value `json:"product"`
}

func newPaginationBody(p pagination.Page) paginationBody {
	return paginationBody{
		CurrentPage:   p.CurrentPage,
		TotalPages:    p.TotalPages,
		TotalProducts: p.TotalItems,
		HasNextPage:   p.HasNextPage,
		HasPrevPage:   p.HasPrevPage,
	}
}

func renderProducts(products []domain.Product) plain.Value {
	items := make([]plain.Value, len(products))
	for i := range products {
		items[i] = products[i].Plain()
	}
	return plain.ConvertAll(items)
}

// optionalParam returns nil for an absent or blank query parameter.
func optionalParam(r *http.Request, name string) *string {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil
	}
	return &v
}

// parseProductFilter reads the listing query. The second return value is a
// message for a malformed parameter.
func parseProductFilter(r *http.Request) (repository.ProductFilter, string) {
	params, err := pagination.ParseQuery(r.URL.Query())
	if err != nil {
		return repository.ProductFilter{}, err.Error()
	}

	filter := repository.ProductFilter{
		Search:     optionalParam(r, "search"),
		CategoryID: optionalParam(r, "category"),
		BrandID:    optionalParam(r, "brand"),
		Page:       params.Page,
		Limit:      params.Limit,
	}

	if v := optionalParam(r, "maxPrice"); v != nil {
		price, err := strconv.ParseFloat(*v, 64)
		if err != nil || price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
			return repository.ProductFilter{}, "maxPrice must be a non-negative number"
		}
		filter.MaxPrice = &price
	}

	return filter, ""
}

// ListProducts handles GET /api/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter, msg := parseProductFilter(r)
	if msg != "" {
		httputil.WriteParamError(w, r, msg)
		return
	}

	page, err := h.service.ListProducts(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, productListResponse{
		Products:   renderProducts(page.Products),
		Pagination: newPaginationBody(page.Page),
	})
}

// GetProduct handles GET /api/products/{codigo}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(chi.URLParam(r, "codigo"))
	if code == "" {
		httputil.WriteParamError(w, r, "product code is required")
		return
	}

	detail, err := h.service.GetProductDetail(r.Context(), code)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, productDetailResponse{
		Product: plain.Convert(detail.Plain()),
	})
}
