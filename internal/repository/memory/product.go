package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/maticamisay/eldisco-ecommerce/internal/domain"
	"github.com/maticamisay/eldisco-ecommerce/internal/repository"
	apperrors "github.com/maticamisay/eldisco-ecommerce/pkg/errors"
)

// ProductRepository implements repository.ProductRepository.
type ProductRepository struct {
	s *Store
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

// Create inserts a new product, assigning an id when none is set.
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == "" {
		product.ID = newID()
	}
	if _, ok := s.products[product.ID]; ok {
		return apperrors.AlreadyExists("product", "id", product.ID)
	}
	if _, ok := s.productCodes[product.InternalCode]; ok {
		return apperrors.AlreadyExists("product", "internal code", product.InternalCode)
	}
	if err := s.checkBarcodesLocked(product.ID, product.Barcodes); err != nil {
		return err
	}

	s.seq++
	s.products[product.ID] = &productRow{seq: s.seq, product: cloneProduct(*product)}
	s.productCodes[product.InternalCode] = product.ID
	for _, b := range product.Barcodes {
		s.barcodes[b] = product.ID
	}
	return nil
}

// Update replaces the stored product. The stored internal code is kept.
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.products[product.ID]
	if !ok {
		return apperrors.NotFound("product", product.ID)
	}
	if err := s.checkBarcodesLocked(product.ID, product.Barcodes); err != nil {
		return err
	}

	for _, b := range row.product.Barcodes {
		delete(s.barcodes, b)
	}
	updated := cloneProduct(*product)
	updated.InternalCode = row.product.InternalCode
	updated.CreatedAt = row.product.CreatedAt
	row.product = updated
	for _, b := range updated.Barcodes {
		s.barcodes[b] = updated.ID
	}
	product.InternalCode = updated.InternalCode
	return nil
}

func (s *Store) checkBarcodesLocked(productID string, barcodes []string) error {
	for _, b := range barcodes {
		if owner, ok := s.barcodes[b]; ok && owner != productID {
			return apperrors.DuplicateBarcode(b)
		}
	}
	return nil
}

// GetByInternalCode retrieves a product by exact internal code.
func (r *ProductRepository) GetByInternalCode(ctx context.Context, code string) (*domain.Product, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.productCodes[code]
	if !ok {
		return nil, apperrors.NotFound("product", code)
	}
	p := cloneProduct(s.products[id].product)
	return &p, nil
}

// InternalCodeExists reports whether code is already assigned.
func (r *ProductRepository) InternalCodeExists(ctx context.Context, code string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.productCodes[code]
	return ok, nil
}

// FindBarcodeOwner returns the id of the product holding barcode.
func (r *ProductRepository) FindBarcodeOwner(ctx context.Context, barcode string) (string, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.barcodes[barcode]
	return id, ok, nil
}

// ListVisible returns one page of visible products matching filter.
func (r *ProductRepository) ListVisible(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	s := r.s
	s.mu.RLock()
	matched := make([]productRow, 0, len(s.products))
	for _, row := range s.products {
		if matches(&row.product, filter) {
			matched = append(matched, productRow{product: cloneProduct(row.product), seq: row.seq})
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.product.CreatedAt.Equal(b.product.CreatedAt) {
			return a.product.CreatedAt.After(b.product.CreatedAt)
		}
		return a.seq > b.seq
	})

	total := len(matched)
	p := filter.Params()
	start := p.Offset()
	if start > total {
		start = total
	}
	end := total
	if p.Limit < total-start {
		end = start + p.Limit
	}

	products := make([]domain.Product, 0, end-start)
	for _, row := range matched[start:end] {
		products = append(products, row.product)
	}
	return products, total, nil
}

func matches(p *domain.Product, f repository.ProductFilter) bool {
	if !p.EcommerceActive {
		return false
	}
	if f.CategoryID != nil && p.CategoryID != *f.CategoryID {
		return false
	}
	if f.BrandID != nil && p.BrandID != *f.BrandID {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.Search != nil && *f.Search != "" {
		term := strings.ToLower(*f.Search)
		if containsFold(p.Name, term) || containsFold(p.InternalCode, term) {
			return true
		}
		for _, b := range p.Barcodes {
			if containsFold(b, term) {
				return true
			}
		}
		return false
	}
	return true
}

func containsFold(s, lowerTerm string) bool {
	return strings.Contains(strings.ToLower(s), lowerTerm)
}
