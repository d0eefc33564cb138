// Package memory implements the catalog repositories over in-process maps.
// Unique constraints are enforced under one lock, so concurrent writers see
// the same conflicts a database index would raise.
package memory

import (
	"slices"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/maticamisay/eldisco-ecommerce/internal/domain"
)

// Store holds every catalog collection.
type Store struct {
	mu sync.RWMutex

	seq        int64
	products   map[string]*productRow
	categories map[string]*domain.Category
	brands     map[string]*domain.Brand

	// unique indexes
	productCodes map[string]string // internal code -> product id
	barcodes     map[string]string // barcode -> product id
}

type productRow struct {
	seq     int64
	product domain.Product
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		products:     make(map[string]*productRow),
		categories:   make(map[string]*domain.Category),
		brands:       make(map[string]*domain.Brand),
		productCodes: make(map[string]string),
		barcodes:     make(map[string]string),
	}
}

// Products returns the product repository backed by s.
func (s *Store) Products() *ProductRepository { return &ProductRepository{s: s} }

// Categories returns the category repository backed by s.
func (s *Store) Categories() *CategoryRepository { return &CategoryRepository{s: s} }

// Brands returns the brand repository backed by s.
func (s *Store) Brands() *BrandRepository { return &BrandRepository{s: s} }

func newID() string {
	return primitive.NewObjectID().Hex()
}

func cloneProduct(p domain.Product) domain.Product {
	p.Barcodes = slices.Clone(p.Barcodes)
	p.SubcategoryIDs = slices.Clone(p.SubcategoryIDs)
	p.Specifications = slices.Clone(p.Specifications)
	p.Images = slices.Clone(p.Images)
	return p
}

func cloneCategory(c domain.Category) domain.Category {
	c.Subcategories = slices.Clone(c.Subcategories)
	return c
}
