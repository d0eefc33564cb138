package domain

import "github.com/maticamisay/eldisco-ecommerce/internal/plain"

// ProductDetail is a product with its related category and brand resolved.
// A related entity that no longer exists is nil.
type ProductDetail struct {
	Product  Product
	Category *Category
	Brand    *Brand
}

// Plain renders the product fields followed by the related entities and the
// derived display fields.
func (d *ProductDetail) Plain() plain.Value {
	v := d.Product.Plain()
	if d.Category != nil {
		v = v.With("category", d.Category.Plain())
	}
	if d.Brand != nil {
		v = v.With("brand", d.Brand.Plain())
	}
	v = v.With("priceWithTax", plain.Number(d.Product.PriceWithTax()))
	v = v.With("stockStatus", plain.String(d.Product.StockStatus()))
	if img, ok := d.Product.FeaturedImage(); ok {
		v = v.With("featuredImage", img.Plain())
	}
	return v
}
