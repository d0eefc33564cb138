package domain

import (
	"time"

	"github.com/maticamisay/eldisco-ecommerce/internal/plain"
)

// Product defaults applied by the write path.
const (
	DefaultTaxRate           = 21.0
	DefaultLowStockThreshold = 5
)

// Stock status values derived from stock and the low-stock threshold.
const (
	StockInStock    = "in_stock"
	StockLow        = "low_stock"
	StockOutOfStock = "out_of_stock"
)

// Product is a sellable catalog item.
type Product struct {
	ID                string          `json:"_id"`
	InternalCode      string          `json:"codigoInterno"`
	Name              string          `json:"nombre"`
	AutoGenerateName  bool            `json:"autogenerarNombre"`
	LegacyBarcode     string          `json:"codigoBarras,omitempty"`
	Barcodes          []string        `json:"codigosBarras"`
	PrincipalBarcode  string          `json:"codigoBarraPrincipal,omitempty"`
	BrandID           string          `json:"marcaId"`
	SupplierID        string          `json:"proveedorId"`
	CategoryID        string          `json:"categoriaId"`
	SubcategoryIDs    []string        `json:"subcategoriaIds"`
	Price             float64         `json:"precio"`
	TaxRate           float64         `json:"iva"`
	Stock             int             `json:"stock"`
	LowStockThreshold int             `json:"umbralStockBajo"`
	EcommerceActive   bool            `json:"activoEcommerce"`
	Specifications    []Specification `json:"especificaciones,omitempty"`
	Images            []Image         `json:"imagenes,omitempty"`
	PrimaryImage      string          `json:"imagenPrincipal,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// Specification is a product attribute value. Value is a string, number or
// boolean scalar.
type Specification struct {
	SpecificationID string      `json:"especificacionId"`
	Value           plain.Value `json:"valor"`
}

// Image describes an image stored in the file-storage service.
type Image struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	URL          string    `json:"url"`
	Size         int64     `json:"size"`
	UploadDate   time.Time `json:"uploadDate"`
	IsPrimary    bool      `json:"isPrimary"`
	Alt          string    `json:"alt,omitempty"`
}

// PriceWithTax returns the price including the product's tax rate.
func (p *Product) PriceWithTax() float64 {
	return p.Price * (1 + p.TaxRate/100)
}

// StockStatus classifies the current stock against the low-stock threshold.
func (p *Product) StockStatus() string {
	switch {
	case p.Stock <= 0:
		return StockOutOfStock
	case p.Stock <= p.LowStockThreshold:
		return StockLow
	default:
		return StockInStock
	}
}

// FeaturedImage returns the first image flagged primary, else the first image.
func (p *Product) FeaturedImage() (Image, bool) {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img, true
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0], true
	}
	return Image{}, false
}

// Plain renders the product with its persisted key names. Optional fields
// that are unset are left out.
func (p *Product) Plain() plain.Value {
	fields := []plain.Field{
		plain.F("_id", plain.ID(p.ID)),
		plain.F("codigoInterno", plain.String(p.InternalCode)),
		plain.F("nombre", plain.String(p.Name)),
		plain.F("autogenerarNombre", plain.Bool(p.AutoGenerateName)),
	}
	if p.LegacyBarcode != "" {
		fields = append(fields, plain.F("codigoBarras", plain.String(p.LegacyBarcode)))
	}
	fields = append(fields, plain.F("codigosBarras", plain.Strings(p.Barcodes)))
	if p.PrincipalBarcode != "" {
		fields = append(fields, plain.F("codigoBarraPrincipal", plain.String(p.PrincipalBarcode)))
	}
	fields = append(fields,
		plain.F("marcaId", plain.String(p.BrandID)),
		plain.F("proveedorId", plain.String(p.SupplierID)),
		plain.F("categoriaId", plain.String(p.CategoryID)),
		plain.F("subcategoriaIds", plain.Strings(p.SubcategoryIDs)),
		plain.F("precio", plain.Number(p.Price)),
		plain.F("iva", plain.Number(p.TaxRate)),
		plain.F("stock", plain.Int(int64(p.Stock))),
		plain.F("umbralStockBajo", plain.Int(int64(p.LowStockThreshold))),
		plain.F("activoEcommerce", plain.Bool(p.EcommerceActive)),
	)
	if len(p.Specifications) > 0 {
		specs := make([]plain.Value, len(p.Specifications))
		for i, s := range p.Specifications {
			specs[i] = plain.Object(
				plain.F("especificacionId", plain.String(s.SpecificationID)),
				plain.F("valor", s.Value),
			)
		}
		fields = append(fields, plain.F("especificaciones", plain.Array(specs...)))
	}
	if len(p.Images) > 0 {
		images := make([]plain.Value, len(p.Images))
		for i := range p.Images {
			images[i] = p.Images[i].Plain()
		}
		fields = append(fields, plain.F("imagenes", plain.Array(images...)))
	}
	if p.PrimaryImage != "" {
		fields = append(fields, plain.F("imagenPrincipal", plain.String(p.PrimaryImage)))
	}
	fields = append(fields,
		plain.F("createdAt", plain.Time(p.CreatedAt)),
		plain.F("updatedAt", plain.Time(p.UpdatedAt)),
	)
	return plain.Object(fields...)
}

// Plain renders the image with its persisted key names.
func (img *Image) Plain() plain.Value {
	fields := []plain.Field{
		plain.F("id", plain.String(img.ID)),
		plain.F("filename", plain.String(img.Filename)),
		plain.F("originalName", plain.String(img.OriginalName)),
		plain.F("url", plain.String(img.URL)),
		plain.F("size", plain.Int(img.Size)),
		plain.F("uploadDate", plain.Time(img.UploadDate)),
		plain.F("isPrimary", plain.Bool(img.IsPrimary)),
	}
	if img.Alt != "" {
		fields = append(fields, plain.F("alt", plain.String(img.Alt)))
	}
	return plain.Object(fields...)
}
