package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/maticamisay/eldisco-ecommerce/internal/domain"
)

// Collection names.
const (
	ProductsCollection   = "products"
	CategoriesCollection = "categories"
	BrandsCollection     = "brands"
)

type productDoc struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	InternalCode      string             `bson:"codigoInterno"`
	Name              string             `bson:"nombre"`
	AutoGenerateName  bool               `bson:"autogenerarNombre"`
	LegacyBarcode     string             `bson:"codigoBarras,omitempty"`
	Barcodes          []string           `bson:"codigosBarras,omitempty"`
	PrincipalBarcode  string             `bson:"codigoBarraPrincipal,omitempty"`
	BrandID           string             `bson:"marcaId"`
	SupplierID        string             `bson:"proveedorId"`
	CategoryID        string             `bson:"categoriaId"`
	SubcategoryIDs    []string           `bson:"subcategoriaIds"`
	Price             float64            `bson:"precio"`
	TaxRate           float64            `bson:"iva"`
	Stock             int                `bson:"stock"`
	LowStockThreshold int                `bson:"umbralStockBajo"`
	EcommerceActive   bool               `bson:"activoEcommerce"`
	Specifications    []specDoc          `bson:"especificaciones,omitempty"`
	Images            []imageDoc         `bson:"imagenes,omitempty"`
	PrimaryImage      string             `bson:"imagenPrincipal,omitempty"`
	CreatedAt         time.Time          `bson:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt"`
}

// optionalProductKeys are omitted from the stored document when empty and
// must be unset explicitly on update.
var optionalProductKeys = []string{
	"codigoBarras", "codigosBarras", "codigoBarraPrincipal",
	"especificaciones", "imagenes", "imagenPrincipal",
}

type specDoc struct {
	SpecificationID string `bson:"especificacionId"`
	Value           any    `bson:"valor"`
}

type imageDoc struct {
	ID           string    `bson:"id"`
	Filename     string    `bson:"filename"`
	OriginalName string    `bson:"originalName"`
	URL          string    `bson:"url"`
	Size         int64     `bson:"size"`
	UploadDate   time.Time `bson:"uploadDate"`
	IsPrimary    bool      `bson:"isPrimary"`
	Alt          string    `bson:"alt,omitempty"`
}

type categoryDoc struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	Name              string             `bson:"nombre"`
	Slug              string             `bson:"slug,omitempty"`
	LowStockThreshold *int               `bson:"umbralStockBajo,omitempty"`
	Subcategories     []subcategoryDoc   `bson:"subcategorias"`
	CreatedAt         time.Time          `bson:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt"`
}

type subcategoryDoc struct {
	ID                primitive.ObjectID `bson:"_id"`
	Name              string             `bson:"nombre"`
	LowStockThreshold *int               `bson:"umbralStockBajo,omitempty"`
}

type brandDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"nombre"`
	Slug        string             `bson:"slug,omitempty"`
	Description *string            `bson:"descripcion,omitempty"`
	Logo        *string            `bson:"logo,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// objectID parses a hex id, generating a new one when hex is empty.
func objectID(hex string) (primitive.ObjectID, error) {
	if hex == "" {
		return primitive.NewObjectID(), nil
	}
	return primitive.ObjectIDFromHex(hex)
}

func toProductDoc(p *domain.Product, id primitive.ObjectID) productDoc {
	doc := productDoc{
		ID:                id,
		InternalCode:      p.InternalCode,
		Name:              p.Name,
		AutoGenerateName:  p.AutoGenerateName,
		LegacyBarcode:     p.LegacyBarcode,
		Barcodes:          p.Barcodes,
		PrincipalBarcode:  p.PrincipalBarcode,
		BrandID:           p.BrandID,
		SupplierID:        p.SupplierID,
		CategoryID:        p.CategoryID,
		SubcategoryIDs:    p.SubcategoryIDs,
		Price:             p.Price,
		TaxRate:           p.TaxRate,
		Stock:             p.Stock,
		LowStockThreshold: p.LowStockThreshold,
		EcommerceActive:   p.EcommerceActive,
		PrimaryImage:      p.PrimaryImage,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
	if doc.SubcategoryIDs == nil {
		doc.SubcategoryIDs = []string{}
	}
	for _, s := range p.Specifications {
		doc.Specifications = append(doc.Specifications, specDoc{SpecificationID: s.SpecificationID, Value: scalarToBSON(s.Value)})
	}
	for _, img := range p.Images {
		doc.Images = append(doc.Images, imageDoc(img))
	}
	return doc
}

func (d *productDoc) toDomain() domain.Product {
	p := domain.Product{
		ID:                d.ID.Hex(),
		InternalCode:      d.InternalCode,
		Name:              d.Name,
		AutoGenerateName:  d.AutoGenerateName,
		LegacyBarcode:     d.LegacyBarcode,
		Barcodes:          d.Barcodes,
		PrincipalBarcode:  d.PrincipalBarcode,
		BrandID:           d.BrandID,
		SupplierID:        d.SupplierID,
		CategoryID:        d.CategoryID,
		SubcategoryIDs:    d.SubcategoryIDs,
		Price:             d.Price,
		TaxRate:           d.TaxRate,
		Stock:             d.Stock,
		LowStockThreshold: d.LowStockThreshold,
		EcommerceActive:   d.EcommerceActive,
		PrimaryImage:      d.PrimaryImage,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
	if p.Barcodes == nil {
		p.Barcodes = []string{}
	}
	if p.SubcategoryIDs == nil {
		p.SubcategoryIDs = []string{}
	}
	for _, s := range d.Specifications {
		p.Specifications = append(p.Specifications, domain.Specification{SpecificationID: s.SpecificationID, Value: PlainFromBSON(s.Value)})
	}
	for _, img := range d.Images {
		p.Images = append(p.Images, domain.Image(img))
	}
	return p
}

func toCategoryDoc(c *domain.Category, id primitive.ObjectID) (categoryDoc, error) {
	doc := categoryDoc{
		ID:                id,
		Name:              c.Name,
		Slug:              c.Slug,
		LowStockThreshold: c.LowStockThreshold,
		Subcategories:     make([]subcategoryDoc, 0, len(c.Subcategories)),
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
	for i := range c.Subcategories {
		sid, err := objectID(c.Subcategories[i].ID)
		if err != nil {
			return categoryDoc{}, err
		}
		c.Subcategories[i].ID = sid.Hex()
		doc.Subcategories = append(doc.Subcategories, subcategoryDoc{
			ID:                sid,
			Name:              c.Subcategories[i].Name,
			LowStockThreshold: c.Subcategories[i].LowStockThreshold,
		})
	}
	return doc, nil
}

func (d *categoryDoc) toDomain() domain.Category {
	c := domain.Category{
		ID:                d.ID.Hex(),
		Name:              d.Name,
		Slug:              d.Slug,
		LowStockThreshold: d.LowStockThreshold,
		Subcategories:     make([]domain.Subcategory, 0, len(d.Subcategories)),
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
	for _, s := range d.Subcategories {
		c.Subcategories = append(c.Subcategories, domain.Subcategory{
			ID:                s.ID.Hex(),
			Name:              s.Name,
			LowStockThreshold: s.LowStockThreshold,
		})
	}
	return c
}

func toBrandDoc(b *domain.Brand, id primitive.ObjectID) brandDoc {
	return brandDoc{
		ID:          id,
		Name:        b.Name,
		Slug:        b.Slug,
		Description: b.Description,
		Logo:        b.Logo,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func (d *brandDoc) toDomain() domain.Brand {
	return domain.Brand{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Slug:        d.Slug,
		Description: d.Description,
		Logo:        d.Logo,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
