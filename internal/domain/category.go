package domain

import (
	"time"

	"github.com/maticamisay/eldisco-ecommerce/internal/plain"
)

// Category groups products and carries its subcategories inline.
type Category struct {
	ID                string        `json:"_id"`
	Name              string        `json:"nombre"`
	Slug              string        `json:"slug,omitempty"`
	LowStockThreshold *int          `json:"umbralStockBajo,omitempty"`
	Subcategories     []Subcategory `json:"subcategorias"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

// Subcategory is a named child of a category.
type Subcategory struct {
	ID                string `json:"_id"`
	Name              string `json:"nombre"`
	LowStockThreshold *int   `json:"umbralStockBajo,omitempty"`
}

// Plain renders the category with its persisted key names.
func (c *Category) Plain() plain.Value {
	fields := []plain.Field{
		plain.F("_id", plain.ID(c.ID)),
		plain.F("nombre", plain.String(c.Name)),
	}
	if c.Slug != "" {
		fields = append(fields, plain.F("slug", plain.String(c.Slug)))
	}
	if c.LowStockThreshold != nil {
		fields = append(fields, plain.F("umbralStockBajo", plain.OptInt(c.LowStockThreshold)))
	}
	subs := make([]plain.Value, len(c.Subcategories))
	for i, s := range c.Subcategories {
		sub := []plain.Field{
			plain.F("_id", plain.ID(s.ID)),
			plain.F("nombre", plain.String(s.Name)),
		}
		if s.LowStockThreshold != nil {
			sub = append(sub, plain.F("umbralStockBajo", plain.OptInt(s.LowStockThreshold)))
		}
		subs[i] = plain.Object(sub...)
	}
	fields = append(fields,
		plain.F("subcategorias", plain.Array(subs...)),
		plain.F("createdAt", plain.Time(c.CreatedAt)),
		plain.F("updatedAt", plain.Time(c.UpdatedAt)),
	)
	return plain.Object(fields...)
}
