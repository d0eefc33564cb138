package domain

import (
	"time"

	"github.com/maticamisay/eldisco-ecommerce/internal/plain"
)

// Brand is a product manufacturer or label.
type Brand struct {
	ID          string    `json:"_id"`
	Name        string    `json:"nombre"`
	Slug        string    `json:"slug,omitempty"`
	Description *string   `json:"descripcion,omitempty"`
	Logo        *string   `json:"logo,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Plain renders the brand with its persisted key names.
func (b *Brand) Plain() plain.Value {
	fields := []plain.Field{
		plain.F("_id", plain.ID(b.ID)),
		plain.F("nombre", plain.String(b.Name)),
	}
	if b.Slug != "" {
		fields = append(fields, plain.F("slug", plain.String(b.Slug)))
	}
	if b.Description != nil {
		fields = append(fields, plain.F("descripcion", plain.OptString(b.Description)))
	}
	if b.Logo != nil {
		fields = append(fields, plain.F("logo", plain.OptString(b.Logo)))
	}
	fields = append(fields,
		plain.F("createdAt", plain.Time(b.CreatedAt)),
		plain.F("updatedAt", plain.Time(b.UpdatedAt)),
	)
	return plain.Object(fields...)
}
