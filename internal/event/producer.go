// Package event publishes catalog domain events.
package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maticamisay/eldisco-ecommerce/internal/domain"
	pkgkafka "github.com/maticamisay/eldisco-ecommerce/pkg/kafka"
	"github.com/maticamisay/eldisco-ecommerce/pkg/logger"
)

// Kafka topic constants for catalog domain events.
var (
	TopicProductCreated  = pkgkafka.Topic("product", "created")
	TopicProductUpdated  = pkgkafka.Topic("product", "updated")
	TopicCategoryCreated = pkgkafka.Topic("category", "created")
	TopicCategoryUpdated = pkgkafka.Topic("category", "updated")
	TopicBrandCreated    = pkgkafka.Topic("brand", "created")
	TopicBrandUpdated    = pkgkafka.Topic("brand", "updated")
)

// Aggregate type constants.
const (
	AggregateTypeProduct  = "product"
	AggregateTypeCategory = "category"
	AggregateTypeBrand    = "brand"
)

// SourceCatalogService identifies events originating from the storefront catalog.
const SourceCatalogService = "catalog-service"

// ProductData is the payload for product.created and product.updated.
type ProductData struct {
	ID              string   `json:"id"`
	InternalCode    string   `json:"codigoInterno"`
	Name            string   `json:"nombre"`
	Barcodes        []string `json:"codigosBarras"`
	CategoryID      string   `json:"categoriaId"`
	BrandID         string   `json:"marcaId"`
	Price           float64  `json:"precio"`
	Stock           int      `json:"stock"`
	EcommerceActive bool     `json:"ecommerceActivo"`
}

// CategoryData is the payload for category events.
type CategoryData struct {
	ID   string `json:"id"`
	Name string `json:"nombre"`
	Slug string `json:"slug,omitempty"`
}

// BrandData is the payload for brand events.
type BrandData struct {
	ID   string `json:"id"`
	Name string `json:"nombre"`
	Slug string `json:"slug,omitempty"`
}

// Publisher is what the services emit catalog changes through.
type Publisher interface {
	PublishProductCreated(ctx context.Context, p *domain.Product) error
	PublishProductUpdated(ctx context.Context, p *domain.Product) error
	PublishCategoryCreated(ctx context.Context, c *domain.Category) error
	PublishCategoryUpdated(ctx context.Context, c *domain.Category) error
	PublishBrandCreated(ctx context.Context, b *domain.Brand) error
	PublishBrandUpdated(ctx context.Context, b *domain.Brand) error
}

// Sender is the subset of *pkgkafka.Producer the event producer needs.
type Sender interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes catalog domain events to Kafka.
type Producer struct {
	kafka  Sender
	logger *slog.Logger
}

var _ Publisher = (*Producer)(nil)

// NewProducer creates a new event producer for the catalog.
func NewProducer(kafka Sender, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceCatalogService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}

func productData(p *domain.Product) ProductData {
	return ProductData{
		ID:              p.ID,
		InternalCode:    p.InternalCode,
		Name:            p.Name,
		Barcodes:        p.Barcodes,
		CategoryID:      p.CategoryID,
		BrandID:         p.BrandID,
		Price:           p.Price,
		Stock:           p.Stock,
		EcommerceActive: p.EcommerceActive,
	}
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductCreated, product.ID, AggregateTypeProduct, productData(product))
}

// PublishProductUpdated publishes a product.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductUpdated, product.ID, AggregateTypeProduct, productData(product))
}

// PublishCategoryCreated publishes a category.created event.
func (p *Producer) PublishCategoryCreated(ctx context.Context, c *domain.Category) error {
	return p.publish(ctx, TopicCategoryCreated, c.ID, AggregateTypeCategory, CategoryData{ID: c.ID, Name: c.Name, Slug: c.Slug})
}

// PublishCategoryUpdated publishes a category.updated event.
func (p *Producer) PublishCategoryUpdated(ctx context.Context, c *domain.Category) error {
	return p.publish(ctx, TopicCategoryUpdated, c.ID, AggregateTypeCategory, CategoryData{ID: c.ID, Name: c.Name, Slug: c.Slug})
}

// PublishBrandCreated publishes a brand.created event.
func (p *Producer) PublishBrandCreated(ctx context.Context, b *domain.Brand) error {
	return p.publish(ctx, TopicBrandCreated, b.ID, AggregateTypeBrand, BrandData{ID: b.ID, Name: b.Name, Slug: b.Slug})
}

// PublishBrandUpdated publishes a brand.updated event.
func (p *Producer) PublishBrandUpdated(ctx context.Context, b *domain.Brand) error {
	return p.publish(ctx, TopicBrandUpdated, b.ID, AggregateTypeBrand, BrandData{ID: b.ID, Name: b.Name, Slug: b.Slug})
}

// Noop discards every event. It is used when publishing is disabled.
type Noop struct{}

var _ Publisher = Noop{}

func (Noop) PublishProductCreated(context.Context, *domain.Product) error   { return nil }
func (Noop) PublishProductUpdated(context.Context, *domain.Product) error   { return nil }
func (Noop) PublishCategoryCreated(context.Context, *domain.Category) error { return nil }
func (Noop) PublishCategoryUpdated(context.Context, *domain.Category) error { return nil }
func (Noop) PublishBrandCreated(context.Context, *domain.Brand) error       { return nil }
func (Noop) PublishBrandUpdated(context.Context, *domain.Brand) error       { return nil }
