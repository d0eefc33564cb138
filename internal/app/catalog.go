package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/maticamisay/eldisco-ecommerce/internal/config"
	"github.com/maticamisay/eldisco-ecommerce/internal/event"
	"github.com/maticamisay/eldisco-ecommerce/internal/repository"
	"github.com/maticamisay/eldisco-ecommerce/internal/repository/memory"
	"github.com/maticamisay/eldisco-ecommerce/internal/repository/mongo"
	"github.com/maticamisay/eldisco-ecommerce/internal/repository/postgres"
	"github.com/maticamisay/eldisco-ecommerce/internal/repository/postgres/migrations"
	"github.com/maticamisay/eldisco-ecommerce/internal/service"
	"github.com/maticamisay/eldisco-ecommerce/pkg/database"
	"github.com/maticamisay/eldisco-ecommerce/pkg/health"
	pkgkafka "github.com/maticamisay/eldisco-ecommerce/pkg/kafka"
)

// Catalog holds the catalog services over the configured store, plus the
// connections backing them.
type Catalog struct {
	Products   *service.ProductService
	Categories *service.CategoryService
	Brands     *service.BrandService

	mongo    *mongodriver.Client
	pool     *pgxpool.Pool
	producer *pkgkafka.Producer
	logger   *slog.Logger
}

type stores struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	brands     repository.BrandRepository
}

// OpenCatalog connects the store selected by cfg.CatalogStore and builds the
// catalog services on top of it. Events go to Kafka only when enabled.
func OpenCatalog(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Catalog, error) {
	c := &Catalog{logger: logger}

	s, err := c.openStore(ctx, cfg)
	if err != nil {
		c.Close()
		return nil, err
	}

	var publisher event.Publisher = event.Noop{}
	if cfg.EventsEnabled {
		c.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = event.NewProducer(c.producer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	c.Products = service.NewProductService(s.products, s.categories, s.brands, publisher, logger)
	c.Categories = service.NewCategoryService(s.categories, publisher, logger)
	c.Brands = service.NewBrandService(s.brands, publisher, logger)
	return c, nil
}

func (c *Catalog) openStore(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.CatalogStore {
	case config.StoreMongo:
		client, err := database.NewMongoClient(ctx, cfg.Mongo(), c.logger)
		if err != nil {
			return nil, fmt.Errorf("connect to mongo: %w", err)
		}
		c.mongo = client
		db := client.Database(cfg.MongoDatabase)
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			return nil, fmt.Errorf("ensure catalog indexes: %w", err)
		}
		c.logger.Info("connected to document store", slog.String("database", cfg.MongoDatabase))
		return &stores{
			products:   mongo.NewProductRepository(db),
			categories: mongo.NewCategoryRepository(db),
			brands:     mongo.NewBrandRepository(db),
		}, nil

	case config.StorePostgres:
		pgCfg := cfg.Postgres()
		pool, err := database.NewPostgresPool(ctx, &pgCfg, c.logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		c.pool = pool
		c.logger.Info("connected to PostgreSQL",
			slog.String("host", cfg.PostgresHost),
			slog.Int("port", cfg.PostgresPort),
			slog.String("database", cfg.PostgresDB),
		)
		if err := database.RunMigrations(ctx, pool, migrations.FS, c.logger); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		c.logger.Info("database migrations completed")
		if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, ServiceName); err != nil {
			c.logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
		}
		return &stores{
			products:   postgres.NewProductRepository(pool),
			categories: postgres.NewCategoryRepository(pool),
			brands:     postgres.NewBrandRepository(pool),
		}, nil

	default:
		c.logger.Warn("using in-memory catalog store, data is lost on restart")
		store := memory.NewStore()
		return &stores{
			products:   store.Products(),
			categories: store.Categories(),
			brands:     store.Brands(),
		}, nil
	}
}

// RegisterHealth adds a readiness checker for each open connection.
func (c *Catalog) RegisterHealth(h *health.Handler) {
	if c.mongo != nil {
		h.Register("mongo", database.MongoPing(c.mongo))
	}
	if c.pool != nil {
		h.Register("postgres", func(ctx context.Context) error {
			return c.pool.Ping(ctx)
		})
	}
	if c.producer != nil {
		h.RegisterOptional("kafka", c.producer.Ping)
	}
}

// Close releases every connection opened by OpenCatalog.
func (c *Catalog) Close() {
	if c.producer != nil {
		if err := c.producer.Close(); err != nil {
			c.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}
	if c.pool != nil {
		c.pool.Close()
	}
	if c.mongo != nil {
		if err := c.mongo.Disconnect(context.Background()); err != nil {
			c.logger.Error("mongo disconnect error", slog.String("error", err.Error()))
		}
	}
}
