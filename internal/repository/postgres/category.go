package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/maticamisay/eldisco-ecommerce/internal/domain"
	"github.com/maticamisay/eldisco-ecommerce/internal/repository"
	"github.com/maticamisay/eldisco-ecommerce/pkg/database"
	apperrors "github.com/maticamisay/eldisco-ecommerce/pkg/errors"
)

const categoryColumns = `id, name, COALESCE(slug, ''), low_stock_threshold, subcategories, created_at, updated_at`

// CategoryRepository implements repository.CategoryRepository using PostgreSQL.
type CategoryRepository struct {
	db database.DBTX
}

var _ repository.CategoryRepository = (*CategoryRepository)(nil)

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(db database.DBTX) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func encodeSubcategories(c *domain.Category) ([]byte, error) {
	for i := range c.Subcategories {
		if c.Subcategories[i].ID == "" {
			c.Subcategories[i].ID = newID()
		}
	}
	subs := c.Subcategories
	if subs == nil {
		subs = []domain.Subcategory{}
	}
	data, err := json.Marshal(subs)
	if err != nil {
		return nil, fmt.Errorf("marshal subcategories: %w", err)
	}
	return data, nil
}

func categoryWriteError(err error, c *domain.Category, op string) error {
	switch constraint, _ := uniqueViolation(err); constraint {
	case "categories_name_key":
		return apperrors.AlreadyExists("category", "name", c.Name)
	case "categories_slug_key":
		return apperrors.AlreadyExists("category", "slug", c.Slug)
	case "categories_pkey":
		return apperrors.AlreadyExists("category", "id", c.ID)
	}
	return fmt.Errorf("%s category: %w", op, err)
}

// Create inserts a new category.
func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	if c.ID == "" {
		c.ID = newID()
	}
	subs, err := encodeSubcategories(c)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO categories (id, name, slug, low_stock_threshold, subcategories, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if _, err := r.db.Exec(ctx, query,
		c.ID, c.Name, nullIfEmpty(c.Slug), c.LowStockThreshold, subs, c.CreatedAt, c.UpdatedAt,
	); err != nil {
		return categoryWriteError(err, c, "insert")
	}
	return nil
}

// Update replaces the category's mutable fields. created_at is preserved.
func (r *CategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	subs, err := encodeSubcategories(c)
	if err != nil {
		return err
	}

	query := `
		UPDATE categories
		SET name = $2, slug = $3, low_stock_threshold = $4, subcategories = $5, updated_at = $6
		WHERE id = $1
		RETURNING created_at`

	err = r.db.QueryRow(ctx, query,
		c.ID, c.Name, nullIfEmpty(c.Slug), c.LowStockThreshold, subs, c.UpdatedAt,
	).Scan(&c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NotFound("category", c.ID)
	}
	if err != nil {
		return categoryWriteError(err, c, "update")
	}
	return nil
}

// GetByID retrieves a category by id.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	return r.getBy(ctx, "id", id)
}

// GetBySlug retrieves a category by slug.
func (r *CategoryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	if slug == "" {
		return nil, apperrors.NotFound("category", "slug "+slug)
	}
	return r.getBy(ctx, "slug", slug)
}

// GetByName retrieves a category by exact name.
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	return r.getBy(ctx, "name", name)
}

// column is one of a fixed set of identifiers, never user input.
func (r *CategoryRepository) getBy(ctx context.Context, column, value string) (c *domain.Category, err error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE ` + column + ` = $1`

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "categories.select", query)
	defer func() { end(err) }()

	category, err := scanCategory(r.db.QueryRow(ctx, query, value))
	if errors.Is(err, pgx.ErrNoRows) {
		key := value
		if column != "id" {
			key = column + " " + value
		}
		return nil, apperrors.NotFound("category", key)
	}
	if err != nil {
		return nil, fmt.Errorf("get category by %s: %w", column, err)
	}
	return &category, nil
}

// ListAll returns every category ordered by name.
func (r *CategoryRepository) ListAll(ctx context.Context) (categories []domain.Category, err error) {
	query := `SELECT ` + categoryColumns + ` FROM categories ORDER BY name ASC`

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "categories.list", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories = []domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}
	return categories, nil
}

func scanCategory(row pgx.Row) (domain.Category, error) {
	var (
		c    domain.Category
		subs []byte
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.LowStockThreshold, &subs, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return domain.Category{}, err
	}
	c.Subcategories = []domain.Subcategory{}
	if len(subs) > 0 {
		if err := json.Unmarshal(subs, &c.Subcategories); err != nil {
			return domain.Category{}, fmt.Errorf("unmarshal subcategories: %w", err)
		}
	}
	return c, nil
}
