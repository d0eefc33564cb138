package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/maticamisay/eldisco-ecommerce/internal/domain"
	"github.com/maticamisay/eldisco-ecommerce/internal/repository"
	"github.com/maticamisay/eldisco-ecommerce/pkg/database"
	apperrors "github.com/maticamisay/eldisco-ecommerce/pkg/errors"
)

const brandColumns = `id, name, COALESCE(slug, ''), description, logo, created_at, updated_at`

// BrandRepository implements repository.BrandRepository using PostgreSQL.
type BrandRepository struct {
	db database.DBTX
}

var _ repository.BrandRepository = (*BrandRepository)(nil)

// NewBrandRepository creates a new PostgreSQL-backed brand repository.
func NewBrandRepository(db database.DBTX) *BrandRepository {
	return &BrandRepository{db: db}
}

func brandWriteError(err error, b *domain.Brand, op string) error {
	switch constraint, _ := uniqueViolation(err); constraint {
	case "brands_name_key":
		return apperrors.AlreadyExists("brand", "name", b.Name)
	case "brands_slug_key":
		return apperrors.AlreadyExists("brand", "slug", b.Slug)
	case "brands_pkey":
		return apperrors.AlreadyExists("brand", "id", b.ID)
	}
	return fmt.Errorf("%s brand: %w", op, err)
}

// Create inserts a new brand.
func (r *BrandRepository) Create(ctx context.Context, b *domain.Brand) error {
	if b.ID == "" {
		b.ID = newID()
	}

	query := `
		INSERT INTO brands (id, name, slug, description, logo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if _, err := r.db.Exec(ctx, query,
		b.ID, b.Name, nullIfEmpty(b.Slug), b.Description, b.Logo, b.CreatedAt, b.UpdatedAt,
	); err != nil {
		return brandWriteError(err, b, "insert")
	}
	return nil
}

// Update replaces the brand's mutable fields. created_at is preserved.
func (r *BrandRepository) Update(ctx context.Context, b *domain.Brand) error {
	query := `
		UPDATE brands
		SET name = $2, slug = $3, description = $4, logo = $5, updated_at = $6
		WHERE id = $1
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query,
		b.ID, b.Name, nullIfEmpty(b.Slug), b.Description, b.Logo, b.UpdatedAt,
	).Scan(&b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NotFound("brand", b.ID)
	}
	if err != nil {
		return brandWriteError(err, b, "update")
	}
	return nil
}

func (r *BrandRepository) GetByID(ctx context.Context, id string) (*domain.Brand, error) {
	return r.getBy(ctx, "id", id)
}

func (r *BrandRepository) GetBySlug(ctx context.Context, slug string) (*domain.Brand, error) {
	if slug == "" {
		return nil, apperrors.NotFound("brand", "slug "+slug)
	}
	return r.getBy(ctx, "slug", slug)
}

func (r *BrandRepository) GetByName(ctx context.Context, name string) (*domain.Brand, error) {
	return r.getBy(ctx, "name", name)
}

func (r *BrandRepository) getBy(ctx context.Context, column, value string) (*domain.Brand, error) {
	query := `SELECT ` + brandColumns + ` FROM brands WHERE ` + column + ` = $1`

	var b domain.Brand
	err := r.db.QueryRow(ctx, query, value).Scan(
		&b.ID, &b.Name, &b.Slug, &b.Description, &b.Logo, &b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		key := value
		if column != "id" {
			key = column + " " + value
		}
		return nil, apperrors.NotFound("brand", key)
	}
	if err != nil {
		return nil, fmt.Errorf("get brand by %s: %w", column, err)
	}
	return &b, nil
}

// ListAll returns every brand ordered by name.
func (r *BrandRepository) ListAll(ctx context.Context) (brands []domain.Brand, err error) {
	query := `SELECT ` + brandColumns + ` FROM brands ORDER BY name ASC`

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "brands.list", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	defer rows.Close()

	brands = []domain.Brand{}
	for rows.Next() {
		var b domain.Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Slug, &b.Description, &b.Logo, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan brand row: %w", err)
		}
		brands = append(brands, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate brand rows: %w", err)
	}
	return brands, nil
}
