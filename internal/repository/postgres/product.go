package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/maticamisay/eldisco-ecommerce/internal/domain"
	"github.com/maticamisay/eldisco-ecommerce/internal/repository"
	"github.com/maticamisay/eldisco-ecommerce/pkg/database"
	apperrors "github.com/maticamisay/eldisco-ecommerce/pkg/errors"
)

const productColumns = `id, internal_code, name, auto_generate_name, legacy_barcode, barcodes,
		principal_barcode, brand_id, supplier_id, category_id, subcategory_ids, price, tax_rate,
		stock, low_stock_threshold, ecommerce_active, specifications, images, primary_image,
		created_at, updated_at`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
// Barcodes are mirrored into product_barcodes so the database enforces their
// global uniqueness.
type ProductRepository struct {
	db database.DBTX
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

func encodeProductJSON(p *domain.Product) (specs, images []byte, err error) {
	s := p.Specifications
	if s == nil {
		s = []domain.Specification{}
	}
	if specs, err = json.Marshal(s); err != nil {
		return nil, nil, fmt.Errorf("marshal specifications: %w", err)
	}
	i := p.Images
	if i == nil {
		i = []domain.Image{}
	}
	if images, err = json.Marshal(i); err != nil {
		return nil, nil, fmt.Errorf("marshal images: %w", err)
	}
	return specs, images, nil
}

func stringsOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Create inserts a new product and its barcodes in one transaction.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "products.insert", "")
	defer func() { end(err) }()

	if p.ID == "" {
		p.ID = newID()
	}
	specs, images, err := encodeProductJSON(p)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`

	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, query,
			p.ID,
			p.InternalCode,
			p.Name,
			p.AutoGenerateName,
			p.LegacyBarcode,
			stringsOrEmpty(p.Barcodes),
			p.PrincipalBarcode,
			p.BrandID,
			p.SupplierID,
			p.CategoryID,
			stringsOrEmpty(p.SubcategoryIDs),
			p.Price,
			p.TaxRate,
			p.Stock,
			p.LowStockThreshold,
			p.EcommerceActive,
			specs,
			images,
			p.PrimaryImage,
			p.CreatedAt,
			p.UpdatedAt,
		); err != nil {
			if constraint, ok := uniqueViolation(err); ok {
				if constraint == "products_pkey" {
					return apperrors.AlreadyExists("product", "id", p.ID)
				}
				return apperrors.AlreadyExists("product", "internal code", p.InternalCode)
			}
			return fmt.Errorf("insert product: %w", err)
		}
		return insertBarcodes(ctx, tx, p.ID, p.Barcodes)
	})
}

func insertBarcodes(ctx context.Context, tx pgx.Tx, productID string, barcodes []string) error {
	for _, b := range barcodes {
		if _, err := tx.Exec(ctx, `INSERT INTO product_barcodes (barcode, product_id) VALUES ($1, $2)`, b, productID); err != nil {
			if _, ok := uniqueViolation(err); ok {
				return apperrors.DuplicateBarcode(b)
			}
			return fmt.Errorf("insert barcode: %w", err)
		}
	}
	return nil
}

// Update rewrites the mutable columns and the barcode set. internal_code and
// created_at are never changed; their stored values are copied back into p.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "products.update", "")
	defer func() { end(err) }()

	specs, images, err := encodeProductJSON(p)
	if err != nil {
		return err
	}

	query := `
		UPDATE products SET
			name = $2, auto_generate_name = $3, legacy_barcode = $4, barcodes = $5,
			principal_barcode = $6, brand_id = $7, supplier_id = $8, category_id = $9,
			subcategory_ids = $10, price = $11, tax_rate = $12, stock = $13,
			low_stock_threshold = $14, ecommerce_active = $15, specifications = $16,
			images = $17, primary_image = $18, updated_at = $19
		WHERE id = $1
		RETURNING internal_code, created_at`

	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, query,
			p.ID,
			p.Name,
			p.AutoGenerateName,
			p.LegacyBarcode,
			stringsOrEmpty(p.Barcodes),
			p.PrincipalBarcode,
			p.BrandID,
			p.SupplierID,
			p.CategoryID,
			stringsOrEmpty(p.SubcategoryIDs),
			p.Price,
			p.TaxRate,
			p.Stock,
			p.LowStockThreshold,
			p.EcommerceActive,
			specs,
			images,
			p.PrimaryImage,
			p.UpdatedAt,
		).Scan(&p.InternalCode, &p.CreatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("product", p.ID)
		}
		if err != nil {
			return fmt.Errorf("update product: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM product_barcodes WHERE product_id = $1`, p.ID); err != nil {
			return fmt.Errorf("clear barcodes: %w", err)
		}
		return insertBarcodes(ctx, tx, p.ID, p.Barcodes)
	})
}

// GetByInternalCode retrieves a product by exact internal code.
func (r *ProductRepository) GetByInternalCode(ctx context.Context, code string) (p *domain.Product, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "products.select", "")
	defer func() { end(err) }()

	query := `SELECT ` + productColumns + ` FROM products WHERE internal_code = $1`
	product, err := scanProduct(r.db.QueryRow(ctx, query, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("product", code)
	}
	if err != nil {
		return nil, fmt.Errorf("get product by internal code: %w", err)
	}
	return &product, nil
}

// InternalCodeExists reports whether code is already assigned.
func (r *ProductRepository) InternalCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE internal_code = $1)`, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("check internal code: %w", err)
	}
	return exists, nil
}

// FindBarcodeOwner returns the id of the product holding barcode.
func (r *ProductRepository) FindBarcodeOwner(ctx context.Context, barcode string) (string, bool, error) {
	var id string
	err := r.db.QueryRow(ctx, `SELECT product_id FROM product_barcodes WHERE barcode = $1`, barcode).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("find barcode owner: %w", err)
	}
	return id, true, nil
}

// ListVisible returns one page of visible products, newest first, with the
// total count computed by count(*) OVER().
func (r *ProductRepository) ListVisible(ctx context.Context, filter repository.ProductFilter) (products []domain.Product, total int, err error) {
	var (
		conditions = []string{"ecommerce_active = TRUE"}
		args       []any
		argIndex   = 1
	)

	if filter.Search != nil && *filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(name ILIKE $%d OR internal_code ILIKE $%d OR EXISTS (SELECT 1 FROM unnest(barcodes) AS b WHERE b ILIKE $%d))",
			argIndex, argIndex, argIndex))
		args = append(args, likePattern(*filter.Search))
		argIndex++
	}
	if filter.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", argIndex))
		args = append(args, *filter.CategoryID)
		argIndex++
	}
	if filter.BrandID != nil {
		conditions = append(conditions, fmt.Sprintf("brand_id = $%d", argIndex))
		args = append(args, *filter.BrandID)
		argIndex++
	}
	if filter.MaxPrice != nil {
		conditions = append(conditions, fmt.Sprintf("price <= $%d", argIndex))
		args = append(args, *filter.MaxPrice)
		argIndex++
	}

	where := strings.Join(conditions, " AND ")
	query := fmt.Sprintf(`
		SELECT %s,
			count(*) OVER() AS total_count
		FROM products
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		productColumns, where, argIndex, argIndex+1,
	)
	filterArgs := len(args)

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "products.list", query)
	defer func() { end(err) }()

	p := filter.Params()
	args = append(args, p.Limit, p.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products = []domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}
	rows.Close()

	// A window past the last row carries no total_count.
	if len(products) == 0 && p.Offset() > 0 {
		countQuery := "SELECT count(*) FROM products WHERE " + where
		if err := r.db.QueryRow(ctx, countQuery, args[:filterArgs]...).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count products: %w", err)
		}
	}
	return products, total, nil
}

func scanProduct(row pgx.Row, extra ...any) (domain.Product, error) {
	var (
		p      domain.Product
		specs  []byte
		images []byte
	)
	dest := []any{
		&p.ID,
		&p.InternalCode,
		&p.Name,
		&p.AutoGenerateName,
		&p.LegacyBarcode,
		&p.Barcodes,
		&p.PrincipalBarcode,
		&p.BrandID,
		&p.SupplierID,
		&p.CategoryID,
		&p.SubcategoryIDs,
		&p.Price,
		&p.TaxRate,
		&p.Stock,
		&p.LowStockThreshold,
		&p.EcommerceActive,
		&specs,
		&images,
		&p.PrimaryImage,
		&p.CreatedAt,
		&p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return domain.Product{}, err
	}
	if len(specs) > 0 {
		if err := json.Unmarshal(specs, &p.Specifications); err != nil {
			return domain.Product{}, fmt.Errorf("unmarshal specifications: %w", err)
		}
	}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &p.Images); err != nil {
			return domain.Product{}, fmt.Errorf("unmarshal images: %w", err)
		}
	}
	if len(p.Specifications) == 0 {
		p.Specifications = nil
	}
	if len(p.Images) == 0 {
		p.Images = nil
	}
	p.Barcodes = stringsOrEmpty(p.Barcodes)
	p.SubcategoryIDs = stringsOrEmpty(p.SubcategoryIDs)
	return p, nil
}
