package mongo

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/maticamisay/eldisco-ecommerce/internal/domain"
	"github.com/maticamisay/eldisco-ecommerce/internal/repository"
	"github.com/maticamisay/eldisco-ecommerce/pkg/database"
	apperrors "github.com/maticamisay/eldisco-ecommerce/pkg/errors"
)

// ProductRepository implements repository.ProductRepository over the
// products collection.
type ProductRepository struct {
	coll *mongodriver.Collection
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

// NewProductRepository creates a product repository on db.
func NewProductRepository(db *mongodriver.Database) *ProductRepository {
	return &ProductRepository{coll: db.Collection(ProductsCollection)}
}

func productKeys(p *domain.Product) []uniqueKey {
	return []uniqueKey{
		{key: "codigoInterno", field: "internal code", value: p.InternalCode},
		{key: "_id", field: "id", value: p.ID},
	}
}

// Create inserts a new product and sets its ID.
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "products.insertOne", "")
	defer func() { end(err) }()

	id, err := objectID(product.ID)
	if err != nil {
		return apperrors.InvalidInput("product id must be a valid object id")
	}
	doc := toProductDoc(product, id)
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert product: %w", mapWriteError(err, "product", productKeys(product)...))
	}
	product.ID = id.Hex()
	return nil
}

// Update sets every mutable field of the product. codigoInterno and
// createdAt are left untouched.
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "products.updateOne", "")
	defer func() { end(err) }()

	id, err := primitive.ObjectIDFromHex(product.ID)
	if err != nil {
		return apperrors.NotFound("product", product.ID)
	}
	update, err := productUpdate(toProductDoc(product, id))
	if err != nil {
		return err
	}
	res, err := r.coll.UpdateOne(ctx, bson.D{{"_id", id}}, update)
	if err != nil {
		return fmt.Errorf("update product: %w", mapWriteError(err, "product", productKeys(product)...))
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("product", product.ID)
	}
	return nil
}

func productUpdate(doc productDoc) (bson.D, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode product: %w", err)
	}
	var fields bson.D
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("encode product: %w", err)
	}

	set := make(bson.D, 0, len(fields))
	present := make(map[string]bool, len(fields))
	for _, e := range fields {
		present[e.Key] = true
		switch e.Key {
		case "_id", "codigoInterno", "createdAt":
			continue
		}
		set = append(set, e)
	}
	unset := bson.D{}
	for _, k := range optionalProductKeys {
		if !present[k] {
			unset = append(unset, bson.E{Key: k, Value: ""})
		}
	}

	update := bson.D{{"$set", set}}
	if len(unset) > 0 {
		update = append(update, bson.E{Key: "$unset", Value: unset})
	}
	return update, nil
}

// GetByInternalCode retrieves a product by exact internal code.
func (r *ProductRepository) GetByInternalCode(ctx context.Context, code string) (*domain.Product, error) {
	var doc productDoc
	found, err := r.findOne(ctx, "products.findOne", bson.D{{"codigoInterno", code}}, &doc)
	if err != nil {
		return nil, fmt.Errorf("get product by internal code: %w", err)
	}
	if !found {
		return nil, apperrors.NotFound("product", code)
	}
	p := doc.toDomain()
	return &p, nil
}

// InternalCodeExists reports whether code is already assigned.
func (r *ProductRepository) InternalCodeExists(ctx context.Context, code string) (bool, error) {
	var doc struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	found, err := r.findOne(ctx, "products.findOne", bson.D{{"codigoInterno", code}}, &doc,
		options.FindOne().SetProjection(bson.D{{"_id", 1}}))
	if err != nil {
		return false, fmt.Errorf("check internal code: %w", err)
	}
	return found, nil
}

// FindBarcodeOwner returns the id of the product holding barcode.
func (r *ProductRepository) FindBarcodeOwner(ctx context.Context, barcode string) (string, bool, error) {
	var doc struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	found, err := r.findOne(ctx, "products.findOne", bson.D{{"codigosBarras", barcode}}, &doc,
		options.FindOne().SetProjection(bson.D{{"_id", 1}}))
	if err != nil {
		return "", false, fmt.Errorf("find barcode owner: %w", err)
	}
	if !found {
		return "", false, nil
	}
	return doc.ID.Hex(), true, nil
}

func (r *ProductRepository) findOne(ctx context.Context, op string, filter bson.D, out any, opts ...*options.FindOneOptions) (bool, error) {
	ctx, end := database.TraceQuery(ctx, database.SystemMongo, op, "")
	err := r.coll.FindOne(ctx, filter, opts...).Decode(out)
	if isNoDocuments(err) {
		end(nil)
		return false, nil
	}
	end(err)
	if err != nil {
		return false, err
	}
	return true, nil
}

// VisibleFilter builds the query document for a public listing.
func VisibleFilter(f repository.ProductFilter) bson.D {
	filter := bson.D{{"activoEcommerce", true}}
	if f.Search != nil && *f.Search != "" {
		pattern := regexp.QuoteMeta(*f.Search)
		regex := bson.D{{"$regex", pattern}, {"$options", "i"}}
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{"nombre", regex}},
			bson.D{{"codigoInterno", regex}},
			bson.D{{"codigosBarras", bson.D{{"$in", bson.A{primitive.Regex{Pattern: pattern, Options: "i"}}}}}},
		}})
	}
	if f.CategoryID != nil {
		filter = append(filter, bson.E{Key: "categoriaId", Value: *f.CategoryID})
	}
	if f.BrandID != nil {
		filter = append(filter, bson.E{Key: "marcaId", Value: *f.BrandID})
	}
	if f.MaxPrice != nil {
		filter = append(filter, bson.E{Key: "precio", Value: bson.D{{"$lte", *f.MaxPrice}}})
	}
	return filter
}

// ListVisible returns one page of visible products, newest first, and the
// number of matches.
func (r *ProductRepository) ListVisible(ctx context.Context, f repository.ProductFilter) (products []domain.Product, total int, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "products.find", "")
	defer func() { end(err) }()

	filter := VisibleFilter(f)
	p := f.Params()

	count, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{"createdAt", -1}, {"_id", -1}}).
		SetSkip(int64(p.Offset())).
		SetLimit(int64(p.Limit))
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find products: %w", err)
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode products: %w", err)
	}

	products = make([]domain.Product, 0, len(docs))
	for i := range docs {
		products = append(products, docs[i].toDomain())
	}
	return products, int(count), nil
}
