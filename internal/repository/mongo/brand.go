package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/maticamisay/eldisco-ecommerce/internal/domain"
	"github.com/maticamisay/eldisco-ecommerce/internal/repository"
	"github.com/maticamisay/eldisco-ecommerce/pkg/database"
	apperrors "github.com/maticamisay/eldisco-ecommerce/pkg/errors"
)

// BrandRepository implements repository.BrandRepository over the brands
// collection.
type BrandRepository struct {
	coll *mongodriver.Collection
}

var _ repository.BrandRepository = (*BrandRepository)(nil)

// NewBrandRepository creates a brand repository on db.
func NewBrandRepository(db *mongodriver.Database) *BrandRepository {
	return &BrandRepository{coll: db.Collection(BrandsCollection)}
}

func brandKeys(b *domain.Brand) []uniqueKey {
	return []uniqueKey{
		{key: "slug", field: "slug", value: b.Slug},
		{key: "nombre", field: "name", value: b.Name},
	}
}

func (r *BrandRepository) Create(ctx context.Context, brand *domain.Brand) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "brands.insertOne", "")
	defer func() { end(err) }()

	id, err := objectID(brand.ID)
	if err != nil {
		return apperrors.InvalidInput("brand id must be a valid object id")
	}
	if _, err := r.coll.InsertOne(ctx, toBrandDoc(brand, id)); err != nil {
		return fmt.Errorf("insert brand: %w", mapWriteError(err, "brand", brandKeys(brand)...))
	}
	brand.ID = id.Hex()
	return nil
}

func (r *BrandRepository) Update(ctx context.Context, brand *domain.Brand) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "brands.replaceOne", "")
	defer func() { end(err) }()

	id, err := primitive.ObjectIDFromHex(brand.ID)
	if err != nil {
		return apperrors.NotFound("brand", brand.ID)
	}
	res, err := r.coll.ReplaceOne(ctx, bson.D{{"_id", id}}, toBrandDoc(brand, id))
	if err != nil {
		return fmt.Errorf("update brand: %w", mapWriteError(err, "brand", brandKeys(brand)...))
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("brand", brand.ID)
	}
	return nil
}

func (r *BrandRepository) GetByID(ctx context.Context, id string) (*domain.Brand, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.NotFound("brand", id)
	}
	return r.getOne(ctx, bson.D{{"_id", oid}}, id)
}

func (r *BrandRepository) GetBySlug(ctx context.Context, slug string) (*domain.Brand, error) {
	if slug == "" {
		return nil, apperrors.NotFound("brand", "slug")
	}
	return r.getOne(ctx, bson.D{{"slug", slug}}, slug)
}

func (r *BrandRepository) GetByName(ctx context.Context, name string) (*domain.Brand, error) {
	return r.getOne(ctx, bson.D{{"nombre", name}}, name)
}

func (r *BrandRepository) getOne(ctx context.Context, filter bson.D, key string) (b *domain.Brand, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "brands.findOne", "")
	defer func() { end(err) }()

	var doc brandDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, apperrors.NotFound("brand", key)
		}
		return nil, fmt.Errorf("get brand: %w", err)
	}
	out := doc.toDomain()
	return &out, nil
}

// ListAll returns every brand ordered by name.
func (r *BrandRepository) ListAll(ctx context.Context) (brands []domain.Brand, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "brands.find", "")
	defer func() { end(err) }()

	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{"nombre", 1}}))
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	var docs []brandDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode brands: %w", err)
	}
	brands = make([]domain.Brand, 0, len(docs))
	for i := range docs {
		brands = append(brands, docs[i].toDomain())
	}
	return brands, nil
}
