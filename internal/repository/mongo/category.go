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

// CategoryRepository implements repository.CategoryRepository over the
// categories collection.
type CategoryRepository struct {
	coll *mongodriver.Collection
}

var _ repository.CategoryRepository = (*CategoryRepository)(nil)

// NewCategoryRepository creates a category repository on db.
func NewCategoryRepository(db *mongodriver.Database) *CategoryRepository {
	return &CategoryRepository{coll: db.Collection(CategoriesCollection)}
}

func categoryKeys(c *domain.Category) []uniqueKey {
	return []uniqueKey{
		{key: "slug", field: "slug", value: c.Slug},
		{key: "nombre", field: "name", value: c.Name},
	}
}

func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "categories.insertOne", "")
	defer func() { end(err) }()

	id, err := objectID(category.ID)
	if err != nil {
		return apperrors.InvalidInput("category id must be a valid object id")
	}
	doc, err := toCategoryDoc(category, id)
	if err != nil {
		return apperrors.InvalidInput("subcategory id must be a valid object id")
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert category: %w", mapWriteError(err, "category", categoryKeys(category)...))
	}
	category.ID = id.Hex()
	return nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *domain.Category) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "categories.replaceOne", "")
	defer func() { end(err) }()

	id, err := primitive.ObjectIDFromHex(category.ID)
	if err != nil {
		return apperrors.NotFound("category", category.ID)
	}
	doc, err := toCategoryDoc(category, id)
	if err != nil {
		return apperrors.InvalidInput("subcategory id must be a valid object id")
	}
	res, err := r.coll.ReplaceOne(ctx, bson.D{{"_id", id}}, doc)
	if err != nil {
		return fmt.Errorf("update category: %w", mapWriteError(err, "category", categoryKeys(category)...))
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("category", category.ID)
	}
	return nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.NotFound("category", id)
	}
	return r.getOne(ctx, bson.D{{"_id", oid}}, id)
}

func (r *CategoryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	if slug == "" {
		return nil, apperrors.NotFound("category", "slug")
	}
	return r.getOne(ctx, bson.D{{"slug", slug}}, slug)
}

func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	return r.getOne(ctx, bson.D{{"nombre", name}}, name)
}

func (r *CategoryRepository) getOne(ctx context.Context, filter bson.D, key string) (c *domain.Category, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "categories.findOne", "")
	defer func() { end(err) }()

	var doc categoryDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, apperrors.NotFound("category", key)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	out := doc.toDomain()
	return &out, nil
}

// ListAll returns every category ordered by name.
func (r *CategoryRepository) ListAll(ctx context.Context) (categories []domain.Category, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "categories.find", "")
	defer func() { end(err) }()

	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{"nombre", 1}}))
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	var docs []categoryDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	categories = make([]domain.Category, 0, len(docs))
	for i := range docs {
		categories = append(categories, docs[i].toDomain())
	}
	return categories, nil
}
