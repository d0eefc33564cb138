package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func index(name string, keys bson.D, unique, sparse bool) mongodriver.IndexModel {
	opts := options.Index().SetName(name)
	if unique {
		opts.SetUnique(true)
	}
	if sparse {
		opts.SetSparse(true)
	}
	return mongodriver.IndexModel{Keys: keys, Options: opts}
}

var collectionIndexes = map[string][]mongodriver.IndexModel{
	ProductsCollection: {
		index("codigoInterno_unique", bson.D{{"codigoInterno", 1}}, true, false),
		index("codigosBarras_unique", bson.D{{"codigosBarras", 1}}, true, true),
		index("nombre", bson.D{{"nombre", 1}}, false, false),
		index("marcaId", bson.D{{"marcaId", 1}}, false, false),
		index("categoriaId", bson.D{{"categoriaId", 1}}, false, false),
		index("proveedorId", bson.D{{"proveedorId", 1}}, false, false),
		index("stock", bson.D{{"stock", 1}}, false, false),
		index("especificacionId", bson.D{{"especificaciones.especificacionId", 1}}, false, false),
		index("especificacionValor", bson.D{{"especificaciones.valor", 1}}, false, false),
		index("visible_createdAt", bson.D{{"activoEcommerce", 1}, {"createdAt", -1}}, false, false),
	},
	CategoriesCollection: {
		index("nombre_unique", bson.D{{"nombre", 1}}, true, false),
		index("slug_unique", bson.D{{"slug", 1}}, true, true),
		index("subcategoriaNombre", bson.D{{"subcategorias.nombre", 1}}, false, false),
	},
	BrandsCollection: {
		index("nombre_unique", bson.D{{"nombre", 1}}, true, false),
		index("slug_unique", bson.D{{"slug", 1}}, true, true),
	},
}

// EnsureIndexes creates the catalog indexes. Unique indexes back the
// uniqueness rules of the write path.
func EnsureIndexes(ctx context.Context, db *mongodriver.Database) error {
	for _, name := range []string{ProductsCollection, CategoriesCollection, BrandsCollection} {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, collectionIndexes[name]); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}
