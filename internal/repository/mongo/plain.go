package mongo

import (
	"fmt"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/maticamisay/eldisco-ecommerce/internal/plain"
)

// PlainFromBSON maps a decoded driver value to a plain.Value. Embedded
// documents keep their key order; unknown types render as their string form.
func PlainFromBSON(v any) plain.Value {
	switch t := v.(type) {
	case nil:
		return plain.Null()
	case string:
		return plain.String(t)
	case bool:
		return plain.Bool(t)
	case int32:
		return plain.Int(int64(t))
	case int64:
		return plain.Int(t)
	case int:
		return plain.Int(int64(t))
	case float64:
		return plain.Number(t)
	case primitive.ObjectID:
		return plain.ID(t.Hex())
	case primitive.DateTime:
		return plain.Time(t.Time())
	case time.Time:
		return plain.Time(t)
	case primitive.Binary:
		return plain.Binary(t.Data)
	case []byte:
		return plain.Binary(t)
	case primitive.Null, primitive.Undefined:
		return plain.Null()
	case primitive.D:
		fields := make([]plain.Field, len(t))
		for i, e := range t {
			fields[i] = plain.F(e.Key, PlainFromBSON(e.Value))
		}
		return plain.Object(fields...)
	case primitive.M:
		return PlainFromBSON(sortedD(t))
	case primitive.A:
		items := make([]plain.Value, len(t))
		for i, item := range t {
			items[i] = PlainFromBSON(item)
		}
		return plain.Array(items...)
	case []any:
		return PlainFromBSON(primitive.A(t))
	default:
		return plain.String(fmt.Sprint(t))
	}
}

// scalarToBSON converts a specification value for storage.
func scalarToBSON(v plain.Value) any {
	switch v.Kind() {
	case plain.KindString:
		return v.Str()
	case plain.KindNumber:
		return v.Num()
	case plain.KindBool:
		return v.Bool()
	default:
		return nil
	}
}

func sortedD(m primitive.M) primitive.D {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	d := make(primitive.D, 0, len(m))
	for _, k := range keys {
		d = append(d, primitive.E{Key: k, Value: m[k]})
	}
	return d
}
