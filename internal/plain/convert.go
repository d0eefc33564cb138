package plain

import "time"

// TimeLayout is the ISO-8601 form timestamps are rendered in.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Convert reduces v to the JSON-safe subset: timestamps become ISO-8601
// strings, identifiers become their string form, binary blobs become null.
// Arrays and objects are converted element-wise into new containers, so v is
// never modified. Convert is idempotent.
func Convert(v Value) Value {
	switch v.kind {
	case KindTime:
		return String(FormatTime(v.at))
	case KindBinary:
		return Null()
	case KindID:
		return String(v.str)
	case KindArray:
		items := make([]Value, len(v.items))
		for i, item := range v.items {
			items[i] = Convert(item)
		}
		return Array(items...)
	case KindObject:
		fields := make([]Field, len(v.fields))
		for i, f := range v.fields {
			fields[i] = Field{Key: f.Key, Value: Convert(f.Value)}
		}
		return Object(fields...)
	default:
		return v
	}
}

// FormatTime renders t in UTC with millisecond precision.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ConvertAll converts every value of vs into a new array value.
func ConvertAll(vs []Value) Value {
	items := make([]Value, len(vs))
	for i, v := range vs {
		items[i] = Convert(v)
	}
	return Array(items...)
}
