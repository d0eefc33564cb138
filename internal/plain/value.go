// Package plain holds the serializable value model that storefront pages and
// JSON responses are rendered from. Store adapters produce Values; Convert
// reduces them to the JSON-safe subset.
package plain

import (
	"time"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindTime
	KindBinary
	KindID
	KindArray
	KindObject
)

var kindNames = [...]string{
	KindNull:   "null",
	KindString: "string",
	KindNumber: "number",
	KindBool:   "bool",
	KindTime:   "time",
	KindBinary: "binary",
	KindID:     "id",
	KindArray:  "array",
	KindObject: "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Field is one key of an object. Objects keep their fields in insertion order.
type Field struct {
	Key   string
	Value Value
}

// Value is a closed tagged variant. The zero Value is Null.
type Value struct {
	kind   Kind
	str    string // String, ID
	num    float64
	flag   bool
	at     time.Time
	bin    []byte
	items  []Value
	fields []Field
}

// Null returns the null value.
func Null() Value { return Value{} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Int returns a numeric value from an integer.
func Int(i int64) Value { return Value{kind: KindNumber, num: float64(i)} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// Time returns a timestamp value.
func Time(t time.Time) Value { return Value{kind: KindTime, at: t} }

// Binary returns a binary blob value. The slice is not copied.
func Binary(b []byte) Value { return Value{kind: KindBinary, bin: b} }

// ID returns a store identifier value holding its canonical string form.
func ID(hex string) Value { return Value{kind: KindID, str: hex} }

// Array returns an array value.
func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, items: items}
}

// Object returns an object value with the given fields in order.
func Object(fields ...Field) Value {
	if fields == nil {
		fields = []Field{}
	}
	return Value{kind: KindObject, fields: fields}
}

// F is shorthand for a Field literal.
func F(key string, v Value) Field { return Field{Key: key, Value: v} }

// Strings returns an array of string values.
func Strings(ss []string) Value {
	items := make([]Value, len(ss))
	for i, s := range ss {
		items[i] = String(s)
	}
	return Array(items...)
}

// OptString returns String(*s), or Null when s is nil.
func OptString(s *string) Value {
	if s == nil {
		return Null()
	}
	return String(*s)
}

// OptInt returns Int(*i), or Null when i is nil.
func OptInt(i *int) Value {
	if i == nil {
		return Null()
	}
	return Int(int64(*i))
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsScalar reports whether v is a string, number or boolean.
func (v Value) IsScalar() bool {
	return v.kind == KindString || v.kind == KindNumber || v.kind == KindBool
}

// Str returns the string form of a String or ID value.
func (v Value) Str() string { return v.str }

// Num returns the number held by a Number value.
func (v Value) Num() float64 { return v.num }

// Bool returns the flag held by a Bool value.
func (v Value) Bool() bool { return v.flag }

// Time returns the timestamp held by a Time value.
func (v Value) Time() time.Time { return v.at }

// Bytes returns the blob held by a Binary value.
func (v Value) Bytes() []byte { return v.bin }

// Items returns the elements of an Array value.
func (v Value) Items() []Value { return v.items }

// Fields returns the fields of an Object value.
func (v Value) Fields() []Field { return v.fields }

// Len returns the number of elements or fields.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.items)
	case KindObject:
		return len(v.fields)
	}
	return 0
}

// Get returns the value stored under key in an Object.
func (v Value) Get(key string) (Value, bool) {
	for _, f := range v.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// With returns a copy of the object v with key set to val. An existing key is
// replaced in place, a new key is appended.
func (v Value) With(key string, val Value) Value {
	fields := make([]Field, 0, len(v.fields)+1)
	replaced := false
	for _, f := range v.fields {
		if f.Key == key {
			f.Value = val
			replaced = true
		}
		fields = append(fields, f)
	}
	if !replaced {
		fields = append(fields, Field{Key: key, Value: val})
	}
	return Value{kind: KindObject, fields: fields}
}

// Equal reports deep equality. Object field order is significant.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindString, KindID:
		return a.str == b.str
	case KindNumber:
		return a.num == b.num
	case KindBool:
		return a.flag == b.flag
	case KindTime:
		return a.at.Equal(b.at)
	case KindBinary:
		return string(a.bin) == string(b.bin)
	case KindArray:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.fields) != len(b.fields) {
			return false
		}
		for i := range a.fields {
			if a.fields[i].Key != b.fields[i].Key || !Equal(a.fields[i].Value, b.fields[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}
