package record

import (
	"bytes"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/keith-mcqueen/Temples/internal/shared/errors"
)

// Record is an ordered mapping of field name to value. Values are strings,
// numbers, nested *Record values, or slices of those. Keys keep the position
// of their first insertion.
type Record struct {
	keys   []string
	values map[string]any
}

// New returns an empty record.
func New() *Record {
	return &Record{values: make(map[string]any)}
}

// Of builds a record from alternating key/value arguments.
func Of(kv ...any) *Record {
	if len(kv)%2 != 0 {
		panic("record.Of: odd number of arguments")
	}
	r := New()
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("record.Of: key at %d is %T, not string", i, kv[i]))
		}
		r.Set(key, kv[i+1])
	}
	return r
}

// FromFields pairs a header with a row of cells. Missing cells become "".
// Extra cells are ignored.
func FromFields(header, cells []string) *Record {
	r := &Record{
		keys:   make([]string, 0, len(header)),
		values: make(map[string]any, len(header)),
	}
	for i, name := range header {
		value := ""
		if i < len(cells) {
			value = cells[i]
		}
		r.Set(name, value)
	}
	return r
}

// Set stores value under key. An existing key keeps its position.
func (r *Record) Set(key string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value for key and whether it was present.
func (r *Record) Get(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.values[key]
	return v, ok
}

// Has reports whether key is present.
func (r *Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// String returns the value for key when it is present and a string.
func (r *Record) String(key string) (string, bool) {
	v, ok := r.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Require returns the value for key or a MissingFieldError.
func (r *Record) Require(key string) (any, error) {
	v, ok := r.Get(key)
	if !ok {
		return nil, &errors.MissingFieldError{Field: key}
	}
	return v, nil
}

// List returns the value for key as a slice. A missing key yields nil.
func (r *Record) List(key string) []any {
	v, ok := r.Get(key)
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []any:
		return list
	case []*Record:
		out := make([]any, len(list))
		for i, item := range list {
			out[i] = item
		}
		return out
	case []string:
		out := make([]any, len(list))
		for i, item := range list {
			out[i] = item
		}
		return out
	default:
		return nil
	}
}

// Delete removes key.
func (r *Record) Delete(key string) {
	if _, ok := r.values[key]; !ok {
		return
	}
	delete(r.values, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the field names in insertion order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Range calls fn for each field in order until fn returns false.
func (r *Record) Range(fn func(key string, value any) bool) {
	if r == nil {
		return
	}
	for _, k := range r.keys {
		if !fn(k, r.values[k]) {
			return
		}
	}
}

// Update copies every field of other into r. Keys already present keep
// their position and take the new value; new keys are appended.
func (r *Record) Update(other *Record) {
	other.Range(func(k string, v any) bool {
		r.Set(k, v)
		return true
	})
}

// Clone returns a shallow copy.
func (r *Record) Clone() *Record {
	c := &Record{
		keys:   r.Keys(),
		values: make(map[string]any, r.Len()),
	}
	r.Range(func(k string, v any) bool {
		c.values[k] = v
		return true
	})
	return c
}

// MarshalJSON encodes the record as an object with fields in insertion order.
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := sonic.ConfigStd.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := sonic.ConfigStd.Marshal(r.values[k])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
