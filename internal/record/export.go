package record

import (
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/keith-mcqueen/Temples/internal/shared/errors"
)

// Export accumulates projected records either as a sequence or keyed by a
// primary-key field.
type Export struct {
	keyField string
	seq      []*Record
	keyed    *Record
}

// NewSequence returns an export that keeps records in insertion order,
// duplicates included.
func NewSequence() *Export {
	return &Export{}
}

// NewKeyed returns an export indexed by keyField. Later records with the same
// key replace earlier ones; the key keeps its first position.
func NewKeyed(keyField string) *Export {
	return &Export{keyField: keyField, keyed: New()}
}

// Keyed reports whether the export is indexed by a primary key.
func (e *Export) Keyed() bool {
	return e.keyed != nil
}

// KeyField returns the primary-key field, or "" in sequence mode.
func (e *Export) KeyField() string {
	return e.keyField
}

// Add appends projected. In keyed mode the key is read from raw, so the key
// field does not have to be among the projected fields.
func (e *Export) Add(raw, projected *Record) error {
	if !e.Keyed() {
		e.seq = append(e.seq, projected)
		return nil
	}

	v, ok := raw.Get(e.keyField)
	if !ok {
		return &errors.MissingFieldError{Field: e.keyField}
	}
	key, ok := v.(string)
	if !ok {
		key = fmt.Sprint(v)
	}
	e.keyed.Set(key, projected)
	return nil
}

// Len returns the number of distinct entries.
func (e *Export) Len() int {
	if e.Keyed() {
		return e.keyed.Len()
	}
	return len(e.seq)
}

// Records returns the entries in output order.
func (e *Export) Records() []*Record {
	if !e.Keyed() {
		out := make([]*Record, len(e.seq))
		copy(out, e.seq)
		return out
	}
	out := make([]*Record, 0, e.keyed.Len())
	e.keyed.Range(func(_ string, v any) bool {
		out = append(out, v.(*Record))
		return true
	})
	return out
}

// Lookup returns the record stored under key in keyed mode.
func (e *Export) Lookup(key string) (*Record, bool) {
	if !e.Keyed() {
		return nil, false
	}
	v, ok := e.keyed.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*Record), true
}

// MarshalJSON encodes a sequence as an array and a keyed export as an object.
func (e *Export) MarshalJSON() ([]byte, error) {
	if e.Keyed() {
		return e.keyed.MarshalJSON()
	}
	if e.seq == nil {
		return []byte("[]"), nil
	}
	return sonic.ConfigStd.Marshal(e.seq)
}
