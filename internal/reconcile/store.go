package reconcile

import (
	"github.com/keith-mcqueen/Temples/internal/record"
)

// Store holds canonical entities keyed by normalized name, in first-seen
// order.
type Store struct {
	entities *record.Record
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{entities: record.New()}
}

// Lookup returns the entity stored under key.
func (s *Store) Lookup(key string) (*record.Record, bool) {
	v, ok := s.entities.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*record.Record), true
}

// Len returns the number of entities.
func (s *Store) Len() int {
	return s.entities.Len()
}

// Keys returns the entity keys in insertion order.
func (s *Store) Keys() []string {
	return s.entities.Keys()
}

func (s *Store) insert(key string, entity *record.Record) {
	s.entities.Set(key, entity)
}

// MarshalJSON encodes the store as an object keyed by entity name.
func (s *Store) MarshalJSON() ([]byte, error) {
	return s.entities.MarshalJSON()
}
