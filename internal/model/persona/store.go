package persona

import "math/rand"

// Store exposes personality lookup for the engine and handlers.
type Store interface {
	List() []Personality
	Find(key string) (Personality, bool)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Personality
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied table.
func NewMemoryStore(items []Personality) *MemoryStore {
	return &MemoryStore{items: append([]Personality(nil), items...)}
}

// List returns the personality table in definition order.
func (s *MemoryStore) List() []Personality {
	return append([]Personality(nil), s.items...)
}

// Find looks up a personality by key.
func (s *MemoryStore) Find(key string) (Personality, bool) {
	for _, item := range s.items {
		if item.Key == key {
			return item, true
		}
	}
	return Personality{}, false
}

// Resolve returns the personality for key, falling back to the default entry
// when the key is absent from the table (the table may have changed between
// sessions). An empty table resolves to the built-in default.
func Resolve(s Store, key string) Personality {
	if p, ok := s.Find(key); ok {
		return p
	}
	if p, ok := s.Find(DefaultKey); ok {
		return p
	}
	if items := s.List(); len(items) > 0 {
		return items[0]
	}
	return Seed()[0]
}

// Pick resolves key like Resolve, additionally honoring the RandomKey
// selector by drawing a random entry from the table.
func Pick(s Store, key string) Personality {
	if key == RandomKey {
		if items := s.List(); len(items) > 0 {
			return items[rand.Intn(len(items))]
		}
	}
	return Resolve(s, key)
}
