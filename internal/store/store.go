// Package store holds the flat, key-value view of the refractive index
// database and its on-disk encodings.
package store

import (
	"iter"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/lehigh-university-libraries/ria/internal/dispersion"
)

// Separator joins the shelf, book and page keys of a composite key.
const Separator = ":"

// Key builds the composite "shelf:book:page" key.
func Key(shelf, book, page string) string {
	return shelf + Separator + book + Separator + page
}

// SplitKey splits a composite key. The page part keeps any further separators.
func SplitKey(key string) (shelf, book, page string, ok bool) {
	parts := strings.SplitN(key, Separator, 3)
	if len(parts) != 3 {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

// Item is the normalized record of one catalog page.
type Item struct {
	Shelf      string            `json:"shelf" yaml:"shelf"`
	Book       string            `json:"book" yaml:"book"`
	Page       string            `json:"page" yaml:"page"`
	Comments   string            `json:"comments" yaml:"comments"`
	References string            `json:"references" yaml:"references"`
	Data       []dispersion.Data `json:"data" yaml:"data"`
}

// N returns the real refractive index at wavelength.
func (i Item) N(wavelength float64) (float64, error) {
	return dispersion.N(i.Data, wavelength)
}

// K returns the extinction coefficient at wavelength.
func (i Item) K(wavelength float64) (float64, error) {
	return dispersion.K(i.Data, wavelength)
}

// HasK reports whether any entry supplies the extinction coefficient.
func (i Item) HasK() bool {
	for _, d := range i.Data {
		if d.Role() != dispersion.Real {
			return true
		}
	}
	return false
}

// Store maps composite keys to items. It is safe for concurrent use.
type Store struct {
	items map[string]Item
	mu    sync.RWMutex
}

func New() *Store {
	return &Store{
		items: make(map[string]Item),
	}
}

func (s *Store) Get(key string) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, exists := s.items[key]
	return item, exists
}

// Insert stores item under key, replacing any previous item.
func (s *Store) Insert(key string, item Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = item
}

// Remove deletes key and returns the item it held.
func (s *Store) Remove(key string) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, exists := s.items[key]
	delete(s.items, key)
	return item, exists
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Keys yields every key present when iteration starts, in no particular
// order.
func (s *Store) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		s.mu.RLock()
		keys := slices.Collect(maps.Keys(s.items))
		s.mu.RUnlock()

		for _, key := range keys {
			if !yield(key) {
				return
			}
		}
	}
}

// SortedKeys returns the keys in lexical order.
func (s *Store) SortedKeys() []string {
	return slices.Sorted(s.Keys())
}

// Retain keeps only the keys for which keep returns true. keep runs without
// the store lock held, so it may call back into the store; keys inserted
// while it runs are kept.
func (s *Store) Retain(keep func(key string) bool) {
	var drop []string
	for key := range s.Keys() {
		if !keep(key) {
			drop = append(drop, key)
		}
	}
	s.RemoveMany(drop)
}

// RetainKeys keeps only the listed keys.
func (s *Store) RetainKeys(keys []string) {
	allowed := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		allowed[key] = struct{}{}
	}
	s.Retain(func(key string) bool {
		_, ok := allowed[key]
		return ok
	})
}

// RemoveMany deletes every listed key. Unknown keys are ignored.
func (s *Store) RemoveMany(keys []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.items, key)
	}
}

// snapshot copies the map so encoders do not hold the lock.
func (s *Store) snapshot() map[string]Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.items)
}
