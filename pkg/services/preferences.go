package services

import (
	"fmt"

	"github.com/kerbaras/gutenshelf/pkg/data"
)

// KeyValueStore is the opaque string storage the UI state lives in.
type KeyValueStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Preferences persists the filter state between sessions.
type Preferences struct {
	store KeyValueStore
}

func NewPreferences(store KeyValueStore) *Preferences {
	return &Preferences{store: store}
}

func (p *Preferences) LoadFilter() (data.FilterState, error) {
	filter := data.DefaultFilter()

	query, _, err := p.store.Get(data.KeySearchQuery)
	if err != nil {
		return filter, fmt.Errorf("failed to load search query: %w", err)
	}
	filter.Query = query

	genre, ok, err := p.store.Get(data.KeySelectedGenre)
	if err != nil {
		return filter, fmt.Errorf("failed to load selected genre: %w", err)
	}
	if ok && genre != "" {
		filter.Genre = genre
	}
	return filter, nil
}

func (p *Preferences) SaveFilter(filter data.FilterState) error {
	if err := p.store.Set(data.KeySearchQuery, filter.Query); err != nil {
		return fmt.Errorf("failed to save search query: %w", err)
	}
	genre := filter.Genre
	if genre == "" {
		genre = data.AllGenres
	}
	if err := p.store.Set(data.KeySelectedGenre, genre); err != nil {
		return fmt.Errorf("failed to save selected genre: %w", err)
	}
	return nil
}
