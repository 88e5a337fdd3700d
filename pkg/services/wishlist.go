package services

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/kerbaras/gutenshelf/pkg/data"
	"github.com/kerbaras/gutenshelf/pkg/errors"
)

const (
	msgDuplicate = "The book has been already in the wishlist"
	msgRemoved   = "The book has been removed from Wishlist!!"
)

type WishlistListener func(books []data.Book)

// WishlistStore is the single owner of the persisted wishlist. Every view
// reads the same in-memory list and reacts to changes through Subscribe.
//
// Mutations re-read the persisted collection, modify it and write it back
// whole. Writers in other processes are not coordinated: the last write wins.
type WishlistStore struct {
	store    KeyValueStore
	notifier Notifier
	logger   zerolog.Logger

	mu        sync.Mutex
	books     []data.Book
	loaded    bool
	listeners map[int]WishlistListener
	nextID    int
}

func NewWishlistStore(store KeyValueStore, notifier Notifier, logger zerolog.Logger) *WishlistStore {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &WishlistStore{
		store:     store,
		notifier:  notifier,
		logger:    logger,
		listeners: make(map[int]WishlistListener),
	}
}

// List returns the current wishlist. Unreadable state yields an empty list.
func (w *WishlistStore) List() []data.Book {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.loaded {
		if err := w.load(); err != nil {
			w.logger.Error().Err(err).Msg("failed to read wishlist")
			return []data.Book{}
		}
	}
	return cloneBooks(w.books)
}

func (w *WishlistStore) Contains(id int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.loaded {
		if err := w.load(); err != nil {
			w.logger.Error().Err(err).Msg("failed to read wishlist")
			return false
		}
	}
	return indexOf(w.books, id) >= 0
}

// Get returns a copy of the wishlisted book with id, or nil.
func (w *WishlistStore) Get(id int) *data.Book {
	for _, b := range w.List() {
		if b.ID == id {
			return &b
		}
	}
	return nil
}

func (w *WishlistStore) Len() int {
	return len(w.List())
}

// Add appends a snapshot of book. A book already present is rejected with
// an error matching errors.ErrDuplicateEntry and nothing is written.
func (w *WishlistStore) Add(book data.Book) error {
	w.mu.Lock()
	if err := w.load(); err != nil {
		w.mu.Unlock()
		return fmt.Errorf("failed to add book %d: %w", book.ID, err)
	}

	if indexOf(w.books, book.ID) >= 0 {
		w.mu.Unlock()
		w.notifier.Notify(Notification{Kind: NotifyError, Message: msgDuplicate})
		return &errors.DuplicateEntryError{ID: book.ID, Title: book.Title}
	}

	next := append(cloneBooks(w.books), cloneBook(book))
	if err := w.persist(next); err != nil {
		w.mu.Unlock()
		return fmt.Errorf("failed to add book %d: %w", book.ID, err)
	}
	snapshot, listeners := w.commit(next)
	w.mu.Unlock()

	w.logger.Debug().Int("id", book.ID).Msg("added book to wishlist")
	w.notifier.Notify(Notification{
		Kind:    NotifySuccess,
		Message: fmt.Sprintf("%s has been added to the Wishlist", book.Title),
	})
	fire(listeners, snapshot)
	return nil
}

// Remove deletes the book with id. Removing an absent id succeeds.
func (w *WishlistStore) Remove(id int) error {
	w.mu.Lock()
	if err := w.load(); err != nil {
		w.mu.Unlock()
		return fmt.Errorf("failed to remove book %d: %w", id, err)
	}

	i := indexOf(w.books, id)
	if i < 0 {
		w.mu.Unlock()
		w.notifier.Notify(Notification{Kind: NotifySuccess, Message: msgRemoved})
		return nil
	}

	next := make([]data.Book, 0, len(w.books)-1)
	next = append(next, w.books[:i]...)
	next = append(next, w.books[i+1:]...)
	if err := w.persist(next); err != nil {
		w.mu.Unlock()
		return fmt.Errorf("failed to remove book %d: %w", id, err)
	}
	snapshot, listeners := w.commit(next)
	w.mu.Unlock()

	w.logger.Debug().Int("id", id).Msg("removed book from wishlist")
	w.notifier.Notify(Notification{Kind: NotifySuccess, Message: msgRemoved})
	fire(listeners, snapshot)
	return nil
}

// Reload re-reads the persisted collection and notifies subscribers.
func (w *WishlistStore) Reload() error {
	w.mu.Lock()
	if err := w.load(); err != nil {
		w.mu.Unlock()
		return err
	}
	snapshot, listeners := cloneBooks(w.books), w.snapshotListeners()
	w.mu.Unlock()

	fire(listeners, snapshot)
	return nil
}

// Subscribe registers fn for changes and returns a function removing it.
func (w *WishlistStore) Subscribe(fn WishlistListener) func() {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.nextID
	w.nextID++
	w.listeners[id] = fn
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.listeners, id)
	}
}

// load must be called with w.mu held.
func (w *WishlistStore) load() error {
	raw, ok, err := w.store.Get(data.KeyWishlist)
	if err != nil {
		return err
	}

	books := []data.Book{}
	if ok {
		books, err = DecodeWishlist(raw)
		if err != nil {
			w.logger.Warn().Err(err).Msg("persisted wishlist is unreadable, starting empty")
			books = []data.Book{}
		}
	}
	w.books = books
	w.loaded = true
	return nil
}

func (w *WishlistStore) persist(books []data.Book) error {
	raw, err := json.Marshal(books)
	if err != nil {
		return err
	}
	return w.store.Set(data.KeyWishlist, string(raw))
}

func (w *WishlistStore) commit(books []data.Book) ([]data.Book, []WishlistListener) {
	w.books = books
	w.loaded = true
	return cloneBooks(books), w.snapshotListeners()
}

func (w *WishlistStore) snapshotListeners() []WishlistListener {
	out := make([]WishlistListener, 0, len(w.listeners))
	for _, fn := range w.listeners {
		out = append(out, fn)
	}
	return out
}

// DecodeWishlist parses a persisted wishlist. Later duplicates of an id are
// dropped so the result never holds two entries with the same id.
func DecodeWishlist(raw string) ([]data.Book, error) {
	var books []data.Book
	if err := json.Unmarshal([]byte(raw), &books); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrCorruptState, err)
	}

	out := make([]data.Book, 0, len(books))
	for _, b := range books {
		if indexOf(out, b.ID) >= 0 {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func fire(listeners []WishlistListener, books []data.Book) {
	for _, fn := range listeners {
		fn(books)
	}
}

func indexOf(books []data.Book, id int) int {
	for i, b := range books {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func cloneBooks(books []data.Book) []data.Book {
	out := make([]data.Book, len(books))
	for i, b := range books {
		out[i] = cloneBook(b)
	}
	return out
}

func cloneBook(b data.Book) data.Book {
	c := b
	c.Authors = slices.Clone(b.Authors)
	c.Subjects = slices.Clone(b.Subjects)
	c.Bookshelves = slices.Clone(b.Bookshelves)
	c.Languages = slices.Clone(b.Languages)
	c.Formats = maps.Clone(b.Formats)
	return c
}
