package services

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerbaras/gutenshelf/pkg/data"
	"github.com/kerbaras/gutenshelf/pkg/errors"
)

type recorder struct {
	notes []Notification
}

func (r *recorder) Notify(n Notification) { r.notes = append(r.notes, n) }

func newTestWishlist(t *testing.T) (*WishlistStore, *memStore, *recorder) {
	t.Helper()
	store := newMemStore()
	rec := &recorder{}
	return NewWishlistStore(store, rec, zerolog.Nop()), store, rec
}

func TestWishlist_Scenario(t *testing.T) {
	w, _, rec := newTestWishlist(t)
	alice := book(1, "Alice in Wonderland", "Fantasy")

	require.NoError(t, w.Add(alice))
	assert.Equal(t, []int{1}, ids(w.List()))

	err := w.Add(alice)
	assert.ErrorIs(t, err, errors.ErrDuplicateEntry)
	assert.Equal(t, []int{1}, ids(w.List()))

	require.NoError(t, w.Remove(1))
	assert.Empty(t, w.List())

	require.NoError(t, w.Remove(1))
	assert.Empty(t, w.List())

	require.Len(t, rec.notes, 4)
	assert.Equal(t, Notification{Kind: NotifySuccess, Message: "Alice in Wonderland has been added to the Wishlist"}, rec.notes[0])
	assert.Equal(t, NotifyError, rec.notes[1].Kind)
	assert.Equal(t, "The book has been already in the wishlist", rec.notes[1].Message)
	assert.Equal(t, NotifySuccess, rec.notes[2].Kind)
	assert.Equal(t, NotifySuccess, rec.notes[3].Kind)
}

func TestWishlist_ListWhenAbsent(t *testing.T) {
	w, _, _ := newTestWishlist(t)

	books := w.List()
	assert.NotNil(t, books)
	assert.Empty(t, books)
	assert.False(t, w.Contains(1))
}

func TestWishlist_Uniqueness(t *testing.T) {
	w, _, _ := newTestWishlist(t)

	sequence := []int{3, 1, 3, 2, 1, 1, 4, 2, 3}
	for _, id := range sequence {
		_ = w.Add(book(id, fmt.Sprintf("Book %d", id)))
	}

	got := ids(w.List())
	assert.Equal(t, []int{3, 1, 2, 4}, got)

	seen := map[int]bool{}
	for _, id := range got {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
}

func TestWishlist_IdempotentRemove(t *testing.T) {
	w, store, _ := newTestWishlist(t)
	require.NoError(t, w.Add(book(1, "A")))
	require.NoError(t, w.Add(book(2, "B")))

	require.NoError(t, w.Remove(1))
	once := w.List()
	persistedOnce := store.values[data.KeyWishlist]

	require.NoError(t, w.Remove(1))
	assert.Equal(t, once, w.List())
	assert.Equal(t, persistedOnce, store.values[data.KeyWishlist])
}

func TestWishlist_PersistsWholeCollection(t *testing.T) {
	w, store, _ := newTestWishlist(t)
	require.NoError(t, w.Add(book(1, "A", "Fantasy")))
	require.NoError(t, w.Add(book(2, "B")))

	decoded, err := DecodeWishlist(store.values[data.KeyWishlist])
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ids(decoded))
	assert.Equal(t, []string{"Fantasy"}, decoded[0].Subjects)

	// a second store over the same storage sees the same list
	other := NewWishlistStore(store, nil, zerolog.Nop())
	assert.Equal(t, []int{1, 2}, ids(other.List()))
	assert.True(t, other.Contains(2))
}

func TestWishlist_SnapshotIsIndependent(t *testing.T) {
	w, _, _ := newTestWishlist(t)
	b := book(1, "A", "Fantasy")
	require.NoError(t, w.Add(b))

	b.Subjects[0] = "Changed"
	listed := w.List()
	listed[0].Title = "Mutated"

	assert.Equal(t, "Fantasy", w.List()[0].Subjects[0])
	assert.Equal(t, "A", w.List()[0].Title)
}

func TestWishlist_CorruptStateFailsClosed(t *testing.T) {
	w, store, _ := newTestWishlist(t)
	store.values[data.KeyWishlist] = "{not json"

	assert.Empty(t, w.List())
	assert.False(t, w.Contains(1))

	// the next write replaces the unreadable blob
	require.NoError(t, w.Add(book(1, "A")))
	decoded, err := DecodeWishlist(store.values[data.KeyWishlist])
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ids(decoded))
}

func TestWishlist_DecodeDropsDuplicates(t *testing.T) {
	books, err := DecodeWishlist(`[{"id":1,"title":"A"},{"id":2,"title":"B"},{"id":1,"title":"A again"}]`)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ids(books))
	assert.Equal(t, "A", books[0].Title)

	_, err = DecodeWishlist("[")
	assert.ErrorIs(t, err, errors.ErrCorruptState)
}

func TestWishlist_ReadModifyWrite(t *testing.T) {
	store := newMemStore()
	tab1 := NewWishlistStore(store, nil, zerolog.Nop())
	tab2 := NewWishlistStore(store, nil, zerolog.Nop())

	require.NoError(t, tab1.Add(book(1, "A")))
	assert.Len(t, tab2.List(), 1)

	// tab2 re-reads before writing, so tab1's entry survives
	require.NoError(t, tab2.Add(book(2, "B")))
	assert.ErrorIs(t, tab1.Add(book(2, "B")), errors.ErrDuplicateEntry)
	assert.Equal(t, []int{1, 2}, ids(tab1.List()))
}

func TestWishlist_StorageErrors(t *testing.T) {
	w, store, _ := newTestWishlist(t)
	require.NoError(t, w.Add(book(1, "A")))

	store.setErr = fmt.Errorf("disk full")
	assert.Error(t, w.Add(book(2, "B")))
	assert.Equal(t, []int{1}, ids(w.List()))

	store.setErr = nil
	store.getErr = fmt.Errorf("db closed")
	err := w.Remove(1)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, errors.ErrDuplicateEntry)
}

func TestWishlist_Subscribe(t *testing.T) {
	w, _, _ := newTestWishlist(t)

	var seen [][]int
	unsubscribe := w.Subscribe(func(books []data.Book) {
		seen = append(seen, ids(books))
	})

	require.NoError(t, w.Add(book(1, "A")))
	require.NoError(t, w.Add(book(2, "B")))
	// neither of these changes the list
	_ = w.Add(book(1, "A"))
	require.NoError(t, w.Remove(3))
	require.NoError(t, w.Remove(1))

	assert.Equal(t, [][]int{{1}, {1, 2}, {2}}, seen)

	unsubscribe()
	require.NoError(t, w.Add(book(5, "E")))
	assert.Len(t, seen, 3)
}

func TestWishlist_Reload(t *testing.T) {
	w, store, _ := newTestWishlist(t)
	assert.Empty(t, w.List())

	store.values[data.KeyWishlist] = `[{"id":7,"title":"G"}]`
	assert.Empty(t, w.List(), "cached until reload")

	var got []int
	w.Subscribe(func(books []data.Book) { got = ids(books) })
	require.NoError(t, w.Reload())
	assert.Equal(t, []int{7}, got)
	assert.True(t, w.Contains(7))
}

func TestWishlist_Get(t *testing.T) {
	w, _, _ := newTestWishlist(t)
	require.NoError(t, w.Add(book(1, "A", "Fantasy")))

	got := w.Get(1)
	require.NotNil(t, got)
	assert.Equal(t, "A", got.Title)
	assert.Nil(t, w.Get(2))
	assert.Equal(t, 1, w.Len())
}
