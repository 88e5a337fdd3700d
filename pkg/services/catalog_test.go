package services

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerbaras/gutenshelf/pkg/data"
	"github.com/kerbaras/gutenshelf/pkg/errors"
)

var (
	firstPage = &data.Page{
		Count: 4,
		Next:  "p2",
		Books: []data.Book{
			book(1, "Alice in Wonderland", "Fantasy"),
			book(2, "Bob's Diary", "Biography"),
		},
	}
	secondPage = &data.Page{
		Count:    4,
		Previous: "p1",
		Books: []data.Book{
			book(3, "Carmilla", "Horror", "Fantasy"),
			book(4, "Dracula", "Horror"),
		},
	}
)

func newTestCatalog(t *testing.T, opts ...CatalogOption) (*CatalogClient, *mockSource) {
	t.Helper()
	src := newMockSource()
	src.pages[""] = firstPage
	src.pages["p1"] = firstPage
	src.pages["p2"] = secondPage
	c := NewCatalogClient(src, append([]CatalogOption{WithLogger(zerolog.Nop())}, opts...)...)
	t.Cleanup(c.Close)
	return c, src
}

func TestCatalog_LoadInitial(t *testing.T) {
	c, src := newTestCatalog(t)

	require.NoError(t, c.LoadInitial(context.Background()))

	state := c.State()
	assert.Equal(t, []int{1, 2}, ids(state.Page.Books))
	assert.Equal(t, 4, state.Page.Count)
	assert.Equal(t, []string{"Biography", "Fantasy"}, state.Genres)
	assert.Equal(t, []int{1, 2}, ids(state.Visible))
	assert.True(t, state.HasNext())
	assert.False(t, state.HasPrevious())
	assert.False(t, state.Loading)
	assert.NoError(t, state.Err)
	assert.Equal(t, []string{""}, src.calls)
}

func TestCatalog_NextAndPrevious(t *testing.T) {
	c, src := newTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, c.LoadInitial(ctx))
	require.NoError(t, c.LoadNext(ctx))
	assert.Equal(t, []int{3, 4}, ids(c.State().Page.Books))
	assert.Equal(t, []string{"Fantasy", "Horror"}, c.State().Genres)

	require.NoError(t, c.LoadPrevious(ctx))
	assert.Equal(t, []int{1, 2}, ids(c.State().Page.Books))
	assert.Equal(t, []string{"", "p2", "p1"}, src.calls)
}

func TestCatalog_MissingCursorIsNoop(t *testing.T) {
	c, src := newTestCatalog(t)
	ctx := context.Background()
	require.NoError(t, c.LoadInitial(ctx))
	before := c.State()

	require.NoError(t, c.LoadPrevious(ctx))
	require.NoError(t, c.LoadPage(ctx, Previous, ""))
	require.NoError(t, c.LoadPage(ctx, Next, ""))

	assert.Equal(t, 1, src.callCount())
	assert.Equal(t, before.Page, c.State().Page)
	assert.Equal(t, before.Generation, c.State().Generation)
}

func TestCatalog_SupersededResponseIsDiscarded(t *testing.T) {
	c, src := newTestCatalog(t)
	ctx := context.Background()
	gate := src.gate("p1")

	done := make(chan error, 1)
	go func() { done <- c.LoadPage(ctx, Next, "p1") }()
	require.Equal(t, "p1", <-src.started)
	assert.True(t, c.State().Loading)

	// the newer request resolves first
	require.NoError(t, c.LoadPage(ctx, Next, "p2"))
	assert.Equal(t, []int{3, 4}, ids(c.State().Page.Books))

	// the older one resolves afterwards and must not win
	close(gate)
	require.NoError(t, <-done)

	state := c.State()
	assert.Equal(t, []int{3, 4}, ids(state.Page.Books))
	assert.Equal(t, []string{"Fantasy", "Horror"}, state.Genres)
	assert.False(t, state.Loading)
}

func TestCatalog_SupersededRequestIsCanceled(t *testing.T) {
	c, src := newTestCatalog(t)
	src.honorCancel = true
	ctx := context.Background()
	src.gate("p1")

	done := make(chan error, 1)
	go func() { done <- c.LoadPage(ctx, Next, "p1") }()
	<-src.started

	require.NoError(t, c.LoadPage(ctx, Next, "p2"))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("superseded request was not canceled")
	}
	assert.Equal(t, []int{3, 4}, ids(c.State().Page.Books))
	assert.NoError(t, c.State().Err)
}

func TestCatalog_CancellationIsSilent(t *testing.T) {
	rec := &recorder{}
	c, src := newTestCatalog(t, WithNotifier(rec))
	src.honorCancel = true
	src.gate("")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.LoadInitial(ctx) }()
	<-src.started
	cancel()

	require.NoError(t, <-done)
	state := c.State()
	assert.NoError(t, state.Err)
	assert.False(t, state.Loading)
	assert.Empty(t, state.Page.Books)
	assert.Empty(t, rec.notes)
}

func TestCatalog_TransportErrorKeepsPage(t *testing.T) {
	rec := &recorder{}
	c, src := newTestCatalog(t, WithNotifier(rec))
	ctx := context.Background()
	require.NoError(t, c.LoadInitial(ctx))

	src.setErr("p2", errors.NewTransportError("p2", http.StatusBadGateway, nil))
	err := c.LoadNext(ctx)
	require.Error(t, err)

	var transport *errors.TransportError
	assert.True(t, errors.As(err, &transport))

	state := c.State()
	assert.Equal(t, []int{1, 2}, ids(state.Page.Books))
	assert.Error(t, state.Err)
	assert.False(t, state.Loading)
	require.Len(t, rec.notes, 1)
	assert.Equal(t, NotifyError, rec.notes[0].Kind)

	// retry repeats the failed request
	src.setErr("p2", nil)
	require.NoError(t, c.Retry(ctx))
	state = c.State()
	assert.Equal(t, []int{3, 4}, ids(state.Page.Books))
	assert.NoError(t, state.Err)
	assert.Equal(t, []string{"", "p2", "p2"}, src.calls)
}

func TestCatalog_Timeout(t *testing.T) {
	c, src := newTestCatalog(t, WithTimeout(20*time.Millisecond))
	src.honorCancel = true
	src.gate("")

	err := c.LoadInitial(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, errors.ErrCanceled)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Error(t, c.State().Err)
}

func TestCatalog_Filtering(t *testing.T) {
	store := newMemStore()
	c, _ := newTestCatalog(t, WithPreferences(NewPreferences(store)))
	require.NoError(t, c.LoadInitial(context.Background()))

	c.SetQuery("ali")
	assert.Equal(t, []int{1}, ids(c.State().Visible))
	assert.Equal(t, "ali", store.values[data.KeySearchQuery])

	c.SetQuery("")
	c.SetGenre("Biography")
	assert.Equal(t, []int{2}, ids(c.State().Visible))
	assert.Equal(t, "Biography", store.values[data.KeySelectedGenre])

	c.SetGenre("")
	assert.Equal(t, data.AllGenres, c.State().Filter.Genre)
	assert.Equal(t, []int{1, 2}, ids(c.State().Visible))

	// filtering never touches the loaded page
	assert.Equal(t, []int{1, 2}, ids(c.State().Page.Books))
}

func TestCatalog_FilterAppliesToNewPages(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()
	c.SetGenre("Horror")

	require.NoError(t, c.LoadInitial(ctx))
	assert.Empty(t, c.State().Visible)

	require.NoError(t, c.LoadNext(ctx))
	assert.Equal(t, []int{3, 4}, ids(c.State().Visible))
}

func TestCatalog_RestoresFilter(t *testing.T) {
	store := newMemStore()
	store.values[data.KeySearchQuery] = "CARM"
	store.values[data.KeySelectedGenre] = "Fantasy"

	c, src := newTestCatalog(t, WithPreferences(NewPreferences(store)))
	assert.Equal(t, data.FilterState{Query: "CARM", Genre: "Fantasy"}, c.State().Filter)

	src.pages[""] = secondPage
	require.NoError(t, c.LoadInitial(context.Background()))
	assert.Equal(t, []int{3}, ids(c.State().Visible))
}

func TestCatalog_Subscribe(t *testing.T) {
	c, _ := newTestCatalog(t)

	var mu sync.Mutex
	var states []CatalogState
	unsubscribe := c.Subscribe(func(s CatalogState) {
		mu.Lock()
		defer mu.Unlock()
		states = append(states, s)
	})

	require.NoError(t, c.LoadInitial(context.Background()))

	mu.Lock()
	require.Len(t, states, 2)
	assert.True(t, states[0].Loading)
	assert.False(t, states[1].Loading)
	assert.Equal(t, []int{1, 2}, ids(states[1].Page.Books))
	mu.Unlock()

	unsubscribe()
	c.SetQuery("x")

	mu.Lock()
	assert.Len(t, states, 2)
	mu.Unlock()
}

func TestCatalog_Close(t *testing.T) {
	c, src := newTestCatalog(t)
	src.honorCancel = true
	src.gate("")

	done := make(chan error, 1)
	go func() { done <- c.LoadInitial(context.Background()) }()
	<-src.started

	c.Close()
	require.NoError(t, <-done)

	state := c.State()
	assert.False(t, state.Loading)
	assert.Empty(t, state.Page.Books)
}

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "initial", Initial.String())
	assert.Equal(t, "next", Next.String())
	assert.Equal(t, "previous", Previous.String())
	assert.Equal(t, "reload", Reload.String())
}
