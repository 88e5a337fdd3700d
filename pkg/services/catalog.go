package services

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kerbaras/gutenshelf/pkg/data"
	"github.com/kerbaras/gutenshelf/pkg/errors"
	"github.com/kerbaras/gutenshelf/pkg/sources"
)

type Direction int

const (
	Initial Direction = iota
	Next
	Previous
	Reload
)

func (d Direction) String() string {
	switch d {
	case Next:
		return "next"
	case Previous:
		return "previous"
	case Reload:
		return "reload"
	default:
		return "initial"
	}
}

// CatalogState is a read-only snapshot for rendering.
type CatalogState struct {
	Page       data.Page
	Genres     []string
	Visible    []data.Book
	Filter     data.FilterState
	Loading    bool
	Err        error
	Generation uint64
}

func (s CatalogState) HasNext() bool     { return s.Page.Next != "" }
func (s CatalogState) HasPrevious() bool { return s.Page.Previous != "" }

type CatalogListener func(CatalogState)

// CatalogClient loads one catalog page at a time. Each request is tagged
// with a generation number; a response is applied only if no newer request
// was issued in the meantime, whatever order the responses arrive in.
type CatalogClient struct {
	source   sources.Source
	prefs    *Preferences
	notifier Notifier
	logger   zerolog.Logger
	timeout  time.Duration

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	lastCursor string
	page       data.Page
	genres     []string
	visible    []data.Book
	filter     data.FilterState
	loading    bool
	err        error
	listeners  map[int]CatalogListener
	nextID     int
}

type CatalogOption func(*CatalogClient)

// WithPreferences restores and persists the filter state.
func WithPreferences(prefs *Preferences) CatalogOption {
	return func(c *CatalogClient) { c.prefs = prefs }
}

func WithNotifier(n Notifier) CatalogOption {
	return func(c *CatalogClient) { c.notifier = n }
}

func WithLogger(logger zerolog.Logger) CatalogOption {
	return func(c *CatalogClient) { c.logger = logger }
}

// WithTimeout bounds each request. Zero means no timeout.
func WithTimeout(d time.Duration) CatalogOption {
	return func(c *CatalogClient) { c.timeout = d }
}

func NewCatalogClient(source sources.Source, opts ...CatalogOption) *CatalogClient {
	c := &CatalogClient{
		source:    source,
		notifier:  nopNotifier{},
		logger:    zerolog.Nop(),
		filter:    data.DefaultFilter(),
		genres:    []string{},
		visible:   []data.Book{},
		listeners: make(map[int]CatalogListener),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.prefs != nil {
		filter, err := c.prefs.LoadFilter()
		if err != nil {
			c.logger.Warn().Err(err).Msg("failed to restore filter, using defaults")
		}
		c.filter = filter
	}
	return c
}

func (c *CatalogClient) LoadInitial(ctx context.Context) error {
	return c.LoadPage(ctx, Initial, "")
}

func (c *CatalogClient) LoadNext(ctx context.Context) error {
	c.mu.Lock()
	cursor := c.page.Next
	c.mu.Unlock()
	return c.LoadPage(ctx, Next, cursor)
}

func (c *CatalogClient) LoadPrevious(ctx context.Context) error {
	c.mu.Lock()
	cursor := c.page.Previous
	c.mu.Unlock()
	return c.LoadPage(ctx, Previous, cursor)
}

// Retry re-issues the most recent request, e.g. after a transport failure.
func (c *CatalogClient) Retry(ctx context.Context) error {
	c.mu.Lock()
	cursor := c.lastCursor
	c.mu.Unlock()
	return c.LoadPage(ctx, Reload, cursor)
}

// LoadPage fetches the page at cursor and, if it is still the latest
// request when it resolves, makes it the current page. Next and Previous
// with an empty cursor are no-ops. Superseded or canceled requests return
// nil without touching state; transport failures keep the previous page,
// set the error state and are returned.
func (c *CatalogClient) LoadPage(ctx context.Context, dir Direction, cursor string) error {
	if cursor == "" && (dir == Next || dir == Previous) {
		c.logger.Debug().Stringer("direction", dir).Msg("no page in that direction")
		return nil
	}

	c.mu.Lock()
	c.generation++
	gen := c.generation
	if c.cancel != nil {
		c.cancel()
	}
	var reqCtx context.Context
	var cancel context.CancelFunc
	if c.timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
	} else {
		reqCtx, cancel = context.WithCancel(ctx)
	}
	c.cancel = cancel
	c.lastCursor = cursor
	c.loading = true
	c.mu.Unlock()
	c.emit()

	log := c.logger.With().
		Str("request_id", uuid.NewString()).
		Uint64("generation", gen).
		Stringer("direction", dir).
		Logger()
	log.Debug().Str("cursor", cursor).Msg("fetching catalog page")

	start := time.Now()
	page, err := c.source.GetPage(reqCtx, cursor)
	cancel()

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		log.Debug().Dur("elapsed", time.Since(start)).Msg("discarding superseded response")
		return nil
	}
	c.cancel = nil
	c.loading = false

	if err != nil {
		if errors.Is(err, errors.ErrCanceled) || errors.Is(err, context.Canceled) {
			c.mu.Unlock()
			log.Debug().Msg("catalog request canceled")
			c.emit()
			return nil
		}
		c.err = err
		c.mu.Unlock()

		log.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("failed to load catalog page")
		c.notifier.Notify(Notification{Kind: NotifyError, Message: "Could not load books: " + err.Error()})
		c.emit()
		return fmt.Errorf("failed to load catalog page: %w", err)
	}

	c.page = *page
	c.err = nil
	c.refresh()
	c.mu.Unlock()

	log.Debug().Int("books", len(page.Books)).Dur("elapsed", time.Since(start)).Msg("catalog page loaded")
	c.emit()
	return nil
}

func (c *CatalogClient) SetQuery(query string) {
	c.mu.Lock()
	c.filter.Query = query
	c.visible = Visible(c.page.Books, c.filter.Query, c.filter.Genre)
	filter := c.filter
	c.mu.Unlock()

	c.saveFilter(filter)
	c.emit()
}

// SetGenre selects a subject; "" or data.AllGenres clears the selection.
func (c *CatalogClient) SetGenre(genre string) {
	if genre == "" {
		genre = data.AllGenres
	}

	c.mu.Lock()
	c.filter.Genre = genre
	c.visible = Visible(c.page.Books, c.filter.Query, c.filter.Genre)
	filter := c.filter
	c.mu.Unlock()

	c.saveFilter(filter)
	c.emit()
}

func (c *CatalogClient) State() CatalogState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Subscribe registers fn for state changes and returns a function removing it.
func (c *CatalogClient) Subscribe(fn CatalogListener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Close cancels any in-flight request and discards its result.
func (c *CatalogClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.loading = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// refresh must be called with c.mu held.
func (c *CatalogClient) refresh() {
	c.genres = Genres(c.page.Books)
	c.visible = Visible(c.page.Books, c.filter.Query, c.filter.Genre)
}

// snapshot must be called with c.mu held.
func (c *CatalogClient) snapshot() CatalogState {
	page := c.page
	page.Books = slices.Clone(c.page.Books)
	return CatalogState{
		Page:       page,
		Genres:     slices.Clone(c.genres),
		Visible:    slices.Clone(c.visible),
		Filter:     c.filter,
		Loading:    c.loading,
		Err:        c.err,
		Generation: c.generation,
	}
}

func (c *CatalogClient) emit() {
	c.mu.Lock()
	state := c.snapshot()
	listeners := make([]CatalogListener, 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
}

func (c *CatalogClient) saveFilter(filter data.FilterState) {
	if c.prefs == nil {
		return
	}
	if err := c.prefs.SaveFilter(filter); err != nil {
		c.logger.Warn().Err(err).Msg("failed to persist filter")
	}
}
