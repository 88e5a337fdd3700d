package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/kerbaras/gutenshelf/pkg/data"
	"github.com/kerbaras/gutenshelf/pkg/errors"
	"github.com/kerbaras/gutenshelf/pkg/utils"
)

const DefaultBaseURL = "https://gutendex.com/books"

// Book is the Gutendex wire format of a single record.
type Book struct {
	ID            int               `json:"id"`
	Title         string            `json:"title"`
	Authors       []data.Author     `json:"authors"`
	Subjects      []string          `json:"subjects"`
	Bookshelves   []string          `json:"bookshelves"`
	Languages     []string          `json:"languages"`
	Formats       map[string]string `json:"formats"`
	Copyright     *bool             `json:"copyright"`
	DownloadCount int               `json:"download_count"`
}

// Validate rejects records that cannot be rendered or keyed.
func (b *Book) Validate() error {
	if b.ID <= 0 {
		return errors.NewValidationError("id", b.ID, "must be a positive integer")
	}
	if strings.TrimSpace(b.Title) == "" {
		return errors.NewValidationError("title", b.Title, "must not be empty")
	}
	return nil
}

func (b *Book) ToBook() *data.Book {
	authors := make([]data.Author, 0, len(b.Authors))
	for _, a := range b.Authors {
		if strings.TrimSpace(a.Name) == "" {
			continue
		}
		authors = append(authors, a)
	}
	formats := make(map[string]string, len(b.Formats))
	for mime, link := range b.Formats {
		formats[mime] = link
	}
	return &data.Book{
		ID:            b.ID,
		Title:         strings.TrimSpace(b.Title),
		Authors:       authors,
		Subjects:      uniq(b.Subjects),
		Bookshelves:   uniq(b.Bookshelves),
		Languages:     uniq(b.Languages),
		Formats:       formats,
		Copyright:     b.Copyright,
		DownloadCount: b.DownloadCount,
	}
}

type page struct {
	Count    int               `json:"count"`
	Next     *string           `json:"next"`
	Previous *string           `json:"previous"`
	Results  []json.RawMessage `json:"results"`
}

type Gutendex struct {
	api    *utils.API
	params url.Values
	logger zerolog.Logger
}

type Option func(*Gutendex)

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(rps float64) Option {
	return func(g *Gutendex) {
		g.api.SetRateLimit(rps)
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(g *Gutendex) {
		g.api.SetHTTPClient(client)
	}
}

// WithInitialQuery sets server-side parameters (languages, topic, sort)
// that apply to the first page only. Later pages follow the cursors.
func WithInitialQuery(params url.Values) Option {
	return func(g *Gutendex) {
		g.params = params
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(g *Gutendex) {
		g.logger = logger
	}
}

func NewGutendex(baseURL string, opts ...Option) *Gutendex {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	g := &Gutendex{
		api:    utils.NewAPI(baseURL, 0),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gutendex) GetPage(ctx context.Context, cursor string) (*data.Page, error) {
	var params url.Values
	if cursor == "" {
		params = g.params
	}

	var res page
	if err := g.api.Get(ctx, cursor, params, &res); err != nil {
		return nil, err
	}

	books := make([]data.Book, 0, len(res.Results))
	for i, raw := range res.Results {
		var b Book
		if err := json.Unmarshal(raw, &b); err != nil {
			g.logger.Warn().Err(err).Int("index", i).Msg("dropping undecodable catalog record")
			continue
		}
		if err := b.Validate(); err != nil {
			g.logger.Warn().Err(err).Int("index", i).Int("id", b.ID).Msg("dropping malformed catalog record")
			continue
		}
		books = append(books, *b.ToBook())
	}

	return &data.Page{
		Books:    books,
		Count:    res.Count,
		Next:     deref(res.Next),
		Previous: deref(res.Previous),
	}, nil
}

func (g *Gutendex) GetBook(ctx context.Context, id int) (*data.Book, error) {
	if id <= 0 {
		return nil, errors.NewValidationError("id", id, "must be a positive integer")
	}

	var b Book
	if err := g.api.Get(ctx, fmt.Sprintf("/%d", id), nil, &b); err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b.ToBook(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func uniq(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok || v == "" {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
