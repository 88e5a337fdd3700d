package integrations

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-shiori/go-epub"
	"github.com/rs/zerolog"

	"github.com/kerbaras/gutenshelf/pkg/data"
	"github.com/kerbaras/gutenshelf/pkg/errors"
)

const maxCoverBytes = 5 << 20

// EPubExporter compiles books into a single EPUB reading list: one section
// per book with its metadata, download links and optionally its cover.
type EPubExporter struct {
	outputDir string
	covers    CoverSource
	processor *CoverProcessor
	logger    zerolog.Logger
}

type EPubOption func(*EPubExporter)

// WithCovers embeds cover thumbnails fetched from src.
func WithCovers(src CoverSource, processor *CoverProcessor) EPubOption {
	return func(e *EPubExporter) {
		e.covers = src
		e.processor = processor
	}
}

func WithExportLogger(logger zerolog.Logger) EPubOption {
	return func(e *EPubExporter) { e.logger = logger }
}

func NewEPubExporter(outputDir string, opts ...EPubOption) *EPubExporter {
	e := &EPubExporter{outputDir: outputDir, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export writes books to <outputDir>/<title>.epub and returns the path.
// A cover that cannot be fetched or decoded is skipped, not fatal.
func (x *EPubExporter) Export(ctx context.Context, title string, books []data.Book) (string, error) {
	if len(books) == 0 {
		return "", errors.NewValidationError("books", 0, "nothing to export")
	}
	if err := os.MkdirAll(x.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	e, err := epub.NewEpub(title)
	if err != nil {
		return "", fmt.Errorf("failed to create EPub: %w", err)
	}
	e.SetAuthor("gutenshelf")
	e.SetLang("en")
	e.SetDescription(fmt.Sprintf("A reading list of %d books from Project Gutenberg", len(books)))

	tmpDir, err := os.MkdirTemp("", "gutenshelf-covers-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	for _, book := range books {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("%w: %w", errors.ErrCanceled, err)
		}

		cover := x.addCover(ctx, e, tmpDir, book)
		if _, err := e.AddSection(bookSection(book, cover), book.Title, "", ""); err != nil {
			return "", fmt.Errorf("failed to add book %d: %w", book.ID, err)
		}
	}

	outputPath := filepath.Join(x.outputDir, sanitizeFilename(title)+".epub")
	if err := e.Write(outputPath); err != nil {
		return "", fmt.Errorf("failed to write EPub: %w", err)
	}
	x.logger.Info().Str("path", outputPath).Int("books", len(books)).Msg("exported wishlist")
	return outputPath, nil
}

// addCover returns the internal path of the embedded cover, or "".
func (x *EPubExporter) addCover(ctx context.Context, e *epub.Epub, tmpDir string, book data.Book) string {
	link := book.CoverURL()
	if x.covers == nil || link == "" {
		return ""
	}
	log := x.logger.With().Int("id", book.ID).Str("url", link).Logger()

	content, err := x.covers.Fetch(ctx, link, maxCoverBytes)
	if err != nil {
		log.Warn().Err(err).Msg("skipping cover")
		return ""
	}
	if x.processor != nil {
		content, err = x.processor.Thumbnail(bytes.NewReader(content))
		if err != nil {
			log.Warn().Err(err).Msg("skipping undecodable cover")
			return ""
		}
	}

	name := fmt.Sprintf("cover-%d.jpg", book.ID)
	path := filepath.Join(tmpDir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		log.Warn().Err(err).Msg("skipping cover")
		return ""
	}
	internal, err := e.AddImage(path, name)
	if err != nil {
		log.Warn().Err(err).Msg("skipping cover")
		return ""
	}
	return internal
}

func bookSection(book data.Book, cover string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(book.Title))
	if cover != "" {
		fmt.Fprintf(&b, `<div class="cover"><img src="%s" alt="%s"/></div>`+"\n", cover, html.EscapeString(book.Title))
	}
	fmt.Fprintf(&b, "<p><strong>Authors:</strong> %s</p>\n", html.EscapeString(book.AuthorNames()))
	fmt.Fprintf(&b, "<p><strong>Gutenberg ID:</strong> %d</p>\n", book.ID)
	if len(book.Languages) > 0 {
		fmt.Fprintf(&b, "<p><strong>Languages:</strong> %s</p>\n", html.EscapeString(strings.Join(book.Languages, ", ")))
	}
	writeList(&b, "Subjects", book.Subjects)
	writeList(&b, "Bookshelves", book.Bookshelves)

	var links []string
	for _, mime := range []string{"text/html", "application/epub+zip", "text/plain; charset=us-ascii", "text/plain; charset=utf-8"} {
		if link, ok := book.Formats[mime]; ok {
			links = append(links, fmt.Sprintf(`<li><a href="%s">%s</a></li>`, html.EscapeString(link), html.EscapeString(mime)))
		}
	}
	if len(links) > 0 {
		b.WriteString("<h2>Read online</h2>\n<ul>\n" + strings.Join(links, "\n") + "\n</ul>\n")
	}
	return b.String()
}

func writeList(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "<h2>%s</h2>\n<ul>\n", heading)
	for _, item := range items {
		fmt.Fprintf(b, "<li>%s</li>\n", html.EscapeString(item))
	}
	b.WriteString("</ul>\n")
}

// sanitizeFilename removes characters that are invalid in filenames
func sanitizeFilename(name string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := name
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	result = strings.Trim(result, ".")
	if result == "" {
		return "wishlist"
	}
	return result
}
