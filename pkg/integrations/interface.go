package integrations

import (
	"context"

	"github.com/kerbaras/gutenshelf/pkg/data"
)

// Exporter writes a set of books somewhere outside the app and returns
// where they went.
type Exporter interface {
	Export(ctx context.Context, title string, books []data.Book) (string, error)
}

// CoverSource downloads cover images. *utils.API satisfies it.
type CoverSource interface {
	Fetch(ctx context.Context, url string, limit int64) ([]byte, error)
}
