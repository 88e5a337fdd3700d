package sources

import (
	"context"

	"github.com/kerbaras/gutenshelf/pkg/data"
)

// Source is a remote paginated book catalog.
type Source interface {
	// GetPage fetches one page. An empty cursor requests the first page.
	GetPage(ctx context.Context, cursor string) (*data.Page, error)
	GetBook(ctx context.Context, id int) (*data.Book, error)
}
