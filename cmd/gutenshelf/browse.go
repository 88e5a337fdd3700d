package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kerbaras/gutenshelf/pkg/data"
	"github.com/kerbaras/gutenshelf/pkg/errors"
	"github.com/kerbaras/gutenshelf/pkg/services"
	"github.com/kerbaras/gutenshelf/pkg/sources"
)

type browseOptions struct {
	query  string
	genre  string
	pages  int
	output string
}

func newBrowseCmd(c *cli) *cobra.Command {
	opts := &browseOptions{}

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "List catalog pages, optionally filtered",
		Long: "Fetch one or more catalog pages and print the books matching --query (case-insensitive\n" +
			"title substring) and --genre (exact subject). Filters apply to the fetched pages only.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(opts.output); err != nil {
				return err
			}
			svc, err := c.services()
			if err != nil {
				return err
			}
			defer svc.Close()

			pages, err := fetchPages(cmd.Context(), c, svc.Source, opts.pages, func(client *services.CatalogClient) {
				client.SetQuery(opts.query)
				client.SetGenre(opts.genre)
			})
			if err != nil {
				return err
			}

			var visible []data.Book
			count := 0
			for _, state := range pages {
				visible = append(visible, state.Visible...)
				count = state.Page.Count
			}
			if visible == nil {
				visible = []data.Book{}
			}

			heading := fmt.Sprintf("📚 %d matching books from %d page(s) · %d in catalog", len(visible), len(pages), count)
			return printBooks(c.out, opts.output, heading, visible)
		},
	}

	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "title filter")
	cmd.Flags().StringVarP(&opts.genre, "genre", "g", data.AllGenres, "subject filter")
	cmd.Flags().IntVarP(&opts.pages, "pages", "p", 1, "number of pages to fetch")
	addOutputFlag(cmd, &opts.output)
	return cmd
}

// fetchPages walks up to n pages forward from the first one and returns the
// state after each. The client is private to the command, so filters set by
// setup are not persisted.
func fetchPages(ctx context.Context, c *cli, source sources.Source, n int, setup func(*services.CatalogClient)) ([]services.CatalogState, error) {
	if n < 1 {
		return nil, errors.NewValidationError("pages", n, "must be at least 1")
	}

	client := services.NewCatalogClient(source,
		services.WithLogger(c.logger),
		services.WithTimeout(c.cfg.Catalog.Timeout),
	)
	defer client.Close()
	if setup != nil {
		setup(client)
	}

	if err := client.LoadInitial(ctx); err != nil {
		return nil, err
	}
	states := []services.CatalogState{client.State()}

	for len(states) < n && client.State().HasNext() {
		if err := client.LoadNext(ctx); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		states = append(states, client.State())
	}
	return states, nil
}
