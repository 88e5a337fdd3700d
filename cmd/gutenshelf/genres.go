package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kerbaras/gutenshelf/pkg/data"
	"github.com/kerbaras/gutenshelf/pkg/services"
)

func newGenresCmd(c *cli) *cobra.Command {
	var pages int
	var output string

	cmd := &cobra.Command{
		Use:   "genres",
		Short: "List the distinct subjects on the first catalog pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			svc, err := c.services()
			if err != nil {
				return err
			}
			defer svc.Close()

			states, err := fetchPages(cmd.Context(), c, svc.Source, pages, nil)
			if err != nil {
				return err
			}

			var books []data.Book
			for _, state := range states {
				books = append(books, state.Page.Books...)
			}
			return printGenres(c.out, output, services.Genres(books))
		},
	}

	cmd.Flags().IntVarP(&pages, "pages", "p", 1, "number of pages to scan")
	addOutputFlag(cmd, &output)
	return cmd
}
