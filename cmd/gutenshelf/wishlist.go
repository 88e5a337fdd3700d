package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kerbaras/gutenshelf/pkg/errors"
	"github.com/kerbaras/gutenshelf/pkg/integrations"
)

func newWishlistCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "wishlist",
		Aliases: []string{"wl"},
		Short:   "Manage your wishlist",
	}

	cmd.AddCommand(newWishlistListCmd(c))
	cmd.AddCommand(newWishlistAddCmd(c))
	cmd.AddCommand(newWishlistRemoveCmd(c))
	cmd.AddCommand(newWishlistExportCmd(c))
	return cmd
}

func newWishlistListCmd(c *cli) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the books in your wishlist",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			svc, err := c.services()
			if err != nil {
				return err
			}
			defer svc.Close()

			books := svc.Wishlist.List()
			heading := fmt.Sprintf("♥ Wishlist (%d books)", len(books))
			if len(books) == 0 && output == outputTable {
				heading = "♥ Your wishlist is empty. Use 'gutenshelf wishlist add <id>' to add a book."
			}
			return printBooks(c.out, output, heading, books)
		},
	}

	addOutputFlag(cmd, &output)
	return cmd
}

func newWishlistAddCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "add [book-id]",
		Short: "Fetch a book from the catalog and add it to your wishlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			svc, err := c.services()
			if err != nil {
				return err
			}
			defer svc.Close()

			if existing := svc.Wishlist.Get(id); existing != nil {
				return ignoreDuplicate(svc.Wishlist.Add(*existing))
			}

			book, err := svc.Source.GetBook(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to fetch book %d: %w", id, err)
			}
			return ignoreDuplicate(svc.Wishlist.Add(*book))
		},
	}
}

// ignoreDuplicate drops duplicate errors; the notifier has already told the user.
func ignoreDuplicate(err error) error {
	if errors.Is(err, errors.ErrDuplicateEntry) {
		return nil
	}
	return err
}

func newWishlistRemoveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "remove [book-id]",
		Aliases: []string{"rm"},
		Short:   "Remove a book from your wishlist",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			svc, err := c.services()
			if err != nil {
				return err
			}
			defer svc.Close()

			return svc.Wishlist.Remove(id)
		},
	}
}

func newWishlistExportCmd(c *cli) *cobra.Command {
	var covers bool
	var dir string
	var title string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export your wishlist as an EPUB reading list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.services()
			if err != nil {
				return err
			}
			defer svc.Close()

			books := svc.Wishlist.List()
			if len(books) == 0 {
				return errors.NewValidationError("wishlist", 0, "is empty, nothing to export")
			}

			outputDir := c.cfg.Export.Dir
			if dir != "" {
				outputDir = dir
			}

			var exporter integrations.Exporter = integrations.NewEPubExporter(outputDir,
				integrations.WithExportLogger(c.logger))
			if covers {
				exporter = integrations.NewEPubExporter(outputDir,
					integrations.WithCovers(svc.Covers, integrations.NewCoverProcessor(integrations.DefaultCoverSettings())),
					integrations.WithExportLogger(c.logger))
			}

			fmt.Fprintf(c.out, "📦 Exporting %d books...\n", len(books))
			path, err := exporter.Export(cmd.Context(), title, books)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "✅ Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&covers, "covers", false, "download and embed cover thumbnails")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "output directory (default export.dir)")
	cmd.Flags().StringVarP(&title, "title", "t", "Gutenshelf Wishlist", "title of the EPUB")
	return cmd
}
