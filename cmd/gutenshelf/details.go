package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kerbaras/gutenshelf/pkg/errors"
)

func newDetailsCmd(c *cli) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "details [book-id]",
		Short: "Show one book from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			svc, err := c.services()
			if err != nil {
				return err
			}
			defer svc.Close()

			book, err := svc.Source.GetBook(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printBook(c.out, output, book)
		},
	}

	addOutputFlag(cmd, &output)
	return cmd
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, errors.NewValidationError("book-id", arg, "must be a positive integer")
	}
	return id, nil
}
