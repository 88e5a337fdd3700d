package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/kerbaras/gutenshelf/pkg/data"
	"github.com/kerbaras/gutenshelf/pkg/errors"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

func addOutputFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "output", "o", outputTable, "output format (table, json, yaml)")
}

func checkOutput(format string) error {
	switch format {
	case outputTable, outputJSON, outputYAML:
		return nil
	}
	return errors.NewValidationError("output", format, "must be one of table, json, yaml")
}

// encode writes v as JSON or YAML. It reports false for table output.
func encode(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case outputJSON:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return true, err
		}
		_, err = fmt.Fprintln(w, string(b))
		return true, err
	case outputYAML:
		b, err := yaml.Marshal(v)
		if err != nil {
			return true, err
		}
		_, err = w.Write(b)
		return true, err
	}
	return false, nil
}

func printBooks(w io.Writer, format, heading string, books []data.Book) error {
	if done, err := encode(w, format, books); done {
		return err
	}

	fmt.Fprintf(w, "\n%s\n\n", heading)
	if len(books) == 0 {
		return nil
	}

	columns := []table.Column{
		{Title: "ID", Width: 7},
		{Title: "Title", Width: 40},
		{Title: "Authors", Width: 28},
		{Title: "Genres", Width: 40},
	}

	rows := make([]table.Row, 0, len(books))
	for _, b := range books {
		rows = append(rows, table.Row{
			strconv.Itoa(b.ID),
			truncateString(b.Title, 38),
			truncateString(b.AuthorNames(), 26),
			truncateString(strings.Join(b.Subjects, "; "), 38),
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(false),
		// the height includes the header and its border
		table.WithHeight(len(rows)+2),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	// nothing is selected in static output
	s.Selected = s.Cell
	t.SetStyles(s)

	_, err := fmt.Fprintln(w, t.View())
	return err
}

func printBook(w io.Writer, format string, book *data.Book) error {
	if done, err := encode(w, format, book); done {
		return err
	}

	label := lipgloss.NewStyle().Bold(true).Width(13)
	line := func(name, value string) {
		if value == "" {
			value = "N/A"
		}
		fmt.Fprintf(w, "%s %s\n", label.Render(name+":"), value)
	}

	fmt.Fprintf(w, "\n📖 %s\n\n", book.Title)
	line("Authors", book.AuthorNames())
	line("ID", strconv.Itoa(book.ID))
	line("Languages", strings.Join(book.Languages, ", "))
	line("Subjects", strings.Join(book.Subjects, "; "))
	line("Bookshelves", strings.Join(book.Bookshelves, "; "))
	line("Downloads", strconv.Itoa(book.DownloadCount))
	line("Read online", book.Formats["text/html"])
	return nil
}

func printGenres(w io.Writer, format string, genres []string) error {
	if done, err := encode(w, format, genres); done {
		return err
	}
	for _, g := range genres {
		if _, err := fmt.Fprintln(w, g); err != nil {
			return err
		}
	}
	return nil
}

func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
