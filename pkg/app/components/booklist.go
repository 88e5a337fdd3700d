package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kerbaras/gutenshelf/pkg/app/styles"
	"github.com/kerbaras/gutenshelf/pkg/data"
)

// BookList is a scrollable single-line-per-book list with a cursor.
type BookList struct {
	Items         []data.Book
	SelectedIndex int
	Width         int
	Height        int
	EmptyText     string

	// Marked reports books that get a marker, e.g. already in the wishlist.
	Marked func(id int) bool
}

func NewBookList() *BookList {
	return &BookList{
		Items:         []data.Book{},
		SelectedIndex: 0,
		Width:         80,
		Height:        20,
		EmptyText:     "No books found",
	}
}

// SetItems replaces the list, keeping the cursor on the same book when it
// is still present.
func (l *BookList) SetItems(items []data.Book) {
	var selectedID int
	if sel := l.Selected(); sel != nil {
		selectedID = sel.ID
	}

	l.Items = items
	l.SelectedIndex = 0
	for i, b := range items {
		if b.ID == selectedID {
			l.SelectedIndex = i
			break
		}
	}
}

func (l *BookList) Next() {
	if len(l.Items) == 0 {
		return
	}
	l.SelectedIndex++
	if l.SelectedIndex >= len(l.Items) {
		l.SelectedIndex = 0
	}
}

func (l *BookList) Prev() {
	if len(l.Items) == 0 {
		return
	}
	l.SelectedIndex--
	if l.SelectedIndex < 0 {
		l.SelectedIndex = len(l.Items) - 1
	}
}

func (l *BookList) Selected() *data.Book {
	if len(l.Items) == 0 || l.SelectedIndex >= len(l.Items) {
		return nil
	}
	return &l.Items[l.SelectedIndex]
}

// window returns the [start, end) range of rows that fit in Height.
func (l *BookList) window() (int, int) {
	rows := max(1, l.Height)
	if len(l.Items) <= rows {
		return 0, len(l.Items)
	}
	start := max(0, l.SelectedIndex-rows/2)
	end := start + rows
	if end > len(l.Items) {
		end = len(l.Items)
		start = end - rows
	}
	return start, end
}

func (l *BookList) View() string {
	if len(l.Items) == 0 {
		emptyMsg := styles.MutedStyle.Render(l.EmptyText)
		return lipgloss.Place(l.Width, min(l.Height, 3), lipgloss.Center, lipgloss.Center, emptyMsg)
	}

	start, end := l.window()
	var b strings.Builder
	for i := start; i < end; i++ {
		book := l.Items[i]

		marker := "  "
		if l.Marked != nil && l.Marked(book.ID) {
			marker = "♥ "
		}
		line := fmt.Sprintf("%s#%-6d %s", marker, book.ID, book.Title)
		authors := " · " + book.AuthorNames()
		line = truncate(line+authors, l.Width-2)

		if i == l.SelectedIndex {
			b.WriteString(styles.SelectedStyle.Render("> " + line))
		} else {
			b.WriteString(styles.TextStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	if end-start < len(l.Items) {
		b.WriteString(styles.MutedStyle.Render(
			fmt.Sprintf("Showing %d-%d of %d", start+1, end, len(l.Items)),
		))
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, width int) string {
	if width <= 3 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}
