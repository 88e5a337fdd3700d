package screens

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kerbaras/gutenshelf/pkg/app/styles"
	"github.com/kerbaras/gutenshelf/pkg/data"
	"github.com/kerbaras/gutenshelf/pkg/errors"
	"github.com/kerbaras/gutenshelf/pkg/integrations"
	"github.com/kerbaras/gutenshelf/pkg/services"
)

const exportTitle = "Gutenshelf Wishlist"

type WishlistScreen struct {
	ctx       context.Context
	store     *services.WishlistStore
	exporter  integrations.Exporter
	table     table.Model
	books     []data.Book
	exporting bool
	width     int
	height    int
}

func NewWishlistScreen(ctx context.Context, store *services.WishlistStore, exporter integrations.Exporter) *WishlistScreen {
	t := table.New(
		table.WithColumns(wishlistColumns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := &WishlistScreen{
		ctx:      ctx,
		store:    store,
		exporter: exporter,
		table:    t,
	}
	s.setBooks(store.List())
	return s
}

func (s *WishlistScreen) Init() tea.Cmd {
	return nil
}

func (s *WishlistScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.table.SetColumns(wishlistColumns(msg.Width - 4))
		s.table.SetHeight(max(3, msg.Height-12))

	case WishlistChangedMsg:
		s.setBooks(msg.Books)
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "d", "delete":
			if book := s.selected(); book != nil {
				return s, removeFromWishlist(s.store, book.ID)
			}
			return s, nil
		case "enter":
			if book := s.selected(); book != nil {
				return s, switchTo(detailsScreen, book.ID)
			}
			return s, nil
		case "x":
			if s.exporter != nil && len(s.books) > 0 && !s.exporting {
				s.exporting = true
				return s, s.export()
			}
			return s, nil
		case "r":
			return s, func() tea.Msg {
				if err := s.store.Reload(); err != nil {
					return ToastMsg{services.Notification{Kind: services.NotifyError, Message: err.Error()}}
				}
				return nil
			}
		}

	case exportDoneMsg:
		s.exporting = false
		if msg.err != nil {
			return s, toast(services.NotifyError, "Export failed: "+msg.err.Error())
		}
		return s, toast(services.NotifySuccess, "Exported to "+msg.path)
	}

	var cmd tea.Cmd
	s.table, cmd = s.table.Update(msg)
	return s, cmd
}

func (s *WishlistScreen) setBooks(books []data.Book) {
	s.books = books
	rows := make([]table.Row, len(books))
	for i, b := range books {
		rows[i] = table.Row{
			strconv.Itoa(b.ID),
			b.Title,
			b.AuthorNames(),
			strings.Join(b.Subjects, "; "),
		}
	}
	s.table.SetRows(rows)
	if s.table.Cursor() >= len(rows) && len(rows) > 0 {
		s.table.SetCursor(len(rows) - 1)
	}
}

func (s *WishlistScreen) selected() *data.Book {
	i := s.table.Cursor()
	if i < 0 || i >= len(s.books) {
		return nil
	}
	return &s.books[i]
}

func (s *WishlistScreen) export() tea.Cmd {
	books := s.books
	return func() tea.Msg {
		path, err := s.exporter.Export(s.ctx, exportTitle, books)
		return exportDoneMsg{path: path, err: err}
	}
}

func (s *WishlistScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	header := styles.TitleStyle.Render(fmt.Sprintf("♥ Wishlist (%d books)", len(s.books)))

	var body string
	if len(s.books) == 0 {
		body = styles.MutedStyle.Render("Your wishlist is empty. Press a on a book in the catalog to add it.")
	} else {
		body = s.table.View()
	}

	var status string
	if s.exporting {
		status = "\n" + styles.StatusLoading.Render("Exporting EPUB...")
	}

	help := styles.HelpStyle.Render(
		"↑/k ↓/j: navigate • enter: details • d: remove • x: export EPUB • r: reload • tab: switch view • q: quit",
	)

	return fmt.Sprintf("%s\n\n%s%s\n%s", header, body, status, help)
}

func wishlistColumns(width int) []table.Column {
	rest := max(30, width-8-6)
	return []table.Column{
		{Title: "ID", Width: 8},
		{Title: "Title", Width: rest * 2 / 5},
		{Title: "Authors", Width: rest / 4},
		{Title: "Genres", Width: rest - rest*2/5 - rest/4},
	}
}

func addToWishlist(store *services.WishlistStore, book data.Book) tea.Cmd {
	return func() tea.Msg {
		// success and duplicates are reported by the store's notifier
		if err := store.Add(book); err != nil && !errors.Is(err, errors.ErrDuplicateEntry) {
			return ToastMsg{services.Notification{Kind: services.NotifyError, Message: err.Error()}}
		}
		return nil
	}
}

func removeFromWishlist(store *services.WishlistStore, id int) tea.Cmd {
	return func() tea.Msg {
		if err := store.Remove(id); err != nil {
			return ToastMsg{services.Notification{Kind: services.NotifyError, Message: err.Error()}}
		}
		return nil
	}
}

func toast(kind services.NotificationKind, message string) tea.Cmd {
	return func() tea.Msg {
		return ToastMsg{services.Notification{Kind: kind, Message: message}}
	}
}
