package screens

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kerbaras/gutenshelf/pkg/app/styles"
	"github.com/kerbaras/gutenshelf/pkg/data"
	"github.com/kerbaras/gutenshelf/pkg/errors"
	"github.com/kerbaras/gutenshelf/pkg/services"
	"github.com/kerbaras/gutenshelf/pkg/sources"
)

// detailsSeq numbers details screens so results for a closed one are dropped.
var detailsSeq atomic.Int64

type DetailsScreen struct {
	seq      int
	ctx      context.Context
	cancel   context.CancelFunc
	source   sources.Source
	wishlist *services.WishlistStore
	bookID   int
	back     screenName
	book     *data.Book
	loading  bool
	width    int
	height   int
	err      error
}

func NewDetailsScreen(ctx context.Context, source sources.Source, wishlist *services.WishlistStore, bookID int, back screenName) *DetailsScreen {
	ctx, cancel := context.WithCancel(ctx)
	return &DetailsScreen{
		seq:      int(detailsSeq.Add(1)),
		ctx:      ctx,
		cancel:   cancel,
		source:   source,
		wishlist: wishlist,
		bookID:   bookID,
		back:     back,
		loading:  true,
	}
}

func (s *DetailsScreen) Init() tea.Cmd {
	return s.loadDetails
}

// Close abandons a fetch still in flight.
func (s *DetailsScreen) Close() {
	s.cancel()
}

func (s *DetailsScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "a":
			if s.book != nil {
				return s, addToWishlist(s.wishlist, *s.book)
			}
		case "d":
			if s.book != nil && s.wishlist.Contains(s.book.ID) {
				return s, removeFromWishlist(s.wishlist, s.book.ID)
			}
		case "r":
			if !s.loading {
				s.loading = true
				s.err = nil
				return s, s.loadDetails
			}
		case "esc", "backspace":
			return s, switchTo(s.back, nil)
		}

	case bookLoadedMsg:
		if msg.seq != s.seq || msg.id != s.bookID {
			return s, nil
		}
		s.loading = false
		s.book = msg.book
		s.err = msg.err
	}

	return s, nil
}

func (s *DetailsScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	help := styles.HelpStyle.Render("a: add to wishlist • d: remove from wishlist • r: reload • esc: back • q: quit")

	if s.loading {
		return fmt.Sprintf("%s\n%s", styles.StatusLoading.Render(fmt.Sprintf("Loading book %d...", s.bookID)), help)
	}
	if s.err != nil {
		msg := fmt.Sprintf("Error: %s", s.err)
		if errors.Is(s.err, errors.ErrNotFound) {
			msg = fmt.Sprintf("Book %d was not found", s.bookID)
		}
		return fmt.Sprintf("%s\n%s", styles.StatusError.Render(msg), help)
	}
	if s.book == nil {
		return help
	}

	header := styles.TitleStyle.Render("📖 " + s.book.Title)
	if s.wishlist.Contains(s.book.ID) {
		header = lipgloss.JoinHorizontal(lipgloss.Top, header, "  ", styles.StatusSuccess.Render("♥ in wishlist"))
	}

	return fmt.Sprintf("%s\n%s\n%s", header, s.renderInfo(), help)
}

func (s *DetailsScreen) renderInfo() string {
	b := s.book
	rows := []string{
		field("Authors", b.AuthorNames()),
		field("ID", strconv.Itoa(b.ID)),
		field("Languages", orNA(strings.Join(b.Languages, ", "))),
		field("Downloads", strconv.Itoa(b.DownloadCount)),
	}
	if b.Copyright != nil {
		rows = append(rows, field("Copyright", strconv.FormatBool(*b.Copyright)))
	}
	rows = append(rows,
		"",
		field("Subjects", orNA(strings.Join(b.Subjects, "\n"))),
		"",
		field("Bookshelves", orNA(strings.Join(b.Bookshelves, "\n"))),
	)
	if link := b.Formats["text/html"]; link != "" {
		rows = append(rows, "", field("Read online", link))
	}

	return styles.CardStyle.Width(max(20, s.width-4)).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func field(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		styles.LabelStyle.Render(label),
		styles.TextStyle.Render(value),
	)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func (s *DetailsScreen) loadDetails() tea.Msg {
	book, err := s.source.GetBook(s.ctx, s.bookID)
	return bookLoadedMsg{seq: s.seq, id: s.bookID, book: book, err: err}
}
