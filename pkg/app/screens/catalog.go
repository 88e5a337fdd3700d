package screens

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kerbaras/gutenshelf/pkg/app/components"
	"github.com/kerbaras/gutenshelf/pkg/app/styles"
	"github.com/kerbaras/gutenshelf/pkg/data"
	"github.com/kerbaras/gutenshelf/pkg/services"
)

type CatalogScreen struct {
	ctx      context.Context
	client   *services.CatalogClient
	wishlist *services.WishlistStore
	input    textinput.Model
	list     *components.BookList
	state    services.CatalogState
	width    int
	height   int
}

func NewCatalogScreen(ctx context.Context, client *services.CatalogClient, wishlist *services.WishlistStore) *CatalogScreen {
	ti := textinput.New()
	ti.Placeholder = "Filter this page by title..."
	ti.CharLimit = 100
	ti.Width = 50

	state := client.State()
	ti.SetValue(state.Filter.Query)

	list := components.NewBookList()
	list.Marked = wishlist.Contains

	return &CatalogScreen{
		ctx:      ctx,
		client:   client,
		wishlist: wishlist,
		input:    ti,
		list:     list,
		state:    state,
	}
}

func (s *CatalogScreen) Init() tea.Cmd {
	return s.load(s.client.LoadInitial)
}

// Typing reports whether keys go to the filter input.
func (s *CatalogScreen) Typing() bool {
	return s.input.Focused()
}

func (s *CatalogScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.list.Width = msg.Width - 4
		s.list.Height = max(3, msg.Height-16)

	case tea.KeyMsg:
		if s.input.Focused() {
			switch msg.String() {
			case "esc", "enter":
				s.input.Blur()
				return s, nil
			}
			s.input, cmd = s.input.Update(msg)
			if s.input.Value() != s.state.Filter.Query {
				s.client.SetQuery(s.input.Value())
			}
			s.sync()
			return s, cmd
		}

		switch msg.String() {
		case "/":
			s.input.Focus()
			return s, textinput.Blink
		case "up", "k":
			s.list.Prev()
		case "down", "j":
			s.list.Next()
		case "n", "right":
			if s.state.HasNext() {
				return s, s.load(s.client.LoadNext)
			}
		case "p", "left":
			if s.state.HasPrevious() {
				return s, s.load(s.client.LoadPrevious)
			}
		case "g":
			s.cycleGenre(1)
		case "G":
			s.cycleGenre(-1)
		case "r":
			return s, s.load(s.client.Retry)
		case "a":
			if selected := s.list.Selected(); selected != nil {
				return s, addToWishlist(s.wishlist, *selected)
			}
		case "enter":
			if selected := s.list.Selected(); selected != nil {
				return s, switchTo(detailsScreen, selected.ID)
			}
		}

	case catalogLoadedMsg, CatalogChangedMsg, WishlistChangedMsg:
		s.sync()
	}

	return s, cmd
}

// cycleGenre moves the genre selection through "all" and the page's genres.
func (s *CatalogScreen) cycleGenre(step int) {
	options := append([]string{data.AllGenres}, s.state.Genres...)
	i := slices.Index(options, s.state.Filter.Genre)
	if i < 0 {
		i = 0
	}
	i = (i + step + len(options)) % len(options)
	s.client.SetGenre(options[i])
	s.sync()
}

func (s *CatalogScreen) sync() {
	s.state = s.client.State()
	s.list.SetItems(s.state.Visible)
}

func (s *CatalogScreen) load(fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		// failures reach the user through the notifier and the error state
		return catalogLoadedMsg{err: fn(s.ctx)}
	}
}

func (s *CatalogScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	header := styles.TitleStyle.Render("📚 Project Gutenberg")

	inputStyle := styles.InputStyle
	if s.input.Focused() {
		inputStyle = styles.FocusedInputStyle
	}
	inputView := inputStyle.Render(s.input.View())

	genre := lipgloss.JoinHorizontal(lipgloss.Top,
		styles.MutedStyle.Render("Genre: "),
		styles.ChipStyle.Render(s.state.Filter.Genre),
		styles.MutedStyle.Render(fmt.Sprintf("  (%d on this page)", len(s.state.Genres))),
	)

	var status string
	switch {
	case s.state.Loading:
		status = styles.StatusLoading.Render("Loading books...")
	case s.state.Err != nil:
		status = styles.StatusError.Render(fmt.Sprintf("Error: %s (r to retry)", s.state.Err))
	default:
		status = styles.MutedStyle.Render(fmt.Sprintf(
			"%d of %d books on this page · %d in catalog",
			len(s.state.Visible), len(s.state.Page.Books), s.state.Page.Count,
		))
	}

	pager := strings.Join([]string{
		styles.Button("‹ prev", s.state.HasPrevious()),
		styles.Button("next ›", s.state.HasNext()),
	}, "   ")

	help := styles.HelpStyle.Render(
		"/: filter • g/G: genre • ↑/k ↓/j: navigate • n/p: page • a: add to wishlist • enter: details • r: retry • tab: switch view • q: quit",
	)

	return fmt.Sprintf("%s\n\n%s\n%s\n\n%s\n\n%s\n%s\n%s",
		header,
		inputView,
		genre,
		status,
		s.list.View(),
		pager,
		help,
	)
}
