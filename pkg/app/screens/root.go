package screens

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kerbaras/gutenshelf/pkg/app/components"
	"github.com/kerbaras/gutenshelf/pkg/app/styles"
	"github.com/kerbaras/gutenshelf/pkg/integrations"
	"github.com/kerbaras/gutenshelf/pkg/services"
	"github.com/kerbaras/gutenshelf/pkg/sources"
)

const toastDuration = 3 * time.Second

// Deps are the services the screens share.
type Deps struct {
	Catalog  *services.CatalogClient
	Wishlist *services.WishlistStore
	Source   sources.Source
	Exporter integrations.Exporter
	Bus      *Bus
}

type RootScreen struct {
	ctx  context.Context
	deps Deps

	currentView screenName
	catalog     *CatalogScreen
	wishlist    *WishlistScreen
	details     *DetailsScreen
	toast       *components.Toast

	width  int
	height int
}

func NewRootScreen(ctx context.Context, deps Deps) *RootScreen {
	return &RootScreen{
		ctx:         ctx,
		deps:        deps,
		currentView: catalogScreen,
		catalog:     NewCatalogScreen(ctx, deps.Catalog, deps.Wishlist),
		wishlist:    NewWishlistScreen(ctx, deps.Wishlist, deps.Exporter),
		toast:       components.NewToast(),
	}
}

func (r *RootScreen) Init() tea.Cmd {
	return tea.Batch(
		r.catalog.Init(),
		r.wishlist.Init(),
		r.deps.Bus.Listen(),
	)
}

func (r *RootScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.width = msg.Width
		r.height = msg.Height
		// leave room for tabs and the toast
		inner := tea.WindowSizeMsg{Width: msg.Width, Height: max(0, msg.Height-6)}
		r.catalog.Update(inner)
		r.wishlist.Update(inner)
		if r.details != nil {
			r.details.Update(inner)
		}
		return r, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return r, tea.Quit
		case "q":
			if !r.typing() {
				return r, tea.Quit
			}
		case "tab":
			if r.currentView == detailsScreen || r.typing() {
				break
			}
			if r.currentView == catalogScreen {
				r.currentView = wishlistScreen
			} else {
				r.currentView = catalogScreen
			}
			return r, nil
		}

	case busMsg:
		model, cmd := r.Update(msg.msg)
		return model, tea.Batch(cmd, r.deps.Bus.Listen())

	case ToastMsg:
		seq := r.toast.Show(msg.Notification)
		return r, tea.Tick(toastDuration, func(time.Time) tea.Msg {
			return toastExpiredMsg{seq: seq}
		})

	case toastExpiredMsg:
		r.toast.Clear(msg.seq)
		return r, nil

	case WishlistChangedMsg:
		r.catalog.Update(msg)
		r.wishlist.Update(msg)
		return r, nil

	case CatalogChangedMsg, catalogLoadedMsg:
		_, cmd := r.catalog.Update(msg)
		return r, cmd

	case exportDoneMsg:
		_, cmd := r.wishlist.Update(msg)
		return r, cmd

	case bookLoadedMsg:
		if r.details != nil {
			_, cmd := r.details.Update(msg)
			return r, cmd
		}
		return r, nil

	case SwitchScreenMsg:
		return r, r.switchScreen(msg)
	}

	// Forward everything else to the active screen
	var cmd tea.Cmd
	switch r.currentView {
	case catalogScreen:
		_, cmd = r.catalog.Update(msg)
	case wishlistScreen:
		_, cmd = r.wishlist.Update(msg)
	case detailsScreen:
		if r.details != nil {
			_, cmd = r.details.Update(msg)
		}
	}
	return r, cmd
}

func (r *RootScreen) switchScreen(msg SwitchScreenMsg) tea.Cmd {
	if msg.Screen == detailsScreen {
		id, ok := msg.Data.(int)
		if !ok {
			return nil
		}
		back := r.currentView
		if back == detailsScreen && r.details != nil {
			back = r.details.back
		}
		r.closeDetails()
		r.details = NewDetailsScreen(r.ctx, r.deps.Source, r.deps.Wishlist, id, back)
		r.details.Update(tea.WindowSizeMsg{Width: r.width, Height: max(0, r.height-6)})
		r.currentView = detailsScreen
		return r.details.Init()
	}

	r.closeDetails()
	r.currentView = msg.Screen
	return nil
}

func (r *RootScreen) closeDetails() {
	if r.details != nil {
		r.details.Close()
		r.details = nil
	}
}

func (r *RootScreen) typing() bool {
	return r.currentView == catalogScreen && r.catalog.Typing()
}

func (r *RootScreen) View() string {
	var content string
	switch r.currentView {
	case catalogScreen:
		content = r.catalog.View()
	case wishlistScreen:
		content = r.wishlist.View()
	case detailsScreen:
		if r.details != nil {
			content = r.details.View()
		}
	}

	view := fmt.Sprintf("%s\n\n%s", r.renderTabs(), content)
	if r.toast.Visible() {
		view += "\n" + r.toast.View()
	}
	return view
}

func (r *RootScreen) renderTabs() string {
	if r.currentView == detailsScreen {
		return styles.MutedStyle.Render("Book details")
	}

	catalogTab := "Catalog"
	wishlistTab := fmt.Sprintf("Wishlist (%d)", len(r.wishlist.books))

	if r.currentView == catalogScreen {
		catalogTab = styles.ActiveTabStyle.Render(catalogTab)
		wishlistTab = styles.InactiveTabStyle.Render(wishlistTab)
	} else {
		catalogTab = styles.InactiveTabStyle.Render(catalogTab)
		wishlistTab = styles.ActiveTabStyle.Render(wishlistTab)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, catalogTab, wishlistTab)
}
