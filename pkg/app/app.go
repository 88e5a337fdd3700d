package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/kerbaras/gutenshelf/pkg/app/screens"
	"github.com/kerbaras/gutenshelf/pkg/config"
	"github.com/kerbaras/gutenshelf/pkg/data"
	"github.com/kerbaras/gutenshelf/pkg/services"
)

type App struct {
	cfg    *config.Config
	logger zerolog.Logger
}

func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{cfg: cfg, logger: logger}
}

// Run starts the interactive browser and blocks until the user quits or
// ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	bus := screens.NewBus(256)
	logNotifier := services.NewLogNotifier(a.logger)
	notifier := services.NotifierFunc(func(n services.Notification) {
		logNotifier.Notify(n)
		bus.Notifier().Notify(n)
	})

	svc, err := NewServices(a.cfg, a.logger, notifier)
	if err != nil {
		return err
	}
	defer svc.Close()

	unsubscribeCatalog := svc.Catalog.Subscribe(func(state services.CatalogState) {
		bus.Publish(screens.CatalogChangedMsg{State: state})
	})
	defer unsubscribeCatalog()

	unsubscribeWishlist := svc.Wishlist.Subscribe(func(books []data.Book) {
		bus.Publish(screens.WishlistChangedMsg{Books: books})
	})
	defer unsubscribeWishlist()

	root := screens.NewRootScreen(ctx, screens.Deps{
		Catalog:  svc.Catalog,
		Wishlist: svc.Wishlist,
		Source:   svc.Source,
		Exporter: svc.Exporter,
		Bus:      bus,
	})

	a.logger.Info().Str("state", a.cfg.State.Path).Msg("starting browser")
	p := tea.NewProgram(root, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
