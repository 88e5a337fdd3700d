package app

import (
	"github.com/rs/zerolog"

	"github.com/kerbaras/gutenshelf/pkg/config"
	"github.com/kerbaras/gutenshelf/pkg/data"
	"github.com/kerbaras/gutenshelf/pkg/integrations"
	"github.com/kerbaras/gutenshelf/pkg/services"
	"github.com/kerbaras/gutenshelf/pkg/sources"
	"github.com/kerbaras/gutenshelf/pkg/utils"
)

// Services is the wired set of components shared by the browser and the
// command line.
type Services struct {
	Repo     *data.Repository
	Source   *sources.Gutendex
	Catalog  *services.CatalogClient
	Wishlist *services.WishlistStore
	Exporter *integrations.EPubExporter
	Covers   *utils.API
}

// NewServices opens the state database and wires every component to it.
// notifier may be nil.
func NewServices(cfg *config.Config, logger zerolog.Logger, notifier services.Notifier) (*Services, error) {
	repo, err := data.NewDuckDBRepository(cfg.State.Path)
	if err != nil {
		return nil, err
	}
	if notifier == nil {
		notifier = services.NewLogNotifier(logger)
	}

	source := sources.NewGutendex(cfg.Catalog.BaseURL,
		sources.WithRateLimit(cfg.Catalog.RateLimit),
		sources.WithInitialQuery(cfg.Catalog.Query()),
		sources.WithLogger(logger.With().Str("component", "gutendex").Logger()),
	)

	catalog := services.NewCatalogClient(source,
		services.WithPreferences(services.NewPreferences(repo)),
		services.WithNotifier(notifier),
		services.WithLogger(logger.With().Str("component", "catalog").Logger()),
		services.WithTimeout(cfg.Catalog.Timeout),
	)

	wishlist := services.NewWishlistStore(repo, notifier, logger.With().Str("component", "wishlist").Logger())

	covers := utils.NewAPI(cfg.Catalog.BaseURL, cfg.Catalog.RateLimit)
	exporter := integrations.NewEPubExporter(cfg.Export.Dir,
		integrations.WithCovers(covers, integrations.NewCoverProcessor(integrations.DefaultCoverSettings())),
		integrations.WithExportLogger(logger.With().Str("component", "export").Logger()),
	)

	return &Services{
		Repo:     repo,
		Source:   source,
		Catalog:  catalog,
		Wishlist: wishlist,
		Exporter: exporter,
		Covers:   covers,
	}, nil
}

func (s *Services) Close() error {
	s.Catalog.Close()
	return s.Repo.Close()
}
