package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kerbaras/gutenshelf/pkg/app"
	"github.com/kerbaras/gutenshelf/pkg/config"
	"github.com/kerbaras/gutenshelf/pkg/logging"
	"github.com/kerbaras/gutenshelf/pkg/services"
)

// cli holds what every command needs once flags and config are parsed.
type cli struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
	out     io.Writer
}

func NewRootCmd() *cobra.Command {
	c := &cli{v: config.New(), logger: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:   "gutenshelf",
		Short: "Browse Project Gutenberg and keep a wishlist",
		Long: "Browse the Project Gutenberg catalog through the Gutendex API, filter pages by title\n" +
			"and genre, and keep a local wishlist of books to read. Runs an interactive browser\n" +
			"by default.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// the browser owns the terminal, so logs go to a file
			if c.cfg.Log.Output == "" || c.cfg.Log.Output == "stderr" {
				logCfg := c.cfg.Log.Logging()
				logCfg.Output = c.cfg.LogFile()
				c.logger = logging.New(logCfg)
			}
			return app.NewApp(c.cfg, c.logger).Run(cmd.Context())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default is $HOME/.gutenshelf.yaml)")
	flags.String("base-url", config.DefaultBaseURL, "Gutendex API base URL")
	flags.Duration("timeout", 0, "per-request timeout, 0 disables it")
	flags.String("state", "", "path of the local state database")
	flags.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	flags.String("log-format", "auto", "log format (auto, json, console)")
	flags.String("log-output", "stderr", "log output (stderr, stdout or a file path)")
	flags.Bool("no-color", false, "disable colored output")

	bind(c.v, flags.Lookup("base-url"), "catalog.base_url")
	bind(c.v, flags.Lookup("timeout"), "catalog.timeout")
	bind(c.v, flags.Lookup("state"), "state.path")
	bind(c.v, flags.Lookup("log-level"), "log.level")
	bind(c.v, flags.Lookup("log-format"), "log.format")
	bind(c.v, flags.Lookup("log-output"), "log.output")
	bind(c.v, flags.Lookup("no-color"), "log.no_color")

	rootCmd.AddCommand(newBrowseCmd(c))
	rootCmd.AddCommand(newGenresCmd(c))
	rootCmd.AddCommand(newDetailsCmd(c))
	rootCmd.AddCommand(newWishlistCmd(c))

	return rootCmd
}

func (c *cli) init(cmd *cobra.Command) error {
	cfg, err := config.Load(c.v, c.cfgFile)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = logging.New(cfg.Log.Logging())
	c.out = cmd.OutOrStdout()
	c.logger.Debug().Str("config", cfg.ConfigFile).Str("state", cfg.State.Path).Msg("configuration loaded")
	return nil
}

// services opens the state database. Notifications are printed for the user.
func (c *cli) services() (*app.Services, error) {
	return app.NewServices(c.cfg, c.logger, services.NotifierFunc(func(n services.Notification) {
		icon := "✅"
		if n.Kind == services.NotifyError {
			icon = "❌"
		}
		fmt.Fprintf(c.out, "%s %s\n", icon, n.Message)
	}))
}

func bind(v *viper.Viper, flag *pflag.Flag, key string) {
	if err := v.BindPFlag(key, flag); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to bind flag %s: %v\n", flag.Name, err)
	}
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
