package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/keith-mcqueen/Temples/internal/config"
	"github.com/keith-mcqueen/Temples/internal/infrastructure/monitoring"
	"github.com/keith-mcqueen/Temples/internal/logging"
	"github.com/keith-mcqueen/Temples/internal/shared/errors"
)

// App holds the state shared by every command of one invocation.
type App struct {
	version string

	configFile  string
	logLevel    string
	metricsFile string

	cfg     *config.Config
	log     *logging.Logger
	metrics *monitoring.Metrics
}

// New creates the application.
func New(version string) *App {
	return &App{version: version, log: logging.NewNop()}
}

// Execute runs the CLI with args.
func (a *App) Execute(ctx context.Context, args []string) error {
	root := a.rootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (a *App) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:     "temples",
		Short:   "Convert CSV files and reconcile scraped temple data into JSON",
		Version: a.version,
		Long: `temples converts delimited files into JSON or GeoJSON exports and
scrapes several temple sources into one reconciled JSON document.

Configuration comes from defaults, an optional --config file (YAML or
TOML), the environment (a .env file is honored) and finally flags.`,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.finish,
		SilenceUsage:       true,
		SilenceErrors:      true,
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (.yaml, .yml or .toml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.metricsFile, "metrics-file", "", "write run metrics to this node-exporter textfile")
	root.SetVersionTemplate("temples {{.Version}}\n")

	root.AddCommand(a.csv2jsonCommand())
	root.AddCommand(a.geojsonCommand())
	root.AddCommand(a.scrapeCommand())
	return root
}

// setup loads configuration and builds the logger and metrics.
func (a *App) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.metricsFile != "" {
		cfg.Metrics.File = a.metricsFile
	}
	a.cfg = cfg

	logCfg := logging.DefaultConfig()
	if cfg.Logging.Development {
		logCfg = logging.DevelopmentConfig()
	}
	logCfg.Level = cfg.Logging.Level
	log, err := logging.New(logCfg)
	if err != nil {
		return errors.NewConfigError("log-level", "invalid log level "+cfg.Logging.Level, err)
	}
	a.log = log.With(zap.String("command", cmd.Name()))
	a.metrics = monitoring.NewMetrics()
	return nil
}

// finish flushes metrics and logs after a successful command.
func (a *App) finish(_ *cobra.Command, _ []string) error {
	a.metrics.Finish()
	if err := a.metrics.WriteTextfile(a.cfg.Metrics.File); err != nil {
		a.log.Warn("unable to write metrics", zap.String("path", a.cfg.Metrics.File), zap.Error(err))
	}
	_ = a.log.Sync()
	return nil
}

// ContextWithSignals returns a context cancelled on SIGINT or SIGTERM.
func ContextWithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// ExitOnError prints err to stderr and exits with status 1.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString("temples: " + err.Error() + "\n")
		os.Exit(1)
	}
}
