// Package cli is the golfsync command tree. Every command resolves the client
// config through viper, then opens the local store and the server client.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/riskibarqy/golf-league/external/golfapi"
	"github.com/riskibarqy/golf-league/internal/config"
	"github.com/riskibarqy/golf-league/internal/infrastructure/localstore/sqlite"
	"github.com/riskibarqy/golf-league/internal/offline"
	"github.com/riskibarqy/golf-league/internal/platform/localstore"
	"github.com/riskibarqy/golf-league/internal/platform/logging"
	"github.com/riskibarqy/golf-league/internal/platform/resilience"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Runtime is what a command needs once the config is resolved.
type Runtime struct {
	Config config.ClientConfig
	Store  localstore.Store
	Remote offline.RemoteAPI
	Logger *logging.Logger
	Close  func() error
}

// RuntimeFactory opens the store and server client for a resolved config.
type RuntimeFactory func(cfg config.ClientConfig) (*Runtime, error)

// RootOptions holds global flags and collaborators shared by all commands.
type RootOptions struct {
	ConfigFile string
	Format     string

	viper    *viper.Viper
	factory  RuntimeFactory
	prompter offline.PlayoffPrompter
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

type Option func(*RootOptions)

// WithRuntimeFactory replaces the sqlite store and HTTP client.
func WithRuntimeFactory(f RuntimeFactory) Option {
	return func(o *RootOptions) { o.factory = f }
}

// WithPrompter replaces the interactive playoff prompt.
func WithPrompter(p offline.PlayoffPrompter) Option {
	return func(o *RootOptions) { o.prompter = p }
}

// NewRootCommand creates the golfsync command tree.
func NewRootCommand(opts ...Option) *cobra.Command {
	rootOpts := &RootOptions{
		viper:   config.NewClientViper(),
		factory: DefaultRuntime,
	}
	for _, opt := range opts {
		opt(rootOpts)
	}

	cmd := &cobra.Command{
		Use:   "golfsync",
		Short: "Offline golf scorebook and sync client",
		Long: `golfsync keeps a local scorebook of rounds, matches and skins games
and reconciles it with the league server when connectivity allows.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, rootOpts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", rootOpts.Format, ValidFormats)
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&rootOpts.ConfigFile, "config", "", "config file (default ~/.golfsync/golfsync.yaml)")
	flags.StringVar(&rootOpts.Format, "format", "text", "output format (json|text)")
	flags.String("server-url", "", "sync server base url")
	flags.Int64("user-id", 0, "server id of the local user")
	flags.String("store", "", "path of the local sqlite store")
	flags.Duration("interval", 0, "periodic sync interval for watch (0 disables the ticker)")
	flags.String("log-file", "", "write logs to a rotating file instead of stderr")
	flags.String("log-level", "", "debug|info|warn|error")

	for key, name := range map[string]string{
		config.KeyServerURL: "server-url",
		config.KeyUserID:    "user-id",
		config.KeyStorePath: "store",
		config.KeyInterval:  "interval",
		config.KeyLogFile:   "log-file",
		config.KeyLogLevel:  "log-level",
	} {
		_ = rootOpts.viper.BindPFlag(key, flags.Lookup(name))
	}

	cmd.AddCommand(NewSyncCommand(rootOpts))
	cmd.AddCommand(NewWatchCommand(rootOpts))
	cmd.AddCommand(NewResyncCommand(rootOpts))
	cmd.AddCommand(NewDedupCommand(rootOpts))
	cmd.AddCommand(NewHandicapCommand(rootOpts))
	cmd.AddCommand(NewFinishMatchCommand(rootOpts))

	return cmd
}

func (o *RootOptions) open() (*Runtime, error) {
	cfg, err := config.LoadClient(o.viper, o.ConfigFile)
	if err != nil {
		return nil, err
	}
	rt, err := o.factory(cfg)
	if err != nil {
		return nil, err
	}
	rt.Config = cfg
	if rt.Logger == nil {
		rt.Logger = logging.NewNop()
	}
	if rt.Close == nil {
		rt.Close = func() error { return nil }
	}
	return rt, nil
}

// DefaultRuntime opens the sqlite store at cfg.StorePath and an HTTP client
// for cfg.ServerURL.
func DefaultRuntime(cfg config.ClientConfig) (*Runtime, error) {
	var (
		logWriter io.Writer = os.Stderr
		closers   []func() error
	)
	if cfg.LogFile != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}
		logWriter = rotating
		closers = append(closers, rotating.Close)
	}
	logger := logging.NewJSONWriter(cfg.LogLevel, logWriter).With("user_id", cfg.UserID)
	closers = append([]func() error{logger.Sync}, closers...)

	if err := os.MkdirAll(filepath.Dir(cfg.StorePath), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	store, err := sqlite.Open(cfg.StorePath)
	if err != nil {
		return nil, err
	}
	closers = append([]func() error{store.Close}, closers...)

	client, err := golfapi.NewClient(golfapi.ClientConfig{
		BaseURL:        cfg.ServerURL,
		Logger:         logger,
		CircuitBreaker: resilience.DefaultCircuitBreakerConfig(),
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &Runtime{
		Store:  store,
		Remote: client,
		Logger: logger,
		Close: func() error {
			var first error
			for _, c := range closers {
				if err := c(); err != nil && first == nil {
					first = err
				}
			}
			return first
		},
	}, nil
}
