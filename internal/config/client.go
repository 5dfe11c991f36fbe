package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/golf-league/internal/platform/logging"
	"github.com/spf13/viper"
)

// Client config keys. Flags bound to these keys win over GOLFSYNC_* env
// vars, which win over the YAML file.
const (
	KeyServerURL = "server_url"
	KeyUserID    = "user_id"
	KeyStorePath = "store_path"
	KeyInterval  = "interval"
	KeyLogFile   = "log_file"
	KeyLogLevel  = "log_level"
)

const clientEnvPrefix = "GOLFSYNC"

// ClientConfig configures the offline client.
type ClientConfig struct {
	ServerURL string
	UserID    int64
	StorePath string
	Interval  time.Duration
	LogFile   string
	LogLevel  logging.Level
}

// NewClientViper returns a viper instance with the client defaults and env
// binding applied. Callers bind their flags before calling LoadClient.
func NewClientViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(clientEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyServerURL, "http://localhost:8080")
	v.SetDefault(KeyStorePath, defaultStorePath())
	v.SetDefault(KeyInterval, 5*time.Minute)
	v.SetDefault(KeyLogLevel, "info")
	return v
}

// LoadClient reads the optional config file and resolves the client config.
// An explicit configFile must exist; otherwise golfsync.yaml is looked up in
// ~/.golfsync and the working directory.
func LoadClient(v *viper.Viper, configFile string) (ClientConfig, error) {
	if v == nil {
		v = NewClientViper()
	}

	if strings.TrimSpace(configFile) != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("golfsync")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".golfsync"))
		}
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !crerr.As(err, &notFound) {
			return ClientConfig{}, fmt.Errorf("read client config: %w", err)
		}
	}

	cfg := ClientConfig{
		ServerURL: strings.TrimRight(strings.TrimSpace(v.GetString(KeyServerURL)), "/"),
		UserID:    v.GetInt64(KeyUserID),
		StorePath: strings.TrimSpace(v.GetString(KeyStorePath)),
		Interval:  v.GetDuration(KeyInterval),
		LogFile:   strings.TrimSpace(v.GetString(KeyLogFile)),
		LogLevel:  parseLogLevel(v.GetString(KeyLogLevel)),
	}

	if cfg.ServerURL == "" {
		return ClientConfig{}, fmt.Errorf("%s is required", KeyServerURL)
	}
	if cfg.UserID <= 0 {
		return ClientConfig{}, fmt.Errorf("%s must be > 0", KeyUserID)
	}
	if cfg.StorePath == "" {
		return ClientConfig{}, fmt.Errorf("%s is required", KeyStorePath)
	}
	if cfg.Interval < 0 {
		return ClientConfig{}, fmt.Errorf("%s must be >= 0", KeyInterval)
	}
	return cfg, nil
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "golfsync.db"
	}
	return filepath.Join(home, ".golfsync", "golfsync.db")
}
