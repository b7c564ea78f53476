package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/loykin/restclient"
	"github.com/loykin/restclient/internal/constants"
	"github.com/loykin/restclient/internal/httpc"
	"github.com/loykin/restclient/internal/store/postgresql"
	"github.com/loykin/restclient/internal/util"
	"gopkg.in/yaml.v3"
)

type SQLiteStoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

type LoggingConfig struct {
	Level         string         `mapstructure:"level" yaml:"level"`                   // error, warn, info, debug
	Format        string         `mapstructure:"format" yaml:"format"`                 // text, json, color
	MaskSensitive *bool          `mapstructure:"mask_sensitive" yaml:"mask_sensitive"` // enable/disable sensitive data masking
	Color         *bool          `mapstructure:"color" yaml:"color"`                   // enable/disable colorized output
	File          *LogFileConfig `mapstructure:"file" yaml:"file"`
}

// LogFileConfig mirrors log output into a rotated file.
type LogFileConfig struct {
	Path       string `mapstructure:"path" yaml:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

type StoreConfig struct {
	Disabled         bool              `mapstructure:"disabled" yaml:"disabled" json:"disabled"`
	SaveResponseBody bool              `mapstructure:"save_response_body" yaml:"save_response_body"`
	Type             string            `mapstructure:"type" yaml:"type"`
	SQLite           SQLiteStoreConfig `mapstructure:"sqlite" yaml:"sqlite"`
	Postgres         postgresql.Config `mapstructure:"postgres" yaml:"postgres"`
	TablePrefix      string            `mapstructure:"table_prefix" yaml:"table_prefix"`
}

// ToStoreOptions returns the history store configuration, or nil when disabled.
// A missing type means sqlite next to the config file (baseDir).
func (c *StoreConfig) ToStoreOptions(baseDir string) *restclient.StoreConfig {
	if c.Disabled {
		return nil
	}
	cfg := &restclient.StoreConfig{TableNames: restclient.StoreTableNames(c.TablePrefix)}
	switch util.TrimAndLower(c.Type) {
	case restclient.StoreDriverPostgresql, "postgres":
		pg := c.Postgres
		cfg.Driver = restclient.StoreDriverPostgresql
		cfg.DriverConfig = &pg
	default:
		path := util.TrimWithDefault(c.SQLite.Path, filepath.Join(baseDir, constants.DefaultSQLiteFileName))
		cfg.Driver = restclient.StoreDriverSqlite
		cfg.DriverConfig = &restclient.SQLiteConfig{Path: path}
	}
	return cfg
}

type ClientConfig struct {
	MinTLSVersion string `mapstructure:"min_tls_version" yaml:"min_tls_version"`
	MaxTLSVersion string `mapstructure:"max_tls_version" yaml:"max_tls_version"`
	Timeout       string `mapstructure:"timeout" yaml:"timeout"`
}

// ToHttpc converts the client section into transport settings.
// Certificate verification is decided per plugin by its insecure flag.
func (c *ClientConfig) ToHttpc() (*restclient.Httpc, error) {
	h := &restclient.Httpc{
		MinVersion: httpc.ParseTLSVersion(c.MinTLSVersion),
		MaxVersion: httpc.ParseTLSVersion(c.MaxTLSVersion),
	}
	if t, ok := util.TrimEmptyCheck(c.Timeout); ok {
		d, err := time.ParseDuration(t)
		if err != nil {
			return nil, fmt.Errorf("invalid client timeout %q: %w", c.Timeout, err)
		}
		h.Timeout = d
	}
	return h, nil
}

type ServerConfig struct {
	Addr      string  `mapstructure:"addr" yaml:"addr"`
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"`
	Burst     int     `mapstructure:"burst" yaml:"burst"`
}

type ConfigDoc struct {
	Plugin     map[string]interface{}              `mapstructure:"plugin" yaml:"plugin"`
	Parameters restclient.PluginParametersMetadata `mapstructure:"parameters" yaml:"parameters"`
	Mapping    map[string]string                   `mapstructure:"mapping" yaml:"mapping"`
	Client     ClientConfig                        `mapstructure:"client" yaml:"client"`
	Logging    LoggingConfig                       `mapstructure:"logging" yaml:"logging"`
	Store      StoreConfig                         `mapstructure:"store" yaml:"store"`
	Server     ServerConfig                        `mapstructure:"server" yaml:"server"`
}

func (c *ConfigDoc) Load(path string) error {
	clean := filepath.Clean(path)
	// Ensure path points to a regular file to avoid opening directories/special files
	if info, statErr := os.Stat(clean); statErr != nil || !info.Mode().IsRegular() {
		if statErr != nil {
			return statErr
		}
		return fmt.Errorf("not a regular file: %s", clean)
	}
	// #nosec G304 -- config path is provided intentionally by the user/CI; cleaned and validated above
	b, err := os.ReadFile(clean)
	if err != nil {
		return err
	}
	// ${VAR} references are expanded from the environment before decoding
	return yaml.Unmarshal([]byte(os.ExpandEnv(string(b))), c)
}

// NewPlugin builds the plugin described by the document.
func (c *ConfigDoc) NewPlugin(opts ...restclient.Option) (*restclient.Plugin, error) {
	h, err := c.Client.ToHttpc()
	if err != nil {
		return nil, err
	}
	opts = append([]restclient.Option{restclient.WithHTTPClient(h)}, opts...)
	return restclient.New(c.Plugin, &c.Parameters, c.Mapping, opts...)
}

func (c *ConfigDoc) parseLogLevel() (restclient.LogLevel, error) {
	level := util.TrimAndLower(c.Logging.Level)
	switch level {
	case "error":
		return restclient.LogLevelError, nil
	case "warn", "warning":
		return restclient.LogLevelWarn, nil
	case "info", "":
		return restclient.LogLevelInfo, nil
	case "debug":
		return restclient.LogLevelDebug, nil
	default:
		return restclient.LogLevelInfo, fmt.Errorf("invalid logging level: %s (valid: error, warn, info, debug)", c.Logging.Level)
	}
}

// SetupLogging configures the global logger based on config settings
func (c *ConfigDoc) SetupLogging() (*restclient.Logger, error) {
	level, err := c.parseLogLevel()
	if err != nil {
		return nil, err
	}

	format := util.TrimAndLower(c.Logging.Format)
	useColor := false
	if c.Logging.Color != nil {
		useColor = *c.Logging.Color
	} else if format == "color" || format == "colour" {
		useColor = true
	}

	opts := restclient.LoggerOptions{Level: level, Writer: os.Stderr}
	switch format {
	case "json":
		opts.Format = "json"
	case "color", "colour":
		opts.Format = "color"
	case "text", "":
		if useColor {
			opts.Format = "color"
		}
	default:
		return nil, fmt.Errorf("invalid logging format: %s (valid: text, json, color)", c.Logging.Format)
	}
	if f := c.Logging.File; f != nil && f.Path != "" {
		opts.File = &restclient.LogFileOptions{
			Path:       f.Path,
			MaxSizeMB:  f.MaxSizeMB,
			MaxBackups: f.MaxBackups,
			MaxAgeDays: f.MaxAgeDays,
			Compress:   f.Compress,
		}
	}
	logger := restclient.NewLoggerWithOptions(opts)

	maskingEnabled := true
	if c.Logging.MaskSensitive != nil {
		maskingEnabled = *c.Logging.MaskSensitive
	}
	logger.EnableMasking(maskingEnabled)
	restclient.SetDefaultLogger(logger)
	restclient.EnableMasking(maskingEnabled)

	logger.Debug("logging configured",
		"level", level.String(),
		"format", util.TrimWithDefault(format, "text"),
		"color", useColor,
		"mask_sensitive", maskingEnabled)
	return logger, nil
}
