package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/loykin/restclient/internal/common"
	"github.com/loykin/restclient/internal/constants"
	"github.com/loykin/restclient/internal/store/connector"
	"github.com/loykin/restclient/internal/store/postgresql"
	"github.com/loykin/restclient/internal/store/sqlite"
)

const (
	DriverSqlite     = "sqlite"
	DriverPostgresql = "postgresql"
)

type (
	Run        = connector.Run
	TableNames = connector.TableNames
	Connector  = connector.Connector
)

// DriverConfig is implemented by the per-driver configuration types.
type DriverConfig interface {
	ToMap() map[string]interface{}
}

type Config struct {
	Driver       string
	TableNames   TableNames
	DriverConfig DriverConfig
}

// TableNamesFromPrefix derives table names from an optional prefix.
func TableNamesFromPrefix(prefix string) TableNames {
	p := strings.TrimSpace(prefix)
	if p == "" {
		return TableNames{ExecutionRuns: constants.DefaultExecutionRunsTable}
	}
	return TableNames{ExecutionRuns: p + constants.ExecutionRunsSuffix}
}

// Store is the execution history backed by one Connector.
type Store struct {
	connector  Connector
	tableNames TableNames
	driver     string
}

// Open connects to the configured driver and ensures the schema.
// An empty driver means sqlite.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	var c Connector
	switch driver {
	case "", DriverSqlite:
		driver = DriverSqlite
		c = sqlite.NewStore()
	case DriverPostgresql, "postgres":
		driver = DriverPostgresql
		c = postgresql.NewStore()
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}

	var params map[string]interface{}
	if cfg.DriverConfig != nil {
		params = cfg.DriverConfig.ToMap()
	}
	if driver == DriverSqlite {
		if path, _ := params["path"].(string); path == "" {
			params = map[string]interface{}{"path": constants.DefaultSQLiteFileName}
		}
	}
	if err := c.Load(params); err != nil {
		return nil, err
	}
	if _, err := c.Connect(); err != nil {
		return nil, err
	}

	th := cfg.TableNames
	if th.ExecutionRuns == "" {
		th = TableNamesFromPrefix("")
	}
	s := &Store{connector: c, tableNames: th, driver: driver}
	if err := c.Ensure(ctx, th); err != nil {
		_ = c.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already connected Connector.
func New(c Connector, th TableNames, driver string) *Store {
	if th.ExecutionRuns == "" {
		th = TableNamesFromPrefix("")
	}
	return &Store{connector: c, tableNames: th, driver: driver}
}

func (s *Store) Driver() string         { return s.driver }
func (s *Store) TableNames() TableNames { return s.tableNames }

// RecordRun stores one execution. A zero RanAt is stamped with the current time.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	if run.RanAt.IsZero() {
		run.RanAt = time.Now().UTC()
	}
	return s.connector.RecordRun(ctx, s.tableNames, run)
}

// ListRuns returns up to limit runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	return s.connector.ListRuns(ctx, s.tableNames, limit)
}

func (s *Store) Close() error {
	if s == nil || s.connector == nil {
		return nil
	}
	common.GetLogger().WithStore(s.driver).Debug("closing history store")
	return s.connector.Close()
}
