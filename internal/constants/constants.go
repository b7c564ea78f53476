package constants

import "time"

// Plugin constants
const (
	// PluginKind is reported in plugin metadata.
	PluginKind = "execute"
	// MsgConfigNotProvided is the configuration error for a nil or empty config.
	MsgConfigNotProvided = "Config is not provided."
)

// Database Constants
const (
	DefaultPostgresPort    = 5432
	DefaultPostgresSSLMode = "disable"

	DefaultPostgresMaxConnections = 25
	DefaultPostgresMaxIdleConns   = 5
	DefaultSQLiteMaxConnections   = 1 // SQLite allows only one writer
	DefaultSQLiteMaxIdleConns     = 1

	DefaultExecutionRunsTable = "execution_runs"
	ExecutionRunsSuffix       = "_execution_runs"
	DefaultSQLiteFileName     = "restclient.db"
)

// Time and Duration Constants
const (
	DefaultMaxConnLifetime = 5 * time.Minute
	DefaultMaxIdleTime     = 1 * time.Minute
	DefaultSQLiteLifetime  = 10 * time.Minute
	DefaultSQLiteIdleTime  = 5 * time.Minute
)

// Server Constants
const (
	DefaultServerAddr = ":8080"
	DefaultRateLimit  = 10.0 // outbound executions per second
	DefaultRateBurst  = 1
)
