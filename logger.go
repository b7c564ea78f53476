package restclient

import "github.com/loykin/restclient/internal/common"

// LogLevel represents logging verbosity levels
type LogLevel = common.LogLevel

const (
	LogLevelError = common.LogLevelError
	LogLevelWarn  = common.LogLevelWarn
	LogLevelInfo  = common.LogLevelInfo
	LogLevelDebug = common.LogLevelDebug
)

// LoggerOptions describes how NewLoggerWithOptions builds a logger.
type LoggerOptions = common.Options

// LogFileOptions configures a size-rotated log file.
type LogFileOptions = common.FileOptions

func NewLogger(level LogLevel) *Logger      { return common.NewLogger(level) }
func NewJSONLogger(level LogLevel) *Logger  { return common.NewJSONLogger(level) }
func NewColorLogger(level LogLevel) *Logger { return common.NewColorLogger(level) }

// NewLoggerWithOptions builds a logger, optionally teeing into a rotated file.
func NewLoggerWithOptions(opts LoggerOptions) *Logger { return common.New(opts) }

// SetDefaultLogger replaces the package wide logger.
func SetDefaultLogger(l *Logger) { common.SetDefaultLogger(l) }

// GetLogger returns the package wide logger.
func GetLogger() *Logger { return common.GetLogger() }

// EnableMasking toggles masking of credentials in log output.
func EnableMasking(enabled bool) { common.EnableMasking(enabled) }
