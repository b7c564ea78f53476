package main

import (
	"os"

	"github.com/loykin/restclient"
)

// ExitHandler provides a testable way to handle program termination
type ExitHandler interface {
	Exit(code int)
	LogFatalError(err error, msg string, keyvals ...any)
}

// DefaultExitHandler implements ExitHandler for production use
type DefaultExitHandler struct{}

// Exit terminates the program with the given exit code
func (h *DefaultExitHandler) Exit(code int) {
	os.Exit(code)
}

// LogFatalError logs a fatal error and exits the program
func (h *DefaultExitHandler) LogFatalError(err error, msg string, keyvals ...any) {
	h.logOnly(err, msg, keyvals...)
	h.Exit(1)
}

func (h *DefaultExitHandler) logOnly(err error, msg string, keyvals ...any) {
	allKeyvals := append([]any{"error", err, "kind", restclient.KindOf(err).String()}, keyvals...)
	restclient.GetLogger().WithComponent("main").Error(msg, allKeyvals...)
}

// Global exit handler (can be replaced for testing)
var exitHandler ExitHandler = &DefaultExitHandler{}
