package main

import (
	"sync"

	"github.com/spf13/cobra"
)

// commandExecutionContext records which command is running so fatal-path
// reporting can match its output mode: structured log lines for service
// commands, plain stderr for interactive ones.
type commandExecutionContext struct {
	CommandPath       string
	UsesStructuredLog bool
}

var (
	commandCtxMu sync.Mutex
	commandCtx   commandExecutionContext
)

func setCommandExecutionContext(ctx commandExecutionContext) {
	commandCtxMu.Lock()
	defer commandCtxMu.Unlock()
	commandCtx = ctx
}

func resetCommandExecutionContext() {
	setCommandExecutionContext(commandExecutionContext{})
}

func currentCommandExecutionContext() commandExecutionContext {
	commandCtxMu.Lock()
	defer commandCtxMu.Unlock()
	return commandCtx
}

// commandUsesStructuredLogging reports whether a command emits slog lines.
// The token prompt stays plain so its output is readable at a terminal.
func commandUsesStructuredLogging(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "token" {
			return false
		}
	}
	return true
}
