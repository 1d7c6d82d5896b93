package commands

import (
	"github.com/pharmaweb/sitecms/internal/logging"
	"github.com/pharmaweb/sitecms/pkg/interfaces"
)

// CommandLogger returns the commands module logger tagged with the component.
func CommandLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return logging.WithFields(logging.CommandsLogger(provider), map[string]any{
		"component": "command",
	})
}
