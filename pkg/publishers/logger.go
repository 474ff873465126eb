package publishers

import "github.com/samvad-hq/steam-webapi/pkg/webapi"

// Logger is the structured logging surface shared with the Web API client,
// so one logger instance can be handed to both.
type Logger = webapi.Logger

type noopLogger struct{}

func (noopLogger) InfoObj(string, string, any)  {}
func (noopLogger) DebugObj(string, string, any) {}
func (noopLogger) WarnObj(string, string, any)  {}
func (noopLogger) ErrorObj(string, string, any) {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return noopLogger{}
	}
	return log
}
