package observability

import (
	"log/slog"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/storm-track-verification/internal/config"
)

const serviceName = "storm-track-verification"

// NewLogger builds the service logger from LOG_LEVEL and LOG_FORMAT and makes
// it the slog default. Unknown levels fall back to info, unknown formats to JSON.
func NewLogger(cfg *config.Config) *slog.Logger {
	return sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat).With("service", serviceName)
}
