package telemetry

import (
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBSystem names the database on SQL spans.
const DBSystem = "postgresql"

// RegisterDBTracing installs the otelgorm plugin so every statement gets a
// child span of the request span. Query variables stay out of spans since
// they carry emails and password hashes.
func RegisterDBTracing(db *gorm.DB, cfg config.TelemetryConfig, logger *zap.Logger, extra ...otelgorm.Option) error {
	if !cfg.Enabled || !cfg.DBTraceEnabled {
		logger.Debug("Database tracing disabled")
		return nil
	}

	opts := append([]otelgorm.Option{
		otelgorm.WithDBName(DBSystem),
		otelgorm.WithoutQueryVariables(),
	}, extra...)
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	logger.Info("Database tracing enabled")
	return nil
}
