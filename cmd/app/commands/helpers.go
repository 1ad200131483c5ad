// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"

	"github.com/allisson/idgate/internal/app"
)

// closeContainer closes the container and logs a warning on failure.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Warn("failed to close container", slog.Any("error", err))
	}
}

// closeMigrate closes the migrate instance and logs a warning on failure.
func closeMigrate(m *migrate.Migrate, logger *slog.Logger) {
	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		logger.Warn("failed to close migration source", slog.Any("error", sourceErr))
	}
	if dbErr != nil {
		logger.Warn("failed to close migration database", slog.Any("error", dbErr))
	}
}
