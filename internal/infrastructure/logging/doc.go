// Package logging provides the structured logger used across the backend.
// It is a thin wrapper over log/slog configured from config.LoggingConfig.
package logging
