// Package logging builds the slog.Logger used by the CLI and handed to
// store.WithLogger.
package logging
