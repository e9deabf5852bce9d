// Package logging builds the slog loggers used across the daemon and exposes
// small attribute helpers so call sites stay terse.
package logging
