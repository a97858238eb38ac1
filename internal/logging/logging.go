package logging

import "log/slog"

// Resolve returns logger, or slog.Default() when logger is nil.
func Resolve(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
