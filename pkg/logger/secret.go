package logger

import "log/slog"

// Secret is a string that never appears in log output.
type Secret string

// LogValue implements slog.LogValuer.
func (s Secret) LogValue() slog.Value {
	if s == "" {
		return slog.StringValue("")
	}
	return slog.StringValue("[REDACTED]")
}

// String keeps the value out of fmt output too.
func (s Secret) String() string {
	return "[REDACTED]"
}
