package epidemic

// Logger is the logging surface the simulation core writes to. Binaries
// inject their own implementation (the server wires a zap adapter).
type Logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
}

// NoOpLogger discards everything. It is the default when no logger is
// injected, and keeps tests quiet.
type NoOpLogger struct{}

func (NoOpLogger) Debugf(format string, v ...any) {}
func (NoOpLogger) Infof(format string, v ...any)  {}
func (NoOpLogger) Warnf(format string, v ...any)  {}
func (NoOpLogger) Errorf(format string, v ...any) {}

// NewNoOpLogger returns a logger that does nothing.
func NewNoOpLogger() Logger {
	return NoOpLogger{}
}
