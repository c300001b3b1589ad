package log

// Discard drops everything written to it.
var Discard Logger = NoopLogger{}

// NoopLogger is a Logger that writes nothing. Library callers get it unless
// they pass their own.
type NoopLogger struct{}

func NewNoopLogger() *NoopLogger { return &NoopLogger{} }

func (NoopLogger) Debug(string, ...Field) {}
func (NoopLogger) Info(string, ...Field)  {}
func (NoopLogger) Warn(string, ...Field)  {}
func (NoopLogger) Error(string, ...Field) {}
