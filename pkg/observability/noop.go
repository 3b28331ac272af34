package observability

// NoopLogger discards everything. Used in tests and as a safe default.
type NoopLogger struct{}

// NewNoopLogger creates a logger that discards all messages.
func NewNoopLogger() Logger { return &NoopLogger{} }

func (n *NoopLogger) Debug(msg string, fields map[string]interface{}) {}
func (n *NoopLogger) Info(msg string, fields map[string]interface{})  {}
func (n *NoopLogger) Warn(msg string, fields map[string]interface{})  {}
func (n *NoopLogger) Error(msg string, fields map[string]interface{}) {}

func (n *NoopLogger) WithPrefix(prefix string) Logger { return n }
