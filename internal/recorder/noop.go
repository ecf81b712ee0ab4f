package recorder

// NoopRecorder discards all events. Used when no database is configured
// or the SQLite file cannot be opened.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSignal(*SignalEvent) error { return nil }

func (n *NoopRecorder) Close() error { return nil }
