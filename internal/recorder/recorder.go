package recorder

import "QEngine/internal/model"

// SignalEvent is one produced signal together with the snapshot it was
// derived from. Snapshot fields stay zero when the fetch failed.
type SignalEvent struct {
	Snapshot *model.MarketSnapshot
	Signal   *model.SignalRecord
	Trigger  model.TriggerType
}

// Recorder persists signal history for later analysis.
type Recorder interface {
	RecordSignal(evt *SignalEvent) error
	Close() error
}
