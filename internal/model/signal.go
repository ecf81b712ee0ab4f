package model

// Direction is the recommended trade direction.
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
	DirectionHold  Direction = "HOLD"
)

// TriggerType indicates what triggered a signal run.
type TriggerType string

const (
	TriggerMessage TriggerType = "MESSAGE"
	TriggerUpdate  TriggerType = "UPDATE"
	TriggerDigest  TriggerType = "DIGEST"
)

// SignalRecord is the canonical trade recommendation produced for one
// snapshot. Immutable after creation. When Signal is HOLD the target
// and stop percentages carry no meaning and Confidence is 0.
type SignalRecord struct {
	Symbol     string
	Signal     Direction
	TargetPct  float64 // distance magnitude, clamped to [3.0, 14.0]
	StopPct    float64 // clamped to [-3.5, -1.0]
	Confidence int     // [80, 99], or 0 on the HOLD/failure path
	Reason     string
}

// Hold builds the degraded record used whenever the pipeline cannot
// produce a real recommendation.
func Hold(symbol, reason string) *SignalRecord {
	return &SignalRecord{
		Symbol:     symbol,
		Signal:     DirectionHold,
		Confidence: 0,
		Reason:     reason,
	}
}
