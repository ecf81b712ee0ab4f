package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net"
	"os"
	"strings"
	"time"

	"QEngine/internal/model"
)

// Fixed reason strings for the degraded HOLD paths.
const (
	ReasonDataUnavailable = "Data unavailable"
	ReasonTimeout         = "Timeout"
	ReasonOffline         = "Offline"
	ReasonBadResponse     = "Bad response"
)

const (
	minTarget = 3.0
	maxTarget = 14.0
	minStop   = -3.5
	maxStop   = -1.0
	minConf   = 80
	maxConf   = 99
	maxReason = 80
)

// Oracle turns a market snapshot into a canonical signal record by way
// of a model completion. Every failure mode degrades to a HOLD record;
// Signal never returns an error.
type Oracle struct {
	Completer  Completer
	Attempts   int
	RetryDelay time.Duration
}

// NewOracle creates an Oracle with the fixed retry budget: three
// completion attempts, two seconds apart, on timeout only.
func NewOracle(completer Completer) *Oracle {
	return &Oracle{
		Completer:  completer,
		Attempts:   3,
		RetryDelay: 2 * time.Second,
	}
}

// Signal produces the recommendation for a symbol. fetchErr is the
// result of the upstream market-data fetch; when it is non-nil the
// model is never called and the record reports the data failure.
func (o *Oracle) Signal(symbol string, snap *model.MarketSnapshot, fetchErr error) *model.SignalRecord {
	if fetchErr != nil || snap == nil {
		log.Printf("[WARN] %s: skipping model call: %v", symbol, fetchErr)
		return model.Hold(symbol, ReasonDataUnavailable)
	}

	raw, err := o.complete(BuildPrompt(snap))
	if err != nil {
		if isTimeout(err) {
			log.Printf("[WARN] %s: completion timed out after %d attempts", symbol, o.Attempts)
			return model.Hold(symbol, ReasonTimeout)
		}
		log.Printf("[ERROR] %s: completion failed: %v", symbol, err)
		return model.Hold(symbol, ReasonOffline)
	}

	rec, err := parseReply(symbol, raw)
	if err != nil {
		log.Printf("[WARN] %s: unparsable model reply: %v", symbol, err)
		return model.Hold(symbol, ReasonBadResponse)
	}
	return rec
}

// complete runs the completion with the retry budget. Only timeouts are
// retried; any other transport error fails immediately.
func (o *Oracle) complete(prompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= o.Attempts; attempt++ {
		raw, err := o.Completer.Complete(prompt)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !isTimeout(err) {
			return "", err
		}
		if attempt < o.Attempts {
			log.Printf("[WARN] completion timeout (attempt %d/%d), retrying in %v", attempt, o.Attempts, o.RetryDelay)
			time.Sleep(o.RetryDelay)
		}
	}
	return "", lastErr
}

// modelReply is the JSON object the prompt instructs the model to emit.
type modelReply struct {
	Signal     string  `json:"signal"`
	TargetPct  float64 `json:"target_pct"`
	StopPct    float64 `json:"stop_pct"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// parseReply extracts the JSON object from a raw reply that may be
// wrapped in a code fence or surrounded by prose, then validates and
// clamps every field into a canonical record.
func parseReply(symbol, raw string) (*model.SignalRecord, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON object in reply %q", truncate(raw, 60))
	}

	var reply modelReply
	if err := json.Unmarshal([]byte(raw[start:end+1]), &reply); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	return canonicalize(symbol, &reply), nil
}

// canonicalize applies the field clamps: unknown directions become
// HOLD, numeric fields are forced into their documented ranges, and
// the reason is flattened and bounded for display.
func canonicalize(symbol string, reply *modelReply) *model.SignalRecord {
	direction := model.Direction(strings.ToUpper(strings.TrimSpace(reply.Signal)))
	switch direction {
	case model.DirectionLong, model.DirectionShort, model.DirectionHold:
	default:
		direction = model.DirectionHold
	}

	reason := strings.TrimSpace(reply.Reason)
	reason = strings.ReplaceAll(reason, "\r", " ")
	reason = strings.ReplaceAll(reason, "\n", " ")
	reason = truncate(strings.Join(strings.Fields(reason), " "), maxReason)
	if reason == "" {
		reason = "No edge"
	}

	rec := &model.SignalRecord{
		Symbol: symbol,
		Signal: direction,
		Reason: reason,
	}
	if direction == model.DirectionHold {
		return rec
	}

	rec.TargetPct = round1(clamp(reply.TargetPct, minTarget, maxTarget))
	rec.StopPct = round1(clamp(reply.StopPct, minStop, maxStop))
	rec.Confidence = int(clamp(reply.Confidence, minConf, maxConf))
	return rec
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// isTimeout classifies transport errors so only timeouts consume the
// retry budget.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
