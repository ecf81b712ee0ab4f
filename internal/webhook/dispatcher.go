package webhook

import (
	"log"
	"strings"

	"QEngine/internal/collector"
	"QEngine/internal/model"
	"QEngine/internal/notifier"
	"QEngine/internal/oracle"
	"QEngine/internal/recorder"
)

const (
	greeting  = "*Q-Engine ready!*\nSend a ticker → BTC"
	usageHint = "Send ticker: BTC, ETH, SOL…"
	analyzing = "_Analyzing…_"
	updating  = "_Updating…_"
)

// Messenger is the narrow slice of the Telegram client the pipeline
// needs; tests substitute a recording fake.
type Messenger interface {
	Send(chatID int64, text string, keyboard *notifier.InlineKeyboard) (int, error)
	Edit(chatID int64, messageID int, text string, keyboard *notifier.InlineKeyboard) error
	AnswerCallback(queryID, text string) error
}

// Dispatcher runs the full pipeline for inbound chat events: a ticker
// message triggers a fresh analysis, the Update button regenerates an
// existing message in place.
type Dispatcher struct {
	Collector *collector.Collector
	Oracle    *oracle.Oracle
	Messenger Messenger
	Recorder  recorder.Recorder
}

// NewDispatcher wires the pipeline stages together.
func NewDispatcher(col *collector.Collector, orc *oracle.Oracle, msg Messenger, rec recorder.Recorder) *Dispatcher {
	return &Dispatcher{Collector: col, Oracle: orc, Messenger: msg, Recorder: rec}
}

// Run executes fetch → indicators → model → record for one symbol and
// returns the canonical record plus the price it applies to (0 when
// the fetch failed). fresh bypasses the market-data cache.
func (d *Dispatcher) Run(symbol string, fresh bool, trigger model.TriggerType) (*model.SignalRecord, float64) {
	var snap *model.MarketSnapshot
	var err error
	if fresh {
		snap, err = d.Collector.Refresh(symbol)
	} else {
		snap, err = d.Collector.Snapshot(symbol)
	}

	rec := d.Oracle.Signal(symbol, snap, err)

	if err := d.Recorder.RecordSignal(&recorder.SignalEvent{
		Snapshot: snap,
		Signal:   rec,
		Trigger:  trigger,
	}); err != nil {
		log.Printf("[ERROR] record signal for %s: %v", symbol, err)
	}

	var price float64
	if snap != nil {
		price = snap.Price
	}
	return rec, price
}

// HandleMessage processes a new chat message: greeting, usage hint, or
// the full ticker pipeline with an interim notice edited into the final
// reply.
func (d *Dispatcher) HandleMessage(chatID int64, text string) {
	text = strings.ToUpper(strings.TrimSpace(text))

	if text == "/START" {
		if _, err := d.Messenger.Send(chatID, greeting, nil); err != nil {
			log.Printf("[ERROR] send greeting: %v", err)
		}
		return
	}

	symbol := collector.NormalizeSymbol(text)
	if !collector.ValidSymbol(symbol) {
		if _, err := d.Messenger.Send(chatID, usageHint, nil); err != nil {
			log.Printf("[ERROR] send usage hint: %v", err)
		}
		return
	}

	interimID, err := d.Messenger.Send(chatID, analyzing, nil)
	if err != nil {
		log.Printf("[WARN] send interim notice: %v", err)
	}

	rec, price := d.Run(symbol, false, model.TriggerMessage)
	d.deliver(chatID, interimID, rec, price)
}

// HandleCallback processes a button press. UPDATE re-runs the pipeline
// with a cache-bypassing refresh and edits the message in place.
func (d *Dispatcher) HandleCallback(queryID string, chatID int64, messageID int, data string) {
	if !strings.HasPrefix(data, "UPDATE ") {
		if err := d.Messenger.AnswerCallback(queryID, "OK"); err != nil {
			log.Printf("[ERROR] answer callback: %v", err)
		}
		return
	}

	symbol := collector.NormalizeSymbol(strings.TrimPrefix(data, "UPDATE "))
	if err := d.Messenger.Edit(chatID, messageID, updating, nil); err != nil {
		log.Printf("[WARN] edit interim notice: %v", err)
	}

	rec, price := d.Run(symbol, true, model.TriggerUpdate)
	d.deliver(chatID, messageID, rec, price)

	if err := d.Messenger.AnswerCallback(queryID, "Updated!"); err != nil {
		log.Printf("[ERROR] answer callback: %v", err)
	}
}

// deliver edits the interim message into the final reply, falling back
// to a new message when there is nothing to edit.
func (d *Dispatcher) deliver(chatID int64, messageID int, rec *model.SignalRecord, price float64) {
	text := notifier.FormatSignal(rec, price)
	keyboard := notifier.UpdateKeyboard(rec.Symbol)

	if messageID != 0 {
		err := d.Messenger.Edit(chatID, messageID, text, keyboard)
		if err == nil {
			return
		}
		log.Printf("[WARN] edit reply: %v, sending new message", err)
	}
	if _, err := d.Messenger.Send(chatID, text, keyboard); err != nil {
		log.Printf("[ERROR] send reply: %v", err)
	}
}
