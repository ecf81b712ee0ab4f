package webhook

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"QEngine/internal/collector"
	"QEngine/internal/model"
	"QEngine/internal/notifier"
	"QEngine/internal/oracle"
	"QEngine/internal/recorder"
)

type sentMsg struct {
	chatID   int64
	text     string
	keyboard *notifier.InlineKeyboard
}

type editedMsg struct {
	chatID    int64
	messageID int
	text      string
	keyboard  *notifier.InlineKeyboard
}

// fakeMessenger records every outbound operation.
type fakeMessenger struct {
	sends  []sentMsg
	edits  []editedMsg
	acks   []string
	nextID int
}

func (f *fakeMessenger) Send(chatID int64, text string, kb *notifier.InlineKeyboard) (int, error) {
	f.sends = append(f.sends, sentMsg{chatID, text, kb})
	f.nextID++
	return f.nextID, nil
}

func (f *fakeMessenger) Edit(chatID int64, messageID int, text string, kb *notifier.InlineKeyboard) error {
	f.edits = append(f.edits, editedMsg{chatID, messageID, text, kb})
	return nil
}

func (f *fakeMessenger) AnswerCallback(queryID, text string) error {
	f.acks = append(f.acks, text)
	return nil
}

type fakeCompleter struct {
	reply string
	calls int
}

func (f *fakeCompleter) Complete(string) (string, error) {
	f.calls++
	return f.reply, nil
}

func (f *fakeCompleter) Name() string { return "fake" }

type countingRecorder struct {
	events []*recorder.SignalEvent
}

func (c *countingRecorder) RecordSignal(evt *recorder.SignalEvent) error {
	c.events = append(c.events, evt)
	return nil
}

func (c *countingRecorder) Close() error { return nil }

func newTestDispatcher(reply string) (*Dispatcher, *fakeMessenger, *collector.MockFetcher, *countingRecorder) {
	fetcher := &collector.MockFetcher{
		Bars:      collector.GenerateBars(50000, 101),
		Funding:   0.01,
		LongShort: 1.5,
	}
	col := collector.NewCollector(fetcher, 100, time.Minute)
	orc := oracle.NewOracle(&fakeCompleter{reply: reply})
	orc.RetryDelay = 0
	msg := &fakeMessenger{}
	rec := &countingRecorder{}
	return NewDispatcher(col, orc, msg, rec), msg, fetcher, rec
}

const longReply = `{"signal":"LONG","target_pct":5.0,"stop_pct":-2.0,"confidence":90,"reason":"trend up"}`

func TestHandleMessage_TickerRunsPipeline(t *testing.T) {
	d, msg, _, rec := newTestDispatcher(longReply)

	d.HandleMessage(7, "btc")

	if len(msg.sends) != 1 || !strings.Contains(msg.sends[0].text, "Analyzing") {
		t.Fatalf("expected one interim notice, got %+v", msg.sends)
	}
	if len(msg.edits) != 1 {
		t.Fatalf("expected the interim notice edited into the reply, got %d edits", len(msg.edits))
	}
	final := msg.edits[0]
	if final.messageID != 1 {
		t.Errorf("edit should target the interim message, got id %d", final.messageID)
	}
	if !strings.Contains(final.text, "*LONG*") {
		t.Errorf("final reply missing signal:\n%s", final.text)
	}
	if final.keyboard == nil || final.keyboard.InlineKeyboard[0][0].CallbackData != "UPDATE BTC" {
		t.Errorf("final reply missing Update button: %+v", final.keyboard)
	}
	if len(rec.events) != 1 || rec.events[0].Trigger != model.TriggerMessage {
		t.Errorf("expected one recorded MESSAGE event, got %+v", rec.events)
	}
}

func TestHandleMessage_Start(t *testing.T) {
	d, msg, fetcher, _ := newTestDispatcher(longReply)
	d.HandleMessage(7, "/start")

	if len(msg.sends) != 1 || !strings.Contains(msg.sends[0].text, "Q-Engine") {
		t.Errorf("expected a greeting, got %+v", msg.sends)
	}
	if fetcher.KlineCalls != 0 {
		t.Error("greeting must not touch the exchange")
	}
}

func TestHandleMessage_InvalidTicker(t *testing.T) {
	d, msg, fetcher, _ := newTestDispatcher(longReply)
	d.HandleMessage(7, "not a ticker!!")

	if len(msg.sends) != 1 || !strings.Contains(msg.sends[0].text, "Send ticker") {
		t.Errorf("expected usage hint, got %+v", msg.sends)
	}
	if fetcher.KlineCalls != 0 {
		t.Error("invalid input must not touch the exchange")
	}
}

func TestHandleCallback_UpdateRefreshesInPlace(t *testing.T) {
	d, msg, fetcher, rec := newTestDispatcher(longReply)

	// Prime the cache, then press Update.
	d.HandleMessage(7, "BTC")
	callsAfterMessage := fetcher.KlineCalls

	d.HandleCallback("cb-1", 7, 42, "UPDATE BTC")

	if fetcher.KlineCalls != callsAfterMessage+1 {
		t.Error("Update must bypass the cache and refetch")
	}
	if len(msg.edits) != 3 { // final (from message) + updating notice + final
		t.Fatalf("expected 3 edits, got %d", len(msg.edits))
	}
	if !strings.Contains(msg.edits[1].text, "Updating") || msg.edits[1].messageID != 42 {
		t.Errorf("expected in-place updating notice, got %+v", msg.edits[1])
	}
	if !strings.Contains(msg.edits[2].text, "*LONG*") || msg.edits[2].messageID != 42 {
		t.Errorf("expected in-place final reply, got %+v", msg.edits[2])
	}
	if len(msg.acks) != 1 || msg.acks[0] != "Updated!" {
		t.Errorf("expected callback acknowledgement, got %+v", msg.acks)
	}
	if rec.events[len(rec.events)-1].Trigger != model.TriggerUpdate {
		t.Error("refresh should be recorded as an UPDATE event")
	}
}

func TestHandleCallback_UnknownPayloadAcknowledged(t *testing.T) {
	d, msg, fetcher, _ := newTestDispatcher(longReply)
	d.HandleCallback("cb-1", 7, 42, "VOTE BTC")

	if len(msg.acks) != 1 {
		t.Errorf("stale buttons still need an acknowledgement, got %+v", msg.acks)
	}
	if fetcher.KlineCalls != 0 {
		t.Error("unknown payloads must not run the pipeline")
	}
}

func TestServeHTTP_MessageUpdate(t *testing.T) {
	d, msg, _, _ := newTestDispatcher(longReply)

	body := `{"update_id":1,"message":{"chat":{"id":7},"text":"BTC"}}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	w := httptest.NewRecorder()
	d.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if len(msg.sends) == 0 {
		t.Error("webhook update should have run the pipeline")
	}
}

func TestServeHTTP_RejectsGet(t *testing.T) {
	d, _, _, _ := newTestDispatcher(longReply)
	req := httptest.NewRequest(http.MethodGet, "/webhook", nil)
	w := httptest.NewRecorder()
	d.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}
