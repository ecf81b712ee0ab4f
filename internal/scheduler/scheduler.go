package scheduler

import (
	"fmt"
	"log"

	"QEngine/internal/model"
	"QEngine/internal/notifier"

	"github.com/robfig/cron/v3"
)

// Runner executes the signal pipeline for one symbol. Implemented by
// the webhook dispatcher so the digest shares the chat pipeline.
type Runner interface {
	Run(symbol string, fresh bool, trigger model.TriggerType) (*model.SignalRecord, float64)
}

// Sender delivers a formatted digest message.
type Sender interface {
	Send(chatID int64, text string, keyboard *notifier.InlineKeyboard) (int, error)
}

// Scheduler periodically pushes watchlist signals to a configured chat.
type Scheduler struct {
	Cron      *cron.Cron
	Runner    Runner
	Sender    Sender
	Watchlist []string
	ChatID    int64
}

// NewScheduler creates a Scheduler for the given watchlist and chat.
func NewScheduler(runner Runner, sender Sender, watchlist []string, chatID int64) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Runner:    runner,
		Sender:    sender,
		Watchlist: watchlist,
		ChatID:    chatID,
	}
}

// RegisterDigest schedules the watchlist digest on the given cron spec.
func (s *Scheduler) RegisterDigest(cronSpec string) error {
	if _, err := s.Cron.AddFunc(cronSpec, s.digestTask); err != nil {
		return fmt.Errorf("register digest task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunDigestNow executes the digest immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunDigestNow() {
	s.digestTask()
}

func (s *Scheduler) digestTask() {
	log.Printf("[INFO] running watchlist digest (%d symbols)", len(s.Watchlist))
	for _, symbol := range s.Watchlist {
		rec, price := s.Runner.Run(symbol, true, model.TriggerDigest)
		text := notifier.FormatSignal(rec, price)
		if _, err := s.Sender.Send(s.ChatID, text, notifier.UpdateKeyboard(rec.Symbol)); err != nil {
			log.Printf("[ERROR] send digest for %s: %v", symbol, err)
		}
	}
}
