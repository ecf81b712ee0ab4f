package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// UpdateHandler reacts to inbound Telegram updates. Implemented by the
// webhook dispatcher so polling and webhook modes share one pipeline.
type UpdateHandler interface {
	HandleMessage(chatID int64, text string)
	HandleCallback(queryID string, chatID int64, messageID int, data string)
}

// Update is one entry of a Telegram getUpdates/webhook payload.
type Update struct {
	UpdateID int `json:"update_id"`
	Message  *struct {
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		Text string `json:"text"`
	} `json:"message"`
	CallbackQuery *struct {
		ID      string `json:"id"`
		Data    string `json:"data"`
		Message struct {
			MessageID int `json:"message_id"`
			Chat      struct {
				ID int64 `json:"id"`
			} `json:"chat"`
		} `json:"message"`
	} `json:"callback_query"`
}

// Dispatch routes one update to the handler.
func Dispatch(u *Update, handler UpdateHandler) {
	switch {
	case u.Message != nil && u.Message.Text != "":
		handler.HandleMessage(u.Message.Chat.ID, u.Message.Text)
	case u.CallbackQuery != nil:
		cq := u.CallbackQuery
		handler.HandleCallback(cq.ID, cq.Message.Chat.ID, cq.Message.MessageID, cq.Data)
	}
}

// StartPolling long-polls getUpdates and feeds every update through the
// handler. Blocks until ctx is cancelled. This is the local-run
// alternative to registering a webhook.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler UpdateHandler) {
	offset := 0
	// Separate client: the long-poll must outlive the notifier's
	// regular request timeout.
	client := &http.Client{Timeout: 35 * time.Second}

	for {
		select {
		case <-ctx.Done():
			log.Println("[INFO] Telegram polling stopped")
			return
		default:
		}

		apiURL := fmt.Sprintf("%s?offset=%d&timeout=30", t.method("getUpdates"), offset)
		req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
		if err != nil {
			log.Printf("[ERROR] create polling request: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[WARN] polling request failed: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			log.Printf("[WARN] read polling response: %v", err)
			continue
		}

		var result struct {
			OK     bool     `json:"ok"`
			Result []Update `json:"result"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			log.Printf("[WARN] decode polling response: %v", err)
			continue
		}

		for i := range result.Result {
			u := &result.Result[i]
			offset = u.UpdateID + 1
			Dispatch(u, handler)
		}
	}
}
