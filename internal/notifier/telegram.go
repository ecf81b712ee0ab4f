package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// InlineButton is one button of an inline keyboard row.
type InlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

// InlineKeyboard is the reply_markup payload for interactive messages.
type InlineKeyboard struct {
	InlineKeyboard [][]InlineButton `json:"inline_keyboard"`
}

// TelegramNotifier talks to the Telegram Bot API: sending messages,
// editing them in place, and acknowledging button presses.
type TelegramNotifier struct {
	BotToken string
	BaseURL  string
	Client   *http.Client
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, proxyURL string) *TelegramNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TelegramNotifier{
		BotToken: botToken,
		BaseURL:  "https://api.telegram.org",
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (t *TelegramNotifier) method(name string) string {
	return fmt.Sprintf("%s/bot%s/%s", t.BaseURL, t.BotToken, name)
}

// Send delivers a Markdown message and returns the new message id so
// callers can edit it later.
func (t *TelegramNotifier) Send(chatID int64, text string, keyboard *InlineKeyboard) (int, error) {
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}
	if keyboard != nil {
		payload["reply_markup"] = keyboard
	}
	body, err := t.post("sendMessage", payload)
	if err != nil {
		return 0, err
	}

	var result struct {
		Result struct {
			MessageID int `json:"message_id"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, fmt.Errorf("decode sendMessage response: %w", err)
	}
	return result.Result.MessageID, nil
}

// Edit replaces the text (and keyboard) of an existing message.
func (t *TelegramNotifier) Edit(chatID int64, messageID int, text string, keyboard *InlineKeyboard) error {
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
		"parse_mode": "Markdown",
	}
	if keyboard != nil {
		payload["reply_markup"] = keyboard
	}
	_, err := t.post("editMessageText", payload)
	return err
}

// AnswerCallback acknowledges a button press so the client stops
// showing its progress spinner.
func (t *TelegramNotifier) AnswerCallback(queryID, text string) error {
	_, err := t.post("answerCallbackQuery", map[string]interface{}{
		"callback_query_id": queryID,
		"text":              text,
	})
	return err
}

func (t *TelegramNotifier) post(method string, payload map[string]interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", method, err)
	}
	resp, err := t.Client.Post(t.method(method), "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram API error: %s: status %d, body: %s", method, resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
