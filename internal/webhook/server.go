package webhook

import (
	"encoding/json"
	"log"
	"net/http"

	"QEngine/internal/notifier"
)

// ServeHTTP accepts Telegram webhook POSTs and routes each update
// through the dispatcher. Telegram only needs a 200; failures inside
// the pipeline are reported to the chat, never to Telegram.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var update notifier.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Printf("[WARN] decode webhook update: %v", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	notifier.Dispatch(&update, d)
	w.Write([]byte("OK"))
}
