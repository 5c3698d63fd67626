package ingest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/amalhadhrami/ghwazi/internal/model"
)

// rawMessageJSON is the wire form produced by the external mail fetcher.
type rawMessageJSON struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	Sender  string `json:"sender"`
	Date    string `json:"date"`
	Body    string `json:"body"`
}

// Mail fetchers emit a mix of RFC 3339 and RFC 2822 style dates.
var messageDateLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"2 Jan 2006 15:04:05 -0700",
	"2006-01-02 15:04:05",
}

// LoadMessages reads a JSON batch of raw messages from disk. A message
// with an unparseable date keeps a zero Date; downstream parsing falls
// back to dates found in the body.
func LoadMessages(path string) ([]model.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read messages file: %w", err)
	}

	var raw []rawMessageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode messages file %s: %w", path, err)
	}

	messages := make([]model.RawMessage, 0, len(raw))
	for _, r := range raw {
		msg := model.RawMessage{
			ID:      r.ID,
			Subject: r.Subject,
			Sender:  r.Sender,
			Body:    r.Body,
		}
		if r.Date != "" {
			msg.Date = parseMessageDate(r.Date)
			if msg.Date.IsZero() {
				slog.Debug("unparseable message date", "email_id", r.ID, "date", r.Date)
			}
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func parseMessageDate(s string) time.Time {
	for _, layout := range messageDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
