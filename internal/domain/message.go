package domain

import "time"

// RawMessage is a single chat message delivered by the chat gateway.
// It is owned by the source; the pipeline only reads it.
type RawMessage struct {
	Text      string    `json:"text"`
	Channel   string    `json:"channel"`
	Timestamp time.Time `json:"timestamp"`
}
