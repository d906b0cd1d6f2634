package models

import "time"

const (
	KindText    = "text"
	KindSummary = "summary"
)

// SystemAuthorID is the reserved synthetic author identity for messages the
// server writes on its own behalf (generated summaries). Real user ids are
// store-generated v4 UUIDs, so this nil-variant value never collides.
const (
	SystemAuthorID   = "00000000-0000-0000-0000-000000000001"
	SystemAuthorName = "assistant"
)

type Message struct {
	ID         string    `json:"id"`
	RoomID     string    `json:"roomId"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Text       string    `json:"text"`
	Kind       string    `json:"kind"`
	Seq        int64     `json:"-"`
	Timestamp  time.Time `json:"timestamp"`
}

type PostMessageRequest struct {
	Text string `json:"text"`
}

// WSEvent is the payload pushed to connected clients when a message in one of
// their rooms is confirmed.
type WSEvent struct {
	Event   string   `json:"event"`
	Message *Message `json:"message,omitempty"`
}
