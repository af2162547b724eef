package models

import (
	"strings"
	"time"
)

// Message kinds. The set is closed; anything else is rejected at submit time.
const (
	KindText = "text"
	KindFile = "file"
)

// Message is the durable unit of a room. A room itself is never stored:
// it exists as long as messages carrying its code do.
type Message struct {
	ID       string `bson:"_id,omitempty" json:"id"`
	RoomCode string `bson:"room_code" json:"roomCode"`
	Kind     string `bson:"kind" json:"kind"`
	Content  string `bson:"content" json:"content"`
	FileRef  string `bson:"file_ref,omitempty" json:"fileRef,omitempty"`
	// FileDeletionToken is the object-store credential needed to remove the
	// payload later. It is persisted but never serialized to clients.
	FileDeletionToken string    `bson:"file_deletion_token,omitempty" json:"-"`
	CreatedAt         time.Time `bson:"created_at" json:"createdAt"`
}

// IsFile reports whether the message carries a stored payload.
func (m *Message) IsFile() bool { return m.Kind == KindFile }

// NormalizeRoomCode trims surrounding whitespace; codes are otherwise
// opaque and compared literally.
func NormalizeRoomCode(code string) string { return strings.TrimSpace(code) }
