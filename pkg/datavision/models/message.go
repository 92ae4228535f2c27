package models

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ChatMessage is a single entry of a conversation.
type ChatMessage struct {
	// ID identifies the message within a conversation list.
	ID string `json:"id"`
	// Role is the author, user or model.
	Role Role `json:"role"`
	// Text is the message content. A model message being streamed grows as
	// fragments arrive.
	Text string `json:"text"`
	// Timestamp is the creation time. It is informational only.
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message with a fresh ID and the current time.
func NewMessage(role Role, text string) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Timestamp: time.Now(),
	}
}
