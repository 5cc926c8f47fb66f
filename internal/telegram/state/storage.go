package state

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned by Storage when a user has no session yet
var ErrNotFound = errors.New("telegram session not found")

// TelegramSession maps a telegram user to a chat session with UI state
type TelegramSession struct {
	UserID    int64           `json:"user_id"`
	SessionID string          `json:"session_id"`
	StateData json.RawMessage `json:"state_data,omitempty"` // Telegram-specific UI state
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// StateData contains telegram-specific UI state (stored in StateData JSONB)
type StateData struct {
	// Version for compatibility tracking (current version: 1)
	Version int `json:"version,omitempty"`

	// Selected legal category, empty until the user picks one
	Category string `json:"category,omitempty"`

	// Answer language, English when empty
	Language string `json:"language,omitempty"`

	// Last bot message with a keyboard (for editing)
	LastMessageID int `json:"last_message_id,omitempty"`

	// Processing state, rejects overlapping questions from the same user
	IsProcessing      bool      `json:"is_processing,omitempty"`
	ProcessingStarted time.Time `json:"processing_started,omitempty"`
}

const (
	// StateDataCurrentVersion is the current version of StateData
	StateDataCurrentVersion = 1
)

// Storage defines the interface for telegram session persistence
type Storage interface {
	// Get retrieves telegram session by user ID
	Get(ctx context.Context, userID int64) (*TelegramSession, error)

	// Set saves telegram session
	Set(ctx context.Context, session *TelegramSession) error

	// Delete removes telegram session
	Delete(ctx context.Context, userID int64) error
}
