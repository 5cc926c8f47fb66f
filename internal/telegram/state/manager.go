package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// processingTimeout releases a stuck processing flag, e.g. after a crash mid-answer
const processingTimeout = 2 * time.Minute

// Manager manages telegram sessions
type Manager struct {
	storage Storage
	newID   func() string
	now     func() time.Time
}

// NewManager creates a new state manager. newID generates chat session IDs.
func NewManager(storage Storage, newID func() string) *Manager {
	return &Manager{
		storage: storage,
		newID:   newID,
		now:     time.Now,
	}
}

// Ensure returns the user's session, creating one on first contact
func (m *Manager) Ensure(ctx context.Context, userID int64) (*TelegramSession, *StateData, error) {
	session, err := m.storage.Get(ctx, userID)
	switch {
	case errors.Is(err, ErrNotFound):
		now := m.now()
		session = &TelegramSession{
			UserID:    userID,
			SessionID: m.newID(),
			StateData: json.RawMessage("{}"),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := m.storage.Set(ctx, session); err != nil {
			return nil, nil, fmt.Errorf("save telegram session to storage: %w", err)
		}
	case err != nil:
		return nil, nil, fmt.Errorf("get telegram session from storage: %w", err)
	}

	data, err := decode(session.StateData)
	if err != nil {
		return nil, nil, err
	}

	return session, data, nil
}

// Save stores state data for the session
func (m *Manager) Save(ctx context.Context, session *TelegramSession, data *StateData) error {
	data.Version = StateDataCurrentVersion

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal state data: %w", err)
	}

	session.StateData = raw
	session.UpdatedAt = m.now()

	if err := m.storage.Set(ctx, session); err != nil {
		return fmt.Errorf("save telegram session to storage: %w", err)
	}

	return nil
}

// Reset gives the user a fresh chat session, which starts with empty memory.
// Category and language survive the reset.
func (m *Manager) Reset(ctx context.Context, userID int64) (*TelegramSession, error) {
	session, data, err := m.Ensure(ctx, userID)
	if err != nil {
		return nil, err
	}

	session.SessionID = m.newID()
	data.IsProcessing = false

	if err := m.Save(ctx, session, data); err != nil {
		return nil, err
	}

	return session, nil
}

// TryStartProcessing marks the user busy. It returns false when another
// question of the same user is still being answered.
func (m *Manager) TryStartProcessing(ctx context.Context, session *TelegramSession, data *StateData) (bool, error) {
	if data.IsProcessing && m.now().Sub(data.ProcessingStarted) < processingTimeout {
		return false, nil
	}

	data.IsProcessing = true
	data.ProcessingStarted = m.now()
	if err := m.Save(ctx, session, data); err != nil {
		return false, err
	}

	return true, nil
}

// FinishProcessing clears the busy flag
func (m *Manager) FinishProcessing(ctx context.Context, userID int64) error {
	session, data, err := m.Ensure(ctx, userID)
	if err != nil {
		return err
	}

	data.IsProcessing = false
	data.ProcessingStarted = time.Time{}
	return m.Save(ctx, session, data)
}

func decode(raw json.RawMessage) (*StateData, error) {
	data := &StateData{Version: StateDataCurrentVersion}
	if len(raw) == 0 {
		return data, nil
	}

	if err := json.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("unmarshal state data: %w", err)
	}

	// Auto-upgrade from old versions without version field
	if data.Version == 0 {
		data.Version = StateDataCurrentVersion
	}

	return data, nil
}
