package entity

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Chat boundary errors
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidLanguage = errors.New("unsupported language")

	// Pipeline errors
	ErrUpstreamFailure = errors.New("upstream call failed")
	ErrUpstreamTimeout = errors.New("upstream call timed out")
	ErrEmptyResponse   = errors.New("empty model response")

	// Session errors
	ErrSessionNotFound     = errors.New("session not found")
	ErrTranscriptForbidden = errors.New("transcript belongs to another user")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInactiveUser       = errors.New("inactive user")
	ErrInvalidToken       = errors.New("could not validate credentials")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Pipeline stages an upstream error can originate from
const (
	StageRelevance   = "relevance"
	StageRetrieval   = "retrieval"
	StageMemory      = "memory"
	StageGeneration  = "generation"
	StageTranslation = "translation"
	StageSession     = "session"
)

// UpstreamError wraps a failure of the retriever, language model or memory.
// It matches ErrUpstreamTimeout when the call ran out of time and
// ErrUpstreamFailure otherwise.
type UpstreamError struct {
	Stage   string
	Timeout bool
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s: %s: %v", e.Stage, ErrUpstreamTimeout, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Stage, ErrUpstreamFailure, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func (e *UpstreamError) Is(target error) bool {
	if target == ErrUpstreamTimeout {
		return e.Timeout
	}
	return target == ErrUpstreamFailure && !e.Timeout
}
