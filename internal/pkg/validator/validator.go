package validator

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/futig/lawgpt-backend/internal/entity"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 72 // bcrypt ignores anything longer
	MaxQueryLength    = 4000
	MaxPriorMessages  = 50
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Validator validates request bodies before they reach the use cases
type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// ValidateChatRequest checks the shape of a chat request. Category and
// language membership are checked by the chat use case.
func (v *Validator) ValidateChatRequest(req *entity.ChatRequest) error {
	if strings.TrimSpace(req.Query) == "" {
		return fmt.Errorf("%w: query", entity.ErrMissingField)
	}
	if utf8.RuneCountInString(req.Query) > MaxQueryLength {
		return fmt.Errorf("%w: query is longer than %d characters", entity.ErrInvalidParameter, MaxQueryLength)
	}
	if strings.TrimSpace(req.SessionID) == "" {
		return fmt.Errorf("%w: session_id", entity.ErrMissingField)
	}
	if len(req.Messages) > MaxPriorMessages {
		return fmt.Errorf("%w: at most %d messages allowed, got %d", entity.ErrInvalidParameter, MaxPriorMessages, len(req.Messages))
	}
	for i, m := range req.Messages {
		switch m.Role {
		case "user", "assistant":
		default:
			return fmt.Errorf("%w: messages[%d].role must be user or assistant", entity.ErrInvalidParameter, i)
		}
	}

	return nil
}

func (v *Validator) ValidateSignup(req *entity.SignupRequest) error {
	if req.Email == "" {
		return fmt.Errorf("%w: email", entity.ErrMissingField)
	}
	if !emailRegex.MatchString(req.Email) {
		return fmt.Errorf("%w: email", entity.ErrInvalidFormat)
	}
	if len(req.Password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", entity.ErrInvalidParameter, MinPasswordLength)
	}
	if len(req.Password) > MaxPasswordLength {
		return fmt.Errorf("%w: password must be at most %d bytes", entity.ErrInvalidParameter, MaxPasswordLength)
	}

	return nil
}

func (v *Validator) ValidateLogin(req *entity.LoginRequest) error {
	if req.Email == "" {
		return fmt.Errorf("%w: email", entity.ErrMissingField)
	}
	if req.Password == "" {
		return fmt.Errorf("%w: password", entity.ErrMissingField)
	}

	return nil
}

// SanitizeFilename sanitizes a filename for safe storage
func SanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	replacer := strings.NewReplacer(
		" ", "_",
		"(", "",
		")", "",
		"[", "",
		"]", "",
		"{", "",
		"}", "",
		"\"", "",
	)
	return replacer.Replace(filename)
}
