package keyboard

import (
	"fmt"
	"strconv"
	"strings"
)

// Callback actions. Telegram caps callback data at 64 bytes, so categories
// travel as their index in the configured list.
const (
	ActionCategory = "cat"
	ActionLanguage = "lang"
)

// CallbackData represents parsed callback data
type CallbackData struct {
	Action string // "cat" or "lang"
	Value  string // The parameter
}

// ParseCallback parses callback data string
func ParseCallback(data string) (*CallbackData, error) {
	parts := strings.SplitN(data, ":", 2)
	if len(parts) != 2 || parts[0] == "" {
		return nil, fmt.Errorf("invalid callback format: %s", data)
	}

	return &CallbackData{
		Action: parts[0],
		Value:  parts[1],
	}, nil
}

// EncodeCallback creates callback data string
func EncodeCallback(action, value string) string {
	return fmt.Sprintf("%s:%s", action, value)
}

// CategoryCallback encodes the category at index i
func CategoryCallback(i int) string {
	return EncodeCallback(ActionCategory, strconv.Itoa(i))
}

// LanguageCallback encodes a language by name
func LanguageCallback(name string) string {
	return EncodeCallback(ActionLanguage, name)
}

// Index decodes the value as a position in a list of n items
func (d *CallbackData) Index(n int) (int, error) {
	i, err := strconv.Atoi(d.Value)
	if err != nil {
		return 0, fmt.Errorf("callback index %q: %w", d.Value, err)
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("callback index %d out of range [0,%d)", i, n)
	}
	return i, nil
}
