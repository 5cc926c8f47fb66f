package entity

// ChatRequest is the body of both chat entry points
type ChatRequest struct {
	Query     string    `json:"query"`
	Category  string    `json:"category"`
	Language  string    `json:"language"`
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages,omitempty"`
}

// ChatResponse is returned for every completed or rejected turn
type ChatResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
}

type CategoryResponse struct {
	Categories []string `json:"categories"`
}

type LanguageResponse struct {
	Languages map[string]string `json:"languages"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is the uniform error body of the API
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ResultFormat is the export format of a session transcript
type ResultFormat string

const (
	FormatMarkdown ResultFormat = "markdown"
	FormatPDF      ResultFormat = "pdf"
	FormatDOCX     ResultFormat = "docx"
)

// IsValid checks if the format is supported
func (f ResultFormat) IsValid() bool {
	switch f {
	case FormatMarkdown, FormatPDF, FormatDOCX:
		return true
	default:
		return false
	}
}
