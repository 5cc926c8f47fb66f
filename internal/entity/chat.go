package entity

import "time"

// DefaultLanguage is the language answers are generated in
const DefaultLanguage = "English"

// Category is a legal category label from the configured closed set
type Category string

// ChatTurn is the immutable input of a single pipeline invocation
type ChatTurn struct {
	Query     string
	Category  Category
	Language  string
	SessionID string

	// PriorMessages is client-side history, used only when the
	// server-side memory window for the session is empty
	PriorMessages []Message
}

// Message is a single client-supplied chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatOptions tunes an orchestrator run for a particular entry point
type ChatOptions struct {
	StrictCategoryCheck bool

	// UserID attributes the turn to an authenticated user in the transcript
	UserID *string
}

// SearchQuery is what the pipeline asks the retriever for.
// Category is passed as a separate field so that bracket syntax
// inside the user's query can never be mistaken for a category tag.
type SearchQuery struct {
	Text     string
	Category Category
	K        int
}

// RetrievedPassage is a single retrieved chunk in rank order
type RetrievedPassage struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
}

// Exchange is one question/answer pair of the conversation memory
type Exchange struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatResult is the outcome of a chat turn
type ChatResult struct {
	Answer  string
	Sources []string

	// Rejected is set when the relevance gate turned the query away
	Rejected bool
}

// RelevanceVerdict is the transient decision of the relevance gate
type RelevanceVerdict struct {
	IsRelevant       bool
	RejectionMessage string
}

// TranscriptEntry is a completed chat turn persisted for export
type TranscriptEntry struct {
	ID        string
	SessionID string
	UserID    *string
	Query     string
	Category  Category
	Language  string
	Answer    string
	Sources   []string
	Rejected  bool
	CreatedAt time.Time
}

// Transcript is the exportable history of a chat session
type Transcript struct {
	SessionID string
	Entries   []TranscriptEntry
}
