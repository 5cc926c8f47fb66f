package entity

// PromptPurpose tells connectors and metrics which pipeline role a call serves
type PromptPurpose string

const (
	PurposeRelevance   PromptPurpose = "relevance"
	PurposeAnswer      PromptPurpose = "answer"
	PurposeTranslation PromptPurpose = "translation"
)

// Prompt is the provider-neutral input of a single language model call
type Prompt struct {
	Purpose PromptPurpose
	System  string
	User    string
}
