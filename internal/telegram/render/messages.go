package render

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxMessageLength is the Telegram limit for a single text message
const MaxMessageLength = 4096

const (
	// Welcome messages
	MsgWelcome = `👋 Hi! I'm LawGPT, a legal information assistant.

Pick a legal category below, then ask your question in plain words.
Answers are for information only and are not legal advice.`

	MsgHelp = `🤖 Commands:

/start - Start and pick a category
/category - Change the legal category
/language - Change the answer language
/reset - Forget the conversation so far
/help - Show this help

How it works:
1. Pick a legal category
2. Optionally pick an answer language
3. Ask questions, I remember the last few exchanges`

	// Selection
	MsgChooseCategory   = `⚖️ Choose a legal category:`
	MsgChooseLanguage   = `🌐 Choose the answer language:`
	MsgCategorySelected = `✅ Category: %s

Ask your question.`
	MsgLanguageSelected = `✅ Answers will be in %s.`
	MsgNoCategory       = `⚖️ Pick a legal category first:`

	// Session
	MsgSessionReset = `🔄 Conversation cleared. Your category and language are kept.`

	// Processing
	MsgBusy     = `⏳ Still working on your previous question. Please wait for the answer.`
	MsgTextOnly = `✍️ I can only read text messages. Please type your question.`

	// Answer
	MsgSources = `📚 Sources:`

	// Errors
	ErrGeneric            = `❌ Something went wrong. Please try again or press /start`
	ErrUnknownCommand     = `❌ Unknown command. See /help`
	ErrInvalidCategory    = `❌ Unknown category. Choose one with /category`
	ErrInvalidLanguage    = `❌ Unsupported language. Choose one with /language`
	ErrInvalidCallback    = `❌ Invalid button`
	ErrEmptyQuestion      = `❌ Please type a question.`
	ErrServiceUnavailable = `❌ The service is temporarily unavailable. Please try again in a few minutes.`
	ErrTimeout            = `❌ That took too long. Please try again.`
	ErrEmptyAnswer        = `❌ I could not produce an answer. Try rephrasing your question.`
)

// RenderCategorySelected confirms a category choice
func RenderCategorySelected(category string) string {
	return fmt.Sprintf(MsgCategorySelected, category)
}

// RenderLanguageSelected confirms a language choice
func RenderLanguageSelected(language string) string {
	return fmt.Sprintf(MsgLanguageSelected, language)
}

// RenderAnswer appends the source list to an answer
func RenderAnswer(answer string, sources []string) string {
	if len(sources) == 0 {
		return answer
	}

	var sb strings.Builder
	sb.WriteString(answer)
	sb.WriteString("\n\n")
	sb.WriteString(MsgSources)
	for _, s := range sources {
		sb.WriteString("\n• ")
		sb.WriteString(s)
	}

	return sb.String()
}

// SplitMessage splits text into parts that fit into one Telegram message.
// It prefers paragraph and line breaks and never cuts a rune in half.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxMessageLength
	}

	var parts []string
	for utf8.RuneCountInString(text) > limit {
		cut := runeOffset(text, limit)
		head := text[:cut]

		if i := strings.LastIndex(head, "\n\n"); i > 0 {
			cut = i
		} else if i := strings.LastIndex(head, "\n"); i > 0 {
			cut = i
		} else if i := strings.LastIndex(head, " "); i > 0 {
			cut = i
		}

		parts = append(parts, strings.TrimRight(text[:cut], " \n"))
		text = strings.TrimLeft(text[cut:], " \n")
	}

	if text != "" || len(parts) == 0 {
		parts = append(parts, text)
	}

	return parts
}

// runeOffset returns the byte offset of the n-th rune
func runeOffset(s string, n int) int {
	i := 0
	for pos := range s {
		if i == n {
			return pos
		}
		i++
	}
	return len(s)
}
