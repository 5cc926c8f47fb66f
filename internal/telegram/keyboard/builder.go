package keyboard

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// Builder creates inline keyboards
type Builder struct{}

// NewBuilder creates a keyboard builder
func NewBuilder() *Builder {
	return &Builder{}
}

// CategoryKeyboard lists categories one per row. Buttons carry the category
// index because Telegram limits callback data to 64 bytes.
func (b *Builder) CategoryKeyboard(categories []string, selected string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(categories))
	for i, c := range categories {
		label := c
		if c == selected {
			label = "✅ " + c
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, CategoryCallback(i)),
		))
	}

	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// LanguageKeyboard lays languages out in rows of three
func (b *Builder) LanguageKeyboard(languages []string, selected string) tgbotapi.InlineKeyboardMarkup {
	const perRow = 3

	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, l := range languages {
		label := l
		if l == selected {
			label = "✅ " + l
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, LanguageCallback(l)))
		if len(row) == perRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}
