package commands

import (
	"fmt"

	"finanzazen-telegram-bot/lib/helpers"
	"finanzazen-telegram-bot/lib/translation"
)

// CommandPhrase handles /frase.
func (h *Handler) CommandPhrase() string {
	return fmt.Sprintf("💭 _%s_", helpers.EscapeMarkdownV2(h.Phrases.Random()))
}

// CommandBook handles /libro.
func (h *Handler) CommandBook() string {
	return fmt.Sprintf(
		"📚 *%s*\n\n%s",
		helpers.EscapeMarkdownV2(translation.Translate("Recommended reading")),
		helpers.EscapeMarkdownV2(h.Books.Random()),
	)
}
