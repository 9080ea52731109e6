package commands

import (
	"context"
	"fmt"

	"finanzazen-telegram-bot/internal/provider"
	"finanzazen-telegram-bot/lib/helpers"
	"finanzazen-telegram-bot/lib/translation"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// CommandPrice handles /prezzo <symbol>.
func (h *Handler) CommandPrice(ctx context.Context, argument string) (string, error) {
	log.Debugf("processing command /prezzo with argument: %s", argument)

	symbol := provider.Normalize(argument)
	if symbol == "" {
		return helpers.EscapeMarkdownV2(translation.Translate("Usage: /prezzo SYMBOL, e.g. /prezzo BTC")), nil
	}

	price, err := h.Prices.Resolve(ctx, symbol)
	if err != nil {
		return "", errors.Wrapf(err, "command /prezzo %s", symbol)
	}

	return fmt.Sprintf(
		"*%s*\n\n▫️ `%s` *EUR*",
		helpers.EscapeMarkdownV2(symbol),
		helpers.FormatPriceUS(price, true),
	), nil
}
