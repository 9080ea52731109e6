package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finanzazen-telegram-bot/lib/helpers"
	"finanzazen-telegram-bot/lib/translation"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const newsLimit = 5

// CommandNews handles /news, formatting the latest finance headlines.
func (h *Handler) CommandNews(ctx context.Context, language string) (string, error) {
	log.Debug("processing command /news")

	articles, err := h.News.Latest(ctx, "finanza", language, newsLimit)
	if err != nil {
		return "", errors.Wrap(err, "command /news")
	}
	if len(articles) == 0 {
		return helpers.EscapeMarkdownV2(translation.Translate("No headlines right now, try again later.")), nil
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("📰 *%s*\n\n", helpers.EscapeMarkdownV2(translation.Translate("Latest finance news"))))
	for _, a := range articles {
		b.WriteString(fmt.Sprintf("▫️ [%s](%s)", helpers.EscapeMarkdownV2(a.Title), a.Link))
		if published, err := time.Parse("2006-01-02 15:04:05", a.PubDate); err == nil {
			b.WriteString(fmt.Sprintf(" _%s_", helpers.EscapeMarkdownV2(humanize.Time(published))))
		}
		b.WriteString("\n")
	}

	return b.String(), nil
}
