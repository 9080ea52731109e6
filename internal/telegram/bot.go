package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"finanzazen-telegram-bot/internal/commands"
	"finanzazen-telegram-bot/internal/database"
	"finanzazen-telegram-bot/internal/provider"
	"finanzazen-telegram-bot/lib/helpers"
	"finanzazen-telegram-bot/lib/translation"
)

// NewBot creates new telegram bot
func NewBot(c BotConfig, handler *commands.Handler, store *database.Store) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(c.Token)
	if err != nil {
		return nil, errors.Wrap(err, "could not create telegram bot")
	}

	bot.Debug = c.Debug

	return &Bot{
		Bot:      bot,
		Config:   c,
		Commands: handler,
		Store:    store,
		wizards:  newWizards(),
	}, nil
}

// GetUpdatesChannel gets new updates
func (b *Bot) GetUpdatesChannel() tgbotapi.UpdatesChannel {
	updatesConfig := tgbotapi.NewUpdate(0)
	if b.Config.UpdatesTimeout > 0 {
		updatesConfig.Timeout = b.Config.UpdatesTimeout
	}
	return b.Bot.GetUpdatesChan(updatesConfig)
}

// SendMessage sends a telegram message
func (b *Bot) SendMessage(m Message) error {
	msg := tgbotapi.NewMessage(m.ChatID, m.Text)
	msg.ReplyToMessageID = m.MessageID
	msg.DisableWebPagePreview = true
	msg.ParseMode = "MarkdownV2"
	_, err := b.Bot.Send(msg)
	return errors.Wrapf(err, "could not send message to chat %d", m.ChatID)
}

// Notify satisfies the evaluator's and broadcaster's notifier.
func (b *Bot) Notify(chatID int64, text string) error {
	return b.SendMessage(Message{ChatID: chatID, Text: text})
}

// HandleUpdate processes a Telegram update and returns the reply text.
func (b *Bot) HandleUpdate(ctx context.Context, u tgbotapi.Update) string {
	chatID := u.Message.Chat.ID

	// First interaction registers the chat for the daily broadcast.
	if err := b.Store.AddSubscriber(chatID); err != nil {
		log.Errorf("failed to register subscriber %d: %v", chatID, err)
	}

	text := helpers.EscapeMarkdownV2(translation.Translate("Unknown command. Try /help."))
	command := u.Message.Command()
	log.Debugf("received command: %s", command)

	// Any command other than the wizard's own discards an in-progress
	// alert wizard without side effects before being dispatched.
	if command != "" && command != "setalert" && command != "cancel" {
		b.discardWizard(chatID)
	}

	switch command {
	case "start":
		text = b.welcomeMessage()
	case "help":
		text = b.welcomeMessage()
	case "prezzo":
		reply, err := b.Commands.CommandPrice(ctx, u.Message.CommandArguments())
		if err != nil {
			text = helpers.EscapeMarkdownV2(translation.Translate("Price not available right now, try again later."))
			log.Error(err)
		} else {
			text = reply
		}
	case "alert":
		text = b.handleAlertCommand(chatID, u.Message.CommandArguments())
	case "setalert":
		text = b.StartWizard(chatID)
	case "alerts":
		text = b.handleAlertListCommand(chatID)
	case "rimuovi":
		text = b.handleAlertRemoveCommand(chatID, u.Message.CommandArguments())
	case "frase":
		text = b.Commands.CommandPhrase()
	case "libro":
		text = b.Commands.CommandBook()
	case "news":
		reply, err := b.Commands.CommandNews(ctx, b.Config.Language)
		if err != nil {
			text = helpers.EscapeMarkdownV2(translation.Translate("News not available right now, try again later."))
			log.Error(err)
		} else {
			text = reply
		}
	case "cancel":
		text = b.CancelWizard(chatID)
	case "":
		// Plain text feeds the alert wizard when one is active and is
		// ignored otherwise.
		reply, handled := b.HandleWizardInput(chatID, u.Message.Text)
		if !handled {
			return ""
		}
		text = reply
	}

	return text
}

// handleAlertCommand handles the one-shot /alert <symbol> <target> form.
func (b *Bot) handleAlertCommand(chatID int64, args string) string {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return helpers.EscapeMarkdownV2(translation.Translate("Usage: /alert SYMBOL TARGET, e.g. /alert BTC 50000"))
	}

	asset := provider.Normalize(fields[0])
	target, err := parseTarget(fields[1])
	if err != nil {
		return helpers.EscapeMarkdownV2(translation.Translate("That is not a valid price. Send a non-negative number, e.g. 50000."))
	}

	if err := b.Store.InsertAlert(chatID, asset, target); err != nil {
		log.Errorf("failed to save alert: %v", err)
		return helpers.EscapeMarkdownV2(translation.Translate("Failed to save alert. Please try again later."))
	}

	return fmt.Sprintf(
		"✅ %s *%s* ≥ *%s*",
		helpers.EscapeMarkdownV2(translation.Translate("Alert saved:")),
		helpers.EscapeMarkdownV2(asset),
		helpers.FormatPriceUS(target, true),
	)
}

func (b *Bot) handleAlertListCommand(chatID int64) string {
	alerts, err := b.Store.AlertsByChatID(chatID)
	if err != nil {
		log.Errorf("failed to fetch alerts for chat %d: %v", chatID, err)
		return helpers.EscapeMarkdownV2(translation.Translate("Could not load your alerts. Please try again later."))
	}

	if len(alerts) == 0 {
		return helpers.EscapeMarkdownV2(translation.Translate("You have no active alerts. Create one with /setalert."))
	}

	var list strings.Builder
	list.WriteString(fmt.Sprintf("🔔 *%s*\n\n", helpers.EscapeMarkdownV2(translation.Translate("Your active alerts"))))
	for _, alert := range alerts {
		list.WriteString(fmt.Sprintf(
			"▫️ *%s* ≥ *%s* \\(%s\\)\n",
			helpers.EscapeMarkdownV2(alert.Asset),
			helpers.FormatPriceUS(alert.Target, true),
			helpers.EscapeMarkdownV2(helpers.FormatDate(alert.CreatedAt)),
		))
	}

	return list.String()
}

func (b *Bot) handleAlertRemoveCommand(chatID int64, args string) string {
	asset := provider.Normalize(args)
	if asset == "" {
		return helpers.EscapeMarkdownV2(translation.Translate("Usage: /rimuovi SYMBOL, e.g. /rimuovi BTC"))
	}

	removed, err := b.Store.DeleteAlerts(chatID, asset)
	if err != nil {
		log.Errorf("failed to remove alerts for chat %d: %v", chatID, err)
		return helpers.EscapeMarkdownV2(translation.Translate("Could not remove the alert. Please try again later."))
	}

	if removed == 0 {
		return helpers.EscapeMarkdownV2(translation.Translate("No alert found for %s.", asset))
	}
	return helpers.EscapeMarkdownV2(translation.Translate("Removed %d alert(s) for %s.", removed, asset))
}

func (b *Bot) welcomeMessage() string {
	return helpers.EscapeMarkdownV2(translation.Translate(
		"Welcome to FinanzaZen!\n\n" +
			"/prezzo SYMBOL - current price\n" +
			"/alert SYMBOL TARGET - price alert\n" +
			"/setalert - guided alert creation\n" +
			"/alerts - your alerts\n" +
			"/rimuovi SYMBOL - remove alerts\n" +
			"/news - finance headlines\n" +
			"/frase - thought of the day\n" +
			"/libro - book recommendation",
	))
}
