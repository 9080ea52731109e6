package telegram

import (
	"fmt"
	"math"
	"strconv"
	"sync"

	"finanzazen-telegram-bot/internal/provider"
	"finanzazen-telegram-bot/lib/helpers"
	"finanzazen-telegram-bot/lib/translation"

	log "github.com/sirupsen/logrus"
)

// The alert-creation wizard is a per-chat state machine. Nothing is
// persisted before the final state: cancelling mid-flow has no side
// effects.
type wizardState int

const (
	awaitingAsset wizardState = iota
	awaitingTarget
)

type wizard struct {
	state wizardState
	asset string
}

type wizards struct {
	mu     sync.Mutex
	active map[int64]*wizard
}

func newWizards() *wizards {
	return &wizards{active: make(map[int64]*wizard)}
}

// parseTarget validates an alert target: a finite, non-negative number.
func parseTarget(raw string) (float64, error) {
	target, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(target) || math.IsInf(target, 0) || target < 0 {
		return 0, fmt.Errorf("target out of range: %s", raw)
	}
	return target, nil
}

// StartWizard begins the alert-creation flow for a chat, discarding
// any flow already in progress there.
func (b *Bot) StartWizard(chatID int64) string {
	b.wizards.mu.Lock()
	b.wizards.active[chatID] = &wizard{state: awaitingAsset}
	b.wizards.mu.Unlock()

	return helpers.EscapeMarkdownV2(translation.Translate("Which asset do you want to watch? (e.g. BTC, AAPL)"))
}

// discardWizard drops any in-progress flow for the chat without a
// user-facing reply.
func (b *Bot) discardWizard(chatID int64) {
	b.wizards.mu.Lock()
	delete(b.wizards.active, chatID)
	b.wizards.mu.Unlock()
}

// CancelWizard discards any in-progress flow for the chat.
func (b *Bot) CancelWizard(chatID int64) string {
	b.wizards.mu.Lock()
	_, active := b.wizards.active[chatID]
	delete(b.wizards.active, chatID)
	b.wizards.mu.Unlock()

	if !active {
		return helpers.EscapeMarkdownV2(translation.Translate("Nothing to cancel."))
	}
	return helpers.EscapeMarkdownV2(translation.Translate("Alert creation cancelled."))
}

// HandleWizardInput feeds a plain-text message into the chat's active
// wizard. The second return value reports whether a wizard consumed
// the message.
func (b *Bot) HandleWizardInput(chatID int64, text string) (string, bool) {
	b.wizards.mu.Lock()
	w, active := b.wizards.active[chatID]
	b.wizards.mu.Unlock()

	if !active {
		return "", false
	}

	switch w.state {
	case awaitingAsset:
		asset := provider.Normalize(text)
		if asset == "" {
			return helpers.EscapeMarkdownV2(translation.Translate("Please send an asset symbol, e.g. BTC.")), true
		}
		w.asset = asset
		w.state = awaitingTarget
		return helpers.EscapeMarkdownV2(
			translation.Translate("At which price should I alert you for %s?", asset),
		), true

	case awaitingTarget:
		target, err := parseTarget(text)
		if err != nil {
			return helpers.EscapeMarkdownV2(translation.Translate("That is not a valid price. Send a non-negative number, e.g. 50000.")), true
		}

		// Done: persist only now.
		if err := b.Store.InsertAlert(chatID, w.asset, target); err != nil {
			log.Errorf("failed to save wizard alert: %v", err)
			return helpers.EscapeMarkdownV2(translation.Translate("Failed to save alert. Please try again later.")), true
		}

		b.wizards.mu.Lock()
		delete(b.wizards.active, chatID)
		b.wizards.mu.Unlock()

		return fmt.Sprintf(
			"✅ %s *%s* ≥ *%s*",
			helpers.EscapeMarkdownV2(translation.Translate("Alert saved:")),
			helpers.EscapeMarkdownV2(w.asset),
			helpers.FormatPriceUS(target, true),
		), true
	}

	return "", false
}
