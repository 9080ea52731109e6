package commands

import (
	"context"

	"finanzazen-telegram-bot/internal/content"
	"finanzazen-telegram-bot/internal/news"
)

// Resolver resolves a symbol to its current price, normally the
// 60-second price cache in front of the provider registry.
type Resolver interface {
	Resolve(ctx context.Context, symbol string) (float64, error)
}

// Handler owns the read-only bot commands.
type Handler struct {
	Prices  Resolver
	News    *news.Client
	Phrases *content.List
	Books   *content.List
}
