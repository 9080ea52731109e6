package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/leonelquinteros/gotext"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	log "github.com/sirupsen/logrus"

	"finanzazen-telegram-bot/config"
	"finanzazen-telegram-bot/internal/alert"
	"finanzazen-telegram-bot/internal/broadcast"
	"finanzazen-telegram-bot/internal/commands"
	"finanzazen-telegram-bot/internal/content"
	"finanzazen-telegram-bot/internal/database"
	"finanzazen-telegram-bot/internal/news"
	"finanzazen-telegram-bot/internal/pricecache"
	"finanzazen-telegram-bot/internal/provider"
	"finanzazen-telegram-bot/internal/telegram"
)

type BotMetrics struct {
	CommandsProcessed prometheus.Counter
	MessagesHandled   prometheus.Counter
	AlertsFired       prometheus.Counter
	BroadcastsSent    prometheus.Counter
}

var metrics = NewBotMetrics()

func init() {
	config.InitConfig()
	setupLogging()
}

func NewBotMetrics() *BotMetrics {
	m := &BotMetrics{
		CommandsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "finanzazen",
			Subsystem: "telegram_bot",
			Name:      "commands_processed",
			Help:      "The total number of processed commands",
		}),
		MessagesHandled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "finanzazen",
			Subsystem: "telegram_bot",
			Name:      "messages_handled",
			Help:      "The total number of handled messages",
		}),
		AlertsFired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "finanzazen",
			Subsystem: "telegram_bot",
			Name:      "alerts_fired",
			Help:      "The total number of alert notifications delivered",
		}),
		BroadcastsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "finanzazen",
			Subsystem: "telegram_bot",
			Name:      "broadcasts_sent",
			Help:      "The total number of daily broadcast messages delivered",
		}),
	}

	prometheus.MustRegister(m.CommandsProcessed)
	prometheus.MustRegister(m.MessagesHandled)
	prometheus.MustRegister(m.AlertsFired)
	prometheus.MustRegister(m.BroadcastsSent)

	return m
}

func main() {
	gotext.Configure("locales", strings.ToLower(config.GetString("lang")), "default")

	store, err := database.Open(config.GetString("database_path"))
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	loadMetrics(store)

	registry := provider.NewRegistry(
		provider.NewCrypto(config.GetString("coinpaprika_api_key")),
		provider.NewFX(config.GetString("fx_base_url")),
		provider.NewAltCoin(config.GetString("altcoin_base_url")),
		provider.NewFinnhub(config.GetString("finnhub_base_url"), config.GetString("finnhub_api_key")),
	)
	cache := pricecache.New(registry, pricecache.DefaultTTL)

	handler := &commands.Handler{
		Prices:  cache,
		News:    news.NewClient(config.GetString("newsdata_base_url"), config.GetString("newsdata_api_key")),
		Phrases: content.LoadPhrases(config.GetString("phrases_path")),
		Books:   content.LoadBooks(config.GetString("books_path")),
	}

	bot, err := telegram.NewBot(telegram.BotConfig{
		Token:          config.GetString("telegram_bot_token"),
		Debug:          config.GetBool("debug"),
		UpdatesTimeout: 60,
		Language:       config.GetString("lang"),
	}, handler, store)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	evaluator := alert.NewEvaluator(store, cache, bot, alert.DefaultInterval)
	evaluator.OnFired = metrics.AlertsFired.Inc
	evaluator.Start(ctx)

	broadcaster := broadcast.New(store, bot, handler.Phrases, config.GetInt("broadcast_hour"))
	broadcaster.OnSent = metrics.BroadcastsSent.Inc
	broadcaster.Start(ctx)

	go handleUpdates(ctx, bot, bot.GetUpdatesChannel())

	go func() {
		for {
			time.Sleep(5 * time.Minute)
			saveMetrics(store)
		}
	}()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		cancel()
		saveMetrics(store)
		log.Println("Metrics saved, shutting down...")
		os.Exit(0)
	}()

	if err := launchMetricsAndHealthServer(config.GetInt("metrics_port")); err != nil {
		log.Fatalf("Failed to start metrics and health server: %v", err)
	}
}

func setupLogging() {
	log.SetLevel(log.ErrorLevel)
	if config.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}
	log.Debug("Starting telegram bot...")
}

func handleUpdates(ctx context.Context, bot *telegram.Bot, updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		if update.Message == nil {
			log.Debug("Received non-message update")
			continue
		}

		metrics.MessagesHandled.Inc()
		handleCommand(ctx, bot, update)
	}
}

func handleCommand(ctx context.Context, bot *telegram.Bot, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			stackBuf := make([]byte, 1024)
			stackSize := runtime.Stack(stackBuf, false)
			log.Errorf("Recovered from panic: %v\nStack trace: %s", r, stackBuf[:stackSize])
		}
	}()

	text := bot.HandleUpdate(ctx, update)
	if text == "" {
		return
	}

	err := bot.SendMessage(telegram.Message{
		ChatID:    update.Message.Chat.ID,
		Text:      text,
		MessageID: update.Message.MessageID,
	})

	if err != nil {
		log.Errorf("Failed to send message: %v", err)
	} else {
		metrics.CommandsProcessed.Inc()
	}
}

func healthCheckHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func launchMetricsAndHealthServer(port int) error {
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/health", healthCheckHandler)

	log.Infof("Launching metrics and health endpoint on :%d", port)
	return http.ListenAndServe(fmt.Sprintf(":%d", port), http.DefaultServeMux)
}

func loadMetrics(store *database.Store) {
	for name, counter := range persistedCounters() {
		value, err := store.GetMetric(name)
		if err != nil {
			log.Errorf("Failed to load metric %s: %v", name, err)
			continue
		}
		counter.Add(value)
	}
	log.Println("Metrics loaded from database.")
}

func saveMetrics(store *database.Store) {
	for name, counter := range persistedCounters() {
		if err := store.SaveMetric(name, counterValue(counter)); err != nil {
			log.Errorf("Failed to persist metric %s: %v", name, err)
		}
	}
	log.Println("Metrics saved to database.")
}

func persistedCounters() map[string]prometheus.Counter {
	return map[string]prometheus.Counter{
		"commands_processed": metrics.CommandsProcessed,
		"messages_handled":   metrics.MessagesHandled,
		"alerts_fired":       metrics.AlertsFired,
		"broadcasts_sent":    metrics.BroadcastsSent,
	}
}

func counterValue(counter prometheus.Counter) float64 {
	metricProto := &dto.Metric{}
	if err := counter.Write(metricProto); err != nil {
		log.Printf("Failed to read metric value: %v", err)
		return 0
	}
	return metricProto.Counter.GetValue()
}
