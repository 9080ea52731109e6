package config

import (
	"github.com/spf13/viper"
	"sync"
)

var once sync.Once

func InitConfig() {
	once.Do(func() {
		viper.AutomaticEnv()

		viper.BindEnv("metrics_port", "METRICS_PORT")
		viper.BindEnv("telegram_bot_token", "TELEGRAM_BOT_TOKEN")
		viper.BindEnv("finnhub_api_key", "FINNHUB_API_KEY")
		viper.BindEnv("newsdata_api_key", "NEWSDATA_API_KEY")
		viper.BindEnv("coinpaprika_api_key", "COINPAPRIKA_API_KEY")
		viper.BindEnv("debug", "DEBUG")
		viper.BindEnv("lang", "BOT_LANG")
		viper.BindEnv("database_path", "DATABASE_PATH")
		viper.BindEnv("phrases_path", "PHRASES_PATH")
		viper.BindEnv("books_path", "BOOKS_PATH")
		viper.BindEnv("broadcast_hour", "BROADCAST_HOUR")
		viper.BindEnv("fx_base_url", "FX_BASE_URL")
		viper.BindEnv("altcoin_base_url", "ALTCOIN_BASE_URL")
		viper.BindEnv("finnhub_base_url", "FINNHUB_BASE_URL")
		viper.BindEnv("newsdata_base_url", "NEWSDATA_BASE_URL")

		viper.SetDefault("metrics_port", 9090)
		viper.SetDefault("debug", false)
		viper.SetDefault("lang", "it")
		viper.SetDefault("database_path", "/app/data/bot.db")
		viper.SetDefault("phrases_path", "frasi.json")
		viper.SetDefault("books_path", "libri.json")
		viper.SetDefault("broadcast_hour", 8)
		viper.SetDefault("fx_base_url", "https://api.exchangerate.host")
		viper.SetDefault("altcoin_base_url", "https://api.cryptonator.com")
		viper.SetDefault("finnhub_base_url", "https://finnhub.io")
		viper.SetDefault("newsdata_base_url", "https://newsdata.io")
	})
}

func GetString(key string) string {
	InitConfig()
	return viper.GetString(key)
}

func GetInt(key string) int {
	InitConfig()
	return viper.GetInt(key)
}

func GetBool(key string) bool {
	InitConfig()
	return viper.GetBool(key)
}
