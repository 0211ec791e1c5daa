package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string

	// WhatsApp Cloud API
	VerifyToken   string
	AppSecret     string
	AccessToken   string
	PhoneNumberID string
	GraphBaseURL  string

	// Optional external text parser endpoint
	ParserURL    string
	ParserAPIKey string

	// Optional SQS queues; empty URL means synchronous operation
	InboundQueueURL  string
	OutboundQueueURL string

	// Optional CloudWatch metrics; empty namespace disables them
	MetricsNamespace string

	// Static bearer token guarding the expense/admin HTTP API
	APIToken string

	DefaultCurrency   string
	DailyLimitFree    int
	DailyLimitPremium int
}

// Load reads configuration from the environment, with a .env file as a
// convenience for local runs. Missing required variables are fatal.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	cfg := Config{
		Port:              getenv("PORT", "8080"),
		DatabaseURL:       mustGetenv("DATABASE_URL"),
		VerifyToken:       mustGetenv("WHATSAPP_VERIFY_TOKEN"),
		AppSecret:         mustGetenv("WHATSAPP_APP_SECRET"),
		AccessToken:       mustGetenv("WHATSAPP_ACCESS_TOKEN"),
		PhoneNumberID:     mustGetenv("WHATSAPP_PHONE_NUMBER_ID"),
		GraphBaseURL:      getenv("WHATSAPP_GRAPH_BASE_URL", "https://graph.facebook.com/v18.0"),
		ParserURL:         os.Getenv("EXTERNAL_TEXT_PARSER_URL"),
		ParserAPIKey:      os.Getenv("EXTERNAL_TEXT_PARSER_API_KEY"),
		InboundQueueURL:   os.Getenv("INBOUND_QUEUE_URL"),
		OutboundQueueURL:  os.Getenv("OUTBOUND_QUEUE_URL"),
		MetricsNamespace:  os.Getenv("METRICS_NAMESPACE"),
		APIToken:          os.Getenv("API_TOKEN"),
		DefaultCurrency:   getenv("DEFAULT_CURRENCY", "USD"),
		DailyLimitFree:    getenvInt("DAILY_LIMIT_FREE", 10),
		DailyLimitPremium: getenvInt("DAILY_LIMIT_PREMIUM", 100),
	}

	return cfg
}

func mustGetenv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("environment variable %s not set", key)
	}
	return v
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("environment variable %s must be an integer, got %q", key, v)
	}
	return n
}
