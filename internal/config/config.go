package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// maxNotifyTimeoutSeconds keeps the timeout within the int32 milliseconds
// the D-Bus notification API takes.
const maxNotifyTimeoutSeconds = 24 * 60 * 60

type Config struct {
	HTTPAddr string

	NotifyTimeout       time.Duration
	NotifyBackend       string
	NotifyAppName       string
	NotifySwallowErrors bool

	SSEHeartbeat     time.Duration
	HistoryLimit     int
	EventHistorySize int

	RabbitMQURL       string
	RabbitExchange    string
	RabbitQueue       string
	RabbitRequestKey  string
	RabbitEventPrefix string
	RabbitConsumerTag string

	OTELServiceName string
	OTLPEndpoint    string
	OTLPInsecure    bool
}

// New reads the process configuration once. Values from a local .env file
// are loaded first and never override variables already set in the
// environment.
func New() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:          ":8000",
		NotifyTimeout:     15 * time.Second,
		NotifyBackend:     "auto",
		NotifyAppName:     "notify-relay",
		SSEHeartbeat:      15 * time.Second,
		HistoryLimit:      20,
		EventHistorySize:  100,
		RabbitExchange:    "notifications",
		RabbitQueue:       "notify.requests",
		RabbitRequestKey:  "notify.request",
		RabbitEventPrefix: "notification",
		RabbitConsumerTag: "notify-relay",
		OTELServiceName:   "notify-relay",
		OTLPInsecure:      true,
	}

	if addr := os.Getenv("HTTP_ADDR"); addr != "" {
		cfg.HTTPAddr = addr
	} else if port := os.Getenv("PORT"); port != "" {
		cfg.HTTPAddr = ":" + port
	}

	if v := os.Getenv("NOTIFY_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= maxNotifyTimeoutSeconds {
			cfg.NotifyTimeout = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("NOTIFY_BACKEND"); v != "" {
		cfg.NotifyBackend = v
	}
	if v := os.Getenv("NOTIFY_APP_NAME"); v != "" {
		cfg.NotifyAppName = v
	}
	if v := os.Getenv("NOTIFY_SWALLOW_ERRORS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.NotifySwallowErrors = b
		}
	}

	if v := os.Getenv("SSE_HEARTBEAT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SSEHeartbeat = time.Duration(n) * time.Second
		}
	}

	if v := os.Getenv("HISTORY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.HistoryLimit = n
		}
	}
	if v := os.Getenv("EVENT_HISTORY_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.EventHistorySize = n
		}
	}

	cfg.RabbitMQURL = os.Getenv("RABBITMQ_URL")
	if v := os.Getenv("RABBITMQ_EXCHANGE"); v != "" {
		cfg.RabbitExchange = v
	}
	if v := os.Getenv("RABBITMQ_QUEUE"); v != "" {
		cfg.RabbitQueue = v
	}
	if v := os.Getenv("RABBITMQ_REQUEST_KEY"); v != "" {
		cfg.RabbitRequestKey = v
	}
	if v := os.Getenv("RABBITMQ_EVENT_PREFIX"); v != "" {
		cfg.RabbitEventPrefix = v
	}
	if v := os.Getenv("RABBITMQ_CONSUMER_TAG"); v != "" {
		cfg.RabbitConsumerTag = v
	}

	if v := os.Getenv("OTEL_SERVICE_NAME"); v != "" {
		cfg.OTELServiceName = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTLPEndpoint = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_INSECURE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.OTLPInsecure = b
		}
	}

	return cfg
}
