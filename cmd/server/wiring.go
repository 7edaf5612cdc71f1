package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/billsplit/internal/auth"
	"github.com/mmynk/billsplit/internal/config"
	"github.com/mmynk/billsplit/internal/ingest"
	"github.com/mmynk/billsplit/internal/metrics"
	"github.com/mmynk/billsplit/internal/middleware"
	"github.com/mmynk/billsplit/internal/notify"
	"github.com/mmynk/billsplit/internal/payment"
	"github.com/mmynk/billsplit/internal/service"
	"github.com/mmynk/billsplit/internal/session"
	"github.com/mmynk/billsplit/internal/storage"
	"github.com/mmynk/billsplit/internal/storage/memory"
	"github.com/mmynk/billsplit/internal/storage/sqlite"
	"github.com/mmynk/billsplit/pkg/api/apiconnect"
)

// tokenDuration only matters for tokens minted by this process; the server
// validates tokens issued elsewhere.
const tokenDuration = 24 * time.Hour

func newStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case "memory":
		slog.Info("Storage initialized", "backend", "memory")
		return memory.New(), nil
	default:
		store, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize storage: %w", err)
		}
		slog.Info("Storage initialized", "backend", "sqlite", "database", cfg.DBPath)
		return store, nil
	}
}

func newNotifier(cfg *config.Config) (notify.Notifier, func(), error) {
	if cfg.NotifyBackend != "amqp" {
		return notify.NewLogNotifier(nil), func() {}, nil
	}
	n, err := notify.NewAMQPNotifier(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize notifier: %w", err)
	}
	slog.Info("Notifications via AMQP", "exchange", cfg.AMQPExchange, "routing_key", cfg.AMQPRoutingKey)
	return n, func() {
		if err := n.Close(); err != nil {
			slog.Warn("Failed to close AMQP notifier", "error", err)
		}
	}, nil
}

func newRequester(cfg *config.Config) (payment.Requester, func()) {
	if cfg.PaymentBackend != "kafka" {
		return payment.LogRequester{}, func() {}
	}
	k := payment.NewKafkaRequester(cfg.KafkaBrokers, cfg.KafkaTopic)
	slog.Info("Payment requests via Kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	return k, func() {
		if err := k.Close(); err != nil {
			slog.Warn("Failed to close Kafka writer", "error", err)
		}
	}
}

func newIngestor(cfg *config.Config) ingest.Ingestor {
	if cfg.IngestMode == "external" {
		slog.Info("Ingestion delegated to external backend")
		return ingest.External{}
	}
	slog.Info("Ingestion simulated",
		"upload_delay", cfg.IngestUploadDelay,
		"process_delay", cfg.IngestProcessDelay,
	)
	return ingest.NewSimulated(cfg.IngestUploadDelay, cfg.IngestProcessDelay)
}

func newRouter(cfg *config.Config, manager *session.Manager, m *metrics.Metrics) http.Handler {
	interceptors := []connect.Interceptor{middleware.LoggingInterceptor(m)}
	if cfg.AuthEnabled() {
		jwtManager := auth.NewJWTManager(cfg.JWTSecret, tokenDuration)
		if cfg.AuthRequired {
			interceptors = append([]connect.Interceptor{middleware.RequireAuth(jwtManager)}, interceptors...)
		} else {
			interceptors = append([]connect.Interceptor{middleware.OptionalAuth(jwtManager)}, interceptors...)
		}
		slog.Info("Authentication enabled", "required", cfg.AuthRequired)
	}

	path, handler := apiconnect.NewBillSplitServiceHandler(
		service.NewBillSplitService(manager),
		connect.WithInterceptors(interceptors...),
	)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.CORS)
	if cfg.RateLimitPerMinute > 0 {
		r.Use(httprate.Limit(cfg.RateLimitPerMinute, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Mount(path, handler)

	return r
}
