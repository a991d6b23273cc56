// cmd/screening-worker/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"candidate-screening/internal/classifier"
	awsclient "candidate-screening/internal/common/aws"
	"candidate-screening/internal/common/camunda"
	"candidate-screening/internal/common/config"
	"candidate-screening/internal/common/database"
	"candidate-screening/internal/common/logger"
	"candidate-screening/internal/common/observability"
	"candidate-screening/internal/notify"
	"candidate-screening/internal/screening"
	"candidate-screening/internal/workflow"

	sc "candidate-screening/internal/workers/screening/screen-candidate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}
	if err := config.RequireBroker(cfg); err != nil {
		zap.NewExample().Fatal("invalid configuration", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)
	zapLog.Info("Starting screening worker...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New(cfg.Observability.ServiceName, cfg.Observability.JaegerEndpoint)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Classifier ---
	var clf classifier.Classifier = classifier.NewHTTPClassifier(&classifier.HTTPConfig{
		BaseURL:     cfg.APIs.GenAI.BaseURL,
		APIKey:      cfg.APIs.GenAI.APIKey,
		Timeout:     config.GetDuration(cfg.APIs.GenAI.Timeout),
		MaxTokens:   cfg.APIs.GenAI.MaxTokens,
		Temperature: cfg.APIs.GenAI.Temperature,
	}, log)

	if cfg.Classifier.Cache.Enabled {
		redis := database.NewRedis(cfg.Database.Redis)
		defer redis.Close()
		if err := redis.Ping(ctx); err != nil {
			zapLog.Warn("classifier cache unreachable, continuing without it", zap.Error(err))
		} else {
			clf = classifier.NewCached(
				clf,
				redis.GetClient(),
				time.Duration(cfg.Classifier.Cache.TTL)*time.Second,
				cfg.Classifier.Cache.Prefix,
				log,
				classifier.WithAccept(screening.Cacheable),
			)
			zapLog.Info("Classifier cache enabled", zap.String("address", cfg.Database.Redis.Address))
		}
	}

	screener, err := screening.New(screening.Deps{
		Classifier: clf,
		Logger:     log,
		Observers: []workflow.Observer{
			screening.LogObserver{Logger: log},
			screening.MetricsObserver{},
			screening.TraceObserver{Obs: obs},
		},
	})
	if err != nil {
		zapLog.Fatal("screening graph failed to compile", zap.Error(err))
	}

	// --- Notifications ---
	var (
		sesClient notify.SESService
		snsClient notify.SNSService
	)
	if cfg.Notifications.Email.Enabled || cfg.Notifications.Escalation.Enabled {
		awsCfg, err := awsclient.LoadConfig(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("aws config load failed", zap.Error(err))
		}
		if cfg.Notifications.Email.Enabled {
			sesClient = awsclient.NewSESClient(awsCfg)
		}
		if cfg.Notifications.Escalation.Enabled {
			snsClient = awsclient.NewSNSClient(awsCfg)
		}
	}
	notifier := notify.NewNotifier(&notify.Config{
		EmailEnabled:      cfg.Notifications.Email.Enabled,
		FromEmail:         cfg.Notifications.Email.FromEmail,
		EscalationEnabled: cfg.Notifications.Escalation.Enabled,
		TopicARN:          cfg.Notifications.Escalation.TopicARN,
	}, sesClient, snsClient, log)

	// --- Zeebe ---
	zeebe, err := camunda.Connect(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: cfg.Camunda.Plaintext,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
	}, log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	var workers []*camunda.CamundaWorker
	if config.IsWorkerEnabled(cfg, sc.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, sc.TaskType)
		handler := sc.NewHandler(
			&sc.Config{Timeout: config.GetDuration(wcfg.Timeout)},
			screener, notifier, log,
		)
		workers = append(workers, camunda.NewWorker(
			zeebe.GetClient(), sc.TaskType, wcfg.MaxJobsActive, config.GetDuration(wcfg.Timeout), handler, log,
		))
	} else {
		zapLog.Info("worker disabled", zap.String("taskType", sc.TaskType))
	}

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := zeebe.HealthCheck(r.Context()); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: cfg.Observability.HTTPAddress, Handler: mux}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Screening worker stopped gracefully")
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}
