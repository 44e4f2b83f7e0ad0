package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	commonaws "news-intel/internal/common/aws"
	"news-intel/internal/common/config"
	apperrors "news-intel/internal/common/errors"
	"news-intel/internal/common/llm"
	"news-intel/internal/common/logger"
	"news-intel/internal/common/observability"
	"news-intel/internal/models"
	"news-intel/internal/pipeline"

	rf "news-intel/internal/workers/ai/relevance-filter"
	sc "news-intel/internal/workers/ai/summary-compose"
	es "news-intel/internal/workers/communication/email-send"
	cl "news-intel/internal/workers/crm/crm-load"
	lc "news-intel/internal/workers/infrastructure/load-customers"
	ws "news-intel/internal/workers/search/web-search"
)

const dryRunFrom = "intel-notifier@localhost"

func runNotifier(cmd *cobra.Command, _ []string) error {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath, flagOverrides(cmd))
	} else {
		cfg, err = config.Load(flagOverrides(cmd))
	}
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer func() { _ = zapLog.Sync() }()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting intel notifier",
		zap.String("environment", cfg.App.Environment),
		zap.String("crmSource", cfg.CRM.Source),
		zap.String("emailProvider", cfg.Notifications.Email.Provider),
		zap.Int("concurrency", cfg.Pipeline.Concurrency),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	if cfg.Metrics.ListenAddress != "" {
		shutdown := serveMetrics(cfg.Metrics.ListenAddress, log)
		defer shutdown()
	}

	customers, err := lc.NewLoader(log).Load(cfg.Inputs.CustomersFile)
	if err != nil {
		return err
	}

	crm, err := loadCRM(ctx, cfg, log)
	if err != nil {
		return err
	}

	orchestrator, err := buildOrchestrator(ctx, cfg, log, crm, obs)
	if err != nil {
		return err
	}

	report := orchestrator.Run(ctx, customers)

	zapLog.Info("Run complete",
		zap.String("runId", report.RunID),
		zap.Int("customers", len(report.Outcomes)),
		zap.Int("sent", report.Count(pipeline.ResultSent)),
		zap.Duration("duration", report.Duration),
	)
	return nil
}

// loadCRM reads the snapshot once. A remote source that cannot be reached
// degrades to an empty book; a malformed snapshot is fatal.
func loadCRM(ctx context.Context, cfg *config.Config, log logger.Logger) (*models.CRMBook, error) {
	deps := cl.ServiceDependencies{Logger: log}

	source, closeSource, err := cl.NewSource(ctx, deps, cfg)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeTransport) {
			log.Warn("CRM source unavailable, running without CRM insights", map[string]interface{}{
				"source": cfg.CRM.Source,
				"error":  err.Error(),
			})
			return models.NewCRMBook(), nil
		}
		return nil, err
	}
	defer func() { _ = closeSource() }()

	book, err := source.Load(ctx)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeConfig) {
			return nil, err
		}
		log.Warn("CRM load failed, running without CRM insights", map[string]interface{}{
			"source":    source.Name(),
			"error":     err.Error(),
			"errorCode": apperrors.CodeOf(err),
		})
		return models.NewCRMBook(), nil
	}
	return book, nil
}

func buildOrchestrator(ctx context.Context, cfg *config.Config, log logger.Logger, crm *models.CRMBook, obs *observability.Observability) (*pipeline.Orchestrator, error) {
	genai, err := llm.NewClient(llm.Config{
		Provider: cfg.APIs.GenAI.Provider,
		APIKey:   cfg.APIs.GenAI.APIKey,
		BaseURL:  cfg.APIs.GenAI.BaseURL,
		Timeout:  config.GetDuration(cfg.APIs.GenAI.Timeout),
	})
	if err != nil {
		return nil, apperrors.NewConfigError("generation client", err)
	}

	searchCfg := &ws.Config{
		BaseURL:    cfg.APIs.WebSearch.BaseURL,
		APIKey:     cfg.APIs.WebSearch.APIKey,
		MaxResults: cfg.APIs.WebSearch.MaxResults,
		Recency:    cfg.APIs.WebSearch.Recency,
		Timeout:    config.GetDuration(cfg.APIs.WebSearch.Timeout),
	}
	filterCfg := &rf.Config{Model: cfg.APIs.GenAI.FilterModel, MaxTokens: cfg.APIs.GenAI.MaxTokens}
	composeCfg := &sc.Config{Model: cfg.APIs.GenAI.ComposeModel, MaxTokens: cfg.APIs.GenAI.MaxTokens}

	emailCfg := es.DefaultConfig()
	emailCfg.Provider = cfg.Notifications.Email.Provider
	emailCfg.SMTPHost = cfg.Integrations.SMTP.Host
	emailCfg.SMTPPort = cfg.Integrations.SMTP.Port
	emailCfg.SMTPUsername = cfg.Integrations.SMTP.Username
	emailCfg.SMTPPassword = cfg.Integrations.SMTP.Password
	emailCfg.UseTLS = cfg.Integrations.SMTP.UseTLS
	emailCfg.DefaultFrom = cfg.Notifications.Email.FromEmail
	emailCfg.SubjectPrefix = cfg.Notifications.Email.SubjectPrefix
	if emailCfg.DefaultFrom == "" && emailCfg.Provider == config.EmailProviderLog {
		emailCfg.DefaultFrom = dryRunFrom
	}

	pipelineCfg := pipeline.DefaultConfig()
	pipelineCfg.Concurrency = cfg.Pipeline.Concurrency
	pipelineCfg.FallbackCount = cfg.Pipeline.FallbackCount
	pipelineCfg.SearchLimit = cfg.APIs.WebSearch.MaxResults

	for _, section := range []struct {
		name string
		cfg  interface{ Validate() error }
	}{
		{"web_search", searchCfg},
		{"filter", filterCfg},
		{"compose", composeCfg},
		{"notifications", emailCfg},
		{"pipeline", pipelineCfg},
	} {
		if err := section.cfg.Validate(); err != nil {
			return nil, apperrors.NewConfigError(section.name, err)
		}
	}

	sender, err := newSender(ctx, cfg, emailCfg, log)
	if err != nil {
		return nil, err
	}

	return pipeline.NewOrchestrator(pipeline.Dependencies{
		Logger:        log,
		Searcher:      ws.NewService(ws.ServiceDependencies{Logger: log}, searchCfg),
		Filter:        rf.NewService(rf.ServiceDependencies{Logger: log, LLM: genai}, filterCfg),
		Composer:      sc.NewService(sc.ServiceDependencies{Logger: log, LLM: genai}, composeCfg),
		Notifier:      es.NewService(es.ServiceDependencies{Logger: log, Sender: sender}, emailCfg),
		CRM:           crm,
		Observability: obs,
	}, pipelineCfg), nil
}

func newSender(ctx context.Context, cfg *config.Config, emailCfg *es.Config, log logger.Logger) (es.Sender, error) {
	switch emailCfg.Provider {
	case config.EmailProviderSES:
		client, err := commonaws.NewSESClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			return nil, apperrors.NewConfigError("ses client", err)
		}
		return es.NewSESSender(client), nil
	case config.EmailProviderLog:
		return es.NewLogSender(log), nil
	default:
		return es.NewSMTPSender(emailCfg), nil
	}
}

// serveMetrics exposes /metrics until the returned shutdown func is called.
func serveMetrics(addr string, log logger.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics listener failed", map[string]interface{}{"addr": addr, "error": err.Error()})
		}
	}()
	log.Info("metrics listener started", map[string]interface{}{"addr": addr})

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
