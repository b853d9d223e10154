package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"

	"RowMailer/internal/auth"
	"RowMailer/internal/config"
	"RowMailer/internal/email"
	"RowMailer/internal/emailer"
	"RowMailer/internal/metrics"
	"RowMailer/internal/rowstore"
)

func main() {

	// ------------------------------------------------
	// Config
	// ------------------------------------------------
	cfg, cfgErr := config.Load()

	// ------------------------------------------------
	// Logger
	// ------------------------------------------------
	level := zapcore.InfoLevel
	if cfg != nil {
		if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			level = zapcore.InfoLevel
		}
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	if cfgErr != nil {
		logger.Fatal("failed to load config", zap.Error(cfgErr))
	}

	// ------------------------------------------------
	// Root Context + Interrupt
	// ------------------------------------------------
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ------------------------------------------------
	// Metrics
	// ------------------------------------------------
	metrics.Init()

	// ------------------------------------------------
	// Row Store
	// ------------------------------------------------
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	store, err := rowstore.New(cfg.BaserowURL, cfg.BaserowAPIToken,
		rowstore.WithHTTPClient(httpClient),
		rowstore.WithPageSize(cfg.RowPageSize),
		rowstore.WithLogger(logger),
	)
	if err != nil {
		logger.Fatal("row store client setup failed", zap.Error(err))
	}

	// ------------------------------------------------
	// Email Sender + Credentials
	// ------------------------------------------------
	var (
		sender email.Sender
		creds  emailer.Credentials
	)

	switch cfg.MailDriver {
	case config.MailDriverSMTP:
		sender = &email.SMTPSender{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}

	default:
		sender = &email.GraphSender{
			BaseURL: cfg.GraphBaseURL,
			From:    cfg.MailFrom,
			Client:  httpClient,
			Log:     logger,
		}

		provider, err := auth.NewProvider(
			auth.Config{
				ClientID:      cfg.ClientID,
				TenantID:      cfg.TenantID,
				AuthorityHost: cfg.AuthorityHost,
			},
			auth.WithHTTPClient(httpClient),
			auth.WithCache(auth.NewFileCache(cfg.TokenCachePath)),
			auth.WithLogger(logger),
		)
		if err != nil {
			logger.Fatal("token provider setup failed", zap.Error(err))
		}
		creds = provider
	}

	// ------------------------------------------------
	// Rate Limiter
	// ------------------------------------------------
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	limiter := rate.NewLimiter(limit, 1)

	// ------------------------------------------------
	// Run
	// ------------------------------------------------
	runner := &emailer.Runner{
		Loader: emailer.NewLoader(store, cfg.ConfigTableID, logger),
		Pipeline: emailer.NewPipeline(store, email.NewRenderer(httpClient, logger), sender,
			emailer.WithLimiter(limiter),
			emailer.WithLogger(logger),
		),
		Credentials:  creds,
		ErrorTableID: cfg.ErrorTableID,
		Log:          logger,
	}

	summary, runErr := runner.Run(ctx)

	// ------------------------------------------------
	// Push Metrics
	// ------------------------------------------------
	if cfg.PushgatewayURL != "" {
		if err := metrics.Push(context.Background(), cfg.PushgatewayURL, runID); err != nil {
			logger.Error("metrics push failed", zap.Error(err))
		}
	}

	if runErr != nil {
		logger.Fatal("emailer run failed", zap.Error(runErr))
	}

	logger.Info("emailer run complete",
		zap.Int("configurations_processed", len(summary.Reports)),
		zap.Int("configurations_skipped", summary.Skipped),
	)
}
