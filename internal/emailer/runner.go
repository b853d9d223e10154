package emailer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"RowMailer/internal/metrics"
	"RowMailer/internal/models"
)

// Credentials yields the bearer token handed to the mail sender.
type Credentials interface {
	AccessToken(ctx context.Context) (string, error)
}

// Summary is the outcome of one run over every active configuration.
type Summary struct {
	Reports []*Report
	Skipped int
}

// Runner authenticates once, loads the active configurations and runs the
// pipeline for each, isolating failures between configurations.
type Runner struct {
	Loader   *Loader
	Pipeline *Pipeline

	// Credentials may be nil for senders that need no token.
	Credentials Credentials

	// ErrorTableID is recorded in the log only; nothing is written to it.
	ErrorTableID string

	Log *zap.Logger
}

// Run returns an error only when the run cannot start: no credential, or
// the configuration table could not be read.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}

	log.Info("emailer run started", zap.String("error_table_id", r.ErrorTableID))

	var token string
	if r.Credentials != nil {
		t, err := r.Credentials.AccessToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("acquire access token: %w", err)
		}
		token = t
	}

	configs, err := r.Loader.ListActiveConfigurations(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	for _, cfg := range configs {
		clog := log.With(
			zap.Int("configuration_id", cfg.ID),
			zap.String("table_id", cfg.SourceTableID),
		)

		report, err := r.runOne(ctx, cfg, token)
		if err != nil {
			summary.Skipped++
			metrics.ConfigurationsSkipped.Inc()
			clog.Error("an error occurred while processing the emailer configuration", zap.Error(err))
			continue
		}

		summary.Reports = append(summary.Reports, report)

		fields := []zap.Field{
			zap.Int("rows", len(report.Outcomes)),
			zap.Int("sent", report.Sent()),
			zap.Int("stuck", report.Stuck()),
			zap.Int("untouched", report.Untouched()),
		}
		if report.Stuck() > 0 {
			clog.Warn("configuration processed; rows left In Progress need a manual reset", fields...)
			continue
		}
		clog.Info("configuration processed", fields...)
	}

	log.Info("emailer run finished",
		zap.Int("configurations", len(configs)),
		zap.Int("skipped", summary.Skipped),
	)

	return summary, nil
}

func (r *Runner) runOne(ctx context.Context, cfg models.Configuration, token string) (report *Report, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic while processing configuration: %v", rec)
		}
	}()

	return r.Pipeline.Run(ctx, cfg, token)
}
