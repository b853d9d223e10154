package emailer

import (
	"context"

	"go.uber.org/zap"

	"RowMailer/internal/email"
	"RowMailer/internal/metrics"
	"RowMailer/internal/models"
)

// Stage names a step of the per-row transition.
type Stage string

const (
	StageClaim      Stage = "claim"
	StageRender     Stage = "render"
	StageRecipients Stage = "recipients"
	StageSend       Stage = "send"
	StageFinalize   Stage = "finalize"
)

// Outcome is the result of driving one row through the transition.
//
// Status is the last status written to the row; it is empty when the claim
// failed and the row kept whatever it held before. FailedStage and Err are
// set when a step failed.
type Outcome struct {
	RowID       int
	Status      models.Status
	FailedStage Stage
	Err         error
}

func (o Outcome) OK() bool { return o.Err == nil }

// Report summarises one configuration's pass over its rows.
type Report struct {
	ConfigurationID int
	TableID         string
	Outcomes        []Outcome
}

func (r *Report) count(status models.Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

func (r *Report) Sent() int { return r.count(models.StatusSent) }

// Stuck counts rows left at In Progress. A later run will not pick them up.
func (r *Report) Stuck() int { return r.count(models.StatusInProgress) }

func (r *Report) Untouched() int { return r.count("") }

type job struct {
	tableID      string
	triggerField string
	recipients   string
	statuses     models.StatusIDs
	cc           []string
	subject      string
	templateURL  string
	accessToken  string
}

func (p *Pipeline) process(ctx context.Context, log *zap.Logger, j job, row models.Row) Outcome {
	log = log.With(zap.Int("row_id", row.ID))
	out := Outcome{RowID: row.ID}

	// ----------------------------
	// Claim
	// ----------------------------
	if err := p.store.UpdateRow(ctx, j.tableID, row.ID, map[string]any{j.triggerField: j.statuses.InProgress}); err != nil {
		return p.fail(log, out, StageClaim, err)
	}
	out.Status = models.StatusInProgress
	metrics.RowsClaimed.Inc()
	log.Debug("updated row to In Progress")

	// ----------------------------
	// Render
	// ----------------------------
	content, err := p.renderer.Render(ctx, j.templateURL, templateVars(row))
	if err != nil {
		return p.fail(log, out, StageRender, err)
	}

	// ----------------------------
	// Recipients
	// ----------------------------
	to := CommaDelimitedToList(row.Value(j.recipients).String())
	if len(to) == 0 {
		return p.fail(log.With(zap.String("field", j.recipients)), out, StageRecipients, ErrNoRecipients)
	}

	// ----------------------------
	// Send
	// ----------------------------
	if err := p.limiter.Wait(ctx); err != nil {
		return p.fail(log, out, StageSend, err)
	}

	msg := email.Message{
		To:      to,
		Cc:      j.cc,
		Subject: j.subject,
		Content: content,
	}
	if err := p.sender.Send(ctx, j.accessToken, msg); err != nil {
		return p.fail(log, out, StageSend, err)
	}

	metrics.EmailsSent.Inc()
	log.Info("email sent", zap.Strings("recipients", to))

	// ----------------------------
	// Finalize
	// ----------------------------
	if err := p.store.UpdateRow(ctx, j.tableID, row.ID, map[string]any{j.triggerField: j.statuses.Sent}); err != nil {
		metrics.FinalizeFailures.Inc()
		log.Error("email sent but row status not updated; the row may be sent again",
			zap.String("stage", string(StageFinalize)),
			zap.Error(err),
		)
		out.FailedStage = StageFinalize
		out.Err = err
		return out
	}
	out.Status = models.StatusSent
	log.Debug("updated row to Sent")

	return out
}

func (p *Pipeline) fail(log *zap.Logger, out Outcome, stage Stage, err error) Outcome {
	metrics.EmailFailures.WithLabelValues(string(stage)).Inc()
	log.Error("row skipped",
		zap.String("stage", string(stage)),
		zap.String("status", string(out.Status)),
		zap.Error(err),
	)
	out.FailedStage = stage
	out.Err = err
	return out
}
