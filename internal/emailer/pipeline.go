package emailer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"RowMailer/internal/email"
	"RowMailer/internal/models"
)

// Renderer turns a template reference and row variables into a message body.
type Renderer interface {
	Render(ctx context.Context, templateURL string, vars map[string]any) (email.Content, error)
}

type Option func(*Pipeline)

// WithLimiter paces sends. The default never waits.
func WithLimiter(l *rate.Limiter) Option {
	return func(p *Pipeline) {
		p.limiter = l
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		p.log = l
	}
}

// Pipeline processes one configuration at a time: it checks the source
// table against the configuration, then drives every eligible row through
// Queued -> In Progress -> Sent.
type Pipeline struct {
	store    RowStore
	renderer Renderer
	sender   email.Sender
	limiter  *rate.Limiter
	validate *validator.Validate
	log      *zap.Logger
}

func NewPipeline(store RowStore, renderer Renderer, sender email.Sender, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:    store,
		renderer: renderer,
		sender:   sender,
		limiter:  rate.NewLimiter(rate.Inf, 1),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes one configuration. A returned error means the configuration
// was skipped before any row was touched; row failures are reported in the
// Report instead.
func (p *Pipeline) Run(ctx context.Context, cfg models.Configuration, accessToken string) (*Report, error) {
	log := p.log.With(
		zap.Int("configuration_id", cfg.ID),
		zap.String("table_id", cfg.SourceTableID),
	)

	if err := p.checkConfiguration(cfg); err != nil {
		return nil, err
	}

	table, err := p.store.GetTable(ctx, cfg.SourceTableID)
	if err != nil {
		return nil, fmt.Errorf("get source table %s: %w", cfg.SourceTableID, err)
	}

	include := includeFields(cfg)
	if missing := missingFields(table, include); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s (table %s)", ErrFieldNotFound, strings.Join(missing, ", "), cfg.SourceTableID)
	}

	trigger, _ := table.Field(cfg.TriggerField)
	if trigger.Type != models.FieldTypeSingleSelect {
		return nil, fmt.Errorf("%w: %q is %q", ErrTriggerFieldType, trigger.Name, trigger.Type)
	}

	statuses, err := resolveStatusIDs(trigger, log.With(zap.String("field", trigger.Name)))
	if err != nil {
		return nil, err
	}

	rows, err := p.store.ListRows(ctx, cfg.SourceTableID, eligibleRows(cfg, include, statuses))
	if err != nil {
		return nil, fmt.Errorf("list queued rows: %w", err)
	}

	log.Info("found queued rows to process", zap.Int("count", len(rows)))

	if cfg.MessageTemplate == "" {
		return nil, ErrTemplateMissing
	}

	j := job{
		tableID:      cfg.SourceTableID,
		triggerField: cfg.TriggerField,
		recipients:   cfg.RecipientField,
		statuses:     statuses,
		cc:           cfg.CCRecipients,
		subject:      cfg.Subject,
		templateURL:  cfg.MessageTemplate,
		accessToken:  accessToken,
	}

	report := &Report{ConfigurationID: cfg.ID, TableID: cfg.SourceTableID}
	for _, row := range rows {
		report.Outcomes = append(report.Outcomes, p.process(ctx, log, j, row))
	}

	return report, nil
}

func (p *Pipeline) checkConfiguration(cfg models.Configuration) error {
	err := p.validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Join(ErrInvalidConfiguration, err)
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, fmt.Sprintf("%s failed %q", columnOf(fe.StructField()), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, strings.Join(problems, "; "))
}

func columnOf(structField string) string {
	switch structField {
	case "SourceTableID":
		return models.ColumnSourceTableID
	case "TriggerField":
		return models.ColumnTriggerField
	case "RecipientField":
		return models.ColumnRecipientField
	default:
		return structField
	}
}

// eligibleRows selects rows at Queued, or blank when the configuration
// treats blank as queued, returning only the fields the pipeline reads.
func eligibleRows(cfg models.Configuration, include []string, statuses models.StatusIDs) models.RowQuery {
	filters := []models.Filter{{
		Field: cfg.TriggerField,
		Type:  models.FilterSingleSelectEqual,
		Value: strconv.Itoa(statuses.Queued),
	}}
	if cfg.TriggerOnBlank {
		filters = append(filters, models.Filter{Field: cfg.TriggerField, Type: models.FilterEmpty})
	}

	return models.RowQuery{
		Include: include,
		Filters: filters,
		Mode:    models.FilterModeOr,
	}
}
