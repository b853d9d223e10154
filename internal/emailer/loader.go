package emailer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"RowMailer/internal/models"
)

// RowStore is the subset of the row store client the emailer needs.
type RowStore interface {
	GetTable(ctx context.Context, tableID string) (*models.Table, error)
	ListRows(ctx context.Context, tableID string, q models.RowQuery) ([]models.Row, error)
	UpdateRow(ctx context.Context, tableID string, rowID int, fields map[string]any) error
}

// Loader reads emailer configurations from the configuration table.
type Loader struct {
	store   RowStore
	tableID string
	log     *zap.Logger
}

func NewLoader(store RowStore, configTableID string, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{store: store, tableID: configTableID, log: log}
}

// ListActiveConfigurations returns every configuration whose Active box is
// ticked. List-valued cells are collapsed to their first element; an empty
// list anywhere fails the whole load.
func (l *Loader) ListActiveConfigurations(ctx context.Context) ([]models.Configuration, error) {
	log := l.log.With(zap.String("table_id", l.tableID))
	log.Info("fetching configurations")

	rows, err := l.store.ListRows(ctx, l.tableID, models.RowQuery{
		Filters: []models.Filter{{Field: models.ColumnActive, Type: models.FilterBoolean, Value: "true"}},
		Mode:    models.FilterModeAnd,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch configurations from table %s: %w", l.tableID, err)
	}

	if len(rows) == 0 {
		log.Warn("no active configurations found")
		return []models.Configuration{}, nil
	}

	log.Info("found active configurations", zap.Int("count", len(rows)))

	configs := make([]models.Configuration, 0, len(rows))
	for _, row := range rows {
		collapsed, err := collapseLists(row)
		if err != nil {
			return nil, err
		}
		configs = append(configs, decodeConfiguration(collapsed))
	}

	return configs, nil
}

func collapseLists(row models.Row) (models.Row, error) {
	out := models.Row{ID: row.ID, Fields: make(map[string]models.Value, len(row.Fields))}
	for name, v := range row.Fields {
		items, ok := v.List()
		if !ok {
			out.Fields[name] = v
			continue
		}
		if len(items) == 0 {
			return models.Row{}, fmt.Errorf("%w for key %q in configuration row %d", ErrEmptyList, name, row.ID)
		}
		out.Fields[name] = items[0]
	}
	return out, nil
}

func decodeConfiguration(row models.Row) models.Configuration {
	cfg := models.Configuration{
		ID:                    row.ID,
		SourceTableID:         row.Value(models.ColumnSourceTableID).String(),
		TriggerField:          row.Value(models.ColumnTriggerField).String(),
		TriggerOnBlank:        row.Value(models.ColumnTriggerOnBlank).Truthy(),
		RecipientField:        row.Value(models.ColumnRecipientField).String(),
		MessageTemplateFields: CommaDelimitedToList(row.Value(models.ColumnMessageTemplateFields).String()),
		MessageTemplate:       templateURL(row.Value(models.ColumnMessageTemplate)),
		Subject:               row.Value(models.ColumnSubject).String(),
		CCRecipients:          CommaDelimitedToList(row.Value(models.ColumnCCRecipients).String()),
		Active:                row.Value(models.ColumnActive).Truthy(),
	}
	if cfg.Subject == "" {
		cfg.Subject = models.DefaultSubject
	}
	return cfg
}

// templateURL reads a file cell's url, or the cell itself for URL and text columns.
func templateURL(v models.Value) string {
	if obj, ok := v.Object(); ok {
		return obj["url"].String()
	}
	return v.String()
}
