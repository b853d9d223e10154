package emailer

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"RowMailer/internal/models"
)

// CommaDelimitedToList splits s on commas, trimming each entry and dropping
// empty ones. An empty input yields an empty list.
func CommaDelimitedToList(s string) []string {
	parts := lo.Map(strings.Split(s, ","), func(item string, _ int) string {
		return strings.TrimSpace(item)
	})
	return lo.Compact(parts)
}

// includeFields is the trigger field, the recipient field and every template
// field, without duplicates, in that order.
func includeFields(cfg models.Configuration) []string {
	fields := append([]string{cfg.TriggerField, cfg.RecipientField}, cfg.MessageTemplateFields...)
	return lo.Uniq(fields)
}

func missingFields(table *models.Table, include []string) []string {
	names := table.FieldNames()
	return lo.Filter(include, func(name string, _ int) bool {
		return !lo.Contains(names, name)
	})
}

// templateVars exposes every returned cell of the row to the template, with
// spaces in field names replaced by underscores, plus the row id.
func templateVars(row models.Row) map[string]any {
	vars := make(map[string]any, len(row.Fields)+1)
	for name, v := range row.Fields {
		vars[strings.ReplaceAll(name, " ", "_")] = v.TemplateValue()
	}
	vars["id"] = row.ID
	return vars
}

// indexOptions keys the options of a single-select field by label. When a
// label repeats, the first option wins and the duplicate is logged.
func indexOptions(options []models.StatusOption, log *zap.Logger) map[string]models.StatusOption {
	index := make(map[string]models.StatusOption, len(options))
	for _, opt := range options {
		if prev, ok := index[opt.Value]; ok {
			log.Warn("duplicate option value",
				zap.String("value", opt.Value),
				zap.Int("kept_option_id", prev.ID),
				zap.Int("ignored_option_id", opt.ID),
			)
			continue
		}
		index[opt.Value] = opt
	}
	return index
}

// resolveStatusIDs maps the three canonical labels to option ids on the
// trigger field. All three must exist.
func resolveStatusIDs(field models.Field, log *zap.Logger) (models.StatusIDs, error) {
	index := indexOptions(field.SelectOptions, log)

	lookup := func(status models.Status) (int, error) {
		opt, ok := index[string(status)]
		if !ok {
			return 0, fmt.Errorf("%w: %q on field %q", ErrStatusOptionMissing, status, field.Name)
		}
		log.Debug("resolved status option", zap.String("value", opt.Value), zap.Int("option_id", opt.ID))
		return opt.ID, nil
	}

	var (
		ids models.StatusIDs
		err error
	)
	if ids.Queued, err = lookup(models.StatusQueued); err != nil {
		return models.StatusIDs{}, err
	}
	if ids.InProgress, err = lookup(models.StatusInProgress); err != nil {
		return models.StatusIDs{}, err
	}
	if ids.Sent, err = lookup(models.StatusSent); err != nil {
		return models.StatusIDs{}, err
	}

	return ids, nil
}
