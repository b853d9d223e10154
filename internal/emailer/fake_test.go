package emailer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"RowMailer/internal/email"
	"RowMailer/internal/models"
)

type write struct {
	TableID string
	RowID   int
	Fields  map[string]any
}

// memStore is an in-memory row store that evaluates filters and applies
// writes the way the remote store does for single-select fields.
type memStore struct {
	mu      sync.Mutex
	tables  map[string]*models.Table
	rows    map[string][]models.Row
	writes  []write
	queries []models.RowQuery

	listErr     error
	updateError func(w write) error
}

func newMemStore() *memStore {
	return &memStore{
		tables: map[string]*models.Table{},
		rows:   map[string][]models.Row{},
	}
}

func (s *memStore) addTable(t *models.Table, rows ...models.Row) {
	s.tables[t.ID] = t
	s.rows[t.ID] = rows
}

func (s *memStore) GetTable(_ context.Context, tableID string) (*models.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[tableID]
	if !ok {
		return nil, fmt.Errorf("table %s does not exist", tableID)
	}
	return t, nil
}

func (s *memStore) ListRows(_ context.Context, tableID string, q models.RowQuery) ([]models.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queries = append(s.queries, q)
	if s.listErr != nil {
		return nil, s.listErr
	}

	var out []models.Row
	for _, row := range s.rows[tableID] {
		if !matches(row, q) {
			continue
		}
		out = append(out, project(row, q.Include))
	}
	return out, nil
}

func (s *memStore) UpdateRow(_ context.Context, tableID string, rowID int, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := write{TableID: tableID, RowID: rowID, Fields: fields}
	if s.updateError != nil {
		if err := s.updateError(w); err != nil {
			return err
		}
	}
	s.writes = append(s.writes, w)

	for i, row := range s.rows[tableID] {
		if row.ID != rowID {
			continue
		}
		for name, raw := range fields {
			s.rows[tableID][i].Fields[name] = s.cell(tableID, name, raw)
		}
		return nil
	}
	return fmt.Errorf("row %d does not exist", rowID)
}

func (s *memStore) cell(tableID, field string, raw any) models.Value {
	id, ok := raw.(int)
	if !ok {
		return models.Text(fmt.Sprint(raw))
	}
	if f, ok := s.tables[tableID].Field(field); ok {
		for _, opt := range f.SelectOptions {
			if opt.ID == id {
				return models.ChoiceValue(models.Choice{ID: opt.ID, Value: opt.Value, Color: opt.Color})
			}
		}
	}
	return models.ChoiceValue(models.Choice{ID: id})
}

// status returns the label currently held by a row's single-select field.
func (s *memStore) status(tableID string, rowID int, field string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.rows[tableID] {
		if row.ID == rowID {
			c, ok := row.Value(field).Choice()
			if !ok {
				return ""
			}
			return c.Value
		}
	}
	return ""
}

func (s *memStore) writesFor(rowID int) []write {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []write
	for _, w := range s.writes {
		if w.RowID == rowID {
			out = append(out, w)
		}
	}
	return out
}

func matches(row models.Row, q models.RowQuery) bool {
	if len(q.Filters) == 0 {
		return true
	}
	for _, f := range q.Filters {
		ok := matchFilter(row, f)
		if q.Mode == models.FilterModeOr && ok {
			return true
		}
		if q.Mode != models.FilterModeOr && !ok {
			return false
		}
	}
	return q.Mode != models.FilterModeOr
}

func matchFilter(row models.Row, f models.Filter) bool {
	v := row.Value(f.Field)
	switch f.Type {
	case models.FilterEmpty:
		return v.IsBlank()
	case models.FilterSingleSelectEqual:
		c, ok := v.Choice()
		return ok && strconv.Itoa(c.ID) == f.Value
	case models.FilterBoolean:
		want := f.Value == "true" || f.Value == "1"
		return v.Truthy() == want
	default:
		return false
	}
}

func project(row models.Row, include []string) models.Row {
	out := models.Row{ID: row.ID, Fields: map[string]models.Value{}}
	for name, v := range row.Fields {
		if len(include) == 0 {
			out.Fields[name] = v
			continue
		}
		for _, want := range include {
			if want == name {
				out.Fields[name] = v
			}
		}
	}
	return out
}

// recordingSender records every message it is asked to send.
type recordingSender struct {
	mu     sync.Mutex
	sent   []email.Message
	tokens []string
	err    func(msg email.Message) error
}

func (s *recordingSender) Send(_ context.Context, accessToken string, msg email.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		if err := s.err(msg); err != nil {
			return err
		}
	}
	s.sent = append(s.sent, msg)
	s.tokens = append(s.tokens, accessToken)
	return nil
}

func (s *recordingSender) messages() []email.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]email.Message(nil), s.sent...)
}

type staticCredentials struct {
	token string
	err   error
	calls int
}

func (c *staticCredentials) AccessToken(context.Context) (string, error) {
	c.calls++
	return c.token, c.err
}

var errBoom = errors.New("boom")
