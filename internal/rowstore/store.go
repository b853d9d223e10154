package rowstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"RowMailer/internal/models"
)

const defaultPageSize = 200

// Store talks to the Baserow REST API.
type Store struct {
	baseURL  string
	token    string
	client   *http.Client
	pageSize int
	log      *zap.Logger
}

type Option func(*Store)

func WithHTTPClient(c *http.Client) Option {
	return func(s *Store) { s.client = c }
}

func WithPageSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

func New(baseURL, token string, opts ...Option) (*Store, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid row store url: %w", err)
	}

	s := &Store{
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    token,
		client:   http.DefaultClient,
		pageSize: defaultPageSize,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// GetTable returns the field schema of a table.
func (s *Store) GetTable(ctx context.Context, tableID string) (*models.Table, error) {
	var fields []models.Field

	endpoint := fmt.Sprintf("%s/api/database/fields/table/%s/", s.baseURL, url.PathEscape(tableID))
	if err := s.do(ctx, http.MethodGet, endpoint, nil, &fields); err != nil {
		return nil, fmt.Errorf("get table %s: %w", tableID, err)
	}

	return &models.Table{ID: tableID, Fields: fields}, nil
}

type rowPage struct {
	Count int          `json:"count"`
	Next  *string      `json:"next"`
	Rows  []models.Row `json:"results"`
}

type filterTree struct {
	FilterType models.FilterMode `json:"filter_type"`
	Filters    []models.Filter   `json:"filters"`
}

// ListRows fetches every row matching q, following pagination.
func (s *Store) ListRows(ctx context.Context, tableID string, q models.RowQuery) ([]models.Row, error) {
	params := url.Values{}
	params.Set("user_field_names", "true")
	params.Set("size", strconv.Itoa(s.pageSize))

	if len(q.Include) > 0 {
		params.Set("include", strings.Join(q.Include, ","))
	}

	if len(q.Filters) > 0 {
		mode := q.Mode
		if mode == "" {
			mode = models.FilterModeAnd
		}
		tree, err := json.Marshal(filterTree{FilterType: mode, Filters: q.Filters})
		if err != nil {
			return nil, fmt.Errorf("encode filters: %w", err)
		}
		params.Set("filters", string(tree))
	}

	var rows []models.Row
	for page := 1; ; page++ {
		params.Set("page", strconv.Itoa(page))
		endpoint := fmt.Sprintf("%s/api/database/rows/table/%s/?%s", s.baseURL, url.PathEscape(tableID), params.Encode())

		var p rowPage
		if err := s.do(ctx, http.MethodGet, endpoint, nil, &p); err != nil {
			return nil, fmt.Errorf("list rows of table %s (page %d): %w", tableID, page, err)
		}

		rows = append(rows, p.Rows...)

		s.log.Debug("fetched row page",
			zap.String("table_id", tableID),
			zap.Int("page", page),
			zap.Int("rows", len(p.Rows)),
			zap.Int("count", p.Count),
		)

		if p.Next == nil || len(p.Rows) == 0 {
			break
		}
	}

	return rows, nil
}

// UpdateRow patches the given fields of a single row.
func (s *Store) UpdateRow(ctx context.Context, tableID string, rowID int, fields map[string]any) error {
	body, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode row update: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/database/rows/table/%s/%d/?user_field_names=true", s.baseURL, url.PathEscape(tableID), rowID)
	if err := s.do(ctx, http.MethodPatch, endpoint, body, nil); err != nil {
		return fmt.Errorf("update row %d of table %s: %w", rowID, tableID, err)
	}

	return nil
}

func (s *Store) do(ctx context.Context, method, endpoint string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Token "+s.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
