package rowstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RowMailer/internal/models"
)

func TestNew_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := New("not a url", "token")

	require.Error(t, err)
}

func TestStore_GetTable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/database/fields/table/55/", r.URL.Path)
		assert.Equal(t, "Token secret", r.Header.Get("Authorization"))

		_, _ = io.WriteString(w, `[
			{"id": 1, "name": "Email", "type": "email", "primary": true},
			{"id": 2, "name": "Status", "type": "single_select", "primary": false,
			 "select_options": [{"id": 10, "value": "Queued", "color": "blue"}, {"id": 11, "value": "Sent", "color": "green"}]}
		]`)
	}))
	defer srv.Close()

	store, err := New(srv.URL+"/", "secret")
	require.NoError(t, err)

	table, err := store.GetTable(context.Background(), "55")

	require.NoError(t, err)
	require.Equal(t, "55", table.ID)
	require.Equal(t, []string{"Email", "Status"}, table.FieldNames())

	status, ok := table.Field("Status")
	require.True(t, ok)
	assert.Equal(t, models.FieldTypeSingleSelect, status.Type)
	assert.Equal(t, []models.StatusOption{
		{ID: 10, Value: "Queued", Color: "blue"},
		{ID: 11, Value: "Sent", Color: "green"},
	}, status.SelectOptions)
}

func TestStore_ListRows_PaginatesAndEncodesQuery(t *testing.T) {
	t.Parallel()

	var pages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/database/rows/table/9/", r.URL.Path)

		q := r.URL.Query()
		assert.Equal(t, "true", q.Get("user_field_names"))
		assert.Equal(t, "2", q.Get("size"))
		assert.Equal(t, "Status,Email", q.Get("include"))

		var tree filterTree
		assert.NoError(t, json.Unmarshal([]byte(q.Get("filters")), &tree))
		assert.Equal(t, models.FilterModeOr, tree.FilterType)
		assert.Equal(t, []models.Filter{
			{Field: "Status", Type: models.FilterSingleSelectEqual, Value: "10"},
			{Field: "Status", Type: models.FilterEmpty, Value: ""},
		}, tree.Filters)

		page := q.Get("page")
		pages = append(pages, page)

		switch page {
		case "1":
			fmt.Fprintf(w, `{"count": 3, "next": "%s/next", "results": [{"id": 1, "Email": "a@x.com"}, {"id": 2, "Email": "b@x.com"}]}`, "http://"+r.Host)
		default:
			_, _ = io.WriteString(w, `{"count": 3, "next": null, "results": [{"id": 3, "Email": "c@x.com"}]}`)
		}
	}))
	defer srv.Close()

	store, err := New(srv.URL, "secret", WithPageSize(2))
	require.NoError(t, err)

	rows, err := store.ListRows(context.Background(), "9", models.RowQuery{
		Include: []string{"Status", "Email"},
		Filters: []models.Filter{
			{Field: "Status", Type: models.FilterSingleSelectEqual, Value: "10"},
			{Field: "Status", Type: models.FilterEmpty, Value: ""},
		},
		Mode: models.FilterModeOr,
	})

	require.NoError(t, err)
	require.Equal(t, []string{"1", "2"}, pages)
	require.Len(t, rows, 3)
	assert.Equal(t, 3, rows[2].ID)
	assert.Equal(t, "c@x.com", rows[2].Value("Email").String())
}

func TestStore_ListRows_NoFilters(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("filters"))
		assert.Empty(t, r.URL.Query().Get("include"))
		_, _ = io.WriteString(w, `{"count": 0, "next": null, "results": []}`)
	}))
	defer srv.Close()

	store, err := New(srv.URL, "secret")
	require.NoError(t, err)

	rows, err := store.ListRows(context.Background(), "9", models.RowQuery{})

	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestStore_UpdateRow(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/database/rows/table/9/42/", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("user_field_names"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"Email Status": 11}`, string(body))

		_, _ = io.WriteString(w, `{"id": 42}`)
	}))
	defer srv.Close()

	store, err := New(srv.URL, "secret")
	require.NoError(t, err)

	err = store.UpdateRow(context.Background(), "9", 42, map[string]any{"Email Status": 11})

	require.NoError(t, err)
}

func TestStore_APIError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		body       string
		wantCode   string
		wantDetail string
	}{
		{
			name:       "structured error",
			status:     http.StatusNotFound,
			body:       `{"error": "ERROR_TABLE_DOES_NOT_EXIST", "detail": "The requested table does not exist."}`,
			wantCode:   "ERROR_TABLE_DOES_NOT_EXIST",
			wantDetail: "The requested table does not exist.",
		},
		{
			name:       "validation detail",
			status:     http.StatusBadRequest,
			body:       `{"error": "ERROR_REQUEST_BODY_VALIDATION", "detail": {"Status": [{"code": "invalid"}]}}`,
			wantCode:   "ERROR_REQUEST_BODY_VALIDATION",
			wantDetail: `{"Status": [{"code": "invalid"}]}`,
		},
		{
			name:       "plain text",
			status:     http.StatusBadGateway,
			body:       `upstream down`,
			wantDetail: "upstream down",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			store, err := New(srv.URL, "secret")
			require.NoError(t, err)

			err = store.UpdateRow(context.Background(), "1", 1, map[string]any{"x": 1})

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, tt.wantDetail, apiErr.Detail)
		})
	}
}
