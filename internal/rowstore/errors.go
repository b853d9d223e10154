package rowstore

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// APIError is a non-2xx answer from the row store.
type APIError struct {
	StatusCode int
	Code       string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("row store responded %d %s: %s", e.StatusCode, e.Code, e.Detail)
	}
	return fmt.Sprintf("row store responded %d: %s", e.StatusCode, e.Detail)
}

func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var body struct {
		Error  string          `json:"error"`
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		apiErr.Detail = string(raw)
		return apiErr
	}

	apiErr.Code = body.Error

	// detail is either a plain string or a structured validation map.
	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err == nil {
		apiErr.Detail = detail
	} else {
		apiErr.Detail = string(body.Detail)
	}

	return apiErr
}
