package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// upstreamError accepts both `{"error": "text"}` and
// `{"error": {"code": "...", "message": "..."}}` bodies.
type upstreamError struct {
	Error json.RawMessage `json:"error"`
}

// ErrorMessage extracts a human-readable message from an error response body.
// When the body carries no usable message it falls back to
// "HTTP error! status: N".
func ErrorMessage(status int, body []byte) string {
	var ue upstreamError
	if json.Unmarshal(body, &ue) == nil && len(ue.Error) > 0 {
		var text string
		if json.Unmarshal(ue.Error, &text) == nil && strings.TrimSpace(text) != "" {
			return text
		}
		var structured struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(ue.Error, &structured) == nil && strings.TrimSpace(structured.Message) != "" {
			return structured.Message
		}
	}
	return fmt.Sprintf("HTTP error! status: %d", status)
}

// ReadErrorMessage consumes and closes resp.Body and returns ErrorMessage for it.
func ReadErrorMessage(resp *http.Response) string {
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)
	}
	return ErrorMessage(resp.StatusCode, body)
}

// IsSuccess reports whether status is 2xx.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
