package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/docvault/internal/api"
	"github.com/dmitrijs2005/docvault/internal/common"
)

// ErrUnavailable wraps transport failures (no response from the server).
var ErrUnavailable = errors.New("server unavailable")

// APIError is a non-2xx backend response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("http %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
}

// Is maps structured codes onto the shared sentinels.
func (e *APIError) Is(target error) bool {
	switch e.Code {
	case api.CodeQuotaExceeded:
		return target == common.ErrQuotaExceeded
	case api.CodeSchemaMismatch:
		return target == common.ErrSchemaMismatch
	case api.CodeViewUnavailable:
		return target == common.ErrViewUnavailable
	case api.CodeDeviceLimitReached:
		return target == common.ErrDeviceLimitReached
	case api.CodeUnauthorized:
		return target == common.ErrUnauthorized
	case api.CodeForbidden:
		return target == common.ErrForbidden
	case api.CodeNotFound:
		return target == common.ErrNotFound
	case api.CodeInvalidRequest:
		return target == common.ErrInvalidRequest
	}
	return false
}

// decodeAPIError builds an APIError from a response body. The structured
// code wins; backends that only send {error: "..."} are still recognised
// for quota failures by a case-insensitive "quota" match on the text.
func decodeAPIError(status int, body []byte) *APIError {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	_ = json.Unmarshal(body, &payload)

	msg := payload.Error
	if msg == "" {
		msg = payload.Message
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	code := strings.ToLower(strings.TrimSpace(payload.Code))
	if code == "" {
		switch {
		case strings.Contains(strings.ToLower(msg), "quota"):
			code = api.CodeQuotaExceeded
		case status == http.StatusUnauthorized:
			code = api.CodeUnauthorized
		case status == http.StatusForbidden:
			code = api.CodeForbidden
		}
	}

	return &APIError{StatusCode: status, Code: code, Message: msg}
}
