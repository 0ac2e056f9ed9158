package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/docvault/internal/api"
	"github.com/dmitrijs2005/docvault/internal/common"
)

// errorStatus maps a service error to its HTTP status and wire code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrQuotaExceeded):
		return http.StatusPaymentRequired, api.CodeQuotaExceeded
	case errors.Is(err, common.ErrSchemaMismatch):
		return http.StatusUnprocessableEntity, api.CodeSchemaMismatch
	case errors.Is(err, common.ErrViewUnavailable):
		return http.StatusNotFound, api.CodeViewUnavailable
	case errors.Is(err, common.ErrDeviceLimitReached):
		return http.StatusConflict, api.CodeDeviceLimitReached
	case errors.Is(err, common.ErrInvalidRequest),
		errors.Is(err, common.ErrInvalidIdentity),
		errors.Is(err, common.ErrInvalidUserID):
		return http.StatusBadRequest, api.CodeInvalidRequest
	case errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, api.CodeUnauthorized
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden, api.CodeForbidden
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, api.CodeNotFound
	default:
		return http.StatusInternalServerError, api.CodeInternal
	}
}

// writeError renders err as {error, code}. Internal errors are not echoed
// to the client. Quota messages keep the QUOTA_EXCEEDED prefix older
// clients match on.
func writeError(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)

	msg := err.Error()
	switch code {
	case api.CodeInternal:
		msg = common.ErrInternal.Error()
	case api.CodeQuotaExceeded:
		msg = api.QuotaMessagePrefix + msg
	}

	writeJSON(w, status, api.ErrorResponse{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
