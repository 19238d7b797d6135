package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/dmitrijs2005/cms/internal/common"
	"github.com/dmitrijs2005/cms/internal/logging"
	"github.com/dmitrijs2005/cms/internal/server/access"
)

const maxBodyBytes = 1 << 20

type detail struct {
	Detail     string `json:"detail"`
	RetryAfter int    `json:"retry_after,omitempty"`
}

// decode reads a JSON body into dst and validates it.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fieldError("non_field_errors", "Invalid JSON body.")
	}
	return validateStruct(dst)
}

func writeJSON(ctx context.Context, log logging.Logger, w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error(ctx, "failed to marshal response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		log.Debug(ctx, "failed to write response", "error", err)
	}
}

// writeError maps a service error onto its HTTP status and body.
func writeError(ctx context.Context, log logging.Logger, w http.ResponseWriter, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		writeJSON(ctx, log, w, http.StatusBadRequest, verr.body())
		return
	}

	var throttled *access.ThrottledError
	if errors.As(err, &throttled) {
		w.Header().Set("Retry-After", strconv.Itoa(throttled.RetryAfter))
		writeJSON(ctx, log, w, http.StatusTooManyRequests, detail{Detail: throttled.Error(), RetryAfter: throttled.RetryAfter})
		return
	}

	status, msg := http.StatusInternalServerError, "A server error occurred."
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		status, msg = http.StatusUnauthorized, "Token has expired."
	case errors.Is(err, common.ErrInvalidToken):
		status, msg = http.StatusUnauthorized, "Invalid token."
	case errors.Is(err, common.ErrorUnauthorized):
		status, msg = http.StatusUnauthorized, "Authentication credentials were not provided."
	case errors.Is(err, common.ErrorForbidden):
		status, msg = http.StatusForbidden, "You do not have permission to perform this action."
	case errors.Is(err, common.ErrorNotFound):
		status, msg = http.StatusNotFound, "Not found."
	case errors.Is(err, common.ErrInvalidOrExpired):
		status, msg = http.StatusBadRequest, "Invalid or expired verification link."
	case errors.Is(err, common.ErrorValidation):
		status, msg = http.StatusBadRequest, "Invalid request."
	default:
		log.Error(ctx, "request failed", "error", err)
	}

	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", common.BearerScheme+` realm="api"`)
	}
	writeJSON(ctx, log, w, status, detail{Detail: msg})
}
