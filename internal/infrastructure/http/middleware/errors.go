package middleware

import (
	"encoding/json"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/recipewise/server/pkg/errors"
)

// WriteError renders err as the ErrorResponse envelope. Errors that are not
// an *AppError are reported as internal errors without leaking their text.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.NewInternalError("").WithCause(err)
	}

	resp := errors.ToErrorResponse(appErr, chimiddleware.GetReqID(r.Context()))
	if appErr.Code == errors.CodeInternal || appErr.Code == errors.CodeStoreError {
		resp.Error.Metadata = nil
	}

	w.Header().Set("Content-Type", "application/json")
	if appErr.Code == errors.CodeTooManyRequests {
		w.Header().Set("Retry-After", "60")
	}
	w.WriteHeader(appErr.StatusCode())
	_ = json.NewEncoder(w).Encode(resp)
}
