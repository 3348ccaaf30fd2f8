// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/recipewise/server/internal/infrastructure/http/middleware"
	"github.com/recipewise/server/internal/ports/inbound"
	"github.com/recipewise/server/pkg/errors"
)

const maxBodyBytes = 1 << 20

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// base holds what every handler group needs to read requests and write responses
type base struct {
	validate *validator.Validate
	logger   *zap.Logger
}

func (b base) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		b.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

func (b base) writeData(w http.ResponseWriter, status int, data interface{}, message string) {
	b.writeJSON(w, status, APIResponse{Success: true, Data: data, Message: message})
}

func (b base) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if appErr, ok := errors.As(err); ok && appErr.StatusCode() < http.StatusInternalServerError {
		b.logger.Debug("Request rejected", zap.String("code", string(appErr.Code)), zap.String("details", appErr.Details))
	} else {
		b.logger.Error("Request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	middleware.WriteError(w, r, err)
}

// decode reads a JSON body into dst and validates it. An empty body is
// treated as an empty object.
func (b base) decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !stderrors.Is(err, io.EOF) {
		return errors.NewBadRequestError("Invalid JSON payload").WithCause(err)
	}
	return b.check(dst)
}

func (b base) check(dst interface{}) error {
	err := b.validate.Struct(dst)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.NewValidationError(err.Error())
	}

	out := make([]errors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, errors.ValidationError{
			Field:   fe.Field(),
			Value:   fe.Value(),
			Tag:     fe.Tag(),
			Message: validationMessage(fe),
		})
	}
	return errors.NewValidationErrors(out)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "uuid", "uuid4":
		return fmt.Sprintf("%s must be a valid id", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// NewValidator creates a validator that reports JSON field names
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.NewBadRequestError(fmt.Sprintf("Invalid %s", name)).WithCause(err)
	}
	return id, nil
}

func pagination(r *http.Request) inbound.PaginationParams {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return inbound.PaginationParams{Page: page, Limit: limit}
}

func currentUser(r *http.Request) (uuid.UUID, error) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, errors.NewUnauthorizedError("")
	}
	return userID, nil
}
