package apiserver

import (
	_ "embed"
	"net/http"

	"go.uber.org/zap"
)

//go:embed openapi.yaml
var openAPISpec []byte

// OpenAPIHandler serves the embedded API description
type OpenAPIHandler struct {
	logger   *zap.Logger
	document []byte
}

// NewOpenAPIHandler creates a new OpenAPI handler
func NewOpenAPIHandler(logger *zap.Logger) *OpenAPIHandler {
	return &OpenAPIHandler{logger: logger, document: openAPISpec}
}

// ServeOpenAPISpec serves the OpenAPI document in YAML format
func (h *OpenAPIHandler) ServeOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-yaml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(h.document); err != nil {
		h.logger.Debug("Failed to write OpenAPI document", zap.Error(err))
	}
}
