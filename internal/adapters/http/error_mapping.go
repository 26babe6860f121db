package httpadapter

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
)

type errorResponse struct {
	Error  string `json:"error"`
	Stage  string `json:"stage,omitempty"`
	Sample string `json:"sample,omitempty"`
}

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrScanJobNotFound), domain.IsKind(err, domain.ErrFeatureDisabled):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrModelOutputInvalid), domain.IsKind(err, domain.ErrModelUnavailable):
		return http.StatusBadGateway
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	resp := errorResponse{Error: err.Error()}
	if outErr, ok := domain.AsModelOutputError(err); ok {
		resp.Stage = outErr.Stage
		resp.Sample = outErr.Sample
	}

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	rt.logger.Log(r.Context(), level, "http.request.failed",
		"request_id", requestIDFromContext(r.Context()),
		"path", r.URL.Path,
		"status", status,
		"error", err,
	)
	writeJSON(w, status, resp)
}
