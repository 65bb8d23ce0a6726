package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/jonathan-r-thorpe/nmos-js/internal/registry"
	"github.com/jonathan-r-thorpe/nmos-js/internal/version"
	"github.com/jonathan-r-thorpe/nmos-js/internal/view"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// errorStatus maps service errors to HTTP status codes.
func errorStatus(err error) int {
	var (
		cfgErr     *version.ConfigurationError
		unknownErr *view.UnknownResourceTypeError
		netErr     *registry.NetworkError
		valErr     *registry.ValidationError
	)
	switch {
	case errors.As(err, &cfgErr):
		return http.StatusInternalServerError
	case errors.As(err, &unknownErr), errors.Is(err, registry.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &valErr):
		return http.StatusBadRequest
	case errors.As(err, &netErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger().Error("request failed", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	}
	writeError(w, status, err.Error())
}
