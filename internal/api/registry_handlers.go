package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jonathan-r-thorpe/nmos-js/internal/models"
	"github.com/jonathan-r-thorpe/nmos-js/internal/registry"
	"github.com/jonathan-r-thorpe/nmos-js/internal/version"
)

func (s *Server) CreateRegistry(w http.ResponseWriter, r *http.Request) {
	var reg models.Registry
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if reg.QueryAPI == "" {
		writeError(w, http.StatusBadRequest, "query_api is required")
		return
	}
	if u, err := url.Parse(reg.QueryAPI); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		writeError(w, http.StatusBadRequest, "query_api must be an http or https URL")
		return
	}
	if _, err := version.Resolve(reg.QueryAPI); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if reg.Name == "" {
		reg.Name = reg.Host()
	}
	if s.Registries.FindByName(reg.Name) != nil {
		writeError(w, http.StatusConflict, "registry "+reg.Name+" already exists")
		return
	}
	s.Registries.Create(&reg)
	s.Providers.Forget(reg.QueryAPI)
	writeJSON(w, http.StatusCreated, reg)
}

func (s *Server) ListRegistries(w http.ResponseWriter, r *http.Request) {
	regs := s.Registries.List()
	writeJSON(w, http.StatusOK, regs)
}

func (s *Server) DeleteRegistry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	reg := s.Registries.Get(id)
	if reg == nil || !s.Registries.Delete(id) {
		writeError(w, http.StatusNotFound, "registry not found")
		return
	}
	s.Providers.Forget(reg.QueryAPI)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) TestRegistry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	reg := s.Registries.Get(id)
	if reg == nil {
		writeError(w, http.StatusNotFound, "registry not found")
		return
	}
	versions, err := s.CheckRegistry(r.Context(), reg)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"ok":    false,
			"error": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":        true,
		"versions":  versions,
		"preferred": registry.PreferredQueryAPI(reg.Root(), versions),
	})
}

// CheckRegistry pings a registry, discovers its Query API versions and
// records the outcome on the stored registry.
func (s *Server) CheckRegistry(ctx context.Context, reg *models.Registry) ([]string, error) {
	versions, err := registry.Check(ctx, s.Providers.ClientFor(reg.QueryAPI), reg)
	if err != nil {
		s.logger().Warn("registry check failed", zap.String("registry", reg.Name), zap.Error(err))
		s.Registries.SetHealth(reg.ID, "error", err.Error(), nil)
		return nil, err
	}
	s.logger().Info("registry reachable", zap.String("registry", reg.Name), zap.Strings("versions", versions))
	s.Registries.SetHealth(reg.ID, "ok", "", versions)
	return versions, nil
}
