package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jonathan-r-thorpe/nmos-js/internal/version"
)

type settings struct {
	QueryAPI   string `json:"query_api"`
	RegistryID string `json:"registry_id,omitempty"`
	Version    string `json:"version,omitempty"`
	Source     string `json:"source"` // "cookie", "default" or "none"
}

func (s *Server) currentSettings(r *http.Request) settings {
	st := settings{Source: "none"}
	if v := queryAPIFromRequest(r); v != "" {
		st.QueryAPI, st.Source = v, "cookie"
	} else if s.DefaultQueryAPI != "" {
		st.QueryAPI, st.Source = s.DefaultQueryAPI, "default"
	}
	if v, err := version.Resolve(st.QueryAPI); err == nil {
		st.Version = v.String()
	}
	return st
}

func (s *Server) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.currentSettings(r))
}

// PutSettings selects the Query API, by URL or by registry ID, and stores
// the choice in the browser cookie.
func (s *Server) PutSettings(w http.ResponseWriter, r *http.Request) {
	var req settings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	queryAPI, status, msg := s.selectQueryAPI(req.QueryAPI, req.RegistryID)
	if status != http.StatusOK {
		writeError(w, status, msg)
		return
	}
	setQueryAPICookie(w, queryAPI, s.cookiePath())
	v, _ := version.Resolve(queryAPI)
	writeJSON(w, http.StatusOK, settings{QueryAPI: queryAPI, RegistryID: req.RegistryID, Version: v.String(), Source: "cookie"})
}

// selectQueryAPI validates a selection and returns the Query API URL, or a
// status and message describing why it was refused.
func (s *Server) selectQueryAPI(queryAPI, registryID string) (string, int, string) {
	if registryID != "" {
		reg := s.Registries.Get(registryID)
		if reg == nil {
			return "", http.StatusNotFound, "registry not found"
		}
		queryAPI = reg.QueryAPI
	}
	queryAPI = strings.TrimRight(strings.TrimSpace(queryAPI), "/")
	if _, err := version.Resolve(queryAPI); err != nil {
		return "", http.StatusBadRequest, err.Error()
	}
	return queryAPI, http.StatusOK, ""
}

func (s *Server) cookiePath() string {
	if s.BasePath == "" {
		return "/"
	}
	return s.BasePath
}
