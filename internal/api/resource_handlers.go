package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jonathan-r-thorpe/nmos-js/internal/console"
	"github.com/jonathan-r-thorpe/nmos-js/internal/models"
	"github.com/jonathan-r-thorpe/nmos-js/internal/registry"
	"github.com/jonathan-r-thorpe/nmos-js/internal/view"
)

func (s *Server) ListResourceTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.ResourceTypes)
}

// listFilter collects the filter query parameters of a list request.
func listFilter(r *http.Request) map[string]string {
	filter := map[string]string{}
	for k, vs := range r.URL.Query() {
		if k != "cursor" && len(vs) > 0 {
			filter[k] = vs[0]
		}
	}
	return filter
}

func (s *Server) ListResources(w http.ResponseWriter, r *http.Request) {
	resourceType := chi.URLParam(r, "type")
	rc, err := s.renderContext(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	page, err := s.Console.List(r.Context(), rc, resourceType, listFilter(r), r.URL.Query().Get("cursor"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetResource returns the raw record, Connection API documents included.
func (s *Server) GetResource(w http.ResponseWriter, r *http.Request) {
	rc, err := s.renderContext(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	record, err := s.Console.Record(r.Context(), rc, chi.URLParam(r, "type"), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) ShowResource(w http.ResponseWriter, r *http.Request) {
	rc, err := s.renderContext(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	page, err := s.Console.Show(r.Context(), rc, chi.URLParam(r, "type"), chi.URLParam(r, "id"), chi.URLParam(r, "*"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetTransportFile returns a sender's transport file as text, for copying.
func (s *Server) GetTransportFile(w http.ResponseWriter, r *http.Request) {
	rc, err := s.renderContext(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	record, err := s.Console.Record(r.Context(), rc, chi.URLParam(r, "type"), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	tf := view.Lookup(record, registry.KeyTransportFile)
	if tf.Missing() {
		writeError(w, http.StatusNotFound, "no transport file")
		return
	}
	w.Header().Set("Content-Type", console.TransportFileType)
	w.Write([]byte(tf.Text()))
}

func (s *Server) SaveStaged(w http.ResponseWriter, r *http.Request) {
	var staged map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&staged); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	rc, err := s.renderContext(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	job, err := s.Console.Save(r.Context(), rc, chi.URLParam(r, "type"), chi.URLParam(r, "id"), staged)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID})
}
