package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.Console.Jobs().List()
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) GetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job := s.Console.Jobs().Get(id)
	if job == nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}
