package api

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/jonathan-r-thorpe/nmos-js/internal/models"
	"github.com/jonathan-r-thorpe/nmos-js/internal/registry"
	"github.com/jonathan-r-thorpe/nmos-js/internal/view"
)

// receiverOnly rejects connection requests for anything but receivers.
func receiverOnly(resourceType string) error {
	rt, ok := models.LookupResourceType(resourceType)
	if !ok {
		return &view.UnknownResourceTypeError{ResourceType: resourceType}
	}
	if rt.Name != "receivers" {
		return &registry.ValidationError{Message: rt.Label + " cannot be connected; connect a receiver to them instead"}
	}
	return nil
}

// ConnectReceiver starts a job connecting the receiver to {"sender_id"}.
func (s *Server) ConnectReceiver(w http.ResponseWriter, r *http.Request) {
	if err := receiverOnly(chi.URLParam(r, "type")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	var req struct {
		SenderID string `json:"sender_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	rc, err := s.renderContext(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	job, err := s.Console.Connect(r.Context(), rc, chi.URLParam(r, "id"), req.SenderID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID})
}

// DisconnectReceiver starts a job disconnecting the receiver.
func (s *Server) DisconnectReceiver(w http.ResponseWriter, r *http.Request) {
	if err := receiverOnly(chi.URLParam(r, "type")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	rc, err := s.renderContext(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	job, err := s.Console.Disconnect(r.Context(), rc, chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID})
}

// ConnectForm handles the activate buttons of the Connect tab.
func (s *Server) ConnectForm(w http.ResponseWriter, r *http.Request) {
	resourceType, id := chi.URLParam(r, "type"), chi.URLParam(r, "id")
	if err := receiverOnly(resourceType); err != nil {
		s.renderErrorPage(w, r, err)
		return
	}
	rc, err := s.renderContext(r)
	if err != nil {
		s.renderErrorPage(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.renderErrorPage(w, r, &registry.ValidationError{Message: err.Error()})
		return
	}
	job, err := s.Console.Connect(r.Context(), rc, id, r.PostForm.Get("sender_id"))
	if err != nil {
		s.renderErrorPage(w, r, err)
		return
	}
	target := view.ShowPath(rc.ResourcePath(resourceType), id, view.TabActive)
	http.Redirect(w, r, target+"?job="+url.QueryEscape(job.ID), http.StatusSeeOther)
}

// DisconnectForm handles the active toggle of the receivers list.
func (s *Server) DisconnectForm(w http.ResponseWriter, r *http.Request) {
	resourceType, id := chi.URLParam(r, "type"), chi.URLParam(r, "id")
	if err := receiverOnly(resourceType); err != nil {
		s.renderErrorPage(w, r, err)
		return
	}
	rc, err := s.renderContext(r)
	if err != nil {
		s.renderErrorPage(w, r, err)
		return
	}
	job, err := s.Console.Disconnect(r.Context(), rc, id)
	if err != nil {
		s.renderErrorPage(w, r, err)
		return
	}
	http.Redirect(w, r, rc.ResourcePath(resourceType)+"?job="+url.QueryEscape(job.ID), http.StatusSeeOther)
}
