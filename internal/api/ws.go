package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/jonathan-r-thorpe/nmos-js/internal/console"
	"github.com/jonathan-r-thorpe/nmos-js/internal/view"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamJobLogs streams job log lines over WebSocket.
func (s *Server) StreamJobLogs(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job := s.Console.Jobs().Get(id)
	if job == nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	offset := 0
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		// Read the state before the logs so that lines appended just
		// before completion are not lost.
		done := job.Done()
		lines := job.LogsSince(offset)
		for _, line := range lines {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				return
			}
			offset++
		}
		if done && len(lines) == 0 {
			status, _ := job.State()
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, status))
			return
		}
	}
}

// viewRequest is a navigation message on the live view socket. Empty
// fields keep the current resource.
type viewRequest struct {
	Resource string `json:"resource"`
	ID       string `json:"id"`
	Tab      string `json:"tab"`
}

type viewResponse struct {
	Target string        `json:"target"`
	Page   *console.Page `json:"page,omitempty"`
	Error  string        `json:"error,omitempty"`
	Status int           `json:"status,omitempty"`
}

// StreamView serves a live show view. The client sends navigation messages;
// each is answered with the rendered page unless a later navigation
// happened first, in which case the late result is dropped.
func (s *Server) StreamView(w http.ResponseWriter, r *http.Request) {
	rc, err := s.renderContext(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	current := viewRequest{Resource: chi.URLParam(r, "type"), ID: chi.URLParam(r, "id")}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	session := console.NewSession()
	logger := s.logger().With(zap.String("session", session.ID))
	navigate := func(req viewRequest) {
		target := view.ShowPath(rc.ResourcePath(req.Resource), req.ID, view.Tab(strings.Trim(req.Tab, "/")))
		ticket := session.Navigate(target)
		go func() {
			if !session.Current(ticket) {
				logger.Debug("skipping superseded view", zap.String("target", target))
				return
			}
			page, err := s.Console.Show(ctx, rc, req.Resource, req.ID, req.Tab)
			resp := viewResponse{Target: target, Page: page}
			if err != nil {
				resp.Error, resp.Status = err.Error(), errorStatus(err)
			}
			committed := session.Commit(ticket, func() {
				if err := conn.WriteJSON(resp); err != nil {
					logger.Debug("live view write failed", zap.Error(err))
				}
			})
			if !committed {
				logger.Debug("discarding stale view", zap.String("target", target))
			}
		}()
	}

	navigate(current)
	for {
		var req viewRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		if req.Resource == "" {
			req.Resource = current.Resource
		}
		if req.ID == "" {
			req.ID = current.ID
		}
		current = req
		navigate(req)
	}
}
