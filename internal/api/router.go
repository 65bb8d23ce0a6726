package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/jonathan-r-thorpe/nmos-js/internal/console"
	"github.com/jonathan-r-thorpe/nmos-js/internal/metrics"
	"github.com/jonathan-r-thorpe/nmos-js/internal/models"
	"github.com/jonathan-r-thorpe/nmos-js/internal/registry"
)

// Server holds shared state for all API handlers.
type Server struct {
	Registries *models.RegistryStore
	Providers  *registry.Providers
	Console    *console.Service

	// BasePath is the prefix the console is mounted under ("" for root).
	BasePath string
	// DefaultQueryAPI is used when the browser has not selected one.
	DefaultQueryAPI string
	Logger          *zap.Logger
}

func (s *Server) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// renderContext resolves the Query API and version for a request.
func (s *Server) renderContext(r *http.Request) (console.RenderContext, error) {
	return console.ResolveContext(queryAPIFromRequest(r), s.DefaultQueryAPI, s.BasePath)
}

// NewRouter builds the chi router with all API routes, the HTML pages and
// the embedded static files.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger()))
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Registries
		r.Get("/registries", s.ListRegistries)
		r.Post("/registries", s.CreateRegistry)
		r.Delete("/registries/{id}", s.DeleteRegistry)
		r.Post("/registries/{id}/test", s.TestRegistry)

		// Query API selection
		r.Get("/settings", s.GetSettings)
		r.Put("/settings", s.PutSettings)

		// Jobs
		r.Get("/jobs", s.ListJobs)
		r.Get("/jobs/{id}", s.GetJob)

		// Resource browsing
		r.Get("/types", s.ListResourceTypes)
		r.Get("/{type}", s.ListResources)
		r.Get("/{type}/{id}", s.GetResource)
		r.Get("/{type}/{id}/show", s.ShowResource)
		r.Get("/{type}/{id}/show/*", s.ShowResource)
		r.Get("/{type}/{id}/transportfile", s.GetTransportFile)

		// Staged parameters (async)
		r.Post("/{type}/{id}/staged", s.SaveStaged)
		r.Post("/{type}/{id}/connect", s.ConnectReceiver)
		r.Post("/{type}/{id}/disconnect", s.DisconnectReceiver)
	})

	// WebSocket (outside /api to avoid JSON content-type assumptions)
	r.Get("/ws/jobs/{id}/logs", s.StreamJobLogs)
	r.Get("/ws/{type}/{id}/view", s.StreamView)

	r.Handle("/metrics", metrics.NewHandler())
	r.Handle("/static/*", http.StripPrefix(s.BasePath, http.FileServer(http.FS(staticFS))))

	// HTML pages
	r.Get("/", s.IndexPage)
	r.Post("/settings", s.SettingsForm)
	r.Get("/{type}", s.ListPage)
	r.Get("/{type}/{id}", s.EditPage)
	r.Post("/{type}/{id}", s.EditForm)
	r.Post("/{type}/{id}/connect", s.ConnectForm)
	r.Post("/{type}/{id}/disconnect", s.DisconnectForm)
	r.Get("/{type}/{id}/show", s.ShowPage)
	r.Get("/{type}/{id}/show/*", s.ShowPage)

	if s.BasePath == "" {
		return r
	}
	root := chi.NewRouter()
	root.Mount(s.BasePath, r)
	return root
}

// requestLogger logs each request with zap and records its duration by
// route pattern.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			elapsed := time.Since(start)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			metrics.HttpResponseDuration.WithLabelValues(strconv.Itoa(status), route).Observe(elapsed.Seconds())
			logger.Info("request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", elapsed))
		})
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
