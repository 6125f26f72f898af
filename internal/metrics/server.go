package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatSource is implemented by whatever owns live daemon state
// (typically *daemon.Daemon) and is queried by the /debug/stats
// handler. Kept as a narrow interface here rather than importing
// internal/daemon, which would create an import cycle.
type StatSource interface {
	ConnectedClients() int
	LiveSurfaces() int
}

// Stats is the JSON body served at /debug/stats.
type Stats struct {
	ConnectedClients int       `json:"connected_clients"`
	LiveSurfaces     int       `json:"live_surfaces"`
	SampledAt        time.Time `json:"sampled_at"`
}

// NewRouter builds the chi mux serving Prometheus metrics and a
// lightweight JSON stats snapshot. Grounded on the teacher's
// pkg/controlplane/api.NewRouter middleware stack, trimmed to the two
// unauthenticated routes this daemon needs.
func NewRouter(src StatSource) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Second))

	if IsEnabled() {
		r.Handle("/metrics", promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{}))
	}

	r.Get("/debug/stats", func(w http.ResponseWriter, req *http.Request) {
		stats := Stats{SampledAt: time.Now()}
		if src != nil {
			stats.ConnectedClients = src.ConnectedClients()
			stats.LiveSurfaces = src.LiveSurfaces()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(stats)
	})

	return r
}

// Server wraps an http.Server for the metrics/debug mux with a
// context-aware shutdown, matching the daemon's own graceful-stop
// convention.
type Server struct {
	httpSrv *http.Server
}

// NewServer starts listening on addr in the background. Serve errors
// other than http.ErrServerClosed are sent on the returned channel.
func NewServer(addr string, src StatSource) (*Server, <-chan error) {
	httpSrv := &http.Server{
		Addr:    addr,
		Handler: NewRouter(src),
	}
	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()
	return &Server{httpSrv: httpSrv}, errCh
}

// Shutdown gracefully stops the metrics server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
