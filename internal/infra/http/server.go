package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	srv *http.Server
}

// New — /health и /metrics на служебном mux, всё остальное уходит в app.
func New(addr string, app http.Handler, exposeMetrics bool) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if exposeMetrics {
		mux.Handle("/metrics", promhttp.Handler())
	}
	if app != nil {
		mux.Handle("/", app)
	}

	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}}
}

func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Start блокируется до Shutdown; штатная остановка ошибкой не считается.
func (s *Server) Start() error {
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
