// Package health serves a small JSON liveness endpoint for hosting
// platforms that probe an HTTP port.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const serviceName = "ai-mentor"

// UserCounter reports how many users the bot currently remembers.
type UserCounter interface {
	UserCount() int
}

type response struct {
	Status        string `json:"status"`
	Service       string `json:"service"`
	Provider      string `json:"provider"`
	Users         int    `json:"users"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

type Server struct {
	addr      string
	provider  string
	users     UserCounter
	startedAt time.Time
	logger    *zap.Logger
	mux       *http.ServeMux
}

func NewServer(addr, provider string, users UserCounter, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		addr:      addr,
		provider:  provider,
		users:     users,
		startedAt: time.Now(),
		logger:    logger.Named("health"),
		mux:       http.NewServeMux(),
	}
	s.mux.HandleFunc("/", s.handle)
	s.mux.HandleFunc("/health", s.handle)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("health server: listen %s: %w", s.addr, err)
	}
	srv := &http.Server{
		Handler:      s,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("health server listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("health server shutdown", zap.Error(err))
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/health" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	users := 0
	if s.users != nil {
		users = s.users.UserCount()
	}
	writeJSON(w, response{
		Status:        "ok",
		Service:       serviceName,
		Provider:      s.provider,
		Users:         users,
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	}, s.logger)
}

func writeJSON(w http.ResponseWriter, v any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("encode health response", zap.Error(err))
	}
}
