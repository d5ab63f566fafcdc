// Package companion receives problems from the Competitive Companion browser
// extension over HTTP.
package companion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/programme-lv/cpkit/api"
	"github.com/programme-lv/cpkit/internal/models"
)

const DefaultAddr = "127.0.0.1:10043"

const maxBodyBytes = 64 << 20

// Saver stores a received problem and makes it current.
type Saver interface {
	Add(p *models.Problem) error
}

type Server struct {
	addr   string
	saver  Saver
	log    *slog.Logger
	router *mux.Router

	// OnProblem, when set, is called after a problem was saved.
	OnProblem func(p *models.Problem)
}

func New(addr string, saver Saver, log *slog.Logger) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	if log == nil {
		log = slog.Default()
	}
	s := &Server{addr: addr, saver: saver, log: log.With("component", "companion")}

	r := mux.NewRouter()
	r.Use(cors)
	r.HandleFunc("/", s.receiveProblem).Methods(http.MethodPost)
	r.HandleFunc("/", preflight).Methods(http.MethodOptions)
	s.router = r
	return s
}

func (s *Server) Addr() string {
	return s.addr
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening for Competitive Companion", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("companion server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Info("shutting down companion server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down companion server: %w", err)
	}
	return nil
}

func (s *Server) receiveProblem(w http.ResponseWriter, r *http.Request) {
	var data api.CompanionProblem
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&data); err != nil {
		s.log.Warn("rejected malformed problem", "error", err)
		http.Error(w, "Invalid problem data", http.StatusBadRequest)
		return
	}

	s.log.Info("received new problem", "name", data.Name, "tests", len(data.Tests))
	p := ToProblem(data)
	if err := s.saver.Add(p); err != nil {
		s.log.Error("failed to save problem", "name", p.Name, "error", err)
		http.Error(w, "Save failed", http.StatusInternalServerError)
		return
	}
	s.log.Info("problem saved", "name", p.Name, "id", p.ID)
	if s.OnProblem != nil {
		s.OnProblem(p)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Problem received"))
}

// ToProblem converts a companion payload into a new problem with fresh ids.
func ToProblem(data api.CompanionProblem) *models.Problem {
	p := models.NewProblem(data.Name, data.Group, data.URL)
	p.Interactive = data.Interactive
	if data.MemoryLimit > 0 {
		p.MemoryLimitMB = data.MemoryLimit
	}
	if data.TimeLimit > 0 {
		p.TimeLimitMs = data.TimeLimit
	}
	for _, t := range data.Tests {
		p.AddTest(t.Input, t.Output)
	}
	return &p
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "*")
		h.Set("Access-Control-Allow-Headers", "*")
		next.ServeHTTP(w, r)
	})
}

func preflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
