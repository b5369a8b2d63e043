// Package httpapi is the HTTP and websocket transport layer: request
// routing, CORS, admission, and the session loop that bridges a websocket
// connection to its Game.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/kazip/minesweeper-server/internal/apperr"
	"github.com/kazip/minesweeper-server/internal/board"
	"github.com/kazip/minesweeper-server/internal/ratelimit"
	"github.com/kazip/minesweeper-server/internal/registry"
	"github.com/kazip/minesweeper-server/internal/session"
)

// Server wires the registry, admission controller, and transport together.
type Server struct {
	registry *registry.Registry
	limiter  *ratelimit.Limiter
	log      *slog.Logger

	defaultWidth, defaultHeight, defaultBombs uint16

	upgrader websocket.Upgrader
}

// New constructs a Server. defaultWidth/Height/Bombs are used for any
// /create field the caller omits.
func New(reg *registry.Registry, limiter *ratelimit.Limiter, log *slog.Logger, defaultWidth, defaultHeight, defaultBombs uint16) *Server {
	return &Server{
		registry:      reg,
		limiter:       limiter,
		log:           log,
		defaultWidth:  defaultWidth,
		defaultHeight: defaultHeight,
		defaultBombs:  defaultBombs,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Routes builds the chi router.
func (s *Server) Routes(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.recoverer)
	r.Use(s.requestLogger)
	r.Use(corsMiddleware(allowedOrigins))

	r.Get("/healthz", s.handleHealthz)
	r.Post("/create", s.handleCreate)
	r.Get("/ws", s.handleWS)

	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createRequest struct {
	Width  *uint16 `json:"width"`
	Height *uint16 `json:"height"`
	Bombs  *uint16 `json:"bombs"`
}

type createResponse struct {
	ID string `json:"id"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	identity := resolveIdentity(r)
	if !s.limiter.Allow(identity) {
		s.writeError(w, r, apperr.AdmissionDenied(identity), http.StatusTooManyRequests)
		return
	}

	var req createRequest
	if r.Body != nil {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			s.writeError(w, r, apperr.Validation("malformed request body"), http.StatusBadRequest)
			return
		}
	}

	width, height, bombs := s.defaultWidth, s.defaultHeight, s.defaultBombs
	if req.Width != nil {
		width = *req.Width
	}
	if req.Height != nil {
		height = *req.Height
	}
	if req.Bombs != nil {
		bombs = *req.Bombs
	}

	b, err := board.New(width, height, bombs, rand.Shuffle)
	if err != nil {
		s.writeError(w, r, apperr.Validation("%s", err.Error()), http.StatusBadRequest)
		return
	}

	g := session.New(b)
	id, err := s.registry.Create(g)
	if err != nil {
		s.writeError(w, r, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, createResponse{ID: id})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	g, ok := s.registry.Get(id)
	if !ok {
		s.writeError(w, r, apperr.UnknownGame(id), http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	runSessionLoop(conn, g, s.log)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, status int) {
	reqID := middleware.GetReqID(r.Context())
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.log.Log(r.Context(), level, "request error", "request_id", reqID, "path", r.URL.Path, "status", status, "error", err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error("panic recovered", "panic", rec, "path", r.URL.Path)
				w.WriteHeader(http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start), "request_id", middleware.GetReqID(r.Context()))
	})
}
