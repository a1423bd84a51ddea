package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/fwojciec/initbot"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ShutdownTimeout is how long Close waits for in-flight requests.
const ShutdownTimeout = 5 * time.Second

const maxAskBodySize = 1 << 20

// Server serves the initiative JSON API.
type Server struct {
	ln     net.Listener
	server *http.Server
	router chi.Router

	// Addr is the address to listen on, e.g. ":8080".
	Addr string

	// Services used by the handlers.
	InitiativeService initbot.InitiativeService
	Chatbot           initbot.Chatbot

	// Logger receives one line per request. Defaults to slog.Default().
	Logger *slog.Logger
}

// NewServer creates a server with its routes registered.
func NewServer() *Server {
	s := &Server{
		router: chi.NewRouter(),
		Logger: slog.Default(),
	}
	s.server = &http.Server{Handler: s.router}

	s.router.Use(s.requestID)
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/initiatives", s.handleListInitiatives)
	s.router.Get("/initiatives/{id}", s.handleGetInitiative)
	s.router.Get("/stats", s.handleStats)
	s.router.Post("/ask", s.handleAsk)

	return s
}

// ServeHTTP dispatches to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Open starts listening on Addr and serves in the background.
func (s *Server) Open() (err error) {
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}
	go func() {
		if err := s.server.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Error("serve", "err", err)
		}
	}()
	return nil
}

// URL returns the base URL of the running server.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// requestID tags every request with a uuid and logs its outcome.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func(begin time.Time) {
			s.Logger.Info("request",
				"id", id,
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(begin),
			)
		}(time.Now())

		next.ServeHTTP(rec, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListInitiatives(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter initbot.InitiativeFilter
	if v := q.Get("status"); v != "" {
		filter.Status = &v
	}
	if v := q.Get("year"); v != "" {
		filter.Year = &v
	}
	if v := q.Get("title"); v != "" {
		filter.Title = &v
	}

	var err error
	if filter.Limit, err = intParam(q.Get("limit")); err != nil {
		s.Error(w, r, initbot.Errorf(initbot.EINVALID, "invalid limit"))
		return
	}
	if filter.Offset, err = intParam(q.Get("offset")); err != nil {
		s.Error(w, r, initbot.Errorf(initbot.EINVALID, "invalid offset"))
		return
	}

	initiatives, err := s.InitiativeService.FindInitiatives(r.Context(), filter)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"initiatives": initiatives})
}

func (s *Server) handleGetInitiative(w http.ResponseWriter, r *http.Request) {
	initiative, err := s.InitiativeService.FindInitiativeByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, initiative)
}

type statsResponse struct {
	*initbot.Statistics
	SuccessRate float64 `json:"successRate"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	initiatives, err := s.InitiativeService.FindInitiatives(r.Context(), initbot.InitiativeFilter{})
	if err != nil {
		s.Error(w, r, err)
		return
	}
	stats := initbot.ComputeStatistics(initiatives)
	writeJSON(w, http.StatusOK, statsResponse{Statistics: stats, SuccessRate: stats.SuccessRate()})
}

type askRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxAskBodySize)).Decode(&req); err != nil {
		s.Error(w, r, initbot.Errorf(initbot.EINVALID, "invalid request body"))
		return
	}
	if req.Question == "" {
		s.Error(w, r, initbot.Errorf(initbot.EINVALID, "question required"))
		return
	}

	reply, err := s.Chatbot.Respond(r.Context(), req.Question)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// Error writes err as a JSON error response. Internal errors are logged
// and their details hidden from the client.
func (s *Server) Error(w http.ResponseWriter, r *http.Request, err error) {
	code := initbot.ErrorCode(err)
	if code == initbot.EINTERNAL {
		s.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, ErrorStatusCode(code), map[string]string{"error": initbot.ErrorMessage(err)})
}

var codes = map[string]int{
	initbot.ECONFLICT: http.StatusConflict,
	initbot.EINVALID:  http.StatusBadRequest,
	initbot.ENOTFOUND: http.StatusNotFound,
	initbot.EINTERNAL: http.StatusInternalServerError,
}

// ErrorStatusCode returns the HTTP status code for an error code.
func ErrorStatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New("invalid integer")
	}
	return n, nil
}
