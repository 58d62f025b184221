// Package server provides the HTTP API for previewing and exporting resumes and for
// storing drafts.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/engine"
	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/layout"
	"github.com/jonathan/resume-builder/internal/server/middleware"
	"github.com/jonathan/resume-builder/internal/server/ratelimit"
)

// Store is the draft and export persistence the server needs. *db.DB implements it.
type Store interface {
	CreateDraft(ctx context.Context, in db.DraftInput) (*db.Draft, error)
	GetDraft(ctx context.Context, id uuid.UUID) (*db.Draft, error)
	UpdateDraft(ctx context.Context, id uuid.UUID, in db.DraftInput) (*db.Draft, error)
	DeleteDraft(ctx context.Context, id uuid.UUID) error
	SaveExport(ctx context.Context, draftID *uuid.UUID, art *export.Artifact) (*db.Export, error)
	GetExport(ctx context.Context, id uuid.UUID) (*db.Export, error)
	ListExports(ctx context.Context, draftID uuid.UUID, limit int) ([]db.ExportSummary, error)
	Close()
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	store       Store
	engine      engine.Engine
	profiles    *layout.Registry
	rateLimiter *ratelimit.Limiter
	tokens      *TokenService
	passphrases *config.PassphraseConfig
	verbose     bool

	// One exporter per draft, so overlapping exports of the same draft are refused.
	// Entries live only while a request holds them.
	mu        sync.Mutex
	exporters map[uuid.UUID]*exporterSlot
}

type exporterSlot struct {
	exp   *export.Exporter
	users int
}

// Config holds server configuration
type Config struct {
	Port int
	// DatabaseURL enables draft storage. Without it only the stateless endpoints are served.
	DatabaseURL   string
	Engine        string
	EngineOptions engine.Options
	Profiles      *layout.Registry
	Verbose       bool
}

// deps are the collaborators of a Server, injected directly by tests.
type deps struct {
	store       Store
	engine      engine.Engine
	profiles    *layout.Registry
	limiter     *ratelimit.Limiter
	tokens      *TokenService
	passphrases *config.PassphraseConfig
	verbose     bool
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	eng, err := engine.New(cfg.Engine, cfg.EngineOptions)
	if err != nil {
		return nil, err
	}

	d := deps{
		engine:   eng,
		profiles: cfg.Profiles,
		limiter:  ratelimit.NewLimiter(ratelimit.LoadConfig()),
		verbose:  cfg.Verbose,
	}

	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return nil, err
		}

		tokenConfig, err := config.NewTokenConfig()
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to create token config: %w", err)
		}
		passphraseConfig, err := config.NewPassphraseConfig()
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to create passphrase config: %w", err)
		}

		d.store = database
		d.tokens = NewTokenService(tokenConfig)
		d.passphrases = passphraseConfig
	} else {
		log.Println("No database configured, draft endpoints are disabled")
	}

	s := newServer(d)
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // Chrome exports can be slow to start
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

func newServer(d deps) *Server {
	if d.profiles == nil {
		d.profiles = layout.Builtin()
	}
	if d.limiter == nil {
		d.limiter = ratelimit.NewLimiter(&ratelimit.Config{Enabled: false})
	}
	return &Server{
		store:       d.store,
		engine:      d.engine,
		profiles:    d.profiles,
		rateLimiter: d.limiter,
		tokens:      d.tokens,
		passphrases: d.passphrases,
		verbose:     d.verbose,
		exporters:   make(map[uuid.UUID]*exporterSlot),
	}
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /templates", s.handleTemplates)

	// Stateless rendering
	mux.HandleFunc("POST /estimate", s.handleEstimate)
	mux.HandleFunc("POST /preview", s.handlePreview)
	mux.HandleFunc("POST /export", s.handleExport)
	mux.HandleFunc("POST /export/stream", s.handleExportStream)
	mux.HandleFunc("POST /export/all", s.handleExportAll)

	// Drafts
	mux.HandleFunc("POST /drafts", s.handleCreateDraft)
	mux.HandleFunc("POST /drafts/{id}/token", s.handleDraftToken)
	mux.Handle("GET /drafts/{id}", s.requireDraft(s.handleGetDraft))
	mux.Handle("PUT /drafts/{id}", s.requireDraft(s.handleUpdateDraft))
	mux.Handle("DELETE /drafts/{id}", s.requireDraft(s.handleDeleteDraft))
	mux.Handle("POST /drafts/{id}/export", s.requireDraft(s.handleExportDraft))
	mux.Handle("GET /drafts/{id}/exports", s.requireDraft(s.handleListDraftExports))
	mux.HandleFunc("GET /exports/{id}", s.handleGetExport)

	return s.withRateLimit(s.withLogging(s.withCORS(mux)))
}

// Start begins listening for requests
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s (engine: %s)", s.httpServer.Addr, s.engine.Name())
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.rateLimiter.Stop()
	if s.store != nil {
		s.store.Close()
	}
	log.Println("Server stopped")
	return nil
}

// requireDraft guards a draft route with a draft token. Without storage every such route
// reports that drafts are disabled.
func (s *Server) requireDraft(h http.HandlerFunc) http.Handler {
	if s.store == nil || s.tokens == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			s.writeError(w, ErrStorageDisabled)
		})
	}
	return middleware.RequireDraft(s.tokens.AsTokenValidator())(h)
}

// acquireExporter returns the exporter for a draft, creating it on first use. The
// returned func must be called when the request is done with it.
func (s *Server) acquireExporter(draftID uuid.UUID) (*export.Exporter, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.exporters[draftID]
	if !ok {
		exp := export.New(s.engine, &db.Saver{Store: s.store, DraftID: &draftID}, s.profiles)
		exp.Verbose = s.verbose
		slot = &exporterSlot{exp: exp}
		s.exporters[draftID] = slot
	}
	slot.users++
	return slot.exp, func() { s.releaseExporter(draftID, slot) }
}

func (s *Server) releaseExporter(draftID uuid.UUID, slot *exporterSlot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot.users--
	if slot.users == 0 && s.exporters[draftID] == slot {
		delete(s.exporters, draftID)
	}
}

func (s *Server) forgetExporter(draftID uuid.UUID) {
	s.mu.Lock()
	delete(s.exporters, draftID)
	s.mu.Unlock()
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, Location, X-Page-Width, X-Page-Height")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s %s completed in %v", r.Method, r.URL.Path, r.RemoteAddr, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"engine":  s.engine.Name(),
		"storage": s.store != nil,
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// writeError maps err to a status and writes it as JSON. Server faults are logged.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[server] request failed (%d): %v", status, err)
	}
	s.jsonResponse(w, status, errorBody(err, status))
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
