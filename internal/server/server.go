// Package server provides the HTTP REST API for the lead scoring service.
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
	"syscall"
	"time"

	"github.com/jonathan/leadscout/internal/dataset"
	"github.com/jonathan/leadscout/internal/db"
	"github.com/jonathan/leadscout/internal/evaluation"
	"github.com/jonathan/leadscout/internal/llm"
	"github.com/jonathan/leadscout/internal/scoring"
	"github.com/jonathan/leadscout/internal/server/ratelimit"
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	db          *db.DB
	client      llm.Client
	agent       *scoring.Agent
	rateLimiter *ratelimit.Limiter
	concurrency int
}

// Config holds server configuration
type Config struct {
	Addr        string
	DatabaseURL string
	APIKey      string
	Concurrency int
}

// New creates a new server instance
func New(ctx context.Context, cfg Config) (*Server, error) {
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	client, err := llm.NewClient(ctx, llm.DefaultGeminiConfig(), cfg.APIKey)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}

	if cfg.Concurrency <= 0 {
		cfg.Concurrency = evaluation.DefaultConcurrency
	}

	s := &Server{
		db:          database,
		client:      client,
		agent:       scoring.NewAgent(client),
		rateLimiter: ratelimit.NewLimiter(ratelimit.LoadConfig()),
		concurrency: cfg.Concurrency,
	}

	mux := http.NewServeMux()

	// Optimization runs
	mux.HandleFunc("POST /optimizations", s.handleStartOptimization)
	mux.HandleFunc("GET /optimizations", s.handleListOptimizations)
	mux.HandleFunc("GET /optimizations/{id}", s.handleGetOptimization)

	// Stored prompts
	mux.HandleFunc("GET /prompts/{id}", s.handleGetPrompt)
	mux.HandleFunc("GET /prompts/{id}/lineage", s.handleGetPromptLineage)

	// Batch scoring
	mux.HandleFunc("POST /leads/qualify", s.handleQualifyLeads)
	mux.HandleFunc("POST /leads/rank", s.handleRankLeads)

	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // model-backed endpoints are slow
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start begins listening for requests and blocks until interrupted.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
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

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if err := s.client.Close(); err != nil {
		log.Printf("Error closing model client: %v", err)
	}
	s.db.Close()
	log.Println("Server stopped")
	return nil
}

// loadHarness builds an evaluation harness over the current ground-truth
// dataset and the default persona.
func (s *Server) loadHarness(ctx context.Context) (*evaluation.Harness, error) {
	leads, err := s.db.ListGroundTruthLeads(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ground-truth leads: %w", err)
	}
	ds, err := dataset.New(leads)
	if err != nil {
		return nil, &ErrEmptyDataset{Cause: err}
	}

	persona, err := s.db.GetDefaultPersona(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load persona: %w", err)
	}
	if persona == nil {
		return nil, &ErrNoPersona{}
	}

	return evaluation.New(s.agent, ds, persona.Description, s.concurrency), nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

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
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			if info.RetryAfter > 0 {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())+1))
			}
			s.errorResponse(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; X-Forwarded-For would only be
// safe behind a trusted proxy.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit <= 0 {
		return
	}
	w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
	w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
	w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
