package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cwbudde/difftune/internal/report"
	"github.com/cwbudde/difftune/internal/store"
)

// Server represents the HTTP server
type Server struct {
	jobManager *JobManager
	store      *store.FSStore
	addr       string
	server     *http.Server
}

// NewServer creates a new HTTP server. dataDir is where checkpoints and
// traces are written; pass "" to disable persistence.
func NewServer(addr, dataDir string) (*Server, error) {
	s := &Server{
		jobManager: NewJobManager(),
		addr:       addr,
	}
	if dataDir != "" {
		fs, err := store.NewFSStore(dataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open data dir: %w", err)
		}
		s.store = fs
	}
	return s, nil
}

// Start starts the HTTP server
func (s *Server) Start() error {
	mux := http.NewServeMux()

	// Register API routes
	mux.HandleFunc("/api/v1/jobs", s.handleJobs)
	mux.HandleFunc("/api/v1/jobs/", s.handleJobsWithID)

	// Wrap with middleware
	handler := s.loggingMiddleware(s.corsMiddleware(mux))

	s.server = &http.Server{
		Addr:    s.addr,
		Handler: handler,
	}

	slog.Info("Starting HTTP server", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down HTTP server")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// handleJobs handles /api/v1/jobs
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateJob(w, r)
	case http.MethodGet:
		s.handleListJobs(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleJobsWithID handles /api/v1/jobs/:id/*
func (s *Server) handleJobsWithID(w http.ResponseWriter, r *http.Request) {
	// Parse job ID from path
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/jobs/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Job ID required", http.StatusBadRequest)
		return
	}

	jobID := parts[0]

	// Route based on subpath
	if len(parts) == 1 || parts[1] == "status" {
		s.handleGetJobStatus(w, r, jobID)
	} else if parts[1] == "stream" {
		s.handleJobStream(w, r, jobID)
	} else if parts[1] == "trace" {
		s.handleGetTrace(w, r, jobID)
	} else if parts[1] == "chart" {
		s.handleGetChart(w, r, jobID)
	} else {
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// handleCreateJob handles POST /api/v1/jobs
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var config TuneConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	// Validate config
	if config.Problem == "" {
		http.Error(w, "problem is required", http.StatusBadRequest)
		return
	}
	if config.PopSize <= 0 {
		config.PopSize = 30
	}
	if config.PopSize < 4 {
		http.Error(w, "popSize must be at least 4", http.StatusBadRequest)
		return
	}
	if config.MinTrades <= 0 {
		config.MinTrades = 1
	}
	if config.MaxEvals <= 0 {
		config.MaxEvals = 1000000
	}
	if config.MaxBadGen <= 0 {
		config.MaxBadGen = 50
	}
	if config.MutateDev == 0 {
		config.MutateDev = 0.8
	}
	if config.PCross == 0 {
		config.PCross = 0.9
	}
	if config.PCross < 0 || config.PCross > 1 {
		http.Error(w, "pcross must be in [0,1]", http.StatusBadRequest)
		return
	}
	if config.PClimb < 0 || config.PClimb > 1 {
		http.Error(w, "pclimb must be in [0,1]", http.StatusBadRequest)
		return
	}

	// Create job
	job := s.jobManager.CreateJob(config)

	// Start worker in background
	go runJob(context.Background(), s.jobManager, s.store, job.ID)

	// Return job
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(job)
}

// handleListJobs handles GET /api/v1/jobs
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.jobManager.ListJobs()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(jobs)
}

// handleGetJobStatus handles GET /api/v1/jobs/:id/status
func (s *Server) handleGetJobStatus(w http.ResponseWriter, r *http.Request, jobID string) {
	job, exists := s.jobManager.GetJob(jobID)
	if !exists {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	// Compute elapsed time and evals per second
	var elapsed time.Duration
	if job.EndTime != nil {
		elapsed = job.EndTime.Sub(job.StartTime)
	} else {
		elapsed = time.Since(job.StartTime)
	}

	eps := float64(0)
	if elapsed.Seconds() > 0 {
		eps = float64(job.Evals) / elapsed.Seconds()
	}

	// Create response
	response := map[string]interface{}{
		"id":          job.ID,
		"state":       job.State,
		"config":      job.Config,
		"bestScore":   job.BestScore,
		"bestParams":  job.BestParams,
		"generations": job.Generations,
		"evals":       job.Evals,
		"capExceeded": job.CapExceeded,
		"elapsed":     elapsed.Seconds(),
		"eps":         eps,
		"startTime":   job.StartTime,
		"endTime":     job.EndTime,
		"error":       job.Error,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleGetTrace handles GET /api/v1/jobs/:id/trace, returning the full
// per-generation trace as a JSON array.
func (s *Server) handleGetTrace(w http.ResponseWriter, r *http.Request, jobID string) {
	if s.store == nil {
		http.Error(w, "Persistence disabled", http.StatusNotFound)
		return
	}

	reader, err := store.NewTraceReader(s.store.BaseDir(), jobID)
	if err != nil {
		http.Error(w, "Trace not found", http.StatusNotFound)
		return
	}
	defer reader.Close()

	entries, err := reader.ReadAll()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to read trace: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// handleGetChart handles GET /api/v1/jobs/:id/chart, rendering the
// convergence chart for the job's trace as a self-contained HTML page.
func (s *Server) handleGetChart(w http.ResponseWriter, r *http.Request, jobID string) {
	if s.store == nil {
		http.Error(w, "Persistence disabled", http.StatusNotFound)
		return
	}

	reader, err := store.NewTraceReader(s.store.BaseDir(), jobID)
	if err != nil {
		http.Error(w, "Trace not found", http.StatusNotFound)
		return
	}
	defer reader.Close()

	entries, err := reader.ReadAll()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to read trace: %v", err), http.StatusInternalServerError)
		return
	}
	if len(entries) == 0 {
		http.Error(w, "No trace data yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	title := fmt.Sprintf("Convergence %s", jobID)
	if err := report.RenderConvergenceChart(w, entries, title); err != nil {
		slog.Error("Failed to render chart", "job_id", jobID, "error", err)
	}
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
