// Package http serves the dashboard UI: embedded templates, htmx partials
// and form endpoints over the persistence gateway and the report engine.
package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
	appweb "fintrack/web"
)

// ExpenseStore is the slice of the persistence gateway the expense handlers need.
type ExpenseStore interface {
	InsertExpense(ctx context.Context, e core.Expense) (int64, error)
	ListExpenses(ctx context.Context, f storage.ExpenseFilter) ([]core.Expense, error)
	ExpensesBetween(ctx context.Context, start, end core.Date) ([]core.Expense, error)
	RecentExpenses(ctx context.Context, limit int) ([]core.Expense, error)
	DeleteExpense(ctx context.Context, id int64) error
	MonthTotal(ctx context.Context, year, month int) (core.Money, error)
	CategorySums(ctx context.Context, start, end core.Date) ([]storage.CategorySum, error)
}

// BudgetStore covers the budget operations.
type BudgetStore interface {
	UpsertBudget(ctx context.Context, category string, amount core.Money) error
	ListBudgets(ctx context.Context) ([]core.Budget, error)
	TotalBudget(ctx context.Context) (core.Money, error)
}

// GoalStore covers the savings-goal operations.
type GoalStore interface {
	InsertSavingsGoal(ctx context.Context, g core.SavingsGoal) (int64, error)
	ListSavingsGoals(ctx context.Context) ([]core.SavingsGoal, error)
	UpdateSavingsGoalAmount(ctx context.Context, id int64, amount core.Money) error
	DeleteSavingsGoal(ctx context.Context, id int64) error
	TotalSavings(ctx context.Context) (core.Money, error)
}

// Store is the full gateway surface the server is wired with.
type Store interface {
	ExpenseStore
	BudgetStore
	GoalStore
}

type Server struct {
	http.Server
	templates   *template.Template
	store       Store
	rateLimiter *rateLimiter

	recentLimit int
	topLimit    int

	shutdownOnce sync.Once
}

// Simple in-memory rate limiter for write endpoints.
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes.
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{
			lastRequest: now,
			requests:    1,
		}
		return true
	}

	// Reset counter if more than 1 minute has passed
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Allow up to 60 requests per minute
	client.requests++
	client.lastRequest = now

	return client.requests <= 60
}

// NewServer configures routes and templates, returning a ready-to-run
// http.Server. The templates are embedded, so a parse failure is a build
// defect and fails construction rather than surfacing per request.
func NewServer(addr string, store Store, recentLimit, topLimit int) (*Server, error) {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		store:       store,
		rateLimiter: newRateLimiter(),
		recentLimit: recentLimit,
		topLimit:    topLimit,
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.rateLimiter.stop()
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/", s.withSecurityHeaders(s.handleIndex))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	// Form endpoints
	mux.HandleFunc("/expenses", s.withSecurityHeaders(s.handleCreateExpense))
	mux.HandleFunc("/expenses/delete", s.withSecurityHeaders(s.handleDeleteExpense))
	mux.HandleFunc("/budgets", s.withSecurityHeaders(s.handleSetBudget))
	mux.HandleFunc("/goals", s.withSecurityHeaders(s.handleCreateGoal))
	mux.HandleFunc("/goals/update", s.withSecurityHeaders(s.handleUpdateGoal))
	mux.HandleFunc("/goals/delete", s.withSecurityHeaders(s.handleDeleteGoal))

	// UI partials
	mux.HandleFunc("/ui/summary", s.withSecurityHeaders(s.handleSummary))
	mux.HandleFunc("/ui/budget-status", s.withSecurityHeaders(s.handleBudgetStatus))
	mux.HandleFunc("/ui/categories", s.withSecurityHeaders(s.handleCategoryBreakdown))
	mux.HandleFunc("/ui/recent", s.withSecurityHeaders(s.handleRecentExpenses))
	mux.HandleFunc("/ui/expenses", s.withSecurityHeaders(s.handleExpenseList))
	mux.HandleFunc("/ui/goals", s.withSecurityHeaders(s.handleGoalList))
	mux.HandleFunc("/ui/top-expenses", s.withSecurityHeaders(s.handleTopExpenses))

	// Chart data
	mux.HandleFunc("/api/trend", s.withSecurityHeaders(s.handleTrend))

	return s, nil
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request logging.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extract client IP (considering proxies)
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		// Rate limit writes only; partial reloads are cheap.
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com https://cdn.jsdelivr.net 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	now := time.Now()
	data := struct {
		Today      string
		Categories []string
	}{
		Today:      now.Format("2006-01-02"),
		Categories: core.Categories,
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
