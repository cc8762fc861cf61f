// Package http serves the ledger JSON API: admin CRUD over members,
// payments, expenses and donations, read-only public mirrors, and the
// summary, stats and weekly-analysis report endpoints.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"clubledger/internal/auth"
	"clubledger/internal/cache"
	"clubledger/internal/core"
	"clubledger/internal/ledger"
	"clubledger/internal/log"
	"clubledger/internal/middleware/trace"
	"clubledger/internal/services"
)

type Server struct {
	http.Server

	store     ledger.Store
	recorder  *services.Recorder
	engine    *services.AggregationEngine
	assembler *services.ReportAssembler
	auth      *auth.Service

	rateLimiter *rateLimiter
	tracer      *trace.Middleware

	// Weekly-analysis reports cached per year; any payment or expense write
	// clears the cache.
	reportCache *cache.LRUCache[core.WeeklyAnalysisReport]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// Deps carries the constructed services the server routes to.
type Deps struct {
	Store     ledger.Store
	Recorder  *services.Recorder
	Engine    *services.AggregationEngine
	Assembler *services.ReportAssembler
	Auth      *auth.Service
	Logger    *log.Logger
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	s := &Server{
		store:            deps.Store,
		recorder:         deps.Recorder,
		engine:           deps.Engine,
		assembler:        deps.Assembler,
		auth:             deps.Auth,
		rateLimiter:      newRateLimiter(60, time.Minute),
		tracer:           trace.NewMiddleware(clientIP),
		reportCache:      cache.NewLRUCache[core.WeeklyAnalysisReport](16, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	// Health
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	// Auth
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("GET /api/auth/me", s.requireAuth(s.handleMe))

	// Public read-only mirrors
	mux.HandleFunc("GET /api/public/members", s.handlePublicMembers)
	mux.HandleFunc("GET /api/public/payments", s.handleListPayments)
	mux.HandleFunc("GET /api/public/expenses", s.handleListExpenses)
	mux.HandleFunc("GET /api/public/donations", s.handleListDonations)
	mux.HandleFunc("GET /api/public/summary", s.handleSummary)

	// Members
	mux.HandleFunc("GET /api/members", s.requireAuth(s.handleListMembers))
	mux.HandleFunc("POST /api/members", s.requireAuth(s.handleCreateMember))
	mux.HandleFunc("GET /api/members/{id}", s.requireAuth(s.handleGetMember))
	mux.HandleFunc("PUT /api/members/{id}", s.requireAuth(s.handleUpdateMember))
	mux.HandleFunc("DELETE /api/members/{id}", s.requireAuth(s.handleDeleteMember))
	mux.HandleFunc("GET /api/members/{id}/paid-status", s.requireAuth(s.handlePaidStatus))

	// Payments
	mux.HandleFunc("GET /api/payments", s.requireAuth(s.handleListPayments))
	mux.HandleFunc("POST /api/payments", s.requireAuth(s.handleRecordPayment))
	mux.HandleFunc("DELETE /api/payments/{id}", s.requireAuth(s.handleDeletePayment))

	// Expenses
	mux.HandleFunc("GET /api/expenses", s.requireAuth(s.handleListExpenses))
	mux.HandleFunc("GET /api/expenses/stats", s.requireAuth(s.handleExpenseStats))
	mux.HandleFunc("POST /api/expenses", s.requireAuth(s.handleCreateExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.requireAuth(s.handleDeleteExpense))

	// Donations
	mux.HandleFunc("GET /api/donations", s.requireAuth(s.handleListDonations))
	mux.HandleFunc("GET /api/donations/stats", s.requireAuth(s.handleDonationStats))
	mux.HandleFunc("POST /api/donations", s.requireAuth(s.handleCreateDonation))

	// Aggregates and reports
	mux.HandleFunc("GET /api/summary", s.requireAuth(s.handleSummary))
	mux.HandleFunc("GET /api/stats", s.requireAuth(s.handleStats))
	mux.HandleFunc("GET /api/reports/weekly-analysis", s.requireAuth(s.handleWeeklyAnalysis))
	mux.HandleFunc("GET /api/reports/weekly-analysis/export", s.requireAuth(s.handleWeeklyAnalysisExport))

	var handler http.Handler = mux
	handler = s.withSecurity(handler)
	handler = s.tracer.Middleware(handler)
	if deps.Logger != nil {
		handler = log.Middleware(deps.Logger)(handler)
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.startCacheCleanup()
	return s
}

// withSecurity adds security headers and rate limits mutating requests.
func (s *Server) withSecurity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			if !s.rateLimiter.allow(clientIP(r)) {
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
				return
			}
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the client address, honoring proxy headers.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.reportCache.CleanExpired()
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown stops the cleanup goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
