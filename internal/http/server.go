// Package http exposes the budget and analytics API consumed by the
// mobile client.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"chitieu/internal/analytics"
	applog "chitieu/internal/log"
	"chitieu/internal/services"
)

type Server struct {
	http.Server
	svc         *services.BudgetService
	logger      *applog.Logger
	rateLimiter *rateLimiter

	// LRU caches for analytics views with eviction policy
	bucketsCache *lruCache[[]analytics.DayBucket]
	summaryCache *lruCache[analytics.Summary]

	// Cache cleanup management
	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, svc *services.BudgetService, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		svc:              svc,
		logger:           logger.WithComponent(applog.ComponentHTTP),
		rateLimiter:      newRateLimiter(),
		bucketsCache:     newLRUCache[[]analytics.DayBucket](100, 5*time.Minute),
		summaryCache:     newLRUCache[analytics.Summary](100, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	// Start periodic cache cleanup
	go s.startCacheCleanup()

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/api/v1/categories", s.withSecurityHeaders(s.handleCategories))
	mux.HandleFunc("/api/v1/budgets", s.withSecurityHeaders(s.handleBudgets))
	mux.HandleFunc("/api/v1/budgets/totals", s.withSecurityHeaders(s.handleTotals))
	mux.HandleFunc("/api/v1/budgets/warnings", s.withSecurityHeaders(s.handleWarnings))
	mux.HandleFunc("/api/v1/budgets/recommendations", s.withSecurityHeaders(s.handleRecommendations))
	mux.HandleFunc("/api/v1/budgets/{category}", s.withSecurityHeaders(s.handleUpdateBudget))
	mux.HandleFunc("/api/v1/refresh", s.withSecurityHeaders(s.handleRefresh))
	mux.HandleFunc("/api/v1/analytics/daily", s.withSecurityHeaders(s.handleDaily))
	mux.HandleFunc("/api/v1/analytics/weekly", s.withSecurityHeaders(s.handleWeekly))
	mux.HandleFunc("/api/v1/analytics/month", s.withSecurityHeaders(s.handleMonth))

	return s
}

// startCacheCleanup runs periodic cleanup for both caches
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			bucketsCleaned := s.bucketsCache.CleanExpired()
			summariesCleaned := s.summaryCache.CleanExpired()
			if bucketsCleaned > 0 || summariesCleaned > 0 {
				s.logger.Debug("Cache cleanup completed",
					"bucket_entries_removed", bucketsCleaned,
					"summary_entries_removed", summariesCleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// invalidateAnalytics drops every cached analytics view. Called after a
// refresh pulls fresh transactions.
func (s *Server) invalidateAnalytics() {
	s.bucketsCache.Purge()
	s.summaryCache.Purge()
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request
// logging to responses
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

		s.logger.InfoContext(ctx, "Request started",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP)

		// Rate limit mutating requests
		if (r.Method == http.MethodPost || r.Method == http.MethodPut) && !s.rateLimiter.allow(clientIP) {
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later").Write(w)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		s.logger.InfoContext(ctx, "Request completed",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, duration.Milliseconds(),
			applog.FieldClientIP, clientIP)
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

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
