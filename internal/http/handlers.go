package http

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/middleware/security"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.startedAt).Round(time.Second).String(),
	}).Write(w)
}

// handleReady checks that the ledger store answers within five seconds.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]interface{})
	status, httpStatus := "ready", http.StatusOK

	if err := s.ledger.Ping(ctx); err != nil {
		checks["store"] = fmt.Sprintf("failed: %v", err)
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	if s.cacheStats != nil {
		st := s.cacheStats()
		checks["dashboard_cache"] = map[string]interface{}{
			"entries": st.Size,
			"status":  "ok",
		}
	}

	if s.rateLimiter != nil {
		checks["rate_limiter"] = map[string]interface{}{
			"active_clients": s.rateLimiter.GetMetrics().ClientCount,
			"status":         "ok",
		}
	}

	NewResponse().Status(httpStatus).JSON(map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics writes application metrics in Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	traceMetrics := s.traceMiddleware.GetMetrics()
	write := func(name, kind, help string, value interface{}) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
		fmt.Fprintf(w, "%s %v\n\n", name, value)
	}

	write("http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	write("http_server_errors_total", "counter", "Total number of 5xx responses", traceMetrics.ServerErrors)
	write("http_response_time_avg_ms", "gauge", "Average response time in milliseconds",
		fmt.Sprintf("%.2f", float64(traceMetrics.AverageResponseTime)/1000))

	fmt.Fprintf(w, "# HELP ledger_mutations_total Ledger changes served by the API\n")
	fmt.Fprintf(w, "# TYPE ledger_mutations_total counter\n")
	fmt.Fprintf(w, "ledger_mutations_total{op=\"transaction_created\"} %d\n", s.appMetrics.transactionsCreated.Load())
	fmt.Fprintf(w, "ledger_mutations_total{op=\"transaction_updated\"} %d\n", s.appMetrics.transactionsUpdated.Load())
	fmt.Fprintf(w, "ledger_mutations_total{op=\"transaction_deleted\"} %d\n", s.appMetrics.transactionsDeleted.Load())
	fmt.Fprintf(w, "ledger_mutations_total{op=\"budget_upserted\"} %d\n\n", s.appMetrics.budgetsUpserted.Load())

	if s.cacheStats != nil {
		st := s.cacheStats()
		write("dashboard_cache_hits_total", "counter", "Dashboard cache hits", st.Hits)
		write("dashboard_cache_misses_total", "counter", "Dashboard cache misses", st.Misses)
		write("dashboard_cache_entries", "gauge", "Current dashboard cache entries", st.Size)
	}

	if s.rateLimiter != nil {
		rl := s.rateLimiter.GetMetrics()
		write("rate_limit_rejected_total", "counter", "Requests rejected by the rate limiter", rl.Rejected)
		write("rate_limit_clients", "gauge", "Currently tracked rate limit clients", rl.ClientCount)
	}

	write("forwarded_ip_spoof_attempts_total", "counter", "Forwarding headers ignored from untrusted peers", s.ipResolver.SpoofAttempts())
	write("uptime_seconds", "gauge", "Application uptime in seconds", fmt.Sprintf("%.0f", time.Since(s.appMetrics.startedAt).Seconds()))
}

// handleCategories lists the categories a transaction or budget may use.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(categoriesDTO{
		Categories:       core.Categories(),
		BudgetCategories: core.BudgetCategories(),
	}).Write(w)
}

// spaHandler serves files from dir and falls back to index.html for client
// side routes. Unknown /api paths stay JSON 404s.
func spaHandler(dir string) http.HandlerFunc {
	files := security.CacheStatic(time.Hour)(http.FileServer(http.Dir(dir)))
	index := filepath.Join(dir, "index.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			NotFoundError("Not found").Write(w)
			return
		}
		clean := filepath.Clean("/" + r.URL.Path)
		if clean != "/" {
			if info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(clean))); err == nil && !info.IsDir() {
				files.ServeHTTP(w, r)
				return
			}
		}
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, index)
	}
}
