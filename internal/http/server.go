package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"habitlog/internal/core"
	applog "habitlog/internal/log"
	"habitlog/internal/store"
	appweb "habitlog/web"
)

// SyncPublisher broadcasts that a collection changed. The AMQP client
// satisfies this; a nil publisher disables sync events entirely.
type SyncPublisher interface {
	PublishCollectionSync(ctx context.Context, collection core.Collection) error
}

type Server struct {
	http.Server
	templates *template.Template
	store     store.Store
	publisher SyncPublisher

	dailyActivities  []core.Activity
	weeklyActivities []core.Activity

	rateLimiter  *rateLimiter
	metrics      *securityMetrics
	httpLog      *applog.StructuredLogger
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, st store.Store, pub SyncPublisher, daily, weekly []core.Activity) *Server {
	mux := http.NewServeMux()

	logger := applog.Default().WithComponent(applog.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr: addr,
		},
		store:            st,
		publisher:        pub,
		dailyActivities:  daily,
		weeklyActivities: weekly,
		rateLimiter:      newRateLimiter(),
		metrics:          &securityMetrics{},
		httpLog:          applog.NewStructuredLogger(logger),
	}

	// Every request carries a request-id scoped logger in its context.
	s.Server.Handler = applog.Middleware(logger)(
		applog.RequestIDMiddleware(func(*http.Request) string { return generateRequestID() })(mux))

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
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

	mux.HandleFunc("/", s.withSecurityHeaders(s.handleDashboard))
	mux.HandleFunc("/daily", s.withSecurityHeaders(s.handleDaily))
	mux.HandleFunc("/weekly", s.withSecurityHeaders(s.handleWeekly))
	mux.HandleFunc("/api/calendar", s.withSecurityHeaders(s.handleCalendar))
	mux.HandleFunc("/api/trends/daily", s.withSecurityHeaders(s.handleDailyTrends))
	mux.HandleFunc("/api/trends/weekly", s.withSecurityHeaders(s.handleWeeklyTrends))
	mux.HandleFunc("/healthz", handleHealth)

	return s
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
		clientIP := extractClientIP(r)
		reqLog := applog.FromContext(r.Context())

		reqLog.InfoContext(r.Context(), "Request started",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP)

		// Rate limit writes only; page loads stay cheap.
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP, s.metrics) {
			reqLog.WarnContext(r.Context(), "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.httpLog.LogHTTPEnd(r.Context(), r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
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

// publishSync notifies the sync worker that a collection changed. Failures
// are logged and swallowed: the record is already saved, the periodic resync
// covers the gap.
func (s *Server) publishSync(ctx context.Context, c core.Collection) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishCollectionSync(ctx, c); err != nil {
		slog.WarnContext(ctx, "Failed to publish sync event",
			"collection", string(c),
			"error", err)
	}
}
