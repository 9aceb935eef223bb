package server

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/HerbHall/brandkit/internal/version"
)

// HTTP metrics. route is the mux pattern that served the request, so the
// label set is bounded by the registered routes.
var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brandkit_http_requests_total",
			Help: "HTTP requests by route and status.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "brandkit_http_request_duration_seconds",
			Help:    "HTTP request latency by route, excluding stream sessions.",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)
	streamSessionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "brandkit_stream_session_seconds",
			Help:    "Lifetime of upgraded branding stream connections.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDuration, streamSessionDuration)
}

// Paths the middleware treats specially.
const (
	pathStylesheet = "/api/v1/branding/styles.css"
	pathStream     = "/api/v1/ws/branding"
	pathDocs       = "/swagger/"
)

// routeKind groups requests by logging and limiting policy.
type routeKind int

const (
	kindAPI routeKind = iota
	// kindOps covers liveness, readiness and metric scrapes.
	kindOps
	// kindStylesheet is revalidated on every host page load.
	kindStylesheet
	kindStream
	kindDocs
)

func classify(path string) routeKind {
	switch path {
	case "/healthz", "/readyz", "/metrics":
		return kindOps
	case pathStylesheet:
		return kindStylesheet
	case pathStream:
		return kindStream
	}
	if strings.HasPrefix(path, pathDocs) {
		return kindDocs
	}
	return kindAPI
}

// routeLabel is the matched pattern without its method, or "unmatched".
func routeLabel(r *http.Request) string {
	if r.Pattern == "" {
		return "unmatched"
	}
	if _, path, ok := strings.Cut(r.Pattern, " "); ok {
		return path
	}
	return r.Pattern
}

// Middleware is a function that wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middleware in order (first argument is outermost).
func Chain(handler http.Handler, mw ...Middleware) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	return handler
}

type requestIDKey struct{}

// maxRequestIDLen bounds caller-supplied request IDs.
const maxRequestIDLen = 64

// RequestID returns the request ID from the context.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// RequestIDMiddleware propagates a well-formed X-Request-ID or assigns a new
// UUID, and echoes it on the response.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if !validRequestID(id) {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, c := range id {
		if c < '!' || c > '~' {
			return false
		}
	}
	return true
}

// LoggingMiddleware records request metrics and logs each request at a level
// chosen by route kind. Ops endpoints are skipped. Stylesheet revalidations
// log at debug and 5xx responses at warn. Upgraded streams log once, when the
// session ends.
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			elapsed := time.Since(start)
			route := routeLabel(r)
			httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
			if sw.upgraded() {
				streamSessionDuration.Observe(elapsed.Seconds())
			} else {
				httpRequestDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())
			}

			kind := classify(r.URL.Path)
			if kind == kindOps {
				return
			}
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", sw.status),
				zap.String("remote", clientIP(r)),
				zap.String("request_id", RequestID(r.Context())),
			}
			switch {
			case sw.upgraded():
				logger.Info("branding stream closed", append(fields, zap.Duration("session", elapsed))...)
			case sw.status >= http.StatusInternalServerError:
				logger.Warn("http request failed", append(fields, zap.Duration("duration", elapsed))...)
			case kind == kindStylesheet:
				logger.Debug("stylesheet served", append(fields, zap.Duration("duration", elapsed))...)
			default:
				logger.Info("http request", append(fields, zap.Duration("duration", elapsed))...)
			}
		})
	}
}

// Content security policies. Custom CSS is injected inline and logos may be
// remote. Swagger UI bootstraps with an inline script.
const (
	cspDefault = "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; font-src 'self'"
	cspDocs    = "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:"
)

// SecurityHeadersMiddleware sets security headers. The stylesheet is
// embedded by host pages on other origins, so it alone is marked
// cross-origin readable.
func SecurityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		switch classify(r.URL.Path) {
		case kindStylesheet:
			h.Set("Cross-Origin-Resource-Policy", "cross-origin")
		case kindDocs:
			h.Set("X-Frame-Options", "DENY")
			h.Set("Content-Security-Policy", cspDocs)
		default:
			h.Set("X-Frame-Options", "DENY")
			h.Set("Cross-Origin-Resource-Policy", "same-origin")
			h.Set("Content-Security-Policy", cspDefault)
		}
		next.ServeHTTP(w, r)
	})
}

// VersionHeaderMiddleware adds X-Brandkit-Version to all responses.
func VersionHeaderMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Brandkit-Version", version.Short())
		next.ServeHTTP(w, r)
	})
}

// CORSMiddleware allows the listed origins to call the API from a browser.
// An empty list disables CORS headers entirely.
func CORSMiddleware(allowedOrigins []string) Middleware {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(o, "/")] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || !allowed[origin] {
				next.ServeHTTP(w, r)
				return
			}
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Expose-Headers", "ETag, X-Request-ID")
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", "GET, PUT, POST, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, If-None-Match, X-Request-ID")
				h.Set("Access-Control-Max-Age", "600")
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RecoveryMiddleware turns handler panics into a 500 problem response.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func RecoveryMiddleware(logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
					zap.String("request_id", RequestID(r.Context())),
					zap.Stack("stack"),
				)
				InternalError(w, "an unexpected error occurred", r.URL.Path)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitMiddleware applies a per-client token bucket to every route except
// ops endpoints and the stylesheet. Rejections carry Retry-After.
func RateLimitMiddleware(rps float64, burst int) Middleware {
	cl := newClientLimiter(rate.Limit(rps), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch classify(r.URL.Path) {
			case kindOps, kindStylesheet:
				next.ServeHTTP(w, r)
				return
			}
			if wait, ok := cl.reserve(clientIP(r), time.Now()); !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				RateLimited(w, "rate limit exceeded", r.URL.Path)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

const (
	maxTrackedClients = 10000
	idleClientTTL     = 10 * time.Minute
)

// clientLimiter keeps one token bucket per client address.
type clientLimiter struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	buckets map[string]*clientBucket
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiter(limit rate.Limit, burst int) *clientLimiter {
	return &clientLimiter{
		limit:   limit,
		burst:   burst,
		buckets: make(map[string]*clientBucket),
	}
}

// reserve takes a token for client at now. When none is available it
// returns how long until one is, without consuming anything.
func (l *clientLimiter) reserve(client string, now time.Time) (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[client]
	if !ok {
		if len(l.buckets) >= maxTrackedClients {
			l.evictIdleLocked(now)
		}
		b = &clientBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[client] = b
	}
	b.lastSeen = now

	res := b.limiter.ReserveN(now, 1)
	if !res.OK() {
		return time.Second, false
	}
	if wait := res.DelayFrom(now); wait > 0 {
		res.CancelAt(now)
		return wait, false
	}
	return 0, true
}

func (l *clientLimiter) evictIdleLocked(now time.Time) {
	cutoff := now.Add(-idleClientTTL)
	for client, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, client)
		}
	}
}

// clientIP is the first X-Forwarded-For hop when it parses as an address,
// otherwise the connection's remote host.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if addr, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return addr.String()
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// statusWriter records the response status and whether the connection was
// taken over by a protocol upgrade.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	hijacked    bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Hijack lets the stream handler upgrade through the middleware chain.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("%T does not support hijacking", w.ResponseWriter)
	}
	conn, brw, err := hj.Hijack()
	if err == nil {
		w.hijacked = true
	}
	return conn, brw, err
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *statusWriter) upgraded() bool {
	return w.hijacked || w.status == http.StatusSwitchingProtocols
}
