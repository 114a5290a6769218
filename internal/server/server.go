// Package server exposes the index over HTTP.
//
// Routes:
//
//	POST /insert         {"info":{...},"payload":{"data":"<base64>"}}
//	GET|POST /lookup     {"hashes":["..."]}
//	GET /stats
//	GET /metrics         when a Prometheus collector is configured
//
// Application failures are answered with 200 and {"status":"failed"}, as
// existing clients expect. Malformed JSON is a 400, an oversized body a 413
// and a throttled request a 429.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	gojson "github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/hupe1980/hast"
	"github.com/hupe1980/hast/internal/metrics"
	"github.com/hupe1980/hast/internal/payload"
	"github.com/hupe1980/hast/model"
	"github.com/hupe1980/hast/recordset"
)

// DefaultBodyLimit is the largest accepted request body.
const DefaultBodyLimit = 32 << 20

// Server timeout defaults.
const (
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// Index is the subset of hast.Guarded the server needs.
type Index interface {
	Insert(ctx context.Context, req model.InsertRequest) error
	Lookup(ctx context.Context, req model.LookupRequest) (*model.LookupResponse, error)
	Stats(ctx context.Context) (recordset.Stats, error)
}

// InsertBody is the request body of POST /insert.
type InsertBody struct {
	Info    model.Info      `json:"info"`
	Payload payload.Payload `json:"payload"`
}

// Status is the body of non-lookup responses.
type Status struct {
	Status string `json:"status"`
}

var (
	statusOK     = Status{Status: "ok"}
	statusFailed = Status{Status: "failed"}
)

// Server serves an Index over HTTP.
type Server struct {
	index   Index
	logger  *slog.Logger
	limit   int64
	limiter *rate.Limiter
	metrics *metrics.Prometheus

	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBodyLimit sets the largest accepted request body in bytes.
func WithBodyLimit(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithRateLimit throttles requests with a token bucket refilled at r per
// second holding up to burst tokens. r <= 0 disables throttling.
func WithRateLimit(r float64, burst int) Option {
	return func(s *Server) {
		if r <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(r), burst)
	}
}

// WithMetrics records request metrics in p and serves p on /metrics.
func WithMetrics(p *metrics.Prometheus) Option {
	return func(s *Server) {
		s.metrics = p
	}
}

// WithTimeouts sets the HTTP read and write timeouts and the grace period
// for in-flight requests on shutdown. Zero values keep the defaults.
func WithTimeouts(read, write, shutdown time.Duration) Option {
	return func(s *Server) {
		if read > 0 {
			s.readTimeout = read
		}
		if write > 0 {
			s.writeTimeout = write
		}
		if shutdown > 0 {
			s.shutdownTimeout = shutdown
		}
	}
}

// New returns a Server for index.
func New(index Index, opts ...Option) *Server {
	s := &Server{
		index:           index,
		logger:          slog.New(slog.DiscardHandler),
		limit:           DefaultBodyLimit,
		readTimeout:     DefaultReadTimeout,
		writeTimeout:    DefaultWriteTimeout,
		shutdownTimeout: DefaultShutdownTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /insert", s.handleInsert)
	mux.HandleFunc("GET /lookup", s.handleLookup)
	mux.HandleFunc("POST /lookup", s.handleLookup)
	mux.HandleFunc("GET /stats", s.handleStats)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	return s.instrument(s.throttle(mux))
}

// ListenAndServe serves on addr until ctx ends, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx ends, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
		IdleTimeout:  DefaultIdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.logger.Info("server listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	var body InsertBody
	if !s.decode(w, r, &body) {
		return
	}
	if body.Info.ID == "" {
		s.logger.Warn("insert request without report id")
		writeJSON(w, http.StatusBadRequest, statusFailed)
		return
	}

	log := s.logger.With("report", body.Info.ID)
	log.Info("insert request received", "payload", humanize.Bytes(uint64(len(body.Payload.Data))))

	records, err := body.Payload.Decode()
	if err != nil {
		log.Error("decode payload", "error", err)
		writeJSON(w, http.StatusOK, statusFailed)
		return
	}
	log.Info("payload decoded", "records", len(records))

	err = s.index.Insert(r.Context(), model.InsertRequest{Info: body.Info, Records: records})
	if err != nil {
		log.Error("insert", "error", err)
		writeJSON(w, http.StatusOK, statusFailed)
		return
	}

	writeJSON(w, http.StatusOK, statusOK)
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	var req model.LookupRequest
	if !s.decode(w, r, &req) {
		return
	}

	s.logger.Info("lookup request received", "hashes", len(req.Hashes))

	resp, err := s.index.Lookup(r.Context(), req)
	if err != nil {
		if !errors.Is(err, hast.ErrNotFound) {
			s.logger.Error("lookup", "error", err)
		}
		writeJSON(w, http.StatusOK, statusFailed)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.index.Stats(r.Context())
	if err != nil {
		s.logger.Error("stats", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, statusFailed)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// decode reads a JSON body into v. On failure it writes the error response
// and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, s.limit)
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.logger.Warn("request body too large", "limit", humanize.IBytes(uint64(s.limit)), "path", r.URL.Path)
			writeJSON(w, http.StatusRequestEntityTooLarge, statusFailed)
			return false
		}
		s.logger.Warn("read request body", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusBadRequest, statusFailed)
		return false
	}

	if err := gojson.Unmarshal(data, v); err != nil {
		s.logger.Warn("malformed request body", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusBadRequest, statusFailed)
		return false
	}
	return true
}

func (s *Server) throttle(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeJSON(w, http.StatusTooManyRequests, statusFailed)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status code.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.code = code
	rec.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	if s.metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveRequest(route, rec.code, time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = gojson.NewEncoder(w).Encode(v)
}
