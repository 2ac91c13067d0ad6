package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"expenses/internal/cache"
	"expenses/internal/config"
	"expenses/internal/core"
	"expenses/internal/form"
	applog "expenses/internal/log"
	"expenses/internal/metrics"
	"expenses/internal/middleware/ratelimit"
	"expenses/internal/middleware/security"
	"expenses/internal/middleware/trace"
	"expenses/internal/store"
	appweb "expenses/web"
)

// chartCacheSize bounds the number of rendered charts kept per process.
const chartCacheSize = 128

// Config holds the presentation and throttling settings of the server.
type Config struct {
	Addr               string
	Currency           string
	DateLayout         string
	RateLimitPerMinute int
	ChartCacheTTL      time.Duration
}

// ConfigFromApp maps the application configuration onto the server's.
func ConfigFromApp(cfg *config.Config) Config {
	return Config{
		Addr:               ":" + cfg.Port,
		Currency:           cfg.Currency,
		DateLayout:         cfg.DateFormat,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		ChartCacheTTL:      cfg.ChartCacheTTL,
	}
}

type Server struct {
	http.Server
	cfg       Config
	templates *template.Template

	store   *store.Store
	form    *form.Controller
	metrics *metrics.Metrics
	logger  *applog.Logger
	events  *applog.StructuredLogger
	now     func() time.Time
	started time.Time

	chartCache  *cache.LRUCache[[]byte]
	rateLimiter *ratelimit.Limiter
	clientIP    *security.ClientIPResolver

	shutdownOnce sync.Once
}

type Option func(*Server)

// WithMetrics enables /metrics and request instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

func WithLogger(l *applog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithClock overrides the clock used for the monthly summary and the chart window.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(cfg Config, st *store.Store, fc *form.Controller, opts ...Option) *Server {
	if cfg.Currency == "" {
		cfg.Currency = core.DefaultCurrency
	}
	if cfg.DateLayout == "" {
		cfg.DateLayout = core.DateLayout
	}
	if cfg.ChartCacheTTL <= 0 {
		cfg.ChartCacheTTL = 5 * time.Minute
	}

	s := &Server{
		cfg:      cfg,
		store:    st,
		form:     fc,
		now:      time.Now,
		clientIP: security.NewClientIPResolver(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = applog.New(applog.DefaultConfig())
	}
	s.logger = s.logger.WithComponent(applog.ComponentHTTP)
	s.events = applog.NewStructuredLogger(s.logger)
	s.started = s.now()
	s.chartCache = cache.NewLRUCache[[]byte](chartCacheSize, cfg.ChartCacheTTL)
	s.rateLimiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute})

	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", applog.FieldError, err)
	} else {
		s.templates = t
	}

	mux := http.NewServeMux()
	s.routes(mux)

	var observer trace.Observer
	if s.metrics != nil {
		observer = s.metrics
	}
	limited := s.rateLimiter.Middleware(s.clientIP.ClientIP, s.handleRateLimited)(mux)
	secured := security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(limited)
	traced := trace.NewMiddleware(s.logger, s.clientIP.ClientIP, observer).Middleware(secured)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           traced,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	mux.HandleFunc("POST /expenses", s.handleSubmit)
	mux.HandleFunc("POST /expenses/clear", s.handleClear)
	mux.HandleFunc("GET /expenses/{id}/edit", s.handleEdit)
	mux.HandleFunc("DELETE /expenses/{id}", s.handleDelete)

	partial := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, security.NoStore(h))
	}
	partial("GET /ui/form", s.handleFormPartial)
	partial("GET /ui/list", s.handleListPartial)
	partial("GET /ui/summary", s.handleSummaryPartial)
	partial("GET /ui/filter", s.handleFilterPartial)
	partial("GET /ui/chart", s.handleChartPartial)
	partial("GET /export/check", s.handleExportCheck)
	partial("GET /export.csv", s.handleExportCSV)
}

// ChartCache is exposed so the cache manager can sweep it and the change
// fan-out can purge it.
func (s *Server) ChartCache() *cache.LRUCache[[]byte] {
	return s.chartCache
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.clientIP.ClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	TooManyRequestsError("Too many requests, try again in a minute").Write(w)
}

// Shutdown stops the rate limiter and gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"px": func(f float64) string {
			return formatPx(f)
		},
	}
}
