// Package main is the entry point for the brand estimator service, which backs the
// ROI calculator, pricing estimator, brand assessment and lead-capture widgets.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/yourorg/brand-estimator/internal/assessment"
	"github.com/yourorg/brand-estimator/internal/circuitbreaker"
	"github.com/yourorg/brand-estimator/internal/config"
	"github.com/yourorg/brand-estimator/internal/estimate"
	"github.com/yourorg/brand-estimator/internal/leads"
	tracing "github.com/yourorg/brand-estimator/internal/otel"
	"github.com/yourorg/brand-estimator/internal/pricing"
	"github.com/yourorg/brand-estimator/internal/security"
	"golang.org/x/time/rate"
)

const version = "1.0.0"

// startTime records when the service was initialized for uptime reporting
var startTime = time.Now()

// Server represents the estimator HTTP server instance
type Server struct {
	config config.Config

	// HTTP server instance
	server *http.Server
	router *mux.Router

	engine        *estimate.Engine
	pricing       *pricing.Estimator
	questionnaire assessment.Questionnaire
	dispatcher    *leads.Dispatcher

	// nil when quote signing is disabled
	signer *security.QuoteSigner

	registry  *prometheus.Registry
	metrics   *serverMetrics
	rateLimit *rate.Limiter
}

// serverMetrics holds Prometheus metrics for the server
type serverMetrics struct {
	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	estimateReturn  prometheus.Gauge
	leadCounter     *prometheus.CounterVec
	leadDeliveries  *prometheus.CounterVec
	circuitBreaker  prometheus.GaugeFunc
}

// registerMetrics sets up Prometheus metrics collection on reg. The circuit
// gauge reads the breaker state at scrape time.
func registerMetrics(reg prometheus.Registerer, breaker *circuitbreaker.CircuitBreaker) *serverMetrics {
	m := &serverMetrics{
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "brand_requests_total",
				Help: "Total number of requests processed",
			},
			[]string{"route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "brand_request_duration_seconds",
				Help:    "Request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		estimateReturn: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "brand_estimate_three_year_return_percent",
				Help: "Three-year return of the most recent ROI estimate",
			},
		),
		leadCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "brand_leads_total",
				Help: "Lead submissions by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		leadDeliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "brand_lead_deliveries_total",
				Help: "Leads handed to the sink by result",
			},
			[]string{"result"},
		),
		circuitBreaker: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "brand_lead_sink_circuit_state",
				Help: "Lead sink circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			func() float64 { return float64(breaker.GetState()) },
		),
	}

	reg.MustRegister(
		m.requestCounter,
		m.requestDuration,
		m.estimateReturn,
		m.leadCounter,
		m.leadDeliveries,
		m.circuitBreaker,
	)
	return m
}

// main is the entry point for the application
func main() {
	cfg := config.Load()
	setupLogging(cfg)

	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	shutdownTracer := tracing.InitTracer(cfg)
	defer shutdownTracer()

	sink, err := newLeadSink(cfg)
	if err != nil {
		logrus.Fatalf("Failed to create lead sink: %v", err)
	}

	server, err := NewServer(cfg, sink)
	if err != nil {
		logrus.Fatalf("Failed to create server: %v", err)
	}
	server.Start()
}

// setupLogging configures the logging for the application
func setupLogging(cfg config.Config) {
	switch cfg.LogFormat {
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	default:
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	switch cfg.LogLevel {
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "warn", "warning":
		logrus.SetLevel(logrus.WarnLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}

	logrus.Info("Logging configured")
}

// NewServer wires the estimators, lead dispatcher and quote signer behind a router
func NewServer(cfg config.Config, sink leads.Sink) (*Server, error) {
	coeffs, err := config.LoadCoefficients(cfg.CoefficientsFile)
	if err != nil {
		return nil, err
	}
	engine, err := estimate.NewEngine(coeffs)
	if err != nil {
		return nil, err
	}
	pricingEstimator, err := pricing.NewEstimator(pricing.DefaultOptions())
	if err != nil {
		return nil, err
	}

	breaker := circuitbreaker.New(circuitbreaker.Thresholds{FailureThreshold: cfg.SinkFailureThreshold}).
		WithResetDelay(cfg.SinkResetDelay).
		WithTripCallback(func(reason string) {
			logrus.WithField("reason", reason).Warn("Lead sink circuit breaker tripped")
		})

	registry := prometheus.NewRegistry()
	metrics := registerMetrics(registry, breaker)

	dispatcher, err := leads.NewDispatcher(sink, breaker, leads.DispatcherOptions{
		BatchSize:       cfg.LeadBatchSize,
		FlushInterval:   cfg.LeadFlushInterval,
		MaxPending:      leads.DefaultDispatcherOptions().MaxPending,
		DeliveryTimeout: cfg.RequestTimeout,
	})
	if err != nil {
		return nil, err
	}
	dispatcher.WithDeliveryHook(func(count int, err error) {
		result := "delivered"
		if err != nil {
			result = "failed"
		}
		metrics.leadDeliveries.WithLabelValues(result).Add(float64(count))
	})

	s := &Server{
		config:        cfg,
		engine:        engine,
		pricing:       pricingEstimator,
		questionnaire: assessment.DefaultQuestionnaire(),
		dispatcher:    dispatcher,
		registry:      registry,
		metrics:       metrics,
		rateLimit:     rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
	}

	if cfg.QuoteSigningEnabled {
		signer, err := security.NewQuoteSigner(security.SigningOptions{Validity: cfg.QuoteValidity})
		if err != nil {
			_ = dispatcher.Close(context.Background())
			return nil, err
		}
		s.signer = signer
	}

	s.router = s.routes()

	logrus.WithFields(logrus.Fields{
		"port":           cfg.Port,
		"lead_sink":      sink.Name(),
		"quote_signing":  cfg.QuoteSigningEnabled,
		"rate_limit_rps": cfg.RateLimitRPS,
		"coefficients":   cfg.CoefficientsFile,
	}).Info("Server initialized")
	return s, nil
}

// routes registers every endpoint on a gorilla/mux router
func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.instrument)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/circuit", s.handleCircuitStatus).Methods(http.MethodGet, http.MethodPost)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/focus-areas", s.handleFocusAreas).Methods(http.MethodGet)
	api.HandleFunc("/services", s.handleServices).Methods(http.MethodGet)
	api.HandleFunc("/assessment/questions", s.handleQuestions).Methods(http.MethodGet)

	api.HandleFunc("/roi", s.limited(s.handleROI)).Methods(http.MethodPost)
	api.HandleFunc("/pricing", s.limited(s.handlePricing)).Methods(http.MethodPost)
	api.HandleFunc("/quotes/verify", s.limited(s.handleVerifyQuote)).Methods(http.MethodPost)
	api.HandleFunc("/assessment", s.limited(s.handleAssessment)).Methods(http.MethodPost)
	api.HandleFunc("/leads", s.limited(s.handleLead)).Methods(http.MethodPost)

	return r
}

// Handler returns the router wrapped in CORS handling for the browser widgets
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.config.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         600,
	})
	return c.Handler(s.router)
}

// Start begins the HTTP server and sets up graceful shutdown
func (s *Server) Start() {
	s.server = &http.Server{
		Addr:         ":" + s.config.Port,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("Server starting on port %s", s.config.Port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Error starting server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server shutdown failed: %v", err)
	}
	if err := s.dispatcher.Close(ctx); err != nil {
		logrus.WithError(err).Error("Leads were not delivered before shutdown")
	}

	logrus.Info("Server stopped")
}
