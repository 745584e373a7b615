package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/yourorg/brand-estimator/internal/assessment"
	"github.com/yourorg/brand-estimator/internal/catalog"
	"github.com/yourorg/brand-estimator/internal/circuitbreaker"
	"github.com/yourorg/brand-estimator/internal/estimate"
	"github.com/yourorg/brand-estimator/internal/leads"
	"github.com/yourorg/brand-estimator/internal/model"
	tracing "github.com/yourorg/brand-estimator/internal/otel"
	"github.com/yourorg/brand-estimator/internal/security"
	"github.com/yourorg/brand-estimator/internal/types"
	"github.com/yourorg/brand-estimator/internal/validation"
	"go.opentelemetry.io/otel/attribute"
)

const maxBodyBytes = 1 << 20

// maxSweepPoints bounds the investment slider preview
const maxSweepPoints = 50

// apiResponse is the envelope for every JSON response
type apiResponse struct {
	StatusCode int               `json:"statusCode"`
	Status     string            `json:"status"`
	Data       interface{}       `json:"data,omitempty"`
	Error      string            `json:"error,omitempty"`
	Fields     validation.Errors `json:"fields,omitempty"`
}

// ROIRequest is the ROI calculator form
type ROIRequest struct {
	Metrics model.BusinessMetrics  `json:"metrics"`
	Config  model.InvestmentConfig `json:"config"`

	// Sweep optionally re-runs the estimate at other investment amounts
	Sweep []int64 `json:"sweep,omitempty"`
}

// ROIResponse carries the estimate and, when signing is enabled, a signed copy of it
type ROIResponse struct {
	Estimate    model.Estimate        `json:"estimate"`
	Sweep       []estimate.SweepPoint `json:"sweep,omitempty"`
	SignedQuote *security.SignedQuote `json:"signed_quote,omitempty"`
}

// PricingResponse carries the quote and, when signing is enabled, a signed copy of it
type PricingResponse struct {
	Quote       model.PricingQuote    `json:"quote"`
	SignedQuote *security.SignedQuote `json:"signed_quote,omitempty"`
}

// AssessmentRequest is a completed quiz. Name and Email are optional; when an
// email is given the result is also captured as an assessment lead.
type AssessmentRequest struct {
	Answers map[string]int `json:"answers"`
	Name    string         `json:"name,omitempty"`
	Email   string         `json:"email,omitempty"`
	Company string         `json:"company,omitempty"`
}

// AssessmentResponse is the scored quiz
type AssessmentResponse struct {
	Result model.AssessmentResult `json:"result"`
	LeadID string                 `json:"lead_id,omitempty"`
}

// LeadResponse acknowledges a queued lead
type LeadResponse struct {
	ID          string    `json:"id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// VerifyResponse reports the outcome of a quote verification
type VerifyResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
	ID     string `json:"id"`
	Kind   string `json:"kind"`
}

// handleHealth is a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"version":   version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleStatus provides detailed service status information
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":  "operational",
		"uptime":  time.Since(startTime).String(),
		"version": version,
		"leads":   s.dispatcher.Status(),
		"configuration": map[string]interface{}{
			"coefficients_file": s.config.CoefficientsFile,
			"quote_signing":     s.signer != nil,
			"rate_limit_rps":    s.config.RateLimitRPS,
			"rate_limit_burst":  s.config.RateLimitBurst,
		},
	}
	if s.signer != nil {
		status["public_key"] = s.signer.PublicKey()
	}
	s.writeJSON(w, http.StatusOK, status)
}

// handleCircuitStatus allows viewing and resetting the lead sink circuit breaker, or forcing a flush
func (s *Server) handleCircuitStatus(w http.ResponseWriter, r *http.Request) {
	breaker := s.dispatcher.Breaker()
	response := map[string]interface{}{}

	if r.Method == http.MethodPost {
		switch action := r.URL.Query().Get("action"); action {
		case "reset":
			breaker.Reset()
			response["message"] = "Circuit breaker reset"
		case "flush":
			if err := s.dispatcher.Flush(r.Context()); err != nil {
				s.errorResponse(w, r, statusFor(err), err)
				return
			}
			response["message"] = "Pending leads delivered"
		default:
			s.errorResponse(w, r, http.StatusBadRequest, fmt.Errorf("unknown action %q", action))
			return
		}
	}

	response["breaker"] = breaker.Status()
	s.writeJSON(w, http.StatusOK, response)
}

// handleFocusAreas lists the focus-area catalog for the ROI calculator
func (s *Server) handleFocusAreas(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, catalog.FocusAreas())
}

// handleServices lists the service catalog and multipliers for the pricing estimator
func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"services":               catalog.Services(),
		"stage_multipliers":      catalog.StageMultipliers,
		"complexity_multipliers": catalog.ComplexityMultipliers,
		"timeline_multipliers":   catalog.TimelineMultipliers,
		"package_tiers":          catalog.PackageTiers,
	})
}

// handleQuestions returns the brand assessment questionnaire
func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.questionnaire)
}

// handleROI runs the estimation engine
func (s *Server) handleROI(w http.ResponseWriter, r *http.Request) {
	var req ROIRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.errorResponse(w, r, http.StatusBadRequest, err)
		return
	}

	ctx, span := tracing.StartSpan(r.Context(), "estimate.roi",
		attribute.Int64("investment_amount", req.Config.InvestmentAmount),
		attribute.Int("focus_areas", len(req.Config.FocusAreas)),
		attribute.String("funding_stage", string(req.Config.FundingStage)),
	)
	defer span.End()

	if len(req.Sweep) > maxSweepPoints {
		s.errorResponse(w, r, http.StatusBadRequest, fmt.Errorf("at most %d sweep points allowed", maxSweepPoints))
		return
	}

	est, err := s.engine.Estimate(req.Metrics, req.Config)
	if err != nil {
		tracing.RecordError(ctx, err)
		s.errorResponse(w, r, statusFor(err), err)
		return
	}

	resp := ROIResponse{Estimate: est}
	if len(req.Sweep) > 0 {
		resp.Sweep, err = s.engine.Sweep(req.Metrics, req.Config, req.Sweep)
		if err != nil {
			tracing.RecordError(ctx, err)
			s.errorResponse(w, r, statusFor(err), err)
			return
		}
	}

	resp.SignedQuote, err = s.sign("roi", est)
	if err != nil {
		tracing.RecordError(ctx, err)
		s.errorResponse(w, r, http.StatusInternalServerError, err)
		return
	}

	s.metrics.estimateReturn.Set(est.Aggregate.ThreeYearReturnPercent)
	span.SetAttributes(attribute.Float64("three_year_return_percent", est.Aggregate.ThreeYearReturnPercent))
	s.writeJSON(w, http.StatusOK, resp)
}

// handlePricing runs the pricing estimator
func (s *Server) handlePricing(w http.ResponseWriter, r *http.Request) {
	var in model.PricingInput
	if err := decodeBody(w, r, &in); err != nil {
		s.errorResponse(w, r, http.StatusBadRequest, err)
		return
	}

	ctx, span := tracing.StartSpan(r.Context(), "estimate.pricing",
		attribute.Int("services", len(in.Services)),
		attribute.String("funding_stage", string(in.FundingStage)),
	)
	defer span.End()

	quote, err := s.pricing.Quote(in)
	if err != nil {
		tracing.RecordError(ctx, err)
		s.errorResponse(w, r, statusFor(err), err)
		return
	}

	resp := PricingResponse{Quote: quote}
	resp.SignedQuote, err = s.sign("pricing", quote)
	if err != nil {
		tracing.RecordError(ctx, err)
		s.errorResponse(w, r, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleVerifyQuote checks a signed quote previously issued by this server
func (s *Server) handleVerifyQuote(w http.ResponseWriter, r *http.Request) {
	if s.signer == nil {
		s.errorResponse(w, r, http.StatusServiceUnavailable, errors.New("quote signing disabled"))
		return
	}

	var q security.SignedQuote
	if err := decodeBody(w, r, &q); err != nil {
		s.errorResponse(w, r, http.StatusBadRequest, err)
		return
	}

	resp := VerifyResponse{Valid: true, ID: q.ID, Kind: q.Kind}
	if err := s.signer.Verify(q); err != nil {
		resp.Valid = false
		resp.Reason = err.Error()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleAssessment scores a completed brand assessment
func (s *Server) handleAssessment(w http.ResponseWriter, r *http.Request) {
	var req AssessmentRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.errorResponse(w, r, http.StatusBadRequest, err)
		return
	}

	ctx, span := tracing.StartSpan(r.Context(), "assessment.score", attribute.Int("answers", len(req.Answers)))
	defer span.End()

	result, err := assessment.Score(s.questionnaire, req.Answers)
	if err != nil {
		tracing.RecordError(ctx, err)
		s.errorResponse(w, r, statusFor(err), err)
		return
	}

	resp := AssessmentResponse{Result: result}
	if req.Email != "" {
		lead, err := s.submitLead(model.Lead{
			Kind:    types.LeadAssessment,
			Name:    req.Name,
			Email:   req.Email,
			Company: req.Company,
			Source:  "assessment",
			Fields: map[string]string{
				"tier":    result.Tier,
				"percent": strconv.FormatFloat(result.Percent, 'f', 1, 64),
			},
		})
		if err != nil {
			tracing.RecordError(ctx, err)
			s.errorResponse(w, r, statusFor(err), err)
			return
		}
		resp.LeadID = lead.ID
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleLead queues a lead-capture form submission
func (s *Server) handleLead(w http.ResponseWriter, r *http.Request) {
	var in model.Lead
	if err := decodeBody(w, r, &in); err != nil {
		s.errorResponse(w, r, http.StatusBadRequest, err)
		return
	}

	lead, err := s.submitLead(in)
	if err != nil {
		s.errorResponse(w, r, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, LeadResponse{ID: lead.ID, SubmittedAt: lead.SubmittedAt})
}

func (s *Server) submitLead(in model.Lead) (model.Lead, error) {
	lead, err := s.dispatcher.Submit(in)
	outcome := "accepted"
	if err != nil {
		outcome = "rejected"
	}
	s.metrics.leadCounter.WithLabelValues(string(in.Kind), outcome).Inc()
	return lead, err
}

// sign returns nil when signing is disabled
func (s *Server) sign(kind string, payload interface{}) (*security.SignedQuote, error) {
	if s.signer == nil {
		return nil, nil
	}
	q, err := s.signer.Sign(kind, payload)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// limited applies the shared rate limiter
func (s *Server) limited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.rateLimit.Allow() {
			s.errorResponse(w, r, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
			return
		}
		next(w, r)
	}
}

// statusRecorder captures the response code for metrics
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// instrument records request count and latency per route template
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		s.metrics.requestCounter.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		s.metrics.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, validation.ErrOutOfRange), errors.Is(err, estimate.ErrInvalidInvestment):
		return http.StatusBadRequest
	case errors.Is(err, leads.ErrDispatcherClosed), errors.Is(err, circuitbreaker.ErrOpen):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(apiResponse{
		StatusCode: statusCode,
		Status:     "success",
		Data:       data,
	}); err != nil {
		logrus.WithError(err).Warn("Failed to write response")
	}
}

// errorResponse returns a formatted error response; field failures are listed individually
func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, statusCode int, err error) {
	logrus.WithFields(logrus.Fields{
		"path":   r.URL.Path,
		"status": statusCode,
	}).WithError(err).Warn("Request failed")

	response := apiResponse{
		StatusCode: statusCode,
		Status:     "error",
		Error:      err.Error(),
	}
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		response.Fields = fieldErrs
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}
