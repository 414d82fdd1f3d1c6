// Package server exposes the calculators, AI analysis and deal profiles over
// a JSON HTTP API.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/iwvelando/property-finance/internal/analysis"
	"github.com/iwvelando/property-finance/internal/calculator"
	"github.com/iwvelando/property-finance/internal/deal"
	"github.com/iwvelando/property-finance/pkg/constants"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// Options holds the collaborators of the HTTP handler. Nil fields fall back
// to the built-in calculators, the fallback analyzer and an in-memory deal
// store; a nil Limiter disables rate limiting.
type Options struct {
	Logger      *zap.Logger
	Registry    *calculator.Registry
	Analyzer    analysis.Analyzer
	Deals       deal.Store
	Limiter     *RateLimiter
	MaxBodySize int64
	Version     string
}

type handler struct {
	logger      *zap.Logger
	registry    *calculator.Registry
	analyzer    analysis.Analyzer
	deals       deal.Store
	limiter     *RateLimiter
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler that serves the calculator API.
func NewHandler(opts Options) http.Handler {
	h := &handler{
		logger:      opts.Logger,
		registry:    opts.Registry,
		analyzer:    opts.Analyzer,
		deals:       opts.Deals,
		limiter:     opts.Limiter,
		maxBodySize: opts.MaxBodySize,
		version:     strings.TrimSpace(opts.Version),
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.registry == nil {
		h.registry = calculator.Default()
	}
	if h.analyzer == nil {
		h.analyzer = analysis.FallbackAnalyzer{}
	}
	if h.deals == nil {
		h.deals = deal.NewMemoryStore()
	}
	if h.maxBodySize <= 0 {
		h.maxBodySize = constants.DefaultMaxBodySizeBytes
	}
	if h.version == "" {
		h.version = "dev"
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/version", h.handleVersion)

	mux.HandleFunc("GET /api/calculators", h.handleListCalculators)
	mux.HandleFunc("GET /api/calculators/{name}", h.handleDescribeCalculator)
	mux.HandleFunc("POST /api/calculators/{name}", h.handleCalculate)
	mux.HandleFunc("POST /api/calculators/{name}/analyze", h.rateLimit(h.handleCalculateAndAnalyze))

	mux.HandleFunc("POST "+constants.DefaultAnalyzePath, h.rateLimit(h.handleAnalyze))

	mux.HandleFunc("GET /api/deals", h.handleListDeals)
	mux.HandleFunc("POST /api/deals", h.handleCreateDeal)
	mux.HandleFunc("GET /api/deals/{id}", h.handleGetDeal)
	mux.HandleFunc("DELETE /api/deals/{id}", h.handleDeleteDeal)
	mux.HandleFunc("POST /api/deals/{id}/calculations/{name}", h.handleSaveCalculation)

	return h.logRequests(mux)
}

type calculatorInfo struct {
	Name        string             `json:"name"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Inputs      []calculator.Input `json:"inputs"`
}

type calculationRequest struct {
	Inputs  map[string]interface{} `json:"inputs"`
	Analyze bool                   `json:"analyze,omitempty"`
}

type calculationResponse struct {
	Calculator string             `json:"calculator"`
	Title      string             `json:"title"`
	Metrics    map[string]float64 `json:"metrics"`
	Fields     []calculator.Field `json:"fields"`
	Analysis   *analysis.Analysis `json:"analysis,omitempty"`
	Duration   string             `json:"duration"`
}

type createDealRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleListCalculators(w http.ResponseWriter, r *http.Request) {
	all := h.registry.All()
	infos := make([]calculatorInfo, 0, len(all))
	for _, calc := range all {
		infos = append(infos, describe(calc))
	}
	h.writeJSON(w, http.StatusOK, infos)
}

func (h *handler) handleDescribeCalculator(w http.ResponseWriter, r *http.Request) {
	calc, ok := h.lookupCalculator(w, r, "server.handleDescribeCalculator")
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, describe(calc))
}

func (h *handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	h.calculate(w, r, false, "server.handleCalculate")
}

func (h *handler) handleCalculateAndAnalyze(w http.ResponseWriter, r *http.Request) {
	h.calculate(w, r, true, "server.handleCalculateAndAnalyze")
}

func (h *handler) calculate(w http.ResponseWriter, r *http.Request, analyze bool, op string) {
	start := time.Now()
	calc, ok := h.lookupCalculator(w, r, op)
	if !ok {
		return
	}

	var req calculationRequest
	if !h.decodeBody(w, r, &req, op) {
		return
	}
	inputs, err := stringInputs(req.Inputs)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	result := calc.Derive(inputs)
	resp := calculationResponse{
		Calculator: calc.Name(),
		Title:      calc.Title(),
		Metrics:    calculator.Values(result),
		Fields:     result.Fields(),
	}

	if analyze {
		resp.Analysis, err = h.analyzer.Analyze(r.Context(), calculator.AnalysisRequest(calc, result))
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadGateway, fmt.Sprintf("analysis failed: %v", err), op)
			return
		}
	}

	resp.Duration = time.Since(start).String()
	h.logger.Debug("derived metrics",
		zap.String("op", op),
		zap.String("calculator", calc.Name()),
		zap.Bool("analyzed", analyze),
	)
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAnalyze"

	var req analysis.Request
	if !h.decodeBody(w, r, &req, op) {
		return
	}
	if err := req.Validate(); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	result, err := h.analyzer.Analyze(r.Context(), req)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadGateway, fmt.Sprintf("analysis failed: %v", err), op)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleListDeals(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.deals.List(r.Context())
	if err != nil {
		h.respondDealError(w, err, "server.handleListDeals")
		return
	}
	h.writeJSON(w, http.StatusOK, profiles)
}

func (h *handler) handleCreateDeal(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCreateDeal"

	var req createDealRequest
	if !h.decodeBody(w, r, &req, op) {
		return
	}
	profile, err := h.deals.Create(r.Context(), deal.Profile{
		Name:    req.Name,
		Address: req.Address,
		Notes:   req.Notes,
	})
	if err != nil {
		h.respondDealError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusCreated, profile)
}

func (h *handler) handleGetDeal(w http.ResponseWriter, r *http.Request) {
	profile, err := h.deals.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondDealError(w, err, "server.handleGetDeal")
		return
	}
	h.writeJSON(w, http.StatusOK, profile)
}

func (h *handler) handleDeleteDeal(w http.ResponseWriter, r *http.Request) {
	if err := h.deals.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.respondDealError(w, err, "server.handleDeleteDeal")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleSaveCalculation(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSaveCalculation"

	calc, ok := h.lookupCalculator(w, r, op)
	if !ok {
		return
	}
	var req calculationRequest
	if !h.decodeBody(w, r, &req, op) {
		return
	}
	inputs, err := stringInputs(req.Inputs)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	id := r.PathValue("id")
	if _, err := h.deals.Get(r.Context(), id); err != nil {
		h.respondDealError(w, err, op)
		return
	}

	if req.Analyze && h.limiter != nil && !h.limiter.Allow(clientIP(r)) {
		h.respondErrorWithOp(w, http.StatusTooManyRequests, "rate limit exceeded", op)
		return
	}

	result := calc.Derive(inputs)
	saved := deal.Calculation{
		Calculator: calc.Name(),
		Inputs:     inputs,
		Metrics:    calculator.Values(result),
	}
	if req.Analyze {
		saved.Analysis, err = h.analyzer.Analyze(r.Context(), calculator.AnalysisRequest(calc, result))
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadGateway, fmt.Sprintf("analysis failed: %v", err), op)
			return
		}
	}

	profile, err := h.deals.SaveCalculation(r.Context(), id, saved)
	if err != nil {
		h.respondDealError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, profile)
}

func (h *handler) lookupCalculator(w http.ResponseWriter, r *http.Request, op string) (calculator.Calculator, bool) {
	calc, err := h.registry.Get(r.PathValue("name"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
		return nil, false
	}
	return calc, true
}

// decodeBody reads a JSON request body into dst, answering 413 or 400 itself
// when it cannot.
func (h *handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err), op)
		return false
	}
	return true
}

func (h *handler) respondDealError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, deal.ErrNotFound):
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
	case errors.Is(err, deal.ErrInvalidProfile):
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
	default:
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
	}
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

// writeJSON encodes payload before committing the status so an encoding
// failure is reported as a 500 rather than a truncated success.
func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		h.logger.Error("failed to encode JSON response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
		buf.Reset()
		status = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(map[string]string{"error": "failed to encode response"})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("failed to write JSON response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
	}
}

func describe(calc calculator.Calculator) calculatorInfo {
	return calculatorInfo{
		Name:        calc.Name(),
		Title:       calc.Title(),
		Description: calc.Description(),
		Inputs:      calc.Inputs(),
	}
}

// stringInputs accepts form values sent as JSON strings, numbers or booleans.
func stringInputs(raw map[string]interface{}) (map[string]string, error) {
	inputs := make(map[string]string, len(raw))
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if raw[key] == nil {
			inputs[key] = ""
			continue
		}
		value, err := cast.ToStringE(raw[key])
		if err != nil {
			return nil, fmt.Errorf("input %q must be a string, number or boolean", key)
		}
		inputs[key] = value
	}
	return inputs, nil
}
