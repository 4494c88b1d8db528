package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"lotto-lab/internal/backtest"
	"lotto-lab/internal/domain"
	"lotto-lab/internal/optimizer"
	"lotto-lab/internal/orchestrator"
	"lotto-lab/internal/replay"
	"lotto-lab/internal/storage"
	"lotto-lab/internal/verification"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn().Err(err).Msg("encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("request failed")
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrUnknownStrategy),
		errors.Is(err, backtest.ErrInvalidThreshold),
		errors.Is(err, replay.ErrInvalidRange),
		errors.Is(err, replay.ErrRoundNotFound),
		errors.Is(err, storage.ErrInvalidInput),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case orchestrator.IsNotFound(err),
		errors.Is(err, verification.ErrNotCached):
		return http.StatusNotFound
	case errors.Is(err, ErrBusy):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientData),
		errors.Is(err, domain.ErrExhaustedSearch):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("bad request")

// decodeBody decodes an optional JSON body. An empty body leaves v as is.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Join(errBadRequest, err)
	}
	return nil
}

// weightParam binds a query parameter to one weight.
type weightParam struct {
	name string
	dst  *float64
}

// weightsFromQuery reads ?frequency=&trend=&absence=&hotness= over the
// defaults. It returns nil when none is present.
func weightsFromQuery(r *http.Request) (*domain.WeightConfiguration, error) {
	q := r.URL.Query()
	w := domain.DefaultWeights()
	params := []weightParam{
		{"frequency", &w.Frequency},
		{"trend", &w.Trend},
		{"absence", &w.Absence},
		{"hotness", &w.Hotness},
	}

	found := false
	for _, p := range params {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.Join(errBadRequest, err)
		}
		*p.dst = v
		found = true
	}
	if !found {
		return nil, nil
	}
	return &w, nil
}

// resolveWeights returns the query weights or the current tuned ones.
func (s *Server) resolveWeights(r *http.Request) (domain.WeightConfiguration, error) {
	w, err := weightsFromQuery(r)
	if err != nil {
		return domain.WeightConfiguration{}, err
	}
	if w != nil {
		return *w, nil
	}
	t := s.orch.Tuning()
	return s.orch.CurrentWeights(r.Context(), t.Optimizer.Strategy, t.Optimizer.Threshold), nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// StatusResponse is the JSON response for /status.
type StatusResponse struct {
	Status      string `json:"status"`
	Uptime      string `json:"uptime"`
	Draws       int    `json:"draws"`
	LatestRound int    `json:"latest_round"`
	Optimizing  bool   `json:"optimizing"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{Status: "running", Uptime: time.Since(s.started).Round(time.Second).String()}
	if series, err := s.orch.Series(r.Context()); err == nil {
		resp.Draws = series.Len()
		resp.LatestRound = series.LastRound()
	}
	if s.optimizing.TryLock() {
		s.optimizing.Unlock()
	} else {
		resp.Optimizing = true
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTopNumbers(w http.ResponseWriter, r *http.Request) {
	n := 10
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, errors.Join(errBadRequest, err))
			return
		}
		n = v
	}
	weights, err := s.resolveWeights(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	top, err := s.orch.TopNumbers(r.Context(), n, weights)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"weights": weights, "numbers": top})
}

func (s *Server) handleProbabilities(w http.ResponseWriter, r *http.Request) {
	weights, err := s.resolveWeights(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	probs, err := s.orch.ProbabilityWeights(r.Context(), weights)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"weights": weights, "probabilities": probs})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req orchestrator.GenerateRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	resp, err := s.orch.Generate(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// backtestBody is the JSON form of a rate backtest request.
type backtestBody struct {
	From           int                         `json:"from"`
	To             int                         `json:"to"`
	Strategy       string                      `json:"strategy"`
	Weights        *domain.WeightConfiguration `json:"weights"`
	Threshold      int                         `json:"threshold"`
	CombosPerRound int                         `json:"combos_per_round"`
	Seed           uint64                      `json:"seed"`
	Deterministic  bool                        `json:"deterministic"`
	NoCache        bool                        `json:"no_cache"`
}

func (b backtestBody) rateRequest() backtest.RateRequest {
	req := backtest.RateRequest{
		From:           b.From,
		To:             b.To,
		Strategy:       b.Strategy,
		Threshold:      b.Threshold,
		CombosPerRound: b.CombosPerRound,
		Seed:           b.Seed,
		Deterministic:  b.Deterministic,
		NoCache:        b.NoCache,
	}
	if b.Weights != nil {
		req.Weights = *b.Weights
	}
	return req
}

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	var body backtestBody
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	report, err := s.orch.RunBacktest(r.Context(), body.rateRequest())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// verifyBody selects the cache entry to replay.
type verifyBody struct {
	backtestBody
	Repair bool `json:"repair"`
}

func (s *Server) handleVerifyCache(w http.ResponseWriter, r *http.Request) {
	var body verifyBody
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	report, err := s.orch.VerifyCache(r.Context(), body.rateRequest(), body.Repair)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// fixedBody is the JSON form of a fixed-wager backtest request.
type fixedBody struct {
	From             int                         `json:"from"`
	To               int                         `json:"to"`
	Strategy         string                      `json:"strategy"`
	Weights          *domain.WeightConfiguration `json:"weights"`
	Deterministic    bool                        `json:"deterministic"`
	PublishedPayouts bool                        `json:"published_payouts"`
}

func (s *Server) handleFixedWager(w http.ResponseWriter, r *http.Request) {
	var body fixedBody
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	req := backtest.FixedRequest{
		From:             body.From,
		To:               body.To,
		Strategy:         body.Strategy,
		Deterministic:    body.Deterministic,
		PublishedPayouts: body.PublishedPayouts,
	}
	if body.Weights != nil {
		req.Weights = *body.Weights
	}
	report, err := s.orch.RunFixedWager(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// optimizeBody is the JSON form of an optimizer request.
type optimizeBody struct {
	Strategy       string  `json:"strategy"`
	Threshold      int     `json:"threshold"`
	From           int     `json:"from"`
	To             int     `json:"to"`
	Trials         int     `json:"trials"`
	Refine         *bool   `json:"refine"`
	Step           float64 `json:"step"`
	FineTuneTrials int     `json:"fine_tune_trials"`
	FineTuneStep   float64 `json:"fine_tune_step"`
	Seed           uint64  `json:"seed"`
}

func (s *Server) optimizerRequest(body optimizeBody) optimizer.Request {
	refine := s.orch.Tuning().Optimizer.Refine
	if body.Refine != nil {
		refine = *body.Refine
	}
	seed := body.Seed
	if seed == 0 {
		seed = s.orch.Tuning().Optimizer.Seed
	}
	return optimizer.Request{
		Strategy:       body.Strategy,
		Threshold:      body.Threshold,
		From:           body.From,
		To:             body.To,
		Trials:         body.Trials,
		Refine:         refine,
		Step:           body.Step,
		FineTuneTrials: body.FineTuneTrials,
		FineTuneStep:   body.FineTuneStep,
		Seed:           seed,
	}
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var body optimizeBody
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	release, err := s.acquire()
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer release()

	run, err := s.orch.Optimize(r.Context(), s.optimizerRequest(body))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleLatestWeights(w http.ResponseWriter, r *http.Request) {
	t := s.orch.Tuning()
	strategy := t.Optimizer.Strategy
	if v := r.URL.Query().Get("strategy"); v != "" {
		strategy = v
	}
	threshold := t.Optimizer.Threshold
	if v := r.URL.Query().Get("threshold"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, errors.Join(errBadRequest, err))
			return
		}
		threshold = n
	}

	run, err := s.orch.LatestWeights(r.Context(), strategy, threshold)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	series, err := s.orch.Refresh(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"draws": series.Len(), "latest_round": series.LastRound()})
}
