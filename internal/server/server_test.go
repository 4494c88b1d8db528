package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lotto-lab/internal/backtest"
	"lotto-lab/internal/config"
	"lotto-lab/internal/domain"
	"lotto-lab/internal/ingestion/fixtures"
	"lotto-lab/internal/orchestrator"
	"lotto-lab/internal/storage/memory"
	"lotto-lab/internal/verification"
)

func newTestServer(t *testing.T, schedule string) *Server {
	t.Helper()
	draws := memory.NewDrawStore()
	require.NoError(t, draws.InsertBulk(context.Background(), fixtures.Pointers(fixtures.UniformDraws(60, 3))))

	tuning := config.DefaultTuning()
	tuning.Backtest.CombosPerRound = 2
	tuning.Optimizer.Window = 5
	tuning.Optimizer.Trials = 2
	tuning.Optimizer.Refine = false

	orch := orchestrator.New(orchestrator.Options{
		Draws:   draws,
		Cache:   memory.NewBacktestCacheStore(),
		Weights: memory.NewOptimalWeightsStore(),
		Tuning:  tuning,
	})
	s, err := New(Config{Port: 0, Orchestrator: orch, Log: zerolog.Nop(), Schedule: schedule})
	require.NoError(t, err)
	return s
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t, "")

	rec := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestServer_Status(t *testing.T) {
	s := newTestServer(t, "")

	rec := do(t, s, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 60, resp.Draws)
	assert.Equal(t, 60, resp.LatestRound)
	assert.False(t, resp.Optimizing)
}

func TestServer_Metrics(t *testing.T) {
	s := newTestServer(t, "")
	do(t, s, http.MethodGet, "/health", "")

	rec := do(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "lotto_lab_http_request_duration_seconds")
}

func TestServer_TopNumbers(t *testing.T) {
	s := newTestServer(t, "")

	rec := do(t, s, http.MethodGet, "/api/numbers/top?n=6&frequency=30&trend=30&absence=20&hotness=20", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Weights domain.WeightConfiguration `json:"weights"`
		Numbers []domain.ScoreRecord       `json:"numbers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Numbers, 6)
	assert.Equal(t, 30.0, resp.Weights.Frequency)
}

func TestServer_TopNumbers_BadInput(t *testing.T) {
	s := newTestServer(t, "")

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/numbers/top?n=abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/numbers/top?n=99", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/numbers/top?trend=x", "").Code)
}

func TestServer_Probabilities(t *testing.T) {
	s := newTestServer(t, "")

	rec := do(t, s, http.MethodGet, "/api/numbers/probabilities", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Probabilities []orchestrator.NumberProbability `json:"probabilities"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Probabilities, domain.NumberSpan)
}

func TestServer_Generate(t *testing.T) {
	s := newTestServer(t, "")

	rec := do(t, s, http.MethodPost, "/api/generate", `{"strategy":"score","count":2,"seed":9}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Strategy     string `json:"strategy"`
		Seed         uint64 `json:"seed"`
		Combinations []struct {
			Combination domain.Combination `json:"combination"`
		} `json:"combinations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.StrategyScore, resp.Strategy)
	assert.Equal(t, uint64(9), resp.Seed)
	assert.Len(t, resp.Combinations, 2)
}

func TestServer_Generate_Errors(t *testing.T) {
	s := newTestServer(t, "")

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/generate", `{"strategy":"tarot"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/generate", `{"bogus":1}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/generate", `{`).Code)
}

func TestServer_Backtest(t *testing.T) {
	s := newTestServer(t, "")

	rec := do(t, s, http.MethodPost, "/api/backtest/", `{"from":56,"to":60,"threshold":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report backtest.RateReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 56, report.From)
	assert.Equal(t, 60, report.To)
	assert.Len(t, report.Results, 5)
	assert.Equal(t, 2, report.Metrics.Threshold)
}

func TestServer_Backtest_InvalidThreshold(t *testing.T) {
	s := newTestServer(t, "")

	rec := do(t, s, http.MethodPost, "/api/backtest/", `{"threshold":9}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_VerifyCache(t *testing.T) {
	s := newTestServer(t, "")

	rec := do(t, s, http.MethodPost, "/api/backtest/verify", `{"threshold":2}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/backtest/", `{"from":56,"to":60,"threshold":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodPost, "/api/backtest/verify", `{"threshold":2,"repair":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report verification.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 5, report.TotalRounds)
	assert.Equal(t, 5, report.MatchedRounds)
	assert.False(t, report.Repaired)
}

func TestServer_FixedWager(t *testing.T) {
	s := newTestServer(t, "")

	rec := do(t, s, http.MethodPost, "/api/backtest/fixed", `{"from":58,"to":60,"strategy":"score"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report backtest.WagerReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Len(t, report.Results, 3)
}

func TestServer_OptimizeAndLatestWeights(t *testing.T) {
	s := newTestServer(t, "")

	rec := do(t, s, http.MethodGet, "/api/weights/latest", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/optimize", `{"seed":3}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var run domain.OptimizationRun
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Len(t, run.Trials, 2)

	rec = do(t, s, http.MethodGet, "/api/weights/latest?strategy=score&threshold=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var latest domain.OptimizationRun
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &latest))
	assert.Equal(t, run.RunID, latest.RunID)
}

func TestServer_LatestWeights_RejectsUnknownStrategy(t *testing.T) {
	s := newTestServer(t, "")

	for _, q := range []string{"strategy=../../etc/passwd", "strategy=..%2Fsecret", "strategy=nope"} {
		rec := do(t, s, http.MethodGet, "/api/weights/latest?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestServer_Optimize_Busy(t *testing.T) {
	s := newTestServer(t, "")

	release, err := s.acquire()
	require.NoError(t, err)
	defer release()

	rec := do(t, s, http.MethodPost, "/api/optimize", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServer_Refresh(t *testing.T) {
	s := newTestServer(t, "")

	rec := do(t, s, http.MethodPost, "/api/draws/refresh", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"draws":60,"latest_round":60}`, rec.Body.String())
}

func TestServer_OptimizeStream(t *testing.T) {
	s := newTestServer(t, "")
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/optimize"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]any{"trials": 2, "seed": 4}))

	var progress int
	for {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Minute)))
		var msg streamMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == msgProgress {
			progress++
			continue
		}
		require.Equal(t, msgResult, msg.Type, msg.Error)
		require.NotNil(t, msg.Run)
		assert.Len(t, msg.Run.Trials, 2)
		break
	}
	assert.Equal(t, 2, progress)
}

func TestServer_Schedule(t *testing.T) {
	s := newTestServer(t, "0 22 * * 6")
	require.NotNil(t, s.scheduler)
	assert.Equal(t, 1, s.scheduler.Entries())

	_, err := New(Config{Orchestrator: s.orch, Log: zerolog.Nop(), Schedule: "not a schedule"})
	assert.Error(t, err)
}

func TestRetuneJob_Run(t *testing.T) {
	s := newTestServer(t, "")
	job := &retuneJob{server: s}

	require.NoError(t, job.Run())

	run, err := s.orch.LatestWeights(context.Background(), domain.StrategyScore, 3)
	require.NoError(t, err)
	assert.Equal(t, 56, run.FromRound)
	assert.Equal(t, 60, run.ToRound)
}
