package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/loam/internal/classify"
	"github.com/samcharles93/loam/internal/model"
)

type stubPredictor struct {
	results []classify.Result
	err     error
	lastK   int
}

func (p *stubPredictor) Predict(text string, k int, threshold float32) ([]classify.Result, error) {
	p.lastK = k
	if p.err != nil {
		return nil, p.err
	}
	if len(p.results) > k {
		return p.results[:k], nil
	}
	return p.results, nil
}

func newTestEcho(p Predictor) *echo.Echo {
	e := echo.New()
	NewServer(p, "test-model").Register(e)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	t.Parallel()
	e := newTestEcho(&stubPredictor{})
	rec := doJSON(t, e, http.MethodGet, "/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.Model != "test-model" {
		t.Fatalf("health body: %+v", resp)
	}
}

func TestPredictHappyPath(t *testing.T) {
	t.Parallel()
	p := &stubPredictor{results: []classify.Result{
		{Label: "pos", Probability: 0.9},
		{Label: "neg", Probability: 0.1},
	}}
	e := newTestEcho(p)
	rec := doJSON(t, e, http.MethodPost, "/v1/predict", `{"text":"good stuff","k":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp PredictResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Object != "prediction" || resp.Model != "test-model" {
		t.Fatalf("response envelope: %+v", resp)
	}
	if !strings.HasPrefix(resp.ID, "pred_") {
		t.Fatalf("id %q missing prefix", resp.ID)
	}
	if len(resp.Labels) != 2 || resp.Labels[0].Label != "pos" {
		t.Fatalf("labels: %+v", resp.Labels)
	}
}

func TestPredictDefaultsKToOne(t *testing.T) {
	t.Parallel()
	p := &stubPredictor{results: []classify.Result{{Label: "pos", Probability: 0.9}}}
	e := newTestEcho(p)
	rec := doJSON(t, e, http.MethodPost, "/v1/predict", `{"text":"good"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	if p.lastK != 1 {
		t.Fatalf("k: got %d want 1", p.lastK)
	}
}

func TestPredictBadJSON(t *testing.T) {
	t.Parallel()
	e := newTestEcho(&stubPredictor{})
	rec := doJSON(t, e, http.MethodPost, "/v1/predict", `{"text": nope}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d", rec.Code)
	}
}

func TestPredictMissingText(t *testing.T) {
	t.Parallel()
	e := newTestEcho(&stubPredictor{})
	rec := doJSON(t, e, http.MethodPost, "/v1/predict", `{"k":3}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d", rec.Code)
	}
}

func TestPredictUnknownTokens(t *testing.T) {
	t.Parallel()
	e := newTestEcho(&stubPredictor{err: model.ErrEmptyInput})
	rec := doJSON(t, e, http.MethodPost, "/v1/predict", `{"text":"zzz"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "no known tokens") {
		t.Fatalf("body: %s", rec.Body.String())
	}
}

func TestPredictNilPredictor(t *testing.T) {
	t.Parallel()
	e := newTestEcho(nil)
	rec := doJSON(t, e, http.MethodPost, "/v1/predict", `{"text":"good"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d", rec.Code)
	}
}
