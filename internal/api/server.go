// Package api exposes a trained classifier over HTTP: a health probe and a
// prediction endpoint.
package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/loam/internal/classify"
	"github.com/samcharles93/loam/internal/model"
)

// Predictor is the classifier surface the server needs.
type Predictor interface {
	Predict(text string, k int, threshold float32) ([]classify.Result, error)
}

type Server struct {
	predictor Predictor
	modelName string
	clock     func() time.Time
}

// NewServer wraps a predictor for HTTP serving.  modelName is echoed back in
// responses so clients can tell deployments apart.
func NewServer(p Predictor, modelName string) *Server {
	return &Server{
		predictor: p,
		modelName: modelName,
		clock:     time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/v1/health", s.handleHealth)
	e.POST("/v1/predict", s.handlePredict)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return writeJSON(c, http.StatusOK, HealthResponse{Status: "ok", Model: s.modelName})
}

func (s *Server) handlePredict(c *echo.Context) error {
	if s.predictor == nil {
		return writeError(c, http.StatusInternalServerError, "server_error", "no model loaded", "")
	}
	req, err := decodeJSON[PredictRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if req.Text == "" {
		return writeBadRequest(c, "text is required")
	}
	k := req.K
	if k == 0 {
		k = 1
	}

	results, err := s.predictor.Predict(req.Text, k, req.Threshold)
	switch {
	case err == nil:
	case errors.Is(err, model.ErrEmptyInput):
		return writeBadRequest(c, "text contains no known tokens")
	case errors.Is(err, model.ErrInvalidK):
		return writeBadRequest(c, "k must be at least 1")
	default:
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "")
	}

	labels := make([]LabelScore, len(results))
	for i, r := range results {
		labels[i] = LabelScore{Label: r.Label, Probability: r.Probability}
	}
	return writeJSON(c, http.StatusOK, PredictResponse{
		ID:      "pred_" + uuid.NewString(),
		Object:  "prediction",
		Created: s.clock().Unix(),
		Model:   s.modelName,
		Labels:  labels,
	})
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg, "")
}

func writeError(c *echo.Context, status int, errType, msg, code string) error {
	return writeJSON(c, status, map[string]any{
		"error": ResponseError{
			Message: msg,
			Type:    errType,
			Code:    code,
		},
	})
}

func writeJSON(c *echo.Context, status int, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.JSONBlob(status, b)
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	if err := dec.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}
