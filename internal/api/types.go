package api

// PredictRequest is the body of POST /v1/predict.
type PredictRequest struct {
	Text string `json:"text"`
	// K caps the number of returned labels; zero means 1.
	K int `json:"k,omitempty"`
	// Threshold drops labels below this probability.
	Threshold float32 `json:"threshold,omitempty"`
}

// LabelScore is one predicted label.
type LabelScore struct {
	Label       string  `json:"label"`
	Probability float32 `json:"probability"`
}

// PredictResponse is the body returned by POST /v1/predict.
type PredictResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Labels  []LabelScore `json:"labels"`
}

// HealthResponse is the body returned by GET /v1/health.
type HealthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model"`
}

// ResponseError is the error payload wrapped in every non-2xx body.
type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}
