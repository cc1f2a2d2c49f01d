package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gesturelab/motionpipe/internal/gesture"
	"github.com/gesturelab/motionpipe/internal/httputil"
)

// ErrPredictFailed reports a transport failure or non-2xx answer from the
// classifier service.
var ErrPredictFailed = errors.New("predict: request failed")

// HTTPPredictorConfig configures the HTTP classifier client.
type HTTPPredictorConfig struct {
	BaseURL string        // classifier service base URL, e.g. http://localhost:9000
	Timeout time.Duration // per-request timeout (default: 5s)
	Client  httputil.Doer // override for tests; nil uses an http.Client with Timeout
}

// HTTPPredictor posts JSON payloads to a classifier service:
//
//	POST {base}/predict/features  body = FeatureFrame JSON
//	POST {base}/predict/capture   body = {"id","capture_len","sequence"}
//
// and decodes a Result from the response body.
type HTTPPredictor struct {
	baseURL string
	client  httputil.Doer
}

// capturePayload is the wire form of an anomaly capture: the flat
// gyro-then-acc sequence of length 2*capture_len.
type capturePayload struct {
	ID         string    `json:"id"`
	CaptureLen int       `json:"capture_len"`
	Sequence   []float64 `json:"sequence"`
}

// NewHTTPPredictor creates a predictor for the given config.
func NewHTTPPredictor(cfg HTTPPredictorConfig) (*HTTPPredictor, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("predict: base URL required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTPPredictor{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
	}, nil
}

// PredictFeatures posts one feature frame.
func (p *HTTPPredictor) PredictFeatures(ctx context.Context, f *gesture.FeatureFrame) (*Result, error) {
	return p.post(ctx, p.baseURL+"/predict/features", f)
}

// PredictCapture posts one capture as its flat sequence payload.
func (p *HTTPPredictor) PredictCapture(ctx context.Context, c *gesture.Capture) (*Result, error) {
	return p.post(ctx, p.baseURL+"/predict/capture", capturePayload{
		ID:         c.ID,
		CaptureLen: c.Len(),
		Sequence:   c.Flatten(),
	})
}

// Model identifies the remote service.
func (p *HTTPPredictor) Model() string {
	return "http:" + p.baseURL
}

func (p *HTTPPredictor) post(ctx context.Context, url string, payload interface{}) (*Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("predict: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("predict: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPredictFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status %d from %s", ErrPredictFailed, resp.StatusCode, url)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("predict: decode result: %w", err)
	}
	return &result, nil
}
