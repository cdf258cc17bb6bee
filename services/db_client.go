package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"iris-prediction/models"
)

// ErrUpstream marks a reply from the storage service with an unexpected status.
var ErrUpstream = errors.New("storage service returned unexpected status")

// RelayOutcome classifies one attempt to hand a prediction to the storage service.
type RelayOutcome int

const (
	RelayDelivered RelayOutcome = iota
	// RelayUpstreamError: the service answered with a non-2xx status.
	RelayUpstreamError
	// RelayTransportError: no usable answer (connect, timeout, decode).
	RelayTransportError
)

func (o RelayOutcome) String() string {
	switch o {
	case RelayDelivered:
		return "delivered"
	case RelayUpstreamError:
		return "upstream_error"
	case RelayTransportError:
		return "transport_error"
	default:
		return fmt.Sprintf("RelayOutcome(%d)", int(o))
	}
}

// RelayResult is returned by SavePrediction instead of an error so callers
// have to decide explicitly what to do with every outcome.
type RelayResult struct {
	Outcome    RelayOutcome
	StatusCode int
	Record     *models.Prediction
	Err        error
}

// DBClient talks to the storage service. It is safe for concurrent use.
type DBClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewDBClient returns a client for the storage service at baseURL
// (e.g. "http://localhost:8001"). A zero timeout means no client-side limit.
func NewDBClient(baseURL string, timeout time.Duration) *DBClient {
	return &DBClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *DBClient) BaseURL() string { return c.baseURL }

func (c *DBClient) predictionURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	return u.JoinPath("prediction").String(), nil
}

// SavePrediction posts in to POST /prediction. It makes exactly one attempt.
func (c *DBClient) SavePrediction(ctx context.Context, in models.PredictionIn) RelayResult {
	endpoint, err := c.predictionURL()
	if err != nil {
		return RelayResult{Outcome: RelayTransportError, Err: err}
	}

	body, err := json.Marshal(in)
	if err != nil {
		return RelayResult{Outcome: RelayTransportError, Err: fmt.Errorf("encode payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return RelayResult{Outcome: RelayTransportError, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return RelayResult{Outcome: RelayTransportError, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return RelayResult{
			Outcome:    RelayUpstreamError,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %d", ErrUpstream, resp.StatusCode),
		}
	}

	var record models.Prediction
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		// the row is stored; only the echo is unreadable
		return RelayResult{Outcome: RelayDelivered, StatusCode: resp.StatusCode}
	}
	return RelayResult{Outcome: RelayDelivered, StatusCode: resp.StatusCode, Record: &record}
}

// ListPredictions fetches GET /prediction. Any status other than 200 is
// reported as ErrUpstream.
func (c *DBClient) ListPredictions(ctx context.Context) ([]models.Prediction, error) {
	endpoint, err := c.predictionURL()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUpstream, resp.StatusCode)
	}

	var records []models.Prediction
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if records == nil {
		records = []models.Prediction{}
	}
	return records, nil
}
