package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"hotelmetrics/internal/model"
)

// DefaultLandingURL is the extraction endpoint used when none is configured.
const DefaultLandingURL = "https://api.landing.ai/v1/extract"

// ErrNoCredential is returned by LandingClient when no API key is configured.
var ErrNoCredential = errors.New("extraction service credential not configured")

// RemoteExtractor calls an external document extraction capability.
type RemoteExtractor interface {
	Extract(ctx context.Context, path, hotelName string) (*model.IngestionDocument, error)
}

// LandingClient posts document references to the extraction service.
type LandingClient struct {
	httpClient *http.Client
	url        string
	apiKey     string
}

type landingRequest struct {
	FilePath  string `json:"filePath"`
	HotelName string `json:"hotelName"`
}

// NewLandingClient creates a client. An empty url selects DefaultLandingURL,
// a zero timeout means 30 seconds.
func NewLandingClient(url, apiKey string, timeout time.Duration) *LandingClient {
	if url == "" {
		url = DefaultLandingURL
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &LandingClient{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
		apiKey:     apiKey,
	}
}

// Extract sends one extraction request and decodes the canonical document.
func (c *LandingClient) Extract(ctx context.Context, path, hotelName string) (*model.IngestionDocument, error) {
	if c.apiKey == "" {
		return nil, ErrNoCredential
	}

	body, err := json.Marshal(landingRequest{FilePath: path, HotelName: hotelName})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to call extraction service")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("extraction service returned non-200 status: %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	var payload struct {
		HotelName string                `json:"hotelName"`
		Data      *[]model.MetricSample `json:"data"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal response")
	}
	if payload.Data == nil {
		return nil, errors.New("extraction response has no data array")
	}
	return &model.IngestionDocument{HotelName: payload.HotelName, Data: *payload.Data}, nil
}
