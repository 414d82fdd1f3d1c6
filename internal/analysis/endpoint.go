package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// maxErrorBody bounds how much of a failed response is quoted in errors.
const maxErrorBody = 512

// MaxResponseBody is the largest provider response that will be read.
const MaxResponseBody int64 = 1 << 20

// EndpointClient posts requests to an HTTP endpoint that speaks the analysis
// contract. Failures are returned to the caller without retrying.
type EndpointClient struct {
	URL        string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewEndpointClient creates a client for the endpoint at url.
func NewEndpointClient(url string, timeout time.Duration, logger *zap.Logger) *EndpointClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EndpointClient{
		URL:        url,
		HTTPClient: &http.Client{Timeout: timeout},
		Logger:     logger,
	}
}

// Analyze implements Analyzer.
func (c *EndpointClient) Analyze(ctx context.Context, req Request) (*Analysis, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build analysis request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.Logger.Debug("requesting analysis",
		zap.String("op", "analysis.EndpointClient.Analyze"),
		zap.String("url", c.URL),
	)
	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := readBody(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("analysis endpoint returned %s: %s", resp.Status, trimBody(raw))
	}
	return decodeAnalysis(raw)
}

// readBody reads at most MaxResponseBody bytes and fails on anything longer.
func readBody(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxResponseBody+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > MaxResponseBody {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", ErrInvalidResponse, MaxResponseBody)
	}
	return raw, nil
}

func trimBody(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}
	return s
}
