package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	defaultChatBaseURL    = "https://api.openai.com/v1"
	defaultChatModel      = "gpt-4o-mini"
	defaultChatMaxRetries = 2
	maxRetryWait          = 8 * time.Second
)

// ChatClient answers analysis requests with an OpenAI-compatible chat
// completions API. Rate limiting and server errors are retried with backoff,
// honouring Retry-After.
type ChatClient struct {
	BaseURL    string
	APIKey     string
	Model      string
	MaxRetries int
	HTTPClient *http.Client
	Logger     *zap.Logger

	// retryBase is the first backoff delay; it doubles on each attempt.
	retryBase time.Duration
}

// NewChatClient creates a chat client. Zero values pick the defaults.
func NewChatClient(baseURL, apiKey, model string, timeout time.Duration, maxRetries int, logger *zap.Logger) *ChatClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if baseURL == "" {
		baseURL = defaultChatBaseURL
	}
	if model == "" {
		model = defaultChatModel
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &ChatClient{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		Model:      model,
		MaxRetries: maxRetries,
		HTTPClient: &http.Client{Timeout: timeout},
		Logger:     logger,
		retryBase:  800 * time.Millisecond,
	}
}

// completionsURL accepts a base URL with or without the endpoint path.
func (c *ChatClient) completionsURL() string {
	url := strings.TrimRight(c.BaseURL, "/")
	url = strings.TrimSuffix(url, "/chat/completions")
	return url + "/chat/completions"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

// Analyze implements Analyzer.
func (c *ChatClient) Analyze(ctx context.Context, req Request) (*Analysis, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	content, err := c.complete(ctx, req)
	if err != nil {
		return nil, err
	}
	return parseChatAnalysis(content)
}

func (c *ChatClient) complete(ctx context.Context, req Request) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.UserPrompt})
	body, err := json.Marshal(chatRequest{
		Model:          c.Model,
		Messages:       messages,
		Temperature:    0.4,
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	url := c.completionsURL()
	var lastErr error
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		content, retryAfter, err := c.post(ctx, url, body)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if retryAfter < 0 || attempt == c.MaxRetries {
			break
		}

		wait := retryAfter
		if wait == 0 {
			wait = c.retryBase << attempt
		}
		wait = min(wait, maxRetryWait)
		c.Logger.Warn("retrying chat completion",
			zap.String("op", "analysis.ChatClient.complete"),
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(wait):
		}
	}
	return "", lastErr
}

// post sends one completion request. retryAfter is negative when the failure
// should not be retried, zero for the default backoff and positive when the
// server asked for a delay.
func (c *ChatClient) post(ctx context.Context, url string, body []byte) (content string, retryAfter time.Duration, err error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", -1, fmt.Errorf("failed to build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return "", -1, fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := readBody(resp.Body)
	if err != nil {
		return "", -1, fmt.Errorf("failed to read chat response: %w", err)
	}

	if resp.StatusCode/100 == 2 {
		choice := gjson.GetBytes(raw, "choices.0.message.content")
		if !choice.Exists() {
			return "", -1, fmt.Errorf("%w: no choices in chat response", ErrInvalidResponse)
		}
		return choice.String(), 0, nil
	}

	msg := gjson.GetBytes(raw, "error.message").String()
	if msg == "" {
		msg = trimBody(raw)
	}
	err = fmt.Errorf("chat completion returned %s: %s", resp.Status, msg)
	if !retryable(resp.StatusCode) {
		return "", -1, err
	}
	if secs, perr := strconv.Atoi(resp.Header.Get("Retry-After")); perr == nil && secs > 0 {
		return "", time.Duration(secs) * time.Second, err
	}
	return "", 0, err
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// parseChatAnalysis reads the analysis from model output, which may wrap the
// JSON object in prose or a code fence. Fields are read leniently so a model
// that omits a list still yields an analysis.
func parseChatAnalysis(content string) (*Analysis, error) {
	object, ok := extractJSONObject(content)
	if !ok || !gjson.Valid(object) {
		return nil, fmt.Errorf("%w: no JSON object in model output", ErrInvalidResponse)
	}
	doc := gjson.Parse(object)

	out := &Analysis{
		Summary:       doc.Get("summary").String(),
		Verdict:       doc.Get("verdict").String(),
		MarketContext: doc.Get("marketContext").String(),
	}
	doc.Get("insights").ForEach(func(_, item gjson.Result) bool {
		out.Insights = append(out.Insights, Insight{
			Type:    strings.ToLower(item.Get("type").String()),
			Title:   item.Get("title").String(),
			Message: item.Get("message").String(),
		})
		return true
	})
	doc.Get("recommendations").ForEach(func(_, item gjson.Result) bool {
		if text := strings.TrimSpace(item.String()); text != "" {
			out.Recommendations = append(out.Recommendations, text)
		}
		return true
	})
	if out.Summary == "" && out.Verdict == "" {
		return nil, fmt.Errorf("%w: model output has no summary or verdict", ErrInvalidResponse)
	}
	out.normalize()
	return out, nil
}

// extractJSONObject returns the first balanced JSON object in s, skipping
// braces inside strings.
func extractJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	if start == -1 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[start : i+1]), true
			}
		}
	}
	return "", false
}
