package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const validResponse = `{
	"summary": "Solid deal",
	"verdict": "proceed",
	"insights": [{"type": "positive", "title": "Yield", "message": "Above area average"}],
	"recommendations": ["Fix the rate for five years"],
	"marketContext": "Rents are rising"
}`

var sampleRequest = Request{SystemPrompt: "You are an analyst", UserPrompt: "Review this deal"}

type mockAnalyzer struct {
	mock.Mock
}

func (m *mockAnalyzer) Analyze(ctx context.Context, req Request) (*Analysis, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Analysis), args.Error(1)
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("connection refused")
}

func (failingCache) Set(context.Context, string, string) error {
	return errors.New("connection refused")
}

func TestEndpointClientAnalyze(t *testing.T) {
	var got Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(validResponse))
	}))
	defer server.Close()

	client := NewEndpointClient(server.URL, time.Second, nil)
	out, err := client.Analyze(context.Background(), sampleRequest)
	require.NoError(t, err)
	assert.Equal(t, sampleRequest, got)
	assert.Equal(t, "proceed", out.Verdict)
	require.Len(t, out.Insights, 1)
	assert.Equal(t, InsightPositive, out.Insights[0].Type)
	assert.Equal(t, []string{"Fix the rate for five years"}, out.Recommendations)
	assert.Equal(t, "Rents are rising", out.MarketContext)
}

func TestEndpointClientFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "boom"},
		{name: "missing fields", status: http.StatusOK, body: `{"summary": "x"}`, wantErr: ErrInvalidResponse},
		{name: "not json", status: http.StatusOK, body: "hello", wantErr: ErrInvalidResponse},
		{name: "wrong types", status: http.StatusOK, body: `{"summary":"x","verdict":"y","insights":"none","recommendations":[]}`, wantErr: ErrInvalidResponse},
		{name: "oversized", status: http.StatusOK, body: strings.Repeat(" ", int(MaxResponseBody)) + validResponse, wantErr: ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewEndpointClient(server.URL, time.Second, nil).Analyze(context.Background(), sampleRequest)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.Contains(t, err.Error(), "500")
				assert.Contains(t, err.Error(), tt.body)
			}
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "endpoint failures are not retried")
		})
	}
}

func TestEndpointClientRejectsEmptyPrompt(t *testing.T) {
	_, err := NewEndpointClient("http://127.0.0.1:1", time.Second, nil).Analyze(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrEmptyPrompt)
}

func chatReply(content string) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": content}}},
	})
	return string(body)
}

func TestChatClientRetriesThenSucceeds(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"slow down"}}`))
			return
		}
		_, _ = w.Write([]byte(chatReply("Here is my analysis:\n```json\n" + validResponse + "\n```")))
	}))
	defer server.Close()

	client := NewChatClient(server.URL+"/v1/", "secret", "", time.Second, 2, nil)
	client.retryBase = time.Millisecond

	out, err := client.Analyze(context.Background(), sampleRequest)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, "Solid deal", out.Summary)
	assert.Len(t, out.Insights, 1)
}

func TestChatClientDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer server.Close()

	client := NewChatClient(server.URL, "wrong", "", time.Second, 3, nil)
	client.retryBase = time.Millisecond

	_, err := client.Analyze(context.Background(), sampleRequest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad key")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestChatClientRejectsOversizedResponse(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(strings.Repeat("a", int(MaxResponseBody)+1)))
	}))
	defer server.Close()

	client := NewChatClient(server.URL, "key", "", time.Second, 2, nil)
	client.retryBase = time.Millisecond

	_, err := client.Analyze(context.Background(), sampleRequest)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidResponse)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestChatClientGivesUpAfterRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewChatClient(server.URL, "key", "", time.Second, 2, nil)
	client.retryBase = time.Millisecond

	_, err := client.Analyze(context.Background(), sampleRequest)
	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestParseChatAnalysis(t *testing.T) {
	out, err := parseChatAnalysis(`Sure! {"summary":"ok {fine}","verdict":"caution","insights":[{"type":"WARNING","title":"Voids","message":"High"}]} Thanks`)
	require.NoError(t, err)
	assert.Equal(t, "ok {fine}", out.Summary)
	assert.Equal(t, InsightWarning, out.Insights[0].Type)
	assert.NotNil(t, out.Recommendations)

	_, err = parseChatAnalysis("no json here")
	assert.ErrorIs(t, err, ErrInvalidResponse)

	_, err = parseChatAnalysis(`{"unrelated": true}`)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: `{"a":1}`, want: `{"a":1}`, ok: true},
		{in: `text {"a":{"b":"}"}} more {"c":2}`, want: `{"a":{"b":"}"}}`, ok: true},
		{in: `{"a":"\"{"}`, want: `{"a":"\"{"}`, ok: true},
		{in: `{"a":1`, ok: false},
		{in: `none`, ok: false},
	}
	for _, tt := range tests {
		got, ok := extractJSONObject(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFallbackAnalyzer(t *testing.T) {
	out, err := FallbackAnalyzer{}.Analyze(context.Background(), sampleRequest)
	require.NoError(t, err)
	assert.Equal(t, VerdictUnavailable, out.Verdict)
	assert.NotEmpty(t, out.Summary)

	_, err = FallbackAnalyzer{}.Analyze(context.Background(), Request{SystemPrompt: "only system"})
	assert.ErrorIs(t, err, ErrEmptyPrompt)
}

func TestCacheKey(t *testing.T) {
	key := CacheKey(sampleRequest)
	assert.Len(t, key, len(CacheKeyPrefix)+64)
	assert.Equal(t, key, CacheKey(sampleRequest))
	assert.NotEqual(t, key, CacheKey(Request{SystemPrompt: "You are an analystR", UserPrompt: "eview this deal"}))
}

func TestCachedAnalyzerServesRepeatsFromCache(t *testing.T) {
	next := new(mockAnalyzer)
	next.On("Analyze", mock.Anything, sampleRequest).Return(&Analysis{Summary: "s", Verdict: "v"}, nil).Once()

	cache := NewMemoryCache(time.Minute)
	analyzer := NewCachedAnalyzer(next, cache, nil)

	first, err := analyzer.Analyze(context.Background(), sampleRequest)
	require.NoError(t, err)
	second, err := analyzer.Analyze(context.Background(), sampleRequest)
	require.NoError(t, err)

	assert.Equal(t, first.Verdict, second.Verdict)
	assert.Equal(t, 1, cache.Len())
	next.AssertNumberOfCalls(t, "Analyze", 1)
}

func TestCachedAnalyzerIgnoresCacheFailures(t *testing.T) {
	next := new(mockAnalyzer)
	next.On("Analyze", mock.Anything, sampleRequest).Return(&Analysis{Summary: "s", Verdict: "v"}, nil)

	out, err := NewCachedAnalyzer(next, failingCache{}, nil).Analyze(context.Background(), sampleRequest)
	require.NoError(t, err)
	assert.Equal(t, "v", out.Verdict)
}

func TestCachedAnalyzerDoesNotCacheErrors(t *testing.T) {
	next := new(mockAnalyzer)
	next.On("Analyze", mock.Anything, sampleRequest).Return(nil, errors.New("provider down"))

	cache := NewMemoryCache(0)
	_, err := NewCachedAnalyzer(next, cache, nil).Analyze(context.Background(), sampleRequest)
	assert.EqualError(t, err, "provider down")
	assert.Equal(t, 0, cache.Len())
}

func TestMemoryCacheExpiry(t *testing.T) {
	now := time.Date(2025, 4, 6, 12, 0, 0, 0, time.UTC)
	cache := NewMemoryCache(time.Minute)
	cache.now = func() time.Time { return now }

	require.NoError(t, cache.Set(context.Background(), "k", "v"))
	val, ok, err := cache.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", val)

	now = now.Add(2 * time.Minute)
	_, ok, _ = cache.Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    interface{}
		wantErr bool
	}{
		{name: "default", cfg: Config{}, want: FallbackAnalyzer{}},
		{name: "none", cfg: Config{Provider: ProviderNone, CacheTTL: time.Minute}, want: FallbackAnalyzer{}},
		{name: "endpoint", cfg: Config{Provider: ProviderEndpoint, Endpoint: "http://localhost/api/ai/analyze"}, want: &EndpointClient{}},
		{name: "endpoint without url", cfg: Config{Provider: ProviderEndpoint}, wantErr: true},
		{name: "openai without key", cfg: Config{Provider: ProviderOpenAI}, want: FallbackAnalyzer{}},
		{name: "openai", cfg: Config{Provider: ProviderOpenAI, APIKey: "k"}, want: &ChatClient{}},
		{name: "memory cache", cfg: Config{Provider: ProviderOpenAI, APIKey: "k", CacheTTL: time.Hour}, want: &CachedAnalyzer{}},
		{name: "unknown", cfg: Config{Provider: "magic"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.cfg, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, got)
		})
	}
}
