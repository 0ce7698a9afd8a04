package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"string-analyzer/domain/core/valueobjects"
	"string-analyzer/infrastructure/config"
	"string-analyzer/infrastructure/di"
	"string-analyzer/pkg/auth"
)

type testServer struct {
	handler   http.Handler
	container *di.Container
}

func newTestServer(t *testing.T, mutate func(*config.Config, *Options)) *testServer {
	t.Helper()

	cfg := config.Default()
	cfg.LogLevel = "error"
	cfg.StorageBackend = config.StorageMemory

	opts := Options{EnableCORS: true}
	if mutate != nil {
		mutate(cfg, &opts)
	}

	container, cleanup, err := di.InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	opts.Storage = container.Repository
	opts.Collector = container.Collector
	opts.MaxBodyBytes = cfg.MaxBodyBytes
	if opts.Authenticator == nil {
		opts.Authenticator = container.JWT
	}

	router := NewRouter(container.CommandBus, container.QueryBus, container.Logger, opts)
	return &testServer{handler: router.Setup(), container: container}
}

func (s *testServer) do(t *testing.T, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestCreateString(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/strings", `{"value": "A man a plan"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, valueobjects.NewStringID("A man a plan").String(), body["id"])
	assert.Equal(t, "A man a plan", body["value"])
	assert.NotEmpty(t, body["created_at"])

	props := body["properties"].(map[string]interface{})
	assert.Equal(t, float64(12), props["length"])
	assert.Equal(t, float64(4), props["word_count"])
	assert.Equal(t, body["id"], props["sha256_hash"])
	assert.Equal(t, false, props["is_palindrome"])

	rec = s.do(t, http.MethodPost, "/strings", `{"value": "A man a plan"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "String already exists in the system", decode(t, rec)["message"])
}

func TestCreateString_TrimsValue(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/strings", `{"value": "  noon  "}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "noon", decode(t, rec)["value"])

	rec = s.do(t, http.MethodPost, "/strings", `{"value": "noon"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateString_BadRequests(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed JSON", `{"value": `, http.StatusBadRequest},
		{"empty body", ``, http.StatusBadRequest},
		{"missing value", `{}`, http.StatusBadRequest},
		{"null value", `{"value": null}`, http.StatusBadRequest},
		{"not an object", `["x"]`, http.StatusBadRequest},
		{"number value", `{"value": 123}`, http.StatusUnprocessableEntity},
		{"array value", `{"value": ["a"]}`, http.StatusUnprocessableEntity},
		{"blank value", `{"value": "   "}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/strings", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			s.handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			body := decode(t, rec)
			assert.Equal(t, true, body["error"])
			assert.Equal(t, float64(tt.status), body["code"])
		})
	}
}

func TestCreateString_BodyTooLarge(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config, _ *Options) {
		cfg.MaxBodyBytes = 16
	})

	rec := s.do(t, http.MethodPost, "/strings", `{"value": "this value is far too long"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetString(t *testing.T) {
	s := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/strings", `{"value": "hello world"}`).Code)

	rec := s.do(t, http.MethodGet, "/strings/"+url.PathEscape("hello world"), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "hello world", decode(t, rec)["value"])

	rec = s.do(t, http.MethodGet, "/strings/absent", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "String does not exist in the system", body["message"])
	assert.NotEmpty(t, body["request_id"])
}

func TestGetString_EscapedSlash(t *testing.T) {
	s := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/strings", `{"value": "a/b"}`).Code)

	rec := s.do(t, http.MethodGet, "/strings/a%2Fb", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "a/b", decode(t, rec)["value"])
}

func seed(t *testing.T, s *testServer, values ...string) {
	t.Helper()
	for _, v := range values {
		body, _ := json.Marshal(map[string]string{"value": v})
		rec := s.do(t, http.MethodPost, "/strings", string(body))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
}

func TestListStrings(t *testing.T) {
	s := newTestServer(t, nil)
	seed(t, s, "racecar", "hello world", "level", "a quick brown fox")

	rec := s.do(t, http.MethodGet, "/strings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(4), body["count"])
	assert.Nil(t, body["filters_applied"])

	rec = s.do(t, http.MethodGet, "/strings?is_palindrome=true&min_length=6", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, float64(1), body["count"])
	data := body["data"].([]interface{})
	assert.Equal(t, "racecar", data[0].(map[string]interface{})["value"])
	assert.Equal(t, map[string]interface{}{"is_palindrome": true, "min_length": float64(6)}, body["filters_applied"])

	rec = s.do(t, http.MethodGet, "/strings?word_count=2&contains_character=w", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["count"])
}

func TestListStrings_InvalidParams(t *testing.T) {
	s := newTestServer(t, nil)

	for _, q := range []string{
		"is_palindrome=maybe",
		"min_length=abc",
		"max_length=1.5",
		"word_count=-1",
		"min_length=5&max_length=2",
		"contains_character=ab",
		"contains_character=",
	} {
		t.Run(q, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, "/strings?"+q, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestFilterByNaturalLanguage(t *testing.T) {
	s := newTestServer(t, nil)
	seed(t, s, "racecar", "noon", "hello world", "kayak")

	rec := s.do(t, http.MethodGet, "/strings/filter-by-natural-language?query="+url.QueryEscape("all single word palindromic strings"), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, float64(3), body["count"])
	interpreted := body["interpreted_query"].(map[string]interface{})
	assert.Equal(t, "all single word palindromic strings", interpreted["original"])
	assert.Equal(t, map[string]interface{}{"is_palindrome": true, "word_count": float64(1)}, interpreted["parsed_filters"])
}

func TestFilterByNaturalLanguage_Errors(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/strings/filter-by-natural-language", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/strings/filter-by-natural-language?query="+url.QueryEscape("tell me a joke"), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["message"], "Unable to parse natural language query")

	rec = s.do(t, http.MethodGet, "/strings/filter-by-natural-language?query="+url.QueryEscape("longer than 10 characters and shorter than 5 characters"), "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode(t, rec)["message"], "Query parsed but resulted in conflicting filters")
}

func TestDeleteString(t *testing.T) {
	s := newTestServer(t, nil)
	seed(t, s, "madam")

	// Warm the read cache so the delete must invalidate it.
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/strings/madam", "").Code)

	rec := s.do(t, http.MethodDelete, "/strings/madam", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/strings/madam", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/strings/madam", "").Code)
}

func TestHealthReadyMetrics(t *testing.T) {
	s := newTestServer(t, nil)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/ready", "").Code)

	seed(t, s, "abc")
	rec := s.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "string_analyzer_strings_created_total 1")
	assert.Contains(t, rec.Body.String(), "string_analyzer_http_requests_total")
}

type downStorage struct{}

func (downStorage) Ping(context.Context) error { return errors.New("connection refused") }

func TestReady_StorageDown(t *testing.T) {
	s := newTestServer(t, nil)
	router := NewRouter(s.container.CommandBus, s.container.QueryBus, s.container.Logger, Options{Storage: downStorage{}})

	rec := httptest.NewRecorder()
	router.Setup().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORS_AllowsAnyOrigin(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodOptions, "/strings", "",
		"Origin", "https://example.org",
		"Access-Control-Request-Method", "POST",
	)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAuth_ProtectsMutatingRoutes(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config, _ *Options) {
		cfg.RequireAuth = true
		cfg.JWTSecret = "s3cret"
	})

	rec := s.do(t, http.MethodPost, "/strings", `{"value": "abc"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/strings", `{"value": "abc"}`, "Authorization", "Bearer nonsense")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	gen, err := auth.NewJWTGenerator(auth.JWTConfig{SecretKey: "s3cret", Issuer: "string-analyzer"})
	require.NoError(t, err)
	token, err := gen.GenerateToken("tester", nil)
	require.NoError(t, err)

	rec = s.do(t, http.MethodPost, "/strings", `{"value": "abc"}`, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/strings/abc", "").Code, "reads stay public")
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodDelete, "/strings/abc", "").Code)
}

func TestRateLimit(t *testing.T) {
	limiter := auth.NewTokenBucketLimiter(60, 2)
	t.Cleanup(limiter.Stop)

	s := newTestServer(t, func(_ *config.Config, opts *Options) {
		opts.RateLimiter = limiter
		opts.RateLimitPerMinute = 60
	})

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/strings", "").Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/strings", "").Code)

	rec := s.do(t, http.MethodGet, "/strings", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestOptionsFor_DebugOnlyInDevelopment(t *testing.T) {
	for env, debug := range map[string]bool{
		"development": true,
		"staging":     false,
		"test":        false,
		"production":  false,
	} {
		cfg := config.Default()
		cfg.LogLevel = "error"
		cfg.Environment = env

		container, cleanup, err := di.InitializeContainer(context.Background(), cfg)
		require.NoError(t, err)

		opts := OptionsFor(container)
		assert.Equal(t, debug, opts.Debug, env)
		assert.Equal(t, cfg.MaxBodyBytes, opts.MaxBodyBytes)
		assert.Same(t, container.Collector, opts.Collector)
		assert.NotNil(t, opts.RateLimiter)
		cleanup()
	}
}
