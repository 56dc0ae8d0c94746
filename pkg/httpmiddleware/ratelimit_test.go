package httpmiddleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// limited builds the middleware without the cleanup goroutine so tests
// stay deterministic.
func limited(cfg RateLimitConfig) http.Handler {
	return rateLimitMiddleware(newRateLimiter(cfg))(okHandler())
}

func get(handler http.Handler, remoteAddr string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestRateLimit_UnderLimit(t *testing.T) {
	handler := limited(RateLimitConfig{Max: 5, Window: time.Minute})

	for i := range 5 {
		w := get(handler, "192.168.1.1:12345", nil)

		assert.Equal(t, http.StatusOK, w.Code, "request %d should pass", i+1)
		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	}
}

func TestRateLimit_OverLimit(t *testing.T) {
	handler := limited(RateLimitConfig{Max: 2, Window: time.Minute})

	for range 2 {
		w := get(handler, "10.0.0.1:9999", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := get(handler, "10.0.0.1:9999", nil)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, float64(429), body["code"])
	assert.Equal(t, "rate limit exceeded", body["message"])
}

func TestRateLimit_KeysByClientIP(t *testing.T) {
	handler := limited(RateLimitConfig{Max: 1, Window: time.Minute})

	assert.Equal(t, http.StatusOK, get(handler, "10.0.0.1:1234", nil).Code)
	// Independent limit per IP.
	assert.Equal(t, http.StatusOK, get(handler, "10.0.0.2:1234", nil).Code)
	// Same IP from another port shares the bucket.
	assert.Equal(t, http.StatusTooManyRequests, get(handler, "10.0.0.1:5678", nil).Code)
}

func TestRateLimit_XForwardedFor(t *testing.T) {
	handler := limited(RateLimitConfig{Max: 1, Window: time.Minute})
	xff := map[string]string{"X-Forwarded-For": "203.0.113.50, 70.41.3.18"}

	assert.Equal(t, http.StatusOK, get(handler, "192.168.1.1:4444", xff).Code)
	// Different RemoteAddr, same forwarded client: shared bucket.
	assert.Equal(t, http.StatusTooManyRequests, get(handler, "192.168.1.2:5555", xff).Code)
}

func TestRateLimit_CleanupEvictsStaleEntries(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{Max: 1, Window: time.Minute})

	now := time.Now()
	_, _, allowed := rl.allow("10.0.0.1", now)
	require.True(t, allowed)
	require.Len(t, rl.entries, 1)

	rl.cleanup(now.Add(time.Minute))
	assert.Len(t, rl.entries, 1, "entry inside the retention horizon survives")

	rl.cleanup(now.Add(3 * time.Minute))
	assert.Empty(t, rl.entries)
}
