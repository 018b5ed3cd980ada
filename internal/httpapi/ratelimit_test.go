package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rotalog/rotalog-api/internal/auth"
	"github.com/rotalog/rotalog-api/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucket_BurstThenDeny(t *testing.T) {
	tb := NewTokenBucket(3, 0.001) // effectively no refill during the test

	for i := 0; i < 3; i++ {
		allowed, _, _ := tb.Allow()
		assert.True(t, allowed, "request %d within burst should pass", i)
	}

	allowed, _, retryAfter := tb.Allow()
	assert.False(t, allowed)
	assert.Positive(t, retryAfter)
}

func TestRateLimiter_PerUserBuckets(t *testing.T) {
	mem := memory.New()
	srv := NewServer(mem)
	srv.RateLimit = RateLimitInfo{WindowSeconds: 60, MaxRequests: 60, Burst: 2}
	srv.limiter = NewRateLimiter(srv.RateLimit)
	router := srv.Routes(auth.Config{HS256Secret: "test-secret", DevMode: true})

	get := func(user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/v1/sync/last-sync-timestamp", nil)
		req.Header.Set("X-Debug-Sub", user)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	// alice exhausts her burst of 2
	require.Equal(t, 200, get("alice").Code)
	require.Equal(t, 200, get("alice").Code)

	w := get("alice")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// bob has his own bucket and is unaffected
	assert.Equal(t, 200, get("bob").Code)
}

func TestInfo_Unauthenticated(t *testing.T) {
	_, router := newTestRouter(t)

	w := doJSON(t, router, "GET", "/v1/sync/info", "", nil)
	require.Equal(t, 200, w.Code)

	info := decodeBody[ServerInfo](t, w)
	assert.Contains(t, info.Entities, "vehicles")
	assert.Contains(t, info.Entities, "journeys")
	assert.Contains(t, info.Entities, "fuelPurchases")
	assert.Contains(t, info.Entities, "expenses")
	assert.True(t, info.Entities["vehicles"].Upload)
	require.NotNil(t, info.RateLimit)
}

func TestHealthz(t *testing.T) {
	_, router := newTestRouter(t)

	w := doJSON(t, router, "GET", "/healthz", "", nil)
	assert.Equal(t, 200, w.Code)
}
