package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// fakeCache is an in-memory responseCache for exercising the middleware
// without a Redis server.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string]*cachedResponse
	getErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]*cachedResponse)}
}

func (c *fakeCache) get(ctx context.Context, key string) (*cachedResponse, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	cached, ok := c.entries[key]
	return cached, ok, nil
}

func (c *fakeCache) set(ctx context.Context, key string, response *cachedResponse, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = response
	return nil
}

// countingHandler answers with a fresh sequence number per invocation, so a
// replayed response is distinguishable from a re-executed one.
type countingHandler struct {
	calls  int
	status int
}

func (h *countingHandler) handle(c *gin.Context) {
	h.calls++
	status := h.status
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"Sequence": strconv.Itoa(h.calls)})
}

func newIdempotencyRouter(cache responseCache, handler *countingHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(idempotencyWith(cache))
	r.POST("/v2/Init", handler.handle)
	r.GET("/v2/Init", handler.handle)
	return r
}

func doRequest(router *gin.Engine, method, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/v2/Init", nil)
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysCachedResponse(t *testing.T) {
	handler := &countingHandler{}
	router := newIdempotencyRouter(newFakeCache(), handler)

	first := doRequest(router, http.MethodPost, "key-1")
	second := doRequest(router, http.MethodPost, "key-1")

	if handler.calls != 1 {
		t.Errorf("handler invoked %d times, want 1", handler.calls)
	}
	if second.Code != first.Code {
		t.Errorf("replayed status = %d, want %d", second.Code, first.Code)
	}
	if second.Body.String() != first.Body.String() {
		t.Errorf("replayed body = %q, want %q", second.Body.String(), first.Body.String())
	}
	if ct := second.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("replayed Content-Type = %q, want application/json", ct)
	}
}

func TestIdempotency_DistinctKeysProcessedIndependently(t *testing.T) {
	handler := &countingHandler{}
	router := newIdempotencyRouter(newFakeCache(), handler)

	first := doRequest(router, http.MethodPost, "key-1")
	second := doRequest(router, http.MethodPost, "key-2")

	if handler.calls != 2 {
		t.Errorf("handler invoked %d times, want 2", handler.calls)
	}
	if first.Body.String() == second.Body.String() {
		t.Error("distinct keys received the same response body")
	}
}

func TestIdempotency_NoHeaderBypassesCache(t *testing.T) {
	handler := &countingHandler{}
	cache := newFakeCache()
	router := newIdempotencyRouter(cache, handler)

	doRequest(router, http.MethodPost, "")
	doRequest(router, http.MethodPost, "")

	if handler.calls != 2 {
		t.Errorf("handler invoked %d times, want 2", handler.calls)
	}
	if len(cache.entries) != 0 {
		t.Errorf("cache has %d entries, want 0", len(cache.entries))
	}
}

func TestIdempotency_NonPostBypassesCache(t *testing.T) {
	handler := &countingHandler{}
	cache := newFakeCache()
	router := newIdempotencyRouter(cache, handler)

	doRequest(router, http.MethodGet, "key-1")
	doRequest(router, http.MethodGet, "key-1")

	if handler.calls != 2 {
		t.Errorf("handler invoked %d times, want 2", handler.calls)
	}
	if len(cache.entries) != 0 {
		t.Errorf("cache has %d entries, want 0", len(cache.entries))
	}
}

func TestIdempotency_ClientErrorsAreCached(t *testing.T) {
	handler := &countingHandler{status: http.StatusBadRequest}
	router := newIdempotencyRouter(newFakeCache(), handler)

	doRequest(router, http.MethodPost, "key-1")
	second := doRequest(router, http.MethodPost, "key-1")

	if handler.calls != 1 {
		t.Errorf("handler invoked %d times, want 1", handler.calls)
	}
	if second.Code != http.StatusBadRequest {
		t.Errorf("replayed status = %d, want 400", second.Code)
	}
}

func TestIdempotency_ServerErrorsAreNotCached(t *testing.T) {
	handler := &countingHandler{status: http.StatusInternalServerError}
	cache := newFakeCache()
	router := newIdempotencyRouter(cache, handler)

	doRequest(router, http.MethodPost, "key-1")
	if len(cache.entries) != 0 {
		t.Fatalf("5xx response was cached")
	}

	// Once the backend recovers, the retry runs for real and its reply is
	// the one that sticks.
	handler.status = http.StatusOK
	retry := doRequest(router, http.MethodPost, "key-1")
	replay := doRequest(router, http.MethodPost, "key-1")

	if handler.calls != 2 {
		t.Errorf("handler invoked %d times, want 2", handler.calls)
	}
	if retry.Code != http.StatusOK || replay.Code != http.StatusOK {
		t.Errorf("retry/replay status = %d/%d, want 200/200", retry.Code, replay.Code)
	}
	if replay.Body.String() != retry.Body.String() {
		t.Errorf("replayed body = %q, want %q", replay.Body.String(), retry.Body.String())
	}
}

func TestIdempotency_CacheErrorDegradesToProcessing(t *testing.T) {
	handler := &countingHandler{}
	cache := newFakeCache()
	cache.getErr = errors.New("connection refused")
	router := newIdempotencyRouter(cache, handler)

	first := doRequest(router, http.MethodPost, "key-1")
	second := doRequest(router, http.MethodPost, "key-1")

	if handler.calls != 2 {
		t.Errorf("handler invoked %d times, want 2", handler.calls)
	}
	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Errorf("status = %d/%d, want 200/200", first.Code, second.Code)
	}
}
