package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyHeader = "Idempotency-Key"
	idempotencyTTL    = 24 * time.Hour
)

// cachedResponse is the stored gateway reply for an idempotency key.
type cachedResponse struct {
	StatusCode int             `json:"status_code"`
	Body       json.RawMessage `json:"body"`
}

// responseCache stores replayable responses keyed by idempotency key.
// get reports a miss with ok=false and no error.
type responseCache interface {
	get(ctx context.Context, key string) (*cachedResponse, bool, error)
	set(ctx context.Context, key string, response *cachedResponse, ttl time.Duration) error
}

// redisCache backs responseCache with Redis.
type redisCache struct {
	client *redis.Client
}

func (c redisCache) get(ctx context.Context, key string) (*cachedResponse, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var cached cachedResponse
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false, err
	}
	return &cached, true, nil
}

func (c redisCache) set(ctx context.Context, key string, response *cachedResponse, ttl time.Duration) error {
	data, err := json.Marshal(response)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

// captureWriter duplicates the response body so it can be cached.
type captureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the cached /v2 response for a repeated Idempotency-Key
// header. Test suites re-running recorded traffic against the emulator get
// the same PaymentId back instead of a fresh payment per replay. Redis errors
// degrade to normal processing.
func Idempotency(redisClient *redis.Client) gin.HandlerFunc {
	return idempotencyWith(redisCache{client: redisClient})
}

func idempotencyWith(cache responseCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		key := c.GetHeader(idempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		cacheKey := "idempotency:" + c.FullPath() + ":" + key

		cached, ok, err := cache.get(ctx, cacheKey)
		if err != nil {
			c.Next()
			return
		}
		if ok {
			c.Data(cached.StatusCode, "application/json", cached.Body)
			c.Abort()
			return
		}

		w := &captureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w

		c.Next()

		// 5xx replies stay uncached so the client can retry them.
		if c.Writer.Status() >= 200 && c.Writer.Status() < 500 {
			_ = cache.set(ctx, cacheKey, &cachedResponse{
				StatusCode: c.Writer.Status(),
				Body:       w.body.Bytes(),
			}, idempotencyTTL)
		}
	}
}
