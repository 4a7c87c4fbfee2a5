package api

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	// IdempotencyHeader carries the client's replay key.
	IdempotencyHeader = "Idempotency-Key"

	// IdempotencyCacheTTL is how long successful responses are replayed.
	IdempotencyCacheTTL = 24 * time.Hour

	// LockTimeout releases the processing lock of a crashed request.
	LockTimeout = 10 * time.Second

	RedisKeyPrefix = "idempotency:"
	LockKeyPrefix  = "lock:"
)

// responseRecorder captures status and body for caching.
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func (rw *responseRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseRecorder) Write(b []byte) (int, error) {
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}

// Idempotency replays the cached response of a request already served with
// the same Idempotency-Key and answers 409 while one is still in flight.
// Only 2xx responses are cached. Requests without the header pass through.
func Idempotency(rdb *redis.Client, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			key := r.Header.Get(IdempotencyHeader)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			// Keys are scoped by caller so two participants cannot collide.
			scope := key
			if p, ok := participantFrom(ctx); ok {
				scope = p.ID + ":" + key
			}
			cacheKey := RedisKeyPrefix + scope
			lockKey := LockKeyPrefix + scope
			log := logger.With(zap.String("idempotency_key", key))

			cached, err := rdb.HGetAll(ctx, cacheKey).Result()
			if err != nil {
				log.Error("idempotency cache lookup failed", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			if len(cached) > 0 {
				log.Info("idempotency cache hit")
				status, _ := strconv.Atoi(cached["status"])
				if status == 0 {
					status = http.StatusOK
				}
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Idempotency-Hit", "true")
				w.WriteHeader(status)
				w.Write([]byte(cached["body"]))
				return
			}

			acquired, err := rdb.SetNX(ctx, lockKey, "processing", LockTimeout).Result()
			if err != nil {
				log.Error("idempotency lock failed", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			if !acquired {
				log.Warn("concurrent request with same idempotency key")
				writeError(w, http.StatusConflict, "a request with this idempotency key is currently being processed")
				return
			}

			// Releasing the lock and caching the response must outlive a
			// cancelled request.
			detached := context.WithoutCancel(ctx)
			defer func() {
				if err := rdb.Del(detached, lockKey).Err(); err != nil {
					log.Error("failed to release idempotency lock", zap.Error(err))
				}
			}()

			rec := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.statusCode < 200 || rec.statusCode >= 300 {
				return
			}

			_, err = rdb.TxPipelined(detached, func(pipe redis.Pipeliner) error {
				pipe.HSet(detached, cacheKey, "status", rec.statusCode, "body", rec.body.String())
				pipe.Expire(detached, cacheKey, IdempotencyCacheTTL)
				return nil
			})
			if err != nil {
				log.Error("failed to cache response", zap.Error(err))
				return
			}
			log.Debug("response cached", zap.Duration("ttl", IdempotencyCacheTTL))
		})
	}
}
