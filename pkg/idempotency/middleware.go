package idempotency

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmehra2102/order-fulfillment/pkg/httpx"
)

const Header = "Idempotency-Key"

type Claimer interface {
	// Claim records key and reports whether this call was the first to do so.
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func Key(scope, key string) string {
	return fmt.Sprintf("idem:%s:%s", scope, key)
}

func (s *Store) Claim(ctx context.Context, key string) (bool, error) {
	return s.rdb.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), s.ttl).Result()
}

func (s *Store) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

// Middleware rejects a request whose Idempotency-Key was already used within
// the claim TTL. Requests without the header pass through. A claim is released
// when the handler answers with a 5xx so the client may retry. When the claim
// store is unreachable requests pass through.
func Middleware(log *slog.Logger, claimer Claimer, scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(Header)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			key := Key(scope, raw)
			first, err := claimer.Claim(r.Context(), key)
			if err != nil {
				log.Warn("idempotency claim failed", "key", key, "err", err)
				next.ServeHTTP(w, r)
				return
			}
			if !first {
				log.Info("duplicate request rejected", "key", key)
				httpx.Error(w, http.StatusConflict, "Duplicate request", "a request with this Idempotency-Key was already processed")
				return
			}

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			if sw.status >= http.StatusInternalServerError {
				if err := claimer.Release(context.WithoutCancel(r.Context()), key); err != nil {
					log.Warn("idempotency release failed", "key", key, "err", err)
				}
			}
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
