package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/iota-uz/tenantgate/pkg/composables"
	"github.com/iota-uz/tenantgate/pkg/httpapi"
	"github.com/iota-uz/tenantgate/pkg/metrics"
)

const rateLimitPrefix = "tenantgate_ratelimit"

type RateLimitConfig struct {
	RequestsPerPeriod int
	Period            time.Duration
	Store             limiter.Store
	// RealIPHeader is trusted for the client address when set.
	RealIPHeader string
}

func NewMemoryStore() limiter.Store {
	return memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: rateLimitPrefix})
}

func NewRedisStore(redisURL string) (limiter.Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	store, err := sredis.NewStoreWithOptions(redis.NewClient(opts), limiter.StoreOptions{Prefix: rateLimitPrefix})
	if err != nil {
		return nil, errors.Wrap(err, "create redis rate limit store")
	}
	return store, nil
}

// RateLimit throttles requests per client IP. It runs before authentication
// so that unauthenticated floods never reach the identity provider.
func RateLimit(cfg RateLimitConfig) mux.MiddlewareFunc {
	period := cfg.Period
	if period <= 0 {
		period = time.Second
	}
	store := cfg.Store
	if store == nil {
		store = NewMemoryStore()
	}
	instance := limiter.New(store, limiter.Rate{Period: period, Limit: int64(cfg.RequestsPerPeriod)})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.RequestsPerPeriod <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			key, ok := realIP(r, cfg.RealIPHeader)
			if !ok {
				key = "unknown"
			}
			lctx, err := instance.Get(r.Context(), key)
			if err != nil {
				// an unreachable store must not take the API down
				composables.UseLoggerOrDefault(r.Context()).WithError(err).Warn("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

			if lctx.Reached {
				metrics.RecordDenial(httpapi.CodeRateLimited)
				w.Header().Set("Retry-After", strconv.FormatInt(max(lctx.Reset-time.Now().Unix(), 1), 10))
				_ = httpapi.WriteError(w, http.StatusTooManyRequests, httpapi.CodeRateLimited, "too many requests", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
