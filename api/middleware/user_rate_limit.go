package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/donazulmira/moradores-backend/api/responses"
	pkgerrors "github.com/donazulmira/moradores-backend/pkg/errors"
	"github.com/donazulmira/moradores-backend/pkg/logger"
)

const msgUserThrottled = "Limite de gerações atingido. Aguarde alguns instantes."

// UserRateLimiter hands out one token bucket per authenticated user.
type UserRateLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[int64]*rate.Limiter
}

// NewUserRateLimiter allows perMinute events per user with the given burst.
// A non-positive rate disables throttling.
func NewUserRateLimiter(perMinute float64, burst int) *UserRateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &UserRateLimiter{
		limit:    rate.Limit(perMinute / time.Minute.Seconds()),
		burst:    burst,
		limiters: make(map[int64]*rate.Limiter),
	}
}

// Allow consumes one token from the user's bucket.
func (u *UserRateLimiter) Allow(userID int64) bool {
	if u == nil || u.limit <= 0 {
		return true
	}
	u.mu.Lock()
	limiter, ok := u.limiters[userID]
	if !ok {
		limiter = rate.NewLimiter(u.limit, u.burst)
		u.limiters[userID] = limiter
	}
	u.mu.Unlock()
	return limiter.Allow()
}

// UserRateLimit throttles authenticated callers individually. It must run
// after Auth.
func UserRateLimit(limiter *UserRateLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			userID := UserIDFromContext(ctx)
			if !limiter.Allow(userID) {
				if logg != nil {
					logg.Warn(logg.WithField(ctx, "route", metricsRoute(r)), "user.rate_limit.blocked")
				}
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, msgUserThrottled))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
