package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/donazulmira/moradores-backend/api/responses"
	pkgerrors "github.com/donazulmira/moradores-backend/pkg/errors"
	"github.com/donazulmira/moradores-backend/pkg/logger"
)

const msgTooManyAttempts = "Muitas tentativas. Tente novamente mais tarde."

// maxRateLimitBody caps how much of an auth body is buffered to find the
// subject. Login and recovery payloads are a few hundred bytes.
const maxRateLimitBody = 16 << 10

// RateLimiterStore applies a fixed-window counter to a scope.
type RateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// AuthRateLimitPolicy throttles one group of public auth routes by client IP
// and by subject. The subject is the e-mail for login and forgot-password and
// the reset token for reset-password; both are hashed before they reach the
// store or the logs.
type AuthRateLimitPolicy struct {
	name         string
	window       time.Duration
	ipLimit      int
	subjectLimit int
}

func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, subjectLimit int) AuthRateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "auth"
	}
	return AuthRateLimitPolicy{
		name:         name,
		window:       window,
		ipLimit:      ipLimit,
		subjectLimit: subjectLimit,
	}
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.subjectLimit > 0)
}

func (p AuthRateLimitPolicy) ipScope(ip string) string {
	return "auth:" + p.name + ":ip:" + ip
}

func (p AuthRateLimitPolicy) subjectScope(kind, hash string) string {
	return "auth:" + p.name + ":" + kind + ":" + hash
}

// AuthRateLimit rejects bursts against the public auth routes with 429. A
// failing store lets the request through so Redis trouble never locks staff
// out of the system.
func AuthRateLimit(policy AuthRateLimitPolicy, store RateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if ip := clientIP(r); ip != "" && policy.ipLimit > 0 {
				if blocked := checkLimit(ctx, logg, store, policy, policy.ipScope(ip), policy.ipLimit); blocked {
					respondRateLimited(ctx, logg, w, policy, map[string]any{"scope": "ip", "ip": ip})
					return
				}
			}

			if policy.subjectLimit > 0 && r.Body != nil {
				body, err := io.ReadAll(io.LimitReader(r.Body, maxRateLimitBody))
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Corpo da requisição inválido"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))

				if kind, hash := subjectOf(body); hash != "" {
					if blocked := checkLimit(ctx, logg, store, policy, policy.subjectScope(kind, hash), policy.subjectLimit); blocked {
						respondRateLimited(ctx, logg, w, policy, map[string]any{"scope": kind, kind + "_hash": hash})
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func checkLimit(ctx context.Context, logg *logger.Logger, store RateLimiterStore, policy AuthRateLimitPolicy, scope string, limit int) bool {
	allowed, _, err := store.FixedWindowAllow(ctx, scope, int64(limit), policy.window)
	if err != nil {
		if logg != nil {
			logg.Error(logg.WithField(ctx, "policy", policy.name), "auth.rate_limit.store_failed", err)
		}
		return false
	}
	return !allowed
}

func respondRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy AuthRateLimitPolicy, fields map[string]any) {
	if logg != nil {
		fields["policy"] = policy.name
		fields["window_seconds"] = int(policy.window.Seconds())
		logg.Warn(logg.WithFields(ctx, fields), "auth.rate_limit.blocked")
	}
	w.Header().Set("Retry-After", strconv.Itoa(int(policy.window.Seconds())))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, msgTooManyAttempts))
}

func clientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

// subjectOf picks the account a recovery or login attempt targets.
func subjectOf(payload []byte) (kind, hash string) {
	var body struct {
		Email string `json:"email"`
		Token string `json:"token"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return "", ""
	}
	if email := normalizeEmail(body.Email); email != "" {
		return "email", hashValue(email)
	}
	if token := strings.TrimSpace(body.Token); token != "" {
		return "token", hashValue(token)
	}
	return "", ""
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
