package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/otpstudio/studio-server-go/internal/audit"
	"github.com/otpstudio/studio-server-go/internal/service"
)

// IPRateLimitMiddleware applies the server-wide inbound request cap, keyed
// by client IP. It can be disabled wholesale via configuration, which is
// routine during local debugging.
type IPRateLimitMiddleware struct {
	limiter *service.RateLimiter
	limit   int
	window  time.Duration
	enabled bool
}

func NewIPRateLimitMiddleware(limiter *service.RateLimiter, limit int, window time.Duration, enabled bool) *IPRateLimitMiddleware {
	return &IPRateLimitMiddleware{
		limiter: limiter,
		limit:   limit,
		window:  window,
		enabled: enabled,
	}
}

func (m *IPRateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled {
			next.ServeHTTP(w, r)
			return
		}

		ip := r.RemoteAddr

		key := fmt.Sprintf("ip:%s", ip)
		allowed, resetAt := m.limiter.CheckLimit(r.Context(), key, m.limit, m.window)

		if !allowed {
			log.Warn().Str("ip", ip).Msg("inbound rate limit exceeded")
			audit.Log(r.Context(), audit.Event{
				Type: audit.EventRateLimitExceed,
				IP:   ip,
				Details: map[string]interface{}{
					"path": r.URL.Path,
				},
			})
			secondsLeft := int(time.Until(resetAt).Seconds()) + 1
			w.Header().Set("Retry-After", fmt.Sprintf("%d", secondsLeft))
			writeJSON(w, http.StatusTooManyRequests, map[string]string{
				"error": "Too many requests. Please try again later.",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
