package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"wipecert/internal/domain"

	"github.com/gin-gonic/gin"
)

const (
	routeVerify  = "certificates:verify"
	routeDetails = "certificates:details"
)

// rateLimit keys the public read endpoints by client address. Issuance is not
// limited here: it is gated by the ledger cost checks instead.
func (s *Server) rateLimit(routeID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.rateLimiter == nil || s.rateLimitRequests <= 0 {
			return
		}
		key := fmt.Sprintf("ip:%s:endpoint:%s", c.ClientIP(), routeID)
		decision, err := s.rateLimiter.Allow(c.Request.Context(), key, s.rateLimitRequests, s.rateLimitWindow)
		if err != nil {
			if s.rateLimitFailClosed {
				writeErrorCode(c, http.StatusTooManyRequests, "RATE_LIMIT_UNAVAILABLE", "rate limiter unavailable")
				return
			}
			return
		}
		writeRateLimitHeaders(c, decision)
		if !decision.Allowed {
			writeErrorCode(c, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded")
		}
	}
}

func writeRateLimitHeaders(c *gin.Context, decision domain.RateLimitDecision) {
	if decision.Limit > 0 {
		c.Header("RateLimit-Limit", strconv.Itoa(decision.Limit))
	}
	if decision.Remaining >= 0 {
		c.Header("RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	}
	if !decision.ResetAt.IsZero() {
		resetUnix := decision.ResetAt.Unix()
		c.Header("RateLimit-Reset", strconv.FormatInt(resetUnix, 10))
		if !decision.Allowed {
			retryAfter := int64(time.Until(decision.ResetAt).Seconds())
			if retryAfter < 0 {
				retryAfter = 0
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
		}
	}
}
