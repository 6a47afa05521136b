package server

import (
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/inviteportal/internal/observability/logger"
	"go.uber.org/zap"
)

// InviteRateLimit throttles invite submissions per client IP.
func (s *Server) InviteRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		clientIP := c.ClientIP()

		res, err := s.limiter.Allow(ctx, clientIP)
		if err != nil {
			logger.FromContext(ctx).Warn("invite rate limit check failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

		if !res.Allowed {
			logger.FromContext(ctx).Warn("invite rate limit exceeded", zap.String("client_ip", clientIP))
			s.metrics.RecordRateLimited()
			c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(res.RetryAfter)))
			AbortWithError(c, ErrRateLimited)
			return
		}

		c.Next()
	}
}

func retryAfterSeconds(d time.Duration) int {
	seconds := int(math.Ceil(d.Seconds()))
	if seconds < 1 {
		return 1
	}
	return seconds
}
