package ratelimit

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/retailgrid/orderdesk/internal/config"
	"github.com/retailgrid/orderdesk/internal/observability/logger"
	"github.com/retailgrid/orderdesk/internal/observability/metrics"
	"go.uber.org/zap"
)

// Limiter guards the write-heavy endpoints with per-store token buckets.
// A nil Limiter (rate limiting disabled) allows everything.
type Limiter struct {
	bucket  *TokenBucket
	cfg     config.RateLimitConfig
	metrics *metrics.Metrics
}

func NewLimiter(cfg config.Config, bucket *TokenBucket, m *metrics.Metrics) *Limiter {
	if !cfg.RateLimit.Enabled || bucket == nil {
		return nil
	}
	return &Limiter{bucket: bucket, cfg: cfg.RateLimit, metrics: m}
}

// OrderSubmit limits order submission per store.
func (l *Limiter) OrderSubmit() gin.HandlerFunc {
	if l == nil {
		return passthrough
	}
	return l.middleware("order_submit", l.rateFor("order_submit"), l.burstFor("order_submit"))
}

// ProductSearch limits catalog search per store.
func (l *Limiter) ProductSearch() gin.HandlerFunc {
	if l == nil {
		return passthrough
	}
	return l.middleware("product_search", l.rateFor("product_search"), l.burstFor("product_search"))
}

func passthrough(c *gin.Context) {
	c.Next()
}

func (l *Limiter) rateFor(endpoint string) float64 {
	if endpoint == "order_submit" {
		return l.cfg.OrderSubmitRate
	}
	return l.cfg.ProductSearchRate
}

func (l *Limiter) burstFor(endpoint string) int {
	if endpoint == "order_submit" {
		return l.cfg.OrderSubmitBurst
	}
	return l.cfg.ProductSearchBurst
}

func (l *Limiter) middleware(endpoint string, rate float64, burst int) gin.HandlerFunc {
	return func(c *gin.Context) {
		storeID := strings.TrimSpace(c.Query("store_id"))
		if storeID == "" {
			storeID = strings.TrimSpace(c.GetHeader("X-Store-Id"))
		}
		if storeID == "" {
			storeID = "anonymous"
		}

		key := "ratelimit:" + endpoint + ":" + storeID
		result, err := l.bucket.Allow(c.Request.Context(), key, rate, burst)
		if err != nil {
			// Redis failure never blocks traffic.
			logger.FromContext(c.Request.Context()).Warn("rate limit check failed",
				zap.String("endpoint", endpoint),
				zap.Error(err),
			)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

		if !result.Allowed {
			l.metrics.RecordRateLimitDenied(c.Request.Context(), storeID, endpoint, "bucket_empty")
			retryAfter := int(result.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate_limit_exceeded",
			})
			return
		}

		l.metrics.RecordRateLimitAllowed(c.Request.Context(), storeID, endpoint)
		c.Next()
	}
}
