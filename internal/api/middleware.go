// internal/api/middleware.go
package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// SignerHeader names the account a mutating request acts for.
const SignerHeader = "X-Genesis-Signer"

const signerKey = "signer"

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("Request failed", fields...)
			return
		}
		logger.Debug("Request served", fields...)
	}
}

func requireSigner() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(SignerHeader)
		if raw == "" {
			abort(c, http.StatusUnauthorized, "missing_signer", "missing "+SignerHeader+" header")
			return
		}
		signer, err := solana.PublicKeyFromBase58(raw)
		if err != nil {
			abort(c, http.StatusBadRequest, "invalid_signer", "invalid signer: "+err.Error())
			return
		}
		c.Set(signerKey, signer)
		c.Next()
	}
}

func signerFrom(c *gin.Context) solana.PublicKey {
	v, _ := c.Get(signerKey)
	signer, _ := v.(solana.PublicKey)
	return signer
}

// RateLimit configures a per-client token bucket.
type RateLimit struct {
	PerSecond float64
	Burst     int
}

func (l RateLimit) enabled() bool { return l.PerSecond > 0 && l.Burst > 0 }

type limiterMap struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    RateLimit
}

const maxTrackedClients = 1000

func (m *limiterMap) get(ip string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.limiters[ip]
	if !ok {
		if len(m.limiters) >= maxTrackedClients {
			m.limiters = make(map[string]*rate.Limiter)
		}
		l = rate.NewLimiter(rate.Limit(m.limit.PerSecond), m.limit.Burst)
		m.limiters[ip] = l
	}
	return l
}

func rateLimiter(limit RateLimit) gin.HandlerFunc {
	m := &limiterMap{limiters: make(map[string]*rate.Limiter), limit: limit}
	return func(c *gin.Context) {
		l := m.get(c.ClientIP())
		if !l.Allow() {
			r := l.Reserve()
			retryAfter := r.DelayFrom(time.Now())
			r.Cancel()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":        "rate_limited",
				"error":       "rate limit exceeded",
				"retry_after": retryAfter.Seconds(),
			})
			return
		}
		c.Next()
	}
}
