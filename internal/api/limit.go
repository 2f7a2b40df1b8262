package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/time/rate"
)

// clientLimiter hands out one token bucket per client key.
type clientLimiter struct {
	buckets *lru.Cache
	limit   rate.Limit
	burst   int
}

func newClientLimiter(perMinute, size int) *clientLimiter {
	if size <= 0 {
		size = 4096
	}
	buckets, _ := lru.New(size)
	l := &clientLimiter{buckets: buckets, limit: rate.Inf, burst: 1}
	if perMinute > 0 {
		l.limit = rate.Every(time.Minute / time.Duration(perMinute))
		l.burst = max(perMinute/6, 1)
	}
	return l
}

func (l *clientLimiter) allow(key string) bool {
	if l.limit == rate.Inf {
		return true
	}
	if v, ok := l.buckets.Get(key); ok {
		return v.(*rate.Limiter).Allow()
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	l.buckets.Add(key, lim)
	return lim.Allow()
}

// rateLimit throttles the endpoints it guards per client IP.
func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, slow down"})
			return
		}
		c.Next()
	}
}
