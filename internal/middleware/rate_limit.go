// internal/middleware/rate_limit.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/ipforge/ipforge-backend/internal/utils"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterPool hands out one token bucket per client IP and forgets clients
// that have gone quiet.
type limiterPool struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit   rate.Limit
	burst   int
}

func newLimiterPool(limit rate.Limit, burst int) *limiterPool {
	p := &limiterPool{
		clients: make(map[string]*clientLimiter),
		limit:   limit,
		burst:   burst,
	}
	go p.prune()
	return p
}

func (p *limiterPool) prune() {
	for range time.Tick(time.Minute) {
		p.mu.Lock()
		for ip, c := range p.clients {
			if time.Since(c.lastSeen) > 3*time.Minute {
				delete(p.clients, ip)
			}
		}
		p.mu.Unlock()
	}
}

func (p *limiterPool) allow(ip string) bool {
	p.mu.Lock()
	c, ok := p.clients[ip]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(p.limit, p.burst)}
		p.clients[ip] = c
	}
	c.lastSeen = time.Now()
	limiter := c.limiter
	p.mu.Unlock()

	return limiter.Allow()
}

func (p *limiterPool) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !p.allow(c.ClientIP()) {
			utils.ErrorResponse(c, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests, slow down", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Tiers: registry reads and writes share the generous API bucket;
// credential endpoints and content uploads are kept tight.
var (
	apiPool    = newLimiterPool(rate.Every(time.Second), 10)
	authPool   = newLimiterPool(rate.Every(time.Minute), 5)
	uploadPool = newLimiterPool(rate.Every(time.Minute), 10)
)

func APIRateLimit() gin.HandlerFunc    { return apiPool.middleware() }
func AuthRateLimit() gin.HandlerFunc   { return authPool.middleware() }
func UploadRateLimit() gin.HandlerFunc { return uploadPool.middleware() }
