package server

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ipLimiter applies a token-bucket rate limit per client IP. The client map
// is bounded: stale entries are evicted once maxClients is reached, so
// memory does not grow with the number of distinct clients.
type ipLimiter struct {
	mu sync.Mutex

	limit      rate.Limit
	burst      int
	maxClients int
	ttl        time.Duration

	clients map[string]*ipClient
	now     func() time.Time
}

type ipClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPLimiter(limit rate.Limit, burst, maxClients int, ttl time.Duration) *ipLimiter {
	return &ipLimiter{
		limit:      limit,
		burst:      burst,
		maxClients: maxClients,
		ttl:        ttl,
		clients:    make(map[string]*ipClient),
		now:        time.Now,
	}
}

// Allow reports whether a request from ip may proceed.
func (l *ipLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	c, ok := l.clients[ip]
	if !ok {
		if len(l.clients) >= l.maxClients {
			l.evictLocked(now)
		}
		c = &ipClient{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = now

	return c.limiter.Allow()
}

// evictLocked drops entries idle longer than ttl; if none qualify it drops
// the least recently seen entry so a new client can always be admitted.
func (l *ipLimiter) evictLocked(now time.Time) {
	var (
		oldestIP   string
		oldestSeen time.Time
		evicted    bool
	)

	for ip, c := range l.clients {
		if now.Sub(c.lastSeen) > l.ttl {
			delete(l.clients, ip)
			evicted = true
			continue
		}
		if oldestIP == "" || c.lastSeen.Before(oldestSeen) {
			oldestIP = ip
			oldestSeen = c.lastSeen
		}
	}

	if !evicted && oldestIP != "" {
		delete(l.clients, oldestIP)
	}
}

// size returns the current number of tracked clients.
func (l *ipLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}
