// Package ratelimit provides per-client rate limiting on top of golang.org/x/time/rate.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// Limiter manages rate limiting for multiple clients, one token bucket per
// client and endpoint.
type Limiter struct {
	mu            sync.Mutex
	clients       map[string]*clientLimiter
	config        *Config
	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
	stopOnce      sync.Once
	now           func() time.Time
}

// NewLimiter creates a new rate limiter with the given configuration.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    60,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
			IdleTimeout:     time.Hour,
		}
	}
	if config.Whitelist == nil {
		config.Whitelist = make(map[string]bool)
	}

	l := &Limiter{
		clients: make(map[string]*clientLimiter),
		config:  config,
		now:     time.Now,
	}

	if config.Enabled && config.CleanupInterval > 0 {
		l.cleanupTicker = time.NewTicker(config.CleanupInterval)
		l.cleanupStop = make(chan struct{})
		go l.cleanup()
	}

	return l
}

// Allow checks if a request from the given client is allowed for the specified endpoint.
// Returns true if allowed, false if rate limited, along with rate limit information.
func (l *Limiter) Allow(clientID string, path string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}

	endpoint := MatchEndpoint(path, method, l.config.EndpointConfigs)
	var key string
	if endpoint == nil {
		endpoint = &EndpointConfig{
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
			Burst:  l.config.DefaultBurst,
		}
		key = clientID + ":default"
	} else {
		// Prefix configs share one bucket across ids
		key = clientID + ":" + method + ":" + endpoint.Path
	}

	if endpoint.Limit <= 0 || endpoint.Window <= 0 {
		return true, Info{Allowed: true}
	}

	burst := endpoint.Burst
	if burst <= 0 {
		burst = endpoint.Limit
	}
	every := rate.Every(endpoint.Window / time.Duration(endpoint.Limit))

	now := l.now()
	lim := l.getLimiter(key, every, burst, now)
	allowed := lim.AllowN(now, 1)
	tokens := lim.TokensAt(now)

	info := Info{
		Allowed:   allowed,
		Limit:     endpoint.Limit,
		Remaining: max(0, int(math.Floor(tokens))),
		ResetTime: now.Add(untilTokens(float64(burst)-tokens, every)),
	}
	if !allowed {
		info.RetryAfter = untilTokens(1-tokens, every)
	}
	return allowed, info
}

// untilTokens returns how long it takes to refill n tokens at rate r.
func untilTokens(n float64, r rate.Limit) time.Duration {
	if n <= 0 || r <= 0 {
		return 0
	}
	return time.Duration(n / float64(r) * float64(time.Second))
}

func (l *Limiter) getLimiter(key string, r rate.Limit, burst int, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(r, burst)}
		l.clients[key] = c
	}
	c.lastAccess = now
	return c.limiter
}

func (l *Limiter) cleanup() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.cleanupClients()
		case <-l.cleanupStop:
			return
		}
	}
}

// cleanupClients drops limiters that have been idle longer than IdleTimeout.
func (l *Limiter) cleanupClients() {
	idle := l.config.IdleTimeout
	if idle <= 0 {
		idle = time.Hour
	}
	cutoff := l.now().Add(-idle)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, c := range l.clients {
		if c.lastAccess.Before(cutoff) {
			delete(l.clients, key)
		}
	}
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		if l.cleanupTicker != nil {
			l.cleanupTicker.Stop()
		}
		if l.cleanupStop != nil {
			close(l.cleanupStop)
		}
	})
}
