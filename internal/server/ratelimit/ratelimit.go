// Package ratelimit provides per-client, per-endpoint rate limiting over token buckets.
package ratelimit

import (
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

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	DefaultBurst    int
	CleanupInterval time.Duration
	// IdleTimeout is how long an unused bucket is kept.
	IdleTimeout     time.Duration
	Whitelist       map[string]bool
	EndpointConfigs []EndpointConfig
}

type bucket struct {
	limiter    *rate.Limiter
	burst      int
	lastAccess time.Time
}

// Limiter manages rate limiting for multiple clients.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	config  *Config
	now     func() time.Time

	cleanupStop chan struct{}
	stopOnce    sync.Once
}

// NewLimiter creates a new rate limiter with the given configuration.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = NewConfig(1000.0/60, 1000)
	}

	l := &Limiter{
		buckets: make(map[string]*bucket),
		config:  config,
		now:     time.Now,
	}

	if config.Enabled && config.CleanupInterval > 0 {
		l.cleanupStop = make(chan struct{})
		go l.cleanup(config.CleanupInterval)
	}
	return l
}

// Allow checks if a request from the given client is allowed for the specified endpoint.
func (l *Limiter) Allow(clientID, endpoint, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}

	ec := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	if ec == nil {
		ec = &EndpointConfig{
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
			Burst:  l.config.DefaultBurst,
		}
	}
	if ec.Limit <= 0 || ec.Window <= 0 {
		return true, Info{Allowed: true}
	}

	now := l.now()
	b := l.getBucket(clientID+":"+endpoint+":"+method, ec, now)

	allowed := b.limiter.AllowN(now, 1)
	tokens := b.limiter.TokensAt(now)
	perSecond := float64(b.limiter.Limit())

	info := Info{
		Allowed:   allowed,
		Limit:     ec.Limit,
		Remaining: max(0, int(tokens)),
		ResetTime: now.Add(secondsToDuration((float64(b.burst) - tokens) / perSecond)),
	}
	if !allowed {
		info.RetryAfter = secondsToDuration((1 - tokens) / perSecond)
	}
	return allowed, info
}

func (l *Limiter) getBucket(key string, ec *EndpointConfig, now time.Time) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		burst := ec.Burst
		if burst <= 0 {
			burst = ec.Limit
		}
		every := ec.Window / time.Duration(ec.Limit)
		b = &bucket{limiter: rate.NewLimiter(rate.Every(every), burst), burst: burst}
		l.buckets[key] = b
	}
	b.lastAccess = now
	return b
}

func (l *Limiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanupBuckets()
		case <-l.cleanupStop:
			return
		}
	}
}

// cleanupBuckets removes buckets idle for longer than IdleTimeout.
func (l *Limiter) cleanupBuckets() {
	idle := l.config.IdleTimeout
	if idle <= 0 {
		idle = time.Hour
	}
	cutoff := l.now().Add(-idle)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if b.lastAccess.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// Stop stops the cleanup goroutine.
func (l *Limiter) Stop() {
	if l.cleanupStop == nil {
		return
	}
	l.stopOnce.Do(func() { close(l.cleanupStop) })
}

func secondsToDuration(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}
