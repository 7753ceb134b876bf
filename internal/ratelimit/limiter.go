// Package ratelimit throttles team regeneration per event and per client IP.
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Clock interface for testing time-dependent behavior.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Config holds rate limit configuration.
type Config struct {
	EventCooldown time.Duration // Minimum time between generations of the same event
	MaxIPPerHour  int           // Max generations per client IP per hour

	// Clock for testing (nil uses real time)
	Clock Clock
}

func DefaultConfig() *Config {
	return &Config{
		EventCooldown: 10 * time.Second,
		MaxIPPerHour:  60,
	}
}

// LimitResult contains the result of a rate limit check.
type LimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
	Reason     string // For logging
}

type entry struct {
	count   int
	firstAt time.Time // First request in window
	lastAt  time.Time // Most recent request (for cooldown)
}

// Limiter tracks generation attempts in memory. A zero EventCooldown or
// MaxIPPerHour disables that layer.
type Limiter struct {
	config  *Config
	clock   Clock
	mu      sync.RWMutex
	byEvent map[string]*entry
	byIP    map[string]*entry

	cleanupCtx    context.Context
	cleanupCancel context.CancelFunc
	cleanupOnce   sync.Once
	cleanupWg     sync.WaitGroup
}

func New(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Limiter{
		config:        cfg,
		clock:         clock,
		byEvent:       make(map[string]*entry),
		byIP:          make(map[string]*entry),
		cleanupCtx:    ctx,
		cleanupCancel: cancel,
	}
}

// Close stops the cleanup goroutine.
func (l *Limiter) Close() {
	l.cleanupCancel()
	l.cleanupWg.Wait()
}

// CheckGenerate reports whether a generation for eventID from ip may proceed.
// It does not record the attempt; call RecordGenerate once it succeeds.
func (l *Limiter) CheckGenerate(eventID, ip string) LimitResult {
	l.startCleanup()
	now := l.clock.Now()

	l.mu.RLock()
	defer l.mu.RUnlock()

	if e := l.byEvent[normalizeKey(eventID)]; e != nil && l.config.EventCooldown > 0 {
		if elapsed := now.Sub(e.lastAt); elapsed < l.config.EventCooldown {
			return LimitResult{
				Allowed:    false,
				RetryAfter: l.config.EventCooldown - elapsed,
				Reason:     "event_cooldown",
			}
		}
	}

	if e := l.byIP[ip]; e != nil && l.config.MaxIPPerHour > 0 {
		if now.Sub(e.firstAt) < time.Hour && e.count >= l.config.MaxIPPerHour {
			return LimitResult{
				Allowed:    false,
				RetryAfter: time.Hour - now.Sub(e.firstAt),
				Reason:     "ip_hourly_limit",
			}
		}
	}

	return LimitResult{Allowed: true}
}

// RecordGenerate records a completed generation.
func (l *Limiter) RecordGenerate(eventID, ip string) {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	eventKey := normalizeKey(eventID)
	if e := l.byEvent[eventKey]; e == nil {
		l.byEvent[eventKey] = &entry{count: 1, firstAt: now, lastAt: now}
	} else {
		e.count++
		e.lastAt = now
	}

	if e := l.byIP[ip]; e == nil || now.Sub(e.firstAt) >= time.Hour {
		l.byIP[ip] = &entry{count: 1, firstAt: now, lastAt: now}
	} else {
		e.count++
		e.lastAt = now
	}
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func (l *Limiter) startCleanup() {
	l.cleanupOnce.Do(func() {
		l.cleanupWg.Add(1)
		go func() {
			defer l.cleanupWg.Done()
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-l.cleanupCtx.Done():
					return
				case <-ticker.C:
					l.cleanup()
				}
			}
		}()
	})
}

func (l *Limiter) cleanup() {
	now := l.clock.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	for k, e := range l.byEvent {
		if now.Sub(e.lastAt) > l.config.EventCooldown {
			delete(l.byEvent, k)
		}
	}
	for k, e := range l.byIP {
		if now.Sub(e.lastAt) > time.Hour {
			delete(l.byIP, k)
		}
	}
}

// GetClientIP extracts the client IP from a request.
// When trustProxy is true, uses the rightmost public IP from X-Forwarded-For.
// When trustProxy is false, X-Forwarded-For is ignored.
func GetClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			for i := len(parts) - 1; i >= 0; i-- {
				ip := strings.TrimSpace(parts[i])
				if ip != "" && !isPrivateIP(ip) {
					return ip
				}
			}
			return strings.TrimSpace(parts[len(parts)-1])
		}

		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

var privateNetworks []*net.IPNet

func init() {
	privateRanges := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"::1/128",
		"fc00::/7",
		"fe80::/10",
	}
	for _, cidr := range privateRanges {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic("invalid private CIDR: " + cidr)
		}
		privateNetworks = append(privateNetworks, network)
	}
}

func isPrivateIP(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	if ipv4 := ip.To4(); ipv4 != nil {
		ip = ipv4
	}
	for _, network := range privateNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// LogRateLimitExceeded logs a throttled generation.
func LogRateLimitExceeded(ctx context.Context, eventID, ip string, result LimitResult) {
	log.Ctx(ctx).Warn().
		Str("event", "rate_limit_exceeded").
		Str("event_id", eventID).
		Str("ip", ip).
		Str("reason", result.Reason).
		Dur("retry_after", result.RetryAfter).
		Msg("Team generation rate limit exceeded")
}
