package gateway

import (
	"context"
	"net"
	"sync"
	"time"
)

const (
	authRateWindow   = 5 * time.Minute
	authRateMaxFails = 10
	authRateMaxIPs   = 10000 // max tracked IPs to prevent memory exhaustion
)

// authRateLimiter tracks failed auth attempts per IP. Both the WebSocket
// handshake and bearer-authenticated HTTP routes report failures here.
type authRateLimiter struct {
	mu       sync.Mutex
	failures map[string][]time.Time
	now      func() time.Time
}

func newAuthRateLimiter() *authRateLimiter {
	return &authRateLimiter{
		failures: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// run prunes stale entries every minute until ctx ends.
func (l *authRateLimiter) run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.prune()
		}
	}
}

func (l *authRateLimiter) prune() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-authRateWindow)
	for ip, times := range l.failures {
		if recent := since(times, cutoff); len(recent) == 0 {
			delete(l.failures, ip)
		} else {
			l.failures[ip] = recent
		}
	}
}

func (l *authRateLimiter) allow(remoteAddr string) bool {
	host := hostOf(remoteAddr)

	l.mu.Lock()
	defer l.mu.Unlock()

	recent := since(l.failures[host], l.now().Add(-authRateWindow))
	if len(recent) == 0 {
		delete(l.failures, host)
		return true
	}
	l.failures[host] = recent
	return len(recent) < authRateMaxFails
}

func (l *authRateLimiter) recordFailure(remoteAddr string) {
	host := hostOf(remoteAddr)

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.failures[host]; !exists && len(l.failures) >= authRateMaxIPs {
		l.evictOldestLocked()
	}
	l.failures[host] = append(l.failures[host], l.now())
}

func (l *authRateLimiter) evictOldestLocked() {
	var oldestIP string
	var oldestTime time.Time
	for ip, times := range l.failures {
		if len(times) > 0 && (oldestIP == "" || times[0].Before(oldestTime)) {
			oldestIP = ip
			oldestTime = times[0]
		}
	}
	if oldestIP != "" {
		delete(l.failures, oldestIP)
	}
}

func (l *authRateLimiter) tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.failures)
}

// since filters times in place, keeping those after cutoff.
func since(times []time.Time, cutoff time.Time) []time.Time {
	kept := times[:0]
	for _, t := range times {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

func hostOf(remoteAddr string) string {
	host, _, _ := net.SplitHostPort(remoteAddr)
	if host == "" {
		return remoteAddr
	}
	return host
}
