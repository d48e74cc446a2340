package inkpost

import (
	"sync"
	"time"
)

// LoginLimiter throttles failed sign-ins per client IP over a sliding
// window. Successful sign-ins never count against an IP.
type LoginLimiter struct {
	mu       sync.Mutex
	failures map[string][]time.Time // per IP, oldest first
	max      int
	window   time.Duration
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewLoginLimiter allows max failures per IP within window. It starts a
// sweeper goroutine; call Stop to end it.
func NewLoginLimiter(max int, window time.Duration) *LoginLimiter {
	l := &LoginLimiter{
		failures: make(map[string][]time.Time),
		max:      max,
		window:   window,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go l.sweepLoop()
	return l
}

func (l *LoginLimiter) sweepLoop() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

// sweep forgets IPs whose failures have all expired.
func (l *LoginLimiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-l.window)
	for ip := range l.failures {
		l.recent(ip, cutoff)
	}
}

// recent drops failures at or before cutoff and returns the rest.
// l.mu must be held.
func (l *LoginLimiter) recent(ip string, cutoff time.Time) []time.Time {
	hits := l.failures[ip]
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	hits = hits[i:]
	if len(hits) == 0 {
		delete(l.failures, ip)
		return nil
	}
	l.failures[ip] = hits
	return hits
}

// Blocked reports whether ip has used up its failures. When it has, wait is
// how long until the next attempt will be let through.
func (l *LoginLimiter) Blocked(ip string) (blocked bool, wait time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	hits := l.recent(ip, now.Add(-l.window))
	if len(hits) < l.max {
		return false, 0
	}
	return true, hits[len(hits)-l.max].Add(l.window).Sub(now)
}

// Fail records a failed sign-in from ip.
func (l *LoginLimiter) Fail(ip string) {
	l.mu.Lock()
	l.failures[ip] = append(l.failures[ip], l.now())
	l.mu.Unlock()
}

// Reset forgets ip's failures, e.g. after it signs in successfully.
func (l *LoginLimiter) Reset(ip string) {
	l.mu.Lock()
	delete(l.failures, ip)
	l.mu.Unlock()
}

// Stop ends the sweeper. It is safe to call more than once.
func (l *LoginLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}
