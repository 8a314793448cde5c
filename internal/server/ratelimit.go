package server

import (
	"fmt"
	"sync"
	"time"
)

// RateLimiter caps the number of requests a client may make per minute.
// Each client gets a fixed one-minute window that starts with its first
// request.
type RateLimiter struct {
	mu sync.Mutex

	requestsPerMinute int
	clients           map[string]*clientWindow
	now               func() time.Time
}

type clientWindow struct {
	start time.Time
	count int
}

// NewRateLimiter creates a limiter allowing requestsPerMinute requests per
// client. A non-positive limit allows everything.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		clients:           make(map[string]*clientWindow),
		now:               time.Now,
	}
}

// Allow records a request from clientID, or returns a *RateLimitError when
// the client has used up its window.
func (rl *RateLimiter) Allow(clientID string) error {
	if rl.requestsPerMinute <= 0 {
		return nil
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	win, ok := rl.clients[clientID]
	if !ok || now.Sub(win.start) >= time.Minute {
		win = &clientWindow{start: now}
		rl.clients[clientID] = win
	}

	if win.count >= rl.requestsPerMinute {
		return &RateLimitError{
			Limit:      rl.requestsPerMinute,
			RetryAfter: time.Minute - now.Sub(win.start),
		}
	}
	win.count++
	rl.prune(now)
	return nil
}

// Usage returns the number of requests clientID made in its current window.
func (rl *RateLimiter) Usage(clientID string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	win, ok := rl.clients[clientID]
	if !ok || rl.now().Sub(win.start) >= time.Minute {
		return 0
	}
	return win.count
}

// prune drops expired windows once the table grows.
func (rl *RateLimiter) prune(now time.Time) {
	if len(rl.clients) < 1024 {
		return
	}
	for id, win := range rl.clients {
		if now.Sub(win.start) >= time.Minute {
			delete(rl.clients, id)
		}
	}
}

// RateLimitError represents a rate limit violation.
type RateLimitError struct {
	Limit      int           // the limit that was exceeded
	RetryAfter time.Duration // how long to wait before retrying
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded (limit: %d per minute, retry after: %v)", e.Limit, e.RetryAfter)
}
