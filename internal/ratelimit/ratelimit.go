// Package ratelimit bounds how often one client may hit the public endpoints.
// Limits are keyed by endpoint class and client IP.
package ratelimit

import (
	"context"
	"time"
)

// Class groups routes that share a budget.
type Class string

const (
	ClassVerify Class = "verify"
	ClassAuth   Class = "auth"
)

// Result describes the state of one key after a check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is the whole number of seconds until the window frees up.
func (r *Result) RetryAfter(now time.Time) int {
	secs := int(r.ResetAt.Sub(now).Seconds() + 0.999)
	if secs < 1 {
		return 1
	}
	return secs
}

// Store counts requests per key within a window.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

// Rule is the budget of one class.
type Rule struct {
	Limit  int
	Window time.Duration
}

func key(class Class, clientIP string) string {
	return "rl:" + string(class) + ":" + clientIP
}
