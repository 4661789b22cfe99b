// Package ratelimit throttles inbound events per user with a sliding window.
package ratelimit

import (
	"context"
	"time"
)

type Config struct {
	Events   int
	Interval time.Duration
}

// Limiter reports whether one more event for key fits in the window and, if
// so, counts it.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Unlimited lets everything through. Used when limiting is switched off.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string) (bool, error) { return true, nil }
