// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/agentdesk/internal/platform/apperr"
	"github.com/taibuivan/agentdesk/internal/platform/constants"
	"github.com/taibuivan/agentdesk/internal/platform/respond"
)

// RatePolicy configures a [RateLimiter].
type RatePolicy struct {
	// PerSecond is the sustained request rate per client address.
	PerSecond float64

	// Burst is the bucket size.
	Burst int

	// IdleTTL is how long an untouched bucket is kept.
	IdleTTL time.Duration

	// SweepEvery is the interval between idle bucket sweeps.
	SweepEvery time.Duration
}

// DefaultRatePolicy returns the production limits.
func DefaultRatePolicy() RatePolicy {
	return RatePolicy{
		PerSecond:  constants.DefaultRateLimitRPS,
		Burst:      constants.DefaultRateLimitBurst,
		IdleTTL:    constants.RateLimitClientTTL,
		SweepEvery: constants.RateLimitCleanupInterval,
	}
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client address.
type RateLimiter struct {
	policy RatePolicy
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

// NewRateLimiter constructs a [RateLimiter]. Call [RateLimiter.Run] to
// release idle buckets.
func NewRateLimiter(policy RatePolicy) *RateLimiter {
	return &RateLimiter{
		policy:  policy,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// Run sweeps idle buckets until ctx is cancelled.
func (limiter *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(limiter.policy.SweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			limiter.sweep()
		case <-ctx.Done():
			return
		}
	}
}

func (limiter *RateLimiter) sweep() {
	cutoff := limiter.now().Add(-limiter.policy.IdleTTL)

	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	for address, entry := range limiter.buckets {
		if entry.lastSeen.Before(cutoff) {
			delete(limiter.buckets, address)
		}
	}
}

// Handler rejects requests over the limit with 429 and a Retry-After header.
func (limiter *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		allowed, wait := limiter.take(RealIP(request))
		if !allowed {
			seconds := int(math.Ceil(wait.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			writer.Header().Set("Retry-After", strconv.Itoa(seconds))
			respond.Error(writer, request, apperr.RateLimited(seconds))
			return
		}

		next.ServeHTTP(writer, request)
	})
}

// take spends one token for address and reports the wait when none is left.
func (limiter *RateLimiter) take(address string) (bool, time.Duration) {
	now := limiter.now()

	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	entry, found := limiter.buckets[address]
	if !found {
		entry = &bucket{limiter: rate.NewLimiter(rate.Limit(limiter.policy.PerSecond), limiter.policy.Burst)}
		limiter.buckets[address] = entry
	}
	entry.lastSeen = now

	if entry.limiter.AllowN(now, 1) {
		return true, 0
	}

	reservation := entry.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return false, time.Second
	}
	wait := reservation.DelayFrom(now)
	reservation.CancelAt(now)
	return false, wait
}

// tracked reports how many client buckets are held.
func (limiter *RateLimiter) tracked() int {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	return len(limiter.buckets)
}
