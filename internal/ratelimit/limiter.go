// Package ratelimit implements the request governor shared by every call a
// facade issues. Binance enforces weighted request limits per IP and separate
// order-count limits per account, so the limiter supports both a weighted
// global limit and named buckets.
package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a weighted token-bucket rate limiter. The global limit covers
// request weight; named buckets cover independent limits such as order counts.
type Limiter struct {
	global  *rate.Limiter
	buckets sync.Map
	weight  int
	period  time.Duration
	metrics *Metrics
}

// Metrics tracks limiter usage counters.
type Metrics struct {
	totalWaits   atomic.Int64
	deniedWaits  atomic.Int64
	weightSpent  atomic.Int64
	bucketCount  atomic.Int32
}

// New creates a Limiter allowing the given total weight per period.
func New(weight int, period time.Duration) *Limiter {
	perSecond := float64(weight) / period.Seconds()
	return &Limiter{
		global:  rate.NewLimiter(rate.Limit(perSecond), weight),
		weight:  weight,
		period:  period,
		metrics: &Metrics{},
	}
}

// Wait blocks until one unit of weight is available or the context is
// cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.WaitN(ctx, 1)
}

// WaitN blocks until the given weight is available or the context is
// cancelled. Endpoint weights above the burst size are clamped so oversized
// requests degrade to a full-bucket wait instead of failing permanently.
func (l *Limiter) WaitN(ctx context.Context, weight int) error {
	if weight > l.weight {
		weight = l.weight
	}
	l.metrics.totalWaits.Add(1)
	if err := l.global.WaitN(ctx, weight); err != nil {
		l.metrics.deniedWaits.Add(1)
		return err
	}
	l.metrics.weightSpent.Add(int64(weight))
	return nil
}

// WaitBucket blocks on the named bucket's limiter. Buckets are created on
// demand with the limit given to SetBucketLimit, or the global limit if none
// was set.
func (l *Limiter) WaitBucket(ctx context.Context, bucket string) error {
	l.metrics.totalWaits.Add(1)
	if err := l.getBucket(bucket).Wait(ctx); err != nil {
		l.metrics.deniedWaits.Add(1)
		return err
	}
	l.metrics.weightSpent.Add(1)
	return nil
}

// Allow reports whether one unit of weight is available right now.
func (l *Limiter) Allow() bool {
	return l.global.Allow()
}

func (l *Limiter) getBucket(bucket string) *rate.Limiter {
	if v, ok := l.buckets.Load(bucket); ok {
		return v.(*rate.Limiter)
	}
	perSecond := float64(l.weight) / l.period.Seconds()
	limiter := rate.NewLimiter(rate.Limit(perSecond), l.weight)
	actual, loaded := l.buckets.LoadOrStore(bucket, limiter)
	if !loaded {
		l.metrics.bucketCount.Add(1)
	}
	return actual.(*rate.Limiter)
}

// SetLimit updates the global weight limit.
func (l *Limiter) SetLimit(weight int, period time.Duration) {
	l.weight = weight
	l.period = period
	l.global.SetLimit(rate.Limit(float64(weight) / period.Seconds()))
	l.global.SetBurst(weight)
}

// SetBucketLimit updates the limit for a named bucket, creating it if needed.
func (l *Limiter) SetBucketLimit(bucket string, requests int, period time.Duration) {
	b := l.getBucket(bucket)
	b.SetLimit(rate.Limit(float64(requests) / period.Seconds()))
	b.SetBurst(requests)
}

// Snapshot returns a point-in-time capture of the limiter counters.
func (l *Limiter) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		TotalWaits:  l.metrics.totalWaits.Load(),
		DeniedWaits: l.metrics.deniedWaits.Load(),
		WeightSpent: l.metrics.weightSpent.Load(),
		BucketCount: l.metrics.bucketCount.Load(),
	}
}

// MetricsSnapshot is a point-in-time capture of limiter counters.
type MetricsSnapshot struct {
	// TotalWaits is the number of wait calls issued.
	TotalWaits int64
	// DeniedWaits is the number of waits cancelled before a token was granted.
	DeniedWaits int64
	// WeightSpent is the total weight consumed by granted waits.
	WeightSpent int64
	// BucketCount is the number of named buckets in use.
	BucketCount int32
}
