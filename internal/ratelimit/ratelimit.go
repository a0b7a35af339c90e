// Package ratelimit holds the request limiters. Both implementations are
// explicit objects owned by main; nothing here is process-global.
package ratelimit

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

type Limiter interface {
	// Allow reports whether one more request for key may proceed.
	Allow(ctx context.Context, key string) (bool, error)
}

type entry struct {
	lim  *rate.Limiter
	seen time.Time
}

// Memory keeps one token bucket per key. Idle buckets are dropped by the
// janitor started with Start.
type Memory struct {
	mu      sync.Mutex
	buckets map[string]*entry
	rate    rate.Limit
	burst   int
	idle    time.Duration
	now     func() time.Time

	stop chan struct{}
	done chan struct{}
}

func NewMemory(perSecond float64, burst int) *Memory {
	return &Memory{
		buckets: map[string]*entry{},
		rate:    rate.Limit(perSecond),
		burst:   burst,
		idle:    10 * time.Minute,
		now:     time.Now,
	}
}

// PerMinute builds a Memory limiter allowing n requests a minute, all of
// which may burst.
func PerMinute(n int) *Memory {
	return NewMemory(float64(n)/60, n)
}

func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	e, ok := m.buckets[key]
	if !ok {
		e = &entry{lim: rate.NewLimiter(m.rate, m.burst)}
		m.buckets[key] = e
	}
	now := m.now()
	e.seen = now
	m.mu.Unlock()
	return e.lim.AllowN(now, 1), nil
}

// Start runs the janitor until Stop.
func (m *Memory) Start(interval time.Duration) {
	m.stop, m.done = make(chan struct{}), make(chan struct{})
	go func() {
		defer close(m.done)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				m.sweep()
			case <-m.stop:
				return
			}
		}
	}()
}

func (m *Memory) Stop() {
	if m.stop == nil {
		return
	}
	close(m.stop)
	<-m.done
	m.stop = nil
}

func (m *Memory) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-m.idle)
	for k, e := range m.buckets {
		if e.seen.Before(cutoff) {
			delete(m.buckets, k)
		}
	}
}

func (m *Memory) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buckets)
}

// Redis is a fixed-window counter shared by every replica.
type Redis struct {
	rdb    redis.Cmdable
	prefix string
	limit  int64
	window time.Duration
	now    func() time.Time
}

func NewRedis(rdb redis.Cmdable, prefix string, limit int, window time.Duration) *Redis {
	return &Redis{rdb: rdb, prefix: prefix, limit: int64(limit), window: window, now: time.Now}
}

func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	slot := r.now().UnixNano() / int64(r.window)
	k := r.prefix + ":" + key + ":" + strconv.FormatInt(slot, 10)

	pipe := r.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, r.window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, err
	}
	return incr.Val() <= r.limit, nil
}
