package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"studyguru-quiz-service/internal/app"
	"studyguru-quiz-service/internal/domain"
)

// ShareCache caches code lookups with TTL to avoid repeated DB hits.
// Misses are never cached so a freshly shared code resolves immediately.
type ShareCache struct {
	finder app.ShareFinder
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedShare
}

type cachedShare struct {
	share     domain.ShareRecord
	expiresAt time.Time
}

func NewShareCache(finder app.ShareFinder, ttl time.Duration) *ShareCache {
	return &ShareCache{
		finder: finder,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedShare),
	}
}

// FindShareByCode shares one backend lookup between concurrent callers. The lookup does not
// inherit a caller's cancellation; each caller stops waiting when its own context ends.
func (c *ShareCache) FindShareByCode(ctx context.Context, code string) (domain.ShareRecord, error) {
	if c.ttl <= 0 {
		return c.finder.FindShareByCode(ctx, code)
	}
	if share, ok := c.lookup(code); ok {
		return share, nil
	}

	ch := c.sf.DoChan(code, func() (interface{}, error) {
		if share, ok := c.lookup(code); ok {
			return share, nil
		}
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), app.DefaultLookupTimeout)
		defer cancel()
		share, err := c.finder.FindShareByCode(lookupCtx, code)
		if err != nil {
			return domain.ShareRecord{}, err
		}

		c.mu.Lock()
		c.cache[code] = cachedShare{
			share:     share,
			expiresAt: c.clock().Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return share, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return domain.ShareRecord{}, res.Err
		}
		return res.Val.(domain.ShareRecord), nil
	case <-ctx.Done():
		return domain.ShareRecord{}, ctx.Err()
	}
}

// EvictQuiz drops every cached code that resolves to quizID.
func (c *ShareCache) EvictQuiz(_ context.Context, quizID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for code, entry := range c.cache {
		if entry.share.QuizID == quizID {
			delete(c.cache, code)
		}
	}
	return nil
}

func (c *ShareCache) lookup(code string) (domain.ShareRecord, bool) {
	now := c.clock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[code]
	if !ok || !entry.expiresAt.After(now) {
		return domain.ShareRecord{}, false
	}
	return entry.share, true
}

func (c *ShareCache) ttlWithJitter() time.Duration {
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
