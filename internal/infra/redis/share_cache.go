package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"studyguru-quiz-service/internal/app"
	"studyguru-quiz-service/internal/domain"
)

// ShareCache caches resolved share records in Redis and falls back to a finder on cache miss.
// Records are stored as JSON: SET share:code:{code} {record} EX ttl
// Codes are indexed per quiz for eviction: SADD share:quiz:{quizID} {code}
// Not-found results are never cached.
type ShareCache struct {
	client *redis.Client
	finder app.ShareFinder
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewShareCache(client *redis.Client, finder app.ShareFinder, ttl time.Duration) *ShareCache {
	return &ShareCache{
		client: client,
		finder: finder,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *ShareCache) FindShareByCode(ctx context.Context, code string) (domain.ShareRecord, error) {
	if c.ttl <= 0 {
		return c.finder.FindShareByCode(ctx, code)
	}
	key := shareKey(code)
	if share, ok := c.cached(ctx, key); ok {
		return share, nil
	}

	// The shared lookup outlives any single caller's cancellation.
	ch := c.sf.DoChan(code, func() (interface{}, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), app.DefaultLookupTimeout)
		defer cancel()

		// Re-check cache in case another goroutine filled it.
		if share, ok := c.cached(lookupCtx, key); ok {
			return share, nil
		}
		share, err := c.finder.FindShareByCode(lookupCtx, code)
		if err != nil {
			return domain.ShareRecord{}, err
		}
		if err := c.store(lookupCtx, share); err != nil {
			log.Printf("cache share %s: %v", code, err)
		}
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
func (c *ShareCache) EvictQuiz(ctx context.Context, quizID string) error {
	index := quizKey(quizID)
	codes, err := c.client.SMembers(ctx, index).Result()
	if err != nil {
		return fmt.Errorf("load cached codes: %w", err)
	}
	keys := make([]string, 0, len(codes)+1)
	for _, code := range codes {
		keys = append(keys, shareKey(code))
	}
	keys = append(keys, index)
	return c.client.Del(ctx, keys...).Err()
}

func (c *ShareCache) store(ctx context.Context, share domain.ShareRecord) error {
	payload, err := json.Marshal(share)
	if err != nil {
		return err
	}
	ttl := c.ttlWithJitter()
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, shareKey(share.AccessCode), payload, ttl)
		pipe.SAdd(ctx, quizKey(share.QuizID), share.AccessCode)
		pipe.Expire(ctx, quizKey(share.QuizID), c.ttl+c.ttl/10)
		return nil
	})
	return err
}

func (c *ShareCache) cached(ctx context.Context, key string) (domain.ShareRecord, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("read share cache %s: %v", key, err)
		}
		return domain.ShareRecord{}, false
	}
	var share domain.ShareRecord
	if err := json.Unmarshal(raw, &share); err != nil {
		return domain.ShareRecord{}, false
	}
	return share, true
}

func shareKey(code string) string {
	return "share:code:" + code
}

func quizKey(quizID string) string {
	return "share:quiz:" + quizID
}

func (c *ShareCache) ttlWithJitter() time.Duration {
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
