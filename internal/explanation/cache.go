package explanation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	apperrors "scheme-eligibility/internal/common/errors"
	"scheme-eligibility/internal/common/metrics"
)

const cacheKeyPrefix = "explanation:"

// sharedCallTimeout caps a collapsed upstream call. The wrapped Service
// applies the configured, shorter timeout inside it.
const sharedCallTimeout = 2 * time.Minute

// CachedExplainer stores successful payloads in Redis and collapses
// concurrent identical requests into one upstream call. Redis failures fall
// through to the wrapped Explainer.
type CachedExplainer struct {
	next   Explainer
	rdb    redis.Cmdable
	ttl    time.Duration
	group  singleflight.Group
	logger Logger
}

func NewCachedExplainer(next Explainer, rdb redis.Cmdable, ttl time.Duration, log Logger) *CachedExplainer {
	return &CachedExplainer{
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		logger: log,
	}
}

// CacheKey hashes the scheme id, profile and ordered rule results.
func CacheKey(req Request) (string, error) {
	doc, err := json.Marshal(struct {
		SchemeID    string      `json:"schemeId"`
		Profile     interface{} `json:"profile"`
		RuleResults interface{} `json:"ruleResults"`
	}{req.Scheme.ID, req.Profile, req.RuleResults})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(doc)
	return cacheKeyPrefix + hex.EncodeToString(sum[:]), nil
}

func (c *CachedExplainer) Explain(ctx context.Context, req Request) (*Payload, error) {
	key, err := CacheKey(req)
	if err != nil {
		return c.next.Explain(ctx, req)
	}

	if payload, ok := c.lookup(ctx, key); ok {
		return payload, nil
	}

	// The shared call outlives any single caller; each caller stops waiting
	// when its own context ends.
	ch := c.group.DoChan(key, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedCallTimeout)
		defer cancel()
		return c.fetch(callCtx, key, req)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}
	v, shared := res.Val, res.Shared
	if shared {
		c.logger.Info("explanation request collapsed", map[string]interface{}{
			"schemeId": req.Scheme.ID,
		})
	}

	// Callers must not share the NextSteps backing array.
	p := *v.(*Payload)
	p.NextSteps = append([]string(nil), p.NextSteps...)
	return &p, nil
}

// fetch calls the wrapped Explainer and stores a success. A panic is turned
// into an error so that it reaches every waiting caller.
func (c *CachedExplainer) fetch(ctx context.Context, key string, req Request) (v interface{}, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			v = nil
			err = apperrors.NewExplanationFailedError(fmt.Errorf("panic: %v", rec))
		}
	}()
	payload, err := c.next.Explain(ctx, req)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, payload)
	return payload, nil
}

func (c *CachedExplainer) lookup(ctx context.Context, key string) (*Payload, bool) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		metrics.ExplanationCache.WithLabelValues("miss").Inc()
		return nil, false
	case err != nil:
		metrics.ExplanationCache.WithLabelValues("error").Inc()
		c.logger.Warn("explanation cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return nil, false
	}

	var payload Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		metrics.ExplanationCache.WithLabelValues("error").Inc()
		c.logger.Warn("explanation cache entry is corrupt", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return nil, false
	}
	metrics.ExplanationCache.WithLabelValues("hit").Inc()
	return &payload, true
}

func (c *CachedExplainer) store(ctx context.Context, key string, payload *Payload) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("explanation cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}
