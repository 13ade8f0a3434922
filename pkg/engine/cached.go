package engine

import (
	"context"
	"time"

	"github.com/matzehuels/dotview/pkg/cache"
	"github.com/matzehuels/dotview/pkg/logging"
	"github.com/matzehuels/dotview/pkg/observability"
)

// Cached serves repeated renders of the same descriptor from a cache.
//
// Only successful output is stored. Cache backend errors never fail a render:
// a failed read falls through to the inner renderer and a failed write is
// logged at debug level.
type Cached struct {
	Inner Renderer
	Cache cache.Cache
	Keyer cache.Keyer
	TTL   time.Duration
}

// NewCached wraps inner with c using the default keyer and TTL.
func NewCached(inner Renderer, c cache.Cache) *Cached {
	return &Cached{
		Inner: inner,
		Cache: c,
		Keyer: cache.NewDefaultKeyer(),
		TTL:   cache.DefaultTTL,
	}
}

// Name returns the inner renderer's name.
func (c *Cached) Name() string { return c.Inner.Name() }

// Render implements Renderer.
func (c *Cached) Render(ctx context.Context, descriptor string, format Format) (Output, error) {
	logger := logging.FromContext(ctx)
	hooks := observability.Cache()
	key := c.keyer().RenderKey(c.Inner.Name(), string(format), descriptor)

	data, hit, err := c.Cache.Get(ctx, key)
	if err != nil {
		logger.Debug("cache read failed", "err", err)
	}
	if hit {
		out := Output{Format: format, Data: data}
		if accept(&out) == nil {
			hooks.OnCacheHit(ctx, "render")
			return out, nil
		}
		_ = c.Cache.Delete(ctx, key)
	}
	hooks.OnCacheMiss(ctx, "render")

	out, err := c.Inner.Render(ctx, descriptor, format)
	if err != nil {
		return Output{}, err
	}

	if err := c.Cache.Set(ctx, key, out.Data, c.TTL); err != nil {
		logger.Debug("cache write failed", "err", err)
	} else {
		hooks.OnCacheSet(ctx, "render", len(out.Data))
	}
	return out, nil
}

func (c *Cached) keyer() cache.Keyer {
	if c.Keyer == nil {
		return cache.NewDefaultKeyer()
	}
	return c.Keyer
}

var _ Renderer = (*Cached)(nil)
