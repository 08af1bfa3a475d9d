package snapshot

import (
	"context"
	"sync"
)

// Provider serializes snapshot loads behind the cache so concurrent
// requests share one load instead of hammering the source.
type Provider struct {
	Loader *Loader
	Cache  *Cache

	loadMu sync.Mutex
}

// Snapshot returns the cached snapshot or loads a fresh one. force
// bypasses the cache.
func (p *Provider) Snapshot(ctx context.Context, force bool) (*Snapshot, error) {
	if !force {
		if s, ok := p.Cache.Get(); ok {
			return s, nil
		}
	}

	p.loadMu.Lock()
	defer p.loadMu.Unlock()

	if !force {
		if s, ok := p.Cache.Get(); ok {
			return s, nil
		}
	}

	s, err := p.Loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	p.Cache.Set(s)
	return s, nil
}

// Refresh drops the cache and loads a fresh snapshot.
func (p *Provider) Refresh(ctx context.Context) (*Snapshot, error) {
	p.Cache.Invalidate()
	return p.Snapshot(ctx, true)
}
