// Package batch drives a per-item handler over a candidate set in bounded
// concurrent chunks, pacing between chunks to respect transport rate limits.
package batch

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultSize  = 50
	DefaultDelay = 2 * time.Second
)

// Config tunes a Batcher. Zero values fall back to the defaults above.
type Config struct {
	Size  int           // max in-flight handlers per chunk
	Delay time.Duration // pause between chunks
	// Limiter, when set, additionally bounds the sustained handler start
	// rate across chunks.
	Limiter *rate.Limiter
}

// Batcher partitions work into chunks of at most Size items, runs the
// handler concurrently within a chunk, waits for the chunk to settle, then
// sleeps Delay before the next one. Handler failures are logged and swallowed;
// one failing item never aborts the rest.
type Batcher[T any] struct {
	cfg Config
	log *zap.Logger
}

func New[T any](cfg Config, log *zap.Logger) *Batcher[T] {
	if cfg.Size <= 0 {
		cfg.Size = DefaultSize
	}
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultDelay
	}
	return &Batcher[T]{cfg: cfg, log: log}
}

// Run processes items chunk by chunk until done or ctx is canceled.
// Context cancellation is observed between chunks; in-flight handlers are
// left to finish.
func (b *Batcher[T]) Run(ctx context.Context, items []T, handler func(context.Context, T) error) {
	for start := 0; start < len(items); start += b.cfg.Size {
		end := start + b.cfg.Size
		if end > len(items) {
			end = len(items)
		}
		chunk := items[start:end]

		var wg sync.WaitGroup
		for _, item := range chunk {
			if b.cfg.Limiter != nil {
				if err := b.cfg.Limiter.Wait(ctx); err != nil {
					// Canceled mid-chunk: drain the handlers already
					// launched before returning.
					wg.Wait()
					return
				}
			}
			wg.Add(1)
			go func(it T) {
				defer wg.Done()
				if err := handler(ctx, it); err != nil {
					b.log.Warn("batch handler failed", zap.Error(err))
				}
			}(item)
		}
		wg.Wait()

		if end == len(items) {
			break // nothing after the last chunk, skip the pause
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(b.cfg.Delay):
		}
	}
}
