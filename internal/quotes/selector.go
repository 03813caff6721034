// Package quotes picks deliverable content for a language.
package quotes

import (
	"context"
	"errors"
	"math/rand"
	"sync"

	"github.com/inqilobchi/iqtibosbot/internal/domain"
)

// ErrNoQuotes signals that no content exists for the requested language.
var ErrNoQuotes = errors.New("no quotes for language")

// Store is the subset of the repository the selector needs.
type Store interface {
	CountQuotes(ctx context.Context, lang domain.Language) (int, error)
	QuoteAt(ctx context.Context, lang domain.Language, offset int) (*domain.Quote, error)
}

// Selector draws a uniformly random quote in a given language.
type Selector struct {
	store Store

	mu  sync.Mutex
	rnd *rand.Rand
}

// New creates a Selector. rnd may be nil, in which case a time-seeded source
// is used; tests inject a fixed seed.
func New(store Store, rnd *rand.Rand) *Selector {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Selector{store: store, rnd: rnd}
}

// Pick returns one quote in lang, or ErrNoQuotes when none exist.
// A quote added between the count and the fetch merely skews the draw by one
// offset; the result is still some quote of the right language.
func (s *Selector) Pick(ctx context.Context, lang domain.Language) (*domain.Quote, error) {
	n, err := s.store.CountQuotes(ctx, lang)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNoQuotes
	}

	s.mu.Lock()
	idx := s.rnd.Intn(n)
	s.mu.Unlock()

	return s.store.QuoteAt(ctx, lang, idx)
}
