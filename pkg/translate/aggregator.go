package translate

import (
	"context"
	"sync"
	"time"

	"github.com/readlex/readlex/pkg/logger"
)

const defaultLookupTimeout = 10 * time.Second

// Aggregator fans a word out to every provider that has no stored result
// yet and joins the answers. Provider failures are absorbed: a failed or
// timed-out lookup becomes an explicit null entry so the word is not
// retried forever.
type Aggregator struct {
	providers []Provider
	timeout   time.Duration
}

func NewAggregator(providers []Provider, timeout time.Duration) *Aggregator {
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	return &Aggregator{providers: providers, timeout: timeout}
}

// Backfill returns existing plus one entry per previously-unqueried
// provider. Lookups run concurrently and all of them are awaited; the first
// success does not short-circuit the rest, since every result is persisted.
// When existing already covers all providers no network calls happen and the
// input map is returned as-is.
func (a *Aggregator) Backfill(ctx context.Context, word string, existing map[string]*string) map[string]*string {
	var pending []Provider
	for _, p := range a.providers {
		if _, ok := existing[p.Name()]; !ok {
			pending = append(pending, p)
		}
	}
	if len(pending) == 0 {
		return existing
	}

	results := make([]*string, len(pending))
	var wg sync.WaitGroup
	for i, p := range pending {
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()
			lookupCtx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			translated, err := p.Lookup(lookupCtx, word)
			if err != nil {
				logger.Debug("translation lookup failed", "provider", p.Name(), "word", word, "error", err)
				return
			}
			results[i] = &translated
		}(i, p)
	}
	wg.Wait()

	merged := make(map[string]*string, len(existing)+len(pending))
	for name, value := range existing {
		merged[name] = value
	}
	for i, p := range pending {
		merged[p.Name()] = results[i]
	}
	return merged
}
