package usecase

import (
	"context"
	"sync"

	"FinLevels/internal/domain/models"
)

// fetchEach runs fn for every symbol with at most limit calls in flight.
// Failures are isolated: a failed symbol lands in errs and the rest carry on.
func fetchEach[T any](ctx context.Context, symbols []string, limit int, fn func(context.Context, string) (T, error)) (map[string]T, map[string]string) {
	if limit <= 0 {
		limit = 1
	}
	type item struct {
		symbol string
		val    T
		err    error
	}

	ch := make(chan item, len(symbols))
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for _, s := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				ch <- item{symbol: symbol, err: ctx.Err()}
				return
			}
			defer func() { <-sem }()
			v, err := fn(ctx, symbol)
			ch <- item{symbol: symbol, val: v, err: err}
		}(s)
	}
	go func() { wg.Wait(); close(ch) }()

	vals := make(map[string]T, len(symbols))
	errs := map[string]string{}
	for it := range ch {
		if it.err != nil {
			errs[it.symbol] = it.err.Error()
			continue
		}
		vals[it.symbol] = it.val
	}
	if len(errs) == 0 {
		errs = nil
	}
	return vals, errs
}

// symbolsOf returns the distinct asset symbols in first-seen order.
func symbolsOf(assets []models.Asset) []string {
	seen := make(map[string]struct{}, len(assets))
	out := make([]string, 0, len(assets))
	for _, a := range assets {
		if _, ok := seen[a.Symbol]; ok || a.Symbol == "" {
			continue
		}
		seen[a.Symbol] = struct{}{}
		out = append(out, a.Symbol)
	}
	return out
}
