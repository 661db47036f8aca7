package matching

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"trade-journal-lab/internal/domain"
)

// partition is the slice of the sorted input that belongs to one asset key.
type partition struct {
	key   domain.AssetKey
	items []*normalized
	pos   []int // position of each item in the sorted input
	inv   *Inventory
	out   []taggedTrade
}

type taggedTrade struct {
	pos   int
	trade *domain.ClosedTrade
}

// MatchParallel matches executions with one goroutine per asset key, bounded
// by workers (<= 0 means unbounded).
//
// Keys never share state, so each partition runs against its own inventory.
// Closed trades are merged back by the position of their closing execution
// in the sorted input and inventories in first-seen key order, which makes
// the result identical to Match. ctx is checked before each partition starts.
func (e *Engine) MatchParallel(ctx context.Context, execs []*domain.Execution, workers int) (*Result, error) {
	valid, skipped := e.prepare(execs)

	parts := make([]*partition, 0)
	byKey := make(map[domain.AssetKey]*partition)
	for pos, n := range valid {
		p, ok := byKey[n.key]
		if !ok {
			p = &partition{key: n.key, inv: NewInventory()}
			byKey[n.key] = p
			parts = append(parts, p)
		}
		p.items = append(p.items, n)
		p.pos = append(p.pos, pos)
	}

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for _, p := range parts {
		p := p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("match %s: %w", p.key, err)
			}
			for i, n := range p.items {
				for _, ct := range p.inv.apply(n) {
					p.out = append(p.out, taggedTrade{pos: p.pos[i], trade: ct})
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var tagged []taggedTrade
	inv := NewInventory()
	for _, p := range parts {
		tagged = append(tagged, p.out...)
		inv.adopt(p.key, p.inv)
	}
	sort.SliceStable(tagged, func(i, j int) bool {
		return tagged[i].pos < tagged[j].pos
	})

	var closed []*domain.ClosedTrade
	for _, t := range tagged {
		closed = append(closed, t.trade)
	}

	e.logger.WithFields(logrus.Fields{
		"partitions": len(parts),
		"closed":     len(closed),
		"skipped":    len(skipped),
	}).Debug("parallel match complete")

	return &Result{
		Closed:    closed,
		Open:      inv.OpenPositions(),
		Skipped:   skipped,
		Inventory: inv,
	}, nil
}

// MatchParallel is a convenience wrapper around Engine.MatchParallel with a
// discarding logger.
func MatchParallel(ctx context.Context, execs []*domain.Execution, workers int) (*Result, error) {
	return NewEngine(nil).MatchParallel(ctx, execs, workers)
}
