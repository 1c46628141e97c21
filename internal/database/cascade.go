package database

import (
	"context"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Fanout runs fn once per item concurrently and waits for all of them.
// The first failure cancels the shared context and is returned; there is no
// partial-success result.
//
// fn must not be called inside a transaction: on sqlite the pool has a single
// connection and a transaction would hold it for the whole fan-out.
func Fanout[T any](db *gorm.DB, items []T, fn func(db *gorm.DB, item *T) error) error {
	if len(items) == 0 {
		return nil
	}

	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range items {
		item := &items[i]
		g.Go(func() error {
			return fn(db.WithContext(gctx), item)
		})
	}
	return g.Wait()
}
