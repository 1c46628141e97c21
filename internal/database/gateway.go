package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookcatalog/internal/apperrors"
)

// OperationObserver receives the outcome of every gateway operation.
// metrics.Collector satisfies it.
type OperationObserver interface {
	ObserveOperation(operation, outcome string, elapsed time.Duration)
}

// Run executes one repository operation against a fresh session bound to ctx.
//
// The deferred cleanup always runs: it translates store errors into the
// apperrors taxonomy, logs the outcome and reports it to the observer,
// whichever way fn returns (including a panic, which is re-raised).
func (d *Database) Run(ctx context.Context, op string, fn func(db *gorm.DB) error) (err error) {
	start := time.Now()
	session := d.DB.Session(&gorm.Session{NewDB: true, Context: ctx})

	defer func() {
		if r := recover(); r != nil {
			d.finish(op, start, apperrors.Storage(fmt.Errorf("panic: %v", r), op))
			panic(r)
		}
		err = TranslateError(err, op)
		d.finish(op, start, err)
	}()

	return fn(session)
}

// Transaction runs fn inside a single store transaction within Run's scope.
// fn must issue every statement through the tx it receives.
func (d *Database) Transaction(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	return d.Run(ctx, op, func(db *gorm.DB) error {
		return db.Transaction(fn)
	})
}

func (d *Database) finish(op string, start time.Time, err error) {
	elapsed := time.Since(start)
	outcome := string(apperrors.KindOf(err))

	if d.observer != nil {
		d.observer.ObserveOperation(op, outcome, elapsed)
	}

	switch apperrors.KindOf(err) {
	case "":
		d.log.Debug("storage operation", "op", op, "elapsed", elapsed)
	case apperrors.KindStorage:
		d.log.Error("storage operation failed", "op", op, "elapsed", elapsed, "error", err)
	default:
		d.log.Debug("storage operation rejected", "op", op, "kind", outcome, "error", err)
	}
}

// TranslateError maps raw store errors onto the apperrors taxonomy. Errors
// that already carry a Kind pass through unchanged.
func TranslateError(err error, op string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.As(err); ok {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.Wrap(apperrors.KindNotFound, err, "record not found")
	}
	if IsDuplicateError(err) {
		return apperrors.Wrap(apperrors.KindConflict, err, "record already exists")
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Storage(err, op+": interrupted")
	}
	return apperrors.Storage(err, op)
}
