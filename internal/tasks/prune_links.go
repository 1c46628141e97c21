package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookcatalog/internal/database/maintenance"
	"github.com/mrlokans/bookcatalog/internal/logger"
)

const PruneDanglingLinksQueue = "prune_dangling_links"

// LinkPruner removes association rows and ratings that point at deleted rows.
type LinkPruner interface {
	PruneDanglingLinks(ctx context.Context) (maintenance.Report, error)
}

// PruneDanglingLinksTask sweeps the join tables and ratings. Trigger records
// who enqueued it ("cron" or "admin").
type PruneDanglingLinksTask struct {
	Trigger string `json:"trigger"`
}

// Config returns the queue configuration for pruning tasks.
func (t PruneDanglingLinksTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        PruneDanglingLinksQueue,
		MaxAttempts: 2,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// PruneDanglingLinksProcessor creates a processor function for PruneDanglingLinksTask.
func PruneDanglingLinksProcessor(pruner LinkPruner, log *logger.Logger) backlite.QueueProcessor[PruneDanglingLinksTask] {
	if log == nil {
		log = logger.NewNop()
	}
	return func(ctx context.Context, task PruneDanglingLinksTask) error {
		if pruner == nil {
			return fmt.Errorf("link pruner not configured")
		}

		report, err := pruner.PruneDanglingLinks(ctx)
		if err != nil {
			return fmt.Errorf("prune dangling links: %w", err)
		}

		log.Info("pruned dangling links",
			"trigger", task.Trigger,
			"book_authors", report.BookAuthors,
			"book_categories", report.BookCategories,
			"ratings", report.Ratings,
		)
		return nil
	}
}

// NewPruneDanglingLinksQueue creates a backlite queue for pruning tasks.
func NewPruneDanglingLinksQueue(pruner LinkPruner, log *logger.Logger) backlite.Queue {
	return backlite.NewQueue(PruneDanglingLinksProcessor(pruner, log))
}
