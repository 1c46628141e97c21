package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/database/maintenance"
)

// PruneLinksCommand runs one dangling-link sweep in the foreground.
type PruneLinksCommand struct {
	cfg    *config.Config
	stdout io.Writer
}

func NewPruneLinksCommand(cfg *config.Config) *PruneLinksCommand {
	return &PruneLinksCommand{cfg: cfg, stdout: os.Stdout}
}

// ParseFlags parses command line flags
func (cmd *PruneLinksCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("prune-links", flag.ContinueOnError)
	fs.StringVar(&cmd.cfg.Database.Path, "db", cmd.cfg.Database.Path, "Path to the sqlite catalog database")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s prune-links [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Delete book links and ratings that point at removed rows.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}
	return fs.Parse(args)
}

// Run executes the prune-links command
func (cmd *PruneLinksCommand) Run(ctx context.Context) error {
	db, err := openDatabase(cmd.cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	report, err := maintenance.NewPruner(db, nil).PruneDanglingLinks(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.stdout, "Pruned %d rows (book_authors: %d, book_categories: %d, ratings: %d)\n",
		report.Total(), report.BookAuthors, report.BookCategories, report.Ratings)
	return nil
}
