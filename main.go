package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mrlokans/bookcatalog/internal/cli"
	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/entrypoint"
	"github.com/mrlokans/bookcatalog/internal/logger"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

type subcommand interface {
	ParseFlags(args []string) error
	Run(ctx context.Context) error
}

func main() {
	config.LoadDotEnv()
	cfg := config.NewConfig()

	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer log.Sync()

		if err := entrypoint.Run(cfg, log.With("commit", Commit), Version); err != nil {
			log.Fatal("server stopped", "error", err)
		}
		return
	}

	command := os.Args[1]
	args := os.Args[2:]

	var cmd subcommand
	switch command {
	case "create-user":
		cmd = cli.NewCreateUserCommand(cfg)
	case "prune-links":
		cmd = cli.NewPruneLinksCommand(cfg)
	case "-h", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if err := cmd.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve         Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  create-user   Create a user account\n")
	fmt.Fprintf(os.Stderr, "  prune-links   Remove book links and ratings pointing at deleted rows\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
