package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mrlokans/bookcatalog/internal/auth"
	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/database"
	"github.com/mrlokans/bookcatalog/internal/database/users"
)

// CreateUserCommand registers an account without going through the API.
type CreateUserCommand struct {
	Email    string
	Name     string
	Password string

	cfg    *config.Config
	stdin  io.Reader
	stdout io.Writer
}

// NewCreateUserCommand creates a new CreateUserCommand
func NewCreateUserCommand(cfg *config.Config) *CreateUserCommand {
	return &CreateUserCommand{cfg: cfg, stdin: os.Stdin, stdout: os.Stdout}
}

// ParseFlags parses command line flags
func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)

	fs.StringVar(&cmd.Email, "email", "", "Email address of the new user (required)")
	fs.StringVar(&cmd.Name, "name", "", "Display name")
	fs.StringVar(&cmd.Password, "password", "", "Password; read from stdin when omitted")
	fs.StringVar(&cmd.cfg.Database.Path, "db", cmd.cfg.Database.Path, "Path to the sqlite catalog database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user -email <email> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a user that can log in to the catalog API.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  echo 'secret-password' | %s create-user -email admin@example.com -name Admin\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Email == "" {
		return errors.New("-email is required")
	}
	return nil
}

// Run executes the create-user command
func (cmd *CreateUserCommand) Run(ctx context.Context) error {
	if cmd.Password == "" {
		line, err := bufio.NewReader(cmd.stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read password: %w", err)
		}
		cmd.Password = strings.TrimRight(line, "\r\n")
	}

	db, err := openDatabase(cmd.cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	service := auth.NewService(users.NewRepository(db), nil, nil, cmd.cfg.Auth)
	user, err := service.Register(ctx, cmd.Email, cmd.Name, cmd.Password)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.stdout, "Created user %d (%s)\n", user.ID, user.Email)
	return nil
}

func openDatabase(cfg *config.Config) (*database.Database, error) {
	return database.NewDatabase(database.Options{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	})
}
