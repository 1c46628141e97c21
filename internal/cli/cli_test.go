package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/database/users"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Database: config.Database{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "catalog.db")},
		Auth:     config.Auth{BcryptCost: 4},
	}
}

func TestCreateUserCommand_ParseFlags(t *testing.T) {
	cfg := testConfig(t)
	cmd := NewCreateUserCommand(cfg)

	err := cmd.ParseFlags([]string{"-email", "admin@example.com", "-name", "Admin", "-db", "/tmp/other.db"})

	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", cmd.Email)
	assert.Equal(t, "Admin", cmd.Name)
	assert.Equal(t, "/tmp/other.db", cfg.Database.Path)

	assert.Error(t, NewCreateUserCommand(testConfig(t)).ParseFlags([]string{"-name", "Admin"}))
}

func TestCreateUserCommand_Run(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer
	cmd := NewCreateUserCommand(cfg)
	cmd.stdin = strings.NewReader("correct-horse-battery\n")
	cmd.stdout = &out
	require.NoError(t, cmd.ParseFlags([]string{"-email", "Admin@Example.com"}))

	require.NoError(t, cmd.Run(context.Background()))
	assert.Contains(t, out.String(), "admin@example.com")

	db, err := openDatabase(cfg)
	require.NoError(t, err)
	defer db.Close()
	user, err := users.NewRepository(db).GetUserByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, user.PasswordHash)
}

func TestCreateUserCommand_RejectsShortPassword(t *testing.T) {
	cmd := NewCreateUserCommand(testConfig(t))
	cmd.stdout = &bytes.Buffer{}
	require.NoError(t, cmd.ParseFlags([]string{"-email", "admin@example.com", "-password", "short"}))

	assert.Error(t, cmd.Run(context.Background()))
}

func TestPruneLinksCommand_Run(t *testing.T) {
	var out bytes.Buffer
	cmd := NewPruneLinksCommand(testConfig(t))
	cmd.stdout = &out
	require.NoError(t, cmd.ParseFlags(nil))

	require.NoError(t, cmd.Run(context.Background()))
	assert.Contains(t, out.String(), "Pruned 0 rows")
}
