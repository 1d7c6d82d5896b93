package migrations_test

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/google/uuid"

	sitecms "github.com/pharmaweb/sitecms"
	"github.com/pharmaweb/sitecms/internal/migrations"
	"github.com/pharmaweb/sitecms/internal/posts"
	"github.com/pharmaweb/sitecms/pkg/testsupport"
)

func embeddedMigrations(t *testing.T) fs.FS {
	t.Helper()
	sub, err := fs.Sub(sitecms.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}
	return sub
}

func TestRunnerAppliesEmbeddedSchema(t *testing.T) {
	ctx := context.Background()
	db := testsupport.NewBunSQLite(t)

	runner, err := migrations.NewRunner(db, embeddedMigrations(t), nil)
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	pending, err := runner.Pending(ctx)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("expected 3 pending migrations, got %v", pending)
	}

	applied, err := runner.Up(ctx)
	if err != nil {
		t.Fatalf("up: %v", err)
	}
	if len(applied) != 3 {
		t.Fatalf("expected 3 applied migrations, got %v", applied)
	}

	again, err := runner.Up(ctx)
	if err != nil {
		t.Fatalf("second up: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected second run to be a no-op, got %v", again)
	}

	repo := posts.NewBunNewsRepository(db)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if _, err := repo.Create(ctx, &posts.Record{
		ID:        uuid.New(),
		Slug:      "schema-check",
		Title:     "Schema check",
		Content:   "<p>x</p>",
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("insert into migrated table: %v", err)
	}
	if _, err := repo.GetBySlug(ctx, "schema-check"); err != nil {
		t.Fatalf("read from migrated table: %v", err)
	}
}

func TestRunnerRequiresInputs(t *testing.T) {
	if _, err := migrations.NewRunner(nil, embeddedMigrations(t), nil); !errors.Is(err, migrations.ErrDatabaseRequired) {
		t.Fatalf("expected ErrDatabaseRequired, got %v", err)
	}
	db := testsupport.NewBunSQLite(t)
	if _, err := migrations.NewRunner(db, nil, nil); !errors.Is(err, migrations.ErrMigrationsRequired) {
		t.Fatalf("expected ErrMigrationsRequired, got %v", err)
	}
}
