// Package migrations applies the embedded SQL schema with bun's migrator.
package migrations

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"github.com/pharmaweb/sitecms/internal/logging"
	"github.com/pharmaweb/sitecms/pkg/interfaces"
)

var (
	ErrDatabaseRequired   = errors.New("migrations: database is required")
	ErrMigrationsRequired = errors.New("migrations: migration files are required")
)

// Runner applies *.up.sql / *.down.sql files found at the root of an fs.FS.
type Runner struct {
	migrator *migrate.Migrator
	logger   interfaces.Logger
}

// NewRunner discovers the migrations in fsys. fsys must hold the files at its
// root; use fs.Sub for embedded trees.
func NewRunner(db *bun.DB, fsys fs.FS, logger interfaces.Logger) (*Runner, error) {
	if db == nil {
		return nil, ErrDatabaseRequired
	}
	if fsys == nil {
		return nil, ErrMigrationsRequired
	}
	set := migrate.NewMigrations()
	if err := set.Discover(fsys); err != nil {
		return nil, fmt.Errorf("migrations: discover: %w", err)
	}
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Runner{
		migrator: migrate.NewMigrator(db, set),
		logger:   logger,
	}, nil
}

// Up applies every pending migration and returns the names applied.
func (r *Runner) Up(ctx context.Context) ([]string, error) {
	if err := r.migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("migrations: init: %w", err)
	}
	group, err := r.migrator.Migrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrations: migrate: %w", err)
	}
	if group.IsZero() {
		r.logger.Debug("migrations.up.noop")
		return nil, nil
	}
	names := make([]string, 0, len(group.Migrations))
	for _, m := range group.Migrations {
		names = append(names, m.Name)
	}
	r.logger.Info("migrations.up.applied", "group", group.ID, "count", len(names))
	return names, nil
}

// Down rolls back the last applied group.
func (r *Runner) Down(ctx context.Context) ([]string, error) {
	if err := r.migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("migrations: init: %w", err)
	}
	group, err := r.migrator.Rollback(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrations: rollback: %w", err)
	}
	if group.IsZero() {
		return nil, nil
	}
	names := make([]string, 0, len(group.Migrations))
	for _, m := range group.Migrations {
		names = append(names, m.Name)
	}
	r.logger.Info("migrations.down.rolled_back", "group", group.ID, "count", len(names))
	return names, nil
}

// Pending lists migrations that have not been applied yet.
func (r *Runner) Pending(ctx context.Context) ([]string, error) {
	if err := r.migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("migrations: init: %w", err)
	}
	status, err := r.migrator.MigrationsWithStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrations: status: %w", err)
	}
	unapplied := status.Unapplied()
	names := make([]string, 0, len(unapplied))
	for _, m := range unapplied {
		names = append(names, m.Name)
	}
	return names, nil
}
