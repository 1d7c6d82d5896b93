package testsupport

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// NewIsolatedSQLiteMemoryDB opens a named in-memory database so tests in the
// same package do not share tables.
func NewIsolatedSQLiteMemoryDB(name string) (*sql.DB, error) {
	name = strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(name)
	return sql.Open("sqlite3", fmt.Sprintf("file:%s-%s?mode=memory&cache=shared", name, uuid.NewString()))
}

// NewBunSQLite returns a bun DB over an isolated in-memory database with a
// table created for each model. The database is closed when tb finishes.
func NewBunSQLite(tb testing.TB, models ...any) *bun.DB {
	tb.Helper()
	sqlDB, err := NewIsolatedSQLiteMemoryDB(tb.Name())
	if err != nil {
		tb.Fatalf("new sqlite db: %v", err)
	}
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(1)
	tb.Cleanup(func() {
		_ = db.Close()
	})

	ctx := context.Background()
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			tb.Fatalf("create table for %T: %v", model, err)
		}
	}
	return db
}
