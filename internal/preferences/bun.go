package preferences

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Preference is one stored value in the preferences table.
type Preference struct {
	bun.BaseModel `bun:"table:preferences,alias:pref"`

	ID        uuid.UUID `bun:",pk,type:uuid"`
	Scope     string    `bun:"scope,notnull,unique:scope_name"`
	Name      string    `bun:"name,notnull,unique:scope_name"`
	Value     string    `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// BunStore persists preferences with bun. Set is a single upsert on
// (scope, name), so concurrent writers for the same session do not race.
type BunStore struct {
	db  *bun.DB
	now func() time.Time
}

// BunStoreOption configures the bun store.
type BunStoreOption func(*BunStore)

// WithStoreClock overrides the clock used for updated_at.
func WithStoreClock(now func() time.Time) BunStoreOption {
	return func(s *BunStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewBunStore(db *bun.DB, opts ...BunStoreOption) *BunStore {
	s := &BunStore{db: db, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *BunStore) Get(ctx context.Context, scope, key string) (string, bool, error) {
	scope, key, err := normalize(scope, key)
	if err != nil {
		return "", false, err
	}
	if s.db == nil {
		return "", false, ErrDatabaseRequired
	}
	var model Preference
	err = s.db.NewSelect().
		Model(&model).
		Where("?TableAlias.scope = ?", scope).
		Where("?TableAlias.name = ?", key).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return model.Value, true, nil
}

func (s *BunStore) Set(ctx context.Context, scope, key, value string) error {
	scope, key, err := normalize(scope, key)
	if err != nil {
		return err
	}
	if s.db == nil {
		return ErrDatabaseRequired
	}
	model := &Preference{
		ID:        uuid.New(),
		Scope:     scope,
		Name:      key,
		Value:     value,
		UpdatedAt: s.now().UTC(),
	}
	_, err = s.db.NewInsert().
		Model(model).
		On("CONFLICT (scope, name) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *BunStore) Delete(ctx context.Context, scope, key string) error {
	scope, key, err := normalize(scope, key)
	if err != nil {
		return err
	}
	if s.db == nil {
		return ErrDatabaseRequired
	}
	_, err = s.db.NewDelete().
		Model((*Preference)(nil)).
		Where("scope = ?", scope).
		Where("name = ?", key).
		Exec(ctx)
	return err
}
