package preferences_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/pharmaweb/sitecms/internal/preferences"
	"github.com/pharmaweb/sitecms/pkg/interfaces"
	"github.com/pharmaweb/sitecms/pkg/testsupport"
)

func storeContract(t *testing.T, store interfaces.PreferenceStore) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "sess-1", preferences.KeyLanguage); err != nil || ok {
		t.Fatalf("expected missing preference, ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "sess-1", preferences.KeyLanguage, "uz"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "sess-1", preferences.KeyLanguage, "ru"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	value, ok, err := store.Get(ctx, "sess-1", preferences.KeyLanguage)
	if err != nil || !ok || value != "ru" {
		t.Fatalf("expected overwritten value ru, got %q ok=%v err=%v", value, ok, err)
	}

	if _, ok, _ := store.Get(ctx, "sess-2", preferences.KeyLanguage); ok {
		t.Fatalf("expected scopes to be isolated")
	}

	if err := store.Delete(ctx, "sess-1", preferences.KeyLanguage); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "sess-1", preferences.KeyLanguage); ok {
		t.Fatalf("expected preference to be deleted")
	}
	if err := store.Delete(ctx, "sess-1", preferences.KeyLanguage); err != nil {
		t.Fatalf("deleting a missing key must not fail: %v", err)
	}

	if err := store.Set(ctx, " ", preferences.KeyLanguage, "en"); !errors.Is(err, preferences.ErrScopeRequired) {
		t.Fatalf("expected ErrScopeRequired, got %v", err)
	}
	if _, _, err := store.Get(ctx, "sess-1", ""); !errors.Is(err, preferences.ErrKeyRequired) {
		t.Fatalf("expected ErrKeyRequired, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, preferences.NewMemoryStore())
}

func TestBunStore(t *testing.T) {
	db := testsupport.NewBunSQLite(t, (*preferences.Preference)(nil))
	storeContract(t, preferences.NewBunStore(db))
}

func TestMemoryStoreConcurrentWriters(t *testing.T) {
	store := preferences.NewMemoryStore()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Set(ctx, "sess", preferences.KeyMedicalProfessionalConfirmed, "true")
		}()
	}
	wg.Wait()
	if value, ok, _ := store.Get(ctx, "sess", preferences.KeyMedicalProfessionalConfirmed); !ok || value != "true" {
		t.Fatalf("expected confirmation to be stored, got %q", value)
	}
}
