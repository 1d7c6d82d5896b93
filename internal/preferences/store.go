// Package preferences stores small per-session values such as the preferred
// language and the medical professional confirmation.
package preferences

import (
	"errors"
	"strings"

	"github.com/pharmaweb/sitecms/pkg/interfaces"
)

// Well-known preference names.
const (
	KeyLanguage                     = "language"
	KeyMedicalProfessionalConfirmed = "medical_professional_confirmed"
)

var (
	ErrScopeRequired    = errors.New("preferences: scope is required")
	ErrKeyRequired      = errors.New("preferences: key is required")
	ErrDatabaseRequired = errors.New("preferences: bun store requires a database")
)

func normalize(scope, key string) (string, string, error) {
	scope = strings.TrimSpace(scope)
	key = strings.TrimSpace(key)
	if scope == "" {
		return "", "", ErrScopeRequired
	}
	if key == "" {
		return "", "", ErrKeyRequired
	}
	return scope, key, nil
}

var (
	_ interfaces.PreferenceStore = (*MemoryStore)(nil)
	_ interfaces.PreferenceStore = (*BunStore)(nil)
)
