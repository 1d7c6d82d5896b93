package interfaces

import "context"

// PreferenceStore persists small per-visitor values such as the preferred
// language or the medical professional confirmation. Scope is usually a
// session identifier.
type PreferenceStore interface {
	Get(ctx context.Context, scope, key string) (string, bool, error)
	Set(ctx context.Context, scope, key, value string) error
	Delete(ctx context.Context, scope, key string) error
}
