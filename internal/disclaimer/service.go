// Package disclaimer records that a visitor confirmed they are a medical
// professional before reading the medical journal.
package disclaimer

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/pharmaweb/sitecms/internal/logging"
	"github.com/pharmaweb/sitecms/internal/preferences"
	"github.com/pharmaweb/sitecms/pkg/interfaces"
)

var (
	ErrSessionRequired    = errors.New("disclaimer: session is required")
	ErrTextRequired       = errors.New("disclaimer: disclaimer text is required")
	ErrTextMismatch       = errors.New("disclaimer: disclaimer text does not match")
	ErrStoreNotConfigured = errors.New("disclaimer: preference store is not configured")
)

// Service confirms and checks the disclaimer per session.
type Service struct {
	store    interfaces.PreferenceStore
	required string
	now      func() time.Time
	logger   interfaces.Logger
}

// Option configures the service.
type Option func(*Service)

// WithRequiredText makes Confirm compare the submitted text against text.
func WithRequiredText(text string) Option {
	return func(s *Service) {
		s.required = collapse(text)
	}
}

// WithClock overrides the clock used to stamp confirmations.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger used for confirmation events.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService returns a disclaimer service persisting confirmations in store.
func NewService(store interfaces.PreferenceStore, opts ...Option) *Service {
	s := &Service{
		store:  store,
		now:    time.Now,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Confirm validates text and stores the confirmation time for session.
func (s *Service) Confirm(ctx context.Context, session, text string) error {
	session = strings.TrimSpace(session)
	if session == "" {
		return ErrSessionRequired
	}
	submitted := collapse(text)
	if submitted == "" {
		return ErrTextRequired
	}
	if s.required != "" && submitted != s.required {
		return ErrTextMismatch
	}
	if s.store == nil {
		return ErrStoreNotConfigured
	}
	stamp := s.now().UTC().Format(time.RFC3339)
	if err := s.store.Set(ctx, session, preferences.KeyMedicalProfessionalConfirmed, stamp); err != nil {
		return err
	}
	s.logger.WithContext(ctx).Info("disclaimer.confirmed")
	return nil
}

// Confirmed reports whether session has a stored confirmation.
func (s *Service) Confirmed(ctx context.Context, session string) (bool, error) {
	session = strings.TrimSpace(session)
	if session == "" || s.store == nil {
		return false, nil
	}
	value, ok, err := s.store.Get(ctx, session, preferences.KeyMedicalProfessionalConfirmed)
	if err != nil {
		return false, err
	}
	return ok && value != "", nil
}

// Revoke clears the confirmation for session.
func (s *Service) Revoke(ctx context.Context, session string) error {
	session = strings.TrimSpace(session)
	if session == "" {
		return ErrSessionRequired
	}
	if s.store == nil {
		return ErrStoreNotConfigured
	}
	return s.store.Delete(ctx, session, preferences.KeyMedicalProfessionalConfirmed)
}

func collapse(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
