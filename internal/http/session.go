package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pharmaweb/sitecms/internal/i18n"
	"github.com/pharmaweb/sitecms/internal/logging"
	"github.com/pharmaweb/sitecms/internal/preferences"
	"github.com/pharmaweb/sitecms/pkg/interfaces"
)

// DefaultSessionCookie names the anonymous visitor session cookie.
const DefaultSessionCookie = "sitecms_session"

const sessionMaxAge = 365 * 24 * time.Hour

// sessions identifies anonymous visitors by a random cookie value. The value
// scopes preference store entries.
type sessions struct {
	cookie string
	newID  func() string
}

func newSessions(cookie string) sessions {
	cookie = strings.TrimSpace(cookie)
	if cookie == "" {
		cookie = DefaultSessionCookie
	}
	return sessions{cookie: cookie, newID: func() string { return uuid.NewString() }}
}

func (s sessions) read(r *http.Request) string {
	if r == nil {
		return ""
	}
	cookie, err := r.Cookie(s.cookie)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}

// ensure returns the current session, issuing a cookie when the request has none.
func (s sessions) ensure(w http.ResponseWriter, r *http.Request) string {
	if id := s.read(r); id != "" {
		return id
	}
	id := s.newID()
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   r != nil && r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// languages picks the display language of a request: an explicit lang query
// parameter, then the language stored for the session, then the default.
type languages struct {
	resolver i18n.Resolver
	locales  []string
	store    interfaces.PreferenceStore
	sessions sessions
	logger   interfaces.Logger
}

func (l languages) supported(code string) (string, bool) {
	code = i18n.NormalizeLocale(code)
	if code == "" || !i18n.IsSupported(code, l.locales...) {
		return "", false
	}
	return code, true
}

func (l languages) resolve(r *http.Request) string {
	if lang, ok := l.supported(r.URL.Query().Get("lang")); ok {
		return lang
	}
	if l.store != nil {
		if session := l.sessions.read(r); session != "" {
			stored, ok, err := l.store.Get(r.Context(), session, preferences.KeyLanguage)
			switch {
			case err != nil:
				l.log().WithContext(r.Context()).Warn("http.language.lookup_failed", "error", err)
			case ok:
				if lang, valid := l.supported(stored); valid {
					return lang
				}
			}
		}
	}
	return l.resolver.Lang("")
}

func (l languages) log() interfaces.Logger {
	if l.logger == nil {
		return logging.NoOp()
	}
	return l.logger
}
