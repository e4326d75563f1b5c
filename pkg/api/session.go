package api

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Kind identifies a backend family.
type Kind string

const (
	KindMarzban    Kind = "marzban"
	KindMarzneshin Kind = "marzneshin"
	KindRustneshin Kind = "rustneshin"
	KindPasarGuard Kind = "pasarguard"
	KindGuard      Kind = "guard"
	KindOVPanel    Kind = "ovpanel"
	KindRemnawave  Kind = "remnawave"
)

// Kinds lists every supported backend kind.
func Kinds() []Kind {
	return []Kind{
		KindMarzban,
		KindMarzneshin,
		KindRustneshin,
		KindPasarGuard,
		KindGuard,
		KindOVPanel,
		KindRemnawave,
	}
}

// ParseKind converts a case-insensitive name into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", NewInvalidRequestError("kind", fmt.Sprintf("unknown panel kind %q", s))
}

// Session is an authenticated context produced by a successful login.
// It is immutable: a fresh login yields a fresh Session, and the token is
// never refreshed in place. Sessions are safe to share between goroutines.
type Session struct {
	kind      Kind
	host      string
	username  string
	token     string
	expiresAt time.Time
	sudo      *bool
}

// NewSession creates a session for the given backend. The host is
// normalized without a trailing slash.
func NewSession(kind Kind, host, username, token string) (*Session, error) {
	if token == "" {
		return nil, NewDecodeError("access_token", "login response carried an empty token", nil)
	}
	host = strings.TrimRight(host, "/")
	if host == "" {
		return nil, NewInvalidRequestError("host", "host is required")
	}
	return &Session{
		kind:     kind,
		host:     host,
		username: username,
		token:    token,
	}, nil
}

// WithExpiry returns a copy of s carrying the token expiry.
func (s *Session) WithExpiry(t time.Time) *Session {
	c := *s
	c.expiresAt = t
	return &c
}

// WithSudo returns a copy of s carrying the privilege flag.
func (s *Session) WithSudo(sudo bool) *Session {
	c := *s
	c.sudo = &sudo
	return &c
}

// Kind returns the backend kind the session was issued by.
func (s *Session) Kind() Kind { return s.kind }

// Host returns the panel base URL.
func (s *Session) Host() string { return s.host }

// Username returns the login name used to obtain the session.
func (s *Session) Username() string { return s.username }

// Token returns the opaque access token.
func (s *Session) Token() string { return s.token }

// ExpiresAt returns the token expiry and whether it is known.
func (s *Session) ExpiresAt() (time.Time, bool) {
	return s.expiresAt, !s.expiresAt.IsZero()
}

// Sudo returns the privilege flag and whether the backend reported one.
func (s *Session) Sudo() (sudo bool, known bool) {
	if s.sudo == nil {
		return false, false
	}
	return *s.sudo, true
}

// Expired reports whether the token is known to be expired at now.
// Unknown expiry is never considered expired.
func (s *Session) Expired(now time.Time) bool {
	return !s.expiresAt.IsZero() && !now.Before(s.expiresAt)
}

// String renders the session without its token.
func (s *Session) String() string {
	return fmt.Sprintf("%s session for %s@%s", s.kind, s.username, s.host)
}

// LogValue implements slog.LogValuer so that tokens never reach log output.
func (s *Session) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("kind", string(s.kind)),
		slog.String("host", s.host),
		slog.String("username", s.username),
		slog.String("token", redact(s.token)),
	}
	if !s.expiresAt.IsZero() {
		attrs = append(attrs, slog.Time("expires_at", s.expiresAt))
	}
	return slog.GroupValue(attrs...)
}

func redact(token string) string {
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "***"
}
