// Package fleet manages a named set of panel profiles and the sessions
// logged in to them.
//
// A Member pairs a profile with its Panel adapter and caches the last
// session. Sessions are replaced, never mutated: a known-expired token or
// an authentication_error from the backend triggers one fresh login.
package fleet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rhuss/opexcore/pkg/api"
	"github.com/rhuss/opexcore/pkg/config"
	"github.com/rhuss/opexcore/pkg/debug"
	"github.com/rhuss/opexcore/pkg/panel"
)

// ExpirySkew renews sessions that expire within this window.
const ExpirySkew = 30 * time.Second

// Member is one configured panel.
type Member struct {
	Name  string
	Kind  api.Kind
	Panel panel.Panel

	profile config.PanelProfile
	now     func() time.Time

	mu   sync.Mutex
	sess *api.Session
}

// Fleet holds the configured panels in profile order.
type Fleet struct {
	members map[string]*Member
	order   []string
}

// New builds one Panel per profile. Adapters must already be registered,
// usually by importing pkg/panel/all.
func New(profiles []config.PanelProfile) (*Fleet, error) {
	f := &Fleet{members: make(map[string]*Member, len(profiles))}
	for _, p := range profiles {
		kind, err := p.BackendKind()
		if err != nil {
			return nil, fmt.Errorf("profile %q: %w", p.Name, err)
		}
		pn, err := panel.New(kind, p.PanelConfig())
		if err != nil {
			return nil, fmt.Errorf("profile %q: %w", p.Name, err)
		}
		if _, dup := f.members[p.Name]; dup {
			return nil, fmt.Errorf("profile %q configured twice", p.Name)
		}
		f.members[p.Name] = &Member{
			Name:    p.Name,
			Kind:    kind,
			Panel:   pn,
			profile: p,
			now:     time.Now,
		}
		f.order = append(f.order, p.Name)
	}
	return f, nil
}

// Names returns the profile names in configuration order.
func (f *Fleet) Names() []string {
	return append([]string(nil), f.order...)
}

// Member returns the named member or an invalid_request error.
func (f *Fleet) Member(name string) (*Member, error) {
	m, ok := f.members[name]
	if !ok {
		return nil, api.NewInvalidRequestError("profile", fmt.Sprintf("unknown profile %q", name))
	}
	return m, nil
}

// LoginAll logs in to every member concurrently. Every member is tried;
// the failures are returned joined.
func (f *Fleet) LoginAll(ctx context.Context) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	for _, name := range f.order {
		m := f.members[name]
		g.Go(func() error {
			if _, err := m.Session(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("profile %q: %w", m.Name, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Session returns the cached session, logging in first when there is none
// or it is about to expire.
func (m *Member) Session(ctx context.Context) (*api.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess != nil && !m.sess.Expired(m.now().Add(ExpirySkew)) {
		return m.sess, nil
	}

	sess, err := m.Panel.Login(ctx, m.profile.Host, m.profile.Username, m.profile.Password)
	if err != nil {
		slog.Warn("panel login failed", "profile", m.Name, "kind", m.Kind, "error", err)
		return nil, err
	}
	debug.Log("panel", "logged in", "profile", m.Name, "session", sess)
	m.sess = sess
	return sess, nil
}

// invalidate drops sess if it is still the cached one.
func (m *Member) invalidate(sess *api.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess == sess {
		m.sess = nil
	}
}

// Cached returns the cached session without logging in.
func (m *Member) Cached() *api.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess
}

// Call runs fn with a valid session. When the backend rejects the token,
// the session is dropped and fn runs once more after a fresh login.
func Call[T any](ctx context.Context, m *Member, fn func(context.Context, *api.Session) (T, error)) (T, error) {
	var zero T
	sess, err := m.Session(ctx)
	if err != nil {
		return zero, err
	}
	out, err := fn(ctx, sess)
	if !api.IsType(err, api.ErrorTypeAuthentication) {
		return out, err
	}

	debug.Log("panel", "token rejected, logging in again", "profile", m.Name)
	m.invalidate(sess)
	if sess, err = m.Session(ctx); err != nil {
		return zero, err
	}
	return fn(ctx, sess)
}

// Info summarizes a member for listings. Credentials are never included.
type Info struct {
	Name       string     `json:"name"`
	Kind       api.Kind   `json:"kind"`
	Host       string     `json:"host"`
	Username   string     `json:"username"`
	LoggedIn   bool       `json:"logged_in"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	Sudo       *bool      `json:"sudo,omitempty"`
	Pagination string     `json:"pagination"`
	Operations []string   `json:"operations"`
}

// Info describes the member and its cached session.
func (m *Member) Info() Info {
	caps := m.Panel.Capabilities()
	info := Info{
		Name:       m.Name,
		Kind:       m.Kind,
		Host:       m.profile.Host,
		Username:   m.profile.Username,
		Pagination: string(caps.Pagination),
	}
	for _, op := range caps.Ops {
		info.Operations = append(info.Operations, string(op))
	}
	if sess := m.Cached(); sess != nil {
		info.LoggedIn = true
		if t, ok := sess.ExpiresAt(); ok {
			info.ExpiresAt = &t
		}
		if sudo, ok := sess.Sudo(); ok {
			info.Sudo = &sudo
		}
	}
	return info
}
