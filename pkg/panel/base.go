package panel

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/rhuss/opexcore/pkg/api"
	"github.com/rhuss/opexcore/pkg/auth"
	"github.com/rhuss/opexcore/pkg/debug"
	"github.com/rhuss/opexcore/pkg/transport"
)

// Config holds the transport settings shared by every adapter.
type Config struct {
	// Timeout bounds each call. Zero means transport.DefaultTimeout.
	Timeout time.Duration

	// MaxRetries applies to GET calls that fail with transport_error.
	MaxRetries    int
	RetryInterval time.Duration

	// RateLimit caps calls per second; zero disables limiting.
	RateLimit float64
	Burst     int

	UserAgent string

	// HTTPClient overrides the underlying client, e.g. for custom TLS.
	HTTPClient *http.Client
}

// Base carries the HTTP plumbing adapters embed. It never stores hosts or
// tokens; both come from the arguments of each call.
type Base struct {
	kind   api.Kind
	client *transport.Client
}

// NewBase creates the shared plumbing for a backend kind.
func NewBase(kind api.Kind, cfg Config) *Base {
	return &Base{
		kind: kind,
		client: transport.NewClient(transport.Options{
			Kind:          kind,
			Timeout:       cfg.Timeout,
			MaxRetries:    cfg.MaxRetries,
			RetryInterval: cfg.RetryInterval,
			RateLimit:     cfg.RateLimit,
			Burst:         cfg.Burst,
			UserAgent:     cfg.UserAgent,
			HTTPClient:    cfg.HTTPClient,
		}),
	}
}

// Kind returns the backend family.
func (b *Base) Kind() api.Kind {
	return b.kind
}

// Close cancels in-flight calls and releases idle connections.
func (b *Base) Close() error {
	return b.client.Close()
}

// Get performs an authenticated GET and returns the body.
func (b *Base) Get(ctx context.Context, sess *api.Session, op Op, path string, query url.Values) ([]byte, error) {
	return b.call(ctx, sess, op, http.MethodGet, path, query, nil)
}

// Post performs an authenticated POST with a JSON body (nil for none).
func (b *Base) Post(ctx context.Context, sess *api.Session, op Op, path string, body any) ([]byte, error) {
	return b.call(ctx, sess, op, http.MethodPost, path, nil, body)
}

// Put performs an authenticated PUT with a JSON body.
func (b *Base) Put(ctx context.Context, sess *api.Session, op Op, path string, body any) ([]byte, error) {
	return b.call(ctx, sess, op, http.MethodPut, path, nil, body)
}

// Delete performs an authenticated DELETE.
func (b *Base) Delete(ctx context.Context, sess *api.Session, op Op, path string) ([]byte, error) {
	return b.call(ctx, sess, op, http.MethodDelete, path, nil, nil)
}

func (b *Base) call(ctx context.Context, sess *api.Session, op Op, method, path string, query url.Values, body any) ([]byte, error) {
	if err := CheckSession(sess, b.kind); err != nil {
		return nil, b.Wrap(op, err)
	}
	resp, err := b.client.Send(ctx, &transport.Request{
		Op:      string(op),
		Method:  method,
		Path:    path,
		Session: sess,
		Query:   query,
		JSON:    body,
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// PublicGet performs an unauthenticated GET against host.
func (b *Base) PublicGet(ctx context.Context, host string, op Op, path string) ([]byte, error) {
	resp, err := b.client.Send(ctx, &transport.Request{Op: string(op), Method: http.MethodGet, Host: host, Path: path})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// FormLogin posts the OAuth2 password form to path on host.
func (b *Base) FormLogin(ctx context.Context, host, path, username, password string) ([]byte, error) {
	if err := checkCredentials(host, username, password); err != nil {
		return nil, b.Wrap(OpLogin, err)
	}
	resp, err := b.client.Send(ctx, &transport.Request{
		Op:     string(OpLogin),
		Method: http.MethodPost,
		Host:   host,
		Path:   path,
		Form:   auth.PasswordForm(username, password),
	})
	if err != nil {
		return nil, auth.MapLoginError(err)
	}
	return resp.Body, nil
}

// JSONLogin posts a JSON credential body to path on host.
func (b *Base) JSONLogin(ctx context.Context, host, path, username, password string) ([]byte, error) {
	if err := checkCredentials(host, username, password); err != nil {
		return nil, b.Wrap(OpLogin, err)
	}
	resp, err := b.client.Send(ctx, &transport.Request{
		Op:     string(OpLogin),
		Method: http.MethodPost,
		Host:   host,
		Path:   path,
		JSON:   map[string]string{"username": username, "password": password},
	})
	if err != nil {
		return nil, auth.MapLoginError(err)
	}
	return resp.Body, nil
}

// NewSession builds a session for a token issued by host, filling in the
// expiry and privilege flag when the token carries them.
func (b *Base) NewSession(host, username, token string) (*api.Session, error) {
	sess, err := api.NewSession(b.kind, host, username, token)
	if err != nil {
		return nil, b.Wrap(OpLogin, err)
	}
	if info, ok := auth.InspectToken(token); ok {
		if !info.ExpiresAt.IsZero() {
			sess = sess.WithExpiry(info.ExpiresAt)
		}
		if info.Sudo != nil {
			sess = sess.WithSudo(*info.Sudo)
		}
	}
	debug.Log("auth", "session established", "session", sess)
	return sess, nil
}

// Wrap annotates an *api.APIError with the backend kind and op. Other
// errors are returned unchanged.
func (b *Base) Wrap(op Op, err error) error {
	if err == nil {
		return nil
	}
	if apiErr, ok := api.AsAPIError(err); ok {
		return apiErr.WithOp(b.kind, string(op))
	}
	return err
}

func checkCredentials(host, username, password string) error {
	if host == "" {
		return api.NewInvalidRequestError("host", "host is required")
	}
	if username == "" {
		return api.NewInvalidRequestError("username", "username is required")
	}
	if password == "" {
		return api.NewInvalidRequestError("password", "password is required")
	}
	return nil
}
