package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rhuss/opexcore/pkg/api"
)

func newSession(t *testing.T, host string) *api.Session {
	t.Helper()
	sess, err := api.NewSession(api.KindMarzban, host, "admin", "tok-123456789")
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return sess
}

func TestSendAttachesBearerOnlyWithSession(t *testing.T) {
	var gotAuth []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(Options{Kind: api.KindMarzban})
	ctx := context.Background()

	if _, err := c.Send(ctx, &Request{Op: "Login", Method: http.MethodPost, Host: srv.URL, Path: "/api/admin/token"}); err != nil {
		t.Fatalf("Send without session: %v", err)
	}
	if _, err := c.Send(ctx, &Request{Op: "ListUsers", Method: http.MethodGet, Session: newSession(t, srv.URL), Path: "/api/users"}); err != nil {
		t.Fatalf("Send with session: %v", err)
	}

	if gotAuth[0] != "" {
		t.Errorf("Authorization without session = %q, want empty", gotAuth[0])
	}
	if gotAuth[1] != "Bearer tok-123456789" {
		t.Errorf("Authorization with session = %q", gotAuth[1])
	}
}

func TestSendRequestID(t *testing.T) {
	var ids []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids = append(ids, r.Header.Get("X-Request-ID"))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(Options{Kind: api.KindGuard})
	resp, err := c.Send(context.Background(), &Request{Op: "Stats", Method: http.MethodGet, Host: srv.URL, Path: "/api/stats"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !api.ValidateRequestID(ids[0]) {
		t.Errorf("generated request ID %q is malformed", ids[0])
	}
	if resp.RequestID != ids[0] {
		t.Errorf("Response.RequestID = %q, sent %q", resp.RequestID, ids[0])
	}

	ctx := ContextWithRequestID(context.Background(), "req_caller")
	if _, err := c.Send(ctx, &Request{Op: "Stats", Method: http.MethodGet, Host: srv.URL, Path: "/api/stats"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if ids[1] != "req_caller" {
		t.Errorf("X-Request-ID = %q, want caller value", ids[1])
	}
}

func TestSendFormAndQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		if r.PostForm.Get("username") != "admin" || r.PostForm.Get("grant_type") != "password" {
			t.Errorf("form = %v", r.PostForm)
		}
		if r.URL.Query().Get("trace") != "1" {
			t.Errorf("query = %q", r.URL.RawQuery)
		}
		w.Write([]byte(`{"access_token":"x"}`))
	}))
	defer srv.Close()

	c := NewClient(Options{Kind: api.KindMarzban})
	_, err := c.Send(context.Background(), &Request{
		Op:     "Login",
		Method: http.MethodPost,
		Host:   srv.URL + "/",
		Path:   "/api/admin/token",
		Query:  url.Values{"trace": {"1"}},
		Form:   url.Values{"username": {"admin"}, "password": {"secret"}, "grant_type": {"password"}},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
}

func TestSendRejectsFormAndJSON(t *testing.T) {
	c := NewClient(Options{Kind: api.KindMarzban})
	_, err := c.Send(context.Background(), &Request{
		Op: "CreateUser", Method: http.MethodPost, Host: "http://panel", Path: "/x",
		Form: url.Values{"a": {"b"}}, JSON: map[string]string{"a": "b"},
	})
	if !api.IsType(err, api.ErrorTypeInvalidRequest) {
		t.Fatalf("err = %v, want invalid_request", err)
	}
}

func TestSendMapsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Not authenticated"}`))
	}))
	defer srv.Close()

	c := NewClient(Options{Kind: api.KindMarzneshin})
	_, err := c.Send(context.Background(), &Request{Op: "ListUsers", Method: http.MethodGet, Session: newSession(t, srv.URL), Path: "/api/users"})

	apiErr, ok := api.AsAPIError(err)
	if !ok {
		t.Fatalf("err = %v, want *api.APIError", err)
	}
	if apiErr.Type != api.ErrorTypeAuthentication {
		t.Errorf("type = %q", apiErr.Type)
	}
	if apiErr.Backend != api.KindMarzneshin || apiErr.Op != "ListUsers" {
		t.Errorf("annotation = %q/%q", apiErr.Backend, apiErr.Op)
	}
}

func TestSendTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(Options{Kind: api.KindGuard, Timeout: 50 * time.Millisecond, MaxRetries: 3, RetryInterval: time.Millisecond})
	_, err := c.Send(context.Background(), &Request{Op: "Stats", Method: http.MethodGet, Host: srv.URL, Path: "/api/stats"})
	if !api.IsType(err, api.ErrorTypeTimeout) {
		t.Fatalf("err = %v, want transport_timeout", err)
	}
}

func TestSendRetriesGetOnTransportError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(Options{Kind: api.KindGuard, MaxRetries: 2, RetryInterval: time.Millisecond})
	resp, err := c.Send(context.Background(), &Request{Op: "ListNodes", Method: http.MethodGet, Host: srv.URL, Path: "/api/nodes"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if string(resp.Body) != "[]" {
		t.Errorf("body = %q", resp.Body)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestSendDoesNotRetryMutationsOrBusinessErrors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		status int
	}{
		{"POST 503", http.MethodPost, http.StatusServiceUnavailable},
		{"DELETE 502", http.MethodDelete, http.StatusBadGateway},
		{"GET 404", http.MethodGet, http.StatusNotFound},
		{"GET 401", http.MethodGet, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := NewClient(Options{Kind: api.KindMarzban, MaxRetries: 3, RetryInterval: time.Millisecond})
			_, err := c.Send(context.Background(), &Request{Op: "X", Method: tt.method, Host: srv.URL, Path: "/x"})
			if err == nil {
				t.Fatal("expected error")
			}
			if calls.Load() != 1 {
				t.Errorf("calls = %d, want 1", calls.Load())
			}
		})
	}
}

func TestSendRateLimitDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(Options{Kind: api.KindOVPanel, Timeout: 50 * time.Millisecond, RateLimit: 0.001, Burst: 1})
	req := &Request{Op: "ListUsers", Method: http.MethodGet, Host: srv.URL, Path: "/api/user/all"}

	if _, err := c.Send(context.Background(), req); err != nil {
		t.Fatalf("first call: %v", err)
	}
	_, err := c.Send(context.Background(), req)
	if !api.IsType(err, api.ErrorTypeTimeout) {
		t.Fatalf("second call err = %v, want transport_timeout", err)
	}
}

func TestCloseCancelsInFlight(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewClient(Options{Kind: api.KindRemnawave})
	errCh := make(chan error, 1)
	go func() {
		_, err := c.Send(context.Background(), &Request{Op: "ListUsers", Method: http.MethodGet, Host: srv.URL, Path: "/api/users"})
		errCh <- err
	}()

	<-started
	c.Close()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want cancellation", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight call was not cancelled")
	}

	_, err := c.Send(context.Background(), &Request{Op: "ListUsers", Method: http.MethodGet, Host: srv.URL, Path: "/api/users"})
	if !api.IsType(err, api.ErrorTypeTransport) {
		t.Errorf("call after Close err = %v, want transport_error", err)
	}
}

func TestSendReadsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		if string(b) != `{"username":"alice"}` {
			t.Errorf("body = %s", b)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"username":"alice"}`))
	}))
	defer srv.Close()

	c := NewClient(Options{Kind: api.KindRemnawave})
	resp, err := c.Send(context.Background(), &Request{
		Op: "CreateUser", Method: http.MethodPost, Session: newSession(t, srv.URL), Path: "/api/users",
		JSON: map[string]string{"username": "alice"},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if resp.Status != http.StatusCreated {
		t.Errorf("status = %d", resp.Status)
	}
}
