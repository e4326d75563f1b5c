package panel

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rhuss/opexcore/pkg/api"
)

const testKind api.Kind = "stub"

type stubPanel struct {
	Unsupported
	ops   []Op
	stats func(ctx context.Context) (*api.Stats, error)
	nodes func(ctx context.Context) (*api.Page[api.Node], error)
	users func(ctx context.Context) (*api.Page[api.User], error)
}

func newStub(ops ...Op) *stubPanel {
	return &stubPanel{Unsupported: Unsupported{Backend: testKind}, ops: ops}
}

func (s *stubPanel) Kind() api.Kind { return testKind }

func (s *stubPanel) Capabilities() Capabilities {
	return Capabilities{Kind: testKind, Pagination: PaginationNone, Ops: s.ops}
}

func (s *stubPanel) Login(context.Context, string, string, string) (*api.Session, error) {
	return nil, errors.New("not implemented")
}

func (s *stubPanel) CurrentAdmin(context.Context, *api.Session) (*api.Admin, error) {
	return nil, errors.New("not implemented")
}

func (s *stubPanel) Stats(ctx context.Context, _ *api.Session) (*api.Stats, error) {
	return s.stats(ctx)
}

func (s *stubPanel) ListNodes(ctx context.Context, _ *api.Session, _ api.PageRequest) (*api.Page[api.Node], error) {
	return s.nodes(ctx)
}

func (s *stubPanel) ListUsers(ctx context.Context, _ *api.Session, _ api.PageRequest) (*api.Page[api.User], error) {
	return s.users(ctx)
}

func (s *stubPanel) Close() error { return nil }

var registerStub sync.Once

func TestRegistry(t *testing.T) {
	registerStub.Do(func() {
		Register(testKind, func(Config) Panel { return newStub() })
	})

	p, err := New(testKind, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Kind() != testKind {
		t.Errorf("Kind = %q", p.Kind())
	}

	found := false
	for _, k := range Registered() {
		if k == testKind {
			found = true
		}
	}
	if !found {
		t.Errorf("Registered() = %v, missing %s", Registered(), testKind)
	}

	if _, err := New("nonexistent", Config{}); !api.IsType(err, api.ErrorTypeInvalidRequest) {
		t.Errorf("unknown kind err = %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("duplicate Register did not panic")
		}
	}()
	Register(testKind, func(Config) Panel { return newStub() })
}

func TestCheckSession(t *testing.T) {
	sess, err := api.NewSession(api.KindGuard, "http://panel", "admin", "tok")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		sess    *api.Session
		kind    api.Kind
		wantErr bool
	}{
		{"matching", sess, api.KindGuard, false},
		{"nil session", nil, api.KindGuard, true},
		{"other kind", sess, api.KindMarzban, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSession(tt.sess, tt.kind)
			if tt.wantErr && !api.IsType(err, api.ErrorTypeInvalidRequest) {
				t.Errorf("err = %v, want invalid_request", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestUnsupported(t *testing.T) {
	u := Unsupported{Backend: api.KindOVPanel}
	_, err := u.TrafficStats(context.Background(), nil, time.Now(), time.Now())
	apiErr, ok := api.AsAPIError(err)
	if !ok || apiErr.Type != api.ErrorTypeUnsupported {
		t.Fatalf("err = %v, want unsupported", err)
	}
	if apiErr.Backend != api.KindOVPanel || apiErr.Op != string(OpTrafficStats) {
		t.Errorf("err = %+v", apiErr)
	}
	if apiErr.Retryable() {
		t.Error("unsupported must not be retryable")
	}
}

func TestCapabilitiesSupports(t *testing.T) {
	caps := Capabilities{Ops: []Op{OpLogin, OpListUsers}}
	if !caps.Supports(OpListUsers) || caps.Supports(OpDeleteNode) {
		t.Errorf("Supports mismatch for %v", caps.Ops)
	}
	if len(AllOps()) != 17 {
		t.Errorf("AllOps has %d entries", len(AllOps()))
	}
}

func TestOverview(t *testing.T) {
	p := newStub(OpStats, OpListNodes, OpListUsers)
	p.stats = func(context.Context) (*api.Stats, error) {
		return &api.Stats{Users: api.UserCounts{Total: api.Ptr(2)}}, nil
	}
	p.nodes = func(context.Context) (*api.Page[api.Node], error) {
		return &api.Page[api.Node]{Items: []api.Node{{Name: "n1"}}}, nil
	}
	p.users = func(context.Context) (*api.Page[api.User], error) {
		return &api.Page[api.User]{Items: []api.User{{Username: "a"}, {Username: "b"}}}, nil
	}

	res, err := Overview(context.Background(), p, nil, api.FirstPage(10))
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if *res.Stats.Users.Total != 2 || res.Nodes.Len() != 1 || res.Users.Len() != 2 {
		t.Errorf("result = %+v", res)
	}
}

func TestOverviewSkipsUnsupported(t *testing.T) {
	p := newStub(OpListUsers)
	p.users = func(context.Context) (*api.Page[api.User], error) {
		return &api.Page[api.User]{Items: []api.User{}}, nil
	}

	res, err := Overview(context.Background(), p, nil, api.FirstPage(10))
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if res.Stats != nil || res.Nodes != nil || res.Users == nil {
		t.Errorf("result = %+v", res)
	}
}

func TestOverviewFailFast(t *testing.T) {
	boom := api.NewAuthenticationError(http.StatusUnauthorized, "token expired")
	cancelled := make(chan struct{})

	p := newStub(OpStats, OpListNodes, OpListUsers)
	p.stats = func(ctx context.Context) (*api.Stats, error) {
		<-ctx.Done()
		close(cancelled)
		return nil, ctx.Err()
	}
	p.nodes = func(context.Context) (*api.Page[api.Node], error) {
		return nil, boom
	}
	p.users = func(ctx context.Context) (*api.Page[api.User], error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	res, err := Overview(context.Background(), p, nil, api.FirstPage(10))
	if res != nil {
		t.Errorf("partial result returned: %+v", res)
	}
	if !api.IsType(err, api.ErrorTypeAuthentication) {
		t.Errorf("err = %v, want the first failure", err)
	}
	select {
	case <-cancelled:
	default:
		t.Error("sibling call was not cancelled")
	}
}

func TestBaseRejectsForeignSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("backend called with %s %s", r.Method, r.URL.Path)
	}))
	defer srv.Close()

	b := NewBase(api.KindMarzban, Config{})
	defer b.Close()

	sess, _ := api.NewSession(api.KindGuard, srv.URL, "admin", "tok")
	_, err := b.Get(context.Background(), sess, OpListUsers, "/api/users", nil)
	apiErr, ok := api.AsAPIError(err)
	if !ok || apiErr.Type != api.ErrorTypeInvalidRequest {
		t.Fatalf("err = %v, want invalid_request", err)
	}
	if apiErr.Backend != api.KindMarzban || apiErr.Op != string(OpListUsers) {
		t.Errorf("err not annotated: %+v", apiErr)
	}
}

func TestBaseAttachesBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	b := NewBase(api.KindMarzban, Config{Timeout: 5 * time.Second})
	defer b.Close()

	sess, _ := api.NewSession(api.KindMarzban, srv.URL, "admin", "tok-123")
	body, err := b.Get(context.Background(), sess, OpStats, "/api/system", nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("body = %s", body)
	}
}

func TestLoginCredentialChecks(t *testing.T) {
	b := NewBase(api.KindRemnawave, Config{})
	defer b.Close()

	tests := []struct {
		name, host, user, pass, param string
	}{
		{"no host", "", "admin", "pw", "host"},
		{"no user", "http://panel", "", "pw", "username"},
		{"no password", "http://panel", "admin", "", "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.JSONLogin(context.Background(), tt.host, "/api/auth/login", tt.user, tt.pass)
			apiErr, ok := api.AsAPIError(err)
			if !ok || apiErr.Type != api.ErrorTypeInvalidRequest || apiErr.Param != tt.param {
				t.Fatalf("err = %v, want invalid_request on %s", err, tt.param)
			}
			if apiErr.Op != string(OpLogin) {
				t.Errorf("Op = %q", apiErr.Op)
			}
		})
	}
}

func TestNewSessionReadsClaims(t *testing.T) {
	b := NewBase(api.KindMarzban, Config{})
	defer b.Close()

	// {"sub":"admin","access":"sudo","exp":4102444800}
	tok := "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9." +
		"eyJzdWIiOiJhZG1pbiIsImFjY2VzcyI6InN1ZG8iLCJleHAiOjQxMDI0NDQ4MDB9." +
		"c2lnbmF0dXJl"
	sess, err := b.NewSession("http://panel/", "admin", tok)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if exp, ok := sess.ExpiresAt(); !ok || exp.Unix() != 4102444800 {
		t.Errorf("ExpiresAt = %v, %v", exp, ok)
	}
	if sudo, known := sess.Sudo(); !known || !sudo {
		t.Errorf("Sudo = %v, %v", sudo, known)
	}

	if _, err := b.NewSession("http://panel", "admin", ""); !api.IsType(err, api.ErrorTypeDecode) {
		t.Errorf("empty token err = %v", err)
	}
}
