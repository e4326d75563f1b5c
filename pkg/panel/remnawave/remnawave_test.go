package remnawave

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rhuss/opexcore/pkg/api"
	"github.com/rhuss/opexcore/pkg/panel"
	"github.com/rhuss/opexcore/pkg/panel/paneltest"
)

func newTestPanel(t *testing.T, handler http.HandlerFunc) (*Panel, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	p := New(panel.Config{Timeout: 5 * time.Second})
	t.Cleanup(func() {
		p.Close()
		srv.Close()
	})
	return p, srv
}

func respond(w http.ResponseWriter, v any) {
	paneltest.WriteJSON(w, http.StatusOK, map[string]any{"response": v})
}

func TestLogin(t *testing.T) {
	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	token := paneltest.MintToken(map[string]any{"uuid": uuid.NewString(), "username": "admin", "role": "ADMIN", "exp": exp.Unix()})

	p, srv := newTestPanel(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var creds map[string]string
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			t.Fatal(err)
		}
		if creds["username"] != "admin" || creds["password"] != "secret" {
			paneltest.WriteJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid credentials", "statusCode": 401})
			return
		}
		respond(w, map[string]string{"accessToken": token})
	})

	sess, err := p.Login(context.Background(), srv.URL, "admin", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sess.Token() != token {
		t.Error("token not carried")
	}
	if got, ok := sess.ExpiresAt(); !ok || !got.Equal(exp) {
		t.Errorf("ExpiresAt = %v, %v", got, ok)
	}
	if _, known := sess.Sudo(); known {
		t.Error("Sudo should be unknown for role claims")
	}

	_, err = p.Login(context.Background(), srv.URL, "admin", "wrong")
	if !api.IsType(err, api.ErrorTypeAuthentication) {
		t.Fatalf("err = %v, want authentication_error", err)
	}
	apiErr, _ := api.AsAPIError(err)
	if apiErr.Message != "Invalid credentials" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestLoginUnwrappedToken(t *testing.T) {
	p, srv := newTestPanel(t, func(w http.ResponseWriter, r *http.Request) {
		paneltest.WriteJSON(w, http.StatusOK, map[string]string{"accessToken": "abc"})
	})
	_, err := p.Login(context.Background(), srv.URL, "admin", "secret")
	apiErr, ok := api.AsAPIError(err)
	if !ok || apiErr.Type != api.ErrorTypeDecode || apiErr.Param != "response" {
		t.Fatalf("err = %v, want decode_error on response", err)
	}
}

func TestCurrentAdminFromClaims(t *testing.T) {
	var seen []string
	p, srv := newTestPanel(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/users" || r.URL.Query().Get("size") != "1" {
			t.Errorf("unexpected %s %s", r.Method, r.URL)
		}
		seen = append(seen, r.Header.Get("Authorization"))
		respond(w, map[string]any{"total": 0, "users": []any{}})
	})

	id := uuid.NewString()
	tok := paneltest.MintToken(map[string]any{"uuid": id, "username": "root", "exp": time.Now().Add(time.Hour).Unix()})
	sess, err := api.NewSession(api.KindRemnawave, srv.URL, "root", tok)
	if err != nil {
		t.Fatal(err)
	}

	admin, err := p.CurrentAdmin(context.Background(), sess)
	if err != nil {
		t.Fatalf("CurrentAdmin: %v", err)
	}
	if admin.Username != "root" || admin.ID != api.UUIDID(id) {
		t.Errorf("admin = %+v", admin)
	}

	opaque, _ := api.NewSession(api.KindRemnawave, srv.URL, "ops", "opaque-token")
	admin, err = p.CurrentAdmin(context.Background(), opaque)
	if err != nil {
		t.Fatalf("CurrentAdmin opaque: %v", err)
	}
	if admin.Username != "ops" || admin.ID != api.NameID("ops") {
		t.Errorf("opaque admin = %+v", admin)
	}
	if len(seen) != 2 || seen[0] != "Bearer "+tok || seen[1] != "Bearer opaque-token" {
		t.Errorf("Authorization headers = %q", seen)
	}
}

func TestCurrentAdminChecksToken(t *testing.T) {
	p, srv := newTestPanel(t, func(w http.ResponseWriter, r *http.Request) {
		paneltest.WriteJSON(w, http.StatusUnauthorized, map[string]any{"message": "Unauthorized", "statusCode": 401})
	})
	valid := paneltest.MintToken(map[string]any{"uuid": uuid.NewString(), "username": "root", "exp": time.Now().Add(time.Hour).Unix()})
	expired := paneltest.MintToken(map[string]any{"uuid": uuid.NewString(), "username": "root", "exp": time.Now().Add(-time.Hour).Unix()})

	tests := []struct {
		name     string
		host     string
		token    string
		expiry   time.Time
		wantType api.ErrorType
	}{
		{"expired claim", "http://127.0.0.1:1", expired, time.Time{}, api.ErrorTypeAuthentication},
		{"expired session", "http://127.0.0.1:1", "opaque-token", time.Now().Add(-time.Minute), api.ErrorTypeAuthentication},
		{"revoked token", srv.URL, valid, time.Time{}, api.ErrorTypeAuthentication},
		{"unreachable host", "http://127.0.0.1:1", valid, time.Time{}, api.ErrorTypeTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, err := api.NewSession(api.KindRemnawave, tt.host, "root", tt.token)
			if err != nil {
				t.Fatal(err)
			}
			if !tt.expiry.IsZero() {
				sess = sess.WithExpiry(tt.expiry)
			}
			admin, err := p.CurrentAdmin(context.Background(), sess)
			if !api.IsType(err, tt.wantType) {
				t.Fatalf("err = %v, want %s", err, tt.wantType)
			}
			if admin != nil {
				t.Errorf("admin = %+v, want nil", admin)
			}
		})
	}
}

func TestListUsers(t *testing.T) {
	active, limited := uuid.NewString(), uuid.NewString()
	p, srv := newTestPanel(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/users" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("start"); got != "4" {
			t.Errorf("start = %q, want 4", got)
		}
		if got := r.URL.Query().Get("size"); got != "2" {
			t.Errorf("size = %q, want 2", got)
		}
		respond(w, map[string]any{
			"total": 9,
			"users": []map[string]any{
				{
					"uuid": active, "shortUuid": "abc", "username": "alice", "status": "ACTIVE",
					"trafficLimitBytes": 0, "expireAt": "2030-01-01T00:00:00.000Z",
					"userTraffic": map[string]any{"usedTrafficBytes": 1024, "onlineAt": "2025-01-01T10:00:00Z"},
				},
				{
					"uuid": limited, "username": "bob", "status": "LIMITED",
					"usedTrafficBytes": 5000, "trafficLimitBytes": 5000, "description": "vip",
				},
			},
		})
	})
	sess := paneltest.Session(t, api.KindRemnawave, srv.URL)

	page, err := p.ListUsers(context.Background(), sess, api.PageRequest{Page: 3, Size: 2})
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if page.Total == nil || *page.Total != 9 || page.Len() != 2 {
		t.Fatalf("page = total %v len %d", page.Total, page.Len())
	}

	a, b := page.Items[0], page.Items[1]
	if a.ID != api.UUIDID(active) || a.Status.State != api.StateActive || a.Status.Raw != "ACTIVE" {
		t.Errorf("alice = %+v", a)
	}
	if a.DataLimit != nil {
		t.Errorf("zero limit should be unlimited, got %d", *a.DataLimit)
	}
	if a.UsedTraffic == nil || *a.UsedTraffic != 1024 || a.OnlineAt == nil {
		t.Errorf("nested traffic not used: %+v", a)
	}
	if b.Status.State != api.StateLimited || b.Status.Raw != "LIMITED" {
		t.Errorf("bob status = %+v", b.Status)
	}
	if b.UsedTraffic == nil || *b.UsedTraffic != 5000 || b.Note != "vip" {
		t.Errorf("bob = %+v", b)
	}
	if _, ok := b.Detail.(User); !ok {
		t.Errorf("Detail type = %T", b.Detail)
	}
}

func TestListNodesWindowAndStatus(t *testing.T) {
	nodes := []map[string]any{
		{"uuid": uuid.NewString(), "name": "de-1", "address": "10.0.0.1", "port": 2222, "isConnected": true, "usersOnline": 4},
		{"uuid": uuid.NewString(), "name": "nl-1", "address": "10.0.0.2", "isConnecting": true},
		{"uuid": uuid.NewString(), "name": "fi-1", "address": "10.0.0.3", "isDisabled": true, "isConnected": true},
		{"uuid": uuid.NewString(), "name": "us-1", "address": "10.0.0.4", "lastStatusMessage": "timeout"},
	}
	p, srv := newTestPanel(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			t.Errorf("query = %q, want none", r.URL.RawQuery)
		}
		respond(w, nodes)
	})
	sess := paneltest.Session(t, api.KindRemnawave, srv.URL)

	all, err := p.ListNodes(context.Background(), sess, api.PageRequest{})
	if err != nil {
		t.Fatalf("ListNodes: %v", err)
	}
	if all.Total != nil || all.Len() != 4 {
		t.Fatalf("all = total %v len %d", all.Total, all.Len())
	}

	want := []api.Status{
		{State: api.StateConnected, Raw: "isConnected=true"},
		{State: api.StateConnecting, Raw: "isConnecting=true"},
		{State: api.StateDisabled, Raw: "isDisabled=true"},
		{State: api.StateError, Raw: "isConnected=false"},
	}
	for i, n := range all.Items {
		if n.Status != want[i] {
			t.Errorf("%s status = %+v, want %+v", n.Name, n.Status, want[i])
		}
	}
	if all.Items[0].UsersOnline == nil || *all.Items[0].UsersOnline != 4 {
		t.Errorf("UsersOnline = %v", all.Items[0].UsersOnline)
	}
	if all.Items[3].Message != "timeout" {
		t.Errorf("Message = %q", all.Items[3].Message)
	}

	second, err := p.ListNodes(context.Background(), sess, api.PageRequest{Page: 2, Size: 3})
	if err != nil {
		t.Fatal(err)
	}
	if second.Len() != 1 || second.Items[0].Name != "us-1" {
		t.Errorf("second page = %+v", second.Items)
	}
}

func TestListHosts(t *testing.T) {
	p, srv := newTestPanel(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/hosts" {
			t.Errorf("path = %s", r.URL.Path)
		}
		respond(w, []map[string]any{
			{"uuid": uuid.NewString(), "remark": "main", "address": "a.example", "port": 443, "isDisabled": false, "isHidden": true},
			{"uuid": uuid.NewString(), "remark": "backup", "address": "b.example", "isDisabled": true},
		})
	})
	sess := paneltest.Session(t, api.KindRemnawave, srv.URL)

	page, err := p.ListHosts(context.Background(), sess, api.FirstPage(10))
	if err != nil {
		t.Fatalf("ListHosts: %v", err)
	}
	if page.Len() != 2 {
		t.Fatalf("Len = %d", page.Len())
	}
	if h := page.Items[0]; h.Hidden == nil || !*h.Hidden || h.Disabled || h.Port == nil || *h.Port != 443 {
		t.Errorf("main = %+v", h)
	}
	if h := page.Items[1]; !h.Disabled || h.Hidden != nil {
		t.Errorf("backup = %+v", h)
	}
}

func TestStats(t *testing.T) {
	p, srv := newTestPanel(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/system/stats" {
			t.Errorf("path = %s", r.URL.Path)
		}
		respond(w, map[string]any{
			"cpu":    map[string]any{"cores": 8, "physicalCores": 4},
			"memory": map[string]any{"total": 16000, "used": 4000, "free": 12000},
			"users": map[string]any{
				"totalUsers":   10,
				"statusCounts": map[string]int{"ACTIVE": 6, "DISABLED": 1, "LIMITED": 2, "EXPIRED": 1},
			},
			"onlineStats": map[string]any{"onlineNow": 3, "lastDay": 5},
			"nodes":       map[string]any{"totalOnline": 2},
		})
	})
	sess := paneltest.Session(t, api.KindRemnawave, srv.URL)

	stats, err := p.Stats(context.Background(), sess)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	u := stats.Users
	if *u.Total != 10 || *u.Active != 6 || *u.Disabled != 1 || *u.Limited != 2 || *u.Expired != 1 || *u.Online != 3 {
		t.Errorf("users = %+v", u)
	}
	if u.OnHold != nil {
		t.Errorf("OnHold = %d, want nil", *u.OnHold)
	}
	if stats.Nodes.Online == nil || *stats.Nodes.Online != 2 || stats.Nodes.Total != nil {
		t.Errorf("nodes = %+v", stats.Nodes)
	}
	if *stats.CPUCores != 8 || *stats.MemoryTotal != 16000 || *stats.MemoryUsed != 4000 {
		t.Errorf("resources = %+v", stats)
	}

	nodes, err := p.NodesStats(context.Background(), sess)
	if err != nil || *nodes.Online != 2 {
		t.Errorf("NodesStats = %+v, %v", nodes, err)
	}
}

func TestStatsMissingUsers(t *testing.T) {
	p, srv := newTestPanel(t, func(w http.ResponseWriter, r *http.Request) {
		respond(w, map[string]any{"cpu": map[string]any{"cores": 1}})
	})
	sess := paneltest.Session(t, api.KindRemnawave, srv.URL)

	_, err := p.UsersStats(context.Background(), sess)
	apiErr, ok := api.AsAPIError(err)
	if !ok || apiErr.Type != api.ErrorTypeDecode || apiErr.Op != string(panel.OpUsersStats) {
		t.Fatalf("err = %v, want decode_error on UsersStats", err)
	}
}

func TestCreateUser(t *testing.T) {
	id := uuid.NewString()
	expire := time.Now().Add(30 * 24 * time.Hour).UTC().Truncate(time.Second)

	p, srv := newTestPanel(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/users" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body["expireAt"] != expire.Format(time.RFC3339) {
			t.Errorf("expireAt = %v", body["expireAt"])
		}
		if body["trafficLimitStrategy"] != "NO_RESET" || body["status"] != "ACTIVE" {
			t.Errorf("body = %v", body)
		}
		if body["trafficLimitBytes"] != float64(1<<30) || body["tag"] != "TRIAL" {
			t.Errorf("body = %v", body)
		}
		respond(w, map[string]any{
			"uuid": id, "username": body["username"], "status": "ACTIVE",
			"trafficLimitBytes": body["trafficLimitBytes"], "expireAt": body["expireAt"],
		})
	})
	sess := paneltest.Session(t, api.KindRemnawave, srv.URL)

	res, err := p.CreateUser(context.Background(), sess, &api.UserCreate{
		Username:  "carol",
		ExpireAt:  &expire,
		DataLimit: api.Ptr(int64(1 << 30)),
		Tag:       "TRIAL",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if !res.Success || res.Record.ID != api.UUIDID(id) {
		t.Errorf("result = %+v", res)
	}
	if res.Record.ExpireAt == nil || !res.Record.ExpireAt.Equal(expire) {
		t.Errorf("ExpireAt = %v", res.Record.ExpireAt)
	}
}

func TestCreateUserRequiresExpiry(t *testing.T) {
	p, srv := newTestPanel(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend must not be called")
	})
	sess := paneltest.Session(t, api.KindRemnawave, srv.URL)

	_, err := p.CreateUser(context.Background(), sess, &api.UserCreate{Username: "carol"})
	apiErr, ok := api.AsAPIError(err)
	if !ok || apiErr.Type != api.ErrorTypeInvalidRequest || apiErr.Param != "expire_at" {
		t.Fatalf("err = %v, want invalid_request on expire_at", err)
	}
}

func TestUpdateUserStatus(t *testing.T) {
	id := uuid.NewString()
	tests := []struct {
		enabled bool
		path    string
		status  string
		want    api.State
	}{
		{true, "/api/users/" + id + "/actions/enable", "ACTIVE", api.StateActive},
		{false, "/api/users/" + id + "/actions/disable", "DISABLED", api.StateDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			p, srv := newTestPanel(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != tt.path {
					t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
				}
				respond(w, map[string]any{"uuid": id, "username": "carol", "status": tt.status})
			})
			sess := paneltest.Session(t, api.KindRemnawave, srv.URL)

			res, err := p.UpdateUserStatus(context.Background(), sess, api.UUIDID(id), api.UserStatusUpdate{Enabled: tt.enabled})
			if err != nil {
				t.Fatalf("UpdateUserStatus: %v", err)
			}
			if res.Record.Status.State != tt.want {
				t.Errorf("State = %q, want %q", res.Record.Status.State, tt.want)
			}
		})
	}
}

func TestIDKindEnforced(t *testing.T) {
	p, srv := newTestPanel(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("backend called with %s %s", r.Method, r.URL.Path)
	})
	sess := paneltest.Session(t, api.KindRemnawave, srv.URL)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"delete user by name", func() error { _, err := p.DeleteUser(ctx, sess, api.NameID("carol")); return err }},
		{"delete user malformed", func() error { _, err := p.DeleteUser(ctx, sess, api.UUIDID("not-a-uuid")); return err }},
		{"update user numeric", func() error {
			_, err := p.UpdateUserStatus(ctx, sess, api.NumericID(3), api.UserStatusUpdate{Enabled: true})
			return err
		}},
		{"delete node numeric", func() error { _, err := p.DeleteNode(ctx, sess, api.NumericID(1)); return err }},
		{"delete node empty", func() error { _, err := p.DeleteNode(ctx, sess, api.ID{}); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !api.IsType(err, api.ErrorTypeInvalidRequest) {
				t.Errorf("err = %v, want invalid_request", err)
			}
		})
	}
}

func TestDeleteUser(t *testing.T) {
	id := uuid.NewString()
	deleted := true
	p, srv := newTestPanel(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/api/users/"+id {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		respond(w, map[string]bool{"isDeleted": deleted})
	})
	sess := paneltest.Session(t, api.KindRemnawave, srv.URL)

	res, err := p.DeleteUser(context.Background(), sess, api.UUIDID(id))
	if err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if !res.Success || *res.Record != api.UUIDID(id) {
		t.Errorf("result = %+v", res)
	}

	deleted = false
	_, err = p.DeleteUser(context.Background(), sess, api.UUIDID(id))
	if !api.IsType(err, api.ErrorTypeBusiness) {
		t.Errorf("err = %v, want business_failure", err)
	}
}

func TestNodeLifecycle(t *testing.T) {
	id := uuid.NewString()
	p, srv := newTestPanel(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/nodes":
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body["countryCode"] != "DE" || body["port"] != float64(2222) {
				t.Errorf("body = %v", body)
			}
			respond(w, map[string]any{"uuid": id, "name": body["name"], "address": body["address"], "port": 2222, "isConnecting": true})
		case r.Method == http.MethodDelete && r.URL.Path == "/api/nodes/"+id:
			respond(w, map[string]bool{"isDeleted": true})
		case r.Method == http.MethodDelete:
			paneltest.WriteJSON(w, http.StatusNotFound, map[string]any{"message": "Node not found", "errorCode": "A027"})
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	})
	sess := paneltest.Session(t, api.KindRemnawave, srv.URL)
	ctx := context.Background()

	created, err := p.CreateNode(ctx, sess, &api.NodeCreate{Name: "de-2", Address: "10.0.0.9", Port: 2222, CountryCode: "DE"})
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	if created.Record.ID != api.UUIDID(id) || created.Record.Status.State != api.StateConnecting {
		t.Errorf("node = %+v", created.Record)
	}

	if _, err := p.DeleteNode(ctx, sess, created.Record.ID); err != nil {
		t.Fatalf("DeleteNode: %v", err)
	}

	_, err = p.DeleteNode(ctx, sess, api.UUIDID(uuid.NewString()))
	apiErr, ok := api.AsAPIError(err)
	if !ok || apiErr.Type != api.ErrorTypeBusiness || apiErr.Status != http.StatusNotFound || apiErr.Message != "Node not found" {
		t.Errorf("err = %v, want business_failure 404", err)
	}
}

func TestSubscriptionInfo(t *testing.T) {
	p, srv := newTestPanel(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("public call carried Authorization")
		}
		if r.URL.Path != "/api/sub/Zx9k/info" {
			t.Errorf("path = %s", r.URL.Path)
		}
		respond(w, map[string]any{
			"isFound": true,
			"user": map[string]any{
				"shortUuid": "Zx9k", "username": "alice", "daysLeft": 12,
				"trafficUsed": "1.5 GiB", "trafficLimit": "0", "isActive": true, "userStatus": "ACTIVE",
			},
			"links":           []string{"vless://a", "vless://b"},
			"subscriptionUrl": "https://sub.example/Zx9k",
		})
	})

	info, err := p.SubscriptionInfo(context.Background(), srv.URL, "Zx9k")
	if err != nil {
		t.Fatalf("SubscriptionInfo: %v", err)
	}
	if !info.IsFound || info.User.Username != "alice" || *info.User.DaysLeft != 12 || len(info.Links) != 2 {
		t.Errorf("info = %+v", info)
	}

	if _, err := p.SubscriptionInfo(context.Background(), srv.URL, ""); !api.IsType(err, api.ErrorTypeInvalidRequest) {
		t.Errorf("empty short uuid err = %v", err)
	}
}

func TestUnsupported(t *testing.T) {
	p, srv := newTestPanel(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("backend called with %s %s", r.Method, r.URL.Path)
	})
	paneltest.CheckUnsupported(t, p, paneltest.Session(t, api.KindRemnawave, srv.URL))
}

func TestRegistered(t *testing.T) {
	p, err := panel.New(api.KindRemnawave, panel.Config{})
	if err != nil {
		t.Fatalf("panel.New: %v", err)
	}
	defer p.Close()
	if _, ok := p.(*Panel); !ok {
		t.Errorf("registered type = %T", p)
	}
	if caps := p.Capabilities(); caps.Pagination != panel.PaginationStart || caps.UserID != api.IDUUID || caps.NodeID != api.IDUUID {
		t.Errorf("capabilities = %+v", caps)
	}
}
