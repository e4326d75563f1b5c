package paneltest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rhuss/opexcore/pkg/api"
	"github.com/rhuss/opexcore/pkg/debug"
)

// Options configures a fake panel.
type Options struct {
	// Users and Nodes seed the store with that many records, named
	// user-01.. and node-1...
	Users int
	Nodes int

	// TokenTTL is the lifetime of issued tokens. Zero means one hour.
	TokenTTL time.Duration
}

// Server is a fake panel listening on a local httptest server.
type Server struct {
	*httptest.Server
	Kind api.Kind

	fake *fake
}

// NewServer starts a fake panel of the given kind. It panics when kind has
// no fake, mirroring httptest.NewServer's handling of listener failures.
func NewServer(kind api.Kind, opts Options) *Server {
	f, err := newFake(kind, opts)
	if err != nil {
		panic(err)
	}
	return &Server{Server: httptest.NewServer(f.mux), Kind: kind, fake: f}
}

// NewHandler returns the HTTP handler of a fake panel without starting a
// listener.
func NewHandler(kind api.Kind, opts Options) (http.Handler, error) {
	f, err := newFake(kind, opts)
	if err != nil {
		return nil, err
	}
	return f.mux, nil
}

// UserCount returns the number of users currently stored.
func (s *Server) UserCount() int {
	s.fake.mu.Lock()
	defer s.fake.mu.Unlock()
	return len(s.fake.users)
}

// NodeCount returns the number of nodes currently stored.
func (s *Server) NodeCount() int {
	s.fake.mu.Lock()
	defer s.fake.mu.Unlock()
	return len(s.fake.nodes)
}

type userRecord struct {
	id        int64
	uuid      string
	shortID   string
	name      string
	enabled   bool
	expire    time.Time
	limit     int64
	used      int64
	note      string
	createdAt time.Time
}

// status follows the precedence shared by the backends: disabled, then
// limited, then expired.
func (u *userRecord) status(now time.Time) string {
	switch {
	case !u.enabled:
		return "disabled"
	case u.limit > 0 && u.used >= u.limit:
		return "limited"
	case !u.expire.IsZero() && !u.expire.After(now):
		return "expired"
	default:
		return "active"
	}
}

type nodeRecord struct {
	id      int64
	uuid    string
	name    string
	address string
	port    int
	enabled bool
}

// fake holds the in-memory state shared by every backend dialect.
type fake struct {
	kind api.Kind
	ttl  time.Duration
	mux  *http.ServeMux

	mu     sync.Mutex
	nextID int64
	users  []*userRecord
	nodes  []*nodeRecord
}

func newFake(kind api.Kind, opts Options) (*fake, error) {
	f := &fake{kind: kind, ttl: opts.TokenTTL, mux: http.NewServeMux()}
	if f.ttl <= 0 {
		f.ttl = time.Hour
	}
	for i := 1; i <= opts.Users; i++ {
		f.addUser(fmt.Sprintf("user-%02d", i), time.Time{}, 0, "")
	}
	for i := 1; i <= opts.Nodes; i++ {
		f.addNode(fmt.Sprintf("node-%d", i), fmt.Sprintf("10.0.0.%d", i), 62050)
	}

	switch kind {
	case api.KindMarzban, api.KindPasarGuard:
		f.routeMarzban()
	case api.KindMarzneshin, api.KindRustneshin:
		f.routeMarzneshin()
	case api.KindGuard:
		f.routeGuard()
	case api.KindOVPanel:
		f.routeOVPanel()
	case api.KindRemnawave:
		f.routeRemnawave()
	default:
		return nil, fmt.Errorf("paneltest: no fake for panel kind %q", kind)
	}
	f.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	return f, nil
}

// addUser stores a new enabled user. It returns nil when the name is taken.
func (f *fake) addUser(name string, expire time.Time, limit int64, note string) *userRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.userLocked(name) != nil {
		return nil
	}
	f.nextID++
	u := &userRecord{
		id:        f.nextID,
		uuid:      uuid.NewString(),
		shortID:   strings.ReplaceAll(uuid.NewString(), "-", "")[:16],
		name:      name,
		enabled:   true,
		expire:    expire,
		limit:     limit,
		note:      note,
		createdAt: time.Now().UTC().Truncate(time.Second),
	}
	f.users = append(f.users, u)
	return u
}

func (f *fake) userLocked(name string) *userRecord {
	for _, u := range f.users {
		if u.name == name {
			return u
		}
	}
	return nil
}

// findUser returns a copy of the first user matching pred.
func (f *fake) findUser(pred func(*userRecord) bool) (userRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if pred(u) {
			return *u, true
		}
	}
	return userRecord{}, false
}

// updateUser applies fn to the first user matching pred and returns the
// updated copy.
func (f *fake) updateUser(pred func(*userRecord) bool, fn func(*userRecord)) (userRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if pred(u) {
			fn(u)
			return *u, true
		}
	}
	return userRecord{}, false
}

func (f *fake) deleteUser(pred func(*userRecord) bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.users)
	f.users = slices.DeleteFunc(f.users, pred)
	return len(f.users) < n
}

// usersSnapshot returns copies of all users in creation order.
func (f *fake) usersSnapshot() []userRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]userRecord, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out
}

// addNode stores a new enabled node. It returns nil when the name or the
// address is taken.
func (f *fake) addNode(name, address string, port int) *nodeRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.nodes {
		if n.name == name || n.address == address {
			return nil
		}
	}
	f.nextID++
	n := &nodeRecord{id: f.nextID, uuid: uuid.NewString(), name: name, address: address, port: port, enabled: true}
	f.nodes = append(f.nodes, n)
	return n
}

func (f *fake) deleteNode(pred func(*nodeRecord) bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.nodes)
	f.nodes = slices.DeleteFunc(f.nodes, pred)
	return len(f.nodes) < n
}

func (f *fake) nodesSnapshot() []nodeRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]nodeRecord, 0, len(f.nodes))
	for _, n := range f.nodes {
		out = append(out, *n)
	}
	return out
}

// counts tallies users by status string.
func (f *fake) counts(now time.Time) map[string]int {
	out := map[string]int{}
	for _, u := range f.usersSnapshot() {
		out[u.status(now)]++
	}
	return out
}

// issue mints an access token for AdminUser with the given extra claims.
func (f *fake) issue(extra map[string]any) string {
	now := time.Now()
	claims := map[string]any{
		"sub": AdminUser,
		"iat": now.Unix(),
		"exp": now.Add(f.ttl).Unix(),
	}
	for k, v := range extra {
		claims[k] = v
	}
	return MintToken(claims)
}

// authorized reports whether r carries a valid bearer token.
func authorized(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	_, valid := ParseToken(token)
	return valid
}

// bearer wraps h so that requests without a valid token get 401 with the
// body written by deny.
func bearer(h http.HandlerFunc, deny func(http.ResponseWriter)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			debug.Log("panel", "fake rejected token", "path", r.URL.Path)
			deny(w)
			return
		}
		h(w, r)
	}
}

func denyDetail(w http.ResponseWriter) {
	WriteDetail(w, http.StatusUnauthorized, "Could not validate credentials")
}

// formCredentials reports whether an OAuth2 password form carries the
// fake's credentials.
func formCredentials(r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		return false
	}
	return r.PostForm.Get("username") == AdminUser && r.PostForm.Get("password") == AdminPassword
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// window cuts items to [offset, offset+limit). A non-positive limit
// returns everything from offset on.
func window[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// queryInt reads an integer query parameter, returning def when absent or
// malformed.
func queryInt(q url.Values, key string, def int) int {
	n, err := strconv.Atoi(q.Get(key))
	if err != nil {
		return def
	}
	return n
}

func unixOrNil(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Unix()
}

func rfc3339OrNil(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
