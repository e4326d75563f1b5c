package remnawave

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rhuss/opexcore/pkg/api"
	"github.com/rhuss/opexcore/pkg/auth"
	"github.com/rhuss/opexcore/pkg/decode"
	"github.com/rhuss/opexcore/pkg/panel"
)

// OpSubscriptionInfo names the public subscription lookup.
const OpSubscriptionInfo panel.Op = "SubscriptionInfo"

func init() {
	panel.Register(api.KindRemnawave, func(cfg panel.Config) panel.Panel { return New(cfg) })
}

// Panel is the Remnawave adapter.
type Panel struct {
	panel.Unsupported
	*panel.Base
}

var _ panel.Panel = (*Panel)(nil)

// New creates a Remnawave adapter.
func New(cfg panel.Config) *Panel {
	return &Panel{
		Unsupported: panel.Unsupported{Backend: api.KindRemnawave},
		Base:        panel.NewBase(api.KindRemnawave, cfg),
	}
}

// Capabilities returns what the backend supports.
func (p *Panel) Capabilities() panel.Capabilities {
	return panel.Capabilities{
		Kind:       api.KindRemnawave,
		Pagination: panel.PaginationStart,
		UserID:     api.IDUUID,
		NodeID:     api.IDUUID,
		Ops: []panel.Op{
			panel.OpLogin, panel.OpCurrentAdmin,
			panel.OpListUsers, panel.OpListNodes, panel.OpListHosts,
			panel.OpStats, panel.OpUsersStats, panel.OpNodesStats,
			panel.OpCreateUser, panel.OpUpdateUserStatus, panel.OpDeleteUser,
			panel.OpCreateNode, panel.OpDeleteNode,
		},
	}
}

// Login exchanges credentials for an access token.
func (p *Panel) Login(ctx context.Context, host, username, password string) (*api.Session, error) {
	body, err := p.JSONLogin(ctx, host, "/api/auth/login", username, password)
	if err != nil {
		return nil, err
	}
	var tok Token
	if err := read(body, &tok, "accessToken"); err != nil {
		return nil, p.Wrap(panel.OpLogin, err)
	}
	return p.NewSession(host, username, tok.AccessToken)
}

// CurrentAdmin returns the admin named in the session token. The panel
// has no identity endpoint, so the token is checked against a one-user
// listing first; opaque tokens fall back to the login username.
func (p *Panel) CurrentAdmin(ctx context.Context, sess *api.Session) (*api.Admin, error) {
	if err := panel.CheckSession(sess, api.KindRemnawave); err != nil {
		return nil, p.Wrap(panel.OpCurrentAdmin, err)
	}
	now := time.Now()
	info, ok := auth.InspectToken(sess.Token())
	if sess.Expired(now) || (ok && !info.ExpiresAt.IsZero() && !now.Before(info.ExpiresAt)) {
		return nil, p.Wrap(panel.OpCurrentAdmin,
			api.NewAuthenticationError(http.StatusUnauthorized, "session token has expired"))
	}
	if _, err := p.Get(ctx, sess, panel.OpCurrentAdmin, "/api/users", StartQuery(api.FirstPage(1))); err != nil {
		return nil, err
	}
	if !ok {
		admin := api.Admin{ID: api.NameID(sess.Username()), Username: sess.Username()}
		return &admin, nil
	}
	admin := adminFromToken(info, sess.Username())
	return &admin, nil
}

// ListUsers returns one page of users.
func (p *Panel) ListUsers(ctx context.Context, sess *api.Session, req api.PageRequest) (*api.Page[api.User], error) {
	body, err := p.Get(ctx, sess, panel.OpListUsers, "/api/users", StartQuery(req))
	if err != nil {
		return nil, err
	}
	inner, err := decode.Unwrap(body, "response")
	if err != nil {
		return nil, p.Wrap(panel.OpListUsers, err)
	}
	page, err := decode.Totaled[User](inner, "users", "total", req, "uuid", "username", "status")
	if err != nil {
		return nil, p.Wrap(panel.OpListUsers, err)
	}
	return api.MapPage(page, ToUser), nil
}

// ListNodes returns one page of nodes. The panel returns every node.
func (p *Panel) ListNodes(ctx context.Context, sess *api.Session, req api.PageRequest) (*api.Page[api.Node], error) {
	page, err := listFlat[Node](ctx, p, sess, panel.OpListNodes, "/api/nodes", req, "uuid", "name")
	if err != nil {
		return nil, err
	}
	return api.MapPage(page, ToNode), nil
}

// ListHosts returns one page of hosts. The panel returns every host.
func (p *Panel) ListHosts(ctx context.Context, sess *api.Session, req api.PageRequest) (*api.Page[api.Host], error) {
	page, err := listFlat[Host](ctx, p, sess, panel.OpListHosts, "/api/hosts", req, "uuid", "remark")
	if err != nil {
		return nil, err
	}
	return api.MapPage(page, ToHost), nil
}

func listFlat[T any](ctx context.Context, p *Panel, sess *api.Session, op panel.Op, path string, req api.PageRequest, required ...string) (*api.Page[T], error) {
	body, err := p.Get(ctx, sess, op, path, nil)
	if err != nil {
		return nil, err
	}
	inner, err := decode.Unwrap(body, "response")
	if err != nil {
		return nil, p.Wrap(op, err)
	}
	all, err := decode.List[T](inner, required...)
	if err != nil {
		return nil, p.Wrap(op, err)
	}
	return api.Window(all, req), nil
}

// SystemStats returns the raw system stats.
func (p *Panel) SystemStats(ctx context.Context, sess *api.Session) (*SystemStats, error) {
	return p.systemStats(ctx, sess, "SystemStats")
}

func (p *Panel) systemStats(ctx context.Context, sess *api.Session, op panel.Op) (*SystemStats, error) {
	body, err := p.Get(ctx, sess, op, "/api/system/stats", nil)
	if err != nil {
		return nil, err
	}
	var s SystemStats
	if err := read(body, &s, "users"); err != nil {
		return nil, p.Wrap(op, err)
	}
	return &s, nil
}

// Stats returns the panel-wide counters and host resources.
func (p *Panel) Stats(ctx context.Context, sess *api.Session) (*api.Stats, error) {
	s, err := p.systemStats(ctx, sess, panel.OpStats)
	if err != nil {
		return nil, err
	}
	stats := ToStats(*s)
	return &stats, nil
}

// UsersStats returns the user counters by status.
func (p *Panel) UsersStats(ctx context.Context, sess *api.Session) (*api.UserCounts, error) {
	s, err := p.systemStats(ctx, sess, panel.OpUsersStats)
	if err != nil {
		return nil, err
	}
	counts := ToUserCounts(*s)
	return &counts, nil
}

// NodesStats returns the online node count.
func (p *Panel) NodesStats(ctx context.Context, sess *api.Session) (*api.NodeCounts, error) {
	s, err := p.systemStats(ctx, sess, panel.OpNodesStats)
	if err != nil {
		return nil, err
	}
	counts := ToNodeCounts(*s)
	return &counts, nil
}

// CreateUser creates an active user. The panel requires an expiry.
func (p *Panel) CreateUser(ctx context.Context, sess *api.Session, req *api.UserCreate) (*api.Result[api.User], error) {
	if err := api.ValidateUserCreate(req, time.Now()); err != nil {
		return nil, p.Wrap(panel.OpCreateUser, err)
	}
	if req.ExpireAt == nil {
		return nil, p.Wrap(panel.OpCreateUser, api.NewInvalidRequestError("expire_at", "remnawave requires expire_at"))
	}
	body, err := p.Post(ctx, sess, panel.OpCreateUser, "/api/users", toUserCreate(req))
	if err != nil {
		return nil, err
	}
	return p.userResult(panel.OpCreateUser, body)
}

// UpdateUserStatus enables or disables a user. ExpireAt is ignored.
func (p *Panel) UpdateUserStatus(ctx context.Context, sess *api.Session, id api.ID, upd api.UserStatusUpdate) (*api.Result[api.User], error) {
	if err := id.Expect("id", api.IDUUID); err != nil {
		return nil, p.Wrap(panel.OpUpdateUserStatus, err)
	}
	action := "disable"
	if upd.Enabled {
		action = "enable"
	}
	body, err := p.Post(ctx, sess, panel.OpUpdateUserStatus, "/api/users/"+id.Value+"/actions/"+action, nil)
	if err != nil {
		return nil, err
	}
	return p.userResult(panel.OpUpdateUserStatus, body)
}

// DeleteUser removes a user.
func (p *Panel) DeleteUser(ctx context.Context, sess *api.Session, id api.ID) (*api.Result[api.ID], error) {
	return p.remove(ctx, sess, panel.OpDeleteUser, "/api/users/", id)
}

// CreateNode registers a node.
func (p *Panel) CreateNode(ctx context.Context, sess *api.Session, req *api.NodeCreate) (*api.Result[api.Node], error) {
	if err := api.ValidateNodeCreate(req); err != nil {
		return nil, p.Wrap(panel.OpCreateNode, err)
	}
	body, err := p.Post(ctx, sess, panel.OpCreateNode, "/api/nodes", toNodeCreate(req))
	if err != nil {
		return nil, err
	}
	var n Node
	if err := read(body, &n, "uuid", "name"); err != nil {
		return nil, p.Wrap(panel.OpCreateNode, err)
	}
	node := ToNode(n)
	return api.Succeeded(&node), nil
}

// DeleteNode removes a node.
func (p *Panel) DeleteNode(ctx context.Context, sess *api.Session, id api.ID) (*api.Result[api.ID], error) {
	return p.remove(ctx, sess, panel.OpDeleteNode, "/api/nodes/", id)
}

// remove deletes the resource at prefix+id. A response reporting
// isDeleted=false is a business failure.
func (p *Panel) remove(ctx context.Context, sess *api.Session, op panel.Op, prefix string, id api.ID) (*api.Result[api.ID], error) {
	if err := id.Expect("id", api.IDUUID); err != nil {
		return nil, p.Wrap(op, err)
	}
	body, err := p.Delete(ctx, sess, op, prefix+id.Value)
	if err != nil {
		return nil, err
	}
	var res struct {
		IsDeleted bool `json:"isDeleted"`
	}
	if err := read(body, &res, "isDeleted"); err != nil {
		return nil, p.Wrap(op, err)
	}
	if !res.IsDeleted {
		return nil, p.Wrap(op, api.NewBusinessError(http.StatusOK, id.Value+" was not deleted"))
	}
	return api.Succeeded(&id), nil
}

// SubscriptionInfo returns the public subscription page data for a short
// UUID. It needs no session.
func (p *Panel) SubscriptionInfo(ctx context.Context, host, shortUUID string) (*SubscriptionInfo, error) {
	if shortUUID == "" {
		return nil, p.Wrap(OpSubscriptionInfo, api.NewInvalidRequestError("short_uuid", "short UUID is required"))
	}
	body, err := p.PublicGet(ctx, host, OpSubscriptionInfo, "/api/sub/"+url.PathEscape(shortUUID)+"/info")
	if err != nil {
		return nil, err
	}
	var info SubscriptionInfo
	if err := read(body, &info, "isFound"); err != nil {
		return nil, p.Wrap(OpSubscriptionInfo, err)
	}
	return &info, nil
}

func (p *Panel) userResult(op panel.Op, body []byte) (*api.Result[api.User], error) {
	var u User
	if err := read(body, &u, "uuid", "username", "status"); err != nil {
		return nil, p.Wrap(op, err)
	}
	user := ToUser(u)
	return api.Succeeded(&user), nil
}

// read decodes the payload under the response wrapper.
func read(body []byte, v any, required ...string) error {
	inner, err := decode.Unwrap(body, "response")
	if err != nil {
		return err
	}
	return decode.Object(inner, v, required...)
}

// StartQuery encodes a page request as start and size. Unbounded requests
// send neither and get the panel default.
func StartQuery(req api.PageRequest) url.Values {
	req = req.Normalize()
	if !req.Bounded() {
		return nil
	}
	return url.Values{
		"start": {strconv.Itoa(req.Offset())},
		"size":  {strconv.Itoa(req.Size)},
	}
}
