package guard

import (
	"bytes"
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/rhuss/opexcore/pkg/api"
	"github.com/rhuss/opexcore/pkg/decode"
	"github.com/rhuss/opexcore/pkg/panel"
)

func init() {
	panel.Register(api.KindGuard, func(cfg panel.Config) panel.Panel { return New(cfg) })
}

// Panel is the Guard adapter.
type Panel struct {
	panel.Unsupported
	*panel.Base
}

// Compile-time interface check.
var _ panel.Panel = (*Panel)(nil)

// New creates a Guard adapter.
func New(cfg panel.Config) *Panel {
	return &Panel{
		Unsupported: panel.Unsupported{Backend: api.KindGuard},
		Base:        panel.NewBase(api.KindGuard, cfg),
	}
}

// Capabilities returns what Guard supports.
func (p *Panel) Capabilities() panel.Capabilities {
	return panel.Capabilities{
		Kind:       api.KindGuard,
		Pagination: panel.PaginationPage,
		UserID:     api.IDName,
		NodeID:     api.IDNumeric,
		Ops: []panel.Op{
			panel.OpLogin, panel.OpCurrentAdmin,
			panel.OpListAdmins, panel.OpListUsers, panel.OpListNodes, panel.OpListServices,
			panel.OpStats, panel.OpUsersStats, panel.OpNodesStats,
			panel.OpCreateUser, panel.OpUpdateUserStatus, panel.OpDeleteUser,
			panel.OpCreateNode, panel.OpDeleteNode,
		},
	}
}

// Login exchanges credentials for an access token.
func (p *Panel) Login(ctx context.Context, host, username, password string) (*api.Session, error) {
	body, err := p.FormLogin(ctx, host, "/api/admins/token", username, password)
	if err != nil {
		return nil, err
	}
	var tok Token
	if err := decode.Object(body, &tok, "access_token"); err != nil {
		return nil, p.Wrap(panel.OpLogin, err)
	}
	return p.NewSession(host, username, tok.AccessToken)
}

// CurrentAdmin returns the admin the token was issued to.
func (p *Panel) CurrentAdmin(ctx context.Context, sess *api.Session) (*api.Admin, error) {
	body, err := p.Get(ctx, sess, panel.OpCurrentAdmin, "/api/admins/current", nil)
	if err != nil {
		return nil, err
	}
	var a Admin
	if err := decode.Object(body, &a, "username"); err != nil {
		return nil, p.Wrap(panel.OpCurrentAdmin, err)
	}
	admin := ToAdmin(a)
	return &admin, nil
}

// ListAdmins fetches every admin and returns the requested window.
func (p *Panel) ListAdmins(ctx context.Context, sess *api.Session, req api.PageRequest) (*api.Page[api.Admin], error) {
	admins, err := listAll[Admin](ctx, p, sess, panel.OpListAdmins, "/api/admins", "username")
	if err != nil {
		return nil, err
	}
	return api.MapPage(api.Window(admins, req), ToAdmin), nil
}

// ListUsers returns one page of subscriptions. The backend reports no total.
func (p *Panel) ListUsers(ctx context.Context, sess *api.Session, req api.PageRequest) (*api.Page[api.User], error) {
	var q url.Values
	if req = req.Normalize(); req.Bounded() {
		q = url.Values{"page": {strconv.Itoa(req.Page)}, "size": {strconv.Itoa(req.Size)}}
	}
	body, err := p.Get(ctx, sess, panel.OpListUsers, "/api/subscriptions", q)
	if err != nil {
		return nil, err
	}
	page, err := decode.Flat[Subscription](body, req, subscriptionKeys...)
	if err != nil {
		return nil, p.Wrap(panel.OpListUsers, err)
	}
	return api.MapPage(page, ToUser), nil
}

// ListNodes fetches every node and returns the requested window.
func (p *Panel) ListNodes(ctx context.Context, sess *api.Session, req api.PageRequest) (*api.Page[api.Node], error) {
	nodes, err := listAll[Node](ctx, p, sess, panel.OpListNodes, "/api/nodes", nodeKeys...)
	if err != nil {
		return nil, err
	}
	return api.MapPage(api.Window(nodes, req), ToNode), nil
}

// ListServices fetches every service and returns the requested window.
func (p *Panel) ListServices(ctx context.Context, sess *api.Session, req api.PageRequest) (*api.Page[api.Service], error) {
	services, err := listAll[Service](ctx, p, sess, panel.OpListServices, "/api/services", "id")
	if err != nil {
		return nil, err
	}
	return api.MapPage(api.Window(services, req), ToService), nil
}

func listAll[T any](ctx context.Context, p *Panel, sess *api.Session, op panel.Op, path string, required ...string) ([]T, error) {
	body, err := p.Get(ctx, sess, op, path, nil)
	if err != nil {
		return nil, err
	}
	items, err := decode.List[T](body, required...)
	if err != nil {
		return nil, p.Wrap(op, err)
	}
	return items, nil
}

// RawStats returns the /api/stats response.
func (p *Panel) RawStats(ctx context.Context, sess *api.Session) (*Stats, error) {
	body, err := p.Get(ctx, sess, panel.OpStats, "/api/stats", nil)
	if err != nil {
		return nil, err
	}
	var s Stats
	if err := decode.Object(body, &s, "total_subscriptions"); err != nil {
		return nil, p.Wrap(panel.OpStats, err)
	}
	return &s, nil
}

// Stats returns the panel-wide counters.
func (p *Panel) Stats(ctx context.Context, sess *api.Session) (*api.Stats, error) {
	s, err := p.RawStats(ctx, sess)
	if err != nil {
		return nil, err
	}
	stats := ToStats(*s)
	return &stats, nil
}

// NodesStats returns the node counters of /api/stats.
func (p *Panel) NodesStats(ctx context.Context, sess *api.Session) (*api.NodeCounts, error) {
	s, err := p.RawStats(ctx, sess)
	if err != nil {
		return nil, p.Wrap(panel.OpNodesStats, err)
	}
	counts := ToNodeCounts(*s)
	return &counts, nil
}

// UsersStats returns the subscription counters.
func (p *Panel) UsersStats(ctx context.Context, sess *api.Session) (*api.UserCounts, error) {
	body, err := p.Get(ctx, sess, panel.OpUsersStats, "/api/stats/subscriptions", nil)
	if err != nil {
		return nil, err
	}
	var s SubscriptionStats
	if err := decode.Object(body, &s, "total"); err != nil {
		return nil, p.Wrap(panel.OpUsersStats, err)
	}
	counts := ToUserCounts(s)
	return &counts, nil
}

// CreateUser creates one subscription. The backend takes and returns a
// list; the single created record is extracted.
func (p *Panel) CreateUser(ctx context.Context, sess *api.Session, req *api.UserCreate) (*api.Result[api.User], error) {
	if err := api.ValidateUserCreate(req, time.Now()); err != nil {
		return nil, p.Wrap(panel.OpCreateUser, err)
	}
	body, err := p.Post(ctx, sess, panel.OpCreateUser, "/api/subscriptions", []subscriptionCreate{toSubscriptionCreate(req)})
	if err != nil {
		return nil, err
	}
	created, err := decode.List[Subscription](body, subscriptionKeys...)
	if err != nil {
		return nil, p.Wrap(panel.OpCreateUser, err)
	}
	for _, s := range created {
		if s.Username == req.Username {
			user := ToUser(s)
			return api.Succeeded(&user), nil
		}
	}
	return nil, p.Wrap(panel.OpCreateUser,
		api.NewDecodeError("username", "created subscription "+req.Username+" missing from response", nil))
}

// UpdateUserStatus enables or disables a subscription. ExpireAt is ignored.
func (p *Panel) UpdateUserStatus(ctx context.Context, sess *api.Session, id api.ID, upd api.UserStatusUpdate) (*api.Result[api.User], error) {
	if err := id.Expect("id", api.IDName); err != nil {
		return nil, p.Wrap(panel.OpUpdateUserStatus, err)
	}
	action := "/disable"
	if upd.Enabled {
		action = "/enable"
	}
	body, err := p.Put(ctx, sess, panel.OpUpdateUserStatus, "/api/subscriptions/"+url.PathEscape(id.Value)+action, nil)
	if err != nil {
		return nil, err
	}
	s, err := decodeSubscription(body)
	if err != nil {
		return nil, p.Wrap(panel.OpUpdateUserStatus, err)
	}
	user := ToUser(*s)
	return api.Succeeded(&user), nil
}

// decodeSubscription accepts a single subscription or a one-element list;
// releases differ in which they return from bulk-capable endpoints.
func decodeSubscription(body []byte) (*Subscription, error) {
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
		list, err := decode.List[Subscription](body, subscriptionKeys...)
		if err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, api.NewDecodeError("", "empty subscription list", nil)
		}
		return &list[0], nil
	}
	var s Subscription
	if err := decode.Object(body, &s, subscriptionKeys...); err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteUser removes a subscription.
func (p *Panel) DeleteUser(ctx context.Context, sess *api.Session, id api.ID) (*api.Result[api.ID], error) {
	if err := id.Expect("id", api.IDName); err != nil {
		return nil, p.Wrap(panel.OpDeleteUser, err)
	}
	if _, err := p.Delete(ctx, sess, panel.OpDeleteUser, "/api/subscriptions/"+url.PathEscape(id.Value)); err != nil {
		return nil, err
	}
	return api.Succeeded(&id), nil
}

// CreateNode registers a node. Key is sent as the node's api_key.
func (p *Panel) CreateNode(ctx context.Context, sess *api.Session, req *api.NodeCreate) (*api.Result[api.Node], error) {
	if err := api.ValidateNodeCreate(req); err != nil {
		return nil, p.Wrap(panel.OpCreateNode, err)
	}
	body, err := p.Post(ctx, sess, panel.OpCreateNode, "/api/nodes", toNodeCreate(req))
	if err != nil {
		return nil, err
	}
	var n Node
	if err := decode.Object(body, &n, nodeKeys...); err != nil {
		return nil, p.Wrap(panel.OpCreateNode, err)
	}
	node := ToNode(n)
	return api.Succeeded(&node), nil
}

// DeleteNode removes a node.
func (p *Panel) DeleteNode(ctx context.Context, sess *api.Session, id api.ID) (*api.Result[api.ID], error) {
	if err := id.Expect("id", api.IDNumeric); err != nil {
		return nil, p.Wrap(panel.OpDeleteNode, err)
	}
	if _, err := p.Delete(ctx, sess, panel.OpDeleteNode, "/api/nodes/"+id.Value); err != nil {
		return nil, err
	}
	return api.Succeeded(&id), nil
}
