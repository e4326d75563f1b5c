package ovpanel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rhuss/opexcore/pkg/api"
	"github.com/rhuss/opexcore/pkg/debug"
	"github.com/rhuss/opexcore/pkg/decode"
	"github.com/rhuss/opexcore/pkg/panel"
)

func init() {
	panel.Register(api.KindOVPanel, func(cfg panel.Config) panel.Panel { return New(cfg) })
}

// Panel is the OVPanel adapter.
type Panel struct {
	panel.Unsupported
	*panel.Base
}

// Compile-time interface check.
var _ panel.Panel = (*Panel)(nil)

// New creates an OVPanel adapter.
func New(cfg panel.Config) *Panel {
	return &Panel{
		Unsupported: panel.Unsupported{Backend: api.KindOVPanel},
		Base:        panel.NewBase(api.KindOVPanel, cfg),
	}
}

// Capabilities returns what OVPanel supports.
func (p *Panel) Capabilities() panel.Capabilities {
	return panel.Capabilities{
		Kind:       api.KindOVPanel,
		Pagination: panel.PaginationNone,
		UserID:     api.IDName,
		NodeID:     api.IDName,
		Envelope:   true,
		Ops: []panel.Op{
			panel.OpLogin, panel.OpCurrentAdmin,
			panel.OpListAdmins, panel.OpListUsers, panel.OpListNodes,
			panel.OpStats, panel.OpUsersStats,
			panel.OpCreateUser, panel.OpUpdateUserStatus, panel.OpDeleteUser,
			panel.OpCreateNode, panel.OpDeleteNode,
		},
	}
}

// Login exchanges credentials for an access token.
func (p *Panel) Login(ctx context.Context, host, username, password string) (*api.Session, error) {
	body, err := p.FormLogin(ctx, host, "/api/login", username, password)
	if err != nil {
		return nil, err
	}
	var tok Token
	if err := decode.Object(body, &tok, "access_token"); err != nil {
		return nil, p.Wrap(panel.OpLogin, err)
	}
	return p.NewSession(host, username, tok.AccessToken)
}

// fetch performs a GET and decodes the envelope.
func (p *Panel) fetch(ctx context.Context, sess *api.Session, op panel.Op, path string) (*decode.Envelope, error) {
	body, err := p.Get(ctx, sess, op, path, nil)
	if err != nil {
		return nil, err
	}
	env, err := decode.DecodeEnvelope(body)
	if err != nil {
		return nil, p.Wrap(op, err)
	}
	return env, nil
}

// read returns the envelope payload of a GET whose result type has no
// success flag. An unsuccessful envelope is a business failure there.
func (p *Panel) read(ctx context.Context, sess *api.Session, op panel.Op, path string) (json.RawMessage, error) {
	env, err := p.fetch(ctx, sess, op, path)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, p.Wrap(op, api.NewBusinessError(http.StatusOK, env.Msg))
	}
	return env.Data, nil
}

// readResult returns a GET as a Result, so success=false stays a value.
func readResult[T any](ctx context.Context, p *Panel, sess *api.Session, op panel.Op, path string, convert func(json.RawMessage) (*T, error)) (*api.Result[T], error) {
	env, err := p.fetch(ctx, sess, op, path)
	if err != nil {
		return nil, err
	}
	res, err := decode.EnvelopeResult(env, convert)
	if err != nil {
		return nil, p.Wrap(op, err)
	}
	return res, nil
}

// rawRecord keeps a non-null payload as the Record.
func rawRecord(data json.RawMessage) (*json.RawMessage, error) {
	if data == nil {
		return nil, nil
	}
	return &data, nil
}

// readList reads an envelope whose payload is a list; a null payload is
// an empty list.
func readList[T any](ctx context.Context, p *Panel, sess *api.Session, op panel.Op, path string, required ...string) ([]T, error) {
	data, err := p.read(ctx, sess, op, path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || string(data) == "null" {
		return []T{}, nil
	}
	items, err := decode.List[T](data, required...)
	if err != nil {
		return nil, p.Wrap(op, err)
	}
	return items, nil
}

// Admins returns every admin.
func (p *Panel) Admins(ctx context.Context, sess *api.Session) ([]Admin, error) {
	return readList[Admin](ctx, p, sess, panel.OpListAdmins, "/api/admin/all", "username")
}

// CurrentAdmin finds the session's login username among the admins.
func (p *Panel) CurrentAdmin(ctx context.Context, sess *api.Session) (*api.Admin, error) {
	admins, err := readList[Admin](ctx, p, sess, panel.OpCurrentAdmin, "/api/admin/all", "username")
	if err != nil {
		return nil, err
	}
	for _, a := range admins {
		if a.Username == sess.Username() {
			admin := ToAdmin(a)
			return &admin, nil
		}
	}
	return nil, p.Wrap(panel.OpCurrentAdmin,
		api.NewBusinessError(http.StatusOK, "admin "+sess.Username()+" not found"))
}

// ListAdmins returns the requested window of admins.
func (p *Panel) ListAdmins(ctx context.Context, sess *api.Session, req api.PageRequest) (*api.Page[api.Admin], error) {
	admins, err := p.Admins(ctx, sess)
	if err != nil {
		return nil, err
	}
	return api.MapPage(api.Window(admins, req), ToAdmin), nil
}

// Users returns every user.
func (p *Panel) Users(ctx context.Context, sess *api.Session) ([]User, error) {
	return readList[User](ctx, p, sess, panel.OpListUsers, "/api/user/all", userKeys...)
}

// ListUsers returns the requested window of users.
func (p *Panel) ListUsers(ctx context.Context, sess *api.Session, req api.PageRequest) (*api.Page[api.User], error) {
	users, err := p.Users(ctx, sess)
	if err != nil {
		return nil, err
	}
	return api.MapPage(api.Window(users, req), ToUser), nil
}

// ListNodes returns the requested window of nodes.
func (p *Panel) ListNodes(ctx context.Context, sess *api.Session, req api.PageRequest) (*api.Page[api.Node], error) {
	nodes, err := readList[Node](ctx, p, sess, panel.OpListNodes, "/api/node/list", nodeKeys...)
	if err != nil {
		return nil, err
	}
	return api.MapPage(api.Window(nodes, req), ToNode), nil
}

// ServerInfo returns host resource usage. A successful envelope must
// carry the info object.
func (p *Panel) ServerInfo(ctx context.Context, sess *api.Session) (*api.Result[ServerInfo], error) {
	return readResult(ctx, p, sess, "ServerInfo", "/api/server/info", func(data json.RawMessage) (*ServerInfo, error) {
		if !decode.IsObject(data) {
			return nil, api.NewDecodeError("data", "server info payload is not an object", nil)
		}
		var info ServerInfo
		if err := decode.Object(data, &info); err != nil {
			return nil, err
		}
		return &info, nil
	})
}

// Settings returns the panel settings as sent by the backend.
func (p *Panel) Settings(ctx context.Context, sess *api.Session) (*api.Result[json.RawMessage], error) {
	return readResult(ctx, p, sess, "Settings", "/api/settings/", rawRecord)
}

// NodeStatus returns the live status of the node at address. An unknown
// node comes back as an unsuccessful Result.
func (p *Panel) NodeStatus(ctx context.Context, sess *api.Session, address string) (*api.Result[json.RawMessage], error) {
	if address == "" {
		return nil, p.Wrap("NodeStatus", api.NewInvalidRequestError("address", "address is required"))
	}
	return readResult(ctx, p, sess, "NodeStatus", "/api/node/status/"+url.PathEscape(address), rawRecord)
}

// UsersStats counts users by their active flag.
func (p *Panel) UsersStats(ctx context.Context, sess *api.Session) (*api.UserCounts, error) {
	users, err := p.Users(ctx, sess)
	if err != nil {
		return nil, p.Wrap(panel.OpUsersStats, err)
	}
	counts := countUsers(users)
	return &counts, nil
}

// Stats combines server info with user counters.
func (p *Panel) Stats(ctx context.Context, sess *api.Session) (*api.Stats, error) {
	var (
		info   *ServerInfo
		counts *api.UserCounts
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := p.ServerInfo(ctx, sess)
		if err != nil {
			return err
		}
		if !res.Success {
			return api.NewBusinessError(http.StatusOK, res.Message)
		}
		if res.Record == nil {
			return api.NewDecodeError("data", "server info payload is missing", nil)
		}
		info = res.Record
		return nil
	})
	g.Go(func() (err error) {
		counts, err = p.UsersStats(ctx, sess)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, p.Wrap(panel.OpStats, err)
	}
	return &api.Stats{
		Users:       *counts,
		CPUUsage:    info.CPU,
		CPUCores:    info.CPUCores,
		MemoryTotal: info.MemoryTotal,
		MemoryUsed:  info.MemoryUsed,
		Detail:      *info,
	}, nil
}

// mutate sends a mutation and returns its envelope.
func (p *Panel) mutate(ctx context.Context, sess *api.Session, op panel.Op, method, path string, body any) (*decode.Envelope, error) {
	var (
		raw []byte
		err error
	)
	switch method {
	case http.MethodPost:
		raw, err = p.Post(ctx, sess, op, path, body)
	case http.MethodPut:
		raw, err = p.Put(ctx, sess, op, path, body)
	default:
		raw, err = p.Delete(ctx, sess, op, path)
	}
	if err != nil {
		return nil, err
	}
	env, err := decode.DecodeEnvelope(raw)
	if err != nil {
		return nil, p.Wrap(op, err)
	}
	if !env.Success {
		debug.Log("panel", "mutation rejected", "backend", api.KindOVPanel, "op", op, "msg", env.Msg)
	}
	return env, nil
}

// CreateUser creates a user. ExpireAt is required and sent as a date.
func (p *Panel) CreateUser(ctx context.Context, sess *api.Session, req *api.UserCreate) (*api.Result[api.User], error) {
	if err := api.ValidateUserCreate(req, time.Now()); err != nil {
		return nil, p.Wrap(panel.OpCreateUser, err)
	}
	if req.ExpireAt == nil {
		return nil, p.Wrap(panel.OpCreateUser, api.NewInvalidRequestError("expire_at", "an expiry date is required"))
	}
	env, err := p.mutate(ctx, sess, panel.OpCreateUser, http.MethodPost, "/api/user/create",
		userCreate{Name: req.Username, ExpiryDate: req.ExpireAt.Format(dateLayout)})
	if err != nil {
		return nil, err
	}
	res, err := decode.EnvelopeResult(env, userRecord)
	if err != nil {
		return nil, p.Wrap(panel.OpCreateUser, err)
	}
	return res, nil
}

// UpdateUserStatus sets a user's active flag and expiry date.
func (p *Panel) UpdateUserStatus(ctx context.Context, sess *api.Session, id api.ID, upd api.UserStatusUpdate) (*api.Result[api.User], error) {
	if err := id.Expect("id", api.IDName); err != nil {
		return nil, p.Wrap(panel.OpUpdateUserStatus, err)
	}
	if upd.ExpireAt == nil {
		return nil, p.Wrap(panel.OpUpdateUserStatus, api.NewInvalidRequestError("expire_at", "an expiry date is required"))
	}
	env, err := p.mutate(ctx, sess, panel.OpUpdateUserStatus, http.MethodPut, "/api/user/change-status",
		userStatus{Name: id.Value, ExpiryDate: upd.ExpireAt.Format(dateLayout), Status: upd.Enabled})
	if err != nil {
		return nil, err
	}
	res, err := decode.EnvelopeResult(env, userRecord)
	if err != nil {
		return nil, p.Wrap(panel.OpUpdateUserStatus, err)
	}
	return res, nil
}

// userRecord builds the Record of a successful user mutation. Only a user
// object becomes a Record; any other payload stays in Result.Data.
func userRecord(data json.RawMessage) (*api.User, error) {
	if !decode.IsObject(data) {
		return nil, nil
	}
	var u User
	if err := decode.Object(data, &u, userKeys...); err != nil {
		return nil, err
	}
	user := ToUser(u)
	return &user, nil
}

// nodeRecord is userRecord for nodes.
func nodeRecord(data json.RawMessage) (*api.Node, error) {
	if !decode.IsObject(data) {
		return nil, nil
	}
	var n Node
	if err := decode.Object(data, &n, nodeKeys...); err != nil {
		return nil, err
	}
	node := ToNode(n)
	return &node, nil
}

// DeleteUser removes a user.
func (p *Panel) DeleteUser(ctx context.Context, sess *api.Session, id api.ID) (*api.Result[api.ID], error) {
	if err := id.Expect("id", api.IDName); err != nil {
		return nil, p.Wrap(panel.OpDeleteUser, err)
	}
	env, err := p.mutate(ctx, sess, panel.OpDeleteUser, http.MethodDelete, "/api/user/delete/"+url.PathEscape(id.Value), nil)
	if err != nil {
		return nil, err
	}
	return idResult(env, id), nil
}

// CreateNode registers a node. Key is required.
func (p *Panel) CreateNode(ctx context.Context, sess *api.Session, req *api.NodeCreate) (*api.Result[api.Node], error) {
	if err := api.ValidateNodeCreate(req); err != nil {
		return nil, p.Wrap(panel.OpCreateNode, err)
	}
	if req.Key == "" {
		return nil, p.Wrap(panel.OpCreateNode, api.NewInvalidRequestError("key", "a node key is required"))
	}
	env, err := p.mutate(ctx, sess, panel.OpCreateNode, http.MethodPost, "/api/node/add", toNodeCreate(req))
	if err != nil {
		return nil, err
	}
	res, err := decode.EnvelopeResult(env, nodeRecord)
	if err != nil {
		return nil, p.Wrap(panel.OpCreateNode, err)
	}
	return res, nil
}

// DeleteNode removes the node at the address carried by id.
func (p *Panel) DeleteNode(ctx context.Context, sess *api.Session, id api.ID) (*api.Result[api.ID], error) {
	if err := id.Expect("id", api.IDName); err != nil {
		return nil, p.Wrap(panel.OpDeleteNode, err)
	}
	env, err := p.mutate(ctx, sess, panel.OpDeleteNode, http.MethodDelete, "/api/node/delete/"+url.PathEscape(id.Value), nil)
	if err != nil {
		return nil, err
	}
	return idResult(env, id), nil
}

func idResult(env *decode.Envelope, id api.ID) *api.Result[api.ID] {
	res, _ := decode.EnvelopeResult(env, func(json.RawMessage) (*api.ID, error) { return &id, nil })
	return res
}
