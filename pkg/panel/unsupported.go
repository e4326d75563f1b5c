package panel

import (
	"context"
	"time"

	"github.com/rhuss/opexcore/pkg/api"
)

// Unsupported implements every optional Panel operation by returning an
// unsupported error. Adapters embed it and override what their backend
// offers.
type Unsupported struct {
	Backend api.Kind
}

func (u Unsupported) err(op Op) error {
	return api.NewUnsupportedError(u.Backend, string(op))
}

func (u Unsupported) ListAdmins(context.Context, *api.Session, api.PageRequest) (*api.Page[api.Admin], error) {
	return nil, u.err(OpListAdmins)
}

func (u Unsupported) ListUsers(context.Context, *api.Session, api.PageRequest) (*api.Page[api.User], error) {
	return nil, u.err(OpListUsers)
}

func (u Unsupported) ListNodes(context.Context, *api.Session, api.PageRequest) (*api.Page[api.Node], error) {
	return nil, u.err(OpListNodes)
}

func (u Unsupported) ListServices(context.Context, *api.Session, api.PageRequest) (*api.Page[api.Service], error) {
	return nil, u.err(OpListServices)
}

func (u Unsupported) ListHosts(context.Context, *api.Session, api.PageRequest) (*api.Page[api.Host], error) {
	return nil, u.err(OpListHosts)
}

func (u Unsupported) ListInbounds(context.Context, *api.Session, api.PageRequest) (*api.Page[api.Inbound], error) {
	return nil, u.err(OpListInbounds)
}

func (u Unsupported) Stats(context.Context, *api.Session) (*api.Stats, error) {
	return nil, u.err(OpStats)
}

func (u Unsupported) UsersStats(context.Context, *api.Session) (*api.UserCounts, error) {
	return nil, u.err(OpUsersStats)
}

func (u Unsupported) NodesStats(context.Context, *api.Session) (*api.NodeCounts, error) {
	return nil, u.err(OpNodesStats)
}

func (u Unsupported) TrafficStats(context.Context, *api.Session, time.Time, time.Time) (*api.TrafficStats, error) {
	return nil, u.err(OpTrafficStats)
}

func (u Unsupported) CreateUser(context.Context, *api.Session, *api.UserCreate) (*api.Result[api.User], error) {
	return nil, u.err(OpCreateUser)
}

func (u Unsupported) UpdateUserStatus(context.Context, *api.Session, api.ID, api.UserStatusUpdate) (*api.Result[api.User], error) {
	return nil, u.err(OpUpdateUserStatus)
}

func (u Unsupported) DeleteUser(context.Context, *api.Session, api.ID) (*api.Result[api.ID], error) {
	return nil, u.err(OpDeleteUser)
}

func (u Unsupported) CreateNode(context.Context, *api.Session, *api.NodeCreate) (*api.Result[api.Node], error) {
	return nil, u.err(OpCreateNode)
}

func (u Unsupported) DeleteNode(context.Context, *api.Session, api.ID) (*api.Result[api.ID], error) {
	return nil, u.err(OpDeleteNode)
}
