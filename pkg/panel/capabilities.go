package panel

import (
	"slices"

	"github.com/rhuss/opexcore/pkg/api"
)

// Op names a Panel operation.
type Op string

const (
	OpLogin            Op = "Login"
	OpCurrentAdmin     Op = "CurrentAdmin"
	OpListAdmins       Op = "ListAdmins"
	OpListUsers        Op = "ListUsers"
	OpListNodes        Op = "ListNodes"
	OpListServices     Op = "ListServices"
	OpListHosts        Op = "ListHosts"
	OpListInbounds     Op = "ListInbounds"
	OpStats            Op = "Stats"
	OpUsersStats       Op = "UsersStats"
	OpNodesStats       Op = "NodesStats"
	OpTrafficStats     Op = "TrafficStats"
	OpCreateUser       Op = "CreateUser"
	OpUpdateUserStatus Op = "UpdateUserStatus"
	OpDeleteUser       Op = "DeleteUser"
	OpCreateNode       Op = "CreateNode"
	OpDeleteNode       Op = "DeleteNode"
)

// AllOps lists every Panel operation in declaration order.
func AllOps() []Op {
	return []Op{
		OpLogin, OpCurrentAdmin,
		OpListAdmins, OpListUsers, OpListNodes, OpListServices, OpListHosts, OpListInbounds,
		OpStats, OpUsersStats, OpNodesStats, OpTrafficStats,
		OpCreateUser, OpUpdateUserStatus, OpDeleteUser, OpCreateNode, OpDeleteNode,
	}
}

// Pagination describes how a backend pages its collections.
type Pagination string

const (
	// PaginationNone returns whole collections; pages are cut client-side
	// and carry no total.
	PaginationNone Pagination = "none"
	// PaginationOffset sends offset and limit.
	PaginationOffset Pagination = "offset"
	// PaginationPage sends page and size.
	PaginationPage Pagination = "page"
	// PaginationStart sends a start offset and size.
	PaginationStart Pagination = "start"
)

// Capabilities declares what a backend supports.
type Capabilities struct {
	Kind api.Kind

	// Pagination is the user listing style; other collections may differ
	// and are documented per adapter.
	Pagination Pagination

	// UserID and NodeID are the identifier kinds mutation calls accept.
	UserID api.IDKind
	NodeID api.IDKind

	// Envelope is true when the backend wraps outcomes in {success, msg}
	// and logical failures come back as Result.Success == false.
	Envelope bool

	// Ops lists the supported operations.
	Ops []Op
}

// Supports reports whether op is available.
func (c Capabilities) Supports(op Op) bool {
	return slices.Contains(c.Ops, op)
}
