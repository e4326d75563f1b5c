package panel

import (
	"context"
	"time"

	"github.com/rhuss/opexcore/pkg/api"
)

// Panel abstracts one family of proxy/VPN management panels. Each adapter
// translates the calls into its backend's REST protocol and normalizes the
// responses into pkg/api records.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Panel interface {
	// Kind returns the backend family.
	Kind() api.Kind

	// Capabilities returns what this backend supports.
	Capabilities() Capabilities

	// Login authenticates against host and returns a fresh Session.
	// Rejected credentials yield an authentication_error and no session.
	Login(ctx context.Context, host, username, password string) (*api.Session, error)

	// CurrentAdmin returns the account the session belongs to.
	CurrentAdmin(ctx context.Context, sess *api.Session) (*api.Admin, error)

	ListAdmins(ctx context.Context, sess *api.Session, req api.PageRequest) (*api.Page[api.Admin], error)
	ListUsers(ctx context.Context, sess *api.Session, req api.PageRequest) (*api.Page[api.User], error)
	ListNodes(ctx context.Context, sess *api.Session, req api.PageRequest) (*api.Page[api.Node], error)
	ListServices(ctx context.Context, sess *api.Session, req api.PageRequest) (*api.Page[api.Service], error)
	ListHosts(ctx context.Context, sess *api.Session, req api.PageRequest) (*api.Page[api.Host], error)
	ListInbounds(ctx context.Context, sess *api.Session, req api.PageRequest) (*api.Page[api.Inbound], error)

	// Stats returns a fresh snapshot of panel-wide counters.
	Stats(ctx context.Context, sess *api.Session) (*api.Stats, error)
	UsersStats(ctx context.Context, sess *api.Session) (*api.UserCounts, error)
	NodesStats(ctx context.Context, sess *api.Session) (*api.NodeCounts, error)
	TrafficStats(ctx context.Context, sess *api.Session, start, end time.Time) (*api.TrafficStats, error)

	// Mutations are sent exactly once. Envelope backends report logical
	// failure as Result.Success == false; the others as business_failure.
	CreateUser(ctx context.Context, sess *api.Session, req *api.UserCreate) (*api.Result[api.User], error)
	UpdateUserStatus(ctx context.Context, sess *api.Session, id api.ID, upd api.UserStatusUpdate) (*api.Result[api.User], error)
	DeleteUser(ctx context.Context, sess *api.Session, id api.ID) (*api.Result[api.ID], error)
	CreateNode(ctx context.Context, sess *api.Session, req *api.NodeCreate) (*api.Result[api.Node], error)
	DeleteNode(ctx context.Context, sess *api.Session, id api.ID) (*api.Result[api.ID], error)

	// Close releases HTTP resources and cancels in-flight calls.
	Close() error
}

// CheckSession verifies that sess is usable with a panel of the given kind.
func CheckSession(sess *api.Session, kind api.Kind) error {
	if sess == nil {
		return api.NewInvalidRequestError("session", "session is required; call Login first")
	}
	if sess.Kind() != kind {
		return api.NewInvalidRequestError("session",
			"session was issued by "+string(sess.Kind())+", not "+string(kind))
	}
	return nil
}
