// Package rustneshin implements the panel adapter for Rustneshin, a
// rewrite of Marzneshin that serves the same paths.
//
// Differences from Marzneshin:
//
//	UpdateUserStatus  POST   /api/users/{id}/enable|disable   integer id
//	DeleteUser        DELETE /api/users/{id}                  integer id
//
// Users carry a status string (active, expired, limited, disabled,
// on_hold) which is used verbatim instead of deriving it from flags.
// Services report user_count. Capture the ID returned by CreateUser or
// ListUsers for later mutations; usernames are rejected. A user object
// without an id is a decode_error.
package rustneshin

import (
	"github.com/rhuss/opexcore/pkg/api"
	"github.com/rhuss/opexcore/pkg/panel"
	"github.com/rhuss/opexcore/pkg/panel/marzneshin"
)

func init() {
	panel.Register(api.KindRustneshin, func(cfg panel.Config) panel.Panel { return New(cfg) })
}

// Panel is the Rustneshin adapter.
type Panel struct {
	*marzneshin.Panel
}

// Compile-time interface check.
var _ panel.Panel = (*Panel)(nil)

// New creates a Rustneshin adapter.
func New(cfg panel.Config) *Panel {
	return &Panel{Panel: marzneshin.NewVariant(api.KindRustneshin, api.IDNumeric, cfg)}
}
