// Package marzban implements the panel adapter for Marzban.
//
// Authentication is an OAuth2 password form posted to /api/admin/token.
// The returned JWT carries the privilege level in its "access" claim
// ("sudo" or "admin"), which the session exposes as Sudo.
//
// Endpoints:
//
//	Login             POST   /api/admin/token            form
//	CurrentAdmin      GET    /api/admin
//	ListAdmins        GET    /api/admins?offset&limit    flat list
//	ListUsers         GET    /api/users?offset&limit     {users, total}
//	ListNodes         GET    /api/nodes                  flat list, windowed client-side
//	ListInbounds      GET    /api/inbounds               {protocol: [inbound]}
//	Stats             GET    /api/system
//	UsersStats        GET    /api/system                 user counters only
//	TrafficStats      GET    /api/nodes/usage?start&end  per-node uplink/downlink
//	CreateUser        POST   /api/user
//	UpdateUserStatus  PUT    /api/user/{username}        {status}
//	DeleteUser        DELETE /api/user/{username}
//	CreateNode        POST   /api/node
//	DeleteNode        DELETE /api/node/{id}
//	CoreStats         GET    /api/core                   (extra)
//
// Users are addressed by username, nodes by integer id. User status is one
// of active, disabled, limited, expired, on_hold; node status one of
// connected, connecting, error, disabled.
//
// The adapter is also the base of the PasarGuard adapter, whose API is a
// descendant of this one; see [NewVariant].
package marzban
