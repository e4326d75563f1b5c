// Package remnawave implements the panel adapter for Remnawave.
//
// Login posts JSON credentials to /api/auth/login. Every response, login
// included, is wrapped in {"response": ...}. Users and nodes are addressed
// by UUID; capture the ID returned by CreateUser or a listing.
//
// Endpoints:
//
//	Login             POST   /api/auth/login                      JSON
//	CurrentAdmin      GET    /api/users?start=0&size=1            token check, then claims
//	ListUsers         GET    /api/users?start&size                {users, total}
//	ListNodes         GET    /api/nodes                           flat list, windowed client-side
//	ListHosts         GET    /api/hosts                           flat list, windowed client-side
//	Stats             GET    /api/system/stats
//	UsersStats        GET    /api/system/stats                    status counts
//	NodesStats        GET    /api/system/stats                    online nodes
//	CreateUser        POST   /api/users                           expireAt required
//	UpdateUserStatus  POST   /api/users/{uuid}/actions/enable|disable
//	DeleteUser        DELETE /api/users/{uuid}
//	CreateNode        POST   /api/nodes
//	DeleteNode        DELETE /api/nodes/{uuid}
//	SubscriptionInfo  GET    /api/sub/{shortUuid}/info            public (extra)
//
// User status is one of ACTIVE, DISABLED, LIMITED, EXPIRED. Node status is
// derived from the isDisabled, isConnected and isConnecting flags.
package remnawave
