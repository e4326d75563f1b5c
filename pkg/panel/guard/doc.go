// Package guard implements the panel adapter for Guard, which calls its
// users subscriptions.
//
// Endpoints:
//
//	Login             POST   /api/admins/token                   form
//	CurrentAdmin      GET    /api/admins/current
//	ListAdmins        GET    /api/admins                         flat list, windowed client-side
//	ListUsers         GET    /api/subscriptions?page&size        flat list
//	ListNodes         GET    /api/nodes                          flat list, windowed client-side
//	ListServices      GET    /api/services                       flat list, windowed client-side
//	Stats             GET    /api/stats
//	UsersStats        GET    /api/stats/subscriptions
//	NodesStats        GET    /api/stats                          node counters only
//	CreateUser        POST   /api/subscriptions                  list in, list out
//	UpdateUserStatus  PUT    /api/subscriptions/{username}/enable|disable
//	DeleteUser        DELETE /api/subscriptions/{username}
//	CreateNode        POST   /api/nodes
//	DeleteNode        DELETE /api/nodes/{id}
//
// Subscription status is derived from the enabled, expired, limited and
// activated flags, in that order. Nodes only report an enabled flag. Admins
// with the owner role are reported as sudo.
package guard
