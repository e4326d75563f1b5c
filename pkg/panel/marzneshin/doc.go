// Package marzneshin implements the panel adapter for Marzneshin and serves
// as the base of the Rustneshin adapter, which exposes the same paths.
//
// Authentication is an OAuth2 password form posted to /api/admins/token;
// the response reports is_sudo directly. Collections are paged with page
// and size and come back as {items, total, page, size, pages}.
//
// Endpoints:
//
//	Login             POST   /api/admins/token
//	CurrentAdmin      GET    /api/admins/current
//	ListAdmins        GET    /api/admins?page&size
//	ListUsers         GET    /api/users?page&size
//	ListNodes         GET    /api/nodes?page&size
//	ListServices      GET    /api/services?page&size
//	ListInbounds      GET    /api/inbounds?page&size
//	ListHosts         GET    /api/inbounds/hosts?page&size
//	Stats             GET    /api/system/stats/{users,nodes,admins}
//	UsersStats        GET    /api/system/stats/users
//	NodesStats        GET    /api/system/stats/nodes
//	TrafficStats      GET    /api/system/stats/traffic?start&end
//	CreateUser        POST   /api/users
//	UpdateUserStatus  POST   /api/users/{user}/enable|disable
//	DeleteUser        DELETE /api/users/{user}
//	CreateNode        POST   /api/nodes
//	DeleteNode        DELETE /api/nodes/{id}
//	AdminsStats       GET    /api/system/stats/admins    (extra)
//
// Marzneshin has no user status field. The status is derived from the
// enabled, expired, data_limit_reached and activated flags, in that order,
// and Raw names the deciding flag. Node status is healthy, unhealthy,
// disabled or none.
package marzneshin
