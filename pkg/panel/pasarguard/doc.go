// Package pasarguard implements the panel adapter for PasarGuard, a
// descendant of Marzban that keeps its authentication, admin and user
// endpoints and adds groups, cores and paginated node and host listings.
//
// Endpoints that differ from the Marzban adapter:
//
//	ListNodes         GET    /api/nodes?offset&limit     flat list
//	ListHosts         GET    /api/hosts?offset&limit     flat list
//	ListServices      GET    /api/groups?offset&limit    {groups, total}
//	ListInbounds      GET    /api/inbounds               list of tags
//	Stats             GET    /api/system                 *_users counters
//	CreateUser        POST   /api/user                   proxy_settings, group_ids
//	CreateNode        POST   /api/node                   core_config_id, api_key
//	ListGroups        GET    /api/groups?offset&limit    (extra)
//	ListCores         GET    /api/cores?offset&limit     {cores, count} (extra)
//
// Groups play the role of services: UserCreate.ServiceIDs become group_ids.
// Users are addressed by username and nodes by integer id, as in Marzban.
package pasarguard
