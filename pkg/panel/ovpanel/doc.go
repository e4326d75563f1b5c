// Package ovpanel implements the panel adapter for OVPanel, an OpenVPN
// management panel.
//
// Login is a password form posted to /api/login. Every other response is
// wrapped in {success, msg, data}. A mutation whose envelope reports
// success=false is returned as a Result with Success false, not as an
// error. So are NodeStatus, Settings and ServerInfo. Lists, CurrentAdmin
// and Stats have no success flag and return a business_failure error.
//
// Endpoints:
//
//	Login             POST   /api/login                   form
//	CurrentAdmin      GET    /api/admin/all               matched by login username
//	ListAdmins        GET    /api/admin/all
//	ListUsers         GET    /api/user/all                windowed client-side
//	ListNodes         GET    /api/node/list               windowed client-side
//	Stats             GET    /api/server/info + /api/user/all
//	UsersStats        GET    /api/user/all                counted client-side
//	CreateUser        POST   /api/user/create             {name, expiry_date}
//	UpdateUserStatus  PUT    /api/user/change-status      {name, expiry_date, status}
//	DeleteUser        DELETE /api/user/delete/{name}
//	CreateNode        POST   /api/node/add
//	DeleteNode        DELETE /api/node/delete/{address}
//	NodeStatus        GET    /api/node/status/{address}   (extra)
//	Settings          GET    /api/settings/               (extra)
//	ServerInfo        GET    /api/server/info             (extra)
//
// Users are addressed by name and nodes by address; both IDs are name
// kind. Expiry dates are calendar dates. UpdateUserStatus requires ExpireAt
// because the backend rewrites the expiry with every status change.
package ovpanel
