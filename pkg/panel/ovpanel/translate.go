package ovpanel

import "github.com/rhuss/opexcore/pkg/api"

// Defaults applied to node creation when the request leaves them unset.
const (
	defaultProtocol = "tcp"
	defaultOVPNPort = 1194
)

// ToAdmin converts an admin.
func ToAdmin(a Admin) api.Admin {
	return api.Admin{ID: api.NameID(a.Username), Username: a.Username, Detail: a}
}

// ToUser converts a user. Users are addressed by name.
func ToUser(u User) api.User {
	return api.User{
		ID:       api.NameID(u.Name),
		Username: u.Name,
		Status:   api.FlagStatus("is_active", u.IsActive, api.StateActive, api.StateDisabled),
		ExpireAt: u.ExpiryDate.Ptr(),
		Detail:   u,
	}
}

// ToNode converts a node. Nodes are addressed by address.
func ToNode(n Node) api.Node {
	out := api.Node{
		ID:      api.NameID(n.Address),
		Name:    n.Name,
		Status:  api.FlagStatus("status", n.Status, api.StateActive, api.StateDisabled),
		Address: n.Address,
		Detail:  n,
	}
	if n.Port != 0 {
		out.Port = api.Ptr(n.Port)
	}
	return out
}

// countUsers computes user counters from the full user list.
func countUsers(users []User) api.UserCounts {
	var active, disabled int
	for _, u := range users {
		if u.IsActive {
			active++
		} else {
			disabled++
		}
	}
	return api.UserCounts{
		Total:    api.Ptr(len(users)),
		Active:   api.Ptr(active),
		Disabled: api.Ptr(disabled),
	}
}

func toNodeCreate(req *api.NodeCreate) nodeCreate {
	body := nodeCreate{
		Name:     req.Name,
		Address:  req.Address,
		Port:     req.Port,
		Key:      req.Key,
		Protocol: req.Protocol,
		OVPNPort: req.ServicePort,
		Status:   req.Enabled,
	}
	if body.Protocol == "" {
		body.Protocol = defaultProtocol
	}
	if body.OVPNPort == 0 {
		body.OVPNPort = defaultOVPNPort
	}
	return body
}
