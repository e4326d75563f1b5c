package ovpanel

import (
	"encoding/json"

	"github.com/rhuss/opexcore/pkg/decode"
)

// dateLayout is the calendar date format OVPanel uses for expiry.
const dateLayout = "2006-01-02"

// Token is the /api/login response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Admin is an OVPanel administrator.
type Admin struct {
	Username string `json:"username"`
}

// User is an OpenVPN user.
type User struct {
	Name       string      `json:"name"`
	ExpiryDate decode.Time `json:"expiry_date"`
	IsActive   bool        `json:"is_active"`
	Owner      string      `json:"owner"`
}

// Keys every user and node object must carry; the status flags decide
// the unified state.
var (
	userKeys = []string{"name", "is_active"}
	nodeKeys = []string{"address", "status"}
)

// Node is an OpenVPN node.
type Node struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Port     int    `json:"port"`
	Protocol string `json:"protocol"`
	OVPNPort int    `json:"ovpn_port"`
	Status   bool   `json:"status"`
}

// ServerInfo is the /api/server/info payload.
type ServerInfo struct {
	CPU         *float64        `json:"cpu"`
	CPUCores    *int            `json:"cpu_cores"`
	MemoryTotal *int64          `json:"memory_total"`
	MemoryUsed  *int64          `json:"memory_used"`
	DiskTotal   *int64          `json:"disk_total"`
	DiskUsed    *int64          `json:"disk_used"`
	Uptime      json.RawMessage `json:"uptime"`
}

// userCreate is the POST /api/user/create body.
type userCreate struct {
	Name       string `json:"name"`
	ExpiryDate string `json:"expiry_date"`
}

// userStatus is the PUT /api/user/change-status body.
type userStatus struct {
	Name       string `json:"name"`
	ExpiryDate string `json:"expiry_date"`
	Status     bool   `json:"status"`
}

// nodeCreate is the POST /api/node/add body.
type nodeCreate struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Port     int    `json:"port"`
	Key      string `json:"key"`
	Protocol string `json:"protocol"`
	OVPNPort int    `json:"ovpn_port"`
	Status   bool   `json:"status"`
}
