package paneltest

import (
	"net/http"
	"time"
)

const ovDateLayout = "2006-01-02"

// routeOVPanel serves the OV-Panel API. Every response after login is a
// {success, msg, data} envelope; rejected mutations answer 200 with
// success=false.
func (f *fake) routeOVPanel() {
	auth := func(h http.HandlerFunc) http.HandlerFunc { return bearer(h, denyDetail) }
	ok := func(w http.ResponseWriter, msg string, data any) {
		WriteJSON(w, http.StatusOK, map[string]any{"success": true, "msg": msg, "data": data})
	}
	fail := func(w http.ResponseWriter, msg string) {
		WriteJSON(w, http.StatusOK, map[string]any{"success": false, "msg": msg, "data": nil})
	}

	f.mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		if !formCredentials(r) {
			WriteDetail(w, http.StatusUnauthorized, "Incorrect username or password")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"access_token": f.issue(nil), "token_type": "bearer"})
	})
	f.mux.HandleFunc("GET /api/admin/all", auth(func(w http.ResponseWriter, r *http.Request) {
		ok(w, "", []map[string]string{{"username": AdminUser}})
	}))

	f.mux.HandleFunc("GET /api/user/all", auth(func(w http.ResponseWriter, r *http.Request) {
		items := []map[string]any{}
		for _, u := range f.usersSnapshot() {
			items = append(items, ovUser(u))
		}
		ok(w, "", items)
	}))
	f.mux.HandleFunc("GET /api/node/list", auth(func(w http.ResponseWriter, r *http.Request) {
		items := []map[string]any{}
		for _, n := range f.nodesSnapshot() {
			items = append(items, ovNode(n))
		}
		ok(w, "", items)
	}))
	f.mux.HandleFunc("GET /api/node/status/{address}", auth(func(w http.ResponseWriter, r *http.Request) {
		addr := r.PathValue("address")
		for _, n := range f.nodesSnapshot() {
			if n.address == addr {
				ok(w, "", map[string]any{"address": addr, "status": "online", "users": 0})
				return
			}
		}
		fail(w, "Node not found")
	}))
	f.mux.HandleFunc("GET /api/server/info", auth(func(w http.ResponseWriter, r *http.Request) {
		ok(w, "", map[string]any{
			"cpu":          7.5,
			"cpu_cores":    2,
			"memory_total": int64(4 << 30),
			"memory_used":  int64(1 << 30),
			"disk_total":   int64(40 << 30),
			"disk_used":    int64(8 << 30),
			"uptime":       3600,
		})
	}))
	f.mux.HandleFunc("GET /api/settings/", auth(func(w http.ResponseWriter, r *http.Request) {
		ok(w, "", map[string]any{"tunnel_address": "vpn.example.com", "port": 1194, "protocol": "udp"})
	}))

	f.mux.HandleFunc("POST /api/user/create", auth(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name       string `json:"name"`
			ExpiryDate string `json:"expiry_date"`
		}
		if err := decodeBody(r, &body); err != nil || body.Name == "" {
			WriteDetail(w, http.StatusUnprocessableEntity, "invalid user")
			return
		}
		expire, err := time.Parse(ovDateLayout, body.ExpiryDate)
		if err != nil {
			fail(w, "Invalid expiry date")
			return
		}
		u := f.addUser(body.Name, expire, 0, "")
		if u == nil {
			fail(w, "User already exists")
			return
		}
		ok(w, "User created successfully", ovUser(*u))
	}))
	f.mux.HandleFunc("PUT /api/user/change-status", auth(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name       string `json:"name"`
			ExpiryDate string `json:"expiry_date"`
			Status     bool   `json:"status"`
		}
		if err := decodeBody(r, &body); err != nil {
			WriteDetail(w, http.StatusUnprocessableEntity, "invalid body")
			return
		}
		expire, err := time.Parse(ovDateLayout, body.ExpiryDate)
		if err != nil {
			fail(w, "Invalid expiry date")
			return
		}
		u, found := f.updateUser(func(u *userRecord) bool { return u.name == body.Name }, func(u *userRecord) {
			u.enabled = body.Status
			u.expire = expire
		})
		if !found {
			fail(w, "User not found")
			return
		}
		ok(w, "User status changed", ovUser(u))
	}))
	f.mux.HandleFunc("DELETE /api/user/delete/{name}", auth(func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		if !f.deleteUser(func(u *userRecord) bool { return u.name == name }) {
			fail(w, "User not found")
			return
		}
		ok(w, "User deleted successfully", nil)
	}))

	f.mux.HandleFunc("POST /api/node/add", auth(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name    string `json:"name"`
			Address string `json:"address"`
			Port    int    `json:"port"`
			Key     string `json:"key"`
		}
		if err := decodeBody(r, &body); err != nil || body.Address == "" {
			WriteDetail(w, http.StatusUnprocessableEntity, "invalid node")
			return
		}
		if body.Key == "" {
			fail(w, "Node key is required")
			return
		}
		n := f.addNode(body.Name, body.Address, body.Port)
		if n == nil {
			fail(w, "Node already exists")
			return
		}
		ok(w, "Node added successfully", ovNode(*n))
	}))
	f.mux.HandleFunc("DELETE /api/node/delete/{address}", auth(func(w http.ResponseWriter, r *http.Request) {
		addr := r.PathValue("address")
		if !f.deleteNode(func(n *nodeRecord) bool { return n.address == addr }) {
			fail(w, "Node not found")
			return
		}
		ok(w, "Node deleted successfully", nil)
	}))
}

func ovUser(u userRecord) map[string]any {
	var expiry any
	if !u.expire.IsZero() {
		expiry = u.expire.Format(ovDateLayout)
	}
	return map[string]any{
		"name":        u.name,
		"expiry_date": expiry,
		"is_active":   u.enabled,
		"owner":       AdminUser,
	}
}

func ovNode(n nodeRecord) map[string]any {
	return map[string]any{
		"name":      n.name,
		"address":   n.address,
		"port":      n.port,
		"protocol":  "tcp",
		"ovpn_port": 1194,
		"status":    n.enabled,
	}
}
