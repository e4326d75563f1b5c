package paneltest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rhuss/opexcore/pkg/api"
	"github.com/rhuss/opexcore/pkg/decode"
)

// routeMarzban serves the Marzban API. PasarGuard differs in stats keys,
// expiry encoding, paginated nodes and its group and core endpoints.
func (f *fake) routeMarzban() {
	pg := f.kind == api.KindPasarGuard
	auth := func(h http.HandlerFunc) http.HandlerFunc { return bearer(h, denyDetail) }

	f.mux.HandleFunc("POST /api/admin/token", func(w http.ResponseWriter, r *http.Request) {
		if !formCredentials(r) {
			WriteDetail(w, http.StatusUnauthorized, "Incorrect username or password")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{
			"access_token": f.issue(map[string]any{"access": "sudo"}),
			"token_type":   "bearer",
		})
	})
	f.mux.HandleFunc("GET /api/admin", auth(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]any{"username": AdminUser, "is_sudo": true})
	}))
	f.mux.HandleFunc("GET /api/admins", auth(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, []map[string]any{{"username": AdminUser, "is_sudo": true}})
	}))

	f.mux.HandleFunc("GET /api/users", auth(func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		all := f.usersSnapshot()
		q := r.URL.Query()
		items := []map[string]any{}
		for _, u := range window(all, queryInt(q, "offset", 0), queryInt(q, "limit", 0)) {
			items = append(items, f.marzbanUser(u, now))
		}
		WriteJSON(w, http.StatusOK, map[string]any{"users": items, "total": len(all)})
	}))

	f.mux.HandleFunc("GET /api/nodes", auth(func(w http.ResponseWriter, r *http.Request) {
		nodes := f.nodesSnapshot()
		if pg {
			q := r.URL.Query()
			nodes = window(nodes, queryInt(q, "offset", 0), queryInt(q, "limit", 0))
		}
		items := []map[string]any{}
		for _, n := range nodes {
			items = append(items, marzbanNode(n))
		}
		WriteJSON(w, http.StatusOK, items)
	}))

	f.mux.HandleFunc("GET /api/inbounds", auth(func(w http.ResponseWriter, r *http.Request) {
		if pg {
			WriteJSON(w, http.StatusOK, []string{"VLESS TCP REALITY"})
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{
			"vless": []map[string]any{{"tag": "VLESS TCP REALITY", "protocol": "vless", "network": "tcp", "tls": "reality", "port": 443}},
		})
	}))

	f.mux.HandleFunc("GET /api/system", auth(func(w http.ResponseWriter, r *http.Request) {
		c := f.counts(time.Now())
		prefix, suffix := "users_", ""
		if pg {
			prefix, suffix = "", "_users"
		}
		stats := map[string]any{
			"version":            "0.8.4",
			"mem_total":          int64(8 << 30),
			"mem_used":           int64(2 << 30),
			"cpu_cores":          4,
			"cpu_usage":          12.5,
			"total_user":         len(f.usersSnapshot()),
			"online_users":       0,
			"incoming_bandwidth": 0,
			"outgoing_bandwidth": 0,
		}
		for _, st := range []string{"active", "on_hold", "disabled", "expired", "limited"} {
			stats[prefix+st+suffix] = c[st]
		}
		WriteJSON(w, http.StatusOK, stats)
	}))

	if pg {
		f.mux.HandleFunc("GET /api/hosts", auth(func(w http.ResponseWriter, r *http.Request) {
			WriteJSON(w, http.StatusOK, []map[string]any{
				{"id": 1, "remark": "default", "address": []string{"0.0.0.0"}, "port": 443, "inbound_tag": "VLESS TCP REALITY", "priority": 0},
			})
		}))
		f.mux.HandleFunc("GET /api/groups", auth(func(w http.ResponseWriter, r *http.Request) {
			WriteJSON(w, http.StatusOK, map[string]any{
				"groups": []map[string]any{{"id": 1, "name": "default", "inbound_tags": []string{"VLESS TCP REALITY"}, "total_users": len(f.usersSnapshot())}},
				"total":  1,
			})
		}))
		f.mux.HandleFunc("GET /api/cores", auth(func(w http.ResponseWriter, r *http.Request) {
			WriteJSON(w, http.StatusOK, map[string]any{
				"cores": []map[string]any{{"id": 1, "name": "xray", "config": map[string]any{}}},
				"count": 1,
			})
		}))
	} else {
		f.mux.HandleFunc("GET /api/core", auth(func(w http.ResponseWriter, r *http.Request) {
			WriteJSON(w, http.StatusOK, map[string]any{"version": "1.8.24", "started": true, "logs_websocket": "/api/core/logs"})
		}))
		f.mux.HandleFunc("GET /api/nodes/usage", auth(func(w http.ResponseWriter, r *http.Request) {
			usages := []map[string]any{{"node_id": nil, "node_name": "Master", "uplink": 0, "downlink": 0}}
			for _, n := range f.nodesSnapshot() {
				usages = append(usages, map[string]any{"node_id": n.id, "node_name": n.name, "uplink": 0, "downlink": 0})
			}
			WriteJSON(w, http.StatusOK, map[string]any{"usages": usages})
		}))
	}

	f.mux.HandleFunc("POST /api/user", auth(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Username  string          `json:"username"`
			Expire    json.RawMessage `json:"expire"`
			DataLimit int64           `json:"data_limit"`
			Note      string          `json:"note"`
		}
		if err := decodeBody(r, &body); err != nil || body.Username == "" {
			WriteDetail(w, http.StatusUnprocessableEntity, "invalid user")
			return
		}
		var expire decode.Time
		if len(body.Expire) > 0 {
			if err := expire.UnmarshalJSON(body.Expire); err != nil {
				WriteDetail(w, http.StatusUnprocessableEntity, "invalid expire")
				return
			}
		}
		u := f.addUser(body.Username, expire.Time, body.DataLimit, body.Note)
		if u == nil {
			WriteDetail(w, http.StatusConflict, "User already exists")
			return
		}
		WriteJSON(w, http.StatusOK, f.marzbanUser(*u, time.Now()))
	}))

	f.mux.HandleFunc("PUT /api/user/{username}", auth(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Status string `json:"status"`
		}
		if err := decodeBody(r, &body); err != nil {
			WriteDetail(w, http.StatusUnprocessableEntity, "invalid body")
			return
		}
		name := r.PathValue("username")
		u, ok := f.updateUser(func(u *userRecord) bool { return u.name == name }, func(u *userRecord) {
			if body.Status != "" {
				u.enabled = body.Status != "disabled"
			}
		})
		if !ok {
			WriteDetail(w, http.StatusNotFound, "User not found")
			return
		}
		WriteJSON(w, http.StatusOK, f.marzbanUser(u, time.Now()))
	}))

	f.mux.HandleFunc("DELETE /api/user/{username}", auth(func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("username")
		if !f.deleteUser(func(u *userRecord) bool { return u.name == name }) {
			WriteDetail(w, http.StatusNotFound, "User not found")
			return
		}
		WriteDetail(w, http.StatusOK, "User successfully deleted")
	}))

	f.mux.HandleFunc("POST /api/node", auth(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name    string `json:"name"`
			Address string `json:"address"`
			Port    int    `json:"port"`
		}
		if err := decodeBody(r, &body); err != nil || body.Name == "" || body.Address == "" {
			WriteDetail(w, http.StatusUnprocessableEntity, "invalid node")
			return
		}
		if body.Port == 0 {
			body.Port = 62050
		}
		n := f.addNode(body.Name, body.Address, body.Port)
		if n == nil {
			WriteDetail(w, http.StatusConflict, "Node "+body.Name+" already exists")
			return
		}
		WriteJSON(w, http.StatusOK, marzbanNode(*n))
	}))

	f.mux.HandleFunc("DELETE /api/node/{id}", auth(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil || !f.deleteNode(func(n *nodeRecord) bool { return n.id == id }) {
			WriteDetail(w, http.StatusNotFound, "Node not found")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{})
	}))
}

func (f *fake) marzbanUser(u userRecord, now time.Time) map[string]any {
	out := map[string]any{
		"id":               u.id,
		"username":         u.name,
		"status":           u.status(now),
		"used_traffic":     u.used,
		"data_limit":       nil,
		"expire":           unixOrNil(u.expire),
		"online_at":        nil,
		"created_at":       u.createdAt.Format("2006-01-02T15:04:05"),
		"subscription_url": "/sub/" + u.shortID,
		"note":             u.note,
		"proxies":          map[string]any{"vless": map[string]any{}},
	}
	if u.limit > 0 {
		out["data_limit"] = u.limit
	}
	if f.kind == api.KindPasarGuard {
		out["expire"] = rfc3339OrNil(u.expire)
		out["proxy_settings"] = map[string]any{}
		out["group_ids"] = []int64{1}
		delete(out, "proxies")
	}
	return out
}

func marzbanNode(n nodeRecord) map[string]any {
	status := "connected"
	if !n.enabled {
		status = "disabled"
	}
	return map[string]any{
		"id":                n.id,
		"name":              n.name,
		"address":           n.address,
		"port":              n.port,
		"api_port":          n.port + 1,
		"usage_coefficient": 1.0,
		"xray_version":      "1.8.24",
		"status":            status,
		"message":           nil,
	}
}
