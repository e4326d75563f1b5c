package paneltest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rhuss/opexcore/pkg/api"
	"github.com/rhuss/opexcore/pkg/decode"
)

// routeMarzneshin serves the Marzneshin API. Rustneshin addresses users by
// numeric id and reports a status string next to the flags.
func (f *fake) routeMarzneshin() {
	rust := f.kind == api.KindRustneshin
	auth := func(h http.HandlerFunc) http.HandlerFunc { return bearer(h, denyDetail) }

	// matchUser resolves the {user} path segment.
	matchUser := func(r *http.Request) func(*userRecord) bool {
		key := r.PathValue("user")
		if rust {
			id, err := strconv.ParseInt(key, 10, 64)
			return func(u *userRecord) bool { return err == nil && u.id == id }
		}
		return func(u *userRecord) bool { return u.name == key }
	}
	admin := map[string]any{"id": 1, "username": AdminUser, "is_sudo": true, "enabled": true, "all_services_access": true}

	f.mux.HandleFunc("POST /api/admins/token", func(w http.ResponseWriter, r *http.Request) {
		if !formCredentials(r) {
			WriteDetail(w, http.StatusUnauthorized, "Incorrect username or password")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{
			"access_token": f.issue(map[string]any{"access": "sudo"}),
			"token_type":   "bearer",
			"is_sudo":      true,
		})
	})
	f.mux.HandleFunc("GET /api/admins/current", auth(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, admin)
	}))
	f.mux.HandleFunc("GET /api/admins", auth(func(w http.ResponseWriter, r *http.Request) {
		writeEchoed(w, r, []map[string]any{admin})
	}))

	f.mux.HandleFunc("GET /api/users", auth(func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		items := []map[string]any{}
		for _, u := range f.usersSnapshot() {
			items = append(items, marzneshinUser(u, now, rust))
		}
		writeEchoed(w, r, items)
	}))
	f.mux.HandleFunc("GET /api/nodes", auth(func(w http.ResponseWriter, r *http.Request) {
		items := []map[string]any{}
		for _, n := range f.nodesSnapshot() {
			items = append(items, marzneshinNode(n))
		}
		writeEchoed(w, r, items)
	}))
	f.mux.HandleFunc("GET /api/services", auth(func(w http.ResponseWriter, r *http.Request) {
		ids := []int64{}
		for _, u := range f.usersSnapshot() {
			ids = append(ids, u.id)
		}
		writeEchoed(w, r, []map[string]any{{"id": 1, "name": "default", "inbound_ids": []int64{1}, "user_ids": ids}})
	}))
	f.mux.HandleFunc("GET /api/inbounds", auth(func(w http.ResponseWriter, r *http.Request) {
		writeEchoed(w, r, []map[string]any{{"id": 1, "tag": "vless-in", "protocol": "vless", "service_ids": []int64{1}}})
	}))
	f.mux.HandleFunc("GET /api/inbounds/hosts", auth(func(w http.ResponseWriter, r *http.Request) {
		writeEchoed(w, r, []map[string]any{{"id": 1, "remark": "default", "address": "0.0.0.0", "port": 443, "inbound_id": 1}})
	}))

	f.mux.HandleFunc("GET /api/system/stats/users", auth(func(w http.ResponseWriter, r *http.Request) {
		c := f.counts(time.Now())
		WriteJSON(w, http.StatusOK, map[string]any{
			"total":   len(f.usersSnapshot()),
			"active":  c["active"],
			"on_hold": c["on_hold"],
			"expired": c["expired"],
			"limited": c["limited"],
			"online":  0,
		})
	}))
	f.mux.HandleFunc("GET /api/system/stats/nodes", auth(func(w http.ResponseWriter, r *http.Request) {
		nodes := f.nodesSnapshot()
		healthy := 0
		for _, n := range nodes {
			if n.enabled {
				healthy++
			}
		}
		WriteJSON(w, http.StatusOK, map[string]any{"total": len(nodes), "healthy": healthy, "unhealthy": len(nodes) - healthy})
	}))
	f.mux.HandleFunc("GET /api/system/stats/admins", auth(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]any{"total": 1})
	}))
	f.mux.HandleFunc("GET /api/system/stats/traffic", auth(func(w http.ResponseWriter, r *http.Request) {
		start, err := decode.ParseTime(r.URL.Query().Get("start"))
		if err != nil {
			WriteDetail(w, http.StatusUnprocessableEntity, "invalid start")
			return
		}
		var total int64
		for _, u := range f.usersSnapshot() {
			total += u.used
		}
		WriteJSON(w, http.StatusOK, map[string]any{
			"total":  total,
			"usages": [][]int64{{start.Unix(), total}},
		})
	}))

	f.mux.HandleFunc("POST /api/users", auth(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Username   string `json:"username"`
			ExpireDate string `json:"expire_date"`
			DataLimit  int64  `json:"data_limit"`
			Note       string `json:"note"`
		}
		if err := decodeBody(r, &body); err != nil || body.Username == "" {
			WriteDetail(w, http.StatusUnprocessableEntity, "invalid user")
			return
		}
		var expire time.Time
		if body.ExpireDate != "" {
			t, err := decode.ParseTime(body.ExpireDate)
			if err != nil {
				WriteDetail(w, http.StatusUnprocessableEntity, "invalid expire_date")
				return
			}
			expire = t
		}
		u := f.addUser(body.Username, expire, body.DataLimit, body.Note)
		if u == nil {
			WriteDetail(w, http.StatusConflict, "User already exists")
			return
		}
		WriteJSON(w, http.StatusOK, marzneshinUser(*u, time.Now(), rust))
	}))

	setEnabled := func(enabled bool) http.HandlerFunc {
		return auth(func(w http.ResponseWriter, r *http.Request) {
			u, ok := f.updateUser(matchUser(r), func(u *userRecord) { u.enabled = enabled })
			if !ok {
				WriteDetail(w, http.StatusNotFound, "User not found")
				return
			}
			WriteJSON(w, http.StatusOK, marzneshinUser(u, time.Now(), rust))
		})
	}
	f.mux.HandleFunc("POST /api/users/{user}/enable", setEnabled(true))
	f.mux.HandleFunc("POST /api/users/{user}/disable", setEnabled(false))

	f.mux.HandleFunc("DELETE /api/users/{user}", auth(func(w http.ResponseWriter, r *http.Request) {
		if !f.deleteUser(matchUser(r)) {
			WriteDetail(w, http.StatusNotFound, "User not found")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{})
	}))

	f.mux.HandleFunc("POST /api/nodes", auth(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name    string `json:"name"`
			Address string `json:"address"`
			Port    int    `json:"port"`
		}
		if err := decodeBody(r, &body); err != nil || body.Name == "" || body.Address == "" {
			WriteDetail(w, http.StatusUnprocessableEntity, "invalid node")
			return
		}
		n := f.addNode(body.Name, body.Address, body.Port)
		if n == nil {
			WriteDetail(w, http.StatusConflict, "Node already exists")
			return
		}
		WriteJSON(w, http.StatusOK, marzneshinNode(*n))
	}))
	f.mux.HandleFunc("DELETE /api/nodes/{id}", auth(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil || !f.deleteNode(func(n *nodeRecord) bool { return n.id == id }) {
			WriteDetail(w, http.StatusNotFound, "Node not found")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{})
	}))
}

// writeEchoed writes the {items,total,page,size,pages} envelope for the
// page and size query parameters.
func writeEchoed(w http.ResponseWriter, r *http.Request, all []map[string]any) {
	q := r.URL.Query()
	page, size := queryInt(q, "page", 1), queryInt(q, "size", 0)
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = len(all)
	}
	pages := 1
	if size > 0 {
		pages = (len(all) + size - 1) / size
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"items": window(all, (page-1)*size, size),
		"total": len(all),
		"page":  page,
		"size":  size,
		"pages": pages,
	})
}

func marzneshinUser(u userRecord, now time.Time, withStatus bool) map[string]any {
	status := u.status(now)
	out := map[string]any{
		"id":                        u.id,
		"username":                  u.name,
		"enabled":                   u.enabled,
		"activated":                 true,
		"is_active":                 status == "active",
		"expired":                   status == "expired",
		"data_limit_reached":        status == "limited",
		"expire_strategy":           "never",
		"expire_date":               rfc3339OrNil(u.expire),
		"data_limit":                nil,
		"data_limit_reset_strategy": "no_reset",
		"used_traffic":              u.used,
		"created_at":                u.createdAt.Format(time.RFC3339),
		"note":                      u.note,
		"service_ids":               []int64{},
		"subscription_url":          "/sub/" + u.name + "/" + u.shortID,
	}
	if !u.expire.IsZero() {
		out["expire_strategy"] = "fixed_date"
	}
	if u.limit > 0 {
		out["data_limit"] = u.limit
	}
	if withStatus {
		out["status"] = status
	}
	return out
}

func marzneshinNode(n nodeRecord) map[string]any {
	status := "healthy"
	if !n.enabled {
		status = "disabled"
	}
	return map[string]any{
		"id":                 n.id,
		"name":               n.name,
		"address":            n.address,
		"port":               n.port,
		"connection_backend": "grpclib",
		"usage_coefficient":  1.0,
		"xray_version":       "1.8.24",
		"status":             status,
		"message":            nil,
	}
}
