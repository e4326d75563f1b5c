package tools

import (
	"github.com/rhuss/opexcore/pkg/auth"
)

// scope decides which profiles a caller may use.
type scope struct {
	id *auth.Identity
}

func newScope(id *auth.Identity) scope {
	return scope{id: id}
}

// allows reports whether the profile is visible. A nil identity sees
// every profile.
func (s scope) allows(profile string) bool {
	return s.id == nil || s.id.CanAccess(profile)
}

// names filters profile names down to the visible ones, keeping order.
func (s scope) names(all []string) []string {
	out := make([]string, 0, len(all))
	for _, name := range all {
		if s.allows(name) {
			out = append(out, name)
		}
	}
	return out
}
