package panel

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rhuss/opexcore/pkg/api"
)

// Factory constructs a Panel for one backend kind.
type Factory func(cfg Config) Panel

var (
	factoriesMu sync.RWMutex
	factories   = make(map[api.Kind]Factory)
)

// Register makes a backend available to New. It panics when called twice
// for the same kind.
func Register(kind api.Kind, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if f == nil {
		panic("panel: Register factory is nil")
	}
	if _, dup := factories[kind]; dup {
		panic(fmt.Sprintf("panel: Register called twice for %s", kind))
	}
	factories[kind] = f
}

// New constructs the Panel registered for kind.
func New(kind api.Kind, cfg Config) (Panel, error) {
	factoriesMu.RLock()
	f, ok := factories[kind]
	factoriesMu.RUnlock()
	if !ok {
		return nil, api.NewInvalidRequestError("kind",
			fmt.Sprintf("no adapter registered for panel kind %q", kind))
	}
	return f(cfg), nil
}

// Registered returns the registered kinds in sorted order.
func Registered() []api.Kind {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	kinds := make([]api.Kind, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
