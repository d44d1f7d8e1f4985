package lint

import "sync"

// globalRegistry holds every known check in canonical order.
var globalRegistry = &Registry{
	byID: make(map[string]int),
}

// Registry stores checks for discovery. Registration order is the canonical
// order used for reports, diffs and listings.
type Registry struct {
	mu     sync.RWMutex
	checks []Check
	byID   map[string]int // index into checks
}

// Register adds a check to the global registry. Registering an ID twice
// replaces the earlier definition in place.
func Register(c Check) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	if i, ok := globalRegistry.byID[c.ID]; ok {
		globalRegistry.checks[i] = c
		return
	}
	globalRegistry.byID[c.ID] = len(globalRegistry.checks)
	globalRegistry.checks = append(globalRegistry.checks, c)
}

// All returns all registered checks in canonical order.
func All() []Check {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	out := make([]Check, len(globalRegistry.checks))
	copy(out, globalRegistry.checks)
	return out
}

// Lookup returns a check by its ID.
func Lookup(id string) (Check, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	i, ok := globalRegistry.byID[id]
	if !ok {
		return Check{}, false
	}
	return globalRegistry.checks[i], true
}

// Count returns the number of registered checks.
func Count() int {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	return len(globalRegistry.checks)
}
