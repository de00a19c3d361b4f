package physics

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownBackend is returned by Create for names nobody registered.
var ErrUnknownBackend = errors.New("physics: unknown backend")

// Factory creates a new, empty engine.
type Factory func(s Settings) Engine

var (
	factories = make(map[string]Factory)
	mu        sync.RWMutex
)

// Register adds a backend factory to the registry.
// Typically called from a backend's init() function.
// Panics if a backend with the same name is already registered.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("physics: backend %q already registered", name))
	}

	factories[name] = f
}

// List returns the names of all registered backends, sorted.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]string, 0, len(factories))
	for name := range factories {
		result = append(result, name)
	}
	sort.Strings(result)

	return result
}

// Create instantiates a new engine by backend name.
func Create(name string, s Settings) (Engine, error) {
	mu.RLock()
	f, ok := factories[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q (registered: %v)", ErrUnknownBackend, name, List())
	}

	return f(s), nil
}

// Exists checks if a backend with the given name is registered.
func Exists(name string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[name]
	return ok
}
