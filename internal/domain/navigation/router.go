package navigation

import (
	"strings"
	"sync"
)

// Handler is invoked when its route becomes current.
type Handler func()

// Guard is consulted before a transition commits. Returning false vetoes
// the transition and rolls the fragment back.
type Guard func(to, from string) bool

type guardEntry struct {
	id int
	fn Guard
}

// Router resolves fragment changes into route transitions. The current
// route starts empty (no route resolved yet) and only changes through the
// resolution algorithm; Navigate merely writes the fragment.
type Router struct {
	mu          sync.Mutex
	signal      Signal
	routes      map[string]Handler
	guards      []guardEntry
	nextGuardID int
	current     string
	unsubscribe func()
}

// NewRouter creates a router over the given signal source.
func NewRouter(signal Signal) *Router {
	return &Router{
		signal: signal,
		routes: make(map[string]Handler),
	}
}

// NormalizePath ensures a leading slash and strips any trailing slash,
// except for the root path itself. An empty path normalizes to root.
func NormalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	return path
}

// fragmentFor maps a normalized path to its fragment representation: the
// root path is an empty fragment, everything else is the path itself.
func fragmentFor(path string) string {
	if path == "/" {
		return ""
	}
	return path
}

// Register stores a path-to-handler mapping. The last registration for a
// given normalized path wins.
func (r *Router) Register(path string, handler Handler) {
	normalized := NormalizePath(path)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[normalized] = handler
}

// Navigate writes the normalized path into the fragment. Setting the
// fragment is the sole trigger for route resolution; Navigate never
// invokes a handler directly.
func (r *Router) Navigate(path string) {
	r.signal.SetFragment(fragmentFor(NormalizePath(path)))
}

// Init subscribes to fragment changes and resolves the current fragment
// once immediately, which covers deep links and reloads.
func (r *Router) Init() {
	r.mu.Lock()
	if r.unsubscribe == nil {
		r.unsubscribe = r.signal.OnChange(r.resolve)
	}
	r.mu.Unlock()
	r.resolve()
}

// Close detaches the router from its signal source.
func (r *Router) Close() {
	r.mu.Lock()
	unsub := r.unsubscribe
	r.unsubscribe = nil
	r.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// OnBeforeNavigate registers a guard and returns an unsubscribe closure.
// Guards run in registration order on every resolution.
func (r *Router) OnBeforeNavigate(guard Guard) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextGuardID
	r.nextGuardID++
	r.guards = append(r.guards, guardEntry{id: id, fn: guard})
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, entry := range r.guards {
			if entry.id == id {
				r.guards = append(r.guards[:i], r.guards[i+1:]...)
				break
			}
		}
	}
}

// GetCurrentRoute returns the committed route, or the empty string when no
// route has resolved yet.
func (r *Router) GetCurrentRoute() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// resolve runs the resolution algorithm for the signal's current fragment.
// Guards and handlers are invoked without the router lock held so they may
// safely call back into the router.
func (r *Router) resolve() {
	r.mu.Lock()
	newPath := NormalizePath(r.signal.Fragment())
	oldPath := r.current
	if newPath == oldPath {
		r.mu.Unlock()
		return
	}
	guards := make([]Guard, 0, len(r.guards))
	for _, entry := range r.guards {
		guards = append(guards, entry.fn)
	}
	r.mu.Unlock()

	for _, guard := range guards {
		if !guard(newPath, oldPath) {
			// Roll the fragment back without re-triggering resolution.
			r.signal.RestoreFragment(fragmentFor(oldPath))
			return
		}
	}

	r.mu.Lock()
	r.current = newPath
	handler, ok := r.routes[newPath]
	if !ok {
		handler = r.routes["/"]
	}
	r.mu.Unlock()

	if handler != nil {
		handler()
	}
}
