package gate

import (
	"log/slog"
	"sync"

	"github.com/Kimutaijeremy/handyproconnect/internal/session"
)

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// OnRedirect sets the callback invoked whenever the guard moves the user
// away from a route, either on navigation or after a session change.
func OnRedirect(fn func(from, to string)) GuardOption {
	return func(g *Guard) {
		g.onRedirect = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) GuardOption {
	return func(g *Guard) {
		g.logger = logger
	}
}

// Guard keeps the current route consistent with the session. Every session
// update re-evaluates the current route, so a logout or an expired token
// redirects in the same update that caused it.
type Guard struct {
	store  *session.Store
	routes *Routes

	mu      sync.Mutex
	current Route

	onRedirect  func(from, to string)
	logger      *slog.Logger
	unsubscribe func()
}

// NewGuard binds routes to store. Close releases the subscription.
func NewGuard(store *session.Store, routes *Routes, opts ...GuardOption) *Guard {
	g := &Guard{
		store:  store,
		routes: routes,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.unsubscribe = store.Subscribe(g.reevaluate)
	return g
}

// Navigate moves to path, following redirects until a route renders. It
// returns the route that is finally shown.
func (g *Guard) Navigate(path string) Route {
	return g.navigate(g.store.Snapshot(), path)
}

// Current returns the route currently shown.
func (g *Guard) Current() Route {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// Close stops reacting to session changes.
func (g *Guard) Close() {
	g.unsubscribe()
}

func (g *Guard) reevaluate(snap session.Snapshot) {
	g.mu.Lock()
	current := g.current
	g.mu.Unlock()
	if current.Path == "" {
		return
	}
	if Decide(snap, current.Requirement).Render {
		return
	}
	g.navigate(snap, current.Path)
}

// maxRedirects bounds redirect chains in misconfigured route tables.
const maxRedirects = 8

func (g *Guard) navigate(snap session.Snapshot, path string) Route {
	route, decision := g.routes.Navigate(snap, path)
	for i := 0; decision.Redirected() && i < maxRedirects; i++ {
		g.logger.Debug("route redirected",
			slog.String("from", route.Path),
			slog.String("to", decision.RedirectTo),
		)
		if g.onRedirect != nil {
			g.onRedirect(route.Path, decision.RedirectTo)
		}
		route, decision = g.routes.Navigate(snap, decision.RedirectTo)
	}

	g.mu.Lock()
	g.current = route
	g.mu.Unlock()
	return route
}
