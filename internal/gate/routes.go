package gate

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Kimutaijeremy/handyproconnect/internal/models"
	"github.com/Kimutaijeremy/handyproconnect/internal/session"
)

// Route is a resolved navigation target.
type Route struct {
	// Pattern is the registered pattern, e.g. "/job/{id}".
	Pattern string
	// Path is the cleaned path that matched.
	Path        string
	Requirement Requirement
	// Params holds the values of the pattern's placeholders.
	Params map[string]string
}

// Routes maps path patterns to requirements. Matching is delegated to a chi
// router, which never serves a request.
type Routes struct {
	mux  *chi.Mux
	reqs map[string]Requirement
}

// NewRoutes creates an empty route table.
func NewRoutes() *Routes {
	return &Routes{
		mux:  chi.NewRouter(),
		reqs: make(map[string]Requirement),
	}
}

// DefaultRoutes returns the application's route table.
func DefaultRoutes() *Routes {
	return NewRoutes().
		Handle("/", None).
		Handle("/services", None).
		Handle("/login", None).
		Handle("/register", None).
		Handle("/dashboard", RequireAuth).
		Handle("/job/{id}", RequireAuth).
		Handle("/pro/jobs", RequireRole(models.RoleProfessional))
}

// Handle registers pattern with req. Registering a pattern twice replaces
// its requirement.
func (r *Routes) Handle(pattern string, req Requirement) *Routes {
	if _, ok := r.reqs[pattern]; !ok {
		r.mux.Handle(pattern, http.NotFoundHandler())
	}
	r.reqs[pattern] = req
	return r
}

// Resolve finds the route for path. Query strings, fragments and a trailing
// slash are ignored.
func (r *Routes) Resolve(path string) (Route, bool) {
	path = cleanPath(path)

	rctx := chi.NewRouteContext()
	if !r.mux.Match(rctx, http.MethodGet, path) {
		return Route{}, false
	}
	pattern := rctx.RoutePattern()
	req, ok := r.reqs[pattern]
	if !ok {
		return Route{}, false
	}

	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, key := range rctx.URLParams.Keys {
		params[key] = rctx.URLParams.Values[i]
	}
	return Route{Pattern: pattern, Path: path, Requirement: req, Params: params}, true
}

// Navigate resolves path and decides it against snap. Unknown paths
// redirect to HomePath.
func (r *Routes) Navigate(snap session.Snapshot, path string) (Route, Decision) {
	route, ok := r.Resolve(path)
	if !ok {
		return Route{Path: cleanPath(path)}, redirect(HomePath)
	}
	return route, Decide(snap, route.Requirement)
}

func cleanPath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}
