package router

import (
	"errors"
	"fmt"

	"github.com/Adda-Baaj/contacts-client/internal/logger"
	"github.com/Adda-Baaj/contacts-client/internal/session"
)

// maxHops bounds redirect chains in a custom route table.
const maxHops = 8

var (
	// ErrNotFound is returned for paths missing from the route table.
	ErrNotFound = errors.New("route not found")
	// ErrRedirectLoop is returned when redirects do not settle within maxHops.
	ErrRedirectLoop = errors.New("route redirect loop")
)

// Navigation describes the result of one navigation attempt.
type Navigation struct {
	Requested string  `json:"requested"`
	Path      string  `json:"path"`
	Route     string  `json:"route"`
	Outcome   Outcome `json:"outcome"`
}

// Router holds the route table and consults the guard on every navigation.
// The table is fixed after New, so a Router is safe for concurrent use.
type Router struct {
	routes []Route
	idx    map[string]Route
	tokens session.TokenSource
	log    logger.Logger
}

// New validates routes and builds a Router. A nil routes slice uses DefaultRoutes.
func New(routes []Route, tokens session.TokenSource, log logger.Logger) (*Router, error) {
	if routes == nil {
		routes = DefaultRoutes()
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	r := &Router{
		routes: make([]Route, len(routes)),
		idx:    make(map[string]Route, len(routes)),
		tokens: tokens,
		log:    log,
	}
	for i := range routes {
		route := sanitizeRoute(routes[i])
		if err := validateRoute(route); err != nil {
			return nil, fmt.Errorf("routes[%d]: %w", i, err)
		}
		if _, exists := r.idx[route.Path]; exists {
			return nil, fmt.Errorf("duplicate route path %q", route.Path)
		}
		r.routes[i] = route
		r.idx[route.Path] = route
	}
	return r, nil
}

// Routes returns a copy of the table.
func (r *Router) Routes() []Route {
	out := make([]Route, len(r.routes))
	copy(out, r.routes)
	return out
}

// Lookup returns the route registered at path.
func (r *Router) Lookup(path string) (Route, bool) {
	route, ok := r.idx[normalizePath(path)]
	return route, ok
}

// Navigate resolves where a request for path actually lands. Token presence is
// read once per call; the stored token is never modified.
func (r *Router) Navigate(path string) (Navigation, error) {
	present := session.Present(r.tokens)
	nav := Navigation{Requested: path, Outcome: Proceed}

	current := normalizePath(path)
	for hop := 0; hop < maxHops; hop++ {
		route, ok := r.Lookup(current)
		if !ok {
			return nav, fmt.Errorf("%w: %s", ErrNotFound, current)
		}

		if route.Redirect != "" {
			current = r.redirectTarget(route, present)
			continue
		}

		outcome := Decide(route.Meta, present)
		if outcome == Proceed {
			nav.Path = route.Path
			nav.Route = route.Name
			r.log.DebugObj("navigation resolved", "navigation", nav)
			return nav, nil
		}
		if nav.Outcome == Proceed {
			nav.Outcome = outcome
		}
		current = outcome.Target()
	}
	return nav, fmt.Errorf("%w: %s", ErrRedirectLoop, path)
}

func (r *Router) redirectTarget(route Route, present bool) string {
	if route.Redirect == RedirectRoot {
		return ResolveRoot(present)
	}
	return route.Redirect
}
