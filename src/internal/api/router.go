package api

import (
	"fmt"
	"net/http"
	"strings"
)

// Param is the optional path segment captured by a ":name" route.
type Param struct {
	value string
	ok    bool
}

// SomeParam returns a present Param holding v.
func SomeParam(v string) Param {
	return Param{value: v, ok: true}
}

// Get returns the captured value and whether one was captured.
func (p Param) Get() (string, bool) {
	return p.value, p.ok
}

// Or returns the captured value, or def when nothing was captured.
func (p Param) Or(def string) string {
	if !p.ok {
		return def
	}
	return p.value
}

// HandlerFunc handles a routed request. p is absent unless the matched
// pattern has a named segment.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, p Param)

type segment struct {
	literal string
	param   bool
}

type route struct {
	method   string
	pattern  string
	segments []segment
	mount    bool
	handler  HandlerFunc
}

// Match is the result of routing one request.
type Match struct {
	// Pattern is the normalized pattern of the matched route, empty when
	// the request fell through to the not-found handler.
	Pattern string
	Param   Param
	handler HandlerFunc
}

func (m Match) Found() bool {
	return m.Pattern != ""
}

// Router matches (method, path) pairs against routes in registration order.
// A single trailing slash is ignored on both patterns and request paths.
// HEAD requests are matched against GET routes.
//
// Routes are registered at startup; Match and ServeHTTP are safe for
// concurrent use once registration is done.
type Router struct {
	routes   []route
	notFound HandlerFunc
}

func NewRouter(notFound HandlerFunc) *Router {
	return &Router{notFound: notFound}
}

// Handle registers a route. A pattern may contain at most one named segment
// (":name"). Registering a pattern that is indistinguishable from an
// existing one for the same method, after normalization, is an error.
func (rt *Router) Handle(method, pattern string, h HandlerFunc) error {
	if !strings.HasPrefix(pattern, "/") {
		return fmt.Errorf("route %s %q: pattern must start with /", method, pattern)
	}
	pattern = normalizePath(pattern)

	var segs []segment
	params := 0
	for _, s := range splitPath(pattern) {
		if strings.HasPrefix(s, ":") {
			if len(s) == 1 {
				return fmt.Errorf("route %s %q: named segment needs a name", method, pattern)
			}
			params++
			segs = append(segs, segment{literal: s[1:], param: true})
			continue
		}
		if s == "" {
			return fmt.Errorf("route %s %q: empty path segment", method, pattern)
		}
		segs = append(segs, segment{literal: s})
	}
	if params > 1 {
		return fmt.Errorf("route %s %q: at most one named segment is allowed", method, pattern)
	}

	r := route{method: method, pattern: pattern, segments: segs, handler: h}
	for _, existing := range rt.routes {
		if existing.method == method && sameShape(existing, r) {
			return fmt.Errorf("route %s %q: conflicts with %q", method, pattern, existing.pattern)
		}
	}

	rt.routes = append(rt.routes, r)
	return nil
}

// Get registers a GET route.
func (rt *Router) Get(pattern string, h HandlerFunc) error {
	return rt.Handle(http.MethodGet, pattern, h)
}

// Mount routes prefix and everything below it to h for the given methods.
func (rt *Router) Mount(prefix string, h http.Handler, methods ...string) error {
	if !strings.HasPrefix(prefix, "/") || prefix == "/" {
		return fmt.Errorf("mount %q: prefix must start with / and not be the root", prefix)
	}
	prefix = normalizePath(prefix)

	for _, m := range methods {
		for _, existing := range rt.routes {
			if existing.mount && existing.method == m && existing.pattern == prefix {
				return fmt.Errorf("mount %s %q: already mounted", m, prefix)
			}
		}
		rt.routes = append(rt.routes, route{
			method:  m,
			pattern: prefix,
			mount:   true,
			handler: func(w http.ResponseWriter, r *http.Request, _ Param) {
				h.ServeHTTP(w, r)
			},
		})
	}
	return nil
}

// Match finds the first route accepting method and rawPath. When none does,
// the returned Match carries the not-found handler.
func (rt *Router) Match(method, rawPath string) Match {
	path := normalizePath(rawPath)
	parts := splitPath(path)

	for _, r := range rt.routes {
		if !methodMatches(r.method, method) {
			continue
		}
		if r.mount {
			if path == r.pattern || strings.HasPrefix(path, r.pattern+"/") {
				return Match{Pattern: r.pattern, handler: r.handler}
			}
			continue
		}
		if p, ok := r.match(parts); ok {
			return Match{Pattern: r.pattern, Param: p, handler: r.handler}
		}
	}

	return Match{handler: rt.notFound}
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m := rt.Match(r.Method, r.URL.Path)
	m.handler(w, r, m.Param)
}

func (r route) match(parts []string) (Param, bool) {
	if len(parts) != len(r.segments) {
		return Param{}, false
	}

	var p Param
	for i, seg := range r.segments {
		if seg.param {
			if parts[i] == "" {
				return Param{}, false
			}
			p = SomeParam(parts[i])
			continue
		}
		if parts[i] != seg.literal {
			return Param{}, false
		}
	}
	return p, true
}

// sameShape reports whether two routes would accept exactly the same paths.
func sameShape(a, b route) bool {
	if a.mount != b.mount {
		return false
	}
	if a.mount {
		return a.pattern == b.pattern
	}
	if len(a.segments) != len(b.segments) {
		return false
	}
	for i := range a.segments {
		sa, sb := a.segments[i], b.segments[i]
		if sa.param != sb.param {
			return false
		}
		if !sa.param && sa.literal != sb.literal {
			return false
		}
	}
	return true
}

func methodMatches(routeMethod, method string) bool {
	if routeMethod == method {
		return true
	}
	return method == http.MethodHead && routeMethod == http.MethodGet
}

// normalizePath strips exactly one trailing slash from anything but the root.
func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		return p[:len(p)-1]
	}
	return p
}

func splitPath(p string) []string {
	if p == "/" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(p, "/"), "/")
}
