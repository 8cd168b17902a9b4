package router

import (
	"net/url"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/vango-dev/agreed/pkg/fstree"
)

// Resolver answers route lookups over the most recently loaded route tree.
// Lookups never fail loudly: an unknown key is reported with ok == false.
// Resolver is safe for concurrent use; Load swaps the tree atomically.
type Resolver struct {
	index atomic.Pointer[resolverIndex]
}

type resolverIndex struct {
	routes []RouteDescriptor
	byKey  map[string]*RouteDescriptor
	byPath map[string]*RouteDescriptor
	keys   []string
	tree   *routeNode
}

// NewResolver creates a resolver over routes (as returned by Builder.Build).
func NewResolver(routes []RouteDescriptor) *Resolver {
	r := &Resolver{}
	r.Load(routes)
	return r
}

// Load replaces the route tree.
func (r *Resolver) Load(routes []RouteDescriptor) {
	idx := &resolverIndex{
		routes: routes,
		byKey:  make(map[string]*RouteDescriptor),
		byPath: make(map[string]*RouteDescriptor),
		tree:   newRouteNode(""),
	}
	for i := range routes {
		idx.add(&routes[i], "")
	}
	sort.Strings(idx.keys)
	r.index.Store(idx)
}

func (idx *resolverIndex) add(d *RouteDescriptor, parent string) {
	key := parent
	if d.Key != "" {
		if key != "" {
			key += "/"
		}
		key += normalizeKeySegment(d.Key)
	}

	if _, exists := idx.byKey[key]; !exists {
		idx.byKey[key] = d
		idx.keys = append(idx.keys, key)
	}
	if prev, exists := idx.byPath[d.Path]; !exists || (!prev.Exact && d.Exact) {
		idx.byPath[d.Path] = d
	}
	if d.Exact {
		idx.tree.insertRoute(d)
	}

	for i := range d.SubRoute {
		idx.add(&d.SubRoute[i], key)
	}
}

// Routes returns the loaded route tree.
func (r *Resolver) Routes() []RouteDescriptor {
	if idx := r.index.Load(); idx != nil {
		return idx.routes
	}
	return nil
}

// Keys returns every qualified key, sorted. The root key is "".
func (r *Resolver) Keys() []string {
	if idx := r.index.Load(); idx != nil {
		return append([]string(nil), idx.keys...)
	}
	return nil
}

// GetRoute returns the sub-routes of the descriptor identified by key, for
// nested view composition. The key is the slash-qualified chain of descriptor
// keys from the root ("users", "developer/media.picture"); "[id]" and ":id"
// are interchangeable. When the key contains dots and no descriptor matches,
// the dots are retried as separators ("users.profile"). "" and "/" address
// the root.
//
// The returned slice is a copy; nested descriptors are shared and must not be
// modified.
func (r *Resolver) GetRoute(key string) ([]RouteDescriptor, bool) {
	d, ok := r.Get(key)
	if !ok {
		return nil, false
	}
	return append([]RouteDescriptor{}, d.SubRoute...), true
}

// Get returns the descriptor identified by key. See GetRoute for the key
// format.
func (r *Resolver) Get(key string) (RouteDescriptor, bool) {
	idx := r.index.Load()
	if idx == nil {
		return RouteDescriptor{}, false
	}

	k := normalizeKey(key)
	if d, ok := idx.byKey[k]; ok {
		return *d, true
	}
	if strings.Contains(k, ".") {
		if d, ok := idx.byKey[normalizeKey(strings.ReplaceAll(k, ".", "/"))]; ok {
			return *d, true
		}
	}
	return RouteDescriptor{}, false
}

// Lookup returns the descriptor mounted at a derived path ("/users/:id").
// When several descriptors share a path the exact one is returned.
func (r *Resolver) Lookup(path string) (RouteDescriptor, bool) {
	idx := r.index.Load()
	if idx == nil {
		return RouteDescriptor{}, false
	}
	p := "/" + strings.Trim(path, "/")
	if d, ok := idx.byPath[p]; ok {
		return *d, true
	}
	return RouteDescriptor{}, false
}

// Match resolves a concrete URL path to its exact descriptor and parameter
// values. Static segments win over dynamic ones at the same depth, dynamic
// over catch-all. Query strings and fragments are ignored.
func (r *Resolver) Match(urlPath string) (RouteDescriptor, map[string]string, bool) {
	idx := r.index.Load()
	if idx == nil {
		return RouteDescriptor{}, nil, false
	}

	if i := strings.IndexAny(urlPath, "?#"); i >= 0 {
		urlPath = urlPath[:i]
	}

	segments, ok := canonicalSegments(urlPath)
	if !ok {
		return RouteDescriptor{}, nil, false
	}

	node, values, ok := idx.tree.match(segments, nil)
	if !ok {
		return RouteDescriptor{}, nil, false
	}
	return *node.route, bindParams(node.route.Path, values), true
}

// canonicalSegments splits a URL path into decoded segments. Empty and "."
// segments are dropped and ".." pops the previous segment. It fails on a
// backslash, a NUL byte, a malformed escape or a ".." above the root.
func canonicalSegments(urlPath string) ([]string, bool) {
	if strings.ContainsAny(urlPath, "\\\x00") {
		return nil, false
	}

	var segments []string
	for _, seg := range strings.Split(urlPath, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(segments) == 0 {
				return nil, false
			}
			segments = segments[:len(segments)-1]
			continue
		}
		decoded, err := url.PathUnescape(seg)
		if err != nil || strings.ContainsRune(decoded, 0) {
			return nil, false
		}
		segments = append(segments, decoded)
	}
	return segments, true
}

// normalizeKey trims separators and rewrites bracketed segments to their
// path token form.
func normalizeKey(key string) string {
	segments := splitPath(strings.TrimSpace(key))
	for i, seg := range segments {
		segments[i] = normalizeKeySegment(seg)
	}
	return strings.Join(segments, "/")
}

func normalizeKeySegment(seg string) string {
	if name, catchAll, ok := fstree.ParseSegment(seg); ok {
		if catchAll {
			return "*" + name
		}
		return ":" + name
	}
	return seg
}
