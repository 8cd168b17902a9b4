package router

import "github.com/vango-dev/agreed/pkg/fstree"

// ComponentRef is an opaque deferred reference to a view unit. The router
// never loads it; the render layer materializes it lazily.
type ComponentRef struct {
	// Source is the unit path relative to the scanned root.
	Source string `json:"source,omitempty"`
}

// Lazy returns a ComponentRef for the given source unit.
func Lazy(source string) ComponentRef {
	return ComponentRef{Source: source}
}

// IsZero reports whether the reference is empty.
func (c ComponentRef) IsZero() bool {
	return c.Source == ""
}

// RouteDescriptor is one node of a nested route configuration.
type RouteDescriptor struct {
	// Key is the path segment as written on disk ("users", "[id]").
	Key string `json:"key"`

	// Path is the absolute mount path ("/users/:id").
	Path string `json:"path"`

	// Exact reports whether a view is mounted at Path itself.
	Exact bool `json:"exact"`

	// Component is the view mounted at Path. Empty when Exact is false.
	Component ComponentRef `json:"component"`

	// SubRoute are the nested descriptors in resolution order.
	SubRoute []RouteDescriptor `json:"subRoute,omitempty"`
}

// IsDynamic reports whether the descriptor's last segment binds a parameter.
func (d RouteDescriptor) IsDynamic() bool {
	_, _, ok := fstree.ParseSegment(d.Key)
	return ok
}

// NavItem is one entry of the navigation tree derived from routes.
type NavItem struct {
	// Key is the qualified route key, usable with Resolver.GetRoute.
	Key string `json:"key"`

	// Title is a display title derived from the route key.
	Title string `json:"title"`

	// Path is the link target. Empty for grouping entries.
	Path string `json:"path,omitempty"`

	// Items are the nested entries.
	Items []NavItem `json:"items,omitempty"`
}

// BuildOptions configures a Builder.
type BuildOptions struct {
	// Base is the path prefix every route is mounted under ("" means "/").
	Base string

	// IndexName is the unit name of directory entry files. Defaults to "index".
	IndexName string
}

// BuildResult is the output of a route build.
type BuildResult struct {
	// Routes holds the root descriptor. Routes[0].SubRoute is the top-level
	// route list.
	Routes []RouteDescriptor

	// Warnings lists non-fatal conditions such as shadowed units.
	Warnings []fstree.Warning
}
