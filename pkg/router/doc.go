// Package router builds nested route configurations from scanned source
// trees and resolves them at render time.
//
// The router provides:
//   - Convention-based route derivation from a pages directory
//   - Deterministic ordering (static, then dynamic, then catch-all)
//   - Conflict detection for routes that would mount at the same path
//   - A runtime resolver for nested view composition (GetRoute)
//   - Radix tree matching of concrete URLs (Match)
//
// # File Structure Convention
//
// Routes are derived from the shape of the pages directory:
//
//	src/pages/
//	├── index.tsx          → /          (exact)
//	├── settings.tsx       → /settings  (exact)
//	├── users/
//	│   ├── index.tsx      → /users     (exact)
//	│   └── [id].tsx       → /users/:id (exact)
//	└── docs/
//	    └── [...path].tsx  → /docs/*path
//
// A directory without an index unit still produces a grouping descriptor
// (Exact == false) so that its children can be composed under it.
//
// # Parameters
//
// Dynamic route segments are defined with brackets:
//
//	[id].tsx       → :id
//	[id:int].tsx   → :id (the type annotation is ignored)
//	[...slug].tsx  → *slug (catch-all)
//
// # Usage
//
//	scan, err := fstree.NewScanner("src/pages", fstree.Options{}).Scan()
//	built, err := router.NewBuilder(router.BuildOptions{}).Build(scan.Root)
//
//	qr := router.NewResolver(built.Routes)
//	subRoutes, ok := qr.GetRoute("users")
//	if !ok {
//	    // render the not-found view
//	}
//
//	desc, params, ok := qr.Match("/users/42")
//	// desc.Path == "/users/:id", params["id"] == "42"
package router
