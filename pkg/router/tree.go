package router

import "strings"

// routeNode is a node in the radix tree used by Resolver.Match.
type routeNode struct {
	// segment is the path segment this node matches
	segment string

	// isParam indicates this is a parameter segment (:id)
	isParam bool

	// isCatchAll indicates this is a catch-all segment (*slug)
	isCatchAll bool

	// route is the exact descriptor mounted at this node, if any
	route *RouteDescriptor

	// children are static segment children
	children []*routeNode

	// paramChild is the dynamic parameter child (:id)
	paramChild *routeNode

	// catchAllChild is the catch-all child (*slug)
	catchAllChild *routeNode
}

func newRouteNode(segment string) *routeNode {
	return &routeNode{segment: segment}
}

// findChild finds a child node with an exact segment match.
func (n *routeNode) findChild(segment string) *routeNode {
	for _, child := range n.children {
		if child.segment == segment {
			return child
		}
	}
	return nil
}

// addChild adds or retrieves a child node for the given segment.
func (n *routeNode) addChild(segment string) *routeNode {
	if child := n.findChild(segment); child != nil {
		return child
	}
	child := newRouteNode(segment)
	n.children = append(n.children, child)
	return child
}

// addParamChild returns the parameter child, creating it if needed. Parameter
// names live on the descriptor, so /:id and /:slug share one node.
func (n *routeNode) addParamChild() *routeNode {
	if n.paramChild == nil {
		n.paramChild = newRouteNode("")
		n.paramChild.isParam = true
	}
	return n.paramChild
}

// addCatchAllChild returns the catch-all child, creating it if needed.
func (n *routeNode) addCatchAllChild() *routeNode {
	if n.catchAllChild == nil {
		n.catchAllChild = newRouteNode("")
		n.catchAllChild.isCatchAll = true
	}
	return n.catchAllChild
}

// insertRoute mounts d at its path. The first descriptor inserted at a node
// wins.
func (n *routeNode) insertRoute(d *RouteDescriptor) {
	current := n
	for _, seg := range splitPath(d.Path) {
		if strings.HasPrefix(seg, "*") {
			// Catch-all consumes the rest of the path
			current = current.addCatchAllChild()
			break
		} else if strings.HasPrefix(seg, ":") {
			current = current.addParamChild()
		} else {
			current = current.addChild(seg)
		}
	}
	if current.route == nil {
		current.route = d
	}
}

// match finds the node for segments. Static children are tried first, then
// the parameter child, then the catch-all, backtracking on failure. values
// collects parameter values in path order.
func (n *routeNode) match(segments []string, values []string) (*routeNode, []string, bool) {
	if len(segments) == 0 {
		if n.route != nil {
			return n, values, true
		}
		return nil, nil, false
	}

	segment := segments[0]
	remaining := segments[1:]

	// Try exact match first
	if child := n.findChild(segment); child != nil {
		if node, vals, ok := child.match(remaining, values); ok {
			return node, vals, true
		}
	}

	// Try parameter match
	if n.paramChild != nil {
		if node, vals, ok := n.paramChild.match(remaining, append(values, segment)); ok {
			return node, vals, true
		}
		// Backtrack: the appended value is discarded with the failed branch
	}

	// Try catch-all match
	if n.catchAllChild != nil && n.catchAllChild.route != nil {
		return n.catchAllChild, append(values, strings.Join(segments, "/")), true
	}

	return nil, nil, false
}

// bindParams maps matched values onto the parameter names of pattern.
func bindParams(pattern string, values []string) map[string]string {
	params := make(map[string]string, len(values))
	i := 0
	for _, seg := range splitPath(pattern) {
		if i >= len(values) {
			break
		}
		if strings.HasPrefix(seg, ":") || strings.HasPrefix(seg, "*") {
			params[seg[1:]] = values[i]
			i++
		}
	}
	return params
}

// splitPath splits a path into segments.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
