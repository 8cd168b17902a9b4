package router

import (
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// Route Conflict Validation
// =============================================================================

// RouteConflict describes one path claimed by more than one source unit.
type RouteConflict struct {
	// Path is the contested mount path (first claimant's spelling).
	Path string

	// Sources are the conflicting source units, sorted.
	Sources []string
}

func (c RouteConflict) String() string {
	return fmt.Sprintf("%s claimed by %s", c.Path, strings.Join(c.Sources, ", "))
}

// RouteConflictError reports that two or more units would both be exact at
// the same path. Parameter names are not significant: /users/:id and
// /users/:slug conflict.
type RouteConflictError struct {
	Conflicts []RouteConflict
}

func (e *RouteConflictError) Error() string {
	if len(e.Conflicts) == 0 {
		return "no route conflicts"
	}
	if len(e.Conflicts) == 1 {
		return "route conflict: " + e.Conflicts[0].String()
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d route conflicts:\n", len(e.Conflicts)))
	for i, c := range e.Conflicts {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, c.String()))
	}
	return sb.String()
}

// validateClaims groups exact claims by their parameter-erased pattern and
// reports every group with more than one source.
func validateClaims(claims []claim) error {
	type group struct {
		path    string
		sources []string
	}
	byPattern := make(map[string]*group)
	var order []string

	for _, c := range claims {
		pattern := erasePattern(c.path)
		g, ok := byPattern[pattern]
		if !ok {
			g = &group{path: c.path}
			byPattern[pattern] = g
			order = append(order, pattern)
		}
		g.sources = append(g.sources, c.source)
	}

	var conflicts []RouteConflict
	for _, pattern := range order {
		g := byPattern[pattern]
		if len(g.sources) <= 1 {
			continue
		}
		sources := append([]string(nil), g.sources...)
		sort.Strings(sources)
		conflicts = append(conflicts, RouteConflict{Path: g.path, Sources: sources})
	}

	if len(conflicts) == 0 {
		return nil
	}
	sort.Slice(conflicts, func(i, j int) bool {
		return conflicts[i].Path < conflicts[j].Path
	})
	return &RouteConflictError{Conflicts: conflicts}
}

// FormatConflict formats a conflict for terminal display:
//
//	ERROR: Duplicate route at /users
//	  users.tsx → /users
//	  users/index.tsx → /users
func FormatConflict(c RouteConflict) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("ERROR: Duplicate route at %s\n", c.Path))
	for _, source := range c.Sources {
		sb.WriteString(fmt.Sprintf("  %s → %s\n", source, c.Path))
	}

	return sb.String()
}
