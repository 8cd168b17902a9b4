package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vango-dev/agreed/pkg/fstree"
)

// Builder derives a nested route configuration from a scanned tree.
// A Builder holds no state between builds and is safe for concurrent use.
type Builder struct {
	base      string
	indexName string
}

// NewBuilder creates a route builder.
func NewBuilder(opts BuildOptions) *Builder {
	indexName := opts.IndexName
	if indexName == "" {
		indexName = fstree.DefaultIndexName
	}
	return &Builder{
		base:      NormalizeBase(opts.Base),
		indexName: indexName,
	}
}

// NormalizeBase returns base as an absolute path without a trailing slash,
// or "/" when base is empty.
func NormalizeBase(base string) string {
	base = strings.Trim(strings.TrimSpace(base), "/")
	if base == "" {
		return "/"
	}
	return "/" + base
}

// claim records a source that mounts a view at an exact path.
type claim struct {
	path   string
	source string
}

// buildState is the per-build accumulator.
type buildState struct {
	claims   []claim
	warnings []fstree.Warning
}

// Build walks root depth-first and returns the route configuration.
// It fails with *RouteConflictError when two units would mount exactly at the
// same path; shadowed units are reported as warnings.
func (b *Builder) Build(root *fstree.FileNode) (*BuildResult, error) {
	if root == nil || !root.IsDirectory {
		return nil, fmt.Errorf("router: build requires a scanned directory")
	}

	state := &buildState{}
	desc, _ := b.buildDir(root, "", b.base, state)

	if err := validateClaims(state.claims); err != nil {
		return nil, err
	}

	return &BuildResult{
		Routes:   []RouteDescriptor{desc},
		Warnings: state.warnings,
	}, nil
}

// buildDir returns the descriptor for dir mounted at mount. The boolean is
// false when the directory has no routable content.
func (b *Builder) buildDir(dir *fstree.FileNode, key, mount string, state *buildState) (RouteDescriptor, bool) {
	desc := RouteDescriptor{Key: key, Path: mount}

	indexes := dir.Indexes()
	for i, idx := range indexes {
		if i == 0 {
			desc.Exact = true
			desc.Component = Lazy(idx.RelativePath)
		}
		state.claims = append(state.claims, claim{path: mount, source: idx.RelativePath})
	}

	var dirs, files []RouteDescriptor
	var dirSegs []string
	var fileNodes []*fstree.FileNode

	for _, child := range dir.Children {
		if child.Kind == fstree.SegmentIgnored || child.IsIndex {
			continue
		}

		if child.IsDirectory {
			seg := segmentFor(child)
			if state.repeatedParam(child, mount, seg) {
				continue
			}
			childMount := joinPath(mount, seg)
			if child.Name == b.indexName {
				childMount = mount
				seg = ""
			}
			if sub, ok := b.buildDir(child, child.Name, childMount, state); ok {
				dirs = append(dirs, sub)
				dirSegs = append(dirSegs, seg)
			}
			continue
		}

		fileNodes = append(fileNodes, child)
	}

	for _, file := range fileNodes {
		seg := segmentFor(file)
		if state.repeatedParam(file, mount, seg) {
			continue
		}
		if shadow := findShadow(dirs, dirSegs, seg); shadow != nil && !shadow.Exact {
			state.warnings = append(state.warnings, fstree.Warning{
				Code:    fstree.WarnShadow,
				Path:    file.RelativePath,
				Message: fmt.Sprintf("shadowed by directory %q at %s", shadow.Key, shadow.Path),
			})
			continue
		}

		path := joinPath(mount, seg)
		files = append(files, RouteDescriptor{
			Key:       file.Unit(),
			Path:      path,
			Exact:     true,
			Component: Lazy(file.RelativePath),
		})
		state.claims = append(state.claims, claim{path: path, source: file.RelativePath})
	}

	desc.SubRoute = append(dirs, files...)
	sortDescriptors(desc.SubRoute)

	return desc, desc.Exact || len(desc.SubRoute) > 0
}

// repeatedParam reports, with a warning, a parameter segment whose name is
// already bound by an enclosing segment of mount. Such a unit and its subtree
// are skipped since a match could only keep one of the two values.
func (st *buildState) repeatedParam(n *fstree.FileNode, mount, seg string) bool {
	name := paramName(seg)
	if name == "" {
		return false
	}
	for _, s := range splitPath(mount) {
		if paramName(s) == name {
			st.warnings = append(st.warnings, fstree.Warning{
				Code:    fstree.WarnRepeatedParam,
				Path:    n.RelativePath,
				Message: fmt.Sprintf("parameter %q is already bound at %s", name, mount),
			})
			return true
		}
	}
	return false
}

func paramName(seg string) string {
	if strings.HasPrefix(seg, ":") || strings.HasPrefix(seg, "*") {
		return seg[1:]
	}
	return ""
}

// findShadow returns the sibling directory mounted at the same segment as a
// file unit, ignoring parameter names.
func findShadow(dirs []RouteDescriptor, dirSegs []string, seg string) *RouteDescriptor {
	erased := eraseSegment(seg)
	for i := range dirs {
		if dirSegs[i] != "" && eraseSegment(dirSegs[i]) == erased {
			return &dirs[i]
		}
	}
	return nil
}

// segmentFor returns the path segment for a node: the literal name for static
// entries, ":name" for parameters and "*name" for catch-alls.
func segmentFor(n *fstree.FileNode) string {
	unit := n.Unit()
	if n.Kind == fstree.SegmentDynamic {
		name, catchAll, _ := fstree.ParseSegment(unit)
		if catchAll {
			return "*" + name
		}
		return ":" + name
	}
	return unit
}

// segmentClass orders siblings: static before dynamic before catch-all.
func segmentClass(key string) int {
	_, catchAll, ok := fstree.ParseSegment(key)
	switch {
	case !ok:
		return 0
	case catchAll:
		return 2
	default:
		return 1
	}
}

// sortDescriptors sorts siblings by segment class, then key. Directories are
// placed before files by the caller, so ties keep the directory first.
func sortDescriptors(routes []RouteDescriptor) {
	sort.SliceStable(routes, func(i, j int) bool {
		ci, cj := segmentClass(routes[i].Key), segmentClass(routes[j].Key)
		if ci != cj {
			return ci < cj
		}
		return routes[i].Key < routes[j].Key
	})
}

func joinPath(parent, seg string) string {
	if parent == "/" {
		return "/" + seg
	}
	return parent + "/" + seg
}

// eraseSegment replaces parameter names so that "/:id" and "/:slug" compare equal.
func eraseSegment(seg string) string {
	switch {
	case strings.HasPrefix(seg, ":"):
		return ":"
	case strings.HasPrefix(seg, "*"):
		return "*"
	default:
		return seg
	}
}

// erasePattern applies eraseSegment to every segment of a path.
func erasePattern(p string) string {
	segments := splitPath(p)
	for i, seg := range segments {
		segments[i] = eraseSegment(seg)
	}
	return "/" + strings.Join(segments, "/")
}
