// Package model builds a flat registry of state models from a scanned
// source tree.
//
// Every non-index unit becomes one entry. Nested units are qualified by their
// directory path joined with dots, so src/models/user/profile.ts registers as
// "user.profile" and never collides with src/models/team/profile.ts.
package model

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/vango-dev/agreed/pkg/fstree"
)

// SourceRef is an opaque reference to a model unit.
type SourceRef struct {
	// Source is the unit path relative to the scanned root.
	Source string `json:"source"`
}

// Source returns a SourceRef for the given unit path.
func Source(source string) SourceRef {
	return SourceRef{Source: source}
}

// Descriptor is one registered model.
type Descriptor struct {
	Name   string    `json:"name"`
	Source SourceRef `json:"source"`
}

// Registry maps qualified model names to their descriptors.
type Registry map[string]Descriptor

// Names returns the registered names, sorted.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sorted returns the descriptors ordered by name.
func (r Registry) Sorted() []Descriptor {
	out := make([]Descriptor, 0, len(r))
	for _, name := range r.Names() {
		out = append(out, r[name])
	}
	return out
}

// Duplicate is one name claimed by several units.
type Duplicate struct {
	Name  string
	Paths []string
}

// DuplicateModelError reports names that more than one unit resolves to.
type DuplicateModelError struct {
	Duplicates []Duplicate
}

func (e *DuplicateModelError) Error() string {
	parts := make([]string, len(e.Duplicates))
	for i, d := range e.Duplicates {
		parts[i] = fmt.Sprintf("%q (%s)", d.Name, strings.Join(d.Paths, ", "))
	}
	return "duplicate model names: " + strings.Join(parts, "; ")
}

// Builder derives a Registry from a scanned tree.
type Builder struct{}

// NewBuilder creates a model registry builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build registers every non-ignored, non-index file unit under root. It fails
// with *DuplicateModelError listing every colliding name.
func (b *Builder) Build(root *fstree.FileNode) (Registry, error) {
	if root == nil || !root.IsDirectory {
		return nil, fmt.Errorf("model: build requires a scanned directory")
	}

	claims := make(map[string][]string)
	root.Walk(func(n *fstree.FileNode) bool {
		if n.Kind == fstree.SegmentIgnored {
			return false
		}
		if n.IsDirectory || n.IsIndex {
			return true
		}
		name := QualifiedName(n)
		claims[name] = append(claims[name], n.RelativePath)
		return true
	})

	registry := make(Registry, len(claims))
	var dups []Duplicate
	for name, paths := range claims {
		if len(paths) > 1 {
			sort.Strings(paths)
			dups = append(dups, Duplicate{Name: name, Paths: paths})
			continue
		}
		registry[name] = Descriptor{Name: name, Source: Source(paths[0])}
	}

	if len(dups) > 0 {
		sort.Slice(dups, func(i, j int) bool { return dups[i].Name < dups[j].Name })
		return nil, &DuplicateModelError{Duplicates: dups}
	}
	return registry, nil
}

// QualifiedName returns the registry key of a file unit: its unit name,
// prefixed by every enclosing directory joined with ".".
func QualifiedName(n *fstree.FileNode) string {
	dir := path.Dir(n.RelativePath)
	if dir == "." || dir == "" {
		return n.Unit()
	}
	return strings.ReplaceAll(dir, "/", ".") + "." + n.Unit()
}
