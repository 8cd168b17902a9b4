package fstree

import (
	"fmt"
	"path"
	"strings"
)

// SegmentKind classifies a scanned entry.
type SegmentKind int

const (
	// SegmentStatic matches a literal path segment.
	SegmentStatic SegmentKind = iota

	// SegmentDynamic binds a route parameter ([id] or [...rest]).
	SegmentDynamic

	// SegmentIgnored is excluded from every builder.
	SegmentIgnored
)

// String returns the kind name.
func (k SegmentKind) String() string {
	switch k {
	case SegmentStatic:
		return "static"
	case SegmentDynamic:
		return "dynamic"
	case SegmentIgnored:
		return "ignored"
	default:
		return fmt.Sprintf("SegmentKind(%d)", int(k))
	}
}

// FileNode is one entry of a scanned tree.
type FileNode struct {
	// RelativePath is the slash-separated path from the scan root ("" for the root).
	RelativePath string

	// Name is the entry's base name, including any extension.
	Name string

	// IsDirectory reports whether the entry is a directory.
	IsDirectory bool

	// Children are the directory entries, index unit first, then by name.
	Children []*FileNode

	// IsIndex marks a file whose unit name is the index name.
	IsIndex bool

	// HasIndex marks a directory containing an index unit.
	HasIndex bool

	// Kind is the segment classification.
	Kind SegmentKind

	// CatchAll marks a dynamic segment written as [...name].
	CatchAll bool

	// Skipped marks an entry that could not be read.
	Skipped bool
}

// Unit returns the unit name: the base name without its extension for
// files, the base name for directories.
func (n *FileNode) Unit() string {
	if n.IsDirectory {
		return n.Name
	}
	return strings.TrimSuffix(n.Name, path.Ext(n.Name))
}

// ParamName returns the parameter bound by a dynamic segment.
// It returns "" for static and ignored entries.
func (n *FileNode) ParamName() string {
	if n.Kind != SegmentDynamic {
		return ""
	}
	name, _, _ := parseDynamic(n.Unit())
	return name
}

// Index returns the first index unit of a directory, or nil.
func (n *FileNode) Index() *FileNode {
	for _, child := range n.Children {
		if child.IsIndex {
			return child
		}
	}
	return nil
}

// Indexes returns every index unit of a directory. More than one means the
// same unit exists with different extensions.
func (n *FileNode) Indexes() []*FileNode {
	var out []*FileNode
	for _, child := range n.Children {
		if child.IsIndex {
			out = append(out, child)
		}
	}
	return out
}

// Walk visits n and every descendant depth-first, parents before children.
// Returning false from fn skips the node's children.
func (n *FileNode) Walk(fn func(*FileNode) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Warning is a non-fatal condition found while scanning or building.
type Warning struct {
	// Code identifies the warning kind.
	Code string

	// Path is the source path involved.
	Path string

	// Message is the human-readable description.
	Message string
}

func (w Warning) String() string {
	if w.Path != "" {
		return fmt.Sprintf("%s: %s (%s)", w.Code, w.Message, w.Path)
	}
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}

// Warning codes.
const (
	WarnSkipped       = "SKIPPED_ENTRY"
	WarnShadow        = "SHADOWED_UNIT"
	WarnBackup        = "LEGACY_ARTIFACT"
	WarnPublish       = "PUBLISH_FAILED"
	WarnReserved      = "RESERVED_NAME"
	WarnRepeatedParam = "REPEATED_PARAM"
)

// ScanResult is the output of a scan.
type ScanResult struct {
	// Root is the scanned root directory.
	Root *FileNode

	// Warnings lists entries that were skipped.
	Warnings []Warning
}

// ScanError reports that the scan root does not exist or cannot be read.
type ScanError struct {
	Root string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Root, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}
