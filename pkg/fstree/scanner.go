package fstree

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtensions are the file extensions treated as source units.
var DefaultExtensions = []string{".tsx", ".ts", ".jsx", ".js", ".vue", ".go"}

// DefaultIndexName is the unit name of a directory's entry file.
const DefaultIndexName = "index"

// Options configures a Scanner.
type Options struct {
	// Ignore patterns, added to DefaultIgnore.
	Ignore []string

	// Extensions lists unit file extensions (with the leading dot).
	// Defaults to DefaultExtensions.
	Extensions []string

	// IndexName is the unit name of directory entry files. Defaults to "index".
	IndexName string
}

// Scanner walks a directory subtree into a FileNode tree.
type Scanner struct {
	rootDir    string
	ignore     *IgnoreMatcher
	extensions map[string]bool
	indexName  string
}

// NewScanner creates a scanner rooted at rootDir.
func NewScanner(rootDir string, opts Options) *Scanner {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	extSet := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extSet[ext] = true
	}

	indexName := opts.IndexName
	if indexName == "" {
		indexName = DefaultIndexName
	}

	return &Scanner{
		rootDir:    rootDir,
		ignore:     NewIgnoreMatcher(DefaultIgnore, opts.Ignore),
		extensions: extSet,
		indexName:  indexName,
	}
}

// Root returns the scanned directory.
func (s *Scanner) Root() string {
	return s.rootDir
}

// Scan reads the directory tree. It fails with *ScanError only when the root
// itself is missing, not a directory, or unreadable.
func (s *Scanner) Scan() (*ScanResult, error) {
	info, err := os.Stat(s.rootDir)
	if err != nil {
		return nil, &ScanError{Root: s.rootDir, Err: err}
	}
	if !info.IsDir() {
		return nil, &ScanError{Root: s.rootDir, Err: fmt.Errorf("not a directory")}
	}

	entries, err := os.ReadDir(s.rootDir)
	if err != nil {
		return nil, &ScanError{Root: s.rootDir, Err: err}
	}

	result := &ScanResult{}
	root := &FileNode{
		Name:        filepath.Base(s.rootDir),
		IsDirectory: true,
		Kind:        SegmentStatic,
	}
	s.fill(root, entries, result)
	result.Root = root
	return result, nil
}

// fill populates dir's children from entries, recursing into directories.
func (s *Scanner) fill(dir *FileNode, entries []fs.DirEntry, result *ScanResult) {
	children := make([]*FileNode, 0, len(entries))

	for _, entry := range entries {
		rel := path.Join(dir.RelativePath, entry.Name())
		node := &FileNode{
			RelativePath: rel,
			Name:         entry.Name(),
			IsDirectory:  entry.IsDir(),
		}

		switch {
		case entry.Type()&fs.ModeSymlink != 0:
			// Symlinks are not followed.
			node.Kind = SegmentIgnored
		case s.ignore.Match(rel):
			node.Kind = SegmentIgnored
		case reservedName(node.Name) && (node.IsDirectory || s.extensions[strings.ToLower(path.Ext(node.Name))]):
			node.Kind = SegmentIgnored
			result.Warnings = append(result.Warnings, Warning{
				Code:    WarnReserved,
				Path:    rel,
				Message: "names starting with ':' or '*' are reserved for route parameters; use [name] or [...name]",
			})
		case node.IsDirectory:
			s.classify(node)
			sub, err := os.ReadDir(filepath.Join(s.rootDir, filepath.FromSlash(rel)))
			if err != nil {
				node.Kind = SegmentIgnored
				node.Skipped = true
				result.Warnings = append(result.Warnings, Warning{
					Code:    WarnSkipped,
					Path:    rel,
					Message: fmt.Sprintf("unreadable directory skipped: %v", unwrapPathError(err)),
				})
				break
			}
			s.fill(node, sub, result)
		case !s.extensions[strings.ToLower(path.Ext(node.Name))]:
			node.Kind = SegmentIgnored
		default:
			s.classify(node)
			node.IsIndex = node.Unit() == s.indexName
		}

		if node.IsIndex {
			dir.HasIndex = true
		}
		children = append(children, node)
	}

	sortChildren(children)
	dir.Children = children
}

// reservedName reports whether name begins with a path parameter token, which
// a static segment could not be told apart from.
func reservedName(name string) bool {
	return strings.HasPrefix(name, ":") || strings.HasPrefix(name, "*")
}

// classify sets Kind and CatchAll from the unit name.
func (s *Scanner) classify(node *FileNode) {
	if _, catchAll, ok := parseDynamic(node.Unit()); ok {
		node.Kind = SegmentDynamic
		node.CatchAll = catchAll
		return
	}
	node.Kind = SegmentStatic
}

// sortChildren orders entries: index units first, then by name.
func sortChildren(children []*FileNode) {
	sort.SliceStable(children, func(i, j int) bool {
		a, b := children[i], children[j]
		if a.IsIndex != b.IsIndex {
			return a.IsIndex
		}
		return a.Name < b.Name
	})
}

// parseDynamic parses a bracketed parameter segment.
//
//	[id]      → ("id", false, true)
//	[id:int]  → ("id", false, true)
//	[...slug] → ("slug", true, true)
//	users     → ("", false, false)
func parseDynamic(unit string) (name string, catchAll bool, ok bool) {
	if len(unit) < 3 || unit[0] != '[' || unit[len(unit)-1] != ']' {
		return "", false, false
	}
	inner := unit[1 : len(unit)-1]
	if strings.HasPrefix(inner, "...") {
		inner = inner[3:]
		catchAll = true
	}
	if idx := strings.Index(inner, ":"); idx >= 0 {
		inner = inner[:idx]
	}
	if inner == "" || strings.ContainsAny(inner, "[]/") {
		return "", false, false
	}
	return inner, catchAll, true
}

// ParseSegment exposes the bracket convention to other packages. It reports
// the parameter name and whether the segment is a catch-all.
func ParseSegment(unit string) (name string, catchAll bool, ok bool) {
	return parseDynamic(unit)
}

func unwrapPathError(err error) error {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err
	}
	return err
}
