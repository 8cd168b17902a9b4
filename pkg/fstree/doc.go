// Package fstree scans a source directory into an immutable tree of
// candidate route and model units.
//
// A scan produces a FileNode snapshot. Directories and files named with the
// bracketed parameter convention become dynamic segments:
//
//	src/pages/
//	├── index.tsx          → index unit of /
//	├── settings.tsx       → static unit "settings"
//	└── users/
//	    ├── index.tsx      → index unit of users/
//	    ├── [id].tsx       → dynamic unit ":id"
//	    └── [...rest].tsx  → catch-all unit "*rest"
//
// Entries matching an ignore pattern, and files whose extension is not a
// unit extension, are kept in the tree with Kind == SegmentIgnored so that
// builders can see (and skip) them. Nodes are never mutated after Scan
// returns; a later scan produces a completely new tree.
//
// # Usage
//
//	scanner := fstree.NewScanner("src/pages", fstree.Options{
//	    Ignore: []string{"components"},
//	})
//	result, err := scanner.Scan()
//	if err != nil {
//	    // *fstree.ScanError: the root is missing or unreadable
//	}
//	for _, w := range result.Warnings {
//	    log.Println(w)
//	}
package fstree
