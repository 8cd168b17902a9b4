// Package errors provides structured, actionable error messages for the
// agreed CLI.
//
// Pipeline packages return typed errors (*fstree.ScanError,
// *router.RouteConflictError, *model.DuplicateModelError,
// *artifact.EmitIOError). Classify maps them to coded errors for display;
// ClassifyAll does the same for the joined error of a failed build.
//
// # Error Codes
//
// Each error has a unique code (e.g., "E202") that maps to:
//   - A short message describing the error
//   - A detailed explanation
//   - A documentation URL
//
// # Usage
//
//	if result.Err != nil {
//	    errors.Fprint(os.Stderr, result.Err)
//	}
//	// Output:
//	// ERROR E202: Route conflict
//	//
//	//   • /users claimed by users.tsx, users/index.tsx
//	//
//	//   Two units would both be mounted exactly at the same path. The
//	//   previous artifact was kept.
//	//
//	//   Hint: Rename or remove one unit per path; ...
package errors
