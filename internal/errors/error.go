package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/vango-dev/agreed/internal/artifact"
	"github.com/vango-dev/agreed/pkg/fstree"
	"github.com/vango-dev/agreed/pkg/model"
	"github.com/vango-dev/agreed/pkg/router"
)

// Category represents the type of error.
type Category string

const (
	CategoryScan    Category = "scan"
	CategoryRoute   Category = "route"
	CategoryModel   Category = "model"
	CategoryEmit    Category = "emit"
	CategoryConfig  Category = "config"
	CategoryCLI     Category = "cli"
	CategoryPublish Category = "publish"
)

// Location represents a source location.
type Location struct {
	File string
	Line int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Line > 0 {
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	}
	return l.File
}

// Error is a structured error with a code, a location and a suggestion.
type Error struct {
	// Code is a unique error identifier (e.g., "E202").
	Code string

	// Category is the error type (scan, route, config, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is where the error occurred.
	Location *Location

	// Items lists the individual offenders (conflicting paths, names).
	Items []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds a source location to the error.
func (e *Error) WithLocation(file string, line int) *Error {
	e.Location = &Location{File: file, Line: line}
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

// WithItems sets the offending items.
func (e *Error) WithItems(items ...string) *Error {
	e.Items = items
	return e
}

// Wrap wraps another error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// New creates an Error from a registered error code.
func New(code string) *Error {
	template, ok := registry[code]
	if !ok {
		return &Error{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &Error{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new Error with a formatted message (no code).
func Newf(category Category, format string, args ...any) *Error {
	return &Error{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in an Error.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	return New(code).Wrap(err).WithDetail(err.Error())
}

// Classify maps the pipeline's typed errors to coded errors. Unrecognized
// errors are returned as an uncoded CLI error. Use ClassifyAll for joined
// errors.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var (
		coded     *Error
		scanErr   *fstree.ScanError
		routeErr  *router.RouteConflictError
		modelErr  *model.DuplicateModelError
		emitErr   *artifact.EmitIOError
		formatErr *artifact.UnsupportedFormatError
	)

	switch {
	case stderrors.As(err, &coded):
		return coded
	case stderrors.As(err, &scanErr):
		return New("E201").
			Wrap(err).
			WithLocation(scanErr.Root, 0).
			WithDetail(scanErr.Err.Error()).
			WithSuggestion("Check viewsPath and modelsPath in your agreed config")
	case stderrors.As(err, &routeErr):
		items := make([]string, len(routeErr.Conflicts))
		for i, c := range routeErr.Conflicts {
			items[i] = c.String()
		}
		return New("E202").
			Wrap(err).
			WithItems(items...).
			WithSuggestion("Rename or remove one unit per path; an index file and a file named after its directory mount at the same path")
	case stderrors.As(err, &modelErr):
		items := make([]string, len(modelErr.Duplicates))
		for i, d := range modelErr.Duplicates {
			items[i] = fmt.Sprintf("%s: %s", d.Name, strings.Join(d.Paths, ", "))
		}
		return New("E203").
			Wrap(err).
			WithItems(items...).
			WithSuggestion("Model names are qualified by directory; rename one of the units")
	case stderrors.As(err, &emitErr):
		return New("E204").
			Wrap(err).
			WithLocation(emitErr.Path, 0).
			WithDetail(fmt.Sprintf("%s: %v", emitErr.Op, emitErr.Err))
	case stderrors.As(err, &formatErr):
		return New("E205").
			Wrap(err).
			WithLocation(formatErr.Path, 0).
			WithSuggestion("Use a .go, .ts, .tsx, .js or .jsx filePath")
	}

	return &Error{Category: CategoryCLI, Message: err.Error(), Wrapped: err}
}

// ClassifyAll splits an errors.Join result and classifies each member.
func ClassifyAll(err error) []*Error {
	if err == nil {
		return nil
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return []*Error{Classify(err)}
	}
	var out []*Error
	for _, member := range joined.Unwrap() {
		out = append(out, ClassifyAll(member)...)
	}
	return out
}
