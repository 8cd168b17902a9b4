package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"

	"github.com/vango-dev/agreed/pkg/model"
	"github.com/vango-dev/agreed/pkg/router"
)

// Content is the data serialized into the generated region.
type Content struct {
	Routes []router.RouteDescriptor
	Models model.Registry
	Navs   []router.NavItem
}

// Options configures rendering.
type Options struct {
	// Package is the Go package of a .go artifact. Defaults to the
	// sanitized name of the artifact's directory.
	Package string

	// Runtime is the module a script artifact imports createQueryRoute from.
	// Defaults to "kiva".
	Runtime string

	// ViewsDir and ModelsDir are the scanned roots. Script artifacts import
	// units relative to the artifact's directory.
	ViewsDir  string
	ModelsDir string
}

// DefaultRuntime is the module providing createQueryRoute to script artifacts.
const DefaultRuntime = "kiva"

// UnsupportedFormatError reports an artifact path with no renderer.
type UnsupportedFormatError struct {
	Path string
	Ext  string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("artifact: unsupported format %q for %s", e.Ext, e.Path)
}

// Format identifies an artifact renderer.
type Format int

const (
	FormatGo Format = iota
	FormatScript
)

// FormatFor returns the renderer format for target's extension.
func FormatFor(target string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(target))
	switch ext {
	case ".go":
		return FormatGo, nil
	case ".ts", ".tsx", ".js", ".jsx", ".mjs":
		return FormatScript, nil
	default:
		return 0, &UnsupportedFormatError{Path: target, Ext: ext}
	}
}

// Render returns the generated text for target: everything up to and
// including the generated-end marker, followed by one blank line.
func Render(target string, c Content, opts Options) (string, error) {
	format, err := FormatFor(target)
	if err != nil {
		return "", err
	}

	var out string
	switch format {
	case FormatGo:
		out, err = renderGo(target, c, opts)
	default:
		out, err = renderScript(target, c, opts)
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n") + "\n\n", nil
}

func execute(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

// importPath returns the module specifier of unit (relative to root) as seen
// from the artifact at target: slash-separated, extension stripped, and
// starting with "./" or "../".
func importPath(target, root, unit string) string {
	full := filepath.Join(root, filepath.FromSlash(unit))
	rel, err := filepath.Rel(filepath.Dir(target), full)
	if err != nil {
		rel = full
	}
	rel = filepath.ToSlash(rel)
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	if !strings.HasPrefix(rel, "./") && !strings.HasPrefix(rel, "../") && !strings.HasPrefix(rel, "/") {
		rel = "./" + rel
	}
	return rel
}

// packageName derives a Go package identifier from the artifact directory.
func packageName(target string) string {
	dir := filepath.Base(filepath.Dir(target))
	if abs, err := filepath.Abs(filepath.Dir(target)); err == nil {
		dir = filepath.Base(abs)
	}

	var b strings.Builder
	for _, r := range strings.ToLower(dir) {
		switch {
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '-' || r == '.' || r == ' ':
			b.WriteRune('_')
		}
	}
	name := b.String()
	if name == "" {
		return "routes"
	}
	if unicode.IsDigit(rune(name[0])) {
		name = "_" + name
	}
	return name
}
