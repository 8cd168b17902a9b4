package artifact

import (
	"fmt"
	"go/format"
	"strconv"
	"strings"
	"text/template"

	"github.com/vango-dev/agreed/pkg/model"
	"github.com/vango-dev/agreed/pkg/router"
)

var goTemplate = template.Must(template.New("go").Funcs(template.FuncMap{
	"routes": goRoutes,
	"models": goModels,
	"navs":   goNavs,
}).Parse(`// Code generated by agreed. DO NOT EDIT.
// Hand-written code belongs between the agreed:manual markers below.

package {{.Package}}

import (
	"github.com/vango-dev/agreed/pkg/model"
	"github.com/vango-dev/agreed/pkg/router"
)

// agreed:generated:begin

// Routes is the route tree derived from the views directory.
var Routes = []router.RouteDescriptor{
{{routes .Content.Routes}}}

// Models maps model names to their source units.
var Models = model.Registry{
{{models .Content.Models}}}

// Navs is the navigation tree derived from Routes.
var Navs = []router.NavItem{
{{navs .Content.Navs}}}

// QR resolves route keys against Routes.
var QR = router.NewResolver(Routes)

// agreed:generated:end
`))

func renderGo(target string, c Content, opts Options) (string, error) {
	pkg := opts.Package
	if pkg == "" {
		pkg = packageName(target)
	}

	src, err := execute(goTemplate, struct {
		Package string
		Content Content
	}{pkg, c})
	if err != nil {
		return "", err
	}

	formatted, err := format.Source([]byte(src))
	if err != nil {
		return "", fmt.Errorf("artifact: format generated Go: %w", err)
	}
	return string(formatted), nil
}

func goRoutes(routes []router.RouteDescriptor) string {
	var b strings.Builder
	writeGoRoutes(&b, routes)
	return b.String()
}

func writeGoRoutes(b *strings.Builder, routes []router.RouteDescriptor) {
	for _, r := range routes {
		b.WriteString("{\n")
		fmt.Fprintf(b, "Key: %s,\n", strconv.Quote(r.Key))
		fmt.Fprintf(b, "Path: %s,\n", strconv.Quote(r.Path))
		if r.Exact {
			b.WriteString("Exact: true,\n")
		}
		if !r.Component.IsZero() {
			fmt.Fprintf(b, "Component: router.Lazy(%s),\n", strconv.Quote(r.Component.Source))
		}
		if len(r.SubRoute) > 0 {
			b.WriteString("SubRoute: []router.RouteDescriptor{\n")
			writeGoRoutes(b, r.SubRoute)
			b.WriteString("},\n")
		}
		b.WriteString("},\n")
	}
}

func goModels(registry model.Registry) string {
	var b strings.Builder
	for _, d := range registry.Sorted() {
		fmt.Fprintf(&b, "%s: {Name: %s, Source: model.Source(%s)},\n",
			strconv.Quote(d.Name), strconv.Quote(d.Name), strconv.Quote(d.Source.Source))
	}
	return b.String()
}

func goNavs(items []router.NavItem) string {
	var b strings.Builder
	writeGoNavs(&b, items)
	return b.String()
}

func writeGoNavs(b *strings.Builder, items []router.NavItem) {
	for _, item := range items {
		b.WriteString("{\n")
		fmt.Fprintf(b, "Key: %s,\n", strconv.Quote(item.Key))
		fmt.Fprintf(b, "Title: %s,\n", strconv.Quote(item.Title))
		if item.Path != "" {
			fmt.Fprintf(b, "Path: %s,\n", strconv.Quote(item.Path))
		}
		if len(item.Items) > 0 {
			b.WriteString("Items: []router.NavItem{\n")
			writeGoNavs(b, item.Items)
			b.WriteString("},\n")
		}
		b.WriteString("},\n")
	}
}
