package artifact

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/vango-dev/agreed/pkg/router"
)

var scriptTemplate = template.Must(template.New("script").Parse(`// Code generated by agreed. DO NOT EDIT.
// Hand-written code belongs between the agreed:manual markers below.
import { lazy } from "react";
import { createQueryRoute } from {{.Runtime}};

// agreed:generated:begin
export const routes = [
{{.Routes}}];

export const models = {
{{.Models}}};

export const navs = [
{{.Navs}}];

export const qr = createQueryRoute(routes);
// agreed:generated:end
`))

type scriptRenderer struct {
	target string
	opts   Options
}

func renderScript(target string, c Content, opts Options) (string, error) {
	r := scriptRenderer{target: target, opts: opts}

	runtime := opts.Runtime
	if runtime == "" {
		runtime = DefaultRuntime
	}

	var routes, models, navs strings.Builder
	r.writeRoutes(&routes, c.Routes, "  ")
	r.writeModels(&models, c)
	r.writeNavs(&navs, c.Navs, "  ")

	return execute(scriptTemplate, struct {
		Runtime string
		Routes  string
		Models  string
		Navs    string
	}{
		Runtime: jsString(runtime),
		Routes:  routes.String(),
		Models:  models.String(),
		Navs:    navs.String(),
	})
}

func (r scriptRenderer) writeRoutes(b *strings.Builder, routes []router.RouteDescriptor, indent string) {
	inner := indent + "  "
	for _, d := range routes {
		b.WriteString(indent + "{\n")
		fmt.Fprintf(b, "%skey: %s,\n", inner, jsString(d.Key))
		fmt.Fprintf(b, "%spath: %s,\n", inner, jsString(d.Path))
		fmt.Fprintf(b, "%sexact: %t,\n", inner, d.Exact)
		if !d.Component.IsZero() {
			fmt.Fprintf(b, "%scomponent: lazy(() => import(%s)),\n", inner,
				jsString(importPath(r.target, r.opts.ViewsDir, d.Component.Source)))
		}
		if len(d.SubRoute) > 0 {
			b.WriteString(inner + "subRoute: [\n")
			r.writeRoutes(b, d.SubRoute, inner+"  ")
			b.WriteString(inner + "],\n")
		}
		b.WriteString(indent + "},\n")
	}
}

func (r scriptRenderer) writeModels(b *strings.Builder, c Content) {
	for _, d := range c.Models.Sorted() {
		fmt.Fprintf(b, "  %s: () => import(%s),\n",
			jsString(d.Name), jsString(importPath(r.target, r.opts.ModelsDir, d.Source.Source)))
	}
}

func (r scriptRenderer) writeNavs(b *strings.Builder, items []router.NavItem, indent string) {
	inner := indent + "  "
	for _, item := range items {
		b.WriteString(indent + "{\n")
		fmt.Fprintf(b, "%skey: %s,\n", inner, jsString(item.Key))
		fmt.Fprintf(b, "%stitle: %s,\n", inner, jsString(item.Title))
		if item.Path != "" {
			fmt.Fprintf(b, "%spath: %s,\n", inner, jsString(item.Path))
		}
		if len(item.Items) > 0 {
			b.WriteString(inner + "items: [\n")
			r.writeNavs(b, item.Items, inner+"  ")
			b.WriteString(inner + "],\n")
		}
		b.WriteString(indent + "},\n")
	}
}
