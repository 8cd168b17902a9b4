// Package templates provides starter layouts for agreed init.
//
// # Available Templates
//
//   - minimal: a single index view
//   - full: nested, dynamic and catch-all views plus a model
//
// # Usage
//
//	tmpl, err := templates.Get("full")
//	if err != nil {
//	    return err
//	}
//	written, err := tmpl.Create(projectDir, templates.Config{
//	    ProjectName: "shop",
//	    ViewsPath:   "src/pages",
//	    ModelsPath:  "src/models",
//	})
//
// # Template Variables
//
// File paths and contents both support variable substitution:
//
//	{{.ProjectName}}     - Name of the project
//	{{.ViewsPath}}       - Views directory
//	{{.ModelsPath}}      - Models directory, empty when models are off
package templates
