package templates

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"text/template"

	"github.com/vango-dev/agreed/internal/errors"
)

// Config contains template configuration.
type Config struct {
	// ProjectName is the name of the project.
	ProjectName string

	// ViewsPath is the views directory, relative to the project root.
	ViewsPath string

	// ModelsPath is the models directory. Empty skips the model files.
	ModelsPath string
}

// Template represents a starter layout.
type Template struct {
	// Name is the template name.
	Name string

	// Description describes the template.
	Description string

	// Files maps relative paths to file contents. Paths are templates too.
	Files map[string]string
}

// Available templates.
var templates = map[string]*Template{
	"minimal": minimalTemplate(),
	"full":    fullTemplate(),
}

// Get returns a template by name.
func Get(name string) (*Template, error) {
	tmpl, ok := templates[name]
	if !ok {
		return nil, errors.New("E145").
			WithDetail("Template '" + name + "' not found").
			WithSuggestion("Available templates: full, minimal")
	}
	return tmpl, nil
}

// List returns all available template names, sorted.
func List() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create writes the template under dir. Existing files are left alone, and
// model files are skipped when cfg.ModelsPath is empty. It returns the
// relative paths written.
func (t *Template) Create(dir string, cfg Config) ([]string, error) {
	var written []string
	for _, rel := range t.paths() {
		relPath, err := execute(rel, rel, cfg)
		if err != nil {
			return written, err
		}
		if relPath == "" || filepath.IsAbs(relPath) {
			continue
		}
		content, err := execute(rel, t.Files[rel], cfg)
		if err != nil {
			return written, err
		}

		fullPath := filepath.Join(dir, filepath.FromSlash(relPath))
		if _, err := os.Stat(fullPath); err == nil {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			return written, err
		}
		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			return written, err
		}
		written = append(written, relPath)
	}
	return written, nil
}

func (t *Template) paths() []string {
	paths := make([]string, 0, len(t.Files))
	for p := range t.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func execute(name, text string, cfg Config) (string, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", errors.Newf(errors.CategoryCLI, "invalid template %s: %v", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, cfg); err != nil {
		return "", errors.Newf(errors.CategoryCLI, "template execute error %s: %v", name, err)
	}
	return buf.String(), nil
}

// minimalTemplate returns the minimal template: a single index view.
func minimalTemplate() *Template {
	return &Template{
		Name:        "minimal",
		Description: "A single index view",
		Files: map[string]string{
			"{{.ViewsPath}}/index.tsx": indexView,
		},
	}
}

// fullTemplate returns a starter with nested and dynamic views and a model.
func fullTemplate() *Template {
	return &Template{
		Name:        "full",
		Description: "Nested, dynamic and catch-all views plus a model",
		Files: map[string]string{
			"{{.ViewsPath}}/index.tsx":          indexView,
			"{{.ViewsPath}}/about.tsx":          aboutView,
			"{{.ViewsPath}}/users/index.tsx":    usersView,
			"{{.ViewsPath}}/users/[id].tsx":     userView,
			"{{.ViewsPath}}/docs/[...slug].tsx": docsView,

			// Rendered to "" and skipped when models are off.
			"{{if .ModelsPath}}{{.ModelsPath}}/user.ts{{end}}": userModel,
		},
	}
}

const indexView = `export const settings = { title: "{{.ProjectName}}" };

export default function Index({ children }) {
  return (
    <main>
      <h1>{{.ProjectName}}</h1>
      {children}
    </main>
  );
}
`

const aboutView = `export const settings = { title: "About" };

export default function About() {
  return <p>About {{.ProjectName}}</p>;
}
`

const usersView = `export const settings = { title: "Users" };

export default function Users({ children }) {
  return <section>{children}</section>;
}
`

const userView = `export default function User({ params }) {
  return <p>User {params.id}</p>;
}
`

const docsView = `export default function Docs({ params }) {
  return <article>{params.slug}</article>;
}
`

const userModel = `export default {
  namespace: "user",
  state: {},
  reducers: {},
};
`
