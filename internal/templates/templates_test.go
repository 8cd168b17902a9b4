package templates

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"minimal", false},
		{"full", false},
		{"api", true},
		{"nonexistent", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := Get(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error")
				} else if !strings.Contains(err.Error(), "E145") {
					t.Errorf("error = %v, want E145", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tmpl.Name != tt.name {
				t.Errorf("Name = %q, want %q", tmpl.Name, tt.name)
			}
		})
	}
}

func TestList(t *testing.T) {
	names := List()
	if strings.Join(names, ",") != "full,minimal" {
		t.Errorf("List() = %v, want [full minimal]", names)
	}
}

func TestTemplate_Create_Minimal(t *testing.T) {
	dir := t.TempDir()
	tmpl, _ := Get("minimal")

	written, err := tmpl.Create(dir, Config{ProjectName: "shop", ViewsPath: "src/pages"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if len(written) != 1 || written[0] != "src/pages/index.tsx" {
		t.Errorf("written = %v, want [src/pages/index.tsx]", written)
	}

	content, err := os.ReadFile(filepath.Join(dir, "src", "pages", "index.tsx"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), `title: "shop"`) {
		t.Errorf("index.tsx should carry the project name:\n%s", content)
	}
}

func TestTemplate_Create_Full(t *testing.T) {
	tests := []struct {
		name       string
		modelsPath string
		wantModel  bool
	}{
		{"with models", "src/models", true},
		{"without models", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tmpl, _ := Get("full")

			written, err := tmpl.Create(dir, Config{
				ProjectName: "shop",
				ViewsPath:   "app/views",
				ModelsPath:  tt.modelsPath,
			})
			if err != nil {
				t.Fatalf("Create error: %v", err)
			}

			for _, f := range []string{"index.tsx", "about.tsx", "users/index.tsx", "users/[id].tsx", "docs/[...slug].tsx"} {
				if _, err := os.Stat(filepath.Join(dir, "app", "views", filepath.FromSlash(f))); err != nil {
					t.Errorf("missing view %s", f)
				}
			}

			_, err = os.Stat(filepath.Join(dir, "src", "models", "user.ts"))
			if gotModel := err == nil; gotModel != tt.wantModel {
				t.Errorf("model written = %v, want %v", gotModel, tt.wantModel)
			}

			want := 5
			if tt.wantModel {
				want = 6
			}
			if len(written) != want {
				t.Errorf("written = %v, want %d files", written, want)
			}
		})
	}
}

func TestTemplate_Create_KeepsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	index := filepath.Join(dir, "src", "pages", "index.tsx")
	if err := os.MkdirAll(filepath.Dir(index), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(index, []byte("mine"), 0644); err != nil {
		t.Fatal(err)
	}

	tmpl, _ := Get("minimal")
	written, err := tmpl.Create(dir, Config{ProjectName: "shop", ViewsPath: "src/pages"})
	if err != nil {
		t.Fatal(err)
	}
	if len(written) != 0 {
		t.Errorf("written = %v, want none", written)
	}

	content, _ := os.ReadFile(index)
	if string(content) != "mine" {
		t.Errorf("existing file overwritten: %q", content)
	}
}
