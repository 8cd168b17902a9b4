package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/agreed/internal/errors"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func errorCode(err error) string {
	if e, ok := err.(*errors.Error); ok {
		return e.Code
	}
	return ""
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.FilePath != DefaultFilePath {
		t.Errorf("FilePath = %q, want %q", cfg.FilePath, DefaultFilePath)
	}
	if cfg.ViewsPath != DefaultViewsPath {
		t.Errorf("ViewsPath = %q, want %q", cfg.ViewsPath, DefaultViewsPath)
	}
	if cfg.ModelsPath != "" {
		t.Errorf("ModelsPath = %q, want empty", cfg.ModelsPath)
	}
	if !cfg.Enable {
		t.Error("Enable should default to true")
	}
	if cfg.Runtime != "kiva" {
		t.Errorf("Runtime = %q, want kiva", cfg.Runtime)
	}
	if cfg.Dev.Addr != DefaultDevAddr {
		t.Errorf("Dev.Addr = %q, want %q", cfg.Dev.Addr, DefaultDevAddr)
	}
	if d, err := cfg.DebounceDuration(); err != nil || d != DefaultDebounce {
		t.Errorf("DebounceDuration() = %v, %v, want %v", d, err, DefaultDebounce)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// Test loading non-existent config
	_, err := Load(tmpDir)
	if errorCode(err) != "E141" {
		t.Errorf("Load() error = %v, want E141", err)
	}

	writeConfig(t, tmpDir, ConfigFileName, `{
  "base": "/app",
  "filePath": "src/routes.ts",
  "viewsPath": "src/views",
  "modelsPath": "src/models",
  "ignore": ["*.stories.*"],
  "dev": {
    "addr": ":4000",
    "debounce": "50ms"
  },
  "publish": {
    "bucket": "routes",
    "prefix": "site/"
  }
}
`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Base != "/app" {
		t.Errorf("Base = %q, want /app", cfg.Base)
	}
	if cfg.FilePath != "src/routes.ts" {
		t.Errorf("FilePath = %q", cfg.FilePath)
	}
	if cfg.ViewsPath != "src/views" || cfg.ModelsPath != "src/models" {
		t.Errorf("ViewsPath/ModelsPath = %q/%q", cfg.ViewsPath, cfg.ModelsPath)
	}
	if len(cfg.Ignore) != 1 || cfg.Ignore[0] != "*.stories.*" {
		t.Errorf("Ignore = %v", cfg.Ignore)
	}
	if !cfg.Enable {
		t.Error("Enable should default to true when unset")
	}
	if cfg.Runtime != "kiva" {
		t.Errorf("Runtime = %q, want default", cfg.Runtime)
	}
	if d, _ := cfg.DebounceDuration(); d != 50*time.Millisecond {
		t.Errorf("DebounceDuration() = %v, want 50ms", d)
	}
	if !cfg.HasModels() || !cfg.HasPublish() {
		t.Error("HasModels and HasPublish should be true")
	}
	if cfg.Publish.Prefix != "site/" {
		t.Errorf("Publish.Prefix = %q", cfg.Publish.Prefix)
	}
	if cfg.DevURL() != "http://localhost:4000" {
		t.Errorf("DevURL() = %q", cfg.DevURL())
	}
}

func TestLoadYAMLAndTOML(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"agreed.yaml", "viewsPath: app/views\nenable: false\ndev:\n  poll: true\n"},
		{"agreed.yml", "viewsPath: app/views\nenable: false\ndev:\n  poll: true\n"},
		{"agreed.toml", "viewsPath = \"app/views\"\nenable = false\n\n[dev]\npoll = true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.name, tt.content)

			cfg, err := Load(dir)
			if err != nil {
				t.Fatalf("Load error: %v", err)
			}
			if cfg.ViewsPath != "app/views" {
				t.Errorf("ViewsPath = %q", cfg.ViewsPath)
			}
			if cfg.Enable {
				t.Error("Enable should be false")
			}
			if !cfg.Dev.Poll {
				t.Error("Dev.Poll should be true")
			}
			if cfg.FilePath != DefaultFilePath {
				t.Errorf("FilePath = %q, want default", cfg.FilePath)
			}
		})
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ConfigFileName, `{"viewsPath": "src/pages"}`)

	t.Setenv("AGREED_VIEWSPATH", "env/views")
	t.Setenv("AGREED_DEV_ADDR", "0.0.0.0:9000")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ViewsPath != "env/views" {
		t.Errorf("ViewsPath = %q, want env/views", cfg.ViewsPath)
	}
	if cfg.Dev.Addr != "0.0.0.0:9000" {
		t.Errorf("Dev.Addr = %q, want 0.0.0.0:9000", cfg.Dev.Addr)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := writeConfig(t, tmpDir, ConfigFileName, "not valid json")

	_, err := LoadFile(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid JSON")
	}
	if !strings.Contains(err.Error(), "E120") {
		t.Errorf("Expected E120 error, got: %v", err)
	}

	_, err = LoadFile(filepath.Join(tmpDir, "missing.json"))
	if errorCode(err) != "E141" {
		t.Errorf("LoadFile(missing) error = %v, want E141", err)
	}
}

func TestSave(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	cfg := New()
	cfg.ModelsPath = "src/models"
	cfg.Enable = false

	// Save should fail without configPath set
	if err := cfg.Save(); err == nil {
		t.Error("Expected error when saving without path")
	}

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("SaveTo error: %v", err)
	}
	if cfg.Path() != configPath {
		t.Errorf("Path() = %q, want %q", cfg.Path(), configPath)
	}

	loaded, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if loaded.ModelsPath != "src/models" {
		t.Errorf("ModelsPath = %q", loaded.ModelsPath)
	}
	if loaded.Enable {
		t.Error("Enable = true, want false after round trip")
	}
	if loaded.Dev.Debounce != "200ms" {
		t.Errorf("Dev.Debounce = %q, want 200ms", loaded.Dev.Debounce)
	}

	loaded.Base = "/x"
	if err := loaded.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	data, _ := os.ReadFile(configPath)
	if !strings.Contains(string(data), `"base": "/x"`) {
		t.Errorf("saved config missing base:\n%s", data)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		wantCode string
	}{
		{"defaults", func(*Config) {}, ""},
		{"go artifact", func(c *Config) { c.FilePath = "routes/routes_gen.go" }, ""},
		{"empty views", func(c *Config) { c.ViewsPath = " " }, "E121"},
		{"unsupported artifact", func(c *Config) { c.FilePath = "routes.json" }, "E205"},
		{"bad debounce", func(c *Config) { c.Dev.Debounce = "soon" }, "E122"},
		{"negative debounce", func(c *Config) { c.Dev.Debounce = "-1s" }, "E122"},
		{"zero debounce", func(c *Config) { c.Dev.Debounce = "0s" }, "E122"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if errorCode(err) != tt.wantCode {
				t.Errorf("Validate() error = %v, want %s", err, tt.wantCode)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, ConfigFileName, `{"modelsPath": "src/models"}`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatal(err)
	}

	root := cfg.Dir()
	if cfg.ViewsDir() != filepath.Join(root, "src", "pages") {
		t.Errorf("ViewsDir() = %q", cfg.ViewsDir())
	}
	if cfg.ModelsDir() != filepath.Join(root, "src", "models") {
		t.Errorf("ModelsDir() = %q", cfg.ModelsDir())
	}
	if cfg.ArtifactPath() != filepath.Join(root, "src", "config.tsx") {
		t.Errorf("ArtifactPath() = %q", cfg.ArtifactPath())
	}

	abs := filepath.Join(tmpDir, "elsewhere")
	cfg.ViewsPath = abs
	if cfg.ViewsDir() != abs {
		t.Errorf("ViewsDir() = %q, want absolute path unchanged", cfg.ViewsDir())
	}

	cfg.ModelsPath = ""
	if cfg.ModelsDir() != "" || cfg.HasModels() {
		t.Error("empty modelsPath should disable models")
	}
}

func TestExists(t *testing.T) {
	tmpDir := t.TempDir()

	if Exists(tmpDir) {
		t.Error("Exists should be false for empty directory")
	}

	writeConfig(t, tmpDir, "agreed.toml", "")
	if !Exists(tmpDir) {
		t.Error("Exists should be true after creating config")
	}
}

func TestFindProjectRoot(t *testing.T) {
	// Create nested directory structure
	tmpDir := t.TempDir()
	nestedDir := filepath.Join(tmpDir, "a", "b", "c")
	if err := os.MkdirAll(nestedDir, 0755); err != nil {
		t.Fatal(err)
	}

	// Should fail when no config exists
	if _, err := FindProjectRoot(nestedDir); errorCode(err) != "E141" {
		t.Errorf("FindProjectRoot error = %v, want E141", err)
	}

	writeConfig(t, tmpDir, "agreed.yaml", "viewsPath: src/pages\n")

	// Should find root from nested directory
	root, err := FindProjectRoot(nestedDir)
	if err != nil {
		t.Fatalf("FindProjectRoot error: %v", err)
	}
	if root != tmpDir {
		t.Errorf("FindProjectRoot = %q, want %q", root, tmpDir)
	}

	// Should find root from middle directory
	root, err = FindProjectRoot(filepath.Join(tmpDir, "a"))
	if err != nil {
		t.Fatalf("FindProjectRoot error: %v", err)
	}
	if root != tmpDir {
		t.Errorf("FindProjectRoot = %q, want %q", root, tmpDir)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.FilePath != DefaultFilePath {
		t.Errorf("FilePath = %q", cfg.FilePath)
	}
	if cfg.Dev.Addr != DefaultDevAddr || cfg.Dev.Debounce != "200ms" {
		t.Errorf("Dev = %+v", cfg.Dev)
	}
	if cfg.ViewsPath != "" {
		t.Error("applyDefaults should not fill viewsPath; Validate reports it")
	}
}
