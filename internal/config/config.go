package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vango-dev/agreed/internal/artifact"
	"github.com/vango-dev/agreed/internal/errors"
)

const (
	// ConfigFileName is the name written by `agreed init`.
	ConfigFileName = "agreed.json"

	// EnvPrefix prefixes environment overrides (AGREED_VIEWSPATH, AGREED_DEV_ADDR).
	EnvPrefix = "AGREED"

	// DefaultFilePath is the default artifact path.
	DefaultFilePath = "src/config.tsx"

	// DefaultViewsPath is the default views directory.
	DefaultViewsPath = "src/pages"

	// DefaultDevAddr is the default development server address.
	DefaultDevAddr = "localhost:3100"

	// DefaultDebounce is the default watch debounce window.
	DefaultDebounce = 200 * time.Millisecond
)

// ConfigFileNames lists the accepted config file names, in lookup order.
var ConfigFileNames = []string{"agreed.json", "agreed.yaml", "agreed.yml", "agreed.toml"}

// Config represents the agreed configuration.
type Config struct {
	// Base prefixes every derived route path (e.g. "/app").
	Base string `json:"base,omitempty" mapstructure:"base"`

	// FilePath is the generated artifact. Its extension selects the renderer.
	FilePath string `json:"filePath" mapstructure:"filePath"`

	// ViewsPath is the directory scanned for route units.
	ViewsPath string `json:"viewsPath" mapstructure:"viewsPath"`

	// ModelsPath is the directory scanned for model units. Empty disables
	// the model registry.
	ModelsPath string `json:"modelsPath,omitempty" mapstructure:"modelsPath"`

	// Enable turns the whole pipeline off when false.
	Enable bool `json:"enable" mapstructure:"enable"`

	// Ignore contains extra ignore globs, added to the defaults.
	Ignore []string `json:"ignore,omitempty" mapstructure:"ignore"`

	// Extensions lists unit file extensions. Empty uses the defaults.
	Extensions []string `json:"extensions,omitempty" mapstructure:"extensions"`

	// Package is the Go package of a .go artifact.
	Package string `json:"package,omitempty" mapstructure:"package"`

	// Runtime is the module script artifacts import createQueryRoute from.
	Runtime string `json:"runtime,omitempty" mapstructure:"runtime"`

	// Dev contains watch and development server configuration.
	Dev DevConfig `json:"dev,omitempty" mapstructure:"dev"`

	// Publish configures the optional S3 mirror of written artifacts.
	Publish PublishConfig `json:"publish,omitempty" mapstructure:"publish"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// DevConfig contains watch and development server settings.
type DevConfig struct {
	// Addr is the address the dev server listens on.
	Addr string `json:"addr,omitempty" mapstructure:"addr"`

	// Debounce is the quiet window before a rebuild (e.g. "200ms").
	Debounce string `json:"debounce,omitempty" mapstructure:"debounce"`

	// Poll forces the polling watcher instead of OS notifications.
	Poll bool `json:"poll,omitempty" mapstructure:"poll"`
}

// PublishConfig contains artifact upload settings.
type PublishConfig struct {
	Bucket string `json:"bucket,omitempty" mapstructure:"bucket"`
	Prefix string `json:"prefix,omitempty" mapstructure:"prefix"`
	Region string `json:"region,omitempty" mapstructure:"region"`

	// Endpoint overrides the S3 endpoint for S3-compatible stores (MinIO).
	Endpoint string `json:"endpoint,omitempty" mapstructure:"endpoint"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		FilePath:  DefaultFilePath,
		ViewsPath: DefaultViewsPath,
		Enable:    true,
		Runtime:   artifact.DefaultRuntime,
		Dev: DevConfig{
			Addr:     DefaultDevAddr,
			Debounce: DefaultDebounce.String(),
		},
	}
}

// newViper returns a viper instance carrying every default and the AGREED_
// environment overrides.
func newViper() *viper.Viper {
	def := New()
	v := viper.New()

	v.SetDefault("base", def.Base)
	v.SetDefault("filePath", def.FilePath)
	v.SetDefault("viewsPath", def.ViewsPath)
	v.SetDefault("modelsPath", def.ModelsPath)
	v.SetDefault("enable", def.Enable)
	v.SetDefault("ignore", []string{})
	v.SetDefault("extensions", []string{})
	v.SetDefault("package", def.Package)
	v.SetDefault("runtime", def.Runtime)
	v.SetDefault("dev.addr", def.Dev.Addr)
	v.SetDefault("dev.debounce", def.Dev.Debounce)
	v.SetDefault("dev.poll", def.Dev.Poll)
	v.SetDefault("publish.bucket", "")
	v.SetDefault("publish.prefix", "")
	v.SetDefault("publish.region", "")
	v.SetDefault("publish.endpoint", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from the specified directory.
// It looks for the first of ConfigFileNames present in the directory.
func Load(dir string) (*Config, error) {
	path, ok := find(dir)
	if !ok {
		return nil, errors.New("E141").
			WithDetail("No agreed config found in " + dir).
			WithSuggestion("Run 'agreed init' to create agreed.json")
	}
	return LoadFile(path)
}

// LoadFile reads configuration from the specified file path. The format is
// taken from the extension (.json, .yaml, .yml, .toml).
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").
				WithDetail("No agreed config at " + path).
				WithSuggestion("Run 'agreed init' or pass an existing file to --config")
		}
		return nil, errors.New("E120").Wrap(err)
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.New("E120").
			WithLocation(path, 0).
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			Wrap(err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.New("E120").
			WithLocation(path, 0).
			WithDetail(err.Error()).
			Wrap(err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	cfg.configPath = abs
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration as JSON to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E120").Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.FilePath == "" {
		c.FilePath = DefaultFilePath
	}
	if c.Runtime == "" {
		c.Runtime = artifact.DefaultRuntime
	}
	if c.Dev.Addr == "" {
		c.Dev.Addr = DefaultDevAddr
	}
	if c.Dev.Debounce == "" {
		c.Dev.Debounce = DefaultDebounce.String()
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ViewsPath) == "" {
		return errors.New("E121").
			WithDetail("viewsPath must name the directory of route units").
			WithSuggestion(`Set "viewsPath": "` + DefaultViewsPath + `"`)
	}
	if _, err := artifact.FormatFor(c.FilePath); err != nil {
		return errors.Classify(err)
	}
	if _, err := c.DebounceDuration(); err != nil {
		return err
	}
	return nil
}

// DebounceDuration parses Dev.Debounce. An empty value is the default; zero
// and negative windows are rejected.
func (c *Config) DebounceDuration() (time.Duration, error) {
	if c.Dev.Debounce == "" {
		return DefaultDebounce, nil
	}
	d, err := time.ParseDuration(c.Dev.Debounce)
	if err != nil || d <= 0 {
		return 0, errors.New("E122").
			WithDetail("dev.debounce must be a positive duration such as \"200ms\", got " + `"` + c.Dev.Debounce + `"`)
	}
	return d, nil
}

// resolve makes p absolute relative to the config directory.
func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir(), p)
}

// ViewsDir returns the absolute path to the views directory.
func (c *Config) ViewsDir() string {
	return c.resolve(c.ViewsPath)
}

// ModelsDir returns the absolute path to the models directory, or "" when
// the model registry is disabled.
func (c *Config) ModelsDir() string {
	return c.resolve(c.ModelsPath)
}

// ArtifactPath returns the absolute path to the generated artifact.
func (c *Config) ArtifactPath() string {
	return c.resolve(c.FilePath)
}

// HasModels returns true if the model registry is enabled.
func (c *Config) HasModels() bool {
	return c.ModelsPath != ""
}

// HasPublish returns true if artifacts are mirrored to S3.
func (c *Config) HasPublish() bool {
	return c.Publish.Bucket != ""
}

// DevURL returns the full URL for the dev server.
func (c *Config) DevURL() string {
	addr := c.Dev.Addr
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

// find returns the first config file present in dir.
func find(dir string) (string, bool) {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, ok := find(dir)
	return ok
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing an agreed config, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E141").
				WithDetail("No agreed config found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'agreed init' to create one")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
