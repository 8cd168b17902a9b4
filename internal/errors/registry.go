package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid agreed config",
		Detail:   "The agreed configuration file is malformed.",
		DocURL:   "https://vango.dev/docs/agreed/errors/E120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Missing required configuration",
		Detail:   "A required configuration value is not set.",
		DocURL:   "https://vango.dev/docs/agreed/errors/E121",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range or has the wrong format.",
		DocURL:   "https://vango.dev/docs/agreed/errors/E122",
	},

	// ============================================
	// CLI Errors (E140-E159)
	// ============================================

	"E141": {
		Category: CategoryCLI,
		Message:  "Not an agreed project",
		Detail:   "No agreed.json, agreed.yaml or agreed.toml was found in this directory or any parent. Run `agreed init` first.",
		DocURL:   "https://vango.dev/docs/agreed/errors/E141",
	},
	"E145": {
		Category: CategoryCLI,
		Message:  "Unknown template",
		Detail:   "The requested starter template does not exist.",
		DocURL:   "https://vango.dev/docs/agreed/errors/E145",
	},
	"E146": {
		Category: CategoryCLI,
		Message:  "Config file already exists",
		Detail:   "Refusing to overwrite an existing configuration file.",
		DocURL:   "https://vango.dev/docs/agreed/errors/E146",
	},

	// ============================================
	// Generation Errors (E200-E219)
	// ============================================

	"E201": {
		Category: CategoryScan,
		Message:  "Source directory unreadable",
		Detail:   "The views or models directory does not exist or cannot be read. The build was aborted and no artifact was written.",
		DocURL:   "https://vango.dev/docs/agreed/errors/E201",
	},
	"E202": {
		Category: CategoryRoute,
		Message:  "Route conflict",
		Detail:   "Two units would both be mounted exactly at the same path. The previous artifact was kept.",
		DocURL:   "https://vango.dev/docs/agreed/errors/E202",
	},
	"E203": {
		Category: CategoryModel,
		Message:  "Duplicate model name",
		Detail:   "Two model units resolve to the same registry name. The previous artifact was kept.",
		DocURL:   "https://vango.dev/docs/agreed/errors/E203",
	},
	"E204": {
		Category: CategoryEmit,
		Message:  "Artifact write failed",
		Detail:   "The generated artifact could not be written. The previous artifact was kept.",
		DocURL:   "https://vango.dev/docs/agreed/errors/E204",
	},
	"E205": {
		Category: CategoryConfig,
		Message:  "Unsupported artifact type",
		Detail:   "filePath must end in .go, .ts, .tsx, .js or .jsx.",
		DocURL:   "https://vango.dev/docs/agreed/errors/E205",
	},
	"E206": {
		Category: CategoryPublish,
		Message:  "Artifact publish failed",
		Detail:   "The artifact was written locally but could not be uploaded.",
		DocURL:   "https://vango.dev/docs/agreed/errors/E206",
	},
	"E207": {
		Category: CategoryCLI,
		Message:  "Watch failed to start",
		Detail:   "The file watcher could not be started for the configured directories.",
		DocURL:   "https://vango.dev/docs/agreed/errors/E207",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
