package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Configuration (S001-S009)
	"S001": {
		Category:   CategoryConfig,
		Message:    "Cannot read configuration file",
		Suggestion: "Check the --config path, or remove the flag to run with defaults.",
	},
	"S002": {
		Category:   CategoryConfig,
		Message:    "Invalid configuration",
		Suggestion: "Fix the value in site.json or the matching SAFETRADE_* variable.",
	},
	"S003": {
		Category:   CategoryConfig,
		Message:    "Cannot parse environment overrides",
		Suggestion: "SAFETRADE_* durations use Go syntax, e.g. 1500ms or 5s.",
	},

	// Catalogs (S010-S019)
	"S010": {
		Category:   CategoryCatalog,
		Message:    "Cannot load translation catalog",
		Suggestion: "Every locales/*.yaml file needs a locale and a messages map.",
	},
	"S011": {
		Category:   CategoryCatalog,
		Message:    "Default locale has no catalog",
		Suggestion: "Set site.defaultLocale to one of the embedded locales.",
	},

	// Submission backends (S020-S029)
	"S020": {
		Category:   CategorySubmission,
		Message:    "Unknown submission backend",
		Suggestion: "contact.backend must be one of: simulated, memory, s3.",
	},
	"S021": {
		Category:   CategorySubmission,
		Message:    "Cannot configure S3 inbox",
		Suggestion: "Set contact.s3.bucket and make AWS credentials available.",
	},
	"S022": {
		Category: CategorySubmission,
		Message:  "Submission rejected by backend",
	},

	// Transport (S030-S039)
	"S030": {
		Category:   CategoryTransport,
		Message:    "HTTP server failed",
		Suggestion: "Is another process already listening on the configured port?",
	},
	"S031": {
		Category: CategoryTransport,
		Message:  "Live connection failed",
	},
}

// Registered reports whether code has a registered template.
func Registered(code string) bool {
	_, ok := registry[code]
	return ok
}
