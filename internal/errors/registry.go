package errors

// Template defines a registered error type.
type Template struct {
	Category   Category
	Message    string
	Suggestion string
	DocURL     string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Runtime Errors (R001-R049)
	// ============================================

	"R001": {
		Category:   CategoryRuntime,
		Message:    "Value is read-only",
		Suggestion: "Write to one of the node's dependencies instead.",
		DocURL:     "https://vango.dev/docs/reactive/errors/R001",
	},
	"R004": {
		Category:   CategoryRuntime,
		Message:    "Unbalanced batch",
		Suggestion: "Pair every StartBatch with exactly one EndBatch, or use Batched.",
		DocURL:     "https://vango.dev/docs/reactive/errors/R004",
	},
	"R005": {
		Category:   CategoryRuntime,
		Message:    "Loop closed",
		Suggestion: "Post work before closing the loop or cancelling its context.",
		DocURL:     "https://vango.dev/docs/reactive/errors/R005",
	},

	// ============================================
	// Construction Errors (R050-R099)
	// ============================================

	"R050": {
		Category:   CategoryConstruction,
		Message:    "Initial value cannot be compared by the cell's equality predicate",
		Suggestion: "Use the cell kind that matches the value, or pass WithEqual.",
		DocURL:     "https://vango.dev/docs/reactive/errors/R050",
	},
	"R051": {
		Category:   CategoryConstruction,
		Message:    "Equality predicate has the wrong type",
		Suggestion: "WithEqual must receive a func(a, b T) bool for the cell's value type.",
		DocURL:     "https://vango.dev/docs/reactive/errors/R051",
	},

	// ============================================
	// Config Errors (R100-R149)
	// ============================================

	"R100": {
		Category:   CategoryConfig,
		Message:    "Invalid configuration file",
		Suggestion: "Check that the file is valid JSON or YAML.",
		DocURL:     "https://vango.dev/docs/reactive/errors/R100",
	},
	"R101": {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Suggestion: "Create reactive.json or reactive.yaml, or pass --config.",
		DocURL:     "https://vango.dev/docs/reactive/errors/R101",
	},
	"R102": {
		Category:   CategoryConfig,
		Message:    "Invalid configuration value",
		DocURL:     "https://vango.dev/docs/reactive/errors/R102",
	},

	// ============================================
	// CLI Errors (R150-R199)
	// ============================================

	"R150": {
		Category:   CategoryCLI,
		Message:    "Unknown scenario",
		Suggestion: "Run 'reactive scenarios' without --name to list them.",
		DocURL:     "https://vango.dev/docs/reactive/errors/R150",
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
func GetTemplate(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template Template) {
	registry[code] = template
}
