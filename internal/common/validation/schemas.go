// internal/common/validation/schemas.go
package validation

var profileSchema = map[string]interface{}{
	"type": []interface{}{"object", "null"},
}

var schemeSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"title"},
	"properties": map[string]interface{}{
		"id":           map[string]interface{}{"type": "string"},
		"title":        map[string]interface{}{"type": "string", "minLength": 1},
		"requirements": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
		"benefits":     map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
	},
}

var userIDSchema = map[string]interface{}{"type": "string", "maxLength": 128}

// Blank rawText is accepted here so the extractor can report NO_TEXT_EXTRACTED.
var ExtractProfileInput = MustCompile("extract-profile", map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"rawText"},
	"properties": map[string]interface{}{
		"rawText": map[string]interface{}{"type": "string"},
		"userId":  userIDSchema,
	},
})

// data carries the document bytes base64-encoded.
var ExtractDocumentInput = MustCompile("extract-document", map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"data"},
	"properties": map[string]interface{}{
		"data":     map[string]interface{}{"type": "string"},
		"mimeType": map[string]interface{}{"type": "string", "maxLength": 255},
		"userId":   userIDSchema,
	},
})

var DiscoverSchemesInput = MustCompile("discover-schemes", map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"profile":    profileSchema,
		"popular":    map[string]interface{}{"type": "boolean"},
		"maxResults": map[string]interface{}{"type": "integer"},
		"userId":     userIDSchema,
	},
})

var ResolveEligibilityInput = MustCompile("resolve-eligibility", map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"profile", "scheme"},
	"properties": map[string]interface{}{
		"profile": map[string]interface{}{"type": "object"},
		"scheme":  schemeSchema,
		"userId":  userIDSchema,
	},
})

var ResolveBatchInput = MustCompile("resolve-eligibility-batch", map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"profile", "schemes"},
	"properties": map[string]interface{}{
		"profile": map[string]interface{}{"type": "object"},
		"schemes": map[string]interface{}{
			"type":     "array",
			"maxItems": 50,
			"items":    schemeSchema,
		},
		"userId": userIDSchema,
	},
})
