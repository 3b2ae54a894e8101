package manifest

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// schemaCache caches compiled JSON schemas by phase kind.
var schemaCache sync.Map // map[string]*jsonschema.Schema

var artifactListSchema = map[string]any{
	"type": "array",
	"items": map[string]any{
		"type":     "object",
		"required": []any{"id", "lesson_id", "type", "subject", "title", "path"},
		"properties": map[string]any{
			"id":        map[string]any{"type": "string", "minLength": 1},
			"lesson_id": map[string]any{"type": "string", "minLength": 1},
			"type":      map[string]any{"type": "string", "minLength": 1},
			"subject":   map[string]any{"type": "string"},
			"title":     map[string]any{"type": "string"},
			"path":      map[string]any{"type": "string", "minLength": 1},
		},
	},
}

var metadataSchema = map[string]any{
	"type":     "object",
	"required": []any{"total_count", "generated_at"},
	"properties": map[string]any{
		"total_count":  map[string]any{"type": "integer", "minimum": 0},
		"generated_at": map[string]any{"type": "string"},
		"phase":        map[string]any{"type": "integer"},
	},
}

// artifactManifestSchema accepts any artifact phase: a metadata block plus
// zero or more named artifact lists.
var artifactManifestSchema = map[string]any{
	"type":     "object",
	"required": []any{"metadata"},
	"properties": map[string]any{
		"metadata": metadataSchema,
	},
	"additionalProperties": artifactListSchema,
}

var questionManifestSchema = map[string]any{
	"type":     "object",
	"required": []any{"metadata", "questions"},
	"properties": map[string]any{
		"metadata": metadataSchema,
		"questions": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"id", "subject", "question_type", "difficulty", "points"},
				"properties": map[string]any{
					"id":             map[string]any{"type": "string", "minLength": 1},
					"subject":        map[string]any{"type": "string"},
					"topic":          map[string]any{"type": "string"},
					"question_type":  map[string]any{"type": "string", "minLength": 1},
					"difficulty":     map[string]any{"type": "string"},
					"points":         map[string]any{"type": "integer", "minimum": 1},
					"estimated_time": map[string]any{"type": "integer", "minimum": 0},
				},
			},
		},
	},
}

// validateAgainstSchema checks raw manifest bytes against the schema for the
// phase kind. The caller wraps failures in CorruptError.
func validateAgainstSchema(phase Phase, data []byte) error {
	kind := "artifacts"
	def := artifactManifestSchema
	if phase.questions {
		kind = "questions"
		def = questionManifestSchema
	}

	compiled, err := compiledSchema(kind, def)
	if err != nil {
		return fmt.Errorf("compile %s schema: %w", kind, err)
	}

	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return err
	}
	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// compiledSchema returns a cached compiled schema or compiles and caches it.
func compiledSchema(name string, def map[string]any) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The jsonschema library expects a parsed JSON value (any), not raw
	// bytes. Marshal then unmarshal to get a clean any representation.
	defBytes, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(schemaURL, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(name, compiled)
	return compiled, nil
}
