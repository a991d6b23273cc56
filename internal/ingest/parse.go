// Package ingest turns application documents into validated
// models.Application values.
package ingest

import (
	_ "embed"
	"encoding/json"
	"strings"

	apperrors "candidate-screening/internal/common/errors"
	"candidate-screening/internal/common/validation"
	"candidate-screening/internal/models"
)

//go:embed schema/application.schema.json
var applicationSchemaJSON []byte

var applicationSchema = validation.MustCompile(applicationSchemaJSON)

// Parse decodes and validates an application JSON document.
func Parse(document []byte) (*models.Application, error) {
	var raw interface{}
	if err := json.Unmarshal(document, &raw); err != nil {
		return nil, apperrors.NewDocumentParseError(err)
	}
	return FromValue(raw)
}

// FromValue validates an already-decoded document, e.g. a job variable.
func FromValue(raw interface{}) (*models.Application, error) {
	result, err := applicationSchema.Validate(raw)
	if err != nil {
		return nil, apperrors.NewDocumentParseError(err)
	}
	if !result.Valid {
		return nil, apperrors.NewSchemaValidationError(result.Messages())
	}

	encoded, err := json.Marshal(dropNullContacts(raw))
	if err != nil {
		return nil, apperrors.NewDocumentParseError(err)
	}
	var app models.Application
	if err := json.Unmarshal(encoded, &app); err != nil {
		return nil, apperrors.NewDocumentParseError(err)
	}

	app.Name = strings.TrimSpace(app.Name)
	app.Skills = normalizeSkills(app.Skills)
	return &app, nil
}

// Validate reports schema violations without building an Application.
func Validate(document []byte) (*validation.ValidationResult, error) {
	var raw interface{}
	if err := json.Unmarshal(document, &raw); err != nil {
		return nil, apperrors.NewDocumentParseError(err)
	}
	return applicationSchema.Validate(raw)
}

// dropNullContacts returns raw with null contact entries removed. raw itself
// is left untouched.
func dropNullContacts(raw interface{}) interface{} {
	doc, ok := raw.(map[string]interface{})
	if !ok {
		return raw
	}
	contact, ok := doc["contact"].(map[string]interface{})
	if !ok {
		return raw
	}

	cleaned := make(map[string]interface{}, len(contact))
	for k, v := range contact {
		if v != nil {
			cleaned[k] = v
		}
	}
	out := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	out["contact"] = cleaned
	return out
}

// normalizeSkills trims entries and drops blanks and case-insensitive
// duplicates, keeping the first spelling.
func normalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
