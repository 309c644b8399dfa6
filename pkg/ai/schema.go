package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Schema is the subset of JSON Schema the structured-output contracts need.
type Schema struct {
	Type        string
	Description string
	Properties  map[string]*Schema
	Required    []string
	Items       *Schema
}

// ResponseSchema names a schema for providers that require a name (OpenAI).
type ResponseSchema struct {
	Name   string
	Schema *Schema
}

func String(description string) *Schema {
	return &Schema{Type: "string", Description: description}
}

func Boolean(description string) *Schema {
	return &Schema{Type: "boolean", Description: description}
}

func ArrayOf(items *Schema, description string) *Schema {
	return &Schema{Type: "array", Items: items, Description: description}
}

// Object builds an object schema where every property is required, which is
// what strict structured output expects.
func Object(props map[string]*Schema) *Schema {
	required := make([]string, 0, len(props))
	for name := range props {
		required = append(required, name)
	}
	slices.Sort(required)
	return &Schema{Type: "object", Properties: props, Required: required}
}

// Map renders the schema as a JSON Schema document.
func (s *Schema) Map() map[string]any {
	if s == nil {
		return nil
	}
	out := map[string]any{"type": s.Type}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if s.Type == "object" {
		props := make(map[string]any, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = p.Map()
		}
		out["properties"] = props
		out["required"] = s.Required
		out["additionalProperties"] = false
	}
	if s.Items != nil {
		out["items"] = s.Items.Map()
	}
	return out
}

// Instruction renders the schema as prompt text for providers without native
// schema enforcement.
func (r *ResponseSchema) Instruction() string {
	raw, _ := json.MarshalIndent(r.Schema.Map(), "", "  ")
	return fmt.Sprintf("Respond with only valid JSON (no prose, no code fences) matching this JSON schema:\n%s", raw)
}

// DecodeJSON extracts the JSON object from a completion and decodes it into out.
// Code fences and surrounding prose are tolerated.
func DecodeJSON(raw string, out any) error {
	text := StripCodeFences(raw)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return errors.New("completion does not contain a JSON object")
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), out); err != nil {
		return fmt.Errorf("failed to decode completion JSON: %w", err)
	}
	return nil
}

// StripCodeFences removes a surrounding ``` or ```json fence.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		parts := strings.SplitN(s, "\n", 2)
		if len(parts) == 2 {
			s = parts[1]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
	}
	return s
}
