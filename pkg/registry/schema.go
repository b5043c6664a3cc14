// pkg/registry/schema.go
package registry

import "match-workers/internal/models"

// File is the on-disk domain registry edited by administrators.
type File struct {
	Version     string              `json:"version"`
	LastUpdated string              `json:"lastUpdated"`
	Domains     []models.TechDomain `json:"domains"`
}

// FileSchema is the JSON Schema every registry file must satisfy.
const FileSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version", "domains"],
  "properties": {
    "version": {"type": "string", "minLength": 1},
    "lastUpdated": {"type": "string"},
    "domains": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["key", "primary_skills", "weight", "active"],
        "additionalProperties": false,
        "properties": {
          "key": {"type": "string", "pattern": "^[a-z][a-z0-9_]*$"},
          "display_names": {"$ref": "#/definitions/stringList"},
          "primary_skills": {"type": "array", "minItems": 1, "items": {"type": "string", "minLength": 1}},
          "secondary_skills": {"$ref": "#/definitions/stringList"},
          "title_keywords": {"$ref": "#/definitions/stringList"},
          "transferable_to": {"$ref": "#/definitions/keyList"},
          "incompatible_with": {"$ref": "#/definitions/keyList"},
          "weight": {"type": "number", "minimum": 0, "maximum": 1},
          "active": {"type": "boolean"}
        }
      }
    }
  },
  "definitions": {
    "stringList": {"type": ["array", "null"], "items": {"type": "string", "minLength": 1}},
    "keyList": {"type": ["array", "null"], "items": {"type": "string", "pattern": "^[a-z][a-z0-9_]*$"}, "uniqueItems": true}
  }
}`
