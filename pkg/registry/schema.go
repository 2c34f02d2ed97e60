// pkg/registry/schema.go
package registry

type PlatformRegistry struct {
	Version     string          `json:"version"`
	LastUpdated string          `json:"lastUpdated"`
	Platforms   []PlatformEntry `json:"platforms"`
}

type PlatformEntry struct {
	Key                 string          `json:"key"`
	Name                string          `json:"name"`
	Features            map[string]bool `json:"features"`
	MaxGroupSize        int             `json:"maxGroupSize"`
	SupportedOS         []string        `json:"supportedOS,omitempty"`
	PrivacyScore        int             `json:"privacyScore"`
	PopularityScore     int             `json:"popularityScore"`
	FreeToUse           bool            `json:"freeToUse"`
	BusinessFriendly    bool            `json:"businessFriendly"`
	RequiresPhoneNumber bool            `json:"requiresPhoneNumber"`
}

// documentSchema is the JSON Schema every registry file must satisfy.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version", "platforms"],
  "properties": {
    "version": {"type": "string", "minLength": 1},
    "lastUpdated": {"type": "string"},
    "platforms": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["key", "name", "features", "maxGroupSize", "privacyScore", "popularityScore"],
        "properties": {
          "key": {"type": "string", "pattern": "^[a-z0-9][a-z0-9_-]*$"},
          "name": {"type": "string", "minLength": 1},
          "features": {
            "type": "object",
            "additionalProperties": {"type": "boolean"}
          },
          "maxGroupSize": {"type": "integer", "minimum": 1},
          "supportedOS": {"type": "array", "items": {"type": "string"}},
          "privacyScore": {"type": "integer"},
          "popularityScore": {"type": "integer"},
          "freeToUse": {"type": "boolean"},
          "businessFriendly": {"type": "boolean"},
          "requiresPhoneNumber": {"type": "boolean"}
        }
      }
    }
  }
}`
