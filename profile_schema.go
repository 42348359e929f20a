package convpolicy

import (
	"encoding/json"
	"fmt"

	"github.com/samber/oops"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// profileSchemaJSON constrains serialized UserProfile documents on import.
const profileSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["version", "user_id"],
  "properties": {
    "version": {"const": 1},
    "user_id": {"type": "string", "minLength": 1},
    "formality_ema": {"type": "number", "minimum": -1, "maximum": 1},
    "formality_votes": {"$ref": "#/$defs/counters"},
    "preferred_formality": {"enum": ["casual", "neutral", "formal"]},
    "length_ema": {"type": "number", "minimum": 0},
    "length_samples": {"type": "integer", "minimum": 0},
    "preferred_length": {"enum": ["short", "medium", "long"]},
    "vernacular_ema": {"type": "number", "minimum": 0, "maximum": 1},
    "style_confidence": {
      "type": ["object", "null"],
      "additionalProperties": {"type": "number", "minimum": 0, "maximum": 1}
    },
    "topics": {"$ref": "#/$defs/counters"},
    "entities": {"$ref": "#/$defs/counters"},
    "emotions": {"$ref": "#/$defs/counters"},
    "intent_counts": {"$ref": "#/$defs/counters"},
    "feedback_log": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["interaction_id", "rating"],
        "properties": {
          "interaction_id": {"type": "string"},
          "rating": {"type": "integer", "minimum": 1, "maximum": 5}
        }
      }
    },
    "persona_stats": {
      "type": ["object", "null"],
      "propertyNames": {"$ref": "#/$defs/persona"},
      "additionalProperties": {
        "type": "object",
        "properties": {
          "positive": {"type": "integer", "minimum": 0},
          "negative": {"type": "integer", "minimum": 0}
        }
      }
    },
    "preferred_personas": {"type": ["array", "null"], "items": {"$ref": "#/$defs/persona"}},
    "interactions": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["id"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "response_runes": {"type": "integer", "minimum": 0},
          "vernacular_ratio": {"type": "number", "minimum": 0, "maximum": 1}
        }
      }
    },
    "events": {
      "type": ["array", "null"],
      "items": {"type": "object", "required": ["event"], "properties": {"event": {"type": "string"}}}
    },
    "overrides": {"type": ["object", "null"], "additionalProperties": {"type": "string"}},
    "satisfaction": {"type": "number", "minimum": 0, "maximum": 5},
    "feedback_count": {"type": "integer", "minimum": 0},
    "interaction_count": {"type": "integer", "minimum": 0}
  },
  "$defs": {
    "counters": {
      "type": ["object", "null"],
      "additionalProperties": {"type": "integer", "minimum": 0}
    },
    "persona": {"enum": ["educator", "socratic", "detailed", "concise", "friendly", "formal"]}
  }
}`

var profileSchema = jsonschema.MustCompileString("profile.schema.json", profileSchemaJSON)

// decodeProfile validates data against the profile schema and decodes it.
func decodeProfile(data []byte) (UserProfile, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return UserProfile{}, oops.In("preferences").Wrap(fmt.Errorf("%w: %w", ErrInvalidProfile, err))
	}
	if err := profileSchema.Validate(doc); err != nil {
		return UserProfile{}, oops.In("preferences").Wrap(fmt.Errorf("%w: %w", ErrInvalidProfile, err))
	}
	var p UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return UserProfile{}, oops.In("preferences").Wrap(fmt.Errorf("%w: %w", ErrInvalidProfile, err))
	}
	return p, nil
}
