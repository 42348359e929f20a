package persona

import (
	"fmt"
	"strings"
)

const (
	maxRules     = 8
	maxCueWeight = 2.0
)

// NormalizationWarning is a non-fatal issue found during normalization.
type NormalizationWarning struct {
	Field   string
	Message string
}

// Normalize validates a style override and fills gaps from the built-in template.
func Normalize(style *Style) (*Style, []NormalizationWarning, error) {
	var warnings []NormalizationWarning

	if style == nil {
		return nil, nil, fmt.Errorf("style is required")
	}
	if !style.ID.Valid() {
		return nil, nil, fmt.Errorf("unknown persona id %q", style.ID)
	}

	base := GetTemplate(style.ID)
	normalized := *style

	if strings.TrimSpace(normalized.Tone) == "" {
		normalized.Tone = base.Tone
	}
	if strings.TrimSpace(normalized.Structure) == "" {
		normalized.Structure = base.Structure
	}
	if normalized.Verbosity == "" {
		normalized.Verbosity = base.Verbosity
	} else if _, ok := verbosityRank[normalized.Verbosity]; !ok {
		warnings = append(warnings, NormalizationWarning{
			Field:   "verbosity",
			Message: fmt.Sprintf("unknown verbosity %q, using %s", normalized.Verbosity, base.Verbosity),
		})
		normalized.Verbosity = base.Verbosity
	}

	if len(normalized.Rules) == 0 {
		normalized.Rules = append([]string(nil), base.Rules...)
	}
	if len(normalized.Rules) > maxRules {
		warnings = append(warnings, NormalizationWarning{
			Field:   "rules",
			Message: fmt.Sprintf("rules capped at %d, got %d", maxRules, len(normalized.Rules)),
		})
		normalized.Rules = normalized.Rules[:maxRules]
	}

	if len(normalized.Cues) == 0 {
		normalized.Cues = append([]Cue(nil), base.Cues...)
	} else {
		cues := make([]Cue, 0, len(normalized.Cues))
		for _, c := range normalized.Cues {
			c.Phrase = strings.ToLower(strings.TrimSpace(c.Phrase))
			switch {
			case c.Phrase == "":
				warnings = append(warnings, NormalizationWarning{Field: "cues", Message: "empty cue dropped"})
				continue
			case c.Weight <= 0:
				warnings = append(warnings, NormalizationWarning{
					Field:   "cues",
					Message: fmt.Sprintf("cue %q has non-positive weight, dropped", c.Phrase),
				})
				continue
			case c.Weight > maxCueWeight:
				c.Weight = maxCueWeight
			}
			cues = append(cues, c)
		}
		normalized.Cues = cues
	}

	return &normalized, warnings, nil
}
