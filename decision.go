package convpolicy

import (
	"fmt"
	"strings"
	"time"

	"github.com/cyberFlowTech/zapry-convpolicy-go/persona"
)

// ──────────────────────────────────────────────
// ConversationDecision: structured output of Engine.ProcessTurn
// ──────────────────────────────────────────────

// ConversationDecision collects everything the engine decided for one turn.
// The generative backend reads it either as prompt text (FormatForPrompt)
// or as namespaced metadata (ToKV).
type ConversationDecision struct {
	InteractionID   string               `json:"interaction_id"`
	UserID          string               `json:"user_id"`
	Classification  ClassificationResult `json:"classification"`
	Conviction      ConvictionDecision   `json:"conviction"`
	Persona         PersonaDecision      `json:"persona"`
	Style           persona.Style        `json:"style"`
	Flow            FlowAnalysis         `json:"flow"`
	Recommendations Recommendations      `json:"recommendations"`
	StyleChanges    StyleChanges         `json:"style_changes,omitempty"`
	StyleHints      []string             `json:"style_hints,omitempty"`
	Turn            TurnContext          `json:"turn"`
	Metrics         SessionMetrics       `json:"metrics"`
	ProfileLoaded   bool                 `json:"profile_loaded"`
	At              time.Time            `json:"at"`

	// Warnings records each notable decision for debugging; never sent to the model.
	// Examples: "conviction:skipping-fundamentals", "persona.blended:socratic"
	Warnings []string `json:"warnings,omitempty"`
}

// AddWarning records a debug message.
func (d *ConversationDecision) AddWarning(msg string) {
	d.Warnings = append(d.Warnings, msg)
}

// FormatForPrompt renders the response policy as a prompt segment.
// It describes how to answer; it never contains the answer itself.
func (d *ConversationDecision) FormatForPrompt() string {
	var lines []string

	lines = append(lines, "[Response policy]")
	lines = append(lines, fmt.Sprintf("User intent: %s (%.2f), state: %s",
		d.Classification.Intent, d.Classification.IntentConfidence, d.Classification.UserState))

	if d.Persona.ShouldActivate || d.Persona.IsBlended {
		lines = append(lines, fmt.Sprintf("Voice: %s; tone %s; structure: %s; verbosity %s",
			d.Persona.Persona, d.Style.Tone, d.Style.Structure, d.Style.Verbosity))
		for _, r := range d.Style.Rules {
			lines = append(lines, "- "+r)
		}
	}

	switch d.Classification.Cultural.Formality {
	case FormalityCasual:
		lines = append(lines, "Register: casual, mirror the user's mix of English and Urdu/Hindi")
	case FormalityFormal:
		lines = append(lines, "Register: formal")
	}
	lines = append(lines, d.StyleHints...)

	if d.Conviction.ShouldTrigger && d.Conviction.Plan != nil {
		lines = append(lines, "")
		lines = append(lines, fmt.Sprintf("[Gentle pushback: %s, %s]", d.Conviction.Scenario, d.Conviction.Intensity))
		for i, step := range d.Conviction.Plan.Steps() {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, step))
		}
	}

	if len(d.Flow.Recommendations) > 0 {
		lines = append(lines, "")
		lines = append(lines, "[Conversation flow: "+string(d.Flow.Label)+"]")
		for _, r := range d.Flow.Recommendations {
			lines = append(lines, "- "+r.Message)
		}
	}

	if len(d.Recommendations.FollowUps) > 0 {
		lines = append(lines, "")
		lines = append(lines, "[Possible follow-ups]")
		for _, f := range d.Recommendations.FollowUps {
			lines = append(lines, fmt.Sprintf("- %s: %s (%s)", f.Kind, f.Subject, f.Reason))
		}
	}

	return strings.Join(lines, "\n")
}

// ToKV returns structured key-value pairs with policy.* namespace.
func (d *ConversationDecision) ToKV() map[string]interface{} {
	kv := map[string]interface{}{
		"policy.interaction_id":     d.InteractionID,
		"policy.intent":             string(d.Classification.Intent),
		"policy.intent_confidence":  d.Classification.IntentConfidence,
		"policy.user_state":         string(d.Classification.UserState),
		"policy.sentiment":          string(d.Classification.Sentiment),
		"policy.formality":          string(d.Classification.Cultural.Formality),
		"policy.mixed_vernacular":   d.Classification.Cultural.IsMixedVernacular,
		"policy.personalized":       d.Classification.Personalized,
		"policy.persona":            string(d.Persona.PersonaID),
		"policy.persona_confidence": d.Persona.Confidence,
		"policy.persona_active":     d.Persona.ShouldActivate,
		"policy.persona_blended":    d.Persona.IsBlended,
		"policy.conviction":         d.Conviction.ShouldTrigger,
		"policy.flow":               string(d.Flow.Label),
		"policy.stuck":              d.Flow.IsStuck,
		"policy.turn_index":         d.Turn.TurnIndex,
		"policy.is_followup":        d.Turn.IsFollowUp,
		"policy.message_length":     d.Turn.MessageLength,
		"policy.engagement_avg":     d.Metrics.EngagementAvg,
		"policy.profile_loaded":     d.ProfileLoaded,
		"policy.recommended_length": string(d.Recommendations.Length),
		"policy.marker_density":     d.Recommendations.MarkerDensity,
	}
	if d.Persona.IsBlended {
		kv["policy.persona_secondary"] = string(d.Persona.SecondaryID)
	}
	if d.Conviction.ShouldTrigger {
		kv["policy.conviction_scenario"] = string(d.Conviction.Scenario)
		kv["policy.conviction_intensity"] = string(d.Conviction.Intensity)
	}
	return kv
}
