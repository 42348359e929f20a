package convpolicy

import (
	"fmt"
	"maps"
	"sort"

	"github.com/elliotchance/pie/v2"

	"github.com/cyberFlowTech/zapry-convpolicy-go/persona"
)

// ──────────────────────────────────────────────
// Types
// ──────────────────────────────────────────────

// FollowUpKind names a proactive follow-up the tutor can offer.
type FollowUpKind string

const (
	FollowUpRevisitTopic FollowUpKind = "revisit-topic"
	FollowUpEventCheckIn FollowUpKind = "event-check-in"
	FollowUpPractice     FollowUpKind = "practice"
)

const maxFollowUps = 3

// FollowUp is one proactive suggestion drawn from the user's history.
type FollowUp struct {
	Kind    FollowUpKind `json:"kind"`
	Subject string       `json:"subject"`
	Reason  string       `json:"reason"`
}

// RecommendationContext describes the turn asking for recommendations.
type RecommendationContext struct {
	// CurrentTopics are excluded from revisit suggestions.
	CurrentTopics []string
}

// Recommendations are personalized style suggestions for the next reply.
type Recommendations struct {
	Persona         persona.ID         `json:"persona,omitempty"`
	Formality       Formality          `json:"formality"`
	Length          ResponseLength     `json:"length"`
	MarkerDensity   float64            `json:"marker_density"`
	StyleConfidence map[string]float64 `json:"style_confidence,omitempty"`
	FollowUps       []FollowUp         `json:"follow_ups,omitempty"`
}

// ──────────────────────────────────────────────
// Recommendations
// ──────────────────────────────────────────────

// Recommendations returns suggested persona, register, length and marker
// density plus up to three proactive follow-ups.
func (s *PreferenceStore) Recommendations(rc RecommendationContext) Recommendations {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := &s.profile
	prefs := s.stylePreferencesLocked()
	rec := Recommendations{
		Formality:       Formality(prefs[StyleKeyFormality]),
		Length:          ResponseLength(prefs[StyleKeyLength]),
		MarkerDensity:   clamp01(p.VernacularEMA),
		StyleConfidence: maps.Clone(p.StyleConfidence),
	}
	switch prefs[StyleKeyVernacular] {
	case "less":
		rec.MarkerDensity = 0
	case "more":
		rec.MarkerDensity = max(rec.MarkerDensity, 0.3)
	}
	if id, ok := preferredPersona(p.PersonaStats, s.cfg.BlendMinSamples); ok {
		rec.Persona = id
	}
	rec.FollowUps = planFollowUps(p, rc)
	return rec
}

// planFollowUps picks at most one follow-up of each kind, most relevant first:
// the latest remembered event, practice on a topic the user struggled with,
// then the most discussed topic not already on the table.
func planFollowUps(p *UserProfile, rc RecommendationContext) []FollowUp {
	var out []FollowUp

	if n := len(p.Events); n > 0 {
		ev := p.Events[n-1]
		reason := "recently mentioned"
		if ev.When != "" {
			reason = fmt.Sprintf("mentioned for %s", ev.When)
		}
		out = append(out, FollowUp{Kind: FollowUpEventCheckIn, Subject: ev.Event, Reason: reason})
	}

	if topic, ok := struggledTopic(p.Interactions, rc.CurrentTopics); ok {
		out = append(out, FollowUp{Kind: FollowUpPractice, Subject: topic, Reason: "user was stuck on it"})
	}

	taken := pie.Map(out, func(f FollowUp) string { return f.Subject })
	for _, topic := range topTopics(p.Topics) {
		if pie.Contains(rc.CurrentTopics, topic) || pie.Contains(taken, topic) {
			continue
		}
		out = append(out, FollowUp{
			Kind:    FollowUpRevisitTopic,
			Subject: topic,
			Reason:  fmt.Sprintf("discussed %d times", p.Topics[topic]),
		})
		break
	}

	if len(out) > maxFollowUps {
		out = out[:maxFollowUps]
	}
	return out
}

// struggledTopic returns the most recent topic of a confused or frustrated turn.
func struggledTopic(interactions []InteractionRecord, exclude []string) (string, bool) {
	for i := len(interactions) - 1; i >= 0; i-- {
		r := interactions[i]
		if r.UserState != StateConfused && r.UserState != StateFrustrated {
			continue
		}
		for _, t := range r.Topics {
			if !pie.Contains(exclude, t) {
				return t, true
			}
		}
	}
	return "", false
}

// topTopics orders topics by count, then alphabetically.
func topTopics(topics map[string]int) []string {
	keys := pie.Keys(topics)
	sort.Slice(keys, func(i, j int) bool {
		if topics[keys[i]] != topics[keys[j]] {
			return topics[keys[i]] > topics[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
