package convpolicy

import (
	"fmt"
	"sort"

	"github.com/cyberFlowTech/zapry-convpolicy-go/persona"
)

// ──────────────────────────────────────────────
// Persona feedback statistics
// ──────────────────────────────────────────────

// PersonaStats counts feedback received while a persona was active.
type PersonaStats struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
}

// Samples is the total number of feedback events.
func (s PersonaStats) Samples() int { return s.Positive + s.Negative }

// Net is positive minus negative feedback.
func (s PersonaStats) Net() int { return s.Positive - s.Negative }

// preferredPersona returns the persona with the highest net feedback among
// those with at least minSamples events. Only a net-positive persona qualifies.
func preferredPersona(stats map[persona.ID]PersonaStats, minSamples int) (persona.ID, bool) {
	best, bestNet, found := persona.ID(""), 0, false
	for _, id := range persona.AllIDs {
		s, ok := stats[id]
		if !ok || s.Samples() < minSamples || s.Net() <= 0 {
			continue
		}
		if !found || s.Net() > bestNet {
			best, bestNet, found = id, s.Net(), true
		}
	}
	return best, found
}

// rankPersonas orders personas with feedback by net score, then by AllIDs order.
func rankPersonas(stats map[persona.ID]PersonaStats) []persona.ID {
	order := make(map[persona.ID]int, len(persona.AllIDs))
	var ids []persona.ID
	for i, id := range persona.AllIDs {
		order[id] = i
		if stats[id].Samples() > 0 {
			ids = append(ids, id)
		}
	}
	sort.SliceStable(ids, func(i, j int) bool {
		ni, nj := stats[ids[i]].Net(), stats[ids[j]].Net()
		if ni != nj {
			return ni > nj
		}
		return order[ids[i]] < order[ids[j]]
	})
	return ids
}

// ──────────────────────────────────────────────
// PersonaDecision
// ──────────────────────────────────────────────

// PersonaDecision is the chosen response persona for one turn.
type PersonaDecision struct {
	PersonaID      persona.ID      `json:"persona_id"`
	Persona        persona.Persona `json:"persona"`
	Confidence     float64         `json:"confidence"`
	RawConfidence  float64         `json:"raw_confidence"`
	Intensity      float64         `json:"intensity"`
	ShouldActivate bool            `json:"should_activate"`
	IsBlended      bool            `json:"is_blended"`
	BlendRatio     *float64        `json:"blend_ratio,omitempty"`
	SecondaryID    persona.ID      `json:"secondary_id,omitempty"`
	Reason         string          `json:"reason"`
}

// PersonaContext is what the selector needs to know about the user.
type PersonaContext struct {
	Stats            map[persona.ID]PersonaStats
	InteractionCount int
}

// ──────────────────────────────────────────────
// PersonaSelector
// ──────────────────────────────────────────────

var urgencyPattern = phrases("urgent", 1, "urgent", "asap", "jaldi", "quickly", "right now",
	"immediately", "fauran", "abhi batao", "deadline")

const (
	lowFamiliarityInteractions = 2
	complexTokenCount          = 20
)

// PersonaSelector maps classification output and user history to a persona.
// Safe for concurrent use once constructed.
type PersonaSelector struct {
	catalog  *persona.Catalog
	affinity PatternSet
	order    []string

	overrideThreshold   float64
	activationThreshold float64
	blendThreshold      float64
	minSamples          int
}

// NewPersonaSelector creates a selector over catalog (nil = built-in styles).
func NewPersonaSelector(catalog *persona.Catalog, cfg EngineConfig) *PersonaSelector {
	if catalog == nil {
		catalog = persona.DefaultCatalog()
	}
	cfg = cfg.Normalize()

	var affinity PatternSet
	order := make([]string, 0, len(persona.AllIDs))
	cues := catalog.Cues()
	for _, id := range persona.AllIDs {
		order = append(order, string(id))
		for _, c := range cues[id] {
			affinity = append(affinity, Pattern{Matcher: Phrase(c.Phrase), Weight: c.Weight, Label: string(id)})
		}
	}
	return &PersonaSelector{
		catalog:             catalog,
		affinity:            affinity,
		order:               order,
		overrideThreshold:   cfg.PersonaOverrideThreshold,
		activationThreshold: cfg.PersonaActivationThreshold,
		blendThreshold:      cfg.BlendThreshold,
		minSamples:          cfg.BlendMinSamples,
	}
}

// Catalog returns the style catalog the selector draws from.
func (s *PersonaSelector) Catalog() *persona.Catalog { return s.catalog }

// Select picks the persona for message.
func (s *PersonaSelector) Select(cls ClassificationResult, message string, pc PersonaContext) PersonaDecision {
	if cls.Fallback {
		return s.finish(persona.Default, 0.5, 1, "fallback default", PersonaContext{})
	}

	id, conf, reason := s.rule(cls, message, pc)

	if scores := s.affinity.Score(normalize(message)); len(scores) > 0 {
		label, score := pickBest(scores, s.order)
		if score > s.overrideThreshold {
			id = persona.ID(label)
			conf = max(conf, min(score/2, 1))
			reason = fmt.Sprintf("lexical affinity %.2f", score)
		}
	}

	return s.finish(id, conf, intensityMultiplier(cls.UserState), reason, pc)
}

// rule applies the base rule list, first match wins.
func (s *PersonaSelector) rule(cls ClassificationResult, message string, pc PersonaContext) (persona.ID, float64, string) {
	norm := normalize(message)
	switch {
	case cls.Intent == IntentFrustratedSeekingHelp || cls.UserState == StateFrustrated || cls.UserState == StateConfused:
		return persona.Friendly, 0.9, "user needs support"
	case cls.Intent == IntentBrainstorming:
		return persona.Socratic, 0.8, "collaborative brainstorming"
	case cls.Intent == IntentDirectTask:
		if urgencyPattern.Any(norm) {
			return persona.Concise, 0.85, "urgent direct task"
		}
		return persona.Concise, 0.7, "direct task"
	case cls.Intent == IntentExploratoryPlayful:
		return persona.Friendly, 0.7, "playful exploration"
	case cls.Intent == IntentLearningFocused:
		if isComplex(cls, norm) {
			return persona.Detailed, 0.75, "complex learning request"
		}
		return persona.Educator, 0.6, "learning request"
	case cls.Cultural.Formality == FormalityFormal:
		return persona.Formal, 0.65, "formal register"
	case pc.InteractionCount < lowFamiliarityInteractions && cls.Cultural.Formality != FormalityCasual:
		return persona.Formal, 0.65, "low familiarity"
	default:
		return persona.Default, 0.5, "default"
	}
}

// isComplex flags learning requests that merit a detailed treatment.
func isComplex(cls ClassificationResult, norm string) bool {
	return len(tokens(norm)) >= complexTokenCount ||
		questionDepth(norm, norm) >= 3 ||
		len(cls.Entities.Subjects) >= 2 ||
		cls.Flow.QuestionDepthEscalation
}

func intensityMultiplier(state UserState) float64 {
	switch state {
	case StateFrustrated, StateConfused:
		return 1.3
	case StateConfident, StateEngaged:
		return 0.8
	default:
		return 1
	}
}

func (s *PersonaSelector) finish(id persona.ID, raw, mult float64, reason string, pc PersonaContext) PersonaDecision {
	raw = clamp01(raw)
	final := clamp01(raw * mult)
	d := PersonaDecision{
		PersonaID:      id,
		Persona:        persona.Simple{ID: id},
		Confidence:     final,
		RawConfidence:  raw,
		Intensity:      mult,
		ShouldActivate: final >= s.activationThreshold,
		Reason:         reason,
	}

	if raw < s.blendThreshold {
		if preferred, ok := preferredPersona(pc.Stats, s.minSamples); ok && preferred != id {
			ratio := raw
			d.Persona = persona.Blended{PrimaryID: id, SecondaryID: preferred, Ratio: ratio}
			d.IsBlended = true
			d.BlendRatio = &ratio
			d.SecondaryID = preferred
			d.Reason = fmt.Sprintf("%s, blended with preferred %s", reason, preferred)
		}
	}
	return d
}

// Learn applies one feedback rating to the persona that was active.
// Ratings of 3 are neutral and leave the counters alone.
func (s *PersonaSelector) Learn(learner PersonaLearner, id persona.ID, rating int) bool {
	if learner == nil || !id.Valid() || rating == 3 {
		return false
	}
	learner.LearnPersona(id, rating > 3)
	return true
}

// PersonaLearner persists per-persona feedback counters.
type PersonaLearner interface {
	LearnPersona(id persona.ID, positive bool)
}
