package convpolicy

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// ──────────────────────────────────────────────
// Conviction Policy Evaluator
// ──────────────────────────────────────────────

// ConvictionIntensity is how hard a pushback should land.
type ConvictionIntensity string

const (
	IntensityGentle ConvictionIntensity = "gentle"
	IntensityMedium ConvictionIntensity = "medium"
	IntensityFirm   ConvictionIntensity = "firm"
)

// ConvictionSource records what fired the decision.
type ConvictionSource string

const (
	SourceNone    ConvictionSource = "none"
	SourcePattern ConvictionSource = "pattern"
	SourceHistory ConvictionSource = "history"
)

const (
	// historyLookback is how many prior user turns feed history triggers.
	historyLookback       = 5
	historyMinHits        = 2
	historyConfusionFloor = 0.7
	historyFailureFloor   = 0.65
)

// ResponsePlan is the five-slot rhetorical structure of a pushback.
type ResponsePlan struct {
	Acknowledge   string `json:"acknowledge"`
	Alternative   string `json:"alternative"`
	Reasoning     string `json:"reasoning"`
	Nudge         string `json:"nudge"`
	EmpowerChoice string `json:"empower_choice"`
}

// Steps returns the slots in delivery order.
func (p ResponsePlan) Steps() []string {
	return []string{p.Acknowledge, p.Alternative, p.Reasoning, p.Nudge, p.EmpowerChoice}
}

// ConvictionDecision says whether and how to push back on the user's approach.
type ConvictionDecision struct {
	ShouldTrigger       bool                `json:"should_trigger"`
	Scenario            Scenario            `json:"scenario"`
	Confidence          float64             `json:"confidence"`
	Intensity           ConvictionIntensity `json:"intensity"`
	Rationale           string              `json:"rationale"`
	AlternativeApproach string              `json:"alternative_approach,omitempty"`
	Plan                *ResponsePlan       `json:"plan,omitempty"`
	Source              ConvictionSource    `json:"source"`
	MatchedPhrase       string              `json:"matched_phrase,omitempty"`
}

// NoIntervention is the neutral record returned when nothing fires.
func NoIntervention() ConvictionDecision {
	return ConvictionDecision{
		Scenario:  ScenarioNone,
		Intensity: IntensityGentle,
		Rationale: "no intervention",
		Source:    SourceNone,
	}
}

// ConvictionEvaluator detects flawed learning strategies.
// Safe for concurrent use once constructed.
type ConvictionEvaluator struct {
	scenarios PatternSet
	threshold float64
}

// NewConvictionEvaluator creates an evaluator. threshold <= 0 uses the default.
func NewConvictionEvaluator(threshold float64) *ConvictionEvaluator {
	if threshold <= 0 {
		threshold = DefaultEngineConfig().ConvictionThreshold
	}
	return &ConvictionEvaluator{
		scenarios: defaultScenarioPatterns(),
		threshold: threshold,
	}
}

// Threshold returns the minimum pattern weight that triggers.
func (e *ConvictionEvaluator) Threshold() float64 { return e.threshold }

// Evaluate decides on pushback for message given its classification and
// the history preceding it. History triggers override the pattern scenario.
func (e *ConvictionEvaluator) Evaluate(message string, cls ClassificationResult, history []Message) ConvictionDecision {
	decision := NoIntervention()

	if !cls.Fallback {
		if best, ok := e.scenarios.Strongest(normalize(message)); ok && best.Weight >= e.threshold {
			decision.ShouldTrigger = true
			decision.Scenario = Scenario(best.Label)
			decision.Confidence = clamp01(best.Weight)
			decision.Source = SourcePattern
			decision.MatchedPhrase = best.Matcher.String()
		}
	}

	if floor, reason, ok := historyTrigger(history); ok {
		decision.ShouldTrigger = true
		decision.Scenario = ScenarioBetterAlternative
		decision.Confidence = clamp01(max(floor, decision.Confidence))
		decision.Source = SourceHistory
		decision.MatchedPhrase = reason
	}

	if !decision.ShouldTrigger {
		return decision
	}

	decision.Intensity = intensityFor(decision.Confidence, cls.UserState)
	decision.Rationale = scenarioRationale[decision.Scenario]
	if decision.Source == SourceHistory {
		decision.Rationale = fmt.Sprintf("%s (%s)", decision.Rationale, decision.MatchedPhrase)
	}
	plan := composePlan(message, decision.Scenario, decision.Intensity)
	decision.Plan = &plan
	decision.AlternativeApproach = plan.Alternative
	return decision
}

// historyTrigger inspects the last few user turns of history for repeated
// confusion or failure.
func historyTrigger(history []Message) (float64, string, bool) {
	var turns []Message
	for i := len(history) - 1; i >= 0 && len(turns) < historyLookback; i-- {
		if history[i].valid() && history[i].Role == RoleUser {
			turns = append(turns, history[i])
		}
	}

	confused, failed := 0, 0
	for _, m := range turns {
		norm := normalize(m.Text)
		if historyConfusionMarkers.Any(norm) {
			confused++
		}
		if historyFailureMarkers.Any(norm) {
			failed++
		}
	}
	switch {
	case confused >= historyMinHits:
		return historyConfusionFloor, fmt.Sprintf("repeated confusion in %d recent turns", confused), true
	case failed >= historyMinHits:
		return historyFailureFloor, fmt.Sprintf("repeated failure in %d recent turns", failed), true
	default:
		return 0, "", false
	}
}

// intensityFor maps confidence to intensity, then adjusts for the user's state.
func intensityFor(confidence float64, state UserState) ConvictionIntensity {
	intensity := IntensityGentle
	switch {
	case confidence >= 0.85:
		intensity = IntensityFirm
	case confidence >= 0.7:
		intensity = IntensityMedium
	}
	switch state {
	case StateFrustrated, StateAnxious:
		intensity = IntensityGentle
	case StateConfident:
		intensity = IntensityFirm
	}
	return intensity
}

// composePlan draws each slot deterministically from its bank.
func composePlan(message string, scenario Scenario, intensity ConvictionIntensity) ResponsePlan {
	seed := messageHash(message)
	pick := func(bank []string, slot uint32) string {
		if len(bank) == 0 {
			return ""
		}
		return bank[(seed+slot)%uint32(len(bank))]
	}
	return ResponsePlan{
		Acknowledge:   pick(acknowledgeBank[intensity], 0),
		Alternative:   pick(scenarioAlternatives[scenario], 1),
		Reasoning:     pick(scenarioReasoning[scenario], 2),
		Nudge:         pick(nudgeBank[intensity], 3),
		EmpowerChoice: pick(empowerBank[intensity], 4),
	}
}

func messageHash(message string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(message))))
	return h.Sum32()
}
