package convpolicy

import (
	"fmt"
	"sort"

	"github.com/cyberFlowTech/zapry-convpolicy-go/persona"
)

// ──────────────────────────────────────────────
// Conversation Flow Analyzer
// ──────────────────────────────────────────────

// FlowLabel is the overall shape of the conversation so far.
type FlowLabel string

const (
	FlowDeepLearning        FlowLabel = "deep_learning"
	FlowBuildingEngagement  FlowLabel = "building_engagement"
	FlowStructuredLearning  FlowLabel = "structured_learning"
	FlowExploratoryBrowsing FlowLabel = "exploratory_browsing"
	FlowInitial             FlowLabel = "initial"
)

// FlowRecommendationKind names an adjustment the flow analysis suggests.
type FlowRecommendationKind string

const (
	RecommendEngagementBoost    FlowRecommendationKind = "engagement-boost"
	RecommendPersonaStability   FlowRecommendationKind = "persona-stability"
	RecommendCulturalAdjustment FlowRecommendationKind = "cultural-adjustment"
	RecommendFocusGuidance      FlowRecommendationKind = "focus-guidance"
)

// FlowRecommendation is one prioritized adjustment; lower Priority comes first.
type FlowRecommendation struct {
	Kind     FlowRecommendationKind `json:"kind"`
	Priority int                    `json:"priority"`
	Message  string                 `json:"message"`
}

const (
	scatteredThreshold   = 0.7
	focusedThreshold     = 0.5
	stuckLookback        = 5
	stuckMinConfused     = 3
	switchesForStability = 3
	driftThreshold       = 0.15
	minTurnsForLabel     = 2
	minTurnsForDominance = 3
)

// FlowInput is the enriched view of the conversation for one analysis.
type FlowInput struct {
	// History includes the current user message as its last user entry.
	History        []Message
	Current        ClassificationResult
	RecentPersonas []persona.ID
}

// FlowAnalysis is the trend picture over the trailing window.
type FlowAnalysis struct {
	Label               FlowLabel            `json:"label"`
	Confidence          float64              `json:"confidence"`
	DeepQuestioning     bool                 `json:"deep_questioning"`
	TopicScatter        float64              `json:"topic_scatter"`
	Scattered           bool                 `json:"scattered"`
	EngagementTrend     Trend                `json:"engagement_trend"`
	LearningProgression float64              `json:"learning_progression"`
	CulturalDrift       float64              `json:"cultural_drift"`
	DominantFormality   Formality            `json:"dominant_formality"`
	AdaptationNeeded    bool                 `json:"adaptation_needed"`
	IsStuck             bool                 `json:"is_stuck"`
	UserTurns           int                  `json:"user_turns"`
	Recommendations     []FlowRecommendation `json:"recommendations,omitempty"`
}

// FlowAnalyzer computes window-level conversation metrics.
type FlowAnalyzer struct {
	classifier *MessageClassifier
	windowSize int
}

// NewFlowAnalyzer creates an analyzer sharing the classifier's lexicons.
func NewFlowAnalyzer(classifier *MessageClassifier, windowSize int) *FlowAnalyzer {
	if classifier == nil {
		classifier = NewMessageClassifier(nil, windowSize)
	}
	if windowSize <= 0 {
		windowSize = DefaultEngineConfig().WindowSize
	}
	return &FlowAnalyzer{classifier: classifier, windowSize: windowSize}
}

// Analyze inspects the trailing window of in.History.
func (a *FlowAnalyzer) Analyze(in FlowInput) FlowAnalysis {
	turns := userTurns(Window(in.History, a.windowSize))
	out := FlowAnalysis{
		Label:             FlowInitial,
		Confidence:        0.5,
		EngagementTrend:   TrendStable,
		DominantFormality: FormalityNeutral,
		UserTurns:         len(turns),
	}
	if len(turns) == 0 {
		return out
	}

	signals := make([]turnSignal, len(turns))
	registers := make([]Formality, len(turns))
	for i, m := range turns {
		signals[i] = a.classifier.signal(m.Text)
		registers[i] = culturalContext(normalize(m.Text), a.classifier.extractor.Markers(m.Text)).Formality
	}
	f := featuresOf(signals)

	out.DeepQuestioning = f.QuestionDepthEscalation
	out.TopicScatter = f.TopicScatter
	out.Scattered = f.TopicScatter > scatteredThreshold
	out.EngagementTrend = f.EngagementTrend
	out.LearningProgression = f.LearningProgression
	out.CulturalDrift = f.CulturalDrift
	out.DominantFormality = dominantFormality(registers)
	out.AdaptationNeeded = len(turns) >= minTurnsForDominance &&
		!in.Current.Fallback && in.Current.Cultural.Formality != out.DominantFormality
	out.IsStuck = isStuck(signals)

	out.Label, out.Confidence = flowLabel(out, signals)
	out.Recommendations = flowRecommendations(out, personaSwitches(in.RecentPersonas))
	return out
}

// isStuck reports repeated confusion over the last few user turns.
func isStuck(signals []turnSignal) bool {
	start := max(0, len(signals)-stuckLookback)
	confused := 0
	for _, s := range signals[start:] {
		if s.confused {
			confused++
		}
	}
	return confused >= stuckMinConfused
}

// dominantFormality is the strict-plurality register, neutral on ties.
func dominantFormality(registers []Formality) Formality {
	counts := map[Formality]int{}
	for _, r := range registers {
		counts[r]++
	}
	best, bestN, tie := FormalityNeutral, 0, false
	for _, f := range []Formality{FormalityCasual, FormalityNeutral, FormalityFormal} {
		switch n := counts[f]; {
		case n > bestN:
			best, bestN, tie = f, n, false
		case n == bestN && n > 0:
			tie = true
		}
	}
	if tie {
		return FormalityNeutral
	}
	return best
}

func flowLabel(a FlowAnalysis, signals []turnSignal) (FlowLabel, float64) {
	if a.UserTurns < minTurnsForLabel {
		return FlowInitial, 0.5
	}
	hasTopic := false
	for _, s := range signals {
		if len(s.subjects) > 0 {
			hasTopic = true
			break
		}
	}
	switch {
	case a.DeepQuestioning && a.LearningProgression >= 0:
		return FlowDeepLearning, 0.85
	case a.LearningProgression >= 2 && a.TopicScatter <= focusedThreshold:
		return FlowDeepLearning, 0.8
	case a.EngagementTrend == TrendIncreasing:
		return FlowBuildingEngagement, 0.7
	case hasTopic && a.TopicScatter <= focusedThreshold:
		return FlowStructuredLearning, 0.65
	case a.Scattered:
		return FlowExploratoryBrowsing, 0.6
	default:
		return FlowInitial, 0.4
	}
}

func flowRecommendations(a FlowAnalysis, switches int) []FlowRecommendation {
	var recs []FlowRecommendation
	switch {
	case a.IsStuck:
		recs = append(recs, FlowRecommendation{
			Kind: RecommendEngagementBoost, Priority: 1,
			Message: "learner is stuck; switch to a worked example or a different explanation",
		})
	case a.EngagementTrend == TrendDecreasing:
		recs = append(recs, FlowRecommendation{
			Kind: RecommendEngagementBoost, Priority: 1,
			Message: "engagement is dropping; add an interactive check or a relatable example",
		})
	}
	if switches >= switchesForStability {
		recs = append(recs, FlowRecommendation{
			Kind: RecommendPersonaStability, Priority: 2,
			Message: fmt.Sprintf("persona changed %d times recently; keep one voice", switches),
		})
	}
	if a.AdaptationNeeded || a.CulturalDrift > driftThreshold || a.CulturalDrift < -driftThreshold {
		recs = append(recs, FlowRecommendation{
			Kind: RecommendCulturalAdjustment, Priority: 3,
			Message: fmt.Sprintf("mirror the user's register (usually %s)", a.DominantFormality),
		})
	}
	if a.Scattered {
		recs = append(recs, FlowRecommendation{
			Kind: RecommendFocusGuidance, Priority: 4,
			Message: "topics are scattered; suggest settling on one subject",
		})
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Priority < recs[j].Priority })
	return recs
}

// personaSwitches counts changes between consecutive personas.
func personaSwitches(recent []persona.ID) int {
	n := 0
	for i := 1; i < len(recent); i++ {
		if recent[i] != recent[i-1] {
			n++
		}
	}
	return n
}
