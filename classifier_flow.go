package convpolicy

import "strings"

// ──────────────────────────────────────────────
// Window-level flow features
// ──────────────────────────────────────────────

// Trend is the direction of a windowed metric.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendStable     Trend = "stable"
	TrendDecreasing Trend = "decreasing"
)

// trendDelta is the minimum half-over-half change that counts as movement.
const trendDelta = 0.1

// learningPhase is where a single turn sits on the confusion→application arc.
type learningPhase int

const (
	phaseNone learningPhase = iota
	phaseConfusion
	phaseUnderstanding
	phaseApplication
)

var (
	confusionMarkers = phrases("confusion", 1, "confused", "confusing", "samajh nahi",
		"samjh nahi", "i don't understand", "i do not understand", "doesn't make sense",
		"makes no sense", "i'm lost", "kuch samajh nahi", "not clear", "kya matlab",
		"what do you mean", "still don't get", "don't get it")

	understandingMarkers = phrases("understanding", 1, "got it", "i get it", "makes sense",
		"i see", "understand now", "samajh aa gaya", "samajh aa gayi", "samajh gaya",
		"samajh gayi", "now i understand", "that helps", "clear now", "ah okay")

	applicationMarkers = phrases("application", 1, "i tried", "let me try", "i solved",
		"i applied", "here is my answer", "here's my answer", "my answer is", "i did it",
		"kar liya", "try karta", "try karti", "i practiced", "i wrote")

	disengagedMarkers = phrases("disengaged", 1, "ok", "okay", "k", "hmm", "fine",
		"whatever", "boring", "meh", "acha", "theek")
)

// Question depth: 1 surface fact, 2 mechanism, 3 reasoning/counterfactual.
var questionDepthPatterns = joinSets(
	phrases("1", 1, "what is", "what are", "who is", "when", "kya hai", "kaun"),
	phrases("2", 2, "how does", "how do", "how can", "how to", "kaise", "what happens when"),
	phrases("3", 3, "why does", "why do", "why is", "what if", "what would happen",
		"difference between", "prove", "kyun", "is it always", "what happens if"),
)

var engagedMarkers = joinSets(
	phrases("engaged", 0.15, "tell me more", "and then", "what about", "interesting",
		"aur batao", "go on", "next", "another one", "one more"),
	phrases("engaged", 0.1, "wow", "cool", "nice", "great", "awesome", "zabardast"),
)

// turnSignal is everything flow features need from one user turn.
type turnSignal struct {
	depth             int
	engagement        float64
	phase             learningPhase
	subjects          []string
	vernacularDensity float64
	confused          bool
}

func (c *MessageClassifier) signal(text string) turnSignal {
	norm := normalize(text)
	toks := tokens(norm)
	markers := c.extractor.Markers(text)

	s := turnSignal{
		depth:      questionDepth(text, norm),
		engagement: engagementScore(norm, len(toks), hasQuestion(text, norm)),
		phase:      phaseOf(norm),
		subjects:   c.extractor.Extract(text).Subjects,
		confused:   confusionMarkers.Any(norm),
	}
	if len(toks) > 0 {
		s.vernacularDensity = float64(len(markers.Vernacular)) / float64(len(toks))
	}
	return s
}

func hasQuestion(raw, norm string) bool {
	return strings.ContainsAny(raw, "?؟") || interrogativePattern.Any(norm)
}

func questionDepth(raw, norm string) int {
	if !hasQuestion(raw, norm) {
		return 0
	}
	best, ok := questionDepthPatterns.Strongest(norm)
	if !ok {
		return 1
	}
	return int(best.Weight)
}

// engagementScore estimates involvement from length, questions and expressive cues.
func engagementScore(norm string, tokenCount int, question bool) float64 {
	score := 0.4 + clamp(float64(tokenCount)/40, 0, 0.2)
	if question {
		score += 0.15
	}
	score += clamp(engagedMarkers.Total(norm), 0, 0.3)
	if tokenCount <= 2 && disengagedMarkers.Any(norm) {
		score -= 0.25
	}
	if strings.Contains(norm, "!") {
		score += 0.05
	}
	return clamp01(score)
}

func phaseOf(norm string) learningPhase {
	switch {
	case applicationMarkers.Any(norm):
		return phaseApplication
	case understandingMarkers.Any(norm):
		return phaseUnderstanding
	case confusionMarkers.Any(norm):
		return phaseConfusion
	default:
		return phaseNone
	}
}

// learningProgression scores phase transitions across consecutive phased turns.
func learningProgression(phases []learningPhase) float64 {
	score := 0.0
	prev := phaseNone
	for _, p := range phases {
		if p == phaseNone {
			continue
		}
		switch {
		case prev == phaseConfusion && p == phaseUnderstanding:
			score += 2
		case prev == phaseUnderstanding && p == phaseApplication:
			score += 1.5
		case prev != phaseNone && p < prev:
			score -= 0.5
		}
		prev = p
	}
	return score
}

// trendOf compares the mean of the later half against the earlier half.
func trendOf(values []float64) Trend {
	if len(values) < 2 {
		return TrendStable
	}
	first, second := halves(values)
	switch d := mean(second) - mean(first); {
	case d > trendDelta:
		return TrendIncreasing
	case d < -trendDelta:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// escalating reports whether the trailing question depths deepen.
func escalating(depths []int) bool {
	var qs []int
	for _, d := range depths {
		if d > 0 {
			qs = append(qs, d)
		}
	}
	if len(qs) < 2 {
		return false
	}
	if len(qs) > 3 {
		qs = qs[len(qs)-3:]
	}
	for i := 1; i < len(qs); i++ {
		if qs[i] < qs[i-1] {
			return false
		}
	}
	return qs[len(qs)-1] > qs[0]
}

// topicScatter is unique subjects over message count.
func topicScatter(subjects [][]string) float64 {
	if len(subjects) == 0 {
		return 0
	}
	var all []string
	for _, s := range subjects {
		all = append(all, s...)
	}
	return clamp01(float64(len(uniqueSorted(all))) / float64(len(subjects)))
}

func (c *MessageClassifier) flowFeatures(message string, result ClassificationResult, window []Message) FlowFeatures {
	turns := userTurns(window)
	signals := make([]turnSignal, 0, len(turns)+1)
	for _, m := range turns {
		signals = append(signals, c.signal(m.Text))
	}
	current := c.signal(message)
	current.subjects = result.Entities.Subjects
	signals = append(signals, current)
	return featuresOf(signals)
}

func featuresOf(signals []turnSignal) FlowFeatures {
	depths := make([]int, len(signals))
	engagement := make([]float64, len(signals))
	phases := make([]learningPhase, len(signals))
	subjects := make([][]string, len(signals))
	density := make([]float64, len(signals))
	for i, s := range signals {
		depths[i] = s.depth
		engagement[i] = s.engagement
		phases[i] = s.phase
		subjects[i] = s.subjects
		density[i] = s.vernacularDensity
	}

	drift := 0.0
	if len(density) >= 2 {
		first, second := halves(density)
		drift = mean(second) - mean(first)
	}

	return FlowFeatures{
		QuestionDepthEscalation: escalating(depths),
		TopicScatter:            topicScatter(subjects),
		EngagementTrend:         trendOf(engagement),
		LearningProgression:     learningProgression(phases),
		CulturalDrift:           drift,
	}
}

func halves(values []float64) ([]float64, []float64) {
	mid := len(values) / 2
	return values[:mid], values[mid:]
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
