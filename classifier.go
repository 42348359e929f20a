package convpolicy

import (
	"strings"
	"unicode/utf8"
)

// ──────────────────────────────────────────────
// Message Classifier: intent, state, sentiment, register
// ──────────────────────────────────────────────

const maxPatternConfidence = 0.95

// MessageClassifier is a pure function of (message, bounded history).
// It holds only read-only compiled patterns and is safe for concurrent use.
type MessageClassifier struct {
	extractor   *EntityExtractor
	intents     PatternSet
	intentOrder []string
	states      []stateRule
	sentiment   PatternSet
	windowSize  int
}

// NewMessageClassifier creates a classifier. A nil extractor gets the built-in one.
func NewMessageClassifier(extractor *EntityExtractor, windowSize int) *MessageClassifier {
	if extractor == nil {
		extractor = NewEntityExtractor()
	}
	if windowSize <= 0 {
		windowSize = DefaultEngineConfig().WindowSize
	}
	order := make([]string, len(AllIntents))
	for i, in := range AllIntents {
		order[i] = string(in)
	}
	return &MessageClassifier{
		extractor:   extractor,
		intents:     defaultIntentPatterns(),
		intentOrder: order,
		states:      defaultStateRules(),
		sentiment:   defaultSentimentPatterns(),
		windowSize:  windowSize,
	}
}

// Classify analyses one message against its trailing history.
// Empty or invalid input returns DefaultClassification.
func (c *MessageClassifier) Classify(message string, history []Message) ClassificationResult {
	if !utf8.ValidString(message) || strings.TrimSpace(message) == "" {
		return DefaultClassification()
	}
	norm := normalize(message)

	result := ClassificationResult{}
	result.Entities = c.extractor.Extract(message)
	markers := c.extractor.Markers(message)

	result.Intent, result.IntentConfidence, result.IntentScores = c.detectIntent(message, norm)
	result.Sentiment, result.SentimentConfidence = c.detectSentiment(norm)
	result.UserState, result.StateConfidence = c.detectState(norm, result.Sentiment, result.SentimentConfidence)
	result.Cultural = culturalContext(norm, markers)
	result.Flow = c.flowFeatures(message, result, Window(history, c.windowSize))
	return result
}

// Extractor exposes the classifier's entity extractor.
func (c *MessageClassifier) Extractor() *EntityExtractor { return c.extractor }

func (c *MessageClassifier) detectIntent(raw, norm string) (Intent, float64, map[Intent]float64) {
	labelScores := c.intents.Score(norm)
	scores := make(map[Intent]float64, len(labelScores))
	for label, s := range labelScores {
		scores[Intent(label)] = s
	}

	label, score := pickBest(labelScores, c.intentOrder)
	if label != "" {
		return Intent(label), intentConfidence(score), scores
	}

	switch {
	case hasQuestion(raw, norm):
		return IntentLearningFocused, 0.55, scores
	case len(tokens(norm)) <= 3:
		return IntentTestingSystem, 0.4, scores
	default:
		return IntentVagueUnclear, 0.35, scores
	}
}

// intentConfidence maps a summed pattern score onto [0.5, 0.95].
func intentConfidence(score float64) float64 {
	return clamp(0.5+0.4*score, 0, maxPatternConfidence)
}

func (c *MessageClassifier) detectSentiment(norm string) (Sentiment, float64) {
	scores := c.sentiment.Score(norm)
	pos, neg := scores[string(SentimentPositive)], scores[string(SentimentNegative)]
	margin := pos - neg
	switch {
	case margin > 0:
		return SentimentPositive, clamp(0.5+0.15*margin, 0, maxPatternConfidence)
	case margin < 0:
		return SentimentNegative, clamp(0.5-0.15*margin, 0, maxPatternConfidence)
	default:
		return SentimentNeutral, 0.5
	}
}

func (c *MessageClassifier) detectState(norm string, sentiment Sentiment, sentimentConf float64) (UserState, float64) {
	for _, rule := range c.states {
		if score := rule.Patterns.Total(norm); score > 0 {
			return rule.State, intentConfidence(score)
		}
	}
	switch sentiment {
	case SentimentPositive:
		return StateSatisfied, clamp01(sentimentConf)
	case SentimentNegative:
		return StateDisappointed, clamp01(sentimentConf)
	default:
		return StateNeutral, 0.5
	}
}

// culturalContext scores register: formal cues minus casual cues plus
// structural salutation/valediction bonuses, with a penalty for heavy mixing.
func culturalContext(norm string, m Markers) CulturalContext {
	score := m.FormalSum - m.CasualSum
	if salutationPattern.Match(norm) {
		score += 0.2
	}
	if valedictionPattern.Match(norm) {
		score += 0.2
	}
	if len(m.Vernacular) >= 2 {
		score -= 0.3
	}

	level := FormalityNeutral
	switch {
	case score > 0.3:
		level = FormalityFormal
	case score < -0.1:
		level = FormalityCasual
	}

	markers := make(map[string][]string, len(m.ByCategory)+2)
	for k, v := range m.ByCategory {
		markers[k] = v
	}
	if len(m.Formal) > 0 {
		markers["formal"] = m.Formal
	}
	if len(m.Vernacular) > 0 {
		markers["vernacular"] = m.Vernacular
	}

	return CulturalContext{
		IsMixedVernacular: len(m.Vernacular) >= 1,
		Formality:         level,
		FormalityScore:    score,
		Markers:           markers,
		VernacularCount:   len(m.Vernacular),
		FormalCount:       len(m.Formal),
		CasualCount:       len(m.Casual),
	}
}
