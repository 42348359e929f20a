package convpolicy

import (
	"strings"
	"time"
	"unicode/utf8"
)

// ──────────────────────────────────────────────
// Messages & history
// ──────────────────────────────────────────────

// Role identifies who authored a history entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one immutable history entry.
type Message struct {
	Text      string    `json:"text"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`
}

// valid reports whether the entry can take part in analysis.
// Malformed entries are skipped, never fatal.
func (m Message) valid() bool {
	if m.Role != RoleUser && m.Role != RoleAssistant {
		return false
	}
	if !utf8.ValidString(m.Text) {
		return false
	}
	return strings.TrimSpace(m.Text) != ""
}

// Window returns a copy of the last n valid entries of history.
// The input slice is never modified.
func Window(history []Message, n int) []Message {
	if n <= 0 || len(history) == 0 {
		return nil
	}
	out := make([]Message, 0, n)
	for i := len(history) - 1; i >= 0 && len(out) < n; i-- {
		if history[i].valid() {
			out = append(out, history[i])
		}
	}
	// reverse back into chronological order
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// userTurns filters the window down to user-authored entries.
func userTurns(window []Message) []Message {
	out := make([]Message, 0, len(window))
	for _, m := range window {
		if m.Role == RoleUser {
			out = append(out, m)
		}
	}
	return out
}

// ──────────────────────────────────────────────
// Closed enums
// ──────────────────────────────────────────────

// Intent is the closed set of message intents.
type Intent string

const (
	IntentGreeting                Intent = "greeting"
	IntentFrustratedSeekingHelp   Intent = "frustrated-seeking-help"
	IntentExploratoryPlayful      Intent = "exploratory-playful"
	IntentBrainstorming           Intent = "brainstorming-collaborative"
	IntentDirectTask              Intent = "direct-task-oriented"
	IntentEmotionalSharing        Intent = "emotional-sharing"
	IntentVagueUnclear            Intent = "vague-unclear"
	IntentChallengingSkeptical    Intent = "challenging-skeptical"
	IntentLearningFocused         Intent = "learning-focused"
	IntentTestingSystem           Intent = "testing-system"
	IntentEventSharing            Intent = "event-sharing"
	IntentPersonalUpdate          Intent = "personal-update"
	IntentAchievementAnnouncement Intent = "achievement-announcement"
	IntentChallengeDescription    Intent = "challenge-description"
	IntentMemoryReference         Intent = "memory-reference"
	IntentPreferenceExpression    Intent = "preference-expression"
)

// AllIntents lists every intent in tie-break order.
var AllIntents = []Intent{
	IntentFrustratedSeekingHelp,
	IntentAchievementAnnouncement,
	IntentLearningFocused,
	IntentDirectTask,
	IntentBrainstorming,
	IntentChallengingSkeptical,
	IntentEmotionalSharing,
	IntentEventSharing,
	IntentChallengeDescription,
	IntentMemoryReference,
	IntentPreferenceExpression,
	IntentPersonalUpdate,
	IntentExploratoryPlayful,
	IntentGreeting,
	IntentTestingSystem,
	IntentVagueUnclear,
}

// UserState is the closed set of emotional/engagement states.
type UserState string

const (
	StateFrustrated    UserState = "frustrated"
	StateConfused      UserState = "confused"
	StateCurious       UserState = "curious"
	StateEngaged       UserState = "engaged"
	StateDisinterested UserState = "disinterested"
	StateOverwhelmed   UserState = "overwhelmed"
	StateSatisfied     UserState = "satisfied"
	StateExcited       UserState = "excited"
	StateConfident     UserState = "confident"
	StateProud         UserState = "proud"
	StateDisappointed  UserState = "disappointed"
	StateNostalgic     UserState = "nostalgic"
	StateAnxious       UserState = "anxious"
	StateGrateful      UserState = "grateful"
	StateNeutral       UserState = "neutral"
)

// Sentiment is the coarse polarity of a message.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Formality is the coarse register of a message.
type Formality string

const (
	FormalityCasual  Formality = "casual"
	FormalityNeutral Formality = "neutral"
	FormalityFormal  Formality = "formal"
)

// ──────────────────────────────────────────────
// Classification output
// ──────────────────────────────────────────────

// CulturalContext describes register and vernacular mixing.
type CulturalContext struct {
	IsMixedVernacular bool                `json:"is_mixed_vernacular"`
	Formality         Formality           `json:"formality"`
	FormalityScore    float64             `json:"formality_score"`
	Markers           map[string][]string `json:"markers,omitempty"` // category -> matched markers
	VernacularCount   int                 `json:"vernacular_count"`
	FormalCount       int                 `json:"formal_count"`
	CasualCount       int                 `json:"casual_count"`
}

// FlowFeatures are window-level signals computed alongside classification.
type FlowFeatures struct {
	QuestionDepthEscalation bool    `json:"question_depth_escalation"`
	TopicScatter            float64 `json:"topic_scatter"`
	EngagementTrend         Trend   `json:"engagement_trend"`
	LearningProgression     float64 `json:"learning_progression"`
	CulturalDrift           float64 `json:"cultural_drift"`
}

// ClassificationResult is the classifier output for one message.
type ClassificationResult struct {
	Intent              Intent             `json:"intent"`
	IntentConfidence    float64            `json:"intent_confidence"`
	IntentScores        map[Intent]float64 `json:"intent_scores,omitempty"`
	UserState           UserState          `json:"user_state"`
	StateConfidence     float64            `json:"state_confidence"`
	Sentiment           Sentiment          `json:"sentiment"`
	SentimentConfidence float64            `json:"sentiment_confidence"`
	Cultural            CulturalContext    `json:"cultural"`
	Entities            Entities           `json:"entities"`
	Flow                FlowFeatures       `json:"flow"`
	Personalized        bool               `json:"personalized,omitempty"`
	// Fallback is set when the input was empty or invalid and the fixed
	// low-confidence default was returned.
	Fallback bool `json:"fallback,omitempty"`
}

// DefaultClassification is returned for empty or invalid input.
func DefaultClassification() ClassificationResult {
	return ClassificationResult{
		Intent:              IntentTestingSystem,
		IntentConfidence:    0.3,
		UserState:           StateCurious,
		StateConfidence:     0.3,
		Sentiment:           SentimentNeutral,
		SentimentConfidence: 0.5,
		Cultural:            CulturalContext{Formality: FormalityNeutral},
		Flow:                FlowFeatures{EngagementTrend: TrendStable},
		Fallback:            true,
	}
}
