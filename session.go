package convpolicy

import (
	"encoding/json"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/cyberFlowTech/zapry-convpolicy-go/persona"
)

// ──────────────────────────────────────────────
// Session State: per-conversation metrics, no globals
// ──────────────────────────────────────────────

const (
	followUpWindow        = 60 * time.Second
	maxEngagementSamples  = 20
	defaultEngagementMean = 0.5
)

// SessionMetrics is the ephemeral per-conversation summary.
type SessionMetrics struct {
	MessageCount       int     `json:"message_count"`
	EngagementAvg      float64 `json:"engagement_avg"`
	ConvictionTriggers int     `json:"conviction_triggers"`
	PersonaSwitches    int     `json:"persona_switches"`
}

// SessionState is one conversation's mutable state. It is owned by the
// caller and passed into every Engine call; the engine keeps no session
// state of its own. Not safe for concurrent use.
type SessionState struct {
	ID                string         `json:"id"`
	StartedAt         time.Time      `json:"started_at"`
	LastMessageAt     time.Time      `json:"last_message_at"`
	TurnIndex         int            `json:"turn_index"`
	Metrics           SessionMetrics `json:"metrics"`
	RecentPersonas    []persona.ID   `json:"recent_personas"`
	EngagementSamples []float64      `json:"engagement_samples"`
	LastInteractionID string         `json:"last_interaction_id,omitempty"`
	LastTurn          *TurnContext   `json:"last_turn,omitempty"`
}

// TurnContext is automatically derived metadata about the current turn.
type TurnContext struct {
	TurnIndex       int           `json:"turn_index"`
	IsFollowUp      bool          `json:"is_followup"`
	SessionDuration time.Duration `json:"session_duration"`
	MessageLength   string        `json:"message_length"` // short/medium/long
}

// NewSessionState starts a fresh conversation.
func NewSessionState() *SessionState {
	s := &SessionState{ID: uuid.NewString(), StartedAt: time.Now()}
	s.recomputeEngagement()
	return s
}

// Reset clears all metrics and starts a new session id.
func (s *SessionState) Reset() {
	*s = *NewSessionState()
}

// Export serializes the session.
func (s *SessionState) Export() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, oops.In("session").With("session_id", s.ID).Wrapf(err, "marshal session")
	}
	return data, nil
}

// ImportSessionState restores an exported session.
func ImportSessionState(data []byte) (*SessionState, error) {
	var s SessionState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, oops.In("session").Wrapf(err, "unmarshal session")
	}
	if s.ID == "" {
		return nil, oops.In("session").Errorf("session id is missing")
	}
	s.RecentPersonas = keepLast(s.RecentPersonas, DefaultEngineConfig().MaxRecentPersonas)
	s.EngagementSamples = keepLast(s.EngagementSamples, maxEngagementSamples)
	s.recomputeEngagement()
	return &s, nil
}

// Snapshot returns a copy of the metrics.
func (s *SessionState) Snapshot() SessionMetrics { return s.Metrics }

// observe advances the turn counter and derives turn metadata.
func (s *SessionState) observe(message string, now time.Time) TurnContext {
	if s.StartedAt.IsZero() {
		s.StartedAt = now
	}
	s.TurnIndex++
	s.Metrics.MessageCount++

	tc := TurnContext{
		TurnIndex:       s.TurnIndex,
		IsFollowUp:      !s.LastMessageAt.IsZero() && now.Sub(s.LastMessageAt) <= followUpWindow,
		SessionDuration: now.Sub(s.StartedAt),
		MessageLength:   classifyMsgLength(utf8.RuneCountInString(message)),
	}
	s.LastMessageAt = now
	s.LastTurn = &tc
	return tc
}

// notePersona records the persona used this turn and counts switches.
func (s *SessionState) notePersona(id persona.ID, maxRecent int) {
	if n := len(s.RecentPersonas); n > 0 && s.RecentPersonas[n-1] != id {
		s.Metrics.PersonaSwitches++
	}
	s.RecentPersonas = keepLast(append(s.RecentPersonas, id), maxRecent)
}

func (s *SessionState) noteConviction() { s.Metrics.ConvictionTriggers++ }

// addEngagement appends a sample and recomputes the rolling average.
func (s *SessionState) addEngagement(v float64) {
	s.EngagementSamples = keepLast(append(s.EngagementSamples, clamp01(v)), maxEngagementSamples)
	s.Metrics.EngagementAvg = mean(s.EngagementSamples)
}

// recomputeEngagement refreshes the average from the stored samples.
func (s *SessionState) recomputeEngagement() {
	if len(s.EngagementSamples) == 0 {
		s.Metrics.EngagementAvg = defaultEngagementMean
		return
	}
	s.Metrics.EngagementAvg = mean(s.EngagementSamples)
}

func classifyMsgLength(runeCount int) string {
	switch {
	case runeCount < 20:
		return "short"
	case runeCount <= 120:
		return "medium"
	default:
		return "long"
	}
}
