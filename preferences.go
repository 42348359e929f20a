package convpolicy

import (
	"encoding/json"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/cyberFlowTech/zapry-convpolicy-go/persona"
)

// ──────────────────────────────────────────────
// Profile types
// ──────────────────────────────────────────────

// ResponseLength is the coarse preferred reply length.
type ResponseLength string

const (
	LengthShort  ResponseLength = "short"
	LengthMedium ResponseLength = "medium"
	LengthLong   ResponseLength = "long"
)

// Reply length bands in runes.
const (
	shortReplyRunes = 300
	longReplyRunes  = 900
)

// Feedback aspects a rating can flag.
const (
	AspectFormality  = StyleKeyFormality
	AspectLength     = StyleKeyLength
	AspectVernacular = StyleKeyVernacular
	AspectPersona    = "persona"
	AspectContent    = "content"
)

const (
	profileVersion         = 1
	formalityNudge         = 0.25
	lengthNudgeFactor      = 0.25
	styleConfidenceDrop    = 0.1
	styleConfidenceRaise   = 0.05
	defaultStyleConfidence = 0.5
	maxStoredMessageRunes  = 280
)

var (
	// ErrInteractionNotFound is returned when feedback names an unknown interaction.
	ErrInteractionNotFound = errors.New("interaction not found")
	// ErrInvalidProfile is returned when an imported profile fails validation.
	ErrInvalidProfile = errors.New("invalid profile")
)

// Feedback is a rating of one interaction, 1 (worst) to 5 (best).
type Feedback struct {
	InteractionID string `json:"interaction_id"`
	Rating        int    `json:"rating"`
	// Aspect optionally flags which stylistic choice the rating is about.
	Aspect  string `json:"aspect,omitempty"`
	Comment string `json:"comment,omitempty"`
}

// FeedbackEntry is a logged feedback event.
type FeedbackEntry struct {
	InteractionID string    `json:"interaction_id"`
	Rating        int       `json:"rating"`
	Aspect        string    `json:"aspect,omitempty"`
	Comment       string    `json:"comment,omitempty"`
	At            time.Time `json:"at"`
}

// InteractionRecord is one remembered turn.
type InteractionRecord struct {
	ID              string     `json:"id"`
	At              time.Time  `json:"at"`
	Message         string     `json:"message"`
	ResponseRunes   int        `json:"response_runes"`
	Intent          Intent     `json:"intent"`
	UserState       UserState  `json:"user_state"`
	Formality       Formality  `json:"formality"`
	Persona         persona.ID `json:"persona,omitempty"`
	Topics          []string   `json:"topics,omitempty"`
	VernacularRatio float64    `json:"vernacular_ratio"`
	Rated           bool       `json:"rated,omitempty"`
}

// EventEntry is a remembered upcoming or recent life event.
type EventEntry struct {
	Event string    `json:"event"`
	When  string    `json:"when,omitempty"`
	At    time.Time `json:"at"`
}

// UserProfile is the durable per-user preference record.
type UserProfile struct {
	Version int    `json:"version"`
	UserID  string `json:"user_id"`

	FormalityEMA       float64           `json:"formality_ema"`
	FormalityVotes     map[Formality]int `json:"formality_votes"`
	PreferredFormality Formality         `json:"preferred_formality"`

	LengthEMA       float64        `json:"length_ema"`
	LengthSamples   int            `json:"length_samples"`
	PreferredLength ResponseLength `json:"preferred_length"`

	VernacularEMA   float64            `json:"vernacular_ema"`
	StyleConfidence map[string]float64 `json:"style_confidence"`

	Topics   map[string]int `json:"topics"`
	Entities map[string]int `json:"entities"`
	Emotions map[string]int `json:"emotions"`
	// IntentCounts are the positively rated intents that seed personalization.
	IntentCounts map[Intent]int `json:"intent_counts"`

	FeedbackLog       []FeedbackEntry             `json:"feedback_log"`
	PersonaStats      map[persona.ID]PersonaStats `json:"persona_stats"`
	PreferredPersonas []persona.ID                `json:"preferred_personas"`
	Interactions      []InteractionRecord         `json:"interactions"`
	Events            []EventEntry                `json:"events"`
	Overrides         map[string]string           `json:"overrides"`

	Satisfaction     float64 `json:"satisfaction"`
	FeedbackCount    int     `json:"feedback_count"`
	InteractionCount int     `json:"interaction_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserProfile returns the default profile for userID.
func NewUserProfile(userID string, now time.Time) UserProfile {
	return UserProfile{
		Version:            profileVersion,
		UserID:             userID,
		FormalityVotes:     map[Formality]int{},
		PreferredFormality: FormalityNeutral,
		PreferredLength:    LengthMedium,
		StyleConfidence:    defaultStyleConfidences(),
		Topics:             map[string]int{},
		Entities:           map[string]int{},
		Emotions:           map[string]int{},
		IntentCounts:       map[Intent]int{},
		PersonaStats:       map[persona.ID]PersonaStats{},
		Overrides:          map[string]string{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func defaultStyleConfidences() map[string]float64 {
	return map[string]float64{
		AspectFormality:  defaultStyleConfidence,
		AspectLength:     defaultStyleConfidence,
		AspectVernacular: defaultStyleConfidence,
		AspectPersona:    defaultStyleConfidence,
	}
}

// clone deep-copies the profile.
func (p UserProfile) clone() UserProfile {
	c := p
	c.FormalityVotes = maps.Clone(p.FormalityVotes)
	c.StyleConfidence = maps.Clone(p.StyleConfidence)
	c.Topics = maps.Clone(p.Topics)
	c.Entities = maps.Clone(p.Entities)
	c.Emotions = maps.Clone(p.Emotions)
	c.IntentCounts = maps.Clone(p.IntentCounts)
	c.PersonaStats = maps.Clone(p.PersonaStats)
	c.Overrides = maps.Clone(p.Overrides)
	c.FeedbackLog = slices.Clone(p.FeedbackLog)
	c.PreferredPersonas = slices.Clone(p.PreferredPersonas)
	c.Events = slices.Clone(p.Events)
	c.Interactions = make([]InteractionRecord, len(p.Interactions))
	for i, r := range p.Interactions {
		r.Topics = slices.Clone(r.Topics)
		c.Interactions[i] = r
	}
	if p.Interactions == nil {
		c.Interactions = nil
	}
	return c
}

// ──────────────────────────────────────────────
// PreferenceStore
// ──────────────────────────────────────────────

// InteractionMeta is what the engine knows about a turn when recording it.
type InteractionMeta struct {
	Classification ClassificationResult
	Persona        persona.ID
}

// PreferenceStore owns one user's profile. Each call is atomic; ordering
// of same-user calls is the caller's responsibility.
type PreferenceStore struct {
	mu      sync.Mutex
	profile UserProfile
	cfg     EngineConfig
	now     func() time.Time
	logger  *slog.Logger
}

// NewPreferenceStore creates a store holding the default profile.
func NewPreferenceStore(userID string, cfg EngineConfig, logger *slog.Logger) *PreferenceStore {
	if logger == nil {
		logger = slog.Default()
	}
	s := &PreferenceStore{
		cfg:    cfg.Normalize(),
		now:    time.Now,
		logger: logger.With("component", "preferences", "user", userID),
	}
	s.profile = NewUserProfile(userID, s.now())
	return s
}

// UserID returns the owner of the profile.
func (s *PreferenceStore) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.UserID
}

// Profile returns a deep copy of the current profile.
func (s *PreferenceStore) Profile() UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.clone()
}

// PersonaContext returns what the persona selector needs.
func (s *PreferenceStore) PersonaContext() PersonaContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PersonaContext{
		Stats:            maps.Clone(s.profile.PersonaStats),
		InteractionCount: s.profile.InteractionCount,
	}
}

// StylePreferences returns the effective style key/value pairs, explicit
// overrides winning over learned values.
func (s *PreferenceStore) StylePreferences() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stylePreferencesLocked()
}

func (s *PreferenceStore) stylePreferencesLocked() map[string]string {
	prefs := map[string]string{
		StyleKeyFormality: string(s.profile.PreferredFormality),
		StyleKeyLength:    string(s.profile.PreferredLength),
	}
	for k, v := range s.profile.Overrides {
		prefs[k] = v
	}
	return prefs
}

// RecordInteraction appends a turn to the profile, updates the smoothed
// style preferences and counters and returns the new interaction id.
func (s *PreferenceStore) RecordInteraction(message, response string, meta InteractionMeta) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cls := meta.Classification
	p := &s.profile
	alpha := s.cfg.PreferenceAlpha

	rec := InteractionRecord{
		ID:        uuid.NewString(),
		At:        now,
		Message:   truncateRunes(strings.TrimSpace(message), maxStoredMessageRunes),
		Intent:    cls.Intent,
		UserState: cls.UserState,
		Formality: cls.Cultural.Formality,
		Persona:   meta.Persona,
		Topics:    slices.Clone(cls.Entities.Subjects),
	}
	if n := len(tokens(normalize(message))); n > 0 {
		rec.VernacularRatio = clamp01(float64(cls.Cultural.VernacularCount) / float64(n))
	}

	first := p.InteractionCount == 0
	p.InteractionCount++

	// formality: smoothed score plus one majority vote per turn
	score := clamp(cls.Cultural.FormalityScore, -1, 1)
	p.FormalityEMA = ema(p.FormalityEMA, score, alpha, first)
	p.FormalityVotes[formalityVote(cls.Cultural)]++
	p.PreferredFormality = preferredFormality(p.FormalityVotes, p.FormalityEMA)

	p.VernacularEMA = ema(p.VernacularEMA, rec.VernacularRatio, alpha, first)

	if response != "" {
		rec.ResponseRunes = utf8.RuneCountInString(response)
		s.observeLengthLocked(rec.ResponseRunes)
	}

	for _, t := range cls.Entities.Subjects {
		p.Topics[t]++
	}
	for _, e := range entityKeys(cls.Entities) {
		p.Entities[e]++
	}
	if cls.UserState != "" {
		p.Emotions[string(cls.UserState)]++
	}

	when := ""
	if len(cls.Entities.TimeExpressions) > 0 {
		when = cls.Entities.TimeExpressions[0]
	}
	for _, ev := range cls.Entities.Events {
		// one entry per event, refreshed and moved to the end when mentioned again
		entry := EventEntry{Event: ev, When: when, At: now}
		if i := slices.IndexFunc(p.Events, func(e EventEntry) bool { return e.Event == ev }); i >= 0 {
			if entry.When == "" {
				entry.When = p.Events[i].When
			}
			p.Events = slices.Delete(p.Events, i, i+1)
		}
		p.Events = append(p.Events, entry)
	}
	p.Events = keepLast(p.Events, s.cfg.MaxEvents)

	p.Interactions = keepLast(append(p.Interactions, rec), s.cfg.MaxInteractions)
	p.UpdatedAt = now
	return rec.ID
}

// RecordResponse attaches the assistant reply length to an interaction.
func (s *PreferenceStore) RecordResponse(interactionID, response string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.findLocked(interactionID)
	if rec == nil {
		return oops.In("preferences").With("interaction_id", interactionID).Wrap(ErrInteractionNotFound)
	}
	rec.ResponseRunes = utf8.RuneCountInString(response)
	s.observeLengthLocked(rec.ResponseRunes)
	s.profile.UpdatedAt = s.now()
	return nil
}

// Interaction returns a copy of a remembered interaction.
func (s *PreferenceStore) Interaction(interactionID string) (InteractionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.findLocked(interactionID)
	if rec == nil {
		return InteractionRecord{}, false
	}
	out := *rec
	out.Topics = slices.Clone(rec.Topics)
	return out, true
}

// RecordFeedback applies a rating to a remembered interaction. Each
// interaction takes one rating; a repeat rating and an out-of-range rating
// both return false, as does an unknown interaction.
func (s *PreferenceStore) RecordFeedback(interactionID string, fb Feedback) bool {
	if fb.Rating < 1 || fb.Rating > 5 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.findLocked(interactionID)
	if rec == nil {
		s.logger.Debug("feedback for unknown interaction", "interaction_id", interactionID)
		return false
	}
	if rec.Rated {
		s.logger.Debug("interaction already rated", "interaction_id", interactionID)
		return false
	}
	now := s.now()
	p := &s.profile

	p.FeedbackCount++
	p.Satisfaction += (float64(fb.Rating) - p.Satisfaction) / float64(p.FeedbackCount)
	p.FeedbackLog = keepLast(append(p.FeedbackLog, FeedbackEntry{
		InteractionID: interactionID,
		Rating:        fb.Rating,
		Aspect:        fb.Aspect,
		Comment:       truncateRunes(fb.Comment, maxStoredMessageRunes),
		At:            now,
	}), s.cfg.MaxFeedbackLog)
	rec.Rated = true

	switch {
	case fb.Rating < 3:
		s.penalizeLocked(fb.Aspect, rec)
	case fb.Rating > 3:
		for _, t := range rec.Topics {
			p.Topics[t]++
		}
		if fb.Aspect != "" {
			p.StyleConfidence[fb.Aspect] = clamp01(p.StyleConfidence[fb.Aspect] + styleConfidenceRaise)
		}
	}
	p.UpdatedAt = now
	return true
}

// ReinforceIntent counts one positively rated turn of intent and returns the
// updated counts.
func (s *PreferenceStore) ReinforceIntent(intent Intent) map[Intent]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if intent != "" {
		s.profile.IntentCounts[intent]++
		s.profile.UpdatedAt = s.now()
	}
	return maps.Clone(s.profile.IntentCounts)
}

// IntentCounts returns a copy of the reinforced intent counts.
func (s *PreferenceStore) IntentCounts() map[Intent]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.profile.IntentCounts)
}

// penalizeLocked lowers confidence in the flagged aspect and nudges it the
// other way.
func (s *PreferenceStore) penalizeLocked(aspect string, rec *InteractionRecord) {
	p := &s.profile
	if aspect == "" {
		return
	}
	p.StyleConfidence[aspect] = clamp01(p.StyleConfidence[aspect] - styleConfidenceDrop)

	switch aspect {
	case AspectFormality:
		var from, to Formality
		switch p.PreferredFormality {
		case FormalityCasual:
			from, to = FormalityCasual, FormalityFormal
			p.FormalityEMA = clamp(p.FormalityEMA+formalityNudge, -1, 1)
		case FormalityFormal:
			from, to = FormalityFormal, FormalityCasual
			p.FormalityEMA = clamp(p.FormalityEMA-formalityNudge, -1, 1)
		default:
			return
		}
		if p.FormalityVotes[from] > 0 {
			p.FormalityVotes[from]--
			p.FormalityVotes[to]++
		}
		p.PreferredFormality = preferredFormality(p.FormalityVotes, p.FormalityEMA)
	case AspectLength:
		if p.LengthSamples == 0 {
			return
		}
		// the critiqued reply was long for this user: go shorter, else longer
		if rec.ResponseRunes >= int(p.LengthEMA) {
			p.LengthEMA *= 1 - lengthNudgeFactor
		} else {
			p.LengthEMA *= 1 + lengthNudgeFactor
		}
		p.PreferredLength = lengthBand(p.LengthEMA)
	case AspectVernacular:
		p.VernacularEMA = clamp01(p.VernacularEMA * (1 - lengthNudgeFactor))
	}
}

// LearnPersona updates the feedback counters of one persona and re-ranks.
func (s *PreferenceStore) LearnPersona(id persona.ID, positive bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.profile.PersonaStats[id]
	if positive {
		st.Positive++
	} else {
		st.Negative++
	}
	s.profile.PersonaStats[id] = st
	s.profile.PreferredPersonas = rankPersonas(s.profile.PersonaStats)
	s.profile.UpdatedAt = s.now()
}

// ApplyStyleChanges records explicit style overrides.
func (s *PreferenceStore) ApplyStyleChanges(changes StyleChanges) {
	if len(changes) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range changes {
		s.profile.Overrides[k] = v
	}
	s.profile.UpdatedAt = s.now()
}

// Export serializes the profile.
func (s *PreferenceStore) Export() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.Marshal(s.profile)
	if err != nil {
		return nil, oops.In("preferences").With("user", s.profile.UserID).Wrapf(err, "marshal profile")
	}
	return data, nil
}

// Import replaces the profile with a serialized one. Invalid input resets
// the store to defaults and returns an error wrapping ErrInvalidProfile.
func (s *PreferenceStore) Import(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID := s.profile.UserID
	profile, err := decodeProfile(data)
	if err == nil && profile.UserID != userID {
		err = oops.In("preferences").With("expected", userID, "got", profile.UserID).
			Wrapf(ErrInvalidProfile, "profile belongs to another user")
	}
	if err != nil {
		s.profile = NewUserProfile(userID, s.now())
		s.logger.Warn("profile import rejected", "error", err)
		return err
	}
	s.profile = s.normalizeLocked(profile)
	return nil
}

// Reset restores the default profile.
func (s *PreferenceStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = NewUserProfile(s.profile.UserID, s.now())
}

// normalizeLocked re-applies bounds and fills nil maps of an imported profile.
func (s *PreferenceStore) normalizeLocked(p UserProfile) UserProfile {
	d := NewUserProfile(p.UserID, s.now())
	if p.FormalityVotes == nil {
		p.FormalityVotes = d.FormalityVotes
	}
	if p.StyleConfidence == nil {
		p.StyleConfidence = d.StyleConfidence
	}
	if p.Topics == nil {
		p.Topics = d.Topics
	}
	if p.Entities == nil {
		p.Entities = d.Entities
	}
	if p.Emotions == nil {
		p.Emotions = d.Emotions
	}
	if p.IntentCounts == nil {
		p.IntentCounts = d.IntentCounts
	}
	if p.PersonaStats == nil {
		p.PersonaStats = d.PersonaStats
	}
	if p.Overrides == nil {
		p.Overrides = d.Overrides
	}
	if p.PreferredFormality == "" {
		p.PreferredFormality = d.PreferredFormality
	}
	if p.PreferredLength == "" {
		p.PreferredLength = d.PreferredLength
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = d.CreatedAt
	}
	p.FeedbackLog = keepLast(p.FeedbackLog, s.cfg.MaxFeedbackLog)
	p.Interactions = keepLast(p.Interactions, s.cfg.MaxInteractions)
	p.Events = keepLast(p.Events, s.cfg.MaxEvents)
	p.PreferredPersonas = rankPersonas(p.PersonaStats)
	return p
}

func (s *PreferenceStore) findLocked(id string) *InteractionRecord {
	for i := len(s.profile.Interactions) - 1; i >= 0; i-- {
		if s.profile.Interactions[i].ID == id {
			return &s.profile.Interactions[i]
		}
	}
	return nil
}

func (s *PreferenceStore) observeLengthLocked(runes int) {
	p := &s.profile
	p.LengthEMA = ema(p.LengthEMA, float64(runes), s.cfg.PreferenceAlpha, p.LengthSamples == 0)
	p.LengthSamples++
	p.PreferredLength = lengthBand(p.LengthEMA)
}

// ──────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────

func ema(prev, sample, alpha float64, first bool) float64 {
	if first {
		return sample
	}
	return alpha*sample + (1-alpha)*prev
}

// formalityVote is the register one turn votes for: the side with more markers.
func formalityVote(c CulturalContext) Formality {
	switch {
	case c.CasualCount > c.FormalCount:
		return FormalityCasual
	case c.FormalCount > c.CasualCount:
		return FormalityFormal
	default:
		return FormalityNeutral
	}
}

// preferredFormality takes a strict majority of votes, falling back to the
// smoothed score.
func preferredFormality(votes map[Formality]int, score float64) Formality {
	total := 0
	for _, n := range votes {
		total += n
	}
	for _, f := range []Formality{FormalityCasual, FormalityFormal, FormalityNeutral} {
		if total > 0 && votes[f]*2 > total {
			return f
		}
	}
	switch {
	case score > 0.3:
		return FormalityFormal
	case score < -0.1:
		return FormalityCasual
	default:
		return FormalityNeutral
	}
}

func lengthBand(runes float64) ResponseLength {
	switch {
	case runes < shortReplyRunes:
		return LengthShort
	case runes > longReplyRunes:
		return LengthLong
	default:
		return LengthMedium
	}
}

// entityKeys flattens named entities into "category:value" counter keys.
func entityKeys(e Entities) []string {
	var out []string
	add := func(category string, values []string) {
		for _, v := range values {
			out = append(out, category+":"+v)
		}
	}
	add("name", e.Names)
	add("place", e.Places)
	add("institution", e.Institutions)
	add("event", e.Events)
	return out
}

func keepLast[T any](s []T, n int) []T {
	if n <= 0 || len(s) <= n {
		return s
	}
	return append([]T(nil), s[len(s)-n:]...)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
