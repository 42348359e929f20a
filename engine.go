package convpolicy

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/cyberFlowTech/zapry-convpolicy-go/persona"
)

// ──────────────────────────────────────────────
// Engine: unified entry point for one conversation turn
// ──────────────────────────────────────────────

// AnonymousUser is the profile key used when the caller has no user id.
const AnonymousUser = "anonymous"

// EngineOptions wires the engine's collaborators.
type EngineOptions struct {
	Config EngineConfig

	// Adapter persists user profiles (nil = memory only).
	Adapter ProfileAdapter
	// Catalog supplies persona styles (nil = built-in styles).
	Catalog *persona.Catalog
	// FeedbackPatterns overrides the inline style-feedback phrases (nil = defaults).
	FeedbackPatterns map[string]map[string][]string

	Logger *slog.Logger
	// Now is the clock (nil = time.Now).
	Now func() time.Time
}

// DefaultEngineOptions returns the recommended baseline: default thresholds,
// built-in personas, no persistence.
func DefaultEngineOptions() EngineOptions {
	return EngineOptions{Config: DefaultEngineConfig()}
}

// Engine orchestrates classification, conviction, persona selection,
// preference learning and flow analysis. It owns the per-user stores and the
// adaptive intent store; session state is passed in by the caller.
type Engine struct {
	cfg        EngineConfig
	classifier *MessageClassifier
	adaptive   *AdaptiveLearningStore
	conviction *ConvictionEvaluator
	selector   *PersonaSelector
	feedback   *FeedbackDetector
	flow       *FlowAnalyzer
	registry   *PreferenceRegistry
	logger     *slog.Logger
	now        func() time.Time
}

// NewEngine creates the pipeline.
func NewEngine(opts EngineOptions) *Engine {
	cfg := opts.Config.Normalize()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	classifier := NewMessageClassifier(nil, cfg.WindowSize)
	return &Engine{
		cfg:        cfg,
		classifier: classifier,
		adaptive:   NewAdaptiveLearningStore(),
		conviction: NewConvictionEvaluator(cfg.ConvictionThreshold),
		selector:   NewPersonaSelector(opts.Catalog, cfg),
		feedback:   NewFeedbackDetector(opts.FeedbackPatterns, cfg.FeedbackMaxLength, nil),
		flow:       NewFlowAnalyzer(classifier, cfg.WindowSize),
		registry:   NewPreferenceRegistry(cfg, opts.Adapter, logger),
		logger:     logger.With("component", "engine"),
		now:        now,
	}
}

// Config returns the normalized configuration.
func (e *Engine) Config() EngineConfig { return e.cfg }

// Classifier exposes the stateless classifier.
func (e *Engine) Classifier() *MessageClassifier { return e.classifier }

// Store returns the preference store of userID, loading it on first use.
func (e *Engine) Store(ctx context.Context, userID string) (*PreferenceStore, bool) {
	return e.registry.Get(ctx, userKey(userID))
}

// ProcessTurn analyses one user message and returns the response policy.
// history is the prior conversation, without message; it is not modified.
// A nil session is treated as a fresh one that the caller does not keep.
func (e *Engine) ProcessTurn(ctx context.Context, session *SessionState, message string, history []Message, userID string) *ConversationDecision {
	if session == nil {
		session = NewSessionState()
	}
	userID = userKey(userID)
	now := e.now()
	store, loaded := e.registry.Get(ctx, userID)

	d := &ConversationDecision{UserID: userID, ProfileLoaded: loaded, At: now}
	d.Turn = session.observe(message, now)

	// 1. Classification and personalization
	e.adaptive.Seed(userID, store.IntentCounts())
	cls := e.classifier.Classify(message, history)
	cls = e.adaptive.Personalize(userID, cls)
	d.Classification = cls
	if cls.Fallback {
		d.AddWarning("classification.fallback")
	}
	if cls.Personalized {
		d.AddWarning("classification.personalized:" + string(cls.Intent))
	}

	// 2. Inline style feedback ("too long", "bohat lamba hai")
	prefs := store.StylePreferences()
	if fr := e.feedback.DetectAndAdapt(userID, message, prefs); fr.Matched {
		store.ApplyStyleChanges(fr.Changes)
		d.StyleChanges = fr.Changes
		for _, k := range e.feedback.keys() {
			if v, ok := fr.Changes[k]; ok {
				d.AddWarning("style." + k + ":" + v)
			}
		}
	}

	// 3. Conviction
	d.Conviction = e.conviction.Evaluate(message, cls, history)
	if d.Conviction.ShouldTrigger {
		session.noteConviction()
		d.AddWarning(fmt.Sprintf("conviction:%s:%s", d.Conviction.Scenario, d.Conviction.Source))
	}

	// 4. Persona
	d.Persona = e.selector.Select(cls, message, store.PersonaContext())
	d.Style = e.selector.Catalog().Resolve(d.Persona.Persona)
	if d.Persona.IsBlended {
		d.AddWarning("persona.blended:" + string(d.Persona.SecondaryID))
	}
	if !d.Persona.ShouldActivate {
		d.AddWarning(fmt.Sprintf("persona.inactive:%.2f", d.Persona.Confidence))
	}
	session.notePersona(d.Persona.PersonaID, e.cfg.MaxRecentPersonas)

	// 5. Memory
	d.InteractionID = store.RecordInteraction(message, "", InteractionMeta{
		Classification: cls,
		Persona:        d.Persona.PersonaID,
	})
	session.LastInteractionID = d.InteractionID

	// 6. Flow over the enriched history
	enriched := append(slices.Clone(history), Message{Text: message, Role: RoleUser, Timestamp: now})
	d.Flow = e.flow.Analyze(FlowInput{
		History:        enriched,
		Current:        cls,
		RecentPersonas: session.RecentPersonas,
	})
	if d.Flow.IsStuck {
		d.AddWarning("flow.stuck")
	}

	// 7. Recommendations and metrics
	d.Recommendations = store.Recommendations(RecommendationContext{CurrentTopics: cls.Entities.Subjects})
	d.StyleHints = BuildStyleHints(store.StylePreferences(), nil)
	session.addEngagement(e.turnEngagement(message, cls))
	d.Metrics = session.Snapshot()

	e.logger.Debug("turn processed",
		"user", userID,
		"session", session.ID,
		"interaction_id", d.InteractionID,
		"intent", cls.Intent,
		"state", cls.UserState,
		"persona", d.Persona.PersonaID,
		"conviction", d.Conviction.ShouldTrigger,
		"flow", d.Flow.Label,
	)
	return d
}

// ProcessFeedback applies a rating to a past interaction. It updates the
// profile, the persona counters and the adaptive intent store, then folds the
// rating into the session engagement average. Returns false when the
// interaction is unknown or already rated, and for an out-of-range rating.
func (e *Engine) ProcessFeedback(ctx context.Context, session *SessionState, userID string, fb Feedback) bool {
	userID = userKey(userID)
	store, _ := e.registry.Get(ctx, userID)

	rec, ok := store.Interaction(fb.InteractionID)
	if !ok || !store.RecordFeedback(fb.InteractionID, fb) {
		e.logger.Debug("feedback rejected", "user", userID, "interaction_id", fb.InteractionID, "rating", fb.Rating)
		return false
	}
	e.selector.Learn(store, rec.Persona, fb.Rating)
	if fb.Rating > 3 && rec.Intent != "" {
		e.adaptive.Seed(userID, store.ReinforceIntent(rec.Intent))
	}
	if session != nil {
		session.addEngagement(float64(fb.Rating-1) / 4)
	}
	return true
}

// RecordResponse attaches the generated reply to an interaction so the
// length preference can learn from it.
func (e *Engine) RecordResponse(ctx context.Context, userID, interactionID, response string) error {
	store, _ := e.registry.Get(ctx, userKey(userID))
	return store.RecordResponse(interactionID, response)
}

// ──────────────────────────────────────────────
// Profile portability
// ──────────────────────────────────────────────

// Flush persists one user's profile through the adapter.
func (e *Engine) Flush(ctx context.Context, userID string) bool {
	return e.registry.Flush(ctx, userKey(userID))
}

// FlushAll persists every loaded profile and returns how many were saved.
func (e *Engine) FlushAll(ctx context.Context) int {
	return e.registry.FlushAll(ctx)
}

// ExportProfile serializes a user's profile.
func (e *Engine) ExportProfile(ctx context.Context, userID string) ([]byte, error) {
	store, _ := e.registry.Get(ctx, userKey(userID))
	return store.Export()
}

// ImportProfile replaces a user's profile. Invalid data leaves the default
// profile in place and returns an error wrapping ErrInvalidProfile.
func (e *Engine) ImportProfile(ctx context.Context, userID string, data []byte) error {
	store, _ := e.registry.Get(ctx, userKey(userID))
	return store.Import(data)
}

// ResetProfile restores a user's defaults and forgets their intent history.
func (e *Engine) ResetProfile(ctx context.Context, userID string) {
	userID = userKey(userID)
	store, _ := e.registry.Get(ctx, userID)
	store.Reset()
	e.adaptive.Forget(userID)
	e.logger.Info("profile reset", "user", userID)
}

// ──────────────────────────────────────────────
// helpers
// ──────────────────────────────────────────────

// stateEngagement is the engagement implied by each user state.
var stateEngagement = map[UserState]float64{
	StateExcited:       0.9,
	StateEngaged:       0.9,
	StateCurious:       0.8,
	StateProud:         0.8,
	StateConfident:     0.7,
	StateGrateful:      0.7,
	StateSatisfied:     0.7,
	StateNostalgic:     0.6,
	StateNeutral:       0.5,
	StateConfused:      0.5,
	StateAnxious:       0.45,
	StateOverwhelmed:   0.35,
	StateFrustrated:    0.3,
	StateDisappointed:  0.3,
	StateDisinterested: 0.1,
}

// turnEngagement blends the state prior with the message's expressive cues.
func (e *Engine) turnEngagement(message string, cls ClassificationResult) float64 {
	prior, ok := stateEngagement[cls.UserState]
	if !ok {
		prior = defaultEngagementMean
	}
	if cls.Fallback {
		return prior
	}
	return clamp01(0.6*prior + 0.4*e.classifier.signal(message).engagement)
}

func userKey(userID string) string {
	if userID == "" {
		return AnonymousUser
	}
	return userID
}
