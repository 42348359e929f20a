package convpolicy

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/cyberFlowTech/zapry-convpolicy-go/persona"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// ══════════════════════════════════════════════
// Engine tests
// ══════════════════════════════════════════════

func newTestEngine(adapter ProfileAdapter) *Engine {
	opts := DefaultEngineOptions()
	opts.Adapter = adapter
	return NewEngine(opts)
}

func TestEngine_FrustratedVernacularTurn(t *testing.T) {
	e := newTestEngine(nil)
	session := NewSessionState()
	d := e.ProcessTurn(context.Background(), session, "yaar dimagh kharab ho gaya, samajh nahi aa raha", nil, "u1")

	if d.Classification.Intent != IntentFrustratedSeekingHelp || d.Classification.UserState != StateFrustrated {
		t.Fatalf("unexpected classification %s/%s", d.Classification.Intent, d.Classification.UserState)
	}
	if !d.Classification.Cultural.IsMixedVernacular {
		t.Fatal("expected mixed vernacular")
	}
	if d.Persona.PersonaID != persona.Friendly || !d.Persona.ShouldActivate {
		t.Fatalf("expected active friendly persona, got %s active=%v", d.Persona.PersonaID, d.Persona.ShouldActivate)
	}
	if d.Persona.IsBlended {
		t.Fatal("a confident rule pick should not blend")
	}
	if d.InteractionID == "" || session.LastInteractionID != d.InteractionID {
		t.Fatal("interaction id should be recorded on the session")
	}
	if d.Turn.TurnIndex != 1 || d.Metrics.MessageCount != 1 {
		t.Fatalf("unexpected turn bookkeeping %+v / %+v", d.Turn, d.Metrics)
	}
	if d.UserID != "u1" || d.ProfileLoaded {
		t.Fatalf("unexpected user %q loaded=%v", d.UserID, d.ProfileLoaded)
	}
}

func TestEngine_InefficientApproachTriggersPushback(t *testing.T) {
	e := newTestEngine(nil)
	session := NewSessionState()
	d := e.ProcessTurn(context.Background(), session, "I will just memorize all the formulas", nil, "u1")

	if !d.Conviction.ShouldTrigger || d.Conviction.Scenario != ScenarioInefficientApproach {
		t.Fatalf("expected inefficient-approach pushback, got %+v", d.Conviction)
	}
	if d.Conviction.Intensity != IntensityMedium || d.Conviction.Source != SourcePattern {
		t.Fatalf("expected medium pattern pushback, got %s/%s", d.Conviction.Intensity, d.Conviction.Source)
	}
	if !slices.Contains(d.Warnings, "conviction:inefficient-approach:pattern") {
		t.Fatalf("expected conviction warning, got %v", d.Warnings)
	}
	if d.Metrics.ConvictionTriggers != 1 {
		t.Fatalf("expected session to count the trigger, got %d", d.Metrics.ConvictionTriggers)
	}

	prompt := d.FormatForPrompt()
	if !strings.HasPrefix(prompt, "[Response policy]") {
		t.Fatalf("unexpected prompt header: %q", prompt)
	}
	if !strings.Contains(prompt, "[Gentle pushback: inefficient-approach, medium]") || !strings.Contains(prompt, "\n1. ") {
		t.Fatalf("expected pushback plan in prompt, got:\n%s", prompt)
	}

	kv := d.ToKV()
	if kv["policy.conviction_scenario"] != "inefficient-approach" {
		t.Fatalf("expected scenario in kv, got %v", kv["policy.conviction_scenario"])
	}
	if _, ok := kv["policy.persona_secondary"]; ok {
		t.Fatal("unblended decision should not carry a secondary persona")
	}
}

func TestEngine_EmptyMessageFallsBack(t *testing.T) {
	e := newTestEngine(nil)
	d := e.ProcessTurn(context.Background(), nil, "", nil, "")

	if diff := cmp.Diff(DefaultClassification(), d.Classification); diff != "" {
		t.Fatalf("expected default classification (-want +got):\n%s", diff)
	}
	if d.Conviction.ShouldTrigger {
		t.Fatal("fallback should not trigger pushback")
	}
	if d.Persona.PersonaID != persona.Educator || d.Persona.ShouldActivate {
		t.Fatalf("expected inactive educator default, got %s active=%v", d.Persona.PersonaID, d.Persona.ShouldActivate)
	}
	if d.UserID != AnonymousUser {
		t.Fatalf("empty user id should map to %q, got %q", AnonymousUser, d.UserID)
	}
	for _, w := range []string{"classification.fallback", "persona.inactive:0.50"} {
		if !slices.Contains(d.Warnings, w) {
			t.Fatalf("expected warning %q in %v", w, d.Warnings)
		}
	}

	kv := d.ToKV()
	if _, ok := kv["policy.conviction_scenario"]; ok {
		t.Fatal("no scenario key expected without pushback")
	}
	if strings.Contains(d.FormatForPrompt(), "Gentle pushback") {
		t.Fatal("prompt should not contain a pushback section")
	}
}

func TestEngine_RepeatedConfusionIsStuck(t *testing.T) {
	e := newTestEngine(nil)
	var history []Message
	for i := 0; i < 5; i++ {
		history = append(history, userMsg("samajh nahi aa raha"), botMsg("Let's look at it another way."))
	}
	snapshot := slices.Clone(history)

	d := e.ProcessTurn(context.Background(), NewSessionState(), "theek hai, next", history, "u1")
	if !d.Flow.IsStuck || !slices.Contains(d.Warnings, "flow.stuck") {
		t.Fatalf("expected stuck flow, got %+v warnings=%v", d.Flow, d.Warnings)
	}
	if d.Conviction.Scenario != ScenarioBetterAlternative || d.Conviction.Source != SourceHistory {
		t.Fatalf("expected history pushback, got %s/%s", d.Conviction.Scenario, d.Conviction.Source)
	}
	if diff := cmp.Diff(snapshot, history); diff != "" {
		t.Fatalf("history must not be modified:\n%s", diff)
	}
	if !strings.Contains(d.FormatForPrompt(), "[Conversation flow: ") {
		t.Fatal("expected flow section in the prompt")
	}
}

func TestEngine_InlineStyleFeedback(t *testing.T) {
	e := newTestEngine(nil)
	ctx := context.Background()
	d := e.ProcessTurn(ctx, NewSessionState(), "too long yaar", nil, "u1")

	if d.StyleChanges[StyleKeyLength] != string(LengthShort) {
		t.Fatalf("expected length=short, got %v", d.StyleChanges)
	}
	if !slices.Contains(d.Warnings, "style.length:short") {
		t.Fatalf("expected style warning, got %v", d.Warnings)
	}
	want := DefaultStyleHints()[StyleKeyLength][string(LengthShort)]
	if !slices.Contains(d.StyleHints, want) {
		t.Fatalf("expected short style hint, got %v", d.StyleHints)
	}
	store, _ := e.Store(ctx, "u1")
	if store.StylePreferences()[StyleKeyLength] != string(LengthShort) {
		t.Fatal("override should be stored in the profile")
	}
}

func TestEngine_ProcessFeedback(t *testing.T) {
	e := newTestEngine(nil)
	ctx := context.Background()
	session := NewSessionState()
	d := e.ProcessTurn(ctx, session, "yaar dimagh kharab ho gaya, samajh nahi aa raha", nil, "u1")

	if e.ProcessFeedback(ctx, session, "u1", Feedback{InteractionID: "missing", Rating: 5}) {
		t.Fatal("unknown interaction should be rejected")
	}
	if e.ProcessFeedback(ctx, session, "u1", Feedback{InteractionID: d.InteractionID, Rating: 9}) {
		t.Fatal("out-of-range rating should be rejected")
	}

	before := session.Metrics.EngagementAvg
	if !e.ProcessFeedback(ctx, session, "u1", Feedback{InteractionID: d.InteractionID, Rating: 5}) {
		t.Fatal("expected feedback to be applied")
	}
	store, _ := e.Store(ctx, "u1")
	profile := store.Profile()
	if profile.PersonaStats[persona.Friendly].Positive != 1 {
		t.Fatalf("expected one positive for friendly, got %+v", profile.PersonaStats)
	}
	if profile.FeedbackCount != 1 || profile.Satisfaction != 5 {
		t.Fatalf("unexpected feedback totals %d/%v", profile.FeedbackCount, profile.Satisfaction)
	}
	if e.adaptive.Counts("u1")[IntentFrustratedSeekingHelp] != 1 {
		t.Fatalf("expected adaptive reinforcement, got %v", e.adaptive.Counts("u1"))
	}
	if session.Metrics.EngagementAvg <= before {
		t.Fatalf("a top rating should raise engagement, %v -> %v", before, session.Metrics.EngagementAvg)
	}

	if err := e.RecordResponse(ctx, "u1", d.InteractionID, "Koi baat nahi, chalo step by step dekhte hain."); err != nil {
		t.Fatal(err)
	}
}

func TestEngine_PersistsAcrossEngines(t *testing.T) {
	adapter := NewInMemoryProfileAdapter()
	ctx := context.Background()

	first := newTestEngine(adapter)
	d := first.ProcessTurn(ctx, NewSessionState(), "keep it short please", nil, "u1")
	if d.ProfileLoaded {
		t.Fatal("first contact should not load a profile")
	}
	if !first.Flush(ctx, "u1") {
		t.Fatal("flush should succeed")
	}
	if n := first.FlushAll(ctx); n != 1 {
		t.Fatalf("expected one profile flushed, got %d", n)
	}

	second := newTestEngine(adapter)
	d = second.ProcessTurn(ctx, NewSessionState(), "hello", nil, "u1")
	if !d.ProfileLoaded {
		t.Fatal("second engine should load the saved profile")
	}
	if d.Recommendations.Length != LengthShort {
		t.Fatalf("stored length override should survive, got %s", d.Recommendations.Length)
	}
	store, _ := second.Store(ctx, "u1")
	if store.Profile().InteractionCount != 2 {
		t.Fatalf("expected 2 interactions across engines, got %d", store.Profile().InteractionCount)
	}
}

func TestEngine_LoadOutageDoesNotOverwriteProfile(t *testing.T) {
	adapter := newCountingAdapter()
	ctx := context.Background()

	first := newTestEngine(adapter)
	session := NewSessionState()
	for i := 0; i < 10; i++ {
		first.ProcessTurn(ctx, session, "keep it short please", nil, "u1")
	}
	if !first.Flush(ctx, "u1") {
		t.Fatal("flush should succeed")
	}

	adapter.loadErr = errors.New("connection refused")
	second := newTestEngine(adapter)
	d := second.ProcessTurn(ctx, NewSessionState(), "hello", nil, "u1")
	if d.ProfileLoaded {
		t.Fatal("profile cannot load while the backend is down")
	}
	if second.Flush(ctx, "u1") || second.FlushAll(ctx) != 0 {
		t.Fatal("a profile that failed to load must not be flushed")
	}

	adapter.loadErr = nil
	d = second.ProcessTurn(ctx, NewSessionState(), "hello", nil, "u1")
	if !d.ProfileLoaded {
		t.Fatal("profile should load once the backend recovers")
	}
	if !second.Flush(ctx, "u1") {
		t.Fatal("flush should succeed after recovery")
	}

	third := newTestEngine(adapter)
	store, loaded := third.Store(ctx, "u1")
	if !loaded {
		t.Fatal("third engine should load the saved profile")
	}
	if got := store.Profile().InteractionCount; got != 11 {
		t.Fatalf("expected the original 10 interactions plus one, got %d", got)
	}
	if store.StylePreferences()[StyleKeyLength] != string(LengthShort) {
		t.Fatal("the original length override should survive the outage")
	}
}

func TestEngine_IntentCountsSurviveRestart(t *testing.T) {
	adapter := NewInMemoryProfileAdapter()
	ctx := context.Background()
	const msg = "mujhe integration samjhao"

	first := newTestEngine(adapter)
	session := NewSessionState()
	var intent Intent
	for i := 0; i < personalizationMinSamples; i++ {
		d := first.ProcessTurn(ctx, session, msg, nil, "u1")
		intent = d.Classification.Intent
		if !first.ProcessFeedback(ctx, session, "u1", Feedback{InteractionID: d.InteractionID, Rating: 5}) {
			t.Fatal("expected feedback to be applied")
		}
		if first.ProcessFeedback(ctx, session, "u1", Feedback{InteractionID: d.InteractionID, Rating: 5}) {
			t.Fatal("an interaction can only be rated once")
		}
	}
	if got := first.adaptive.Counts("u1")[intent]; got != personalizationMinSamples {
		t.Fatalf("expected %d reinforcements of %s, got %d", personalizationMinSamples, intent, got)
	}
	if !first.Flush(ctx, "u1") {
		t.Fatal("flush should succeed")
	}

	second := newTestEngine(adapter)
	if len(second.adaptive.Counts("u1")) != 0 {
		t.Fatal("a new engine starts with no in-memory counts")
	}
	second.ProcessTurn(ctx, NewSessionState(), "hello", nil, "u1")
	if got := second.adaptive.Counts("u1")[intent]; got != personalizationMinSamples {
		t.Fatalf("persisted counts should seed the new engine, got %v", second.adaptive.Counts("u1"))
	}
}

func TestEngine_ExportImportReset(t *testing.T) {
	e := newTestEngine(nil)
	ctx := context.Background()
	d := e.ProcessTurn(ctx, NewSessionState(), "mujhe integration samjhao", nil, "u1")
	store, _ := e.Store(ctx, "u1")
	for i := 0; i < 5; i++ {
		e.adaptive.Seed("u1", store.ReinforceIntent(IntentLearningFocused))
	}

	data, err := e.ExportProfile(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	e.ResetProfile(ctx, "u1")
	if len(e.adaptive.Counts("u1")) != 0 || len(store.IntentCounts()) != 0 {
		t.Fatal("reset should forget the adaptive history")
	}
	if _, ok := store.Interaction(d.InteractionID); ok {
		t.Fatal("reset should clear remembered interactions")
	}

	if err := e.ImportProfile(ctx, "u1", data); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.Interaction(d.InteractionID); !ok {
		t.Fatal("import should restore the interaction")
	}
	if store.IntentCounts()[IntentLearningFocused] != 5 {
		t.Fatalf("import should restore intent counts, got %v", store.IntentCounts())
	}
	if err := e.ImportProfile(ctx, "u1", []byte("not json")); err == nil {
		t.Fatal("expected error for corrupt import")
	}
}

func TestEngine_Deterministic(t *testing.T) {
	messages := []string{
		"yaar dimagh kharab ho gaya, samajh nahi aa raha",
		"I will just memorize all the formulas",
		"Respected sir, I would appreciate clarification on integration. Regards",
		"kal se parhunga pakka",
	}
	ctx := context.Background()
	a, b := newTestEngine(nil), newTestEngine(nil)
	for _, msg := range messages {
		da := a.ProcessTurn(ctx, NewSessionState(), msg, nil, "u1")
		db := b.ProcessTurn(ctx, NewSessionState(), msg, nil, "u1")
		if diff := cmp.Diff(da.Classification, db.Classification); diff != "" {
			t.Fatalf("%q: classification differs:\n%s", msg, diff)
		}
		if diff := cmp.Diff(da.Conviction, db.Conviction); diff != "" {
			t.Fatalf("%q: conviction differs:\n%s", msg, diff)
		}
		if diff := cmp.Diff(da.Persona, db.Persona); diff != "" {
			t.Fatalf("%q: persona differs:\n%s", msg, diff)
		}
		if da.FormatForPrompt() != db.FormatForPrompt() {
			t.Fatalf("%q: prompt differs", msg)
		}
	}
}

func TestEngine_CustomCatalog(t *testing.T) {
	catalog, _, err := persona.ParseCatalog([]byte(`
personas:
  - id: friendly
    tone: "bindaas"
    structure: "chit-chat"
    verbosity: "brief"
    rules:
      - "Keep it light"
`))
	if err != nil {
		t.Fatal(err)
	}
	opts := DefaultEngineOptions()
	opts.Catalog = catalog
	e := NewEngine(opts)

	d := e.ProcessTurn(context.Background(), NewSessionState(), "yaar dimagh kharab ho gaya, samajh nahi aa raha", nil, "u1")
	if d.Style.Tone != "bindaas" {
		t.Fatalf("expected custom tone, got %q", d.Style.Tone)
	}
	if !strings.Contains(d.FormatForPrompt(), "- Keep it light") {
		t.Fatal("custom rules should reach the prompt")
	}
}

func TestEngine_RootPersonaAliases(t *testing.T) {
	opts := DefaultEngineOptions()
	opts.Catalog = DefaultPersonaCatalog()
	e := NewEngine(opts)

	d := e.ProcessTurn(context.Background(), NewSessionState(), "yaar dimagh kharab ho gaya, samajh nahi aa raha", nil, "u1")
	if d.Persona.PersonaID != PersonaFriendly {
		t.Fatalf("expected %s, got %s", PersonaFriendly, d.Persona.PersonaID)
	}
	var p Persona = d.Persona.Persona
	if _, ok := p.(SimplePersona); !ok {
		t.Fatalf("expected a simple persona, got %T", p)
	}
	var style PersonaStyle = opts.Catalog.Resolve(BlendedPersona{PrimaryID: PersonaConcise, SecondaryID: PersonaDetailed, Ratio: 0.8})
	if style.ID != PersonaConcise {
		t.Fatalf("expected concise to lead, got %s", style.ID)
	}
}
