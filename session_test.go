package convpolicy

import (
	"strings"
	"testing"
	"time"

	"github.com/cyberFlowTech/zapry-convpolicy-go/persona"
)

// ══════════════════════════════════════════════
// SessionState tests
// ══════════════════════════════════════════════

func TestSession_ObserveTurns(t *testing.T) {
	s := NewSessionState()
	now := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	s.StartedAt = now

	tc1 := s.observe("hello", now)
	if tc1.TurnIndex != 1 || tc1.IsFollowUp {
		t.Fatalf("first turn: unexpected %+v", tc1)
	}
	if tc1.MessageLength != "short" {
		t.Fatalf("expected short, got %s", tc1.MessageLength)
	}

	tc2 := s.observe(strings.Repeat("a", 50), now.Add(30*time.Second))
	if !tc2.IsFollowUp || tc2.TurnIndex != 2 || tc2.MessageLength != "medium" {
		t.Fatalf("second turn: unexpected %+v", tc2)
	}

	tc3 := s.observe(strings.Repeat("a", 200), now.Add(150*time.Second))
	if tc3.IsFollowUp {
		t.Fatal("two minutes after the last message is not a follow-up")
	}
	if tc3.MessageLength != "long" || tc3.SessionDuration != 150*time.Second {
		t.Fatalf("third turn: unexpected %+v", tc3)
	}
	if s.Metrics.MessageCount != 3 || s.LastTurn == nil || s.LastTurn.TurnIndex != 3 {
		t.Fatalf("unexpected session metrics %+v", s.Metrics)
	}
}

func TestSession_PersonaSwitchesAndBounds(t *testing.T) {
	s := NewSessionState()
	for _, id := range []persona.ID{persona.Educator, persona.Educator, persona.Friendly, persona.Educator} {
		s.notePersona(id, 3)
	}
	if s.Metrics.PersonaSwitches != 2 {
		t.Fatalf("expected 2 switches, got %d", s.Metrics.PersonaSwitches)
	}
	if len(s.RecentPersonas) != 3 {
		t.Fatalf("expected recent personas capped at 3, got %v", s.RecentPersonas)
	}
}

func TestSession_Engagement(t *testing.T) {
	s := NewSessionState()
	s.addEngagement(1)
	s.addEngagement(0)
	s.addEngagement(2) // clamped to 1
	if avg := s.Metrics.EngagementAvg; avg < 0.66 || avg > 0.67 {
		t.Fatalf("expected average ~0.667, got %v", avg)
	}
	for i := 0; i < 30; i++ {
		s.addEngagement(0.5)
	}
	if len(s.EngagementSamples) != maxEngagementSamples {
		t.Fatalf("expected %d samples, got %d", maxEngagementSamples, len(s.EngagementSamples))
	}
	if s.Metrics.EngagementAvg != 0.5 {
		t.Fatalf("expected 0.5 after old samples rolled off, got %v", s.Metrics.EngagementAvg)
	}
}

func TestSession_ExportImport(t *testing.T) {
	s := NewSessionState()
	s.observe("hello", time.Now())
	s.notePersona(persona.Friendly, 10)
	s.noteConviction()
	s.addEngagement(0.8)

	data, err := s.Export()
	if err != nil {
		t.Fatal(err)
	}
	restored, err := ImportSessionState(data)
	if err != nil {
		t.Fatal(err)
	}
	if restored.ID != s.ID || restored.TurnIndex != 1 {
		t.Fatalf("unexpected restored session %+v", restored)
	}
	if restored.Metrics != s.Metrics {
		t.Fatalf("metrics differ: %+v vs %+v", restored.Metrics, s.Metrics)
	}

	if _, err := ImportSessionState([]byte("{")); err == nil {
		t.Fatal("expected error for corrupt session")
	}
	if _, err := ImportSessionState([]byte(`{"turn_index": 3}`)); err == nil {
		t.Fatal("expected error for a session without id")
	}
}

func TestSession_Reset(t *testing.T) {
	s := NewSessionState()
	id := s.ID
	s.observe("hello", time.Now())
	s.Reset()
	if s.ID == id || s.TurnIndex != 0 || s.Metrics.MessageCount != 0 {
		t.Fatalf("reset should start a new session, got %+v", s)
	}
}

func TestSession_RecomputeEngagement(t *testing.T) {
	s := NewSessionState()
	s.recomputeEngagement()
	if s.Metrics.EngagementAvg != defaultEngagementMean {
		t.Fatalf("expected default mean, got %v", s.Metrics.EngagementAvg)
	}
}
