package persona

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ══════════════════════════════════════════════
// Normalize tests
// ══════════════════════════════════════════════

func TestNormalize_Nil(t *testing.T) {
	if _, _, err := Normalize(nil); err == nil {
		t.Fatal("expected error for nil style")
	}
}

func TestNormalize_UnknownID(t *testing.T) {
	if _, _, err := Normalize(&Style{ID: "pirate"}); err == nil {
		t.Fatal("expected error for unknown persona id")
	}
}

func TestNormalize_FillsBlanksFromTemplate(t *testing.T) {
	got, warnings, err := Normalize(&Style{ID: Concise, Tone: "   "})
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
	if got.Tone != ConciseTemplate.Tone || got.Verbosity != VerbosityBrief {
		t.Fatalf("expected template values, got %+v", got)
	}
	if len(got.Rules) != len(ConciseTemplate.Rules) || len(got.Cues) != len(ConciseTemplate.Cues) {
		t.Fatal("expected template rules and cues")
	}

	got.Rules[0] = "changed"
	if ConciseTemplate.Rules[0] == "changed" {
		t.Fatal("normalized rules must not alias the template")
	}
}

func TestNormalize_BadVerbosity(t *testing.T) {
	got, warnings, err := Normalize(&Style{ID: Detailed, Verbosity: "epic"})
	if err != nil {
		t.Fatal(err)
	}
	if got.Verbosity != VerbosityExtended {
		t.Fatalf("expected fallback to template verbosity, got %s", got.Verbosity)
	}
	if len(warnings) != 1 || warnings[0].Field != "verbosity" {
		t.Fatalf("expected one verbosity warning, got %v", warnings)
	}
}

func TestNormalize_Cues(t *testing.T) {
	got, warnings, err := Normalize(&Style{ID: Friendly, Cues: []Cue{
		{Phrase: "  Scene Kya Hai ", Weight: 5},
		{Phrase: "chill", Weight: 0},
		{Phrase: " ", Weight: 1},
	}})
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Cues) != 1 {
		t.Fatalf("expected one surviving cue, got %v", got.Cues)
	}
	if got.Cues[0].Phrase != "scene kya hai" || got.Cues[0].Weight != maxCueWeight {
		t.Fatalf("expected lowercased capped cue, got %+v", got.Cues[0])
	}
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings for dropped cues, got %v", warnings)
	}
}

func TestNormalize_RulesCapped(t *testing.T) {
	rules := make([]string, 12)
	for i := range rules {
		rules[i] = "rule"
	}
	got, warnings, err := Normalize(&Style{ID: Educator, Rules: rules})
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Rules) != maxRules {
		t.Fatalf("expected %d rules, got %d", maxRules, len(got.Rules))
	}
	if len(warnings) != 1 || warnings[0].Field != "rules" {
		t.Fatalf("expected a rules warning, got %v", warnings)
	}
}

// ══════════════════════════════════════════════
// Catalog tests
// ══════════════════════════════════════════════

func TestCatalog_ResolveSimple(t *testing.T) {
	c := DefaultCatalog()
	got := c.Resolve(Simple{ID: Socratic})
	if got.ID != Socratic || got.Tone != SocraticTemplate.Tone {
		t.Fatalf("unexpected style %+v", got)
	}
	if got := c.Resolve(nil); got.ID != Default {
		t.Fatalf("nil persona should resolve to the default, got %s", got.ID)
	}
}

func TestCatalog_ResolveBlended(t *testing.T) {
	c := DefaultCatalog()

	got := c.Resolve(Blended{PrimaryID: Concise, SecondaryID: Detailed, Ratio: 0.3})
	if got.ID != Detailed {
		t.Fatalf("minority primary should let the secondary lead, got %s", got.ID)
	}
	if got.Verbosity != VerbosityModerate {
		t.Fatalf("expected moderate verbosity, got %s", got.Verbosity)
	}
	if len(got.Rules) != 6 || got.Rules[0] != DetailedTemplate.Rules[0] {
		t.Fatalf("expected leader rules first, got %v", got.Rules)
	}

	got = c.Resolve(Blended{PrimaryID: Concise, SecondaryID: Detailed, Ratio: 0.8})
	if got.Tone != "direct" || got.Verbosity != VerbosityBrief {
		t.Fatalf("expected concise-led brief style, got %s/%s", got.Tone, got.Verbosity)
	}
	if len(DetailedTemplate.Rules) != 3 || len(ConciseTemplate.Rules) != 3 {
		t.Fatal("resolving a blend must not grow the templates")
	}
}

func TestCatalog_NilAndUnknown(t *testing.T) {
	var nilCatalog *Catalog
	if got := nilCatalog.Get(Formal); got != FormalTemplate {
		t.Fatal("nil catalog should serve templates")
	}
	if got := DefaultCatalog().Get("pirate"); got.ID != Default {
		t.Fatalf("unknown id should fall back to the default, got %s", got.ID)
	}
	cues := DefaultCatalog().Cues()
	if len(cues) != len(AllIDs) || len(cues[Friendly]) == 0 {
		t.Fatalf("expected cues for every persona, got %d", len(cues))
	}
}

func TestParseCatalog(t *testing.T) {
	c, warnings, err := ParseCatalog([]byte(`
personas:
  - id: concise
    verbosity: terse
    cues:
      - {phrase: "bas itna", weight: 1.0}
`))
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected verbosity warning, got %v", warnings)
	}
	got := c.Get(Concise)
	if len(got.Cues) != 1 || got.Cues[0].Phrase != "bas itna" {
		t.Fatalf("expected overridden cues, got %v", got.Cues)
	}
	if c.Get(Formal) != FormalTemplate {
		t.Fatal("untouched personas should keep their template")
	}

	if _, _, err := ParseCatalog([]byte("personas:\n  - id: pirate\n")); err == nil {
		t.Fatal("expected error for unknown persona id")
	}
	if _, _, err := ParseCatalog([]byte("personas: [")); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestLoadCatalog(t *testing.T) {
	if _, _, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "personas.yaml")
	doc := "personas:\n  - id: friendly\n    tone: bindaas\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	c, _, err := LoadCatalog(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Get(Friendly).Tone != "bindaas" {
		t.Fatalf("expected overridden tone, got %q", c.Get(Friendly).Tone)
	}
}

// ══════════════════════════════════════════════
// ID and Persona tests
// ══════════════════════════════════════════════

func TestIDValid(t *testing.T) {
	for _, id := range AllIDs {
		if !id.Valid() {
			t.Fatalf("%s should be valid", id)
		}
	}
	if ID("pirate").Valid() || ID("").Valid() {
		t.Fatal("unknown ids should be invalid")
	}
}

func TestPersonaString(t *testing.T) {
	b := Blended{PrimaryID: Concise, SecondaryID: Detailed, Ratio: 0.3}
	if b.String() != "concise(30%)+detailed" {
		t.Fatalf("unexpected blended string %q", b.String())
	}
	if b.Primary() != Concise {
		t.Fatal("primary should be the primary id")
	}
	if s := (Simple{ID: Formal}); s.String() != "formal" || s.Primary() != Formal {
		t.Fatalf("unexpected simple persona %v", s)
	}
	if !strings.HasPrefix(Blended{PrimaryID: Friendly, SecondaryID: Formal, Ratio: 0.65}.String(), "friendly(65%)") {
		t.Fatal("expected rounded percentage")
	}
}
