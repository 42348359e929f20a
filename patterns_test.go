package convpolicy

import (
	"testing"
)

// ══════════════════════════════════════════════
// Matcher tests
// ══════════════════════════════════════════════

func TestPhrase_WordBoundaries(t *testing.T) {
	cases := []struct {
		phrase string
		text   string
		want   bool
	}{
		{"main", "the main point", true},
		{"main", "i maintain the code", false},
		{"main", "domain knowledge", false},
		{"samajh nahi", "yaar samajh nahi aa raha", true},
		{"samajh nahi", "samajh nahin", false},
		{"hi", "hi, how are you", true},
		{"hi", "this is fine", false},
		{"don't get it", "i still don't get it!", true},
		{"tl;dr", "tl;dr please", true},
		{"source?", "source? i doubt it", true},
		{"Explain", "please explain vectors", true},
	}
	for _, tc := range cases {
		if got := Phrase(tc.phrase).Match(tc.text); got != tc.want {
			t.Fatalf("Phrase(%q).Match(%q) = %v, want %v", tc.phrase, tc.text, got, tc.want)
		}
	}
}

func TestPhrase_String(t *testing.T) {
	if got := Phrase("  Samjha Do ").String(); got != "samjha do" {
		t.Fatalf("expected normalized phrase, got %q", got)
	}
}

func TestRegex_CaseInsensitive(t *testing.T) {
	m := Regex(`!{2,}`)
	if !m.Match("yes!!") {
		t.Fatal("expected double exclamation to match")
	}
	if m.Match("yes!") {
		t.Fatal("single exclamation should not match")
	}
	if !Regex(`^dear\b`).Match("DEAR sir") {
		t.Fatal("regex should ignore case")
	}
}

// ══════════════════════════════════════════════
// PatternSet tests
// ══════════════════════════════════════════════

func TestPatternSet_ScoreSumsPerLabel(t *testing.T) {
	ps := joinSets(
		phrases("a", 0.5, "alpha", "beta"),
		phrases("b", 0.25, "gamma"),
	)
	scores := ps.Score("alpha beta gamma")
	if scores["a"] != 1.0 {
		t.Fatalf("expected a=1.0, got %v", scores["a"])
	}
	if scores["b"] != 0.25 {
		t.Fatalf("expected b=0.25, got %v", scores["b"])
	}
	if len(ps.Score("nothing here")) != 0 {
		t.Fatal("expected no scores for unmatched text")
	}
}

func TestPatternSet_StrongestKeepsDeclarationOrderOnTies(t *testing.T) {
	ps := PatternSet{
		{Matcher: Phrase("memorize all"), Weight: 0.8, Label: "first"},
		{Matcher: Phrase("just memorize"), Weight: 0.8, Label: "second"},
		{Matcher: Phrase("memorize"), Weight: 0.55, Label: "weak"},
	}
	best, ok := ps.Strongest("i will just memorize all of it")
	if !ok {
		t.Fatal("expected a match")
	}
	if best.Label != "first" {
		t.Fatalf("expected first declared pattern on tie, got %s", best.Label)
	}

	best, _ = ps.Strongest("i will memorize it")
	if best.Label != "weak" {
		t.Fatalf("expected weak, got %s", best.Label)
	}

	if _, ok := ps.Strongest("no match"); ok {
		t.Fatal("expected no match")
	}
}

func TestPatternSet_MatchesAnyTotal(t *testing.T) {
	ps := phrases("x", 0.3, "one", "two", "three")
	ms := ps.Matches("three and one")
	if len(ms) != 2 || ms[0].Matcher.String() != "one" || ms[1].Matcher.String() != "three" {
		t.Fatalf("expected [one three] in declaration order, got %v", ms)
	}
	if !ps.Any("two") {
		t.Fatal("Any should report a match")
	}
	if total := ps.Total("one two"); total < 0.59 || total > 0.61 {
		t.Fatalf("expected total 0.6, got %v", total)
	}
}

func TestPickBest(t *testing.T) {
	order := []string{"a", "b", "c"}

	label, score := pickBest(map[string]float64{"b": 1, "a": 1}, order)
	if label != "a" || score != 1 {
		t.Fatalf("expected tie to resolve to a, got %s %v", label, score)
	}

	label, _ = pickBest(map[string]float64{"a": 0.2, "c": 0.9}, order)
	if label != "c" {
		t.Fatalf("expected c, got %s", label)
	}

	label, score = pickBest(map[string]float64{"a": 0}, order)
	if label != "" || score != 0 {
		t.Fatalf("zero score should never win, got %q %v", label, score)
	}
}

func TestNormalizeAndTokens(t *testing.T) {
	if got := normalize("  Yaar   SAMAJH\tnahi "); got != "yaar samajh nahi" {
		t.Fatalf("unexpected normalize result %q", got)
	}
	toks := tokens("i don't get it, bro!")
	want := []string{"i", "don't", "get", "it", "bro"}
	if len(toks) != len(want) {
		t.Fatalf("expected %v, got %v", want, toks)
	}
	for i := range want {
		if toks[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, toks)
		}
	}
}

func TestWindow_SkipsMalformedAndCopies(t *testing.T) {
	history := []Message{
		{Text: "first", Role: RoleUser},
		{Text: "   ", Role: RoleUser},
		{Text: "reply", Role: RoleAssistant},
		{Text: "bad role", Role: "system"},
		{Text: "\xff\xfe", Role: RoleUser},
		{Text: "last", Role: RoleUser},
	}
	w := Window(history, 2)
	if len(w) != 2 || w[0].Text != "reply" || w[1].Text != "last" {
		t.Fatalf("expected [reply last], got %v", w)
	}
	w[0].Text = "changed"
	if history[2].Text != "reply" {
		t.Fatal("Window must not alias the input slice")
	}
	if Window(history, 0) != nil {
		t.Fatal("expected nil for n=0")
	}
}
