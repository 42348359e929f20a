package convpolicy

import (
	"slices"
	"testing"
)

// ══════════════════════════════════════════════
// EntityExtractor tests
// ══════════════════════════════════════════════

func TestExtract_MixedMessage(t *testing.T) {
	x := NewEntityExtractor()
	e := x.Extract("My name is Ayaan and I study physics at LUMS in Lahore. " +
		"Exam on 12/05/2025, email me at ayaan@example.com or call +92 300 1234567")

	if !slices.Equal(e.Names, []string{"ayaan"}) {
		t.Fatalf("expected names [ayaan], got %v", e.Names)
	}
	if !slices.Equal(e.Subjects, []string{"physics"}) {
		t.Fatalf("expected subjects [physics], got %v", e.Subjects)
	}
	if !slices.Equal(e.Places, []string{"lahore"}) {
		t.Fatalf("expected places [lahore], got %v", e.Places)
	}
	if !slices.Equal(e.Institutions, []string{"lums"}) {
		t.Fatalf("expected institutions [lums], got %v", e.Institutions)
	}
	if !slices.Equal(e.Events, []string{"exam"}) {
		t.Fatalf("expected events [exam], got %v", e.Events)
	}
	if !slices.Contains(e.TimeExpressions, "12/05/2025") {
		t.Fatalf("expected slash date, got %v", e.TimeExpressions)
	}
	if !slices.Equal(e.Emails, []string{"ayaan@example.com"}) {
		t.Fatalf("expected one email, got %v", e.Emails)
	}
	if !slices.Equal(e.Phones, []string{"+92 300 1234567"}) {
		t.Fatalf("expected one phone, got %v", e.Phones)
	}
	if !slices.Contains(e.Numbers, "2025") {
		t.Fatalf("expected numbers to include 2025, got %v", e.Numbers)
	}
}

func TestExtract_RelationAndInstitutionPatterns(t *testing.T) {
	x := NewEntityExtractor()

	e := x.Extract("my friend Sara helps me with algebra")
	if !slices.Equal(e.Names, []string{"sara"}) {
		t.Fatalf("expected [sara], got %v", e.Names)
	}
	if !slices.Equal(e.Subjects, []string{"algebra"}) {
		t.Fatalf("expected [algebra], got %v", e.Subjects)
	}

	e = x.Extract("I got admission in Aga Khan University")
	if !slices.Contains(e.Institutions, "aga khan university") {
		t.Fatalf("expected structural institution match, got %v", e.Institutions)
	}
	if !slices.Contains(e.Events, "admission") {
		t.Fatalf("expected admission event, got %v", e.Events)
	}
}

func TestExtract_SelfIntroStopwords(t *testing.T) {
	x := NewEntityExtractor()
	e := x.Extract("call me later please")
	if len(e.Names) != 0 {
		t.Fatalf("expected no names, got %v", e.Names)
	}
	e = x.Extract("mera naam Hamza hai")
	if !slices.Equal(e.Names, []string{"hamza"}) {
		t.Fatalf("expected [hamza], got %v", e.Names)
	}
}

func TestExtract_DayMonthDates(t *testing.T) {
	x := NewEntityExtractor()
	e := x.Extract("my exam is on 5th March")
	if !slices.Equal(e.TimeExpressions, []string{"5th march", "march"}) {
		t.Fatalf("expected [5th march march], got %v", e.TimeExpressions)
	}
}

func TestExtract_EmptyAndInvalid(t *testing.T) {
	x := NewEntityExtractor()
	for _, in := range []string{"", "   ", "\xff\xfe"} {
		if e := x.Extract(in); !e.IsEmpty() {
			t.Fatalf("expected empty entities for %q, got %+v", in, e)
		}
		if m := x.Markers(in); len(m.Vernacular) != 0 || m.FormalSum != 0 || m.CasualSum != 0 {
			t.Fatalf("expected empty markers for %q, got %+v", in, m)
		}
	}
}

func TestMarkers_Categories(t *testing.T) {
	x := NewEntityExtractor()
	m := x.Markers("Yaar bohat mushkil hai, kya karun?")

	if !slices.Equal(m.ByCategory["casual"], []string{"yaar"}) {
		t.Fatalf("expected casual [yaar], got %v", m.ByCategory["casual"])
	}
	if !slices.Equal(m.ByCategory["emphasis"], []string{"bohat"}) {
		t.Fatalf("expected emphasis [bohat], got %v", m.ByCategory["emphasis"])
	}
	if !slices.Equal(m.ByCategory["question"], []string{"kya"}) {
		t.Fatalf("expected question [kya], got %v", m.ByCategory["question"])
	}
	for _, w := range []string{"yaar", "bohat", "kya", "mushkil", "hai"} {
		if !slices.Contains(m.Vernacular, w) {
			t.Fatalf("expected %q in vernacular %v", w, m.Vernacular)
		}
	}
	if !slices.IsSorted(m.Vernacular) {
		t.Fatalf("vernacular should be sorted, got %v", m.Vernacular)
	}
	if m.CasualSum < 0.39 || m.CasualSum > 0.41 {
		t.Fatalf("expected casual sum 0.4 from yaar+bohat, got %v", m.CasualSum)
	}
}

// ══════════════════════════════════════════════
// Homograph adversarial tests
// ══════════════════════════════════════════════

// English sentences built from words that collide with romanized Urdu/Hindi
// must not be tagged as mixed vernacular.
func TestMarkers_EnglishHomographsAreNotVernacular(t *testing.T) {
	x := NewEntityExtractor()
	c := NewMessageClassifier(x, 0)
	english := []string{
		"I maintain the main branch",
		"Put the mat near the door",
		"Hi there, to me it is fine",
		"Tell the boss the scene was great",
		"Han Solo is my favourite",
		"Who knows where the bus stops",
		"The domain is hosted in Karachi",
	}
	for _, msg := range english {
		m := x.Markers(msg)
		if len(m.Vernacular) != 0 {
			t.Fatalf("%q: expected no vernacular, got %v", msg, m.Vernacular)
		}
		if c.Classify(msg, nil).Cultural.IsMixedVernacular {
			t.Fatalf("%q: should not be mixed vernacular", msg)
		}
	}
}

// The same homographs must not push the intent either.
func TestIntent_HomographsDoNotDriveIntent(t *testing.T) {
	c := NewMessageClassifier(nil, 0)
	cases := []struct {
		msg string
		not Intent
	}{
		{"mujhe hi nahi pata", IntentGreeting},
		{"ye hi sahi hai na", IntentGreeting},
		{"what is hi-fi audio", IntentGreeting},
		{"I'm testing my hypothesis about gravity", IntentTestingSystem},
		{"we are testing newton's laws in the lab today", IntentTestingSystem},
	}
	for _, tc := range cases {
		if got := c.Classify(tc.msg, nil).Intent; got == tc.not {
			t.Fatalf("%q: homograph should not classify as %s", tc.msg, got)
		}
	}

	for _, msg := range []string{"hi", "Hi, kya haal hai", "hi! anyone here"} {
		if got := c.Classify(msg, nil).Intent; got != IntentGreeting {
			t.Fatalf("%q: expected greeting, got %s", msg, got)
		}
	}
	for _, msg := range []string{"testing testing, is this working", "just testing the bot here"} {
		if got := c.Classify(msg, nil).Intent; got != IntentTestingSystem {
			t.Fatalf("%q: expected testing-system, got %s", msg, got)
		}
	}
}

func TestMarkers_RealMixingIsDetected(t *testing.T) {
	c := NewMessageClassifier(nil, 0)
	cls := c.Classify("kya scene hai bhai", nil)
	if !cls.Cultural.IsMixedVernacular {
		t.Fatal("expected mixed vernacular")
	}
	if cls.Cultural.Formality != FormalityCasual {
		t.Fatalf("expected casual, got %s", cls.Cultural.Formality)
	}
}
