package convpolicy

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/elliotchance/pie/v2"
)

// ──────────────────────────────────────────────
// Entity & Marker Extractor: lexicon + structural patterns
// ──────────────────────────────────────────────

// Entities holds deduplicated, sorted matches per category.
type Entities struct {
	Names           []string `json:"names,omitempty"`
	Places          []string `json:"places,omitempty"`
	Subjects        []string `json:"subjects,omitempty"`
	Institutions    []string `json:"institutions,omitempty"`
	TimeExpressions []string `json:"time_expressions,omitempty"`
	Emotions        []string `json:"emotions,omitempty"`
	Events          []string `json:"events,omitempty"`
	Numbers         []string `json:"numbers,omitempty"`
	Emails          []string `json:"emails,omitempty"`
	Phones          []string `json:"phones,omitempty"`
}

// IsEmpty reports whether no entity of any category was found.
func (e Entities) IsEmpty() bool {
	return len(e.Names)+len(e.Places)+len(e.Subjects)+len(e.Institutions)+
		len(e.TimeExpressions)+len(e.Emotions)+len(e.Events)+len(e.Numbers)+
		len(e.Emails)+len(e.Phones) == 0
}

// Markers is the cultural-register tagging of one message.
type Markers struct {
	ByCategory map[string][]string `json:"by_category,omitempty"`
	Vernacular []string            `json:"vernacular,omitempty"`
	Formal     []string            `json:"formal,omitempty"`
	Casual     []string            `json:"casual,omitempty"`
	FormalSum  float64             `json:"formal_sum"`
	CasualSum  float64             `json:"casual_sum"`
}

var (
	emailPattern       = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern       = regexp.MustCompile(`\+?\d[\d\s\-]{7,}\d`)
	numberPattern      = regexp.MustCompile(`\b\d+(?:\.\d+)?%?`)
	slashDatePattern   = regexp.MustCompile(`\b\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}\b`)
	isoDatePattern     = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	dayMonthPattern    = regexp.MustCompile(`(?i)\b\d{1,2}(?:st|nd|rd|th)?\s+(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\b`)
	selfIntroPattern   = regexp.MustCompile(`(?i)\b(?:my name is|mera naam|call me)\s+(\p{L}+)`)
	relationPattern    = regexp.MustCompile(`(?i:\bmy (?:friend|teacher|sister|brother|cousin|mentor|tutor|classmate))\s+(\p{Lu}\p{Ll}+)`)
	institutionPattern = regexp.MustCompile(`\b((?:\p{Lu}\p{L}+\s)+(?:University|College|School|Institute|Academy))\b`)
)

// selfIntroStopwords are words that follow "call me" without being names.
var selfIntroStopwords = map[string]bool{
	"when": true, "later": true, "back": true, "if": true, "tomorrow": true, "now": true,
	"hai": true, "is": true, "a": true, "an": true, "the": true,
}

// EntityExtractor extracts entities and cultural markers from raw text.
// It holds only compiled, read-only pattern sets and is safe for concurrent use.
type EntityExtractor struct {
	subjects     PatternSet
	places       PatternSet
	institutions PatternSet
	names        PatternSet
	times        PatternSet
	emotions     PatternSet
	events       PatternSet

	markerSets map[string]PatternSet
	general    PatternSet
}

// NewEntityExtractor compiles the built-in lexicons.
func NewEntityExtractor() *EntityExtractor {
	markerSets := make(map[string]PatternSet, len(culturalMarkerLexicon))
	for category, words := range culturalMarkerLexicon {
		markerSets[category] = lexiconSet(words)
	}
	return &EntityExtractor{
		subjects:     lexiconSet(subjectLexicon),
		places:       lexiconSet(placeLexicon),
		institutions: lexiconSet(institutionLexicon),
		names:        lexiconSet(nameLexicon),
		times:        lexiconSet(timeLexicon),
		emotions:     lexiconSet(emotionLexicon),
		events:       lexiconSet(eventLexicon),
		markerSets:   markerSets,
		general:      lexiconSet(generalVernacular),
	}
}

// lexiconSet labels every phrase with itself so matches read back as values.
func lexiconSet(words []string) PatternSet {
	set := make(PatternSet, 0, len(words))
	for _, w := range words {
		set = append(set, Pattern{Matcher: Phrase(w), Weight: 1, Label: strings.ToLower(w)})
	}
	return set
}

// Extract returns every entity category for text. Empty or invalid input
// returns empty sets.
func (x *EntityExtractor) Extract(text string) Entities {
	if strings.TrimSpace(text) == "" || !utf8.ValidString(text) {
		return Entities{}
	}
	norm := normalize(text)

	var e Entities
	e.Subjects = labels(x.subjects.Matches(norm))
	e.Places = labels(x.places.Matches(norm))
	e.Institutions = labels(x.institutions.Matches(norm))
	e.Names = labels(x.names.Matches(norm))
	e.TimeExpressions = labels(x.times.Matches(norm))
	e.Emotions = labels(x.emotions.Matches(norm))
	e.Events = labels(x.events.Matches(norm))

	for _, m := range selfIntroPattern.FindAllStringSubmatch(text, -1) {
		if name := strings.ToLower(m[1]); !selfIntroStopwords[name] {
			e.Names = append(e.Names, name)
		}
	}
	for _, m := range relationPattern.FindAllStringSubmatch(text, -1) {
		e.Names = append(e.Names, strings.ToLower(m[1]))
	}
	for _, m := range institutionPattern.FindAllStringSubmatch(text, -1) {
		e.Institutions = append(e.Institutions, strings.ToLower(m[1]))
	}

	dates := slashDatePattern.FindAllString(text, -1)
	dates = append(dates, isoDatePattern.FindAllString(text, -1)...)
	for _, d := range dayMonthPattern.FindAllString(text, -1) {
		dates = append(dates, strings.ToLower(d))
	}
	e.TimeExpressions = append(e.TimeExpressions, dates...)

	e.Emails = emailPattern.FindAllString(text, -1)
	for _, p := range phonePattern.FindAllString(text, -1) {
		if isPhoneLike(p) && !pie.Contains(dates, strings.TrimSpace(p)) {
			e.Phones = append(e.Phones, strings.TrimSpace(p))
		}
	}
	e.Numbers = numberPattern.FindAllString(text, -1)

	return e.dedup()
}

// Markers tags cultural-register markers, vernacular tokens and formal/casual cues.
func (x *EntityExtractor) Markers(text string) Markers {
	m := Markers{ByCategory: map[string][]string{}}
	if strings.TrimSpace(text) == "" || !utf8.ValidString(text) {
		return m
	}
	norm := normalize(text)

	var vernacular []string
	for _, category := range culturalMarkerOrder {
		found := labels(x.markerSets[category].Matches(norm))
		if len(found) == 0 {
			continue
		}
		m.ByCategory[category] = found
		vernacular = append(vernacular, found...)
	}
	vernacular = append(vernacular, labels(x.general.Matches(norm))...)
	m.Vernacular = uniqueSorted(vernacular)

	for _, p := range formalMarkers.Matches(norm) {
		m.Formal = append(m.Formal, p.Matcher.String())
		m.FormalSum += p.Weight
	}
	for _, p := range casualMarkers.Matches(norm) {
		m.Casual = append(m.Casual, p.Matcher.String())
		m.CasualSum += p.Weight
	}
	// register-bearing vernacular (casual/emphasis) leans casual
	for _, category := range []string{"casual", "emphasis"} {
		for _, w := range m.ByCategory[category] {
			m.Casual = append(m.Casual, w)
			m.CasualSum += vernacularCasualWeight
		}
	}
	m.Formal = uniqueSorted(m.Formal)
	m.Casual = uniqueSorted(m.Casual)
	return m
}

func (e Entities) dedup() Entities {
	return Entities{
		Names:           uniqueSorted(e.Names),
		Places:          uniqueSorted(e.Places),
		Subjects:        uniqueSorted(e.Subjects),
		Institutions:    uniqueSorted(e.Institutions),
		TimeExpressions: uniqueSorted(e.TimeExpressions),
		Emotions:        uniqueSorted(e.Emotions),
		Events:          uniqueSorted(e.Events),
		Numbers:         uniqueSorted(e.Numbers),
		Emails:          uniqueSorted(e.Emails),
		Phones:          uniqueSorted(e.Phones),
	}
}

func labels(ps []Pattern) []string {
	return pie.Map(ps, func(p Pattern) string { return p.Label })
}

// uniqueSorted deduplicates and sorts; nil stays nil.
func uniqueSorted(ss []string) []string {
	if len(ss) == 0 {
		return nil
	}
	return pie.Sort(pie.Unique(ss))
}

func isPhoneLike(s string) bool {
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 9
}
