package convpolicy

import (
	"regexp"
	"strings"
)

// ──────────────────────────────────────────────
// Weighted pattern scoring: shared by every classifier stage
// ──────────────────────────────────────────────

// Matcher reports whether a pattern occurs in normalized (lowercased) text.
type Matcher interface {
	Match(text string) bool
	String() string
}

type phraseMatcher struct {
	phrase string
	re     *regexp.Regexp
}

// Phrase matches a word or phrase on letter/digit boundaries, case-insensitively.
// "samajh nahi" matches "yaar samajh nahi aa raha" but "main" never matches "maintain".
func Phrase(phrase string) Matcher {
	p := strings.ToLower(strings.TrimSpace(phrase))
	expr := `(?:^|[^\p{L}\p{N}'])` + regexp.QuoteMeta(p) + `(?:$|[^\p{L}\p{N}'])`
	return &phraseMatcher{phrase: p, re: regexp.MustCompile(expr)}
}

func (m *phraseMatcher) Match(text string) bool {
	if !strings.Contains(text, m.phrase) {
		return false
	}
	return m.re.MatchString(text)
}

func (m *phraseMatcher) String() string { return m.phrase }

type regexMatcher struct {
	re *regexp.Regexp
}

// Regex matches a case-insensitive regular expression.
func Regex(expr string) Matcher {
	return &regexMatcher{re: regexp.MustCompile(`(?i)` + expr)}
}

func (m *regexMatcher) Match(text string) bool { return m.re.MatchString(text) }

func (m *regexMatcher) String() string { return m.re.String() }

// Pattern is one weighted matcher tagged with the label it votes for.
type Pattern struct {
	Matcher Matcher
	Weight  float64
	Label   string
}

// PatternSet is an ordered list of weighted patterns.
type PatternSet []Pattern

// phrases builds a PatternSet of Phrase matchers sharing a label and weight.
func phrases(label string, weight float64, ps ...string) PatternSet {
	set := make(PatternSet, 0, len(ps))
	for _, p := range ps {
		set = append(set, Pattern{Matcher: Phrase(p), Weight: weight, Label: label})
	}
	return set
}

// joinSets concatenates pattern sets in order.
func joinSets(sets ...PatternSet) PatternSet {
	var out PatternSet
	for _, s := range sets {
		out = append(out, s...)
	}
	return out
}

// Score sums matched weights per label.
func (ps PatternSet) Score(text string) map[string]float64 {
	scores := make(map[string]float64)
	for _, p := range ps {
		if p.Matcher.Match(text) {
			scores[p.Label] += p.Weight
		}
	}
	return scores
}

// Strongest returns the single highest-weight match. Ties keep declaration order.
func (ps PatternSet) Strongest(text string) (Pattern, bool) {
	var best Pattern
	found := false
	for _, p := range ps {
		if !p.Matcher.Match(text) {
			continue
		}
		if !found || p.Weight > best.Weight {
			best = p
			found = true
		}
	}
	return best, found
}

// Matches returns every matching pattern in declaration order.
func (ps PatternSet) Matches(text string) []Pattern {
	var out []Pattern
	for _, p := range ps {
		if p.Matcher.Match(text) {
			out = append(out, p)
		}
	}
	return out
}

// Any reports whether at least one pattern matches.
func (ps PatternSet) Any(text string) bool {
	for _, p := range ps {
		if p.Matcher.Match(text) {
			return true
		}
	}
	return false
}

// Total sums the weights of all matches regardless of label.
func (ps PatternSet) Total(text string) float64 {
	total := 0.0
	for _, p := range ps {
		if p.Matcher.Match(text) {
			total += p.Weight
		}
	}
	return total
}

// pickBest returns the highest-scoring label, breaking ties by order.
// Labels with a score <= 0 never win.
func pickBest(scores map[string]float64, order []string) (string, float64) {
	bestLabel, bestScore := "", 0.0
	for _, label := range order {
		if s := scores[label]; s > bestScore {
			bestLabel, bestScore = label, s
		}
	}
	return bestLabel, bestScore
}

// normalize lowercases and collapses whitespace.
func normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// tokens splits normalized text into word tokens.
func tokens(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !(r == '\'' || r == '-' || isWordRune(r))
	})
}

func isWordRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r > 127
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
