package convpolicy

import (
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"
)

// ──────────────────────────────────────────────
// Default bilingual style-feedback patterns
// ──────────────────────────────────────────────

// Style preference keys carried by StyleChanges and profile overrides.
const (
	StyleKeyLength     = "length"
	StyleKeyFormality  = "formality"
	StyleKeyVernacular = "vernacular"
)

// styleKeyOrder fixes detection order across keys.
var styleKeyOrder = []string{StyleKeyLength, StyleKeyFormality, StyleKeyVernacular}

// DefaultFeedbackPatterns provides English and romanized Urdu/Hindi phrases
// for inline style feedback.
// Structure: pref_key -> pref_value -> []phrases
func DefaultFeedbackPatterns() map[string]map[string][]string {
	return map[string]map[string][]string{
		StyleKeyLength: {
			string(LengthShort): {"too long", "bohat lamba", "bahut lamba", "lamba hai", "shorter please",
				"keep it short", "tl;dr", "mukhtasar", "short mein batao", "chhota karo"},
			string(LengthLong): {"more detail", "in detail", "explain more", "tafseel se", "detail mein",
				"zyada batao", "elaborate", "too short", "thora aur batao"},
		},
		StyleKeyFormality: {
			string(FormalityCasual): {"be casual", "no need to be formal", "talk normally", "dosti wali",
				"itna formal nahi", "friendly raho"},
			string(FormalityFormal): {"be formal", "more formal", "formal mein", "be professional",
				"professional tone", "tameez se"},
		},
		StyleKeyVernacular: {
			"more": {"urdu mein", "roman urdu", "hinglish mein", "apni zuban mein", "desi style"},
			"less": {"in english", "english mein", "english please", "only english", "no urdu"},
		},
	}
}

// DefaultStyleHints maps preference values to prompt text for the generative backend.
func DefaultStyleHints() map[string]map[string]string {
	return map[string]map[string]string{
		StyleKeyLength: {
			string(LengthShort): "Keep replies short: a few sentences, answer first.",
			string(LengthLong):  "The user wants thorough replies; expand with steps and examples.",
		},
		StyleKeyFormality: {
			string(FormalityCasual): "Use a relaxed, conversational register.",
			string(FormalityFormal): "Use a courteous, formal register without slang.",
		},
		StyleKeyVernacular: {
			"more": "Mix in romanized Urdu/Hindi where natural.",
			"less": "Reply in plain English only.",
		},
	}
}

// ──────────────────────────────────────────────
// FeedbackResult
// ──────────────────────────────────────────────

// StyleChanges maps a style key to its new value.
type StyleChanges map[string]string

// FeedbackResult holds the detection result.
type FeedbackResult struct {
	// Matched indicates whether any feedback signal was detected.
	Matched bool
	// Changes contains preference changes: pref_key -> new_value.
	Changes StyleChanges
	// Triggers contains matched phrases: pref_key -> phrase.
	Triggers map[string]string
}

// OnChangeFn is called when preferences are updated.
type OnChangeFn func(userID string, changes StyleChanges)

// ──────────────────────────────────────────────
// FeedbackDetector
// ──────────────────────────────────────────────

// FeedbackDetector detects inline style feedback ("too long", "bohat lamba hai")
// and maps it to preference adjustments.
//
// Usage:
//
//	detector := convpolicy.NewFeedbackDetector(nil, 80, nil)
//	result := detector.Detect("yaar bohat lamba hai", currentPrefs)
//	if result.Matched {
//	    store.ApplyStyleChanges(result.Changes)
//	}
type FeedbackDetector struct {
	sets      map[string]PatternSet
	maxLength int
	onChange  OnChangeFn
	logger    *slog.Logger
}

// NewFeedbackDetector creates a new detector.
//
// Parameters:
//   - patterns: custom phrase patterns (nil = use defaults)
//   - maxLength: messages longer than this many runes are skipped (0 = default 80)
//   - onChange: optional callback when preferences change
func NewFeedbackDetector(patterns map[string]map[string][]string, maxLength int, onChange OnChangeFn) *FeedbackDetector {
	if patterns == nil {
		patterns = DefaultFeedbackPatterns()
	}
	if maxLength <= 0 {
		maxLength = DefaultEngineConfig().FeedbackMaxLength
	}
	d := &FeedbackDetector{
		sets:      make(map[string]PatternSet),
		maxLength: maxLength,
		onChange:  onChange,
		logger:    slog.Default().With("component", "feedback"),
	}
	for key, values := range patterns {
		for value, ps := range values {
			d.AddPattern(key, value, ps)
		}
	}
	return d
}

// AddPattern appends phrases for a specific preference key/value.
//
// Example:
//
//	detector.AddPattern("vernacular", "less", []string{"angrezi mein"})
func (d *FeedbackDetector) AddPattern(prefKey, prefValue string, phrasesList []string) {
	set := d.sets[prefKey]
	// values are kept sorted so equal-weight matches resolve the same way every run
	set = append(set, phrases(prefValue, 1, phrasesList...)...)
	sort.SliceStable(set, func(i, j int) bool { return set[i].Label < set[j].Label })
	d.sets[prefKey] = set
}

// Detect checks a message for feedback signals.
// Changes only includes values that differ from current (nil = no dedup).
func (d *FeedbackDetector) Detect(message string, current map[string]string) FeedbackResult {
	result := FeedbackResult{
		Changes:  make(StyleChanges),
		Triggers: make(map[string]string),
	}

	msg := strings.TrimSpace(message)
	if msg == "" || !utf8.ValidString(msg) || utf8.RuneCountInString(msg) > d.maxLength {
		return result
	}
	norm := normalize(msg)

	for _, key := range d.keys() {
		p, ok := d.sets[key].Strongest(norm)
		if !ok || current[key] == p.Label {
			continue
		}
		result.Matched = true
		result.Changes[key] = p.Label
		result.Triggers[key] = p.Matcher.String()
	}
	return result
}

// DetectAndAdapt detects feedback, updates preferences in place and invokes
// the onChange callback if set.
func (d *FeedbackDetector) DetectAndAdapt(userID, message string, preferences map[string]string) FeedbackResult {
	result := d.Detect(message, preferences)
	if !result.Matched {
		return result
	}
	for k, v := range result.Changes {
		preferences[k] = v
		d.logger.Debug("style preference adapted",
			"user", userID, "key", k, "value", v, "phrase", result.Triggers[k])
	}
	if d.onChange != nil {
		d.onChange(userID, result.Changes)
	}
	return result
}

// keys returns known keys first in fixed order, then custom keys sorted.
func (d *FeedbackDetector) keys() []string {
	keys := make([]string, 0, len(d.sets))
	seen := make(map[string]bool, len(styleKeyOrder))
	for _, k := range styleKeyOrder {
		if _, ok := d.sets[k]; ok {
			keys = append(keys, k)
		}
		seen[k] = true
	}
	var extra []string
	for k := range d.sets {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

// ──────────────────────────────────────────────
// BuildStyleHints
// ──────────────────────────────────────────────

// BuildStyleHints turns style preferences into prompt lines, in key order.
// hints nil = DefaultStyleHints. Returns nil when nothing applies.
func BuildStyleHints(preferences map[string]string, hints map[string]map[string]string) []string {
	if hints == nil {
		hints = DefaultStyleHints()
	}
	var out []string
	for _, key := range styleKeyOrder {
		if text, ok := hints[key][preferences[key]]; ok {
			out = append(out, text)
		}
	}
	return out
}
