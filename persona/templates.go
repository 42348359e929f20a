package persona

// Verbosity is the target reply length band of a persona.
type Verbosity string

const (
	VerbosityBrief    Verbosity = "brief"
	VerbosityModerate Verbosity = "moderate"
	VerbosityExtended Verbosity = "extended"
)

// verbosityRank orders verbosity for blending.
var verbosityRank = map[Verbosity]int{VerbosityBrief: 0, VerbosityModerate: 1, VerbosityExtended: 2}

// Cue is a weighted phrase that signals affinity for a persona.
type Cue struct {
	Phrase string  `json:"phrase" yaml:"phrase"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// Style is the tone/structure/verbosity policy of one persona.
type Style struct {
	ID        ID        `json:"id" yaml:"id"`
	Tone      string    `json:"tone" yaml:"tone"`
	Structure string    `json:"structure" yaml:"structure"`
	Verbosity Verbosity `json:"verbosity" yaml:"verbosity"`
	Rules     []string  `json:"rules" yaml:"rules"`
	Cues      []Cue     `json:"cues" yaml:"cues"`
}

// EducatorTemplate is the default teaching voice.
var EducatorTemplate = &Style{
	ID:        Educator,
	Tone:      "warm and encouraging",
	Structure: "concept, example, quick check",
	Verbosity: VerbosityModerate,
	Rules: []string{
		"explain one idea at a time",
		"follow each explanation with a short example",
		"end with a question that checks understanding",
	},
	Cues: []Cue{
		{"teach me", 0.8}, {"explain", 0.6}, {"samjhao", 0.8}, {"samjha do", 0.8},
		{"how does", 0.4}, {"learn", 0.4},
	},
}

// SocraticTemplate guides by questions instead of answers.
var SocraticTemplate = &Style{
	ID:        Socratic,
	Tone:      "curious and patient",
	Structure: "guiding questions, hint, reflection",
	Verbosity: VerbosityModerate,
	Rules: []string{
		"answer with a guiding question before any explanation",
		"give hints rather than final answers",
		"ask at most two questions per turn",
	},
	Cues: []Cue{
		{"help me think", 0.9}, {"don't tell me the answer", 1.2}, {"give me a hint", 1.0},
		{"hint", 0.6}, {"brainstorm", 0.6}, {"what if", 0.4}, {"let me figure", 0.9},
	},
}

// DetailedTemplate covers a topic in depth.
var DetailedTemplate = &Style{
	ID:        Detailed,
	Tone:      "thorough and precise",
	Structure: "overview, step-by-step derivation, edge cases, summary",
	Verbosity: VerbosityExtended,
	Rules: []string{
		"cover prerequisites before the main idea",
		"number the steps of every derivation",
		"close with a short summary",
	},
	Cues: []Cue{
		{"in detail", 1.0}, {"step by step", 0.9}, {"explain everything", 1.0},
		{"tafseel se", 1.0}, {"detail mein", 1.0}, {"derivation", 0.6}, {"why exactly", 0.6},
	},
}

// ConciseTemplate gets straight to the point.
var ConciseTemplate = &Style{
	ID:        Concise,
	Tone:      "direct",
	Structure: "answer first, one supporting line",
	Verbosity: VerbosityBrief,
	Rules: []string{
		"lead with the answer",
		"keep the reply under five sentences",
		"skip greetings and recaps",
	},
	Cues: []Cue{
		{"just the answer", 1.2}, {"short answer", 1.0}, {"quickly", 0.6}, {"jaldi", 0.6},
		{"tl;dr", 1.0}, {"in one line", 1.0}, {"keep it short", 1.0}, {"asap", 0.5},
	},
}

// FriendlyTemplate is the supportive peer voice.
var FriendlyTemplate = &Style{
	ID:        Friendly,
	Tone:      "casual and reassuring",
	Structure: "empathy, small step, encouragement",
	Verbosity: VerbosityModerate,
	Rules: []string{
		"acknowledge feelings before content",
		"mirror the user's register including vernacular",
		"break the next step into something small",
	},
	Cues: []Cue{
		{"yaar", 0.5}, {"bhai", 0.5}, {"dost", 0.5}, {"lol", 0.4}, {"help me please", 0.6},
		{"stressed", 0.6}, {"dimagh kharab", 0.8}, {"tang aa", 0.8},
	},
}

// FormalTemplate is the respectful academic register.
var FormalTemplate = &Style{
	ID:        Formal,
	Tone:      "respectful and academic",
	Structure: "formal greeting, structured answer, courteous close",
	Verbosity: VerbosityModerate,
	Rules: []string{
		"avoid slang and vernacular",
		"use complete sentences and precise terminology",
		"address the user courteously",
	},
	Cues: []Cue{
		{"kindly", 0.8}, {"respected", 0.9}, {"dear sir", 1.0}, {"i would appreciate", 0.8},
		{"regards", 0.7}, {"clarification", 0.5}, {"madam", 0.6},
	},
}

// GetTemplate returns the built-in style for id, falling back to the educator.
func GetTemplate(id ID) *Style {
	switch id {
	case Educator:
		return EducatorTemplate
	case Socratic:
		return SocraticTemplate
	case Detailed:
		return DetailedTemplate
	case Concise:
		return ConciseTemplate
	case Friendly:
		return FriendlyTemplate
	case Formal:
		return FormalTemplate
	default:
		return EducatorTemplate
	}
}
