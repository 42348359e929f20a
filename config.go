package convpolicy

// ──────────────────────────────────────────────
// EngineConfig: tunable thresholds and bounds
// ──────────────────────────────────────────────

// EngineConfig controls every empirical threshold of the engine. The zero
// value of any field means "use the default".
type EngineConfig struct {
	// Trailing history window analysed per turn, 5..20.
	WindowSize int `yaml:"window_size" validate:"omitempty,min=5,max=20"`

	// Minimum scenario weight for conviction to fire.
	ConvictionThreshold float64 `yaml:"conviction_threshold" validate:"omitempty,gt=0,lte=1"`

	// Lexical affinity score above which it overrides the rule persona.
	PersonaOverrideThreshold float64 `yaml:"persona_override_threshold" validate:"omitempty,gt=0,lte=10"`
	// Minimum final persona confidence for the persona to be enforced.
	PersonaActivationThreshold float64 `yaml:"persona_activation_threshold" validate:"omitempty,gt=0,lte=1"`
	// Raw persona confidence below which blending is considered.
	BlendThreshold float64 `yaml:"blend_threshold" validate:"omitempty,gt=0,lte=1"`
	// Feedback samples a persona needs before it can be preferred.
	BlendMinSamples int `yaml:"blend_min_samples" validate:"omitempty,min=1"`

	// Smoothing factor of preference moving averages.
	PreferenceAlpha float64 `yaml:"preference_alpha" validate:"omitempty,gt=0,lte=1"`
	MaxFeedbackLog  int     `yaml:"max_feedback_log" validate:"omitempty,min=1"`
	MaxInteractions int     `yaml:"max_interactions" validate:"omitempty,min=1"`
	MaxEvents       int     `yaml:"max_events" validate:"omitempty,min=1"`

	// Bounded recent-persona list kept per session.
	MaxRecentPersonas int `yaml:"max_recent_personas" validate:"omitempty,min=1"`
	// Messages longer than this (runes) skip inline style-feedback detection.
	FeedbackMaxLength int `yaml:"feedback_max_length" validate:"omitempty,min=1"`
}

// DefaultEngineConfig returns the recommended baseline.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		WindowSize:                 12,
		ConvictionThreshold:        0.6,
		PersonaOverrideThreshold:   1.5,
		PersonaActivationThreshold: 0.6,
		BlendThreshold:             0.7,
		BlendMinSamples:            3,
		PreferenceAlpha:            0.2,
		MaxFeedbackLog:             50,
		MaxInteractions:            50,
		MaxEvents:                  10,
		MaxRecentPersonas:          10,
		FeedbackMaxLength:          80,
	}
}

// Normalize fills zero fields with defaults and clamps the window to 5..20.
func (c EngineConfig) Normalize() EngineConfig {
	d := DefaultEngineConfig()
	if c.WindowSize == 0 {
		c.WindowSize = d.WindowSize
	}
	c.WindowSize = int(clamp(float64(c.WindowSize), 5, 20))
	if c.ConvictionThreshold <= 0 {
		c.ConvictionThreshold = d.ConvictionThreshold
	}
	if c.PersonaOverrideThreshold <= 0 {
		c.PersonaOverrideThreshold = d.PersonaOverrideThreshold
	}
	if c.PersonaActivationThreshold <= 0 {
		c.PersonaActivationThreshold = d.PersonaActivationThreshold
	}
	if c.BlendThreshold <= 0 {
		c.BlendThreshold = d.BlendThreshold
	}
	if c.BlendMinSamples <= 0 {
		c.BlendMinSamples = d.BlendMinSamples
	}
	if c.PreferenceAlpha <= 0 || c.PreferenceAlpha > 1 {
		c.PreferenceAlpha = d.PreferenceAlpha
	}
	if c.MaxFeedbackLog <= 0 {
		c.MaxFeedbackLog = d.MaxFeedbackLog
	}
	if c.MaxInteractions <= 0 {
		c.MaxInteractions = d.MaxInteractions
	}
	if c.MaxEvents <= 0 {
		c.MaxEvents = d.MaxEvents
	}
	if c.MaxRecentPersonas <= 0 {
		c.MaxRecentPersonas = d.MaxRecentPersonas
	}
	if c.FeedbackMaxLength <= 0 {
		c.FeedbackMaxLength = d.FeedbackMaxLength
	}
	return c
}
