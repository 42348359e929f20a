package persona

import "math"

// Catalog maps every persona to its style. A Catalog is read-only after
// construction and safe for concurrent use.
type Catalog struct {
	styles map[ID]*Style
}

// DefaultCatalog returns the built-in styles.
func DefaultCatalog() *Catalog {
	c := &Catalog{styles: make(map[ID]*Style, len(AllIDs))}
	for _, id := range AllIDs {
		c.styles[id] = GetTemplate(id)
	}
	return c
}

// Get returns the style for id, falling back to the default persona.
func (c *Catalog) Get(id ID) *Style {
	if c == nil {
		return GetTemplate(id)
	}
	if s, ok := c.styles[id]; ok {
		return s
	}
	return c.styles[Default]
}

// Cues returns each persona's affinity cues in AllIDs order.
func (c *Catalog) Cues() map[ID][]Cue {
	out := make(map[ID][]Cue, len(AllIDs))
	for _, id := range AllIDs {
		out[id] = c.Get(id).Cues
	}
	return out
}

// Resolve turns a persona into the concrete style to apply. A Blended
// persona takes tone and structure from the dominant side and interpolates
// verbosity by ratio.
func (c *Catalog) Resolve(p Persona) Style {
	switch v := p.(type) {
	case Simple:
		return *c.Get(v.ID)
	case Blended:
		primary, secondary := c.Get(v.PrimaryID), c.Get(v.SecondaryID)
		lead, follow := primary, secondary
		if v.Ratio < 0.5 {
			lead, follow = secondary, primary
		}
		out := *lead
		out.Rules = append(append([]string(nil), lead.Rules...), follow.Rules...)
		out.Verbosity = blendVerbosity(primary.Verbosity, secondary.Verbosity, v.Ratio)
		return out
	default:
		return *c.Get(Default)
	}
}

func blendVerbosity(a, b Verbosity, ratio float64) Verbosity {
	r := float64(verbosityRank[a])*ratio + float64(verbosityRank[b])*(1-ratio)
	rank := int(math.Round(r))
	for v, n := range verbosityRank {
		if n == rank {
			return v
		}
	}
	return VerbosityModerate
}
