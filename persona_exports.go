package convpolicy

// ──────────────────────────────────────────────
// Persona re-exports: stable public API
// ──────────────────────────────────────────────
//
// Re-exports the persona types that appear in engine results so callers can
// work from the root package:
//
//	if d.Persona.PersonaID == convpolicy.PersonaSocratic { ... }
//
// For the style catalog and YAML overrides, import the sub-package directly:
//
//	import "github.com/cyberFlowTech/zapry-convpolicy-go/persona"

import "github.com/cyberFlowTech/zapry-convpolicy-go/persona"

// ─── Core types ───

// PersonaID names a response persona.
type PersonaID = persona.ID

// Persona is either a SimplePersona or a BlendedPersona.
type Persona = persona.Persona

// SimplePersona is a single persona applied as-is.
type SimplePersona = persona.Simple

// BlendedPersona mixes a primary persona with the user's preferred one.
type BlendedPersona = persona.Blended

// PersonaStyle is the tone/structure/verbosity policy of one persona.
type PersonaStyle = persona.Style

// PersonaCatalog maps every persona to its style.
type PersonaCatalog = persona.Catalog

// ─── Persona ids ───

const (
	PersonaEducator = persona.Educator
	PersonaSocratic = persona.Socratic
	PersonaDetailed = persona.Detailed
	PersonaConcise  = persona.Concise
	PersonaFriendly = persona.Friendly
	PersonaFormal   = persona.Formal
)

// ─── Functions ───

// DefaultPersonaCatalog returns the built-in persona styles.
func DefaultPersonaCatalog() *PersonaCatalog { return persona.DefaultCatalog() }
