// Package persona defines the response personas and their style catalog.
package persona

import "fmt"

// ID names a response persona.
type ID string

const (
	Educator ID = "educator"
	Socratic ID = "socratic"
	Detailed ID = "detailed"
	Concise  ID = "concise"
	Friendly ID = "friendly"
	Formal   ID = "formal"
)

// Default is the persona reported when nothing more specific applies.
const Default = Educator

// AllIDs lists every persona in tie-break order.
var AllIDs = []ID{Educator, Socratic, Detailed, Concise, Friendly, Formal}

// Valid reports whether id is a known persona.
func (id ID) Valid() bool {
	for _, known := range AllIDs {
		if id == known {
			return true
		}
	}
	return false
}

// Persona is either a Simple persona or a Blended pair.
type Persona interface {
	// Primary is the persona that dominates the reply.
	Primary() ID
	String() string
	isPersona()
}

// Simple is a single persona applied as-is.
type Simple struct {
	ID ID `json:"id"`
}

func (s Simple) Primary() ID    { return s.ID }
func (s Simple) String() string { return string(s.ID) }
func (Simple) isPersona()       {}

// Blended mixes a primary persona with the user's preferred one.
// Ratio is the primary's share in [0,1].
type Blended struct {
	PrimaryID   ID      `json:"primary"`
	SecondaryID ID      `json:"secondary"`
	Ratio       float64 `json:"ratio"`
}

func (b Blended) Primary() ID { return b.PrimaryID }

func (b Blended) String() string {
	return fmt.Sprintf("%s(%.0f%%)+%s", b.PrimaryID, b.Ratio*100, b.SecondaryID)
}

func (Blended) isPersona() {}
