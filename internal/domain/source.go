package domain

import "github.com/google/uuid"

// Source is a leaf signal in the routing fabric: a physical crossbar input
// with a stable identity and a human-readable name.
//
// Identity is immutable for the lifetime of the object; PreferredOut may be
// assigned later, typically by a SourceGroup's assign-outputs binding, to
// say where this source "normally wants to appear" for companion routing.
type Source struct {
	UUID uuid.UUID
	Name string

	// PreferredOut is the output a SourceGroup has bound this source to for
	// companion routing. Nil until assigned.
	PreferredOut Output
}

// NewSource creates a fresh Source with a random v4 UUID.
func NewSource(name string) *Source {
	return &Source{
		UUID: uuid.New(),
		Name: name,
	}
}

func (s *Source) String() string {
	if s == nil {
		return "<nil source>"
	}
	return "Source(" + s.Name + ")"
}

// Sink is implemented by anything downstream of a MatrixOutput that wants to
// be notified when the source flowing through it changes. A parent Matrix
// installs itself (keyed by input index) as the Sink of any MatrixOutput it
// takes as an input.
type Sink interface {
	SourceChanged(newSource *Source)
}

// Output is the subset of MatrixOutput's surface that other packages need
// without importing the fabric package: companion routing (Source.PreferredOut)
// and upstream enumeration both only ever need to claim/query an output, never
// construct one. Keeping this here avoids an import cycle between domain and
// fabric.
type Output interface {
	Sink
	Select(src *Source, nolock bool) error
	Locked() bool
	Source() *Source
}

