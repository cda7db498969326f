// Package scope defines the range model shared by every stage of the
// pipeline: byte ranges of named constructs, the construct kinds, the
// containment relation between ranges, and hierarchical construct IDs.
package scope

import "fmt"

// Kind classifies a named construct.
type Kind string

const (
	KindContract      Kind = "contract"
	KindFunction      Kind = "function"
	KindStateVariable Kind = "stateVariable"
	KindLocalVariable Kind = "localVariable"
)

// Kinds lists every construct kind in display order.
var Kinds = []Kind{KindContract, KindFunction, KindStateVariable, KindLocalVariable}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindContract, KindFunction, KindStateVariable, KindLocalVariable:
		return true
	}
	return false
}

// ParseKind returns the Kind spelled s.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("scope: unknown kind %q", s)
	}
	return k, nil
}

// Range is the half-open byte interval [Start, End) a construct occupies,
// plus its display label.
type Range struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Label string `json:"label,omitempty"`
}

// Valid reports whether r is a usable interval.
func (r Range) Valid() bool {
	return r.Start >= 0 && r.Start <= r.End
}

// Width returns End - Start.
func (r Range) Width() int {
	return r.End - r.Start
}

// Encloses reports whether b lies within r. Equal spans enclose each other.
// A zero-width b at r.End is outside a non-empty r: the end is exclusive.
func (r Range) Encloses(b Range) bool {
	if b.Start == b.End && b.Start == r.End && r.Start < r.End {
		return false
	}
	return r.Start <= b.Start && b.End <= r.End
}

// Overlaps reports whether r and b share at least one byte.
func (r Range) Overlaps(b Range) bool {
	return r.Start < b.End && b.Start < r.End
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// Construct is one named construct reported by a parser frontend.
// A nil Name marks an anonymous construct.
type Construct struct {
	Kind  Kind    `json:"kind"`
	Name  *string `json:"name"`
	Range Range   `json:"range"`
}

// Label returns the construct's display label, substituting the kind's
// placeholder when the name is missing or empty.
func (c Construct) Label() string {
	if c.Name == nil || *c.Name == "" {
		return Placeholder(c.Kind)
	}
	return *c.Name
}

// Placeholder returns the label used for anonymous constructs of kind k.
func Placeholder(k Kind) string {
	switch k {
	case KindContract:
		return "anonymous"
	case KindFunction:
		return "constructor"
	default:
		return "unnamed"
	}
}

// Relation is the containment relation between two ranges.
type Relation int

const (
	Disjoint Relation = iota
	AContainsB
	BContainsA
	// Equal spans are resolved by the caller: the first one seen is the
	// ancestor.
	Equal
	// Ambiguous ranges overlap without nesting. Parsers must not produce
	// them.
	Ambiguous
)

func (r Relation) String() string {
	switch r {
	case Disjoint:
		return "disjoint"
	case AContainsB:
		return "a-contains-b"
	case BContainsA:
		return "b-contains-a"
	case Equal:
		return "equal"
	case Ambiguous:
		return "ambiguous"
	default:
		return fmt.Sprintf("Relation(%d)", int(r))
	}
}

// Containment classifies how a and b nest. Labels are ignored.
func Containment(a, b Range) Relation {
	switch {
	case a.Start == b.Start && a.End == b.End:
		return Equal
	case a.Encloses(b):
		return AContainsB
	case b.Encloses(a):
		return BContainsA
	case a.Overlaps(b):
		return Ambiguous
	default:
		return Disjoint
	}
}
