package scope

import (
	"fmt"
	"strconv"
	"strings"
)

// Separator joins the segments of an ID.
const Separator = "/"

// ordinalMark separates a segment's label from its sibling ordinal.
const ordinalMark = "#"

var (
	labelEscaper   = strings.NewReplacer("%", "%25", "/", "%2F", "#", "%23")
	labelUnescaper = strings.NewReplacer("%25", "%", "%2F", "/", "%23", "#")
)

// ID is a hierarchical construct identifier: the path of segments from the
// synthetic root to the construct. The root is the empty ID.
type ID string

// Root is the ID of the synthetic root.
const Root ID = ""

// Segment is one step of an ID path. Ordinal distinguishes siblings that
// share a label, e.g. overloaded functions.
type Segment struct {
	Label   string
	Ordinal int
}

func (s Segment) String() string {
	return labelEscaper.Replace(s.Label) + ordinalMark + strconv.Itoa(s.Ordinal)
}

// ParseSegment reverses Segment.String.
func ParseSegment(raw string) (Segment, error) {
	i := strings.LastIndex(raw, ordinalMark)
	if i < 0 {
		return Segment{}, fmt.Errorf("scope: segment %q has no ordinal", raw)
	}
	n, err := strconv.Atoi(raw[i+1:])
	if err != nil || n < 0 {
		return Segment{}, fmt.Errorf("scope: segment %q has invalid ordinal", raw)
	}
	return Segment{Label: labelUnescaper.Replace(raw[:i]), Ordinal: n}, nil
}

// IsRoot reports whether id is the synthetic root.
func (id ID) IsRoot() bool { return id == Root }

// Append returns the child ID formed by adding one segment.
func (id ID) Append(label string, ordinal int) ID {
	seg := Segment{Label: label, Ordinal: ordinal}.String()
	if id.IsRoot() {
		return ID(seg)
	}
	return ID(string(id) + Separator + seg)
}

// Depth returns the number of segments; 0 for the root.
func (id ID) Depth() int {
	if id.IsRoot() {
		return 0
	}
	return strings.Count(string(id), Separator) + 1
}

// Parent returns the ID with the last segment removed.
func (id ID) Parent() ID {
	i := strings.LastIndex(string(id), Separator)
	if i < 0 {
		return Root
	}
	return id[:i]
}

// Segments decodes every segment of id.
func (id ID) Segments() ([]Segment, error) {
	if id.IsRoot() {
		return nil, nil
	}
	parts := strings.Split(string(id), Separator)
	segs := make([]Segment, 0, len(parts))
	for _, p := range parts {
		s, err := ParseSegment(p)
		if err != nil {
			return nil, err
		}
		segs = append(segs, s)
	}
	return segs, nil
}

// IsParentOf reports whether child is exactly one segment below id.
func (id ID) IsParentOf(child ID) bool {
	return !child.IsRoot() && child.Parent() == id
}
