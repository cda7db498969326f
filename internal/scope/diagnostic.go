package scope

import "fmt"

// Diagnostic codes.
const (
	DiagMissingRange = "missing_range"
	DiagInvalidRange = "invalid_range"
	DiagUnknownKind  = "unknown_kind"
	DiagAmbiguous    = "ambiguous_containment"
	DiagDuplicate    = "duplicate_construct"
)

// Diagnostic records a non-fatal problem found while normalizing captures
// or building a graph. The affected construct is dropped or placed by a
// fallback rule; diagnostics never abort a build.
type Diagnostic struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Range   *Range `json:"range,omitempty"`
}

func (d Diagnostic) String() string {
	if d.Range != nil {
		return fmt.Sprintf("%s %s: %s", d.Code, d.Range, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Code, d.Message)
}
