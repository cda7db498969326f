package scopeview

import (
	"crypto/sha256"
	"fmt"
)

// sourceKey identifies a build: the same frontend over the same text
// always yields the same graph.
func sourceKey(frontend, text string) string {
	h := sha256.New()
	fmt.Fprintf(h, "frontend:%s\n", frontend)
	fmt.Fprintf(h, "source:%d\n", len(text))
	h.Write([]byte(text))
	return fmt.Sprintf("%x", h.Sum(nil))
}
