package runtime

import (
	"fmt"

	"github.com/risor-io/risor/object"
)

// --- Map extraction helpers ---

func extractMap(obj object.Object) (map[string]object.Object, error) {
	m, ok := obj.(*object.Map)
	if !ok {
		return nil, fmt.Errorf("expected map, got %s", obj.Type())
	}
	return m.Value(), nil
}

func getString(m map[string]object.Object, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	if s, ok := v.(*object.String); ok {
		return s.Value()
	}
	return ""
}

func getOptionalInt(m map[string]object.Object, key string) (int, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, false
	}
	if _, ok := v.(*object.NilType); ok {
		return 0, false
	}
	if i, ok := v.(*object.Int); ok {
		return int(i.Value()), true
	}
	if f, ok := v.(*object.Float); ok {
		return int(f.Value()), true
	}
	return 0, false
}
