package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b Range
		want Relation
	}{
		{"a encloses b", Range{Start: 0, End: 120}, Range{Start: 20, End: 40}, AContainsB},
		{"b encloses a", Range{Start: 20, End: 40}, Range{Start: 0, End: 120}, BContainsA},
		{"shared start", Range{Start: 0, End: 120}, Range{Start: 0, End: 10}, AContainsB},
		{"shared end", Range{Start: 0, End: 120}, Range{Start: 100, End: 120}, AContainsB},
		{"equal", Range{Start: 5, End: 9, Label: "x"}, Range{Start: 5, End: 9, Label: "y"}, Equal},
		{"disjoint", Range{Start: 0, End: 10}, Range{Start: 20, End: 30}, Disjoint},
		{"adjacent", Range{Start: 0, End: 10}, Range{Start: 10, End: 20}, Disjoint},
		{"overlap", Range{Start: 0, End: 10}, Range{Start: 5, End: 15}, Ambiguous},
		{"zero width inside", Range{Start: 0, End: 10}, Range{Start: 4, End: 4}, AContainsB},
		{"zero width outside", Range{Start: 0, End: 10}, Range{Start: 12, End: 12}, Disjoint},
		{"zero width at start", Range{Start: 0, End: 10}, Range{Start: 0, End: 0}, AContainsB},
		{"zero width at end", Range{Start: 0, End: 10}, Range{Start: 10, End: 10}, Disjoint},
		{"zero width at end reversed", Range{Start: 10, End: 10}, Range{Start: 0, End: 10}, Disjoint},
		{"equal zero width", Range{Start: 10, End: 10}, Range{Start: 10, End: 10}, Equal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Containment(tt.a, tt.b))
		})
	}
}

func TestRange_Valid(t *testing.T) {
	t.Parallel()
	assert.True(t, Range{Start: 0, End: 0}.Valid())
	assert.True(t, Range{Start: 3, End: 9}.Valid())
	assert.False(t, Range{Start: 9, End: 3}.Valid())
	assert.False(t, Range{Start: -1, End: 3}.Valid())
}

func TestParseKind(t *testing.T) {
	t.Parallel()
	for _, k := range Kinds {
		got, err := ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("module")
	assert.Error(t, err)
}

func TestConstruct_Label(t *testing.T) {
	t.Parallel()
	name := "Test"
	empty := ""
	assert.Equal(t, "Test", Construct{Kind: KindContract, Name: &name}.Label())
	assert.Equal(t, "constructor", Construct{Kind: KindFunction}.Label())
	assert.Equal(t, "constructor", Construct{Kind: KindFunction, Name: &empty}.Label())
	assert.Equal(t, "anonymous", Construct{Kind: KindContract}.Label())
	assert.Equal(t, "unnamed", Construct{Kind: KindLocalVariable}.Label())
}

func TestID_AppendDepthParent(t *testing.T) {
	t.Parallel()

	contract := Root.Append("Test", 0)
	fn := contract.Append("test", 1)
	local := fn.Append("x", 0)

	assert.Equal(t, ID("Test#0"), contract)
	assert.Equal(t, ID("Test#0/test#1/x#0"), local)
	assert.Equal(t, 0, Root.Depth())
	assert.Equal(t, 1, contract.Depth())
	assert.Equal(t, 3, local.Depth())
	assert.Equal(t, fn, local.Parent())
	assert.Equal(t, Root, contract.Parent())
	assert.True(t, contract.IsParentOf(fn))
	assert.False(t, contract.IsParentOf(local))
	assert.True(t, Root.IsParentOf(contract))
}

func TestID_EscapesSeparators(t *testing.T) {
	t.Parallel()

	id := Root.Append("a/b#c%", 2).Append("inner", 0)
	assert.Equal(t, 2, id.Depth())

	segs, err := id.Segments()
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, Segment{Label: "a/b#c%", Ordinal: 2}, segs[0])
	assert.Equal(t, Segment{Label: "inner", Ordinal: 0}, segs[1])
}

func TestParseSegment_Invalid(t *testing.T) {
	t.Parallel()
	_, err := ParseSegment("noordinal")
	assert.Error(t, err)
	_, err = ParseSegment("x#-1")
	assert.Error(t, err)
	_, err = ParseSegment("x#abc")
	assert.Error(t, err)
}
