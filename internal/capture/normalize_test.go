package capture

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/scopeview/internal/scope"
)

func ptr[T any](v T) *T { return &v }

func match(tag string, start, end int, name string) QueryMatch {
	m := QueryMatch{Captures: map[string]CaptureNode{
		tag: {Span: &Span{Start: start, End: end}},
	}}
	if name != "" {
		m.Captures[NameCapture] = CaptureNode{Text: name, Span: &Span{Start: start, End: start + len(name)}}
	}
	return m
}

func TestNormalize_QueryCaptures(t *testing.T) {
	t.Parallel()

	src := QueryCaptures{Matches: []QueryMatch{
		match("contract", 0, 120, "Test"),
		match("function", 20, 40, "test"),
		match("state_variable", 10, 18, "num"),
		match("local_variable", 25, 30, "x"),
	}}

	res, err := Normalize(src)
	require.NoError(t, err)
	assert.Empty(t, res.Diagnostics)
	require.Len(t, res.Constructs, 4)

	assert.Equal(t, scope.KindContract, res.Constructs[0].Kind)
	assert.Equal(t, "Test", *res.Constructs[0].Name)
	assert.Equal(t, scope.Range{Start: 0, End: 120, Label: "Test"}, res.Constructs[0].Range)
	assert.Equal(t, scope.KindFunction, res.Constructs[1].Kind)
	assert.Equal(t, scope.KindStateVariable, res.Constructs[2].Kind)
	assert.Equal(t, scope.KindLocalVariable, res.Constructs[3].Kind)
}

func TestNormalize_TagAliases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tag  string
		want scope.Kind
	}{
		{"class", scope.KindContract},
		{"struct", scope.KindContract},
		{"interface", scope.KindContract},
		{"type", scope.KindContract},
		{"method", scope.KindFunction},
		{"constructor", scope.KindFunction},
		{"callable", scope.KindFunction},
		{"field", scope.KindStateVariable},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			t.Parallel()
			res, err := Normalize(QueryCaptures{Matches: []QueryMatch{match(tt.tag, 0, 5, "a")}})
			require.NoError(t, err)
			require.Len(t, res.Constructs, 1)
			assert.Equal(t, tt.want, res.Constructs[0].Kind)
		})
	}
}

func TestNormalize_InfersVariableKind(t *testing.T) {
	t.Parallel()

	src := QueryCaptures{Matches: []QueryMatch{
		match("contract", 0, 100, "C"),
		match("variable", 5, 10, "field"),
		match("function", 20, 80, "f"),
		match("variable", 30, 40, "local"),
		match("variable", 200, 210, "global"),
	}}

	res, err := Normalize(src)
	require.NoError(t, err)
	require.Len(t, res.Constructs, 5)
	assert.Equal(t, scope.KindStateVariable, res.Constructs[1].Kind)
	assert.Equal(t, scope.KindLocalVariable, res.Constructs[3].Kind)
	assert.Equal(t, scope.KindLocalVariable, res.Constructs[4].Kind)
}

func TestNormalize_DropsMissingAndInvalidRanges(t *testing.T) {
	t.Parallel()

	src := QueryCaptures{Matches: []QueryMatch{
		{Captures: map[string]CaptureNode{"function": {Text: "f"}, NameCapture: {Text: "f"}}},
		match("function", 40, 10, "backwards"),
		{Captures: map[string]CaptureNode{NameCapture: {Text: "orphan"}}},
		match("contract", 0, 50, "Kept"),
	}}

	res, err := Normalize(src)
	require.NoError(t, err)
	require.Len(t, res.Constructs, 1)
	assert.Equal(t, "Kept", *res.Constructs[0].Name)

	require.Len(t, res.Diagnostics, 3)
	assert.Equal(t, scope.DiagMissingRange, res.Diagnostics[0].Code)
	assert.Equal(t, scope.DiagInvalidRange, res.Diagnostics[1].Code)
	assert.Equal(t, scope.DiagUnknownKind, res.Diagnostics[2].Code)
}

func TestNormalize_AnonymousName(t *testing.T) {
	t.Parallel()

	res, err := Normalize(QueryCaptures{Matches: []QueryMatch{match("function", 0, 10, "")}})
	require.NoError(t, err)
	require.Len(t, res.Constructs, 1)
	assert.Nil(t, res.Constructs[0].Name)
}

func TestNormalize_VisitorCallbacks(t *testing.T) {
	t.Parallel()

	src := VisitorCallbacks{Visit: func(h Handlers) error {
		h[HandlerContract](VisitNode{Span: &Span{Start: 0, End: 120}, Name: ptr("Test")})
		h[HandlerVariable](VisitNode{Span: &Span{Start: 10, End: 18}, Name: ptr("num"), StateVariable: ptr(true)})
		h[HandlerFunction](VisitNode{Span: &Span{Start: 20, End: 40}})
		h[HandlerVariable](VisitNode{Span: &Span{Start: 25, End: 30}, Name: ptr("x"), StateVariable: ptr(false)})
		h[HandlerVariable](VisitNode{Span: &Span{Start: 50, End: 55}, Name: ptr("y")})
		h[HandlerVariable](VisitNode{Name: ptr("lost")})
		return nil
	}}

	res, err := Normalize(src)
	require.NoError(t, err)
	require.Len(t, res.Constructs, 5)

	kinds := make([]scope.Kind, len(res.Constructs))
	for i, c := range res.Constructs {
		kinds[i] = c.Kind
	}
	assert.Equal(t, []scope.Kind{
		scope.KindContract, scope.KindStateVariable, scope.KindFunction,
		scope.KindLocalVariable, scope.KindStateVariable,
	}, kinds)
	assert.Nil(t, res.Constructs[2].Name)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, scope.DiagMissingRange, res.Diagnostics[0].Code)
}

func TestNormalize_VisitorError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	_, err := Normalize(VisitorCallbacks{Visit: func(Handlers) error { return boom }})
	require.ErrorIs(t, err, boom)

	_, err = Normalize(VisitorCallbacks{Visit: func(Handlers) error { panic("walker bug") }})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "walker bug")
}

func TestNormalize_UnknownShape(t *testing.T) {
	t.Parallel()

	_, err := Normalize(nil)
	assert.ErrorIs(t, err, ErrUnknownShape)
	_, err = Normalize(VisitorCallbacks{})
	assert.ErrorIs(t, err, ErrUnknownShape)
}

func TestShape(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "query", Shape(QueryCaptures{}))
	assert.Equal(t, "visitor", Shape(VisitorCallbacks{}))
	assert.Equal(t, "", Shape(nil))
}
