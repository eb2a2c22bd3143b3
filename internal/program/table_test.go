package program

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zaneham/Flow-matic/internal/fmerrors"
	"github.com/Zaneham/Flow-matic/internal/parser"
)

func ops(numbers ...int) []parser.Operation {
	var out []parser.Operation
	for _, n := range numbers {
		out = append(out, parser.Operation{Number: n, Statements: []parser.Statement{{Kind: parser.StmtStop}}})
	}
	return out
}

func TestBuildRejectsDuplicateOperationNumber(t *testing.T) {
	_, err := Build(ops(1, 2, 2))
	require.Error(t, err)
	fmErr, ok := err.(*fmerrors.FlowMaticError)
	require.True(t, ok)
	assert.Equal(t, fmerrors.DuplicateOperation, fmErr.Kind)
}

func TestOperationAtUnknownNumber(t *testing.T) {
	tbl, err := Build(ops(1, 2))
	require.NoError(t, err)

	_, err = tbl.OperationAt(99)
	require.Error(t, err)
	fmErr, ok := err.(*fmerrors.FlowMaticError)
	require.True(t, ok)
	assert.Equal(t, fmerrors.UnknownOperation, fmErr.Kind)
}

func TestNextAfterFollowsNumericOrderNotDefinitionOrder(t *testing.T) {
	// Sparse, out-of-numeric-order insertion is legal; NextAfter walks
	// ascending operation number regardless of insertion order, per
	// spec.md §4.3.
	tbl, err := Build(ops(10, 3, 7))
	require.NoError(t, err)

	next, ok := tbl.NextAfter(3)
	require.True(t, ok)
	assert.Equal(t, 7, next.Number)

	next, ok = tbl.NextAfter(7)
	require.True(t, ok)
	assert.Equal(t, 10, next.Number)

	_, ok = tbl.NextAfter(10)
	assert.False(t, ok, "highest-numbered operation has no next")
}

func TestNextAfterSkipsGapsInNumbering(t *testing.T) {
	tbl, err := Build(ops(1, 5, 9))
	require.NoError(t, err)

	next, ok := tbl.NextAfter(2)
	require.True(t, ok)
	assert.Equal(t, 5, next.Number, "NextAfter(2) should find 5, the smallest defined number > 2")
}

func TestResolveWithNoOverrideFallsBackToCodedTarget(t *testing.T) {
	tbl, _ := Build(ops(1, 2, 3))
	assert.Equal(t, 3, tbl.Resolve(2, 3))
}

func TestSetOverrideRedirectsOwningOperationsTransfer(t *testing.T) {
	tbl, _ := Build(ops(1, 2, 3))
	// Operation 2's own coded transfer targets 3; the override redirects
	// it to something else without touching the parsed statement.
	tbl.SetOverride(2, 1)

	assert.Equal(t, 1, tbl.Resolve(2, 3))

	op, err := tbl.OperationAt(2)
	require.NoError(t, err)
	assert.Equal(t, 2, op.Number)
}

func TestSetOverrideCanBeReplaced(t *testing.T) {
	tbl, _ := Build(ops(1, 2, 3))
	tbl.SetOverride(1, 2)
	tbl.SetOverride(1, 3)
	assert.Equal(t, 3, tbl.Resolve(1, 99))
}

func TestFirstAndLast(t *testing.T) {
	tbl, _ := Build(ops(5, 1, 9))
	first, ok := tbl.First()
	require.True(t, ok)
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, 9, tbl.Last())
}

func TestLen(t *testing.T) {
	tbl, _ := Build(ops(1, 2, 3, 4))
	assert.Equal(t, 4, tbl.Len())
}
