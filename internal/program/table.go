// Package program implements the FLOW-MATIC Program Table: the ordered,
// numbered collection of Operations a Host loads once and the engine then
// steps through. Grounded on the teacher's internal/bytecode.Chunk split
// between an immutable artifact (Code/Constants, written once by the
// compiler) and the runtime state a VM layers on top of it (its IP,
// stack) — here the parsed []parser.Operation slice is the immutable
// artifact, and the override map introduced by SET OPERATION statements
// is the one piece of mutable state layered over it, per spec.md §4.3:
// "the override map ... is consulted only at the moment of an
// unconditional transfer; it never rewrites the parsed operation body".
package program

import (
	"github.com/Zaneham/Flow-matic/internal/fmerrors"
	"github.com/Zaneham/Flow-matic/internal/parser"
)

// Table is the Program Table: operations indexed by number, in the order
// they were defined, plus the mutable override map SET OPERATION writes
// into at run time.
type Table struct {
	operations map[int]parser.Operation
	order      []int
	overrides  map[int]int
}

// Build constructs a Table from a parsed operation list, failing with
// fmerrors.DuplicateOperation if two operations share a number (spec.md
// §4.3 and §7).
func Build(ops []parser.Operation) (*Table, error) {
	t := &Table{
		operations: make(map[int]parser.Operation, len(ops)),
		overrides:  make(map[int]int),
	}
	for _, op := range ops {
		if _, exists := t.operations[op.Number]; exists {
			return nil, fmerrors.NewDuplicateOperation(op.Number)
		}
		t.operations[op.Number] = op
		t.order = append(t.order, op.Number)
	}
	return t, nil
}

// OperationAt returns the operation numbered n, per fmerrors.UnknownOperation
// if none exists.
func (t *Table) OperationAt(n int) (parser.Operation, error) {
	op, ok := t.operations[n]
	if !ok {
		return parser.Operation{}, fmerrors.NewUnknownOperation(n)
	}
	return op, nil
}

// Resolve applies the override map to the operation currently executing
// its terminal transfer, returning the number the engine should actually
// transfer control to. SET OPERATION source TO GO TO OPERATION target
// redirects source's OWN coded transfer to target, regardless of what
// source's statement actually names — it never edits the Statement's
// ThenTarget/JumpTarget field, only this map. An operation number with no
// override resolves to the statement's own coded target, fallbackTarget.
func (t *Table) Resolve(opNumber, fallbackTarget int) int {
	if to, ok := t.overrides[opNumber]; ok {
		return to
	}
	return fallbackTarget
}

// SetOverride records a SET OPERATION source TO GO TO OPERATION target
// directive. A later SetOverride call for the same source replaces the
// prior one; FLOW-MATIC programs are free to redirect a jump target
// repeatedly as they run.
func (t *Table) SetOverride(source, target int) {
	t.overrides[source] = target
}

// First returns the lowest-numbered operation in the table, the Program
// Table's entry point.
func (t *Table) First() (parser.Operation, bool) {
	lowest, ok := t.lowestNumber()
	if !ok {
		return parser.Operation{}, false
	}
	return t.operations[lowest], true
}

// NextAfter returns the operation with the smallest number greater than n,
// per spec.md §4.3 ("the smallest number > N that has an operation").
// Operations need not be numbered contiguously or inserted in ascending
// order; this always does a full scan rather than assuming either.
// The second return is false when no such operation exists, signaling
// natural end-of-program.
func (t *Table) NextAfter(n int) (parser.Operation, bool) {
	best, found := 0, false
	for _, num := range t.order {
		if num > n && (!found || num < best) {
			best, found = num, true
		}
	}
	if !found {
		return parser.Operation{}, false
	}
	return t.operations[best], true
}

func (t *Table) lowestNumber() (int, bool) {
	lowest, found := 0, false
	for _, num := range t.order {
		if !found || num < lowest {
			lowest, found = num, true
		}
	}
	return lowest, found
}

// Last returns the highest operation number in the table, or 0 for an
// empty table.
func (t *Table) Last() int {
	highest, found := 0, false
	for _, num := range t.order {
		if !found || num > highest {
			highest, found = num, true
		}
	}
	return highest
}

// Len reports how many operations the table holds.
func (t *Table) Len() int {
	return len(t.order)
}
