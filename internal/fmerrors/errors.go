// Package fmerrors implements the FLOW-MATIC error taxonomy.
package fmerrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies one of the error categories spec.md assigns to the
// interpreter: a handful raised at load time, the rest at run time.
type Kind string

const (
	Syntax                  Kind = "SYNTAX"
	DuplicateOperation      Kind = "DUPLICATE-OPERATION"
	UnknownOperation        Kind = "UNKNOWN-OPERATION"
	UnknownAlias            Kind = "UNKNOWN-ALIAS"
	UnknownField            Kind = "UNKNOWN-FIELD"
	ArithZeroDivide         Kind = "ARITH-ZERO-DIVIDE"
	TypeCoerce              Kind = "TYPE-COERCE"
	EndOfProgramFallthrough Kind = "END-OF-PROGRAM-FALLTHROUGH"
)

// loadTimeKinds is the set of errors raised while building the Program
// Table, before any operation has executed.
var loadTimeKinds = map[Kind]bool{
	Syntax:             true,
	DuplicateOperation: true,
}

// IsLoadTime reports whether k is raised during LoadProgram rather than Run.
func (k Kind) IsLoadTime() bool {
	return loadTimeKinds[k]
}

// FlowMaticError is the single error type surfaced across the package
// boundary. It carries the taxonomy tag from spec.md §7, the operation
// number active when the failure occurred (0 for load-time errors, which
// have no PC yet), a human-readable detail, and an optional wrapped cause.
type FlowMaticError struct {
	Kind      Kind
	Operation int
	Detail    string
	cause     error
}

func (e *FlowMaticError) Error() string {
	if e.Kind.IsLoadTime() {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("%s at operation %d: %s", e.Kind, e.Operation, e.Detail)
}

// Unwrap exposes the wrapped cause, if any, so errors.Is/errors.As from the
// standard library keep working for callers that don't care about Kind.
func (e *FlowMaticError) Unwrap() error {
	return e.cause
}

// WithOperation attaches the program counter active when the error fired.
func (e *FlowMaticError) WithOperation(n int) *FlowMaticError {
	e.Operation = n
	return e
}

// WithCause wraps an underlying error using pkg/errors, preserving its
// stack trace for debugging while keeping the FlowMaticError's own Kind
// as the error identity callers match on.
func (e *FlowMaticError) WithCause(cause error) *FlowMaticError {
	if cause != nil {
		e.cause = errors.Wrap(cause, e.Detail)
	}
	return e
}

func newf(kind Kind, format string, args ...interface{}) *FlowMaticError {
	return &FlowMaticError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// New constructs an error of the given kind with a formatted detail.
func New(kind Kind, format string, args ...interface{}) *FlowMaticError {
	return newf(kind, format, args...)
}

// NewSyntax reports malformed source: unknown keyword, missing terminator,
// bad operation number.
func NewSyntax(format string, args ...interface{}) *FlowMaticError {
	return newf(Syntax, format, args...)
}

// NewDuplicateOperation reports two operations sharing a number.
func NewDuplicateOperation(number int) *FlowMaticError {
	return newf(DuplicateOperation, "operation %d already defined", number)
}

// NewUnknownOperation reports a branch naming an operation not in the table.
func NewUnknownOperation(number int) *FlowMaticError {
	return newf(UnknownOperation, "no operation numbered %d", number)
}

// NewUnknownAlias reports a statement referencing an alias never declared.
func NewUnknownAlias(alias string) *FlowMaticError {
	return newf(UnknownAlias, "alias %q was never declared", alias)
}

// NewUnknownField reports a field reference against a record missing
// that key, for contexts where that is a hard failure (arithmetic source),
// as opposed to MOVE source, which treats it as null per spec.md §7 policy.
func NewUnknownField(alias, field string) *FlowMaticError {
	return newf(UnknownField, "field %s not present on working record %s", field, alias)
}

// NewArithZeroDivide reports a DIVIDE whose divisor evaluated to zero.
func NewArithZeroDivide() *FlowMaticError {
	return newf(ArithZeroDivide, "division by zero")
}

// NewTypeCoerce reports arithmetic on a non-numeric value, or a comparison
// between values that numeric and string coercion both failed to relate.
func NewTypeCoerce(format string, args ...interface{}) *FlowMaticError {
	return newf(TypeCoerce, format, args...)
}

// NewEndOfProgramFallthrough reports the engine running past the last
// operation without a STOP. Non-fatal: per spec.md §7 it is equivalent to
// STOP, but its Kind lets a caller with FallthroughPolicy == FallthroughWarn
// distinguish it from a genuine halt.
func NewEndOfProgramFallthrough(lastOperation int) *FlowMaticError {
	return newf(EndOfProgramFallthrough, "ran past operation %d with no STOP", lastOperation)
}
