// Package parser turns a FLOW-MATIC token stream into Operations, each a
// sequence of tagged Statement variants. Per spec.md §9's redesign note,
// statements are NOT modeled as an interface hierarchy dispatched through
// a visitor (the teacher's own AST shape, in internal/parser/ast.go and
// stmt.go, uses exactly that pattern for its own, much larger, language):
// FLOW-MATIC's statement set is closed and small, and the engine's hot
// loop must dispatch on it without the indirection or the string
// comparisons a keyword-driven interpreter would otherwise need. A single
// tagged struct with a Kind enum and a flat set of optional operand
// fields gives the engine a plain switch over Kind instead.
package parser

import "github.com/shopspring/decimal"

// StmtKind tags which statement shape a Statement holds.
type StmtKind int

const (
	StmtInputDecl StmtKind = iota
	StmtOutputDecl
	StmtHSPDecl
	StmtReadItem
	StmtWriteItem
	StmtPrintItem
	StmtTransfer
	StmtMove
	StmtCompare
	StmtTest
	StmtIf
	StmtOtherwise
	StmtJump
	StmtSetOperation
	StmtArithmetic
	StmtStop
	StmtCloseOut
)

// FileDecl names one alias/logical-name pair inside an INPUT declaration,
// which may name several files in one statement (spec.md §4.2: "INPUT
// name1 FILE-α name2 FILE-β …").
type FileDecl struct {
	LogicalName string
	Alias       string
}

// FieldRef is a `FIELD-NAME (alias)` reference: a field on the working
// record or current input record belonging to the named alias.
type FieldRef struct {
	Field string
	Alias string
}

// Operand is either a FieldRef or a literal Scalar-producing value.
// Exactly one of the two forms is populated, selected by IsField.
type Operand struct {
	IsField bool
	Field   FieldRef

	IsText bool
	Text   string

	IsNumber bool
	Number   decimal.Decimal
}

// Condition tags the predicate an IfStmt or implicit OTHERWISE test.
type Condition int

const (
	CondEqual Condition = iota
	CondLess
	CondGreater
	CondEndOfData
	CondZero
	CondPositive
	CondNegative
)

// ActionKind tags which shape an IF/OTHERWISE action takes. spec.md §4.2's
// grammar is "IF <cond> <action>", and the source corpus's own "SET
// OPERATION demo" (original_source/demo.py) shows <action> taking either
// shape: a control transfer, or a non-transferring SET OPERATION that
// edits the override map and lets the operation continue.
type ActionKind int

const (
	// ActionTransfer is "JUMP TO OPERATION N" / "GO TO OPERATION N":
	// a conditional transfer to its own coded target once the
	// IF/OTHERWISE fires; the override map is not consulted for it.
	ActionTransfer ActionKind = iota
	// ActionSetOperation is "SET OPERATION N TO GO TO OPERATION M" taken
	// as an IF/OTHERWISE action: non-transferring, per spec.md §4.4 —
	// the operation continues with its next statement.
	ActionSetOperation
)

// ArithOp tags which of the four arithmetic statement shapes a
// StmtArithmetic statement is.
type ArithOp int

const (
	ArithAdd ArithOp = iota
	ArithSubtract
	ArithMultiply
	ArithDivide
)

// Statement is one semicolon-separated phrase within an Operation. It is a
// flat tagged struct: the Kind field selects which of the operand groups
// below are meaningful for that statement.
type Statement struct {
	Kind StmtKind
	Line int

	// StmtInputDecl
	InputFiles []FileDecl

	// StmtOutputDecl
	OutputFile FileDecl

	// StmtHSPDecl
	HSPAlias string

	// StmtReadItem / StmtWriteItem / StmtPrintItem
	Alias string

	// StmtTransfer
	FromAlias string
	ToAlias   string

	// StmtMove
	MoveSource Operand
	MoveDest   FieldRef

	// StmtCompare
	CompareLeft  FieldRef
	CompareRight FieldRef

	// StmtTest
	TestField FieldRef
	TestValue Operand

	// StmtIf / StmtOtherwise: the condition tested, and the action taken
	// when it holds. spec.md §4.2's grammar is "IF <cond> <action>"; the
	// action is inlined here rather than modeled as a nested Statement,
	// tagged by ThenKind so the engine knows whether to treat a fired
	// action as a transfer (ActionTransfer, using ThenTarget) or as a
	// non-transferring override edit (ActionSetOperation, using
	// SetOpSource/SetOpTarget below — the same fields StmtSetOperation
	// uses for its own top-level form).
	Condition  Condition
	ThenKind   ActionKind
	ThenTarget int // operation number the action jumps to, when ThenKind == ActionTransfer

	// StmtJump
	JumpTarget int

	// StmtSetOperation, and StmtIf/StmtOtherwise when ThenKind == ActionSetOperation
	SetOpSource int
	SetOpTarget int

	// StmtArithmetic
	ArithOp     ArithOp
	ArithA      Operand
	ArithB      Operand
	ArithGiving FieldRef
	ArithHasGiv bool

	// StmtCloseOut
	CloseOutAliases []string
}

// Operation is a numbered, labeled group of Statements, per spec.md §3.
type Operation struct {
	Number     int
	Statements []Statement
}
