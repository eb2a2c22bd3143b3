// Package engine implements the FLOW-MATIC Operation Engine: the
// fetch-decode-execute loop described in spec.md §4.4. Structurally it
// follows the teacher's internal/vm.EnhancedVM.Run — a frame-local
// instruction pointer, a fetch/decode/execute switch, and early returns
// on any failure — generalized from a single bytecode instruction pointer
// to FLOW-MATIC's two-level address (operation number, statement index
// within that operation).
package engine

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Zaneham/Flow-matic/internal/fmerrors"
	"github.com/Zaneham/Flow-matic/internal/file"
	"github.com/Zaneham/Flow-matic/internal/parser"
	"github.com/Zaneham/Flow-matic/internal/program"
	"github.com/Zaneham/Flow-matic/internal/trace"
	"github.com/Zaneham/Flow-matic/internal/value"
)

// OtherwiseMode resolves the open question in spec.md §9 about how far
// back an OTHERWISE looks for a false IF to pair with.
type OtherwiseMode int

const (
	// OtherwiseImmediate pairs OTHERWISE only with the immediately
	// preceding IF in the same operation. Default per spec.md §9.
	OtherwiseImmediate OtherwiseMode = iota
	// OtherwiseAnyPriorFalse pairs OTHERWISE with any earlier IF in the
	// same operation that evaluated false and had not already taken a
	// transfer, provided no intervening IF took one either.
	OtherwiseAnyPriorFalse
)

// FallthroughPolicy resolves spec.md §9's second open question.
type FallthroughPolicy int

const (
	// FallthroughSilent halts without error when execution runs past the
	// last operation. Default per spec.md §9.
	FallthroughSilent FallthroughPolicy = iota
	// FallthroughWarn halts but returns fmerrors.EndOfProgramFallthrough
	// as a non-fatal advisory alongside normal completion.
	FallthroughWarn
)

// Config resolves two of spec.md §9's three open questions as explicit,
// caller-supplied configuration rather than guessed defaults baked into
// the engine. The third, DIVIDE rounding, has no field here: the engine
// always rounds quotients half-to-even.
type Config struct {
	OtherwiseMode     OtherwiseMode
	FallthroughPolicy FallthroughPolicy
}

// DefaultConfig returns spec.md §9's stated defaults.
func DefaultConfig() Config {
	return Config{
		OtherwiseMode:     OtherwiseImmediate,
		FallthroughPolicy: FallthroughSilent,
	}
}

// Engine carries every piece of mutable state the fetch-decode-execute
// loop touches: the program counter, the engine-scoped comparison flag,
// per-alias working records, and the halted flag. Per spec.md §9,
// working records live in a map distinct from File Layer current/output
// records, so TRANSFER's by-value copy never aliases across files.
type Engine struct {
	table    *program.Table
	files    *file.Registry
	config   Config
	tap      *trace.Tap

	pc            int
	flag          value.Ordering
	hasFlag       bool
	working       map[string]value.Record
	halted        bool
	lastReadAlias string
}

// New constructs an Engine over a built Program Table and File Registry.
// tap may be nil; when non-nil the engine records one "enter-operation"
// event for each operation it enters, purely for diagnostics (see
// internal/trace).
func New(table *program.Table, files *file.Registry, cfg Config, tap *trace.Tap) *Engine {
	return &Engine{
		table:   table,
		files:   files,
		config:  cfg,
		working: make(map[string]value.Record),
		tap:     tap,
	}
}

// Run executes from the Program Table's first operation until STOP or
// natural fallthrough past the last operation, per spec.md §4.6's run().
func (e *Engine) Run() error {
	first, ok := e.table.First()
	if !ok {
		return nil
	}
	e.pc = first.Number

	op := first
	for {
		if e.tap != nil {
			e.tap.Event(trace.Event{Kind: "enter-operation", Operation: op.Number})
		}

		transferred, unconditional, target, err := e.runOperation(op)
		if err != nil {
			if fmErr, ok := err.(*fmerrors.FlowMaticError); ok {
				return fmErr.WithOperation(op.Number)
			}
			return fmerrors.New(fmerrors.TypeCoerce, "%v", err).WithOperation(op.Number)
		}
		if e.halted {
			return nil
		}

		var next parser.Operation
		if transferred {
			resolved := target
			if unconditional {
				resolved = e.table.Resolve(op.Number, target)
			}
			next, ok = e.lookupOperation(resolved)
			if !ok {
				return fmerrors.NewUnknownOperation(resolved).WithOperation(op.Number)
			}
		} else {
			next, ok = e.table.NextAfter(op.Number)
			if !ok {
				e.halted = true
				if e.config.FallthroughPolicy == FallthroughWarn {
					return fmerrors.NewEndOfProgramFallthrough(op.Number).WithOperation(op.Number)
				}
				return nil
			}
		}
		op = next
		e.pc = op.Number
	}
}

func (e *Engine) lookupOperation(n int) (parser.Operation, bool) {
	op, err := e.table.OperationAt(n)
	if err != nil {
		return parser.Operation{}, false
	}
	return op, true
}

// runOperation executes one operation's statements left to right per
// spec.md §4.4's five-step procedure. It returns whether a transfer
// fired, whether that transfer was the operation's own terminal
// unconditional JUMP/GO TO (as opposed to a conditional IF/OTHERWISE
// action, which resolves straight to its own coded target and never
// consults the Program Table's override map — spec.md §4.3 and the
// glossary both restrict overrides to "an operation's terminal
// unconditional transfer"), and the target. The engine's halted field is
// set directly by STOP.
func (e *Engine) runOperation(op parser.Operation) (transferred, unconditional bool, target int, err error) {
	// lastIfFalse tracks whether the immediately preceding statement was
	// an IF whose predicate was false, and whether any earlier IF in this
	// operation already consumed a transfer — both needed to resolve
	// OTHERWISE per spec.md §4.4 and the OtherwiseMode configuration.
	lastIfFalse := false
	anyPriorFalse := false

	for _, stmt := range op.Statements {
		switch stmt.Kind {
		case parser.StmtInputDecl:
			for _, f := range stmt.InputFiles {
				e.files.DeclareInput(f.Alias, f.LogicalName)
			}
			lastIfFalse = false
		case parser.StmtOutputDecl:
			e.files.DeclareOutput(stmt.OutputFile.Alias, stmt.OutputFile.LogicalName)
			lastIfFalse = false
		case parser.StmtHSPDecl:
			e.files.DeclareHSP(stmt.HSPAlias)
			lastIfFalse = false

		case parser.StmtReadItem:
			f, ok := e.files.Lookup(stmt.Alias)
			if !ok {
				return false, false, 0, fmerrors.NewUnknownAlias(stmt.Alias)
			}
			f.ReadItem()
			e.lastReadAlias = stmt.Alias
			lastIfFalse = false

		case parser.StmtWriteItem:
			f, ok := e.files.Lookup(stmt.Alias)
			if !ok {
				return false, false, 0, fmerrors.NewUnknownAlias(stmt.Alias)
			}
			f.AppendOutput(e.workingRecord(stmt.Alias).Clone())
			delete(e.working, stmt.Alias)
			lastIfFalse = false

		case parser.StmtPrintItem:
			f, ok := e.files.Lookup(stmt.Alias)
			if !ok {
				return false, false, 0, fmerrors.NewUnknownAlias(stmt.Alias)
			}
			f.AppendPrinterLine(formatPrinterLine(e.workingRecord(stmt.Alias)))
			lastIfFalse = false

		case parser.StmtTransfer:
			src, ok := e.files.Lookup(stmt.FromAlias)
			if !ok {
				return false, false, 0, fmerrors.NewUnknownAlias(stmt.FromAlias)
			}
			e.working[stmt.ToAlias] = src.Current().Clone()
			lastIfFalse = false

		case parser.StmtMove:
			dest := e.workingRecord(stmt.MoveDest.Alias)
			v, err := e.resolveOperand(stmt.MoveSource)
			if err != nil {
				return false, false, 0, err
			}
			dest.Set(stmt.MoveDest.Field, v)
			e.working[stmt.MoveDest.Alias] = dest
			lastIfFalse = false

		case parser.StmtCompare:
			left, err := e.lookupField(stmt.CompareLeft)
			if err != nil {
				return false, false, 0, err
			}
			right, err := e.lookupField(stmt.CompareRight)
			if err != nil {
				return false, false, 0, err
			}
			e.flag = value.Compare(left, right)
			e.hasFlag = true
			lastIfFalse = false

		case parser.StmtTest:
			left, err := e.lookupField(stmt.TestField)
			if err != nil {
				return false, false, 0, err
			}
			right, err := e.resolveOperand(stmt.TestValue)
			if err != nil {
				return false, false, 0, err
			}
			e.flag = value.Compare(left, right)
			e.hasFlag = true
			lastIfFalse = false

		case parser.StmtIf:
			holds, err := e.evalCondition(stmt)
			if err != nil {
				return false, false, 0, err
			}
			if !holds {
				lastIfFalse = true
				anyPriorFalse = true
				break
			}
			lastIfFalse = false
			if stmt.ThenKind == parser.ActionSetOperation {
				// Non-transferring per spec.md §4.4: edits the override
				// map and continues with the next statement. A true IF
				// that didn't transfer never breaks an earlier false IF's
				// eligibility for OtherwiseAnyPriorFalse, so anyPriorFalse
				// is left untouched.
				e.table.SetOverride(stmt.SetOpSource, stmt.SetOpTarget)
				break
			}
			anyPriorFalse = false
			return true, false, stmt.ThenTarget, nil

		case parser.StmtOtherwise:
			fires := lastIfFalse
			if !fires && e.config.OtherwiseMode == OtherwiseAnyPriorFalse {
				fires = anyPriorFalse
			}
			anyPriorFalse = false
			lastIfFalse = false
			if !fires {
				break
			}
			if stmt.ThenKind == parser.ActionSetOperation {
				e.table.SetOverride(stmt.SetOpSource, stmt.SetOpTarget)
				break
			}
			return true, false, stmt.ThenTarget, nil

		case parser.StmtJump:
			return true, true, stmt.JumpTarget, nil

		case parser.StmtSetOperation:
			e.table.SetOverride(stmt.SetOpSource, stmt.SetOpTarget)
			lastIfFalse = false

		case parser.StmtArithmetic:
			if err := e.execArithmetic(stmt); err != nil {
				return false, false, 0, err
			}
			lastIfFalse = false

		case parser.StmtCloseOut:
			lastIfFalse = false
			// No-op at the engine level: the Host reads outputs via
			// GetOutput/GetPrinterOutput regardless of CLOSE-OUT; the
			// statement exists for the source program's own documentation
			// of which files are done being written.

		case parser.StmtStop:
			e.halted = true
			return false, false, 0, nil

		default:
			return false, false, 0, fmt.Errorf("unhandled statement kind %v", stmt.Kind)
		}
	}
	return false, false, 0, nil
}

// workingRecord returns the working record for alias, creating an empty
// one on first use.
func (e *Engine) workingRecord(alias string) value.Record {
	if r, ok := e.working[alias]; ok {
		return r
	}
	r := value.NewRecord()
	e.working[alias] = r
	return r
}

// lookupField resolves a FieldRef against the current INPUT record or
// working record for its alias. Per spec.md §7's UNKNOWN-FIELD policy,
// a missing field is a hard failure here (COMPARE/TEST/arithmetic source),
// as opposed to MOVE source's treat-as-null policy (see resolveOperand).
func (e *Engine) lookupField(ref parser.FieldRef) (value.Scalar, error) {
	rec, ok := e.recordFor(ref.Alias)
	if !ok {
		return value.Scalar{}, fmerrors.NewUnknownAlias(ref.Alias)
	}
	v, ok := rec.Get(ref.Field)
	if !ok {
		return value.Scalar{}, fmerrors.NewUnknownField(ref.Alias, ref.Field)
	}
	return v, nil
}

// recordFor prefers an alias's working record if one has been started
// (by TRANSFER or MOVE), falling back to the alias's INPUT current
// record otherwise.
func (e *Engine) recordFor(alias string) (value.Record, bool) {
	if r, ok := e.working[alias]; ok {
		return r, true
	}
	f, ok := e.files.Lookup(alias)
	if !ok {
		return value.Record{}, false
	}
	return f.Current(), true
}

// resolveOperand evaluates a literal or field-ref Operand to a Scalar.
// A field reference that resolves against a missing field yields Null
// rather than failing — the MOVE-source policy from spec.md §7 — since
// this helper backs both MOVE's source and TEST's right-hand operand,
// neither of which spec.md singles out as arithmetic-source-strict.
func (e *Engine) resolveOperand(op parser.Operand) (value.Scalar, error) {
	switch {
	case op.IsText:
		return value.NewText(op.Text), nil
	case op.IsNumber:
		return value.NewNumber(op.Number), nil
	case op.IsField:
		rec, ok := e.recordFor(op.Field.Alias)
		if !ok {
			return value.Scalar{}, fmerrors.NewUnknownAlias(op.Field.Alias)
		}
		return rec.GetOrNull(op.Field.Field), nil
	default:
		return value.Null, nil
	}
}

// arithmeticOperand is like resolveOperand but fails on a missing field
// rather than producing Null, per spec.md §7's "fail for arithmetic
// source" UNKNOWN-FIELD policy.
func (e *Engine) arithmeticOperand(op parser.Operand) (value.Scalar, error) {
	if op.IsField {
		return e.lookupField(op.Field)
	}
	return e.resolveOperand(op)
}

func (e *Engine) evalCondition(stmt parser.Statement) (bool, error) {
	switch stmt.Condition {
	case parser.CondEndOfData:
		// spec.md §4.2 and the source corpus both spell this bare —
		// "tested against the most recent READ-ITEM" — so it checks
		// whichever alias this engine's last StmtReadItem touched, not
		// an alias named in the condition itself.
		if e.lastReadAlias == "" {
			return false, fmerrors.NewSyntax("IF END OF DATA with no prior READ-ITEM in this run")
		}
		f, ok := e.files.Lookup(e.lastReadAlias)
		if !ok {
			return false, fmerrors.NewUnknownAlias(e.lastReadAlias)
		}
		return f.EndOfData(), nil
	case parser.CondEqual:
		return e.hasFlag && e.flag == value.Equal, nil
	case parser.CondLess:
		return e.hasFlag && e.flag == value.Less, nil
	case parser.CondGreater:
		return e.hasFlag && e.flag == value.Greater, nil
	case parser.CondZero, parser.CondPositive, parser.CondNegative:
		// These read the engine comparison flag left by the most recent
		// COMPARE/TEST (typically a TEST against the literal 0): ZERO holds
		// on EQUAL, POSITIVE on GREATER, NEGATIVE on LESS. Arithmetic
		// results are not inspected directly.
		if !e.hasFlag {
			return false, nil
		}
		switch stmt.Condition {
		case parser.CondZero:
			return e.flag == value.Equal, nil
		case parser.CondPositive:
			return e.flag == value.Greater, nil
		default:
			return e.flag == value.Less, nil
		}
	default:
		return false, fmt.Errorf("unhandled condition %v", stmt.Condition)
	}
}

// execArithmetic implements spec.md §4.5's four shapes, using exact
// decimal throughout. Without GIVING the destination is b, which must be
// a field reference (the parser rejects any other shape at parse time).
func (e *Engine) execArithmetic(stmt parser.Statement) error {
	a, err := e.arithmeticOperand(stmt.ArithA)
	if err != nil {
		return err
	}
	b, err := e.arithmeticOperand(stmt.ArithB)
	if err != nil {
		return err
	}
	an, ok := a.AsNumber()
	if !ok {
		return fmerrors.NewTypeCoerce("left operand is not numeric")
	}
	bn, ok := b.AsNumber()
	if !ok {
		return fmerrors.NewTypeCoerce("right operand is not numeric")
	}

	var result decimal.Decimal
	switch stmt.ArithOp {
	case parser.ArithAdd:
		result = an.Add(bn)
	case parser.ArithSubtract:
		result = bn.Sub(an)
	case parser.ArithMultiply:
		result = an.Mul(bn)
	case parser.ArithDivide:
		if bn.IsZero() {
			return fmerrors.NewArithZeroDivide()
		}
		scale := an.Exponent()
		if bn.Exponent() < scale {
			scale = bn.Exponent()
		}
		places := int32(-scale)
		if places < 2 {
			places = 2
		}
		result = an.Div(bn).RoundBank(places)
	}

	var dest parser.FieldRef
	if stmt.ArithHasGiv {
		dest = stmt.ArithGiving
	} else {
		dest = stmt.ArithB.Field
	}
	rec := e.workingRecord(dest.Alias)
	rec.Set(dest.Field, value.NewNumber(result))
	e.working[dest.Alias] = rec
	return nil
}

// formatPrinterLine renders a working record per spec.md §6: fields in
// insertion order, KEY=VALUE pairs comma-separated, decimals to two
// fractional digits, text uppercased.
func formatPrinterLine(rec value.Record) string {
	var parts []string
	for _, field := range rec.Fields() {
		v, _ := rec.Get(field)
		var rendered string
		switch {
		case v.IsNumber():
			rendered = v.Number().StringFixed(2)
		case v.IsText():
			rendered = strings.ToUpper(v.Text())
		default:
			rendered = ""
		}
		parts = append(parts, fmt.Sprintf("%s=%s", field, rendered))
	}
	return strings.Join(parts, ",")
}

// Halted reports whether the engine has stopped.
func (e *Engine) Halted() bool {
	return e.halted
}

// PC returns the operation number the engine was last executing — useful
// for error reporting and for the debug tap.
func (e *Engine) PC() int {
	return e.pc
}
