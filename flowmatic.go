// Package flowmatic provides a runnable interpreter for FLOW-MATIC,
// Grace Hopper's 1957 English-language data-processing notation. It
// wraps the internal lexer, parser, program table, file layer, and
// operation engine packages behind a single Interpreter type, the way
// the tsqlparser package wraps its own lexer/parser/ast internals behind
// one Parse entry point.
//
// Typical use:
//
//	interp := flowmatic.New(flowmatic.DefaultConfig())
//	if err := interp.LoadProgram(source); err != nil { ... }
//	interp.LoadFile("A", customerRecords)
//	interp.LoadFile("B", priceRecords)
//	if err := interp.Run(); err != nil { ... }
//	billed, err := interp.GetOutput("C")
//	lines := interp.GetPrinterOutput()
package flowmatic

import (
	"os"

	"github.com/Zaneham/Flow-matic/internal/engine"
	"github.com/Zaneham/Flow-matic/internal/file"
	"github.com/Zaneham/Flow-matic/internal/fmerrors"
	"github.com/Zaneham/Flow-matic/internal/lexer"
	"github.com/Zaneham/Flow-matic/internal/parser"
	"github.com/Zaneham/Flow-matic/internal/program"
	"github.com/Zaneham/Flow-matic/internal/trace"
	"github.com/Zaneham/Flow-matic/internal/value"
)

// Re-exported so callers never need to import the internal packages
// directly, following the teacher corpus's own root-facade convention.
type (
	Record         = value.Record
	Scalar         = value.Scalar
	FlowMaticError = fmerrors.FlowMaticError
)

// NewRecord, NewText, NewInt, and ParseNumber re-export the Value
// Model's constructors so a Host never needs to import
// internal/value directly to build input records.
var (
	NewRecord   = value.NewRecord
	NewText     = value.NewText
	NewInt      = value.NewInt
	ParseNumber = value.ParseNumber
)

// OtherwiseMode and FallthroughPolicy resolve spec.md §9's open
// questions; DivideRounding is recorded in Config for documentation even
// though the engine currently implements only the one rounding rule
// spec.md gives exact semantics for (see Config.DivideRounding's doc).
type OtherwiseMode = engine.OtherwiseMode
type FallthroughPolicy = engine.FallthroughPolicy

const (
	OtherwiseImmediate     = engine.OtherwiseImmediate
	OtherwiseAnyPriorFalse = engine.OtherwiseAnyPriorFalse
	FallthroughSilent      = engine.FallthroughSilent
	FallthroughWarn        = engine.FallthroughWarn
)

// DivideRounding names the rounding mode DIVIDE statements use. Only
// RoundHalfToEven is implemented: spec.md §9 gives exact semantics for
// that mode and leaves every alternative unspecified, so there is
// nothing to implement an alternative against.
type DivideRounding int

const (
	RoundHalfToEven DivideRounding = iota
)

// Config resolves spec.md §9's three open questions as explicit
// configuration passed in by the caller, rather than a silently guessed
// default the caller cannot discover or override.
type Config struct {
	OtherwiseMode     OtherwiseMode
	FallthroughPolicy FallthroughPolicy
	DivideRounding    DivideRounding
}

// DefaultConfig returns the defaults spec.md §9 states explicitly:
// immediate OTHERWISE pairing, silent end-of-program fallthrough, and
// half-to-even division rounding.
func DefaultConfig() Config {
	return Config{
		OtherwiseMode:     OtherwiseImmediate,
		FallthroughPolicy: FallthroughSilent,
		DivideRounding:    RoundHalfToEven,
	}
}

// Interpreter is a single FLOW-MATIC program, its loaded input files,
// and its run state. Per spec.md §5, an Interpreter is not safe for
// concurrent use; callers needing parallelism should construct one
// Interpreter per goroutine.
type Interpreter struct {
	config Config
	table  *program.Table
	files  *file.Registry
	eng    *engine.Engine
	tap    *trace.Tap
}

// New constructs an Interpreter with no program loaded yet.
func New(cfg Config) *Interpreter {
	return &Interpreter{config: cfg}
}

// LoadProgram parses source and builds the Program Table. It recovers
// the lexer's and parser's panics into a returned *FlowMaticError, the
// single public boundary spec.md's load-time error policy describes:
// SYNTAX and DUPLICATE-OPERATION are both surfaced here, never as a
// runtime panic escaping to the Host.
func (in *Interpreter) LoadProgram(source string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if fmErr, ok := r.(*fmerrors.FlowMaticError); ok {
				err = fmErr
				return
			}
			err = fmerrors.NewSyntax("%v", r)
		}
	}()

	scanner := lexer.NewScanner(source)
	tokens := scanner.ScanTokens()
	p := parser.NewParser(tokens)
	ops := p.ParseProgram()

	tbl, buildErr := program.Build(ops)
	if buildErr != nil {
		return buildErr
	}

	in.table = tbl
	in.files = file.NewRegistry()
	in.tap = trace.NewTap()
	in.eng = engine.New(tbl, in.files, engine.Config{
		OtherwiseMode:     in.config.OtherwiseMode,
		FallthroughPolicy: in.config.FallthroughPolicy,
	}, in.tap)

	// Pre-declare every INPUT/OUTPUT/HSP alias the program names so
	// LoadFile can stage records against an alias before the program's
	// own declaration statement has executed.
	for _, op := range ops {
		for _, stmt := range op.Statements {
			switch stmt.Kind {
			case parser.StmtInputDecl:
				for _, f := range stmt.InputFiles {
					in.files.DeclareInput(f.Alias, f.LogicalName)
				}
			case parser.StmtOutputDecl:
				in.files.DeclareOutput(stmt.OutputFile.Alias, stmt.OutputFile.LogicalName)
			case parser.StmtHSPDecl:
				in.files.DeclareHSP(stmt.HSPAlias)
			}
		}
	}
	return nil
}

// LoadFile registers an INPUT file's records for alias, the Host
// Interface's load_file operation.
func (in *Interpreter) LoadFile(alias string, records []value.Record) error {
	if in.files == nil {
		return fmerrors.NewSyntax("LoadFile called before LoadProgram")
	}
	if _, ok := in.files.Lookup(alias); !ok {
		return fmerrors.NewUnknownAlias(alias)
	}
	in.files.LoadRecords(alias, records)
	return nil
}

// Run executes the loaded program from its first operation until STOP or
// natural fallthrough, per spec.md §4.6.
func (in *Interpreter) Run() error {
	if in.eng == nil {
		return fmerrors.NewSyntax("Run called before LoadProgram")
	}
	return in.eng.Run()
}

// GetOutput returns the ordered records written to the named OUTPUT file.
func (in *Interpreter) GetOutput(alias string) ([]value.Record, error) {
	f, ok := in.files.Lookup(alias)
	if !ok {
		return nil, fmerrors.NewUnknownAlias(alias)
	}
	return f.Records(), nil
}

// GetPrinterOutput returns the ordered sequence of lines emitted to every
// HSP sink across the whole run, per spec.md §4.6's get_printer_output().
func (in *Interpreter) GetPrinterOutput() []string {
	if in.files == nil {
		return nil
	}
	return in.files.PrinterOutput()
}

// RunID returns the debug tap's correlation identifier for the most
// recently loaded program, for a Host correlating logs across runs.
func (in *Interpreter) RunID() string {
	if in.tap == nil {
		return ""
	}
	return in.tap.RunID().String()
}

// Trace returns a human-readable rendering of every event the debug tap
// observed during the last Run, for diagnostics only — never part of
// the canonical output surface.
func (in *Interpreter) Trace() string {
	return in.tap.Render(os.Stdout)
}
