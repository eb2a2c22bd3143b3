// Package file implements the File Layer: named, aliased record streams
// in modes INPUT, OUTPUT, and HSP, with cursor management and per-alias
// end-of-data detection, per spec.md §3 and §4.4.
package file

import "github.com/Zaneham/Flow-matic/internal/value"

// Mode tags how a File is used.
type Mode int

const (
	// ModeInput is a read-only sequence advanced by READ-ITEM.
	ModeInput Mode = iota
	// ModeOutput is an append-only sink written by WRITE-ITEM.
	ModeOutput
	// ModeHSP is an append-only log of formatted lines written by PRINT-ITEM.
	ModeHSP
)

// File is one named record stream, keyed in the Registry by its alias.
type File struct {
	Alias       string
	LogicalName string
	Mode        Mode

	records []value.Record
	cursor  int
	current value.Record
	hasRead bool

	endOfData bool

	printerLines []string
}

// Registry holds every File a program declares, keyed by alias. order
// records first-reference order so PrinterOutput can aggregate every HSP
// sink deterministically rather than ranging over the map.
type Registry struct {
	files map[string]*File
	order []string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{files: make(map[string]*File)}
}

// DeclareInput registers an INPUT file for alias with logicalName, per
// load_program's INPUT declaration. Records are supplied separately via
// LoadRecords (the Host's load_file call), since the declaration and the
// data arrive from different places in spec.md's Host Interface — a Host
// may call LoadRecords before the program's own INPUT statement has ever
// executed, so declaring an alias a second time must not discard records
// already staged for it.
func (r *Registry) DeclareInput(alias, logicalName string) {
	f := r.stub(alias)
	f.LogicalName = logicalName
	f.Mode = ModeInput
}

// DeclareOutput registers an OUTPUT file for alias.
func (r *Registry) DeclareOutput(alias, logicalName string) {
	f := r.stub(alias)
	f.LogicalName = logicalName
	f.Mode = ModeOutput
}

// DeclareHSP registers an HSP (printer) sink for alias.
func (r *Registry) DeclareHSP(alias string) {
	f := r.stub(alias)
	f.LogicalName = alias
	f.Mode = ModeHSP
}

// stub returns the File for alias, creating an empty one on first
// reference from either a Declare call or a LoadRecords call, whichever
// happens first.
func (r *Registry) stub(alias string) *File {
	f, ok := r.files[alias]
	if !ok {
		f = &File{Alias: alias}
		r.files[alias] = f
		r.order = append(r.order, alias)
	}
	return f
}

// LoadRecords populates an INPUT file's record sequence, the Host
// Interface's load_file(alias, records) operation. May be called before
// or after the program's own INPUT declaration executes.
func (r *Registry) LoadRecords(alias string, records []value.Record) {
	r.stub(alias).records = records
}

// Lookup returns the File registered for alias, or false if none was
// declared — the UNKNOWN-ALIAS condition from spec.md §7.
func (r *Registry) Lookup(alias string) (*File, bool) {
	f, ok := r.files[alias]
	return f, ok
}

// ReadItem advances the cursor of an INPUT file and loads its current
// record. If no records remain, it sets the end-of-data flag and leaves
// the current record unchanged, per spec.md §4.4.
func (f *File) ReadItem() {
	if f.cursor >= len(f.records) {
		f.endOfData = true
		return
	}
	f.current = f.records[f.cursor]
	f.hasRead = true
	f.cursor++
	f.endOfData = false
}

// EndOfData reports whether the most recent ReadItem on this file found
// no remaining records.
func (f *File) EndOfData() bool {
	return f.endOfData
}

// Current returns the most recently read record of an INPUT file. Only
// ReadItem sets it: AppendOutput does not, and working records live in
// internal/engine's per-alias working-record map. For a file that has
// never successfully read, this returns a zero Record.
func (f *File) Current() value.Record {
	return f.current
}

// Cursor reports the zero-based index into records, for INPUT files.
func (f *File) Cursor() int {
	return f.cursor
}

// AppendOutput appends rec to an OUTPUT file's accumulated records,
// WRITE-ITEM's effect. The record is expected to already be a value copy
// (Record.Clone), per spec.md §3's by-value transfer rule.
func (f *File) AppendOutput(rec value.Record) {
	f.records = append(f.records, rec)
}

// Records returns the file's accumulated records — get_output(alias).
func (f *File) Records() []value.Record {
	out := make([]value.Record, len(f.records))
	copy(out, f.records)
	return out
}

// AppendPrinterLine appends a formatted PRINT-ITEM line to an HSP sink.
func (f *File) AppendPrinterLine(line string) {
	f.printerLines = append(f.printerLines, line)
}

// PrinterLines returns every line emitted to this one HSP sink.
func (f *File) PrinterLines() []string {
	out := make([]string, len(f.printerLines))
	copy(out, f.printerLines)
	return out
}

// PrinterOutput returns every line emitted to every HSP sink, in
// declaration order — spec.md §4.6's get_printer_output(), which takes
// no alias: a FLOW-MATIC program conventionally has one HSP, and the
// Host Interface reports its output as a single ordered sequence rather
// than per-alias.
func (r *Registry) PrinterOutput() []string {
	var out []string
	for _, alias := range r.order {
		f := r.files[alias]
		if f.Mode == ModeHSP {
			out = append(out, f.printerLines...)
		}
	}
	return out
}
