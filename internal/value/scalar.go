// Package value implements the FLOW-MATIC scalar and record model: exact
// decimal numbers, text, null, and ordered-field records, plus the
// coercion and comparison rules spec.md §3/§4.4 assign them.
package value

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Zaneham/Flow-matic/internal/fmerrors"
)

// Kind tags which alternative of the Scalar sum type a value holds.
type Kind int

const (
	KindNull Kind = iota
	KindNumber
	KindText
)

// Scalar is one of decimal number, text, or null/absent, per spec.md §3.
// Integers are represented as a Number at scale 0; "integer-decimal
// promotion is implicit" then falls out of ordinary decimal.Decimal
// arithmetic, which always operates at the larger of its operands' scales.
type Scalar struct {
	kind Kind
	num  decimal.Decimal
	text string
}

// Null is the absent scalar.
var Null = Scalar{kind: KindNull}

// NewNumber wraps an exact decimal value.
func NewNumber(d decimal.Decimal) Scalar {
	return Scalar{kind: KindNumber, num: d}
}

// NewInt wraps a whole number as a scale-0 decimal.
func NewInt(n int64) Scalar {
	return Scalar{kind: KindNumber, num: decimal.NewFromInt(n)}
}

// NewText wraps a text value. Per spec.md §3, text is not case-normalized
// here — only identifiers (field names) are; string literal values are
// preserved verbatim, per spec.md §6's "text preserved verbatim."
func NewText(s string) Scalar {
	return Scalar{kind: KindText, text: s}
}

// ParseNumber parses a decimal literal exactly, never through a binary
// float, per spec.md §9.
func ParseNumber(lexeme string) (Scalar, error) {
	d, err := decimal.NewFromString(lexeme)
	if err != nil {
		return Scalar{}, fmerrors.NewSyntax("invalid numeric literal %q", lexeme).WithCause(err)
	}
	return NewNumber(d), nil
}

func (s Scalar) Kind() Kind { return s.kind }

func (s Scalar) IsNull() bool   { return s.kind == KindNull }
func (s Scalar) IsNumber() bool { return s.kind == KindNumber }
func (s Scalar) IsText() bool   { return s.kind == KindText }

// Number returns the decimal value; callers must check IsNumber first.
func (s Scalar) Number() decimal.Decimal { return s.num }

// Text returns the string value; callers must check IsText first.
func (s Scalar) Text() string { return s.text }

// AsNumber attempts numeric coercion: a Number returns itself, a Text is
// parsed if it looks numeric, and Null/unparsable Text fail. This backs
// the "coerce by trying numeric first" rule in spec.md §4.4.
func (s Scalar) AsNumber() (decimal.Decimal, bool) {
	switch s.kind {
	case KindNumber:
		return s.num, true
	case KindText:
		d, err := decimal.NewFromString(strings.TrimSpace(s.text))
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	default:
		return decimal.Decimal{}, false
	}
}

// AsText renders the scalar as a string for the "falling back to string"
// leg of comparison coercion. Decimal values render via decimal.String,
// which is exact and carries the original scale.
func (s Scalar) AsText() string {
	switch s.kind {
	case KindNumber:
		return s.num.String()
	case KindText:
		return s.text
	default:
		return ""
	}
}

// Ordering is the tri-state result of a COMPARE/TEST statement.
type Ordering int

const (
	Equal Ordering = iota
	Less
	Greater
)

// Compare implements spec.md §4.4: numeric operands compare numerically
// (with decimal promotion), text operands compare lexicographically by
// code point, and mixed types coerce by trying numeric first, falling
// back to string comparison. The result is always exactly one of
// EQUAL/LESS/GREATER — spec.md §8 requires this to be total.
func Compare(a, b Scalar) Ordering {
	if an, aok := a.AsNumber(); aok {
		if bn, bok := b.AsNumber(); bok {
			switch an.Cmp(bn) {
			case 0:
				return Equal
			case -1:
				return Less
			default:
				return Greater
			}
		}
	}
	at, bt := a.AsText(), b.AsText()
	switch {
	case at == bt:
		return Equal
	case at < bt:
		return Less
	default:
		return Greater
	}
}

// Equal reports value equality after numeric normalization, per spec.md §3.
func (s Scalar) Equal(other Scalar) bool {
	if s.kind == KindNull || other.kind == KindNull {
		return s.kind == other.kind
	}
	return Compare(s, other) == Equal
}
