package value

// Record is a mapping from uppercase, hyphenated field names to Scalar
// values, per spec.md §3. Field order is preserved in insertion order so
// that PRINT-ITEM can emit "fields in insertion order" per spec.md §6;
// Go's map type gives no such guarantee, so order is tracked separately.
type Record struct {
	fields map[string]Scalar
	order  []string
}

// NewRecord returns an empty record.
func NewRecord() Record {
	return Record{fields: make(map[string]Scalar)}
}

// Set assigns a field, appending it to the order slice the first time it
// is seen and overwriting in place on subsequent assignments.
func (r *Record) Set(field string, v Scalar) {
	if r.fields == nil {
		r.fields = make(map[string]Scalar)
	}
	if _, exists := r.fields[field]; !exists {
		r.order = append(r.order, field)
	}
	r.fields[field] = v
}

// Get returns the field's value and whether it was present. A missing
// field is distinct from one explicitly set to Null.
func (r Record) Get(field string) (Scalar, bool) {
	v, ok := r.fields[field]
	return v, ok
}

// GetOrNull returns the field's value, or Null if absent — the MOVE-source
// policy from spec.md §7 ("treat as absent/null for MOVE source").
func (r Record) GetOrNull(field string) Scalar {
	if v, ok := r.fields[field]; ok {
		return v
	}
	return Null
}

// Fields returns field names in insertion order.
func (r Record) Fields() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Clone performs the by-value copy spec.md §3 requires whenever a record
// crosses from one file/working-record slot to another ("Records are
// duplicated by value when transferred between files").
func (r Record) Clone() Record {
	clone := Record{
		fields: make(map[string]Scalar, len(r.fields)),
		order:  make([]string, len(r.order)),
	}
	copy(clone.order, r.order)
	for k, v := range r.fields {
		clone.fields[k] = v
	}
	return clone
}

// Len reports the number of fields.
func (r Record) Len() int { return len(r.order) }
