package schema

// Class is the arity class of an operator: how many values a condition
// using it must carry.
type Class int

const (
	// ClassSingle operators take exactly one scalar value.
	ClassSingle Class = iota

	// ClassNone operators take no value (is_null, is_not_null).
	ClassNone

	// ClassRange operators take exactly two ordered values (between).
	ClassRange

	// ClassMulti operators take one or more values (in, not_in).
	ClassMulti
)

// Operators with a non-single arity class.
const (
	OpIsNull    = "is_null"
	OpIsNotNull = "is_not_null"
	OpBetween   = "between"
	OpIn        = "in"
	OpNotIn     = "not_in"
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case ClassSingle:
		return "single"
	case ClassNone:
		return "none"
	case ClassRange:
		return "range"
	case ClassMulti:
		return "multi"
	default:
		return "unknown"
	}
}

// ClassOf returns the arity class of op. Unknown operators are single-value.
func ClassOf(op string) Class {
	switch op {
	case OpIsNull, OpIsNotNull:
		return ClassNone
	case OpBetween:
		return ClassRange
	case OpIn, OpNotIn:
		return ClassMulti
	default:
		return ClassSingle
	}
}

// UsesValues reports whether op carries its operands in a values list
// rather than a single value.
func UsesValues(op string) bool {
	c := ClassOf(op)
	return c == ClassRange || c == ClassMulti
}
