package symbol

// Result is the outcome of a generic symbol comparison.
type Result int8

const (
	ResultNotEqual Result = iota
	ResultEqual
	// ResultNotComparable means at least one operand is not a Symbol.
	// Ordering between symbols is likewise undefined, so generic containers
	// must treat symbols as equality-only values.
	ResultNotComparable
)

func (r Result) String() string {
	switch r {
	case ResultEqual:
		return "EQUAL"
	case ResultNotEqual:
		return "NOT_EQUAL"
	}
	return "NOT_COMPARABLE"
}

// Compare answers equal/not-equal for two Symbol operands and
// ResultNotComparable for anything else. Both Symbol values and *Symbol
// pointers are accepted; a nil *Symbol is not comparable.
func Compare(a, b any) Result {
	x, ok := asSymbol(a)
	if !ok {
		return ResultNotComparable
	}
	y, ok := asSymbol(b)
	if !ok {
		return ResultNotComparable
	}
	if x.Equal(y) {
		return ResultEqual
	}
	return ResultNotEqual
}

func asSymbol(v any) (Symbol, bool) {
	switch s := v.(type) {
	case Symbol:
		return s, true
	case *Symbol:
		if s == nil {
			return Symbol{}, false
		}
		return *s, true
	}
	return Symbol{}, false
}
