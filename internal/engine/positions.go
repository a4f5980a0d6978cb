package engine

type Operator string

const (
	OpGreater   Operator = ">"
	OpGreaterEq Operator = ">="
	OpEqual     Operator = "="
	OpLessEq    Operator = "<="
	OpLess      Operator = "<"
)

const DefaultOperator = OpEqual

var DefaultPositions = []string{"Top", "Jungle", "Mid", "ADC", "Support"}

var DefaultOperators = []Operator{OpGreater, OpEqual, OpLess}

// ExtendedOperators adds the inclusive comparisons between the strict ones.
var ExtendedOperators = []Operator{OpGreater, OpGreaterEq, OpEqual, OpLessEq, OpLess}

// Flip returns the operator that keeps the comparison true once the two
// sides of a lane trade places.
func (o Operator) Flip() Operator {
	switch o {
	case OpGreater:
		return OpLess
	case OpLess:
		return OpGreater
	case OpGreaterEq:
		return OpLessEq
	case OpLessEq:
		return OpGreaterEq
	default:
		return OpEqual
	}
}

func KnownOperator(o Operator) bool {
	switch o {
	case OpGreater, OpGreaterEq, OpEqual, OpLessEq, OpLess:
		return true
	}
	return false
}
