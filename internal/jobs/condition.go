/**
 * @description
 * Restricted evaluator for auto-verification conditions.
 * A condition compares the computed price-change percentage against a decimal
 * threshold, e.g. "price_change_percent >= 1.0" or just ">= 1.0". Nothing else
 * parses: there is no expression engine here and arbitrary input is rejected,
 * never executed.
 *
 * @dependencies
 * - github.com/shopspring/decimal
 */

package jobs

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ConditionVariable is the single variable a condition may reference
const ConditionVariable = "price_change_percent"

// comparison operators, longest first so ">=" wins over ">"
var conditionOps = []string{">=", "<=", "==", "!=", ">", "<", "="}

// Condition is one parsed comparison against the price-change percentage
type Condition struct {
	Op        string
	Threshold decimal.Decimal
}

// ParseCondition parses the restricted grammar:
//
//	[price_change_percent] <op> <decimal>
//
// Malformed input returns an error; callers treat the branch as false.
func ParseCondition(expr string) (*Condition, error) {
	s := strings.TrimSpace(expr)
	if s == "" {
		return nil, fmt.Errorf("empty condition")
	}

	// The variable name is optional but must be this exact one if present
	if strings.HasPrefix(s, ConditionVariable) {
		s = strings.TrimSpace(strings.TrimPrefix(s, ConditionVariable))
	}

	var op string
	for _, candidate := range conditionOps {
		if strings.HasPrefix(s, candidate) {
			op = candidate
			s = strings.TrimSpace(strings.TrimPrefix(s, candidate))
			break
		}
	}
	if op == "" {
		return nil, fmt.Errorf("condition %q: missing comparison operator", expr)
	}
	if op == "=" {
		op = "=="
	}

	if s == "" {
		return nil, fmt.Errorf("condition %q: missing threshold", expr)
	}
	threshold, err := decimal.NewFromString(s)
	if err != nil {
		// Anything that is not a bare decimal after the operator is rejected,
		// including nested expressions and function calls
		return nil, fmt.Errorf("condition %q: invalid threshold %q", expr, s)
	}

	return &Condition{Op: op, Threshold: threshold}, nil
}

// Evaluate applies the condition to a price-change percentage
func (c *Condition) Evaluate(value decimal.Decimal) bool {
	cmp := value.Cmp(c.Threshold)
	switch c.Op {
	case ">=":
		return cmp >= 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case "<":
		return cmp < 0
	case "==":
		return cmp == 0
	case "!=":
		return cmp != 0
	}
	return false
}

// EvaluateCondition parses and evaluates in one step
func EvaluateCondition(expr string, value decimal.Decimal) (bool, error) {
	cond, err := ParseCondition(expr)
	if err != nil {
		return false, err
	}
	return cond.Evaluate(value), nil
}

// PriceChangePercent computes ((current - createPrice) / createPrice) * 100
// rounded to 2 decimal places. A zero anchor price yields 0 instead of a
// division by zero.
func PriceChangePercent(createPrice, current decimal.Decimal) decimal.Decimal {
	if createPrice.IsZero() {
		return decimal.Zero
	}
	return current.Sub(createPrice).
		Div(createPrice).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}
