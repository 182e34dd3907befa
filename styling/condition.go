package styling

import (
	"regexp"
	"strconv"

	"github.com/jamesrr39/goutil/errorsx"
)

// Condition is one predicate of a selector, e.g. [highway=primary]
type Condition interface {
	Applies(env *Environment) bool
}

type ComparatorOperator int

const (
	ComparatorOperatorEquals ComparatorOperator = iota
	ComparatorOperatorNotEquals
	ComparatorOperatorLessThanOrEqualTo
	ComparatorOperatorLessThan
	ComparatorOperatorGreaterThanOrEqualTo
	ComparatorOperatorGreaterThan
	ComparatorOperatorRegexMatch
)

var comparatorOperatorsBySymbol = map[string]ComparatorOperator{
	"=":  ComparatorOperatorEquals,
	"!=": ComparatorOperatorNotEquals,
	"<=": ComparatorOperatorLessThanOrEqualTo,
	"<":  ComparatorOperatorLessThan,
	">=": ComparatorOperatorGreaterThanOrEqualTo,
	">":  ComparatorOperatorGreaterThan,
	"=~": ComparatorOperatorRegexMatch,
}

func ComparatorOperatorFromSymbol(symbol string) (ComparatorOperator, errorsx.Error) {
	op, ok := comparatorOperatorsBySymbol[symbol]
	if !ok {
		return 0, errorsx.Errorf("unknown comparator operator: %q", symbol)
	}
	return op, nil
}

// KeyValueCondition compares the value of a tag. Ordering comparisons are numeric; a tag that
// isn't a number never matches them.
type KeyValueCondition struct {
	Key      string
	Operator ComparatorOperator
	Value    string

	numericValue float64
	regex        *regexp.Regexp
}

func NewKeyValueCondition(key string, operator ComparatorOperator, value string) (*KeyValueCondition, errorsx.Error) {
	c := &KeyValueCondition{Key: key, Operator: operator, Value: value}

	switch operator {
	case ComparatorOperatorRegexMatch:
		regex, err := regexp.Compile(value)
		if err != nil {
			return nil, errorsx.Wrap(err, "key", key)
		}
		c.regex = regex
	case ComparatorOperatorLessThan, ComparatorOperatorLessThanOrEqualTo, ComparatorOperatorGreaterThan, ComparatorOperatorGreaterThanOrEqualTo:
		numericValue, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, errorsx.Wrap(err, "key", key)
		}
		c.numericValue = numericValue
	}

	return c, nil
}

func (c *KeyValueCondition) Applies(env *Environment) bool {
	value, ok := env.Primitive.GetTag(c.Key)

	switch c.Operator {
	case ComparatorOperatorEquals:
		return ok && value == c.Value
	case ComparatorOperatorNotEquals:
		return !ok || value != c.Value
	case ComparatorOperatorRegexMatch:
		return ok && c.regex.MatchString(value)
	}

	if !ok {
		return false
	}

	numeric, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return false
	}

	switch c.Operator {
	case ComparatorOperatorLessThan:
		return numeric < c.numericValue
	case ComparatorOperatorLessThanOrEqualTo:
		return numeric <= c.numericValue
	case ComparatorOperatorGreaterThan:
		return numeric > c.numericValue
	case ComparatorOperatorGreaterThanOrEqualTo:
		return numeric >= c.numericValue
	default:
		return false
	}
}

type KeyMatch int

const (
	KeyMatchExists KeyMatch = iota
	KeyMatchNotExists
	KeyMatchTrue
	KeyMatchFalse
)

// KeyCondition tests the presence or truthiness of a tag
type KeyCondition struct {
	Key   string
	Match KeyMatch
}

func (c *KeyCondition) Applies(env *Environment) bool {
	value, ok := env.Primitive.GetTag(c.Key)
	switch c.Match {
	case KeyMatchExists:
		return ok
	case KeyMatchNotExists:
		return !ok
	case KeyMatchTrue:
		return ok && isTrueValue(value)
	case KeyMatchFalse:
		return ok && isFalseValue(value)
	default:
		return false
	}
}

func isTrueValue(value string) bool {
	switch value {
	case "yes", "true", "1":
		return true
	}
	return false
}

func isFalseValue(value string) bool {
	switch value {
	case "no", "false", "0":
		return true
	}
	return false
}

const (
	PseudoClassClosed   = "closed"
	PseudoClassModified = "modified"
	PseudoClassNew      = "new"
	PseudoClassTagged   = "tagged"
)

// PseudoClassCondition tests a state of the primitive, e.g. :closed
type PseudoClassCondition struct {
	Class   string
	Negated bool
}

func NewPseudoClassCondition(class string, negated bool) (*PseudoClassCondition, errorsx.Error) {
	switch class {
	case PseudoClassClosed, PseudoClassModified, PseudoClassNew, PseudoClassTagged:
		return &PseudoClassCondition{class, negated}, nil
	default:
		return nil, errorsx.Errorf("unknown pseudo class: %q", class)
	}
}

func (c *PseudoClassCondition) Applies(env *Environment) bool {
	return c.applies(env) != c.Negated
}

func (c *PseudoClassCondition) applies(env *Environment) bool {
	p := env.Primitive
	switch c.Class {
	case PseudoClassClosed:
		return isClosed(p)
	case PseudoClassModified:
		return p.IsModified() || p.IsNew()
	case PseudoClassNew:
		return p.IsNew()
	case PseudoClassTagged:
		return p.HasTags()
	default:
		return false
	}
}
