package store

import (
	"github.com/Masterminds/squirrel"
)

// Condition wraps squirrel conditions so callers never assemble SQL text.
type Condition struct {
	condition squirrel.Sqlizer
}

// Eq creates a column = value condition.
func Eq(column string, value interface{}) Condition {
	return Condition{squirrel.Eq{column: value}}
}

// NotEq creates a column <> value condition.
func NotEq(column string, value interface{}) Condition {
	return Condition{squirrel.NotEq{column: value}}
}

// And combines conditions with AND.
func (c Condition) And(other Condition) Condition {
	return Condition{squirrel.And{c.condition, other.condition}}
}

// Not negates the condition.
func (c Condition) Not() Condition {
	return Condition{squirrel.Expr("NOT (?)", c.condition)}
}

// ToSqlizer returns the underlying squirrel condition.
func (c Condition) ToSqlizer() squirrel.Sqlizer {
	return c.condition
}

// IsZero reports whether the condition was never set.
func (c Condition) IsZero() bool {
	return c.condition == nil
}
