package store

import (
	"fmt"
	"regexp"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Table names a relation, optionally schema-qualified. Names are spliced
// into SQL text, so they must pass Validate.
type Table struct {
	Name   string `json:"name" yaml:"name"`
	Schema string `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// FullName returns the full table name including schema if set.
func (t Table) FullName() string {
	if t.Schema != "" {
		return t.Schema + "." + t.Name
	}
	return t.Name
}

// Validate rejects names that are not plain SQL identifiers.
func (t Table) Validate() error {
	if !identifierPattern.MatchString(t.Name) {
		return fmt.Errorf("invalid table name %q", t.Name)
	}
	if t.Schema != "" && !identifierPattern.MatchString(t.Schema) {
		return fmt.Errorf("invalid schema name %q", t.Schema)
	}
	return nil
}

func (t Table) String() string {
	return t.FullName()
}
