package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Common errors.
var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicateKey     = errors.New("duplicate key violation")
	ErrForeignKey       = errors.New("foreign key violation")
	ErrCheckConstraint  = errors.New("check constraint violation")
	ErrNotNull          = errors.New("not null constraint violation")
	ErrConnectionFailed = errors.New("database connection failed")
	ErrTimeout          = errors.New("operation timeout")
	ErrCanceled         = errors.New("operation canceled")
	ErrUnknownColumn    = errors.New("unknown column")
	ErrNoValues         = errors.New("no values provided")
)

// SQLSTATE codes classified by ParsePostgreSQLError.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeNotNullViolation    = "23502"
	codeCheckViolation      = "23514"
)

// Error provides detailed error information.
type Error struct {
	Op         string        // Operation that failed
	Table      string        // Table involved
	Err        error         // Underlying error
	Query      string        // SQL query (if applicable)
	Args       []interface{} // Query arguments (if applicable)
	Constraint string        // Constraint name (if applicable)
	Column     string        // Column name (if applicable)
	Retryable  bool          // Whether the operation can be retried
}

func (e *Error) Error() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("store: %s", e.Op))

	if e.Table != "" {
		parts = append(parts, fmt.Sprintf("table=%s", e.Table))
	}
	if e.Column != "" {
		parts = append(parts, fmt.Sprintf("column=%s", e.Column))
	}
	if e.Constraint != "" {
		parts = append(parts, fmt.Sprintf("constraint=%s", e.Constraint))
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for Error type.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return errors.Is(e.Err, target)
	}

	if t.Op != "" && e.Op == t.Op {
		return true
	}

	return errors.Is(e.Err, t.Err)
}

// ParsePostgreSQLError converts driver errors to store errors. Errors from
// lib/pq are classified by SQLSTATE; anything else falls back to matching
// the message text.
func ParsePostgreSQLError(err error, op, table string) error {
	if err == nil {
		return nil
	}

	var already *Error
	if errors.As(err, &already) {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return &Error{Op: op, Table: table, Err: ErrNotFound}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Op: op, Table: table, Err: ErrTimeout, Retryable: true}
	}

	if errors.Is(err, context.Canceled) {
		return &Error{Op: op, Table: table, Err: ErrCanceled}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case codeUniqueViolation:
			return &Error{Op: op, Table: table, Err: ErrDuplicateKey, Constraint: pqErr.Constraint}
		case codeForeignKeyViolation:
			return &Error{Op: op, Table: table, Err: ErrForeignKey, Constraint: pqErr.Constraint}
		case codeNotNullViolation:
			return &Error{Op: op, Table: table, Err: ErrNotNull, Column: pqErr.Column}
		case codeCheckViolation:
			return &Error{Op: op, Table: table, Err: ErrCheckConstraint, Constraint: pqErr.Constraint}
		}
		if pqErr.Code.Class() == "08" {
			return &Error{Op: op, Table: table, Err: ErrConnectionFailed, Retryable: true}
		}
		return &Error{Op: op, Table: table, Err: err}
	}

	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "duplicate key value violates unique constraint"):
		return &Error{Op: op, Table: table, Err: ErrDuplicateKey, Constraint: extractConstraintName(errStr)}
	case strings.Contains(errStr, "violates foreign key constraint"):
		return &Error{Op: op, Table: table, Err: ErrForeignKey, Constraint: extractConstraintName(errStr)}
	case strings.Contains(errStr, "violates not-null constraint"):
		return &Error{Op: op, Table: table, Err: ErrNotNull, Column: extractColumnName(errStr)}
	case strings.Contains(errStr, "violates check constraint"):
		return &Error{Op: op, Table: table, Err: ErrCheckConstraint, Constraint: extractConstraintName(errStr)}
	case strings.Contains(errStr, "connection refused"),
		strings.Contains(errStr, "connection reset"),
		strings.Contains(errStr, "broken pipe"):
		return &Error{Op: op, Table: table, Err: ErrConnectionFailed, Retryable: true}
	}

	return &Error{Op: op, Table: table, Err: err}
}

func extractConstraintName(errStr string) string {
	start := strings.Index(errStr, "\"")
	if start == -1 {
		return ""
	}
	end := strings.Index(errStr[start+1:], "\"")
	if end == -1 {
		return ""
	}
	return errStr[start+1 : start+1+end]
}

func extractColumnName(errStr string) string {
	columnIdx := strings.Index(errStr, "column \"")
	if columnIdx == -1 {
		return ""
	}
	start := columnIdx + len("column \"")
	end := strings.Index(errStr[start:], "\"")
	if end == -1 {
		return ""
	}
	return errStr[start : start+end]
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var storeErr *Error
	if errors.As(err, &storeErr) {
		return storeErr.Retryable
	}
	return false
}

// GetConstraintName extracts the constraint name from an error.
func GetConstraintName(err error) string {
	var storeErr *Error
	if errors.As(err, &storeErr) {
		return storeErr.Constraint
	}
	return ""
}
