package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/Masterminds/squirrel"
)

// Repository builds and runs parameterized statements for one table. T is
// the row type rows are scanned into via sqlx `db` tags.
type Repository[T any] struct {
	db                DBExecutor
	table             Table
	columns           []string
	known             map[string]struct{}
	middlewareManager *middlewareManager
}

// NewRepository binds a repository to an executor and a table. columns is
// the closed set of selectable/settable column names, in default select
// order.
func NewRepository[T any](db DBExecutor, table Table, columns []string) (*Repository[T], error) {
	if db == nil {
		return nil, fmt.Errorf("store: nil executor")
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("store: table %s has no columns", table.FullName())
	}

	known := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if !identifierPattern.MatchString(c) {
			return nil, fmt.Errorf("invalid column name %q", c)
		}
		known[c] = struct{}{}
	}

	return &Repository[T]{
		db:      db,
		table:   table,
		columns: append([]string(nil), columns...),
		known:   known,
	}, nil
}

// Table returns the table the repository is bound to.
func (r *Repository[T]) Table() Table {
	return r.table
}

// HasColumn reports whether name belongs to the table's column set.
func (r *Repository[T]) HasColumn(name string) bool {
	_, ok := r.known[name]
	return ok
}

func (r *Repository[T]) checkColumns(op string, names []string) error {
	for _, name := range names {
		if !r.HasColumn(name) {
			return &Error{
				Op:     op,
				Table:  r.table.FullName(),
				Column: name,
				Err:    ErrUnknownColumn,
			}
		}
	}
	return nil
}

// Insert adds one row built from values and returns the value of the
// returning column (usually the generated id).
func (r *Repository[T]) Insert(ctx context.Context, values map[string]interface{}, returning string) (int64, error) {
	tableName := r.table.FullName()

	if len(values) == 0 {
		return 0, &Error{Op: "insert", Table: tableName, Err: ErrNoValues}
	}

	names := sortedKeys(values)
	if err := r.checkColumns("insert", names); err != nil {
		return 0, err
	}
	if err := r.checkColumns("insert", []string{returning}); err != nil {
		return 0, err
	}

	builder := squirrel.Insert(tableName).
		PlaceholderFormat(squirrel.Dollar)
	for _, name := range names {
		builder = builder.Columns(name)
	}
	row := make([]interface{}, len(names))
	for i, name := range names {
		row[i] = values[name]
	}
	builder = builder.Values(row...).Suffix("RETURNING " + returning)

	var id int64
	err := r.executeQueryMiddleware(OpInsert, ctx, func(mctx *MiddlewareContext) error {
		sqlQuery, args, err := builder.ToSql()
		if err != nil {
			return &Error{
				Op:    "insert",
				Table: tableName,
				Err:   fmt.Errorf("failed to build insert query: %w", err),
			}
		}
		mctx.Query, mctx.Args = sqlQuery, args

		if err := r.db.GetContext(ctx, &id, sqlQuery, args...); err != nil {
			return ParsePostgreSQLError(err, "insert", tableName)
		}
		mctx.RowsAffected = 1
		return nil
	})

	return id, err
}

// SyncSequence moves the serial sequence behind column past the largest
// value stored in it, so later default values never collide with rows
// inserted under an explicit value. A column without a sequence is left
// alone.
func (r *Repository[T]) SyncSequence(ctx context.Context, column string) error {
	tableName := r.table.FullName()
	if err := r.checkColumns("sync_sequence", []string{column}); err != nil {
		return err
	}

	builder := squirrel.Select(fmt.Sprintf(
		"setval(seq.name, GREATEST(COALESCE(pg_sequence_last_value(seq.name), 0), (SELECT COALESCE(MAX(%s), 0) FROM %s), 1))",
		column, tableName)).
		Prefix("WITH seq AS (SELECT pg_get_serial_sequence(?, ?)::regclass AS name)", tableName, column).
		From("seq").
		PlaceholderFormat(squirrel.Dollar)

	return r.executeQueryMiddleware(OpSyncSequence, ctx, func(mctx *MiddlewareContext) error {
		sqlQuery, args, err := builder.ToSql()
		if err != nil {
			return &Error{
				Op:    "sync_sequence",
				Table: tableName,
				Err:   fmt.Errorf("failed to build sequence query: %w", err),
			}
		}
		mctx.Query, mctx.Args = sqlQuery, args

		var last sql.NullInt64
		if err := r.db.GetContext(ctx, &last, sqlQuery, args...); err != nil {
			return ParsePostgreSQLError(err, "sync_sequence", tableName)
		}
		return nil
	})
}

func sortedKeys(values map[string]interface{}) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
