package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
)

// Query provides a fluent interface for building a statement against the
// repository's table. Errors are deferred until execution.
type Query[T any] struct {
	repo *Repository[T]
	err  error
	ctx  context.Context

	columns     []string
	limit       *uint64
	offset      *uint64
	orderBy     []string
	whereClause squirrel.And
}

// Query creates a new query bound to ctx.
func (r *Repository[T]) Query(ctx context.Context) *Query[T] {
	return &Query[T]{
		repo:        r,
		ctx:         ctx,
		columns:     r.columns,
		whereClause: squirrel.And{},
	}
}

// Select restricts the column list. No fields means every column.
func (q *Query[T]) Select(fields ...string) *Query[T] {
	if q.err != nil || len(fields) == 0 {
		return q
	}
	if err := q.repo.checkColumns("select", fields); err != nil {
		q.err = err
		return q
	}
	q.columns = fields
	return q
}

// Where adds a condition; repeated calls are joined with AND.
func (q *Query[T]) Where(condition Condition) *Query[T] {
	if q.err != nil || condition.IsZero() {
		return q
	}
	q.whereClause = append(q.whereClause, condition.ToSqlizer())
	return q
}

// OrderBy adds an ORDER BY clause.
func (q *Query[T]) OrderBy(expressions ...string) *Query[T] {
	if q.err != nil {
		return q
	}
	q.orderBy = append(q.orderBy, expressions...)
	return q
}

// Limit sets the LIMIT clause.
func (q *Query[T]) Limit(limit uint64) *Query[T] {
	if q.err != nil {
		return q
	}
	q.limit = &limit
	return q
}

// Offset sets the OFFSET clause.
func (q *Query[T]) Offset(offset uint64) *Query[T] {
	if q.err != nil {
		return q
	}
	q.offset = &offset
	return q
}

func (q *Query[T]) selectBuilder() squirrel.SelectBuilder {
	builder := squirrel.Select(q.columns...).
		From(q.repo.table.FullName()).
		PlaceholderFormat(squirrel.Dollar)

	if len(q.whereClause) > 0 {
		builder = builder.Where(q.whereClause)
	}
	for _, orderBy := range q.orderBy {
		builder = builder.OrderBy(orderBy)
	}
	if q.limit != nil {
		builder = builder.Limit(*q.limit)
	}
	if q.offset != nil {
		builder = builder.Offset(*q.offset)
	}
	return builder
}

// Find executes the query and returns all matching records. An empty
// result is a non-nil empty slice.
func (q *Query[T]) Find() ([]T, error) {
	tableName := q.repo.table.FullName()
	if q.err != nil {
		return nil, q.err
	}

	records := make([]T, 0)
	err := q.repo.executeQueryMiddleware(OpFind, q.ctx, func(mctx *MiddlewareContext) error {
		sqlQuery, args, err := q.selectBuilder().ToSql()
		if err != nil {
			return &Error{
				Op:    "find",
				Table: tableName,
				Err:   fmt.Errorf("failed to build query: %w", err),
			}
		}
		mctx.Query, mctx.Args = sqlQuery, args

		if err := q.repo.db.SelectContext(q.ctx, &records, sqlQuery, args...); err != nil {
			return ParsePostgreSQLError(err, "find", tableName)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

// Exists reports whether any row matches. It issues a single
// SELECT EXISTS query instead of reading rows.
func (q *Query[T]) Exists() (bool, error) {
	tableName := q.repo.table.FullName()
	if q.err != nil {
		return false, q.err
	}

	existsBuilder := squirrel.Select("1").
		From(tableName).
		Prefix("SELECT EXISTS (").
		Suffix(")").
		PlaceholderFormat(squirrel.Dollar)
	if len(q.whereClause) > 0 {
		existsBuilder = existsBuilder.Where(q.whereClause)
	}

	var exists bool
	err := q.repo.executeQueryMiddleware(OpExists, q.ctx, func(mctx *MiddlewareContext) error {
		sqlQuery, args, err := existsBuilder.ToSql()
		if err != nil {
			return &Error{
				Op:    "exists",
				Table: tableName,
				Err:   fmt.Errorf("failed to build exists query: %w", err),
			}
		}
		mctx.Query, mctx.Args = sqlQuery, args

		if err := q.repo.db.GetContext(q.ctx, &exists, sqlQuery, args...); err != nil {
			return ParsePostgreSQLError(err, "exists", tableName)
		}
		return nil
	})

	return exists, err
}

// Update sets the given columns on every matching row and returns the
// number of rows affected.
func (q *Query[T]) Update(updates map[string]interface{}) (int64, error) {
	tableName := q.repo.table.FullName()
	if q.err != nil {
		return 0, q.err
	}
	if len(updates) == 0 {
		return 0, &Error{Op: "update", Table: tableName, Err: ErrNoValues}
	}

	names := sortedKeys(updates)
	if err := q.repo.checkColumns("update", names); err != nil {
		return 0, err
	}

	updateBuilder := squirrel.Update(tableName).
		PlaceholderFormat(squirrel.Dollar)
	for _, column := range names {
		updateBuilder = updateBuilder.Set(column, updates[column])
	}
	if len(q.whereClause) > 0 {
		updateBuilder = updateBuilder.Where(q.whereClause)
	}

	return q.exec(OpUpdate, updateBuilder)
}

// Delete deletes all records matching the query.
func (q *Query[T]) Delete() (int64, error) {
	if q.err != nil {
		return 0, q.err
	}

	deleteBuilder := squirrel.Delete(q.repo.table.FullName()).
		PlaceholderFormat(squirrel.Dollar)
	if len(q.whereClause) > 0 {
		deleteBuilder = deleteBuilder.Where(q.whereClause)
	}

	return q.exec(OpDelete, deleteBuilder)
}

func (q *Query[T]) exec(op OperationType, builder squirrel.Sqlizer) (int64, error) {
	tableName := q.repo.table.FullName()

	var rowsAffected int64
	err := q.repo.executeQueryMiddleware(op, q.ctx, func(mctx *MiddlewareContext) error {
		sqlQuery, args, err := builder.ToSql()
		if err != nil {
			return &Error{
				Op:    string(op),
				Table: tableName,
				Err:   fmt.Errorf("failed to build %s query: %w", op, err),
			}
		}
		mctx.Query, mctx.Args = sqlQuery, args

		var result sql.Result
		result, err = q.repo.db.ExecContext(q.ctx, sqlQuery, args...)
		if err != nil {
			return ParsePostgreSQLError(err, string(op), tableName)
		}

		rowsAffected, err = result.RowsAffected()
		if err != nil {
			return &Error{
				Op:    string(op),
				Table: tableName,
				Err:   fmt.Errorf("failed to get rows affected: %w", err),
			}
		}
		mctx.RowsAffected = rowsAffected
		return nil
	})

	return rowsAffected, err
}
