package store

import (
	"context"
	"time"

	"github.com/Leahcim-1/rd-comment-service/internal/logger"
)

// OperationType represents different types of database operations.
type OperationType string

const (
	OpFind         OperationType = "find"
	OpExists       OperationType = "exists"
	OpInsert       OperationType = "insert"
	OpUpdate       OperationType = "update"
	OpDelete       OperationType = "delete"
	OpSyncSequence OperationType = "sync_sequence"
)

// MiddlewareContext contains information passed to middleware. Query and
// Args are filled in by the executing statement before it hits the driver.
type MiddlewareContext struct {
	Operation    OperationType
	TableName    string
	Query        string
	Args         []interface{}
	RowsAffected int64
	StartTime    time.Time
	Context      context.Context
}

// QueryMiddlewareFunc runs one statement.
type QueryMiddlewareFunc func(ctx *MiddlewareContext) error

// QueryMiddleware wraps statement execution.
type QueryMiddleware func(next QueryMiddlewareFunc) QueryMiddlewareFunc

type middlewareManager struct {
	middleware []QueryMiddleware
}

func (mm *middlewareManager) add(middleware QueryMiddleware) {
	mm.middleware = append(mm.middleware, middleware)
}

func (mm *middlewareManager) execute(ctx *MiddlewareContext, finalFunc QueryMiddlewareFunc) error {
	handler := finalFunc

	for i := len(mm.middleware) - 1; i >= 0; i-- {
		handler = mm.middleware[i](handler)
	}

	return handler(ctx)
}

func (r *Repository[T]) executeQueryMiddleware(op OperationType, ctx context.Context, finalFunc QueryMiddlewareFunc) error {
	middlewareCtx := &MiddlewareContext{
		Operation: op,
		TableName: r.table.FullName(),
		Context:   ctx,
		StartTime: time.Now(),
	}

	if r.middlewareManager == nil {
		return finalFunc(middlewareCtx)
	}
	return r.middlewareManager.execute(middlewareCtx, finalFunc)
}

// AddMiddleware appends middleware; the first one added runs outermost.
func (r *Repository[T]) AddMiddleware(middleware QueryMiddleware) {
	if r.middlewareManager == nil {
		r.middlewareManager = &middlewareManager{}
	}
	r.middlewareManager.add(middleware)
}

// LoggingMiddleware logs every statement at debug level and failures at
// warn level.
func LoggingMiddleware(log logger.Logger) QueryMiddleware {
	return func(next QueryMiddlewareFunc) QueryMiddlewareFunc {
		return func(ctx *MiddlewareContext) error {
			err := next(ctx)

			entry := log.WithFields(map[string]interface{}{
				"op":       string(ctx.Operation),
				"table":    ctx.TableName,
				"duration": time.Since(ctx.StartTime).String(),
			})
			if err != nil {
				entry.WithError(err).WithField("query", ctx.Query).Warn("statement failed")
				return err
			}
			entry.WithField("rows_affected", ctx.RowsAffected).Debugf("%s", ctx.Query)
			return nil
		}
	}
}
