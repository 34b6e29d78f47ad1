package comment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Leahcim-1/rd-comment-service/internal/logger"
	"github.com/Leahcim-1/rd-comment-service/internal/store"
)

// DefaultLimit bounds list reads when the caller gives no limit.
const DefaultLimit uint64 = 10

var (
	errEmptyTitle = errors.New("title must not be empty")
	errZeroLimit  = errors.New("limit must be positive")
)

// OutcomeObserver is told the errno of every finished operation.
type OutcomeObserver func(op string, errno Errno)

// Option configures a Service.
type Option func(*Service)

// WithLogger replaces the service component logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithMiddleware adds query middleware to the underlying repository.
func WithMiddleware(mw ...store.QueryMiddleware) Option {
	return func(s *Service) {
		for _, m := range mw {
			s.repo.AddMiddleware(m)
		}
	}
}

// WithObserver registers an outcome observer.
func WithObserver(o OutcomeObserver) Option {
	return func(s *Service) { s.observers = append(s.observers, o) }
}

// WithClock overrides the source of created_time.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service maps comment CRUD intents onto parameterized statements and
// reports every outcome as an Errno. It holds no per-request state and is
// safe for concurrent use.
type Service struct {
	repo      *store.Repository[Comment]
	log       logger.Logger
	now       func() time.Time
	observers []OutcomeObserver
}

// NewService builds a service over db. The pool is owned by the caller.
func NewService(db store.DBExecutor, table store.Table, opts ...Option) (*Service, error) {
	repo, err := store.NewRepository[Comment](db, table, Columns)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment repository: %w", err)
	}

	s := &Service{
		repo: repo,
		log:  logger.Service(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Table returns the table the service reads and writes.
func (s *Service) Table() store.Table {
	return s.repo.Table()
}

// executeWithTry is the single point where storage failures become DBERR.
// A panic inside fn is recovered and reported the same way.
func (s *Service) executeWithTry(op string, fn func() ([]Comment, error), returning bool) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic during %s: %v", op, r)
			s.log.WithError(err).WithField("op", op).Error("comment operation panicked")
			res = failed(DBERR, err)
		}
	}()

	rows, err := fn()
	if err != nil {
		s.log.WithError(err).WithFields(map[string]interface{}{
			"op":    op,
			"table": s.repo.Table().FullName(),
		}).Error("comment operation failed")
		return failed(DBERR, err)
	}

	res = newResult(OK)
	if returning && rows != nil {
		res.Comments = rows
	}
	return res
}

func (s *Service) finish(op string, res Result) Result {
	for _, o := range s.observers {
		o(op, res.Errno)
	}
	return res
}

func (s *Service) checkExistedID(ctx context.Context, id int64) (bool, error) {
	return s.repo.Query(ctx).Where(store.Eq(ColumnID, id)).Exists()
}

// checkExistedTitle looks for title on any row other than exceptID. An
// exceptID of zero excludes nothing.
func (s *Service) checkExistedTitle(ctx context.Context, title string, exceptID int64) (bool, error) {
	cond := store.Eq(ColumnTitle, title)
	if exceptID != 0 {
		cond = cond.And(store.NotEq(ColumnID, exceptID))
	}
	return s.repo.Query(ctx).Where(cond).Exists()
}

func (s *Service) checkNonExistedID(ctx context.Context, id int64) (bool, error) {
	existed, err := s.checkExistedID(ctx, id)
	return !existed, err
}

func (s *Service) checkFailed(op string, err error) Result {
	s.log.WithError(err).WithField("op", op).Error("existence check failed")
	return failed(DBERR, err)
}

// GetAllComments lists comments in creation order.
func (s *Service) GetAllComments(ctx context.Context, fields []string, limit, offset uint64) Result {
	return s.finish("list", s.selectComments(ctx, "list", store.Condition{}, fields, limit, offset))
}

// GetCommentByCondition lists comments matching cond in creation order.
func (s *Service) GetCommentByCondition(ctx context.Context, cond store.Condition, fields []string, limit, offset uint64) Result {
	return s.finish("find", s.selectComments(ctx, "find", cond, fields, limit, offset))
}

// GetCommentByID returns zero or one comment.
func (s *Service) GetCommentByID(ctx context.Context, id int64, fields []string) Result {
	return s.finish("get", s.selectComments(ctx, "get", store.Eq(ColumnID, id), fields, 1, 0))
}

// GetCommentByBlogID lists the comments attached to one blog.
func (s *Service) GetCommentByBlogID(ctx context.Context, blogID int64, fields []string, limit, offset uint64) Result {
	return s.finish("list_by_blog", s.selectComments(ctx, "list_by_blog", store.Eq(ColumnBlogID, blogID), fields, limit, offset))
}

func (s *Service) selectComments(ctx context.Context, op string, cond store.Condition, fields []string, limit, offset uint64) Result {
	if err := ValidateFields(fields); err != nil {
		return failed(BADPARAMS, err)
	}
	if limit == 0 {
		return failed(BADPARAMS, errZeroLimit)
	}

	return s.executeWithTry(op, func() ([]Comment, error) {
		return s.repo.Query(ctx).
			Select(fields...).
			Where(cond).
			OrderBy(ColumnID + " ASC").
			Limit(limit).
			Offset(offset).
			Find()
	}, true)
}

// PostComment creates a comment and reports its id. A client supplied id
// that already exists yields DUPID; a title already in use yields DUPTITLE.
// After inserting a client supplied id the id sequence is moved past it.
func (s *Service) PostComment(ctx context.Context, in NewComment) Result {
	const op = "create"

	if strings.TrimSpace(in.Title) == "" {
		return s.finish(op, failed(BADPARAMS, errEmptyTitle))
	}

	if in.ID != nil {
		existed, err := s.checkExistedID(ctx, *in.ID)
		if err != nil {
			return s.finish(op, s.checkFailed(op, err))
		}
		if existed {
			return s.finish(op, newResult(DUPID))
		}
	}

	existed, err := s.checkExistedTitle(ctx, in.Title, 0)
	if err != nil {
		return s.finish(op, s.checkFailed(op, err))
	}
	if existed {
		return s.finish(op, newResult(DUPTITLE))
	}

	var id int64
	res := s.executeWithTry(op, func() ([]Comment, error) {
		var err error
		id, err = s.repo.Insert(ctx, in.values(s.now().UnixMilli()), ColumnID)
		return nil, err
	}, false)
	if !res.OK() {
		res.Errno = conflictErrno(res.Detail, in.ID != nil)
		return s.finish(op, res)
	}

	if in.ID != nil {
		if err := s.repo.SyncSequence(ctx, ColumnID); err != nil {
			s.log.WithError(err).WithField("id", id).Warn("failed to advance id sequence past client supplied id")
		}
	}

	res.ID = id
	return s.finish(op, res)
}

// UpdateComment applies the set fields of p to comment id in a single
// statement. A missing row yields NOEXIST, even when the new title is taken
// elsewhere. An empty patch only checks that the row exists.
func (s *Service) UpdateComment(ctx context.Context, id int64, p Patch) Result {
	const op = "update"

	title, hasTitle := p.Title.Get()
	if hasTitle && strings.TrimSpace(title) == "" {
		return s.finish(op, failed(BADPARAMS, errEmptyTitle))
	}

	if p.IsEmpty() {
		nonExisted, err := s.checkNonExistedID(ctx, id)
		if err != nil {
			return s.finish(op, s.checkFailed(op, err))
		}
		if nonExisted {
			return s.finish(op, newResult(NOEXIST))
		}
		return s.finish(op, newResult(OK))
	}

	if hasTitle {
		existed, err := s.checkExistedTitle(ctx, title, id)
		if err != nil {
			return s.finish(op, s.checkFailed(op, err))
		}
		if existed {
			nonExisted, err := s.checkNonExistedID(ctx, id)
			if err != nil {
				return s.finish(op, s.checkFailed(op, err))
			}
			if nonExisted {
				return s.finish(op, newResult(NOEXIST))
			}
			return s.finish(op, newResult(DUPTITLE))
		}
	}

	var affected int64
	res := s.executeWithTry(op, func() ([]Comment, error) {
		var err error
		affected, err = s.repo.Query(ctx).Where(store.Eq(ColumnID, id)).Update(p.values())
		return nil, err
	}, false)
	if !res.OK() {
		res.Errno = conflictErrno(res.Detail, false)
		return s.finish(op, res)
	}
	if affected == 0 {
		return s.finish(op, newResult(NOEXIST))
	}
	return s.finish(op, res)
}

// Delete removes comment id. A missing row yields NOEXIST, so deleting the
// same id twice reports OK then NOEXIST.
func (s *Service) Delete(ctx context.Context, id int64) Result {
	const op = "delete"

	var affected int64
	res := s.executeWithTry(op, func() ([]Comment, error) {
		var err error
		affected, err = s.repo.Query(ctx).Where(store.Eq(ColumnID, id)).Delete()
		return nil, err
	}, false)
	if !res.OK() {
		return s.finish(op, res)
	}
	if affected == 0 {
		return s.finish(op, newResult(NOEXIST))
	}
	return s.finish(op, res)
}

// conflictErrno narrows a failed write to DUPTITLE or DUPID when the
// storage rejected it with a unique violation it can attribute. A primary
// key clash is only DUPID when the caller chose the id.
func conflictErrno(err error, clientID bool) Errno {
	if !errors.Is(err, store.ErrDuplicateKey) {
		return DBERR
	}

	constraint := store.GetConstraintName(err)
	switch {
	case strings.Contains(constraint, ColumnTitle):
		return DUPTITLE
	case clientID && strings.HasSuffix(constraint, "_pkey"):
		return DUPID
	}
	return DBERR
}
