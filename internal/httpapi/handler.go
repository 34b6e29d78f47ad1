package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Leahcim-1/rd-comment-service/internal/comment"
	"github.com/Leahcim-1/rd-comment-service/internal/logger"
)

const (
	greeting     = "Hello, this is Bender, the bending machine"
	maxBodyBytes = 1 << 20
	pingTimeout  = 2 * time.Second
)

// CommentService is what the handlers need from the comment service.
type CommentService interface {
	GetAllComments(ctx context.Context, fields []string, limit, offset uint64) comment.Result
	GetCommentByID(ctx context.Context, id int64, fields []string) comment.Result
	GetCommentByBlogID(ctx context.Context, blogID int64, fields []string, limit, offset uint64) comment.Result
	PostComment(ctx context.Context, in comment.NewComment) comment.Result
	UpdateComment(ctx context.Context, id int64, p comment.Patch) comment.Result
	Delete(ctx context.Context, id int64) comment.Result
}

// Pinger checks that storage is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler serves the comment API.
type Handler struct {
	svc    CommentService
	pinger Pinger
	log    logger.Logger
}

// NewHandler returns a handler over svc. pinger may be nil, in which case
// /healthz always reports ok.
func NewHandler(svc CommentService, pinger Pinger) *Handler {
	return &Handler{
		svc:    svc,
		pinger: pinger,
		log:    logger.HTTP(),
	}
}

func (h *Handler) greet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, greeting)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()
		if err := h.pinger.PingContext(ctx); err != nil {
			h.log.WithError(err).Warn("health check failed")
			status, code = "unavailable", http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func (h *Handler) listComments(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pageParams(r)
	if err != nil {
		badParams(w, err)
		return
	}

	res := h.svc.GetAllComments(r.Context(), comment.ParseFields(r.URL.Query().Get("fields")), limit, offset)
	h.respondList(w, res, "/api/comments", limit, offset)
}

func (h *Handler) listBlogComments(w http.ResponseWriter, r *http.Request) {
	blogID, err := pathID(r, "blogId")
	if err != nil {
		badParams(w, err)
		return
	}
	limit, offset, err := pageParams(r)
	if err != nil {
		badParams(w, err)
		return
	}

	res := h.svc.GetCommentByBlogID(r.Context(), blogID, comment.ParseFields(r.URL.Query().Get("fields")), limit, offset)
	h.respondList(w, res, fmt.Sprintf("/api/blogs/%d/comments", blogID), limit, offset)
}

func (h *Handler) respondList(w http.ResponseWriter, res comment.Result, base string, limit, offset uint64) {
	status := listStatus.status(res.Errno)

	var links []Link
	if status == http.StatusOK {
		links = pageLinks(base, limit, offset, len(res.Comments))
	}
	writeResult(w, status, res, readData(res), links)
}

func (h *Handler) getComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badParams(w, err)
		return
	}

	res := h.svc.GetCommentByID(r.Context(), id, comment.ParseFields(r.URL.Query().Get("fields")))
	status := getStatus.status(res.Errno)
	if res.OK() && len(res.Comments) == 0 {
		status = http.StatusNotFound
	}
	writeResult(w, status, res, readData(res), nil)
}

func (h *Handler) createComment(w http.ResponseWriter, r *http.Request) {
	var in comment.NewComment
	if err := decodeJSON(w, r, &in); err != nil {
		badParams(w, err)
		return
	}
	if err := validationError(in); err != nil {
		badParams(w, err)
		return
	}

	res := h.svc.PostComment(r.Context(), in)
	writeResult(w, createStatus.status(res.Errno), res, writeData(res), nil)
}

func (h *Handler) updateComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badParams(w, err)
		return
	}

	var payload comment.UpdatePayload
	if err := decodeJSON(w, r, &payload); err != nil {
		badParams(w, err)
		return
	}

	res := h.svc.UpdateComment(r.Context(), id, payload.Patch())
	writeResult(w, updateStatus.status(res.Errno), res, writeData(res), nil)
}

func (h *Handler) deleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badParams(w, err)
		return
	}

	res := h.svc.Delete(r.Context(), id)
	writeResult(w, deleteStatus.status(res.Errno), res, writeData(res), nil)
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

// pageParams reads limit and offset, defaulting to 10 and 0. Both must fit
// a signed bigint.
func pageParams(r *http.Request) (uint64, uint64, error) {
	q := r.URL.Query()

	limit := comment.DefaultLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 63)
		if err != nil || n == 0 {
			return 0, 0, fmt.Errorf("invalid limit %q", raw)
		}
		limit = n
	}

	var offset uint64
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 63)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid offset %q", raw)
		}
		offset = n
	}
	return limit, offset, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body must not be empty")
		}
		return fmt.Errorf("malformed JSON body: %w", err)
	}
	return nil
}
