package httpapi

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"github.com/Leahcim-1/rd-comment-service/internal/comment"
	"github.com/Leahcim-1/rd-comment-service/internal/logger"
	"github.com/Leahcim-1/rd-comment-service/internal/store"
)

// retryAfter is the Retry-After hint, in seconds, sent with a DBERR caused
// by a transient storage failure.
const retryAfter = "1"

// Link is one hypermedia reference in a response.
type Link struct {
	Rel  string `json:"rel"`
	Link string `json:"link"`
}

// Envelope is the body of every JSON response.
type Envelope struct {
	Message comment.Errno `json:"message"`
	Data    interface{}   `json:"data"`
	Links   []Link        `json:"links"`
}

// statusMap maps an errno to an HTTP status for one route. Errnos missing
// from the map are answered with 500.
type statusMap map[comment.Errno]int

func (m statusMap) status(errno comment.Errno) int {
	if code, ok := m[errno]; ok {
		return code
	}
	return http.StatusInternalServerError
}

var (
	listStatus = statusMap{
		comment.OK:        http.StatusOK,
		comment.BADPARAMS: http.StatusBadRequest,
		comment.DBERR:     http.StatusInternalServerError,
	}
	getStatus = statusMap{
		comment.OK:        http.StatusOK,
		comment.BADPARAMS: http.StatusBadRequest,
		comment.DBERR:     http.StatusInternalServerError,
	}
	createStatus = statusMap{
		comment.OK:        http.StatusCreated,
		comment.BADPARAMS: http.StatusBadRequest,
		comment.DUPID:     http.StatusBadRequest,
		comment.DUPTITLE:  http.StatusConflict,
		comment.DBERR:     http.StatusInternalServerError,
	}
	updateStatus = statusMap{
		comment.OK:        http.StatusAccepted,
		comment.BADPARAMS: http.StatusBadRequest,
		comment.NOEXIST:   http.StatusBadRequest,
		comment.DUPTITLE:  http.StatusConflict,
		comment.DBERR:     http.StatusInternalServerError,
	}
	deleteStatus = statusMap{
		comment.OK:        http.StatusOK,
		comment.BADPARAMS: http.StatusBadRequest,
		comment.NOEXIST:   http.StatusBadRequest,
		comment.DBERR:     http.StatusInternalServerError,
	}
)

// pageLinks returns cur, next and prev links for a non-empty page. next is
// offered only when the page is full and the following offset stays in range.
func pageLinks(base string, limit, offset uint64, count int) []Link {
	if count == 0 {
		return []Link{}
	}

	links := []Link{{Rel: "cur", Link: pageURL(base, limit, offset)}}
	if uint64(count) >= limit && limit <= math.MaxInt64-offset {
		links = append(links, Link{Rel: "next", Link: pageURL(base, limit, offset+limit)})
	}
	if offset > 0 {
		prev := uint64(0)
		if offset > limit {
			prev = offset - limit
		}
		links = append(links, Link{Rel: "prev", Link: pageURL(base, limit, prev)})
	}
	return links
}

func pageURL(base string, limit, offset uint64) string {
	return fmt.Sprintf("%s?limit=%d&offset=%d", base, limit, offset)
}

// readData is the data member for a read outcome.
func readData(res comment.Result) interface{} {
	if res.Detail != nil {
		return errorData(res.Detail)
	}
	if res.Comments == nil {
		return []comment.Comment{}
	}
	return res.Comments
}

// writeData is the data member for a write outcome.
func writeData(res comment.Result) interface{} {
	switch {
	case res.Detail != nil:
		return errorData(res.Detail)
	case res.OK() && res.ID != 0:
		return map[string]int64{"id": res.ID}
	case res.OK():
		return struct{}{}
	}
	return []comment.Comment{}
}

func errorData(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}

// writeResult answers with the outcome of a service call.
func writeResult(w http.ResponseWriter, status int, res comment.Result, data interface{}, links []Link) {
	if res.Errno == comment.DBERR && store.IsRetryable(res.Detail) {
		w.Header().Set("Retry-After", retryAfter)
	}
	writeJSON(w, status, Envelope{Message: res.Errno, Data: data, Links: links})
}

func writeJSON(w http.ResponseWriter, status int, body Envelope) {
	if body.Links == nil {
		body.Links = []Link{}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.HTTP().WithError(err).Warn("failed to write response")
	}
}

func badParams(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, Envelope{
		Message: comment.BADPARAMS,
		Data:    errorData(err),
	})
}
