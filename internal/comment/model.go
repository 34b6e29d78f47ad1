package comment

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/Leahcim-1/rd-comment-service/internal/store"
)

// DefaultTable is where comments live unless configured otherwise.
var DefaultTable = store.Table{Schema: "comment", Name: "comment_table"}

// Column names of the comment table.
const (
	ColumnID          = "id"
	ColumnTitle       = "title"
	ColumnSubtitle    = "subtitle"
	ColumnAuthorID    = "author_id"
	ColumnAuthorName  = "author_name"
	ColumnBlogID      = "blog_id"
	ColumnTags        = "tags"
	ColumnBody        = "body"
	ColumnCreatedTime = "created_time"
)

// Columns is the closed set of selectable columns, in default select order.
var Columns = []string{
	ColumnID,
	ColumnTitle,
	ColumnSubtitle,
	ColumnAuthorID,
	ColumnAuthorName,
	ColumnBlogID,
	ColumnTags,
	ColumnBody,
	ColumnCreatedTime,
}

// Comment is one row of the comment table. Fields left out of a projection
// stay zero and are omitted from JSON.
type Comment struct {
	ID          int64          `db:"id" json:"id,omitempty"`
	Title       string         `db:"title" json:"title,omitempty"`
	Subtitle    string         `db:"subtitle" json:"subtitle,omitempty"`
	AuthorID    string         `db:"author_id" json:"author_id,omitempty"`
	AuthorName  string         `db:"author_name" json:"author_name,omitempty"`
	BlogID      *int64         `db:"blog_id" json:"blog_id,omitempty"`
	Tags        pq.StringArray `db:"tags" json:"tags,omitempty"`
	Body        string         `db:"body" json:"body,omitempty"`
	CreatedTime int64          `db:"created_time" json:"created_time,omitempty"`
}

// NewComment is the input of a create. ID is only set when the client
// chooses its own identifier.
type NewComment struct {
	ID         *int64   `json:"id,omitempty" validate:"omitempty,gt=0"`
	Title      string   `json:"title" validate:"required"`
	Subtitle   string   `json:"subtitle" validate:"required"`
	AuthorID   string   `json:"author_id" validate:"required"`
	AuthorName string   `json:"author_name" validate:"required"`
	BlogID     *int64   `json:"blog_id,omitempty" validate:"omitempty,gt=0"`
	Tags       []string `json:"tags" validate:"dive,required"`
	Body       string   `json:"body" validate:"required"`
}

func (n NewComment) values(createdTime int64) map[string]interface{} {
	tags := pq.StringArray(n.Tags)
	if tags == nil {
		tags = pq.StringArray{}
	}

	values := map[string]interface{}{
		ColumnTitle:       n.Title,
		ColumnSubtitle:    n.Subtitle,
		ColumnAuthorID:    n.AuthorID,
		ColumnAuthorName:  n.AuthorName,
		ColumnTags:        tags,
		ColumnBody:        n.Body,
		ColumnCreatedTime: createdTime,
	}
	if n.ID != nil {
		values[ColumnID] = *n.ID
	}
	if n.BlogID != nil {
		values[ColumnBlogID] = *n.BlogID
	}
	return values
}

// Optional marks whether a value was provided at all, so that a provided
// zero value is distinguishable from an absent one.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns a provided value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Get returns the value and whether it was provided.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

func (o Optional[T]) IsSet() bool {
	return o.set
}

// Patch is a partial update. Only fields that are set are written.
type Patch struct {
	Title    Optional[string]
	Subtitle Optional[string]
	Tags     Optional[[]string]
	Body     Optional[string]
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return !p.Title.IsSet() && !p.Subtitle.IsSet() && !p.Tags.IsSet() && !p.Body.IsSet()
}

func (p Patch) values() map[string]interface{} {
	values := make(map[string]interface{})
	if v, ok := p.Title.Get(); ok {
		values[ColumnTitle] = v
	}
	if v, ok := p.Subtitle.Get(); ok {
		values[ColumnSubtitle] = v
	}
	if v, ok := p.Tags.Get(); ok {
		tags := pq.StringArray(v)
		if tags == nil {
			tags = pq.StringArray{}
		}
		values[ColumnTags] = tags
	}
	if v, ok := p.Body.Get(); ok {
		values[ColumnBody] = v
	}
	return values
}

// UpdatePayload is the wire form of an update. Empty strings and empty tag
// lists count as not provided.
type UpdatePayload struct {
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle"`
	Tags     []string `json:"tags"`
	Body     string   `json:"body"`
}

// Patch converts the payload, dropping every empty field.
func (u UpdatePayload) Patch() Patch {
	var p Patch
	if u.Title != "" {
		p.Title = Some(u.Title)
	}
	if u.Subtitle != "" {
		p.Subtitle = Some(u.Subtitle)
	}
	if len(u.Tags) > 0 {
		p.Tags = Some(u.Tags)
	}
	if u.Body != "" {
		p.Body = Some(u.Body)
	}
	return p
}

// ParseFields splits a comma separated field list. Blank entries are
// dropped; an empty list selects every column.
func ParseFields(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var fields []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// ValidateFields rejects names outside Columns.
func ValidateFields(fields []string) error {
	for _, f := range fields {
		if !isColumn(f) {
			return fmt.Errorf("unknown field %q", f)
		}
	}
	return nil
}

func isColumn(name string) bool {
	for _, c := range Columns {
		if c == name {
			return true
		}
	}
	return false
}
