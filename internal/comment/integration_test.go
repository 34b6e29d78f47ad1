package comment

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leahcim-1/rd-comment-service/internal/logger"
	"github.com/Leahcim-1/rd-comment-service/internal/store"
	"github.com/Leahcim-1/rd-comment-service/internal/testdb"
)

func newPostgresService(t *testing.T) *Service {
	t.Helper()

	tdb := testdb.New(t, os.Getenv(testdb.EnvURL))
	require.NoError(t, tdb.CreateCommentTable(DefaultTable))

	svc, err := NewService(tdb.DB, DefaultTable, WithMiddleware(store.LoggingMiddleware(logger.SQL())))
	require.NoError(t, err)
	return svc
}

func sample(title string) NewComment {
	return NewComment{
		Title:      title,
		Subtitle:   "sub " + title,
		AuthorID:   "u1",
		AuthorName: "Ann",
		Tags:       []string{"go", "sql"},
		Body:       "body " + title,
	}
}

func TestPostgresRoundTrip(t *testing.T) {
	svc := newPostgresService(t)
	ctx := context.Background()

	blog := int64(7)
	in := sample("A")
	in.BlogID = &blog

	created := svc.PostComment(ctx, in)
	require.Equal(t, OK, created.Errno, "%v", created.Detail)
	require.NotZero(t, created.ID)

	got := svc.GetCommentByID(ctx, created.ID, nil)
	require.Equal(t, OK, got.Errno)
	require.Len(t, got.Comments, 1)

	c := got.Comments[0]
	assert.Equal(t, in.Title, c.Title)
	assert.Equal(t, in.Subtitle, c.Subtitle)
	assert.Equal(t, in.AuthorID, c.AuthorID)
	assert.Equal(t, in.AuthorName, c.AuthorName)
	assert.Equal(t, []string(c.Tags), in.Tags)
	assert.Equal(t, in.Body, c.Body)
	require.NotNil(t, c.BlogID)
	assert.Equal(t, blog, *c.BlogID)
	assert.NotZero(t, c.CreatedTime)

	byBlog := svc.GetCommentByBlogID(ctx, blog, []string{ColumnID}, DefaultLimit, 0)
	require.Equal(t, OK, byBlog.Errno)
	require.Len(t, byBlog.Comments, 1)
	assert.Equal(t, created.ID, byBlog.Comments[0].ID)
}

func TestPostgresConflictsAndLifecycle(t *testing.T) {
	svc := newPostgresService(t)
	ctx := context.Background()

	first := svc.PostComment(ctx, sample("A"))
	require.Equal(t, OK, first.Errno)
	second := svc.PostComment(ctx, sample("B"))
	require.Equal(t, OK, second.Errno)

	assert.Equal(t, DUPTITLE, svc.PostComment(ctx, sample("A")).Errno)

	clientID := first.ID
	withID := sample("C")
	withID.ID = &clientID
	assert.Equal(t, DUPID, svc.PostComment(ctx, withID).Errno)

	all := svc.GetAllComments(ctx, nil, DefaultLimit, 0)
	require.Equal(t, OK, all.Errno)
	assert.Len(t, all.Comments, 2)

	// update(id, {title: "", body: "y"}) only touches body
	res := svc.UpdateComment(ctx, first.ID, UpdatePayload{Title: "", Body: "y"}.Patch())
	require.Equal(t, OK, res.Errno)
	got := svc.GetCommentByID(ctx, first.ID, nil).Comments[0]
	assert.Equal(t, "A", got.Title)
	assert.Equal(t, "y", got.Body)

	assert.Equal(t, DUPTITLE, svc.UpdateComment(ctx, first.ID, Patch{Title: Some("B")}).Errno)
	assert.Equal(t, OK, svc.UpdateComment(ctx, first.ID, Patch{Title: Some("A")}).Errno)
	assert.Equal(t, NOEXIST, svc.UpdateComment(ctx, 999999, Patch{Body: Some("z")}).Errno)
	assert.Equal(t, NOEXIST, svc.UpdateComment(ctx, 999999, Patch{Title: Some("B")}).Errno)

	assert.Equal(t, OK, svc.Delete(ctx, second.ID).Errno)
	assert.Equal(t, NOEXIST, svc.Delete(ctx, second.ID).Errno)
	assert.Empty(t, svc.GetCommentByID(ctx, second.ID, nil).Comments)
}

func TestPostgresClientIDThenGeneratedIDs(t *testing.T) {
	svc := newPostgresService(t)
	ctx := context.Background()

	clientID := int64(5)
	withID := sample("explicit")
	withID.ID = &clientID
	created := svc.PostComment(ctx, withID)
	require.Equal(t, OK, created.Errno, "%v", created.Detail)
	assert.Equal(t, clientID, created.ID)

	seen := map[int64]bool{clientID: true}
	for i := 0; i < 6; i++ {
		res := svc.PostComment(ctx, sample(fmt.Sprintf("G%d", i)))
		require.Equal(t, OK, res.Errno, "%v", res.Detail)
		assert.Greater(t, res.ID, clientID)
		assert.False(t, seen[res.ID], "id %d handed out twice", res.ID)
		seen[res.ID] = true
	}
}

func TestPostgresPaging(t *testing.T) {
	svc := newPostgresService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.Equal(t, OK, svc.PostComment(ctx, sample(fmt.Sprintf("T%d", i))).Errno)
	}

	page := svc.GetAllComments(ctx, []string{ColumnID, ColumnTitle}, 2, 0)
	require.Equal(t, OK, page.Errno)
	require.Len(t, page.Comments, 2)
	assert.Equal(t, "T0", page.Comments[0].Title)
	assert.Equal(t, "T1", page.Comments[1].Title)

	tail := svc.GetAllComments(ctx, []string{ColumnTitle}, 2, 4)
	require.Equal(t, OK, tail.Errno)
	require.Len(t, tail.Comments, 1)
	assert.Equal(t, "T4", tail.Comments[0].Title)
}

func TestPostgresDeleteUpdateRace(t *testing.T) {
	svc := newPostgresService(t)
	ctx := context.Background()

	for round := 0; round < 20; round++ {
		created := svc.PostComment(ctx, sample(fmt.Sprintf("R%d", round)))
		require.Equal(t, OK, created.Errno)

		var wg sync.WaitGroup
		var deleted, updated Result
		wg.Add(2)
		go func() {
			defer wg.Done()
			deleted = svc.Delete(ctx, created.ID)
		}()
		go func() {
			defer wg.Done()
			updated = svc.UpdateComment(ctx, created.ID, Patch{Body: Some("late")})
		}()
		wg.Wait()

		// the update either lands before the delete or matches no row
		assert.Equal(t, OK, deleted.Errno)
		assert.Contains(t, []Errno{OK, NOEXIST}, updated.Errno)
		assert.Equal(t, NOEXIST, svc.Delete(ctx, created.ID).Errno)
	}
}
