package testdb

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leahcim-1/rd-comment-service/internal/store"
)

func TestCommentTableDDL(t *testing.T) {
	ddl := CommentTableDDL(store.Table{Schema: "comment", Name: "comment_table"})

	assert.Contains(t, ddl, `CREATE SCHEMA IF NOT EXISTS "comment";`)
	assert.Contains(t, ddl, `CREATE TABLE "comment"."comment_table" (`)
	assert.Contains(t, ddl, "title        TEXT NOT NULL UNIQUE")

	assert.NotContains(t, CommentTableDDL(store.Table{Name: "comments"}), "CREATE SCHEMA")
}

func TestWithDatabase(t *testing.T) {
	got, err := withDatabase("postgres://u@localhost:5432/postgres?sslmode=disable", "bender_test_1")
	require.NoError(t, err)
	assert.Equal(t, "postgres://u@localhost:5432/bender_test_1?sslmode=disable", got)

	_, err = withDatabase("host=localhost", "x")
	assert.Error(t, err)
}

func TestCreateCommentTable(t *testing.T) {
	tdb := New(t, os.Getenv(EnvURL))

	table := store.Table{Schema: "comment", Name: "comment_table"}
	require.NoError(t, tdb.CreateCommentTable(table))

	exists, err := tdb.TableExists(table)
	require.NoError(t, err)
	assert.True(t, exists)
}
