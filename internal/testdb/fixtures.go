package testdb

import (
	"fmt"

	"github.com/lib/pq"

	"github.com/Leahcim-1/rd-comment-service/internal/store"
)

// CommentTableDDL returns the statements that create a comment table.
// title carries a unique constraint so conflicts surface as
// <table>_title_key.
func CommentTableDDL(table store.Table) string {
	name := pq.QuoteIdentifier(table.Name)
	ddl := ""
	if table.Schema != "" {
		ddl = fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s;\n", pq.QuoteIdentifier(table.Schema))
		name = pq.QuoteIdentifier(table.Schema) + "." + name
	}

	return ddl + fmt.Sprintf(`CREATE TABLE %s (
	id           BIGSERIAL PRIMARY KEY,
	title        TEXT NOT NULL UNIQUE,
	subtitle     TEXT NOT NULL DEFAULT '',
	author_id    TEXT NOT NULL DEFAULT '',
	author_name  TEXT NOT NULL DEFAULT '',
	blog_id      BIGINT,
	tags         TEXT[] NOT NULL DEFAULT '{}',
	body         TEXT NOT NULL DEFAULT '',
	created_time BIGINT NOT NULL
);`, name)
}

// CreateCommentTable runs CommentTableDDL against the test database.
func (tdb *TestDB) CreateCommentTable(table store.Table) error {
	return tdb.ExecuteSQL(CommentTableDDL(table))
}
