package core

import (
	"context"
	"database/sql"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/yatube/internal/utils/databaseutils"
	"github.com/siahsang/yatube/models"
)

func scanComment(rows *sql.Rows) (*models.Comment, error) {
	var (
		comment = &models.Comment{}
		postID  sql.NullInt64
	)
	if err := rows.Scan(&comment.ID, &postID, &comment.Text, &comment.Created,
		&comment.Author.ID, &comment.Author.Username); err != nil {
		return nil, xerrors.New(err)
	}
	if postID.Valid {
		comment.PostID = &postID.Int64
	}
	return comment, nil
}

func (c *Core) CreateComment(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	const insertSQL = `
		WITH inserted AS (
			INSERT INTO comments (post_id, author_id, text)
			VALUES ($1, $2, $3)
			RETURNING id, post_id, text, created, author_id
		)
		SELECT i.id, i.post_id, i.text, i.created, u.id, u.username
		FROM inserted i
		JOIN users u ON u.id = i.author_id
	`

	newComment, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, insertSQL, scanComment,
		comment.PostID, comment.Author.ID, comment.Text)
	if err != nil {
		return nil, xerrors.New(err)
	}

	c.log.Debug("Comment created", "comment_id", newComment.ID, "post_id", comment.PostID)
	return newComment, nil
}

// GetCommentsByPost returns the comments of a post, newest first.
func (c *Core) GetCommentsByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	const selectSQL = `
		SELECT c.id, c.post_id, c.text, c.created, u.id, u.username
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.post_id = $1
		ORDER BY c.created DESC, c.id DESC
	`

	comments, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, selectSQL, scanComment, postID)
	if err != nil {
		return nil, xerrors.New(err)
	}
	return comments, nil
}
