package core

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/yatube/internal/pagination"
	"github.com/siahsang/yatube/internal/utils/databaseutils"
	"github.com/siahsang/yatube/models"
)

var ErrNotPostAuthor = xerrors.Message("Only the author can edit the post")

const selectPostSQL = `
	SELECT p.id, p.text, p.pub_date, p.image,
	       u.id, u.username,
	       g.id, g.title, g.slug, g.description
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN post_groups g ON g.id = p.group_id
`

const postOrderSQL = ` ORDER BY p.pub_date DESC, p.id DESC`

func scanPost(rows *sql.Rows) (*models.Post, error) {
	var (
		post             = &models.Post{}
		groupID          sql.NullInt64
		groupTitle       sql.NullString
		groupSlug        sql.NullString
		groupDescription sql.NullString
	)

	if err := rows.Scan(
		&post.ID, &post.Text, &post.PubDate, &post.Image,
		&post.Author.ID, &post.Author.Username,
		&groupID, &groupTitle, &groupSlug, &groupDescription,
	); err != nil {
		return nil, xerrors.New(err)
	}

	if groupID.Valid {
		post.GroupID = &groupID.Int64
		post.Group = &models.Group{
			ID:          groupID.Int64,
			Title:       groupTitle.String,
			Slug:        groupSlug.String,
			Description: groupDescription.String,
		}
	}
	return post, nil
}

func (c *Core) CreatePost(ctx context.Context, post *models.Post) (*models.Post, error) {
	const insertSQL = `
		INSERT INTO posts (text, author_id, group_id, image)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	id, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, insertSQL, databaseutils.ScanInt64,
		post.Text, post.Author.ID, post.GroupID, post.Image)
	if err != nil {
		return nil, xerrors.New(err)
	}

	c.log.Info("Post created", "post_id", id, "author", post.Author.Username)
	return c.GetPostByID(ctx, id)
}

func (c *Core) GetPostByID(ctx context.Context, id int64) (*models.Post, error) {
	post, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, selectPostSQL+` WHERE p.id = $1`, scanPost, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return post, nil
}

// UpdatePost rewrites text, group and image of a post owned by editorID. The row
// is locked for the duration of the check and the update.
func (c *Core) UpdatePost(ctx context.Context, post *models.Post, editorID int64) (*models.Post, error) {
	return databaseutils.DoTransactionally(ctx, c.session, func(txCtx context.Context) (*models.Post, error) {
		authorID, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, txCtx,
			`SELECT author_id FROM posts WHERE id = $1 FOR UPDATE`, databaseutils.ScanInt64, post.ID)
		if err != nil {
			return nil, notFoundOr(err)
		}
		if authorID != editorID {
			return nil, xerrors.New(ErrNotPostAuthor)
		}

		const updateSQL = `
			UPDATE posts
			SET text = $1, group_id = $2, image = $3
			WHERE id = $4
		`
		if _, err := databaseutils.Exec(c.sqlTemplate, txCtx, updateSQL, post.Text, post.GroupID, post.Image, post.ID); err != nil {
			return nil, xerrors.New(err)
		}

		c.log.Info("Post updated", "post_id", post.ID)
		return c.GetPostByID(txCtx, post.ID)
	})
}

func (c *Core) CountPostsByAuthor(ctx context.Context, authorID int64) (int64, error) {
	count, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx,
		`SELECT COUNT(*) FROM posts WHERE author_id = $1`, databaseutils.ScanInt64, authorID)
	if err != nil {
		return 0, xerrors.New(err)
	}
	return count, nil
}

// postSource pages through posts matching where, newest first.
func (c *Core) postSource(where string, args ...any) pagination.Source[*models.Post] {
	return pagination.SourceFuncs[*models.Post]{
		CountFunc: func(ctx context.Context) (int64, error) {
			query := `SELECT COUNT(*) FROM posts p ` + where
			count, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, databaseutils.ScanInt64, args...)
			if err != nil {
				return 0, xerrors.New(err)
			}
			return count, nil
		},
		SliceFunc: func(ctx context.Context, filter pagination.Filter) ([]*models.Post, error) {
			n := len(args)
			query := fmt.Sprintf("%s %s %s LIMIT $%d OFFSET $%d", selectPostSQL, where, postOrderSQL, n+1, n+2)
			queryArgs := append(append([]any{}, args...), filter.Limit, filter.Offset)
			posts, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, scanPost, queryArgs...)
			if err != nil {
				return nil, xerrors.New(err)
			}
			return posts, nil
		},
	}
}

func (c *Core) AllPosts() pagination.Source[*models.Post] {
	return c.postSource("")
}

func (c *Core) GroupPosts(groupID int64) pagination.Source[*models.Post] {
	return c.postSource(`WHERE p.group_id = $1`, groupID)
}

func (c *Core) AuthorPosts(authorID int64) pagination.Source[*models.Post] {
	return c.postSource(`WHERE p.author_id = $1`, authorID)
}

// FeedPosts lists posts written by the authors userID follows.
func (c *Core) FeedPosts(userID int64) pagination.Source[*models.Post] {
	return c.postSource(`WHERE p.author_id IN (SELECT f.author_id FROM follows f WHERE f.user_id = $1)`, userID)
}
