package core

import (
	"context"
	"database/sql"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/yatube/internal/utils/databaseutils"
	"github.com/siahsang/yatube/models"
)

var UserIsNotFollowed = xerrors.Message("User is not followed")

// GetProfile loads an author with their post count. Following reports whether
// viewerID follows them; pass 0 for an anonymous viewer.
func (c *Core) GetProfile(ctx context.Context, username string, viewerID int64) (*models.Profile, error) {
	const query = `
		SELECT u.id, u.username,
		       (SELECT COUNT(*) FROM posts p WHERE p.author_id = u.id),
		       EXISTS (SELECT 1 FROM follows f WHERE f.user_id = $2 AND f.author_id = u.id)
		FROM users u
		WHERE u.username = $1
	`

	profile, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, func(rows *sql.Rows) (*models.Profile, error) {
		profile := &models.Profile{}
		if err := rows.Scan(&profile.ID, &profile.Username, &profile.PostCount, &profile.Following); err != nil {
			return nil, xerrors.New(err)
		}
		return profile, nil
	}, username, viewerID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return profile, nil
}

// FollowUser makes userID follow the author. Following twice keeps a single row and
// following yourself does nothing.
func (c *Core) FollowUser(ctx context.Context, userID int64, authorUsername string) (*models.Profile, error) {
	author, err := c.GetUserByUsername(ctx, authorUsername)
	if err != nil {
		return nil, err
	}

	if author.ID != userID {
		const insertSQL = `
			INSERT INTO follows (user_id, author_id)
			VALUES ($1, $2)
			ON CONFLICT ON CONSTRAINT follows_unique_pair DO NOTHING
		`
		affected, err := databaseutils.Exec(c.sqlTemplate, ctx, insertSQL, userID, author.ID)
		if err != nil {
			return nil, xerrors.New(err)
		}
		if affected > 0 {
			c.log.Info("User followed", "user_id", userID, "author", author.Username)
		}
	}

	return c.GetProfile(ctx, author.Username, userID)
}

// UnfollowUser removes the follow edge. It fails with UserIsNotFollowed when there
// was none.
func (c *Core) UnfollowUser(ctx context.Context, userID int64, authorUsername string) (*models.Profile, error) {
	author, err := c.GetUserByUsername(ctx, authorUsername)
	if err != nil {
		return nil, err
	}

	const deleteSQL = `
		DELETE FROM follows
		WHERE user_id = $1 AND author_id = $2
	`
	affected, err := databaseutils.Exec(c.sqlTemplate, ctx, deleteSQL, userID, author.ID)
	if err != nil {
		return nil, xerrors.New(err)
	}
	if affected == 0 {
		return nil, xerrors.New(UserIsNotFollowed)
	}

	c.log.Info("User unfollowed", "user_id", userID, "author", author.Username)
	return c.GetProfile(ctx, author.Username, userID)
}
