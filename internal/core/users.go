package core

import (
	"context"
	"database/sql"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/yatube/internal/auth"
	"github.com/siahsang/yatube/internal/utils/databaseutils"
)

var (
	ErrDuplicateEmail    = xerrors.Message("Duplicate email")
	ErrDuplicateUsername = xerrors.Message("Duplicate username")
)

const selectUserSQL = `
	SELECT id, email, username, password, date_joined
	FROM users
`

func scanUser(rows *sql.Rows) (*auth.User, error) {
	var user = &auth.User{}
	if err := rows.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.Password,
		&user.DateJoined,
	); err != nil {
		return nil, xerrors.New(err)
	}
	return user, nil
}

func (c *Core) CreateNewUser(ctx context.Context, user *auth.User) error {
	query := `
		INSERT INTO users (username, email, password)
		VALUES ($1, $2, $3)
		RETURNING id, date_joined
	`
	args := []any{user.Username, user.Email, user.Password}
	_, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, func(rows *sql.Rows) (*auth.User, error) {
		if err := rows.Scan(&user.ID, &user.DateJoined); err != nil {
			return nil, xerrors.New(err)
		}
		return user, nil
	}, args...)

	if err != nil {
		constraint, ok := uniqueViolation(err)
		switch {
		case ok && constraint == "users_email_key":
			return xerrors.New(ErrDuplicateEmail)
		case ok && constraint == "users_username_key":
			return xerrors.New(ErrDuplicateUsername)
		default:
			return xerrors.New(err)
		}
	}

	c.log.Info("User created", "user_id", user.ID, "username", user.Username)
	return nil
}

func (c *Core) GetUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	user, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, selectUserSQL+` WHERE username = $1`, scanUser, username)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return user, nil
}

// UserDeletion reports the rows removed together with a user.
type UserDeletion struct {
	Posts    int64
	Comments int64
	Follows  int64
}

// DeleteUser removes a user. The schema cascades the delete to the user's posts,
// comments and follow edges in both directions.
func (c *Core) DeleteUser(ctx context.Context, username string) (*UserDeletion, error) {
	return databaseutils.DoTransactionally(ctx, c.session, func(txCtx context.Context) (*UserDeletion, error) {
		user, err := c.GetUserByUsername(txCtx, username)
		if err != nil {
			return nil, err
		}

		const countSQL = `
			SELECT
				(SELECT COUNT(*) FROM posts WHERE author_id = $1),
				(SELECT COUNT(*) FROM comments WHERE author_id = $1),
				(SELECT COUNT(*) FROM follows WHERE user_id = $1 OR author_id = $1)
		`
		deletion, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, txCtx, countSQL, func(rows *sql.Rows) (*UserDeletion, error) {
			d := &UserDeletion{}
			if err := rows.Scan(&d.Posts, &d.Comments, &d.Follows); err != nil {
				return nil, xerrors.New(err)
			}
			return d, nil
		}, user.ID)
		if err != nil {
			return nil, xerrors.New(err)
		}

		if _, err := databaseutils.Exec(c.sqlTemplate, txCtx, `DELETE FROM users WHERE id = $1`, user.ID); err != nil {
			return nil, xerrors.New(err)
		}

		c.log.Info("User deleted", "username", username,
			"posts", deletion.Posts, "comments", deletion.Comments, "follows", deletion.Follows)
		return deletion, nil
	})
}
