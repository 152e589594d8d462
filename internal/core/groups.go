package core

import (
	"context"
	"database/sql"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/yatube/internal/utils/databaseutils"
	"github.com/siahsang/yatube/models"
)

var ErrDuplicatedSlug = xerrors.Message("Duplicate slug")

const selectGroupSQL = `
	SELECT id, title, slug, description
	FROM post_groups
`

func scanGroup(rows *sql.Rows) (*models.Group, error) {
	group := &models.Group{}
	if err := rows.Scan(&group.ID, &group.Title, &group.Slug, &group.Description); err != nil {
		return nil, xerrors.New(err)
	}
	return group, nil
}

func (c *Core) CreateGroup(ctx context.Context, group *models.Group) (*models.Group, error) {
	const insertSQL = `
		INSERT INTO post_groups (title, slug, description)
		VALUES ($1, $2, $3)
		RETURNING id, title, slug, description
	`

	created, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, insertSQL, scanGroup,
		group.Title, group.Slug, group.Description)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return nil, xerrors.New(ErrDuplicatedSlug)
		}
		return nil, xerrors.New(err)
	}

	c.log.Info("Group created", "group_id", created.ID, "slug", created.Slug)
	return created, nil
}

func (c *Core) GetGroupBySlug(ctx context.Context, slug string) (*models.Group, error) {
	group, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, selectGroupSQL+` WHERE slug = $1`, scanGroup, slug)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return group, nil
}

func (c *Core) ListGroups(ctx context.Context) ([]*models.Group, error) {
	groups, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, selectGroupSQL+` ORDER BY title, id`, scanGroup)
	if err != nil {
		return nil, xerrors.New(err)
	}
	return groups, nil
}

// DeleteGroup removes a group. Its posts stay, with their group cleared.
func (c *Core) DeleteGroup(ctx context.Context, slug string) error {
	affected, err := databaseutils.Exec(c.sqlTemplate, ctx, `DELETE FROM post_groups WHERE slug = $1`, slug)
	if err != nil {
		return xerrors.New(err)
	}
	if affected == 0 {
		return xerrors.New(NoRecordFound)
	}

	c.log.Info("Group deleted", "slug", slug)
	return nil
}
