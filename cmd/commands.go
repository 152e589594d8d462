package main

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/yatube/internal/config"
	"github.com/siahsang/yatube/internal/core"
	"github.com/siahsang/yatube/internal/database"
	"github.com/siahsang/yatube/internal/utils/stringutils"
	"github.com/siahsang/yatube/internal/validator"
	"github.com/siahsang/yatube/models"
)

type command func(ctx context.Context, c *core.Core, logger *slog.Logger, args []string) error

var commands = map[string]command{
	"migrate":      migrateCommand,
	"create-group": createGroupCommand,
	"delete-group": deleteGroupCommand,
	"delete-user":  deleteUserCommand,
}

func commandNames() []string {
	names := []string{"clear-cache"}
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func migrateCommand(ctx context.Context, c *core.Core, logger *slog.Logger, _ []string) error {
	if err := database.Migrate(ctx, c.DB()); err != nil {
		return err
	}
	logger.Info("Migrations completed successfully")
	return nil
}

// createGroupCommand expects: <title> [slug] [description...]. The slug defaults
// to the slugified title.
func createGroupCommand(ctx context.Context, c *core.Core, logger *slog.Logger, args []string) error {
	if len(args) == 0 {
		return xerrors.New("usage: create-group <title> [slug] [description]")
	}

	group := &models.Group{Title: strings.TrimSpace(args[0])}
	if len(args) > 1 {
		group.Slug = args[1]
	} else {
		group.Slug = stringutils.Slugify(group.Title)
	}
	if len(args) > 2 {
		group.Description = strings.Join(args[2:], " ")
	}

	v := validator.New()
	v.CheckNotBlank(group.Title, "title", "must be provided")
	v.CheckMaxChars(group.Title, 200, "title", "must not be more than 200 characters long")
	v.Check(v.IsMatch(group.Slug, validator.SlugRX), "slug", "must contain only letters, numbers, underscores or hyphens")
	v.CheckMaxChars(group.Slug, 50, "slug", "must not be more than 50 characters long")
	if !v.IsValid() {
		return xerrors.Newf("invalid group: %v", v.Errors)
	}

	created, err := c.CreateGroup(ctx, group)
	if err != nil {
		return err
	}
	logger.Info("Group is ready", "slug", created.Slug, "url", "/group/"+created.Slug+"/")
	return nil
}

func deleteGroupCommand(ctx context.Context, c *core.Core, _ *slog.Logger, args []string) error {
	if len(args) != 1 {
		return xerrors.New("usage: delete-group <slug>")
	}
	return c.DeleteGroup(ctx, args[0])
}

func deleteUserCommand(ctx context.Context, c *core.Core, logger *slog.Logger, args []string) error {
	if len(args) != 1 {
		return xerrors.New("usage: delete-user <username>")
	}
	deletion, err := c.DeleteUser(ctx, args[0])
	if err != nil {
		return err
	}
	logger.Info("Removed together with the user",
		"posts", deletion.Posts, "comments", deletion.Comments, "follows", deletion.Follows)
	return nil
}

// clearCache flushes a redis cache directly. The memory cache is only reachable
// through the running server, which clears it on SIGHUP.
func clearCache(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if cfg.Cache.Backend != config.CacheBackendRedis {
		logger.Warn("The memory cache lives inside the server process, send it SIGHUP to clear it",
			"example", "kill -HUP <server pid>")
		return nil
	}

	cacheStore, err := newCacheStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cacheStore.Close()

	if err := cacheStore.Clear(ctx); err != nil {
		return xerrors.New(err)
	}
	logger.Info("Cache cleared", "backend", cfg.Cache.Backend)
	return nil
}
