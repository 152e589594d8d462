package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/siahsang/yatube/internal/auth"
	"github.com/siahsang/yatube/internal/config"
	"github.com/siahsang/yatube/internal/media"
	"github.com/siahsang/yatube/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRejectsUnknownCommand(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	err := run(context.Background(), config.Default(), logger, "explode", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
	assert.Contains(t, err.Error(), "create-group")
}

func TestCommandNames(t *testing.T) {
	assert.Equal(t, []string{"clear-cache", "create-group", "delete-group", "delete-user", "migrate"}, commandNames())
}

func TestApplicationWithLocalMedia(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Media.Root = t.TempDir()

	fake := newFakeStore()
	app, err := newApplication(ctx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), fake)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.cache.Close() })
	handler := app.routes()

	user := &auth.User{Username: "auth", Email: "auth@example.com"}
	require.NoError(t, fake.CreateNewUser(ctx, user))

	key, err := app.media.Save(ctx, media.PostsDir, "small.gif", bytes.NewReader(smallGIF))
	require.NoError(t, err)
	_, err = fake.CreatePost(ctx, &models.Post{Text: "Hello world", Author: models.Author{ID: user.ID, Username: user.Username}, Image: key})
	require.NoError(t, err)

	get := func(target string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		return w
	}

	index := get("/")
	require.Equal(t, http.StatusOK, index.Code)
	assert.Contains(t, index.Body.String(), "Hello world")
	assert.Contains(t, index.Body.String(), `src="`+app.media.URL(key)+`"`)

	image := get(app.media.URL(key))
	require.Equal(t, http.StatusOK, image.Code)
	assert.Equal(t, smallGIF, image.Body.Bytes())

	missing := get("/nope/")
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Contains(t, missing.Body.String(), "The page /nope/ does not exist.")
}

func TestApplicationAppliesPreviewLength(t *testing.T) {
	cfg := config.Default()
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Media.Root = t.TempDir()
	cfg.Posts.PreviewLength = 30
	t.Cleanup(func() { models.SetPreviewLength(models.DefaultPreviewLength) })

	_, err := newApplication(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), newFakeStore())
	require.NoError(t, err)

	post := &models.Post{Text: "abcdefghijklmnopqrstuvwxyz0123456789"}
	assert.Equal(t, "abcdefghijklmnopqrstuvwxyz0123", post.String())
}
