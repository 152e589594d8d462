package main

import (
	"context"
	"net/http"

	"github.com/siahsang/yatube/internal/auth"
	"github.com/siahsang/yatube/internal/pagination"
	"github.com/siahsang/yatube/internal/render"
	"github.com/siahsang/yatube/models"
)

// store is the part of core.Core the handlers use.
type store interface {
	CreateNewUser(ctx context.Context, user *auth.User) error
	GetUserByUsername(ctx context.Context, username string) (*auth.User, error)

	GetGroupBySlug(ctx context.Context, slug string) (*models.Group, error)
	ListGroups(ctx context.Context) ([]*models.Group, error)

	CreatePost(ctx context.Context, post *models.Post) (*models.Post, error)
	GetPostByID(ctx context.Context, id int64) (*models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post, editorID int64) (*models.Post, error)
	CountPostsByAuthor(ctx context.Context, authorID int64) (int64, error)
	AllPosts() pagination.Source[*models.Post]
	GroupPosts(groupID int64) pagination.Source[*models.Post]
	AuthorPosts(authorID int64) pagination.Source[*models.Post]
	FeedPosts(userID int64) pagination.Source[*models.Post]

	CreateComment(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	GetCommentsByPost(ctx context.Context, postID int64) ([]*models.Comment, error)

	GetProfile(ctx context.Context, username string, viewerID int64) (*models.Profile, error)
	FollowUser(ctx context.Context, userID int64, authorUsername string) (*models.Profile, error)
	UnfollowUser(ctx context.Context, userID int64, authorUsername string) (*models.Profile, error)
}

type renderer interface {
	Render(w http.ResponseWriter, status int, name string, data render.Data) error
}
