package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/siahsang/yatube/internal/core"
	"github.com/siahsang/yatube/internal/forms"
	"github.com/siahsang/yatube/internal/media"
	"github.com/siahsang/yatube/internal/pagination"
	"github.com/siahsang/yatube/internal/render"
	"github.com/siahsang/yatube/models"
)

// multipartOverhead is the room left for the text fields of an upload form.
const multipartOverhead = 1 << 20

func (app *application) pageOf(r *http.Request, source pagination.Source[*models.Post]) (*pagination.Page[*models.Post], error) {
	return pagination.GetPage(r.Context(), source, r.URL.Query().Get("page"), int64(app.config.Pagination.PageSize))
}

func (app *application) index(w http.ResponseWriter, r *http.Request) {
	page, err := app.pageOf(r, app.store.AllPosts())
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	app.render(w, r, http.StatusOK, "posts/index.html", render.Data{
		"page_obj": page,
	})
}

func (app *application) groupPosts(w http.ResponseWriter, r *http.Request) {
	group, err := app.store.GetGroupBySlug(r.Context(), app.readParam(r, "slug"))
	if err != nil {
		switch {
		case errors.Is(err, core.NoRecordFound):
			app.notFoundResponse(w, r)
		default:
			app.internalErrorResponse(w, r, err)
		}
		return
	}

	page, err := app.pageOf(r, app.store.GroupPosts(group.ID))
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	app.render(w, r, http.StatusOK, "posts/group_list.html", render.Data{
		"group":    group,
		"page_obj": page,
	})
}

func (app *application) profile(w http.ResponseWriter, r *http.Request) {
	var viewerID int64
	if user := app.currentUser(r); user != nil {
		viewerID = user.ID
	}

	author, err := app.store.GetProfile(r.Context(), app.readParam(r, "username"), viewerID)
	if err != nil {
		switch {
		case errors.Is(err, core.NoRecordFound):
			app.notFoundResponse(w, r)
		default:
			app.internalErrorResponse(w, r, err)
		}
		return
	}

	page, err := app.pageOf(r, app.store.AuthorPosts(author.ID))
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	app.render(w, r, http.StatusOK, "posts/profile.html", render.Data{
		"author":    author,
		"count":     author.PostCount,
		"following": author.Following,
		"page_obj":  page,
	})
}

// loadPost resolves the :id parameter. It writes the error response itself and
// returns nil when the post cannot be shown.
func (app *application) loadPost(w http.ResponseWriter, r *http.Request) *models.Post {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return nil
	}

	post, err := app.store.GetPostByID(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, core.NoRecordFound):
			app.notFoundResponse(w, r)
		default:
			app.internalErrorResponse(w, r, err)
		}
		return nil
	}
	return post
}

func (app *application) postDetail(w http.ResponseWriter, r *http.Request) {
	post := app.loadPost(w, r)
	if post == nil {
		return
	}

	comments, err := app.store.GetCommentsByPost(r.Context(), post.ID)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	count, err := app.store.CountPostsByAuthor(r.Context(), post.Author.ID)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	user := app.currentUser(r)
	app.render(w, r, http.StatusOK, "posts/post_detail.html", render.Data{
		"post":      post,
		"comments":  comments,
		"form":      forms.NewCommentForm(),
		"is_author": user != nil && user.ID == post.Author.ID,
		"count":     count,
	})
}

// parsePostForm binds and validates a submitted post. It returns the groups
// offered by the form so an invalid submission can be shown again.
func (app *application) parsePostForm(w http.ResponseWriter, r *http.Request) (*forms.PostForm, []*models.Group, error) {
	r.Body = http.MaxBytesReader(w, r.Body, app.config.Media.MaxUploadBytes+multipartOverhead)

	form, err := forms.ParsePostForm(r, app.config.Media.MaxUploadBytes)
	if err != nil {
		return nil, nil, err
	}

	groups, err := app.store.ListGroups(r.Context())
	if err != nil {
		return nil, nil, err
	}
	form.Validate(groups)
	return form, groups, nil
}

// saveImage stores the uploaded image, returning "" when there is none.
func (app *application) saveImage(ctx context.Context, upload *media.Upload) (string, error) {
	if upload == nil {
		return "", nil
	}
	return app.media.Save(ctx, media.PostsDir, upload.Filename, bytes.NewReader(upload.Data))
}

// deleteImage removes a stored image after the response has been sent.
func (app *application) deleteImage(key string) {
	if key == "" {
		return
	}
	app.doInBackground(func() {
		if err := app.media.Delete(context.Background(), key); err != nil {
			app.logger.Warn("Could not delete image", slog.String("key", key), slog.String("error", err.Error()))
		}
	})
}

func (app *application) postCreate(w http.ResponseWriter, r *http.Request) {
	user := app.currentUser(r)

	if r.Method != http.MethodPost {
		groups, err := app.store.ListGroups(r.Context())
		if err != nil {
			app.internalErrorResponse(w, r, err)
			return
		}
		app.render(w, r, http.StatusOK, "posts/create_post.html", render.Data{
			"form":    forms.NewPostForm(nil),
			"groups":  groups,
			"is_edit": false,
		})
		return
	}

	form, groups, err := app.parsePostForm(w, r)
	if err != nil {
		app.badRequestResponse(w, r, &AppError{ErrorMessage: "The submitted form could not be read.", ErrorStack: err})
		return
	}
	if !form.IsValid() {
		app.render(w, r, http.StatusBadRequest, "posts/create_post.html", render.Data{
			"form":    form,
			"groups":  groups,
			"is_edit": false,
		})
		return
	}

	image, err := app.saveImage(r.Context(), form.Image)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	_, err = app.store.CreatePost(r.Context(), &models.Post{
		Text:    form.Text,
		Author:  models.Author{ID: user.ID, Username: user.Username},
		GroupID: form.GroupID(),
		Image:   image,
	})
	if err != nil {
		app.deleteImage(image)
		app.internalErrorResponse(w, r, err)
		return
	}

	app.redirect(w, r, profileURL(user.Username))
}

func (app *application) postEdit(w http.ResponseWriter, r *http.Request) {
	post := app.loadPost(w, r)
	if post == nil {
		return
	}

	user := app.currentUser(r)
	if user.ID != post.Author.ID {
		app.redirect(w, r, postURL(post.ID))
		return
	}

	if r.Method != http.MethodPost {
		groups, err := app.store.ListGroups(r.Context())
		if err != nil {
			app.internalErrorResponse(w, r, err)
			return
		}
		app.render(w, r, http.StatusOK, "posts/create_post.html", render.Data{
			"form":    forms.NewPostForm(post),
			"groups":  groups,
			"is_edit": true,
			"post_id": post.ID,
			"post":    post,
		})
		return
	}

	form, groups, err := app.parsePostForm(w, r)
	if err != nil {
		app.badRequestResponse(w, r, &AppError{ErrorMessage: "The submitted form could not be read.", ErrorStack: err})
		return
	}
	if !form.IsValid() {
		app.render(w, r, http.StatusBadRequest, "posts/create_post.html", render.Data{
			"form":    form,
			"groups":  groups,
			"is_edit": true,
			"post_id": post.ID,
			"post":    post,
		})
		return
	}

	image, err := app.saveImage(r.Context(), form.Image)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}
	newImage := image != ""
	if !newImage {
		image = post.Image
	}

	_, err = app.store.UpdatePost(r.Context(), &models.Post{
		ID:      post.ID,
		Text:    form.Text,
		GroupID: form.GroupID(),
		Image:   image,
	}, user.ID)
	if err != nil {
		if newImage {
			app.deleteImage(image)
		}
		switch {
		case errors.Is(err, core.ErrNotPostAuthor):
			app.redirect(w, r, postURL(post.ID))
		case errors.Is(err, core.NoRecordFound):
			app.notFoundResponse(w, r)
		default:
			app.internalErrorResponse(w, r, err)
		}
		return
	}

	if newImage {
		app.deleteImage(post.Image)
	}
	app.redirect(w, r, postURL(post.ID))
}
