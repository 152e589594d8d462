package main

import (
	"errors"
	"net/http"

	"github.com/siahsang/yatube/internal/core"
	"github.com/siahsang/yatube/internal/render"
)

const (
	followIndexURL   = "/follow/"
	followIndexTitle = "Favourite posts"
)

func (app *application) followIndex(w http.ResponseWriter, r *http.Request) {
	user := app.currentUser(r)

	page, err := app.pageOf(r, app.store.FeedPosts(user.ID))
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	app.render(w, r, http.StatusOK, "posts/follow.html", render.Data{
		"page_obj": page,
		"title":    followIndexTitle,
	})
}

func (app *application) profileFollow(w http.ResponseWriter, r *http.Request) {
	user := app.currentUser(r)

	if _, err := app.store.FollowUser(r.Context(), user.ID, app.readParam(r, "username")); err != nil {
		switch {
		case errors.Is(err, core.NoRecordFound):
			app.notFoundResponse(w, r)
		default:
			app.internalErrorResponse(w, r, err)
		}
		return
	}

	app.redirect(w, r, followIndexURL)
}

func (app *application) profileUnfollow(w http.ResponseWriter, r *http.Request) {
	user := app.currentUser(r)

	if _, err := app.store.UnfollowUser(r.Context(), user.ID, app.readParam(r, "username")); err != nil {
		switch {
		case errors.Is(err, core.NoRecordFound), errors.Is(err, core.UserIsNotFollowed):
			app.notFoundResponse(w, r)
		default:
			app.internalErrorResponse(w, r, err)
		}
		return
	}

	app.redirect(w, r, followIndexURL)
}
