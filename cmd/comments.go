package main

import (
	"log/slog"
	"net/http"

	"github.com/siahsang/yatube/internal/forms"
	"github.com/siahsang/yatube/models"
)

// addComment always ends on the post page. An invalid comment is dropped without
// telling the user.
func (app *application) addComment(w http.ResponseWriter, r *http.Request) {
	post := app.loadPost(w, r)
	if post == nil {
		return
	}

	form, err := forms.ParseCommentForm(r)
	if err != nil {
		app.badRequestResponse(w, r, &AppError{ErrorMessage: "The submitted form could not be read.", ErrorStack: err})
		return
	}

	if !form.IsValid() {
		app.logger.Debug("Ignoring invalid comment", slog.Int64("post_id", post.ID), slog.Any("errors", form.Errors))
		app.redirect(w, r, postURL(post.ID))
		return
	}

	user := app.currentUser(r)
	_, err = app.store.CreateComment(r.Context(), &models.Comment{
		PostID: &post.ID,
		Author: models.Author{ID: user.ID, Username: user.Username},
		Text:   form.Text,
	})
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	app.redirect(w, r, postURL(post.ID))
}
