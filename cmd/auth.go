package main

import (
	"errors"
	"net/http"

	"github.com/siahsang/yatube/internal/auth"
	"github.com/siahsang/yatube/internal/core"
	"github.com/siahsang/yatube/internal/forms"
	"github.com/siahsang/yatube/internal/render"
)

const invalidCredentialsMessage = "Please enter a correct username and password."

func (app *application) signup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		app.render(w, r, http.StatusOK, "auth/signup.html", render.Data{"form": forms.NewSignupForm()})
		return
	}

	form, err := forms.ParseSignupForm(r)
	if err != nil {
		app.badRequestResponse(w, r, &AppError{ErrorMessage: "The submitted form could not be read.", ErrorStack: err})
		return
	}
	if !form.IsValid() {
		app.render(w, r, http.StatusBadRequest, "auth/signup.html", render.Data{"form": form})
		return
	}

	user := &auth.User{
		Username:          form.Username,
		Email:             form.Email,
		PlaintextPassword: form.Password,
	}
	if err := user.SetPassword(form.Password); err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	if err := app.store.CreateNewUser(r.Context(), user); err != nil {
		switch {
		case errors.Is(err, core.ErrDuplicateEmail):
			form.AddError("email", "A user with that email address already exists.")
		case errors.Is(err, core.ErrDuplicateUsername):
			form.AddError("username", "A user with that username already exists.")
		default:
			app.internalErrorResponse(w, r, err)
			return
		}
		app.render(w, r, http.StatusBadRequest, "auth/signup.html", render.Data{"form": form})
		return
	}

	if !app.startSession(w, r, user) {
		return
	}
	app.redirect(w, r, "/")
}

func (app *application) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		app.render(w, r, http.StatusOK, "auth/login.html", render.Data{
			"form": forms.NewLoginForm(r.URL.Query().Get("next")),
		})
		return
	}

	form, err := forms.ParseLoginForm(r)
	if err != nil {
		app.badRequestResponse(w, r, &AppError{ErrorMessage: "The submitted form could not be read.", ErrorStack: err})
		return
	}
	if !form.IsValid() {
		app.render(w, r, http.StatusBadRequest, "auth/login.html", render.Data{"form": form})
		return
	}

	user, err := app.store.GetUserByUsername(r.Context(), form.Username)
	if err != nil && !errors.Is(err, core.NoRecordFound) {
		app.internalErrorResponse(w, r, err)
		return
	}

	match := false
	if user != nil {
		match, err = user.IsPasswordMatch(form.Password)
		if err != nil {
			app.internalErrorResponse(w, r, err)
			return
		}
	}
	if !match {
		form.AddError("credentials", invalidCredentialsMessage)
		app.render(w, r, http.StatusBadRequest, "auth/login.html", render.Data{"form": form})
		return
	}

	if !app.startSession(w, r, user) {
		return
	}

	next := form.Next
	if next == "" {
		next = "/"
	}
	app.redirect(w, r, next)
}

func (app *application) logout(w http.ResponseWriter, r *http.Request) {
	app.auth.ClearTokenCookie(w)
	app.redirect(w, r, "/")
}

// startSession issues a token for user and stores it in the cookie.
func (app *application) startSession(w http.ResponseWriter, r *http.Request, user *auth.User) bool {
	token, err := app.auth.GenerateToken(user)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return false
	}
	app.auth.SetTokenCookie(w, token)
	return true
}
