package main

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/julienschmidt/httprouter"
	"github.com/siahsang/yatube/internal/media"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	router.Handler(http.MethodGet, "/", app.cachePage(app.config.Cache.IndexTTL, app.index))
	router.HandlerFunc(http.MethodGet, "/group/:slug/", app.groupPosts)
	router.HandlerFunc(http.MethodGet, "/profile/:username/", app.profile)

	router.HandlerFunc(http.MethodGet, "/posts/:id/", app.postDetail)
	router.HandlerFunc(http.MethodPost, "/posts/:id/", app.requireAuthenticatedUser(app.addComment))
	router.HandlerFunc(http.MethodPost, "/posts/:id/comment/", app.requireAuthenticatedUser(app.addComment))

	router.HandlerFunc(http.MethodGet, "/create/", app.requireAuthenticatedUser(app.postCreate))
	router.HandlerFunc(http.MethodPost, "/create/", app.requireAuthenticatedUser(app.postCreate))
	router.HandlerFunc(http.MethodGet, "/posts/:id/edit/", app.requireAuthenticatedUser(app.postEdit))
	router.HandlerFunc(http.MethodPost, "/posts/:id/edit/", app.requireAuthenticatedUser(app.postEdit))

	router.HandlerFunc(http.MethodGet, "/follow/", app.requireAuthenticatedUser(app.followIndex))
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		router.HandlerFunc(method, "/profile/:username/follow/", app.requireAuthenticatedUser(app.profileFollow))
		router.HandlerFunc(method, "/profile/:username/unfollow/", app.requireAuthenticatedUser(app.profileUnfollow))
	}

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		router.HandlerFunc(method, "/auth/signup/", app.signup)
		router.HandlerFunc(method, "/auth/login/", app.login)
		router.HandlerFunc(method, "/auth/logout/", app.logout)
	}

	if local, ok := app.media.(*media.LocalStorage); ok {
		router.ServeFiles(local.URLPrefix+"*filepath", http.Dir(local.Root))
	}

	return app.recoverPanic(app.logRequest(handlers.CompressHandler(app.authenticate(router))))
}
