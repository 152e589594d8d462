package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/yatube/internal/auth"
	"github.com/siahsang/yatube/internal/cache"
	"github.com/siahsang/yatube/internal/core"
)

// authenticate loads the user named by the token cookie or the Authorization
// header. A stale cookie is dropped and the request continues anonymously.
func (app *application) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")
		w.Header().Add("Vary", "Cookie")

		if authorization := r.Header.Get("Authorization"); authorization != "" {
			authorizationParts := strings.Split(authorization, " ")
			if len(authorizationParts) != 2 || authorizationParts[0] != "Token" {
				app.invalidAuthenticationTokenResponse(w, r, xerrors.New("Authentication header must be in the format 'Token <token>'"))
				return
			}

			user, err := app.userFromToken(r, authorizationParts[1])
			if err != nil {
				if errors.Is(err, auth.InvalidToken) || errors.Is(err, core.NoRecordFound) {
					app.invalidAuthenticationTokenResponse(w, r, err)
					return
				}
				app.internalErrorResponse(w, r, err)
				return
			}
			next.ServeHTTP(w, app.auth.SetAuthenticatedUser(r, user))
			return
		}

		cookie, err := r.Cookie(auth.CookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, err := app.userFromToken(r, cookie.Value)
		if err != nil {
			if errors.Is(err, auth.InvalidToken) || errors.Is(err, core.NoRecordFound) {
				app.logger.Debug("Dropping stale token cookie", slog.String("error", err.Error()))
				app.auth.ClearTokenCookie(w)
				next.ServeHTTP(w, r)
				return
			}
			app.internalErrorResponse(w, r, err)
			return
		}
		next.ServeHTTP(w, app.auth.SetAuthenticatedUser(r, user))
	})
}

func (app *application) userFromToken(r *http.Request, token string) (*auth.User, error) {
	claim, err := app.auth.Authenticate(token)
	if err != nil {
		return nil, err
	}
	return app.store.GetUserByUsername(r.Context(), claim.Username)
}

// requireAuthenticatedUser sends anonymous visitors to the login page and back.
func (app *application) requireAuthenticatedUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !app.auth.IsUserAuthenticated(r) {
			app.redirect(w, r, "/auth/login/?next="+url.QueryEscape(r.URL.RequestURI()))
			return
		}
		next(w, r)
	}
}

// cachePage keeps the rendered page for ttl. Signed in users get their own copy
// because the layout shows who is logged in.
func (app *application) cachePage(ttl time.Duration, next http.HandlerFunc) http.Handler {
	key := func(r *http.Request) string {
		k := cache.PageKey(r)
		if user := app.currentUser(r); user != nil {
			k += "|" + user.Username
		}
		return k
	}
	return cache.PageBy(app.cache, ttl, key, app.logger, next)
}

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.internalErrorResponse(w, r, xerrors.New(fmt.Sprintf("%v", err)))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

func (app *application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		app.logger.LogAttrs(r.Context(), slog.LevelInfo, "Request handled",
			slog.String("method", r.Method),
			slog.String("path", r.URL.RequestURI()),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)))
	})
}
