package main

import (
	"log/slog"
	"net/http"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/yatube/internal/render"
)

type AppError struct {
	ErrorStack   error
	ErrorMessage string
	ErrorDetails map[string]string
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, appError *AppError) {
	app.errorResponse(w, r, http.StatusBadRequest, appError)
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.logger.Debug("Page not found", slog.String("request_url", r.URL.String()))

	data := app.newTemplateData(r)
	data["path"] = r.URL.Path
	if err := app.renderer.Render(w, http.StatusNotFound, "core/404.html", data); err != nil {
		app.logger.Error(err.Error())
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	}
}

func (app *application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusMethodNotAllowed, &AppError{
		ErrorMessage: "The " + r.Method + " method is not supported for this resource.",
	})
}

func (app *application) invalidAuthenticationTokenResponse(w http.ResponseWriter, r *http.Request, err error) {
	w.Header().Set("WWW-Authenticate", "Token")
	app.errorResponse(w, r, http.StatusUnauthorized, &AppError{
		ErrorStack:   err,
		ErrorMessage: "Invalid or missing authentication token.",
	})
}

func (app *application) internalErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusInternalServerError, &AppError{ErrorStack: err,
		ErrorMessage: "An internal server error occurred.",
	})
}

func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, status int, appError *AppError) {
	var attrs []slog.Attr
	attrs = append(attrs, slog.String("request_url", r.URL.String()))
	attrs = append(attrs, slog.String("request_method", r.Method))
	attrs = append(attrs, slog.Int("status", status))
	if appError.ErrorStack != nil {
		attrs = append(attrs, slog.String("stack", xerrors.Sprint(appError.ErrorStack)))
	}

	for key, valueData := range appError.ErrorDetails {
		attrs = append(attrs, slog.Any(key, valueData))
	}

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	app.logger.LogAttrs(r.Context(), level, "ErrorStack in handling request", attrs...)

	name := "core/error.html"
	if status >= http.StatusInternalServerError {
		name = "core/500.html"
	}

	data := app.newTemplateData(r)
	data["status_text"] = http.StatusText(status)
	data["message"] = appError.ErrorMessage
	data["details"] = appError.ErrorDetails

	if err := app.renderer.Render(w, status, name, data); err != nil {
		app.logger.Error(err.Error())
		http.Error(w, http.StatusText(status), status)
	}
}

// newTemplateData returns the context shared by every page.
func (app *application) newTemplateData(r *http.Request) render.Data {
	data := render.Data{}
	if user, err := app.auth.GetAuthenticatedUser(r); err == nil {
		data["user"] = user
	}
	return data
}
