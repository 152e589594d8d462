package main

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/yatube/internal/auth"
	"github.com/siahsang/yatube/internal/render"
	"github.com/siahsang/yatube/internal/utils/stringutils"
)

var invalidIDParameter = xerrors.Message("Invalid id parameter")

func (app *application) readIDParam(r *http.Request) (int64, error) {
	params := httprouter.ParamsFromContext(r.Context())

	id, err := strconv.ParseInt(params.ByName("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, xerrors.New(invalidIDParameter)
	}
	return id, nil
}

func (app *application) readParam(r *http.Request, name string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(name)
}

// currentUser returns the requesting user, nil for anonymous requests.
func (app *application) currentUser(r *http.Request) *auth.User {
	user, err := app.auth.GetAuthenticatedUser(r)
	if err != nil {
		return nil
	}
	return user
}

func (app *application) redirect(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// render merges data into the shared template context and writes the page.
func (app *application) render(w http.ResponseWriter, r *http.Request, status int, name string, data render.Data) {
	page := app.newTemplateData(r)
	for k, v := range data {
		page[k] = v
	}

	if err := app.renderer.Render(w, status, name, page); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) doInBackground(fn func()) {
	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				app.logger.Error(fmt.Sprintf("panic in background task: %v", r))
			}
		}()
		fn()
	}()
}

func profileURL(username string) string {
	return "/profile/" + username + "/"
}

func postURL(id int64) string {
	return "/posts/" + stringutils.ToString(id) + "/"
}
