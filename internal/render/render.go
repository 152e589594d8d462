package render

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/yatube/internal/utils/stringutils"
	"github.com/siahsang/yatube/models"
)

//go:embed templates
var templateFS embed.FS

// Data is the context a template is rendered with.
type Data map[string]any

// Options configures the helpers available to every template.
type Options struct {
	PreviewLength int
	MediaURL      func(key string) string
}

// Renderer executes the page templates. Each page is parsed together with the
// base layout and the shared includes.
type Renderer struct {
	pages map[string]*template.Template
}

func New(opts Options) (*Renderer, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, xerrors.New(err)
	}
	return NewFromFS(sub, opts)
}

// NewFromFS parses every template under the posts, core and auth directories of fsys.
func NewFromFS(fsys fs.FS, opts Options) (*Renderer, error) {
	funcs := Funcs(opts)

	shared := []string{"base.html", "includes/*.html"}
	renderer := &Renderer{pages: make(map[string]*template.Template)}

	for _, dir := range []string{"posts", "core", "auth"} {
		names, err := fs.Glob(fsys, dir+"/*.html")
		if err != nil {
			return nil, xerrors.New(err)
		}
		for _, name := range names {
			patterns := append([]string{name}, shared...)
			tpl, err := template.New(path.Base(name)).Funcs(funcs).ParseFS(fsys, patterns...)
			if err != nil {
				return nil, xerrors.Newf("failed to parse template %s: %w", name, err)
			}
			renderer.pages[name] = tpl
		}
	}
	return renderer, nil
}

func Funcs(opts Options) template.FuncMap {
	mediaURL := opts.MediaURL
	if mediaURL == nil {
		mediaURL = func(key string) string { return key }
	}
	if opts.PreviewLength <= 0 {
		opts.PreviewLength = models.DefaultPreviewLength
	}

	return template.FuncMap{
		"preview": func(post *models.Post) string {
			return post.Preview(opts.PreviewLength)
		},
		"truncate": stringutils.Truncate,
		"media":    mediaURL,
		"date": func(t time.Time) string {
			return t.Format("2 January 2006")
		},
		"linebreaks": func(text string) template.HTML {
			escaped := template.HTMLEscapeString(text)
			return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
		},
	}
}

// Has reports whether a template called name was loaded.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// Render executes the named template into a buffer first, so a failing template
// never leaves a half written response behind.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data Data) error {
	tpl, ok := r.pages[name]
	if !ok {
		return xerrors.Newf("template %s does not exist", name)
	}

	buf := new(bytes.Buffer)
	if err := tpl.ExecuteTemplate(buf, "base", data); err != nil {
		return xerrors.Newf("failed to render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
