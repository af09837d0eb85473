package views

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
)

//go:embed templates
var viewsFS embed.FS

const (
	overviewPage = "overview.html"
	detailPage   = "detail.html"
	errorPage    = "error.html"
)

// Each page is parsed into its own set together with the layout and the
// partials, so every page can define its own "content" block.
var pageTmpls map[string]*template.Template

// loadTemplatesFromFS loads page templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	partials, err := fs.Glob(sub, "partials/*.html")
	if err != nil {
		return err
	}

	loaded := make(map[string]*template.Template, 3)
	for _, page := range []string{overviewPage, detailPage, errorPage} {
		patterns := append([]string{"base.html", page}, partials...)
		t, err := template.New(page).ParseFS(sub, patterns...)
		if err != nil {
			return fmt.Errorf("parse %s: %w", page, err)
		}
		loaded[page] = t
	}
	pageTmpls = loaded
	return nil
}

// LoadTemplates loads embedded page templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

func render(w io.Writer, page string, data any) error {
	t, ok := pageTmpls[page]
	if !ok {
		return errors.New(page + " template not loaded: call views.LoadTemplates during startup")
	}
	return t.ExecuteTemplate(w, "base", data)
}

func RenderOverview(w io.Writer, data *OverviewPage) error {
	return render(w, overviewPage, data)
}

func RenderDetail(w io.Writer, data *DetailPage) error {
	return render(w, detailPage, data)
}

func RenderError(w io.Writer, data *ErrorPage) error {
	return render(w, errorPage, data)
}
