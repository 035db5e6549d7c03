package httpapi

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"crowdfund-go/internal/format"
	"crowdfund-go/internal/model"
	"crowdfund-go/internal/services/projects"
	"crowdfund-go/internal/services/stats"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"index", "new", "edit", "single", "search", "search-result", "login", "signup"}

// views holds one template set per page, each combined with the layout and
// the shared partials.
type views struct {
	pages    map[string]*template.Template
	fragment *template.Template
}

func newViews(f format.Formatter) (*views, error) {
	funcs := template.FuncMap{
		"amount":     f.Amount,
		"date":       f.Date,
		"datetime":   f.DateTime,
		"capitalize": model.Capitalize,
	}

	v := &views{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/comment.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		v.pages[name] = t
	}

	fragment, err := template.New("comment").Funcs(funcs).ParseFS(templateFS, "templates/comment.html")
	if err != nil {
		return nil, fmt.Errorf("parse comment template: %w", err)
	}
	v.fragment = fragment
	return v, nil
}

// page is the data every full page is rendered with. Handlers fill in the
// fields their template reads.
type page struct {
	Title    string
	LoggedIn bool
	Errors   []string
	Form     map[string]string

	Projects []projects.Listing
	Stats    stats.Snapshot

	Detail             projects.Detail
	CanEdit            bool
	CanDonate          bool
	CanComment         bool
	OpenToDonations    bool
	DonationSuccessful bool
}

func (v *views) render(w http.ResponseWriter, name string, status int, data page) error {
	t, ok := v.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	if data.Form == nil {
		data.Form = map[string]string{}
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}

func (v *views) renderComment(w http.ResponseWriter, comment projects.CommentView) error {
	var buf bytes.Buffer
	if err := v.fragment.ExecuteTemplate(&buf, "comment", comment); err != nil {
		return fmt.Errorf("render comment: %w", err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
	return nil
}
