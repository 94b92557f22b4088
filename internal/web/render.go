package web

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"github.com/charmbracelet/log"

	"taskflow/internal/form"
	"taskflow/internal/service"
)

var pageNames = []string{"login.html", "register.html", "todos.html", "task_form.html"}

type flash struct {
	Kind    string
	Message string
}

// view is the data of every page.
type view struct {
	Title   string
	User    *service.User
	Flashes []flash
	Errors  map[string]string

	// Auth pages
	Login    form.Login
	Register form.Register

	// Task list
	Tasks  []service.Task
	Filter string
	Total  int

	// Task dialogs
	Form   form.Task
	Action string
	TaskID int

	Statuses     []service.Status
	Priorities   []service.Priority
	Difficulties []service.Difficulty
}

func newView(title string) *view {
	return &view{
		Title:        title,
		Statuses:     service.Statuses,
		Priorities:   service.Priorities,
		Difficulties: service.Difficulties,
	}
}

// withErrors fills Errors from a validation error.
func (v *view) withErrors(verr *form.ValidationError) *view {
	v.Errors = make(map[string]string, len(verr.Errors))
	for _, fe := range verr.Errors {
		v.Errors[fe.Field] = fe.Message
	}
	return v
}

var funcs = template.FuncMap{
	"selected": func(option any, value string) bool {
		return fmt.Sprint(option) == value
	},
}

func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// render writes the cookie, then the page. Pending notifications are
// moved into the view.
func (s *Server) render(w http.ResponseWriter, r *http.Request, c *cookieStore, status int, page string, v *view) {
	v.Flashes = append(v.Flashes, c.flashes()...)
	if sess, err := c.Load(); err == nil {
		u := sess.User()
		v.User = &u
	}
	if err := c.flush(); err != nil {
		log.FromContext(r.Context()).Error("save cookie", "err", err)
	}

	var buf bytes.Buffer
	if err := s.pages[page].ExecuteTemplate(&buf, "layout", v); err != nil {
		log.FromContext(r.Context()).Error("render", "page", page, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// redirect writes the cookie and sends a 303 to path.
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, c *cookieStore, path string) {
	if err := c.flush(); err != nil {
		log.FromContext(r.Context()).Error("save cookie", "err", err)
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}
