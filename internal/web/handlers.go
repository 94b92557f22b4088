package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"taskflow/internal/board"
	"taskflow/internal/form"
	"taskflow/internal/service"
	"taskflow/internal/session"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	c := s.cookie(w, r)
	route := session.Guard(c, s.now())
	log.FromContext(r.Context()).Debug("guard", "route", route.String())
	s.redirect(w, r, c, route.Path())
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	c := s.cookie(w, r)
	s.render(w, r, c, http.StatusOK, "login.html", newView("Log in"))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	c := s.cookie(w, r)
	f := form.Login{Email: r.PostFormValue("email"), Password: r.PostFormValue("password")}
	v := newView("Log in")
	v.Login = form.Login{Email: f.Email}

	creds, err := f.Credentials()
	if verr, ok := form.AsValidationError(err); ok {
		s.render(w, r, c, http.StatusUnprocessableEntity, "login.html", v.withErrors(verr))
		return
	}

	auth, err := s.svc.Login(r.Context(), creds)
	if err != nil {
		s.authFailed(w, r, c, "login.html", v, err)
		return
	}
	s.startSession(w, r, c, auth)
}

func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	c := s.cookie(w, r)
	s.render(w, r, c, http.StatusOK, "register.html", newView("Sign up"))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	c := s.cookie(w, r)
	f := form.Register{
		Username: r.PostFormValue("username"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	v := newView("Sign up")
	v.Register = form.Register{Username: f.Username, Email: f.Email}

	reg, err := f.Registration()
	if verr, ok := form.AsValidationError(err); ok {
		s.render(w, r, c, http.StatusUnprocessableEntity, "register.html", v.withErrors(verr))
		return
	}

	auth, err := s.svc.Register(r.Context(), reg)
	if err != nil {
		s.authFailed(w, r, c, "register.html", v, err)
		return
	}
	s.startSession(w, r, c, auth)
}

// authFailed shows the server's message on the form the user came from.
func (s *Server) authFailed(w http.ResponseWriter, r *http.Request, c *cookieStore, page string, v *view, err error) {
	log.FromContext(r.Context()).Warn("authentication failed", "page", page, "err", err)
	status := http.StatusBadGateway
	if errors.Is(err, service.ErrInvalidCredentials) {
		status = http.StatusUnauthorized
	}
	c.flash(flashError, err.Error())
	s.render(w, r, c, status, page, v)
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, c *cookieStore, auth service.Auth) {
	sess, err := session.New(auth)
	if err != nil {
		c.flash(flashError, err.Error())
		s.redirect(w, r, c, session.RouteLogin.Path())
		return
	}
	s.endSession(c)
	_ = c.Save(sess)
	s.redirect(w, r, c, session.RouteTasks.Path())
}

// endSession clears the credential and discards the board of the browser
// session.
func (s *Server) endSession(c *cookieStore) {
	if sess, err := c.Load(); err == nil {
		sess.Invalidate()
		_ = c.Save(sess)
	} else {
		_ = c.Clear()
	}
	if key, ok := c.sess.Values[keyBoard].(string); ok {
		s.boards.drop(key)
		delete(c.sess.Values, keyBoard)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	c := s.cookie(w, r)
	s.endSession(c)
	c.flash(flashInfo, "Logged out.")
	s.redirect(w, r, c, session.RouteLogin.Path())
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	c := s.cookie(w, r)
	b := s.boards.get(c.boardKey())

	if !b.Loaded() || r.URL.Query().Get("refresh") != "" {
		if b.Loading() {
			log.FromContext(r.Context()).Debug("load tasks: another load in flight")
		}
		if err := b.Load(r.Context(), s.svc); err != nil {
			if s.sessionRejected(w, r, c, err) {
				return
			}
			log.FromContext(r.Context()).Warn("load tasks", "err", err)
			c.flash(flashError, "Could not load tasks: "+err.Error())
		}
	}

	v := newView("Tasks")
	v.Total = b.Len()
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := service.NormalizeStatus(raw)
		if status.Valid() {
			v.Filter = string(status)
		}
	}
	v.Tasks = b.Filter(service.Status(v.Filter))
	s.render(w, r, c, http.StatusOK, "todos.html", v)
}

func (s *Server) handleNewPage(w http.ResponseWriter, r *http.Request) {
	c := s.cookie(w, r)
	b := s.boards.get(c.boardKey())
	d := board.NewCreateDialog(s.svc, b)
	d.Open()
	s.render(w, r, c, http.StatusOK, "task_form.html", taskView("New task", "/todos/new", 0, d.Form))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	c := s.cookie(w, r)
	b := s.boards.get(c.boardKey())
	d := board.NewCreateDialog(s.svc, b)
	d.Open()
	d.Form = taskForm(r)

	task, err := d.Submit(r.Context())
	if err != nil {
		s.dialogFailed(w, r, c, taskView("New task", "/todos/new", 0, d.Form), err)
		return
	}
	c.flash(flashInfo, fmt.Sprintf("Created %q.", task.Title))
	s.redirect(w, r, c, session.RouteTasks.Path())
}

func (s *Server) handleEditPage(w http.ResponseWriter, r *http.Request) {
	c := s.cookie(w, r)
	task, ok := s.target(w, r, c)
	if !ok {
		return
	}
	d := board.NewEditDialog(s.svc, s.boards.get(c.boardKey()))
	d.Open(task)
	s.render(w, r, c, http.StatusOK, "task_form.html", taskView("Edit task", editPath(task.ID), task.ID, d.Form))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	c := s.cookie(w, r)
	task, ok := s.target(w, r, c)
	if !ok {
		return
	}
	d := board.NewEditDialog(s.svc, s.boards.get(c.boardKey()))
	d.Open(task)
	d.Form = taskForm(r)

	updated, err := d.Submit(r.Context())
	if err != nil {
		s.dialogFailed(w, r, c, taskView("Edit task", editPath(task.ID), task.ID, d.Form), err)
		return
	}
	c.flash(flashInfo, fmt.Sprintf("Saved %q.", updated.Title))
	s.redirect(w, r, c, session.RouteTasks.Path())
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	c := s.cookie(w, r)
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	b := s.boards.get(c.boardKey())

	if err := board.DeleteTask(r.Context(), s.svc, b, id); err != nil {
		if s.sessionRejected(w, r, c, err) {
			return
		}
		if errors.Is(err, service.ErrNotFound) {
			b.Remove(id)
		}
		c.flash(flashError, "Could not delete task: "+err.Error())
	} else {
		c.flash(flashInfo, "Task deleted.")
	}
	s.redirect(w, r, c, session.RouteTasks.Path())
}

// target finds the task named in the URL on the board, loading the board
// first if needed. It answers the request itself when the task is missing.
func (s *Server) target(w http.ResponseWriter, r *http.Request, c *cookieStore) (service.Task, bool) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	b := s.boards.get(c.boardKey())
	if !b.Loaded() {
		if err := b.Load(r.Context(), s.svc); err != nil {
			if !s.sessionRejected(w, r, c, err) {
				c.flash(flashError, "Could not load tasks: "+err.Error())
				s.redirect(w, r, c, session.RouteTasks.Path())
			}
			return service.Task{}, false
		}
	}
	task, ok := b.Find(id)
	if !ok {
		c.flash(flashError, fmt.Sprintf("Task %d not found.", id))
		s.redirect(w, r, c, session.RouteTasks.Path())
		return service.Task{}, false
	}
	return task, true
}

// dialogFailed shows the dialog again with the input preserved.
func (s *Server) dialogFailed(w http.ResponseWriter, r *http.Request, c *cookieStore, v *view, err error) {
	if verr, ok := form.AsValidationError(err); ok {
		s.render(w, r, c, http.StatusUnprocessableEntity, "task_form.html", v.withErrors(verr))
		return
	}
	if s.sessionRejected(w, r, c, err) {
		return
	}
	log.FromContext(r.Context()).Warn("save task", "err", err)
	c.flash(flashError, "Could not save task: "+err.Error())
	s.render(w, r, c, http.StatusBadGateway, "task_form.html", v)
}

// sessionRejected ends the browser session when the backend refused its
// credential and sends the user to the login page.
func (s *Server) sessionRejected(w http.ResponseWriter, r *http.Request, c *cookieStore, err error) bool {
	if !errors.Is(err, service.ErrUnauthorized) && !errors.Is(err, service.ErrNoSession) {
		return false
	}
	s.endSession(c)
	c.flash(flashError, "Your session is no longer valid. Please log in again.")
	s.redirect(w, r, c, session.RouteLogin.Path())
	return true
}

func taskView(title, action string, id int, f form.Task) *view {
	v := newView(title)
	v.Action = action
	v.TaskID = id
	v.Form = f
	return v
}

func taskForm(r *http.Request) form.Task {
	return form.Task{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Status:      r.PostFormValue("status"),
		Priority:    r.PostFormValue("priority"),
		Difficulty:  r.PostFormValue("difficulty"),
		DueDate:     r.PostFormValue("due_date"),
	}
}

func editPath(id int) string {
	return fmt.Sprintf("/todos/%d/edit", id)
}
