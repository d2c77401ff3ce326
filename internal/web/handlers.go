package web

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/crucial707/fpadmin/internal/models"
)

// index mounts the dashboard: the login form without a session, otherwise
// one fetch of the logs.
func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	token := tokenFromCookie(r)
	if token == "" {
		renderTemplate(w, s.log, pageLogin, pageData{})
		return
	}
	e, _ := s.sessions.get(token)
	// Failures end up in the view as a banner or a logout.
	_ = e.ctrl.Start(r.Context())
	s.renderSession(w, token, e, pageData{})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	creds := models.Credentials{
		Username: strings.TrimSpace(r.FormValue("username")),
		Password: r.FormValue("password"),
	}

	e := s.sessions.fresh("")
	if err := e.ctrl.Login(r.Context(), creds); err != nil && !e.ctrl.View().LoggedIn() {
		renderTemplate(w, s.log, pageLogin, pageData{
			Notices:  e.notices.Drain(),
			Username: creds.Username,
		})
		return
	}
	token, ok := e.store.Read()
	if !ok {
		renderTemplate(w, s.log, pageLogin, pageData{Notices: e.notices.Drain(), Username: creds.Username})
		return
	}
	s.sessions.put(token, e)
	s.setTokenCookie(w, token)
	s.renderSession(w, token, e, pageData{})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if token := tokenFromCookie(r); token != "" {
		if e, ok := s.sessions.lookup(token); ok {
			if err := e.ctrl.Logout(); err != nil {
				s.log.Error("logout", "err", err)
			}
		}
		s.sessions.remove(token)
	}
	s.clearTokenCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) saveMapping(w http.ResponseWriter, r *http.Request) {
	token, e, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	in := models.MappingInput{
		UserID: r.FormValue("userId"),
		Name:   r.FormValue("name"),
	}
	_ = e.ctrl.SaveMapping(r.Context(), in)
	s.renderSession(w, token, e, pageData{})
}

func (s *Server) deleteConfirm(w http.ResponseWriter, r *http.Request) {
	token, e, ok := s.session(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	data := pageData{View: e.ctrl.View(), RecordID: id}
	for i := range data.View.Rows {
		if data.View.Rows[i].RecordID == id {
			data.Entry = &data.View.Rows[i]
			break
		}
	}
	if !data.View.LoggedIn() {
		s.renderSession(w, token, e, pageData{})
		return
	}
	renderTemplate(w, s.log, pageDeleteConfirm, data)
}

func (s *Server) deleteLog(w http.ResponseWriter, r *http.Request) {
	token, e, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	// Anything but an explicit yes from the confirmation page is a cancel.
	if r.FormValue("confirm") == "yes" {
		_ = e.ctrl.Delete(r.Context(), chi.URLParam(r, "id"))
	}
	s.renderSession(w, token, e, pageData{})
}

// session resolves the cookie to a dashboard. Without a cookie it redirects
// to the login form. A dashboard the process has not seen yet (for example
// after a restart) is loaded once before the action runs.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (string, *sessionEntry, bool) {
	token := tokenFromCookie(r)
	if token == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return "", nil, false
	}
	e, created := s.sessions.get(token)
	if created {
		_ = e.ctrl.Reload(r.Context())
	}
	return token, e, true
}

// renderSession renders the dashboard, or the login form with the pending
// notices once the session has ended.
func (s *Server) renderSession(w http.ResponseWriter, token string, e *sessionEntry, data pageData) {
	data.View = e.ctrl.View()
	data.Notices = append(data.Notices, e.notices.Drain()...)
	if !data.View.LoggedIn() {
		s.sessions.remove(token)
		s.clearTokenCookie(w)
		renderTemplate(w, s.log, pageLogin, data)
		return
	}
	renderTemplate(w, s.log, pageDashboard, data)
}
