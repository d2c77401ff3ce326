package web

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/crucial707/fpadmin/internal/dashboard"
	"github.com/crucial707/fpadmin/internal/models"
)

//go:embed templates
var templatesFS embed.FS

const (
	pageLogin         = "login.html"
	pageDashboard     = "dashboard.html"
	pageDeleteConfirm = "delete_confirm.html"
)

var pages = map[string]*template.Template{}

func init() {
	for _, name := range []string{pageLogin, pageDashboard, pageDeleteConfirm} {
		pages[name] = template.Must(template.ParseFS(templatesFS, "templates/layout.html", "templates/"+name))
	}
}

type pageData struct {
	View     dashboard.View
	Notices  []dashboard.Notice
	Error    string
	Username string
	RecordID string
	Entry    *models.LogEntry
}

func renderTemplate(w http.ResponseWriter, log *slog.Logger, name string, data pageData) {
	t, ok := pages[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		log.Error("template execute", "template", name, "err", err)
	}
}
