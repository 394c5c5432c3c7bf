package http

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/leave-portal/internal/domain/leave"
	"github.com/cmlabs-hris/leave-portal/internal/domain/portal"
	"github.com/cmlabs-hris/leave-portal/internal/handler/http/middleware"
	"github.com/cmlabs-hris/leave-portal/internal/pkg/export"
	"github.com/go-chi/chi/v5"
)

//go:embed templates/portal.html assets/app.css assets/app.js
var webFS embed.FS

// PageTitle is the heading of the portal page.
const PageTitle = "Info-tech-sys HR portal-Employee Leave Management"

// PortalHandler serves the server-rendered portal page and its form posts
type PortalHandler interface {
	Page(w http.ResponseWriter, r *http.Request)
	SwitchView(w http.ResponseWriter, r *http.Request)
	ApplyLeave(w http.ResponseWriter, r *http.Request)
	FetchMyLeaves(w http.ResponseWriter, r *http.Request)
	SearchLeaves(w http.ResponseWriter, r *http.Request)
	UpdateStatus(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
	Assets() http.Handler
}

type portalHandlerImpl struct {
	portalService portal.Service
	pageTmpl      *template.Template
	assets        http.Handler
}

func NewPortalHandler(portalService portal.Service) PortalHandler {
	assets, err := fs.Sub(webFS, "assets")
	if err != nil {
		panic(err)
	}
	return &portalHandlerImpl{
		portalService: portalService,
		pageTmpl:      template.Must(template.ParseFS(webFS, "templates/portal.html")),
		assets:        http.StripPrefix("/assets/", http.FileServer(http.FS(assets))),
	}
}

type pageData struct {
	portal.Snapshot
	Title     string
	IsManager bool
}

// Page renders the portal. A normal load consumes the pending notice; the
// reload triggered by a live update (?quiet=1) leaves it for the tab that
// caused it.
func (h *portalHandlerImpl) Page(w http.ResponseWriter, r *http.Request) {
	sid := middleware.SessionID(r.Context())

	quiet := r.URL.Query().Get("quiet") == "1"

	var (
		st  portal.State
		err error
	)
	if quiet {
		st, err = h.portalService.Peek(r.Context(), sid)
	} else {
		st, err = h.portalService.Snapshot(r.Context(), sid)
	}
	if err != nil {
		h.redirectHome(w, r)
		return
	}

	data := pageData{
		Snapshot:  st.Snapshot(),
		Title:     PageTitle,
		IsManager: st.View == portal.ViewManager,
	}
	if quiet {
		data.Notice = nil
	}

	var buf bytes.Buffer
	if err := h.pageTmpl.Execute(&buf, data); err != nil {
		slog.Error("Failed to render portal page", "session_id", sid, "error", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

func (h *portalHandlerImpl) SwitchView(w http.ResponseWriter, r *http.Request) {
	view, err := portal.ParseView(chi.URLParam(r, "mode"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.afterAction(w, r, "SwitchView")(h.portalService.SwitchView(r.Context(), middleware.SessionID(r.Context()), view))
}

func (h *portalHandlerImpl) ApplyLeave(w http.ResponseWriter, r *http.Request) {
	form, ok := parsePortalForm(w, r)
	if !ok {
		return
	}
	h.afterAction(w, r, "ApplyLeave")(h.portalService.ApplyLeave(r.Context(), middleware.SessionID(r.Context()), form))
}

// FetchMyLeaves keeps whatever else was typed into the apply form.
func (h *portalHandlerImpl) FetchMyLeaves(w http.ResponseWriter, r *http.Request) {
	form, ok := parsePortalForm(w, r)
	if !ok {
		return
	}
	sid := middleware.SessionID(r.Context())
	if _, err := h.portalService.EditForm(r.Context(), sid, form); err != nil {
		h.redirectHome(w, r)
		return
	}
	h.afterAction(w, r, "FetchMyLeaves")(h.portalService.FetchMyLeaves(r.Context(), sid, form.EmployeeID))
}

func (h *portalHandlerImpl) SearchLeaves(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}
	h.afterAction(w, r, "SearchLeaves")(h.portalService.FetchAllLeaves(r.Context(), middleware.SessionID(r.Context()), r.PostForm.Get("searchId")))
}

func (h *portalHandlerImpl) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	action, err := leave.ParseAction(chi.URLParam(r, "action"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req := leave.UpdateStatusRequest{
		ID:     leave.RequestID(chi.URLParam(r, "id")),
		Action: action,
	}
	h.afterAction(w, r, "UpdateStatus")(h.portalService.UpdateStatus(r.Context(), middleware.SessionID(r.Context()), req))
}

// Export downloads the manager view as currently shown.
func (h *portalHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	sid := middleware.SessionID(r.Context())
	st, err := h.portalService.Peek(r.Context(), sid)
	if err != nil {
		h.redirectHome(w, r)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteLeaves(&buf, st.ManagerLeaves()); err != nil {
		slog.Error("Failed to export leaves", "session_id", sid, "error", err)
		http.Error(w, "Failed to export leaves", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("leaves-%s.xlsx", time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = buf.WriteTo(w)
}

func (h *portalHandlerImpl) Assets() http.Handler {
	return h.assets
}

// afterAction finishes a form post. Domain failures are already on the
// session as a notice, so every outcome redirects back to the page.
func (h *portalHandlerImpl) afterAction(w http.ResponseWriter, r *http.Request, op string) func(portal.State, error) {
	return func(_ portal.State, err error) {
		if err != nil && !errors.Is(err, portal.ErrSessionNotFound) {
			slog.Debug("Portal action finished with notice", "op", op, "error", err)
		}
		h.redirectHome(w, r)
	}
}

func (h *portalHandlerImpl) redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func parsePortalForm(w http.ResponseWriter, r *http.Request) (portal.Form, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return portal.Form{}, false
	}
	return portal.Form{
		EmployeeID: r.PostForm.Get("employeeId"),
		LeaveType:  leave.LeaveType(r.PostForm.Get("leaveType")),
		StartDate:  r.PostForm.Get("startDate"),
		EndDate:    r.PostForm.Get("endDate"),
		Reason:     r.PostForm.Get("reason"),
	}, true
}
