package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/leave-portal/internal/domain/leave"
	"github.com/cmlabs-hris/leave-portal/internal/domain/portal"
	"github.com/cmlabs-hris/leave-portal/internal/handler/http/middleware"
	"github.com/cmlabs-hris/leave-portal/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

// PortalAPIHandler exposes the portal operations as JSON for scripted clients
type PortalAPIHandler interface {
	GetState(w http.ResponseWriter, r *http.Request)
	SwitchView(w http.ResponseWriter, r *http.Request)
	ApplyLeave(w http.ResponseWriter, r *http.Request)
	ListMyLeaves(w http.ResponseWriter, r *http.Request)
	ListLeaves(w http.ResponseWriter, r *http.Request)
	UpdateStatus(w http.ResponseWriter, r *http.Request)
}

type portalAPIHandlerImpl struct {
	portalService portal.Service
}

func NewPortalAPIHandler(portalService portal.Service) PortalAPIHandler {
	return &portalAPIHandlerImpl{
		portalService: portalService,
	}
}

// GetState returns the session state and consumes its notice
func (h *portalAPIHandlerImpl) GetState(w http.ResponseWriter, r *http.Request) {
	st, err := h.portalService.Snapshot(r.Context(), middleware.SessionID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, st.Snapshot())
}

func (h *portalAPIHandlerImpl) SwitchView(w http.ResponseWriter, r *http.Request) {
	view, err := portal.ParseView(chi.URLParam(r, "mode"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	st, err := h.portalService.SwitchView(r.Context(), middleware.SessionID(r.Context()), view)
	h.consumeNotice(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, st.Snapshot())
}

func (h *portalAPIHandlerImpl) ApplyLeave(w http.ResponseWriter, r *http.Request) {
	var req portal.Form
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	st, err := h.portalService.ApplyLeave(r.Context(), middleware.SessionID(r.Context()), req)
	h.consumeNotice(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, portal.MsgLeaveApplied, st.Snapshot())
}

func (h *portalAPIHandlerImpl) ListMyLeaves(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee_id")

	st, err := h.portalService.FetchMyLeaves(r.Context(), middleware.SessionID(r.Context()), employeeID)
	h.consumeNotice(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, st.EmployeeLeaves())
}

func (h *portalAPIHandlerImpl) ListLeaves(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee_id")

	st, err := h.portalService.FetchAllLeaves(r.Context(), middleware.SessionID(r.Context()), employeeID)
	h.consumeNotice(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, st.ManagerLeaves())
}

func (h *portalAPIHandlerImpl) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	action, err := leave.ParseAction(chi.URLParam(r, "action"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	id := leave.RequestID(chi.URLParam(r, "id"))

	st, err := h.portalService.UpdateStatus(r.Context(), middleware.SessionID(r.Context()), leave.UpdateStatusRequest{
		ID:     id,
		Action: action,
	})
	h.consumeNotice(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	// Records the session never listed are not cached
	updated, ok := st.Record(id)
	if !ok {
		response.SuccessWithMessage(w, "Leave status updated", nil)
		return
	}
	response.SuccessWithMessage(w, "Leave status updated", updated)
}

// consumeNotice clears the notice an operation left on the session; the JSON
// response already reports the outcome.
func (h *portalAPIHandlerImpl) consumeNotice(r *http.Request) {
	_, _ = h.portalService.Snapshot(r.Context(), middleware.SessionID(r.Context()))
}
