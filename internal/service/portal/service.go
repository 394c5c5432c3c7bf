package portal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/leave-portal/internal/domain/leave"
	"github.com/cmlabs-hris/leave-portal/internal/domain/portal"
	"github.com/cmlabs-hris/leave-portal/internal/pkg/sse"
	"github.com/cmlabs-hris/leave-portal/internal/pkg/validator"
)

// Config holds portal service settings
type Config struct {
	IdleTimeout time.Duration
}

type service struct {
	repo        leave.LeaveRequestRepository
	hub         *sse.Hub
	sessions    *sessionRegistry
	idleTimeout time.Duration
}

func NewPortalService(repo leave.LeaveRequestRepository, hub *sse.Hub, cfg Config) portal.Service {
	return newService(repo, hub, cfg, time.Now)
}

func newService(repo leave.LeaveRequestRepository, hub *sse.Hub, cfg Config, now func() time.Time) *service {
	return &service{
		repo:        repo,
		hub:         hub,
		sessions:    newSessionRegistry(now),
		idleTimeout: cfg.IdleTimeout,
	}
}

// OpenSession implements portal.Service.
func (s *service) OpenSession(ctx context.Context) (string, error) {
	id := s.sessions.open()
	slog.Debug("Portal session opened", "session_id", id)
	return id, nil
}

// HasSession implements portal.Service.
func (s *service) HasSession(sessionID string) bool {
	return s.sessions.has(sessionID)
}

// SweepIdleSessions implements portal.Service.
func (s *service) SweepIdleSessions(ctx context.Context) error {
	if removed := s.sessions.sweep(s.idleTimeout); removed > 0 {
		slog.Info("Idle portal sessions swept", "removed", removed, "remaining", s.sessions.count())
	}
	return nil
}

// Snapshot implements portal.Service.
func (s *service) Snapshot(ctx context.Context, sessionID string) (portal.State, error) {
	prev, _, err := s.sessions.update(sessionID, func(st portal.State) portal.State {
		return portal.Reduce(st, portal.NoticeShown{})
	})
	return prev, err
}

// Peek implements portal.Service.
func (s *service) Peek(ctx context.Context, sessionID string) (portal.State, error) {
	return s.sessions.get(sessionID)
}

// SwitchView implements portal.Service.
func (s *service) SwitchView(ctx context.Context, sessionID string, view portal.View) (portal.State, error) {
	st, err := s.dispatch(sessionID, portal.ViewSwitched{View: view})
	if err != nil {
		return st, err
	}
	if view != portal.ViewManager {
		return st, nil
	}
	// opening the manager tab always lists everything, the search box is kept
	return s.fetchManagerLeaves(ctx, sessionID, "")
}

// EditForm implements portal.Service.
func (s *service) EditForm(ctx context.Context, sessionID string, form portal.Form) (portal.State, error) {
	return s.dispatch(sessionID, portal.FormEdited{Form: form})
}

// ApplyLeave implements portal.Service.
func (s *service) ApplyLeave(ctx context.Context, sessionID string, form portal.Form) (portal.State, error) {
	st, err := s.dispatch(sessionID, portal.FormEdited{Form: form})
	if err != nil {
		return st, err
	}

	req := st.Form.ApplyRequest()
	if err := req.Validate(); err != nil {
		st, _ = s.dispatch(sessionID, portal.ValidationFailed{Message: portal.MsgFillAllFields})
		return st, err
	}

	created, err := s.repo.Apply(ctx, req)
	if err != nil {
		slog.Error("ApplyLeave backend error", "session_id", sessionID, "employee_id", req.EmployeeID, "error", err)
		st, _ = s.dispatch(sessionID, portal.ActionFailed{Message: portal.MsgApplyFailed})
		return st, fmt.Errorf("%w: %w", leave.ErrApplyLeave, err)
	}

	return s.dispatch(sessionID, portal.LeaveApplied{Record: created})
}

// FetchMyLeaves implements portal.Service.
func (s *service) FetchMyLeaves(ctx context.Context, sessionID string, employeeID string) (portal.State, error) {
	st, err := s.commit(sessionID, func(st portal.State) portal.State {
		form := st.Form
		form.EmployeeID = employeeID
		return portal.Reduce(st, portal.FormEdited{Form: form})
	})
	if err != nil {
		return st, err
	}

	if validator.IsEmpty(employeeID) {
		st, _ = s.dispatch(sessionID, portal.ValidationFailed{Message: portal.MsgEmployeeIDRequired})
		return st, leave.ErrEmployeeIDRequired
	}

	seq, err := s.beginFetch(sessionID, portal.TargetEmployee)
	if err != nil {
		return st, err
	}

	records, err := s.repo.ListByEmployee(ctx, strings.TrimSpace(employeeID))
	if err != nil {
		slog.Error("FetchMyLeaves backend error", "session_id", sessionID, "employee_id", employeeID, "error", err)
		st, _ = s.dispatch(sessionID, portal.ActionFailed{Message: portal.MsgFetchMyLeavesFailed})
		return st, fmt.Errorf("%w: %w", leave.ErrFetchLeaves, err)
	}

	st, err = s.dispatch(sessionID, portal.EmployeeLeavesLoaded{Seq: seq, Records: records})
	s.logIfStale(sessionID, portal.TargetEmployee, seq, st)
	return st, err
}

// FetchAllLeaves implements portal.Service.
func (s *service) FetchAllLeaves(ctx context.Context, sessionID string, searchID string) (portal.State, error) {
	if _, err := s.dispatch(sessionID, portal.SearchEdited{SearchID: searchID}); err != nil {
		return portal.State{}, err
	}
	return s.fetchManagerLeaves(ctx, sessionID, searchID)
}

func (s *service) fetchManagerLeaves(ctx context.Context, sessionID string, searchID string) (portal.State, error) {
	seq, err := s.beginFetch(sessionID, portal.TargetManager)
	if err != nil {
		return portal.State{}, err
	}

	filter := leave.ListLeavesFilter{EmployeeID: strings.TrimSpace(searchID)}
	records, err := s.repo.List(ctx, filter)
	if err != nil {
		slog.Error("FetchAllLeaves backend error", "session_id", sessionID, "filter", filter.EmployeeID, "error", err)
		st, _ := s.dispatch(sessionID, portal.ActionFailed{Message: portal.MsgFetchAllFailed})
		return st, fmt.Errorf("%w: %w", leave.ErrFetchLeaves, err)
	}

	st, err := s.dispatch(sessionID, portal.ManagerLeavesLoaded{Seq: seq, Records: records})
	s.logIfStale(sessionID, portal.TargetManager, seq, st)
	return st, err
}

// UpdateStatus implements portal.Service.
func (s *service) UpdateStatus(ctx context.Context, sessionID string, req leave.UpdateStatusRequest) (portal.State, error) {
	st, err := s.sessions.get(sessionID)
	if err != nil {
		return st, err
	}
	if err := req.Validate(); err != nil {
		return st, err
	}

	updated, err := s.repo.UpdateStatus(ctx, req.ID, req.Action)
	if err != nil {
		slog.Error("UpdateStatus backend error", "session_id", sessionID, "request_id", req.ID, "action", req.Action, "error", err)
		st, _ = s.dispatch(sessionID, portal.ActionFailed{Message: portal.MsgUpdateStatusFailed})
		return st, fmt.Errorf("%w: %w", leave.ErrUpdateStatus, err)
	}

	return s.dispatch(sessionID, portal.StatusChanged{Record: updated})
}

// Subscribe implements portal.Service.
func (s *service) Subscribe(ctx context.Context, sessionID string) (<-chan portal.SSEEvent, func()) {
	ch, cleanup := s.hub.Subscribe(sessionID)

	out := make(chan portal.SSEEvent, 10)

	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				if snap, ok := event.Data.(portal.Snapshot); ok {
					select {
					case out <- portal.SSEEvent{Event: event.Event, Data: snap}:
					case <-ctx.Done():
						return
					}
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}

// dispatch reduces events in order and publishes the result.
func (s *service) dispatch(sessionID string, events ...portal.Event) (portal.State, error) {
	return s.commit(sessionID, func(st portal.State) portal.State {
		for _, e := range events {
			st = portal.Reduce(st, e)
		}
		return st
	})
}

func (s *service) commit(sessionID string, fn func(portal.State) portal.State) (portal.State, error) {
	_, next, err := s.sessions.update(sessionID, fn)
	if err != nil {
		return next, err
	}
	s.hub.Publish(sessionID, sse.Event{
		Event: portal.EventStateChanged,
		Data:  next.Snapshot(),
	})
	return next, nil
}

func (s *service) beginFetch(sessionID string, target portal.FetchTarget) (uint64, error) {
	_, next, err := s.sessions.update(sessionID, func(st portal.State) portal.State {
		return portal.Reduce(st, portal.FetchStarted{Target: target})
	})
	if err != nil {
		return 0, err
	}
	return next.IssuedSeq(target), nil
}

func (s *service) logIfStale(sessionID string, target portal.FetchTarget, seq uint64, st portal.State) {
	if applied := st.AppliedSeq(target); applied != seq {
		slog.Debug("Stale leave list response discarded",
			"session_id", sessionID,
			"view", target.String(),
			"seq", seq,
			"applied", applied,
		)
	}
}
