package httpapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/cmlabs-hris/leave-portal/internal/domain/leave"
	"github.com/cmlabs-hris/leave-portal/internal/pkg/backend"
)

type leaveRequestRepositoryImpl struct {
	client *backend.Client
}

func NewLeaveRequestRepository(client *backend.Client) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{client: client}
}

// Apply implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Apply(ctx context.Context, req leave.ApplyLeaveRequest) (leave.LeaveRequest, error) {
	var created leave.LeaveRequest
	if err := r.client.DoJSON(ctx, http.MethodPost, "/leave/apply", nil, req, &created); err != nil {
		return leave.LeaveRequest{}, err
	}
	return created, nil
}

// ListByEmployee implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	var requests []leave.LeaveRequest
	path := "/leave/" + url.PathEscape(employeeID)
	if err := r.client.DoJSON(ctx, http.MethodGet, path, nil, nil, &requests); err != nil {
		return nil, err
	}
	return nonNil(requests), nil
}

// List implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.ListLeavesFilter) ([]leave.LeaveRequest, error) {
	var query url.Values
	if filter.EmployeeID != "" {
		query = url.Values{"employeeId": {filter.EmployeeID}}
	}

	var requests []leave.LeaveRequest
	if err := r.client.DoJSON(ctx, http.MethodGet, "/leave", query, nil, &requests); err != nil {
		return nil, err
	}
	return nonNil(requests), nil
}

// UpdateStatus implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) UpdateStatus(ctx context.Context, id leave.RequestID, action leave.Action) (leave.LeaveRequest, error) {
	var updated leave.LeaveRequest
	path := "/leave/" + url.PathEscape(id.String()) + "/" + string(action)
	if err := r.client.DoJSON(ctx, http.MethodPut, path, nil, nil, &updated); err != nil {
		return leave.LeaveRequest{}, err
	}
	return updated, nil
}

// a JSON null list decodes to nil; views treat that as empty
func nonNil(requests []leave.LeaveRequest) []leave.LeaveRequest {
	if requests == nil {
		return []leave.LeaveRequest{}
	}
	return requests
}
