package leave

import (
	"context"
)

// LeaveRequestRepository - interface for the remote leave service
type LeaveRequestRepository interface {
	Apply(ctx context.Context, req ApplyLeaveRequest) (LeaveRequest, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error)
	List(ctx context.Context, filter ListLeavesFilter) ([]LeaveRequest, error)
	UpdateStatus(ctx context.Context, id RequestID, action Action) (LeaveRequest, error)
}
