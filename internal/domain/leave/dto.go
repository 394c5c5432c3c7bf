package leave

import "github.com/cmlabs-hris/leave-portal/internal/pkg/validator"

// ApplyLeaveRequest is the body of POST /leave/apply.
type ApplyLeaveRequest struct {
	EmployeeID string    `json:"employeeId"`
	StartDate  string    `json:"startDate"`
	EndDate    string    `json:"endDate"`
	Reason     string    `json:"reason"`
	LeaveType  LeaveType `json:"leaveType"`
}

func (r *ApplyLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	// Employee ID
	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employeeId",
			Message: "employeeId is required",
		})
	}

	// Dates are sent as typed; ordering is left to the backend.
	if validator.IsEmpty(r.StartDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "startDate",
			Message: "startDate is required",
		})
	}
	if validator.IsEmpty(r.EndDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "endDate",
			Message: "endDate is required",
		})
	}

	// Reason
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	// Leave type
	if !r.LeaveType.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "leaveType",
			Message: "leaveType must be one of Vacation, Sick, Work from Home",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ListLeavesFilter narrows GET /leave. An empty EmployeeID lists everything.
type ListLeavesFilter struct {
	EmployeeID string `json:"employeeId,omitempty"`
}

type UpdateStatusRequest struct {
	ID     RequestID `json:"id"`
	Action Action    `json:"action"`
}

func (r *UpdateStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(string(r.ID)) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if _, err := ParseAction(string(r.Action)); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "action",
			Message: "action must be approve or reject",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
