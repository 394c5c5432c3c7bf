package leave

import "errors"

var (
	ErrEmployeeIDRequired = errors.New("Employee ID is required")
	ErrInvalidAction      = errors.New("Invalid leave action")
	ErrApplyLeave         = errors.New("Failed to apply leave")
	ErrFetchLeaves        = errors.New("Failed to fetch leaves")
	ErrUpdateStatus       = errors.New("Failed to update leave status")
)
