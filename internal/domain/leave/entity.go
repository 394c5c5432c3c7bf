package leave

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// RequestID is the backend-assigned identifier of a leave request. The backend
// may send it as a JSON string or a JSON number; either way the textual form is kept.
type RequestID string

func (id RequestID) String() string {
	return string(id)
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *RequestID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = RequestID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("leave request id must be a string or number: %w", err)
	}
	*id = RequestID(n.String())
	return nil
}

// MarshalJSON implements json.Marshaler.
func (id RequestID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}

type LeaveType string

const (
	LeaveTypeVacation     LeaveType = "Vacation"
	LeaveTypeSick         LeaveType = "Sick"
	LeaveTypeWorkFromHome LeaveType = "Work from Home"
)

// DefaultLeaveType is preselected on a fresh apply form.
const DefaultLeaveType = LeaveTypeVacation

// LeaveTypes returns the selectable leave types in display order.
func LeaveTypes() []LeaveType {
	return []LeaveType{LeaveTypeVacation, LeaveTypeSick, LeaveTypeWorkFromHome}
}

func (t LeaveType) IsValid() bool {
	for _, known := range LeaveTypes() {
		if t == known {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// IsPending reports whether the request still awaits a manager decision.
func (s Status) IsPending() bool {
	return s == StatusPending
}

// BadgeClass is the CSS class used to render the status badge.
func (s Status) BadgeClass() string {
	return strings.ToLower(string(s))
}

// Action is a manager decision on a pending request.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionApprove, ActionReject:
		return Action(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, s)
	}
}

// LeaveRequest mirrors the backend record. The portal never edits these fields
// itself; every change comes from a backend response.
type LeaveRequest struct {
	ID         RequestID `json:"id"`
	EmployeeID string    `json:"employeeId"`
	LeaveType  LeaveType `json:"leaveType"`
	StartDate  string    `json:"startDate"`
	EndDate    string    `json:"endDate"`
	Reason     string    `json:"reason"`
	Status     Status    `json:"status"`
}
