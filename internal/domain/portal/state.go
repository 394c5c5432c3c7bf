package portal

import (
	"fmt"
	"strings"

	"github.com/cmlabs-hris/leave-portal/internal/domain/leave"
)

type View string

const (
	ViewEmployee View = "employee"
	ViewManager  View = "manager"
)

func ParseView(s string) (View, error) {
	switch View(s) {
	case ViewEmployee, ViewManager:
		return View(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidView, s)
	}
}

// Form is the draft of the apply form.
type Form struct {
	EmployeeID string          `json:"employeeId"`
	LeaveType  leave.LeaveType `json:"leaveType"`
	StartDate  string          `json:"startDate"`
	EndDate    string          `json:"endDate"`
	Reason     string          `json:"reason"`
}

// ApplyRequest builds the backend payload from the draft.
// The employee id is trimmed so it matches the id later used to list leaves.
func (f Form) ApplyRequest() leave.ApplyLeaveRequest {
	return leave.ApplyLeaveRequest{
		EmployeeID: strings.TrimSpace(f.EmployeeID),
		StartDate:  f.StartDate,
		EndDate:    f.EndDate,
		Reason:     f.Reason,
		LeaveType:  f.LeaveType,
	}
}

type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

// Notice is a one-shot message shown to the user after an action.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// FetchTarget names the view a fetch replaces.
type FetchTarget int

const (
	TargetEmployee FetchTarget = iota
	TargetManager
)

func (t FetchTarget) String() string {
	if t == TargetManager {
		return "manager"
	}
	return "employee"
}

// sequence tracks fetches for one view. issued is the last number handed out,
// applied the number of the response currently shown.
type sequence struct {
	issued  uint64
	applied uint64
}

// State is the whole portal UI state of one session. It is only ever replaced
// through Reduce.
type State struct {
	View     View
	Form     Form
	SearchID string
	Notice   *Notice

	store         Store
	employeeSlots []slot
	managerSlots  []slot
	employeeSeq   sequence
	managerSeq    sequence
}

// NewState returns the state of a freshly opened portal.
func NewState() State {
	return State{
		View: ViewEmployee,
		Form: Form{LeaveType: leave.DefaultLeaveType},
	}
}

// EmployeeLeaves projects the employee view in display order.
func (s State) EmployeeLeaves() []leave.LeaveRequest {
	return s.store.Project(s.employeeSlots)
}

// ManagerLeaves projects the manager view in display order.
func (s State) ManagerLeaves() []leave.LeaveRequest {
	return s.store.Project(s.managerSlots)
}

// Record returns the first request with id, searching the employee view and
// then the manager view.
func (s State) Record(id leave.RequestID) (leave.LeaveRequest, bool) {
	for _, r := range s.EmployeeLeaves() {
		if r.ID == id {
			return r, true
		}
	}
	for _, r := range s.ManagerLeaves() {
		if r.ID == id {
			return r, true
		}
	}
	return leave.LeaveRequest{}, false
}

// AppliedSeq returns the sequence number of the response currently shown in the target view.
func (s State) AppliedSeq(target FetchTarget) uint64 {
	if target == TargetManager {
		return s.managerSeq.applied
	}
	return s.employeeSeq.applied
}

// IssuedSeq returns the last sequence number handed out for the target view.
func (s State) IssuedSeq(target FetchTarget) uint64 {
	if target == TargetManager {
		return s.managerSeq.issued
	}
	return s.employeeSeq.issued
}
