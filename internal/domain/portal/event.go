package portal

import "github.com/cmlabs-hris/leave-portal/internal/domain/leave"

// Messages shown to the user.
const (
	MsgFillAllFields       = "Fill all fields!"
	MsgLeaveApplied        = "Leave Applied!"
	MsgEmployeeIDRequired  = "Enter Employee ID to fetch leaves"
	MsgFetchMyLeavesFailed = "Error fetching leaves. Make sure backend is running."
	MsgFetchAllFailed      = "Error fetching leaves."
	MsgApplyFailed         = "Error applying leave."
	MsgUpdateStatusFailed  = "Error updating leave status."
)

// Event is an input to Reduce.
type Event interface {
	isEvent()
}

type FormEdited struct {
	Form Form
}

type ViewSwitched struct {
	View View
}

type SearchEdited struct {
	SearchID string
}

// LeaveApplied carries the record the backend created.
type LeaveApplied struct {
	Record leave.LeaveRequest
}

// FetchStarted hands out the next sequence number for Target.
type FetchStarted struct {
	Target FetchTarget
}

type EmployeeLeavesLoaded struct {
	Seq     uint64
	Records []leave.LeaveRequest
}

type ManagerLeavesLoaded struct {
	Seq     uint64
	Records []leave.LeaveRequest
}

// StatusChanged carries the record returned by an approve or reject call.
type StatusChanged struct {
	Record leave.LeaveRequest
}

type ValidationFailed struct {
	Message string
}

type ActionFailed struct {
	Message string
}

type NoticeShown struct{}

func (FormEdited) isEvent()           {}
func (ViewSwitched) isEvent()         {}
func (SearchEdited) isEvent()         {}
func (LeaveApplied) isEvent()         {}
func (FetchStarted) isEvent()         {}
func (EmployeeLeavesLoaded) isEvent() {}
func (ManagerLeavesLoaded) isEvent()  {}
func (StatusChanged) isEvent()        {}
func (ValidationFailed) isEvent()     {}
func (ActionFailed) isEvent()         {}
func (NoticeShown) isEvent()          {}
