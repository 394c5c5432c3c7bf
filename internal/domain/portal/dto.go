package portal

import "github.com/cmlabs-hris/leave-portal/internal/domain/leave"

// Snapshot is the rendered form of a State, returned by the JSON API and
// pushed over SSE.
type Snapshot struct {
	View           View                 `json:"view"`
	Form           Form                 `json:"form"`
	SearchID       string               `json:"searchId"`
	Notice         *Notice              `json:"notice,omitempty"`
	LeaveTypes     []leave.LeaveType    `json:"leaveTypes"`
	EmployeeLeaves []leave.LeaveRequest `json:"employeeLeaves"`
	ManagerLeaves  []leave.LeaveRequest `json:"managerLeaves"`
}

func (s State) Snapshot() Snapshot {
	return Snapshot{
		View:           s.View,
		Form:           s.Form,
		SearchID:       s.SearchID,
		Notice:         s.Notice,
		LeaveTypes:     leave.LeaveTypes(),
		EmployeeLeaves: s.EmployeeLeaves(),
		ManagerLeaves:  s.ManagerLeaves(),
	}
}

// SSEEvent represents a Server-Sent Event
type SSEEvent struct {
	Event string   `json:"event"`
	Data  Snapshot `json:"data"`
}

// EventStateChanged is published after every committed state change.
const EventStateChanged = "state.changed"
