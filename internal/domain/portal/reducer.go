package portal

import "github.com/cmlabs-hris/leave-portal/internal/domain/leave"

// Reduce returns the state that follows s after e. It never mutates s; slices
// and the store are copied before they change.
func Reduce(s State, e Event) State {
	switch e := e.(type) {
	case FormEdited:
		s.Form = e.Form
		if s.Form.LeaveType == "" {
			s.Form.LeaveType = leave.DefaultLeaveType
		}

	case ViewSwitched:
		s.View = e.View

	case SearchEdited:
		s.SearchID = e.SearchID

	case LeaveApplied:
		var added []slot
		s.store, added = s.store.Add(e.Record)
		s.employeeSlots = appendSlots(s.employeeSlots, added)
		s.Form.StartDate = ""
		s.Form.EndDate = ""
		s.Form.Reason = ""
		s.Notice = &Notice{Level: NoticeInfo, Message: MsgLeaveApplied}

	case FetchStarted:
		if e.Target == TargetManager {
			s.managerSeq.issued++
		} else {
			s.employeeSeq.issued++
		}

	case EmployeeLeavesLoaded:
		if e.Seq < s.employeeSeq.applied {
			return s
		}
		s.employeeSeq.applied = e.Seq
		s.store, s.employeeSlots = s.store.Add(e.Records...)
		s.store = s.store.Retain(s.employeeSlots, s.managerSlots)

	case ManagerLeavesLoaded:
		if e.Seq < s.managerSeq.applied {
			return s
		}
		s.managerSeq.applied = e.Seq
		s.store, s.managerSlots = s.store.Add(e.Records...)
		s.store = s.store.Retain(s.employeeSlots, s.managerSlots)

	case StatusChanged:
		s.store, _ = s.store.Patch(e.Record)

	case ValidationFailed:
		s.Notice = &Notice{Level: NoticeError, Message: e.Message}

	case ActionFailed:
		s.Notice = &Notice{Level: NoticeError, Message: e.Message}

	case NoticeShown:
		s.Notice = nil
	}
	return s
}

func appendSlots(slots []slot, added []slot) []slot {
	next := make([]slot, len(slots), len(slots)+len(added))
	copy(next, slots)
	return append(next, added...)
}
