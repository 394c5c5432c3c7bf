package portal

import "github.com/cmlabs-hris/leave-portal/internal/domain/leave"

// slot identifies one received record. The backend id is not used as the key
// because a response may repeat an id or leave it out.
type slot uint64

// Store holds every record the views show, keyed by slot. Views hold ordered
// slot lists into it.
//
// A Store is a value: every mutating method returns a new Store and never
// writes to the receiver's map.
type Store struct {
	records map[slot]leave.LeaveRequest
	next    slot
}

func (s Store) Len() int {
	return len(s.records)
}

// Add returns a copy of s holding records under fresh slots, and those slots
// in the order given.
func (s Store) Add(records ...leave.LeaveRequest) (Store, []slot) {
	next := s.clone()
	slots := make([]slot, 0, len(records))
	for _, r := range records {
		next.next++
		next.records[next.next] = r
		slots = append(slots, next.next)
	}
	return next, slots
}

// Patch returns a copy of s with every record carrying r's id replaced by r.
// It reports whether any record matched; an empty id never matches.
func (s Store) Patch(r leave.LeaveRequest) (Store, bool) {
	if r.ID == "" {
		return s, false
	}
	found := false
	for _, existing := range s.records {
		if existing.ID == r.ID {
			found = true
			break
		}
	}
	if !found {
		return s, false
	}

	next := s.clone()
	for k, existing := range next.records {
		if existing.ID == r.ID {
			next.records[k] = r
		}
	}
	return next, true
}

// Retain returns a copy of s holding only records referenced by one of the views.
func (s Store) Retain(views ...[]slot) Store {
	next := Store{records: make(map[slot]leave.LeaveRequest), next: s.next}
	for _, slots := range views {
		for _, k := range slots {
			if r, ok := s.records[k]; ok {
				next.records[k] = r
			}
		}
	}
	return next
}

// Project resolves slots in order.
func (s Store) Project(slots []slot) []leave.LeaveRequest {
	out := make([]leave.LeaveRequest, 0, len(slots))
	for _, k := range slots {
		if r, ok := s.records[k]; ok {
			out = append(out, r)
		}
	}
	return out
}

func (s Store) clone() Store {
	next := Store{records: make(map[slot]leave.LeaveRequest, len(s.records)+1), next: s.next}
	for k, r := range s.records {
		next.records[k] = r
	}
	return next
}
