package portal

import (
	"context"

	"github.com/cmlabs-hris/leave-portal/internal/domain/leave"
)

// Service drives the portal state of browser sessions. Every operation that
// talks to the backend returns the committed state alongside any error; on
// error the returned state differs from the previous one only in its notice.
type Service interface {
	// Sessions
	OpenSession(ctx context.Context) (string, error)
	HasSession(sessionID string) bool
	SweepIdleSessions(ctx context.Context) error

	// Snapshot returns the current state and consumes its one-shot notice.
	Snapshot(ctx context.Context, sessionID string) (State, error)
	// Peek returns the current state and leaves the notice in place.
	Peek(ctx context.Context, sessionID string) (State, error)

	SwitchView(ctx context.Context, sessionID string, view View) (State, error)
	EditForm(ctx context.Context, sessionID string, form Form) (State, error)

	ApplyLeave(ctx context.Context, sessionID string, form Form) (State, error)
	FetchMyLeaves(ctx context.Context, sessionID string, employeeID string) (State, error)
	FetchAllLeaves(ctx context.Context, sessionID string, searchID string) (State, error)
	UpdateStatus(ctx context.Context, sessionID string, req leave.UpdateStatusRequest) (State, error)

	// SSE subscription
	Subscribe(ctx context.Context, sessionID string) (<-chan SSEEvent, func())
}
