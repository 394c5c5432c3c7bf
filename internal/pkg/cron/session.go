package cron

import (
	"context"
	"time"
)

// SessionSweeper is the part of the portal service the sweep job needs.
type SessionSweeper interface {
	SweepIdleSessions(ctx context.Context) error
}

// RegisterSessionJobs schedules eviction of idle portal sessions.
func RegisterSessionJobs(s *Scheduler, sweeper SessionSweeper, interval time.Duration) {
	s.AddJob("portal_session_sweep", interval, sweeper.SweepIdleSessions)
}
