/**
 * @description
 * Manager for all background jobs.
 * Owns the set of runners, starts and stops them uniformly, and reports
 * liveness for the status surface. An explicit value wired at startup; there
 * is no ambient singleton.
 *
 * @dependencies
 * - backend/internal/logger
 */

package jobs

import "github.com/goldpulse/backend/internal/logger"

// JobStatus is the externally visible state of one job
type JobStatus struct {
	Name            string `json:"name"`
	Running         bool   `json:"running"`
	IntervalSeconds int    `json:"interval_seconds"`
}

// Manager holds all background job runners
type Manager struct {
	runners []*Runner
}

func NewManager(jobs ...Job) *Manager {
	m := &Manager{}
	for _, job := range jobs {
		m.runners = append(m.runners, NewRunner(job))
	}
	logger.Info("Initialized %d background jobs", len(m.runners))
	return m
}

// StartAll starts every job
func (m *Manager) StartAll() {
	logger.Info("Starting all background jobs...")
	for _, r := range m.runners {
		r.Start()
	}
	logger.Info("All background jobs started")
}

// StopAll stops every job in reverse start order, joining each loop before
// returning
func (m *Manager) StopAll() {
	logger.Info("Stopping all background jobs...")
	for i := len(m.runners) - 1; i >= 0; i-- {
		m.runners[i].Stop()
	}
	logger.Info("All background jobs stopped")
}

// Status reports name, liveness and configured interval per job.
// Read-only, safe to poll.
func (m *Manager) Status() []JobStatus {
	statuses := make([]JobStatus, 0, len(m.runners))
	for _, r := range m.runners {
		statuses = append(statuses, JobStatus{
			Name:            r.job.Name(),
			Running:         r.Running(),
			IntervalSeconds: int(r.job.Interval().Seconds()),
		})
	}
	return statuses
}
