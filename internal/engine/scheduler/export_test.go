package scheduler

import (
	"maps"

	"go.trai.ch/cplan/internal/core/domain"
)

// GetStepStatusMap returns a copy of the internal step status map.
func (s *Scheduler) GetStepStatusMap() map[domain.InternedString]StepStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.stepStatus)
}
