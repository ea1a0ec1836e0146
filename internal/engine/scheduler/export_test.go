package scheduler

import "maps"

// GetEnvStatusMap returns a copy of the internal environment status map.
// This is exported for testing purposes only.
func (s *Scheduler) GetEnvStatusMap() map[string]EnvStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.envState)
}
