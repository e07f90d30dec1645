package monitor

import "time"

type Status struct {
	Services  map[string]bool `json:"services"`
	LastCheck time.Time       `json:"last_check"`
}

// Online reports whether every probed service answered.
func (s Status) Online() bool {
	for _, ok := range s.Services {
		if !ok {
			return false
		}
	}
	return true
}
