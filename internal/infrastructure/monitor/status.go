package monitor

import (
	"maps"
	"time"
)

type Status struct {
	Services  map[string]bool `json:"services"`
	LastCheck time.Time       `json:"last_check"`
}

func (s Status) clone() Status {
	s.Services = maps.Clone(s.Services)
	return s
}
