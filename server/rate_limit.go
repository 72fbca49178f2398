package server

import (
	"sync"
	"time"
)

const defaultRequestsPerSecond = 20

type requestRateLimit struct {
	sync.Mutex
	perSecond   float64
	lastRequest map[string]time.Time
}

func (rlimit *requestRateLimit) CheckAndUpdate(id string) bool {
	rlimit.Lock()
	defer rlimit.Unlock()

	if rlimit.perSecond == 0 {
		rlimit.perSecond = defaultRequestsPerSecond
	}
	if rlimit.lastRequest == nil {
		rlimit.lastRequest = make(map[string]time.Time)
	}

	minInterval := time.Duration(float64(time.Second) * 1 / rlimit.perSecond)

	if t, ok := rlimit.lastRequest[id]; ok {
		if time.Since(t) < minInterval {
			return false
		}
	}

	rlimit.lastRequest[id] = time.Now()
	return true
}
