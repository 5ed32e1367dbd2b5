package measure

import (
	"sync"
	"time"
)

type DefaultMetric struct {
	mu      sync.Mutex
	elapsed time.Duration
	failed  bool
}

func (mt *DefaultMetric) AddDuration(elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.elapsed += elapsed
}

func (mt *DefaultMetric) Duration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return round(mt.elapsed)
}

func (mt *DefaultMetric) SetFailed(failed bool) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.failed = failed
}

func (mt *DefaultMetric) Failed() bool {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.failed
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Hour:
		d = d.Round(time.Minute)
	case d > time.Second:
		d = d.Round(time.Millisecond)
	case d > time.Millisecond:
		d = d.Round(time.Microsecond)
	}

	return d
}
