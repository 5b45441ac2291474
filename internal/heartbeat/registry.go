package heartbeat

import (
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	StateStarting = "starting"
	StateHealthy  = "healthy"
	StateDegraded = "degraded"
	StateStopped  = "stopped"
	StateStale    = "stale"
)

// Reporter is the write side used by the server loop and the fallback action.
type Reporter interface {
	Starting(component, message string)
	Beat(component, message string)
	Degrade(component, message string, err error)
	Stopped(component, message string)
}

type ComponentStatus struct {
	Name           string `json:"name"`
	State          string `json:"state"`
	Message        string `json:"message,omitempty"`
	Error          string `json:"error,omitempty"`
	Failures       int    `json:"failures,omitempty"`
	LastBeatAtUnix int64  `json:"last_beat_at_unix,omitempty"`
	UpdatedAtUnix  int64  `json:"updated_at_unix"`
}

type Snapshot struct {
	GeneratedAtUnix int64             `json:"generated_at_unix"`
	Overall         string            `json:"overall"`
	Components      []ComponentStatus `json:"components"`
}

type componentRecord struct {
	state      string
	message    string
	lastError  string
	failures   int
	lastBeatAt time.Time
	updatedAt  time.Time
}

type Registry struct {
	mu         sync.RWMutex
	components map[string]componentRecord
	now        func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		components: map[string]componentRecord{},
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (r *Registry) Starting(component, message string) {
	r.update(component, func(record *componentRecord, now time.Time) {
		record.state = StateStarting
		record.message = strings.TrimSpace(message)
		record.lastError = ""
	})
}

func (r *Registry) Beat(component, message string) {
	r.update(component, func(record *componentRecord, now time.Time) {
		record.state = StateHealthy
		record.message = strings.TrimSpace(message)
		record.lastError = ""
		record.failures = 0
		record.lastBeatAt = now
	})
}

// Degrade counts consecutive failures until the next Beat.
func (r *Registry) Degrade(component, message string, err error) {
	r.update(component, func(record *componentRecord, now time.Time) {
		record.state = StateDegraded
		record.message = strings.TrimSpace(message)
		record.lastError = ""
		if err != nil {
			record.lastError = strings.TrimSpace(err.Error())
		}
		record.failures++
	})
}

func (r *Registry) Stopped(component, message string) {
	r.update(component, func(record *componentRecord, now time.Time) {
		record.state = StateStopped
		record.message = strings.TrimSpace(message)
	})
}

func (r *Registry) update(component string, apply func(*componentRecord, time.Time)) {
	name := strings.ToLower(strings.TrimSpace(component))
	if r == nil || name == "" {
		return
	}
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	record := r.components[name]
	apply(&record, now)
	record.updatedAt = now
	if record.lastBeatAt.IsZero() {
		record.lastBeatAt = now
	}
	r.components[name] = record
}

// Snapshot marks healthy or starting components stale once their last beat is older than staleAfter.
func (r *Registry) Snapshot(staleAfter time.Duration) Snapshot {
	now := r.now()
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]ComponentStatus, 0, len(r.components))
	for name, record := range r.components {
		status := ComponentStatus{
			Name:           name,
			State:          record.state,
			Message:        record.message,
			Error:          record.lastError,
			Failures:       record.failures,
			LastBeatAtUnix: record.lastBeatAt.Unix(),
			UpdatedAtUnix:  record.updatedAt.Unix(),
		}
		if staleAfter > 0 && (record.state == StateHealthy || record.state == StateStarting) && now.Sub(record.lastBeatAt) > staleAfter {
			status.State = StateStale
		}
		results = append(results, status)
	}
	sort.Slice(results, func(left, right int) bool {
		return results[left].Name < results[right].Name
	})

	return Snapshot{
		GeneratedAtUnix: now.Unix(),
		Overall:         computeOverall(results),
		Components:      results,
	}
}

func computeOverall(items []ComponentStatus) string {
	if len(items) == 0 {
		return "unknown"
	}
	overall := "idle"
	for _, item := range items {
		switch item.State {
		case StateDegraded:
			return StateDegraded
		case StateStarting:
			overall = StateStarting
		case StateHealthy, StateStale:
			if overall != StateStarting {
				overall = StateHealthy
			}
		}
	}
	return overall
}
