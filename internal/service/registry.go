package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/mmynk/tablesplit/internal/metrics"
	"github.com/mmynk/tablesplit/internal/split"
)

const (
	// DefaultClosedRetention is how long a fully paid session stays readable,
	// so a repeated confirm or a final receipt fetch still finds it.
	DefaultClosedRetention = 10 * time.Minute

	// DefaultIdleRetention is how long an unfinished session survives without
	// any call touching it.
	DefaultIdleRetention = 4 * time.Hour
)

type entry struct {
	session    *split.Session
	operatorID string
	closedAt   time.Time
	lastSeen   time.Time
}

// registry holds split sessions in memory. Sessions are never persisted.
type registry struct {
	mu              sync.Mutex
	sessions        map[string]*entry
	closedRetention time.Duration
	idleRetention   time.Duration
	now             func() time.Time
}

func newRegistry(closedRetention, idleRetention time.Duration) *registry {
	return &registry{
		sessions:        make(map[string]*entry),
		closedRetention: closedRetention,
		idleRetention:   idleRetention,
		now:             time.Now,
	}
}

func (r *registry) add(e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.lastSeen = r.now()
	r.sessions[e.session.ID()] = e
	metrics.SessionOpened()
}

// get returns the session and counts the lookup as activity.
func (r *registry) get(id string) (*entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("split session %q not found", id)
	}
	e.lastSeen = r.now()
	return e, nil
}

// touch records activity and notes when a session became closed.
func (r *registry) touch(e *entry) {
	closed := e.session.Closed()
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	e.lastSeen = now
	switch {
	case closed && e.closedAt.IsZero():
		e.closedAt = now
	case !closed:
		e.closedAt = time.Time{}
	}
}

func (r *registry) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	metrics.SessionClosed()
	return true
}

// evict drops sessions closed longer than the closed retention and sessions
// nobody has touched for the idle retention. It returns how many of each
// were dropped.
func (r *registry) evict() (closed, idle int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	closedCutoff := now.Add(-r.closedRetention)
	idleCutoff := now.Add(-r.idleRetention)
	for id, e := range r.sessions {
		switch {
		case !e.closedAt.IsZero() && e.closedAt.Before(closedCutoff):
			closed++
		case e.lastSeen.Before(idleCutoff):
			idle++
		default:
			continue
		}
		delete(r.sessions, id)
		metrics.SessionClosed()
	}
	return closed, idle
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
