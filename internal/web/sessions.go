package web

import (
	"sync"
	"time"

	"github.com/crucial707/fpadmin/internal/dashboard"
	"github.com/crucial707/fpadmin/internal/session"
)

// maxSessions bounds the number of dashboards kept in memory.
const maxSessions = 1000

// sessionEntry is one admin's dashboard. The cookie carries the token; the
// controller keeps rows, banner and form between requests.
type sessionEntry struct {
	ctrl    *dashboard.Controller
	store   *session.MemoryStore
	notices *dashboard.Notices
	used    time.Time
}

type registry struct {
	mu      sync.Mutex
	entries map[string]*sessionEntry
	newCtrl func(session.Store, dashboard.Notifier) *dashboard.Controller
}

func newRegistry(newCtrl func(session.Store, dashboard.Notifier) *dashboard.Controller) *registry {
	return &registry{
		entries: make(map[string]*sessionEntry),
		newCtrl: newCtrl,
	}
}

// fresh builds an entry for token ("" for a login attempt) without registering it.
func (g *registry) fresh(token string) *sessionEntry {
	store := session.NewMemoryStore(token)
	notices := &dashboard.Notices{}
	e := &sessionEntry{
		ctrl:    g.newCtrl(store, notices),
		store:   store,
		notices: notices,
		used:    time.Now(),
	}
	e.ctrl.Resume()
	return e
}

// get returns the entry for token, creating it when the process has not seen
// the token yet. created reports whether the entry is new.
func (g *registry) get(token string) (e *sessionEntry, created bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if e, ok := g.entries[token]; ok {
		e.used = time.Now()
		return e, false
	}
	e = g.fresh(token)
	g.putLocked(token, e)
	return e, true
}

func (g *registry) lookup(token string) (*sessionEntry, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.entries[token]
	return e, ok
}

func (g *registry) put(token string, e *sessionEntry) {
	g.mu.Lock()
	g.putLocked(token, e)
	g.mu.Unlock()
}

func (g *registry) putLocked(token string, e *sessionEntry) {
	if _, ok := g.entries[token]; !ok && len(g.entries) >= maxSessions {
		g.evictOldestLocked()
	}
	g.entries[token] = e
}

func (g *registry) remove(token string) {
	g.mu.Lock()
	delete(g.entries, token)
	g.mu.Unlock()
}

func (g *registry) len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}

func (g *registry) evictOldestLocked() {
	var (
		oldest string
		at     time.Time
	)
	for tok, e := range g.entries {
		if oldest == "" || e.used.Before(at) {
			oldest, at = tok, e.used
		}
	}
	delete(g.entries, oldest)
}

// sweep drops entries not used since cutoff and returns how many it removed.
func (g *registry) sweep(cutoff time.Time) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for tok, e := range g.entries {
		if e.used.Before(cutoff) {
			delete(g.entries, tok)
			n++
		}
	}
	return n
}
