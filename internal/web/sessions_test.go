package web

import (
	"fmt"
	"testing"
	"time"

	"github.com/crucial707/fpadmin/internal/dashboard"
	"github.com/crucial707/fpadmin/internal/session"
)

func newTestRegistry() *registry {
	return newRegistry(func(store session.Store, n dashboard.Notifier) *dashboard.Controller {
		return dashboard.New(nil, store, dashboard.WithNotifier(n))
	})
}

func TestRegistry_GetCreatesOnce(t *testing.T) {
	g := newTestRegistry()

	e1, created := g.get("tok")
	if !created {
		t.Fatal("first get should create")
	}
	if !e1.ctrl.View().LoggedIn() {
		t.Error("entry for a token should be logged in")
	}
	e2, created := g.get("tok")
	if created || e1 != e2 {
		t.Error("second get should return the same entry")
	}
}

func TestRegistry_FreshIsNotRegistered(t *testing.T) {
	g := newTestRegistry()

	e := g.fresh("")
	if e.ctrl.View().LoggedIn() {
		t.Error("fresh entry without token should be logged out")
	}
	if g.len() != 0 {
		t.Errorf("len: got %d, want 0", g.len())
	}
}

func TestRegistry_EvictsOldestWhenFull(t *testing.T) {
	g := newTestRegistry()
	base := time.Now()
	for i := 0; i < maxSessions; i++ {
		e := g.fresh("")
		e.used = base.Add(time.Duration(i) * time.Second)
		g.put(fmt.Sprintf("tok-%d", i), e)
	}
	oldest := "tok-0"
	if _, ok := g.lookup(oldest); !ok {
		t.Fatalf("expected %q before eviction", oldest)
	}

	g.put("new", g.fresh(""))
	if g.len() != maxSessions {
		t.Errorf("len: got %d, want %d", g.len(), maxSessions)
	}
	if _, ok := g.lookup(oldest); ok {
		t.Error("oldest entry should have been evicted")
	}
}

func TestRegistry_Sweep(t *testing.T) {
	g := newTestRegistry()
	old, _ := g.get("old")
	old.used = time.Now().Add(-48 * time.Hour)
	g.get("recent")

	if n := g.sweep(time.Now().Add(-24 * time.Hour)); n != 1 {
		t.Errorf("swept: got %d, want 1", n)
	}
	if _, ok := g.lookup("old"); ok {
		t.Error("old entry should be gone")
	}
	if _, ok := g.lookup("recent"); !ok {
		t.Error("recent entry should remain")
	}
}
