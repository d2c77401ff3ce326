package dashboard

import "sync"

type NoticeKind string

const (
	Info  NoticeKind = "info"
	Error NoticeKind = "error"
)

// Notice is an alert-style message for the admin.
type Notice struct {
	Kind    NoticeKind
	Message string
}

type Notifier interface {
	Notify(n Notice)
}

type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// Confirmer asks the admin a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Always answers yes; for callers that already obtained consent.
var Always = ConfirmFunc(func(string) bool { return true })

// Notices collects notices in order. Safe for concurrent use.
type Notices struct {
	mu   sync.Mutex
	list []Notice
}

func (n *Notices) Notify(notice Notice) {
	n.mu.Lock()
	n.list = append(n.list, notice)
	n.mu.Unlock()
}

// All returns the collected notices.
func (n *Notices) All() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notice(nil), n.list...)
}

// Drain returns the collected notices and forgets them.
func (n *Notices) Drain() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.list
	n.list = nil
	return out
}
