package dashboard

import "github.com/crucial707/fpadmin/internal/models"

type State int

const (
	LoggedOut State = iota
	Loading
	Ready
)

func (s State) String() string {
	switch s {
	case LoggedOut:
		return "logged_out"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// View is an immutable snapshot for rendering.
type View struct {
	State   State
	Rows    []models.LogEntry
	Banner  string
	Mapping models.MappingInput
}

func (v View) LoggedIn() bool { return v.State != LoggedOut }

func (v View) Loading() bool { return v.State == Loading }
