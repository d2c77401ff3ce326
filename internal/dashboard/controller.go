// Package dashboard holds the admin view state: who is logged in, which log
// rows are on screen, and what happens when the admin saves a mapping or
// deletes an entry. Front ends render View snapshots and forward user actions.
//
// State moves LoggedOut -> Loading -> Ready and back. Every reload carries a
// sequence number; only the most recently dispatched reload may replace the
// rows, so overlapping save/delete actions cannot leave stale data on screen.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/crucial707/fpadmin/internal/apiclient"
	"github.com/crucial707/fpadmin/internal/metrics"
	"github.com/crucial707/fpadmin/internal/models"
	"github.com/crucial707/fpadmin/internal/session"
)

// User-facing messages.
const (
	MsgInvalidCredentials = "Invalid credentials"
	MsgEnterID            = "Enter ID"
	MsgIDNotNumber        = "ID must be a number"
	MsgConfirmDelete      = "Delete this log entry?"
	MsgDeleted            = "Deleted successfully!"
	MsgDeleteFailed       = "Delete failed"
	MsgDeleteError        = "Error deleting log"
	MsgMappingSaved       = "Mapping saved"
	MsgSessionExpired     = "Session expired, please log in again"
	MsgNotLoggedIn        = "Please login first"
)

var (
	// ErrValidation is returned when the mapping form is rejected before any network call.
	ErrValidation = errors.New("validation failed")
	// ErrNotConfirmed is returned when the admin declines a delete.
	ErrNotConfirmed = errors.New("not confirmed")
	// ErrNotLoggedIn is returned by actions that need a session.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrStale is returned by Reload when a newer reload superseded it.
	ErrStale = errors.New("reload superseded")
	// ErrReloadFailed wraps the reload error after a save or delete that did succeed.
	ErrReloadFailed = errors.New("reload failed")
)

// API is the attendance backend as seen by the controller.
type API interface {
	Login(ctx context.Context, username, password string) (string, error)
	ListLogs(ctx context.Context, token string) ([]models.LogEntry, error)
	CreateMapping(ctx context.Context, token string, m models.Mapping) error
	DeleteLog(ctx context.Context, token, recordID string) error
}

type Controller struct {
	api     API
	store   session.Store
	notify  Notifier
	confirm Confirmer
	log     *slog.Logger

	mu      sync.Mutex
	state   State
	token   string
	rows    []models.LogEntry
	banner  string
	mapping models.MappingInput
	// seq is the number of the latest dispatched reload.
	seq uint64
}

// Option configures a Controller.
type Option func(*Controller)

func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notify = n }
}

func WithConfirmer(cf Confirmer) Option {
	return func(c *Controller) { c.confirm = cf }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// New returns a controller in the LoggedOut state. Without a Confirmer every
// delete is declined; without a Notifier notices are only logged.
func New(api API, store session.Store, opts ...Option) *Controller {
	c := &Controller{
		api:     api,
		store:   store,
		notify:  NotifierFunc(func(Notice) {}),
		confirm: ConfirmFunc(func(string) bool { return false }),
		log:     slog.Default(),
		state:   LoggedOut,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resume restores a persisted token without fetching logs. It reports whether
// a session was found.
func (c *Controller) Resume() bool {
	token, ok := c.store.Read()
	if !ok {
		return false
	}
	c.mu.Lock()
	c.token = token
	if c.state == LoggedOut {
		c.state = Ready
	}
	c.mu.Unlock()
	return true
}

// Start restores the persisted session and, when one exists, loads the logs once.
func (c *Controller) Start(ctx context.Context) error {
	if !c.Resume() {
		return nil
	}
	return c.Reload(ctx)
}

// Login authenticates, persists the token and loads the logs.
func (c *Controller) Login(ctx context.Context, creds models.Credentials) error {
	token, err := c.api.Login(ctx, creds.Username, creds.Password)
	if err != nil {
		c.log.Warn("login failed", "username", creds.Username, "err", err)
		c.emit(Error, MsgInvalidCredentials)
		return err
	}
	if err := c.store.Write(token); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	c.mu.Lock()
	c.token = token
	c.state = Ready
	c.banner = ""
	c.mu.Unlock()

	c.log.Info("admin logged in", "username", creds.Username)
	return c.Reload(ctx)
}

// Logout clears the session and discards the rows. In-flight reloads are
// ignored when they complete.
func (c *Controller) Logout() error {
	c.mu.Lock()
	c.resetLocked()
	c.mu.Unlock()
	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	c.log.Info("admin logged out")
	return nil
}

// Reload fetches the logs and replaces the rows, unless a newer reload was
// dispatched meanwhile (ErrStale) or the session ended. Failures keep the
// previous rows and set the banner; an auth rejection logs the admin out.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	if c.token == "" {
		c.mu.Unlock()
		return ErrNotLoggedIn
	}
	c.seq++
	seq, token := c.seq, c.token
	c.state = Loading
	c.mu.Unlock()

	rows, err := c.api.ListLogs(ctx, token)

	c.mu.Lock()
	if seq != c.seq || token != c.token {
		c.mu.Unlock()
		metrics.IncStaleReloads()
		c.log.Debug("discarding superseded reload", "seq", seq)
		return ErrStale
	}
	if err != nil {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			c.resetLocked()
			c.mu.Unlock()
			if clearErr := c.store.Clear(); clearErr != nil {
				c.log.Error("clear rejected session", "err", clearErr)
			}
			c.emit(Error, MsgSessionExpired)
			return err
		}
		c.state = Ready
		c.banner = "Could not load logs: " + err.Error()
		c.mu.Unlock()
		c.log.Error("list logs failed", "err", err)
		return err
	}
	if rows == nil {
		rows = []models.LogEntry{}
	}
	c.rows = rows
	c.banner = ""
	c.state = Ready
	c.mu.Unlock()
	return nil
}

// SaveMapping validates the form, creates the mapping and reloads once.
// The form is cleared only on success.
func (c *Controller) SaveMapping(ctx context.Context, in models.MappingInput) error {
	c.mu.Lock()
	c.mapping = in
	token := c.token
	c.mu.Unlock()
	if token == "" {
		c.emit(Error, MsgNotLoggedIn)
		return ErrNotLoggedIn
	}

	m, err := ParseMapping(in)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			msg := MsgIDNotNumber
			if strings.TrimSpace(in.UserID) == "" {
				msg = MsgEnterID
			}
			c.emit(Error, msg)
		}
		return err
	}

	if err := c.api.CreateMapping(ctx, token, m); err != nil {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			return c.expire(err)
		}
		c.mu.Lock()
		c.banner = "Could not save mapping: " + err.Error()
		c.mu.Unlock()
		c.log.Error("create mapping failed", "user_id", m.UserID, "err", err)
		return err
	}

	c.mu.Lock()
	c.mapping = models.MappingInput{}
	c.mu.Unlock()
	c.log.Info("mapping saved", "user_id", m.UserID, "name", m.Name)
	c.emit(Info, MsgMappingSaved)
	return c.reloadAfterChange(ctx)
}

// Delete removes one entry after the Confirmer agrees, then reloads once.
func (c *Controller) Delete(ctx context.Context, recordID string) error {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token == "" {
		c.emit(Error, MsgNotLoggedIn)
		return ErrNotLoggedIn
	}
	if !c.confirm.Confirm(MsgConfirmDelete) {
		return ErrNotConfirmed
	}

	if err := c.api.DeleteLog(ctx, token, recordID); err != nil {
		var apiErr *apiclient.APIError
		switch {
		case errors.Is(err, apiclient.ErrUnauthorized):
			return c.expire(err)
		case errors.As(err, &apiErr):
			c.emit(Error, MsgDeleteFailed)
		default:
			c.emit(Error, MsgDeleteError)
		}
		c.log.Error("delete log failed", "record_id", recordID, "err", err)
		return err
	}

	c.log.Info("log entry deleted", "record_id", recordID)
	c.emit(Info, MsgDeleted)
	return c.reloadAfterChange(ctx)
}

// reloadAfterChange reloads once after a successful write. A failure is
// wrapped in ErrReloadFailed so callers do not mistake it for the write failing.
func (c *Controller) reloadAfterChange(ctx context.Context) error {
	err := c.Reload(ctx)
	if err == nil || errors.Is(err, ErrStale) || errors.Is(err, ErrNotLoggedIn) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrReloadFailed, err)
}

// View returns a snapshot of the current state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{
		State:   c.state,
		Rows:    append([]models.LogEntry(nil), c.rows...),
		Banner:  c.banner,
		Mapping: c.mapping,
	}
}

// ParseMapping turns the form into a Mapping. The ID must be a non-empty integer.
func ParseMapping(in models.MappingInput) (models.Mapping, error) {
	raw := strings.TrimSpace(in.UserID)
	if raw == "" {
		return models.Mapping{}, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return models.Mapping{}, fmt.Errorf("%w: user id %q is not a number", ErrValidation, raw)
	}
	return models.Mapping{UserID: id, Name: strings.TrimSpace(in.Name)}, nil
}

// expire handles an auth rejection on a mutating call.
func (c *Controller) expire(cause error) error {
	c.mu.Lock()
	c.resetLocked()
	c.mu.Unlock()
	if err := c.store.Clear(); err != nil {
		c.log.Error("clear rejected session", "err", err)
	}
	c.emit(Error, MsgSessionExpired)
	return cause
}

func (c *Controller) resetLocked() {
	c.state = LoggedOut
	c.token = ""
	c.rows = nil
	c.banner = ""
	c.mapping = models.MappingInput{}
	c.seq++
}

func (c *Controller) emit(kind NoticeKind, msg string) {
	c.notify.Notify(Notice{Kind: kind, Message: msg})
}
