// Package mockapi is an in-memory stand-in for the attendance API. It serves
// the same four endpoints, issues HS256 bearer tokens and records every call
// so tests can assert on traffic.
package mockapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/crucial707/fpadmin/internal/middleware"
	"github.com/crucial707/fpadmin/internal/models"
)

// Operation names used by Calls, FailNext and Requests.
const (
	OpLogin         = "login"
	OpListLogs      = "list_logs"
	OpCreateMapping = "create_mapping"
	OpDeleteLog     = "delete_log"
)

const tokenTTL = 24 * time.Hour

type Options struct {
	AdminUser     string
	AdminPassword string
	// Secret signs bearer tokens. Defaults to a fixed development value.
	Secret string
	// Logs seeds the store. Entries without a RecordID get a uuid.
	Logs   []models.LogEntry
	Logger *slog.Logger
}

// Request is one call received by the backend.
type Request struct {
	Op   string
	Body []byte
}

type Backend struct {
	adminUser    string
	passwordHash []byte
	secret       []byte
	log          *slog.Logger

	mu        sync.Mutex
	logs      []models.LogEntry
	mappings  map[int]string
	requests  []Request
	failNext  map[string]int
	loginBody *string
}

func New(opts Options) (*Backend, error) {
	if opts.AdminUser == "" || opts.AdminPassword == "" {
		return nil, errors.New("mockapi: admin user and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("mockapi: hash password: %w", err)
	}
	secret := opts.Secret
	if secret == "" {
		secret = "mock-secret"
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	b := &Backend{
		adminUser:    opts.AdminUser,
		passwordHash: hash,
		secret:       []byte(secret),
		log:          log,
		mappings:     make(map[int]string),
		failNext:     make(map[string]int),
	}
	for _, e := range opts.Logs {
		if e.RecordID == "" {
			e.RecordID = uuid.NewString()
		}
		b.logs = append(b.logs, e)
	}
	return b, nil
}

// Handler returns the API router.
func (b *Backend) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer(b.log))
	r.Use(middleware.RequestLog(b.log))
	r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Post("/api/login", b.login)

	r.Group(func(r chi.Router) {
		r.Use(b.requireBearer)
		r.Get("/api/logs", b.listLogs)
		r.Post("/api/map", b.createMapping)
		r.Delete("/api/logs/{id}", b.deleteLog)
	})
	return r
}

// IssueToken signs a token for the admin user, as a successful login would.
func (b *Backend) IssueToken() (string, error) {
	claims := jwt.MapClaims{
		"sub": b.adminUser,
		"exp": time.Now().Add(tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
}

// FailNext makes the next call to op answer with status.
func (b *Backend) FailNext(op string, status int) {
	b.mu.Lock()
	b.failNext[op] = status
	b.mu.Unlock()
}

// SetLoginBody replaces the login response body, whatever the credentials.
func (b *Backend) SetLoginBody(body string) {
	b.mu.Lock()
	b.loginBody = &body
	b.mu.Unlock()
}

// Calls returns how many times op was received.
func (b *Backend) Calls(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, req := range b.requests {
		if req.Op == op {
			n++
		}
	}
	return n
}

// Requests returns every call in arrival order.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// Logs returns the stored entries with mapped names applied.
func (b *Backend) Logs() []models.LogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

func (b *Backend) Mappings() map[int]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[int]string, len(b.mappings))
	for k, v := range b.mappings {
		out[k] = v
	}
	return out
}

func (b *Backend) snapshotLocked() []models.LogEntry {
	out := make([]models.LogEntry, len(b.logs))
	for i, e := range b.logs {
		e.Index = i + 1
		if name, ok := b.mappings[e.UserID]; ok {
			e.Name = name
		}
		out[i] = e
	}
	return out
}

// begin records the call and reports an injected failure status, if any.
func (b *Backend) begin(op string, body []byte) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, Request{Op: op, Body: body})
	status, ok := b.failNext[op]
	if ok {
		delete(b.failNext, op)
	}
	return status
}

func (b *Backend) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			jsonError(w, "missing authorization header", http.StatusUnauthorized)
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
			return b.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			jsonError(w, "invalid token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var input models.Credentials
	decodeErr := json.NewDecoder(r.Body).Decode(&input)
	raw, _ := json.Marshal(input)
	if status := b.begin(OpLogin, raw); status != 0 {
		jsonError(w, "injected failure", status)
		return
	}

	b.mu.Lock()
	override := b.loginBody
	b.mu.Unlock()
	if override != nil {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(*override))
		return
	}

	if decodeErr != nil {
		jsonError(w, "invalid json", http.StatusBadRequest)
		return
	}
	if input.Username != b.adminUser ||
		bcrypt.CompareHashAndPassword(b.passwordHash, []byte(input.Password)) != nil {
		jsonError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	signed, err := b.IssueToken()
	if err != nil {
		jsonError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": signed})
}

func (b *Backend) listLogs(w http.ResponseWriter, r *http.Request) {
	if status := b.begin(OpListLogs, nil); status != 0 {
		jsonError(w, "injected failure", status)
		return
	}
	writeJSON(w, http.StatusOK, b.Logs())
}

func (b *Backend) createMapping(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	decodeErr := json.NewDecoder(r.Body).Decode(&raw)
	if status := b.begin(OpCreateMapping, raw); status != 0 {
		jsonError(w, "injected failure", status)
		return
	}
	if decodeErr != nil {
		jsonError(w, "invalid json", http.StatusBadRequest)
		return
	}

	var m models.Mapping
	if err := json.Unmarshal(raw, &m); err != nil {
		jsonError(w, "userId must be a number", http.StatusBadRequest)
		return
	}
	if m.UserID <= 0 {
		jsonError(w, "userId is required", http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	b.mappings[m.UserID] = m.Name
	b.mu.Unlock()
	b.log.Info("mapping saved", "user_id", m.UserID, "name", m.Name)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Mapping saved"})
}

func (b *Backend) deleteLog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if status := b.begin(OpDeleteLog, []byte(id)); status != 0 {
		jsonError(w, "injected failure", status)
		return
	}

	b.mu.Lock()
	idx := -1
	for i, e := range b.logs {
		if e.RecordID == id {
			idx = i
			break
		}
	}
	if idx >= 0 {
		b.logs = append(b.logs[:idx], b.logs[idx+1:]...)
	}
	b.mu.Unlock()

	if idx < 0 {
		jsonError(w, "log entry not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Deleted"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}
