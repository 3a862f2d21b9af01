package devapi

// Package devapi provides an in-memory academic API for local development and
// end-to-end tests. It speaks the same routes and `{success, message, data}`
// envelope as the real service.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	domainauth "github.com/acadify/acadify-web/internal/domain/auth"
)

// SessionCookie is the cookie that carries the dev API session id.
const SessionCookie = "ACADIFY_SESSION"

// SeedUser is an account created at startup.
type SeedUser struct {
	Name     string
	Email    string
	Password string
	Role     domainauth.Role
}

// DefaultSeed returns one account per role.
func DefaultSeed() []SeedUser {
	return []SeedUser{
		{Name: "Sam Student", Email: "student@acadify.dev", Password: "student123", Role: domainauth.RoleStudent},
		{Name: "Tara Teacher", Email: "teacher@acadify.dev", Password: "teacher123", Role: domainauth.RoleTeacher},
		{Name: "Ada Admin", Email: "admin@acadify.dev", Password: "admin123", Role: domainauth.RoleAdmin},
	}
}

// Options controls the dev API.
type Options struct {
	Seed   []SeedUser
	Logger *slog.Logger
	// BcryptCost defaults to bcrypt.DefaultCost; tests use bcrypt.MinCost.
	BcryptCost int
}

type account struct {
	ID           int64
	Name         string
	Email        string
	Role         domainauth.Role
	PasswordHash []byte
	CreatedAt    time.Time
}

func (a *account) view() map[string]any {
	return map[string]any{
		"id":        a.ID,
		"name":      a.Name,
		"email":     a.Email,
		"role":      string(a.Role),
		"createdAt": a.CreatedAt.Format(time.RFC3339),
	}
}

// Server is the in-memory academic API.
type Server struct {
	mu       sync.RWMutex
	accounts map[int64]*account
	byEmail  map[string]int64
	sessions map[string]int64
	grades   []grade
	classes  []class
	nextID   int64

	cost   int
	logger *slog.Logger
}

var errDuplicateEmail = errors.New("email already registered")

// New creates a Server with the given seed accounts.
func New(opts Options) (*Server, error) {
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	s := &Server{
		accounts: make(map[int64]*account),
		byEmail:  make(map[string]int64),
		sessions: make(map[string]int64),
		cost:     cost,
		logger:   opts.Logger,
	}
	seed := opts.Seed
	if seed == nil {
		seed = DefaultSeed()
	}
	for _, u := range seed {
		if _, err := s.createAccount(u.Name, u.Email, u.Password, u.Role); err != nil {
			return nil, err
		}
	}
	s.seedAcademics()
	return s, nil
}

func (s *Server) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

func (s *Server) createAccount(name, email, password string, role domainauth.Role) (*account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}
	key := strings.ToLower(strings.TrimSpace(email))

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[key]; exists {
		return nil, errDuplicateEmail
	}
	s.nextID++
	a := &account{
		ID:           s.nextID,
		Name:         strings.TrimSpace(name),
		Email:        key,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	s.accounts[a.ID] = a
	s.byEmail[key] = a.ID
	return a, nil
}

// ExpireSessions drops every active session, as if they all timed out.
func (s *Server) ExpireSessions() {
	s.mu.Lock()
	s.sessions = make(map[string]int64)
	s.mu.Unlock()
}

// Handler returns the API routes. Mount it under the API base path.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("GET /auth/me", s.requireSession(s.handleMe))
	mux.HandleFunc("POST /auth/logout", s.handleLogout)

	mux.HandleFunc("GET /profile", s.requireSession(s.handleProfile))
	mux.HandleFunc("PUT /profile", s.requireSession(s.handleUpdateProfile))

	mux.HandleFunc("GET /student/dashboard", s.requireRole(domainauth.RoleStudent, s.handleStudentDashboard))
	mux.HandleFunc("GET /student/marks", s.requireRole(domainauth.RoleStudent, s.handleStudentMarks))
	mux.HandleFunc("GET /student/attendance", s.requireRole(domainauth.RoleStudent, s.handleStudentAttendance))
	mux.HandleFunc("GET /student/analytics/performance", s.requireRole(domainauth.RoleStudent, s.handleStudentPerformance))

	mux.HandleFunc("GET /teacher/dashboard", s.requireRole(domainauth.RoleTeacher, s.handleTeacherDashboard))
	mux.HandleFunc("GET /teacher/classes", s.requireRole(domainauth.RoleTeacher, s.handleTeacherClasses))
	mux.HandleFunc("GET /teacher/analytics/class/{id}", s.requireRole(domainauth.RoleTeacher, s.handleClassPerformance))
	mux.HandleFunc("POST /teacher/grades/submit", s.requireRole(domainauth.RoleTeacher, s.handleSubmitGrade))

	mux.HandleFunc("GET /admin/dashboard", s.requireRole(domainauth.RoleAdmin, s.handleAdminDashboard))
	mux.HandleFunc("GET /admin/users", s.requireRole(domainauth.RoleAdmin, s.handleListUsers))
	mux.HandleFunc("GET /admin/analytics/system", s.requireRole(domainauth.RoleAdmin, s.handleSystemAnalytics))
	mux.HandleFunc("POST /admin/users/create", s.requireRole(domainauth.RoleAdmin, s.handleCreateUser))
	mux.HandleFunc("PUT /admin/users/{id}", s.requireRole(domainauth.RoleAdmin, s.handleUpdateUser))
	mux.HandleFunc("DELETE /admin/users/{id}", s.requireRole(domainauth.RoleAdmin, s.handleDeleteUser))

	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		fail(w, http.StatusNotFound, "Not found")
	})
	return mux
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, a *account)

func (s *Server) currentAccount(r *http.Request) (*account, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.sessions[c.Value]
	if !ok {
		return nil, false
	}
	a, ok := s.accounts[id]
	if !ok {
		return nil, false
	}
	cp := *a
	return &cp, true
}

// viewOf renders the current state of account id.
func (s *Server) viewOf(id int64) (map[string]any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, found := s.accounts[id]
	if !found {
		return nil, false
	}
	return a.view(), true
}

func (s *Server) requireSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, ok := s.currentAccount(r)
		if !ok {
			fail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next(w, r, a)
	}
}

func (s *Server) requireRole(role domainauth.Role, next sessionHandler) http.HandlerFunc {
	return s.requireSession(func(w http.ResponseWriter, r *http.Request, a *account) {
		if a.Role != role {
			fail(w, http.StatusForbidden, "Access denied")
			return
		}
		next(w, r, a)
	})
}

func (s *Server) startSession(w http.ResponseWriter, a *account) {
	sid := uuid.NewString()
	s.mu.Lock()
	s.sessions[sid] = a.ID
	s.mu.Unlock()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) activeSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// envelope helpers

func succeed(w http.ResponseWriter, status int, message string, data any) {
	writeEnvelope(w, status, map[string]any{"success": true, "message": message, "data": data})
}

func fail(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, map[string]any{"success": false, "message": message})
}

func writeEnvelope(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	return dec.Decode(v)
}
