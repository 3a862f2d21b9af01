package devapi

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	domainauth "github.com/acadify/acadify-web/internal/domain/auth"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeBody(w, r, &in); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	key := strings.ToLower(strings.TrimSpace(in.Email))

	s.mu.RLock()
	var a *account
	if id, found := s.byEmail[key]; found {
		cp := *s.accounts[id]
		a = &cp
	}
	s.mu.RUnlock()

	if a == nil || bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(in.Password)) != nil {
		s.log().Debug("dev api login rejected", "email", key)
		fail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	s.startSession(w, a)
	succeed(w, http.StatusOK, "Login successful", map[string]any{
		"user_id": a.ID,
		"role":    string(a.Role),
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in registration
	if err := decodeBody(w, r, &in); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		fail(w, http.StatusBadRequest, "Name, email and password are required")
		return
	}
	role, known := domainauth.ParseRole(in.Role)
	if in.Role == "" {
		role, known = domainauth.RoleStudent, true
	}
	if !known {
		fail(w, http.StatusBadRequest, "Invalid role")
		return
	}
	a, err := s.createAccount(in.Name, in.Email, in.Password, role)
	if errors.Is(err, errDuplicateEmail) {
		fail(w, http.StatusConflict, "Email already registered")
		return
	}
	if err != nil {
		s.log().Error("dev api register failed", "error", err)
		fail(w, http.StatusInternalServerError, "Registration failed")
		return
	}
	s.startSession(w, a)
	succeed(w, http.StatusCreated, "User registered successfully", map[string]any{
		"user_id": a.ID,
		"role":    string(a.Role),
	})
}

func (s *Server) handleMe(w http.ResponseWriter, _ *http.Request, a *account) {
	succeed(w, http.StatusOK, "", a.view())
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, c.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	succeed(w, http.StatusOK, "Logged out", nil)
}

func (s *Server) handleProfile(w http.ResponseWriter, _ *http.Request, a *account) {
	succeed(w, http.StatusOK, "", a.view())
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request, a *account) {
	var in struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := decodeBody(w, r, &in); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.updateAccount(a.ID, in.Name, in.Email, ""); err != nil {
		s.writeUpdateError(w, err)
		return
	}
	view, _ := s.viewOf(a.ID)
	succeed(w, http.StatusOK, "Profile updated", view)
}

var errNoAccount = errors.New("account not found")

// updateAccount changes the non-empty fields of account id.
func (s *Server) updateAccount(id int64, name, email string, role domainauth.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, found := s.accounts[id]
	if !found {
		return errNoAccount
	}
	if email = strings.ToLower(strings.TrimSpace(email)); email != "" && email != a.Email {
		if _, taken := s.byEmail[email]; taken {
			return errDuplicateEmail
		}
		delete(s.byEmail, a.Email)
		a.Email = email
		s.byEmail[email] = a.ID
	}
	if name = strings.TrimSpace(name); name != "" {
		a.Name = name
	}
	if role != "" {
		a.Role = role
	}
	return nil
}

func (s *Server) writeUpdateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errNoAccount):
		fail(w, http.StatusNotFound, "User not found")
	case errors.Is(err, errDuplicateEmail):
		fail(w, http.StatusConflict, "Email already registered")
	default:
		fail(w, http.StatusInternalServerError, "Update failed")
	}
}
