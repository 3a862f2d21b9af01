package service

import (
	"context"
	"log/slog"
	"sync"

	domainauth "github.com/acadify/acadify-web/internal/domain/auth"
	apperrors "github.com/acadify/acadify-web/internal/errors"
	"github.com/acadify/acadify-web/internal/ports"
)

// AuthStoreOptions groups dependencies for AuthStore.
type AuthStoreOptions struct {
	Client ports.SessionClient
	Logger *slog.Logger
}

// AuthStore is the application's single source of truth for "who is signed in".
// It wraps a SessionClient and exposes immutable AuthState snapshots.
//
// loading is true from construction until the first operation settles, and
// whenever at least one operation is in flight. Each operation applies its
// result (user, error, loading) under one lock. Concurrent operations race;
// the last one to settle wins.
type AuthStore struct {
	client ports.SessionClient
	logger *slog.Logger

	mu       sync.Mutex
	user     *domainauth.UserIdentity
	errMsg   string
	inflight int
	initial  bool

	subsMu  sync.RWMutex
	subs    map[uint64]func(domainauth.AuthState)
	nextSub uint64
}

// NewAuthStore constructs an AuthStore in the initial loading state.
// The caller triggers the first CheckSession.
func NewAuthStore(opts AuthStoreOptions) *AuthStore {
	return &AuthStore{
		client:  opts.Client,
		logger:  opts.Logger,
		initial: true,
		subs:    make(map[uint64]func(domainauth.AuthState)),
	}
}

func (s *AuthStore) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

// State returns the current snapshot.
func (s *AuthStore) State() domainauth.AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// IsAuthenticated reports whether a user is signed in.
func (s *AuthStore) IsAuthenticated() bool {
	return s.State().IsAuthenticated()
}

// User returns a copy of the signed-in identity.
func (s *AuthStore) User() (domainauth.UserIdentity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return domainauth.UserIdentity{}, false
	}
	return *s.user, true
}

func (s *AuthStore) snapshotLocked() domainauth.AuthState {
	return domainauth.AuthState{
		User:    s.user,
		Loading: s.initial || s.inflight > 0,
		Error:   s.errMsg,
	}
}

// Subscribe registers fn to receive every new snapshot and returns a func that
// removes it. Under concurrent operations snapshots may arrive out of order;
// call State for the authoritative value.
func (s *AuthStore) Subscribe(fn func(domainauth.AuthState)) func() {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()
	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

func (s *AuthStore) publish(st domainauth.AuthState) {
	s.subsMu.RLock()
	fns := make([]func(domainauth.AuthState), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.RUnlock()
	for _, fn := range fns {
		fn(st)
	}
}

// operation is one in-flight SessionClient call. It must be settled exactly
// once, by commit or release.
type operation struct {
	store   *AuthStore
	settled bool
}

func (s *AuthStore) begin(clearError bool) *operation {
	s.mu.Lock()
	s.inflight++
	if clearError {
		s.errMsg = ""
	}
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(st)
	return &operation{store: s}
}

// commit applies apply (called with the store locked) and settles the operation.
func (op *operation) commit(apply func()) {
	if op.settled {
		return
	}
	op.settled = true
	s := op.store
	s.mu.Lock()
	if apply != nil {
		apply()
	}
	s.inflight--
	s.initial = false
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(st)
}

// release settles the operation without changing user or error. Deferred right
// after begin, it covers early returns and panics.
func (op *operation) release() { op.commit(nil) }

// CheckSession asks the API whether a session exists and records the answer.
// It never fails: any error (including "signed out") leaves no user and no error.
func (s *AuthStore) CheckSession(ctx context.Context) {
	op := s.begin(false)
	defer op.release()

	user, err := s.client.CheckSession(ctx)
	if err != nil {
		if !apperrors.IsUnauthenticated(err) {
			s.log().WarnContext(ctx, "session check failed", "error", err)
		}
		op.commit(func() {
			s.user = nil
			s.errMsg = ""
		})
		return
	}
	op.commit(func() {
		s.user = &user
		s.errMsg = ""
	})
}

// Login signs in with email and password. On failure the store's error holds
// the user-facing message and the normalized error is returned.
func (s *AuthStore) Login(ctx context.Context, email, password string) (domainauth.UserIdentity, error) {
	op := s.begin(true)
	defer op.release()

	user, err := s.client.Login(ctx, email, password)
	if err != nil {
		ae := apperrors.Normalize(err)
		msg := apperrors.MessageOf(ae, apperrors.MsgLoginFailed)
		op.commit(func() { s.errMsg = msg })
		return domainauth.UserIdentity{}, ae
	}
	op.commit(func() {
		s.user = &user
		s.errMsg = ""
	})
	s.log().InfoContext(ctx, "signed in", "user_id", user.ID, "role", string(user.Role))
	return user, nil
}

// Signup registers a new account and signs it in.
func (s *AuthStore) Signup(ctx context.Context, profile domainauth.SignupProfile) (domainauth.UserIdentity, error) {
	op := s.begin(true)
	defer op.release()

	user, err := s.client.Signup(ctx, profile)
	if err != nil {
		ae := apperrors.Normalize(err)
		msg := apperrors.MessageOf(ae, apperrors.MsgSignupFailed)
		op.commit(func() { s.errMsg = msg })
		return domainauth.UserIdentity{}, ae
	}
	op.commit(func() {
		s.user = &user
		s.errMsg = ""
	})
	s.log().InfoContext(ctx, "signed up", "user_id", user.ID, "role", string(user.Role))
	return user, nil
}

// Logout ends the session. The local user is cleared even when the remote call fails.
func (s *AuthStore) Logout(ctx context.Context) {
	op := s.begin(false)
	defer op.release()

	if err := s.client.Logout(ctx); err != nil {
		s.log().WarnContext(ctx, "remote logout failed; clearing local session", "error", err)
	}
	op.commit(func() {
		s.user = nil
		s.errMsg = ""
	})
}

// Expire drops the signed-in user after the API reported the session invalid.
// It reports whether a user was signed in.
func (s *AuthStore) Expire() bool {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return false
	}
	s.user = nil
	s.errMsg = ""
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(st)
	return true
}
