package services

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/lborres/careerguide/core"
	"github.com/lborres/careerguide/pkg/crypto"
)

type SessionControllerConfig struct {
	API    core.AuthAPI
	Store  *SessionStore
	Logger *slog.Logger
	// Clock defaults to time.Now
	Clock func() time.Time
}

// SessionController is the single authority for the authentication
// lifecycle. Public methods never return errors; every outcome is a
// core.Result.
//
// Session writes are persisted before in-memory state changes, so an
// observer that sees IsAuthenticated can rely on the store holding the
// same token. Each store write and the publish it pairs with run under
// writeMu, so mutations never interleave.
type SessionController struct {
	api    core.AuthAPI
	store  *SessionStore
	logger *slog.Logger
	clock  func() time.Time
	probes singleflight.Group

	writeMu sync.Mutex

	mu      sync.RWMutex
	state   core.Session
	subs    map[int]func(core.Session)
	nextSub int
}

func NewSessionController(c SessionControllerConfig) *SessionController {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}

	return &SessionController{
		api:    c.API,
		store:  c.Store,
		logger: c.Logger,
		clock:  c.Clock,
		subs:   make(map[int]func(core.Session)),
	}
}

// Init restores a persisted session. A session is restored only when both
// the token and the user are present. Unreadable persisted state is
// discarded with a logout.
func (sc *SessionController) Init(ctx context.Context) core.Result {
	sc.setLoading(true)
	defer sc.setLoading(false)

	m := sc.begin()
	defer m.end()

	persisted, err := sc.store.Load(ctx)
	if err != nil {
		sc.logger.Warn("stored session unreadable, logging out", "error", err)
		sc.clearSession(ctx, m)
		return core.Fail("Stored session could not be read")
	}

	if persisted.Token == "" || persisted.User == nil {
		return core.OK("No stored session")
	}

	role := persisted.Role
	if !role.Valid() {
		role = roleOf(persisted.User)
	}

	m.publish(func(s *core.Session) {
		s.Token = persisted.Token
		s.User = persisted.User
		s.Role = role
	})
	sc.logger.Info("session restored", "role", role, "token", crypto.Fingerprint(persisted.Token))
	return core.OK("Session restored")
}

// Login authenticates against the API and persists the session. A failed
// login leaves both the store and the in-memory session as they were.
func (sc *SessionController) Login(ctx context.Context, email, password, loginAs string) core.Result {
	// Step 1: Validate input before any I/O
	if strings.TrimSpace(email) == "" || password == "" {
		return core.Fail("Email and password are required")
	}
	as, err := core.NormalizeLoginAs(loginAs)
	if err != nil {
		return core.Fail(err.Error())
	}

	sc.setLoading(true)
	defer sc.setLoading(false)

	// Step 2: Authenticate
	resp, err := sc.api.Login(ctx, core.LoginRequest{
		Email:    strings.TrimSpace(email),
		Password: password,
		LoginAs:  as,
	})
	if err != nil {
		sc.logger.Warn("login request failed", "error", err)
		return core.Fail(err.Error())
	}
	if !resp.Success {
		return core.Fail(messageOr(resp.Message, "Login failed"))
	}
	if resp.Token == "" {
		return core.Fail(core.ErrMissingToken.Error())
	}
	user := resp.Profile()
	if user == nil {
		return core.Fail(core.ErrMissingProfile.Error())
	}

	role := core.ParseRole(resp.Role)
	if !role.Valid() {
		role = core.ParseRole(as)
	}

	m := sc.begin()
	defer m.end()

	// Step 3: Persist all three values or none
	if err := sc.store.Persist(ctx, resp.Token, user, role); err != nil {
		sc.logger.Error("login persist failed", "error", err)
		return core.Fail(core.ErrPersistFailed.Error())
	}

	// Step 4: Publish the new session
	m.publish(func(s *core.Session) {
		s.Token = resp.Token
		s.User = user.Clone()
		s.Role = role
	})
	sc.logger.Info("logged in", "role", role, "token", crypto.Fingerprint(resp.Token))
	return core.OK(messageOr(resp.Message, "Login successful"))
}

// Register creates an account. It never logs in.
func (sc *SessionController) Register(ctx context.Context, input core.RegistrationInput) core.Result {
	if err := input.Validate(); err != nil {
		return core.Fail(err.Error())
	}

	sc.setLoading(true)
	defer sc.setLoading(false)

	resp, err := sc.api.Register(ctx, input.Payload())
	if err != nil {
		sc.logger.Warn("register request failed", "error", err)
		return core.Fail(err.Error())
	}
	if !resp.Success {
		return core.Fail(messageOr(resp.Message, "Registration failed"))
	}
	return core.OK(messageOr(resp.Message, "Registration successful"))
}

// Logout clears the persisted and in-memory session. It is idempotent. The
// in-memory session is reset even when the store cannot be cleared.
func (sc *SessionController) Logout(ctx context.Context) core.Result {
	m := sc.begin()
	defer m.end()

	if err := sc.clearSession(ctx, m); err != nil {
		return core.Fail("Failed to clear stored session")
	}
	return core.OK("Logged out")
}

// logoutIfToken logs out only while token is still the session token, so a
// verdict on an old token cannot end a newer session.
func (sc *SessionController) logoutIfToken(ctx context.Context, token string) {
	m := sc.begin()
	defer m.end()

	if sc.currentToken() != token {
		return
	}
	sc.clearSession(ctx, m)
}

// clearSession removes the persisted session and resets memory. The
// in-memory reset happens even when the store cannot be cleared.
func (sc *SessionController) clearSession(ctx context.Context, m *mutation) error {
	err := sc.store.Clear(ctx)

	m.publish(func(s *core.Session) {
		*s = core.Session{Loading: s.Loading}
	})

	if err != nil {
		sc.logger.Error("logout could not clear stored session", "error", err)
	}
	return err
}

// RefreshUserData replaces the user profile with a fresh copy from the API.
// It does nothing when not authenticated.
func (sc *SessionController) RefreshUserData(ctx context.Context) core.Result {
	token := sc.authenticatedToken()
	if token == "" {
		return core.Fail(core.ErrNotAuthenticated.Error())
	}

	resp, err := sc.fetchProfile(ctx, token)
	if err != nil {
		sc.logger.Warn("profile refresh failed", "error", err)
		return core.Fail(err.Error())
	}
	if !resp.Success {
		return core.Fail(messageOr(resp.Message, "Failed to refresh profile"))
	}
	user := resp.Profile()
	if user == nil {
		return core.Fail(core.ErrMissingProfile.Error())
	}

	m := sc.begin()
	defer m.end()

	// The session may have ended while the request was in flight.
	if sc.authenticatedToken() != token {
		return core.Fail(core.ErrNotAuthenticated.Error())
	}

	stored, err := sc.store.SaveUser(ctx, user, core.Replace)
	if err != nil {
		sc.logger.Error("profile refresh persist failed", "error", err)
		return core.Fail(core.ErrPersistFailed.Error())
	}

	m.publish(func(s *core.Session) {
		s.User = stored
	})
	return core.OK("Profile refreshed")
}

// UpdateProfile sends fields to the API and merges the returned profile
// over the current user.
func (sc *SessionController) UpdateProfile(ctx context.Context, fields core.UserRecord) core.Result {
	token := sc.authenticatedToken()
	if token == "" {
		return core.Fail(core.ErrNotAuthenticated.Error())
	}

	resp, err := sc.api.UpdateUserProfile(core.ContextWithToken(ctx, token), fields)
	if err != nil {
		sc.logger.Warn("profile update failed", "error", err)
		return core.Fail(err.Error())
	}
	if !resp.Success {
		return core.Fail(messageOr(resp.Message, "Failed to update profile"))
	}

	patch := resp.Profile()
	if patch == nil {
		patch = fields
	}
	m := sc.begin()
	defer m.end()

	if sc.authenticatedToken() != token {
		return core.Fail(core.ErrNotAuthenticated.Error())
	}

	stored, err := sc.store.SaveUser(ctx, patch, core.Merge)
	if err != nil {
		sc.logger.Error("profile update persist failed", "error", err)
		return core.Fail(core.ErrPersistFailed.Error())
	}

	m.publish(func(s *core.Session) {
		s.User = stored
	})
	return core.OK(messageOr(resp.Message, "Profile updated"))
}

// CheckTokenValidity probes the API with the current token. Any failure,
// including a transport error, logs the session out.
func (sc *SessionController) CheckTokenValidity(ctx context.Context) bool {
	token := sc.currentToken()
	if token == "" {
		return false
	}

	if exp, ok := core.TokenExpiry(token); ok && !sc.clock().Before(exp) {
		sc.logger.Info("token expired, logging out", "token", crypto.Fingerprint(token), "exp", exp)
		sc.logoutIfToken(ctx, token)
		return false
	}

	resp, err := sc.fetchProfile(ctx, token)
	if err != nil || !resp.Success {
		sc.logger.Info("token rejected, logging out", "token", crypto.Fingerprint(token), "error", err)
		sc.logoutIfToken(ctx, token)
		return false
	}
	return true
}

// fetchProfile collapses concurrent profile requests for the same token.
func (sc *SessionController) fetchProfile(ctx context.Context, token string) (*core.AuthResponse, error) {
	v, err, _ := sc.probes.Do(crypto.HashToken(token), func() (any, error) {
		return sc.api.GetUserProfile(core.ContextWithToken(ctx, token))
	})
	if err != nil {
		return nil, err
	}
	return v.(*core.AuthResponse), nil
}

// AuthContext returns ctx carrying the current bearer token. Without a
// session ctx is returned unchanged.
func (sc *SessionController) AuthContext(ctx context.Context) context.Context {
	token := sc.currentToken()
	if token == "" {
		return ctx
	}
	return core.ContextWithToken(ctx, token)
}

// Snapshot returns a copy of the current session.
func (sc *SessionController) Snapshot() core.Session {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.snapshotLocked()
}

func (sc *SessionController) snapshotLocked() core.Session {
	s := sc.state
	s.User = s.User.Clone()
	return s
}

func (sc *SessionController) Role() core.Role {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.state.Role
}

func (sc *SessionController) IsAuthenticated() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.state.IsAuthenticated
}

func (sc *SessionController) IsStudent() bool { return sc.Role() == core.RoleStudent }

func (sc *SessionController) IsCounselor() bool { return sc.Role() == core.RoleCounselor }

// Subscribe registers fn to receive the session after every change. The
// returned func removes the subscription.
func (sc *SessionController) Subscribe(fn func(core.Session)) func() {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	id := sc.nextSub
	sc.nextSub++
	sc.subs[id] = fn

	return func() {
		sc.mu.Lock()
		defer sc.mu.Unlock()
		delete(sc.subs, id)
	}
}

func (sc *SessionController) currentToken() string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.state.Token
}

func (sc *SessionController) authenticatedToken() string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	if !sc.state.IsAuthenticated {
		return ""
	}
	return sc.state.Token
}

func (sc *SessionController) setLoading(loading bool) {
	sc.update(func(s *core.Session) {
		s.Loading = loading
	})
}

// update applies fn and notifies subscribers right away. It is used for
// changes that have no persisted counterpart.
func (sc *SessionController) update(fn func(s *core.Session)) {
	sc.publish(fn)()
}

// publish applies fn under the lock and restores the authentication
// invariant. The returned func notifies subscribers and must be called
// without any lock held.
func (sc *SessionController) publish(fn func(s *core.Session)) func() {
	sc.mu.Lock()
	fn(&sc.state)
	sc.state.IsAuthenticated = sc.state.Token != "" && sc.state.User != nil
	snapshot := sc.snapshotLocked()
	subs := make([]func(core.Session), 0, len(sc.subs))
	for _, sub := range sc.subs {
		subs = append(subs, sub)
	}
	sc.mu.Unlock()

	return func() {
		for _, notify := range subs {
			notify(snapshot)
		}
	}
}

// mutation holds writeMu from begin to end. Subscribers are notified once
// writeMu is released, so they may call back into the controller.
type mutation struct {
	sc      *SessionController
	pending []func()
}

func (sc *SessionController) begin() *mutation {
	sc.writeMu.Lock()
	return &mutation{sc: sc}
}

func (m *mutation) publish(fn func(s *core.Session)) {
	m.pending = append(m.pending, m.sc.publish(fn))
}

func (m *mutation) end() {
	m.sc.writeMu.Unlock()
	for _, notify := range m.pending {
		notify()
	}
}

// roleOf derives a role from a profile's "role" field.
func roleOf(user core.UserRecord) core.Role {
	role, _ := user["role"].(string)
	return core.ParseRole(role)
}

func messageOr(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}
