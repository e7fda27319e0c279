// Package backend is an in-memory implementation of the career-guide REST
// backend. It serves local development and end-to-end tests; adapters/fiber
// exposes it over HTTP.
package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lborres/careerguide/core"
	"github.com/lborres/careerguide/pkg/crypto"
)

const DefaultTokenTTL = 24 * time.Hour

type Config struct {
	// Secret signs tokens. A random secret is generated when empty.
	Secret []byte
	// TokenTTL defaults to DefaultTokenTTL.
	TokenTTL time.Duration
	// Passwords defaults to crypto.NewArgon2().
	Passwords crypto.PasswordHandler
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Account is a registered student or counselor.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	Role         core.Role
	Profile      core.UserRecord
	CreatedAt    time.Time
}

type Backend struct {
	mu       sync.RWMutex
	accounts map[string]*Account // key: lower-cased email
	byID     map[string]*Account

	counselors []core.Counselor
	messages   map[string][]core.Message // key: account id + counselor id
	resumes    map[string]json.RawMessage
	journeys   map[string]json.RawMessage
	revoked    map[string]struct{} // key: token hash

	secret    []byte
	tokenTTL  time.Duration
	passwords crypto.PasswordHandler
	clock     func() time.Time
	ids       *crypto.NanoIDGenerator
}

func New(c Config) (*Backend, error) {
	if len(c.Secret) == 0 {
		secret, err := crypto.GenerateSecret(crypto.DefaultSecretLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate secret: %w", err)
		}
		c.Secret = []byte(secret)
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = DefaultTokenTTL
	}
	if c.Passwords == nil {
		c.Passwords = crypto.NewArgon2()
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}

	ids, err := crypto.NewNanoID(crypto.MessageIDAlphabet)
	if err != nil {
		return nil, err
	}

	return &Backend{
		accounts:   make(map[string]*Account),
		byID:       make(map[string]*Account),
		counselors: Directory(),
		messages:   make(map[string][]core.Message),
		resumes:    make(map[string]json.RawMessage),
		journeys:   make(map[string]json.RawMessage),
		revoked:    make(map[string]struct{}),
		secret:     c.Secret,
		tokenTTL:   c.TokenTTL,
		passwords:  c.Passwords,
		clock:      c.Clock,
		ids:        ids,
	}, nil
}

// Register creates an account. It never issues a token.
func (b *Backend) Register(p core.RegistrationPayload) (*Account, error) {
	input := core.RegistrationInput{
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Email:          p.Email,
		Password:       p.Password,
		Role:           core.ParseRole(string(p.Role)),
		Phone:          p.Phone,
		Specialization: p.Specialization,
		Experience:     p.Experience,
		Availability:   p.Availability,
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	payload := input.Payload()
	key := strings.ToLower(payload.Email)

	// Step 1: Check if the email is taken
	b.mu.RLock()
	_, exists := b.accounts[key]
	b.mu.RUnlock()
	if exists {
		return nil, ErrEmailTaken
	}

	// Step 2: Hash the password
	hash, err := b.passwords.Hash(payload.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Step 3: Build the profile the client will cache
	account := &Account{
		ID:           uuid.NewString(),
		Email:        payload.Email,
		PasswordHash: hash,
		Role:         payload.Role,
		CreatedAt:    b.clock().UTC(),
	}
	account.Profile = core.UserRecord{
		"id":        account.ID,
		"firstName": payload.FirstName,
		"lastName":  payload.LastName,
		"name":      payload.FirstName + " " + payload.LastName,
		"email":     payload.Email,
		"role":      string(payload.Role),
	}
	if payload.Role == core.RoleCounselor {
		account.Profile["phone"] = payload.Phone
		account.Profile["specialization"] = payload.Specialization
		account.Profile["experience"] = payload.Experience
		account.Profile["availability"] = payload.Availability
	}

	// Step 4: Store, re-checking under the write lock
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.accounts[key]; exists {
		return nil, ErrEmailTaken
	}
	b.accounts[key] = account
	b.byID[account.ID] = account

	return account, nil
}

// Login verifies credentials and issues a token. Students log in as "user".
func (b *Backend) Login(req core.LoginRequest) (*core.AuthResponse, error) {
	if strings.TrimSpace(req.Email) == "" {
		return nil, core.ErrEmailRequired
	}
	if req.Password == "" {
		return nil, core.ErrPasswordRequired
	}
	loginAs, err := core.NormalizeLoginAs(req.LoginAs)
	if err != nil {
		return nil, err
	}

	// Step 1: Find the account
	b.mu.RLock()
	account, ok := b.accounts[strings.ToLower(strings.TrimSpace(req.Email))]
	b.mu.RUnlock()
	if !ok {
		return nil, ErrInvalidCredentials
	}

	// Step 2: Verify the password
	valid, err := b.passwords.Verify(req.Password, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, ErrInvalidCredentials
	}

	// Step 3: The login type must match the account role
	if core.ParseRole(loginAs) != account.Role {
		return nil, ErrWrongLoginType
	}

	// Step 4: Issue the token
	token, err := b.issueToken(account)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	resp := b.profileResponse(account)
	resp.Message = "Login successful"
	resp.Token = token
	return resp, nil
}

// Authenticate resolves a bearer token to its account.
func (b *Backend) Authenticate(token string) (*Account, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	b.mu.RLock()
	_, revoked := b.revoked[crypto.HashToken(token)]
	b.mu.RUnlock()
	if revoked {
		return nil, ErrInvalidToken
	}

	claims, err := b.parseToken(token)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	account, ok := b.byID[claims.Subject]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// Revoke invalidates a token before it expires.
func (b *Backend) Revoke(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked[crypto.HashToken(token)] = struct{}{}
}

// Profile returns the account's profile under the role-specific key.
func (b *Backend) Profile(account *Account) *core.AuthResponse {
	resp := b.profileResponse(account)
	resp.Message = "Profile retrieved"
	return resp
}

// protectedFields cannot be changed through a profile update.
var protectedFields = []string{"id", "email", "role", "password"}

// UpdateProfile merges fields over the stored profile.
func (b *Backend) UpdateProfile(account *Account, fields core.UserRecord) (*core.AuthResponse, error) {
	if len(fields) == 0 {
		return nil, errors.New("no profile fields provided")
	}

	patch := fields.Clone()
	for _, f := range protectedFields {
		delete(patch, f)
	}

	b.mu.Lock()
	account.Profile = account.Profile.Merge(patch)
	b.mu.Unlock()

	resp := b.profileResponse(account)
	resp.Message = "Profile updated successfully"
	return resp, nil
}

func (b *Backend) profileResponse(account *Account) *core.AuthResponse {
	b.mu.RLock()
	profile := account.Profile.Clone()
	b.mu.RUnlock()

	resp := &core.AuthResponse{
		Envelope: core.Envelope{Success: true},
		Role:     string(account.Role),
	}
	if account.Role == core.RoleCounselor {
		resp.Counselor = profile
	} else {
		resp.User = profile
	}
	return resp
}

// Accounts reports how many accounts are registered.
func (b *Backend) Accounts() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.accounts)
}
