package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/lborres/careerguide/core"
	"github.com/lborres/careerguide/pkg/kv"
)

var errFakeTransport = errors.New("network request failed")

// FakeAPI is a test-only fake implementing core.API. Responses and errors
// are injected per endpoint; every call records the bearer token it saw.
type FakeAPI struct {
	mu sync.Mutex

	LoginResp         *core.AuthResponse
	LoginFn           func(core.LoginRequest) *core.AuthResponse // overrides LoginResp
	LoginErr          error
	RegisterResp      *core.Envelope
	RegisterErr       error
	ProfileResp       *core.AuthResponse
	ProfileErr        error
	UpdateResp        *core.AuthResponse
	UpdateErr         error
	CounselorsResp    *core.CounselorsResponse
	CounselorResp     *core.CounselorResponse
	MessagesResp      *core.MessagesResponse
	SendResp          *core.SendMessageResponse
	DocumentResp      *core.DocumentResponse
	ResourceErr       error
	ProfileGate       chan struct{} // when set, GetUserProfile blocks until closed
	UpdateGate        chan struct{} // when set, UpdateUserProfile blocks until closed
	Calls             map[string]int
	Tokens            []string
	LastLogin         core.LoginRequest
	LastRegister      core.RegistrationPayload
	LastUpdate        core.UserRecord
	LastSavedDocument json.RawMessage
}

var _ core.API = (*FakeAPI)(nil)

func NewFakeAPI() *FakeAPI {
	return &FakeAPI{Calls: make(map[string]int)}
}

// SetProfileError makes every profile fetch fail with err.
func (f *FakeAPI) SetProfileError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ProfileErr = err
}

func (f *FakeAPI) CallCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[name]
}

func (f *FakeAPI) record(ctx context.Context, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls[name]++
	token, _ := core.TokenFromContext(ctx)
	f.Tokens = append(f.Tokens, token)
}

func (f *FakeAPI) LastToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Tokens) == 0 {
		return ""
	}
	return f.Tokens[len(f.Tokens)-1]
}

func (f *FakeAPI) Login(ctx context.Context, req core.LoginRequest) (*core.AuthResponse, error) {
	f.record(ctx, "Login")
	f.mu.Lock()
	f.LastLogin = req
	f.mu.Unlock()
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	if f.LoginFn != nil {
		return f.LoginFn(req), nil
	}
	return f.LoginResp, nil
}

func (f *FakeAPI) Register(ctx context.Context, payload core.RegistrationPayload) (*core.Envelope, error) {
	f.record(ctx, "Register")
	f.mu.Lock()
	f.LastRegister = payload
	f.mu.Unlock()
	if f.RegisterErr != nil {
		return nil, f.RegisterErr
	}
	return f.RegisterResp, nil
}

func (f *FakeAPI) GetUserProfile(ctx context.Context) (*core.AuthResponse, error) {
	f.record(ctx, "GetUserProfile")
	if f.ProfileGate != nil {
		<-f.ProfileGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ProfileErr != nil {
		return nil, f.ProfileErr
	}
	return f.ProfileResp, nil
}

func (f *FakeAPI) UpdateUserProfile(ctx context.Context, fields core.UserRecord) (*core.AuthResponse, error) {
	f.record(ctx, "UpdateUserProfile")
	if f.UpdateGate != nil {
		<-f.UpdateGate
	}
	f.mu.Lock()
	f.LastUpdate = fields
	f.mu.Unlock()
	if f.UpdateErr != nil {
		return nil, f.UpdateErr
	}
	return f.UpdateResp, nil
}

func (f *FakeAPI) GetCounselors(ctx context.Context) (*core.CounselorsResponse, error) {
	f.record(ctx, "GetCounselors")
	if f.ResourceErr != nil {
		return nil, f.ResourceErr
	}
	return f.CounselorsResp, nil
}

func (f *FakeAPI) GetCounselor(ctx context.Context, id string) (*core.CounselorResponse, error) {
	f.record(ctx, "GetCounselor")
	if f.ResourceErr != nil {
		return nil, f.ResourceErr
	}
	return f.CounselorResp, nil
}

func (f *FakeAPI) GetMessages(ctx context.Context, counselorID string) (*core.MessagesResponse, error) {
	f.record(ctx, "GetMessages")
	if f.ResourceErr != nil {
		return nil, f.ResourceErr
	}
	return f.MessagesResp, nil
}

func (f *FakeAPI) SendMessage(ctx context.Context, req core.SendMessageRequest) (*core.SendMessageResponse, error) {
	f.record(ctx, "SendMessage")
	if f.ResourceErr != nil {
		return nil, f.ResourceErr
	}
	return f.SendResp, nil
}

func (f *FakeAPI) GetResume(ctx context.Context) (*core.DocumentResponse, error) {
	f.record(ctx, "GetResume")
	if f.ResourceErr != nil {
		return nil, f.ResourceErr
	}
	return f.DocumentResp, nil
}

func (f *FakeAPI) SaveResume(ctx context.Context, data json.RawMessage) (*core.DocumentResponse, error) {
	f.record(ctx, "SaveResume")
	f.mu.Lock()
	f.LastSavedDocument = data
	f.mu.Unlock()
	if f.ResourceErr != nil {
		return nil, f.ResourceErr
	}
	return &core.DocumentResponse{Envelope: core.Envelope{Success: true}, Data: data}, nil
}

func (f *FakeAPI) GetLearningJourney(ctx context.Context) (*core.DocumentResponse, error) {
	f.record(ctx, "GetLearningJourney")
	if f.ResourceErr != nil {
		return nil, f.ResourceErr
	}
	return f.DocumentResp, nil
}

func (f *FakeAPI) SaveLearningJourney(ctx context.Context, data json.RawMessage) (*core.DocumentResponse, error) {
	f.record(ctx, "SaveLearningJourney")
	f.mu.Lock()
	f.LastSavedDocument = data
	f.mu.Unlock()
	if f.ResourceErr != nil {
		return nil, f.ResourceErr
	}
	return &core.DocumentResponse{Envelope: core.Envelope{Success: true}, Data: data}, nil
}

var errFakeStorage = errors.New("storage unavailable")

// FailingStore is a test-only core.KVStore over kv.MemoryStore that fails
// writes, reads or removals of selected keys on demand.
type FailingStore struct {
	*kv.MemoryStore

	mu         sync.Mutex
	failSet    map[string]bool
	failGet    map[string]bool
	failRemove bool
	gates      map[string]*writeGate
}

type writeGate struct {
	reached chan struct{}
	release chan struct{}
}

var _ core.KVStore = (*FailingStore)(nil)

func NewFailingStore() *FailingStore {
	return &FailingStore{
		MemoryStore: kv.NewMemoryStore(),
		failSet:     make(map[string]bool),
		failGet:     make(map[string]bool),
		gates:       make(map[string]*writeGate),
	}
}

func (f *FailingStore) FailSet(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSet[key] = true
}

// HoldSet makes the next SetItem of key wait until release is called.
// The returned channel is closed once that write is waiting.
func (f *FailingStore) HoldSet(key string) (reached <-chan struct{}, release func()) {
	g := &writeGate{reached: make(chan struct{}), release: make(chan struct{})}
	f.mu.Lock()
	f.gates[key] = g
	f.mu.Unlock()
	return g.reached, func() { close(g.release) }
}

func (f *FailingStore) FailGet(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failGet[key] = true
}

func (f *FailingStore) FailRemove() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failRemove = true
}

// Heal clears every injected failure.
func (f *FailingStore) Heal() {
	f.mu.Lock()
	defer f.mu.Unlock()
	clear(f.failSet)
	clear(f.failGet)
	f.failRemove = false
}

func (f *FailingStore) SetItem(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	fail := f.failSet[key]
	gate := f.gates[key]
	delete(f.gates, key)
	f.mu.Unlock()
	if gate != nil {
		close(gate.reached)
		<-gate.release
	}
	if fail {
		return errFakeStorage
	}
	return f.MemoryStore.SetItem(ctx, key, value)
}

func (f *FailingStore) GetItem(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	fail := f.failGet[key]
	f.mu.Unlock()
	if fail {
		return nil, errFakeStorage
	}
	return f.MemoryStore.GetItem(ctx, key)
}

func (f *FailingStore) RemoveItem(ctx context.Context, key string) error {
	return f.MultiRemove(ctx, key)
}

func (f *FailingStore) MultiRemove(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	fail := f.failRemove
	f.mu.Unlock()
	if fail {
		return errFakeStorage
	}
	return f.MemoryStore.MultiRemove(ctx, keys...)
}

// Dump returns every stored value as a string for byte-level comparisons.
func (f *FailingStore) Dump(ctx context.Context) map[string]string {
	out := map[string]string{}
	keys, _ := f.MemoryStore.Keys(ctx)
	for _, k := range keys {
		v, _ := f.MemoryStore.GetItem(ctx, k)
		out[k] = string(v)
	}
	return out
}
