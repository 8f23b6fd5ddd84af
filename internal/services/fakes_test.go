package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/okovalenko/wishlink/internal/identity"
	"github.com/okovalenko/wishlink/internal/store"
)

// fakeStore is an in-memory document store with the same update and
// transaction semantics as the real one. Failures can be injected per
// operation to exercise degraded paths.
type fakeStore struct {
	mu     sync.Mutex
	data   map[string]map[string][]byte // collection -> id -> body
	nextID int

	GetErr    error
	SetErr    error
	UpdateErr error
	QueryErr  error
	DeleteErr error

	// UpdateHook runs before each update (inside and outside transactions);
	// returning an error aborts the operation.
	UpdateHook func(collection, id string) error
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]map[string][]byte)}
}

func (f *fakeStore) seed(collection, id string, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.data[collection] == nil {
		f.data[collection] = make(map[string][]byte)
	}
	f.data[collection][id] = body
}

func (f *fakeStore) document(collection, id string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.data[collection][id]
	if !ok {
		return nil
	}
	doc := make(map[string]any)
	if err := json.Unmarshal(body, &doc); err != nil {
		panic(err)
	}
	return doc
}

func (f *fakeStore) Get(ctx context.Context, collection, id string) (*store.Document, error) {
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.data[collection][id]
	if !ok {
		return nil, store.ErrDocumentNotFound
	}
	return &store.Document{ID: id, Data: append([]byte(nil), body...)}, nil
}

func (f *fakeStore) Set(ctx context.Context, collection, id string, value any, merge bool) error {
	if f.SetErr != nil {
		return f.SetErr
	}
	body, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.data[collection] == nil {
		f.data[collection] = make(map[string][]byte)
	}
	if merge {
		if existing, ok := f.data[collection][id]; ok {
			var patch map[string]any
			if err := json.Unmarshal(body, &patch); err != nil {
				return err
			}
			merged, err := store.ApplyUpdate(existing, store.Update{Set: patch})
			if err != nil {
				return err
			}
			f.data[collection][id] = merged
			return nil
		}
	}
	f.data[collection][id] = body
	return nil
}

func (f *fakeStore) Update(ctx context.Context, collection, id string, u store.Update) error {
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	if f.UpdateHook != nil {
		if err := f.UpdateHook(collection, id); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.applyLocked(collection, id, u)
}

func (f *fakeStore) applyLocked(collection, id string, u store.Update) error {
	body, ok := f.data[collection][id]
	if !ok {
		return store.ErrDocumentNotFound
	}
	updated, err := store.ApplyUpdate(body, u)
	if err != nil {
		return err
	}
	f.data[collection][id] = updated
	return nil
}

func (f *fakeStore) Query(ctx context.Context, collection string, filters ...store.Filter) ([]store.Document, error) {
	if f.QueryErr != nil {
		return nil, f.QueryErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var docs []store.Document
	for id, body := range f.data[collection] {
		doc := make(map[string]any)
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, err
		}
		match := true
		for _, filter := range filters {
			if fmt.Sprint(doc[filter.Field]) != fmt.Sprint(filter.Value) {
				match = false
				break
			}
		}
		if match {
			docs = append(docs, store.Document{ID: id, Data: append([]byte(nil), body...)})
		}
	}
	return docs, nil
}

func (f *fakeStore) Delete(ctx context.Context, collection, id string) error {
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data[collection], id)
	return nil
}

func (f *fakeStore) GenerateID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	return "id-" + strconv.Itoa(f.nextID)
}

// RunTransaction snapshots all data up front and restores it when fn fails,
// matching the all-or-nothing contract.
func (f *fakeStore) RunTransaction(ctx context.Context, fn func(tx store.Tx) error) error {
	f.mu.Lock()
	snapshot := make(map[string]map[string][]byte, len(f.data))
	for coll, docs := range f.data {
		snapshot[coll] = make(map[string][]byte, len(docs))
		for id, body := range docs {
			snapshot[coll][id] = body
		}
	}
	f.mu.Unlock()

	if err := fn(&fakeTx{store: f}); err != nil {
		f.mu.Lock()
		f.data = snapshot
		f.mu.Unlock()
		return err
	}
	return nil
}

type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) Get(ctx context.Context, collection, id string) (*store.Document, error) {
	return t.store.Get(ctx, collection, id)
}

func (t *fakeTx) Update(ctx context.Context, collection, id string, u store.Update) error {
	if t.store.UpdateHook != nil {
		if err := t.store.UpdateHook(collection, id); err != nil {
			return err
		}
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	return t.store.applyLocked(collection, id, u)
}

// fakeCache is a map-backed cache with optional injected failures.
type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte

	GetErr error
	SetErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (f *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), body...), nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value []byte) error {
	if f.SetErr != nil {
		return f.SetErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = append([]byte(nil), value...)
	return nil
}

func (f *fakeCache) Remove(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func (f *fakeCache) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok
}

// fakeProvider implements identity.Provider with overridable behavior.
type fakeProvider struct {
	CreateAccountFunc         func(ctx context.Context, email, password string) (*identity.Identity, error)
	AuthenticateFunc          func(ctx context.Context, email, password string) (*identity.Identity, string, error)
	CurrentSessionFunc        func(ctx context.Context, token string) (*identity.Identity, error)
	EndSessionFunc            func(ctx context.Context, token string) error
	SendVerificationFunc      func(ctx context.Context, ident *identity.Identity) error
	VerifyEmailFunc           func(ctx context.Context, token string) error
	SendPasswordResetFunc     func(ctx context.Context, email string) error
	CompletePasswordResetFunc func(ctx context.Context, token, newPassword string) error
	UpdateDisplayFieldsFunc   func(ctx context.Context, uid, name string, avatar *string) error
}

func (m *fakeProvider) CreateAccount(ctx context.Context, email, password string) (*identity.Identity, error) {
	if m.CreateAccountFunc != nil {
		return m.CreateAccountFunc(ctx, email, password)
	}
	return &identity.Identity{UID: "uid-" + email, Email: email}, nil
}

func (m *fakeProvider) Authenticate(ctx context.Context, email, password string) (*identity.Identity, string, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, email, password)
	}
	return &identity.Identity{UID: "uid-" + email, Email: email}, "token-" + email, nil
}

func (m *fakeProvider) CurrentSession(ctx context.Context, token string) (*identity.Identity, error) {
	if m.CurrentSessionFunc != nil {
		return m.CurrentSessionFunc(ctx, token)
	}
	return nil, identity.ErrNoSession
}

func (m *fakeProvider) EndSession(ctx context.Context, token string) error {
	if m.EndSessionFunc != nil {
		return m.EndSessionFunc(ctx, token)
	}
	return nil
}

func (m *fakeProvider) SendVerification(ctx context.Context, ident *identity.Identity) error {
	if m.SendVerificationFunc != nil {
		return m.SendVerificationFunc(ctx, ident)
	}
	return nil
}

func (m *fakeProvider) VerifyEmail(ctx context.Context, token string) error {
	if m.VerifyEmailFunc != nil {
		return m.VerifyEmailFunc(ctx, token)
	}
	return nil
}

func (m *fakeProvider) SendPasswordReset(ctx context.Context, email string) error {
	if m.SendPasswordResetFunc != nil {
		return m.SendPasswordResetFunc(ctx, email)
	}
	return nil
}

func (m *fakeProvider) CompletePasswordReset(ctx context.Context, token, newPassword string) error {
	if m.CompletePasswordResetFunc != nil {
		return m.CompletePasswordResetFunc(ctx, token, newPassword)
	}
	return nil
}

func (m *fakeProvider) UpdateDisplayFields(ctx context.Context, uid, name string, avatar *string) error {
	if m.UpdateDisplayFieldsFunc != nil {
		return m.UpdateDisplayFieldsFunc(ctx, uid, name, avatar)
	}
	return nil
}

// sessionFor builds a resolver context and session service pair for a user
// whose session always resolves to the given email.
func sessionFor(email string, st store.Store, c *fakeCache) (*SessionService, context.Context) {
	provider := &fakeProvider{
		CurrentSessionFunc: func(ctx context.Context, token string) (*identity.Identity, error) {
			if token == "" {
				return nil, identity.ErrNoSession
			}
			return &identity.Identity{UID: "uid-" + email, Email: email, Name: "Test User"}, nil
		},
	}
	svc := NewSessionService(provider, st, c)
	return svc, WithToken(context.Background(), "tok-"+email)
}
