package application_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/dispulse/sitecontent/internal/domain/model"
	"github.com/dispulse/sitecontent/internal/domain/port/driven"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- UserStore ---

type fakeUserStore struct {
	byEmail   map[string]model.User
	getErr    error
	createErr error
	creates   []model.User
}

func newFakeUserStore(users ...model.User) *fakeUserStore {
	s := &fakeUserStore{byEmail: make(map[string]model.User)}
	for _, u := range users {
		s.byEmail[u.Email] = u
	}
	return s
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	u, ok := s.byEmail[email]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *fakeUserStore) Create(_ context.Context, user model.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	if _, ok := s.byEmail[user.Email]; ok {
		return driven.ErrUserExists
	}
	s.byEmail[user.Email] = user
	s.creates = append(s.creates, user)
	return nil
}

// --- PasswordHasher ---

// plainHasher "hashes" by prefixing, which keeps tests fast.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

// countingHasher records the hashes passed to Compare.
type countingHasher struct {
	plainHasher
	compared []string
}

func (h *countingHasher) Compare(hash, password string) error {
	h.compared = append(h.compared, hash)
	return h.plainHasher.Compare(hash, password)
}

// --- TokenSigner ---

type fakeSigner struct {
	signErr error
	signed  []model.User
	ttls    []time.Duration
}

func (s *fakeSigner) Sign(user model.User, ttl time.Duration) (string, error) {
	if s.signErr != nil {
		return "", s.signErr
	}
	s.signed = append(s.signed, user)
	s.ttls = append(s.ttls, ttl)
	return "token-for-" + user.ID, nil
}

func (s *fakeSigner) Verify(token string) (model.Claims, error) {
	if token == "token-for-u1" {
		return model.Claims{Subject: "u1", Email: "owner@dispulse.co", Role: "owner"}, nil
	}
	return model.Claims{}, errors.New("bad token")
}

// --- ContentStore ---

type fakeContentStore struct {
	entries   model.ContentMap
	listErr   error
	insertErr error
	upsertErr error
	inserts   []model.ContentMap
}

func newFakeContentStore() *fakeContentStore {
	return &fakeContentStore{entries: model.ContentMap{}}
}

func (s *fakeContentStore) ListAll(_ context.Context) (model.ContentMap, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.entries.Clone(), nil
}

func (s *fakeContentStore) InsertMissing(_ context.Context, entries model.ContentMap) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserts = append(s.inserts, entries.Clone())
	for k, v := range entries {
		if _, ok := s.entries[k]; !ok {
			s.entries[k] = v
		}
	}
	return nil
}

func (s *fakeContentStore) Upsert(_ context.Context, key, value string) (model.ContentEntry, error) {
	if s.upsertErr != nil {
		return model.ContentEntry{}, s.upsertErr
	}
	s.entries[key] = value
	return model.ContentEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}, nil
}

// --- SiteAPI ---

type putCall struct {
	Token, Key, Value string
}

// fakeSiteAPI is an in-memory server. failPut makes PutContent fail for the
// named keys.
type fakeSiteAPI struct {
	mu sync.Mutex

	content  model.ContentMap
	listErr  error
	seedErr  error
	loginErr error
	failPut  map[string]error

	validToken string
	user       model.User

	seeds []model.ContentMap
	puts  []putCall
	mes   int
}

func newFakeSiteAPI() *fakeSiteAPI {
	return &fakeSiteAPI{
		content:    model.ContentMap{},
		failPut:    map[string]error{},
		validToken: "good-token",
		user:       model.User{ID: "u1", Name: "Owner", Email: "owner@dispulse.co", Role: "owner"},
	}
}

func (f *fakeSiteAPI) ListContent(_ context.Context) (model.ContentMap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.content.Clone(), nil
}

func (f *fakeSiteAPI) SeedContent(_ context.Context, entries model.ContentMap) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeds = append(f.seeds, entries.Clone())
	if f.seedErr != nil {
		return 0, f.seedErr
	}
	for k, v := range entries {
		if _, ok := f.content[k]; !ok {
			f.content[k] = v
		}
	}
	return len(entries), nil
}

func (f *fakeSiteAPI) PutContent(_ context.Context, token, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, putCall{Token: token, Key: key, Value: value})
	if token != f.validToken {
		return model.ErrUnauthorized()
	}
	if err := f.failPut[key]; err != nil {
		return err
	}
	f.content[key] = value
	return nil
}

func (f *fakeSiteAPI) Login(_ context.Context, email, password string) (driven.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loginErr != nil {
		return driven.LoginResult{}, f.loginErr
	}
	if email != f.user.Email || password != "pw" {
		return driven.LoginResult{}, model.ErrInvalidCredentials()
	}
	return driven.LoginResult{Token: f.validToken, User: f.user}, nil
}

func (f *fakeSiteAPI) Me(_ context.Context, token string) (model.Claims, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mes++
	if token != f.validToken {
		return model.Claims{}, model.ErrUnauthorized()
	}
	return model.Claims{Subject: f.user.ID, Name: f.user.Name, Email: f.user.Email, Role: f.user.Role}, nil
}

func (f *fakeSiteAPI) putKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.puts))
	for _, p := range f.puts {
		keys = append(keys, p.Key)
	}
	return keys
}

// --- TokenStore ---

type memTokenStore struct {
	token   string
	cleared int
}

func (m *memTokenStore) Load() (string, error) { return m.token, nil }

func (m *memTokenStore) Save(token string) error {
	m.token = token
	return nil
}

func (m *memTokenStore) Clear() error {
	m.token = ""
	m.cleared++
	return nil
}
