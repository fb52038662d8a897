package v1

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/duynhne/forum-service/internal/core/domain"
)

var testArgon2Params = Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

// memoryUserRepo enforces username/email uniqueness the way the database does.
type memoryUserRepo struct {
	mu     sync.Mutex
	users  []*domain.User
	nextID int

	calls     int
	findErr   error
	createErr error
}

func newMemoryUserRepo() *memoryUserRepo { return &memoryUserRepo{nextID: 1} }

func (r *memoryUserRepo) FindByUsernameOrEmail(_ context.Context, username, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	for _, u := range r.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

func (r *memoryUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *memoryUserRepo) FindByID(_ context.Context, id int) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.ID == id })
}

func (r *memoryUserRepo) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if match(u) {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) Create(_ context.Context, username, email, passwordHash string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, u := range r.users {
		if u.Email == email {
			return nil, domain.ErrDuplicateEmail
		}
		if u.Username == username {
			return nil, domain.ErrDuplicateUsername
		}
	}
	now := time.Now().UTC()
	u := &domain.User{ID: r.nextID, Username: username, Email: email, PasswordHash: passwordHash, CreatedAt: now, UpdatedAt: now}
	r.nextID++
	r.users = append(r.users, u)
	return copyUser(u), nil
}

func (r *memoryUserRepo) stored(username string) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return copyUser(u)
		}
	}
	return nil
}

func copyUser(u *domain.User) *domain.User {
	cp := *u
	return &cp
}

type memorySessionRepo struct {
	mu        sync.Mutex
	byHash    map[string]*domain.Session
	createErr error
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{byHash: map[string]*domain.Session{}}
}

func (r *memorySessionRepo) Create(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.byHash[s.TokenHash]; ok {
		return errors.New("duplicate token hash")
	}
	cp := *s
	r.byHash[s.TokenHash] = &cp
	return nil
}

func (r *memorySessionRepo) GetByTokenHash(_ context.Context, tokenHash string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byHash[tokenHash]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *memorySessionRepo) DeleteByTokenHash(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byHash, tokenHash)
	return nil
}

func (r *memorySessionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byHash)
}

// recordingSession is a SessionContext that remembers what was set.
type recordingSession struct {
	userID int
	set    bool
	err    error
	ended  bool
}

func (s *recordingSession) SessionUserID() (int, bool) { return s.userID, s.set }

func (s *recordingSession) SetSessionUserID(_ context.Context, userID int) error {
	if s.err != nil {
		return s.err
	}
	s.userID, s.set = userID, true
	return nil
}

func (s *recordingSession) EndSession(context.Context) error {
	if s.err != nil {
		return s.err
	}
	s.userID, s.set, s.ended = 0, false, true
	return nil
}

// stubHasher lets tests force hasher failures.
type stubHasher struct {
	hashErr   error
	verifyErr error
}

func (h stubHasher) Hash(string) (string, error) { return "stub-digest", h.hashErr }

func (h stubHasher) Verify(string, string) (bool, error) { return false, h.verifyErr }
