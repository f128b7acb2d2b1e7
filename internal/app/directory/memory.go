package directory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"pairchat/internal/app/user"
)

type account struct {
	user         user.User
	passwordHash string
}

// Memory is a process-local directory used when Postgres is not configured.
type Memory struct {
	mu         sync.RWMutex
	accounts   []account
	byID       map[string]int
	byUsername map[string]int
}

// NewMemory creates an empty directory.
func NewMemory() *Memory {
	return &Memory{
		byID:       make(map[string]int),
		byUsername: make(map[string]int),
	}
}

func (m *Memory) Register(_ context.Context, username, password string) (user.User, error) {
	if err := ValidateCredentials(username, password); err != nil {
		return user.User{}, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return user.User{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byUsername[username]; exists {
		return user.User{}, ErrUsernameTaken
	}

	u := user.New(uuid.New().String(), username)
	m.accounts = append(m.accounts, account{user: u, passwordHash: hash})
	m.byID[u.ID] = len(m.accounts) - 1
	m.byUsername[username] = len(m.accounts) - 1

	return u, nil
}

func (m *Memory) Authenticate(_ context.Context, username, password string) (user.User, error) {
	m.mu.RLock()
	idx, ok := m.byUsername[username]
	var acc account
	if ok {
		acc = m.accounts[idx]
	}
	m.mu.RUnlock()

	if !ok {
		checkPassword(string(dummyHash), password)
		return user.User{}, ErrInvalidCredentials
	}
	if !checkPassword(acc.passwordHash, password) {
		return user.User{}, ErrInvalidCredentials
	}

	return acc.user, nil
}

func (m *Memory) Get(_ context.Context, id string) (user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx, ok := m.byID[id]
	if !ok {
		return user.User{}, ErrUserNotFound
	}
	return m.accounts[idx].user, nil
}

func (m *Memory) ListExcept(_ context.Context, id string) ([]user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]user.User, 0, len(m.accounts))
	for _, acc := range m.accounts {
		if acc.user.ID != id {
			out = append(out, acc.user)
		}
	}
	return out, nil
}

func (m *Memory) Count(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.accounts), nil
}

func (m *Memory) Durable() bool { return false }
