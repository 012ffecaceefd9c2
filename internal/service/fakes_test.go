package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pingme/pingme/internal/model"
	"github.com/pingme/pingme/internal/repository"
)

// fakeUserStore is an in-memory UserStore.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*model.User // keyed by ID

	createErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*model.User)}
}

func (f *fakeUserStore) CreateUser(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return f.createErr
	}
	for _, u := range f.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrEmailExists
		}
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserStore) UpdateUserPassword(ctx context.Context, userID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

// fakeVehicleStore is an in-memory VehicleStore.
type fakeVehicleStore struct {
	mu       sync.Mutex
	vehicles map[string]*model.Vehicle

	createErr error
}

func newFakeVehicleStore() *fakeVehicleStore {
	return &fakeVehicleStore{vehicles: make(map[string]*model.Vehicle)}
}

func (f *fakeVehicleStore) CreateVehicle(ctx context.Context, vehicle *model.Vehicle) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return f.createErr
	}
	clone := *vehicle
	f.vehicles[vehicle.ID] = &clone
	return nil
}

func (f *fakeVehicleStore) GetVehicleByID(ctx context.Context, id string) (*model.Vehicle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.vehicles[id]
	if !ok {
		return nil, repository.ErrVehicleNotFound
	}
	clone := *v
	return &clone, nil
}

func (f *fakeVehicleStore) ListVehiclesByOwner(ctx context.Context, ownerID string) ([]*model.Vehicle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*model.Vehicle
	for _, v := range f.vehicles {
		if v.OwnerID == ownerID {
			clone := *v
			out = append(out, &clone)
		}
	}
	return out, nil
}

// fakeDocumentSaver records saved documents in memory.
type fakeDocumentSaver struct {
	mu      sync.Mutex
	saved   map[string]string // path -> content
	counter int

	saveErr error
}

func newFakeDocumentSaver() *fakeDocumentSaver {
	return &fakeDocumentSaver{saved: make(map[string]string)}
}

func (f *fakeDocumentSaver) Save(src io.Reader, originalName string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.saveErr != nil {
		return "", f.saveErr
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}
	f.counter++
	path := fmt.Sprintf("uploads/doc-%d", f.counter)
	f.saved[path] = string(data)
	return path, nil
}

func (f *fakeDocumentSaver) Remove(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.saved, path)
	return nil
}

// fakeTokenStore is an in-memory TokenStore.
type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]*model.ResetToken
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]*model.ResetToken)}
}

func (f *fakeTokenStore) CreateResetToken(ctx context.Context, token *model.ResetToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *token
	f.tokens[token.TokenHash] = &clone
	return nil
}

func (f *fakeTokenStore) GetResetToken(ctx context.Context, tokenHash string) (*model.ResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.tokens[tokenHash]
	if !ok {
		return nil, repository.ErrTokenNotFound
	}
	clone := *t
	return &clone, nil
}

func (f *fakeTokenStore) MarkResetTokenUsed(ctx context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.tokens[tokenHash]
	if !ok || t.UsedAt != nil {
		return repository.ErrTokenNotFound
	}
	now := t.CreatedAt
	t.UsedAt = &now
	return nil
}

// fakeMailer captures sent reset links.
type fakeMailer struct {
	mu      sync.Mutex
	sent    []string // "to|link"
	sendErr error
}

func (f *fakeMailer) SendPasswordReset(ctx context.Context, to, resetLink string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, to+"|"+resetLink)
	return nil
}
