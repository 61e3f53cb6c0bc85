package store

import (
	"context"
	"errors"
	"sync"

	"recoveryos/internal/domain"
)

var (
	// ErrNotFound indica que el registro pedido no existe en el almacén.
	ErrNotFound = errors.New("store: record not found")
	// ErrDuplicateEmail indica que ya existe un usuario con ese email.
	ErrDuplicateEmail = errors.New("store: duplicate email")
)

// UserStore define el contrato de usuarios para los servicios.
type UserStore interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

// MemoryUserStore implementa UserStore sobre mapas en memoria.
type MemoryUserStore struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string // email -> id
	order   []string          // ids en orden de alta
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

func (s *MemoryUserStore) Create(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[user.Email]; taken {
		return ErrDuplicateEmail
	}
	if _, exists := s.byID[user.ID]; exists {
		return errors.New("store: duplicate user id")
	}
	s.byID[user.ID] = user
	s.byEmail[user.Email] = user.ID
	s.order = append(s.order, user.ID)
	return nil
}

func (s *MemoryUserStore) GetByID(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemoryUserStore) GetByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	return s.byID[id], nil
}

func (s *MemoryUserStore) List(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out, nil
}
