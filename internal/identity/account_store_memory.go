package identity

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
	"github.com/yigit/uniportal/internal/pkg/helpers"
)

// MemoryAccountStore keeps local accounts in process
type MemoryAccountStore struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]StoredAccount
	failures map[string]error
}

// NewMemoryAccountStore creates an empty store
func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{
		accounts: make(map[uuid.UUID]StoredAccount),
		failures: make(map[string]error),
	}
}

// FailOn makes op ("insert", "delete", "get", "confirm") return err
func (s *MemoryAccountStore) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// Count returns the number of accounts registered under email
func (s *MemoryAccountStore) Count(email string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = helpers.NormalizeEmail(email)
	n := 0
	for _, a := range s.accounts {
		if a.Email == email {
			n++
		}
	}
	return n
}

func (s *MemoryAccountStore) Insert(ctx context.Context, a *StoredAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures["insert"]; err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return unavailable("insert account", err)
	}
	for _, existing := range s.accounts {
		if existing.Email == a.Email {
			return apperrors.ErrDuplicateAccount
		}
	}
	s.accounts[a.ID] = *a
	return nil
}

func (s *MemoryAccountStore) GetByEmail(_ context.Context, email string) (*StoredAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures["get"]; err != nil {
		return nil, err
	}
	email = helpers.NormalizeEmail(email)
	for _, a := range s.accounts {
		if a.Email == email {
			a := a
			return &a, nil
		}
	}
	return nil, apperrors.ErrIdentityNotFound
}

func (s *MemoryAccountStore) GetByID(_ context.Context, id uuid.UUID) (*StoredAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures["get"]; err != nil {
		return nil, err
	}
	a, ok := s.accounts[id]
	if !ok {
		return nil, apperrors.ErrIdentityNotFound
	}
	return &a, nil
}

func (s *MemoryAccountStore) SetEmailConfirmed(_ context.Context, id uuid.UUID, confirmed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures["confirm"]; err != nil {
		return err
	}
	a, ok := s.accounts[id]
	if !ok {
		return apperrors.ErrIdentityNotFound
	}
	a.EmailConfirmed = confirmed
	s.accounts[id] = a
	return nil
}

func (s *MemoryAccountStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures["delete"]; err != nil {
		return err
	}
	if _, ok := s.accounts[id]; !ok {
		return apperrors.ErrIdentityNotFound
	}
	delete(s.accounts, id)
	return nil
}
