package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"user-auth/model"
)

// MemoryStore keeps users in process memory. Uniqueness checks and writes happen
// under one lock so concurrent writers racing on the same key see exactly one winner.
type MemoryStore struct {
	mu       sync.RWMutex
	byID     map[string]model.User
	byEmail  map[string]string
	byPhone  map[string]string
	byGoogle map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:     make(map[string]model.User),
		byEmail:  make(map[string]string),
		byPhone:  make(map[string]string),
		byGoogle: make(map[string]string),
	}
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(u), nil
}

func (s *MemoryStore) FindOne(_ context.Context, f Filter) (*model.User, error) {
	if f.IsEmpty() {
		return nil, errEmptyFilter
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id := ""
	for _, c := range []struct {
		value string
		index map[string]string
	}{
		{f.Email, s.byEmail},
		{f.Phone, s.byPhone},
		{f.GoogleID, s.byGoogle},
	} {
		if c.value == "" {
			continue
		}
		match, ok := c.index[c.value]
		if !ok || (id != "" && id != match) {
			return nil, ErrNotFound
		}
		id = match
	}
	return clone(s.byID[id]), nil
}

func (s *MemoryStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if err := s.checkUnique(u); err != nil {
		return err
	}
	stamp(u, true)
	s.put(*u)
	return nil
}

func (s *MemoryStore) Save(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.byID[u.ID]
	if !ok {
		return ErrNotFound
	}
	if err := s.checkUnique(u); err != nil {
		return err
	}
	s.unindex(old)
	stamp(u, false)
	u.CreatedAt = old.CreatedAt
	s.put(*u)
	return nil
}

func (s *MemoryStore) ListUpdatedSince(_ context.Context, since time.Time, limit int) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.User
	for _, u := range s.byID {
		if !u.UpdatedAt.Before(since) {
			out = append(out, *clone(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// checkUnique must be called with the write lock held.
func (s *MemoryStore) checkUnique(u *model.User) error {
	if owner, ok := s.byEmail[u.EmailValue()]; ok && u.Email != nil && owner != u.ID {
		return &DuplicateKeyError{Field: FieldEmail}
	}
	if owner, ok := s.byPhone[u.PhoneValue()]; ok && u.Phone != nil && owner != u.ID {
		return &DuplicateKeyError{Field: FieldPhone}
	}
	if owner, ok := s.byGoogle[u.GoogleIDValue()]; ok && u.GoogleID != nil && owner != u.ID {
		return &DuplicateKeyError{Field: FieldGoogleID}
	}
	return nil
}

func (s *MemoryStore) put(u model.User) {
	s.byID[u.ID] = *clone(u)
	if u.Email != nil {
		s.byEmail[*u.Email] = u.ID
	}
	if u.Phone != nil {
		s.byPhone[*u.Phone] = u.ID
	}
	if u.GoogleID != nil {
		s.byGoogle[*u.GoogleID] = u.ID
	}
}

func (s *MemoryStore) unindex(u model.User) {
	if u.Email != nil {
		delete(s.byEmail, *u.Email)
	}
	if u.Phone != nil {
		delete(s.byPhone, *u.Phone)
	}
	if u.GoogleID != nil {
		delete(s.byGoogle, *u.GoogleID)
	}
}

// clone copies u so callers never share pointer fields with stored records.
func clone(u model.User) *model.User {
	cp := u
	if u.Email != nil {
		cp.Email = model.StringPtr(*u.Email)
	}
	if u.Phone != nil {
		cp.Phone = model.StringPtr(*u.Phone)
	}
	if u.GoogleID != nil {
		cp.GoogleID = model.StringPtr(*u.GoogleID)
	}
	if u.DateOfBirth != nil {
		dob := *u.DateOfBirth
		cp.DateOfBirth = &dob
	}
	return &cp
}
