package repository

import (
	"context"
	"sync"
	"time"

	"hris-auth/internal/data/entity"
)

// CodeRegistry stores at most one pending one-time code per email.
// Set overwrites unconditionally; ttl bounds how long the backing store may
// keep the entry. Get returns (nil, nil) when nothing is stored.
// MarkVerified and DeleteIf act only while the stored code still equals code
// and report whether they did; a code replaced in between is left alone.
type CodeRegistry interface {
	Set(ctx context.Context, email string, entry *entity.CodeEntry, ttl time.Duration) error
	Get(ctx context.Context, email string) (*entity.CodeEntry, error)
	MarkVerified(ctx context.Context, email, code string) (bool, error)
	DeleteIf(ctx context.Context, email, code string) (bool, error)
	Delete(ctx context.Context, email string) error
}

// MemoryCodeRegistry keeps entries in process memory. A restart drops every
// outstanding code, and separate processes do not share entries. Expired
// entries stay until a caller discards them, so ttl is not tracked here.
type MemoryCodeRegistry struct {
	mu      sync.Mutex
	entries map[string]entity.CodeEntry
}

func NewMemoryCodeRegistry() *MemoryCodeRegistry {
	return &MemoryCodeRegistry{
		entries: make(map[string]entity.CodeEntry),
	}
}

func (m *MemoryCodeRegistry) Set(_ context.Context, email string, entry *entity.CodeEntry, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[email] = *entry
	return nil
}

func (m *MemoryCodeRegistry) Get(_ context.Context, email string) (*entity.CodeEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[email]
	if !ok {
		return nil, nil
	}
	// copy out so callers cannot mutate the stored entry
	return &entry, nil
}

func (m *MemoryCodeRegistry) MarkVerified(_ context.Context, email, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[email]
	if !ok || entry.Code != code {
		return false, nil
	}
	entry.Verified = true
	m.entries[email] = entry
	return true, nil
}

func (m *MemoryCodeRegistry) DeleteIf(_ context.Context, email, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[email]
	if !ok || entry.Code != code {
		return false, nil
	}
	delete(m.entries, email)
	return true, nil
}

func (m *MemoryCodeRegistry) Delete(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, email)
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (m *MemoryCodeRegistry) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.entries)
}
