package service

import (
	"context"
	"strconv"
	"sync"

	"github.com/clickquest/clicker-system/internal/core/domain"
)

// stubAccountRepo is a map-backed ports.AccountRepository.
type stubAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	clone := *a
	if a.ExternalLinks != nil {
		clone.ExternalLinks = make(map[string]string, len(a.ExternalLinks))
		for k, v := range a.ExternalLinks {
			clone.ExternalLinks[k] = v
		}
	}
	return &clone
}

func (r *stubAccountRepo) Insert(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[account.ID] = cloneAccount(account)
	return nil
}

func (r *stubAccountRepo) Get(_ context.Context, accountID string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[accountID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) Exists(_ context.Context, accountID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.accounts[accountID]
	return ok, nil
}

func (r *stubAccountRepo) Delete(_ context.Context, accountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[accountID]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(r.accounts, accountID)
	return nil
}

func (r *stubAccountRepo) update(accountID string, fn func(*domain.Account)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[accountID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	fn(a)
	return nil
}

func (r *stubAccountRepo) SetTransferCode(_ context.Context, accountID, code string) error {
	return r.update(accountID, func(a *domain.Account) { a.TransferCode = code })
}

func (r *stubAccountRepo) SetLoginTokenHash(_ context.Context, accountID, hash string) error {
	return r.update(accountID, func(a *domain.Account) { a.LoginTokenHash = hash })
}

func (r *stubAccountRepo) SetClickTotal(_ context.Context, accountID string, total int64) error {
	return r.update(accountID, func(a *domain.Account) { a.ClickTotal = total })
}

func (r *stubAccountRepo) IncClickTotal(_ context.Context, accountID string, delta int64) error {
	return r.update(accountID, func(a *domain.Account) { a.ClickTotal += delta })
}

func (r *stubAccountRepo) SetExternalLink(_ context.Context, accountID, provider, externalID string) error {
	return r.update(accountID, func(a *domain.Account) {
		if a.ExternalLinks == nil {
			a.ExternalLinks = make(map[string]string)
		}
		a.ExternalLinks[provider] = externalID
	})
}

func (r *stubAccountRepo) SetDisplayName(_ context.Context, accountID, name string) error {
	return r.update(accountID, func(a *domain.Account) { a.DisplayName = name })
}

// memCache is a map-backed ports.KeyValueCache with the same atomicity
// guarantees as Redis within a single process.
type memCache struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemCache() *memCache {
	return &memCache{values: make(map[string]string)}
}

func (c *memCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.values, k)
	}
	return nil
}

func (c *memCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.values[key]
	return ok, nil
}

func (c *memCache) IncrBy(_ context.Context, key string, delta int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	current, _ := strconv.ParseInt(c.values[key], 10, 64)
	current += delta
	c.values[key] = strconv.FormatInt(current, 10)
	return current, nil
}

// recordingCheckpointer captures checkpoint enqueues for assertions.
type recordingCheckpointer struct {
	mu      sync.Mutex
	entries []checkpointEntry
}

type checkpointEntry struct {
	accountID string
	total     int64
}

func (r *recordingCheckpointer) Enqueue(accountID string, total int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, checkpointEntry{accountID: accountID, total: total})
}

func (r *recordingCheckpointer) last() (checkpointEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return checkpointEntry{}, false
	}
	return r.entries[len(r.entries)-1], true
}
