package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/clickquest/clicker-system/internal/core/domain"
	"github.com/clickquest/clicker-system/internal/core/ports"
)

// Cache key layout, namespaced further by the cache's configured prefix:
//
//	session:<handle> -> bound account id
//	clicks:<handle>  -> live click counter
//	account:<id>     -> handle currently holding the account (reverse index)
const (
	keySession = "session:"
	keyClicks  = "clicks:"
	keyAccount = "account:"
)

// SessionBinder implements ports.SessionBinder over a key/value cache.
type SessionBinder struct {
	cache ports.KeyValueCache
	log   zerolog.Logger
}

func NewSessionBinder(cache ports.KeyValueCache, log zerolog.Logger) *SessionBinder {
	return &SessionBinder{cache: cache, log: log}
}

func (b *SessionBinder) IsBound(ctx context.Context, sessionHandle string) (bool, error) {
	return b.cache.Exists(ctx, keySession+sessionHandle)
}

// Bind unconditionally (re)creates the forward entry, the live counter, and
// the reverse entry. A prior session holding the same account is not evicted
// here; that is the coordinator's call.
func (b *SessionBinder) Bind(ctx context.Context, sessionHandle, accountID string, initialClicks int64) error {
	if err := b.cache.Set(ctx, keySession+sessionHandle, accountID); err != nil {
		return fmt.Errorf("bind session: %w", err)
	}
	if err := b.cache.Set(ctx, keyClicks+sessionHandle, strconv.FormatInt(initialClicks, 10)); err != nil {
		return fmt.Errorf("bind session: %w", err)
	}
	if err := b.cache.Set(ctx, keyAccount+accountID, sessionHandle); err != nil {
		return fmt.Errorf("bind session: %w", err)
	}
	b.log.Debug().Str("account_id", accountID).Int64("clicks", initialClicks).Msg("session bound")
	return nil
}

func (b *SessionBinder) UnbindAccount(ctx context.Context, accountID string) error {
	handle, ok, err := b.cache.Get(ctx, keyAccount+accountID)
	if err != nil {
		return fmt.Errorf("unbind account: %w", err)
	}
	if !ok {
		return nil
	}
	if err := b.cache.Delete(ctx, keySession+handle, keyClicks+handle, keyAccount+accountID); err != nil {
		return fmt.Errorf("unbind account: %w", err)
	}
	b.log.Debug().Str("account_id", accountID).Msg("stale session unbound")
	return nil
}

func (b *SessionBinder) GetBoundAccount(ctx context.Context, sessionHandle string) (string, error) {
	accountID, ok, err := b.cache.Get(ctx, keySession+sessionHandle)
	if err != nil {
		return "", fmt.Errorf("get bound account: %w", err)
	}
	if !ok {
		return "", domain.ErrNotBound
	}
	return accountID, nil
}

func (b *SessionBinder) GetLiveClicks(ctx context.Context, sessionHandle string) (int64, error) {
	raw, ok, err := b.cache.Get(ctx, keyClicks+sessionHandle)
	if err != nil {
		return 0, fmt.Errorf("get live clicks: %w", err)
	}
	if !ok {
		return 0, domain.ErrNotBound
	}
	clicks, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("get live clicks: corrupt counter %q: %w", raw, err)
	}
	return clicks, nil
}

// AddLiveClicks relies on the cache's atomic increment, so concurrent calls
// for the same handle never lose updates.
func (b *SessionBinder) AddLiveClicks(ctx context.Context, sessionHandle string, delta int64) (int64, error) {
	if delta < 0 {
		return 0, fmt.Errorf("%w: negative click delta %d", domain.ErrInvalidArgument, delta)
	}
	bound, err := b.IsBound(ctx, sessionHandle)
	if err != nil {
		return 0, fmt.Errorf("add live clicks: %w", err)
	}
	if !bound {
		return 0, domain.ErrNotBound
	}
	total, err := b.cache.IncrBy(ctx, keyClicks+sessionHandle, delta)
	if err != nil {
		return 0, fmt.Errorf("add live clicks: %w", err)
	}
	return total, nil
}
