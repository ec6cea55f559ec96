package ports

import "context"

// SessionBinder owns the ephemeral mapping between live session handles and
// account ids, plus the per-session live click counter. If a handle is bound
// to an account, the reverse index resolves that account back to the same
// handle (bidirectional consistency).
//
// Bind does not evict a prior session holding the same account; only the
// transfer coordinator knows whether that session's live count must be
// flushed first, so de-duplication is its job.
type SessionBinder interface {
	IsBound(ctx context.Context, sessionHandle string) (bool, error)
	Bind(ctx context.Context, sessionHandle, accountID string, initialClicks int64) error
	// UnbindAccount removes the binding currently holding accountID, if
	// any. No-op when the account is unbound.
	UnbindAccount(ctx context.Context, accountID string) error
	// GetBoundAccount returns domain.ErrNotBound for an unbound handle.
	GetBoundAccount(ctx context.Context, sessionHandle string) (string, error)
	GetLiveClicks(ctx context.Context, sessionHandle string) (int64, error)
	// AddLiveClicks atomically increments the live counter and returns the
	// new value.
	AddLiveClicks(ctx context.Context, sessionHandle string, delta int64) (int64, error)
}
