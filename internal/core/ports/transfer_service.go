package ports

import (
	"context"

	"github.com/clickquest/clicker-system/internal/core/domain"
)

// SessionCredentials is returned when a session becomes bound to a freshly
// created guest account.
type SessionCredentials struct {
	AccountID  string
	LoginToken string
}

// TransferService orchestrates the session/account binding protocol: guest
// signup, token authentication, and the one-time transfer code flow that
// moves an identity between browser sessions.
type TransferService interface {
	// CreateSession creates a new guest account and binds the session to it
	// with a zero live click count.
	CreateSession(ctx context.Context, sessionHandle string) (*SessionCredentials, error)

	// ResumeSession binds the session to an existing account after
	// verifying its login token. The live counter is seeded from the
	// durable click total. Any prior session holding the account is
	// evicted. Fails with domain.ErrUnauthorized on a bad token or
	// unknown account.
	ResumeSession(ctx context.Context, sessionHandle, accountID, loginToken string) error

	// CheckSession returns the session's current binding, or
	// domain.ErrUnauthenticated when the session is unbound.
	CheckSession(ctx context.Context, sessionHandle string) (*domain.Binding, error)

	// BeginTransfer issues a one-time transfer code for the account bound
	// to the session. Fails with domain.ErrUnauthenticated when unbound.
	BeginTransfer(ctx context.Context, sessionHandle string) (string, error)

	// RedeemTransfer merges the calling session into targetAccountID,
	// consuming the code. Returns the target's rotated login token.
	RedeemTransfer(ctx context.Context, sessionHandle, targetAccountID, code string) (newToken string, err error)

	// AddClicks increments the session's live counter by count (> 0) and
	// returns the new live total. The durable click total is mirrored
	// asynchronously, best effort.
	AddClicks(ctx context.Context, sessionHandle string, count int64) (int64, error)

	// LinkExternal attaches an external identity to the bound account.
	LinkExternal(ctx context.Context, sessionHandle, provider, externalID string) error

	// SetDisplayName renames the bound account.
	SetDisplayName(ctx context.Context, sessionHandle, name string) error
}
