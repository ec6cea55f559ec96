package ports

import (
	"context"

	"github.com/clickquest/clicker-system/internal/core/domain"
)

// NewAccount is returned by CreateAccount and by RotateLoginToken callers
// that need the plaintext credential. The token is not recoverable later:
// only its hash is stored.
type NewAccount struct {
	Account    *domain.Account
	LoginToken string
}

// AccountStore owns durable account records: identity, click total, rotating
// login token, pending transfer code, and linked external identities.
type AccountStore interface {
	// CreateAccount generates a fresh unique account id and login token,
	// persists the record, and returns it with the plaintext token.
	CreateAccount(ctx context.Context) (*NewAccount, error)
	// DeleteAccount removes the record permanently. Used only when an
	// account is superseded by a transfer target.
	DeleteAccount(ctx context.Context, accountID string) error
	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)

	// IssueTransferCode stores a fresh one-time code, invalidating any
	// previously pending code for the account.
	IssueTransferCode(ctx context.Context, accountID string) (string, error)
	// ClearTransferCode resets the pending code. Idempotent.
	ClearTransferCode(ctx context.Context, accountID string) error

	AddClicks(ctx context.Context, accountID string, delta int64) error
	SetClickTotal(ctx context.Context, accountID string, total int64) error

	LinkExternal(ctx context.Context, accountID, provider, externalID string) error
	SetDisplayName(ctx context.Context, accountID, name string) error

	// RotateLoginToken replaces the credential and returns the new
	// plaintext. The previous token is invalid immediately.
	RotateLoginToken(ctx context.Context, accountID string) (string, error)
	// Authenticate reports whether token is the account's current login
	// token. Returns domain.ErrAccountNotFound when the account is absent.
	Authenticate(ctx context.Context, accountID, token string) (bool, error)
}
