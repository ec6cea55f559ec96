package ports

import (
	"context"

	"github.com/clickquest/clicker-system/internal/core/domain"
)

// AccountRepository defines persistence operations for account records.
// Implementations translate "document missing" into domain.ErrAccountNotFound
// so the service layer never sees driver-specific errors for that case.
type AccountRepository interface {
	Insert(ctx context.Context, account *domain.Account) error
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	// Exists is used by the id generator's collision check.
	Exists(ctx context.Context, accountID string) (bool, error)
	Delete(ctx context.Context, accountID string) error

	SetTransferCode(ctx context.Context, accountID, code string) error
	SetLoginTokenHash(ctx context.Context, accountID, hash string) error
	SetClickTotal(ctx context.Context, accountID string, total int64) error
	IncClickTotal(ctx context.Context, accountID string, delta int64) error
	SetExternalLink(ctx context.Context, accountID, provider, externalID string) error
	SetDisplayName(ctx context.Context, accountID, name string) error
}
