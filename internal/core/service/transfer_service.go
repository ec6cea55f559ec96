package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/clickquest/clicker-system/internal/core/domain"
	"github.com/clickquest/clicker-system/internal/core/ports"
)

// ClickCheckpointer mirrors live click totals into durable storage
// asynchronously. Enqueue must not block the request path.
type ClickCheckpointer interface {
	Enqueue(accountID string, total int64)
}

// TransferService coordinates the account store and the session binder. It is
// the only component that performs multi-step mutations, so all ordering and
// compensation decisions live here.
type TransferService struct {
	accounts    ports.AccountStore
	sessions    ports.SessionBinder
	checkpoints ClickCheckpointer
	log         zerolog.Logger
}

func NewTransferService(
	accounts ports.AccountStore,
	sessions ports.SessionBinder,
	checkpoints ClickCheckpointer,
	log zerolog.Logger,
) *TransferService {
	return &TransferService{
		accounts:    accounts,
		sessions:    sessions,
		checkpoints: checkpoints,
		log:         log,
	}
}

// CreateSession provisions a fresh guest account and binds the session to it.
func (s *TransferService) CreateSession(ctx context.Context, sessionHandle string) (*ports.SessionCredentials, error) {
	created, err := s.accounts.CreateAccount(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Bind(ctx, sessionHandle, created.Account.ID, 0); err != nil {
		return nil, err
	}
	return &ports.SessionCredentials{
		AccountID:  created.Account.ID,
		LoginToken: created.LoginToken,
	}, nil
}

// ResumeSession authenticates an existing account and binds the session to
// it, seeding the live counter from the durable click total. The prior
// session holding the account, if any, is evicted first; an account is bound
// to at most one session at a time.
func (s *TransferService) ResumeSession(ctx context.Context, sessionHandle, accountID, loginToken string) error {
	ok, err := s.accounts.Authenticate(ctx, accountID, loginToken)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.ErrUnauthorized
		}
		return err
	}
	if !ok {
		return domain.ErrUnauthorized
	}

	account, err := s.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}

	if err := s.sessions.UnbindAccount(ctx, accountID); err != nil {
		return err
	}
	if err := s.sessions.Bind(ctx, sessionHandle, accountID, account.ClickTotal); err != nil {
		return err
	}

	s.log.Info().Str("account_id", accountID).Msg("session resumed")
	return nil
}

// CheckSession resolves the session's binding, live click count included.
func (s *TransferService) CheckSession(ctx context.Context, sessionHandle string) (*domain.Binding, error) {
	accountID, err := s.boundAccount(ctx, sessionHandle)
	if err != nil {
		return nil, err
	}
	clicks, err := s.sessions.GetLiveClicks(ctx, sessionHandle)
	if err != nil && !errors.Is(err, domain.ErrNotBound) {
		return nil, err
	}
	return &domain.Binding{
		SessionHandle: sessionHandle,
		AccountID:     accountID,
		LiveClicks:    clicks,
	}, nil
}

// BeginTransfer issues a one-time code for the account bound to the session.
// Issuing again invalidates any previously issued code.
func (s *TransferService) BeginTransfer(ctx context.Context, sessionHandle string) (string, error) {
	accountID, err := s.boundAccount(ctx, sessionHandle)
	if err != nil {
		return "", err
	}
	return s.accounts.IssueTransferCode(ctx, accountID)
}

// RedeemTransfer moves the target account's identity into the calling
// session. Ordering: the source account is deleted before the new binding
// exists, the code is cleared before any click state moves, and the token
// rotates last. A retry after a partial run fails on the consumed code or
// re-runs an idempotent step.
func (s *TransferService) RedeemTransfer(ctx context.Context, sessionHandle, targetAccountID, code string) (string, error) {
	if targetAccountID == "" || code == "" {
		return "", fmt.Errorf("%w: missing account id or transfer code", domain.ErrInvalidArgument)
	}

	sourceAccountID, err := s.sessions.GetBoundAccount(ctx, sessionHandle)
	bound := err == nil
	if err != nil && !errors.Is(err, domain.ErrNotBound) {
		return "", err
	}
	if bound && sourceAccountID == targetAccountID {
		return "", domain.ErrSelfTransfer
	}

	target, err := s.accounts.GetAccount(ctx, targetAccountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return "", domain.ErrInvalidTransfer
		}
		return "", err
	}
	if !target.HasPendingTransfer() ||
		subtle.ConstantTimeCompare([]byte(target.TransferCode), []byte(code)) != 1 {
		return "", domain.ErrInvalidTransfer
	}

	// Capture the carried-over live count before anything mutates.
	liveClicks := target.ClickTotal
	if bound {
		clicks, err := s.sessions.GetLiveClicks(ctx, sessionHandle)
		if err != nil && !errors.Is(err, domain.ErrNotBound) {
			return "", err
		}
		if err == nil {
			liveClicks = clicks
		}

		// The source identity is discarded; its holder moves into the
		// target. A repeat delete after a partial run reports NotFound,
		// which is not a failure here.
		if err := s.accounts.DeleteAccount(ctx, sourceAccountID); err != nil &&
			!errors.Is(err, domain.ErrAccountNotFound) {
			return "", err
		}

		// Drop the source's cache entries too, reverse index included,
		// so no account:<id> key outlives its account. Bind below
		// recreates the forward keys for the target.
		if err := s.sessions.UnbindAccount(ctx, sourceAccountID); err != nil {
			return "", err
		}
	}

	// Consume the code before touching click state so a racing or retried
	// redemption with the same code fails fast.
	if err := s.accounts.ClearTransferCode(ctx, targetAccountID); err != nil &&
		!errors.Is(err, domain.ErrAccountNotFound) {
		return "", err
	}

	// Evict whichever session held the target until now, then bind ours.
	if err := s.sessions.UnbindAccount(ctx, targetAccountID); err != nil {
		return "", err
	}
	if err := s.sessions.Bind(ctx, sessionHandle, targetAccountID, liveClicks); err != nil {
		return "", err
	}

	// Rotating last invalidates the token held by whichever device created
	// the target account.
	newToken, err := s.accounts.RotateLoginToken(ctx, targetAccountID)
	if err != nil {
		return "", err
	}

	s.log.Info().
		Str("target_account_id", targetAccountID).
		Bool("merged_source", bound).
		Msg("transfer redeemed")
	return newToken, nil
}

// AddClicks increments the session's live counter and schedules a best-effort
// durable checkpoint so a later resume on another device starts close to the
// real total.
func (s *TransferService) AddClicks(ctx context.Context, sessionHandle string, count int64) (int64, error) {
	if count <= 0 {
		return 0, fmt.Errorf("%w: click count must be positive, got %d", domain.ErrInvalidArgument, count)
	}
	accountID, err := s.boundAccount(ctx, sessionHandle)
	if err != nil {
		return 0, err
	}
	total, err := s.sessions.AddLiveClicks(ctx, sessionHandle, count)
	if err != nil {
		if errors.Is(err, domain.ErrNotBound) {
			return 0, domain.ErrUnauthenticated
		}
		return 0, err
	}
	s.checkpoints.Enqueue(accountID, total)
	return total, nil
}

func (s *TransferService) LinkExternal(ctx context.Context, sessionHandle, provider, externalID string) error {
	if provider == "" || externalID == "" {
		return fmt.Errorf("%w: missing provider or external id", domain.ErrInvalidArgument)
	}
	accountID, err := s.boundAccount(ctx, sessionHandle)
	if err != nil {
		return err
	}
	return s.accounts.LinkExternal(ctx, accountID, provider, externalID)
}

func (s *TransferService) SetDisplayName(ctx context.Context, sessionHandle, name string) error {
	if name == "" {
		return fmt.Errorf("%w: missing display name", domain.ErrInvalidArgument)
	}
	accountID, err := s.boundAccount(ctx, sessionHandle)
	if err != nil {
		return err
	}
	return s.accounts.SetDisplayName(ctx, accountID, name)
}

// boundAccount resolves the session's account, translating an unbound handle
// into the coordinator-level ErrUnauthenticated.
func (s *TransferService) boundAccount(ctx context.Context, sessionHandle string) (string, error) {
	accountID, err := s.sessions.GetBoundAccount(ctx, sessionHandle)
	if err != nil {
		if errors.Is(err, domain.ErrNotBound) {
			return "", domain.ErrUnauthenticated
		}
		return "", err
	}
	return accountID, nil
}
