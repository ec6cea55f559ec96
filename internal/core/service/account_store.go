package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/clickquest/clicker-system/internal/core/domain"
	"github.com/clickquest/clicker-system/internal/core/ports"
)

const (
	loginTokenBytes   = 32
	transferCodeBytes = 16
)

// AccountStore implements ports.AccountStore on top of an AccountRepository.
type AccountStore struct {
	repo ports.AccountRepository
	log  zerolog.Logger
}

func NewAccountStore(repo ports.AccountRepository, log zerolog.Logger) *AccountStore {
	return &AccountStore{repo: repo, log: log}
}

// CreateAccount persists a fresh guest account. The id is collision-checked
// against the store before use; in practice the first candidate wins.
func (s *AccountStore) CreateAccount(ctx context.Context) (*ports.NewAccount, error) {
	var id string
	for {
		id = uuid.NewString()
		taken, err := s.repo.Exists(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("create account: %w", err)
		}
		if !taken {
			break
		}
		s.log.Warn().Str("account_id", id).Msg("account id collision, regenerating")
	}

	token, err := randomSecret(loginTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:             id,
		DisplayName:    domain.DefaultDisplayName,
		LoginTokenHash: string(hash),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Insert(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.log.Info().Str("account_id", id).Msg("account created")
	return &ports.NewAccount{Account: account, LoginToken: token}, nil
}

func (s *AccountStore) DeleteAccount(ctx context.Context, accountID string) error {
	if err := s.repo.Delete(ctx, accountID); err != nil {
		return err
	}
	s.log.Info().Str("account_id", accountID).Msg("account deleted")
	return nil
}

func (s *AccountStore) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.repo.Get(ctx, accountID)
}

// IssueTransferCode overwrites any pending code, invalidating it.
func (s *AccountStore) IssueTransferCode(ctx context.Context, accountID string) (string, error) {
	code, err := randomSecret(transferCodeBytes)
	if err != nil {
		return "", fmt.Errorf("issue transfer code: %w", err)
	}
	if err := s.repo.SetTransferCode(ctx, accountID, code); err != nil {
		return "", err
	}
	s.log.Info().Str("account_id", accountID).Msg("transfer code issued")
	return code, nil
}

func (s *AccountStore) ClearTransferCode(ctx context.Context, accountID string) error {
	return s.repo.SetTransferCode(ctx, accountID, "")
}

func (s *AccountStore) AddClicks(ctx context.Context, accountID string, delta int64) error {
	if delta < 0 {
		return fmt.Errorf("%w: negative click delta %d", domain.ErrInvalidArgument, delta)
	}
	return s.repo.IncClickTotal(ctx, accountID, delta)
}

func (s *AccountStore) SetClickTotal(ctx context.Context, accountID string, total int64) error {
	if total < 0 {
		return fmt.Errorf("%w: negative click total %d", domain.ErrInvalidArgument, total)
	}
	return s.repo.SetClickTotal(ctx, accountID, total)
}

func (s *AccountStore) LinkExternal(ctx context.Context, accountID, provider, externalID string) error {
	return s.repo.SetExternalLink(ctx, accountID, provider, externalID)
}

func (s *AccountStore) SetDisplayName(ctx context.Context, accountID, name string) error {
	return s.repo.SetDisplayName(ctx, accountID, name)
}

// RotateLoginToken replaces the credential. The previous token stops
// authenticating the moment the new hash is stored.
func (s *AccountStore) RotateLoginToken(ctx context.Context, accountID string) (string, error) {
	token, err := randomSecret(loginTokenBytes)
	if err != nil {
		return "", fmt.Errorf("rotate login token: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("rotate login token: %w", err)
	}
	if err := s.repo.SetLoginTokenHash(ctx, accountID, string(hash)); err != nil {
		return "", err
	}
	s.log.Info().Str("account_id", accountID).Msg("login token rotated")
	return token, nil
}

func (s *AccountStore) Authenticate(ctx context.Context, accountID, token string) (bool, error) {
	account, err := s.repo.Get(ctx, accountID)
	if err != nil {
		return false, err
	}
	return bcrypt.CompareHashAndPassword([]byte(account.LoginTokenHash), []byte(token)) == nil, nil
}

func randomSecret(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("random secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
