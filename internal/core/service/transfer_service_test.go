package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/clickquest/clicker-system/internal/core/domain"
)

type transferFixture struct {
	svc         *TransferService
	accounts    *AccountStore
	sessions    *SessionBinder
	repo        *stubAccountRepo
	checkpoints *recordingCheckpointer
}

func newTransferFixture() *transferFixture {
	repo := newStubAccountRepo()
	accounts := NewAccountStore(repo, zerolog.Nop())
	sessions := NewSessionBinder(newMemCache(), zerolog.Nop())
	checkpoints := &recordingCheckpointer{}
	return &transferFixture{
		svc:         NewTransferService(accounts, sessions, checkpoints, zerolog.Nop()),
		accounts:    accounts,
		sessions:    sessions,
		repo:        repo,
		checkpoints: checkpoints,
	}
}

func TestTransferService_CreateSession(t *testing.T) {
	f := newTransferFixture()
	ctx := context.Background()

	creds, err := f.svc.CreateSession(ctx, "h1")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if creds.AccountID == "" || creds.LoginToken == "" {
		t.Fatalf("expected credentials, got %+v", creds)
	}

	accountID, err := f.sessions.GetBoundAccount(ctx, "h1")
	if err != nil || accountID != creds.AccountID {
		t.Fatalf("session not bound to new account: %q, %v", accountID, err)
	}
	if clicks, _ := f.sessions.GetLiveClicks(ctx, "h1"); clicks != 0 {
		t.Fatalf("new session must start at zero clicks, got %d", clicks)
	}
}

func TestTransferService_ResumeSession(t *testing.T) {
	f := newTransferFixture()
	ctx := context.Background()

	creds, _ := f.svc.CreateSession(ctx, "h1")
	if err := f.accounts.SetClickTotal(ctx, creds.AccountID, 77); err != nil {
		t.Fatalf("SetClickTotal: %v", err)
	}

	// Resume on a second device.
	if err := f.svc.ResumeSession(ctx, "h2", creds.AccountID, creds.LoginToken); err != nil {
		t.Fatalf("ResumeSession: %v", err)
	}

	accountID, err := f.sessions.GetBoundAccount(ctx, "h2")
	if err != nil || accountID != creds.AccountID {
		t.Fatalf("h2 not bound: %q, %v", accountID, err)
	}
	if clicks, _ := f.sessions.GetLiveClicks(ctx, "h2"); clicks != 77 {
		t.Fatalf("live counter must seed from the durable total, got %d", clicks)
	}

	// The first device's binding is evicted, not silently orphaned.
	if bound, _ := f.sessions.IsBound(ctx, "h1"); bound {
		t.Fatalf("prior session must be unbound after resume elsewhere")
	}
}

func TestTransferService_ResumeSession_BadCredentials(t *testing.T) {
	f := newTransferFixture()
	ctx := context.Background()

	creds, _ := f.svc.CreateSession(ctx, "h1")

	if err := f.svc.ResumeSession(ctx, "h2", creds.AccountID, "wrong-token"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for bad token, got %v", err)
	}
	if err := f.svc.ResumeSession(ctx, "h2", "missing-account", creds.LoginToken); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unknown account, got %v", err)
	}
	if bound, _ := f.sessions.IsBound(ctx, "h2"); bound {
		t.Fatalf("failed resume must not bind the session")
	}
}

func TestTransferService_CheckSession(t *testing.T) {
	f := newTransferFixture()
	ctx := context.Background()

	if _, err := f.svc.CheckSession(ctx, "h1"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for unbound session, got %v", err)
	}

	creds, _ := f.svc.CreateSession(ctx, "h1")
	if _, err := f.svc.AddClicks(ctx, "h1", 3); err != nil {
		t.Fatalf("AddClicks: %v", err)
	}

	binding, err := f.svc.CheckSession(ctx, "h1")
	if err != nil {
		t.Fatalf("CheckSession: %v", err)
	}
	if binding.AccountID != creds.AccountID || binding.LiveClicks != 3 {
		t.Fatalf("binding = %+v, want account %q with 3 clicks", binding, creds.AccountID)
	}
}

func TestTransferService_BeginTransfer_RequiresBinding(t *testing.T) {
	f := newTransferFixture()

	if _, err := f.svc.BeginTransfer(context.Background(), "unbound"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestTransferService_RedeemWithFreshSession(t *testing.T) {
	f := newTransferFixture()
	ctx := context.Background()

	creds, _ := f.svc.CreateSession(ctx, "h1")
	code, err := f.svc.BeginTransfer(ctx, "h1")
	if err != nil {
		t.Fatalf("BeginTransfer: %v", err)
	}

	// A fresh, never-bound session redeems the code.
	newToken, err := f.svc.RedeemTransfer(ctx, "h2", creds.AccountID, code)
	if err != nil {
		t.Fatalf("RedeemTransfer: %v", err)
	}
	if newToken == creds.LoginToken {
		t.Fatalf("redeeming must rotate the login token")
	}

	accountID, err := f.sessions.GetBoundAccount(ctx, "h2")
	if err != nil || accountID != creds.AccountID {
		t.Fatalf("h2 not bound to target: %q, %v", accountID, err)
	}
	if clicks, _ := f.sessions.GetLiveClicks(ctx, "h2"); clicks != 0 {
		t.Fatalf("fresh session seeds from the durable total (0), got %d", clicks)
	}

	// Old token is dead, new one works.
	if ok, _ := f.accounts.Authenticate(ctx, creds.AccountID, creds.LoginToken); ok {
		t.Fatalf("original token must be invalid after the transfer")
	}
	if ok, _ := f.accounts.Authenticate(ctx, creds.AccountID, newToken); !ok {
		t.Fatalf("rotated token must authenticate")
	}
}

func TestTransferService_RedeemMergesBoundSession(t *testing.T) {
	f := newTransferFixture()
	ctx := context.Background()

	target, _ := f.svc.CreateSession(ctx, "h1")
	code, _ := f.svc.BeginTransfer(ctx, "h1")

	// A second guest session with 5 anonymous clicks redeems into target.
	source, _ := f.svc.CreateSession(ctx, "h2")
	if _, err := f.svc.AddClicks(ctx, "h2", 5); err != nil {
		t.Fatalf("AddClicks: %v", err)
	}

	if _, err := f.svc.RedeemTransfer(ctx, "h2", target.AccountID, code); err != nil {
		t.Fatalf("RedeemTransfer: %v", err)
	}

	// Source account identity is discarded.
	if _, err := f.accounts.GetAccount(ctx, source.AccountID); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("source account must be deleted, got %v", err)
	}

	// The session keeps its anonymously earned clicks.
	accountID, _ := f.sessions.GetBoundAccount(ctx, "h2")
	if accountID != target.AccountID {
		t.Fatalf("h2 bound to %q, want target", accountID)
	}
	if clicks, _ := f.sessions.GetLiveClicks(ctx, "h2"); clicks != 5 {
		t.Fatalf("live clicks = %d, want 5 carried over", clicks)
	}

	// Transfer code is consumed.
	stored, _ := f.repo.Get(ctx, target.AccountID)
	if stored.HasPendingTransfer() {
		t.Fatalf("transfer code must be cleared on redemption")
	}
}

func TestTransferService_RedeemDropsSourceReverseIndex(t *testing.T) {
	f := newTransferFixture()
	ctx := context.Background()

	target, _ := f.svc.CreateSession(ctx, "h1")
	code, _ := f.svc.BeginTransfer(ctx, "h1")

	source, _ := f.svc.CreateSession(ctx, "h2")
	if _, err := f.svc.RedeemTransfer(ctx, "h2", target.AccountID, code); err != nil {
		t.Fatalf("RedeemTransfer: %v", err)
	}

	// No reverse entry may outlive the deleted source account: unbinding
	// the dead id must be a no-op, not tear down h2's new binding.
	if err := f.sessions.UnbindAccount(ctx, source.AccountID); err != nil {
		t.Fatalf("UnbindAccount on deleted source: %v", err)
	}
	if accountID, err := f.sessions.GetBoundAccount(ctx, "h2"); err != nil || accountID != target.AccountID {
		t.Fatalf("h2 binding lost to a stale reverse entry: %q, %v", accountID, err)
	}
}

func TestTransferService_RedeemIsOneTime(t *testing.T) {
	f := newTransferFixture()
	ctx := context.Background()

	target, _ := f.svc.CreateSession(ctx, "h1")
	code, _ := f.svc.BeginTransfer(ctx, "h1")

	if _, err := f.svc.RedeemTransfer(ctx, "h2", target.AccountID, code); err != nil {
		t.Fatalf("first redemption: %v", err)
	}
	if _, err := f.svc.RedeemTransfer(ctx, "h3", target.AccountID, code); !errors.Is(err, domain.ErrInvalidTransfer) {
		t.Fatalf("second redemption must fail with ErrInvalidTransfer, got %v", err)
	}
}

func TestTransferService_ReissueInvalidatesPriorCode(t *testing.T) {
	f := newTransferFixture()
	ctx := context.Background()

	target, _ := f.svc.CreateSession(ctx, "h1")
	first, _ := f.svc.BeginTransfer(ctx, "h1")
	if _, err := f.svc.BeginTransfer(ctx, "h1"); err != nil {
		t.Fatalf("second BeginTransfer: %v", err)
	}

	if _, err := f.svc.RedeemTransfer(ctx, "h2", target.AccountID, first); !errors.Is(err, domain.ErrInvalidTransfer) {
		t.Fatalf("stale code must fail with ErrInvalidTransfer, got %v", err)
	}
}

func TestTransferService_RedeemRejectsSelfAndBadInput(t *testing.T) {
	f := newTransferFixture()
	ctx := context.Background()

	creds, _ := f.svc.CreateSession(ctx, "h1")
	code, _ := f.svc.BeginTransfer(ctx, "h1")

	if _, err := f.svc.RedeemTransfer(ctx, "h1", creds.AccountID, code); !errors.Is(err, domain.ErrSelfTransfer) {
		t.Fatalf("expected ErrSelfTransfer, got %v", err)
	}
	if _, err := f.svc.RedeemTransfer(ctx, "h1", "", code); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for missing account id, got %v", err)
	}
	if _, err := f.svc.RedeemTransfer(ctx, "h1", creds.AccountID, ""); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for missing code, got %v", err)
	}
}

func TestTransferService_RedeemWrongCodeLeavesStateUntouched(t *testing.T) {
	f := newTransferFixture()
	ctx := context.Background()

	target, _ := f.svc.CreateSession(ctx, "h1")
	code, _ := f.svc.BeginTransfer(ctx, "h1")

	source, _ := f.svc.CreateSession(ctx, "h2")
	if _, err := f.svc.RedeemTransfer(ctx, "h2", target.AccountID, "not-the-code"); !errors.Is(err, domain.ErrInvalidTransfer) {
		t.Fatalf("expected ErrInvalidTransfer, got %v", err)
	}

	// Nothing moved: source account intact, both bindings intact, code pending.
	if _, err := f.accounts.GetAccount(ctx, source.AccountID); err != nil {
		t.Fatalf("source account must survive a failed redemption: %v", err)
	}
	if accountID, _ := f.sessions.GetBoundAccount(ctx, "h2"); accountID != source.AccountID {
		t.Fatalf("h2 binding changed to %q", accountID)
	}
	stored, _ := f.repo.Get(ctx, target.AccountID)
	if stored.TransferCode != code {
		t.Fatalf("pending code must survive a failed redemption")
	}
}

func TestTransferService_AddClicks(t *testing.T) {
	f := newTransferFixture()
	ctx := context.Background()

	creds, _ := f.svc.CreateSession(ctx, "h1")

	total, err := f.svc.AddClicks(ctx, "h1", 4)
	if err != nil {
		t.Fatalf("AddClicks: %v", err)
	}
	if total != 4 {
		t.Fatalf("total = %d, want 4", total)
	}

	// The new live total is scheduled for a durable checkpoint.
	entry, ok := f.checkpoints.last()
	if !ok {
		t.Fatalf("expected a checkpoint enqueue")
	}
	if entry.accountID != creds.AccountID || entry.total != 4 {
		t.Fatalf("checkpoint = %+v, want {%s 4}", entry, creds.AccountID)
	}
}

func TestTransferService_AddClicks_Validation(t *testing.T) {
	f := newTransferFixture()
	ctx := context.Background()

	if _, err := f.svc.AddClicks(ctx, "unbound", 1); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	if _, err := f.svc.CreateSession(ctx, "h1"); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if _, err := f.svc.AddClicks(ctx, "h1", -3); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for -3, got %v", err)
	}
	if _, err := f.svc.AddClicks(ctx, "h1", 0); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for 0, got %v", err)
	}
	if clicks, _ := f.sessions.GetLiveClicks(ctx, "h1"); clicks != 0 {
		t.Fatalf("rejected counts must not change the counter, got %d", clicks)
	}
	if _, ok := f.checkpoints.last(); ok {
		t.Fatalf("rejected counts must not checkpoint")
	}
}

func TestTransferService_LinkExternal(t *testing.T) {
	f := newTransferFixture()
	ctx := context.Background()

	creds, _ := f.svc.CreateSession(ctx, "h1")

	if err := f.svc.LinkExternal(ctx, "h1", domain.ProviderDiscord, "discord-123"); err != nil {
		t.Fatalf("LinkExternal: %v", err)
	}
	stored, _ := f.repo.Get(ctx, creds.AccountID)
	if stored.ExternalLinks[domain.ProviderDiscord] != "discord-123" {
		t.Fatalf("discord link not stored: %+v", stored.ExternalLinks)
	}

	if err := f.svc.LinkExternal(ctx, "unbound", domain.ProviderGoogle, "x"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if err := f.svc.LinkExternal(ctx, "h1", "", "x"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestTransferService_SetDisplayName(t *testing.T) {
	f := newTransferFixture()
	ctx := context.Background()

	creds, _ := f.svc.CreateSession(ctx, "h1")

	if err := f.svc.SetDisplayName(ctx, "h1", "clickmaster"); err != nil {
		t.Fatalf("SetDisplayName: %v", err)
	}
	stored, _ := f.repo.Get(ctx, creds.AccountID)
	if stored.DisplayName != "clickmaster" {
		t.Fatalf("display name = %q", stored.DisplayName)
	}

	if err := f.svc.SetDisplayName(ctx, "h1", ""); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for empty name, got %v", err)
	}
}
