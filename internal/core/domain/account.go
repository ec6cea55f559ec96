package domain

import (
	"errors"
	"time"
)

// DefaultDisplayName is assigned to every freshly created guest account
// until the player picks a name.
const DefaultDisplayName = "guest"

// Known external identity providers. The links map is open-ended; these are
// the providers the frontend currently offers.
const (
	ProviderGoogle  = "google"
	ProviderDiscord = "discord"
)

var ErrAccountNotFound = errors.New("account not found")
var ErrNotBound = errors.New("session not bound")
var ErrUnauthenticated = errors.New("no active session binding")
var ErrUnauthorized = errors.New("invalid login token")
var ErrInvalidArgument = errors.New("invalid argument")
var ErrSelfTransfer = errors.New("cannot transfer to own account")
var ErrInvalidTransfer = errors.New("invalid or consumed transfer code")

// Account is the durable identity record. The login token is kept only as a
// bcrypt hash; the plaintext is handed out exactly once, at creation or
// rotation, and is invalid the moment a new one is issued.
type Account struct {
	ID             string            `json:"id" bson:"_id"`
	DisplayName    string            `json:"display_name" bson:"display_name"`
	TransferCode   string            `json:"-" bson:"transfer_code"`
	ExternalLinks  map[string]string `json:"external_links,omitempty" bson:"external_links,omitempty"`
	LoginTokenHash string            `json:"-" bson:"login_token_hash"`
	ClickTotal     int64             `json:"click_total" bson:"click_total"`
	CreatedAt      time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at" bson:"updated_at"`
}

// HasPendingTransfer reports whether a transfer code has been issued and not
// yet redeemed or reset.
func (a *Account) HasPendingTransfer() bool {
	return a.TransferCode != ""
}
