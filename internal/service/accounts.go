// Package service holds the account workflows shared by the local and
// Google sign-in handlers.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/secret-notes/internal/model"
	"github.com/iliyamo/secret-notes/internal/queue"
	"github.com/iliyamo/secret-notes/internal/repository"
)

// ErrInvalidCredentials covers an unknown email, a wrong password, an
// OAuth-only account used with a password, and empty input.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserStore is the subset of repository.UserRepo the workflows need.
type UserStore interface {
	CreateWithNote(ctx context.Context, email, passwordHash, noteBody string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

// PasswordHasher hashes and verifies local passwords.
type PasswordHasher interface {
	Hash(ctx context.Context, plain string) (string, error)
	Verify(ctx context.Context, plain, hash string) (bool, error)
}

// EventPublisher announces new accounts.
type EventPublisher interface {
	PublishAccountCreated(ctx context.Context, ev queue.AccountCreatedEvent) error
}

// Accounts implements registration, local login and external login.
type Accounts struct {
	Users     UserStore
	Hasher    PasswordHasher
	Publisher EventPublisher // optional
	Log       *zap.Logger
}

func NewAccounts(users UserStore, hasher PasswordHasher, pub EventPublisher, log *zap.Logger) *Accounts {
	if log == nil {
		log = zap.NewNop()
	}
	return &Accounts{Users: users, Hasher: hasher, Publisher: pub, Log: log}
}

// Register creates a local account with its seeded note.  An existing
// email yields repository.ErrEmailExists; the unique index decides, not a
// prior lookup.
func (a *Accounts) Register(ctx context.Context, email, password string) (model.User, error) {
	email = repository.NormalizeEmail(email)
	if email == "" || password == "" {
		return model.User{}, ErrInvalidCredentials
	}
	hash, err := a.Hasher.Hash(ctx, password)
	if err != nil {
		return model.User{}, err
	}
	u, err := a.Users.CreateWithNote(ctx, email, hash, model.DefaultNote)
	if err != nil {
		return model.User{}, err
	}
	a.announce(ctx, u, model.ProviderLocal)
	return u, nil
}

// Authenticate checks a local email/password pair.
func (a *Accounts) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	email = repository.NormalizeEmail(email)
	if email == "" || password == "" {
		return model.User{}, ErrInvalidCredentials
	}
	u, err := a.Users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return model.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, err
	}
	if u.External() {
		return model.User{}, ErrInvalidCredentials
	}
	ok, err := a.Hasher.Verify(ctx, password, u.PasswordHash)
	if err != nil {
		return model.User{}, err
	}
	if !ok {
		return model.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// LoginExternal maps an email vouched for by an identity provider to a
// local user, creating it (with the Google sentinel password and a seeded
// note) on first sight.  Two concurrent first logins converge on one row:
// the loser of the insert race re-reads the winner's row.
func (a *Accounts) LoginExternal(ctx context.Context, email string) (model.User, error) {
	email = repository.NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return model.User{}, ErrInvalidCredentials
	}
	u, err := a.Users.GetByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return model.User{}, err
	}

	u, err = a.Users.CreateWithNote(ctx, email, model.GooglePassword, model.DefaultNote)
	if errors.Is(err, repository.ErrEmailExists) {
		u, err = a.Users.GetByEmail(ctx, email)
		if err != nil {
			return model.User{}, fmt.Errorf("reload after duplicate: %w", err)
		}
		return u, nil
	}
	if err != nil {
		return model.User{}, err
	}
	a.announce(ctx, u, model.ProviderGoogle)
	return u, nil
}

// announce publishes best effort; a broker outage never fails sign-up.
func (a *Accounts) announce(ctx context.Context, u model.User, provider string) {
	if a.Publisher == nil {
		return
	}
	ev := queue.AccountCreatedEvent{
		UserID:    u.ID,
		Email:     u.Email,
		Provider:  provider,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := a.Publisher.PublishAccountCreated(ctx, ev); err != nil {
		a.Log.Warn("publish account.created failed", zap.Uint64("user_id", u.ID), zap.Error(err))
	}
}
