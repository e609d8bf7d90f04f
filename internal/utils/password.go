package utils

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/secret-notes/internal/model"
)

// DefaultBcryptCost is the work factor used when none is configured.
const DefaultBcryptCost = 10

// Hasher hashes and verifies local passwords with bcrypt.  bcrypt is slow
// by design, so both operations run on their own goroutine and return early
// when ctx is cancelled.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher using cost, or DefaultBcryptCost when cost is
// outside bcrypt's accepted range.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the bcrypt hash of plain.
func (h *Hasher) Hash(ctx context.Context, plain string) (string, error) {
	b, err := await(ctx, func() ([]byte, error) {
		return bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	})
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Verify compares plain against hash.  A mismatch is (false, nil); any
// other failure, such as a malformed hash or a cancelled context, is
// returned as an error so callers can tell a fault from a wrong password.
// The Google sentinel never verifies.
func (h *Hasher) Verify(ctx context.Context, plain, hash string) (bool, error) {
	if hash == model.GooglePassword {
		return false, nil
	}
	_, err := await(ctx, func() ([]byte, error) {
		return nil, bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("verify password: %w", err)
	}
}

type result struct {
	b   []byte
	err error
}

func await(ctx context.Context, fn func() ([]byte, error)) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	done := make(chan result, 1)
	go func() {
		b, err := fn()
		done <- result{b, err}
	}()
	select {
	case r := <-done:
		return r.b, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
