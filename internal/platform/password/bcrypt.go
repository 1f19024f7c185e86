// Package password provides salted one-way hashing of account passwords.
package password

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"account_backend/internal/feature/account/domain"
)

// MaxLength はbcryptが受け付ける平文の最大バイト数です。
const MaxLength = 72

// ErrEmptyPassword is returned when hashing an empty string.
var ErrEmptyPassword = errors.New("password must not be empty")

// BcryptHasher hashes passwords with bcrypt. The salt is generated per call
// and embedded in the digest together with the cost.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher with the given work factor.
// Costs outside bcrypt's accepted range fall back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Cost returns the configured work factor.
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash returns the bcrypt digest of plaintext. Plaintexts longer than
// MaxLength bytes are rejected with a validation error.
// bcrypt is CPU bound and cannot be interrupted, so it runs on its own
// goroutine and Hash returns early with ctx.Err() once the deadline passes.
func (h *BcryptHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	if len(plaintext) > MaxLength {
		return "", domain.Validation(domain.MsgPasswordTooLong)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		digest []byte
		err    error
	}
	done := make(chan result, 1)
	go func() {
		d, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
		done <- result{digest: d, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		if errors.Is(r.err, bcrypt.ErrPasswordTooLong) {
			return "", domain.Validation(domain.MsgPasswordTooLong)
		}
		if r.err != nil {
			return "", fmt.Errorf("failed to hash password: %w", r.err)
		}
		return string(r.digest), nil
	}
}

// Verify reports whether plaintext matches digest. It never returns an error:
// a mismatch, a malformed digest and an expired context all yield false.
func (h *BcryptHasher) Verify(ctx context.Context, plaintext, digest string) bool {
	if ctx.Err() != nil {
		return false
	}

	done := make(chan bool, 1)
	go func() {
		done <- bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
	}()

	select {
	case <-ctx.Done():
		return false
	case ok := <-done:
		return ok
	}
}
