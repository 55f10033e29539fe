package credentials

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
)

// PasswordUpdater persists a new password hash for a principal.
type PasswordUpdater interface {
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
}

// Store ties a Hasher to the place principal hashes are persisted.
type Store struct {
	hasher *Hasher

	// dummy is compared against when the principal does not exist, so that
	// unknown-user and wrong-secret paths cost the same.
	dummyOnce sync.Once
	dummy     string
	dummyErr  error
}

// NewStore returns a Store backed by h.
func NewStore(h *Hasher) *Store {
	return &Store{hasher: h}
}

// Hash validates and hashes plaintext without persisting it.
func (s *Store) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := ValidateSecret(plaintext); err != nil {
		return "", err
	}
	return s.hasher.Hash(ctx, plaintext)
}

// SetSecret hashes plaintext and stores it as userID's password. Nothing
// else about the principal changes.
func (s *Store) SetSecret(ctx context.Context, repo PasswordUpdater, userID, plaintext string) error {
	hash, err := s.Hash(ctx, plaintext)
	if err != nil {
		return err
	}
	if err := repo.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("store password hash: %w", err)
	}
	return nil
}

// VerifySecret reports whether plaintext is u's secret. A nil u is compared
// against a dummy hash and always yields false.
func (s *Store) VerifySecret(ctx context.Context, u *models.User, plaintext string) (bool, error) {
	if err := ValidateSecret(plaintext); err != nil {
		return false, err
	}
	if u == nil {
		s.dummyOnce.Do(func() {
			s.dummy, s.dummyErr = s.hasher.Hash(context.WithoutCancel(ctx), "vidtube-dummy-secret")
		})
		if s.dummyErr != nil {
			return false, s.dummyErr
		}
		_, err := s.hasher.Verify(ctx, s.dummy, plaintext)
		return false, err
	}
	return s.hasher.Verify(ctx, u.PasswordHash, plaintext)
}

// ValidateSecret rejects secrets bcrypt cannot hash faithfully.
func ValidateSecret(plaintext string) error {
	switch {
	case plaintext == "":
		return common.NewValidationError("password", "is required")
	case len(plaintext) > MaxSecretLen:
		return common.NewValidationError("password", fmt.Sprintf("must be at most %d bytes", MaxSecretLen))
	}
	return nil
}
