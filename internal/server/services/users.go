package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/logging"
	"github.com/dmitrijs2005/vidtube/internal/server/assets"
	"github.com/dmitrijs2005/vidtube/internal/server/credentials"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/users"
)

// RegisterInput carries a registration request. AvatarPath and CoverImagePath
// point at locally staged files and may be empty.
type RegisterInput struct {
	DisplayName    string
	Email          string
	Username       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

// LoginInput identifies a principal by username or email.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// UserService implements account operations on top of the credential store
// and the session registry.
type UserService struct {
	repomanager repomanager.RepositoryManager
	credentials *credentials.Store
	sessions    *SessionRegistry
	assets      assets.Store
	logger      logging.Logger
}

func NewUserService(m repomanager.RepositoryManager, creds *credentials.Store, sessions *SessionRegistry,
	store assets.Store, logger logging.Logger) *UserService {
	return &UserService{
		repomanager: m,
		credentials: creds,
		sessions:    sessions,
		assets:      store,
		logger:      logger.With("module", "users"),
	}
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return common.NewValidationError(field, "is required")
	}
	return nil
}

// Register creates a principal and returns its public projection.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	for _, f := range []struct{ name, value string }{
		{"displayName", in.DisplayName},
		{"email", in.Email},
		{"username", in.Username},
		{"password", in.Password},
	} {
		if err := required(f.name, f.value); err != nil {
			return nil, err
		}
	}

	u := &models.User{
		Username:    normalize(in.Username),
		Email:       normalize(in.Email),
		DisplayName: strings.TrimSpace(in.DisplayName),
	}

	users := s.repomanager.Users(s.repomanager.DB())
	existing, err := users.GetByLogin(ctx, u.Username, u.Email)
	switch {
	case err == nil && existing != nil:
		return nil, common.ErrorAlreadyExists
	case err != nil && !errors.Is(err, common.ErrorNotFound):
		return nil, internal(ctx, s.logger, "check existing user", err)
	}

	hash, err := s.credentials.Hash(ctx, in.Password)
	if err != nil {
		return nil, internal(ctx, s.logger, "hash password", err)
	}
	u.PasswordHash = hash

	created, err := users.Create(ctx, u)
	if err != nil {
		return nil, internal(ctx, s.logger, "create user", err)
	}

	// Images are uploaded only once the row exists, so a lost username race
	// stores nothing. A failed upload removes the row again.
	if created, err = s.attachImages(ctx, users, created, in); err != nil {
		if derr := users.Delete(context.WithoutCancel(ctx), created.ID); derr != nil {
			s.logger.Error(ctx, "remove half-registered user", "user_id", created.ID, "error", derr)
		}
		return nil, err
	}

	s.logger.Info(ctx, "user registered", "user_id", created.ID)
	return created.Public(), nil
}

// attachImages uploads the staged images of in and records their URLs on u.
// On failure it returns u unchanged along with the error.
func (s *UserService) attachImages(ctx context.Context, repo users.Repository, u *models.User, in RegisterInput) (*models.User, error) {
	out := u
	if in.AvatarPath != "" {
		url, err := s.upload(ctx, in.AvatarPath)
		if err != nil {
			return u, err
		}
		if out, err = repo.UpdateAvatar(ctx, u.ID, url); err != nil {
			return u, internal(ctx, s.logger, "set avatar", err)
		}
	}
	if in.CoverImagePath != "" {
		url, err := s.upload(ctx, in.CoverImagePath)
		if err != nil {
			return u, err
		}
		if out, err = repo.UpdateCoverImage(ctx, u.ID, url); err != nil {
			return u, internal(ctx, s.logger, "set cover image", err)
		}
	}
	return out, nil
}

func (s *UserService) upload(ctx context.Context, localPath string) (string, error) {
	url, err := s.assets.Store(ctx, localPath)
	if err != nil {
		return "", internal(ctx, s.logger, "upload asset", err)
	}
	return url, nil
}

// Login verifies the secret of the principal named by in and opens a session.
// Unknown principals and wrong secrets both yield common.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*models.User, *TokenPair, error) {
	username, email := normalize(in.Username), normalize(in.Email)
	if username == "" && email == "" {
		return nil, nil, common.NewValidationError("username", "username or email is required")
	}

	u, err := s.repomanager.Users(s.repomanager.DB()).GetByLogin(ctx, username, email)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, nil, internal(ctx, s.logger, "load user", err)
		}
		u = nil
	}

	ok, err := s.credentials.VerifySecret(ctx, u, in.Password)
	if err != nil {
		return nil, nil, internal(ctx, s.logger, "verify password", err)
	}
	if !ok {
		s.logger.Info(ctx, "login failed", "username", username, "email", email)
		return nil, nil, common.ErrInvalidCredentials
	}

	pair, err := s.sessions.StartSession(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	return u.Public(), pair, nil
}

// Logout ends userID's session.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	return s.sessions.EndSession(ctx, userID)
}

// Refresh rotates the session identified by refreshToken.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	return s.sessions.Rotate(ctx, refreshToken)
}

// ChangePassword replaces userID's secret after checking the current one.
// The current session stays valid.
func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if err := required("oldPassword", oldPassword); err != nil {
		return err
	}
	if err := credentials.ValidateSecret(newPassword); err != nil {
		var ve *common.ValidationError
		if errors.As(err, &ve) {
			ve.Field = "newPassword"
		}
		return err
	}

	users := s.repomanager.Users(s.repomanager.DB())
	u, err := users.GetByID(ctx, userID)
	if err != nil {
		return internal(ctx, s.logger, "load user", err)
	}

	ok, err := s.credentials.VerifySecret(ctx, u, oldPassword)
	if err != nil {
		return internal(ctx, s.logger, "verify password", err)
	}
	if !ok {
		return common.NewValidationError("oldPassword", "invalid old password")
	}

	if err := s.credentials.SetSecret(ctx, users, userID, newPassword); err != nil {
		return internal(ctx, s.logger, "set password", err)
	}
	s.logger.Info(ctx, "password changed", "user_id", userID)
	return nil
}

// CurrentUser returns the public projection of userID.
func (s *UserService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.repomanager.Users(s.repomanager.DB()).GetByID(ctx, userID)
	if err != nil {
		return nil, internal(ctx, s.logger, "load user", err)
	}
	return u.Public(), nil
}

// UpdateAccount changes the display name and email of userID.
func (s *UserService) UpdateAccount(ctx context.Context, userID, displayName, email string) (*models.User, error) {
	if err := required("displayName", displayName); err != nil {
		return nil, err
	}
	if err := required("email", email); err != nil {
		return nil, err
	}

	u, err := s.repomanager.Users(s.repomanager.DB()).UpdateAccount(ctx, userID, strings.TrimSpace(displayName), normalize(email))
	if err != nil {
		return nil, internal(ctx, s.logger, "update account", err)
	}
	return u.Public(), nil
}

// UpdateAvatar uploads the staged file at localPath and makes it userID's avatar.
func (s *UserService) UpdateAvatar(ctx context.Context, userID, localPath string) (*models.User, error) {
	if err := required("avatar", localPath); err != nil {
		return nil, err
	}
	url, err := s.upload(ctx, localPath)
	if err != nil {
		return nil, err
	}
	u, err := s.repomanager.Users(s.repomanager.DB()).UpdateAvatar(ctx, userID, url)
	if err != nil {
		return nil, internal(ctx, s.logger, "update avatar", err)
	}
	return u.Public(), nil
}

// UpdateCoverImage uploads the staged file at localPath and makes it userID's
// cover image.
func (s *UserService) UpdateCoverImage(ctx context.Context, userID, localPath string) (*models.User, error) {
	if err := required("coverImage", localPath); err != nil {
		return nil, err
	}
	url, err := s.upload(ctx, localPath)
	if err != nil {
		return nil, err
	}
	u, err := s.repomanager.Users(s.repomanager.DB()).UpdateCoverImage(ctx, userID, url)
	if err != nil {
		return nil, internal(ctx, s.logger, "update cover image", err)
	}
	return u.Public(), nil
}
