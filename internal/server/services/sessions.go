package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/logging"
	"github.com/dmitrijs2005/vidtube/internal/server/auth"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/repomanager"
	"go.opentelemetry.io/otel/attribute"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// SessionRegistry owns the single refresh-token slot of every principal:
// it opens sessions, rotates them on refresh and closes them on logout.
type SessionRegistry struct {
	repomanager repomanager.RepositoryManager
	issuer      *auth.Issuer
	logger      logging.Logger
	now         func() time.Time
}

func NewSessionRegistry(m repomanager.RepositoryManager, issuer *auth.Issuer, logger logging.Logger) *SessionRegistry {
	return &SessionRegistry{
		repomanager: m,
		issuer:      issuer,
		logger:      logger.With("module", "sessions"),
		now:         time.Now,
	}
}

func (r *SessionRegistry) issuePair(u *models.User) (*TokenPair, error) {
	access, err := r.issuer.IssueAccessToken(u)
	if err != nil {
		return nil, err
	}
	refresh, err := r.issuer.IssueRefreshToken(u)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// StartSession mints a token pair for u and makes its refresh token the only
// valid one, ending any earlier session of u.
func (r *SessionRegistry) StartSession(ctx context.Context, u *models.User) (*TokenPair, error) {
	pair, err := r.issuePair(u)
	if err != nil {
		return nil, internal(ctx, r.logger, "issue tokens", err)
	}

	expires := r.now().Add(r.issuer.RefreshTTL())
	if err := r.repomanager.RefreshTokens(r.repomanager.DB()).Upsert(ctx, u.ID, pair.RefreshToken, expires); err != nil {
		return nil, internal(ctx, r.logger, "store refresh token", err)
	}

	r.logger.Info(ctx, "session started", "user_id", u.ID)
	return pair, nil
}

// Rotate exchanges the presented refresh token for a new pair. Exactly one
// of several concurrent calls with the same token succeeds.
//
// Every rejection matches common.ErrorUnauthorized. A token that verifies but
// is no longer current additionally matches common.ErrRefreshTokenReused.
func (r *SessionRegistry) Rotate(ctx context.Context, presented string) (_ *TokenPair, err error) {
	ctx, span := tracer.Start(ctx, "SessionRegistry.Rotate")
	defer func() { endSpan(span, err) }()

	claims, err := r.issuer.Verify(presented, auth.KindRefresh)
	if err != nil {
		r.logger.Info(ctx, "refresh token rejected", "reason", err)
		return nil, common.Unauthorized(err)
	}
	span.SetAttributes(attribute.String("user.id", claims.Subject))

	db := r.repomanager.DB()
	user, err := r.repomanager.Users(db).GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			r.logger.Warn(ctx, "refresh token for unknown user", "user_id", claims.Subject)
			return nil, common.Unauthorized(err)
		}
		return nil, internal(ctx, r.logger, "load user", err)
	}

	tokens := r.repomanager.RefreshTokens(db)
	slot, err := tokens.Find(ctx, user.ID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, internal(ctx, r.logger, "load refresh token", err)
	}
	if slot == nil || subtle.ConstantTimeCompare([]byte(slot.Token), []byte(presented)) != 1 {
		r.logger.Warn(ctx, "refresh token reuse detected", "user_id", user.ID)
		return nil, common.Unauthorized(common.ErrRefreshTokenReused)
	}
	if !slot.ExpiresAt.After(r.now()) {
		r.logger.Info(ctx, "refresh token expired", "user_id", user.ID)
		return nil, common.Unauthorized(common.ErrTokenExpired)
	}

	pair, err := r.issuePair(user)
	if err != nil {
		return nil, internal(ctx, r.logger, "issue tokens", err)
	}

	swapped, err := tokens.Rotate(ctx, user.ID, presented, pair.RefreshToken, r.now().Add(r.issuer.RefreshTTL()))
	if err != nil {
		return nil, internal(ctx, r.logger, "rotate refresh token", err)
	}
	if !swapped {
		r.logger.Warn(ctx, "refresh token reuse detected", "user_id", user.ID, "race", true)
		return nil, common.Unauthorized(common.ErrRefreshTokenReused)
	}

	r.logger.Debug(ctx, "session rotated", "user_id", user.ID)
	return pair, nil
}

// EndSession clears userID's slot. Ending an already ended session succeeds.
func (r *SessionRegistry) EndSession(ctx context.Context, userID string) error {
	if err := r.repomanager.RefreshTokens(r.repomanager.DB()).Delete(ctx, userID); err != nil {
		return internal(ctx, r.logger, "delete refresh token", err)
	}
	r.logger.Info(ctx, "session ended", "user_id", userID)
	return nil
}
