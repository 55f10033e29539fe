package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/logging"
	"github.com/dmitrijs2005/vidtube/internal/server/auth"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/repomanager"
)

// Authenticator resolves an access token to the principal it was issued to.
type Authenticator struct {
	repomanager repomanager.RepositoryManager
	issuer      *auth.Issuer
	logger      logging.Logger
}

func NewAuthenticator(m repomanager.RepositoryManager, issuer *auth.Issuer, logger logging.Logger) *Authenticator {
	return &Authenticator{repomanager: m, issuer: issuer, logger: logger.With("module", "auth")}
}

// Authenticate returns the public projection of the token's principal. Any
// failure to establish identity matches common.ErrorUnauthorized.
func (a *Authenticator) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := a.issuer.Verify(accessToken, auth.KindAccess)
	if err != nil {
		a.logger.Debug(ctx, "access token rejected", "reason", err)
		return nil, common.Unauthorized(err)
	}

	u, err := a.repomanager.Users(a.repomanager.DB()).GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.Unauthorized(err)
		}
		return nil, internal(ctx, a.logger, "load user", err)
	}
	return u.Public(), nil
}
