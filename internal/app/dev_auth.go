package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/bescout/fantasy-events/internal/domain/holding"
	"github.com/bescout/fantasy-events/internal/domain/user"
	"github.com/bescout/fantasy-events/internal/usecase"
)

// devTokenVerifier treats the bearer token as the user ID. It exists for
// local development only; config.Load rejects it outside dev and stage.
type devTokenVerifier struct {
	oracle holding.Oracle
}

func (v devTokenVerifier) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	principal := user.Principal{UserID: token, DisplayName: token}
	if v.oracle != nil {
		if profile, err := v.oracle.Profile(ctx, token); err == nil {
			principal.SubscriptionTier = profile.SubscriptionTier
		}
	}

	return principal, nil
}
