package usecase

import (
	"context"
	"errors"
	"fmt"

	"girlfanz/pkg/logger"
	"girlfanz/services/feed/internal/entity"
	"girlfanz/services/feed/internal/repo/persistent"
)

// IdentityProvider turns the authenticated user id of a request into the
// viewer the feed resolves against.
type IdentityProvider interface {
	CurrentViewer(ctx context.Context, userID string) (entity.Viewer, error)
}

type identityProvider struct {
	repo   persistent.IdentityRepository
	logger *logger.Logger
}

func NewIdentityProvider(repo persistent.IdentityRepository, logger *logger.Logger) IdentityProvider {
	return &identityProvider{repo: repo, logger: logger}
}

func (p *identityProvider) CurrentViewer(ctx context.Context, userID string) (entity.Viewer, error) {
	if userID == "" {
		return entity.Anonymous(), nil
	}

	viewer, err := p.repo.GetViewer(ctx, userID)
	if err != nil {
		if errors.Is(err, entity.ErrViewerNotFound) {
			// Valid token for a user that no longer exists.
			p.logger.Warn("Viewer %s not found, treating as anonymous", userID)
			return entity.Anonymous(), nil
		}
		return entity.Viewer{}, fmt.Errorf("%w: %w", entity.ErrStoreUnavailable, err)
	}
	return *viewer, nil
}
