package syncer

import (
	"context"

	"github.com/AnshRaj112/catchlog-backend/internal/models"
)

// Remote is the durable store the outbox drains into. Writes that carry an
// actor must fail with remote.ErrNotOwner when actor does not own the row.
type Remote interface {
	UpsertSpot(ctx context.Context, actor string, s *models.Spot) error
	DeleteSpot(ctx context.Context, actor, id string) error
	ListSpots(ctx context.Context) ([]*models.Spot, error)

	UpsertCatch(ctx context.Context, actor string, c *models.Catch) error
	DeleteCatch(ctx context.Context, actor, id string) error
	ListCatches(ctx context.Context, userID string) ([]*models.Catch, error)

	UpsertFavorite(ctx context.Context, f *models.Favorite) error
	DeleteFavorite(ctx context.Context, userID, spotID string) error
	ListFavorites(ctx context.Context, userID string) ([]*models.Favorite, error)

	UpsertCustomFishType(ctx context.Context, actor string, f *models.CustomFishType) error
	ListCustomFishTypes(ctx context.Context, userID string) ([]*models.CustomFishType, error)

	UpsertProfile(ctx context.Context, p *models.UserProfile) error
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
}
