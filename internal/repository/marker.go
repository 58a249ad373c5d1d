package repository

import (
	"context"

	"geomark/internal/domain"
)

// MarkerRepository persists markers. Every method is scoped by owner; the
// mutating ones are expected to match on id and owner in one statement and
// report domain.ErrNotFound when nothing matched.
type MarkerRepository interface {
	Init(ctx context.Context) error
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Marker, error)
	Create(ctx context.Context, marker *domain.Marker) (int64, error)
	UpdateOwned(ctx context.Context, marker *domain.Marker) error
	DeleteOwned(ctx context.Context, ownerID, id int64) error
}
