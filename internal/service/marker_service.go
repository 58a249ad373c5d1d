package service

import (
	"context"
	"fmt"

	"geomark/internal/domain"
	"geomark/internal/metrics"
	"geomark/internal/repository"
)

// MarkerService exposes marker CRUD scoped to a verified owner.
type MarkerService interface {
	List(ctx context.Context, owner domain.Identity) ([]domain.Marker, error)
	Create(ctx context.Context, owner domain.Identity, in domain.MarkerInput) (*domain.Marker, error)
	Update(ctx context.Context, owner domain.Identity, id int64, in domain.MarkerInput) error
	Delete(ctx context.Context, owner domain.Identity, id int64) error
}

type markerService struct {
	markers repository.MarkerRepository
}

func NewMarkerService(markers repository.MarkerRepository) MarkerService {
	return &markerService{markers: markers}
}

func (s *markerService) List(ctx context.Context, owner domain.Identity) ([]domain.Marker, error) {
	return s.markers.ListByOwner(ctx, owner.ID)
}

func (s *markerService) Create(ctx context.Context, owner domain.Identity, in domain.MarkerInput) (*domain.Marker, error) {
	marker, err := buildMarker(owner, 0, in)
	if err != nil {
		return nil, err
	}
	if _, err := s.markers.Create(ctx, marker); err != nil {
		return nil, err
	}
	metrics.MarkerOperationsTotal.WithLabelValues("create").Inc()
	return marker, nil
}

func (s *markerService) Update(ctx context.Context, owner domain.Identity, id int64, in domain.MarkerInput) error {
	marker, err := buildMarker(owner, id, in)
	if err != nil {
		return err
	}
	if err := s.markers.UpdateOwned(ctx, marker); err != nil {
		return err
	}
	metrics.MarkerOperationsTotal.WithLabelValues("update").Inc()
	return nil
}

func (s *markerService) Delete(ctx context.Context, owner domain.Identity, id int64) error {
	if err := s.markers.DeleteOwned(ctx, owner.ID, id); err != nil {
		return err
	}
	metrics.MarkerOperationsTotal.WithLabelValues("delete").Inc()
	return nil
}

// buildMarker takes the owner from the verified identity, never from input.
func buildMarker(owner domain.Identity, id int64, in domain.MarkerInput) (*domain.Marker, error) {
	if in.Lat == nil || in.Lng == nil {
		return nil, fmt.Errorf("%w: lat and lng are required", domain.ErrValidation)
	}
	return &domain.Marker{
		ID:     id,
		UserID: owner.ID,
		Lat:    *in.Lat,
		Lng:    *in.Lng,
		Name:   optional(in.Name),
		Date:   optional(in.Date),
	}, nil
}

func optional(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
