package service

import (
	"context"
	"fmt"
	"sync"

	"geomark/internal/domain"
)

type stubUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func (r *stubUserRepo) Init(context.Context) error { return nil }

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Email]; exists {
		return 0, fmt.Errorf("user %q: %w", user.Email, domain.ErrConflict)
	}
	r.nextID++
	user.ID = r.nextID
	clone := *user
	r.users[user.Email] = &clone
	return user.ID, nil
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

type stubMarkerRepo struct {
	mu      sync.Mutex
	nextID  int64
	markers []domain.Marker
	failErr error
}

func (r *stubMarkerRepo) Init(context.Context) error { return nil }

func (r *stubMarkerRepo) ListByOwner(_ context.Context, ownerID int64) ([]domain.Marker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return nil, r.failErr
	}
	out := make([]domain.Marker, 0)
	for _, m := range r.markers {
		if m.UserID == ownerID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubMarkerRepo) Create(_ context.Context, marker *domain.Marker) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return 0, r.failErr
	}
	r.nextID++
	marker.ID = r.nextID
	r.markers = append(r.markers, *marker)
	return marker.ID, nil
}

func (r *stubMarkerRepo) UpdateOwned(_ context.Context, marker *domain.Marker) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.markers {
		if r.markers[i].ID == marker.ID && r.markers[i].UserID == marker.UserID {
			r.markers[i] = *marker
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *stubMarkerRepo) DeleteOwned(_ context.Context, ownerID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.markers {
		if r.markers[i].ID == id && r.markers[i].UserID == ownerID {
			r.markers = append(r.markers[:i], r.markers[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}
