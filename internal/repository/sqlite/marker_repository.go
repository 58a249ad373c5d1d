package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"geomark/internal/domain"
	"geomark/internal/repository"
)

const createMarkersTable = `
CREATE TABLE IF NOT EXISTS markers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	lat REAL NOT NULL,
	lng REAL NOT NULL,
	name TEXT NULL,
	date TEXT NULL,
	FOREIGN KEY(user_id) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_markers_user_id ON markers(user_id);
`

type MarkerRepository struct {
	db *sql.DB
}

func NewMarkerRepository(db *sql.DB) repository.MarkerRepository {
	return &MarkerRepository{db: db}
}

// Init must run after the users table exists.
func (r *MarkerRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createMarkersTable); err != nil {
		return fmt.Errorf("%w: create markers table: %w", domain.ErrStorage, err)
	}
	return nil
}

func (r *MarkerRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Marker, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, lat, lng, name, date
FROM markers
WHERE user_id = ?`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: query markers: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	markers := make([]domain.Marker, 0)
	for rows.Next() {
		var (
			m    domain.Marker
			name sql.NullString
			date sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.UserID, &m.Lat, &m.Lng, &name, &date); err != nil {
			return nil, fmt.Errorf("%w: scan marker: %w", domain.ErrStorage, err)
		}
		m.Name = fromNullString(name)
		m.Date = fromNullString(date)
		markers = append(markers, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate markers: %w", domain.ErrStorage, err)
	}
	return markers, nil
}

func (r *MarkerRepository) Create(ctx context.Context, marker *domain.Marker) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO markers (user_id, lat, lng, name, date)
VALUES (?, ?, ?, ?, ?)`,
		marker.UserID,
		marker.Lat,
		marker.Lng,
		toNullString(marker.Name),
		toNullString(marker.Date),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: insert marker: %w", domain.ErrStorage, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: marker last insert id: %w", domain.ErrStorage, err)
	}
	marker.ID = id
	return id, nil
}

func (r *MarkerRepository) UpdateOwned(ctx context.Context, marker *domain.Marker) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE markers
SET lat = ?, lng = ?, name = ?, date = ?
WHERE id = ? AND user_id = ?`,
		marker.Lat,
		marker.Lng,
		toNullString(marker.Name),
		toNullString(marker.Date),
		marker.ID,
		marker.UserID,
	)
	if err != nil {
		return fmt.Errorf("%w: update marker: %w", domain.ErrStorage, err)
	}
	return requireAffected(res, "update marker")
}

func (r *MarkerRepository) DeleteOwned(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM markers WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("%w: delete marker: %w", domain.ErrStorage, err)
	}
	return requireAffected(res, "delete marker")
}

func requireAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s rows affected: %w", domain.ErrStorage, op, err)
	}
	if n == 0 {
		return fmt.Errorf("marker: %w", domain.ErrNotFound)
	}
	return nil
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
