package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/domain"
)

func (r *Repository) CreateRoom(room *domain.Room) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO rooms (name, capacity, is_lab)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version
	`

	if err := r.dbpool.QueryRowContext(ctx, query, room.Name, room.Capacity, room.IsLab).Scan(&room.ID, &room.CreatedAt, &room.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetRoomByID(id int64) (*domain.Room, error) {
	query := `
		SELECT name, capacity, is_lab, created_at, version
		FROM rooms WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	room := &domain.Room{
		ID: id,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&room.Name, &room.Capacity, &room.IsLab, &room.CreatedAt, &room.Version); err != nil {
		return nil, err
	}

	return room, nil
}

func (r *Repository) GetAllRooms() ([]*domain.Room, error) {
	query := `
		SELECT id, name, capacity, is_lab, created_at, version FROM rooms
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rooms := make([]*domain.Room, 0)
	for rows.Next() {
		room := &domain.Room{}
		if err := rows.Scan(&room.ID, &room.Name, &room.Capacity, &room.IsLab, &room.CreatedAt, &room.Version); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rooms, nil
}

func (r *Repository) UpdateRoom(room *domain.Room) error {
	query := `
		UPDATE rooms
		SET
			name = $1,
			capacity = $2,
			is_lab = $3,
			version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{room.Name, room.Capacity, room.IsLab, room.ID, room.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&room.CreatedAt, &room.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteRoom(id int64) error {
	query := `
		DELETE FROM rooms WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
