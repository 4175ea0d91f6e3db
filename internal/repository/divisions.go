package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/domain"
)

func (r *Repository) CreateDivision(division *domain.Division) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO divisions (name, year, batch_count)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version
	`

	if err := r.dbpool.QueryRowContext(ctx, query, division.Name, division.Year, division.BatchCount).Scan(&division.ID, &division.CreatedAt, &division.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetDivisionByID(id int64) (*domain.Division, error) {
	query := `
		SELECT name, year, batch_count, created_at, version
		FROM divisions WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	division := &domain.Division{
		ID: id,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&division.Name, &division.Year, &division.BatchCount, &division.CreatedAt, &division.Version); err != nil {
		return nil, err
	}

	return division, nil
}

func (r *Repository) GetAllDivisions() ([]*domain.Division, error) {
	query := `
		SELECT id, name, year, batch_count, created_at, version FROM divisions
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	divisions := make([]*domain.Division, 0)
	for rows.Next() {
		division := &domain.Division{}
		if err := rows.Scan(&division.ID, &division.Name, &division.Year, &division.BatchCount, &division.CreatedAt, &division.Version); err != nil {
			return nil, err
		}
		divisions = append(divisions, division)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return divisions, nil
}

func (r *Repository) UpdateDivision(division *domain.Division) error {
	query := `
		UPDATE divisions
		SET
			name = $1,
			year = $2,
			batch_count = $3,
			version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{division.Name, division.Year, division.BatchCount, division.ID, division.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&division.CreatedAt, &division.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteDivision(id int64) error {
	query := `
		DELETE FROM divisions WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
