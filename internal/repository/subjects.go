package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/domain"
)

func (r *Repository) CreateSubject(subject *domain.Subject) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO subjects (name, year, division_id, weekly_sessions, requires_lab)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`

	args := []any{subject.Name, subject.Year, subject.DivisionID, subject.WeeklySessions, subject.RequiresLab}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&subject.ID, &subject.CreatedAt, &subject.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetSubjectByID(id int64) (*domain.Subject, error) {
	query := `
		SELECT name, year, division_id, weekly_sessions, requires_lab, created_at, version
		FROM subjects WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	subject := &domain.Subject{
		ID: id,
	}

	dst := []any{&subject.Name, &subject.Year, &subject.DivisionID, &subject.WeeklySessions, &subject.RequiresLab, &subject.CreatedAt, &subject.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return subject, nil
}

func (r *Repository) GetAllSubjects() ([]*domain.Subject, error) {
	query := `
		SELECT id, name, year, division_id, weekly_sessions, requires_lab, created_at, version
		FROM subjects
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subjects := make([]*domain.Subject, 0)
	for rows.Next() {
		subject := &domain.Subject{}
		dst := []any{&subject.ID, &subject.Name, &subject.Year, &subject.DivisionID, &subject.WeeklySessions, &subject.RequiresLab, &subject.CreatedAt, &subject.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		subjects = append(subjects, subject)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return subjects, nil
}

func (r *Repository) UpdateSubject(subject *domain.Subject) error {
	query := `
		UPDATE subjects
		SET
			name = $1,
			year = $2,
			division_id = $3,
			weekly_sessions = $4,
			requires_lab = $5,
			version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{subject.Name, subject.Year, subject.DivisionID, subject.WeeklySessions, subject.RequiresLab, subject.ID, subject.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&subject.CreatedAt, &subject.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteSubject(id int64) error {
	query := `
		DELETE FROM subjects WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
