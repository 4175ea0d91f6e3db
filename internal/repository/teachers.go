package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/domain"
)

func (r *Repository) CreateTeacher(teacher *domain.Teacher) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO teachers (
			name, email, department, home_year, min_weekly_sessions, max_weekly_sessions,
			lecture_preference, lab_preference, can_teach_labs, can_supervise_projects,
			status, cross_year_eligible, max_cross_year_sessions
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, version
	`

	args := []any{
		teacher.Name, teacher.Email, teacher.Department, teacher.HomeYear,
		teacher.MinWeeklySessions, teacher.MaxWeeklySessions,
		teacher.LecturePreference, teacher.LabPreference,
		teacher.CanTeachLabs, teacher.CanSuperviseProjects,
		teacher.Status, teacher.CrossYearEligible, teacher.MaxCrossYearSessions,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&teacher.ID, &teacher.CreatedAt, &teacher.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetTeacherByID(id int64) (*domain.Teacher, error) {
	query := `
		SELECT
			name, email, department, home_year, min_weekly_sessions, max_weekly_sessions,
			lecture_preference, lab_preference, can_teach_labs, can_supervise_projects,
			status, cross_year_eligible, max_cross_year_sessions, created_at, version
		FROM teachers WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	teacher := &domain.Teacher{
		ID: id,
	}

	dst := []any{
		&teacher.Name, &teacher.Email, &teacher.Department, &teacher.HomeYear,
		&teacher.MinWeeklySessions, &teacher.MaxWeeklySessions,
		&teacher.LecturePreference, &teacher.LabPreference,
		&teacher.CanTeachLabs, &teacher.CanSuperviseProjects,
		&teacher.Status, &teacher.CrossYearEligible, &teacher.MaxCrossYearSessions,
		&teacher.CreatedAt, &teacher.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return teacher, nil
}

func (r *Repository) GetAllTeachers() ([]*domain.Teacher, error) {
	query := `
		SELECT
			id, name, email, department, home_year, min_weekly_sessions, max_weekly_sessions,
			lecture_preference, lab_preference, can_teach_labs, can_supervise_projects,
			status, cross_year_eligible, max_cross_year_sessions, created_at, version
		FROM teachers
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teachers := make([]*domain.Teacher, 0)
	for rows.Next() {
		teacher := &domain.Teacher{}
		dst := []any{
			&teacher.ID, &teacher.Name, &teacher.Email, &teacher.Department, &teacher.HomeYear,
			&teacher.MinWeeklySessions, &teacher.MaxWeeklySessions,
			&teacher.LecturePreference, &teacher.LabPreference,
			&teacher.CanTeachLabs, &teacher.CanSuperviseProjects,
			&teacher.Status, &teacher.CrossYearEligible, &teacher.MaxCrossYearSessions,
			&teacher.CreatedAt, &teacher.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		teachers = append(teachers, teacher)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return teachers, nil
}

func (r *Repository) UpdateTeacher(teacher *domain.Teacher) error {
	query := `
		UPDATE teachers
		SET
			email = $1,
			department = $2,
			home_year = $3,
			min_weekly_sessions = $4,
			max_weekly_sessions = $5,
			lecture_preference = $6,
			lab_preference = $7,
			can_teach_labs = $8,
			can_supervise_projects = $9,
			status = $10,
			cross_year_eligible = $11,
			max_cross_year_sessions = $12,
			version = version + 1
		WHERE id = $13 AND version = $14
		RETURNING name, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{
		teacher.Email, teacher.Department, teacher.HomeYear,
		teacher.MinWeeklySessions, teacher.MaxWeeklySessions,
		teacher.LecturePreference, teacher.LabPreference,
		teacher.CanTeachLabs, teacher.CanSuperviseProjects,
		teacher.Status, teacher.CrossYearEligible, teacher.MaxCrossYearSessions,
		teacher.ID, teacher.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&teacher.Name, &teacher.CreatedAt, &teacher.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteTeacher(id int64) error {
	query := `
		DELETE FROM teachers WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
