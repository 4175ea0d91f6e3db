package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/domain"
)

// UpsertProficiency 写入 (teacher, subject) 的熟练度记录
// 每个组合至多保留一条记录，重复写入时覆盖评分
func (r *Repository) UpsertProficiency(prof *domain.SubjectProficiency) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO subject_proficiencies (teacher_id, subject_id, knowledge, willingness)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (teacher_id, subject_id)
		DO UPDATE SET knowledge = EXCLUDED.knowledge, willingness = EXCLUDED.willingness
	`

	args := []any{prof.TeacherID, prof.SubjectID, prof.Knowledge, prof.Willingness}
	if _, err := r.dbpool.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetProficienciesBySubjectID(subjectID int64) ([]*domain.SubjectProficiency, error) {
	query := `
		SELECT teacher_id, subject_id, knowledge, willingness
		FROM subject_proficiencies WHERE subject_id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profs := make([]*domain.SubjectProficiency, 0)
	for rows.Next() {
		prof := &domain.SubjectProficiency{}
		if err := rows.Scan(&prof.TeacherID, &prof.SubjectID, &prof.Knowledge, &prof.Willingness); err != nil {
			return nil, err
		}
		profs = append(profs, prof)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return profs, nil
}

func (r *Repository) GetAllProficiencies() ([]*domain.SubjectProficiency, error) {
	query := `
		SELECT teacher_id, subject_id, knowledge, willingness
		FROM subject_proficiencies
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profs := make([]*domain.SubjectProficiency, 0)
	for rows.Next() {
		prof := &domain.SubjectProficiency{}
		if err := rows.Scan(&prof.TeacherID, &prof.SubjectID, &prof.Knowledge, &prof.Willingness); err != nil {
			return nil, err
		}
		profs = append(profs, prof)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return profs, nil
}

func (r *Repository) DeleteProficiency(teacherID int64, subjectID int64) error {
	query := `
		DELETE FROM subject_proficiencies WHERE teacher_id = $1 AND subject_id = $2
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, teacherID, subjectID)
	if err != nil {
		return err
	}

	return nil
}
