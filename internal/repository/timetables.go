package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/domain"
)

// InsertTimetableResult 以替换语义持久化某班级的排课结果
func (r *Repository) InsertTimetableResult(result *domain.TimetableResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 先将该班级之前的排课结果删除
	query := `DELETE FROM timetable_results WHERE division_id = $1`
	if _, err := tx.ExecContext(ctx, query, result.DivisionID); err != nil {
		return err
	}

	query = `
		INSERT INTO timetable_results (
			division_id, fitness, success, session_count, cause,
			teacher_conflicts, room_conflicts, group_conflicts, lab_room_mismatches, recess_violations,
			preference_violations, workload_violations, proficiency_mismatches, cross_year_overloads
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, version
	`

	args := []any{
		result.DivisionID, result.Fitness, result.Success, result.SessionCount, result.Cause,
		result.Violations.TeacherConflicts, result.Violations.RoomConflicts,
		result.Violations.GroupConflicts, result.Violations.LabRoomMismatches,
		result.Violations.RecessViolations, result.Violations.PreferenceViolations,
		result.Violations.WorkloadViolations, result.Violations.ProficiencyMismatches,
		result.Violations.CrossYearOverloads,
	}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&result.ID, &result.CreatedAt, &result.Version); err != nil {
		return err
	}

	for _, session := range result.Sessions {
		query := `
			INSERT INTO timetable_sessions (timetable_result_id, subject_id, occurrence, division_id, batch, teacher_id, room_id, slot_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`

		args := []any{result.ID, session.SubjectID, session.Occurrence, session.DivisionID, session.Batch, session.TeacherID, session.RoomID, session.SlotID}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetTimetableResultByDivisionID(divisionID int64) (*domain.TimetableResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			id, fitness, success, session_count, cause,
			teacher_conflicts, room_conflicts, group_conflicts, lab_room_mismatches, recess_violations,
			preference_violations, workload_violations, proficiency_mismatches, cross_year_overloads,
			created_at, version
		FROM timetable_results WHERE division_id = $1
	`

	result := &domain.TimetableResult{
		DivisionID: divisionID,
	}

	dst := []any{
		&result.ID, &result.Fitness, &result.Success, &result.SessionCount, &result.Cause,
		&result.Violations.TeacherConflicts, &result.Violations.RoomConflicts,
		&result.Violations.GroupConflicts, &result.Violations.LabRoomMismatches,
		&result.Violations.RecessViolations, &result.Violations.PreferenceViolations,
		&result.Violations.WorkloadViolations, &result.Violations.ProficiencyMismatches,
		&result.Violations.CrossYearOverloads,
		&result.CreatedAt, &result.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, divisionID).Scan(dst...); err != nil {
		return nil, err
	}

	sessions, err := r.getSessionsByResultID(ctx, result.ID)
	if err != nil {
		return nil, err
	}
	result.Sessions = sessions

	return result, nil
}

func (r *Repository) GetAllTimetableResults() ([]*domain.TimetableResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			id, division_id, fitness, success, session_count, cause,
			teacher_conflicts, room_conflicts, group_conflicts, lab_room_mismatches, recess_violations,
			preference_violations, workload_violations, proficiency_mismatches, cross_year_overloads,
			created_at, version
		FROM timetable_results
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]*domain.TimetableResult, 0)
	for rows.Next() {
		result := &domain.TimetableResult{}
		dst := []any{
			&result.ID, &result.DivisionID, &result.Fitness, &result.Success, &result.SessionCount, &result.Cause,
			&result.Violations.TeacherConflicts, &result.Violations.RoomConflicts,
			&result.Violations.GroupConflicts, &result.Violations.LabRoomMismatches,
			&result.Violations.RecessViolations, &result.Violations.PreferenceViolations,
			&result.Violations.WorkloadViolations, &result.Violations.ProficiencyMismatches,
			&result.Violations.CrossYearOverloads,
			&result.CreatedAt, &result.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, result := range results {
		sessions, err := r.getSessionsByResultID(ctx, result.ID)
		if err != nil {
			return nil, err
		}
		result.Sessions = sessions
	}

	return results, nil
}

func (r *Repository) getSessionsByResultID(ctx context.Context, resultID int64) ([]domain.TimetableSession, error) {
	query := `
		SELECT subject_id, occurrence, division_id, batch, teacher_id, room_id, slot_id
		FROM timetable_sessions
		WHERE timetable_result_id = $1
		ORDER BY subject_id, occurrence
	`

	rows, err := r.dbpool.QueryContext(ctx, query, resultID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]domain.TimetableSession, 0)
	for rows.Next() {
		session := domain.TimetableSession{}
		var batch sql.NullInt32

		dst := []any{&session.SubjectID, &session.Occurrence, &session.DivisionID, &batch, &session.TeacherID, &session.RoomID, &session.SlotID}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		if batch.Valid {
			b := batch.Int32
			session.Batch = &b
		}

		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// UpdateSessionTeachers 将离职改派后的教师指派写回既有课表
func (r *Repository) UpdateSessionTeachers(reassignments []domain.SessionReassignment) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE timetable_sessions
		SET teacher_id = $1
		WHERE subject_id = $2 AND occurrence = $3 AND division_id = $4 AND teacher_id = $5
	`

	for _, re := range reassignments {
		args := []any{re.ToTeacherID, re.SubjectID, re.Occurrence, re.DivisionID, re.FromTeacherID}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}
