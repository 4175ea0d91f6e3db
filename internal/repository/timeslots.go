package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/domain"
)

func (r *Repository) CreateTimeSlot(slot *domain.TimeSlot) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO time_slots (day_of_week, slot_number, start_time, end_time, is_morning, type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	args := []any{slot.DayOfWeek, slot.SlotNumber, slot.StartTime, slot.EndTime, slot.IsMorning, slot.Type}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&slot.ID); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAllTimeSlots() ([]*domain.TimeSlot, error) {
	query := `
		SELECT id, day_of_week, slot_number, start_time, end_time, is_morning, type
		FROM time_slots
		ORDER BY day_of_week, slot_number
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make([]*domain.TimeSlot, 0)
	for rows.Next() {
		slot := &domain.TimeSlot{}
		dst := []any{&slot.ID, &slot.DayOfWeek, &slot.SlotNumber, &slot.StartTime, &slot.EndTime, &slot.IsMorning, &slot.Type}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return slots, nil
}

func (r *Repository) DeleteTimeSlot(id int64) error {
	query := `
		DELETE FROM time_slots WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
