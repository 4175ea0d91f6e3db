package utils

import (
	"fmt"

	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/domain"
)

// ValidateSessionsWithSubjects 检查课表中每个科目的排课次数是否与要求一致，
// 以及每次课的小组编号是否落在班级的小组范围内
func ValidateSessionsWithSubjects(sessions []domain.TimetableSession, subjects []*domain.Subject, division *domain.Division) error {
	occurrences := make(map[int64]map[int32]bool)
	for _, subject := range subjects {
		occurrences[subject.ID] = make(map[int32]bool)
	}

	for i, session := range sessions {
		if session.DivisionID != division.ID {
			return fmt.Errorf("第 %d 次课不属于班级 %s", i+1, division.Name)
		}

		seen, ok := occurrences[session.SubjectID]
		if !ok {
			return fmt.Errorf("第 %d 次课的科目 %d 不属于该班级", i+1, session.SubjectID)
		}
		if seen[session.Occurrence] {
			return fmt.Errorf("科目 %d 的第 %d 次课重复出现", session.SubjectID, session.Occurrence)
		}
		seen[session.Occurrence] = true

		if session.Batch != nil && (*session.Batch < 0 || *session.Batch >= division.BatchCount) {
			return fmt.Errorf("第 %d 次课的小组编号 %d 超出范围", i+1, *session.Batch)
		}
	}

	for _, subject := range subjects {
		if got := int32(len(occurrences[subject.ID])); got != subject.WeeklySessions {
			return fmt.Errorf("科目 %s 需要每周 %d 次课，实际安排了 %d 次", subject.Name, subject.WeeklySessions, got)
		}
	}

	return nil
}

// ValidateTimeSlots 检查同一天内的时段是否存在编号重复
func ValidateTimeSlots(slots []*domain.TimeSlot) error {
	type daySlot struct {
		day    int32
		number int32
	}

	seen := make(map[daySlot]bool)
	for _, slot := range slots {
		key := daySlot{day: slot.DayOfWeek, number: slot.SlotNumber}
		if seen[key] {
			return fmt.Errorf("第 %d 天的第 %d 节时段重复", slot.DayOfWeek, slot.SlotNumber)
		}
		seen[key] = true
	}

	return nil
}
