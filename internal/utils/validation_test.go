package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/domain"
)

func TestValidateSessionsWithSubjects(t *testing.T) {
	division := &domain.Division{ID: 1, Name: "一年级1班", Year: 1, BatchCount: 2}
	subjects := []*domain.Subject{
		{ID: 1, Name: "数学", DivisionID: 1, WeeklySessions: 2},
	}

	valid := []domain.TimetableSession{
		{SubjectID: 1, Occurrence: 0, DivisionID: 1},
		{SubjectID: 1, Occurrence: 1, DivisionID: 1},
	}
	assert.NoError(t, ValidateSessionsWithSubjects(valid, subjects, division))

	// 课次重复
	duplicated := []domain.TimetableSession{
		{SubjectID: 1, Occurrence: 0, DivisionID: 1},
		{SubjectID: 1, Occurrence: 0, DivisionID: 1},
	}
	assert.Error(t, ValidateSessionsWithSubjects(duplicated, subjects, division))

	// 课次数量不足
	missing := []domain.TimetableSession{
		{SubjectID: 1, Occurrence: 0, DivisionID: 1},
	}
	assert.Error(t, ValidateSessionsWithSubjects(missing, subjects, division))

	// 科目不属于该班级
	foreign := []domain.TimetableSession{
		{SubjectID: 99, Occurrence: 0, DivisionID: 1},
		{SubjectID: 1, Occurrence: 0, DivisionID: 1},
	}
	assert.Error(t, ValidateSessionsWithSubjects(foreign, subjects, division))

	// 小组编号超出班级的小组范围
	badBatch := int32(5)
	outOfRange := []domain.TimetableSession{
		{SubjectID: 1, Occurrence: 0, DivisionID: 1, Batch: &badBatch},
		{SubjectID: 1, Occurrence: 1, DivisionID: 1},
	}
	assert.Error(t, ValidateSessionsWithSubjects(outOfRange, subjects, division))
}

func TestValidateTimeSlots(t *testing.T) {
	slots := []*domain.TimeSlot{
		{ID: 1, DayOfWeek: 1, SlotNumber: 1},
		{ID: 2, DayOfWeek: 1, SlotNumber: 2},
		{ID: 3, DayOfWeek: 2, SlotNumber: 1},
	}
	assert.NoError(t, ValidateTimeSlots(slots))

	slots = append(slots, &domain.TimeSlot{ID: 4, DayOfWeek: 1, SlotNumber: 1})
	assert.Error(t, ValidateTimeSlots(slots))
}

func TestGenerateRandomTeacher(t *testing.T) {
	teacher := GenerateRandomTeacher(3, "example.edu")

	assert.Equal(t, int32(3), teacher.HomeYear)
	assert.Equal(t, domain.TeacherStatusActive, teacher.Status)
	assert.GreaterOrEqual(t, teacher.MaxWeeklySessions, teacher.MinWeeklySessions)
	assert.Contains(t, teacher.Email, "@example.edu")
	require.NotEmpty(t, teacher.Name)
}

func TestGenerateRandomPasswordLength(t *testing.T) {
	assert.Len(t, GenerateRandomPassword(12), 12)
}
