package scheduler

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/domain"
)

// 一位教师、一个双课次科目的最小场景，方便精确断言违约计数
func newSingleSubjectScheduler(t *testing.T, teacher *domain.Teacher, slots []*domain.TimeSlot) *Scheduler {
	t.Helper()

	division := &domain.Division{ID: 1, Name: "一年级1班", Year: 1, BatchCount: 1}
	subjects := []*domain.Subject{
		{ID: 1, Name: "数学", Year: 1, DivisionID: 1, WeeklySessions: 2},
	}
	rooms := []*domain.Room{
		{ID: 1, Name: "101", Capacity: 50},
		{ID: 2, Name: "102", Capacity: 50},
	}
	proficiencies := []*domain.SubjectProficiency{
		{TeacherID: teacher.ID, SubjectID: 1, Knowledge: 9, Willingness: 9},
	}

	s, err := New(testParameters(), division, subjects, []*domain.Teacher{teacher}, rooms, slots, proficiencies, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	return s
}

func TestEvaluateCountsResourceAndGroupConflicts(t *testing.T) {
	teacher := testTeacher(1, "张伟", 1)
	slots := []*domain.TimeSlot{
		testSlot(1, 1, 1, "08:00:00", "08:45:00", true, domain.SlotTypeLecture),
		testSlot(2, 1, 2, "08:55:00", "09:40:00", true, domain.SlotTypeLecture),
	}
	s := newSingleSubjectScheduler(t, teacher, slots)

	// 两次课挤在同一教师、同一教室、同一时段上
	sessions := []domain.TimetableSession{
		{SubjectID: 1, Occurrence: 0, DivisionID: 1, TeacherID: 1, RoomID: 1, SlotID: 1},
		{SubjectID: 1, Occurrence: 1, DivisionID: 1, TeacherID: 1, RoomID: 1, SlotID: 1},
	}

	report, fitness, err := s.EvaluateSessions(sessions)
	require.NoError(t, err)

	assert.Equal(t, int32(1), report.TeacherConflicts)
	assert.Equal(t, int32(1), report.RoomConflicts)
	assert.Equal(t, int32(1), report.GroupConflicts)
	assert.Equal(t, int32(3), report.HardTotal())
	assert.Equal(t, int32(0), report.SoftTotal())
	assert.Equal(t, 3000.0, fitness)
}

func TestEvaluateCleanTimetableScoresZero(t *testing.T) {
	teacher := testTeacher(1, "张伟", 1)
	slots := []*domain.TimeSlot{
		testSlot(1, 1, 1, "08:00:00", "08:45:00", true, domain.SlotTypeLecture),
		testSlot(2, 2, 1, "08:00:00", "08:45:00", true, domain.SlotTypeLecture),
	}
	s := newSingleSubjectScheduler(t, teacher, slots)

	sessions := []domain.TimetableSession{
		{SubjectID: 1, Occurrence: 0, DivisionID: 1, TeacherID: 1, RoomID: 1, SlotID: 1},
		{SubjectID: 1, Occurrence: 1, DivisionID: 1, TeacherID: 1, RoomID: 1, SlotID: 2},
	}

	report, fitness, err := s.EvaluateSessions(sessions)
	require.NoError(t, err)

	assert.Equal(t, int32(0), report.Total())
	assert.Equal(t, 0.0, fitness)
}

func TestEvaluateDetectsRecessViolations(t *testing.T) {
	teacher := testTeacher(1, "张伟", 1)
	slots := []*domain.TimeSlot{
		testSlot(1, 1, 1, "08:00:00", "08:45:00", true, domain.SlotTypeLecture),
		// 讲课时段侵占了 12:00-13:00 的午休窗口
		testSlot(2, 1, 5, "12:30:00", "13:15:00", false, domain.SlotTypeLecture),
	}
	s := newSingleSubjectScheduler(t, teacher, slots)

	sessions := []domain.TimetableSession{
		{SubjectID: 1, Occurrence: 0, DivisionID: 1, TeacherID: 1, RoomID: 1, SlotID: 1},
		{SubjectID: 1, Occurrence: 1, DivisionID: 1, TeacherID: 1, RoomID: 2, SlotID: 2},
	}

	report, _, err := s.EvaluateSessions(sessions)
	require.NoError(t, err)

	assert.Equal(t, int32(1), report.RecessViolations)
}

func TestEvaluateCountsPreferenceViolations(t *testing.T) {
	teacher := testTeacher(1, "张伟", 1)
	teacher.LecturePreference = domain.PreferMorning
	slots := []*domain.TimeSlot{
		testSlot(1, 1, 6, "13:10:00", "13:55:00", false, domain.SlotTypeLecture),
		testSlot(2, 2, 6, "13:10:00", "13:55:00", false, domain.SlotTypeLecture),
	}
	s := newSingleSubjectScheduler(t, teacher, slots)

	// 偏好上午的教师被排在两个下午时段
	sessions := []domain.TimetableSession{
		{SubjectID: 1, Occurrence: 0, DivisionID: 1, TeacherID: 1, RoomID: 1, SlotID: 1},
		{SubjectID: 1, Occurrence: 1, DivisionID: 1, TeacherID: 1, RoomID: 1, SlotID: 2},
	}

	report, fitness, err := s.EvaluateSessions(sessions)
	require.NoError(t, err)

	assert.Equal(t, int32(2), report.PreferenceViolations)
	assert.Equal(t, int32(0), report.HardTotal())
	assert.Equal(t, 10.0, fitness)
}

func TestEvaluateDetectsLabRoomMismatch(t *testing.T) {
	division := &domain.Division{ID: 1, Name: "一年级1班", Year: 1, BatchCount: 1}
	subjects := []*domain.Subject{
		{ID: 1, Name: "物理实验", Year: 1, DivisionID: 1, WeeklySessions: 1, RequiresLab: true},
	}
	teacher := testTeacher(1, "张伟", 1)
	rooms := []*domain.Room{
		{ID: 1, Name: "101", Capacity: 50},
		{ID: 2, Name: "实验楼201", Capacity: 30, IsLab: true},
	}
	slots := []*domain.TimeSlot{
		testSlot(1, 1, 1, "08:00:00", "08:45:00", true, domain.SlotTypeLecture),
		testSlot(2, 1, 8, "15:10:00", "16:40:00", false, domain.SlotTypeLab),
	}
	proficiencies := []*domain.SubjectProficiency{
		{TeacherID: 1, SubjectID: 1, Knowledge: 9, Willingness: 9},
	}

	s, err := New(testParameters(), division, subjects, []*domain.Teacher{teacher}, rooms, slots, proficiencies, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	// 实验课被人工放到了普通教室和讲课时段上
	report, _, err := s.EvaluateSessions([]domain.TimetableSession{
		{SubjectID: 1, Occurrence: 0, DivisionID: 1, TeacherID: 1, RoomID: 1, SlotID: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), report.LabRoomMismatches)

	// 放回实验室和实验时段后不再违反
	report, _, err = s.EvaluateSessions([]domain.TimetableSession{
		{SubjectID: 1, Occurrence: 0, DivisionID: 1, TeacherID: 1, RoomID: 2, SlotID: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, int32(0), report.LabRoomMismatches)
}

func TestEvaluateCountsWorkloadViolations(t *testing.T) {
	teacher := testTeacher(1, "张伟", 1)
	teacher.MinWeeklySessions = 4
	slots := []*domain.TimeSlot{
		testSlot(1, 1, 1, "08:00:00", "08:45:00", true, domain.SlotTypeLecture),
		testSlot(2, 2, 1, "08:00:00", "08:45:00", true, domain.SlotTypeLecture),
	}
	s := newSingleSubjectScheduler(t, teacher, slots)

	// 每周只有 2 次课，低于教师的 4 节下限，差值计 2 次违反
	sessions := []domain.TimetableSession{
		{SubjectID: 1, Occurrence: 0, DivisionID: 1, TeacherID: 1, RoomID: 1, SlotID: 1},
		{SubjectID: 1, Occurrence: 1, DivisionID: 1, TeacherID: 1, RoomID: 1, SlotID: 2},
	}

	report, fitness, err := s.EvaluateSessions(sessions)
	require.NoError(t, err)

	assert.Equal(t, int32(2), report.WorkloadViolations)
	assert.Equal(t, 2.0, fitness)
}

func TestEvaluateIsIdempotent(t *testing.T) {
	s := newTestScheduler(t, 42)

	result, err := s.Schedule(context.Background())
	require.NoError(t, err)

	report1, fitness1, err := s.EvaluateSessions(result.Sessions)
	require.NoError(t, err)
	report2, fitness2, err := s.EvaluateSessions(result.Sessions)
	require.NoError(t, err)

	assert.Equal(t, report1, report2)
	assert.Equal(t, fitness1, fitness2)
	assert.Equal(t, result.Fitness, fitness1)
	assert.Equal(t, result.Violations, *report1)
}

func TestEvaluateCountsCrossYearOverloads(t *testing.T) {
	division := &domain.Division{ID: 1, Name: "二年级1班", Year: 2, BatchCount: 1}
	subjects := []*domain.Subject{
		{ID: 1, Name: "数学", Year: 2, DivisionID: 1, WeeklySessions: 2},
	}
	// 教师本年级为 1，跨年级上限只有 1 节
	teacher := testTeacher(1, "张伟", 1)
	teacher.CrossYearEligible = true
	teacher.MaxCrossYearSessions = 1
	rooms := []*domain.Room{{ID: 1, Name: "101", Capacity: 50}}
	slots := []*domain.TimeSlot{
		testSlot(1, 1, 1, "08:00:00", "08:45:00", true, domain.SlotTypeLecture),
		testSlot(2, 2, 1, "08:00:00", "08:45:00", true, domain.SlotTypeLecture),
	}
	proficiencies := []*domain.SubjectProficiency{
		{TeacherID: 1, SubjectID: 1, Knowledge: 9, Willingness: 9},
	}

	s, err := New(testParameters(), division, subjects, []*domain.Teacher{teacher}, rooms, slots, proficiencies, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	report, _, err := s.EvaluateSessions([]domain.TimetableSession{
		{SubjectID: 1, Occurrence: 0, DivisionID: 1, TeacherID: 1, RoomID: 1, SlotID: 1},
		{SubjectID: 1, Occurrence: 1, DivisionID: 1, TeacherID: 1, RoomID: 1, SlotID: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, int32(1), report.CrossYearOverloads)
}

func TestGroupConflictsBatchSemantics(t *testing.T) {
	batch0, batch1 := int32(0), int32(1)

	// 不同批次在同一时段不算冲突
	assert.Equal(t, int32(0), groupConflicts([]*Gene{
		{subjectID: 1, batch: &batch0},
		{subjectID: 2, batch: &batch1},
	}))

	// 同一批次重叠算冲突
	assert.Equal(t, int32(1), groupConflicts([]*Gene{
		{subjectID: 1, batch: &batch0},
		{subjectID: 2, batch: &batch0},
	}))

	// 整班课与任何课都冲突
	assert.Equal(t, int32(2), groupConflicts([]*Gene{
		{subjectID: 1},
		{subjectID: 2, batch: &batch0},
		{subjectID: 3, batch: &batch1},
	}))
}
