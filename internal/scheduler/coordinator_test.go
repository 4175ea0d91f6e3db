package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/domain"
)

// 两个班级共用唯一的教师、教室和时段，冲突不可避免也无法消解
func contestedSnapshot() *Snapshot {
	return &Snapshot{
		Divisions: []*domain.Division{
			{ID: 1, Name: "一年级1班", Year: 1, BatchCount: 1},
			{ID: 2, Name: "一年级2班", Year: 1, BatchCount: 1},
		},
		Subjects: []*domain.Subject{
			{ID: 1, Name: "数学", Year: 1, DivisionID: 1, WeeklySessions: 1},
			{ID: 2, Name: "数学", Year: 1, DivisionID: 2, WeeklySessions: 1},
		},
		Teachers: []*domain.Teacher{testTeacher(1, "张伟", 1)},
		Rooms:    []*domain.Room{{ID: 1, Name: "101", Capacity: 50}},
		Slots: []*domain.TimeSlot{
			testSlot(1, 1, 1, "08:00:00", "08:45:00", true, domain.SlotTypeLecture),
		},
		Proficiencies: []*domain.SubjectProficiency{
			{TeacherID: 1, SubjectID: 1, Knowledge: 9, Willingness: 9},
			{TeacherID: 1, SubjectID: 2, Knowledge: 9, Willingness: 9},
		},
	}
}

func TestRunSchedulesAllDivisions(t *testing.T) {
	division2 := &domain.Division{ID: 2, Name: "一年级2班", Year: 1, BatchCount: 2}
	division, subjects, teachers, rooms, slots, proficiencies := testWorld()

	snapshot := &Snapshot{
		Divisions: []*domain.Division{division, division2},
		Subjects: append(subjects,
			&domain.Subject{ID: 3, Name: "语文", Year: 1, DivisionID: 2, WeeklySessions: 2},
		),
		Teachers: teachers,
		Rooms:    rooms,
		Slots:    slots,
		Proficiencies: append(proficiencies,
			&domain.SubjectProficiency{TeacherID: 1, SubjectID: 3, Knowledge: 8, Willingness: 8},
			&domain.SubjectProficiency{TeacherID: 2, SubjectID: 3, Knowledge: 8, Willingness: 8},
		),
	}

	coordinator := NewCoordinator(testParameters(), snapshot, 42)
	results, report, err := coordinator.Run(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, int32(2), report.TotalDivisions)
	for divisionID, result := range results {
		assert.Equal(t, divisionID, result.DivisionID)
	}
}

func TestRunHonorsTargetDivisions(t *testing.T) {
	division, subjects, teachers, rooms, slots, proficiencies := testWorld()
	snapshot := &Snapshot{
		Divisions: []*domain.Division{
			division,
			{ID: 2, Name: "一年级2班", Year: 1, BatchCount: 1},
		},
		Subjects:      subjects,
		Teachers:      teachers,
		Rooms:         rooms,
		Slots:         slots,
		Proficiencies: proficiencies,
	}

	coordinator := NewCoordinator(testParameters(), snapshot, 42)
	results, report, err := coordinator.Run(context.Background(), []int64{1})
	require.NoError(t, err)

	require.Len(t, results, 1)
	require.Contains(t, results, int64(1))
	assert.Equal(t, int32(1), report.TotalDivisions)
}

func TestRunIsolatesDivisionFailures(t *testing.T) {
	division, subjects, teachers, rooms, slots, proficiencies := testWorld()
	snapshot := &Snapshot{
		Divisions: []*domain.Division{
			division,
			// 该班级没有任何科目，排课必然失败
			{ID: 2, Name: "一年级2班", Year: 1, BatchCount: 1},
		},
		Subjects:      subjects,
		Teachers:      teachers,
		Rooms:         rooms,
		Slots:         slots,
		Proficiencies: proficiencies,
	}

	coordinator := NewCoordinator(testParameters(), snapshot, 42)
	results, report, err := coordinator.Run(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.True(t, results[1].Success)
	assert.False(t, results[2].Success)
	assert.NotEmpty(t, results[2].Cause)
	assert.Equal(t, int32(1), report.SuccessfulDivisions)
	assert.Equal(t, 50.0, report.SuccessRate)
}

func TestRunReportsUnresolvableConflicts(t *testing.T) {
	coordinator := NewCoordinator(testParameters(), contestedSnapshot(), 42)
	results, report, err := coordinator.Run(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, results, 2)

	// 资源池只有一种组合，两个班级必然撞在同一 (教师, 时段) 和 (教室, 时段) 上
	require.NotEmpty(t, report.Conflicts)
	for _, conflict := range report.Conflicts {
		assert.False(t, conflict.Resolved)
		assert.Equal(t, []int64{1, 2}, conflict.DivisionIDs)
	}
	assert.False(t, report.ConflictFree)
}

// 两个班级共用一位教师但时段充足，败方重排后冲突应当被消解
func TestResolveConflictsRerunsLoserAndMarksResolved(t *testing.T) {
	snapshot := &Snapshot{
		Divisions: []*domain.Division{
			{ID: 1, Name: "一年级1班", Year: 1, BatchCount: 1},
			{ID: 2, Name: "一年级2班", Year: 1, BatchCount: 1},
		},
		Subjects: []*domain.Subject{
			{ID: 1, Name: "数学", Year: 1, DivisionID: 1, WeeklySessions: 1},
			{ID: 2, Name: "数学", Year: 1, DivisionID: 2, WeeklySessions: 1},
		},
		Teachers: []*domain.Teacher{testTeacher(1, "张伟", 1)},
		Rooms: []*domain.Room{
			{ID: 1, Name: "101", Capacity: 50},
			{ID: 2, Name: "102", Capacity: 50},
		},
		Slots: []*domain.TimeSlot{
			testSlot(1, 1, 1, "08:00:00", "08:45:00", true, domain.SlotTypeLecture),
			testSlot(2, 1, 2, "08:55:00", "09:40:00", true, domain.SlotTypeLecture),
			testSlot(3, 2, 1, "08:00:00", "08:45:00", true, domain.SlotTypeLecture),
		},
		Proficiencies: []*domain.SubjectProficiency{
			{TeacherID: 1, SubjectID: 1, Knowledge: 9, Willingness: 9},
			{TeacherID: 1, SubjectID: 2, Knowledge: 9, Willingness: 9},
		},
	}
	coordinator := NewCoordinator(testParameters(), snapshot, 42)

	// 初始课表把同一位教师排进了同一时段，适应度更差的 2 班是败方
	results := map[int64]*domain.TimetableResult{
		1: {DivisionID: 1, Success: true, Fitness: 0, SessionCount: 1, Sessions: []domain.TimetableSession{
			{SubjectID: 1, Occurrence: 0, DivisionID: 1, TeacherID: 1, RoomID: 1, SlotID: 1},
		}},
		2: {DivisionID: 2, Success: true, Fitness: 5, SessionCount: 1, Sessions: []domain.TimetableSession{
			{SubjectID: 2, Occurrence: 0, DivisionID: 2, TeacherID: 1, RoomID: 2, SlotID: 1},
		}},
	}

	conflicts := coordinator.resolveConflicts(context.Background(), snapshot.Divisions, results)

	require.Len(t, conflicts, 1)
	assert.Equal(t, domain.ConflictTypeTeacher, conflicts[0].Type)
	assert.True(t, conflicts[0].Resolved)

	// 败方避开了被禁用的时段，重排后的课表依旧可行
	require.Len(t, results[2].Sessions, 1)
	assert.NotEqual(t, int64(1), results[2].Sessions[0].SlotID)
	assert.True(t, results[2].Success)

	report := coordinator.buildReport(results, conflicts)
	assert.True(t, report.ConflictFree)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	coordinator := NewCoordinator(testParameters(), contestedSnapshot(), 42)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := coordinator.Run(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDetectConflictsFindsSharedResources(t *testing.T) {
	results := map[int64]*domain.TimetableResult{
		1: {
			DivisionID: 1,
			Sessions: []domain.TimetableSession{
				{SubjectID: 1, DivisionID: 1, TeacherID: 10, RoomID: 20, SlotID: 1},
			},
		},
		2: {
			DivisionID: 2,
			Sessions: []domain.TimetableSession{
				{SubjectID: 2, DivisionID: 2, TeacherID: 10, RoomID: 21, SlotID: 1},
			},
		},
	}

	conflicts := detectConflicts(results)
	require.Len(t, conflicts, 1)
	assert.Equal(t, domain.ConflictTypeTeacher, conflicts[0].Type)
	assert.Equal(t, int64(10), conflicts[0].ResourceID)
	assert.Equal(t, int64(1), conflicts[0].SlotID)
	assert.Equal(t, []int64{1, 2}, conflicts[0].DivisionIDs)
}

func TestDetectConflictsIgnoresDistinctSlots(t *testing.T) {
	results := map[int64]*domain.TimetableResult{
		1: {Sessions: []domain.TimetableSession{{TeacherID: 10, RoomID: 20, SlotID: 1}}},
		2: {Sessions: []domain.TimetableSession{{TeacherID: 10, RoomID: 20, SlotID: 2}}},
	}

	assert.Empty(t, detectConflicts(results))
}

func TestPickLoserPrefersWorseFitness(t *testing.T) {
	conflict := domain.ResourceConflict{DivisionIDs: []int64{1, 2}}

	results := map[int64]*domain.TimetableResult{
		1: {Fitness: 2000},
		2: {Fitness: 5},
	}
	assert.Equal(t, int64(1), pickLoser(conflict, results))

	// 适应度相同时班级 ID 较大的一方重排
	results[1].Fitness = 5
	assert.Equal(t, int64(2), pickLoser(conflict, results))
}
