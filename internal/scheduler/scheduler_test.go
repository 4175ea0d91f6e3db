package scheduler

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/domain"
)

func testParameters() *Parameters {
	return &Parameters{
		PopulationSize: 30,
		MaxGenerations: 60,
		CrossoverRate:  0.8,
		MutationRate:   0.2,
		EliteCount:     2,

		HardWeight:          1000,
		PreferenceWeight:    5,
		WorkloadWeight:      1,
		ProficiencyWeight:   1,
		CrossYearWeight:     1,
		VarianceThreshold:   4,
		MinProficiencyScore: 10,
		AcceptanceThreshold: 0,

		RecessStart: "12:00:00",
		RecessEnd:   "13:00:00",
	}
}

func testTeacher(id int64, name string, year int32) *domain.Teacher {
	return &domain.Teacher{
		ID:                id,
		Name:              name,
		Email:             fmt.Sprintf("t%d@example.edu", id),
		HomeYear:          year,
		MinWeeklySessions: 0,
		MaxWeeklySessions: 20,
		LecturePreference: domain.PreferNone,
		LabPreference:     domain.PreferNone,
		CanTeachLabs:      true,
		Status:            domain.TeacherStatusActive,
	}
}

func testSlot(id int64, day int32, number int32, start string, end string, morning bool, slotType domain.SlotType) *domain.TimeSlot {
	return &domain.TimeSlot{
		ID:         id,
		DayOfWeek:  day,
		SlotNumber: number,
		StartTime:  start,
		EndTime:    end,
		IsMorning:  morning,
		Type:       slotType,
	}
}

// 两个科目、两位教师、四个讲课时段加两个实验时段的小型可行场景
func testWorld() (*domain.Division, []*domain.Subject, []*domain.Teacher, []*domain.Room, []*domain.TimeSlot, []*domain.SubjectProficiency) {
	division := &domain.Division{ID: 1, Name: "一年级1班", Year: 1, BatchCount: 2}

	subjects := []*domain.Subject{
		{ID: 1, Name: "数学", Year: 1, DivisionID: 1, WeeklySessions: 2},
		{ID: 2, Name: "物理实验", Year: 1, DivisionID: 1, WeeklySessions: 2, RequiresLab: true},
	}

	teachers := []*domain.Teacher{
		testTeacher(1, "张伟", 1),
		testTeacher(2, "李娜", 1),
	}

	rooms := []*domain.Room{
		{ID: 1, Name: "101", Capacity: 50},
		{ID: 2, Name: "102", Capacity: 50},
		{ID: 3, Name: "实验楼201", Capacity: 30, IsLab: true},
	}

	slots := []*domain.TimeSlot{
		testSlot(1, 1, 1, "08:00:00", "08:45:00", true, domain.SlotTypeLecture),
		testSlot(2, 1, 2, "08:55:00", "09:40:00", true, domain.SlotTypeLecture),
		testSlot(3, 2, 1, "08:00:00", "08:45:00", true, domain.SlotTypeLecture),
		testSlot(4, 2, 2, "08:55:00", "09:40:00", true, domain.SlotTypeLecture),
		testSlot(5, 1, 8, "15:10:00", "16:40:00", false, domain.SlotTypeLab),
		testSlot(6, 2, 8, "15:10:00", "16:40:00", false, domain.SlotTypeLab),
	}

	proficiencies := []*domain.SubjectProficiency{
		{TeacherID: 1, SubjectID: 1, Knowledge: 9, Willingness: 9},
		{TeacherID: 2, SubjectID: 1, Knowledge: 8, Willingness: 8},
		{TeacherID: 1, SubjectID: 2, Knowledge: 7, Willingness: 9},
		{TeacherID: 2, SubjectID: 2, Knowledge: 9, Willingness: 7},
	}

	return division, subjects, teachers, rooms, slots, proficiencies
}

func newTestScheduler(t *testing.T, seed int64) *Scheduler {
	t.Helper()

	division, subjects, teachers, rooms, slots, proficiencies := testWorld()
	s, err := New(testParameters(), division, subjects, teachers, rooms, slots, proficiencies, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	return s
}

func TestScheduleProducesCompleteSessionSet(t *testing.T) {
	s := newTestScheduler(t, 42)

	result, err := s.Schedule(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Sessions, 4)
	assert.Equal(t, int32(4), result.SessionCount)

	// 每个科目的每个课次必须恰好出现一次
	seen := make(map[string]bool)
	for _, session := range result.Sessions {
		key := fmt.Sprintf("%d/%d", session.SubjectID, session.Occurrence)
		assert.False(t, seen[key], "课次 %s 重复", key)
		seen[key] = true
		assert.Equal(t, int64(1), session.DivisionID)
	}
	assert.Len(t, seen, 4)
}

func TestScheduleConvergesToConflictFree(t *testing.T) {
	s := newTestScheduler(t, 42)

	result, err := s.Schedule(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, int32(0), result.Violations.HardTotal())
	assert.Empty(t, result.Cause)
}

func TestScheduleLabSessionsStayOnLabResources(t *testing.T) {
	s := newTestScheduler(t, 42)

	result, err := s.Schedule(context.Background())
	require.NoError(t, err)

	for _, session := range result.Sessions {
		if session.SubjectID != 2 {
			continue
		}
		assert.Equal(t, int64(3), session.RoomID, "实验课只能安排在实验室")
		assert.Contains(t, []int64{5, 6}, session.SlotID, "实验课只能安排在实验时段")
		require.NotNil(t, session.Batch)
		assert.Contains(t, []int32{0, 1}, *session.Batch)
	}
}

func TestScheduleDeterministicWithSameSeed(t *testing.T) {
	first, err := newTestScheduler(t, 7).Schedule(context.Background())
	require.NoError(t, err)

	second, err := newTestScheduler(t, 7).Schedule(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Sessions, second.Sessions)
	assert.Equal(t, first.Fitness, second.Fitness)
	assert.Equal(t, first.Violations, second.Violations)
}

func TestScheduleBestFitnessNeverRegressesWithMoreGenerations(t *testing.T) {
	run := func(generations int32) float64 {
		division, subjects, teachers, rooms, slots, proficiencies := testWorld()
		parameters := testParameters()
		parameters.MaxGenerations = generations

		s, err := New(parameters, division, subjects, teachers, rooms, slots, proficiencies, rand.New(rand.NewSource(9)))
		require.NoError(t, err)

		result, err := s.Schedule(context.Background())
		require.NoError(t, err)
		return result.Fitness
	}

	// 相同种子下前几代的搜索轨迹完全一致，
	// 历史最优经过深拷贝保留，额外的迭代只可能继续改善
	short := run(3)
	long := run(30)
	assert.LessOrEqual(t, long, short)
}

func TestScheduleReturnsErrorWhenContextCancelled(t *testing.T) {
	s := newTestScheduler(t, 42)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Schedule(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRejectsEmptyRoster(t *testing.T) {
	division, subjects, teachers, rooms, slots, proficiencies := testWorld()
	rng := rand.New(rand.NewSource(1))

	_, err := New(testParameters(), division, nil, teachers, rooms, slots, proficiencies, rng)
	assert.ErrorIs(t, err, ErrConfig)

	_, err = New(testParameters(), division, subjects, nil, rooms, slots, proficiencies, rng)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestNewDetectsInfeasibleSubjects(t *testing.T) {
	division, subjects, teachers, rooms, slots, proficiencies := testWorld()
	rng := rand.New(rand.NewSource(1))

	// 实验课但没有任何实验室
	var lectureRooms []*domain.Room
	for _, room := range rooms {
		if !room.IsLab {
			lectureRooms = append(lectureRooms, room)
		}
	}
	_, err := New(testParameters(), division, subjects, teachers, lectureRooms, slots, proficiencies, rng)
	assert.ErrorIs(t, err, ErrInfeasible)

	// 某科目没有任何具备熟练度记录的教师
	_, err = New(testParameters(), division, subjects, teachers, rooms, slots, proficiencies[:2], rng)
	assert.ErrorIs(t, err, ErrInfeasible)

	// 实验课但没有实验时段
	_, err = New(testParameters(), division, subjects, teachers, rooms, slots[:4], proficiencies, rng)
	assert.ErrorIs(t, err, ErrInfeasible)
}
