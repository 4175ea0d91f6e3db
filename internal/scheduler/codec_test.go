package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/domain"
)

func TestBuildTemplateRotatesLabBatches(t *testing.T) {
	division := &domain.Division{ID: 1, Name: "一年级1班", Year: 1, BatchCount: 2}
	subjects := []*domain.Subject{
		{ID: 1, Name: "物理实验", Year: 1, DivisionID: 1, WeeklySessions: 4, RequiresLab: true},
	}
	teacher := testTeacher(1, "张伟", 1)
	rooms := []*domain.Room{{ID: 1, Name: "实验楼201", Capacity: 30, IsLab: true}}
	slots := []*domain.TimeSlot{
		testSlot(1, 1, 8, "15:10:00", "16:40:00", false, domain.SlotTypeLab),
	}
	proficiencies := []*domain.SubjectProficiency{
		{TeacherID: 1, SubjectID: 1, Knowledge: 9, Willingness: 9},
	}

	s, err := New(testParameters(), division, subjects, []*domain.Teacher{teacher}, rooms, slots, proficiencies, nil)
	require.NoError(t, err)

	genes := s.buildTemplate()
	require.Len(t, genes, 4)

	// 实验课按课次在各小组间轮换
	for i, gene := range genes {
		require.NotNil(t, gene.batch)
		assert.Equal(t, int32(i%2), *gene.batch)
		assert.Equal(t, int32(i), gene.occurrence)
		assert.True(t, gene.requiresLab)
	}
}

func TestEncodeRejectsMalformedSessionSets(t *testing.T) {
	s := newTestScheduler(t, 1)

	// 课次重复
	_, err := s.encode([]domain.TimetableSession{
		{SubjectID: 1, Occurrence: 0, DivisionID: 1, TeacherID: 1, RoomID: 1, SlotID: 1},
		{SubjectID: 1, Occurrence: 0, DivisionID: 1, TeacherID: 2, RoomID: 2, SlotID: 2},
		{SubjectID: 1, Occurrence: 1, DivisionID: 1, TeacherID: 1, RoomID: 1, SlotID: 3},
		{SubjectID: 2, Occurrence: 0, DivisionID: 1, TeacherID: 1, RoomID: 3, SlotID: 5},
	})
	assert.ErrorContains(t, err, "出现了多次")

	// 科目不属于该班级
	_, err = s.encode([]domain.TimetableSession{
		{SubjectID: 99, Occurrence: 0, DivisionID: 1, TeacherID: 1, RoomID: 1, SlotID: 1},
	})
	assert.ErrorContains(t, err, "不在该班级的科目要求范围内")

	// 会话数量不足
	_, err = s.encode([]domain.TimetableSession{
		{SubjectID: 1, Occurrence: 0, DivisionID: 1, TeacherID: 1, RoomID: 1, SlotID: 1},
	})
	assert.ErrorContains(t, err, "不符")
}

func TestEvaluateSessionsHonorsSubmittedBatches(t *testing.T) {
	s := newTestScheduler(t, 1)

	batchOf := func(b int32) *int32 { return &b }
	sessions := []domain.TimetableSession{
		{SubjectID: 1, Occurrence: 0, DivisionID: 1, TeacherID: 1, RoomID: 1, SlotID: 1},
		{SubjectID: 1, Occurrence: 1, DivisionID: 1, TeacherID: 1, RoomID: 1, SlotID: 2},
		// 两次实验课都标注了第 0 批次且落在同一时段，属于同批次撞课
		{SubjectID: 2, Occurrence: 0, DivisionID: 1, Batch: batchOf(0), TeacherID: 1, RoomID: 3, SlotID: 5},
		{SubjectID: 2, Occurrence: 1, DivisionID: 1, Batch: batchOf(0), TeacherID: 2, RoomID: 3, SlotID: 5},
	}

	report, _, err := s.EvaluateSessions(sessions)
	require.NoError(t, err)
	assert.Equal(t, int32(1), report.GroupConflicts)

	// 改成不同批次后，同一时段的并行实验不再是班级冲突
	sessions[3].Batch = batchOf(1)
	report, _, err = s.EvaluateSessions(sessions)
	require.NoError(t, err)
	assert.Equal(t, int32(0), report.GroupConflicts)
}

func TestDecodeEncodeRoundTripPreservesScore(t *testing.T) {
	s := newTestScheduler(t, 42)

	result, err := s.Schedule(context.Background())
	require.NoError(t, err)

	// 解码出的课表重新编码评估后得分不变
	report, fitness, err := s.EvaluateSessions(result.Sessions)
	require.NoError(t, err)

	assert.Equal(t, result.Fitness, fitness)
	assert.Equal(t, result.Violations, *report)
}
