package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/domain"
)

func TestReplaceReassignsToBestQualifiedSubstitute(t *testing.T) {
	leaving := testTeacher(1, "张伟", 1)
	leaving.Status = domain.TeacherStatusResigned

	strong := testTeacher(2, "李娜", 1)
	weak := testTeacher(3, "王强", 1)

	subjects := []*domain.Subject{
		{ID: 1, Name: "数学", Year: 1, DivisionID: 1, WeeklySessions: 2},
	}
	proficiencies := []*domain.SubjectProficiency{
		{TeacherID: 1, SubjectID: 1, Knowledge: 9, Willingness: 9},
		{TeacherID: 2, SubjectID: 1, Knowledge: 9, Willingness: 8},
		{TeacherID: 3, SubjectID: 1, Knowledge: 5, Willingness: 5},
	}

	results := []*domain.TimetableResult{
		{
			DivisionID: 1,
			Sessions: []domain.TimetableSession{
				{SubjectID: 1, Occurrence: 0, DivisionID: 1, TeacherID: 1, RoomID: 1, SlotID: 1},
				{SubjectID: 1, Occurrence: 1, DivisionID: 1, TeacherID: 1, RoomID: 1, SlotID: 2},
			},
		},
	}

	resolver := NewResolver([]*domain.Teacher{leaving, strong, weak}, subjects, proficiencies)
	report := resolver.Replace(leaving, results)

	assert.Equal(t, int64(1), report.TeacherID)
	assert.Empty(t, report.Unresolved)
	require.Len(t, report.Reassigned, 2)
	assert.Equal(t, int32(2), report.AffectedRows)

	for _, reassignment := range report.Reassigned {
		assert.Equal(t, int64(1), reassignment.FromTeacherID)
		assert.Equal(t, int64(2), reassignment.ToTeacherID)
	}

	// 改派直接写回课表会话
	for _, session := range results[0].Sessions {
		assert.Equal(t, int64(2), session.TeacherID)
	}
}

func TestReplaceSkipsOverloadedSubstitutes(t *testing.T) {
	leaving := testTeacher(1, "张伟", 1)
	leaving.Status = domain.TeacherStatusResigned

	// 评分更高但课时余量不足
	busy := testTeacher(2, "李娜", 1)
	busy.MaxWeeklySessions = 2
	spare := testTeacher(3, "王强", 1)

	subjects := []*domain.Subject{
		{ID: 1, Name: "数学", Year: 1, DivisionID: 1, WeeklySessions: 2},
	}
	proficiencies := []*domain.SubjectProficiency{
		{TeacherID: 2, SubjectID: 1, Knowledge: 10, Willingness: 10},
		{TeacherID: 3, SubjectID: 1, Knowledge: 6, Willingness: 6},
	}

	results := []*domain.TimetableResult{
		{
			DivisionID: 1,
			Sessions: []domain.TimetableSession{
				{SubjectID: 1, Occurrence: 0, DivisionID: 1, TeacherID: 1, SlotID: 1},
				{SubjectID: 1, Occurrence: 1, DivisionID: 1, TeacherID: 1, SlotID: 2},
				// busy 老师已有 2 节课，接手后将超出上限
				{SubjectID: 1, Occurrence: 2, DivisionID: 1, TeacherID: 2, SlotID: 3},
				{SubjectID: 1, Occurrence: 3, DivisionID: 1, TeacherID: 2, SlotID: 4},
			},
		},
	}

	resolver := NewResolver([]*domain.Teacher{leaving, busy, spare}, subjects, proficiencies)
	report := resolver.Replace(leaving, results)

	require.Len(t, report.Reassigned, 2)
	for _, reassignment := range report.Reassigned {
		assert.Equal(t, int64(3), reassignment.ToTeacherID)
	}
}

func TestReplaceLeavesUnresolvableSubjectsUntouched(t *testing.T) {
	leaving := testTeacher(1, "张伟", 1)
	leaving.Status = domain.TeacherStatusResigned

	// 唯一的候选教师不能承担实验课
	candidate := testTeacher(2, "李娜", 1)
	candidate.CanTeachLabs = false

	subjects := []*domain.Subject{
		{ID: 1, Name: "物理实验", Year: 1, DivisionID: 1, WeeklySessions: 1, RequiresLab: true},
	}
	proficiencies := []*domain.SubjectProficiency{
		{TeacherID: 2, SubjectID: 1, Knowledge: 10, Willingness: 10},
	}

	results := []*domain.TimetableResult{
		{
			DivisionID: 1,
			Sessions: []domain.TimetableSession{
				{SubjectID: 1, Occurrence: 0, DivisionID: 1, TeacherID: 1, SlotID: 1},
			},
		},
	}

	resolver := NewResolver([]*domain.Teacher{leaving, candidate}, subjects, proficiencies)
	report := resolver.Replace(leaving, results)

	assert.Empty(t, report.Reassigned)
	require.Len(t, report.Unresolved, 1)
	assert.Equal(t, int64(1), report.Unresolved[0].SubjectID)
	assert.NotEmpty(t, report.Unresolved[0].Reason)

	// 原指派保留，留待人工处理
	assert.Equal(t, int64(1), results[0].Sessions[0].TeacherID)
}

func TestReplaceRejectsIneligibleCrossYearSubstitutes(t *testing.T) {
	leaving := testTeacher(1, "张伟", 2)
	leaving.Status = domain.TeacherStatusResigned
	leaving.CrossYearEligible = true

	// 候选教师属于一年级且不具备跨年级资格
	candidate := testTeacher(2, "李娜", 1)

	subjects := []*domain.Subject{
		{ID: 1, Name: "数学", Year: 2, DivisionID: 1, WeeklySessions: 1},
	}
	proficiencies := []*domain.SubjectProficiency{
		{TeacherID: 2, SubjectID: 1, Knowledge: 10, Willingness: 10},
	}

	results := []*domain.TimetableResult{
		{
			DivisionID: 1,
			Sessions: []domain.TimetableSession{
				{SubjectID: 1, Occurrence: 0, DivisionID: 1, TeacherID: 1, SlotID: 1},
			},
		},
	}

	resolver := NewResolver([]*domain.Teacher{leaving, candidate}, subjects, proficiencies)
	report := resolver.Replace(leaving, results)

	assert.Empty(t, report.Reassigned)
	assert.Len(t, report.Unresolved, 1)
}

func TestReplaceAccountsForLoadAcrossGroups(t *testing.T) {
	leaving := testTeacher(1, "张伟", 1)
	leaving.Status = domain.TeacherStatusResigned

	// 余量恰好只够接手一个科目
	substitute := testTeacher(2, "李娜", 1)
	substitute.MaxWeeklySessions = 2

	subjects := []*domain.Subject{
		{ID: 1, Name: "数学", Year: 1, DivisionID: 1, WeeklySessions: 2},
		{ID: 2, Name: "语文", Year: 1, DivisionID: 1, WeeklySessions: 2},
	}
	proficiencies := []*domain.SubjectProficiency{
		{TeacherID: 2, SubjectID: 1, Knowledge: 10, Willingness: 10},
		{TeacherID: 2, SubjectID: 2, Knowledge: 10, Willingness: 10},
	}

	results := []*domain.TimetableResult{
		{
			DivisionID: 1,
			Sessions: []domain.TimetableSession{
				{SubjectID: 1, Occurrence: 0, DivisionID: 1, TeacherID: 1, SlotID: 1},
				{SubjectID: 1, Occurrence: 1, DivisionID: 1, TeacherID: 1, SlotID: 2},
				{SubjectID: 2, Occurrence: 0, DivisionID: 1, TeacherID: 1, SlotID: 3},
				{SubjectID: 2, Occurrence: 1, DivisionID: 1, TeacherID: 1, SlotID: 4},
			},
		},
	}

	resolver := NewResolver([]*domain.Teacher{leaving, substitute}, subjects, proficiencies)
	report := resolver.Replace(leaving, results)

	// 第一个科目改派成功后替代者课时用尽，第二个科目只能留待人工处理
	assert.Len(t, report.Reassigned, 2)
	require.Len(t, report.Unresolved, 1)
	assert.Equal(t, int64(2), report.Unresolved[0].SubjectID)
}
