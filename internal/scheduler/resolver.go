package scheduler

import (
	"fmt"
	"sort"

	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/domain"
)

// Resolver 处理教师离职/休假后的课程改派
// 只在既有课表上重新指派教师，不重新执行进化搜索
type Resolver struct {
	teacherByID map[int64]*domain.Teacher
	subjectByID map[int64]*domain.Subject
	profMap     map[int64]map[int64]*domain.SubjectProficiency
}

func NewResolver(teachers []*domain.Teacher, subjects []*domain.Subject, proficiencies []*domain.SubjectProficiency) *Resolver {
	r := &Resolver{
		teacherByID: make(map[int64]*domain.Teacher, len(teachers)),
		subjectByID: make(map[int64]*domain.Subject, len(subjects)),
		profMap:     make(map[int64]map[int64]*domain.SubjectProficiency),
	}

	for _, teacher := range teachers {
		r.teacherByID[teacher.ID] = teacher
	}
	for _, subject := range subjects {
		r.subjectByID[subject.ID] = subject
	}
	for _, prof := range proficiencies {
		if _, exists := r.profMap[prof.SubjectID]; !exists {
			r.profMap[prof.SubjectID] = make(map[int64]*domain.SubjectProficiency)
		}
		r.profMap[prof.SubjectID][prof.TeacherID] = prof
	}

	return r
}

// Replace 找出离任教师名下的所有会话并逐科目改派给最合适的在职替代者
// 改派直接写回传入的课表会话；找不到合格替代者的科目保留原指派并标记为待人工处理
func (r *Resolver) Replace(leaving *domain.Teacher, results []*domain.TimetableResult) *domain.ReplacementReport {
	report := &domain.ReplacementReport{TeacherID: leaving.ID}

	// 统计所有课表中每位教师的现有课时量，替代者必须有足够的余量
	teacherLoad := make(map[int64]int32)
	for _, result := range results {
		for _, session := range result.Sessions {
			teacherLoad[session.TeacherID]++
		}
	}

	// 受影响的会话按 (班级, 科目) 分组，改派以科目为单位保持教学连续性
	type affectedGroup struct {
		divisionID int64
		subjectID  int64
	}
	groups := make(map[affectedGroup][]*domain.TimetableSession)
	var order []affectedGroup

	for _, result := range results {
		for i := range result.Sessions {
			session := &result.Sessions[i]
			if session.TeacherID != leaving.ID {
				continue
			}
			key := affectedGroup{session.DivisionID, session.SubjectID}
			if _, exists := groups[key]; !exists {
				order = append(order, key)
			}
			groups[key] = append(groups[key], session)
		}
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].divisionID != order[j].divisionID {
			return order[i].divisionID < order[j].divisionID
		}
		return order[i].subjectID < order[j].subjectID
	})

	for _, key := range order {
		sessions := groups[key]
		subject := r.subjectByID[key.subjectID]
		if subject == nil {
			report.Unresolved = append(report.Unresolved, domain.UnresolvedSubject{
				SubjectID:  key.subjectID,
				DivisionID: key.divisionID,
				Reason:     "科目数据缺失",
			})
			continue
		}

		substitute := r.bestSubstitute(leaving, subject, int32(len(sessions)), teacherLoad)
		if substitute == nil {
			// 宁可留待人工指派，也不强行分配不合格的教师
			report.Unresolved = append(report.Unresolved, domain.UnresolvedSubject{
				SubjectID:  subject.ID,
				DivisionID: key.divisionID,
				Reason:     fmt.Sprintf("科目 %s 没有具备资格且课时有余量的替代教师", subject.Name),
			})
			continue
		}

		for _, session := range sessions {
			report.Reassigned = append(report.Reassigned, domain.SessionReassignment{
				SubjectID:     session.SubjectID,
				DivisionID:    session.DivisionID,
				SlotID:        session.SlotID,
				Occurrence:    session.Occurrence,
				Batch:         session.Batch,
				FromTeacherID: leaving.ID,
				ToTeacherID:   substitute.ID,
			})
			session.TeacherID = substitute.ID
			report.AffectedRows++
		}

		teacherLoad[substitute.ID] += int32(len(sessions))
		teacherLoad[leaving.ID] -= int32(len(sessions))
	}

	return report
}

// bestSubstitute 按 knowledge+willingness 降序挑选最优的合格替代教师
// 并列时偏向 willingness 更高者，再并列时取 ID 较小者以保证结果确定
func (r *Resolver) bestSubstitute(leaving *domain.Teacher, subject *domain.Subject, neededSessions int32, teacherLoad map[int64]int32) *domain.Teacher {
	var best *domain.Teacher
	var bestProf *domain.SubjectProficiency

	for teacherID, prof := range r.profMap[subject.ID] {
		if teacherID == leaving.ID {
			continue
		}

		teacher := r.teacherByID[teacherID]
		if teacher == nil || teacher.Status != domain.TeacherStatusActive {
			continue
		}
		if subject.RequiresLab && !teacher.CanTeachLabs {
			continue
		}
		if teacher.HomeYear != subject.Year && !teacher.CrossYearEligible {
			continue
		}
		if teacherLoad[teacherID]+neededSessions > teacher.MaxWeeklySessions {
			continue
		}

		if best == nil ||
			proficiencyScore(prof) > proficiencyScore(bestProf) ||
			(proficiencyScore(prof) == proficiencyScore(bestProf) && prof.Willingness > bestProf.Willingness) ||
			(proficiencyScore(prof) == proficiencyScore(bestProf) && prof.Willingness == bestProf.Willingness && teacherID < best.ID) {
			best = teacher
			bestProf = prof
		}
	}

	return best
}
