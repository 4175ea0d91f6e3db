package scheduler

import "github.com/sysu-ecnc-dev/timetable-manager/backend/internal/domain"

// eligibleTeacher 判断教师是否有资格承担某科目：
// 在职、具备该科目的熟练度记录、实验课需具备实验教学能力、跨年级需具备相应资格
func (s *Scheduler) eligibleTeacher(teacher *domain.Teacher, subject *domain.Subject) bool {
	if teacher.Status != domain.TeacherStatusActive {
		return false
	}
	if subject.RequiresLab && !teacher.CanTeachLabs {
		return false
	}
	if teacher.HomeYear != subject.Year && !teacher.CrossYearEligible {
		return false
	}
	if _, exists := s.profMap[subject.ID][teacher.ID]; !exists {
		return false
	}
	return true
}

// eligibleSlot 判断时段是否可承载某科目：
// 实验课必须使用原子的两节实验时段，理论课使用单节讲课时段，午休及项目时段不参与常规排课
func (s *Scheduler) eligibleSlot(slot *domain.TimeSlot, subject *domain.Subject) bool {
	if subject.RequiresLab {
		return slot.Type == domain.SlotTypeLab
	}
	return slot.Type == domain.SlotTypeLecture
}

func proficiencyScore(prof *domain.SubjectProficiency) int32 {
	return prof.Knowledge + prof.Willingness
}
