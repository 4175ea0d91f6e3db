package scheduler

import (
	"fmt"

	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/domain"
)

// buildTemplate 按科目 ID 与课次序号生成规范的基因序列
// 种群内所有染色体共享同一模板顺序，索引 i 永远对应同一个 (科目, 课次)，
// 因此交叉重组不可能丢失或复制任何科目的课次
func (s *Scheduler) buildTemplate() []*Gene {
	var genes []*Gene

	for _, subject := range s.subjects {
		for occ := int32(0); occ < subject.WeeklySessions; occ++ {
			var batch *int32
			if subject.RequiresLab && s.division.BatchCount > 1 {
				// 实验课按课次轮换到各个小组
				b := occ % s.division.BatchCount
				batch = &b
			}
			genes = append(genes, &Gene{
				subjectID:   subject.ID,
				occurrence:  occ,
				batch:       batch,
				requiresLab: subject.RequiresLab,
			})
		}
	}

	return genes
}

// decode 将染色体还原为可持久化的课表会话列表
func (s *Scheduler) decode(ch *Chromosome) []domain.TimetableSession {
	sessions := make([]domain.TimetableSession, 0, len(ch.genes))

	for _, gene := range ch.genes {
		var batch *int32
		if gene.batch != nil {
			b := *gene.batch
			batch = &b
		}
		sessions = append(sessions, domain.TimetableSession{
			SubjectID:  gene.subjectID,
			Occurrence: gene.occurrence,
			DivisionID: s.division.ID,
			Batch:      batch,
			TeacherID:  gene.teacherID,
			RoomID:     gene.roomID,
			SlotID:     gene.slotID,
		})
	}

	return sessions
}

type subjectOccurrence struct {
	subjectID  int64
	occurrence int32
}

// encode 将既有课表会话映射回规范模板上的染色体
// 会话数量必须与每个科目配置的每周课次精确匹配，否则报错
func (s *Scheduler) encode(sessions []domain.TimetableSession) (*Chromosome, error) {
	genes := s.buildTemplate()

	index := make(map[subjectOccurrence]*Gene, len(genes))
	for _, gene := range genes {
		index[subjectOccurrence{gene.subjectID, gene.occurrence}] = gene
	}

	assigned := make(map[subjectOccurrence]bool, len(genes))
	for _, session := range sessions {
		key := subjectOccurrence{session.SubjectID, session.Occurrence}

		gene, exists := index[key]
		if !exists {
			return nil, fmt.Errorf("会话 (科目 %d, 课次 %d) 不在该班级的科目要求范围内", session.SubjectID, session.Occurrence)
		}
		if assigned[key] {
			return nil, fmt.Errorf("会话 (科目 %d, 课次 %d) 出现了多次", session.SubjectID, session.Occurrence)
		}
		assigned[key] = true

		gene.teacherID = session.TeacherID
		gene.roomID = session.RoomID
		gene.slotID = session.SlotID

		// 批次以提交的会话为准，不能沿用模板的默认轮换，
		// 否则同批次撞时段的课表会被误判为无冲突
		if session.Batch != nil {
			b := *session.Batch
			gene.batch = &b
		} else {
			gene.batch = nil
		}
	}

	if len(assigned) != len(genes) {
		return nil, fmt.Errorf("课表会话数 %d 与科目每周课次要求 %d 不符", len(assigned), len(genes))
	}

	return &Chromosome{genes: genes}, nil
}
