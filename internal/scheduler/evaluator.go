package scheduler

import (
	"math"
	"time"

	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/domain"
)

type resourceSlot struct {
	resourceID int64
	slotID     int64
}

// evaluate 对染色体进行约束评估并写入违约报告与适应度
// 纯函数：不修改任何外部状态，对同一染色体重复评估结果一致
//
// fitness = hardWeight * 硬违反数
//         + preferenceWeight * 偏好违反数
//         + workloadWeight * 工作量违反数
//         + proficiencyWeight * 熟练度违反数
//         + crossYearWeight * 跨年级超额数
func (s *Scheduler) evaluate(ch *Chromosome) {
	report := domain.ViolationReport{}

	teacherSlots := make(map[resourceSlot]int32)
	roomSlots := make(map[resourceSlot]int32)
	slotGenes := make(map[int64][]*Gene) // 同一时段内本班级的所有基因，用于批次冲突检查
	teacherLoad := make(map[int64]int32)
	crossYearLoad := make(map[int64]int32)

	for _, gene := range ch.genes {
		slot := s.slotByID[gene.slotID]
		room := s.roomByID[gene.roomID]
		teacher := s.teacherByID[gene.teacherID]
		subject := s.subjectByID[gene.subjectID]

		teacherSlots[resourceSlot{gene.teacherID, gene.slotID}]++
		roomSlots[resourceSlot{gene.roomID, gene.slotID}]++
		slotGenes[gene.slotID] = append(slotGenes[gene.slotID], gene)
		teacherLoad[gene.teacherID]++

		// 实验课必须落在实验室类型的教室与原子的两节实验时段上
		if gene.requiresLab && (room == nil || !room.IsLab || slot == nil || slot.Type != domain.SlotTypeLab) {
			report.LabRoomMismatches++
		}

		// 任何课都不允许侵占午休
		if slot == nil || s.overlapsRecess(slot) {
			report.RecessViolations++
		}

		if teacher != nil && slot != nil {
			// 教师的讲课/实验半天偏好
			pref := teacher.LecturePreference
			if gene.requiresLab {
				pref = teacher.LabPreference
			}
			if (pref == domain.PreferMorning && !slot.IsMorning) ||
				(pref == domain.PreferAfternoon && slot.IsMorning) {
				report.PreferenceViolations++
			}

			if subject != nil && subject.Year != teacher.HomeYear {
				crossYearLoad[gene.teacherID]++
			}
		}

		// 存在评分更高的候选教师且当前教师评分过低时记一次熟练度违反
		if prof, exists := s.profMap[gene.subjectID][gene.teacherID]; exists {
			score := proficiencyScore(prof)
			if score < s.bestScore[gene.subjectID] && score < s.parameters.MinProficiencyScore {
				report.ProficiencyMismatches++
			}
		}
	}

	// 同一教师/教室在同一时段的每一次额外占用计一次冲突
	for _, cnt := range teacherSlots {
		if cnt > 1 {
			report.TeacherConflicts += cnt - 1
		}
	}
	for _, cnt := range roomSlots {
		if cnt > 1 {
			report.RoomConflicts += cnt - 1
		}
	}

	// 班级/批次冲突：整班课与任何课冲突，批次课只与同批次冲突
	for _, genes := range slotGenes {
		report.GroupConflicts += groupConflicts(genes)
	}

	// 工作量：超出 [min, max] 的部分按差值惩罚
	for teacherID, load := range teacherLoad {
		teacher := s.teacherByID[teacherID]
		if teacher == nil {
			continue
		}
		if load > teacher.MaxWeeklySessions {
			report.WorkloadViolations += load - teacher.MaxWeeklySessions
		} else if load < teacher.MinWeeklySessions {
			report.WorkloadViolations += teacher.MinWeeklySessions - load
		}
	}

	// 工作量方差超过阈值时追加一次违反
	if workloadVariance(teacherLoad) > s.parameters.VarianceThreshold {
		report.WorkloadViolations++
	}

	// 跨年级授课超过教师配置上限的部分
	for teacherID, load := range crossYearLoad {
		teacher := s.teacherByID[teacherID]
		if teacher == nil {
			continue
		}
		if load > teacher.MaxCrossYearSessions {
			report.CrossYearOverloads += load - teacher.MaxCrossYearSessions
		}
	}

	ch.violations = report
	ch.fitness = s.parameters.HardWeight*float64(report.HardTotal()) +
		s.parameters.PreferenceWeight*float64(report.PreferenceViolations) +
		s.parameters.WorkloadWeight*float64(report.WorkloadViolations) +
		s.parameters.ProficiencyWeight*float64(report.ProficiencyMismatches) +
		s.parameters.CrossYearWeight*float64(report.CrossYearOverloads)
}

// groupConflicts 统计同一时段内班级/批次的重叠次数
func groupConflicts(genes []*Gene) int32 {
	if len(genes) <= 1 {
		return 0
	}

	wholeCount := int32(0)
	batchCount := make(map[int32]int32)
	for _, gene := range genes {
		if gene.batch == nil {
			wholeCount++
		} else {
			batchCount[*gene.batch]++
		}
	}

	// 只要有整班课，同一时段的所有课都互相冲突
	if wholeCount > 0 {
		return int32(len(genes)) - 1
	}

	conflicts := int32(0)
	for _, cnt := range batchCount {
		if cnt > 1 {
			conflicts += cnt - 1
		}
	}
	return conflicts
}

// overlapsRecess 判断时段是否与午休窗口重叠
func (s *Scheduler) overlapsRecess(slot *domain.TimeSlot) bool {
	if slot.Type == domain.SlotTypeBreak {
		return true
	}

	start, err1 := time.Parse("15:04:05", slot.StartTime)
	end, err2 := time.Parse("15:04:05", slot.EndTime)
	if err1 != nil || err2 != nil {
		return false
	}

	return start.Before(s.recessEnd) && end.After(s.recessStart)
}

// workloadVariance 计算教师课时量的方差
func workloadVariance(teacherLoad map[int64]int32) float64 {
	if len(teacherLoad) == 0 {
		return 0
	}

	avg := 0.0
	for _, load := range teacherLoad {
		avg += float64(load)
	}
	avg /= float64(len(teacherLoad))

	variance := 0.0
	for _, load := range teacherLoad {
		variance += math.Pow(float64(load)-avg, 2)
	}
	variance /= float64(len(teacherLoad))

	return variance
}
