package scheduler

import (
	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/domain"
)

// randomInitChromosome 随机初始化一个染色体
// 初始个体保证结构合法：实验课只会落在实验室与实验时段上，只是冲突尚未消除
func (s *Scheduler) randomInitChromosome() *Chromosome {
	genes := s.buildTemplate()
	for _, gene := range genes {
		s.randomAssign(gene)
	}
	return &Chromosome{genes: genes}
}

// randomAssign 为单个基因随机指派 (teacher, slot, room)
func (s *Scheduler) randomAssign(gene *Gene) {
	teachers := s.teacherPool[gene.subjectID]
	slots := s.slotPool[gene.subjectID]

	// 先随机选教师，再在未被禁用的时段中随机选一个
	gene.teacherID = 0
	for _, idx := range s.rng.Perm(len(teachers)) {
		teacher := teachers[idx]

		allowed := make([]*domain.TimeSlot, 0, len(slots))
		for _, slot := range slots {
			if !s.excluded.teacherSlotBanned(teacher.ID, slot.ID) {
				allowed = append(allowed, slot)
			}
		}
		if len(allowed) == 0 {
			continue
		}

		gene.teacherID = teacher.ID
		gene.slotID = allowed[s.rng.Intn(len(allowed))].ID
		break
	}

	if gene.teacherID == 0 {
		// 所有组合都被禁用时退回到无视禁用的随机指派，残余冲突交由协调器上报
		gene.teacherID = teachers[s.rng.Intn(len(teachers))].ID
		gene.slotID = slots[s.rng.Intn(len(slots))].ID
	}

	gene.roomID = s.pickRoom(gene.subjectID, gene.slotID)
}

func (s *Scheduler) pickRoom(subjectID int64, slotID int64) int64 {
	rooms := s.roomPool[subjectID]

	allowed := make([]*domain.Room, 0, len(rooms))
	for _, room := range rooms {
		if !s.excluded.roomSlotBanned(room.ID, slotID) {
			allowed = append(allowed, room)
		}
	}
	if len(allowed) == 0 {
		allowed = rooms
	}

	return allowed[s.rng.Intn(len(allowed))].ID
}

// 使用轮盘赌来进行选择
// 适应度越小越好，因此以 1/(1+fitness) 作为被选中的权重
func (s *Scheduler) selectByRoulette(pop []*Chromosome) *Chromosome {
	sumWeight := 0.0
	for _, ch := range pop {
		sumWeight += 1 / (1 + ch.fitness)
	}
	pick := s.rng.Float64() * sumWeight
	partial := 0.0

	for _, ch := range pop {
		partial += 1 / (1 + ch.fitness)
		if partial >= pick {
			return ch
		}
	}

	// 理论上不会运行到这个地方
	return pop[len(pop)-1]
}

// 单点交叉
// 种群内所有染色体的基因按相同的科目-次序模板对齐，
// 交换任意后缀都不会破坏每个科目每周课次数的不变量
func (s *Scheduler) singlePointCrossover(ch1 *Chromosome, ch2 *Chromosome) {
	length1 := len(ch1.genes)
	length2 := len(ch2.genes)

	if length1 != length2 {
		// 按理来说两个染色体的长度应该能保证是相等的
		// 这里只是以防万一
		return
	}

	point := s.rng.Intn(length1)

	for i := point; i < length1; i++ {
		ch1.genes[i], ch2.genes[i] = ch2.genes[i], ch1.genes[i]
	}
}

// 变异
// 以一定概率重新指派单个基因的教师、教室或时段之一
func (s *Scheduler) mutate(ch *Chromosome) {
	for _, gene := range ch.genes {
		if s.rng.Float64() > s.parameters.MutationRate {
			continue
		}

		switch s.rng.Intn(3) {
		case 0:
			s.mutateTeacher(gene)
		case 1:
			gene.roomID = s.pickRoom(gene.subjectID, gene.slotID)
		case 2:
			s.mutateSlot(gene)
		}
	}
}

func (s *Scheduler) mutateTeacher(gene *Gene) {
	var candidates []*domain.Teacher
	for _, teacher := range s.teacherPool[gene.subjectID] {
		if teacher.ID == gene.teacherID {
			// 当前教师不参与重选
			continue
		}
		if s.excluded.teacherSlotBanned(teacher.ID, gene.slotID) {
			continue
		}
		candidates = append(candidates, teacher)
	}

	if len(candidates) > 0 {
		gene.teacherID = candidates[s.rng.Intn(len(candidates))].ID
	}
}

func (s *Scheduler) mutateSlot(gene *Gene) {
	var candidates []*domain.TimeSlot
	for _, slot := range s.slotPool[gene.subjectID] {
		if slot.ID == gene.slotID {
			continue
		}
		if s.excluded.teacherSlotBanned(gene.teacherID, slot.ID) {
			continue
		}
		candidates = append(candidates, slot)
	}

	if len(candidates) > 0 {
		gene.slotID = candidates[s.rng.Intn(len(candidates))].ID
	}
}
