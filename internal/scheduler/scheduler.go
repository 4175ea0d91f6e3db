package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/domain"
)

var (
	// ErrConfig: 班级缺少必要的名册数据，该班级被跳过但不影响其他班级
	ErrConfig = errors.New("排课配置不完整")
	// ErrInfeasible: 硬约束下不存在任何可行指派
	ErrInfeasible = errors.New("不存在可行的排课方案")
)

// exclusions: 跨班级冲突消解时禁止败方班级再使用的 (资源, 时段) 组合
type exclusions struct {
	teacherSlots map[int64]map[int64]bool
	roomSlots    map[int64]map[int64]bool
}

func newExclusions() *exclusions {
	return &exclusions{
		teacherSlots: make(map[int64]map[int64]bool),
		roomSlots:    make(map[int64]map[int64]bool),
	}
}

func (e *exclusions) banTeacherSlot(teacherID int64, slotID int64) {
	if _, exists := e.teacherSlots[teacherID]; !exists {
		e.teacherSlots[teacherID] = make(map[int64]bool)
	}
	e.teacherSlots[teacherID][slotID] = true
}

func (e *exclusions) banRoomSlot(roomID int64, slotID int64) {
	if _, exists := e.roomSlots[roomID]; !exists {
		e.roomSlots[roomID] = make(map[int64]bool)
	}
	e.roomSlots[roomID][slotID] = true
}

func (e *exclusions) teacherSlotBanned(teacherID int64, slotID int64) bool {
	return e.teacherSlots[teacherID][slotID]
}

func (e *exclusions) roomSlotBanned(roomID int64, slotID int64) bool {
	return e.roomSlots[roomID][slotID]
}

type Scheduler struct {
	parameters *Parameters
	division   *domain.Division
	subjects   []*domain.Subject // 仅该班级的科目，按 ID 排序以保证基因顺序规范
	rng        *rand.Rand
	excluded   *exclusions

	teacherPool map[int64][]*domain.Teacher  // subjectID -> 候选教师
	roomPool    map[int64][]*domain.Room     // subjectID -> 候选教室
	slotPool    map[int64][]*domain.TimeSlot // subjectID -> 候选时段

	subjectByID map[int64]*domain.Subject
	teacherByID map[int64]*domain.Teacher
	roomByID    map[int64]*domain.Room
	slotByID    map[int64]*domain.TimeSlot

	profMap   map[int64]map[int64]*domain.SubjectProficiency // subjectID -> teacherID -> 记录
	bestScore map[int64]int32                                // subjectID -> 候选教师中最高的 knowledge+willingness

	recessStart time.Time
	recessEnd   time.Time
}

func New(
	parameters *Parameters,
	division *domain.Division,
	subjects []*domain.Subject,
	teachers []*domain.Teacher,
	rooms []*domain.Room,
	slots []*domain.TimeSlot,
	proficiencies []*domain.SubjectProficiency,
	rng *rand.Rand,
) (*Scheduler, error) {
	return newScheduler(parameters, division, subjects, teachers, rooms, slots, proficiencies, rng, nil)
}

// newScheduler 允许协调器附加冲突消解时的 (资源, 时段) 禁用表
func newScheduler(
	parameters *Parameters,
	division *domain.Division,
	subjects []*domain.Subject,
	teachers []*domain.Teacher,
	rooms []*domain.Room,
	slots []*domain.TimeSlot,
	proficiencies []*domain.SubjectProficiency,
	rng *rand.Rand,
	excluded *exclusions,
) (*Scheduler, error) {
	if len(subjects) == 0 {
		return nil, fmt.Errorf("%w: 班级 %s 没有任何科目", ErrConfig, division.Name)
	}
	if len(teachers) == 0 {
		return nil, fmt.Errorf("%w: 班级 %s 没有任何可用教师", ErrConfig, division.Name)
	}
	if len(rooms) == 0 || len(slots) == 0 {
		return nil, fmt.Errorf("%w: 班级 %s 缺少教室或时段数据", ErrConfig, division.Name)
	}
	if excluded == nil {
		excluded = newExclusions()
	}

	s := &Scheduler{
		parameters:  parameters,
		division:    division,
		subjects:    make([]*domain.Subject, len(subjects)),
		rng:         rng,
		excluded:    excluded,
		teacherPool: make(map[int64][]*domain.Teacher),
		roomPool:    make(map[int64][]*domain.Room),
		slotPool:    make(map[int64][]*domain.TimeSlot),
		subjectByID: make(map[int64]*domain.Subject),
		teacherByID: make(map[int64]*domain.Teacher),
		roomByID:    make(map[int64]*domain.Room),
		slotByID:    make(map[int64]*domain.TimeSlot),
		profMap:     make(map[int64]map[int64]*domain.SubjectProficiency),
		bestScore:   make(map[int64]int32),
	}

	copy(s.subjects, subjects)
	sort.Slice(s.subjects, func(i, j int) bool {
		return s.subjects[i].ID < s.subjects[j].ID
	})

	s.recessStart, _ = time.Parse("15:04:05", parameters.RecessStart)
	s.recessEnd, _ = time.Parse("15:04:05", parameters.RecessEnd)

	for _, teacher := range teachers {
		s.teacherByID[teacher.ID] = teacher
	}
	for _, room := range rooms {
		s.roomByID[room.ID] = room
	}
	for _, slot := range slots {
		s.slotByID[slot.ID] = slot
	}

	for _, prof := range proficiencies {
		if _, exists := s.profMap[prof.SubjectID]; !exists {
			s.profMap[prof.SubjectID] = make(map[int64]*domain.SubjectProficiency)
		}
		s.profMap[prof.SubjectID][prof.TeacherID] = prof
	}

	// 为每个科目构建候选池，任何一个池为空都意味着硬约束下无解
	for _, subject := range s.subjects {
		s.subjectByID[subject.ID] = subject

		for _, teacher := range teachers {
			if !s.eligibleTeacher(teacher, subject) {
				continue
			}
			s.teacherPool[subject.ID] = append(s.teacherPool[subject.ID], teacher)

			score := s.profMap[subject.ID][teacher.ID].Knowledge + s.profMap[subject.ID][teacher.ID].Willingness
			if score > s.bestScore[subject.ID] {
				s.bestScore[subject.ID] = score
			}
		}
		if len(s.teacherPool[subject.ID]) == 0 {
			return nil, fmt.Errorf("%w: 科目 %s 没有合格的在职教师", ErrInfeasible, subject.Name)
		}

		for _, room := range rooms {
			if subject.RequiresLab && !room.IsLab {
				continue
			}
			s.roomPool[subject.ID] = append(s.roomPool[subject.ID], room)
		}
		if len(s.roomPool[subject.ID]) == 0 {
			return nil, fmt.Errorf("%w: 科目 %s 需要实验室但不存在实验室类型的教室", ErrInfeasible, subject.Name)
		}

		for _, slot := range slots {
			if !s.eligibleSlot(slot, subject) {
				continue
			}
			s.slotPool[subject.ID] = append(s.slotPool[subject.ID], slot)
		}
		if len(s.slotPool[subject.ID]) == 0 {
			return nil, fmt.Errorf("%w: 科目 %s 没有可用的时段", ErrInfeasible, subject.Name)
		}
	}

	return s, nil
}

// Schedule 对该班级执行一次完整的进化搜索并返回最优课表
func (s *Scheduler) Schedule(ctx context.Context) (*domain.TimetableResult, error) {
	// 生成初始种群
	pop := make([]*Chromosome, s.parameters.PopulationSize)
	for i := 0; i < int(s.parameters.PopulationSize); i++ {
		pop[i] = s.randomInitChromosome()
		s.evaluate(pop[i])
	}

	// 历史最优个体需要深拷贝保留，保证适应度不随迭代回退
	var bestEver *Chromosome

	for gen := 0; gen < int(s.parameters.MaxGenerations); gen++ {
		// 取消只在代与代之间生效，搜索过程不持有任何外部资源
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for _, ch := range pop {
			if bestEver == nil || ch.fitness < bestEver.fitness {
				bestEver = ch.clone()
			}
		}

		// 硬约束全部满足时提前终止
		if bestEver.violations.HardTotal() == 0 {
			break
		}

		// 按适应度升序排序，保留精英
		sort.Slice(pop, func(i, j int) bool {
			return pop[i].fitness < pop[j].fitness
		})

		newPop := make([]*Chromosome, 0, s.parameters.PopulationSize)
		for i := 0; i < int(s.parameters.EliteCount) && i < len(pop); i++ {
			newPop = append(newPop, pop[i].clone())
		}

		// 在剩余的染色体中进行交叉和变异
		for len(newPop) < int(s.parameters.PopulationSize) {
			p1 := s.selectByRoulette(pop).clone()
			p2 := s.selectByRoulette(pop).clone()

			if s.rng.Float64() < s.parameters.CrossoverRate {
				s.singlePointCrossover(p1, p2)
			}

			s.mutate(p1)
			s.mutate(p2)

			newPop = append(newPop, p1)

			if len(newPop) < int(s.parameters.PopulationSize) {
				newPop = append(newPop, p2)
			}
		}

		pop = newPop
		for _, ch := range pop {
			s.evaluate(ch)
		}
	}

	for _, ch := range pop {
		if bestEver == nil || ch.fitness < bestEver.fitness {
			bestEver = ch.clone()
		}
	}

	result := &domain.TimetableResult{
		DivisionID:   s.division.ID,
		Sessions:     s.decode(bestEver),
		Fitness:      bestEver.fitness,
		Violations:   bestEver.violations,
		SessionCount: int32(len(bestEver.genes)),
	}
	result.Success = bestEver.violations.HardTotal() <= s.parameters.AcceptanceThreshold
	if !result.Success {
		result.Cause = fmt.Sprintf("迭代预算耗尽，最优课表仍有 %d 个硬约束违反", bestEver.violations.HardTotal())
	}

	return result, nil
}

// EvaluateSessions 对既有课表重新打分，用于人工调整后的校验
func (s *Scheduler) EvaluateSessions(sessions []domain.TimetableSession) (*domain.ViolationReport, float64, error) {
	ch, err := s.encode(sessions)
	if err != nil {
		return nil, 0, err
	}
	s.evaluate(ch)
	report := ch.violations
	return &report, ch.fitness, nil
}
