package scheduler

import (
	"context"
	"math/rand"
	"sort"
	"sync"

	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/domain"
)

// Snapshot: 排课引擎消费的机构数据快照
// 引擎在搜索期间只读不写，因此多个班级可以安全地并行运行
type Snapshot struct {
	Divisions     []*domain.Division
	Subjects      []*domain.Subject
	Teachers      []*domain.Teacher
	Rooms         []*domain.Room
	Slots         []*domain.TimeSlot
	Proficiencies []*domain.SubjectProficiency
}

func (snap *Snapshot) subjectsOf(divisionID int64) []*domain.Subject {
	var subjects []*domain.Subject
	for _, subject := range snap.Subjects {
		if subject.DivisionID == divisionID {
			subjects = append(subjects, subject)
		}
	}
	return subjects
}

// Coordinator 并行驱动各班级的排课，再对共享资源做跨班级冲突检测与消解
type Coordinator struct {
	parameters *Parameters
	snapshot   *Snapshot
	seed       int64
}

func NewCoordinator(parameters *Parameters, snapshot *Snapshot, seed int64) *Coordinator {
	return &Coordinator{
		parameters: parameters,
		snapshot:   snapshot,
		seed:       seed,
	}
}

// Run 对目标班级执行完整排课流程并汇总全局指标
// targetDivisionIDs 为空时排所有班级；单个班级的失败不会影响其他班级
func (c *Coordinator) Run(ctx context.Context, targetDivisionIDs []int64) (map[int64]*domain.TimetableResult, *domain.SystemReport, error) {
	divisions := c.targetDivisions(targetDivisionIDs)

	results := make(map[int64]*domain.TimetableResult, len(divisions))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, division := range divisions {
		wg.Add(1)
		go func(division *domain.Division) {
			defer wg.Done()
			result := c.runDivision(ctx, division, nil)
			mu.Lock()
			results[division.ID] = result
			mu.Unlock()
		}(division)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	// 检测跨班级共享资源上的冲突并尝试消解
	conflicts := c.resolveConflicts(ctx, divisions, results)

	return results, c.buildReport(results, conflicts), nil
}

func (c *Coordinator) targetDivisions(targetDivisionIDs []int64) []*domain.Division {
	if len(targetDivisionIDs) == 0 {
		return c.snapshot.Divisions
	}

	targets := make(map[int64]bool, len(targetDivisionIDs))
	for _, id := range targetDivisionIDs {
		targets[id] = true
	}

	var divisions []*domain.Division
	for _, division := range c.snapshot.Divisions {
		if targets[division.ID] {
			divisions = append(divisions, division)
		}
	}
	return divisions
}

// runDivision 执行单个班级的进化搜索，配置错误与无解都转化为失败结果而非中断整体流程
func (c *Coordinator) runDivision(ctx context.Context, division *domain.Division, excluded *exclusions) *domain.TimetableResult {
	// 每个班级从基准种子派生独立的随机源，保证并行运行可复现
	rng := rand.New(rand.NewSource(c.seed + division.ID))

	sch, err := newScheduler(
		c.parameters,
		division,
		c.snapshot.subjectsOf(division.ID),
		c.snapshot.Teachers,
		c.snapshot.Rooms,
		c.snapshot.Slots,
		c.snapshot.Proficiencies,
		rng,
		excluded,
	)
	if err != nil {
		return &domain.TimetableResult{DivisionID: division.ID, Cause: err.Error()}
	}

	result, err := sch.Schedule(ctx)
	if err != nil {
		return &domain.TimetableResult{DivisionID: division.ID, Cause: err.Error()}
	}

	return result
}

// resolveConflicts 对检测到的跨班级冲突做一轮消解：
// 适应度更优（更小）的班级保留其课表，败方带着被禁用的 (资源, 时段) 组合重排；
// 适应度相同时保留班级 ID 较小的一方。消解后残余的冲突如实上报
func (c *Coordinator) resolveConflicts(ctx context.Context, divisions []*domain.Division, results map[int64]*domain.TimetableResult) []domain.ResourceConflict {
	conflicts := detectConflicts(results)
	if len(conflicts) == 0 {
		return conflicts
	}

	exclusionsByDivision := make(map[int64]*exclusions)
	for _, conflict := range conflicts {
		loserID := pickLoser(conflict, results)

		excl, exists := exclusionsByDivision[loserID]
		if !exists {
			excl = newExclusions()
			exclusionsByDivision[loserID] = excl
		}

		switch conflict.Type {
		case domain.ConflictTypeTeacher:
			excl.banTeacherSlot(conflict.ResourceID, conflict.SlotID)
		case domain.ConflictTypeRoom:
			excl.banRoomSlot(conflict.ResourceID, conflict.SlotID)
		}
	}

	divisionByID := make(map[int64]*domain.Division, len(divisions))
	for _, division := range divisions {
		divisionByID[division.ID] = division
	}

	for divisionID, excl := range exclusionsByDivision {
		if ctx.Err() != nil {
			break
		}
		results[divisionID] = c.runDivision(ctx, divisionByID[divisionID], excl)
	}

	// 复核：标记已消解的冲突，重排过程中新引入的冲突也要上报
	residual := detectConflicts(results)
	residualKeys := make(map[conflictKey]bool, len(residual))
	for _, conflict := range residual {
		residualKeys[keyOf(conflict)] = true
	}

	reportedKeys := make(map[conflictKey]bool, len(conflicts))
	for i := range conflicts {
		conflicts[i].Resolved = !residualKeys[keyOf(conflicts[i])]
		reportedKeys[keyOf(conflicts[i])] = true
	}
	for _, conflict := range residual {
		if !reportedKeys[keyOf(conflict)] {
			conflicts = append(conflicts, conflict)
		}
	}

	return conflicts
}

type conflictKey struct {
	conflictType domain.ConflictType
	resourceID   int64
	slotID       int64
}

func keyOf(conflict domain.ResourceConflict) conflictKey {
	return conflictKey{conflict.Type, conflict.ResourceID, conflict.SlotID}
}

// detectConflicts 找出被多个班级同时占用的 (教师, 时段) 与 (教室, 时段) 组合
func detectConflicts(results map[int64]*domain.TimetableResult) []domain.ResourceConflict {
	teacherUse := make(map[resourceSlot]map[int64]bool)
	roomUse := make(map[resourceSlot]map[int64]bool)

	for divisionID, result := range results {
		for _, session := range result.Sessions {
			markUse(teacherUse, resourceSlot{session.TeacherID, session.SlotID}, divisionID)
			markUse(roomUse, resourceSlot{session.RoomID, session.SlotID}, divisionID)
		}
	}

	var conflicts []domain.ResourceConflict
	conflicts = append(conflicts, collectConflicts(teacherUse, domain.ConflictTypeTeacher)...)
	conflicts = append(conflicts, collectConflicts(roomUse, domain.ConflictTypeRoom)...)

	// 排序保证消解顺序与报告内容和遍历顺序无关
	sort.Slice(conflicts, func(i, j int) bool {
		if conflicts[i].Type != conflicts[j].Type {
			return conflicts[i].Type < conflicts[j].Type
		}
		if conflicts[i].ResourceID != conflicts[j].ResourceID {
			return conflicts[i].ResourceID < conflicts[j].ResourceID
		}
		return conflicts[i].SlotID < conflicts[j].SlotID
	})

	return conflicts
}

func markUse(use map[resourceSlot]map[int64]bool, key resourceSlot, divisionID int64) {
	if _, exists := use[key]; !exists {
		use[key] = make(map[int64]bool)
	}
	use[key][divisionID] = true
}

func collectConflicts(use map[resourceSlot]map[int64]bool, conflictType domain.ConflictType) []domain.ResourceConflict {
	var conflicts []domain.ResourceConflict
	for key, divisions := range use {
		if len(divisions) <= 1 {
			continue
		}

		divisionIDs := make([]int64, 0, len(divisions))
		for divisionID := range divisions {
			divisionIDs = append(divisionIDs, divisionID)
		}
		sort.Slice(divisionIDs, func(i, j int) bool { return divisionIDs[i] < divisionIDs[j] })

		conflicts = append(conflicts, domain.ResourceConflict{
			Type:        conflictType,
			ResourceID:  key.resourceID,
			SlotID:      key.slotID,
			DivisionIDs: divisionIDs,
		})
	}
	return conflicts
}

// pickLoser 在冲突各方中选出需要重排的班级
func pickLoser(conflict domain.ResourceConflict, results map[int64]*domain.TimetableResult) int64 {
	loserID := conflict.DivisionIDs[0]
	for _, divisionID := range conflict.DivisionIDs[1:] {
		loser, candidate := results[loserID], results[divisionID]
		if candidate.Fitness > loser.Fitness ||
			(candidate.Fitness == loser.Fitness && divisionID > loserID) {
			loserID = divisionID
		}
	}
	return loserID
}

// buildReport 汇总全局成功率与违约统计
func (c *Coordinator) buildReport(results map[int64]*domain.TimetableResult, conflicts []domain.ResourceConflict) *domain.SystemReport {
	report := &domain.SystemReport{
		TotalDivisions: int32(len(results)),
		Conflicts:      conflicts,
		ConflictFree:   true,
	}

	sumFitness := 0.0
	for _, result := range results {
		if result.Success {
			report.SuccessfulDivisions++
		}
		sumFitness += result.Fitness
		report.TotalViolations += result.Violations.Total()
		if result.Violations.HardTotal() > 0 || !result.Success {
			report.ConflictFree = false
		}
	}

	for _, conflict := range conflicts {
		if !conflict.Resolved {
			report.ConflictFree = false
		}
	}

	if report.TotalDivisions > 0 {
		report.SuccessRate = float64(report.SuccessfulDivisions) / float64(report.TotalDivisions) * 100
		report.AverageFitness = sumFitness / float64(report.TotalDivisions)
	}

	return report
}
