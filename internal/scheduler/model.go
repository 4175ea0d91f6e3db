package scheduler

import "github.com/sysu-ecnc-dev/timetable-manager/backend/internal/domain"

// Gene: 表示某科目一次授课的安排决策 (teacher, room, slot)
type Gene struct {
	subjectID   int64
	occurrence  int32  // 该科目每周的第几次课，从 0 开始
	batch       *int32 // 实验课按小组轮换，理论课为 nil
	teacherID   int64  // 为 0 时表示该次课尚未指派教师
	roomID      int64
	slotID      int64
	requiresLab bool
}

// Chromosome: 单个班级一周的完整课表
type Chromosome struct {
	genes      []*Gene
	fitness    float64 // 越小越好，0 表示完全满足约束
	violations domain.ViolationReport
}

// clone 深拷贝染色体，防止繁殖过程中基因被共享修改
func (ch *Chromosome) clone() *Chromosome {
	cloned := &Chromosome{
		genes:      make([]*Gene, len(ch.genes)),
		fitness:    ch.fitness,
		violations: ch.violations,
	}
	for i, gene := range ch.genes {
		g := *gene
		cloned.genes[i] = &g
	}
	return cloned
}

// 遗传算法参数及约束权重
type Parameters struct {
	PopulationSize int32   // 种群大小
	MaxGenerations int32   // 最大迭代次数
	CrossoverRate  float64 // 交叉概率
	MutationRate   float64 // 变异概率
	EliteCount     int32   // 精英数量

	HardWeight          float64 // 硬约束权重，需远大于软约束使其占主导
	PreferenceWeight    float64 // 教师时段偏好违反的惩罚权重
	WorkloadWeight      float64
	ProficiencyWeight   float64
	CrossYearWeight     float64
	VarianceThreshold   float64 // 教师工作量方差的容忍上限
	MinProficiencyScore int32   // knowledge+willingness 低于该值且存在更优人选时计为违反
	AcceptanceThreshold int32   // 硬违反数不超过该值即视为排课成功

	RecessStart string // 午休开始时间，格式为 15:04:05
	RecessEnd   string
}
