package domain

import "time"

// TimetableSession: 课表的原子单元，表示某科目的一次授课安排
type TimetableSession struct {
	SubjectID  int64  `json:"subjectID"`
	Occurrence int32  `json:"occurrence"` // 该科目每周第几次课，从 0 开始
	DivisionID int64  `json:"divisionID"`
	Batch      *int32 `json:"batch"` // 为 nil 时表示整个班级一起上课
	TeacherID  int64  `json:"teacherID"`
	RoomID     int64  `json:"roomID"`
	SlotID     int64  `json:"slotID"`
}

// ViolationReport: 按类别统计的约束违反情况
type ViolationReport struct {
	// 硬约束
	TeacherConflicts  int32 `json:"teacherConflicts"`
	RoomConflicts     int32 `json:"roomConflicts"`
	GroupConflicts    int32 `json:"groupConflicts"`
	LabRoomMismatches int32 `json:"labRoomMismatches"`
	RecessViolations  int32 `json:"recessViolations"`
	// 软约束
	PreferenceViolations  int32 `json:"preferenceViolations"`
	WorkloadViolations    int32 `json:"workloadViolations"`
	ProficiencyMismatches int32 `json:"proficiencyMismatches"`
	CrossYearOverloads    int32 `json:"crossYearOverloads"`
}

func (v *ViolationReport) HardTotal() int32 {
	return v.TeacherConflicts + v.RoomConflicts + v.GroupConflicts + v.LabRoomMismatches + v.RecessViolations
}

func (v *ViolationReport) SoftTotal() int32 {
	return v.PreferenceViolations + v.WorkloadViolations + v.ProficiencyMismatches + v.CrossYearOverloads
}

func (v *ViolationReport) Total() int32 {
	return v.HardTotal() + v.SoftTotal()
}

// TimetableResult: 单个班级一次排课的完整结果
type TimetableResult struct {
	ID           int64              `json:"id"`
	DivisionID   int64              `json:"divisionID"`
	Sessions     []TimetableSession `json:"sessions"`
	Fitness      float64            `json:"fitness"`
	Violations   ViolationReport    `json:"violations"`
	Success      bool               `json:"success"`
	SessionCount int32              `json:"sessionCount"`
	Cause        string             `json:"cause"` // 失败或部分成功时的原因描述
	CreatedAt    time.Time          `json:"createdAt"`
	Version      int32              `json:"-"`
}

type ConflictType string

const (
	ConflictTypeTeacher ConflictType = "teacher"
	ConflictTypeRoom    ConflictType = "room"
)

// ResourceConflict: 跨班级共享资源上检测到的冲突
type ResourceConflict struct {
	Type        ConflictType `json:"type"`
	ResourceID  int64        `json:"resourceID"`
	SlotID      int64        `json:"slotID"`
	DivisionIDs []int64      `json:"divisionIDs"`
	Resolved    bool         `json:"resolved"`
}

// SystemReport: 所有目标班级排课完成后的全局指标
type SystemReport struct {
	TotalDivisions      int32              `json:"totalDivisions"`
	SuccessfulDivisions int32              `json:"successfulDivisions"`
	SuccessRate         float64            `json:"successRate"` // 百分比
	AverageFitness      float64            `json:"averageFitness"`
	TotalViolations     int32              `json:"totalViolations"`
	ConflictFree        bool               `json:"conflictFree"`
	Conflicts           []ResourceConflict `json:"conflicts"`
}

// SessionReassignment: 离职替换时对单次课的教师改派
type SessionReassignment struct {
	SubjectID     int64  `json:"subjectID"`
	DivisionID    int64  `json:"divisionID"`
	SlotID        int64  `json:"slotID"`
	Occurrence    int32  `json:"occurrence"`
	Batch         *int32 `json:"batch"`
	FromTeacherID int64  `json:"fromTeacherID"`
	ToTeacherID   int64  `json:"toTeacherID"`
}

// UnresolvedSubject: 找不到合格替代教师的科目，留待人工处理
type UnresolvedSubject struct {
	SubjectID  int64  `json:"subjectID"`
	DivisionID int64  `json:"divisionID"`
	Reason     string `json:"reason"`
}

type ReplacementReport struct {
	TeacherID    int64                 `json:"teacherID"`
	Reassigned   []SessionReassignment `json:"reassigned"`
	Unresolved   []UnresolvedSubject   `json:"unresolved"`
	AffectedRows int32                 `json:"affectedRows"`
}
