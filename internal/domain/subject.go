package domain

import "time"

type Subject struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Year           int32     `json:"year"`
	DivisionID     int64     `json:"divisionID"`
	WeeklySessions int32     `json:"weeklySessions"`
	RequiresLab    bool      `json:"requiresLab"`
	CreatedAt      time.Time `json:"createdAt"`
	Version        int32     `json:"-"`
}

// SubjectProficiency: 每个 (teacher, subject) 对至多存在一条记录
type SubjectProficiency struct {
	TeacherID   int64 `json:"teacherID"`
	SubjectID   int64 `json:"subjectID"`
	Knowledge   int32 `json:"knowledge"`   // 1-10
	Willingness int32 `json:"willingness"` // 1-10
}
