package domain

import "time"

type TeacherStatus string

const (
	TeacherStatusActive   TeacherStatus = "在职"
	TeacherStatusOnLeave  TeacherStatus = "休假"
	TeacherStatusResigned TeacherStatus = "离职"
)

type HalfDayPreference string

const (
	PreferMorning   HalfDayPreference = "morning"
	PreferAfternoon HalfDayPreference = "afternoon"
	PreferNone      HalfDayPreference = "none"
)

type Teacher struct {
	ID                   int64             `json:"id"`
	Name                 string            `json:"name"`
	Email                string            `json:"email"`
	Department           string            `json:"department"`
	HomeYear             int32             `json:"homeYear"`
	MinWeeklySessions    int32             `json:"minWeeklySessions"`
	MaxWeeklySessions    int32             `json:"maxWeeklySessions"`
	LecturePreference    HalfDayPreference `json:"lecturePreference"`
	LabPreference        HalfDayPreference `json:"labPreference"`
	CanTeachLabs         bool              `json:"canTeachLabs"`
	CanSuperviseProjects bool              `json:"canSuperviseProjects"`
	Status               TeacherStatus     `json:"status"`
	CrossYearEligible    bool              `json:"crossYearEligible"`
	MaxCrossYearSessions int32             `json:"maxCrossYearSessions"`
	CreatedAt            time.Time         `json:"createdAt"`
	Version              int32             `json:"-"`
}
