package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type CreateUserMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type TimetablePublishedMailData struct {
	DivisionName string  `json:"divisionName"`
	SessionCount int32   `json:"sessionCount"`
	Fitness      float64 `json:"fitness"`
}

type ReplacementMailData struct {
	FullName     string `json:"fullName"`
	SubjectName  string `json:"subjectName"`
	DivisionName string `json:"divisionName"`
	SessionCount int32  `json:"sessionCount"`
}

type UnresolvedSubjectMailData struct {
	SubjectName   string `json:"subjectName"`
	DivisionName  string `json:"divisionName"`
	FormerTeacher string `json:"formerTeacher"`
}
