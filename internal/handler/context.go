package handler

type ContextKey string

var (
	RoleCtxKey      ContextKey = "role"
	SubCtxKey       ContextKey = "sub"
	UserInfoCtx     ContextKey = "userInfo"
	TeacherInfoCtx  ContextKey = "teacherInfo"
	SubjectInfoCtx  ContextKey = "subjectInfo"
	RoomInfoCtx     ContextKey = "roomInfo"
	DivisionInfoCtx ContextKey = "divisionInfo"
)
