package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/scheduler"
)

func (h *Handler) CreateTeacher(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name                 string `json:"name" validate:"required"`
		Email                string `json:"email" validate:"required,email"`
		Department           string `json:"department" validate:"required"`
		HomeYear             int32  `json:"homeYear" validate:"required,min=1"`
		MinWeeklySessions    int32  `json:"minWeeklySessions" validate:"min=0"`
		MaxWeeklySessions    int32  `json:"maxWeeklySessions" validate:"required,min=1,gtefield=MinWeeklySessions"`
		LecturePreference    string `json:"lecturePreference" validate:"required,oneof=morning afternoon none"`
		LabPreference        string `json:"labPreference" validate:"required,oneof=morning afternoon none"`
		CanTeachLabs         bool   `json:"canTeachLabs"`
		CanSuperviseProjects bool   `json:"canSuperviseProjects"`
		CrossYearEligible    bool   `json:"crossYearEligible"`
		MaxCrossYearSessions int32  `json:"maxCrossYearSessions" validate:"min=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	teacher := &domain.Teacher{
		Name:                 req.Name,
		Email:                req.Email,
		Department:           req.Department,
		HomeYear:             req.HomeYear,
		MinWeeklySessions:    req.MinWeeklySessions,
		MaxWeeklySessions:    req.MaxWeeklySessions,
		LecturePreference:    domain.HalfDayPreference(req.LecturePreference),
		LabPreference:        domain.HalfDayPreference(req.LabPreference),
		CanTeachLabs:         req.CanTeachLabs,
		CanSuperviseProjects: req.CanSuperviseProjects,
		Status:               domain.TeacherStatusActive,
		CrossYearEligible:    req.CrossYearEligible,
		MaxCrossYearSessions: req.MaxCrossYearSessions,
	}

	if err := h.repository.CreateTeacher(teacher); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "teachers_email_key":
			h.badRequest(w, r, errors.New("该邮箱已被其他教师使用"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "教师创建成功", teacher)
}

func (h *Handler) GetAllTeachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := h.repository.GetAllTeachers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取教师列表成功", teachers)
}

func (h *Handler) GetTeacher(w http.ResponseWriter, r *http.Request) {
	teacher := r.Context().Value(TeacherInfoCtx).(*domain.Teacher)
	h.successResponse(w, r, "获取教师信息成功", teacher)
}

func (h *Handler) UpdateTeacher(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name                 *string `json:"name"`
		Email                *string `json:"email" validate:"omitempty,email"`
		Department           *string `json:"department"`
		HomeYear             *int32  `json:"homeYear" validate:"omitempty,min=1"`
		MinWeeklySessions    *int32  `json:"minWeeklySessions" validate:"omitempty,min=0"`
		MaxWeeklySessions    *int32  `json:"maxWeeklySessions" validate:"omitempty,min=1"`
		LecturePreference    *string `json:"lecturePreference" validate:"omitempty,oneof=morning afternoon none"`
		LabPreference        *string `json:"labPreference" validate:"omitempty,oneof=morning afternoon none"`
		CanTeachLabs         *bool   `json:"canTeachLabs"`
		CanSuperviseProjects *bool   `json:"canSuperviseProjects"`
		Status               *string `json:"status" validate:"omitempty,oneof=在职 休假 离职"`
		CrossYearEligible    *bool   `json:"crossYearEligible"`
		MaxCrossYearSessions *int32  `json:"maxCrossYearSessions" validate:"omitempty,min=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	teacher := r.Context().Value(TeacherInfoCtx).(*domain.Teacher)

	if req.Name != nil {
		teacher.Name = *req.Name
	}
	if req.Email != nil {
		teacher.Email = *req.Email
	}
	if req.Department != nil {
		teacher.Department = *req.Department
	}
	if req.HomeYear != nil {
		teacher.HomeYear = *req.HomeYear
	}
	if req.MinWeeklySessions != nil {
		teacher.MinWeeklySessions = *req.MinWeeklySessions
	}
	if req.MaxWeeklySessions != nil {
		teacher.MaxWeeklySessions = *req.MaxWeeklySessions
	}
	if req.LecturePreference != nil {
		teacher.LecturePreference = domain.HalfDayPreference(*req.LecturePreference)
	}
	if req.LabPreference != nil {
		teacher.LabPreference = domain.HalfDayPreference(*req.LabPreference)
	}
	if req.CanTeachLabs != nil {
		teacher.CanTeachLabs = *req.CanTeachLabs
	}
	if req.CanSuperviseProjects != nil {
		teacher.CanSuperviseProjects = *req.CanSuperviseProjects
	}
	if req.Status != nil {
		teacher.Status = domain.TeacherStatus(*req.Status)
	}
	if req.CrossYearEligible != nil {
		teacher.CrossYearEligible = *req.CrossYearEligible
	}
	if req.MaxCrossYearSessions != nil {
		teacher.MaxCrossYearSessions = *req.MaxCrossYearSessions
	}

	if teacher.MaxWeeklySessions < teacher.MinWeeklySessions {
		h.badRequest(w, r, errors.New("每周最大课时不能小于最小课时"))
		return
	}

	if err := h.repository.UpdateTeacher(teacher); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "teachers_email_key":
			h.badRequest(w, r, errors.New("该邮箱已被其他教师使用"))
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新教师信息失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新教师信息成功", teacher)
}

func (h *Handler) DeleteTeacher(w http.ResponseWriter, r *http.Request) {
	teacher := r.Context().Value(TeacherInfoCtx).(*domain.Teacher)

	if err := h.repository.DeleteTeacher(teacher.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除教师成功", nil)
}

// ResignTeacher 将教师标记为离职，并对其名下已排课程寻找替代教师。
// 找不到合格替代者的科目会记录在报告中，并通过邮件提醒管理员人工处理。
func (h *Handler) ResignTeacher(w http.ResponseWriter, r *http.Request) {
	teacher := r.Context().Value(TeacherInfoCtx).(*domain.Teacher)

	if teacher.Status == domain.TeacherStatusResigned {
		h.errorResponse(w, r, "该教师已离职")
		return
	}

	teacher.Status = domain.TeacherStatusResigned
	if err := h.repository.UpdateTeacher(teacher); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "处理离职失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	results, err := h.repository.GetAllTimetableResults()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	teachers, err := h.repository.GetAllTeachers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	subjects, err := h.repository.GetAllSubjects()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	proficiencies, err := h.repository.GetAllProficiencies()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	resolver := scheduler.NewResolver(teachers, subjects, proficiencies)
	report := resolver.Replace(teacher, results)

	if len(report.Reassigned) > 0 {
		if err := h.repository.UpdateSessionTeachers(report.Reassigned); err != nil {
			h.internalServerError(w, r, err)
			return
		}
	}

	// 受影响班级的课表缓存需要失效
	affected := make(map[int64]bool)
	for _, reassignment := range report.Reassigned {
		affected[reassignment.DivisionID] = true
	}
	for _, unresolved := range report.Unresolved {
		affected[unresolved.DivisionID] = true
	}
	for divisionID := range affected {
		if err := h.redisClient.Del(r.Context(), fmt.Sprintf("timetable:%d", divisionID)).Err(); err != nil {
			h.internalServerError(w, r, err)
			return
		}
	}

	if err := h.notifyReplacement(teacher, report, teachers, subjects); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "处理离职成功", report)
}

// notifyReplacement 通知接手课程的教师，并将未解决的科目上报给管理员
func (h *Handler) notifyReplacement(leaving *domain.Teacher, report *domain.ReplacementReport, teachers []*domain.Teacher, subjects []*domain.Subject) error {
	teacherByID := make(map[int64]*domain.Teacher)
	for _, teacher := range teachers {
		teacherByID[teacher.ID] = teacher
	}
	subjectByID := make(map[int64]*domain.Subject)
	for _, subject := range subjects {
		subjectByID[subject.ID] = subject
	}
	divisions, err := h.repository.GetAllDivisions()
	if err != nil {
		return err
	}
	divisionByID := make(map[int64]*domain.Division)
	for _, division := range divisions {
		divisionByID[division.ID] = division
	}

	// 同一位替代教师在同一班级接手的同一科目只发一封邮件
	type replacementGroup struct {
		toTeacherID int64
		subjectID   int64
		divisionID  int64
	}
	counts := make(map[replacementGroup]int32)
	var order []replacementGroup
	for _, reassignment := range report.Reassigned {
		group := replacementGroup{
			toTeacherID: reassignment.ToTeacherID,
			subjectID:   reassignment.SubjectID,
			divisionID:  reassignment.DivisionID,
		}
		if _, ok := counts[group]; !ok {
			order = append(order, group)
		}
		counts[group]++
	}

	for _, group := range order {
		substitute, ok := teacherByID[group.toTeacherID]
		if !ok {
			continue
		}
		subject := subjectByID[group.subjectID]
		division := divisionByID[group.divisionID]
		if subject == nil || division == nil {
			continue
		}

		if err := h.publishMail(domain.MailMessage{
			Type: "replacement",
			To:   substitute.Email,
			Data: domain.ReplacementMailData{
				FullName:     substitute.Name,
				SubjectName:  subject.Name,
				DivisionName: division.Name,
				SessionCount: counts[group],
			},
		}); err != nil {
			return err
		}
	}

	for _, unresolved := range report.Unresolved {
		subject := subjectByID[unresolved.SubjectID]
		division := divisionByID[unresolved.DivisionID]
		if subject == nil || division == nil {
			continue
		}

		if err := h.publishMail(domain.MailMessage{
			Type: "unresolved_subject",
			To:   h.config.InitialAdmin.Email,
			Data: domain.UnresolvedSubjectMailData{
				SubjectName:   subject.Name,
				DivisionName:  division.Name,
				FormerTeacher: leaving.Name,
			},
		}); err != nil {
			return err
		}
	}

	return nil
}
