package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/domain"
)

func (h *Handler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name           string `json:"name" validate:"required"`
		Year           int32  `json:"year" validate:"required,min=1"`
		DivisionID     int64  `json:"divisionID" validate:"required"`
		WeeklySessions int32  `json:"weeklySessions" validate:"required,min=1"`
		RequiresLab    bool   `json:"requiresLab"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	division, err := h.repository.GetDivisionByID(req.DivisionID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "班级不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if division.Year != req.Year {
		h.badRequest(w, r, errors.New("科目年级与班级年级不一致"))
		return
	}

	subject := &domain.Subject{
		Name:           req.Name,
		Year:           req.Year,
		DivisionID:     req.DivisionID,
		WeeklySessions: req.WeeklySessions,
		RequiresLab:    req.RequiresLab,
	}

	if err := h.repository.CreateSubject(subject); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "subjects_division_id_fkey":
			h.badRequest(w, r, errors.New("班级不存在"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "科目创建成功", subject)
}

func (h *Handler) GetAllSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.repository.GetAllSubjects()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取科目列表成功", subjects)
}

func (h *Handler) GetSubject(w http.ResponseWriter, r *http.Request) {
	subject := r.Context().Value(SubjectInfoCtx).(*domain.Subject)
	h.successResponse(w, r, "获取科目信息成功", subject)
}

func (h *Handler) UpdateSubject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name           *string `json:"name"`
		WeeklySessions *int32  `json:"weeklySessions" validate:"omitempty,min=1"`
		RequiresLab    *bool   `json:"requiresLab"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	subject := r.Context().Value(SubjectInfoCtx).(*domain.Subject)

	if req.Name != nil {
		subject.Name = *req.Name
	}
	if req.WeeklySessions != nil {
		subject.WeeklySessions = *req.WeeklySessions
	}
	if req.RequiresLab != nil {
		subject.RequiresLab = *req.RequiresLab
	}

	if err := h.repository.UpdateSubject(subject); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新科目信息失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新科目信息成功", subject)
}

func (h *Handler) DeleteSubject(w http.ResponseWriter, r *http.Request) {
	subject := r.Context().Value(SubjectInfoCtx).(*domain.Subject)

	if err := h.repository.DeleteSubject(subject.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除科目成功", nil)
}

func (h *Handler) GetSubjectProficiencies(w http.ResponseWriter, r *http.Request) {
	subject := r.Context().Value(SubjectInfoCtx).(*domain.Subject)

	proficiencies, err := h.repository.GetProficienciesBySubjectID(subject.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取科目熟练度成功", proficiencies)
}

func (h *Handler) SetSubjectProficiencies(w http.ResponseWriter, r *http.Request) {
	subject := r.Context().Value(SubjectInfoCtx).(*domain.Subject)

	var req struct {
		Proficiencies []struct {
			TeacherID   int64 `json:"teacherID" validate:"required"`
			Knowledge   int32 `json:"knowledge" validate:"required,min=1,max=10"`
			Willingness int32 `json:"willingness" validate:"required,min=1,max=10"`
		} `json:"proficiencies" validate:"required,min=1,dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	for _, item := range req.Proficiencies {
		prof := &domain.SubjectProficiency{
			TeacherID:   item.TeacherID,
			SubjectID:   subject.ID,
			Knowledge:   item.Knowledge,
			Willingness: item.Willingness,
		}
		if err := h.repository.UpsertProficiency(prof); err != nil {
			var pgErr *pgconn.PgError
			switch {
			case errors.As(err, &pgErr) && pgErr.ConstraintName == "subject_proficiencies_teacher_id_fkey":
				h.badRequest(w, r, errors.New("存在无效的教师ID"))
			default:
				h.internalServerError(w, r, err)
			}
			return
		}
	}

	h.successResponse(w, r, "设置科目熟练度成功", nil)
}
