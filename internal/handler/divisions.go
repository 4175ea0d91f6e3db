package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/domain"
)

func (h *Handler) CreateDivision(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name" validate:"required"`
		Year       int32  `json:"year" validate:"required,min=1"`
		BatchCount int32  `json:"batchCount" validate:"required,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	division := &domain.Division{
		Name:       req.Name,
		Year:       req.Year,
		BatchCount: req.BatchCount,
	}

	if err := h.repository.CreateDivision(division); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "divisions_name_key":
			h.badRequest(w, r, errors.New("班级名称已存在"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "班级创建成功", division)
}

func (h *Handler) GetAllDivisions(w http.ResponseWriter, r *http.Request) {
	divisions, err := h.repository.GetAllDivisions()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取班级列表成功", divisions)
}

func (h *Handler) GetDivision(w http.ResponseWriter, r *http.Request) {
	division := r.Context().Value(DivisionInfoCtx).(*domain.Division)
	h.successResponse(w, r, "获取班级信息成功", division)
}

func (h *Handler) UpdateDivision(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       *string `json:"name"`
		Year       *int32  `json:"year" validate:"omitempty,min=1"`
		BatchCount *int32  `json:"batchCount" validate:"omitempty,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	division := r.Context().Value(DivisionInfoCtx).(*domain.Division)

	if req.Name != nil {
		division.Name = *req.Name
	}
	if req.Year != nil {
		division.Year = *req.Year
	}
	if req.BatchCount != nil {
		division.BatchCount = *req.BatchCount
	}

	if err := h.repository.UpdateDivision(division); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "divisions_name_key":
			h.badRequest(w, r, errors.New("班级名称已存在"))
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新班级信息失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新班级信息成功", division)
}

func (h *Handler) DeleteDivision(w http.ResponseWriter, r *http.Request) {
	division := r.Context().Value(DivisionInfoCtx).(*domain.Division)

	if err := h.repository.DeleteDivision(division.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除班级成功", nil)
}
