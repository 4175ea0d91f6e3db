package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/domain"
)

func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name" validate:"required"`
		Capacity int32  `json:"capacity" validate:"required,min=1"`
		IsLab    bool   `json:"isLab"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	room := &domain.Room{
		Name:     req.Name,
		Capacity: req.Capacity,
		IsLab:    req.IsLab,
	}

	if err := h.repository.CreateRoom(room); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "rooms_name_key":
			h.badRequest(w, r, errors.New("教室名称已存在"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "教室创建成功", room)
}

func (h *Handler) GetAllRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.repository.GetAllRooms()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取教室列表成功", rooms)
}

func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	room := r.Context().Value(RoomInfoCtx).(*domain.Room)
	h.successResponse(w, r, "获取教室信息成功", room)
}

func (h *Handler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     *string `json:"name"`
		Capacity *int32  `json:"capacity" validate:"omitempty,min=1"`
		IsLab    *bool   `json:"isLab"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	room := r.Context().Value(RoomInfoCtx).(*domain.Room)

	if req.Name != nil {
		room.Name = *req.Name
	}
	if req.Capacity != nil {
		room.Capacity = *req.Capacity
	}
	if req.IsLab != nil {
		room.IsLab = *req.IsLab
	}

	if err := h.repository.UpdateRoom(room); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "rooms_name_key":
			h.badRequest(w, r, errors.New("教室名称已存在"))
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新教室信息失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新教室信息成功", room)
}

func (h *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	room := r.Context().Value(RoomInfoCtx).(*domain.Room)

	if err := h.repository.DeleteRoom(room.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除教室成功", nil)
}
