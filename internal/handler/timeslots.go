package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/domain"
)

func (h *Handler) CreateTimeSlot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DayOfWeek  int32  `json:"dayOfWeek" validate:"required,min=1,max=7"`
		SlotNumber int32  `json:"slotNumber" validate:"required,min=1"`
		StartTime  string `json:"startTime" validate:"required,datetime=15:04:05"`
		EndTime    string `json:"endTime" validate:"required,datetime=15:04:05"`
		IsMorning  bool   `json:"isMorning"`
		Type       string `json:"type" validate:"required,oneof=lecture lab break project"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.EndTime <= req.StartTime {
		h.badRequest(w, r, errors.New("时段结束时间必须晚于开始时间"))
		return
	}

	slot := &domain.TimeSlot{
		DayOfWeek:  req.DayOfWeek,
		SlotNumber: req.SlotNumber,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		IsMorning:  req.IsMorning,
		Type:       domain.SlotType(req.Type),
	}

	if err := h.repository.CreateTimeSlot(slot); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "time_slots_day_of_week_slot_number_key":
			h.badRequest(w, r, errors.New("该时段已存在"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "时段创建成功", slot)
}

func (h *Handler) GetAllTimeSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := h.repository.GetAllTimeSlots()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取时段列表成功", slots)
}

func (h *Handler) DeleteTimeSlot(w http.ResponseWriter, r *http.Request) {
	slotIDParam := chi.URLParam(r, "id")
	slotID, err := strconv.ParseInt(slotIDParam, 10, 64)
	if err != nil {
		h.errorResponse(w, r, "时段ID无效")
		return
	}

	if err := h.repository.DeleteTimeSlot(slotID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除时段成功", nil)
}
