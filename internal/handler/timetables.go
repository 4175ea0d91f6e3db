package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/scheduler"
	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/utils"
)

const (
	generateLockKey = "timetable:generate_lock"
	systemReportKey = "timetable:report"
)

func timetableCacheKey(divisionID int64) string {
	return fmt.Sprintf("timetable:%d", divisionID)
}

// engineParameters 将配置中的遗传算法参数转换为排课引擎参数
func (h *Handler) engineParameters() *scheduler.Parameters {
	return &scheduler.Parameters{
		PopulationSize: h.config.Engine.PopulationSize,
		MaxGenerations: h.config.Engine.MaxGenerations,
		CrossoverRate:  h.config.Engine.CrossoverRate,
		MutationRate:   h.config.Engine.MutationRate,
		EliteCount:     h.config.Engine.EliteCount,

		HardWeight:          h.config.Engine.HardWeight,
		PreferenceWeight:    h.config.Engine.PreferenceWeight,
		WorkloadWeight:      h.config.Engine.WorkloadWeight,
		ProficiencyWeight:   h.config.Engine.ProficiencyWeight,
		CrossYearWeight:     h.config.Engine.CrossYearWeight,
		VarianceThreshold:   h.config.Engine.VarianceThreshold,
		MinProficiencyScore: h.config.Engine.MinProficiencyScore,
		AcceptanceThreshold: h.config.Engine.AcceptanceThreshold,

		RecessStart: h.config.Institution.RecessStart,
		RecessEnd:   h.config.Institution.RecessEnd,
	}
}

func (h *Handler) loadSnapshot() (*scheduler.Snapshot, error) {
	divisions, err := h.repository.GetAllDivisions()
	if err != nil {
		return nil, err
	}
	subjects, err := h.repository.GetAllSubjects()
	if err != nil {
		return nil, err
	}
	teachers, err := h.repository.GetAllTeachers()
	if err != nil {
		return nil, err
	}
	rooms, err := h.repository.GetAllRooms()
	if err != nil {
		return nil, err
	}
	slots, err := h.repository.GetAllTimeSlots()
	if err != nil {
		return nil, err
	}
	proficiencies, err := h.repository.GetAllProficiencies()
	if err != nil {
		return nil, err
	}

	return &scheduler.Snapshot{
		Divisions:     divisions,
		Subjects:      subjects,
		Teachers:      teachers,
		Rooms:         rooms,
		Slots:         slots,
		Proficiencies: proficiencies,
	}, nil
}

func (h *Handler) GenerateTimetables(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DivisionIDs    []int64  `json:"divisionIDs"` // 为空时对所有班级排课
		Seed           *int64   `json:"seed"`
		PopulationSize *int32   `json:"populationSize" validate:"omitempty,min=2"`
		MaxGenerations *int32   `json:"maxGenerations" validate:"omitempty,min=1"`
		CrossoverRate  *float64 `json:"crossoverRate" validate:"omitempty,min=0,max=1"`
		MutationRate   *float64 `json:"mutationRate" validate:"omitempty,min=0,max=1"`
		EliteCount     *int32   `json:"eliteCount" validate:"omitempty,min=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 排课是全局操作，通过 redis 锁保证同一时刻只有一个任务在执行
	lockTTL := time.Duration(h.config.Redis.GenerateLockTimeout) * time.Second
	locked, err := h.redisClient.SetNX(r.Context(), generateLockKey, 1, lockTTL).Result()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !locked {
		h.errorResponse(w, r, "已有排课任务正在进行，请稍后再试")
		return
	}
	defer func() {
		// 请求取消时 r.Context() 已失效，释放锁需要独立的 context
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.ConnectTimeout)*time.Second)
		defer cancel()
		h.redisClient.Del(ctx, generateLockKey)
	}()

	snapshot, err := h.loadSnapshot()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := utils.ValidateTimeSlots(snapshot.Slots); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	parameters := h.engineParameters()
	if req.PopulationSize != nil {
		parameters.PopulationSize = *req.PopulationSize
	}
	if req.MaxGenerations != nil {
		parameters.MaxGenerations = *req.MaxGenerations
	}
	if req.CrossoverRate != nil {
		parameters.CrossoverRate = *req.CrossoverRate
	}
	if req.MutationRate != nil {
		parameters.MutationRate = *req.MutationRate
	}
	if req.EliteCount != nil {
		parameters.EliteCount = *req.EliteCount
	}

	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}

	coordinator := scheduler.NewCoordinator(parameters, snapshot, seed)
	results, report, err := coordinator.Run(r.Context(), req.DivisionIDs)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	divisionByID := make(map[int64]*domain.Division)
	for _, division := range snapshot.Divisions {
		divisionByID[division.ID] = division
	}

	for divisionID, result := range results {
		if err := h.repository.InsertTimetableResult(result); err != nil {
			h.internalServerError(w, r, err)
			return
		}

		if err := h.redisClient.Del(r.Context(), timetableCacheKey(divisionID)).Err(); err != nil {
			h.internalServerError(w, r, err)
			return
		}

		if !result.Success {
			continue
		}

		division := divisionByID[divisionID]
		if division == nil {
			continue
		}
		if err := h.publishMail(domain.MailMessage{
			Type: "timetable_published",
			To:   h.config.InitialAdmin.Email,
			Data: domain.TimetablePublishedMailData{
				DivisionName: division.Name,
				SessionCount: result.SessionCount,
				Fitness:      result.Fitness,
			},
		}); err != nil {
			h.internalServerError(w, r, err)
			return
		}
	}

	// 保留最近一次排课的全局报告供查询
	reportData, err := json.Marshal(report)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if err := h.redisClient.Set(r.Context(), systemReportKey, reportData, 0).Err(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "排课完成", struct {
		Results map[int64]*domain.TimetableResult `json:"results"`
		Report  *domain.SystemReport              `json:"report"`
	}{
		Results: results,
		Report:  report,
	})
}

// GetSystemReport 返回最近一次自动排课的全局报告
func (h *Handler) GetSystemReport(w http.ResponseWriter, r *http.Request) {
	cached, err := h.redisClient.Get(r.Context(), systemReportKey).Result()
	if err != nil {
		switch {
		case errors.Is(err, redis.Nil):
			h.errorResponse(w, r, "还没有执行过自动排课")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	var report domain.SystemReport
	if err := json.Unmarshal([]byte(cached), &report); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取排课报告成功", &report)
}

func (h *Handler) GetDivisionTimetable(w http.ResponseWriter, r *http.Request) {
	division := r.Context().Value(DivisionInfoCtx).(*domain.Division)

	// 先查缓存
	cached, err := h.redisClient.Get(r.Context(), timetableCacheKey(division.ID)).Result()
	if err == nil {
		var result domain.TimetableResult
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			h.successResponse(w, r, "获取课表成功", &result)
			return
		}
		// 缓存数据损坏时回退到数据库
	} else if !errors.Is(err, redis.Nil) {
		h.internalServerError(w, r, err)
		return
	}

	result, err := h.repository.GetTimetableResultByDivisionID(division.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "该班级还没有课表")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	expiration := time.Duration(h.config.Redis.TimetableExpiration) * time.Second
	if err := h.redisClient.Set(r.Context(), timetableCacheKey(division.ID), data, expiration).Err(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取课表成功", result)
}

// SubmitDivisionTimetable 接收人工编排或调整后的课表，重新评估约束后入库
func (h *Handler) SubmitDivisionTimetable(w http.ResponseWriter, r *http.Request) {
	division := r.Context().Value(DivisionInfoCtx).(*domain.Division)

	var req struct {
		Sessions []domain.TimetableSession `json:"sessions" validate:"required,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	snapshot, err := h.loadSnapshot()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	var divisionSubjects []*domain.Subject
	for _, subject := range snapshot.Subjects {
		if subject.DivisionID == division.ID {
			divisionSubjects = append(divisionSubjects, subject)
		}
	}

	if err := utils.ValidateSessionsWithSubjects(req.Sessions, divisionSubjects, division); err != nil {
		h.badRequest(w, r, err)
		return
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	sched, err := scheduler.New(
		h.engineParameters(),
		division,
		divisionSubjects,
		snapshot.Teachers,
		snapshot.Rooms,
		snapshot.Slots,
		snapshot.Proficiencies,
		rng,
	)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	violations, fitness, err := sched.EvaluateSessions(req.Sessions)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	result := &domain.TimetableResult{
		DivisionID:   division.ID,
		Sessions:     req.Sessions,
		Fitness:      fitness,
		Violations:   *violations,
		Success:      violations.HardTotal() <= h.config.Engine.AcceptanceThreshold,
		SessionCount: int32(len(req.Sessions)),
	}
	if !result.Success {
		result.Cause = "人工课表存在硬约束冲突"
	}

	if err := h.repository.InsertTimetableResult(result); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.redisClient.Del(r.Context(), timetableCacheKey(division.ID)).Err(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "提交课表成功", result)
}
