package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/repository"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

// 教务和管理员拥有全部机构数据的写权限
var staffRoles = []domain.Role{domain.RoleAcademicAffairs, domain.RoleAdmin}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/users", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteUser)
			})
		})

		r.Route("/teachers", func(r chi.Router) {
			r.With(h.RequiredRole(staffRoles)).Post("/", h.CreateTeacher)
			r.Get("/", h.GetAllTeachers)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.teacherInfo)
				r.Get("/", h.GetTeacher)
				r.With(h.RequiredRole(staffRoles)).Patch("/", h.UpdateTeacher)
				r.With(h.RequiredRole(staffRoles)).Delete("/", h.DeleteTeacher)
				// 教师离任后对其名下课程做替换改派
				r.With(h.RequiredRole(staffRoles)).Post("/resign", h.ResignTeacher)
			})
		})

		r.Route("/subjects", func(r chi.Router) {
			r.With(h.RequiredRole(staffRoles)).Post("/", h.CreateSubject)
			r.Get("/", h.GetAllSubjects)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.subjectInfo)
				r.Get("/", h.GetSubject)
				r.With(h.RequiredRole(staffRoles)).Patch("/", h.UpdateSubject)
				r.With(h.RequiredRole(staffRoles)).Delete("/", h.DeleteSubject)
				r.Get("/proficiencies", h.GetSubjectProficiencies)
				r.With(h.RequiredRole(staffRoles)).Put("/proficiencies", h.SetSubjectProficiencies)
			})
		})

		r.Route("/rooms", func(r chi.Router) {
			r.With(h.RequiredRole(staffRoles)).Post("/", h.CreateRoom)
			r.Get("/", h.GetAllRooms)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.roomInfo)
				r.Get("/", h.GetRoom)
				r.With(h.RequiredRole(staffRoles)).Patch("/", h.UpdateRoom)
				r.With(h.RequiredRole(staffRoles)).Delete("/", h.DeleteRoom)
			})
		})

		r.Route("/timeslots", func(r chi.Router) {
			r.With(h.RequiredRole(staffRoles)).Post("/", h.CreateTimeSlot)
			r.Get("/", h.GetAllTimeSlots)
			r.With(h.RequiredRole(staffRoles)).Delete("/{id}", h.DeleteTimeSlot)
		})

		r.Route("/divisions", func(r chi.Router) {
			r.With(h.RequiredRole(staffRoles)).Post("/", h.CreateDivision)
			r.Get("/", h.GetAllDivisions)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.divisionInfo)
				r.Get("/", h.GetDivision)
				r.With(h.RequiredRole(staffRoles)).Patch("/", h.UpdateDivision)
				r.With(h.RequiredRole(staffRoles)).Delete("/", h.DeleteDivision)
				r.Route("/timetable", func(r chi.Router) {
					r.Get("/", h.GetDivisionTimetable)
					// 人工调整后的课表提交前会重新评估约束
					r.With(h.RequiredRole(staffRoles)).Post("/", h.SubmitDivisionTimetable)
				})
			})
		})

		// 自动排课对全体目标班级并行执行，只允许教务或管理员触发
		r.Route("/timetables", func(r chi.Router) {
			r.With(h.RequiredRole(staffRoles)).Post("/generate", h.GenerateTimetables)
			r.Get("/report", h.GetSystemReport)
		})
	})
}
