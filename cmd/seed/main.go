package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/repository"
	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/seed"
	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var year int

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机用户, 2: 插入随机教师, 3: 插入随机熟练度, 4: 插入标准一周时段, 5: 插入真实数据)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.IntVar(&year, "year", 1, "随机教师所属的年级")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的用户数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
				if err != nil {
					slog.Error("无法生成随机用户", slog.String("error", err.Error()))
					continue
				}

				if err := repo.CreateUser(user); err != nil {
					slog.Error("无法插入用户", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入用户成功", slog.Int("count", n-cnt))
		}
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的教师数量")
		} else if year <= 0 {
			slog.Error("请输入合法的年级")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				teacher := utils.GenerateRandomTeacher(int32(year), cfg.Email.UserDomain)
				if err := repo.CreateTeacher(teacher); err != nil {
					slog.Error("无法插入教师", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入教师成功", slog.Int("count", n-cnt))
		}
	case 3:
		// 为每位教师随机挑选科目生成熟练度记录
		teachers, err := repo.GetAllTeachers()
		if err != nil {
			slog.Error("无法获取教师列表", slog.String("error", err.Error()))
			return
		}
		subjects, err := repo.GetAllSubjects()
		if err != nil {
			slog.Error("无法获取科目列表", slog.String("error", err.Error()))
			return
		}
		if len(teachers) == 0 || len(subjects) == 0 {
			slog.Error("请先插入教师和科目数据")
			return
		}

		cnt := 0
		for _, teacher := range teachers {
			for _, subject := range subjects {
				// 大约三分之二的组合有熟练度记录
				if rand.Intn(3) == 0 {
					continue
				}

				prof := utils.GenerateRandomProficiency(teacher.ID, subject.ID)
				if err := repo.UpsertProficiency(prof); err != nil {
					slog.Error("无法插入熟练度记录", slog.String("error", err.Error()))
					continue
				}
				cnt++
			}
		}

		slog.Info("插入熟练度记录成功", slog.Int("count", cnt))
	case 4:
		if err := seed.SeedWeekGrid(repo); err != nil {
			slog.Error("插入时段失败", slog.String("error", err.Error()))
			return
		}
		slog.Info("插入标准一周时段成功")
	case 5:
		seed.SeedRealData(repo)
	default:
		slog.Error("指定的操作非法")
	}
}
