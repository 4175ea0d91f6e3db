package seed

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/repository"
)

type teacherRecord struct {
	Name                 string `csv:"姓名"`
	Email                string `csv:"邮箱"`
	Department           string `csv:"教研组"`
	HomeYear             int32  `csv:"年级"`
	MinWeeklySessions    int32  `csv:"每周最少课时"`
	MaxWeeklySessions    int32  `csv:"每周最多课时"`
	LecturePreference    string `csv:"理论课偏好"`
	LabPreference        string `csv:"实验课偏好"`
	CanTeachLabs         bool   `csv:"可带实验"`
	CanSuperviseProjects bool   `csv:"可带项目"`
	CrossYearEligible    bool   `csv:"可跨年级"`
	MaxCrossYearSessions int32  `csv:"跨年级课时上限"`
}

type subjectRecord struct {
	Name           string `csv:"科目"`
	DivisionName   string `csv:"班级"`
	Year           int32  `csv:"年级"`
	BatchCount     int32  `csv:"小组数"`
	WeeklySessions int32  `csv:"每周课时"`
	RequiresLab    bool   `csv:"需要实验室"`
}

// SeedRealData 从 CSV 文件中导入教师和科目数据，班级不存在时会自动创建
func SeedRealData(r *repository.Repository) {
	teacherFile, err := os.Open("./internal/seed/data/teachers.csv")
	if err != nil {
		slog.Error("打开教师数据文件失败", "error", err)
		return
	}
	defer teacherFile.Close()

	var teacherRecords []*teacherRecord
	if err := gocsv.UnmarshalFile(teacherFile, &teacherRecords); err != nil {
		slog.Error("解析教师数据失败", "error", err)
		return
	}

	teacherCnt := 0
	for _, record := range teacherRecords {
		lecturePreference := domain.HalfDayPreference(record.LecturePreference)
		if lecturePreference == "" {
			lecturePreference = domain.PreferNone
		}
		labPreference := domain.HalfDayPreference(record.LabPreference)
		if labPreference == "" {
			labPreference = domain.PreferNone
		}

		teacher := &domain.Teacher{
			Name:                 record.Name,
			Email:                record.Email,
			Department:           record.Department,
			HomeYear:             record.HomeYear,
			MinWeeklySessions:    record.MinWeeklySessions,
			MaxWeeklySessions:    record.MaxWeeklySessions,
			LecturePreference:    lecturePreference,
			LabPreference:        labPreference,
			CanTeachLabs:         record.CanTeachLabs,
			CanSuperviseProjects: record.CanSuperviseProjects,
			Status:               domain.TeacherStatusActive,
			CrossYearEligible:    record.CrossYearEligible,
			MaxCrossYearSessions: record.MaxCrossYearSessions,
		}

		if err := r.CreateTeacher(teacher); err != nil {
			slog.Error("插入教师失败", "name", record.Name, "error", err)
			continue
		}
		teacherCnt++
	}

	subjectFile, err := os.Open("./internal/seed/data/subjects.csv")
	if err != nil {
		slog.Error("打开科目数据文件失败", "error", err)
		return
	}
	defer subjectFile.Close()

	var subjectRecords []*subjectRecord
	if err := gocsv.UnmarshalFile(subjectFile, &subjectRecords); err != nil {
		slog.Error("解析科目数据失败", "error", err)
		return
	}

	// 已有班级按名称索引，CSV 中出现新班级时创建
	divisions, err := r.GetAllDivisions()
	if err != nil {
		slog.Error("获取班级列表失败", "error", err)
		return
	}
	divisionByName := make(map[string]*domain.Division)
	for _, division := range divisions {
		divisionByName[division.Name] = division
	}

	subjectCnt := 0
	for _, record := range subjectRecords {
		division, ok := divisionByName[record.DivisionName]
		if !ok {
			batchCount := record.BatchCount
			if batchCount < 1 {
				batchCount = 1
			}
			division = &domain.Division{
				Name:       record.DivisionName,
				Year:       record.Year,
				BatchCount: batchCount,
			}
			if err := r.CreateDivision(division); err != nil {
				slog.Error("创建班级失败", "name", record.DivisionName, "error", err)
				continue
			}
			divisionByName[division.Name] = division
		}

		if division.Year != record.Year {
			slog.Error("科目年级与班级年级不一致", "subject", record.Name, "division", record.DivisionName)
			continue
		}

		subject := &domain.Subject{
			Name:           record.Name,
			Year:           record.Year,
			DivisionID:     division.ID,
			WeeklySessions: record.WeeklySessions,
			RequiresLab:    record.RequiresLab,
		}

		if err := r.CreateSubject(subject); err != nil {
			slog.Error("插入科目失败", "name", record.Name, "error", err)
			continue
		}
		subjectCnt++
	}

	slog.Info("插入数据完成", "teachers", teacherCnt, "subjects", subjectCnt)
}

// SeedWeekGrid 插入一套标准的一周时段：每天上午四节理论课、
// 午休、下午两节理论课、一个占两节的实验时段和一个项目时段
func SeedWeekGrid(r *repository.Repository) error {
	type slotSpec struct {
		number    int32
		startTime string
		endTime   string
		isMorning bool
		slotType  domain.SlotType
	}

	specs := []slotSpec{
		{1, "08:00:00", "08:45:00", true, domain.SlotTypeLecture},
		{2, "08:55:00", "09:40:00", true, domain.SlotTypeLecture},
		{3, "10:00:00", "10:45:00", true, domain.SlotTypeLecture},
		{4, "10:55:00", "11:40:00", true, domain.SlotTypeLecture},
		{5, "12:00:00", "13:00:00", false, domain.SlotTypeBreak},
		{6, "13:10:00", "13:55:00", false, domain.SlotTypeLecture},
		{7, "14:05:00", "14:50:00", false, domain.SlotTypeLecture},
		{8, "15:10:00", "16:40:00", false, domain.SlotTypeLab},
		{9, "16:50:00", "17:35:00", false, domain.SlotTypeProject},
	}

	for day := int32(1); day <= 5; day++ {
		for _, spec := range specs {
			slot := &domain.TimeSlot{
				DayOfWeek:  day,
				SlotNumber: spec.number,
				StartTime:  spec.startTime,
				EndTime:    spec.endTime,
				IsMorning:  spec.isMorning,
				Type:       spec.slotType,
			}
			if err := r.CreateTimeSlot(slot); err != nil {
				return fmt.Errorf("插入第 %d 天第 %d 节时段失败: %w", day, spec.number, err)
			}
		}
	}

	return nil
}
