package utils

import (
	"fmt"
	"math/rand"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/timetable-manager/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var roles = []domain.Role{
	domain.RoleTeacher,
	domain.RoleAcademicAffairs,
	domain.RoleAdmin,
}

func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         GenerateRandomRole(),
	}

	return user, nil
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

var preferences = []domain.HalfDayPreference{
	domain.PreferMorning,
	domain.PreferAfternoon,
	domain.PreferNone,
}

// GenerateRandomTeacher 生成一名在职教师，供种子数据使用
func GenerateRandomTeacher(homeYear int32, emailDomainName string) *domain.Teacher {
	name := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(name)
	minSessions := int32(rand.Intn(4) + 2)  // 2~5
	maxSessions := minSessions + int32(rand.Intn(8)+4) // 至少比下限多 4

	return &domain.Teacher{
		Name:                 name,
		Email:                username + "@" + emailDomainName,
		Department:           fmt.Sprintf("第%d教研组", rand.Intn(5)+1),
		HomeYear:             homeYear,
		MinWeeklySessions:    minSessions,
		MaxWeeklySessions:    maxSessions,
		LecturePreference:    preferences[rand.Intn(len(preferences))],
		LabPreference:        preferences[rand.Intn(len(preferences))],
		CanTeachLabs:         rand.Intn(2) == 0,
		CanSuperviseProjects: rand.Intn(4) == 0,
		Status:               domain.TeacherStatusActive,
		CrossYearEligible:    rand.Intn(3) == 0,
		MaxCrossYearSessions: int32(rand.Intn(3) + 1),
	}
}

// GenerateRandomProficiency 生成教师对某科目的熟练度记录
func GenerateRandomProficiency(teacherID int64, subjectID int64) *domain.SubjectProficiency {
	return &domain.SubjectProficiency{
		TeacherID:   teacherID,
		SubjectID:   subjectID,
		Knowledge:   int32(rand.Intn(10) + 1),
		Willingness: int32(rand.Intn(10) + 1),
	}
}
