package model

// Student 实习学生表 对应 students
// NationalID（T.C. 身份证号）是与考勤记录关联的键，同一教师下唯一
type Student struct {
	StudentID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	TeacherID    string `gorm:"type:uuid;not null;index"                       json:"teacher_id"`
	FullName     string `gorm:"type:varchar(150);not null"                     json:"full_name"`
	NationalID   string `gorm:"type:varchar(11);not null"                      json:"national_id"`
	BusinessName string `gorm:"type:varchar(200);not null;default:'-'"         json:"business_name"`
	Phone        string `gorm:"type:varchar(20);not null;default:''"           json:"phone"`
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`
}

// TableName 指定表名
func (Student) TableName() string { return "students" }
