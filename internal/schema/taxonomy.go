package schema

import "time"

// ExamType 考试类型（如 "TOEIC"、"基本情報技術者"）
type ExamType struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"index;not null" json:"user_id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ExamType) TableName() string {
	return "exam_types"
}

// SubjectArea 学习科目，隶属于某个考试类型
type SubjectArea struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     int64     `gorm:"index;not null" json:"user_id"`
	ExamTypeID int64     `gorm:"index" json:"exam_type_id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	ExamType   *ExamType `gorm:"foreignKey:ExamTypeID" json:"exam_type,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SubjectArea) TableName() string {
	return "subject_areas"
}

// SubjectName 返回科目名，未关联时返回空串
func (s *SubjectArea) SubjectName() string {
	if s == nil {
		return ""
	}
	return s.Name
}

// ExamTypeName 返回所属考试类型名，未关联时返回空串
func (s *SubjectArea) ExamTypeName() string {
	if s == nil || s.ExamType == nil {
		return ""
	}
	return s.ExamType.Name
}
