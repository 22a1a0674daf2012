package repository

import (
	"context"
	"fmt"

	"github.com/yuqie6/StudyMirror/internal/schema"
	"gorm.io/gorm"
)

// SubjectRepository 科目/考试类型仓储（仅名称查询与种子数据写入）
type SubjectRepository struct {
	db *gorm.DB
}

// NewSubjectRepository 创建科目仓储
func NewSubjectRepository(db *gorm.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// CreateExamType 写入考试类型
func (r *SubjectRepository) CreateExamType(ctx context.Context, examType *schema.ExamType) error {
	if examType == nil {
		return fmt.Errorf("exam type is nil")
	}
	if err := r.db.WithContext(ctx).Create(examType).Error; err != nil {
		return fmt.Errorf("创建考试类型失败: %w", err)
	}
	return nil
}

// CreateSubjectArea 写入科目
func (r *SubjectRepository) CreateSubjectArea(ctx context.Context, subject *schema.SubjectArea) error {
	if subject == nil {
		return fmt.Errorf("subject area is nil")
	}
	if err := r.db.WithContext(ctx).Create(subject).Error; err != nil {
		return fmt.Errorf("创建科目失败: %w", err)
	}
	return nil
}

// GetSubjectArea 查询用户名下的科目（不存在返回 nil）
func (r *SubjectRepository) GetSubjectArea(ctx context.Context, userID, id int64) (*schema.SubjectArea, error) {
	var subject schema.SubjectArea
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("ExamType").
		First(&subject, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("查询科目失败: %w", err)
	}
	return &subject, nil
}

// ListSubjectAreas 列出用户的全部科目（按名称）
func (r *SubjectRepository) ListSubjectAreas(ctx context.Context, userID int64) ([]schema.SubjectArea, error) {
	var subjects []schema.SubjectArea
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("ExamType").
		Order("name ASC").
		Find(&subjects).Error; err != nil {
		return nil, fmt.Errorf("查询科目列表失败: %w", err)
	}
	return subjects, nil
}
