package repo

import (
	"time"

	"tabula-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type QuestionRepo struct {
	db *gorm.DB
}

type QuestionRepoInterface interface {
	CreateQuestion(question *models.Question) error
	GetQuestions(page int, pageSize int) ([]models.Question, int64, error)
}

func NewQuestionRepository(db *gorm.DB) QuestionRepoInterface {
	return &QuestionRepo{db: db}
}

// CreateQuestion stores an answered question, assigning a UUID and
// timestamps when they are missing.
func (r *QuestionRepo) CreateQuestion(question *models.Question) error {
	if question.UUID == uuid.Nil {
		question.UUID = uuid.New()
	}
	now := time.Now()
	if question.CreatedAt.IsZero() {
		question.CreatedAt = now
	}
	question.UpdatedAt = now
	return r.db.Create(question).Error
}

// signature returns questions, totalCount, error
func (r *QuestionRepo) GetQuestions(page int, pageSize int) ([]models.Question, int64, error) {
	var questions []models.Question
	var total int64

	// sane defaults + cap
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	offset := (page - 1) * pageSize

	if err := r.db.Model(&models.Question{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// newest first
	if err := r.db.Order("created_at desc").
		Limit(pageSize).
		Offset(offset).
		Find(&questions).Error; err != nil {
		return nil, 0, err
	}

	return questions, total, nil
}
