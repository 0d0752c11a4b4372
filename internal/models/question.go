package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Question is one answered question about the loaded dataset.
type Question struct {
	UUID      uuid.UUID      `gorm:"type:uuid;primaryKey;" json:"uuid"`
	Question  string         `gorm:"not null" json:"question"`
	Answer    string         `gorm:"not null" json:"answer"`
	Steps     datatypes.JSON `json:"steps"`
	Model     string         `json:"model"`
	Dataset   string         `json:"dataset"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
