package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type JobPosting struct {
	ID             uuid.UUID                   `gorm:"type:uuid;primary_key" json:"id"`
	Title          string                      `gorm:"type:varchar(200);not null;index;index:idx_job_title_company,priority:1" json:"title"`
	Company        string                      `gorm:"type:varchar(200);not null;index;index:idx_job_title_company,priority:2" json:"company"`
	RequiredSkills datatypes.JSONSlice[string] `gorm:"type:jsonb;not null" json:"required_skills"`
	CreatedAt      time.Time                   `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`
}

func (JobPosting) TableName() string {
	return "job_postings"
}
