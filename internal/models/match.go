package models

import (
	"time"

	"github.com/google/uuid"
)

// ResumeMatchScore caches the scoring result for one (job, candidate) pair.
// The pair is unique; rows are never updated after creation.
type ResumeMatchScore struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	JobPostingID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_match_pair,priority:1" json:"job_posting_id"`
	CandidateProfileID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_match_pair,priority:2" json:"candidate_profile_id"`
	MatchingScore      float64   `gorm:"not null;index" json:"matching_score"`
	Summary            string    `gorm:"type:text" json:"summary"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	// Relations
	JobPosting       *JobPosting       `gorm:"foreignKey:JobPostingID;constraint:OnDelete:CASCADE" json:"-"`
	CandidateProfile *CandidateProfile `gorm:"foreignKey:CandidateProfileID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ResumeMatchScore) TableName() string {
	return "resume_match_scores"
}
