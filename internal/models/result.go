package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type UploadResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// CandidateLite omits the extracted text.
type CandidateLite struct {
	ID             uuid.UUID       `json:"id"`
	StructuredData json.RawMessage `json:"structured_data"`
	FileType       FileType        `json:"file_type"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func NewCandidateLite(c *CandidateProfile) CandidateLite {
	return CandidateLite{
		ID:             c.ID,
		StructuredData: json.RawMessage(c.StructuredData),
		FileType:       c.FileType,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

type CreateJobRequest struct {
	Title          string   `json:"title"`
	Company        string   `json:"company"`
	RequiredSkills []string `json:"required_skills"`
}

// MatchDetail is a match with its job and candidate embedded.
type MatchDetail struct {
	ID               uuid.UUID     `json:"id"`
	JobPosting       JobPosting    `json:"job_posting"`
	CandidateProfile CandidateLite `json:"candidate_profile"`
	MatchingScore    float64       `json:"matching_score"`
	Summary          string        `json:"summary"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

type CandidateSuggestion struct {
	CandidateID uuid.UUID `json:"candidate_id"`
	Score       float32   `json:"score"`
	Name        string    `json:"name,omitempty"`
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}
