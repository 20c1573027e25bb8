package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeDOCX FileType = "docx"
	FileTypeTXT  FileType = "txt"
)

// CandidateProfile is a parsed resume. StructuredData always holds a JSON
// object once ingestion has succeeded.
type CandidateProfile struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	ExtractedText  string         `gorm:"type:text;not null" json:"extracted_text"`
	StructuredData datatypes.JSON `gorm:"type:jsonb;not null" json:"structured_data"`
	FileType       FileType       `gorm:"type:varchar(10);not null" json:"file_type"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (CandidateProfile) TableName() string {
	return "candidate_profiles"
}

// Data decodes StructuredData.
func (c *CandidateProfile) Data() (StructuredData, error) {
	return ParseStructuredData(c.StructuredData)
}
