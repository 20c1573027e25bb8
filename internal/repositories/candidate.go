package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resume-matcher/internal/models"
)

type CandidateRepository interface {
	Create(ctx context.Context, candidate *models.CandidateProfile) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.CandidateProfile, bool, error)
	List(ctx context.Context) ([]models.CandidateProfile, error)
	UpdateStructuredData(ctx context.Context, candidate *models.CandidateProfile) error
}

type candidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

// Create implements CandidateRepository.
func (r *candidateRepository) Create(ctx context.Context, candidate *models.CandidateProfile) error {
	if err := r.db.WithContext(ctx).Create(candidate).Error; err != nil {
		return fmt.Errorf("failed to create candidate: %w", err)
	}

	return nil
}

// FindByID implements CandidateRepository.
func (r *candidateRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.CandidateProfile, bool, error) {
	var candidate models.CandidateProfile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&candidate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("failed to find candidate: %w", err)
	}

	return &candidate, true, nil
}

// List implements CandidateRepository.
func (r *candidateRepository) List(ctx context.Context) ([]models.CandidateProfile, error) {
	var candidates []models.CandidateProfile
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}

	return candidates, nil
}

// UpdateStructuredData implements CandidateRepository.
func (r *candidateRepository) UpdateStructuredData(ctx context.Context, candidate *models.CandidateProfile) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.CandidateProfile{}).
		Where("id = ?", candidate.ID).
		Updates(map[string]interface{}{
			"structured_data": candidate.StructuredData,
			"updated_at":      now,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update candidate: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("candidate %s: %w", candidate.ID, ErrNotFound)
	}

	candidate.UpdatedAt = now
	return nil
}
