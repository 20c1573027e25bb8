package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/resume-matcher/internal/models"
)

type MatchRepository interface {
	// Create inserts a new match. It returns ErrDuplicateMatch when a row for
	// the same job and candidate already exists.
	Create(ctx context.Context, match *models.ResumeMatchScore) error
	FindByPair(ctx context.Context, jobID, candidateID uuid.UUID) (*models.ResumeMatchScore, bool, error)
	// List returns all matches, highest score first.
	List(ctx context.Context) ([]models.ResumeMatchScore, error)
}

type matchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) Create(ctx context.Context, match *models.ResumeMatchScore) error {
	// Associations are inserted by their own repositories.
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(match).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateMatch
		}
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

func (r *matchRepository) FindByPair(ctx context.Context, jobID, candidateID uuid.UUID) (*models.ResumeMatchScore, bool, error) {
	var match models.ResumeMatchScore
	err := r.db.WithContext(ctx).
		Where("job_posting_id = ? AND candidate_profile_id = ?", jobID, candidateID).
		First(&match).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to find match: %w", err)
	}
	return &match, true, nil
}

func (r *matchRepository) List(ctx context.Context) ([]models.ResumeMatchScore, error) {
	var matches []models.ResumeMatchScore
	if err := r.db.WithContext(ctx).Order("matching_score DESC").Find(&matches).Error; err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}
