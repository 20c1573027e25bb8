package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resume-matcher/internal/models"
)

// JobFilter narrows List by case-insensitive substring match. Empty fields
// are ignored.
type JobFilter struct {
	Title   string
	Company string
}

type JobRepository interface {
	Create(ctx context.Context, job *models.JobPosting) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.JobPosting, bool, error)
	List(ctx context.Context, filter JobFilter) ([]models.JobPosting, error)
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *models.JobPosting) error {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to create job posting: %w", err)
	}
	return nil
}

func (r *jobRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.JobPosting, bool, error) {
	var job models.JobPosting
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to find job posting: %w", err)
	}
	return &job, true, nil
}

func (r *jobRepository) List(ctx context.Context, filter JobFilter) ([]models.JobPosting, error) {
	query := r.db.WithContext(ctx).Model(&models.JobPosting{})

	if title := strings.TrimSpace(filter.Title); title != "" {
		query = query.Where("title ILIKE ?", "%"+escapeLike(title)+"%")
	}
	if company := strings.TrimSpace(filter.Company); company != "" {
		query = query.Where("company ILIKE ?", "%"+escapeLike(company)+"%")
	}

	var jobs []models.JobPosting
	if err := query.Order("created_at DESC").Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to list job postings: %w", err)
	}
	return jobs, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
