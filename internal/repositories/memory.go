package repositories

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/resume-matcher/internal/models"
)

var (
	_ CandidateRepository = (*MemoryCandidateRepository)(nil)
	_ JobRepository       = (*MemoryJobRepository)(nil)
	_ MatchRepository     = (*MemoryMatchRepository)(nil)
)

// MemoryCandidateRepository is an in-memory CandidateRepository.
type MemoryCandidateRepository struct {
	mu   sync.RWMutex
	data map[uuid.UUID]models.CandidateProfile
}

func NewMemoryCandidateRepository() *MemoryCandidateRepository {
	return &MemoryCandidateRepository{data: make(map[uuid.UUID]models.CandidateProfile)}
}

func (r *MemoryCandidateRepository) Create(ctx context.Context, candidate *models.CandidateProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[candidate.ID] = copyCandidate(*candidate)
	return nil
}

func (r *MemoryCandidateRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.CandidateProfile, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.data[id]
	if !ok {
		return nil, false, nil
	}
	c = copyCandidate(c)
	return &c, true, nil
}

// List returns candidates newest first.
func (r *MemoryCandidateRepository) List(ctx context.Context) ([]models.CandidateProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]models.CandidateProfile, 0, len(r.data))
	for _, c := range r.data {
		out = append(out, copyCandidate(c))
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryCandidateRepository) UpdateStructuredData(ctx context.Context, candidate *models.CandidateProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.data[candidate.ID]
	if !ok {
		return ErrNotFound
	}
	stored.StructuredData = bytes.Clone(candidate.StructuredData)
	stored.UpdatedAt = time.Now()
	r.data[candidate.ID] = stored
	candidate.UpdatedAt = stored.UpdatedAt
	return nil
}

// Len reports the number of stored candidates.
func (r *MemoryCandidateRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}

func copyCandidate(c models.CandidateProfile) models.CandidateProfile {
	c.StructuredData = bytes.Clone(c.StructuredData)
	return c
}

// MemoryJobRepository is an in-memory JobRepository.
type MemoryJobRepository struct {
	mu   sync.RWMutex
	data map[uuid.UUID]models.JobPosting
}

func NewMemoryJobRepository() *MemoryJobRepository {
	return &MemoryJobRepository{data: make(map[uuid.UUID]models.JobPosting)}
}

func (r *MemoryJobRepository) Create(ctx context.Context, job *models.JobPosting) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[job.ID] = copyJob(*job)
	return nil
}

func (r *MemoryJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.JobPosting, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.data[id]
	if !ok {
		return nil, false, nil
	}
	job = copyJob(job)
	return &job, true, nil
}

func (r *MemoryJobRepository) List(ctx context.Context, filter JobFilter) ([]models.JobPosting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	title := strings.ToLower(strings.TrimSpace(filter.Title))
	company := strings.ToLower(strings.TrimSpace(filter.Company))

	r.mu.RLock()
	out := make([]models.JobPosting, 0, len(r.data))
	for _, job := range r.data {
		if title != "" && !strings.Contains(strings.ToLower(job.Title), title) {
			continue
		}
		if company != "" && !strings.Contains(strings.ToLower(job.Company), company) {
			continue
		}
		out = append(out, copyJob(job))
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func copyJob(j models.JobPosting) models.JobPosting {
	j.RequiredSkills = append([]string(nil), j.RequiredSkills...)
	return j
}

type pairKey struct {
	job       uuid.UUID
	candidate uuid.UUID
}

// MemoryMatchRepository is an in-memory MatchRepository. The pair check and
// the insert happen under one lock.
type MemoryMatchRepository struct {
	mu     sync.RWMutex
	byPair map[pairKey]models.ResumeMatchScore
}

func NewMemoryMatchRepository() *MemoryMatchRepository {
	return &MemoryMatchRepository{byPair: make(map[pairKey]models.ResumeMatchScore)}
}

func (r *MemoryMatchRepository) Create(ctx context.Context, match *models.ResumeMatchScore) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := pairKey{job: match.JobPostingID, candidate: match.CandidateProfileID}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byPair[key]; exists {
		return ErrDuplicateMatch
	}
	stored := *match
	stored.JobPosting = nil
	stored.CandidateProfile = nil
	r.byPair[key] = stored
	return nil
}

func (r *MemoryMatchRepository) FindByPair(ctx context.Context, jobID, candidateID uuid.UUID) (*models.ResumeMatchScore, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byPair[pairKey{job: jobID, candidate: candidateID}]
	if !ok {
		return nil, false, nil
	}
	return &m, true, nil
}

func (r *MemoryMatchRepository) List(ctx context.Context) ([]models.ResumeMatchScore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]models.ResumeMatchScore, 0, len(r.byPair))
	for _, m := range r.byPair {
		out = append(out, m)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].MatchingScore > out[j].MatchingScore
	})
	return out, nil
}

// Len reports the number of stored matches.
func (r *MemoryMatchRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byPair)
}
