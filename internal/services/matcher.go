package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/repositories"
)

const (
	minMatchScore = 0
	maxMatchScore = 100
)

// MatchScoringPipeline computes a job/candidate score at most once per pair
// and serves every later request from the store.
type MatchScoringPipeline struct {
	jobs       repositories.JobRepository
	candidates repositories.CandidateRepository
	matches    repositories.MatchRepository
	client     InferenceClient
	prompts    *PromptBuilder
	group      singleflight.Group
	logger     *zap.Logger
}

func NewMatchScoringPipeline(
	jobs repositories.JobRepository,
	candidates repositories.CandidateRepository,
	matches repositories.MatchRepository,
	client InferenceClient,
	log *zap.Logger,
) *MatchScoringPipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &MatchScoringPipeline{
		jobs:       jobs,
		candidates: candidates,
		matches:    matches,
		client:     client,
		prompts:    NewPromptBuilder(),
		logger:     log,
	}
}

// GetOrCompute returns the stored score for the pair, computing and storing
// it first on a miss.
func (p *MatchScoringPipeline) GetOrCompute(ctx context.Context, jobID, candidateID uuid.UUID) (*models.ResumeMatchScore, error) {
	job, found, err := p.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &NotFoundError{Kind: KindJob, ID: jobID}
	}

	candidate, found, err := p.candidates.FindByID(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &NotFoundError{Kind: KindCandidate, ID: candidateID}
	}

	if cached, found, err := p.matches.FindByPair(ctx, jobID, candidateID); err != nil {
		return nil, err
	} else if found {
		p.logger.Debug("match cache hit", zap.String("job_id", jobID.String()), zap.String("candidate_id", candidateID.String()))
		return cached, nil
	}

	key := jobID.String() + "/" + candidateID.String()
	v, err, shared := p.group.Do(key, func() (any, error) {
		return p.compute(ctx, job, candidate)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		p.logger.Debug("match computation shared", zap.String("pair", key))
	}

	match := *v.(*models.ResumeMatchScore)
	return &match, nil
}

func (p *MatchScoringPipeline) compute(ctx context.Context, job *models.JobPosting, candidate *models.CandidateProfile) (*models.ResumeMatchScore, error) {
	// A caller that just finished this pair may have stored it between our
	// lookup and joining the flight.
	if cached, found, err := p.matches.FindByPair(ctx, job.ID, candidate.ID); err != nil {
		return nil, err
	} else if found {
		return cached, nil
	}

	data, err := candidate.Data()
	if err != nil {
		return nil, fmt.Errorf("candidate %s structured data: %w", candidate.ID, err)
	}

	prompt, err := p.prompts.BuildScoringPrompt(job, data)
	if err != nil {
		return nil, err
	}

	raw, err := p.client.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("match scoring: %w", err)
	}

	score, summary, err := parseScoreResult(raw)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	match := &models.ResumeMatchScore{
		ID:                 uuid.New(),
		JobPostingID:       job.ID,
		CandidateProfileID: candidate.ID,
		MatchingScore:      score,
		Summary:            summary,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err = p.matches.Create(ctx, match)
	switch {
	case err == nil:
		p.logger.Info("match computed",
			zap.String("job_id", job.ID.String()),
			zap.String("candidate_id", candidate.ID.String()),
			zap.Float64("score", score),
		)
		return match, nil
	case errors.Is(err, ErrDuplicateMatch):
		winner, found, findErr := p.matches.FindByPair(ctx, job.ID, candidate.ID)
		if findErr != nil {
			return nil, findErr
		}
		if !found {
			return nil, fmt.Errorf("match for job %s and candidate %s reported duplicate but not found: %w", job.ID, candidate.ID, err)
		}
		p.logger.Info("match stored by a concurrent request, using it",
			zap.String("job_id", job.ID.String()),
			zap.String("candidate_id", candidate.ID.String()),
		)
		return winner, nil
	default:
		return nil, err
	}
}

// List returns every stored match with its job and candidate, highest score
// first. Matches whose job or candidate is gone are skipped.
func (p *MatchScoringPipeline) List(ctx context.Context) ([]models.MatchDetail, error) {
	matches, err := p.matches.List(ctx)
	if err != nil {
		return nil, err
	}

	jobs := make(map[uuid.UUID]*models.JobPosting)
	candidates := make(map[uuid.UUID]*models.CandidateProfile)
	details := make([]models.MatchDetail, 0, len(matches))

	for _, m := range matches {
		job, ok := jobs[m.JobPostingID]
		if !ok {
			j, found, err := p.jobs.FindByID(ctx, m.JobPostingID)
			if err != nil {
				return nil, err
			}
			if found {
				job = j
			}
			jobs[m.JobPostingID] = job
		}

		candidate, ok := candidates[m.CandidateProfileID]
		if !ok {
			c, found, err := p.candidates.FindByID(ctx, m.CandidateProfileID)
			if err != nil {
				return nil, err
			}
			if found {
				candidate = c
			}
			candidates[m.CandidateProfileID] = candidate
		}

		if job == nil || candidate == nil {
			p.logger.Warn("skipping orphaned match", zap.String("match_id", m.ID.String()))
			continue
		}

		details = append(details, models.MatchDetail{
			ID:               m.ID,
			JobPosting:       *job,
			CandidateProfile: models.NewCandidateLite(candidate),
			MatchingScore:    m.MatchingScore,
			Summary:          m.Summary,
			CreatedAt:        m.CreatedAt,
			UpdatedAt:        m.UpdatedAt,
		})
	}

	return details, nil
}

func parseScoreResult(raw string) (float64, string, error) {
	value, err := ToJSON(raw)
	if err != nil {
		return 0, "", err
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return 0, "", &ModelJSONError{Raw: raw, Reason: "expected a JSON object"}
	}

	score, ok := coerceScore(obj["score"])
	if !ok {
		return 0, "", &ModelJSONError{Raw: raw, Reason: "score is missing or not numeric"}
	}
	if score < minMatchScore || score > maxMatchScore {
		return 0, "", &ModelJSONError{Raw: raw, Reason: fmt.Sprintf("score %v outside 0-100", score)}
	}

	summary, ok := obj["summary"].(string)
	if !ok {
		return 0, "", &ModelJSONError{Raw: raw, Reason: "summary is missing or not a string"}
	}

	return score, strings.TrimSpace(summary), nil
}

func coerceScore(v any) (float64, bool) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case int:
		f = float64(val)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
