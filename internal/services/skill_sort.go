package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/repositories"
)

// SkillSortService asks the model to reorder a candidate's skills and stores
// the result.
type SkillSortService struct {
	candidates repositories.CandidateRepository
	client     InferenceClient
	prompts    *PromptBuilder
	logger     *zap.Logger
}

func NewSkillSortService(candidates repositories.CandidateRepository, client InferenceClient, log *zap.Logger) *SkillSortService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SkillSortService{
		candidates: candidates,
		client:     client,
		prompts:    NewPromptBuilder(),
		logger:     log,
	}
}

// Resort replaces the candidate's skills with the model's sorted list.
func (s *SkillSortService) Resort(ctx context.Context, candidateID uuid.UUID) (*models.CandidateProfile, error) {
	candidate, found, err := s.candidates.FindByID(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &NotFoundError{Kind: KindCandidate, ID: candidateID}
	}

	data, err := candidate.Data()
	if err != nil {
		return nil, fmt.Errorf("candidate %s structured data: %w", candidateID, err)
	}
	if !data.Has(models.FieldSkills) {
		return nil, &MissingFieldError{Field: models.FieldSkills}
	}
	skills, _ := data.Skills()

	prompt, err := s.prompts.BuildSortPrompt(skills)
	if err != nil {
		return nil, err
	}

	raw, err := s.client.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("skill sort: %w", err)
	}

	value, err := ToJSON(raw)
	if err != nil {
		return nil, err
	}
	items, ok := value.([]any)
	if !ok {
		return nil, &ModelJSONError{Raw: raw, Reason: "expected a JSON array"}
	}

	sorted := make([]string, 0, len(items))
	for _, item := range items {
		if str, ok := item.(string); ok {
			sorted = append(sorted, str)
			continue
		}
		sorted = append(sorted, fmt.Sprint(item))
	}

	data.SetSkills(sorted)
	encoded, err := data.JSON()
	if err != nil {
		return nil, fmt.Errorf("encode structured data: %w", err)
	}
	candidate.StructuredData = datatypes.JSON(encoded)

	if err := s.candidates.UpdateStructuredData(ctx, candidate); err != nil {
		return nil, err
	}

	s.logger.Info("candidate skills resorted",
		zap.String("candidate_id", candidateID.String()),
		zap.Int("skills", len(sorted)),
	)

	return candidate, nil
}
