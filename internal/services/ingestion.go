package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/repositories"
)

// IngestionObserver is told about every successfully stored candidate.
type IngestionObserver interface {
	CandidateIngested(ctx context.Context, candidate *models.CandidateProfile)
}

// IngestionPipeline turns an uploaded resume into a stored CandidateProfile.
type IngestionPipeline struct {
	extractor  DocumentExtractor
	client     InferenceClient
	prompts    *PromptBuilder
	candidates repositories.CandidateRepository
	observer   IngestionObserver
	logger     *zap.Logger
}

func NewIngestionPipeline(
	extractor DocumentExtractor,
	client InferenceClient,
	candidates repositories.CandidateRepository,
	log *zap.Logger,
) *IngestionPipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &IngestionPipeline{
		extractor:  extractor,
		client:     client,
		prompts:    NewPromptBuilder(),
		candidates: candidates,
		logger:     log,
	}
}

// SetObserver registers o to be notified after each stored candidate.
func (p *IngestionPipeline) SetObserver(o IngestionObserver) {
	p.observer = o
}

// Ingest extracts, structures and stores one resume. Nothing is stored when
// any step fails.
func (p *IngestionPipeline) Ingest(ctx context.Context, data []byte, fileName string) (*models.CandidateProfile, error) {
	fileType, err := DetectFileType(fileName)
	if err != nil {
		return nil, err
	}

	text, err := p.extractor.Extract(data, fileType)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyContent, fileName)
	}

	p.logger.Info("resume text extracted",
		zap.String("file_name", fileName),
		zap.String("file_type", string(fileType)),
		zap.Int("text_length", len(text)),
	)

	raw, err := p.client.Complete(ctx, p.prompts.BuildExtractionPrompt(text))
	if err != nil {
		return nil, fmt.Errorf("structured extraction: %w", err)
	}

	value, err := ToJSON(raw)
	if err != nil {
		return nil, err
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, &ModelJSONError{Raw: raw, Reason: "expected a JSON object"}
	}

	structured, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("encode structured data: %w", err)
	}

	if _, hasSkills := models.StructuredData(obj).Skills(); !hasSkills {
		p.logger.Warn("structured data has no usable skills list", zap.String("file_name", fileName))
	}

	now := time.Now().UTC()
	candidate := &models.CandidateProfile{
		ID:             uuid.New(),
		ExtractedText:  text,
		StructuredData: datatypes.JSON(structured),
		FileType:       fileType,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := p.candidates.Create(ctx, candidate); err != nil {
		return nil, err
	}

	p.logger.Info("candidate ingested",
		zap.String("candidate_id", candidate.ID.String()),
		zap.String("file_type", string(fileType)),
	)

	if p.observer != nil {
		p.observer.CandidateIngested(ctx, candidate)
	}

	return candidate, nil
}
