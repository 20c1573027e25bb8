package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/repositories"
)

const (
	defaultSuggestLimit = 10
	// Several chunks of one resume can rank high, so search wider than limit.
	searchWidening = 5
)

// CandidateIndex keeps resume embeddings in a VectorStore and uses them to
// suggest candidates for a job.
type CandidateIndex struct {
	store      VectorStore
	embedder   Embedder
	chunker    *TextChunker
	candidates repositories.CandidateRepository
	prompts    *PromptBuilder
	logger     *zap.Logger
}

func NewCandidateIndex(
	store VectorStore,
	embedder Embedder,
	chunker *TextChunker,
	candidates repositories.CandidateRepository,
	log *zap.Logger,
) *CandidateIndex {
	if log == nil {
		log = zap.NewNop()
	}
	return &CandidateIndex{
		store:      store,
		embedder:   embedder,
		chunker:    chunker,
		candidates: candidates,
		prompts:    NewPromptBuilder(),
		logger:     log,
	}
}

// IndexCandidate replaces the stored chunks of candidate.
func (i *CandidateIndex) IndexCandidate(ctx context.Context, candidate *models.CandidateProfile) error {
	chunks := i.chunker.Chunk(candidate.ExtractedText)
	if len(chunks) == 0 {
		return nil
	}

	vectors := make([]ChunkVector, 0, len(chunks))
	for idx, text := range chunks {
		vec, err := i.embedder.Embed(ctx, text)
		if err != nil {
			return fmt.Errorf("embed chunk %d of candidate %s: %w", idx, candidate.ID, err)
		}
		vectors = append(vectors, ChunkVector{Index: idx, Text: text, Vector: vec})
	}

	if err := i.store.DeleteCandidate(ctx, candidate.ID); err != nil {
		return err
	}
	if err := i.store.UpsertChunks(ctx, candidate.ID, vectors); err != nil {
		return err
	}

	i.logger.Info("candidate indexed",
		zap.String("candidate_id", candidate.ID.String()),
		zap.Int("chunks", len(vectors)),
	)
	return nil
}

// IndexByID loads the candidate and indexes it.
func (i *CandidateIndex) IndexByID(ctx context.Context, candidateID uuid.UUID) error {
	candidate, found, err := i.candidates.FindByID(ctx, candidateID)
	if err != nil {
		return err
	}
	if !found {
		return &NotFoundError{Kind: KindCandidate, ID: candidateID}
	}
	return i.IndexCandidate(ctx, candidate)
}

// SuggestCandidates returns up to limit candidates whose resumes are closest
// to the job, best first. Each candidate appears once, scored by its best chunk.
func (i *CandidateIndex) SuggestCandidates(ctx context.Context, job *models.JobPosting, limit int) ([]models.CandidateSuggestion, error) {
	if limit <= 0 {
		limit = defaultSuggestLimit
	}

	vec, err := i.embedder.Embed(ctx, i.prompts.BuildSuggestionQuery(job))
	if err != nil {
		return nil, fmt.Errorf("embed job %s: %w", job.ID, err)
	}

	hits, err := i.store.Search(ctx, vec, limit*searchWidening)
	if err != nil {
		return nil, err
	}

	best := make(map[uuid.UUID]float32)
	for _, h := range hits {
		if score, ok := best[h.CandidateID]; !ok || h.Score > score {
			best[h.CandidateID] = h.Score
		}
	}

	suggestions := make([]models.CandidateSuggestion, 0, len(best))
	for id, score := range best {
		suggestions = append(suggestions, models.CandidateSuggestion{CandidateID: id, Score: score})
	}
	sort.Slice(suggestions, func(a, b int) bool {
		if suggestions[a].Score == suggestions[b].Score {
			return suggestions[a].CandidateID.String() < suggestions[b].CandidateID.String()
		}
		return suggestions[a].Score > suggestions[b].Score
	})
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}

	// Names are best effort; a candidate missing from the store keeps its id only.
	for idx := range suggestions {
		candidate, found, err := i.candidates.FindByID(ctx, suggestions[idx].CandidateID)
		if err != nil || !found {
			continue
		}
		if data, err := candidate.Data(); err == nil {
			if name, ok := data.Name(); ok {
				suggestions[idx].Name = name
			}
		}
	}

	return suggestions, nil
}
