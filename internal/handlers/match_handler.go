package handlers

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/models"
)

type matchScorer interface {
	GetOrCompute(ctx context.Context, jobID, candidateID uuid.UUID) (*models.ResumeMatchScore, error)
	List(ctx context.Context) ([]models.MatchDetail, error)
}

type MatchHandler struct {
	scorer matchScorer
	logger *zap.Logger
}

func NewMatchHandler(scorer matchScorer, log *zap.Logger) *MatchHandler {
	return &MatchHandler{scorer: scorer, logger: log}
}

// HandleGet returns the cached score for the pair, computing it on first use.
func (h *MatchHandler) HandleGet(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("job_id"))
	if err != nil {
		return notFound(c, fmt.Sprintf("Job posting with ID %s not found", c.Params("job_id")))
	}
	candidateID, err := uuid.Parse(c.Params("candidate_id"))
	if err != nil {
		return notFound(c, fmt.Sprintf("Candidate profile with ID %s not found", c.Params("candidate_id")))
	}

	match, err := h.scorer.GetOrCompute(c.UserContext(), jobID, candidateID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(match)
}

func (h *MatchHandler) HandleList(c *fiber.Ctx) error {
	matches, err := h.scorer.List(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err)
	}

	h.logger.Info("retrieved matches", zap.Int("count", len(matches)))
	return c.JSON(matches)
}
