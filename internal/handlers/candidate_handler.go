package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/repositories"
	"alfredoptarigan/resume-matcher/internal/services"
)

type resumeIngester interface {
	Ingest(ctx context.Context, data []byte, fileName string) (*models.CandidateProfile, error)
}

type skillSorter interface {
	Resort(ctx context.Context, candidateID uuid.UUID) (*models.CandidateProfile, error)
}

type CandidateHandler struct {
	ingester    resumeIngester
	sorter      skillSorter
	candidates  repositories.CandidateRepository
	storage     services.StorageService
	maxFileSize int64
	logger      *zap.Logger
}

// NewCandidateHandler wires the resume routes. storage may be nil, in which
// case uploads are not archived.
func NewCandidateHandler(
	ingester resumeIngester,
	sorter skillSorter,
	candidates repositories.CandidateRepository,
	storage services.StorageService,
	maxFileSize int64,
	log *zap.Logger,
) *CandidateHandler {
	return &CandidateHandler{
		ingester:    ingester,
		sorter:      sorter,
		candidates:  candidates,
		storage:     storage,
		maxFileSize: maxFileSize,
		logger:      log,
	}
}

// HandleUpload parses the multipart "file" field into a new candidate.
func (h *CandidateHandler) HandleUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return invalidInput(c, "No file provided")
	}

	if h.maxFileSize > 0 && file.Size > h.maxFileSize {
		return invalidInput(c, fmt.Sprintf("File too large. Max size: %d bytes", h.maxFileSize))
	}

	src, err := file.Open()
	if err != nil {
		return respondError(c, h.logger, fmt.Errorf("open uploaded file: %w", err))
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return respondError(c, h.logger, fmt.Errorf("read uploaded file: %w", err))
	}

	candidate, err := h.ingester.Ingest(c.UserContext(), data, file.Filename)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	if h.storage != nil {
		if _, err := h.storage.SaveUpload(candidate.ID, candidate.FileType, data); err != nil {
			h.logger.Warn("failed to archive upload",
				zap.String("candidate_id", candidate.ID.String()),
				zap.Error(err),
			)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(models.UploadResponse{
		Message: "Parsed successfully",
		ID:      candidate.ID.String(),
	})
}

// HandleList returns every candidate without the extracted text.
func (h *CandidateHandler) HandleList(c *fiber.Ctx) error {
	candidates, err := h.candidates.List(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err)
	}

	out := make([]models.CandidateLite, 0, len(candidates))
	for i := range candidates {
		out = append(out, models.NewCandidateLite(&candidates[i]))
	}

	h.logger.Info("retrieved resumes", zap.Int("count", len(out)))
	return c.JSON(out)
}

// HandleSort re-sorts the candidate's skills and returns the full profile.
func (h *CandidateHandler) HandleSort(c *fiber.Ctx) error {
	candidateID, err := uuid.Parse(c.Params("candidate_id"))
	if err != nil {
		return notFound(c, fmt.Sprintf("Candidate with ID %s not found", c.Params("candidate_id")))
	}

	candidate, err := h.sorter.Resort(c.UserContext(), candidateID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(candidate)
}
