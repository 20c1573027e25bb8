package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/repositories"
)

const maxJobFieldLength = 200

type candidateSuggester interface {
	SuggestCandidates(ctx context.Context, job *models.JobPosting, limit int) ([]models.CandidateSuggestion, error)
}

type JobHandler struct {
	jobs      repositories.JobRepository
	suggester candidateSuggester
	logger    *zap.Logger
}

// NewJobHandler wires the job routes. suggester may be nil when the candidate
// index is disabled.
func NewJobHandler(jobs repositories.JobRepository, suggester candidateSuggester, log *zap.Logger) *JobHandler {
	return &JobHandler{jobs: jobs, suggester: suggester, logger: log}
}

func (h *JobHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.CreateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidInput(c, "Request body must be a JSON object")
	}

	if problems := validateJob(&req); len(problems) > 0 {
		h.logger.Warn("failed to create job posting", zap.Strings("problems", problems))
		return invalidInput(c, strings.Join(problems, "; "))
	}

	now := time.Now().UTC()
	job := &models.JobPosting{
		ID:             uuid.New(),
		Title:          strings.TrimSpace(req.Title),
		Company:        strings.TrimSpace(req.Company),
		RequiredSkills: req.RequiredSkills,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.jobs.Create(c.UserContext(), job); err != nil {
		return respondError(c, h.logger, err)
	}

	h.logger.Info("job posting created",
		zap.String("job_id", job.ID.String()),
		zap.String("title", job.Title),
		zap.String("company", job.Company),
	)
	return c.Status(fiber.StatusCreated).JSON(job)
}

// HandleList supports optional title and company filters.
func (h *JobHandler) HandleList(c *fiber.Ctx) error {
	filter := repositories.JobFilter{
		Title:   c.Query("title"),
		Company: c.Query("company"),
	}

	jobs, err := h.jobs.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	h.logger.Info("retrieved job postings",
		zap.Int("count", len(jobs)),
		zap.String("title", filter.Title),
		zap.String("company", filter.Company),
	)
	return c.JSON(jobs)
}

func (h *JobHandler) HandleGet(c *fiber.Ctx) error {
	job, err := h.findJob(c)
	if err != nil || job == nil {
		return err
	}
	return c.JSON(job)
}

// HandleSuggest lists indexed candidates closest to the job.
func (h *JobHandler) HandleSuggest(c *fiber.Ctx) error {
	if h.suggester == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
			Error:  "Candidate index is disabled",
			Detail: "set QDRANT_URL to enable candidate suggestions",
		})
	}

	job, err := h.findJob(c)
	if err != nil || job == nil {
		return err
	}

	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil || limit < 1 {
		return invalidInput(c, "limit must be a positive integer")
	}

	suggestions, err := h.suggester.SuggestCandidates(c.UserContext(), job, limit)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(suggestions)
}

// findJob resolves :job_id. A nil job with a nil error means the response
// has already been written.
func (h *JobHandler) findJob(c *fiber.Ctx) (*models.JobPosting, error) {
	raw := c.Params("job_id")
	detail := fmt.Sprintf("Job posting with ID %s not found", raw)

	jobID, err := uuid.Parse(raw)
	if err != nil {
		return nil, notFound(c, detail)
	}

	job, found, err := h.jobs.FindByID(c.UserContext(), jobID)
	if err != nil {
		return nil, respondError(c, h.logger, err)
	}
	if !found {
		h.logger.Warn("job posting not found", zap.String("job_id", raw))
		return nil, notFound(c, detail)
	}
	return job, nil
}

func validateJob(req *models.CreateJobRequest) []string {
	var problems []string

	check := func(field, value string) {
		value = strings.TrimSpace(value)
		switch {
		case value == "":
			problems = append(problems, field+": this field is required")
		case utf8.RuneCountInString(value) > maxJobFieldLength:
			problems = append(problems, fmt.Sprintf("%s: ensure this field has no more than %d characters", field, maxJobFieldLength))
		}
	}
	check("title", req.Title)
	check("company", req.Company)

	if req.RequiredSkills == nil {
		problems = append(problems, "required_skills: this field is required")
	}

	return problems
}
