package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"alfredoptarigan/resume-matcher/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildExtractionPrompt asks for the resume as a structured-data JSON object.
func (pb *PromptBuilder) BuildExtractionPrompt(resumeText string) string {
	return fmt.Sprintf(`Parse the following resume text into structured JSON with the following fields:
- name (string)
- skills (list of strings)
- education (list of strings)
- work_experience (list of strings)

Return ONLY the JSON object, without any additional text, explanation or Markdown.

Here is the text:

%s`, resumeText)
}

type scoringJob struct {
	Title          string   `json:"title"`
	Company        string   `json:"company"`
	RequiredSkills []string `json:"required_skills"`
}

// BuildScoringPrompt asks for {"score": 0-100, "summary": "..."} comparing the
// job with the candidate's structured data.
func (pb *PromptBuilder) BuildScoringPrompt(job *models.JobPosting, resume models.StructuredData) (string, error) {
	skills := []string(job.RequiredSkills)
	if skills == nil {
		skills = []string{}
	}

	jobJSON, err := json.Marshal(scoringJob{
		Title:          job.Title,
		Company:        job.Company,
		RequiredSkills: skills,
	})
	if err != nil {
		return "", fmt.Errorf("marshal job payload: %w", err)
	}

	resumeJSON, err := resume.JSON()
	if err != nil {
		return "", fmt.Errorf("marshal resume payload: %w", err)
	}

	return fmt.Sprintf(`Calculate a matching score (0-100) between the following job posting and resume.
Also provide a brief summary (2-3 sentences) explaining how well the resume matches the job criteria, considering:
1. Skills overlap
2. Education relevance
3. Work experience alignment

Return ONLY a JSON object with exactly these fields and no additional text:
{
  "score": <number between 0 and 100>,
  "summary": "<2-3 sentence explanation>"
}

Job Posting: %s

Resume: %s`, jobJSON, resumeJSON), nil
}

// BuildSortPrompt asks for the skills back as an alphabetically sorted JSON array.
func (pb *PromptBuilder) BuildSortPrompt(skills []string) (string, error) {
	if skills == nil {
		skills = []string{}
	}

	skillsJSON, err := json.Marshal(skills)
	if err != nil {
		return "", fmt.Errorf("marshal skills: %w", err)
	}

	return fmt.Sprintf(`Given the following list of skills: %s
return the same skills sorted in alphabetical order as a JSON list of strings.
Return ONLY the JSON list, without any additional text.`, skillsJSON), nil
}

// BuildSuggestionQuery is the text embedded to look up candidates for a job.
func (pb *PromptBuilder) BuildSuggestionQuery(job *models.JobPosting) string {
	return fmt.Sprintf("%s at %s. Required skills: %s",
		job.Title, job.Company, strings.Join(job.RequiredSkills, ", "))
}
