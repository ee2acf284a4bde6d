package services

import (
	"fmt"
	"strings"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildScreeningPrompt asks the model to score the attached resume against a
// job posting and answer with a bare JSON object.
func (pb *PromptBuilder) BuildScreeningPrompt(title, description, requirements string) string {
	return fmt.Sprintf(`You are an AI recruiter. Analyze this resume against the job posting below.

Respond with ONLY valid JSON (no markdown, no code blocks):
{
  "score": <number 0-100>,
  "summary": "<brief 2-3 sentence explanation>"
}

JOB POSTING:
Title: %s

Description:
%s

Requirements:
%s

Evaluate the candidate's experience, skills, and fit for this role.`,
		strings.TrimSpace(title), strings.TrimSpace(description), strings.TrimSpace(requirements))
}

// BuildCandidateQuery turns a recruiter's search text into the string that is
// embedded for similarity search.
func (pb *PromptBuilder) BuildCandidateQuery(query, jobTitle string) string {
	query = strings.TrimSpace(query)
	if jobTitle == "" {
		return query
	}
	return fmt.Sprintf("Candidate for %s: %s", jobTitle, query)
}
