package services

import (
	"fmt"
	"sort"
	"strings"

	"alfredoptarigan/intelliapply/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildJobAnalysisPrompt asks for a strict 1-10 fit rating that respects the
// candidate's target experience level.
func (pb *PromptBuilder) BuildJobAnalysisPrompt(resumeContext, jobDescription string, level models.ExperienceLevel) string {
	return fmt.Sprintf(`Act as an extremely strict, expert technical recruiter. Your only goal is to protect the candidate's time by filtering out irrelevant job postings.

CANDIDATE RESUME CONTEXT:
---
%s
---

TARGET EXPERIENCE LEVEL: '%s'

JOB DESCRIPTION TO ANALYZE:
---
%s
---

INSTRUCTIONS:
1. EXPERIENCE LEVEL CHECK (MOST IMPORTANT): look for seniority keywords in the title and description ("Senior", "Sr.", "Lead", "Principal", "Manager", "Staff"). If the job requires a higher level than '%s', give it a low rating.
2. FIELD RELEVANCE CHECK: reject postings whose core responsibilities do not match the skills in the resume.
3. RATING: give a suitability rating from 1 to 10. A rating of 7 or higher means a strong match for both the skills and the target level. Be critical.

Return ONLY a JSON object:
{
  "gemini_rating": <integer 1-10>,
  "ai_reason": "<one concise sentence explaining the rating>"
}`, resumeContext, level, jobDescription, level)
}

func (pb *PromptBuilder) BuildInterviewPrepPrompt(resumeContext, jobDescription string) string {
	return fmt.Sprintf(`Act as a senior hiring manager preparing to interview a candidate.

CANDIDATE RESUME CONTEXT:
---
%s
---

JOB DESCRIPTION:
---
%s
---

Generate 5-7 likely interview questions based on the job description AND the resume, mixing Behavioral ("Tell me about a time..."), Technical ("How would you...") and Situational ("What would you do if...") questions.

Return ONLY a JSON object with three keys whose values are arrays of question strings:
{
  "Behavioral": ["..."],
  "Technical": ["..."],
  "Situational": ["..."]
}`, resumeContext, jobDescription)
}

func (pb *PromptBuilder) BuildTailoringPrompt(resumeContext, jobDescription string) string {
	return fmt.Sprintf(`Act as an expert career coach helping a candidate tailor their resume for a specific job.

CURRENT RESUME CONTEXT:
---
%s
---

JOB DESCRIPTION:
---
%s
---

Analyze the resume against the job description and provide 3-5 specific, actionable suggestions. Focus on highlighting relevant skills, rephrasing bullet points and adding keywords.

Return ONLY a JSON object:
{
  "suggestions": ["<suggestion>", "..."]
}`, resumeContext, jobDescription)
}

func (pb *PromptBuilder) BuildCoverLetterPrompt(resumeContext, jobDescription, company, title string) string {
	return fmt.Sprintf(`Act as an expert career coach and professional writer. Write a concise, professional and compelling cover letter.

CANDIDATE RESUME CONTEXT:
---
%s
---

THE JOB:
- Company: %s
- Job Title: %s
- Job Description: %s
---

Write three paragraphs in a professional, confident and tailored tone.

Return ONLY a JSON object:
{
  "coverLetter": "<full letter text with newlines as \n>"
}`, resumeContext, company, title, jobDescription)
}

// BuildOptimizedResumePrompt produces a full markdown resume using the
// profile's real contact details.
func (pb *PromptBuilder) BuildOptimizedResumePrompt(profile *models.Profile, resumeContext, jobDescription string) string {
	return fmt.Sprintf(`You are a world-class resume writer. Rewrite the candidate's resume so it aligns with the job description.

CANDIDATE CONTACT INFO (use exactly as given):
Name: %s
Email: %s
Phone: %s
LinkedIn: %s
Portfolio: %s

CANDIDATE RESUME CONTEXT:
---
%s
---

JOB DESCRIPTION:
---
%s
---

RULES:
1. Keep every fact truthful to the resume context. Never invent employers, dates or degrees.
2. Lead with a 3-sentence summary that uses the job's key terms.
3. Reorder and rephrase bullets so the most relevant experience comes first.
4. Output the complete resume in Markdown with sections: Summary, Skills, Experience, Projects, Education.

Return ONLY the Markdown resume.`,
		profile.FullName, profile.Email, profile.Phone, profile.LinkedInURL, profile.PortfolioURL,
		resumeContext, jobDescription)
}

func (pb *PromptBuilder) BuildResumeParsePrompt(resumeText string) string {
	return fmt.Sprintf(`You are a resume parser. Convert the resume text below into valid JSON.

RULES:
1. If a project link contains github.com assign it to "github_url"; a deployed site goes to "demo_url". Keep both when both are present.
2. Capture project content as "bullets" when possible, otherwise as "description".
3. Output JSON ONLY.

STRUCTURE:
{
  "personal_info": {"name": "", "email": "", "phone": "", "linkedin": "", "github": "", "portfolio": "", "location": ""},
  "summary": "",
  "skills": {"languages": [], "frameworks": [], "tools": []},
  "experience": [{"company": "", "role": "", "dates": "", "bullets": []}],
  "projects": [{"name": "", "github_url": "", "demo_url": "", "description": "", "bullets": [], "technologies": []}],
  "education": [{"institution": "", "degree": "", "dates": ""}]
}

--- RESUME TEXT ---
%s`, resumeText)
}

func (pb *PromptBuilder) BuildGapAnalysisPrompt(resumeJSON, jobDescription string) string {
	return fmt.Sprintf(`You are an expert technical recruiter. Perform a GAP ANALYSIS between the candidate's resume and the job description.

CANDIDATE RESUME (JSON):
%s

JOB DESCRIPTION:
%s

TASK:
1. Detect the job title.
2. Calculate a match score (0-100) based on hard skills.
3. Identify 3-5 critical hard skills present in the job description but missing or weak in the resume.
4. For each one, write a direct question asking the candidate whether they have this experience.

Return ONLY a JSON object:
{
  "job_title_detected": "<title>",
  "match_score": <0-100>,
  "gaps": [
    {"missing_skill": "<skill>", "context": "<why the job needs it>", "question": "<question for the candidate>"}
  ]
}`, resumeJSON, truncate(jobDescription, 4000))
}

func (pb *PromptBuilder) BuildTailoredResumePrompt(resumeJSON, jobDescription string, gapAnswers map[string]string) string {
	return fmt.Sprintf(`You are an expert resume writer. Tailor the candidate's resume to the job description.

JOB DESCRIPTION:
%s

CANDIDATE RESUME (JSON):
%s

%s
TASKS:
1. Rewrite the summary as 3 powerful sentences using the job's keywords.
2. Rewrite experience bullets to highlight the skills the job asks for.
3. Make sure every project has "bullets" and a "technologies" list. Preserve both "github_url" and "demo_url" when present.
4. Use the candidate's additional context to fill gaps, without inventing anything beyond it.

Return valid JSON with exactly the same structure as the input resume.`,
		truncate(jobDescription, 4000), resumeJSON, formatGapAnswers(gapAnswers))
}

func (pb *PromptBuilder) BuildResumeCoverLetterPrompt(resumeJSON, jobDescription string) string {
	return fmt.Sprintf(`You are an expert career coach. Write a professional, persuasive cover letter for this candidate.

JOB DESCRIPTION:
%s

CANDIDATE RESUME (JSON):
%s

STRUCTURE:
- Hook: the role applied for and why the candidate is excited.
- Experience: connect previous roles to the job's requirements.
- Skills and projects: highlight the relevant technical skills.
- Closing: reiterate interest and propose a meeting.

Return ONLY the letter body as plain text, with no placeholders such as "[Your Name]".`,
		truncate(jobDescription, 4000), resumeJSON)
}

// formatGapAnswers lists the candidate's answers in a stable order.
func formatGapAnswers(answers map[string]string) string {
	if len(answers) == 0 {
		return ""
	}

	skills := make([]string, 0, len(answers))
	for skill := range answers {
		skills = append(skills, skill)
	}
	sort.Strings(skills)

	var b strings.Builder
	b.WriteString("CANDIDATE'S ADDITIONAL CONTEXT (use this to fill gaps):\n")
	for _, skill := range skills {
		answer := strings.TrimSpace(answers[skill])
		if answer == "" {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", skill, answer)
	}
	return b.String()
}

// FormatGroundingContext renders retrieved resume passages for a prompt.
func FormatGroundingContext(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	var parts []string
	for i, result := range results {
		parts = append(parts, fmt.Sprintf("--- Passage %d (relevance %.2f) ---\n%s",
			i+1, result.Score, strings.TrimSpace(result.Text)))
	}

	return strings.Join(parts, "\n\n")
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
