package models

type PersonalInfo struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	GitHub    string `json:"github,omitempty"`
	Portfolio string `json:"portfolio,omitempty"`
	Location  string `json:"location,omitempty"`
}

type Experience struct {
	Company string   `json:"company"`
	Role    string   `json:"role"`
	Dates   string   `json:"dates"`
	Bullets []string `json:"bullets"`
}

type Project struct {
	Name         string   `json:"name"`
	GitHubURL    string   `json:"github_url,omitempty"`
	DemoURL      string   `json:"demo_url,omitempty"`
	Description  string   `json:"description,omitempty"`
	Bullets      []string `json:"bullets"`
	Technologies []string `json:"technologies"`
}

type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Dates       string `json:"dates"`
}

// ResumeSchema is the structured resume exchanged by the resume maker endpoints
// and fed to the PDF renderer.
type ResumeSchema struct {
	PersonalInfo PersonalInfo        `json:"personal_info"`
	Summary      string              `json:"summary"`
	Skills       map[string][]string `json:"skills"`
	Experience   []Experience        `json:"experience"`
	Projects     []Project           `json:"projects"`
	Education    []Education         `json:"education"`
}

type Gap struct {
	MissingSkill string `json:"missing_skill"`
	Context      string `json:"context"`
	Question     string `json:"question"`
}

type GapAnalysis struct {
	JobTitleDetected string `json:"job_title_detected"`
	MatchScore       int    `json:"match_score"`
	Gaps             []Gap  `json:"gaps"`
}

type InterviewPrep struct {
	Behavioral  []string `json:"Behavioral"`
	Technical   []string `json:"Technical"`
	Situational []string `json:"Situational"`
}

type JobAnalysis struct {
	GeminiRating int    `json:"gemini_rating"`
	AIReason     string `json:"ai_reason"`
}
