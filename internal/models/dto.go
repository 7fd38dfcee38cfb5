package models

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type AnalyzeRequest struct {
	ProfileID   string  `json:"profile_id"`
	Description *string `json:"description"`
}

type BulkAnalyzeRequest struct {
	ProfileID string  `json:"profile_id"`
	JobIDs    []int64 `json:"job_ids"`
}

type ManualJobRequest struct {
	Title       string  `json:"title"`
	Company     string  `json:"company"`
	JobURL      string  `json:"job_url"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
}

type StatusUpdateRequest struct {
	Status JobStatus `json:"status"`
}

// DetailsUpdateRequest carries a partial update; nil fields are left unchanged.
type DetailsUpdateRequest struct {
	Notes       *string    `json:"notes"`
	Contacts    *Contacts  `json:"contacts"`
	IsTracked   *bool      `json:"is_tracked"`
	Status      *JobStatus `json:"status"`
	Description *string    `json:"description"`
}

func (r DetailsUpdateRequest) Empty() bool {
	return r.Notes == nil && r.Contacts == nil && r.IsTracked == nil && r.Status == nil && r.Description == nil
}

type DeleteJobsRequest struct {
	JobIDs []int64 `json:"job_ids"`
}

type AIRequest struct {
	JobDescription string `json:"job_description"`
	ProfileID      string `json:"profile_id"`
	Company        string `json:"company,omitempty"`
	Title          string `json:"title,omitempty"`
}

type OptimizedResumeRequest struct {
	JobID     int64  `json:"job_id"`
	ProfileID string `json:"profile_id"`
}

type ResumeFromTextRequest struct {
	ProfileID      string `json:"profile_id"`
	JobDescription string `json:"job_description"`
	ResumeContext  string `json:"resume_context"`
}

type TailoringResponse struct {
	Suggestions []string `json:"suggestions"`
}

type CoverLetterResponse struct {
	CoverLetter string `json:"coverLetter"`
}

type OptimizedResumeResponse struct {
	OptimizedResume string `json:"optimized_resume"`
}

type IngestResponse struct {
	Status  string        `json:"status"`
	Data    *ResumeSchema `json:"data"`
	FileURL string        `json:"file_url,omitempty"`
}

type GapAnalysisRequest struct {
	ResumeData     *ResumeSchema `json:"resume_data"`
	JobDescription string        `json:"job_description"`
}

type TailoredResumeRequest struct {
	ResumeData     *ResumeSchema     `json:"resume_data"`
	JobDescription string            `json:"job_description"`
	GapAnswers     map[string]string `json:"gap_answers"`
}

type ResumeCoverLetterRequest struct {
	ResumeData     *ResumeSchema `json:"resume_data"`
	JobDescription string        `json:"job_description"`
}

type ResumeCoverLetterResponse struct {
	CoverLetterText string `json:"cover_letter_text"`
}

type RenderCoverLetterRequest struct {
	ResumeData      *ResumeSchema `json:"resume_data"`
	CoverLetterText string        `json:"cover_letter_text"`
}

type ScrapeRequest struct {
	SearchTerm string `json:"search_term"`
	Location   string `json:"location"`
	HoursOld   int    `json:"hours_old"`
	SearchID   string `json:"search_id"`
}

type PageScrapeRequest struct {
	URL string `json:"url"`
}
